package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/equilobe/library-go/library/features/command/addbook"
	"github.com/equilobe/library-go/library/features/command/lendbook"
	"github.com/equilobe/library-go/library/features/command/removebook"
	"github.com/equilobe/library-go/library/features/command/returnbook"
	"github.com/equilobe/library-go/library/features/query/availablecopies"
	"github.com/equilobe/library-go/library/features/query/books"
	"github.com/equilobe/library-go/library/features/query/loans"
	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/dispatch"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	"github.com/equilobe/library-go/librarystore"
)

const (
	dateLayout         = "2006-01-02"
	defaultEventsCount = 20
)

var (
	errUnknownSubcommand = fmt.Errorf("%w: unknown subcommand", errUsage)
	errInvalidFlag       = fmt.Errorf("%w: invalid flag value", errUsage)
	errMissingFlag       = fmt.Errorf("%w: missing required flag", errUsage)
)

var output = jsoniter.ConfigCompatibleWithStandardLibrary

// session runs one subcommand against a dispatcher and prints the outcome as JSON.
type session struct {
	dispatcher  *dispatch.Dispatcher
	eventStream func() (redis.Cmdable, string, error)
	stdout      io.Writer
	stderr      io.Writer
}

type subcommand func(ctx context.Context, fs *flag.FlagSet, args []string) error

type commandOutput struct {
	Command       string          `json:"command"`
	BookID        string          `json:"bookId"`
	Outcome       string          `json:"outcome"`
	RetryAttempts int             `json:"retryAttempts"`
	Loan          *loans.LoanView `json:"loan,omitempty"`
}

type eventOutput struct {
	EventType  string           `json:"eventType"`
	OccurredAt time.Time        `json:"occurredAt"`
	Event      core.DomainEvent `json:"event"`
}

func (s session) run(ctx context.Context, args []string) error {
	subcommands := map[string]subcommand{
		"add":       s.addBook,
		"remove":    s.removeBook,
		"lend":      s.lendBook,
		"return":    s.returnBook,
		"books":     s.listBooks,
		"loans":     s.listLoans,
		"available": s.availableCopies,
		"events":    s.listEvents,
	}

	if len(args) == 0 {
		return errUnknownSubcommand
	}

	handle, ok := subcommands[args[0]]
	if !ok {
		return fmt.Errorf("%w %q", errUnknownSubcommand, args[0])
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	return handle(ctx, fs, args[1:])
}

/***** commands *****/

func (s session) addBook(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "Book id; a new one is generated when empty")
	title := fs.String("title", "", "Title")
	firstName := fs.String("author-first", "", "Author first name")
	lastName := fs.String("author-last", "", "Author last name")
	isbn := fs.String("isbn", "", "ISBN")
	rent := fs.String("rent", "", "Rent price amount, e.g. 12.50")
	currency := fs.String("currency", string(core.CurrencyRON), "Rent price currency")

	if err := fs.Parse(args); err != nil {
		return err
	}

	bookID, err := parseOptionalID("id", *id)
	if err != nil {
		return err
	}

	rentAmount, err := parseAmount("rent", *rent)
	if err != nil {
		return err
	}

	command := addbook.BuildCommand(
		bookID,
		*title,
		*firstName,
		*lastName,
		*isbn,
		rentAmount,
		core.Currency(strings.ToUpper(strings.TrimSpace(*currency))),
	)

	result, err := dispatch.SendCommand(ctx, s.dispatcher, command)
	if err != nil {
		return err
	}

	return s.printJSON(newCommandOutput(command.CommandType(), bookID, result))
}

func (s session) removeBook(ctx context.Context, fs *flag.FlagSet, args []string) error {
	book := fs.String("book", "", "Book id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	bookID, err := parseRequiredID("book", *book)
	if err != nil {
		return err
	}

	command := removebook.BuildCommand(bookID)

	result, err := dispatch.SendCommand(ctx, s.dispatcher, command)
	if err != nil {
		return err
	}

	return s.printJSON(newCommandOutput(command.CommandType(), bookID, result))
}

func (s session) lendBook(ctx context.Context, fs *flag.FlagSet, args []string) error {
	book := fs.String("book", "", "Book id")
	user := fs.String("user", "", "Borrowing user id")
	due := fs.String("due", "", "Due date as YYYY-MM-DD or RFC 3339; defaults to the standard loan period")

	if err := fs.Parse(args); err != nil {
		return err
	}

	bookID, err := parseRequiredID("book", *book)
	if err != nil {
		return err
	}

	userID, err := parseRequiredID("user", *user)
	if err != nil {
		return err
	}

	dueDate, err := parseOptionalTime("due", *due)
	if err != nil {
		return err
	}

	command := lendbook.BuildCommand(bookID, userID, dueDate)

	result, err := dispatch.SendCommand(ctx, s.dispatcher, command)
	if err != nil {
		return err
	}

	out := newCommandOutput(command.CommandType(), bookID, result)
	if out.Loan, err = s.latestLoan(ctx, bookID, false); err != nil {
		return err
	}

	return s.printJSON(out)
}

func (s session) returnBook(ctx context.Context, fs *flag.FlagSet, args []string) error {
	book := fs.String("book", "", "Book id")
	quality := fs.String("quality", "", "Quality on return: new, likeNew, good, fair, worn or damaged")
	date := fs.String("date", "", "Return date as YYYY-MM-DD or RFC 3339; defaults to now")

	if err := fs.Parse(args); err != nil {
		return err
	}

	bookID, err := parseRequiredID("book", *book)
	if err != nil {
		return err
	}

	state, err := core.ParseQualityState(*quality)
	if err != nil {
		return errors.Join(errInvalidFlag, err)
	}

	returnDate, err := parseOptionalTime("date", *date)
	if err != nil {
		return err
	}

	command := returnbook.BuildCommand(bookID, state, returnDate)

	result, err := dispatch.SendCommand(ctx, s.dispatcher, command)
	if err != nil {
		return err
	}

	out := newCommandOutput(command.CommandType(), bookID, result)
	if out.Loan, err = s.latestLoan(ctx, bookID, true); err != nil {
		return err
	}

	return s.printJSON(out)
}

/***** queries *****/

func (s session) listBooks(ctx context.Context, fs *flag.FlagSet, args []string) error {
	title := fs.String("title", "", "Case-insensitive part of the title")
	quality := fs.String("quality", "", "Quality state")
	available := fs.String("available", "", "true or false; empty lists both")
	sortBy := fs.String("sort", "", "id, title or creationDate")
	direction := fs.String("dir", "", "asc or desc")
	page := fs.Int("page", librarystore.DefaultPageNumber, "Page number")
	size := fs.Int("size", librarystore.DefaultPageSize, "Page size")

	if err := fs.Parse(args); err != nil {
		return err
	}

	onlyAvailable, err := parseOptionalBool("available", *available)
	if err != nil {
		return err
	}

	result, err := dispatch.SendQuery[books.Query, books.Result](ctx, s.dispatcher, books.Query{
		TitleContains: *title,
		QualityState:  *quality,
		OnlyAvailable: onlyAvailable,
		SortBy:        *sortBy,
		SortDirection: *direction,
		PageNumber:    *page,
		PageSize:      *size,
	})
	if err != nil {
		return err
	}

	return s.printJSON(result)
}

func (s session) listLoans(ctx context.Context, fs *flag.FlagSet, args []string) error {
	user := fs.String("user", "", "User id")
	book := fs.String("book", "", "Book id")
	date := fs.String("date", "", "Loan day as YYYY-MM-DD")
	returned := fs.String("returned", "", "true or false; empty lists both")
	details := fs.Bool("details", false, "Include book id and title")
	sortBy := fs.String("sort", "", "id, loanDate or returnDate")
	direction := fs.String("dir", "", "asc or desc")
	page := fs.Int("page", librarystore.DefaultPageNumber, "Page number")
	size := fs.Int("size", librarystore.DefaultPageSize, "Page size")

	if err := fs.Parse(args); err != nil {
		return err
	}

	isReturned, err := parseOptionalBool("returned", *returned)
	if err != nil {
		return err
	}

	result, err := dispatch.SendQuery[loans.Query, loans.Result](ctx, s.dispatcher, loans.Query{
		UserID:             *user,
		BookID:             *book,
		LoanDate:           *date,
		Returned:           isReturned,
		IncludeBookDetails: *details,
		SortBy:             *sortBy,
		SortDirection:      *direction,
		PageNumber:         *page,
		PageSize:           *size,
	})
	if err != nil {
		return err
	}

	return s.printJSON(result)
}

func (s session) availableCopies(ctx context.Context, fs *flag.FlagSet, args []string) error {
	isbn := fs.String("isbn", "", "ISBN")

	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := dispatch.SendQuery[availablecopies.Query, availablecopies.Result](
		ctx, s.dispatcher, availablecopies.Query{ISBN: *isbn},
	)
	if err != nil {
		return err
	}

	return s.printJSON(result)
}

func (s session) listEvents(ctx context.Context, fs *flag.FlagSet, args []string) error {
	count := fs.Int64("count", defaultEventsCount, "Maximum number of published events to show, oldest first")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *count <= 0 {
		return fmt.Errorf("%w: -count must be positive", errInvalidFlag)
	}

	client, stream, err := s.eventStream()
	if err != nil {
		return err
	}

	events, err := notify.ReadStream(ctx, client, stream, *count)
	if err != nil {
		return err
	}

	out := make([]eventOutput, 0, len(events))
	for _, event := range events {
		out = append(out, eventOutput{
			EventType:  event.EventType(),
			OccurredAt: event.HasOccurredAt(),
			Event:      event,
		})
	}

	return s.printJSON(out)
}

/***** helpers *****/

// latestLoan looks up the loan a lend or return just touched.
func (s session) latestLoan(ctx context.Context, bookID uuid.UUID, returned bool) (*loans.LoanView, error) {
	sortBy := librarystore.SortLoansByLoanDate
	if returned {
		sortBy = librarystore.SortLoansByReturnDate
	}

	result, err := dispatch.SendQuery[loans.Query, loans.Result](ctx, s.dispatcher, loans.Query{
		BookID:        bookID.String(),
		Returned:      &returned,
		SortBy:        sortBy,
		SortDirection: librarystore.Descending,
		PageSize:      1,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Loans) == 0 {
		return nil, nil
	}

	return &result.Loans[0], nil
}

func (s session) printJSON(v any) error {
	encoder := output.NewEncoder(s.stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func newCommandOutput(commandType string, bookID uuid.UUID, result shell.HandlerResult) commandOutput {
	outcome := shell.StatusSuccess
	if result.Idempotent {
		outcome = shell.StatusIdempotent
	}

	return commandOutput{
		Command:       commandType,
		BookID:        bookID.String(),
		Outcome:       outcome,
		RetryAttempts: result.RetryAttempts,
	}
}

func parseRequiredID(name, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, fmt.Errorf("%w -%s", errMissingFlag, name)
	}

	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w -%s: %w", errInvalidFlag, name, err)
	}

	return id, nil
}

func parseOptionalID(name, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.NewV7()
	}

	return parseRequiredID(name, value)
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Decimal{}, fmt.Errorf("%w -%s", errMissingFlag, name)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w -%s: %w", errInvalidFlag, name, err)
	}

	return amount, nil
}

// parseOptionalTime accepts a calendar day, taken as midnight UTC, or an RFC 3339 timestamp.
func parseOptionalTime(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{dateLayout, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}

	return nil, fmt.Errorf("%w -%s: %q is neither %s nor RFC 3339", errInvalidFlag, name, value, dateLayout)
}

func parseOptionalBool(name, value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%w -%s: %w", errInvalidFlag, name, err)
	}

	return &parsed, nil
}
