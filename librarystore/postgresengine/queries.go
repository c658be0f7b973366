package postgresengine

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

const (
	dialectPostgres    = "postgres"
	castText           = "TEXT"
	colID              = "id"
	colTitle           = "title"
	colAuthorFirstName = "author_first_name"
	colAuthorLastName  = "author_last_name"
	colISBN            = "isbn"
	colRentAmount      = "rent_amount"
	colRentCurrency    = "rent_currency"
	colQualityState    = "quality_state"
	colIsAvailable     = "is_available"
	colCreatedAt       = "created_at"
	colBookID          = "book_id"
	colUserID          = "user_id"
	colLoanDate        = "loan_date"
	colDueDate         = "due_date"
	colReturnDate      = "return_date"
	colPaidAmount      = "paid_amount"
	colPaidCurrency    = "paid_currency"
	colEventType       = "event_type"
	colOccurredAt      = "occurred_at"
	colPayload         = "payload"
	colMetadata        = "metadata"
)

var bookSortColumns = map[librarystore.SortField]string{
	librarystore.SortBooksByID:           colID,
	librarystore.SortBooksByTitle:        colTitle,
	librarystore.SortBooksByCreationDate: colCreatedAt,
}

var loanSortColumns = map[librarystore.SortField]string{
	librarystore.SortLoansByID:         colID,
	librarystore.SortLoansByLoanDate:   colLoanDate,
	librarystore.SortLoansByReturnDate: colReturnDate,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func (s *Store) bookColumns() []any {
	return []any{
		goqu.Cast(goqu.C(colID), castText),
		colTitle,
		colAuthorFirstName,
		colAuthorLastName,
		colISBN,
		goqu.Cast(goqu.C(colRentAmount), castText),
		colRentCurrency,
		colQualityState,
		colIsAvailable,
		colCreatedAt,
	}
}

func (s *Store) loanColumns() []any {
	return []any{
		goqu.Cast(goqu.C(colID), castText),
		goqu.Cast(goqu.C(colBookID), castText),
		goqu.Cast(goqu.C(colUserID), castText),
		colLoanDate,
		colDueDate,
		colReturnDate,
		goqu.Cast(goqu.C(colPaidAmount), castText),
		colPaidCurrency,
	}
}

func toSQL(dataset interface {
	ToSQL() (string, []any, error)
}) (sqlQueryString, error) {
	sqlQuery, _, err := dataset.ToSQL()
	if err != nil {
		return "", err
	}

	return sqlQuery, nil
}

/***** reads *****/

func (s *Store) buildSelectBookByIDQuery(id uuid.UUID) (sqlQueryString, error) {
	return toSQL(s.builder().
		From(s.booksTableName).
		Select(s.bookColumns()...).
		Where(goqu.C(colID).Eq(id.String())))
}

func (s *Store) buildSelectBooksByIDsQuery(ids []uuid.UUID) (sqlQueryString, error) {
	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	return toSQL(s.builder().
		From(s.booksTableName).
		Select(s.bookColumns()...).
		Where(goqu.C(colID).In(idStrings)).
		Order(goqu.C(colID).Asc()))
}

// buildSelectLoanByBookIDQuery selects the open loan of a book first, then the latest returned one.
func (s *Store) buildSelectLoanByBookIDQuery(bookID uuid.UUID) (sqlQueryString, error) {
	return toSQL(s.builder().
		From(s.loansTableName).
		Select(s.loanColumns()...).
		Where(goqu.C(colBookID).Eq(bookID.String())).
		Order(goqu.C(colReturnDate).Desc().NullsFirst(), goqu.C(colLoanDate).Desc()).
		Limit(1))
}

func (s *Store) buildCountBooksQuery(filter librarystore.BookFilter) (sqlQueryString, error) {
	return toSQL(s.builder().
		From(s.booksTableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(s.bookConditions(filter)...))
}

func (s *Store) buildSelectBooksPageQuery(filter librarystore.BookFilter) (sqlQueryString, error) {
	paging := filter.Paging()

	return toSQL(s.builder().
		From(s.booksTableName).
		Select(s.bookColumns()...).
		Where(s.bookConditions(filter)...).
		Order(orderBy(filter.Sort(), bookSortColumns)...).
		Limit(uint(paging.Size)).
		Offset(uint(paging.Offset())))
}

func (s *Store) buildCountAvailableByISBNQuery(isbn string) (sqlQueryString, error) {
	return toSQL(s.builder().
		From(s.booksTableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colISBN).Eq(strings.TrimSpace(isbn)),
			goqu.C(colIsAvailable).IsTrue(),
		))
}

func (s *Store) buildCountJournalQuery(eventType string) (sqlQueryString, error) {
	dataset := s.builder().
		From(s.journalTableName).
		Select(goqu.COUNT(goqu.Star()))

	if eventType != "" {
		dataset = dataset.Where(goqu.C(colEventType).Eq(eventType))
	}

	return toSQL(dataset)
}

func (s *Store) buildCountLoansQuery(filter librarystore.LoanFilter) (sqlQueryString, error) {
	return toSQL(s.builder().
		From(s.loansTableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(s.loanConditions(filter)...))
}

func (s *Store) buildSelectLoansPageQuery(filter librarystore.LoanFilter) (sqlQueryString, error) {
	paging := filter.Paging()

	return toSQL(s.builder().
		From(s.loansTableName).
		Select(s.loanColumns()...).
		Where(s.loanConditions(filter)...).
		Order(orderBy(filter.Sort(), loanSortColumns)...).
		Limit(uint(paging.Size)).
		Offset(uint(paging.Offset())))
}

func (s *Store) bookConditions(filter librarystore.BookFilter) []exp.Expression {
	conditions := make([]exp.Expression, 0, 3)

	if title := filter.TitleContains(); title != "" {
		conditions = append(conditions, goqu.C(colTitle).ILike("%"+likeEscaper.Replace(title)+"%"))
	}

	if quality, ok := filter.QualityState(); ok {
		conditions = append(conditions, goqu.C(colQualityState).Eq(quality.Ordinal()))
	}

	if available, ok := filter.IsAvailable(); ok {
		conditions = append(conditions, goqu.C(colIsAvailable).Eq(available))
	}

	return conditions
}

func (s *Store) loanConditions(filter librarystore.LoanFilter) []exp.Expression {
	conditions := make([]exp.Expression, 0, 5)

	if userID, ok := filter.UserID(); ok {
		conditions = append(conditions, goqu.C(colUserID).Eq(userID.String()))
	}

	if bookID, ok := filter.BookID(); ok {
		conditions = append(conditions, goqu.C(colBookID).Eq(bookID.String()))
	}

	if from, until, ok := filter.LoanDateRange(); ok {
		conditions = append(conditions, goqu.C(colLoanDate).Gte(from), goqu.C(colLoanDate).Lt(until))
	}

	if returned, ok := filter.IsReturned(); ok {
		if returned {
			conditions = append(conditions, goqu.C(colReturnDate).IsNotNull())
		} else {
			conditions = append(conditions, goqu.C(colReturnDate).IsNull())
		}
	}

	return conditions
}

// orderBy sorts by the requested column and breaks ties by id so that paging is stable.
func orderBy(sort librarystore.Sort, columns map[librarystore.SortField]string) []exp.OrderedExpression {
	column := columns[sort.Field]

	primary := goqu.C(column).Asc()
	if sort.IsDescending() {
		primary = goqu.C(column).Desc()
	}

	if column == colID {
		return []exp.OrderedExpression{primary}
	}

	return []exp.OrderedExpression{primary, goqu.C(colID).Asc()}
}

/***** writes *****/

func (s *Store) buildInsertBookQuery(book core.Book) (sqlQueryString, error) {
	return toSQL(s.builder().
		Insert(s.booksTableName).
		Rows(goqu.Record{
			colID:              book.ID.String(),
			colTitle:           book.Metadata.Title,
			colAuthorFirstName: book.Metadata.Author.FirstName,
			colAuthorLastName:  book.Metadata.Author.LastName,
			colISBN:            book.Metadata.ISBN,
			colRentAmount:      book.RentPrice.Amount.String(),
			colRentCurrency:    string(book.RentPrice.Currency),
			colQualityState:    book.QualityState.Ordinal(),
			colIsAvailable:     book.IsAvailable,
			colCreatedAt:       book.CreatedAt,
		}))
}

func (s *Store) buildDeleteBookQuery(id uuid.UUID) (sqlQueryString, error) {
	return toSQL(s.builder().
		Delete(s.booksTableName).
		Where(goqu.C(colID).Eq(id.String())))
}

func (s *Store) buildInsertLoanQuery(loan core.Loan) (sqlQueryString, error) {
	return toSQL(s.builder().
		Insert(s.loansTableName).
		Rows(goqu.Record{
			colID:           loan.ID.String(),
			colBookID:       loan.BookID.String(),
			colUserID:       loan.UserID.String(),
			colLoanDate:     loan.LoanDate,
			colDueDate:      loan.DueDate,
			colPaidAmount:   loan.PaidAmount.Amount.String(),
			colPaidCurrency: string(loan.PaidAmount.Currency),
		}))
}

// buildLendBookQuery only matches the book while it is still available.
func (s *Store) buildLendBookQuery(book core.Book) (sqlQueryString, error) {
	return toSQL(s.builder().
		Update(s.booksTableName).
		Set(goqu.Record{colIsAvailable: false}).
		Where(
			goqu.C(colID).Eq(book.ID.String()),
			goqu.C(colIsAvailable).IsTrue(),
		))
}

// buildReturnLoanQuery only matches the loan while it is still open.
func (s *Store) buildReturnLoanQuery(loan core.Loan) (sqlQueryString, error) {
	if loan.ReturnDate == nil {
		return "", errLoanNotReturned
	}

	return toSQL(s.builder().
		Update(s.loansTableName).
		Set(goqu.Record{
			colReturnDate:   *loan.ReturnDate,
			colPaidAmount:   loan.PaidAmount.Amount.String(),
			colPaidCurrency: string(loan.PaidAmount.Currency),
		}).
		Where(
			goqu.C(colID).Eq(loan.ID.String()),
			goqu.C(colReturnDate).IsNull(),
		))
}

// buildReturnBookQuery only matches the book while it is lent out.
func (s *Store) buildReturnBookQuery(book core.Book) (sqlQueryString, error) {
	return toSQL(s.builder().
		Update(s.booksTableName).
		Set(goqu.Record{
			colQualityState: book.QualityState.Ordinal(),
			colIsAvailable:  true,
		}).
		Where(
			goqu.C(colID).Eq(book.ID.String()),
			goqu.C(colIsAvailable).IsFalse(),
		))
}

func (s *Store) buildInsertJournalQuery(event librarystore.StorableEvent) (sqlQueryString, error) {
	return toSQL(s.builder().
		Insert(s.journalTableName).
		Rows(goqu.Record{
			colEventType:  event.EventType,
			colOccurredAt: event.OccurredAt,
			colPayload:    goqu.L("?::jsonb", string(event.PayloadJSON)),
			colMetadata:   goqu.L("?::jsonb", string(event.MetadataJSON)),
		}))
}
