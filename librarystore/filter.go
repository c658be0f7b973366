package librarystore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

/***** Sort *****/

// SortField names a sortable column of a listing.
type SortField = string

// SortDirection is either Ascending or Descending.
type SortDirection = string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

const (
	SortBooksByID           SortField = "id"
	SortBooksByTitle        SortField = "title"
	SortBooksByCreationDate SortField = "creationdate"
)

const (
	SortLoansByID         SortField = "id"
	SortLoansByLoanDate   SortField = "loandate"
	SortLoansByReturnDate SortField = "returndate"
)

var bookSortFields = []SortField{SortBooksByID, SortBooksByTitle, SortBooksByCreationDate}
var loanSortFields = []SortField{SortLoansByID, SortLoansByLoanDate, SortLoansByReturnDate}

type Sort struct {
	Field     SortField
	Direction SortDirection
}

// IsDescending reports whether the direction is Descending.
func (s Sort) IsDescending() bool {
	return s.Direction == Descending
}

/***** Paging *****/

// Paging selects a 1-based page of a given size.
type Paging struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip.
func (p Paging) Offset() int {
	return (p.Number - 1) * p.Size
}

/***** BookFilter *****/

// BookFilter selects, sorts and pages books.
// It should only be constructed with BuildBookFilter.
type BookFilter struct {
	titleContains string
	qualityState  *core.QualityState
	isAvailable   *bool
	sort          Sort
	paging        Paging
}

// TitleContains returns the case-insensitive title substring, "" matches all.
func (f BookFilter) TitleContains() string {
	return f.titleContains
}

// QualityState returns the required quality state and whether one is set.
func (f BookFilter) QualityState() (core.QualityState, bool) {
	if f.qualityState == nil {
		return 0, false
	}

	return *f.qualityState, true
}

// IsAvailable returns the required availability and whether one is set.
func (f BookFilter) IsAvailable() (bool, bool) {
	if f.isAvailable == nil {
		return false, false
	}

	return *f.isAvailable, true
}

func (f BookFilter) Sort() Sort {
	return f.sort
}

func (f BookFilter) Paging() Paging {
	return f.paging
}

// BookFilterBuilder collects book filter criteria, see BuildBookFilter.
type BookFilterBuilder struct {
	filter BookFilter
}

// BuildBookFilter starts a BookFilter with the defaults: first page of 10, sorted by id ascending.
func BuildBookFilter() *BookFilterBuilder {
	return &BookFilterBuilder{
		filter: BookFilter{
			sort:   Sort{Field: SortBooksByID, Direction: Ascending},
			paging: Paging{Number: DefaultPageNumber, Size: DefaultPageSize},
		},
	}
}

// TitleContaining matches books whose title contains part, ignoring case. Blank input is ignored.
func (b *BookFilterBuilder) TitleContaining(part string) *BookFilterBuilder {
	b.filter.titleContains = strings.TrimSpace(part)
	return b
}

func (b *BookFilterBuilder) WithQualityState(state core.QualityState) *BookFilterBuilder {
	b.filter.qualityState = &state
	return b
}

func (b *BookFilterBuilder) OnlyAvailable(isAvailable bool) *BookFilterBuilder {
	b.filter.isAvailable = &isAvailable
	return b
}

// SortedBy sets the sort column and direction. Both are matched case-insensitively; "" keeps the default.
func (b *BookFilterBuilder) SortedBy(field SortField, direction SortDirection) *BookFilterBuilder {
	b.filter.sort = sortOrDefault(b.filter.sort, field, direction)
	return b
}

func (b *BookFilterBuilder) OnPage(number int, size int) *BookFilterBuilder {
	b.filter.paging = Paging{Number: number, Size: size}
	return b
}

// Finalize validates the criteria and returns the BookFilter.
func (b *BookFilterBuilder) Finalize() (BookFilter, error) {
	if b.filter.qualityState != nil && !b.filter.qualityState.IsValid() {
		return BookFilter{}, errors.Join(ErrInvalidFilter, core.ErrUnknownQualityState)
	}

	if err := validateSort(b.filter.sort, bookSortFields); err != nil {
		return BookFilter{}, err
	}

	if err := validatePaging(b.filter.paging); err != nil {
		return BookFilter{}, err
	}

	return b.filter, nil
}

/***** LoanFilter *****/

// LoanFilter selects, sorts and pages loans.
// It should only be constructed with BuildLoanFilter.
type LoanFilter struct {
	userID     *uuid.UUID
	bookID     *uuid.UUID
	loanDay    *time.Time
	isReturned *bool
	sort       Sort
	paging     Paging
}

// UserID returns the required borrower and whether one is set.
func (f LoanFilter) UserID() (uuid.UUID, bool) {
	if f.userID == nil {
		return uuid.Nil, false
	}

	return *f.userID, true
}

// BookID returns the required book and whether one is set.
func (f LoanFilter) BookID() (uuid.UUID, bool) {
	if f.bookID == nil {
		return uuid.Nil, false
	}

	return *f.bookID, true
}

// LoanDateRange returns the half-open UTC day [from, until) a loan date must fall in, and whether one is set.
func (f LoanFilter) LoanDateRange() (time.Time, time.Time, bool) {
	if f.loanDay == nil {
		return time.Time{}, time.Time{}, false
	}

	return *f.loanDay, f.loanDay.Add(24 * time.Hour), true
}

// IsReturned returns the required loan state and whether one is set.
func (f LoanFilter) IsReturned() (bool, bool) {
	if f.isReturned == nil {
		return false, false
	}

	return *f.isReturned, true
}

func (f LoanFilter) Sort() Sort {
	return f.sort
}

func (f LoanFilter) Paging() Paging {
	return f.paging
}

// LoanFilterBuilder collects loan filter criteria, see BuildLoanFilter.
type LoanFilterBuilder struct {
	filter LoanFilter
}

// BuildLoanFilter starts a LoanFilter with the defaults: first page of 10, sorted by id ascending.
func BuildLoanFilter() *LoanFilterBuilder {
	return &LoanFilterBuilder{
		filter: LoanFilter{
			sort:   Sort{Field: SortLoansByID, Direction: Ascending},
			paging: Paging{Number: DefaultPageNumber, Size: DefaultPageSize},
		},
	}
}

func (b *LoanFilterBuilder) ForUser(userID uuid.UUID) *LoanFilterBuilder {
	b.filter.userID = &userID
	return b
}

func (b *LoanFilterBuilder) ForBook(bookID uuid.UUID) *LoanFilterBuilder {
	b.filter.bookID = &bookID
	return b
}

// LoanedOn matches loans whose loan date falls on the same UTC calendar day as day.
func (b *LoanFilterBuilder) LoanedOn(day time.Time) *LoanFilterBuilder {
	utc := day.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	b.filter.loanDay = &start

	return b
}

func (b *LoanFilterBuilder) Returned(isReturned bool) *LoanFilterBuilder {
	b.filter.isReturned = &isReturned
	return b
}

// SortedBy sets the sort column and direction. Both are matched case-insensitively; "" keeps the default.
func (b *LoanFilterBuilder) SortedBy(field SortField, direction SortDirection) *LoanFilterBuilder {
	b.filter.sort = sortOrDefault(b.filter.sort, field, direction)
	return b
}

func (b *LoanFilterBuilder) OnPage(number int, size int) *LoanFilterBuilder {
	b.filter.paging = Paging{Number: number, Size: size}
	return b
}

// Finalize validates the criteria and returns the LoanFilter.
func (b *LoanFilterBuilder) Finalize() (LoanFilter, error) {
	if err := validateSort(b.filter.sort, loanSortFields); err != nil {
		return LoanFilter{}, err
	}

	if err := validatePaging(b.filter.paging); err != nil {
		return LoanFilter{}, err
	}

	return b.filter, nil
}

/***** helpers *****/

func sortOrDefault(current Sort, field SortField, direction SortDirection) Sort {
	if f := strings.ToLower(strings.TrimSpace(field)); f != "" {
		current.Field = f
	}

	if d := strings.ToLower(strings.TrimSpace(direction)); d != "" {
		current.Direction = d
	}

	return current
}

func validateSort(sort Sort, allowedFields []SortField) error {
	known := false
	for _, field := range allowedFields {
		if sort.Field == field {
			known = true
			break
		}
	}

	if !known {
		return errors.Join(ErrInvalidFilter, fmt.Errorf("unknown sort field %q", sort.Field))
	}

	if sort.Direction != Ascending && sort.Direction != Descending {
		return errors.Join(ErrInvalidFilter, fmt.Errorf("unknown sort direction %q", sort.Direction))
	}

	return nil
}

func validatePaging(paging Paging) error {
	if paging.Number < 1 {
		return errors.Join(ErrInvalidFilter, fmt.Errorf("page number %d must be at least 1", paging.Number))
	}

	if paging.Size < 1 || paging.Size > MaxPageSize {
		return errors.Join(ErrInvalidFilter, fmt.Errorf("page size %d must be between 1 and %d", paging.Size, MaxPageSize))
	}

	return nil
}
