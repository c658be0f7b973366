// Package memorystore keeps books, loans and journal entries in memory.
//
// It mirrors the guarded writes of the postgresengine package: a loan can only be
// saved for an available book, a return only matches an open loan of a lent book,
// and every write journals its event in the same critical section. Feature tests
// use it to exercise command and query handlers without a database.
package memorystore

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

var errLoanNotReturned = errors.New("loan has no return date")

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	books   map[uuid.UUID]core.Book
	loans   map[uuid.UUID]core.Loan
	journal []librarystore.StorableEvent
}

func New() *Store {
	return &Store{
		books: make(map[uuid.UUID]core.Book),
		loans: make(map[uuid.UUID]core.Loan),
	}
}

/***** reads *****/

func (s *Store) FindBookByID(ctx context.Context, id uuid.UUID) (core.Book, error) {
	if err := ctx.Err(); err != nil {
		return core.Book{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return core.Book{}, core.ErrBookNotFound
	}

	return book, nil
}

// FindLoanByBookID returns the open loan of a book, otherwise the latest returned one.
func (s *Store) FindLoanByBookID(ctx context.Context, bookID uuid.UUID) (core.Loan, error) {
	if err := ctx.Err(); err != nil {
		return core.Loan{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *core.Loan

	for _, loan := range s.loans {
		if loan.BookID != bookID {
			continue
		}

		if found == nil || precedesForReturn(loan, *found) {
			candidate := loan
			found = &candidate
		}
	}

	if found == nil {
		return core.Loan{}, core.ErrLoanNotFound
	}

	return copyLoan(*found), nil
}

func (s *Store) QueryBooks(ctx context.Context, filter librarystore.BookFilter) (librarystore.Page[core.Book], error) {
	if err := ctx.Err(); err != nil {
		return librarystore.Page[core.Book]{}, err
	}

	s.mu.RLock()
	matches := make([]core.Book, 0, len(s.books))
	for _, book := range s.books {
		if matchesBookFilter(book, filter) {
			matches = append(matches, book)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b core.Book) int {
		return orderedBy(filter.Sort(), compareBooks(filter.Sort().Field, a, b), a.ID, b.ID)
	})

	return pageOf(matches, filter.Paging()), nil
}

func (s *Store) QueryLoans(ctx context.Context, filter librarystore.LoanFilter) (librarystore.Page[core.Loan], error) {
	if err := ctx.Err(); err != nil {
		return librarystore.Page[core.Loan]{}, err
	}

	s.mu.RLock()
	matches := make([]core.Loan, 0, len(s.loans))
	for _, loan := range s.loans {
		if matchesLoanFilter(loan, filter) {
			matches = append(matches, copyLoan(loan))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b core.Loan) int {
		return orderedBy(filter.Sort(), compareLoans(filter.Sort(), a, b), a.ID, b.ID)
	})

	return pageOf(matches, filter.Paging()), nil
}

func (s *Store) FindBooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]core.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[uuid.UUID]core.Book, len(ids))
	for _, id := range ids {
		if book, ok := s.books[id]; ok {
			result[id] = book
		}
	}

	return result, nil
}

func (s *Store) CountAvailableBooksByISBN(ctx context.Context, isbn string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	isbn = strings.TrimSpace(isbn)
	count := 0
	for _, book := range s.books {
		if book.IsAvailable && book.Metadata.ISBN == isbn {
			count++
		}
	}

	return count, nil
}

func (s *Store) CountJournalEntries(ctx context.Context, eventType string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if eventType == "" {
		return len(s.journal), nil
	}

	count := 0
	for _, event := range s.journal {
		if event.EventType == eventType {
			count++
		}
	}

	return count, nil
}

// JournalEntries returns a copy of everything journaled so far, oldest first.
func (s *Store) JournalEntries() []librarystore.StorableEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.journal)
}

/***** writes *****/

func (s *Store) InsertBook(ctx context.Context, book core.Book, event librarystore.StorableEvent) error {
	return s.write(ctx, func() error {
		if _, exists := s.books[book.ID]; exists {
			return librarystore.ErrBookAlreadyExists
		}

		s.books[book.ID] = book
		s.journal = append(s.journal, event)

		return nil
	})
}

func (s *Store) DeleteBook(ctx context.Context, id uuid.UUID, event librarystore.StorableEvent) error {
	return s.write(ctx, func() error {
		if _, exists := s.books[id]; !exists {
			return core.ErrBookNotFound
		}

		for _, loan := range s.loans {
			if loan.BookID == id {
				return librarystore.ErrBookHasLoans
			}
		}

		delete(s.books, id)
		s.journal = append(s.journal, event)

		return nil
	})
}

// SaveLoan fails with librarystore.ErrConcurrencyConflict unless the stored book is still available.
func (s *Store) SaveLoan(ctx context.Context, loan core.Loan, book core.Book, event librarystore.StorableEvent) error {
	return s.write(ctx, func() error {
		stored, exists := s.books[book.ID]
		if !exists || !stored.IsAvailable {
			return librarystore.ErrConcurrencyConflict
		}

		for _, other := range s.loans {
			if other.BookID == loan.BookID && !other.IsReturned() {
				return librarystore.ErrConcurrencyConflict
			}
		}

		stored.IsAvailable = false
		s.books[book.ID] = stored
		s.loans[loan.ID] = copyLoan(loan)
		s.journal = append(s.journal, event)

		return nil
	})
}

// SaveReturn fails with librarystore.ErrConcurrencyConflict unless the stored loan is open
// and its book is lent. Nothing changes on failure.
func (s *Store) SaveReturn(ctx context.Context, loan core.Loan, book core.Book, event librarystore.StorableEvent) error {
	if loan.ReturnDate == nil {
		return errors.Join(librarystore.ErrBuildingQueryFailed, errLoanNotReturned)
	}

	return s.write(ctx, func() error {
		storedLoan, loanExists := s.loans[loan.ID]
		if !loanExists || storedLoan.IsReturned() {
			return librarystore.ErrConcurrencyConflict
		}

		storedBook, bookExists := s.books[book.ID]
		if !bookExists || storedBook.IsAvailable {
			return librarystore.ErrConcurrencyConflict
		}

		storedLoan.ReturnDate = loan.ReturnDate
		storedLoan.PaidAmount = loan.PaidAmount
		s.loans[loan.ID] = copyLoan(storedLoan)

		storedBook.QualityState = book.QualityState
		storedBook.IsAvailable = true
		s.books[book.ID] = storedBook

		s.journal = append(s.journal, event)

		return nil
	})
}

// write applies mutate under the write lock. A context canceled before the change is applied aborts it.
func (s *Store) write(ctx context.Context, mutate func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return mutate()
}

/***** helpers *****/

// precedesForReturn orders open loans first, then by latest return and loan date.
func precedesForReturn(candidate, current core.Loan) bool {
	if candidate.IsReturned() != current.IsReturned() {
		return !candidate.IsReturned()
	}

	if candidate.IsReturned() && !candidate.ReturnDate.Equal(*current.ReturnDate) {
		return candidate.ReturnDate.After(*current.ReturnDate)
	}

	return candidate.LoanDate.After(current.LoanDate)
}

func matchesBookFilter(book core.Book, filter librarystore.BookFilter) bool {
	if title := filter.TitleContains(); title != "" &&
		!strings.Contains(strings.ToLower(book.Metadata.Title), strings.ToLower(title)) {
		return false
	}

	if quality, ok := filter.QualityState(); ok && book.QualityState != quality {
		return false
	}

	if available, ok := filter.IsAvailable(); ok && book.IsAvailable != available {
		return false
	}

	return true
}

func matchesLoanFilter(loan core.Loan, filter librarystore.LoanFilter) bool {
	if userID, ok := filter.UserID(); ok && loan.UserID != userID {
		return false
	}

	if bookID, ok := filter.BookID(); ok && loan.BookID != bookID {
		return false
	}

	if from, until, ok := filter.LoanDateRange(); ok && (loan.LoanDate.Before(from) || !loan.LoanDate.Before(until)) {
		return false
	}

	if returned, ok := filter.IsReturned(); ok && loan.IsReturned() != returned {
		return false
	}

	return true
}

func compareBooks(field librarystore.SortField, a, b core.Book) int {
	switch field {
	case librarystore.SortBooksByTitle:
		return strings.Compare(a.Metadata.Title, b.Metadata.Title)
	case librarystore.SortBooksByCreationDate:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return strings.Compare(a.ID.String(), b.ID.String())
	}
}

// compareLoans sorts missing return dates after present ones in ascending order, like Postgres does with NULLs.
func compareLoans(sort librarystore.Sort, a, b core.Loan) int {
	switch sort.Field {
	case librarystore.SortLoansByLoanDate:
		return a.LoanDate.Compare(b.LoanDate)
	case librarystore.SortLoansByReturnDate:
		return compareReturnDates(a.ReturnDate, b.ReturnDate)
	default:
		return strings.Compare(a.ID.String(), b.ID.String())
	}
}

func compareReturnDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// orderedBy applies the direction to the primary comparison and breaks ties by ascending id.
func orderedBy(sort librarystore.Sort, primary int, aID, bID uuid.UUID) int {
	if sort.IsDescending() {
		primary = -primary
	}

	return cmp.Or(primary, strings.Compare(aID.String(), bID.String()))
}

func pageOf[T any](items []T, paging librarystore.Paging) librarystore.Page[T] {
	start := min(paging.Offset(), len(items))
	end := min(start+paging.Size, len(items))

	return librarystore.Page[T]{
		Items:      items[start:end],
		TotalItems: len(items),
		PageNumber: paging.Number,
		PageSize:   paging.Size,
	}
}

func copyLoan(loan core.Loan) core.Loan {
	if loan.ReturnDate != nil {
		returnDate := *loan.ReturnDate
		loan.ReturnDate = &returnDate
	}

	return loan
}
