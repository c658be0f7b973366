package memorystore_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
	"github.com/equilobe/library-go/testutil/helper"
	"github.com/equilobe/library-go/testutil/memorystore"
)

func givenStorableEvent(t *testing.T, eventType string) librarystore.StorableEvent {
	t.Helper()

	event, err := librarystore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(`{}`))
	require.NoError(t, err, "error in arranging test data")

	return event
}

func givenBookInStore(t *testing.T, store *memorystore.Store, title string) core.Book {
	t.Helper()

	book := helper.FixtureBook(t, helper.GivenUniqueID(t), "20", time.Now())
	book.Metadata.Title = title
	require.NoError(t, store.InsertBook(t.Context(), book, givenStorableEvent(t, core.BookAddedEventType)), "error in arranging test data")

	return book
}

func givenLoanInStore(t *testing.T, store *memorystore.Store, book core.Book, loanDate time.Time) core.Loan {
	t.Helper()

	loan := helper.FixtureOpenLoan(t, book.ID, helper.GivenUniqueID(t), loanDate, loanDate.Add(core.DefaultLoanPeriod))
	require.NoError(t, book.Lend(), "error in arranging test data")
	require.NoError(t, store.SaveLoan(t.Context(), loan, book, givenStorableEvent(t, core.BookLentEventType)), "error in arranging test data")

	return loan
}

func Test_SaveReturn_IsGuardedAgainstSecondReturn(t *testing.T) {
	// arrange
	store := memorystore.New()
	book := givenBookInStore(t, store, "Refactoring")
	loan := givenLoanInStore(t, store, book, time.Now())

	_, err := loan.ReturnBook(core.QualityFair, time.Now(), decimal.RequireFromString("1.5"))
	require.NoError(t, err, "error in arranging test data")
	book.ReturnBook(core.QualityFair)

	// act
	firstErr := store.SaveReturn(t.Context(), loan, book, givenStorableEvent(t, core.BookReturnedEventType))
	secondErr := store.SaveReturn(t.Context(), loan, book, givenStorableEvent(t, core.BookReturnedEventType))

	// assert
	require.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, librarystore.ErrConcurrencyConflict)

	stored, err := store.FindBookByID(t.Context(), book.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)
	assert.Equal(t, core.QualityFair, stored.QualityState)

	count, err := store.CountJournalEntries(t.Context(), core.BookReturnedEventType)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_SaveReturn_RejectsOpenLoan(t *testing.T) {
	store := memorystore.New()
	book := givenBookInStore(t, store, "Refactoring")
	loan := givenLoanInStore(t, store, book, time.Now())

	err := store.SaveReturn(t.Context(), loan, book, givenStorableEvent(t, core.BookReturnedEventType))

	assert.ErrorIs(t, err, librarystore.ErrBuildingQueryFailed)
}

func Test_SaveLoan_OnlyLendsAvailableBooks(t *testing.T) {
	// arrange
	store := memorystore.New()
	book := givenBookInStore(t, store, "Refactoring")
	givenLoanInStore(t, store, book, time.Now())

	second := helper.FixtureOpenLoan(t, book.ID, helper.GivenUniqueID(t), time.Now(), time.Now().Add(time.Hour))

	// act
	err := store.SaveLoan(t.Context(), second, book, givenStorableEvent(t, core.BookLentEventType))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrConcurrencyConflict)
}

func Test_FindLoanByBookID_PrefersOpenLoan(t *testing.T) {
	// arrange
	store := memorystore.New()
	book := givenBookInStore(t, store, "Refactoring")

	old := givenLoanInStore(t, store, book, time.Now().Add(-48*time.Hour))
	_, err := old.ReturnBook(core.QualityNew, time.Now().Add(-24*time.Hour), decimal.Zero)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, book.Lend(), "error in arranging test data")
	book.ReturnBook(core.QualityNew)
	require.NoError(t, store.SaveReturn(t.Context(), old, book, givenStorableEvent(t, core.BookReturnedEventType)), "error in arranging test data")

	current := givenLoanInStore(t, store, book, time.Now())

	// act
	found, err := store.FindLoanByBookID(t.Context(), book.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, current.ID, found.ID)
	assert.False(t, found.IsReturned())
}

func Test_FindLoanByBookID_NotFound(t *testing.T) {
	_, err := memorystore.New().FindLoanByBookID(t.Context(), helper.GivenUniqueID(t))

	assert.ErrorIs(t, err, core.ErrLoanNotFound)
}

func Test_DeleteBook(t *testing.T) {
	// arrange
	store := memorystore.New()
	lent := givenBookInStore(t, store, "Refactoring")
	givenLoanInStore(t, store, lent, time.Now())
	free := givenBookInStore(t, store, "Patterns")

	// act
	lentErr := store.DeleteBook(t.Context(), lent.ID, givenStorableEvent(t, core.BookRemovedEventType))
	freeErr := store.DeleteBook(t.Context(), free.ID, givenStorableEvent(t, core.BookRemovedEventType))
	missingErr := store.DeleteBook(t.Context(), free.ID, givenStorableEvent(t, core.BookRemovedEventType))

	// assert
	assert.ErrorIs(t, lentErr, librarystore.ErrBookHasLoans)
	assert.NoError(t, freeErr)
	assert.ErrorIs(t, missingErr, core.ErrBookNotFound)
}

func Test_QueryBooks_FiltersSortsAndPages(t *testing.T) {
	// arrange
	store := memorystore.New()
	givenBookInStore(t, store, "Go in Action")
	givenBookInStore(t, store, "Learning Go")
	givenBookInStore(t, store, "Rust in Action")
	lent := givenBookInStore(t, store, "The Go Programming Language")
	givenLoanInStore(t, store, lent, time.Now())

	filter, err := librarystore.BuildBookFilter().
		TitleContaining("go").
		OnlyAvailable(true).
		SortedBy(librarystore.SortBooksByTitle, librarystore.Descending).
		OnPage(1, 1).
		Finalize()
	require.NoError(t, err, "error in arranging test data")

	// act
	page, err := store.QueryBooks(t.Context(), filter)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Learning Go", page.Items[0].Metadata.Title)
	assert.True(t, page.HasNextPage())
}

func Test_QueryBooks_PageBeyondEndIsEmpty(t *testing.T) {
	store := memorystore.New()
	givenBookInStore(t, store, "Refactoring")

	filter, err := librarystore.BuildBookFilter().OnPage(3, 10).Finalize()
	require.NoError(t, err, "error in arranging test data")

	page, err := store.QueryBooks(t.Context(), filter)

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalItems)
}

func Test_QueryLoans_SortsOpenLoansLastByReturnDate(t *testing.T) {
	// arrange
	store := memorystore.New()
	first := givenBookInStore(t, store, "Refactoring")
	second := givenBookInStore(t, store, "Patterns")

	returned := givenLoanInStore(t, store, first, time.Now().Add(-time.Hour))
	_, err := returned.ReturnBook(core.QualityNew, time.Now(), decimal.Zero)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, first.Lend(), "error in arranging test data")
	first.ReturnBook(core.QualityNew)
	require.NoError(t, store.SaveReturn(t.Context(), returned, first, givenStorableEvent(t, core.BookReturnedEventType)), "error in arranging test data")

	open := givenLoanInStore(t, store, second, time.Now())

	filter, err := librarystore.BuildLoanFilter().SortedBy(librarystore.SortLoansByReturnDate, librarystore.Ascending).Finalize()
	require.NoError(t, err, "error in arranging test data")

	// act
	page, err := store.QueryLoans(t.Context(), filter)

	// assert
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, returned.ID, page.Items[0].ID)
	assert.Equal(t, open.ID, page.Items[1].ID)
}

func Test_CountAvailableBooksByISBN(t *testing.T) {
	store := memorystore.New()
	givenBookInStore(t, store, "Refactoring")
	lent := givenBookInStore(t, store, "Refactoring")
	givenLoanInStore(t, store, lent, time.Now())

	count, err := store.CountAvailableBooksByISBN(t.Context(), " "+helper.FixtureBookMetadata().ISBN+" ")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_Writes_StopOnCanceledContext(t *testing.T) {
	store := memorystore.New()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	book := helper.FixtureBook(t, helper.GivenUniqueID(t), "20", time.Now())
	err := store.InsertBook(ctx, book, givenStorableEvent(t, core.BookAddedEventType))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.JournalEntries())
}
