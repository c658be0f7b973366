package removebook_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/features/command/removebook"
	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	. "github.com/equilobe/library-go/testutil/helper" //nolint:revive
	"github.com/equilobe/library-go/testutil/memorystore"
)

func givenBookInStore(t *testing.T, store *memorystore.Store) core.Book {
	t.Helper()

	book := FixtureBook(t, GivenUniqueID(t), "20", time.Now())
	event, err := shell.StorableEventWithEmptyMetadataFrom(core.BuildBookAdded(book))
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, store.InsertBook(t.Context(), book, event), "error in arranging test data")

	return book
}

func givenLoanInStore(t *testing.T, store *memorystore.Store, book core.Book) core.Loan {
	t.Helper()

	loan := FixtureOpenLoan(t, book.ID, GivenUniqueID(t), time.Now(), time.Now().Add(core.DefaultLoanPeriod))
	require.NoError(t, book.Lend(), "error in arranging test data")
	event, err := shell.StorableEventWithEmptyMetadataFrom(core.BuildBookLent(loan))
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, store.SaveLoan(t.Context(), loan, book, event), "error in arranging test data")

	return loan
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	store := memorystore.New()
	book := givenBookInStore(t, store)
	publisher := NewPublisherSpy()
	handler := removebook.NewCommandHandler(store, removebook.WithPublisher(publisher, notify.Observers{}))

	// act
	_, err := handler.Handle(t.Context(), removebook.BuildCommand(book.ID))

	// assert
	require.NoError(t, err)
	_, err = store.FindBookByID(t.Context(), book.ID)
	assert.ErrorIs(t, err, core.ErrBookNotFound)
	require.Len(t, publisher.GetEvents(), 1)
	assert.Equal(t, core.BookRemovedEventType, publisher.GetEvents()[0].EventType())
}

func Test_CommandHandler_Handle_Errors(t *testing.T) {
	// arrange
	store := memorystore.New()
	lent := givenBookInStore(t, store)
	givenLoanInStore(t, store, lent)

	returned := givenBookInStore(t, store)
	loan := givenLoanInStore(t, store, returned)
	returnedEvent, err := loan.ReturnBook(core.QualityGood, time.Now(), decimal.Zero)
	require.NoError(t, err, "error in arranging test data")
	event, err := shell.StorableEventWithEmptyMetadataFrom(returnedEvent)
	require.NoError(t, err, "error in arranging test data")
	returned.ReturnBook(core.QualityGood)
	require.NoError(t, store.SaveReturn(t.Context(), loan, returned, event), "error in arranging test data")

	handler := removebook.NewCommandHandler(store, removebook.WithRetryOptions(shell.WithMaxAttempts(1)))

	testCases := []struct {
		name    string
		command removebook.Command
		wantErr error
	}{
		{"lent book", removebook.BuildCommand(lent.ID), core.ErrBookNotAvailable},
		{"book with loan history", removebook.BuildCommand(returned.ID), core.ErrConflict},
		{"unknown book", removebook.BuildCommand(GivenUniqueID(t)), core.ErrBookNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := handler.Handle(t.Context(), tc.command)

			// assert
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	count, err := store.CountJournalEntries(t.Context(), core.BookRemovedEventType)
	require.NoError(t, err)
	assert.Zero(t, count)
}
