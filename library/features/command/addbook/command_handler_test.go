package addbook_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/features/command/addbook"
	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	. "github.com/equilobe/library-go/testutil/helper" //nolint:revive
	"github.com/equilobe/library-go/testutil/memorystore"
)

var fakeNow = time.Date(2025, 1, 20, 8, 30, 0, 0, time.UTC)

func givenCommand(t *testing.T) addbook.Command {
	t.Helper()

	return addbook.BuildCommand(
		GivenUniqueID(t),
		"Learning Domain-Driven Design",
		"Vlad",
		"Khononov",
		"978-1-098-10013-1",
		decimal.RequireFromString("24.50"),
		core.CurrencyRON,
	)
}

func newHandler(store addbook.Store, publisher notify.Publisher) addbook.CommandHandler {
	return addbook.NewCommandHandler(store,
		addbook.WithClock(func() time.Time { return fakeNow }),
		addbook.WithPublisher(publisher, notify.Observers{}),
		addbook.WithRetryOptions(shell.WithBaseDelay(0)),
	)
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	store := memorystore.New()
	publisher := NewPublisherSpy()
	command := givenCommand(t)

	// act
	result, err := newHandler(store, publisher).Handle(t.Context(), command)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	book, err := store.FindBookByID(t.Context(), command.BookID)
	require.NoError(t, err)
	assert.True(t, book.IsAvailable)
	assert.Equal(t, core.QualityNew, book.QualityState)
	assert.Equal(t, "Vlad Khononov", book.Metadata.Author.FullName())
	assert.Equal(t, "24.50 RON", book.RentPrice.String())
	assert.Equal(t, fakeNow, book.CreatedAt)

	require.Len(t, publisher.GetEvents(), 1)
	assert.Equal(t, core.BookAddedEventType, publisher.GetEvents()[0].EventType())
}

func Test_CommandHandler_Handle_ExistingBookIsIdempotent(t *testing.T) {
	// arrange
	store := memorystore.New()
	publisher := NewPublisherSpy()
	handler := newHandler(store, publisher)
	command := givenCommand(t)

	_, err := handler.Handle(t.Context(), command)
	require.NoError(t, err, "error in arranging test data")

	// act
	result, err := handler.Handle(t.Context(), command)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Len(t, publisher.GetEvents(), 1)
}

func Test_CommandHandler_Handle_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(command *addbook.Command)
		wantErr error
	}{
		{"blank title", func(c *addbook.Command) { c.Title = "  " }, core.ErrInvalidBookMetadata},
		{"blank isbn", func(c *addbook.Command) { c.ISBN = "" }, core.ErrInvalidBookMetadata},
		{"negative rent", func(c *addbook.Command) { c.RentAmount = decimal.NewFromInt(-1) }, core.ErrNegativeAmount},
		{"unknown currency", func(c *addbook.Command) { c.Currency = "XYZ" }, core.ErrUnknownCurrency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			store := memorystore.New()
			command := givenCommand(t)
			tc.modify(&command)

			// act
			_, err := newHandler(store, notify.Nop{}).Handle(t.Context(), command)

			// assert
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Empty(t, store.JournalEntries())
		})
	}
}
