package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/core"
)

// GivenUniqueID returns a fresh time-ordered id.
func GivenUniqueID(t testing.TB) uuid.UUID {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureBookMetadata returns the metadata used by most tests.
func FixtureBookMetadata() core.BookMetadata {
	return core.BookMetadata{
		Title:  "Learning Domain-Driven Design",
		Author: core.Author{FirstName: "Vlad", LastName: "Khononov"},
		ISBN:   "978-1-098-10013-1",
	}
}

// FixtureBook returns a new, available book renting for rentAmount RON.
func FixtureBook(t testing.TB, bookID uuid.UUID, rentAmount string, createdAt time.Time) core.Book {
	t.Helper()

	price, err := core.NewMoney(decimal.RequireFromString(rentAmount), core.CurrencyRON)
	require.NoError(t, err, "error in arranging test data")

	book, err := core.NewBook(bookID, FixtureBookMetadata(), price, createdAt)
	require.NoError(t, err, "error in arranging test data")

	return book
}

// FixtureLentBook returns a book that is currently lent out.
func FixtureLentBook(t testing.TB, bookID uuid.UUID, rentAmount string, createdAt time.Time) core.Book {
	t.Helper()

	book := FixtureBook(t, bookID, rentAmount, createdAt)
	require.NoError(t, book.Lend(), "error in arranging test data")

	return book
}

// FixtureOpenLoan returns an open loan of bookID with the given due date.
func FixtureOpenLoan(t testing.TB, bookID, userID uuid.UUID, loanDate, dueDate time.Time) core.Loan {
	t.Helper()

	loan, err := core.NewLoan(GivenUniqueID(t), bookID, userID, loanDate, &dueDate)
	require.NoError(t, err, "error in arranging test data")

	return loan
}
