package postgresengine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
	"github.com/equilobe/library-go/testutil/helper"
)

var fixedCreatedAt = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

func givenBookRow(id uuid.UUID, quality int, available bool) []any {
	return []any{
		id.String(), "Learning Domain-Driven Design", "Vlad", "Khononov", "978-1-098-10013-1",
		"20.00", "RON", quality, available, fixedCreatedAt,
	}
}

func givenLoanRow(id, bookID, userID uuid.UUID, returnDate *time.Time, paid string) []any {
	return []any{
		id.String(), bookID.String(), userID.String(),
		fixedCreatedAt, fixedCreatedAt.Add(14 * 24 * time.Hour),
		returnDate, paid, "RON",
	}
}

func Test_FindBookByID_ConvertsRow(t *testing.T) {
	// arrange
	bookID := helper.GivenUniqueID(t)
	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{
		{rows: [][]any{givenBookRow(bookID, core.QualityFair.Ordinal(), false)}},
	}})

	// act
	book, err := subject.store.FindBookByID(t.Context(), bookID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, bookID, book.ID)
	assert.Equal(t, "Khononov", book.Metadata.Author.LastName)
	assert.True(t, book.RentPrice.Equal(core.Money{Amount: decimal.RequireFromString("20"), Currency: core.CurrencyRON}))
	assert.Equal(t, core.QualityFair, book.QualityState)
	assert.False(t, book.IsAvailable)
	assert.Equal(t, fixedCreatedAt, book.CreatedAt)

	assert.True(t, subject.logs.HasInfoLogWithMessage("librarystore operation: query completed").
		WithRowCount().
		WithDurationMS().
		Assert())
	assert.True(t, subject.metrics.HasDurationRecordForMetric(metricReadDuration).
		WithOperation(operationFindBook).
		WithStatus(statusSuccess).
		Assert())
	assert.True(t, subject.metrics.HasValueRecordForMetric(metricRowsRead).WithValue(1).Assert())
	assert.True(t, subject.tracing.HasSpanRecordForName(spanNamePrefix+operationFindBook).
		WithStatus(statusSuccess).
		WithStartAttribute(spanAttrAction, logActionRead).
		Assert())
}

func Test_FindBookByID_UnknownIDIsBookNotFound(t *testing.T) {
	subject := givenObservedStore(t, &fakeDB{})

	_, err := subject.store.FindBookByID(t.Context(), helper.GivenUniqueID(t))

	assert.ErrorIs(t, err, core.ErrBookNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_FindBookByID_RejectsUnknownStoredQuality(t *testing.T) {
	// arrange
	bookID := helper.GivenUniqueID(t)
	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{
		{rows: [][]any{givenBookRow(bookID, 42, true)}},
	}})

	// act
	_, err := subject.store.FindBookByID(t.Context(), bookID)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrScanningDBRowFailed)
	assert.ErrorIs(t, err, core.ErrUnknownQualityState)
	assert.True(t, subject.metrics.HasCounterRecordForMetric(metricDatabaseErrors).
		WithOperation(operationFindBook).
		WithErrorType(errorTypeRowScan).
		Assert())
}

func Test_FindBookByID_QueryFailure(t *testing.T) {
	// arrange
	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{{err: errFakeDB}}})

	// act
	_, err := subject.store.FindBookByID(t.Context(), helper.GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrQueryingFailed)
	assert.ErrorIs(t, err, errFakeDB)
	assert.True(t, subject.logs.HasErrorLogWithMessage(logMsgDBQueryFailed).
		WithAttribute(logAttrOperation, operationFindBook).
		Assert())
	assert.True(t, subject.tracing.HasSpanRecordForName(spanNamePrefix+operationFindBook).
		WithStatus(statusError).
		WithEndAttribute(spanAttrErrorType, errorTypeDatabaseQuery).
		Assert())
}

func Test_FindLoanByBookID(t *testing.T) {
	// arrange
	bookID := helper.GivenUniqueID(t)
	loanID := helper.GivenUniqueID(t)
	userID := helper.GivenUniqueID(t)
	returnedAt := fixedCreatedAt.Add(20 * 24 * time.Hour)

	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{
		{rows: [][]any{givenLoanRow(loanID, bookID, userID, &returnedAt, "1.20")}},
		{},
	}})

	// act
	loan, err := subject.store.FindLoanByBookID(t.Context(), bookID)
	_, missingErr := subject.store.FindLoanByBookID(t.Context(), helper.GivenUniqueID(t))

	// assert
	require.NoError(t, err)
	assert.Equal(t, loanID, loan.ID)
	assert.Equal(t, userID, loan.UserID)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, returnedAt, *loan.ReturnDate)
	assert.Equal(t, core.LoanStatusReturned, loan.Status())
	assert.True(t, loan.PaidAmount.Amount.Equal(decimal.RequireFromString("1.2")))

	assert.ErrorIs(t, missingErr, core.ErrLoanNotFound)

	require.Len(t, subject.db.queries, 2)
	assert.Contains(t, subject.db.queries[0], `"return_date" DESC NULLS FIRST`)
}

func Test_QueryBooks_CountsThenPages(t *testing.T) {
	// arrange
	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{
		{rows: [][]any{{int64(12)}}},
		{rows: [][]any{
			givenBookRow(helper.GivenUniqueID(t), core.QualityNew.Ordinal(), true),
			givenBookRow(helper.GivenUniqueID(t), core.QualityGood.Ordinal(), true),
		}},
	}})

	filter, err := librarystore.BuildBookFilter().OnlyAvailable(true).OnPage(2, 10).Finalize()
	require.NoError(t, err, "error in arranging test data")

	// act
	page, err := subject.store.QueryBooks(t.Context(), filter)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalItems)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.PageNumber)
	assert.False(t, page.HasNextPage())

	require.Len(t, subject.db.queries, 2)
	assert.Contains(t, subject.db.queries[0], "COUNT(*)")
	assert.Contains(t, subject.db.queries[1], "OFFSET 10")
	assert.Equal(t, 1, subject.tracing.CountSpanRecordsForName(spanNamePrefix+operationCountBooks))
	assert.Equal(t, 1, subject.tracing.CountSpanRecordsForName(spanNamePrefix+operationQueryBooks))
}

func Test_QueryLoans_StopsWhenCountFails(t *testing.T) {
	// arrange
	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{{err: errFakeDB}}})

	filter, err := librarystore.BuildLoanFilter().Finalize()
	require.NoError(t, err, "error in arranging test data")

	// act
	_, err = subject.store.QueryLoans(t.Context(), filter)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrQueryingFailed)
	assert.Len(t, subject.db.queries, 1)
}

func Test_FindBooksByIDs(t *testing.T) {
	t.Run("no ids runs no query", func(t *testing.T) {
		subject := givenObservedStore(t, &fakeDB{})

		books, err := subject.store.FindBooksByIDs(t.Context(), nil)

		require.NoError(t, err)
		assert.Empty(t, books)
		assert.Empty(t, subject.db.queries)
	})

	t.Run("unknown ids are missing from the result", func(t *testing.T) {
		// arrange
		known := helper.GivenUniqueID(t)
		unknown := helper.GivenUniqueID(t)
		subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{
			{rows: [][]any{givenBookRow(known, core.QualityNew.Ordinal(), true)}},
		}})

		// act
		books, err := subject.store.FindBooksByIDs(t.Context(), []uuid.UUID{known, unknown})

		// assert
		require.NoError(t, err)
		assert.Contains(t, books, known)
		assert.NotContains(t, books, unknown)
	})
}

func Test_CountAvailableBooksByISBN(t *testing.T) {
	// arrange
	subject := givenObservedStore(t, &fakeDB{queryResults: []fakeQuery{{rows: [][]any{{int64(3)}}}}})

	// act
	count, err := subject.store.CountAvailableBooksByISBN(t.Context(), " 978-1-098-10013-1 ")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, subject.db.queries, 1)
	assert.Contains(t, subject.db.queries[0], `"isbn" = '978-1-098-10013-1'`)
}

func Test_Read_WithoutObservabilityStillWorks(t *testing.T) {
	// arrange
	store, err := newStore(&fakeDB{queryResults: []fakeQuery{{rows: [][]any{{int64(7)}}}}})
	require.NoError(t, err, "error in arranging test data")

	// act
	count, err := store.CountJournalEntries(t.Context(), core.BookReturnedEventType)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
