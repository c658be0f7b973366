package books_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/features/query/books"
	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/librarystore"
	. "github.com/equilobe/library-go/testutil/helper" //nolint:revive
	"github.com/equilobe/library-go/testutil/memorystore"
)

func givenBooksInStore(t *testing.T, store *memorystore.Store, titles ...string) []core.Book {
	t.Helper()

	added := make([]core.Book, 0, len(titles))
	for i, title := range titles {
		book := FixtureBook(t, GivenUniqueID(t), "20", time.Now().Add(time.Duration(i)*time.Minute))
		book.Metadata.Title = title
		event, err := shell.StorableEventWithEmptyMetadataFrom(core.BuildBookAdded(book))
		require.NoError(t, err, "error in arranging test data")
		require.NoError(t, store.InsertBook(t.Context(), book, event), "error in arranging test data")
		added = append(added, book)
	}

	return added
}

func Test_QueryHandler_Handle_DefaultsToFirstPageByID(t *testing.T) {
	// arrange
	store := memorystore.New()
	givenBooksInStore(t, store, "Refactoring", "Domain-Driven Design", "Working Effectively with Legacy Code")

	// act
	result, err := books.NewQueryHandler(store).Handle(t.Context(), books.Query{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.ItemCount())
	assert.Equal(t, 3, result.TotalItems)
	assert.Equal(t, librarystore.DefaultPageNumber, result.PageNumber)
	assert.Equal(t, librarystore.DefaultPageSize, result.PageSize)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNextPage)
	assert.IsIncreasing(t, []string{result.Books[0].ID, result.Books[1].ID, result.Books[2].ID})
	assert.Equal(t, "20.00 RON", result.Books[0].RentPrice)
}

func Test_QueryHandler_Handle_FiltersAndSorts(t *testing.T) {
	// arrange
	store := memorystore.New()
	givenBooksInStore(t, store, "Go in Action", "Learning Go", "Rust in Action")
	available := true

	query := books.Query{
		TitleContains: "GO",
		QualityState:  "new",
		OnlyAvailable: &available,
		SortBy:        "Title",
		SortDirection: "DESC",
		PageSize:      1,
	}

	// act
	result, err := books.NewQueryHandler(store).Handle(t.Context(), query)

	// assert
	require.NoError(t, err)
	require.Len(t, result.Books, 1)
	assert.Equal(t, "Learning Go", result.Books[0].Title)
	assert.Equal(t, 2, result.TotalItems)
	assert.True(t, result.HasNextPage)
}

func Test_QueryHandler_Handle_RejectsInvalidQueries(t *testing.T) {
	testCases := []struct {
		name  string
		query books.Query
	}{
		{"unknown quality", books.Query{QualityState: "shredded"}},
		{"unknown sort field", books.Query{SortBy: "author"}},
		{"unknown sort direction", books.Query{SortDirection: "up"}},
		{"negative page", books.Query{PageNumber: -1}},
		{"page too large", books.Query{PageSize: 101}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := books.NewQueryHandler(memorystore.New()).Handle(t.Context(), tc.query)

			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}
