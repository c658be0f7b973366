package postgresengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/equilobe/library-go/librarystore"
)

func Test_TableNameOptions_RejectEmptyNames(t *testing.T) {
	for name, option := range map[string]Option{
		"books":   WithBooksTableName(""),
		"loans":   WithLoansTableName(""),
		"journal": WithJournalTableName(""),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := newStore(&fakeDB{}, option)

			assert.ErrorIs(t, err, librarystore.ErrEmptyTableName)
		})
	}
}

func Test_TableNameOptions_OverrideDefaults(t *testing.T) {
	store := givenStore(t,
		WithBooksTableName("catalogue"),
		WithLoansTableName("lendings"),
		WithJournalTableName("audit"),
	)

	assert.Equal(t, "catalogue", store.booksTableName)
	assert.Equal(t, "lendings", store.loansTableName)
	assert.Equal(t, "audit", store.journalTableName)
}
