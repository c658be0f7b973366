package availablecopies

import (
	"context"
	"strings"

	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/librarystore"
)

type Store interface {
	CountAvailableBooksByISBN(ctx context.Context, isbn string) (int, error)
}

type QueryHandler struct {
	store Store
}

func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	query.ISBN = strings.TrimSpace(query.ISBN)

	if err := shell.ValidateQuery(query); err != nil {
		return Result{}, err
	}

	count, err := h.store.CountAvailableBooksByISBN(librarystore.WithEventualConsistency(ctx), query.ISBN)
	if err != nil {
		return Result{}, err
	}

	return Result{ISBN: query.ISBN, Count: count}, nil
}
