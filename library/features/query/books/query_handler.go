package books

import (
	"cmp"
	"context"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/librarystore"
)

// Store defines the store operation the QueryHandler needs.
type Store interface {
	QueryBooks(ctx context.Context, filter librarystore.BookFilter) (librarystore.Page[core.Book], error)
}

// QueryHandler runs Validate -> Filter -> QueryBooks -> Project.
type QueryHandler struct {
	store Store
}

func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	if err := shell.ValidateQuery(query); err != nil {
		return Result{}, err
	}

	filter, err := buildFilter(query)
	if err != nil {
		return Result{}, err
	}

	page, err := h.store.QueryBooks(librarystore.WithEventualConsistency(ctx), filter)
	if err != nil {
		return Result{}, err
	}

	return ProjectResult(page), nil
}

func buildFilter(query Query) (librarystore.BookFilter, error) {
	builder := librarystore.BuildBookFilter().
		TitleContaining(query.TitleContains).
		SortedBy(query.SortBy, query.SortDirection).
		OnPage(
			cmp.Or(query.PageNumber, librarystore.DefaultPageNumber),
			cmp.Or(query.PageSize, librarystore.DefaultPageSize),
		)

	if query.QualityState != "" {
		quality, err := core.ParseQualityState(query.QualityState)
		if err != nil {
			return librarystore.BookFilter{}, err
		}

		builder.WithQualityState(quality)
	}

	if query.OnlyAvailable != nil {
		builder.OnlyAvailable(*query.OnlyAvailable)
	}

	return builder.Finalize()
}
