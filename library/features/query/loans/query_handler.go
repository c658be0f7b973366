package loans

import (
	"cmp"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/librarystore"
)

// Store defines the store operations the QueryHandler needs.
type Store interface {
	QueryLoans(ctx context.Context, filter librarystore.LoanFilter) (librarystore.Page[core.Loan], error)
	FindBooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]core.Book, error)
}

// QueryHandler runs Validate -> Filter -> QueryLoans -> FindBooksByIDs -> Project.
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

	ctx = librarystore.WithEventualConsistency(ctx)

	page, err := h.store.QueryLoans(ctx, filter)
	if err != nil {
		return Result{}, err
	}

	if !query.IncludeBookDetails {
		return ProjectResult(page, nil), nil
	}

	books, err := h.store.FindBooksByIDs(ctx, bookIDsOf(page.Items))
	if err != nil {
		return Result{}, err
	}

	return ProjectResult(page, books), nil
}

// buildFilter expects a query that passed validation.
func buildFilter(query Query) (librarystore.LoanFilter, error) {
	builder := librarystore.BuildLoanFilter().
		SortedBy(query.SortBy, query.SortDirection).
		OnPage(
			cmp.Or(query.PageNumber, librarystore.DefaultPageNumber),
			cmp.Or(query.PageSize, librarystore.DefaultPageSize),
		)

	if query.UserID != "" {
		builder.ForUser(uuid.MustParse(query.UserID))
	}

	if query.BookID != "" {
		builder.ForBook(uuid.MustParse(query.BookID))
	}

	if query.LoanDate != "" {
		day, err := time.Parse(loanDateLayout, query.LoanDate)
		if err != nil {
			return librarystore.LoanFilter{}, err
		}

		builder.LoanedOn(day)
	}

	if query.Returned != nil {
		builder.Returned(*query.Returned)
	}

	return builder.Finalize()
}

func bookIDsOf(loans []core.Loan) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(loans))
	ids := make([]uuid.UUID, 0, len(loans))

	for _, loan := range loans {
		if _, ok := seen[loan.BookID]; ok {
			continue
		}

		seen[loan.BookID] = struct{}{}
		ids = append(ids, loan.BookID)
	}

	return ids
}
