package shell

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

func Test_StatusFor(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "no error", err: nil, want: StatusSuccess},
		{name: "canceled", err: fmt.Errorf("query: %w", context.Canceled), want: StatusCanceled},
		{name: "timeout", err: context.DeadlineExceeded, want: StatusTimeout},
		{name: "canceled while retrying a conflict", err: errors.Join(librarystore.ErrConcurrencyConflict, context.Canceled), want: StatusCanceled},
		{name: "conflict", err: librarystore.ErrConcurrencyConflict, want: StatusConcurrencyConflict},
		{name: "loan not found", err: core.ErrLoanNotFound, want: StatusRejected},
		{name: "double return", err: core.ErrLoanAlreadyReturned, want: StatusRejected},
		{name: "invalid input", err: core.ErrUnknownQualityState, want: StatusRejected},
		{name: "book lent out", err: core.ErrBookNotAvailable, want: StatusRejected},
		{name: "duplicate book", err: librarystore.ErrBookAlreadyExists, want: StatusRejected},
		{name: "infrastructure failure", err: errors.Join(librarystore.ErrQueryingFailed, errors.New("connection reset")), want: StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}
