package removebook

import (
	"time"

	"github.com/equilobe/library-go/library/shared/core"
)

// Decide removes a book.
//
//	THEN: BookRemoved is raised
//	ERROR: core.ErrBookNotAvailable if the book is currently lent
func Decide(book core.Book, now time.Time) core.DecisionResult {
	if !book.IsAvailable {
		return core.ErrorDecision(core.ErrBookNotAvailable)
	}

	return core.SuccessDecision(core.BuildBookRemoved(book.ID, now))
}
