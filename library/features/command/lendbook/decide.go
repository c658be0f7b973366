package lendbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
)

// Decision carries the new loan and the lent book for a successful decision.
type Decision struct {
	core.DecisionResult
	Loan core.Loan
	Book core.Book
}

// Decide lends a book. currentLoan is the book's open or latest loan, nil if it was never lent.
//
// Business Rules:
//
//	GIVEN: a book and its current loan
//	WHEN: LendBook command is received
//	THEN: a new loan is opened, the book becomes unavailable, BookLent is raised
//	ERROR: core.ErrBookNotAvailable if the book is lent to another user
//	ERROR: core.ErrDueDateBeforeLoanDate if the due date lies before now
//	IDEMPOTENCY: if the book is already lent to this user, nothing happens
func Decide(book core.Book, currentLoan *core.Loan, command Command, loanID uuid.UUID, now time.Time) Decision {
	if !book.IsAvailable {
		if currentLoan != nil && !currentLoan.IsReturned() && currentLoan.UserID == command.UserID {
			return Decision{DecisionResult: core.IdempotentDecision()}
		}

		return Decision{DecisionResult: core.ErrorDecision(core.ErrBookNotAvailable)}
	}

	loan, err := core.NewLoan(loanID, book.ID, command.UserID, now, command.DueDate)
	if err != nil {
		return Decision{DecisionResult: core.ErrorDecision(err)}
	}

	if err = book.Lend(); err != nil {
		return Decision{DecisionResult: core.ErrorDecision(err)}
	}

	return Decision{
		DecisionResult: core.SuccessDecision(core.BuildBookLent(loan)),
		Loan:           loan,
		Book:           book,
	}
}
