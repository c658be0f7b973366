package returnbook

import (
	"time"

	"github.com/equilobe/library-go/library/shared/core"
)

// Decision is the outcome of Decide. Loan and Book are the updated copies to persist
// and Penalty the charged amount; they are only set for a successful decision.
type Decision struct {
	core.DecisionResult
	Loan    core.Loan
	Book    core.Book
	Penalty core.Money
}

// Decide returns a book. It is pure: loan and book are passed by value and only the
// copies in the Decision are changed.
//
// Business Rules:
//
//	GIVEN: the latest loan of the book and the book itself
//	WHEN: ReturnBook command is received
//	THEN: the loan is closed with the penalty as paid amount, the book is available
//	      in the returned quality, and BookReturned is raised
//	ERROR: core.ErrLoanAlreadyReturned if the loan already has a return date
//	ERROR: core.ErrUnknownQualityState if the returned quality is not on the scale
//
// The return date is the one from the command, otherwise now. The penalty gets
// qualityDelta = ordinal(returned) - ordinal(book quality before the loan ended).
func Decide(loan core.Loan, book core.Book, command Command, policy core.PenaltyPolicy, now time.Time) Decision {
	if loan.IsReturned() {
		return Decision{DecisionResult: core.ErrorDecision(core.ErrLoanAlreadyReturned)}
	}

	if !command.Quality.IsValid() {
		return Decision{DecisionResult: core.ErrorDecision(core.ErrUnknownQualityState)}
	}

	returnDate := now
	if command.ReturnDate != nil {
		returnDate = *command.ReturnDate
	}
	returnDate = core.ToTimestamp(returnDate)

	qualityDelta := core.QualityDelta(command.Quality, book.QualityState)
	penalty := policy.CalculatePenalty(book.RentPrice, qualityDelta, loan.DueDate, returnDate)

	event, err := loan.ReturnBook(command.Quality, returnDate, penalty)
	if err != nil {
		return Decision{DecisionResult: core.ErrorDecision(err)}
	}

	book.ReturnBook(command.Quality)

	return Decision{
		DecisionResult: core.SuccessDecision(event),
		Loan:           loan,
		Book:           book,
		Penalty:        loan.PaidAmount,
	}
}
