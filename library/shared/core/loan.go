package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLoanPeriod is added to the loan date when no due date is given.
const DefaultLoanPeriod = 14 * day

// LoanStatus is the lifecycle state of a Loan.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
)

// Loan tracks one lending of one book to one user.
// It moves Active -> Returned exactly once; a re-lend needs a new Loan.
type Loan struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	UserID     uuid.UUID
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	PaidAmount Money
}

// NewLoan opens a loan. The due date defaults to loanDate + DefaultLoanPeriod.
func NewLoan(id uuid.UUID, bookID uuid.UUID, userID uuid.UUID, loanDate time.Time, dueDate *time.Time) (Loan, error) {
	loanDate = ToTimestamp(loanDate)
	due := loanDate.Add(DefaultLoanPeriod)

	if dueDate != nil {
		due = ToTimestamp(*dueDate)
		if due.Before(loanDate) {
			return Loan{}, ErrDueDateBeforeLoanDate
		}
	}

	return Loan{
		ID:         id,
		BookID:     bookID,
		UserID:     userID,
		LoanDate:   loanDate,
		DueDate:    due,
		PaidAmount: ZeroMoney(PenaltyCurrency),
	}, nil
}

// IsReturned reports whether the loan is closed.
func (l Loan) IsReturned() bool {
	return l.ReturnDate != nil
}

// Status derives the lifecycle state from the return date.
func (l Loan) Status() LoanStatus {
	if l.IsReturned() {
		return LoanStatusReturned
	}

	return LoanStatusActive
}

// ReturnBook closes the loan and raises BookReturned.
// A second call fails with ErrLoanAlreadyReturned and leaves the loan untouched.
func (l *Loan) ReturnBook(quality QualityState, returnDate time.Time, penalty decimal.Decimal) (BookReturned, error) {
	if l.IsReturned() {
		return BookReturned{}, ErrLoanAlreadyReturned
	}

	if !quality.IsValid() {
		return BookReturned{}, ErrUnknownQualityState
	}

	if penalty.IsNegative() {
		return BookReturned{}, ErrNegativePenalty
	}

	returnedAt := ToTimestamp(returnDate)
	l.ReturnDate = &returnedAt
	l.PaidAmount = Money{Amount: penalty, Currency: PenaltyCurrency}

	return BuildBookReturned(l.BookID, l.ID, l.UserID, quality, returnedAt, l.PaidAmount), nil
}
