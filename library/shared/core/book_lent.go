package core

import (
	"time"
)

// BookLentEventType is the event type identifier.
const BookLentEventType = "BookLent"

// BookLent is raised when a new loan is opened.
type BookLent struct {
	BookID   BookIDString
	LoanID   LoanIDString
	UserID   UserIDString
	LoanDate OccurredAtTS
	DueDate  time.Time
}

// BuildBookLent creates a BookLent event from a freshly opened loan.
func BuildBookLent(loan Loan) BookLent {
	return BookLent{
		BookID:   loan.BookID.String(),
		LoanID:   loan.ID.String(),
		UserID:   loan.UserID.String(),
		LoanDate: ToOccurredAt(loan.LoanDate),
		DueDate:  loan.DueDate,
	}
}

// EventType returns the event type identifier.
func (e BookLent) EventType() string {
	return BookLentEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookLent) HasOccurredAt() time.Time {
	return e.LoanDate
}
