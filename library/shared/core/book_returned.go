package core

import (
	"time"

	"github.com/google/uuid"
)

// BookReturnedEventType is the event type identifier.
const BookReturnedEventType = "BookReturned"

// BookReturned is raised when a loan closes. Consumers use it for notifications and billing;
// the book and loan state it describes are already committed when it is published.
type BookReturned struct {
	BookID       BookIDString
	LoanID       LoanIDString
	UserID       UserIDString
	QualityState QualityState
	ReturnDate   OccurredAtTS
	Penalty      Money
}

// BuildBookReturned creates a new BookReturned event.
func BuildBookReturned(
	bookID uuid.UUID,
	loanID uuid.UUID,
	userID uuid.UUID,
	quality QualityState,
	returnDate time.Time,
	penalty Money,
) BookReturned {

	return BookReturned{
		BookID:       bookID.String(),
		LoanID:       loanID.String(),
		UserID:       userID.String(),
		QualityState: quality,
		ReturnDate:   ToOccurredAt(returnDate),
		Penalty:      penalty,
	}
}

// EventType returns the event type identifier.
func (e BookReturned) EventType() string {
	return BookReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookReturned) HasOccurredAt() time.Time {
	return e.ReturnDate
}
