package core

import (
	"time"

	"github.com/google/uuid"
)

// BookRemovedEventType is the event type identifier.
const BookRemovedEventType = "BookRemoved"

// BookRemoved is raised when a book copy is deleted from the catalogue.
type BookRemoved struct {
	BookID     BookIDString
	OccurredAt OccurredAtTS
}

// BuildBookRemoved creates a new BookRemoved event.
func BuildBookRemoved(bookID uuid.UUID, occurredAt time.Time) BookRemoved {
	return BookRemoved{
		BookID:     bookID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BookRemoved) EventType() string {
	return BookRemovedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookRemoved) HasOccurredAt() time.Time {
	return e.OccurredAt
}
