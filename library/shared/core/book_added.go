package core

import (
	"time"
)

// BookAddedEventType is the event type identifier.
const BookAddedEventType = "BookAdded"

// BookAdded is raised when a book copy is added to the catalogue.
type BookAdded struct {
	BookID          BookIDString
	Title           string
	AuthorFirstName string
	AuthorLastName  string
	ISBN            string
	RentPrice       Money
	OccurredAt      OccurredAtTS
}

// BuildBookAdded creates a BookAdded event from a new book.
func BuildBookAdded(book Book) BookAdded {
	return BookAdded{
		BookID:          book.ID.String(),
		Title:           book.Metadata.Title,
		AuthorFirstName: book.Metadata.Author.FirstName,
		AuthorLastName:  book.Metadata.Author.LastName,
		ISBN:            book.Metadata.ISBN,
		RentPrice:       book.RentPrice,
		OccurredAt:      ToOccurredAt(book.CreatedAt),
	}
}

// EventType returns the event type identifier.
func (e BookAdded) EventType() string {
	return BookAddedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookAdded) HasOccurredAt() time.Time {
	return e.OccurredAt
}
