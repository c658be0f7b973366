package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Author of a book.
type Author struct {
	FirstName string
	LastName  string
}

// FullName joins first and last name, skipping empty parts.
func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// BookMetadata describes the title a physical book belongs to.
type BookMetadata struct {
	Title  string
	Author Author
	ISBN   string
}

// Book is a physical copy that can be lent out.
// QualityState and IsAvailable only change through Lend and ReturnBook.
type Book struct {
	ID           uuid.UUID
	Metadata     BookMetadata
	RentPrice    Money
	QualityState QualityState
	IsAvailable  bool
	CreatedAt    time.Time
}

// NewBook creates an available book in New condition.
func NewBook(id uuid.UUID, metadata BookMetadata, rentPrice Money, createdAt time.Time) (Book, error) {
	metadata.Title = strings.TrimSpace(metadata.Title)
	metadata.ISBN = strings.TrimSpace(metadata.ISBN)

	if metadata.Title == "" || metadata.ISBN == "" {
		return Book{}, ErrInvalidBookMetadata
	}

	if _, err := NewMoney(rentPrice.Amount, rentPrice.Currency); err != nil {
		return Book{}, err
	}

	return Book{
		ID:           id,
		Metadata:     metadata,
		RentPrice:    rentPrice,
		QualityState: QualityNew,
		IsAvailable:  true,
		CreatedAt:    ToTimestamp(createdAt),
	}, nil
}

// Lend marks the book as taken.
func (b *Book) Lend() error {
	if !b.IsAvailable {
		return ErrBookNotAvailable
	}

	b.IsAvailable = false

	return nil
}

// ReturnBook records the condition the book came back in and makes it available again.
// It must run in the same transaction as the Loan transition.
func (b *Book) ReturnBook(quality QualityState) {
	b.QualityState = quality
	b.IsAvailable = true
}
