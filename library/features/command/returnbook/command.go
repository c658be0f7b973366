package returnbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to return a lent book.
// A nil ReturnDate means the book is returned now.
type Command struct {
	BookID     uuid.UUID
	Quality    core.QualityState
	ReturnDate *time.Time
}

// CommandType returns the type of this command for observability and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, quality core.QualityState, returnDate *time.Time) Command {
	return Command{
		BookID:     bookID,
		Quality:    quality,
		ReturnDate: returnDate,
	}
}
