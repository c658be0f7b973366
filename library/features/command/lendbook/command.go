package lendbook

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "LendBook"
)

// Command represents the intent to lend a book to a user.
type Command struct {
	BookID  uuid.UUID
	UserID  uuid.UUID
	DueDate *time.Time
}

// CommandType returns the type of this command for observability and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. A nil dueDate means the default loan period.
func BuildCommand(bookID uuid.UUID, userID uuid.UUID, dueDate *time.Time) Command {
	return Command{
		BookID:  bookID,
		UserID:  userID,
		DueDate: dueDate,
	}
}
