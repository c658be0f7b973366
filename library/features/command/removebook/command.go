package removebook

import (
	"github.com/google/uuid"
)

const (
	commandType = "RemoveBook"
)

// Command represents the intent to remove a book copy from the library.
type Command struct {
	BookID uuid.UUID
}

// CommandType returns the type of this command for observability and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bookID uuid.UUID) Command {
	return Command{BookID: bookID}
}
