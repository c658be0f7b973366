package addbook

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equilobe/library-go/library/shared/core"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to add a book copy to the library.
type Command struct {
	BookID          uuid.UUID
	Title           string
	AuthorFirstName string
	AuthorLastName  string
	ISBN            string
	RentAmount      decimal.Decimal
	Currency        core.Currency
}

// CommandType returns the type of this command for observability and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	bookID uuid.UUID,
	title string,
	authorFirstName string,
	authorLastName string,
	isbn string,
	rentAmount decimal.Decimal,
	currency core.Currency,
) Command {

	return Command{
		BookID:          bookID,
		Title:           title,
		AuthorFirstName: authorFirstName,
		AuthorLastName:  authorLastName,
		ISBN:            isbn,
		RentAmount:      rentAmount,
		Currency:        currency,
	}
}
