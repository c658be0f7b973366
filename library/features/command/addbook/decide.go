package addbook

import (
	"time"

	"github.com/equilobe/library-go/library/shared/core"
)

// Decision carries the new book for a successful decision.
type Decision struct {
	core.DecisionResult
	Book core.Book
}

// Decide adds a book. existing is the stored book with the command's id, nil if there is none.
//
// Business Rules:
//
//	GIVEN: no book with BookID
//	WHEN: AddBook command is received
//	THEN: an available book in New condition is created and BookAdded is raised
//	ERROR: core.ErrInvalidBookMetadata if title or isbn is blank
//	ERROR: core.ErrNegativeAmount or core.ErrUnknownCurrency for an invalid rent price
//	IDEMPOTENCY: if the book already exists, nothing happens
func Decide(existing *core.Book, command Command, now time.Time) Decision {
	if existing != nil {
		return Decision{DecisionResult: core.IdempotentDecision()}
	}

	rentPrice, err := core.NewMoney(command.RentAmount, command.Currency)
	if err != nil {
		return Decision{DecisionResult: core.ErrorDecision(err)}
	}

	metadata := core.BookMetadata{
		Title: command.Title,
		Author: core.Author{
			FirstName: command.AuthorFirstName,
			LastName:  command.AuthorLastName,
		},
		ISBN: command.ISBN,
	}

	book, err := core.NewBook(command.BookID, metadata, rentPrice, now)
	if err != nil {
		return Decision{DecisionResult: core.ErrorDecision(err)}
	}

	return Decision{
		DecisionResult: core.SuccessDecision(core.BuildBookAdded(book)),
		Book:           book,
	}
}
