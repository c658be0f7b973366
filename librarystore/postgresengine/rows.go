package postgresengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore/postgresengine/internal/adapters"
)

// Ids and amounts are selected as text so that pgx and database/sql scan them the same way.

type bookRow struct {
	id              string
	title           string
	authorFirstName string
	authorLastName  string
	isbn            string
	rentAmount      string
	rentCurrency    string
	qualityState    int
	isAvailable     bool
	createdAt       time.Time
}

type loanRow struct {
	id           string
	bookID       string
	userID       string
	loanDate     time.Time
	dueDate      time.Time
	returnDate   *time.Time
	paidAmount   string
	paidCurrency string
}

func scanBook(rows adapters.DBRows) (core.Book, error) {
	var r bookRow

	err := rows.Scan(
		&r.id, &r.title, &r.authorFirstName, &r.authorLastName, &r.isbn,
		&r.rentAmount, &r.rentCurrency, &r.qualityState, &r.isAvailable, &r.createdAt,
	)
	if err != nil {
		return core.Book{}, err
	}

	return r.toBook()
}

func (r bookRow) toBook() (core.Book, error) {
	id, err := uuid.Parse(r.id)
	if err != nil {
		return core.Book{}, fmt.Errorf("book id %q: %w", r.id, err)
	}

	amount, err := decimal.NewFromString(r.rentAmount)
	if err != nil {
		return core.Book{}, fmt.Errorf("rent amount %q: %w", r.rentAmount, err)
	}

	quality := core.QualityState(r.qualityState)
	if !quality.IsValid() {
		return core.Book{}, errors.Join(core.ErrUnknownQualityState, fmt.Errorf("stored value %d", r.qualityState))
	}

	return core.Book{
		ID: id,
		Metadata: core.BookMetadata{
			Title:  r.title,
			Author: core.Author{FirstName: r.authorFirstName, LastName: r.authorLastName},
			ISBN:   r.isbn,
		},
		RentPrice:    core.Money{Amount: amount, Currency: core.Currency(r.rentCurrency)},
		QualityState: quality,
		IsAvailable:  r.isAvailable,
		CreatedAt:    core.ToTimestamp(r.createdAt),
	}, nil
}

func scanLoan(rows adapters.DBRows) (core.Loan, error) {
	var r loanRow

	err := rows.Scan(
		&r.id, &r.bookID, &r.userID, &r.loanDate, &r.dueDate,
		&r.returnDate, &r.paidAmount, &r.paidCurrency,
	)
	if err != nil {
		return core.Loan{}, err
	}

	return r.toLoan()
}

func (r loanRow) toLoan() (core.Loan, error) {
	ids := make([]uuid.UUID, 3)
	for i, raw := range []string{r.id, r.bookID, r.userID} {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return core.Loan{}, fmt.Errorf("loan id column %q: %w", raw, err)
		}

		ids[i] = parsed
	}

	paid, err := decimal.NewFromString(r.paidAmount)
	if err != nil {
		return core.Loan{}, fmt.Errorf("paid amount %q: %w", r.paidAmount, err)
	}

	var returnDate *time.Time
	if r.returnDate != nil {
		normalized := core.ToTimestamp(*r.returnDate)
		returnDate = &normalized
	}

	return core.Loan{
		ID:         ids[0],
		BookID:     ids[1],
		UserID:     ids[2],
		LoanDate:   core.ToTimestamp(r.loanDate),
		DueDate:    core.ToTimestamp(r.dueDate),
		ReturnDate: returnDate,
		PaidAmount: core.Money{Amount: paid, Currency: core.Currency(r.paidCurrency)},
	}, nil
}
