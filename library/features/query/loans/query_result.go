package loans

import (
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

// LoanView is one loan of the listing. BookID and BookTitle are only set with IncludeBookDetails.
type LoanView struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	LoanDate   time.Time       `json:"loanDate"`
	DueDate    time.Time       `json:"dueDate"`
	ReturnDate *time.Time      `json:"returnDate,omitempty"`
	PaidAmount string          `json:"paidAmount"`
	Status     core.LoanStatus `json:"status"`
	BookID     string          `json:"bookId,omitempty"`
	BookTitle  string          `json:"bookTitle,omitempty"`
}

// Result is one page of loans.
type Result struct {
	Loans       []LoanView `json:"loans"`
	TotalItems  int        `json:"totalItems"`
	PageNumber  int        `json:"pageNumber"`
	PageSize    int        `json:"pageSize"`
	TotalPages  int        `json:"totalPages"`
	HasNextPage bool       `json:"hasNextPage"`
}

func (r Result) ItemCount() int {
	return len(r.Loans)
}

// ProjectResult converts a page of loans into the listing. A nil books map leaves out the book details.
func ProjectResult(page librarystore.Page[core.Loan], books map[uuid.UUID]core.Book) Result {
	views := librarystore.MapPage(page, func(loan core.Loan) LoanView {
		view := LoanView{
			ID:         loan.ID.String(),
			UserID:     loan.UserID.String(),
			LoanDate:   loan.LoanDate,
			DueDate:    loan.DueDate,
			ReturnDate: loan.ReturnDate,
			PaidAmount: loan.PaidAmount.String(),
			Status:     loan.Status(),
		}

		if books != nil {
			view.BookID = loan.BookID.String()
			if book, ok := books[loan.BookID]; ok {
				view.BookTitle = book.Metadata.Title
			}
		}

		return view
	})

	return Result{
		Loans:       views.Items,
		TotalItems:  views.TotalItems,
		PageNumber:  views.PageNumber,
		PageSize:    views.PageSize,
		TotalPages:  views.TotalPages(),
		HasNextPage: views.HasNextPage(),
	}
}
