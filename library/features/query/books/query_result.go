package books

import (
	"time"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

// BookView is one book of the listing.
type BookView struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	AuthorFirstName string            `json:"authorFirstName"`
	AuthorLastName  string            `json:"authorLastName"`
	ISBN            string            `json:"isbn"`
	RentPrice       string            `json:"rentPrice"`
	QualityState    core.QualityState `json:"qualityState"`
	IsAvailable     bool              `json:"isAvailable"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Result is one page of books.
type Result struct {
	Books       []BookView `json:"books"`
	TotalItems  int        `json:"totalItems"`
	PageNumber  int        `json:"pageNumber"`
	PageSize    int        `json:"pageSize"`
	TotalPages  int        `json:"totalPages"`
	HasNextPage bool       `json:"hasNextPage"`
}

func (r Result) ItemCount() int {
	return len(r.Books)
}

// ProjectResult converts a page of books into the listing.
func ProjectResult(page librarystore.Page[core.Book]) Result {
	views := librarystore.MapPage(page, func(book core.Book) BookView {
		return BookView{
			ID:              book.ID.String(),
			Title:           book.Metadata.Title,
			AuthorFirstName: book.Metadata.Author.FirstName,
			AuthorLastName:  book.Metadata.Author.LastName,
			ISBN:            book.Metadata.ISBN,
			RentPrice:       book.RentPrice.String(),
			QualityState:    book.QualityState,
			IsAvailable:     book.IsAvailable,
			CreatedAt:       book.CreatedAt,
		}
	})

	return Result{
		Books:       views.Items,
		TotalItems:  views.TotalItems,
		PageNumber:  views.PageNumber,
		PageSize:    views.PageSize,
		TotalPages:  views.TotalPages(),
		HasNextPage: views.HasNextPage(),
	}
}
