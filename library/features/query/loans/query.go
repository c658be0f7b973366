package loans

const (
	queryType = "ListLoans"

	loanDateLayout = "2006-01-02"
)

// Query selects a page of loans. Zero values mean no filter or the default.
// LoanDate matches loans made on that UTC calendar day.
type Query struct {
	UserID             string `validate:"omitempty,uuid"`
	BookID             string `validate:"omitempty,uuid"`
	LoanDate           string `validate:"omitempty,datetime=2006-01-02"`
	Returned           *bool
	IncludeBookDetails bool
	SortBy             string `validate:"max=20"`
	SortDirection      string `validate:"max=4"`
	PageNumber         int    `validate:"gte=0"`
	PageSize           int    `validate:"gte=0,lte=100"`
}

// QueryType returns the type of this query for observability and routing purposes.
func (q Query) QueryType() string {
	return queryType
}
