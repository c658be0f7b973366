package books

const (
	queryType = "ListBooks"
)

// Query selects a page of books. Zero values mean no filter or the default.
type Query struct {
	TitleContains string `validate:"max=200"`
	QualityState  string `validate:"max=20"`
	OnlyAvailable *bool
	SortBy        string `validate:"max=20"`
	SortDirection string `validate:"max=4"`
	PageNumber    int    `validate:"gte=0"`
	PageSize      int    `validate:"gte=0,lte=100"`
}

// QueryType returns the type of this query for observability and routing purposes.
func (q Query) QueryType() string {
	return queryType
}
