package availablecopies

const queryType = "CountAvailableCopies"

// Query asks for the available copies of one ISBN. Surrounding whitespace is ignored.
type Query struct {
	ISBN string `validate:"required,max=32"`
}

func (q Query) QueryType() string {
	return queryType
}
