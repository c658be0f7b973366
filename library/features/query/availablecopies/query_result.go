package availablecopies

type Result struct {
	ISBN  string `json:"isbn"`
	Count int    `json:"count"`
}

// ItemCount is always 1: the result is a single count.
func (r Result) ItemCount() int {
	return 1
}
