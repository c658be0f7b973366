// Package removebook implements the Remove Book use case. A lent-out book stays in the library
// until it is returned, and a book with loan history is kept for the records.
package removebook
