// Package books lists books page by page, filtered by title, quality and availability.
// It reads with eventual consistency, so a configured replica serves it.
package books
