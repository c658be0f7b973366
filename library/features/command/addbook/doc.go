// Package addbook implements the Add Book use case: a new physical copy enters the library,
// available and in New condition. Adding a book id that already exists is a no-op.
package addbook
