// Package loans lists loans page by page, filtered by user, book, loan day and return state.
// Book details are joined in only on request.
package loans
