// Package librarystore provides the storage-level abstractions shared by
// all implementations of the library data store.
//
// This package defines the types every engine speaks: filters for the book
// and loan collections, paged results, journal events and the common error
// definitions. It also declares the dependency-free observability interfaces
// an engine reports through.
//
// Key types:
//   - BookFilter / LoanFilter: criteria, sorting and paging for listings
//   - Page: one page of results plus the total item count
//   - StorableEvent: a journal entry written in the same transaction as a state change
//
// Common usage pattern:
//
//	filter, err := librarystore.BuildBookFilter().
//		TitleContaining("dune").
//		OnlyAvailable(true).
//		SortedBy(librarystore.SortBooksByTitle, librarystore.Ascending).
//		OnPage(1, 20).
//		Finalize()
//	if err != nil {
//		// handle error
//	}
//
//	page, err := store.QueryBooks(ctx, filter)
package librarystore
