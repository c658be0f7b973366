// Command libraryctl runs library commands and queries against the configured store.
//
// Usage:
//
//	libraryctl [-config library.yaml] <subcommand> [flags]
//
// Subcommands: add, remove, lend, return, books, loans, available, events.
// Results are printed as JSON on stdout, logs go to stderr.
package main
