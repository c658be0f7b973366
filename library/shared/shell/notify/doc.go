// Package notify hands domain events to the outside world after they were committed.
//
// Publishing is best-effort: the journal entry written in the same transaction as the
// state change is the source of truth, and a failed publish never fails the command.
package notify
