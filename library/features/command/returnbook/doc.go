// Package returnbook implements the Return Book use case.
//
// A returned book closes its open loan, is charged a penalty computed by the configured
// core.PenaltyPolicy, and becomes available again in the condition it came back in.
// Loan and book are saved in one transaction together with the BookReturned journal entry;
// a loan that was already returned is rejected with core.ErrLoanAlreadyReturned.
//
// Two clerks returning the same book at the same time race on the guarded write in the store.
// The loser gets a concurrency conflict, retries, re-reads the now returned loan and is rejected,
// so the penalty is charged exactly once.
package returnbook
