// Package lendbook implements the Lend Book use case.
//
// Only an available book can be lent. The loan is due after core.DefaultLoanPeriod unless the
// command sets a due date. Lending a book again to the user who already holds it is a no-op.
package lendbook
