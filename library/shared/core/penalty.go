package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PenaltyPolicyDefault charges for quality degradation and overdue days.
	PenaltyPolicyDefault = "default"

	// PenaltyPolicySimple charges for overdue days only.
	PenaltyPolicySimple = "simple"

	qualityPenaltyThreshold = 2
	day                     = 24 * time.Hour
)

var (
	qualityPenaltyRate = decimal.RequireFromString("0.20")
	overduePenaltyRate = decimal.RequireFromString("0.01")
)

// PenaltyPolicy computes the charge for a returned book.
// Implementations must be pure and never return a negative amount.
type PenaltyPolicy interface {
	CalculatePenalty(rentPrice Money, qualityDelta int, dueDate time.Time, returnDate time.Time) decimal.Decimal
	Name() string
}

// DefaultPenaltyPolicy charges qualityDelta * price * 0.20 when the book came back more than
// two grades worse, plus overdueDays * price * 0.01 when it came back late.
type DefaultPenaltyPolicy struct{}

// CalculatePenalty implements PenaltyPolicy.
func (DefaultPenaltyPolicy) CalculatePenalty(
	rentPrice Money,
	qualityDelta int,
	dueDate time.Time,
	returnDate time.Time,
) decimal.Decimal {

	penalty := decimal.Zero

	if qualityDelta > qualityPenaltyThreshold {
		penalty = penalty.Add(
			decimal.NewFromInt(int64(qualityDelta)).Mul(rentPrice.Amount).Mul(qualityPenaltyRate),
		)
	}

	penalty = penalty.Add(overduePenalty(rentPrice, dueDate, returnDate))

	return atLeastZero(penalty)
}

// Name implements PenaltyPolicy.
func (DefaultPenaltyPolicy) Name() string {
	return PenaltyPolicyDefault
}

// SimplePenaltyPolicy ignores quality and charges overdueDays * price * 0.01.
type SimplePenaltyPolicy struct{}

// CalculatePenalty implements PenaltyPolicy.
func (SimplePenaltyPolicy) CalculatePenalty(
	rentPrice Money,
	_ int,
	dueDate time.Time,
	returnDate time.Time,
) decimal.Decimal {

	return atLeastZero(overduePenalty(rentPrice, dueDate, returnDate))
}

// Name implements PenaltyPolicy.
func (SimplePenaltyPolicy) Name() string {
	return PenaltyPolicySimple
}

// PenaltyPolicyByName selects a policy from deployment configuration.
func PenaltyPolicyByName(name string) (PenaltyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PenaltyPolicyDefault, "":
		return DefaultPenaltyPolicy{}, nil
	case PenaltyPolicySimple:
		return SimplePenaltyPolicy{}, nil
	default:
		return nil, ErrUnknownPenaltyPolicy
	}
}

// OverdueDays counts whole days between dueDate and returnDate.
// A partial last day does not count, and returning on or before the due date yields 0.
func OverdueDays(dueDate time.Time, returnDate time.Time) int64 {
	late := returnDate.Sub(dueDate)
	if late <= 0 {
		return 0
	}

	return int64(late / day)
}

func overduePenalty(rentPrice Money, dueDate time.Time, returnDate time.Time) decimal.Decimal {
	days := OverdueDays(dueDate, returnDate)
	if days <= 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(days).Mul(rentPrice.Amount).Mul(overduePenaltyRate)
}

func atLeastZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}

	return amount
}
