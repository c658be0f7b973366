package core

import (
	"strings"
)

// QualityState is the condition of a physical book on an ordered scale.
// A higher ordinal means a worse condition.
type QualityState int

const (
	QualityNew QualityState = iota
	QualityLikeNew
	QualityGood
	QualityFair
	QualityWorn
	QualityDamaged
)

var qualityStateNames = [...]string{
	QualityNew:     "New",
	QualityLikeNew: "LikeNew",
	QualityGood:    "Good",
	QualityFair:    "Fair",
	QualityWorn:    "Worn",
	QualityDamaged: "Damaged",
}

// QualityStates returns all states in ascending ordinal order.
func QualityStates() []QualityState {
	return []QualityState{QualityNew, QualityLikeNew, QualityGood, QualityFair, QualityWorn, QualityDamaged}
}

// ParseQualityState maps a case-insensitive state name to a QualityState.
func ParseQualityState(name string) (QualityState, error) {
	trimmed := strings.TrimSpace(name)
	for state, stateName := range qualityStateNames {
		if strings.EqualFold(trimmed, stateName) {
			return QualityState(state), nil
		}
	}

	return 0, ErrUnknownQualityState
}

// Ordinal returns the position of q on the quality scale.
func (q QualityState) Ordinal() int {
	return int(q)
}

// IsValid reports whether q is a defined state.
func (q QualityState) IsValid() bool {
	return q >= QualityNew && q <= QualityDamaged
}

func (q QualityState) String() string {
	if !q.IsValid() {
		return "Unknown"
	}

	return qualityStateNames[q]
}

// MarshalText renders the state by name so events and journals stay readable.
func (q QualityState) MarshalText() ([]byte, error) {
	if !q.IsValid() {
		return nil, ErrUnknownQualityState
	}

	return []byte(q.String()), nil
}

// UnmarshalText parses a state name.
func (q *QualityState) UnmarshalText(text []byte) error {
	parsed, err := ParseQualityState(string(text))
	if err != nil {
		return err
	}

	*q = parsed

	return nil
}

// QualityDelta is ordinal(returned) - ordinal(previous).
// Positive values mean the book came back in a worse condition.
func QualityDelta(returned QualityState, previous QualityState) int {
	return returned.Ordinal() - previous.Ordinal()
}
