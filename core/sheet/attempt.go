package sheet

import (
	"strconv"
	"strings"
)

// Attempt cell sentinels as persisted.
const (
	NotAttemptedToken  = "-"
	ExemptedToken      = "Exempted"
	NotApplicableToken = "N/A"
)

type ValueKind int

const (
	Numeric ValueKind = iota
	NotAttempted
	Exempted
	NotApplicable
	Deferred // re-assessment / supplementary session codes (S..., R...)
)

// Value is one attempt cell, parsed into its closed set of shapes instead of
// being compared as a raw string everywhere.
type Value struct {
	Kind  ValueKind
	Score float64 // Numeric only
	Code  string  // Deferred only
}

func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	switch {
	case s == "" || s == NotAttemptedToken:
		return Value{Kind: NotAttempted}
	case strings.EqualFold(s, ExemptedToken):
		return Value{Kind: Exempted}
	case strings.EqualFold(s, NotApplicableToken):
		return Value{Kind: NotApplicable}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{Kind: Numeric, Score: f}
	}
	return Value{Kind: Deferred, Code: s}
}

// String renders the value back to its persisted token.
func (v Value) String() string {
	switch v.Kind {
	case Numeric:
		return strconv.FormatFloat(v.Score, 'f', -1, 64)
	case Exempted:
		return ExemptedToken
	case NotApplicable:
		return NotApplicableToken
	case Deferred:
		return v.Code
	default:
		return NotAttemptedToken
	}
}

// Occupied reports whether the slot holds anything other than the
// not-attempted sentinel.
func (v Value) Occupied() bool {
	return v.Kind != NotAttempted
}

// IsFullScore reports a numeric 100, the trigger for the first-year
// exemption collapse.
func (v Value) IsFullScore() bool {
	return v.Kind == Numeric && v.Score == 100
}
