// ABOUTME: Completion states a meal slot can be in on a given day
// ABOUTME: Wire values are the exact strings stored by every backend
package models

import "fmt"

// Completion records whether a meal was eaten as planned
type Completion string

const (
	// CompletionNone - nothing logged; writing it deletes the record
	CompletionNone Completion = "none"

	// CompletionAteExact - the planned meal was eaten
	CompletionAteExact Completion = "ateExact"

	// CompletionAteSimilar - something close to the planned meal was eaten
	CompletionAteSimilar Completion = "ateSimilar"
)

// ParseCompletion converts a stored string into a Completion
func ParseCompletion(s string) (Completion, error) {
	switch c := Completion(s); c {
	case CompletionNone, CompletionAteExact, CompletionAteSimilar:
		return c, nil
	default:
		return "", fmt.Errorf("unknown completion %q", s)
	}
}

// IsDone reports whether the completion counts toward a day
func (c Completion) IsDone() bool {
	return c == CompletionAteExact || c == CompletionAteSimilar
}

func (c Completion) String() string {
	return string(c)
}
