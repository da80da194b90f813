package model

import "fmt"

// VisitState is the lifecycle state of an address during discovery.
// Addresses move QUEUED -> VISITING -> (VISITED | FAILED).
type VisitState int

const (
	// VisitQueued means the address waits in the frontier queue.
	VisitQueued VisitState = iota

	// VisitVisiting means the address is being loaded and scanned.
	VisitVisiting

	// VisitVisited means the page loaded and its navigation region was read.
	VisitVisited

	// VisitFailed means navigation or extraction failed. The run continues.
	VisitFailed
)

// String returns the upper-case state name.
func (s VisitState) String() string {
	switch s {
	case VisitQueued:
		return "QUEUED"
	case VisitVisiting:
		return "VISITING"
	case VisitVisited:
		return "VISITED"
	case VisitFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the state as its name.
func (s VisitState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *VisitState) UnmarshalText(text []byte) error {
	state, err := ParseVisitState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseVisitState converts a state name back to a VisitState.
func ParseVisitState(name string) (VisitState, error) {
	for _, s := range []VisitState{VisitQueued, VisitVisiting, VisitVisited, VisitFailed} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown visit state %q", name)
}
