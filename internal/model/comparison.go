package model

import (
	"slices"
	"time"
)

// RunMetadata identifies a stored discovery run.
type RunMetadata struct {
	// ID is the run's database identifier.
	ID int64 `json:"id"`

	// Timestamp is when the run was stored.
	Timestamp time.Time `json:"timestamp"`

	// LinkCount is the size of the discovered set.
	LinkCount int `json:"link_count"`
}

// LinkComparison is the difference between two discovery runs of the
// same start address.
type LinkComparison struct {
	StartURL string `json:"start_url"`

	PreviousRun RunMetadata `json:"previous_run"`
	CurrentRun  RunMetadata `json:"current_run"`

	// Added are links present only in the current run, sorted.
	Added []string `json:"added,omitempty"`

	// Removed are links present only in the previous run, sorted.
	Removed []string `json:"removed,omitempty"`

	// UnchangedCount is the number of links present in both runs.
	UnchangedCount int `json:"unchanged_count"`
}

// HasChanges reports whether any link was added or removed.
func (c *LinkComparison) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0
}

// CompareLinks returns the links only in current (added), the links only in
// previous (removed) and the number of links in both. Duplicates within
// one list are counted once.
func CompareLinks(previous, current []string) (added, removed []string, unchanged int) {
	prev := make(map[string]struct{}, len(previous))
	for _, l := range previous {
		prev[l] = struct{}{}
	}
	cur := make(map[string]struct{}, len(current))
	for _, l := range current {
		cur[l] = struct{}{}
	}

	for l := range cur {
		if _, ok := prev[l]; ok {
			unchanged++
		} else {
			added = append(added, l)
		}
	}
	for l := range prev {
		if _, ok := cur[l]; !ok {
			removed = append(removed, l)
		}
	}

	slices.Sort(added)
	slices.Sort(removed)
	return added, removed, unchanged
}
