package model

import (
	"fmt"
	"time"
)

// ItemResult is the outcome of converting one address.
type ItemResult struct {
	// Index is the 1-based position of the address in the batch.
	Index int `json:"index"`

	// Page is the record as far as the pipeline got.
	Page *PageRecord `json:"page"`

	// Err is the failure, if any. Failed items do not stop the batch.
	Err error `json:"-"`

	// Error is the text of Err, kept for JSON output.
	Error string `json:"error,omitempty"`

	// Duration is how long the item took.
	Duration time.Duration `json:"duration"`
}

// OK reports whether the item was converted and written.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// BatchSummary tallies a conversion batch.
type BatchSummary struct {
	Total  int `json:"total"`
	OK     int `json:"ok"`
	Failed int `json:"failed"`

	// Items are the per-address results in input order.
	Items []ItemResult `json:"items"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Add appends an item result and updates the counters.
func (s *BatchSummary) Add(r ItemResult) {
	if r.Err != nil && r.Error == "" {
		r.Error = r.Err.Error()
	}
	s.Items = append(s.Items, r)
	if r.OK() {
		s.OK++
	} else {
		s.Failed++
	}
}

// String returns the one-line tally printed at the end of a batch.
func (s *BatchSummary) String() string {
	return fmt.Sprintf("Done. OK: %d Failed: %d (Total: %d)", s.OK, s.Failed, s.Total)
}
