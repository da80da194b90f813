package model

import "time"

// Visit records one page visited during discovery.
type Visit struct {
	// URL is the address that was dequeued, as it was queued.
	URL string `json:"url"`

	// State is VisitVisited or VisitFailed once the visit is over.
	State VisitState `json:"state"`

	// LinksFound is the number of unique anchors read from the navigation
	// region, before filtering.
	LinksFound int `json:"links_found"`

	// Error describes why the visit failed.
	Error string `json:"error,omitempty"`
}

// DiscoveryResult is the outcome of one link discovery run.
type DiscoveryResult struct {
	// StartURL is the address the run started from, as given by the user.
	StartURL string `json:"start_url"`

	// Prefix is the path prefix used by the allow-list.
	Prefix string `json:"prefix"`

	// OriginHost is the lowercased host of StartURL, with a non-default port.
	OriginHost string `json:"origin_host"`

	// Links is the discovered set, sorted lexicographically.
	Links []string `json:"links"`

	// Visits lists every dequeued address in visiting order.
	Visits []Visit `json:"visits"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// VisitedCount returns the number of successfully visited pages.
func (r *DiscoveryResult) VisitedCount() int {
	return r.countVisits(VisitVisited)
}

// FailedCount returns the number of pages that failed to load.
func (r *DiscoveryResult) FailedCount() int {
	return r.countVisits(VisitFailed)
}

// Duration returns how long the run took.
func (r *DiscoveryResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *DiscoveryResult) countVisits(state VisitState) int {
	n := 0
	for _, v := range r.Visits {
		if v.State == state {
			n++
		}
	}
	return n
}
