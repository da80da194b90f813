// Package model defines the data structures shared by the crawler, the
// conversion pipeline, the history database and the report writers.
//
// The main types are:
//   - DiscoveryResult: the outcome of one link discovery run
//   - Visit: one page visited during discovery and its final state
//   - PageRecord: the state of one address moving through the converter
//   - BatchSummary: the tally of a conversion batch
//
// The models are serializable to JSON for report output and database storage.
package model
