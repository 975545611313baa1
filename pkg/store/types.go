package store

import "time"

// FetchRecord is one row of fetch history: when a fetch ran, where the served
// summary came from, and the individual overall quota snapshot at that moment.
type FetchRecord struct {
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	Source    string    `json:"source"`               // fresh, cache, stale, placeholder
	ErrorKind string    `json:"error_kind,omitempty"` // classified kind on failure
	Message   string    `json:"message,omitempty"`    // user-facing framing on failure

	Used       float64 `json:"used"`
	Limit      float64 `json:"limit"`
	Remaining  float64 `json:"remaining"`
	Percentage int     `json:"percentage"`
}
