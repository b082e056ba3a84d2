package domain

import "time"

// ScanStats holds the counters of one scan run.
// Matched never exceeds Scanned.
type ScanStats struct {
	// Scanned counts every node pulled from the walker, accepted or not.
	Scanned int

	// Matched counts nodes that passed every filter.
	Matched int

	// Total is the server-reported size of the connection. Nil before the run starts.
	Total *int

	// Limit stops enumeration once Matched reaches it. Zero means unlimited.
	Limit int
}

// LimitReached reports whether the configured match limit has been satisfied.
func (s ScanStats) LimitReached() bool {
	return s.Limit > 0 && s.Matched >= s.Limit
}

// ScanRun is a recorded scan execution.
type ScanRun struct {
	ID         string    `json:"id" yaml:"id"`
	Org        string    `json:"org" yaml:"org"`
	Query      string    `json:"query_hash" yaml:"query_hash"`
	Variables  Variables `json:"variables,omitempty" yaml:"variables,omitempty"`
	Scanned    int       `json:"scanned" yaml:"scanned"`
	Matched    int       `json:"matched" yaml:"matched"`
	Total      int       `json:"total" yaml:"total"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// ScanMatch is one accepted node of a recorded scan.
type ScanMatch struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Position int    `json:"position" yaml:"position"`
	Name     string `json:"name" yaml:"name"`
	Node     Node   `json:"node" yaml:"node"`
}
