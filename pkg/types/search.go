// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the canonical paper record and the configuration
// structures shared by the search, acquisition and catalog stages.
//
// Downstream consumers (ranking by journal, text indexing) depend only on
// Paper; nothing in this package performs I/O.
package types

import "time"

// SearchSummary describes the outcome of one orchestrated search.
type SearchSummary struct {
	Total             int               `json:"total" yaml:"total"`
	DuplicatesRemoved int               `json:"duplicates_removed" yaml:"duplicates_removed"`
	SourceErrors      map[Source]string `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`
	Timestamp         time.Time         `json:"timestamp" yaml:"timestamp"`
}
