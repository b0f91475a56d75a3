// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litfetch/pkg/types"
)

// QueryFile is the on-disk representation of a search and its records.
// A saved search can be handed to the download command later without
// re-querying any API.
type QueryFile struct {
	Query   QueryParams         `yaml:"query"`
	Papers  []types.Paper       `yaml:"papers"`
	Summary types.SearchSummary `yaml:"summary"`
}

// QueryParams stores the search parameters in a serializable form.
type QueryParams struct {
	Text       string         `yaml:"text"`
	Sources    []types.Source `yaml:"sources,omitempty"`
	MaxResults int            `yaml:"max_results"`
	StartYear  int            `yaml:"start_year,omitempty"`
	EndYear    int            `yaml:"end_year,omitempty"`
}

// Params records the query text and options that produced a report.
func Params(query string, opts SearchOptions) QueryParams {
	return QueryParams{
		Text:       query,
		Sources:    opts.Sources,
		MaxResults: opts.MaxResults,
		StartYear:  opts.StartYear,
		EndYear:    opts.EndYear,
	}
}

// Options converts stored parameters back into SearchOptions.
func (p QueryParams) Options() SearchOptions {
	return SearchOptions{
		Sources:    p.Sources,
		MaxResults: p.MaxResults,
		StartYear:  p.StartYear,
		EndYear:    p.EndYear,
	}
}

// WriteQueryFile saves query parameters and records to a YAML file.
func WriteQueryFile(path string, params QueryParams, rep Report) error {
	qf := QueryFile{
		Query:   params,
		Papers:  rep.Papers,
		Summary: rep.Summary(),
	}
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	for i, p := range qf.Papers {
		if _, err := types.ParseSource(string(p.Source)); err != nil {
			return nil, fmt.Errorf("query file paper %d: %w", i, err)
		}
	}
	return &qf, nil
}
