package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/litfetch/internal/search"
	"github.com/pdiddy/litfetch/pkg/types"
)

func TestInheritHTTP(t *testing.T) {
	shared := types.HTTPConfig{Timeout: 30 * time.Second, UserAgent: "ua", Email: "a@b", MaxRetries: 2}

	var empty types.HTTPConfig
	inheritHTTP(&empty, shared)
	assert.Equal(t, shared, empty)

	own := types.HTTPConfig{Timeout: time.Minute, Email: "own@b"}
	inheritHTTP(&own, shared)
	assert.Equal(t, time.Minute, own.Timeout)
	assert.Equal(t, "own@b", own.Email)
	assert.Equal(t, "ua", own.UserAgent)
}

func TestFilterSources(t *testing.T) {
	papers := []types.Paper{
		{Title: "a", Source: types.SourcePubMed},
		{Title: "b", Source: types.SourceArxiv},
		{Title: "c", Source: types.SourcePubMed},
	}
	assert.Equal(t, papers, filterSources(papers, nil))

	got := filterSources(papers, []types.Source{types.SourcePubMed})
	assert.Equal(t, []types.Paper{papers[0], papers[2]}, got)
}

func TestResolvedOptions(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Search.Sources = []string{"arxiv", "pubmed"}

	got := resolvedOptions(cfg, search.SearchOptions{StartYear: 2020})
	assert.Equal(t, []types.Source{types.SourceArxiv, types.SourcePubMed}, got.Sources)
	assert.Equal(t, types.DefaultMaxResults, got.MaxResults)
	assert.Equal(t, 2020, got.StartYear)

	explicit := resolvedOptions(cfg, search.SearchOptions{Sources: []types.Source{}, MaxResults: 5})
	assert.Empty(t, explicit.Sources)
	assert.Equal(t, 5, explicit.MaxResults)
}
