// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries bibliographic APIs in parallel and returns
// canonical, deduplicated paper records.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litfetch/pkg/types"
)

// ErrEmptyQuery is returned when the query text is blank.
var ErrEmptyQuery = errors.New("query is empty")

// Source searches a single bibliographic API. A Source must be safe for
// concurrent use and must set Paper.Source to its own Name on every
// record it returns.
type Source interface {
	Name() types.Source
	Search(ctx context.Context, q Query) ([]types.Paper, error)
}

// Query holds the parameters handed to each Source.
type Query struct {
	Text       string
	MaxResults int

	// StartYear and EndYear bound the publication year; zero means unset.
	// Sources that cannot filter by date ignore them.
	StartYear int
	EndYear   int
}

// HasYearRange reports whether either bound is set.
func (q Query) HasYearRange() bool {
	return q.StartYear > 0 || q.EndYear > 0
}

// SearchOptions selects sources and bounds for Orchestrator.Search.
type SearchOptions struct {
	// Sources to query, in dispatch order. Nil queries every registered
	// source; a non-nil empty slice queries none.
	Sources []types.Source

	// MaxResults caps results per source (default 20).
	MaxResults int

	StartYear int
	EndYear   int

	// Timeout bounds each source independently. A source that runs past
	// it counts as failed. Zero disables the bound.
	Timeout time.Duration
}

// Report is the full outcome of a search.
type Report struct {
	Papers            []types.Paper
	Failures          map[types.Source]error
	DuplicatesRemoved int
}

// Summary converts the report into its serialisable form.
func (r Report) Summary() types.SearchSummary {
	s := types.SearchSummary{
		Total:             len(r.Papers),
		DuplicatesRemoved: r.DuplicatesRemoved,
		Timestamp:         time.Now(),
	}
	if len(r.Failures) > 0 {
		s.SourceErrors = make(map[types.Source]string, len(r.Failures))
		for src, err := range r.Failures {
			s.SourceErrors[src] = err.Error()
		}
	}
	return s
}

// Orchestrator fans a query out to its registered sources.
type Orchestrator struct {
	sources map[types.Source]Source
	order   []types.Source
	w       io.Writer
}

// NewOrchestrator registers sources in the given order, which is also the
// default dispatch order. Status lines are written to w (nil discards).
func NewOrchestrator(w io.Writer, sources ...Source) *Orchestrator {
	if w == nil {
		w = io.Discard
	}
	o := &Orchestrator{
		sources: make(map[types.Source]Source, len(sources)),
		w:       w,
	}
	for _, s := range sources {
		if _, dup := o.sources[s.Name()]; dup {
			continue
		}
		o.sources[s.Name()] = s
		o.order = append(o.order, s.Name())
	}
	return o
}

// Registered returns the registered source names in dispatch order.
func (o *Orchestrator) Registered() []types.Source {
	return append([]types.Source(nil), o.order...)
}

// Search returns the deduplicated records from every requested source.
// Source failures are logged and contribute nothing; Search only fails on
// caller errors (blank query, unknown source).
func (o *Orchestrator) Search(ctx context.Context, query string, opts SearchOptions) ([]types.Paper, error) {
	rep, err := o.SearchReport(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return rep.Papers, nil
}

// SearchReport is Search plus per-source failures and dedup statistics.
func (o *Orchestrator) SearchReport(ctx context.Context, query string, opts SearchOptions) (Report, error) {
	if strings.TrimSpace(query) == "" {
		return Report{}, ErrEmptyQuery
	}

	dispatch := opts.Sources
	if dispatch == nil {
		dispatch = o.order
	}
	for _, name := range dispatch {
		if _, ok := o.sources[name]; !ok {
			return Report{}, fmt.Errorf("%w: %q is not registered", types.ErrUnknownSource, name)
		}
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}
	q := Query{
		Text:       query,
		MaxResults: maxResults,
		StartYear:  opts.StartYear,
		EndYear:    opts.EndYear,
	}

	type slot struct {
		papers []types.Paper
		err    error
	}
	slots := make([]slot, len(dispatch))

	// Tasks never return an error so that no failure cancels a sibling;
	// each writes only its own slot.
	var g errgroup.Group
	for i, name := range dispatch {
		i := i
		src := o.sources[name]
		g.Go(func() error {
			taskCtx := ctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			papers, err := src.Search(taskCtx, q)
			slots[i] = slot{papers: papers, err: err}
			return nil
		})
	}
	g.Wait()

	rep := Report{Failures: make(map[types.Source]error)}
	var all []types.Paper
	for i, s := range slots {
		name := dispatch[i]
		if s.err != nil {
			fmt.Fprintf(o.w, "warning: source %s failed: %v\n", name, s.err)
			rep.Failures[name] = s.err
			continue
		}
		all = append(all, s.papers...)
	}

	rep.Papers, rep.DuplicatesRemoved = DedupStats(all)
	if rep.Papers == nil {
		rep.Papers = []types.Paper{}
	}
	return rep, nil
}
