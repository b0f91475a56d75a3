// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session assembles one acquisition session: a shared rate
// limiter, the source adapters, the search orchestrator, the PDF resolver
// and the download manager, all configured from a types.Config.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/litfetch/internal/acquire"
	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/internal/ratelimit"
	"github.com/pdiddy/litfetch/internal/search"
	"github.com/pdiddy/litfetch/pkg/types"
)

// Session owns the components of one run. Every source and the resolver
// share Limiter, so concurrent calls to the same API stay spaced.
type Session struct {
	Config       types.Config
	Limiter      *ratelimit.Limiter
	Orchestrator *search.Orchestrator
	Resolver     *acquire.Resolver
	Manager      *acquire.Manager

	log io.Writer
}

// New builds a session from cfg. Zero config values take their defaults.
// Status lines from all components go to w, serialised so concurrent
// writers do not interleave within a line.
func New(cfg types.Config, w io.Writer) *Session {
	cfg = withDefaults(cfg)
	log := newSyncWriter(w)

	lim := ratelimit.New(cfg.RateLimits, 0)
	searchGetter := httputil.NewGetter(lim, cfg.Search.HTTPConfig)
	acqGetter := httputil.NewGetter(lim, cfg.Acquisition.HTTPConfig)

	orch := search.NewOrchestrator(log,
		&search.PubMedSource{
			Getter: searchGetter,
			Email:  cfg.Search.Email,
			APIKey: cfg.Search.NCBIAPIKey,
			Log:    log,
		},
		&search.ArxivSource{Getter: searchGetter, Log: log},
		&search.BiorxivSource{Limiter: lim, Log: log},
	)

	resolver := &acquire.Resolver{Getter: acqGetter, Email: cfg.Acquisition.Email, Log: log}
	mgr := &acquire.Manager{
		// PDF hosts are not rate limited; only the lookup APIs are.
		Getter:   httputil.NewGetter(nil, cfg.Acquisition.HTTPConfig),
		Resolver: resolver,
		Dir:      cfg.Acquisition.DownloadDir,
		Log:      log,
	}

	return &Session{
		Config:       cfg,
		Limiter:      lim,
		Orchestrator: orch,
		Resolver:     resolver,
		Manager:      mgr,
		log:          log,
	}
}

// SetRecorder attaches a catalog (or any Recorder) to the download manager.
func (s *Session) SetRecorder(r acquire.Recorder) {
	s.Manager.Recorder = r
}

// Search runs query across the configured sources. Options left zero are
// taken from the session config; nil opts.Sources falls back to
// search.sources and then to every registered source.
func (s *Session) Search(ctx context.Context, query string, opts search.SearchOptions) (search.Report, error) {
	if opts.Sources == nil && len(s.Config.Search.Sources) > 0 {
		srcs, err := types.ParseSources(s.Config.Search.Sources)
		if err != nil {
			return search.Report{}, fmt.Errorf("search.sources: %w", err)
		}
		opts.Sources = srcs
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = s.Config.Search.MaxResults
	}
	if opts.Timeout <= 0 {
		opts.Timeout = s.Config.Search.SourceTimeout
	}
	return s.Orchestrator.SearchReport(ctx, query, opts)
}

// Download fetches PDFs for papers, updating each paper's PDFURL in place
// when one is resolved. maxConcurrent <= 0 uses acquisition.max_concurrent.
// The result maps title to file path for successful downloads.
func (s *Session) Download(ctx context.Context, papers []types.Paper, maxConcurrent int) map[string]string {
	if maxConcurrent <= 0 {
		maxConcurrent = s.Config.Acquisition.MaxConcurrent
	}
	ptrs := make([]*types.Paper, len(papers))
	for i := range papers {
		ptrs[i] = &papers[i]
	}
	return s.Manager.BatchDownload(ctx, ptrs, maxConcurrent)
}

func withDefaults(cfg types.Config) types.Config {
	def := types.DefaultConfig()
	cfg.Search.HTTPConfig = httpDefaults(cfg.Search.HTTPConfig, def.Search.HTTPConfig)
	cfg.Acquisition.HTTPConfig = httpDefaults(cfg.Acquisition.HTTPConfig, def.Acquisition.HTTPConfig)
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = def.Search.MaxResults
	}
	if cfg.Acquisition.DownloadDir == "" {
		cfg.Acquisition.DownloadDir = def.Acquisition.DownloadDir
	}
	if cfg.Acquisition.MaxConcurrent <= 0 {
		cfg.Acquisition.MaxConcurrent = def.Acquisition.MaxConcurrent
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = def.Catalog.Path
	}
	return cfg
}

func httpDefaults(h, def types.HTTPConfig) types.HTTPConfig {
	if h.Timeout <= 0 {
		h.Timeout = def.Timeout
	}
	if h.UserAgent == "" {
		h.UserAgent = def.UserAgent
	}
	if h.Email == "" {
		h.Email = def.Email
	}
	return h
}

// syncWriter serialises writes from concurrent goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
