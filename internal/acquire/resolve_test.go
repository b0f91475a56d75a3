// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/pkg/types"
)

const sampleUnpaywallOA = `{
  "doi": "10.1038/nature12373",
  "is_oa": true,
  "best_oa_location": {
    "url_for_pdf": "https://europepmc.org/articles/pmc4221854?pdf=render",
    "url_for_landing_page": "https://europepmc.org/articles/pmc4221854"
  }
}`

const sampleUnpaywallNoOA = `{"doi": "10.1016/x", "is_oa": false, "best_oa_location": null}`

const sampleUnpaywallLandingOnly = `{
  "doi": "10.1016/y",
  "best_oa_location": {"url_for_pdf": null, "url_for_landing_page": "https://example.org/landing"}
}`

// withUnpaywall points the Unpaywall base at ts for the duration of the test.
func withUnpaywall(t *testing.T, ts *httptest.Server) {
	t.Helper()
	orig := unpaywallAPIBase
	unpaywallAPIBase = ts.URL
	t.Cleanup(func() { unpaywallAPIBase = orig })
}

type recordingWaiter struct {
	mu      sync.Mutex
	sources []types.Source
}

func (w *recordingWaiter) Wait(_ context.Context, src types.Source) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources = append(w.sources, src)
	return nil
}

func TestResolverLookup(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{name: "open access pdf", status: http.StatusOK, body: sampleUnpaywallOA, want: "https://europepmc.org/articles/pmc4221854?pdf=render"},
		{name: "no oa location", status: http.StatusOK, body: sampleUnpaywallNoOA, want: ""},
		{name: "landing page only", status: http.StatusOK, body: sampleUnpaywallLandingOnly, want: ""},
		{name: "not found", status: http.StatusNotFound, body: `{"error": true}`, wantErr: true},
		{name: "bad json", status: http.StatusOK, body: `{not json`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()
			withUnpaywall(t, ts)

			r := &Resolver{Getter: &httputil.Getter{Client: ts.Client()}, Email: "me@example.org"}
			got, err := r.Lookup(context.Background(), "10.1038/nature12373")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverLookupRequest(t *testing.T) {
	var gotPath, gotEmail string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEmail = r.URL.Query().Get("email")
		w.Write([]byte(sampleUnpaywallOA))
	}))
	defer ts.Close()
	withUnpaywall(t, ts)

	waiter := &recordingWaiter{}
	r := &Resolver{Getter: &httputil.Getter{Client: ts.Client(), Limiter: waiter}, Email: "me@example.org"}
	_, err := r.Lookup(context.Background(), "10.1038/nature12373")
	require.NoError(t, err)

	assert.Equal(t, "/10.1038/nature12373", gotPath)
	assert.Equal(t, "me@example.org", gotEmail)
	assert.Equal(t, []types.Source{types.SourceUnpaywall}, waiter.sources)
}

func TestResolverEmailFallsBackToConfig(t *testing.T) {
	var gotEmail string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.URL.Query().Get("email")
		w.Write([]byte(sampleUnpaywallNoOA))
	}))
	defer ts.Close()
	withUnpaywall(t, ts)

	r := &Resolver{Getter: &httputil.Getter{Client: ts.Client(), Config: types.HTTPConfig{Email: "cfg@example.org"}}}
	_, err := r.Lookup(context.Background(), "10.1/x")
	require.NoError(t, err)
	assert.Equal(t, "cfg@example.org", gotEmail)
}

func TestResolveWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(sampleUnpaywallOA))
	}))
	defer ts.Close()
	withUnpaywall(t, ts)

	r := &Resolver{Getter: &httputil.Getter{Client: ts.Client()}}
	ctx := context.Background()

	assert.Equal(t, "https://host/x.pdf",
		r.Resolve(ctx, &types.Paper{PDFURL: "https://host/x.pdf", ArxivID: "1", DOI: "10.1/a"}))
	assert.Equal(t, "https://arxiv.org/pdf/2301.00001.pdf",
		r.Resolve(ctx, &types.Paper{ArxivID: "2301.00001", DOI: "10.1/a"}))
	assert.Equal(t, "", r.Resolve(ctx, &types.Paper{Title: "nothing to go on"}))
	assert.Zero(t, hits.Load(), "no lookup expected")
}

func TestResolveByDOI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleUnpaywallOA))
	}))
	defer ts.Close()
	withUnpaywall(t, ts)

	r := &Resolver{Getter: &httputil.Getter{Client: ts.Client()}}
	got := r.Resolve(context.Background(), &types.Paper{DOI: "10.1038/nature12373"})
	assert.Equal(t, "https://europepmc.org/articles/pmc4221854?pdf=render", got)
}

func TestResolveLookupFailureLogged(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()
	withUnpaywall(t, ts)

	var buf bytes.Buffer
	r := &Resolver{Getter: &httputil.Getter{Client: ts.Client()}, Log: &buf}
	got := r.Resolve(context.Background(), &types.Paper{DOI: "10.1/broken"})
	assert.Equal(t, "", got)
	assert.Contains(t, buf.String(), "warning: open-access lookup for 10.1/broken failed")
}

func TestResolveTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	withUnpaywall(t, ts)
	ts.Close()

	r := &Resolver{Getter: &httputil.Getter{Client: &http.Client{Timeout: time.Second}}}
	assert.Equal(t, "", r.Resolve(context.Background(), &types.Paper{DOI: "10.1/x"}))
}
