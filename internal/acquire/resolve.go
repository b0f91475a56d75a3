// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/pkg/types"
)

// unpaywallAPIBase is the Unpaywall v2 endpoint. Declared as a var so tests
// can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2"

// unpaywallResponse captures the fields we need from an Unpaywall record.
type unpaywallResponse struct {
	BestOALocation *unpaywallLocation `json:"best_oa_location"`
}

type unpaywallLocation struct {
	URLForPDF  string `json:"url_for_pdf"`
	URLForPage string `json:"url_for_landing_page"`
}

// Resolver finds a downloadable PDF location for a paper. Lookups by DOI
// go through the Getter tagged as the unpaywall source, so they share the
// session's rate limiter.
type Resolver struct {
	Getter *httputil.Getter
	Email  string
	Log    io.Writer
}

// Resolve returns a PDF URL for p, or "" when none can be found. A paper
// that already carries a PDF URL or an arXiv ID is answered without any
// network call. Lookup failures are logged and reported as "".
func (r *Resolver) Resolve(ctx context.Context, p *types.Paper) string {
	switch {
	case p.PDFURL != "":
		return p.PDFURL
	case p.ArxivID != "":
		return types.ArxivPDFURL(p.ArxivID)
	case p.DOI == "":
		return ""
	}

	pdfURL, err := r.Lookup(ctx, p.DOI)
	if err != nil {
		logf(r.Log, "warning: open-access lookup for %s failed: %v\n", p.DOI, err)
		return ""
	}
	return pdfURL
}

// Lookup queries Unpaywall for doi and returns best_oa_location.url_for_pdf.
// A record without an open-access PDF yields "" and no error.
func (r *Resolver) Lookup(ctx context.Context, doi string) (string, error) {
	if r.Getter == nil {
		return "", fmt.Errorf("resolver has no HTTP getter")
	}
	apiURL := strings.TrimSuffix(unpaywallAPIBase, "/") + "/" + strings.TrimSpace(doi) +
		"?" + url.Values{"email": {r.email()}}.Encode()

	resp, err := r.Getter.GetOK(ctx, types.SourceUnpaywall, apiURL, "application/json")
	if err != nil {
		return "", fmt.Errorf("Unpaywall request: %w", err)
	}
	defer resp.Body.Close()

	var up unpaywallResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return "", fmt.Errorf("parsing Unpaywall response: %w", err)
	}
	if up.BestOALocation == nil {
		return "", nil
	}
	return up.BestOALocation.URLForPDF, nil
}

func (r *Resolver) email() string {
	if r.Email != "" {
		return r.Email
	}
	if r.Getter != nil && r.Getter.Config.Email != "" {
		return r.Getter.Config.Email
	}
	return types.DefaultEmail
}

func logf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}
