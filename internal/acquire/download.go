// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire resolves open-access PDF locations for papers and
// downloads them into a local directory, a bounded number at a time.
package acquire

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/litfetch/internal/httputil"
	"github.com/pdiddy/litfetch/pkg/types"
)

// Recorder is notified after each successful download. The catalog
// implements it.
type Recorder interface {
	Record(ctx context.Context, p types.Paper, path string) error
}

// Manager downloads PDFs into Dir. Resolver may be nil, in which case only
// papers with a PDF URL or an arXiv ID can be fetched.
type Manager struct {
	Getter   *httputil.Getter
	Resolver *Resolver
	Dir      string
	Recorder Recorder
	Log      io.Writer
}

// Download fetches the PDF for p and returns the written path. It returns
// "" with a nil error when no URL can be resolved or the transfer fails;
// both are logged. A non-nil error means the download directory could not
// be created. When filename is empty, Filename(*p) is used.
func (m *Manager) Download(ctx context.Context, p *types.Paper, filename string) (string, error) {
	pdfURL := m.resolve(ctx, p)
	if pdfURL == "" {
		logf(m.Log, "warning: no PDF URL for %q\n", p.Title)
		return "", nil
	}
	p.PDFURL = pdfURL

	if filename == "" {
		filename = Filename(*p)
	}
	dir := m.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filename)

	resp, err := m.Getter.GetOK(ctx, p.Source, pdfURL, "application/pdf")
	if err != nil {
		logf(m.Log, "failed:  %s (%v)\n", filename, err)
		return "", nil
	}
	defer resp.Body.Close()

	if err := writeFile(dest, resp.Body); err != nil {
		logf(m.Log, "failed:  %s (%v)\n", filename, err)
		return "", nil
	}
	logf(m.Log, "downloaded: %s\n", dest)

	if m.Recorder != nil {
		if err := m.Recorder.Record(ctx, *p, dest); err != nil {
			logf(m.Log, "warning: cataloguing %s: %v\n", dest, err)
		}
	}
	return dest, nil
}

// BatchDownload downloads every paper concurrently, admitting at most
// maxConcurrent transfers at once (types.DefaultMaxConcurrent when
// maxConcurrent <= 0). The result maps title to path for the successful
// downloads only; papers sharing a title keep the last one to finish.
func (m *Manager) BatchDownload(ctx context.Context, papers []*types.Paper, maxConcurrent int) map[string]string {
	if maxConcurrent <= 0 {
		maxConcurrent = types.DefaultMaxConcurrent
	}
	gate := semaphore.NewWeighted(int64(maxConcurrent))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]string, len(papers))
	)
	for _, p := range papers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(ctx, 1); err != nil {
				logf(m.Log, "failed:  %s (%v)\n", p.Title, err)
				return
			}
			defer gate.Release(1)

			path, err := m.Download(ctx, p, "")
			if err != nil {
				logf(m.Log, "failed:  %s (%v)\n", p.Title, err)
				return
			}
			if path == "" {
				return
			}
			mu.Lock()
			out[p.Title] = path
			mu.Unlock()
		}()
	}
	wg.Wait()

	logf(m.Log, "\nBatch summary: %d of %d downloaded\n", len(out), len(papers))
	return out
}

func (m *Manager) resolve(ctx context.Context, p *types.Paper) string {
	if m.Resolver != nil {
		return m.Resolver.Resolve(ctx, p)
	}
	switch {
	case p.PDFURL != "":
		return p.PDFURL
	case p.ArxivID != "":
		return types.ArxivPDFURL(p.ArxivID)
	}
	return ""
}

func (m *Manager) dir() string {
	if m.Dir == "" {
		return types.DefaultDownloadDir
	}
	return m.Dir
}

// writeFile streams r to dest through a temporary file in the same
// directory, renaming it into place only once fully written.
func writeFile(dest string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".litfetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
