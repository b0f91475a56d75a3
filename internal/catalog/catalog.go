// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite ledger of downloaded papers so later runs
// can list what is already on disk and where it came from.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litfetch/pkg/types"
)

const defaultListLimit = 100

// Catalog is a handle on the ledger database. It is safe for concurrent
// use; writes are serialised through a single connection.
type Catalog struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one downloaded paper.
type Entry struct {
	Path         string      `json:"path" yaml:"path"`
	DownloadedAt time.Time   `json:"downloaded_at" yaml:"downloaded_at"`
	Paper        types.Paper `json:"paper" yaml:"paper"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Source        types.Source
	TitleContains string
	Limit         int
}

// Open opens or creates the catalog at path, creating its parent
// directory and schema as needed.
func Open(path string) (*Catalog, error) {
	if path == "" {
		path = types.DefaultCatalogPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db, now: time.Now}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			path TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			year TEXT,
			doi TEXT,
			pmid TEXT,
			arxiv_id TEXT,
			journal TEXT,
			source TEXT NOT NULL,
			pdf_url TEXT,
			downloaded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_source ON downloads(source)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores p as downloaded to path, replacing any earlier entry for
// the same path.
func (c *Catalog) Record(ctx context.Context, p types.Paper, path string) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO downloads (path, title, authors, year, doi, pmid, arxiv_id, journal, source, pdf_url, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, year=excluded.year,
			doi=excluded.doi, pmid=excluded.pmid, arxiv_id=excluded.arxiv_id,
			journal=excluded.journal, source=excluded.source,
			pdf_url=excluded.pdf_url, downloaded_at=excluded.downloaded_at`,
		path, p.Title, string(authorsJSON), p.Year, p.DOI, p.PMID, p.ArxivID,
		p.Journal, string(p.Source), p.PDFURL, c.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", path, err)
	}
	return nil
}

// List returns entries matching f, newest first.
func (c *Catalog) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT path, title, authors, year, doi, pmid, arxiv_id, journal, source, pdf_url, downloaded_at
		FROM downloads WHERE 1=1`)

	if f.Source != "" {
		qb.WriteString(` AND source = ?`)
		args = append(args, string(f.Source))
	}
	if f.TitleContains != "" {
		qb.WriteString(` AND instr(lower(title), lower(?)) > 0`)
		args = append(args, f.TitleContains)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	qb.WriteString(` ORDER BY downloaded_at DESC, path LIMIT ?`)
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			authorsJSON sql.NullString
			source      string
			stamp       string
		)
		if err := rows.Scan(&e.Path, &e.Paper.Title, &authorsJSON, &e.Paper.Year,
			&e.Paper.DOI, &e.Paper.PMID, &e.Paper.ArxivID, &e.Paper.Journal,
			&source, &e.Paper.PDFURL, &stamp); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		e.Paper.Source = types.Source(source)
		if authorsJSON.Valid && authorsJSON.String != "" {
			if err := json.Unmarshal([]byte(authorsJSON.String), &e.Paper.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors for %s: %w", e.Path, err)
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			e.DownloadedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// WriteTable prints entries as an aligned listing.
func WriteTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No downloads recorded.")
		return
	}
	fmt.Fprintf(w, "%-20s  %-8s  %-50s  %s\n", "Downloaded", "Source", "Title", "Path")
	fmt.Fprintf(w, "%-20s  %-8s  %-50s  %s\n", "----------", "------", "-----", "----")
	for _, e := range entries {
		title := e.Paper.Title
		if r := []rune(title); len(r) > 50 {
			title = string(r[:47]) + "..."
		}
		fmt.Fprintf(w, "%-20s  %-8s  %-50s  %s\n",
			e.DownloadedAt.Local().Format("2006-01-02 15:04:05"), e.Paper.Source, title, e.Path)
	}
	fmt.Fprintf(w, "\n%d download(s)\n", len(entries))
}

// WriteYAML dumps entries as a YAML list.
func WriteYAML(entries []Entry, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}
