// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound call.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with every request (e.g. "litfetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Email identifies the caller to PubMed and Unpaywall, both of which
	// ask for a contact address.
	Email string `json:"email" yaml:"email" mapstructure:"email"`

	// MaxRetries bounds retries on HTTP 429 (0 uses the httputil default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the per-source result cap (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Sources names the sources to query; empty means all of AllSources.
	Sources []string `json:"sources" yaml:"sources" mapstructure:"sources"`

	// SourceTimeout bounds a single source's search. Zero disables it.
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout" mapstructure:"source_timeout"`

	// NCBIAPIKey raises the PubMed E-utilities rate allowance when set.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty" mapstructure:"ncbi_api_key"`
}

// AcquisitionConfig holds settings for PDF resolution and download.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DownloadDir receives downloaded PDFs; it is created if absent.
	DownloadDir string `json:"download_dir" yaml:"download_dir" mapstructure:"download_dir"`

	// MaxConcurrent caps simultaneous downloads in a batch (default 3).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// CatalogConfig locates the SQLite ledger of downloaded papers.
type CatalogConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups every stage's settings for one acquisition session.
type Config struct {
	Search      SearchConfig      `json:"search" yaml:"search" mapstructure:"search"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition" mapstructure:"acquisition"`
	Catalog     CatalogConfig     `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	// RateLimits overrides the minimum interval between calls per source.
	RateLimits map[Source]time.Duration `json:"rate_limits,omitempty" yaml:"rate_limits,omitempty" mapstructure:"rate_limits"`
}

// Defaults used when a config value is zero.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultUserAgent     = "litfetch/0.1"
	DefaultEmail         = "research@example.com"
	DefaultMaxResults    = 20
	DefaultMaxConcurrent = 3
	DefaultDownloadDir   = "downloaded_papers"
	DefaultCatalogPath   = "downloaded_papers/catalog.db"
)

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	h := HTTPConfig{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Email:     DefaultEmail,
	}
	return Config{
		Search: SearchConfig{
			HTTPConfig: h,
			MaxResults: DefaultMaxResults,
		},
		Acquisition: AcquisitionConfig{
			HTTPConfig:    h,
			DownloadDir:   DefaultDownloadDir,
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Catalog: CatalogConfig{Path: DefaultCatalogPath},
	}
}
