// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and contact addresses from a directory of
// plain-text files. Each file in the directory represents one secret: the
// filename is the key name and the file contents (trimmed) are the value.
//
// Recognised key files: ncbi-api-key, unpaywall-email.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/litfetch/pkg/types"
)

// Key file names.
const (
	KeyNCBIAPIKey     = "ncbi-api-key"
	KeyUnpaywallEmail = "unpaywall-email"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on w but do not abort.
func Load(dir string, w io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if w != nil {
				fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			}
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply copies recognised secrets into cfg. Explicit configuration wins:
// the NCBI key is used only when none is configured, and the Unpaywall
// address only replaces an empty or default acquisition email.
func Apply(cfg *types.Config, secrets map[string]string) {
	if key := secrets[KeyNCBIAPIKey]; key != "" && cfg.Search.NCBIAPIKey == "" {
		cfg.Search.NCBIAPIKey = key
	}
	if email := secrets[KeyUnpaywallEmail]; email != "" {
		if cfg.Acquisition.Email == "" || cfg.Acquisition.Email == types.DefaultEmail {
			cfg.Acquisition.Email = email
		}
	}
}
