// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfetch/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyNCBIAPIKey, "  ncbi_abc123  \n")
				writeFile(t, dir, KeyUnpaywallEmail, "user@example.com\n")
				return dir
			},
			want: map[string]string{
				KeyNCBIAPIKey:     "ncbi_abc123",
				KeyUnpaywallEmail: "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyNCBIAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{KeyNCBIAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeyUnpaywallEmail, "me@example.org")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{KeyUnpaywallEmail: "me@example.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	var buf bytes.Buffer
	got, err := Load(dir, &buf)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	assert.NotContains(t, got, "bad-key")
	assert.Contains(t, buf.String(), "warning: could not read secret bad-key")
}

func TestApply(t *testing.T) {
	s := map[string]string{
		KeyNCBIAPIKey:     "from-file",
		KeyUnpaywallEmail: "file@example.org",
	}

	cfg := types.DefaultConfig()
	Apply(&cfg, s)
	assert.Equal(t, "from-file", cfg.Search.NCBIAPIKey)
	assert.Equal(t, "file@example.org", cfg.Acquisition.Email)

	cfg = types.DefaultConfig()
	cfg.Search.NCBIAPIKey = "configured"
	cfg.Acquisition.Email = "configured@example.org"
	Apply(&cfg, s)
	assert.Equal(t, "configured", cfg.Search.NCBIAPIKey)
	assert.Equal(t, "configured@example.org", cfg.Acquisition.Email)

	cfg = types.DefaultConfig()
	Apply(&cfg, map[string]string{})
	assert.Empty(t, cfg.Search.NCBIAPIKey)
	assert.Equal(t, types.DefaultEmail, cfg.Acquisition.Email)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
