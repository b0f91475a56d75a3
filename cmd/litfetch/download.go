package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litfetch/internal/catalog"
	"github.com/pdiddy/litfetch/internal/search"
	"github.com/pdiddy/litfetch/internal/session"
	"github.com/pdiddy/litfetch/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [query-file...]",
	Short: "Download open-access PDFs for saved search results",
	Long: `Download reads query files written by "search --save" and fetches a PDF
for every paper it can resolve: the recorded PDF URL first, then the arXiv
PDF, then an Unpaywall lookup by DOI. Papers without an open-access copy
are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Int("max-concurrent", 0, "simultaneous downloads (default 3)")
	downloadCmd.Flags().StringSlice("only-source", nil, "download only papers from these sources")
	downloadCmd.Flags().Bool("no-catalog", false, "do not record downloads in the catalog")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	onlyNames, _ := cmd.Flags().GetStringSlice("only-source")
	only, err := types.ParseSources(onlyNames)
	if err != nil {
		return err
	}

	var papers []types.Paper
	for _, path := range args {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		papers = append(papers, filterSources(qf.Papers, only)...)
	}
	if len(papers) == 0 {
		fmt.Fprintln(os.Stderr, "No papers to download.")
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, closeCatalog, err := openSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")
	got := sess.Download(cmd.Context(), papers, maxConcurrent)
	if len(got) == 0 {
		return fmt.Errorf("none of %d paper(s) could be downloaded", len(papers))
	}
	return nil
}

func filterSources(papers []types.Paper, only []types.Source) []types.Paper {
	if len(only) == 0 {
		return papers
	}
	keep := make(map[types.Source]bool, len(only))
	for _, s := range only {
		keep[s] = true
	}
	var out []types.Paper
	for _, p := range papers {
		if keep[p.Source] {
			out = append(out, p)
		}
	}
	return out
}

// openSession builds a session logging to stderr and, unless --no-catalog
// is set, attaches the catalog. The returned func closes the catalog.
func openSession(cmd *cobra.Command, cfg types.Config) (*session.Session, func(), error) {
	sess := session.New(cfg, os.Stderr)
	if off, _ := cmd.Flags().GetBool("no-catalog"); off {
		return sess, func() {}, nil
	}
	cat, err := catalog.Open(sess.Config.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	sess.SetRecorder(cat)
	return sess, func() { cat.Close() }, nil
}
