package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litfetch/internal/search"
	"github.com/pdiddy/litfetch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search PubMed, arXiv and bioRxiv for papers",
	Long: `Search sends the query to every selected source at once, merges the
results in source order and drops records whose normalized titles repeat.
A failing source is reported and skipped; the others still contribute.

With --save the results are written to a query file that the download
command can read later. With --download the open-access PDFs are fetched
right away.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringSlice("sources", nil, "sources to query, in order (default: pubmed,arxiv,biorxiv)")
	f.Int("max-results", 0, "maximum results per source (default 20)")
	f.Int("from-year", 0, "earliest publication year")
	f.Int("to-year", 0, "latest publication year")
	f.Duration("timeout", 0, "per-source time limit; a source that runs past it counts as failed")
	f.Bool("json", false, "output results as JSON")
	f.Bool("csl", false, "output results as CSL-YAML")
	f.String("save", "", "write the results to this query file")
	f.Bool("download", false, "download open-access PDFs for the results")
	f.Int("max-concurrent", 0, "simultaneous downloads with --download (default 3)")
	f.Bool("no-catalog", false, "do not record downloads in the catalog")

	viper.BindPFlag("search.sources", f.Lookup("sources"))
	viper.BindPFlag("search.max_results", f.Lookup("max-results"))
	viper.BindPFlag("search.source_timeout", f.Lookup("timeout"))

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	fromYear, _ := cmd.Flags().GetInt("from-year")
	toYear, _ := cmd.Flags().GetInt("to-year")
	if fromYear > 0 && toYear > 0 && fromYear > toYear {
		return fmt.Errorf("--from-year %d is after --to-year %d", fromYear, toYear)
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	if asJSON && asCSL {
		return fmt.Errorf("--json and --csl are mutually exclusive")
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

	opts := search.SearchOptions{StartYear: fromYear, EndYear: toYear}
	rep, err := sess.Search(cmd.Context(), query, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		if err := search.FormatJSON(rep, out); err != nil {
			return err
		}
	case asCSL:
		if err := search.FormatCSL(rep, out); err != nil {
			return err
		}
	default:
		search.FormatTable(rep, out)
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		params := search.Params(query, resolvedOptions(sess.Config, opts))
		if err := search.WriteQueryFile(path, params, rep); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(rep.Papers), path)
	}

	if dl, _ := cmd.Flags().GetBool("download"); dl {
		maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")
		sess.Download(cmd.Context(), rep.Papers, maxConcurrent)
	}
	return nil
}

// resolvedOptions fills opts with the values the session actually used,
// so a saved query file records the effective search.
func resolvedOptions(cfg types.Config, opts search.SearchOptions) search.SearchOptions {
	if opts.Sources == nil && len(cfg.Search.Sources) > 0 {
		if srcs, err := types.ParseSources(cfg.Search.Sources); err == nil {
			opts.Sources = srcs
		}
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = cfg.Search.MaxResults
	}
	return opts
}
