package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/litfetch/internal/catalog"
	"github.com/pdiddy/litfetch/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the catalog of downloaded papers",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded papers, newest first",
	RunE:  runCatalogList,
}

func init() {
	catalogListCmd.Flags().String("source", "", "only papers from this source")
	catalogListCmd.Flags().String("title-contains", "", "only papers whose title contains this text (case-insensitive)")
	catalogListCmd.Flags().Int("limit", 0, "maximum entries to list (default 100)")
	catalogListCmd.Flags().Bool("yaml", false, "output entries as YAML")

	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	var f catalog.Filter
	if name, _ := cmd.Flags().GetString("source"); name != "" {
		src, err := types.ParseSource(name)
		if err != nil {
			return err
		}
		f.Source = src
	}
	f.TitleContains, _ = cmd.Flags().GetString("title-contains")
	f.Limit, _ = cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Catalog.Path
	if path == "" {
		path = types.DefaultCatalogPath
	}
	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.List(cmd.Context(), f)
	if err != nil {
		return err
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return catalog.WriteYAML(entries, cmd.OutOrStdout())
	}
	catalog.WriteTable(entries, cmd.OutOrStdout())
	return nil
}
