package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var addName string

var addCmd = &cobra.Command{
	Use:   "add <image>...",
	Short: "Ingest a document from pre-rendered page images",
	Long: `Ingest a document from page images, one file per page, in page order.
Glob patterns are expanded and sorted, so numbered page files keep their
order.

Examples:
  docpixie add report-page-*.png --name "Q3 Report"
  docpixie add scan1.jpg scan2.jpg scan3.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "document name (defaults to the first file's base name)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			// Not a pattern, or nothing matched; let ingestion validate it.
			paths = append(paths, arg)
			continue
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}

	name := addName
	if name == "" {
		base := filepath.Base(paths[0])
		name = base[:len(base)-len(filepath.Ext(base))]
	}

	doc, err := pixie.AddDocumentImages(ctx, name, paths)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	fmt.Printf("Added %q (%d pages)\n", doc.Name, doc.PageCount())
	fmt.Printf("  id: %s\n", doc.ID)
	if doc.Summary != "" {
		fmt.Printf("  summary: %s\n", doc.Summary)
	}
	return nil
}
