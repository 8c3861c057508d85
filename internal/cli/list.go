package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	infos, err := pixie.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No documents stored. Use 'docpixie add' to ingest one.")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%s  %s (%d pages, added %s)\n",
			info.ID, info.Name, info.PageCount, info.CreatedAt.Format("2006-01-02"))
		if info.Summary != "" {
			fmt.Printf("    %s\n", info.Summary)
		}
	}
	return nil
}
