package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := pixie.DeleteDocument(context.Background(), id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}
