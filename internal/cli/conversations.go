package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Manage saved conversations",
	RunE:  runConversationsList,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <conversation-id>",
	Short: "Delete a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.AddCommand(conversationsDeleteCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	recs, err := conversations.List(context.Background())
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}

	for _, rec := range recs {
		fmt.Printf("%s  %s (%d turns, updated %s)\n",
			rec.ID, rec.Title, rec.Turns(), rec.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := conversations.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}
