package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docpixie/docpixie/conversation"
	"github.com/docpixie/docpixie/message"
)

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive Q&A session over the stored documents",
	Long: `Start an interactive session. Each answer becomes context for the
next question, so follow-ups like "what about the previous year?" work.
The session is persisted; resume it later with --conversation.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "conversation id to resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var rec *conversation.Record
	if chatConversationID != "" {
		var err error
		rec, err = conversations.Get(ctx, chatConversationID)
		if err != nil {
			return fmt.Errorf("load conversation %s: %w", chatConversationID, err)
		}
		fmt.Printf("Resuming %q (%d turns)\n", rec.Title, rec.Turns())
	}

	fmt.Println("Ask about your documents. Type 'exit' or press Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		if rec == nil {
			rec = conversation.NewRecord(query)
		}

		result := pixie.Query(ctx, query, rec.Messages)
		fmt.Printf("\n%s\n", result.Answer)
		printQueryStats(result)
		fmt.Println()

		rec.Append(message.New(message.RoleUser, query))
		answer := message.New(message.RoleAssistant, result.Answer)
		answer.Cost = result.TotalCost
		rec.Append(answer)
		if err := conversations.Save(ctx, rec); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save conversation: %v\n", err)
		}
	}

	if rec != nil {
		fmt.Printf("Conversation saved: %s\n", rec.ID)
	}
	return scanner.Err()
}
