package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docpixie/docpixie/agent"
	"github.com/docpixie/docpixie/conversation"
	"github.com/docpixie/docpixie/message"
)

var (
	askConversationID string
	askJSON           bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question about the stored documents",
	Long: `Ask a question and get a vision-grounded answer. The agent plans
retrieval tasks, looks at the relevant page images, and synthesizes an
answer from what it saw.

Pass --conversation to continue an earlier exchange; follow-up questions
can then refer back to previous answers.

Examples:
  docpixie ask "What was the Q3 revenue?"
  docpixie ask "How does that compare to Q2?" --conversation 4f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askConversationID, "conversation", "", "conversation id to continue")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	var rec *conversation.Record
	if askConversationID != "" {
		var err error
		rec, err = conversations.Get(ctx, askConversationID)
		if err != nil {
			return fmt.Errorf("load conversation %s: %w", askConversationID, err)
		}
	} else {
		rec = conversation.NewRecord(query)
	}

	result := pixie.Query(ctx, query, rec.Messages)

	rec.Append(message.New(message.RoleUser, query))
	answer := message.New(message.RoleAssistant, result.Answer)
	answer.Cost = result.TotalCost
	rec.Append(answer)
	if err := conversations.Save(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save conversation: %v\n", err)
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Answer)
	printQueryStats(result)
	fmt.Printf("\nConversation: %s\n", rec.ID)
	return nil
}

func printQueryStats(result *agent.QueryResult) {
	pages := result.UniquePages()
	if len(pages) == 0 && result.TotalCost == 0 {
		return
	}
	fmt.Printf("\n(%d pages analyzed, %d iterations, %.1fs",
		len(pages), result.TotalIterations, result.ProcessingTime.Seconds())
	if result.TotalCost > 0 {
		fmt.Printf(", $%.4f", result.TotalCost)
	}
	fmt.Println(")")
}
