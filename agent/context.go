package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
)

const (
	summaryMaxTokens   = 500
	summaryTemperature = 0.3
)

// contextProcessor condenses long conversation histories before
// reformulation. Histories at or under the turn threshold pass through
// unchanged; longer ones get their oldest turns folded into a one-shot summary
// while the most recent turns stay verbatim.
type contextProcessor struct {
	llm              provider.Provider
	maxTurns         int
	turnsToSummarize int
	turnsToKeepFull  int
	log              *slog.Logger
}

func newContextProcessor(llm provider.Provider, cfg *Config) *contextProcessor {
	return &contextProcessor{
		llm:              llm,
		maxTurns:         cfg.MaxConversationTurns,
		turnsToSummarize: cfg.TurnsToSummarize,
		turnsToKeepFull:  cfg.TurnsToKeepFull,
		log:              logging.WithComponent(cfg.Name + ".context"),
	}
}

// Process returns the condensed context string plus the messages a caller
// should display. Below the turn threshold both mirror the input.
func (c *contextProcessor) Process(ctx context.Context, messages []*message.Message, currentQuery string) (string, []*message.Message, error) {
	turns := message.CountTurns(messages)
	if turns <= c.maxTurns {
		return formatMessages(messages), message.CloneMessages(messages), nil
	}

	c.log.Info("summarizing conversation context", "turns", turns, "max_turns", c.maxTurns)

	toSummarize, toKeep := c.split(messages)

	summary, err := c.summarize(ctx, toSummarize)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errors.ErrContextProcessing, err)
	}

	var b strings.Builder
	b.WriteString("Previous Conversation Summary:\n")
	b.WriteString(summary)
	b.WriteString("\n")
	if len(toKeep) > 0 {
		b.WriteString("\nRecent Conversation:\n")
		b.WriteString(formatMessages(toKeep))
	}
	b.WriteString("\n\nCurrent Query: ")
	b.WriteString(currentQuery)

	summaryMsg := message.New(message.RoleSystem,
		fmt.Sprintf("[Conversation Summary of First %d Turns]\n%s", c.turnsToSummarize, summary))
	display := append([]*message.Message{summaryMsg}, message.CloneMessages(toKeep)...)

	return b.String(), display, nil
}

// split divides the history at the boundary after the Nth user/assistant
// pair, then trims the kept tail to the last turnsToKeepFull turns.
func (c *contextProcessor) split(messages []*message.Message) (toSummarize, toKeep []*message.Message) {
	turnCount := 0
	splitIndex := 0
	for i := 0; i < len(messages); i += 2 {
		if i+1 < len(messages) && messages[i].Role == message.RoleUser {
			turnCount++
			if turnCount == c.turnsToSummarize {
				splitIndex = i + 2
				break
			}
		}
	}

	toSummarize = messages[:splitIndex]
	toKeep = messages[splitIndex:]

	if c.turnsToKeepFull > 0 {
		maxKeep := c.turnsToKeepFull * 2
		if len(toKeep) > maxKeep {
			toKeep = toKeep[len(toKeep)-maxKeep:]
		}
	}
	return toSummarize, toKeep
}

func (c *contextProcessor) summarize(ctx context.Context, messages []*message.Message) (string, error) {
	prompt := renderPrompt(conversationSummaryPrompt,
		"conversation_text", formatMessages(messages))

	out, err := c.llm.ProcessText(ctx, []provider.Message{
		provider.SystemText(systemSummarizer),
		provider.UserText(prompt),
	}, summaryMaxTokens, summaryTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func formatMessages(messages []*message.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		role := "Assistant"
		if msg.Role == message.RoleUser {
			role = "User"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	return strings.Join(parts, "\n\n")
}
