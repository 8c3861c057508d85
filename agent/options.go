package agent

import (
	"strings"

	"github.com/docpixie/docpixie/provider"
)

// Config controls behaviour of the adaptive agent. It groups the execution
// loop limits, conversation-context knobs, and prompt overrides so callers
// can construct reproducible agents from a single struct.
type Config struct {
	Name                 string // Logical name for tracing/logging
	MaxIterations        int    // Upper bound on task-execution loop iterations
	MaxPagesPerTask      int    // How many pages a single task may analyze
	MaxTasksPerPlan      int    // Cap on tasks a plan update may grow to
	MaxConversationTurns int    // History turns above which summarization kicks in
	TurnsToSummarize     int    // Oldest turns folded into the summary
	TurnsToKeepFull      int    // Recent turns kept verbatim after summarization
	FindingsTokenLimit   int    // Token budget for findings fed back into planning
	MemoryMessageLimit   int    // Recent messages included in the task memory block

	ImageDetail    provider.Detail // Fidelity hint passed with page images
	TokenizerModel string          // Encoding used for token counting

	ClassifierPrompt    string // Classification prompt template
	ReformulationPrompt string // Reformulation prompt template
	PlannerPrompt       string // Initial plan prompt template
	PlanUpdatePrompt    string // Plan update prompt template
	PageSelectionPrompt string // Page selection prompt template
	TaskAnalysisPrompt  string // Per-task vision analysis prompt template
	SynthesisPrompt     string // Final synthesis prompt template

	counter  TokenCounter // Optional override for token counting/truncation
	observer Observer     // Optional hook for loop progress events
}

// Option customises the agent configuration.
type Option func(*Config)

// WithName overrides the logical agent name used in logs and traces.
func WithName(name string) Option {
	return func(cfg *Config) {
		if strings.TrimSpace(name) != "" {
			cfg.Name = name
		}
	}
}

// WithMaxIterations caps how many tasks the execution loop may run for one query.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIterations = n
		}
	}
}

// WithMaxPagesPerTask caps how many pages are sent to the vision model per task.
func WithMaxPagesPerTask(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxPagesPerTask = n
		}
	}
}

// WithMaxTasksPerPlan caps how large a plan may grow through updates.
func WithMaxTasksPerPlan(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxTasksPerPlan = n
		}
	}
}

// WithMaxConversationTurns sets the history length above which older turns
// are summarized before reformulation.
func WithMaxConversationTurns(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxConversationTurns = n
		}
	}
}

// WithTurnsToSummarize controls how many of the oldest turns get folded into
// the summary when the history exceeds the limit.
func WithTurnsToSummarize(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.TurnsToSummarize = n
		}
	}
}

// WithTurnsToKeepFull controls how many recent turns survive summarization verbatim.
func WithTurnsToKeepFull(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.TurnsToKeepFull = n
		}
	}
}

// WithFindingsTokenLimit sets the token budget for task findings included in
// plan-update prompts.
func WithFindingsTokenLimit(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.FindingsTokenLimit = n
		}
	}
}

// WithImageDetail sets the fidelity hint attached to page images.
func WithImageDetail(d provider.Detail) Option {
	return func(cfg *Config) {
		if d != "" {
			cfg.ImageDetail = d
		}
	}
}

// WithTokenizerModel selects the encoding used to count and truncate tokens.
func WithTokenizerModel(model string) Option {
	return func(cfg *Config) {
		if strings.TrimSpace(model) != "" {
			cfg.TokenizerModel = model
		}
	}
}

// WithTokenCounter plugs in a custom token counter implementation.
func WithTokenCounter(c TokenCounter) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.counter = c
		}
	}
}

// WithObserver registers a hook that receives loop progress events.
func WithObserver(o Observer) Option {
	return func(cfg *Config) {
		if o != nil {
			cfg.observer = o
		}
	}
}

// WithPlannerPrompt overrides the initial planning prompt template.
func WithPlannerPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.PlannerPrompt = prompt
		}
	}
}

// WithPlanUpdatePrompt overrides the plan update prompt template.
func WithPlanUpdatePrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.PlanUpdatePrompt = prompt
		}
	}
}

// WithSynthesisPrompt overrides the final synthesis prompt template.
func WithSynthesisPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.SynthesisPrompt = prompt
		}
	}
}

// WithPageSelectionPrompt overrides the page selection prompt template.
func WithPageSelectionPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.PageSelectionPrompt = prompt
		}
	}
}

// WithTaskAnalysisPrompt overrides the per-task analysis prompt template.
func WithTaskAnalysisPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.TaskAnalysisPrompt = prompt
		}
	}
}

// WithClassifierPrompt overrides the query classification prompt template.
func WithClassifierPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.ClassifierPrompt = prompt
		}
	}
}

// WithReformulationPrompt overrides the query reformulation prompt template.
func WithReformulationPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.ReformulationPrompt = prompt
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Name:                 "docpixie-agent",
		MaxIterations:        5,
		MaxPagesPerTask:      6,
		MaxTasksPerPlan:      4,
		MaxConversationTurns: 8,
		TurnsToSummarize:     5,
		TurnsToKeepFull:      3,
		FindingsTokenLimit:   150,
		MemoryMessageLimit:   4,
		ImageDetail:          provider.DetailHigh,
		TokenizerModel:       "gpt-4o",
		ClassifierPrompt:     classificationPrompt,
		ReformulationPrompt:  reformulationPrompt,
		PlannerPrompt:        initialPlanPrompt,
		PlanUpdatePrompt:     planUpdatePrompt,
		PageSelectionPrompt:  pageSelectionPrompt,
		TaskAnalysisPrompt:   taskAnalysisPrompt,
		SynthesisPrompt:      synthesisPrompt,
	}
}

func applyOptions(cfg *Config, opts []Option) *Config {
	if cfg == nil {
		cfg = defaultConfig()
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
