// Package config loads docpixie configuration from YAML files and the
// environment. File values are optional; every field has a working default
// and API keys are always read from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Supported provider backends.
const (
	ProviderOpenAI     = "openai"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Supported document storage backends.
const (
	StorageLocal  = "local"
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Supported conversation store backends.
const (
	ConversationMemory   = "memory"
	ConversationFile     = "file"
	ConversationRedis    = "redis"
	ConversationPostgres = "postgres"
)

// Config is the root docpixie configuration.
type Config struct {
	Provider     ProviderConfig     `yaml:"provider"`
	Storage      StorageConfig      `yaml:"storage"`
	Conversation ConversationConfig `yaml:"conversation"`
	Agent        AgentConfig        `yaml:"agent"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// ProviderConfig selects and configures the vision model backend.
type ProviderConfig struct {
	Type    string `yaml:"type"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	// APIKey is resolved from the environment, never from the file.
	APIKey string `yaml:"-"`
}

// StorageConfig selects the document storage backend.
type StorageConfig struct {
	Type string `yaml:"type"`
	// Path is the base directory for the local backend.
	Path string `yaml:"path"`
	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// ConversationConfig selects the conversation history store.
type ConversationConfig struct {
	Type string `yaml:"type"`
	// Path is the directory for the file backend.
	Path string `yaml:"path"`
	// RedisAddr configures the redis backend.
	RedisAddr string `yaml:"redis_addr"`
	// Postgres configures the postgres backend. Empty fields fall back to
	// the store's defaults.
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds postgres connection settings for the conversation
// store.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AgentConfig tunes the adaptive retrieval loop.
type AgentConfig struct {
	MaxIterations        int    `yaml:"max_iterations"`
	MaxPagesPerTask      int    `yaml:"max_pages_per_task"`
	MaxTasksPerPlan      int    `yaml:"max_tasks_per_plan"`
	MaxConversationTurns int    `yaml:"max_conversation_turns"`
	ImageDetail          string `yaml:"image_detail"`
	TokenizerModel       string `yaml:"tokenizer_model"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Disable     bool   `yaml:"disable"`
	ServiceName string `yaml:"service_name"`
}

// Default returns a configuration with working defaults for every field.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Type:  ProviderOpenAI,
			Model: "",
		},
		Storage: StorageConfig{
			Type:          StorageLocal,
			Path:          defaultStoragePath(),
			MongoDatabase: "docpixie",
		},
		Conversation: ConversationConfig{
			Type: ConversationFile,
			Path: defaultConversationPath(),
		},
		Agent: AgentConfig{
			MaxIterations:        5,
			MaxPagesPerTask:      6,
			MaxTasksPerPlan:      4,
			MaxConversationTurns: 8,
			ImageDetail:          "high",
			TokenizerModel:       "gpt-4o",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "docpixie",
		},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docpixie"
	}
	return filepath.Join(home, ".docpixie", "documents")
}

func defaultConversationPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docpixie-conversations"
	}
	return filepath.Join(home, ".docpixie", "conversations")
}

// Load reads configuration from the given YAML file. A missing file is not
// an error; defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration from ./docpixie.yaml when present,
// otherwise from ~/.config/docpixie/config.yaml.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat("docpixie.yaml"); err == nil {
		return Load("docpixie.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Load("")
	}
	return Load(filepath.Join(home, ".config", "docpixie", "config.yaml"))
}

// applyEnv overlays environment variables on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCPIXIE_PROVIDER"); v != "" {
		c.Provider.Type = v
	}
	if v := os.Getenv("DOCPIXIE_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("DOCPIXIE_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}

	c.Provider.APIKey = apiKeyFromEnv(c.Provider.Type)
}

func apiKeyFromEnv(providerType string) string {
	var names []string
	switch providerType {
	case ProviderClaude:
		names = []string{"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"}
	case ProviderGemini:
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case ProviderOpenRouter:
		names = []string{"OPENROUTER_API_KEY"}
	default:
		names = []string{"OPENAI_API_KEY"}
	}
	names = append(names, "DOCPIXIE_API_KEY")
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the configuration for consistency. It does not require an
// API key; providers report missing credentials when constructed.
func (c *Config) Validate() error {
	v := NewValidator()

	v.ValidateOneOf("provider.type", c.Provider.Type,
		ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderOpenRouter)
	v.ValidateOneOf("storage.type", c.Storage.Type,
		StorageLocal, StorageMemory, StorageMongo)
	v.ValidateOneOf("conversation.type", c.Conversation.Type,
		ConversationMemory, ConversationFile, ConversationRedis, ConversationPostgres)

	v.RequirePositive("agent.max_iterations", c.Agent.MaxIterations)
	v.RequirePositive("agent.max_pages_per_task", c.Agent.MaxPagesPerTask)
	v.RequirePositive("agent.max_tasks_per_plan", c.Agent.MaxTasksPerPlan)
	v.RequirePositive("agent.max_conversation_turns", c.Agent.MaxConversationTurns)
	v.ValidateOneOf("agent.image_detail", c.Agent.ImageDetail, "low", "high", "auto")

	if c.Storage.Type == StorageLocal {
		v.RequireNonEmpty("storage.path", c.Storage.Path)
	}
	if c.Storage.Type == StorageMongo {
		v.RequireNonEmpty("storage.mongo_uri", c.Storage.MongoURI)
	}
	if c.Conversation.Type == ConversationFile {
		v.RequireNonEmpty("conversation.path", c.Conversation.Path)
	}
	if c.Conversation.Type == ConversationRedis {
		v.RequireNonEmpty("conversation.redis_addr", c.Conversation.RedisAddr)
	}
	if c.Conversation.Type == ConversationPostgres && c.Conversation.Postgres.Port != 0 {
		v.ValidatePort("conversation.postgres.port", c.Conversation.Postgres.Port)
	}

	return v.Error()
}
