// Package cli provides the command-line interface for docpixie.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docpixie/docpixie"
	"github.com/docpixie/docpixie/config"
	"github.com/docpixie/docpixie/conversation"
	convstore "github.com/docpixie/docpixie/conversation/store"
	"github.com/docpixie/docpixie/pkg/telemetry"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	cfgFile string
	verbose bool

	// Initialized in PersistentPreRunE
	cfg               *config.Config
	pixie             *docpixie.Pixie
	conversations     conversation.Store
	telemetryShutdown func(context.Context) error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docpixie",
	Short: "Vision-based document Q&A",
	Long: `Docpixie answers questions over your documents by looking at page
images with a vision model. No text extraction, no embeddings: pages are
rendered to images once and interpreted at query time by an adaptive,
multi-step retrieval agent.

Documents are ingested as pre-rendered page images (one file per page).`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// A missing .env file is fine; the environment may already be set.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadDefault()
		}
		if err != nil {
			return err
		}

		ctx := context.Background()
		telemetryShutdown, err = telemetry.Init(ctx, telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: Version,
			Disable:        cfg.Telemetry.Disable || !verbose,
		})
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}

		pixie, err = docpixie.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("init docpixie: %w", err)
		}

		conversations, err = buildConversationStore(cfg)
		if err != nil {
			return fmt.Errorf("init conversation store: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if pixie != nil {
			if err := pixie.Close(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close backends: %v\n", err)
			}
		}
		if telemetryShutdown != nil {
			if err := telemetryShutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to flush telemetry: %v\n", err)
			}
		}
	},
}

func buildConversationStore(cfg *config.Config) (conversation.Store, error) {
	switch cfg.Conversation.Type {
	case config.ConversationMemory:
		return convstore.NewInMemoryStore(), nil
	case config.ConversationRedis:
		return convstore.NewRedisStore(&convstore.RedisConfig{
			Addr: cfg.Conversation.RedisAddr,
		}), nil
	case config.ConversationPostgres:
		pg := convstore.DefaultPostgresConfig()
		if cfg.Conversation.Postgres.Host != "" {
			pg.Host = cfg.Conversation.Postgres.Host
		}
		if cfg.Conversation.Postgres.Port != 0 {
			pg.Port = cfg.Conversation.Postgres.Port
		}
		if cfg.Conversation.Postgres.User != "" {
			pg.User = cfg.Conversation.Postgres.User
		}
		if cfg.Conversation.Postgres.Password != "" {
			pg.Password = cfg.Conversation.Postgres.Password
		}
		if cfg.Conversation.Postgres.DBName != "" {
			pg.DBName = cfg.Conversation.Postgres.DBName
		}
		if cfg.Conversation.Postgres.SSLMode != "" {
			pg.SSLMode = cfg.Conversation.Postgres.SSLMode
		}
		return convstore.NewPostgresStore(pg)
	default:
		return convstore.NewFileStore(cfg.Conversation.Path)
	}
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output with tracing")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(conversationsCmd)
}
