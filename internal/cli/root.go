// Package cli defines the Cobra commands of the productibot binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PabloGalante/productibot/internal/adapters/llm"
	"github.com/PabloGalante/productibot/internal/config"
	"github.com/PabloGalante/productibot/internal/domain"
)

var (
	configPath string
	logFile    string
	logLevel   string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "productibot",
	Short: "AI-powered productivity assistant",
	Long: `ProductiBot is a chat assistant for productivity, time management
and goal setting. It answers through Gemini and keeps a list of the
tasks you mention along the way.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Without a terminal there is nothing to draw the chat on.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return cmd.Help()
		}
		return chatCmd.RunE(cmd, args)
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (overrides PRODUCTIBOT_LOG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "productibot", version)
	},
}

// loadConfig reads the config and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// buildGenerator returns the provider selected by cfg. A nil generator
// with a nil error means no credential was supplied yet.
func buildGenerator(ctx context.Context, cfg *config.Config) (domain.Generator, error) {
	if cfg.UseMockLLM {
		return llm.NewMockLLM(), nil
	}
	if cfg.APIKey == "" {
		return nil, nil
	}
	return newGemini(ctx, cfg, cfg.APIKey)
}

func newGemini(ctx context.Context, cfg *config.Config, apiKey string) (domain.Generator, error) {
	client, err := llm.NewGeminiClient(ctx, apiKey, cfg.ModelName)
	if err != nil {
		return nil, err
	}
	return llm.NewRetrying(client, cfg.RetryAttempts), nil
}
