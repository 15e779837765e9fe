package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/productibot/internal/adapters/storage/memory"
	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/domain"
	"github.com/PabloGalante/productibot/internal/observability"
	"github.com/PabloGalante/productibot/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// The terminal belongs to the TUI; logs go to a file.
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log := observability.Init(f, cfg.LogLevel)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		gen, err := buildGenerator(ctx, cfg)
		if err != nil {
			return err
		}
		log.Info("chat starting", "configured", gen != nil, "model", cfg.ModelName, "mock", cfg.UseMockLLM)

		session := conversation.NewSession(memory.NewMessageStore(), memory.NewTaskStore())
		svc := conversation.NewService(gen, session, cfg.Generation)
		app := ui.NewApp(svc, ui.Options{
			ExportDir: cfg.ExportDir,
			Configure: func(ctx context.Context, apiKey string) (domain.Generator, error) {
				return newGemini(ctx, cfg, apiKey)
			},
		})

		if err := ui.Run(app); err != nil {
			log.Error("tui exited with error", "error", err)
			return err
		}
		return nil
	},
}
