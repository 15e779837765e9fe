package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/productibot/internal/adapters/http"
	"github.com/PabloGalante/productibot/internal/adapters/storage/memory"
	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/observability"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the chat session over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		log := observability.Init(os.Stdout, cfg.LogLevel)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gen, err := buildGenerator(ctx, cfg)
		if err != nil {
			return err
		}
		if gen == nil {
			log.Warn("GEMINI_API_KEY is not set; every turn will fail until configured")
		}

		session := conversation.NewSession(memory.NewMessageStore(), memory.NewTaskStore())
		svc := conversation.NewService(gen, session, cfg.Generation)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpadapter.NewServer(svc),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("productibot listening", "addr", cfg.Addr, "mock", cfg.UseMockLLM)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides PRODUCTIBOT_ADDR)")
}
