package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factchecker/factlens/internal/api"
	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/database"
	"github.com/factchecker/factlens/internal/llm"
	"github.com/factchecker/factlens/internal/logging"
	"github.com/factchecker/factlens/internal/search"
	"github.com/factchecker/factlens/internal/telemetry"
	"github.com/factchecker/factlens/internal/transcribe"
	"github.com/factchecker/factlens/internal/verify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				cfg.Server.Port = port
			}
			return Serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}

// Serve wires every component from cfg and runs the HTTP server until ctx
// is cancelled or the process receives SIGINT or SIGTERM.
func Serve(ctx context.Context, cfg *config.Config) error {
	logging.Setup(cfg.Logging)

	flush, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return err
	}
	defer flush()

	store, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	searchHTTP := &http.Client{Timeout: cfg.Search.Timeout}
	provider, err := search.NewProvider(cfg.Search, searchHTTP)
	if err != nil {
		return err
	}
	collector := search.NewCollector(provider, cfg.Search.Limit)
	fetcher := search.NewExcerptFetcher(&http.Client{}, cfg.Search.ExcerptTimeout,
		cfg.Search.MaxConcurrentFetches, cfg.Search.UserAgent)

	generator, err := llm.NewProvider(cfg.LLM, &http.Client{Timeout: cfg.LLM.Timeout})
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	transcriber, err := transcribe.New(cfg.Transcription)
	if err != nil {
		return err
	}

	engine := verify.NewEngine(collector, fetcher, generator, cfg.Search.Limit)
	chat := verify.NewChatService(generator)
	handler := api.NewHandler(engine, chat, transcriber, store)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(cfg, handler, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("search", provider.Name()).
			Str("llm", generator.Name()).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
