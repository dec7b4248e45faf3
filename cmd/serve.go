package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/abhisek/changeagent/internal/config"
	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/observability"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/server"
	"github.com/abhisek/changeagent/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web client, progress API and chat proxy over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Port = port
		}
		if dir, _ := cmd.Flags().GetString("static"); dir != "" {
			cfg.StaticDir = dir
		}
		if cfg.DBPath != "" && !cmd.Flags().Changed("db") {
			_ = cmd.Flags().Set("db", cfg.DBPath)
		}

		log, err := logger.New(cfg.ResolvedLogMode())
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()
		cfg.Summary(log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
			ServiceName: observability.ServiceName,
			Environment: cfg.Environment,
			Version:     version,
		})
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()

		svc, err := openServices(ctx, cmd, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		srvCfg := server.Config{
			Progress:    svc.progress,
			Log:         log,
			StaticDir:   cfg.StaticDir,
			Tracing:     observability.Enabled(),
			ServiceName: observability.ServiceName,
		}
		completer, err := chatProxy(cfg, svc.store.EventRepo(), log)
		if err != nil {
			return fmt.Errorf("init chat proxy: %w", err)
		}
		if completer != nil {
			srvCfg.Chat = completer
		} else {
			log.Warn("no OpenRouter key configured, chat proxy disabled")
		}

		return server.New(srvCfg).ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
	},
}

// chatProxy builds the completer behind /api/ai/chat. It returns nil when
// no OpenRouter key is configured.
func chatProxy(cfg config.Config, events store.EventRepo, log *logger.Logger) (server.Completer, error) {
	if cfg.OpenRouterKey == "" {
		return nil, nil
	}
	orCfg := llm.DefaultConfig().OpenRouter
	orCfg.APIKey = cfg.OpenRouterKey
	p, err := llm.NewOpenRouterProvider(orCfg)
	if err != nil {
		return nil, err
	}
	return llm.WithCompletionLogging(p, "openrouter", events, log), nil
}

func init() {
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides PORT, default 5001)")
	serveCmd.Flags().String("static", "", "Directory of built client assets to serve at /")
}
