package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skel-labs/skelbot/internal/event"
	"github.com/skel-labs/skelbot/internal/logging"
	"github.com/skel-labs/skelbot/internal/server"
)

var (
	webhookPort        int
	webhookDropPending bool
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Run the bot behind an HTTPS webhook",
	Long: `Register the configured webhook URL with Telegram and serve updates
over HTTP. The bot itself is wired lazily on the first delivery so the
process also suits per-request serverless platforms.`,
	RunE: runWebhook,
}

func init() {
	webhookCmd.Flags().IntVarP(&webhookPort, "port", "p", 0, "Port to listen on (defaults to config)")
	webhookCmd.Flags().BoolVar(&webhookDropPending, "drop-pending", false, "Drop updates queued while offline")
}

func runWebhook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.WebhookURL == "" {
		return fmt.Errorf("webhook mode requires a webhook URL (WEBHOOK_URL)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	defer bus.Close()
	logEvents(ctx, bus)

	var cleanup func()
	initBot := func(initCtx context.Context) (server.Handler, error) {
		b, tg, release, err := buildBot(initCtx, cfg, bus)
		if err != nil {
			return nil, err
		}
		if err := tg.SetWebhook(initCtx, cfg.WebhookURL, webhookDropPending); err != nil {
			release()
			return nil, err
		}
		cleanup = release
		logging.Info().Str("url", cfg.WebhookURL).Msg("webhook registered")
		return b, nil
	}
	defer func() {
		if cleanup != nil {
			cleanup()
		}
	}()

	serverCfg := server.DefaultConfig()
	serverCfg.Port = cfg.Port
	if webhookPort != 0 {
		serverCfg.Port = webhookPort
	}
	srv := server.New(serverCfg, initBot, bus)
	watchConfig(ctx, configPath)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Int("port", serverCfg.Port).Msg("webhook server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
