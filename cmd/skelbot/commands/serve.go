package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skel-labs/skelbot/internal/event"
	"github.com/skel-labs/skelbot/internal/logging"
	"github.com/skel-labs/skelbot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot with long polling",
	Long: `Run the bot against the Bot API with getUpdates long polling.

Any registered webhook is removed first, Telegram refuses polling while
one is active.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	defer bus.Close()
	logEvents(ctx, bus)

	b, tg, cleanup, err := buildBot(ctx, cfg, bus)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tg.DeleteWebhook(ctx); err != nil {
		logging.Warn().Err(err).Msg("deleteWebhook failed")
	}

	watchConfig(ctx, configPath)

	logging.Info().Dur("pollTimeout", cfg.PollTimeout).Msg("polling for updates")
	poller := telegram.NewPoller(tg, cfg.PollTimeout, b.HandleUpdate)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("shutting down")
	return nil
}
