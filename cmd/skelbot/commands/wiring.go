package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/skel-labs/skelbot/internal/agent"
	"github.com/skel-labs/skelbot/internal/bot"
	"github.com/skel-labs/skelbot/internal/config"
	"github.com/skel-labs/skelbot/internal/event"
	"github.com/skel-labs/skelbot/internal/i18n"
	"github.com/skel-labs/skelbot/internal/logging"
	"github.com/skel-labs/skelbot/internal/telegram"
)

// loadConfig loads configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.Config{
		Level: logging.ParseLevel(level),
		File:  cfg.LogFile,
	})
	return cfg, nil
}

// buildBot wires the agent client, the Telegram client and the update
// handler. The returned cleanup releases the agent's connections.
func buildBot(ctx context.Context, cfg *config.Config, bus *event.Bus) (*bot.Bot, *telegram.Client, func(), error) {
	agentClient := agent.New(agent.Config{
		BaseURL:     cfg.AgentBaseURL,
		ProcessorID: cfg.AgentProcessorID,
		Timeout:     cfg.AgentTimeout,
	})

	tg := telegram.NewClient(&http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
		cfg.TelegramBaseURL, cfg.TelegramBotToken)

	self, err := tg.GetMe(ctx)
	if err != nil {
		agentClient.Close()
		return nil, nil, nil, err
	}
	logging.Info().Str("username", self.Username).Int64("botID", self.ID).Msg("authenticated")

	prefs := i18n.NewPrefs(cfg.DefaultLanguage)
	b := bot.New(agentClient, tg, prefs, bus, self)
	return b, tg, agentClient.Close, nil
}

// watchConfig applies log-level changes from the config file without a
// restart. Missing config files are fine, there is just nothing to
// watch.
func watchConfig(ctx context.Context, path string) {
	if path == "" {
		path = config.DefaultFile
	}
	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	})
	if err != nil {
		logging.Debug().Err(err).Msg("config watcher disabled")
		return
	}
	go watcher.Run(ctx)
}

// logEvents mirrors bot activity onto the log at debug level.
func logEvents(ctx context.Context, bus *event.Bus) {
	events, err := bus.Subscribe(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("event subscription failed")
		return
	}
	go func() {
		for ev := range events {
			logging.Debug().Str("type", string(ev.Type)).
				Str("conversation", ev.ConversationKey).
				Str("detail", ev.Detail).Msg("bot event")
		}
	}()
}
