// Package config loads bot configuration from the environment and an
// optional JSONC config file. Environment variables win over the file;
// a .env file is honored for local development.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "skelbot.jsonc"

// Config holds everything the bot needs at startup.
type Config struct {
	// TelegramBotToken authenticates against the Telegram Bot API.
	// Required.
	TelegramBotToken string
	// TelegramBaseURL is the Bot API root, overridable for tests.
	TelegramBaseURL string
	// AgentBaseURL is the Skel Crypto Agent service root.
	AgentBaseURL string
	// AgentProcessorID identifies this deployment to the agent.
	AgentProcessorID string
	// AgentTimeout bounds one agent exchange end to end.
	AgentTimeout time.Duration
	// WebhookURL, when set, is registered with Telegram by the
	// webhook command.
	WebhookURL string
	// Port is the webhook server listen port.
	Port int
	// PollTimeout is the long-poll duration for getUpdates.
	PollTimeout time.Duration
	// DefaultLanguage is the bot language for chats without a
	// preference.
	DefaultLanguage string
	// LogLevel is the minimum log level (DEBUG|INFO|WARN|ERROR).
	LogLevel string
	// LogFile, when set, duplicates logs to the given path.
	LogFile string
}

// ErrMissingToken is returned when no Telegram bot token is configured.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is required")

func defaults() *Config {
	return &Config{
		TelegramBaseURL:  "https://api.telegram.org",
		AgentBaseURL:     "http://127.0.0.1:8000",
		AgentProcessorID: "telegram-bot",
		AgentTimeout:     60 * time.Second,
		Port:             8080,
		PollTimeout:      30 * time.Second,
		DefaultLanguage:  "EN",
		LogLevel:         "INFO",
	}
}

// fileConfig mirrors Config with wire-friendly field types.
type fileConfig struct {
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramBaseURL  string `json:"telegram_base_url"`
	AgentBaseURL     string `json:"agent_base_url"`
	AgentProcessorID string `json:"agent_processor_id"`
	AgentTimeout     string `json:"agent_timeout"`
	WebhookURL       string `json:"webhook_url"`
	Port             int    `json:"port"`
	PollTimeout      string `json:"poll_timeout"`
	DefaultLanguage  string `json:"default_language"`
	LogLevel         string `json:"log_level"`
	LogFile          string `json:"log_file"`
}

// Load builds the configuration. Priority, lowest to highest: built-in
// defaults, the JSONC file at path (or DefaultFile when path is empty
// and it exists), environment variables. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	cfg.TelegramBaseURL = strings.TrimRight(cfg.TelegramBaseURL, "/")
	cfg.AgentBaseURL = strings.TrimRight(cfg.AgentBaseURL, "/")

	if cfg.TelegramBotToken == "" {
		return nil, ErrMissingToken
	}
	return cfg, nil
}

// loadFile merges a JSONC config file into cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = jsonc.ToJSON(data)
	data = interpolateEnv(data)

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return err
	}

	setString(&cfg.TelegramBotToken, fc.TelegramBotToken)
	setString(&cfg.TelegramBaseURL, fc.TelegramBaseURL)
	setString(&cfg.AgentBaseURL, fc.AgentBaseURL)
	setString(&cfg.AgentProcessorID, fc.AgentProcessorID)
	setString(&cfg.WebhookURL, fc.WebhookURL)
	setString(&cfg.DefaultLanguage, fc.DefaultLanguage)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if err := setDuration(&cfg.AgentTimeout, fc.AgentTimeout); err != nil {
		return fmt.Errorf("agent_timeout: %w", err)
	}
	if err := setDuration(&cfg.PollTimeout, fc.PollTimeout); err != nil {
		return fmt.Errorf("poll_timeout: %w", err)
	}
	return nil
}

// envPattern matches {env:VAR_NAME} placeholders in the config file.
var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

func interpolateEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString(&cfg.TelegramBotToken, os.Getenv("TELEGRAM_BOT_TOKEN"))
	setString(&cfg.TelegramBaseURL, os.Getenv("TELEGRAM_BASE_URL"))
	setString(&cfg.AgentBaseURL, os.Getenv("AGENT_BASE_URL"))
	setString(&cfg.AgentProcessorID, os.Getenv("AGENT_PROCESSOR_ID"))
	setString(&cfg.WebhookURL, os.Getenv("WEBHOOK_URL"))
	setString(&cfg.DefaultLanguage, os.Getenv("DEFAULT_LANGUAGE"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&cfg.LogFile, os.Getenv("LOG_FILE"))
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	_ = setDuration(&cfg.AgentTimeout, os.Getenv("AGENT_TIMEOUT"))
	_ = setDuration(&cfg.PollTimeout, os.Getenv("POLL_TIMEOUT"))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
