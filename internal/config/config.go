// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	FeedURL             string
	DatabasePath        string
	LogLevel            string
	SyncIntervalMinutes int
	TelegramBotToken    string
	TelegramChatID      int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		return nil, fmt.Errorf("FEED_URL is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/postkeeper.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	interval := 15
	if raw := os.Getenv("SYNC_INTERVAL_MINUTES"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL_MINUTES %q", raw)
		}
		interval = v
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	var chatID int64
	if token != "" {
		raw := os.Getenv("TELEGRAM_CHAT_ID")
		if raw == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		chatID = v
	}

	return &Config{
		FeedURL:             feedURL,
		DatabasePath:        dbPath,
		LogLevel:            logLevel,
		SyncIntervalMinutes: interval,
		TelegramBotToken:    token,
		TelegramChatID:      chatID,
	}, nil
}

// NotificationsEnabled reports whether a Telegram notifier is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != ""
}
