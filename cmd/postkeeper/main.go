package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"postkeeper/internal/config"
	"postkeeper/internal/fetcher"
	"postkeeper/internal/notify"
	"postkeeper/internal/storage"
	"postkeeper/internal/syncer"
)

func main() {
	once := flag.Bool("once", false, "run a single sync and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var notifier syncer.Notifier
	if cfg.NotificationsEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Error("create notifier", "error", err)
			os.Exit(1)
		}
		notifier = tg
	}

	f := fetcher.New(http.DefaultClient, cfg.FeedURL)
	s := syncer.New(store, f, notifier, log)
	s.SetInterval(time.Duration(cfg.SyncIntervalMinutes) * time.Minute)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		res, err := s.Sync(ctx)
		if err != nil {
			log.Error("sync", "error", err)
			os.Exit(1)
		}
		log.Info("sync complete", "fetched", res.Fetched, "new", res.New)
		return
	}

	log.Info("starting sync loop", "feed", cfg.FeedURL, "interval_minutes", cfg.SyncIntervalMinutes)

	s.Run(ctx)

	log.Info("stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}
