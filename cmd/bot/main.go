package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventbot/internal/adapters/discord"
	httpapi "eventbot/internal/adapters/http"
	"eventbot/internal/adapters/telegram"
	"eventbot/internal/application"
	"eventbot/internal/config"
	"eventbot/internal/infrastructure/cache"
	"eventbot/internal/infrastructure/database"
	"eventbot/internal/infrastructure/i18n"
	"eventbot/internal/infrastructure/memory"
	"eventbot/internal/infrastructure/scheduler"
	"eventbot/internal/infrastructure/sqlite"
	"eventbot/internal/logger"
	"eventbot/internal/ports/output"
	"eventbot/pkg/tz"
)

const shutdownTimeout = 10 * time.Second

// transport is a connected chat platform.
type transport interface {
	Run(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger.Setup(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("bot stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	loc, err := tz.Load(cfg.Timezone)
	if err != nil {
		return err
	}

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.RedisAddr != "" {
		kv, err := cache.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer kv.Close()
		repo = cache.NewEventRepository(repo, kv, cfg.CacheTTL)
		slog.Info("event cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.CacheTTL))
	}

	translator := i18n.NewTranslator(cfg.Locale)
	renderer := application.NewRenderer(translator, cfg.Locale, loc)

	runner := scheduler.NewCronRunner(slog.Default())
	runner.Start()

	drafts := application.NewDraftService(repo, loc)
	rsvps := application.NewRSVPService(repo)
	reminders := application.NewReminderService(repo, nil, runner, renderer)
	defer func() {
		reminders.StopAll()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		runner.Stop(stopCtx)
	}()

	coordinator := application.NewCoordinator(repo, drafts, rsvps, reminders, renderer, application.Permissions{
		Create:     cfg.CreatePermission,
		Reminder:   cfg.ReminderPermission,
		OwnerScope: cfg.PublishScope == config.ScopeOwner,
	})

	bot, notifier, err := openTransport(cfg, coordinator, renderer.T)
	if err != nil {
		return err
	}
	reminders.SetNotifier(notifier)

	if cfg.HTTPAddr != "" {
		srv := httpapi.NewServer(cfg.HTTPAddr, repo, reminders, loc)
		go func() {
			if err := srv.Start(); err != nil {
				slog.Error("http server", slog.String("error", err.Error()))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http shutdown", slog.String("error", err.Error()))
			}
		}()
	}

	slog.Info("bot started",
		slog.String("transport", cfg.Transport),
		slog.String("store", cfg.StoreDriver),
		slog.String("locale", cfg.Locale),
		slog.String("timezone", loc.String()),
	)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (output.EventRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database.NewEventRepository(pool), pool.Close, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewEventRepository(db), func() { _ = db.Close() }, nil
	case config.DriverMemory:
		slog.Warn("memory store selected, events are lost on restart")
		return memory.NewEventRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openTransport(cfg *config.Config, coordinator *application.Coordinator, t func(string, map[string]any) string) (transport, output.Notifier, error) {
	switch cfg.Transport {
	case config.TransportTelegram:
		bot, err := telegram.NewBot(cfg.TelegramToken, coordinator, t)
		if err != nil {
			return nil, nil, err
		}
		return bot, bot.Notifier(), nil
	case config.TransportDiscord:
		bot, err := discord.NewBot(cfg.DiscordToken, cfg.DiscordGuildID, coordinator, t)
		if err != nil {
			return nil, nil, err
		}
		return bot, bot.Notifier(), nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}
