// Package main contains the entrypoint for the inlineq service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/madved/inlineq/internal/app"
	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/config"
	"github.com/madved/inlineq/internal/directory"
	"github.com/madved/inlineq/internal/events"
	"github.com/madved/inlineq/internal/inline"
	"github.com/madved/inlineq/internal/logging"
	"github.com/madved/inlineq/internal/storage"
	"github.com/madved/inlineq/internal/transport/botapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all components, handles graceful shutdown, and
// returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logging.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := storage.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer storage.CloseDB(db)
	store := storage.NewStore(db, log)

	dir := directory.NewMemory()
	files := catalog.NewMemoryFileRegistry()
	media := catalog.NewMemoryMediaCatalog(files)
	bus := events.NewBus(log)

	tg, err := tgbot.New(cfg.Telegram.Token)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)
	dir.Add(directory.BotInfo{ID: me.ID, Username: me.Username, IsInline: true})

	messenger := botapi.NewMessenger(tg, log)
	manager := inline.New(messenger, dir, store, files, media, bus, log,
		inline.WithInterQueryDelay(cfg.Inline.QueryDelay))
	tg.RegisterHandlerMatchFunc(
		func(update *models.Update) bool {
			return update.InlineQuery != nil || update.ChosenInlineResult != nil
		},
		botapi.UpdateHandler(manager, log),
	)

	tasks := map[string]app.TaskFunc{
		"db_maintenance": func(ctx context.Context) error {
			return store.RunMaintenance(ctx)
		},
		"cache_stats": func(ctx context.Context) error {
			log.InfoContext(ctx, "inline cache stats", "cached_queries", manager.CachedQueryCount())
			return nil
		},
	}
	sched, err := app.NewScheduler(log, &cfg.Scheduler, tasks)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	a := app.New(log, cfg, db, store, manager, tg, sched, bus)

	log.Info("Starting inlineq...")
	runErr := a.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Service stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Service stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
