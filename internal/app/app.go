// Package app wires the inlineq components together and manages their
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/madved/inlineq/internal/config"
	"github.com/madved/inlineq/internal/events"
	"github.com/madved/inlineq/internal/inline"
	"github.com/madved/inlineq/internal/storage"
)

// App owns the running components of the service.
type App struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     storage.Store
	manager   *inline.Manager
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	bus       *events.Bus
}

// New assembles the application from its already-constructed components.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store storage.Store,
	manager *inline.Manager,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	bus *events.Bus,
) *App {
	return &App{
		logger:    logger.With("component", "app"),
		cfg:       cfg,
		db:        db,
		store:     store,
		manager:   manager,
		tgBot:     tgBot,
		scheduler: scheduler,
		bus:       bus,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting telegram listener")
		a.tgBot.Start(gCtx)
		a.logger.Info("telegram listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.logger.Info("stopping scheduler")
		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.drainEvents(gCtx)
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("stopped due to error", "error", err)
		return err
	}

	a.logger.Info("stopped gracefully")
	return nil
}

// drainEvents consumes the notification bus, logging inline activity.
func (a *App) drainEvents(ctx context.Context) error {
	sub := a.bus.Subscribe(a.cfg.Inline.EventBuffer)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sub:
			switch e := ev.(type) {
			case events.NewInlineQuery:
				a.logger.InfoContext(ctx, "inline query",
					"query_id", e.QueryID, "sender_id", e.SenderID,
					"query", e.Query, "offset", e.Offset)
			case events.ChosenResult:
				a.logger.InfoContext(ctx, "inline result chosen",
					"user_id", e.UserID, "result_id", e.ResultID)
			default:
				a.logger.Debug("unknown event", "event", ev)
			}
		}
	}
}
