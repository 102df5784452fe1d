package botapi_test

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/directory"
	"github.com/madved/inlineq/internal/events"
	"github.com/madved/inlineq/internal/inline"
	"github.com/madved/inlineq/internal/logging"
	"github.com/madved/inlineq/internal/storage"
	"github.com/madved/inlineq/internal/transport/botapi"
)

func TestUpdateHandlerRoutesInlineUpdates(t *testing.T) {
	t.Parallel()

	log := logging.NewLogger("error", false)
	bus := events.NewBus(log)
	sub := bus.Subscribe(4)

	files := catalog.NewMemoryFileRegistry()
	mgr := inline.New(
		botapi.NewMessenger(nil, log),
		directory.NewMemory(),
		storage.NewMemoryStore(),
		files,
		catalog.NewMemoryMediaCatalog(files),
		bus,
		log,
	)
	handler := botapi.UpdateHandler(mgr, log)
	ctx := context.Background()

	handler(ctx, nil, &models.Update{
		InlineQuery: &models.InlineQuery{
			ID:    "9027",
			From:  &models.User{ID: 501},
			Query: "piz",
		},
	})
	handler(ctx, nil, &models.Update{
		ChosenInlineResult: &models.ChosenInlineResult{
			ResultID:        "r1",
			From:            models.User{ID: 501},
			Query:           "piz",
			InlineMessageID: "im1",
		},
	})

	// Non-numeric query ids never reach the manager.
	handler(ctx, nil, &models.Update{
		InlineQuery: &models.InlineQuery{ID: "not-a-number", Query: "x"},
	})

	query, ok := (<-sub).(events.NewInlineQuery)
	if !ok {
		t.Fatal("first event is not a NewInlineQuery")
	}
	if query.QueryID != 9027 || query.SenderID != 501 || query.Query != "piz" {
		t.Fatalf("query event = %+v", query)
	}

	chosen, ok := (<-sub).(events.ChosenResult)
	if !ok {
		t.Fatal("second event is not a ChosenResult")
	}
	if chosen.UserID != 501 || chosen.ResultID != "r1" || chosen.InlineMessageID != "im1" {
		t.Fatalf("chosen event = %+v", chosen)
	}

	select {
	case ev := <-sub:
		t.Fatalf("unexpected extra event: %#v", ev)
	default:
	}
}
