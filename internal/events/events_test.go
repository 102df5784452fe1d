package events_test

import (
	"testing"

	"github.com/madved/inlineq/internal/events"
)

func TestBusFanout(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Publish(events.NewInlineQuery{QueryID: 1, SenderID: 10, Query: "piz"})

	for name, ch := range map[string]<-chan events.Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			q, ok := ev.(events.NewInlineQuery)
			if !ok || q.QueryID != 1 {
				t.Fatalf("subscriber %s got %#v", name, ev)
			}
		default:
			t.Fatalf("subscriber %s got nothing", name)
		}
	}
}

func TestBusDropsForSlowSubscriber(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	slow := bus.Subscribe(1)

	// The second publish overflows the buffer; it must not block.
	bus.Publish(events.ChosenResult{ResultID: "first"})
	bus.Publish(events.ChosenResult{ResultID: "second"})

	ev := <-slow
	if got := ev.(events.ChosenResult).ResultID; got != "first" {
		t.Fatalf("delivered event = %q, want the one that fit", got)
	}
	select {
	case ev := <-slow:
		t.Fatalf("overflow event delivered: %#v", ev)
	default:
	}
}
