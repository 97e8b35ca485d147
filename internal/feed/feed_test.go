package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkamran/campushub/internal/model"
)

func testItem(owner string) *model.LostFoundItem {
	return &model.LostFoundItem{ID: 1, Title: "Backpack", UserEmail: owner}
}

func nextEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return ev
}

func TestPublishSkipsOriginator(t *testing.T) {
	bus := NewBus(0)
	owner := bus.Subscribe("ali@example.com")
	defer owner.Close()
	other := bus.Subscribe("sara@example.com")
	defer other.Close()

	bus.Publish(EventInsert, testItem("ali@example.com"))

	ev := nextEvent(t, other)
	if ev.Type != EventInsert || ev.Item.Title != "Backpack" {
		t.Errorf("unexpected event %+v", ev)
	}

	if owner.Pending() != 0 {
		t.Errorf("expected no events for the originator, got %d pending", owner.Pending())
	}
}

func TestPublishOrdering(t *testing.T) {
	bus := NewBus(0)
	sub := bus.Subscribe("sara@example.com")
	defer sub.Close()

	bus.Publish(EventInsert, testItem("ali@example.com"))
	bus.Publish(EventUpdate, testItem("ali@example.com"))
	bus.Publish(EventDelete, testItem("ali@example.com"))

	var lastSeq uint64
	for _, want := range []EventType{EventInsert, EventUpdate, EventDelete} {
		ev := nextEvent(t, sub)
		if ev.Type != want {
			t.Errorf("expected %s, got %s", want, ev.Type)
		}
		if ev.Seq <= lastSeq {
			t.Errorf("expected increasing seq, got %d after %d", ev.Seq, lastSeq)
		}
		lastSeq = ev.Seq
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	bus := NewBus(2)
	sub := bus.Subscribe("sara@example.com")
	defer sub.Close()

	for i := 0; i < 3; i++ {
		bus.Publish(EventInsert, &model.LostFoundItem{ID: int64(i + 1), UserEmail: "ali@example.com"})
	}

	if sub.Pending() != 2 {
		t.Fatalf("expected 2 pending after overflow, got %d", sub.Pending())
	}
	ev := nextEvent(t, sub)
	if ev.Item.ID != 2 {
		t.Errorf("expected oldest event dropped, first delivered id 2, got %d", ev.Item.ID)
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	bus := NewBus(0)
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		sub := bus.Subscribe("ali@example.com")
		if seen[sub.ID()] {
			t.Fatalf("duplicate subscription id %s", sub.ID())
		}
		seen[sub.ID()] = true
		defer sub.Close()
	}
	if bus.Subscribers() != 10 {
		t.Errorf("expected 10 subscribers, got %d", bus.Subscribers())
	}
}

func TestSameIdentityTwiceBothExcluded(t *testing.T) {
	bus := NewBus(0)
	a := bus.Subscribe("ali@example.com")
	defer a.Close()
	b := bus.Subscribe("ali@example.com")
	defer b.Close()

	bus.Publish(EventInsert, testItem("ali@example.com"))

	if a.Pending() != 0 || b.Pending() != 0 {
		t.Error("expected neither handle of the originator to receive the event")
	}
}

func TestCloseIdempotent(t *testing.T) {
	bus := NewBus(0)
	sub := bus.Subscribe("ali@example.com")

	sub.Close()
	sub.Close()

	if bus.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", bus.Subscribers())
	}

	_, err := sub.Next(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from closed subscription, got %v", err)
	}
}

func TestNextHonorsContext(t *testing.T) {
	bus := NewBus(0)
	sub := bus.Subscribe("ali@example.com")
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sub.Next(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
