package notifications_test

import (
	"context"
	"testing"
	"time"

	"fileforge/internal/notifications"
	"fileforge/internal/queue"
)

func TestPublishAssignsMonotonicSequence(t *testing.T) {
	bus := notifications.NewBus(16)
	for i := 0; i < 5; i++ {
		bus.Publish(notifications.JobEvent{JobKey: "job", Status: queue.StatusProcessing, Progress: i * 10})
	}

	events, next := bus.Tail(10)
	if len(events) != 5 {
		t.Fatalf("tail returned %d events, want 5", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Sequence != events[i-1].Sequence+1 {
			t.Fatalf("sequence gap: %d then %d", events[i-1].Sequence, events[i].Sequence)
		}
	}
	if next != events[len(events)-1].Sequence {
		t.Fatalf("next = %d, want %d", next, events[len(events)-1].Sequence)
	}
}

func TestBufferDropsOldest(t *testing.T) {
	bus := notifications.NewBus(4)
	for i := 0; i < 10; i++ {
		bus.Publish(notifications.JobEvent{JobKey: "job", Progress: i})
	}

	events, _ := bus.Tail(10)
	if len(events) != 4 {
		t.Fatalf("buffer holds %d events, want 4", len(events))
	}
	if events[0].Progress != 6 {
		t.Fatalf("oldest retained progress = %d, want 6", events[0].Progress)
	}
}

func TestFetchSince(t *testing.T) {
	bus := notifications.NewBus(16)
	bus.Publish(notifications.JobEvent{JobKey: "a"})
	bus.Publish(notifications.JobEvent{JobKey: "b"})
	bus.Publish(notifications.JobEvent{JobKey: "c"})

	events, next, err := bus.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 2 || events[0].JobKey != "b" || events[1].JobKey != "c" {
		t.Fatalf("fetch since 1 = %+v", events)
	}

	events, _, err = bus.Fetch(context.Background(), next, 10, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no new events, got %d", len(events))
	}
}

func TestFetchWaitWakesOnPublish(t *testing.T) {
	bus := notifications.NewBus(16)

	done := make(chan notifications.JobEvent, 1)
	go func() {
		events, _, err := bus.Fetch(context.Background(), 0, 10, true)
		if err != nil || len(events) == 0 {
			return
		}
		done <- events[0]
	}()

	time.Sleep(20 * time.Millisecond)
	bus.Publish(notifications.JobEvent{JobKey: "late", Status: queue.StatusCompleted})

	select {
	case evt := <-done:
		if evt.JobKey != "late" {
			t.Fatalf("received %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not wake on publish")
	}
}

func TestFetchWaitHonorsContext(t *testing.T) {
	bus := notifications.NewBus(16)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := bus.Fetch(ctx, 0, 10, true)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	bus := notifications.NewBus(16)
	events, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(notifications.JobEvent{JobKey: "job", Status: queue.StatusProcessing, Progress: 25})

	select {
	case evt := <-events:
		if evt.JobKey != "job" || evt.Progress != 25 {
			t.Fatalf("received %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := notifications.NewBus(16)
	_, cancel := bus.Subscribe()
	defer cancel()

	donePublishing := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			bus.Publish(notifications.JobEvent{JobKey: "flood", Progress: i})
		}
		close(donePublishing)
	}()

	select {
	case <-donePublishing:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked by slow subscriber")
	}
}

func TestPerJobOrderingForSubscriber(t *testing.T) {
	bus := notifications.NewBus(256)
	events, cancel := bus.Subscribe()
	defer cancel()

	statuses := []queue.Status{queue.StatusQueued, queue.StatusProcessing, queue.StatusCompleted}
	for _, status := range statuses {
		bus.Publish(notifications.JobEvent{JobKey: "ordered", Status: status})
	}

	var lastSeq uint64
	for range statuses {
		select {
		case evt := <-events:
			if evt.Sequence <= lastSeq {
				t.Fatalf("out of order: %d after %d", evt.Sequence, lastSeq)
			}
			lastSeq = evt.Sequence
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
}
