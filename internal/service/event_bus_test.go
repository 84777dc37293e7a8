package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func receiveEvent(t *testing.T, ch <-chan dto.ContentEvent) dto.ContentEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return dto.ContentEvent{}
	}
}

func TestEventBusLocalDelivery(t *testing.T) {
	bus := NewEventBus(nil, "", nil, testLogger())
	events, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(context.Background(), dto.ContentEvent{
		Type:       EventUpdated,
		Resource:   resourceAICourse,
		ResourceID: "course-1",
		Message:    "<b>Saved</b> course<script>alert(1)</script>",
	})

	event := receiveEvent(t, events)
	require.Equal(t, EventUpdated, event.Type)
	require.Equal(t, "course-1", event.ResourceID)
	require.Equal(t, "Saved course", event.Message)
	require.NotEmpty(t, event.ID)
	require.False(t, event.At.IsZero())

	cancel()
	cancel()
	_, open := <-events
	require.False(t, open)
}

func TestEventBusRelaysBetweenInstancesThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		clientA.Close()
		clientB.Close()
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	busA := NewEventBus(clientA, "cms", nil, testLogger())
	busB := NewEventBus(clientB, "cms", nil, testLogger())
	busA.Start(ctx)
	busB.Start(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("cms:events")["cms:events"] == 2
	}, 2*time.Second, 10*time.Millisecond)

	eventsA, cancelA := busA.Subscribe()
	defer cancelA()
	eventsB, cancelB := busB.Subscribe()
	defer cancelB()

	busA.Publish(ctx, dto.ContentEvent{Type: EventCreated, Resource: resourceLesson, ResourceID: "lesson-1", Message: "Lesson created"})

	local := receiveEvent(t, eventsA)
	remote := receiveEvent(t, eventsB)
	require.Equal(t, local.ID, remote.ID)
	require.Equal(t, "lesson-1", remote.ResourceID)

	// the publishing instance ignores its own relayed copy
	select {
	case duplicate := <-eventsA:
		t.Fatalf("unexpected duplicate event %s", duplicate.ID)
	case <-time.After(200 * time.Millisecond):
	}
}
