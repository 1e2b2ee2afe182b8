package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewMemoryHub(0)
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel()

	event := Event{EditorID: "ed-1", NodeID: "n0.1", EventType: "node_moved"}
	require.NoError(t, hub.Publish(ctx, event))

	select {
	case got := <-ch:
		assert.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFilterByEditorAndType(t *testing.T) {
	hub := NewMemoryHub(8)
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{EditorID: "ed-1", EventTypes: []string{"link_created"}})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, hub.Publish(ctx, Event{EditorID: "ed-2", EventType: "link_created"}))
	require.NoError(t, hub.Publish(ctx, Event{EditorID: "ed-1", EventType: "node_moved"}))
	require.NoError(t, hub.Publish(ctx, Event{EditorID: "ed-1", EventType: "link_created", LinkID: "l0.1"}))

	got := <-ch
	assert.Equal(t, "l0.1", got.LinkID)

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	default:
	}
}

func TestSlowSubscriberDrops(t *testing.T) {
	hub := NewMemoryHub(2)
	ctx := context.Background()

	_, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(ctx, Event{EventType: "node_moved"}))
	}
	assert.Equal(t, uint64(3), hub.Dropped())
}

func TestCancelClosesChannel(t *testing.T) {
	hub := NewMemoryHub(0)
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	require.NoError(t, hub.Publish(ctx, Event{EventType: "node_moved"}))
}

func TestCancelledContext(t *testing.T) {
	hub := NewMemoryHub(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, hub.Publish(ctx, Event{}))
	_, _, err := hub.Subscribe(ctx, Filter{})
	assert.Error(t, err)
}

func TestConcurrentPublish(t *testing.T) {
	hub := NewMemoryHub(1000)
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = hub.Publish(ctx, Event{EventType: "node_moved"})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ch, 500)
}
