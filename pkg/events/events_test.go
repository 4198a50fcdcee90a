package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavescrub/wavescrub/pkg/events"
)

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: 0.25})

	got := <-a
	assert.Equal(t, events.ProgressChanged, got.Kind)
	assert.Equal(t, 0.25, got.Progress)

	got = <-b
	assert.Equal(t, events.ProgressChanged, got.Kind)
}

func TestBus_PreservesOrder(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	ch := bus.Subscribe(8)

	bus.Publish(events.Event{Kind: events.EnvelopeReady, Envelope: []float64{15, 100}})
	bus.Publish(events.Event{Kind: events.SeekRequested, Progress: 0.5})
	bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: 0.5})

	assert.Equal(t, events.EnvelopeReady, (<-ch).Kind)
	assert.Equal(t, events.SeekRequested, (<-ch).Kind)
	assert.Equal(t, events.ProgressChanged, (<-ch).Kind)
}

func TestBus_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	bus.Subscribe(1)

	bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: 0.1})
	bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: 0.2})
	bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: 0.3})

	assert.Equal(t, int64(2), bus.Dropped())
}

func TestBus_CloseClosesChannels(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	ch := bus.Subscribe(1)
	bus.Close()

	_, open := <-ch
	require.False(t, open)

	// Publishing after close must not panic.
	bus.Publish(events.Event{Kind: events.ProgressChanged})
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "envelope_ready", events.EnvelopeReady.String())
	assert.Equal(t, "progress_changed", events.ProgressChanged.String())
	assert.Equal(t, "seek_requested", events.SeekRequested.String())
	assert.Equal(t, "unknown", events.Kind(99).String())
}
