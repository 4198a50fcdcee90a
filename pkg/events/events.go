// Package events defines the typed notification stream a player emits:
// envelope completion, progress movement, and drag-initiated seeks.
package events

import (
	"sync"
	"sync/atomic"
)

// Kind identifies one event type.
type Kind int

const (
	// EnvelopeReady fires when a new waveform envelope has been
	// committed, whether from extraction or restore.
	EnvelopeReady Kind = iota + 1
	// ProgressChanged fires when the playback fraction moves.
	ProgressChanged
	// SeekRequested fires when drag input asks the time source to seek.
	SeekRequested
)

// String returns the event kind name for logging.
func (k Kind) String() string {
	switch k {
	case EnvelopeReady:
		return "envelope_ready"
	case ProgressChanged:
		return "progress_changed"
	case SeekRequested:
		return "seek_requested"
	default:
		return "unknown"
	}
}

// Event is one notification. Envelope is set for EnvelopeReady; Progress
// for ProgressChanged and SeekRequested.
type Event struct {
	Kind     Kind
	Progress float64
	Envelope []float64
}

// subscriber holds one delivery channel. Sends never block the
// publisher: a full channel drops the event and counts it.
type subscriber struct {
	ch      chan Event
	dropped atomic.Int64
}

func (s *subscriber) send(ev Event) {
	select {
	case s.ch <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Bus fans events out to any number of subscribers. Publishing is
// non-blocking; slow consumers lose events rather than stalling the
// render path.
type Bus struct {
	mu     sync.Mutex
	subs   []*subscriber
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new delivery channel with the given buffer size
// and returns its receive side. The channel is closed by Close.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}

	sub := &subscriber{ch: make(chan Event, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.ch)
		return sub.ch
	}

	b.subs = append(b.subs, sub)

	return sub.ch
}

// Publish delivers ev to every subscriber without blocking. Events
// published after Close are discarded.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		sub.send(ev)
	}
}

// Dropped returns the total number of events lost to full subscriber
// channels.
func (b *Bus) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total int64
	for _, sub := range b.subs {
		total += sub.dropped.Load()
	}

	return total
}

// Close closes every subscriber channel. Publish and Subscribe become
// no-ops afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}
