package wavescrub

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/events"
)

// ErrInvalidFormat is returned by Restore for payloads missing a data
// array or otherwise malformed. Existing player state is left untouched.
var ErrInvalidFormat = errors.New("invalid export format")

// FormatVersion identifies the export envelope layout.
const FormatVersion = "1"

// Export is the only durable artifact: a versioned snapshot of the
// extracted envelope and the settings that shaped it.
type Export struct {
	Version  string    `json:"version"`
	Data     []float64 `json:"data"`
	Settings Settings  `json:"settings"`
}

// Settings carries the extraction and layout options worth persisting.
type Settings struct {
	SamplingQuality envelope.Quality `json:"samplingQuality"`
	RTL             bool             `json:"rtl"`
}

// Export snapshots the current envelope and settings. The data slice is
// a copy; mutating it does not affect the player.
func (p *Player) Export() Export {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := make([]float64, len(p.env))
	copy(data, p.env)

	return Export{
		Version: FormatVersion,
		Data:    data,
		Settings: Settings{
			SamplingQuality: p.opts.SamplingQuality,
			RTL:             p.opts.RTL,
		},
	}
}

// Restore replaces the envelope wholesale from a previously exported
// payload, skipping extraction entirely. A payload without a data array
// fails with ErrInvalidFormat and mutates nothing. Absent settings
// fields leave the corresponding configuration untouched.
func (p *Player) Restore(payload []byte) error {
	var raw struct {
		Version  string          `json:"version"`
		Data     json.RawMessage `json:"data"`
		Settings struct {
			SamplingQuality *envelope.Quality `json:"samplingQuality"`
			RTL             *bool             `json:"rtl"`
		} `json:"settings"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if raw.Data == nil {
		return fmt.Errorf("%w: missing data array", ErrInvalidFormat)
	}

	var data []float64
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return fmt.Errorf("%w: data is not a number array: %w", ErrInvalidFormat, err)
	}
	// A JSON null unmarshals into a nil slice without error; only an
	// actual array may replace the envelope.
	if data == nil {
		return fmt.Errorf("%w: data is not an array", ErrInvalidFormat)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.env = envelope.Envelope(data)
	if raw.Settings.SamplingQuality != nil && raw.Settings.SamplingQuality.Valid() {
		p.opts.SamplingQuality = *raw.Settings.SamplingQuality
	}
	if raw.Settings.RTL != nil {
		p.opts.RTL = *raw.Settings.RTL
	}
	p.mu.Unlock()

	p.bus.Publish(events.Event{Kind: events.EnvelopeReady, Envelope: data})
	p.invalidate()

	return nil
}
