package wavescrub_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/events"
	"github.com/wavescrub/wavescrub/pkg/wavescrub"
)

func TestExportRestore_RoundTrip(t *testing.T) {
	t.Parallel()

	source := newTestPlayer(t, wavescrub.Options{
		Segments:        10,
		RTL:             true,
		SamplingQuality: envelope.QualityHigh,
	})
	ch := source.Subscribe(8)
	require.NoError(t, source.Load(peakSamples(1000, 0, 100)))
	waitFor(t, ch, events.EnvelopeReady)

	exported := source.Export()
	assert.Equal(t, wavescrub.FormatVersion, exported.Version)
	assert.Equal(t, envelope.QualityHigh, exported.Settings.SamplingQuality)
	assert.True(t, exported.Settings.RTL)

	payload, err := json.Marshal(exported)
	require.NoError(t, err)

	restored := newTestPlayer(t, wavescrub.Options{Segments: 10})
	require.NoError(t, restored.Restore(payload))

	assert.Equal(t, exported.Data, restored.Export().Data)
	assert.Equal(t, exported.Settings, restored.Export().Settings)
	assert.Equal(t, envelope.Envelope(exported.Data), restored.Envelope())
}

func TestRestore_PublishesEnvelopeReady(t *testing.T) {
	t.Parallel()

	p := newTestPlayer(t, wavescrub.Options{Segments: 4})
	ch := p.Subscribe(4)

	payload := []byte(`{"version":"1","data":[15,40,80,100],"settings":{"samplingQuality":"low","rtl":true}}`)
	require.NoError(t, p.Restore(payload))

	ev := waitFor(t, ch, events.EnvelopeReady)
	assert.Equal(t, []float64{15, 40, 80, 100}, ev.Envelope)
	assert.True(t, p.Frame(), "restore schedules a repaint")
}

func TestRestore_RejectsMissingData(t *testing.T) {
	t.Parallel()

	p := newTestPlayer(t, wavescrub.Options{Segments: 4})

	err := p.Restore([]byte(`{"version":"1","settings":{"rtl":true}}`))
	require.ErrorIs(t, err, wavescrub.ErrInvalidFormat)

	// Failed restore mutates nothing.
	assert.Nil(t, p.Envelope())
	assert.False(t, p.Export().Settings.RTL)
}

func TestRestore_RejectsNonArrayData(t *testing.T) {
	t.Parallel()

	p := newTestPlayer(t, wavescrub.Options{Segments: 4})

	err := p.Restore([]byte(`{"version":"1","data":"not an array"}`))
	require.ErrorIs(t, err, wavescrub.ErrInvalidFormat)
	assert.Nil(t, p.Envelope())
}

func TestRestore_RejectsNullData(t *testing.T) {
	t.Parallel()

	p := newTestPlayer(t, wavescrub.Options{Segments: 4})
	require.NoError(t, p.Restore([]byte(`{"version":"1","data":[15,40,80,100]}`)))

	err := p.Restore([]byte(`{"version":"1","data":null}`))
	require.ErrorIs(t, err, wavescrub.ErrInvalidFormat)

	// The rejected payload must not clear the existing envelope.
	assert.Equal(t, envelope.Envelope{15, 40, 80, 100}, p.Envelope())
}

func TestRestore_RejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	p := newTestPlayer(t, wavescrub.Options{Segments: 4})
	require.ErrorIs(t, p.Restore([]byte(`{"version":`)), wavescrub.ErrInvalidFormat)
}

func TestRestore_PartialSettingsLeaveConfigUntouched(t *testing.T) {
	t.Parallel()

	p := newTestPlayer(t, wavescrub.Options{
		Segments:        4,
		RTL:             true,
		SamplingQuality: envelope.QualityHigh,
	})

	// No rtl field: the existing RTL setting must survive.
	require.NoError(t, p.Restore([]byte(`{"version":"1","data":[15,100],"settings":{"samplingQuality":"low"}}`)))

	settings := p.Export().Settings
	assert.True(t, settings.RTL)
	assert.Equal(t, envelope.QualityLow, settings.SamplingQuality)

	// No settings at all: everything survives.
	require.NoError(t, p.Restore([]byte(`{"version":"1","data":[15,100]}`)))
	settings = p.Export().Settings
	assert.True(t, settings.RTL)
	assert.Equal(t, envelope.QualityLow, settings.SamplingQuality)
}
