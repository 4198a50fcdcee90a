package server_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavescrub/wavescrub/internal/config"
	"github.com/wavescrub/wavescrub/internal/server"
	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/wavescrub"
)

func testServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := &config.Config{
		Env:             "test",
		Port:            "8080",
		HSTSMaxAge:      31536000,
		CSPMode:         "relaxed",
		LogLevel:        "info",
		MaxUploadBytes:  1 << 20,
		DefaultSegments: 50,
		DefaultQuality:  "medium",
		RenderWidth:     200,
		RenderHeight:    64,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	return server.New(cfg, logger)
}

// wavFixture builds a small mono WAV upload body.
func wavFixture(t *testing.T) []byte {
	t.Helper()

	frames := make([]int, 4410)
	for i := 1000; i < 2000; i++ {
		frames[i] = 32767
	}

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           frames,
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "wavescrub")
}

func TestWaveformEndpoint(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waveform?segments=40&quality=high&rtl=true", bytes.NewReader(wavFixture(t)))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var exported wavescrub.Export
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))

	assert.Equal(t, wavescrub.FormatVersion, exported.Version)
	assert.Equal(t, envelope.QualityHigh, exported.Settings.SamplingQuality)
	assert.True(t, exported.Settings.RTL)
	require.Len(t, exported.Data, 40)
	for i, v := range exported.Data {
		assert.GreaterOrEqual(t, v, envelope.MinValue, "segment %d", i)
		assert.LessOrEqual(t, v, envelope.MaxValue, "segment %d", i)
	}
}

func TestWaveformEndpoint_DefaultSegments(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waveform", bytes.NewReader(wavFixture(t)))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var exported wavescrub.Export
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	assert.Len(t, exported.Data, 50)
}

func TestWaveformEndpoint_InvalidSegments(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waveform?segments=-1", bytes.NewReader(wavFixture(t)))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWaveformEndpoint_RejectsNonAudio(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waveform", bytes.NewReader([]byte("not audio")))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestWaveformEndpoint_EmptyBody(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waveform", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderEndpoint_ReturnsPNG(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/render?width=120&height=48&progress=0.5&ratio=2", bytes.NewReader(wavFixture(t)))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}
