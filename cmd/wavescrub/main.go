package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/wavescrub/wavescrub/internal/decode"
	"github.com/wavescrub/wavescrub/internal/logger"
	"github.com/wavescrub/wavescrub/internal/tui"
	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/render"
	"github.com/wavescrub/wavescrub/pkg/wavescrub"
)

// CLI defines the wavescrub command structure.
type CLI struct {
	Render  RenderCmd  `cmd:"" help:"Render an audio file's waveform to a PNG"`
	Extract ExtractCmd `cmd:"" help:"Extract a waveform envelope to portable JSON"`
	Preview PreviewCmd `cmd:"" default:"withargs" help:"Scrub an audio file's waveform in the terminal"`
}

// RenderCmd renders a waveform PNG for a given playback position.
type RenderCmd struct {
	Input  string `arg:"" required:"" help:"Audio file (WAV or MP3)"`
	Output string `flag:"" short:"o" default:"waveform.png" help:"Output PNG path"`

	Width      int     `flag:"" default:"800" help:"Image width in logical px"`
	Height     int     `flag:"" default:"128" help:"Image height in logical px"`
	PixelRatio float64 `flag:"" default:"1" help:"Device pixel ratio"`
	Segments   int     `flag:"" default:"0" help:"Segment count (0 derives from width)"`
	Gap        float64 `flag:"" default:"2" help:"Gap between segments in px"`
	Progress   float64 `flag:"" default:"0" help:"Playback position in [0,1]"`
	Quality    string  `flag:"" default:"medium" enum:"low,medium,high" help:"Sampling quality"`

	ActiveColor   string `flag:"" default:"#2563eb" help:"Played segment color"`
	InactiveColor string `flag:"" default:"#d1d5db" help:"Unplayed segment color"`
	Background    string `flag:"" optional:"" help:"Background pill color (empty for none)"`
	Rounded       bool   `flag:"" default:"true" negatable:"" help:"Round segment corners"`
	RTL           bool   `flag:"" help:"Mirror layout right-to-left"`
}

// Run executes the render command.
func (c *RenderCmd) Run() error {
	samples, rate, err := decode.File(c.Input)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.Input, err)
	}
	slog.Info("Decoded audio", "file", c.Input, "samples", len(samples), "sampleRate", rate)

	segments := c.Segments
	if segments <= 0 {
		segments = render.AutoSegmentCount(float64(c.Width))
	}

	env, err := envelope.Extract(samples, segments, envelope.Quality(c.Quality), nil)
	if err != nil {
		return fmt.Errorf("failed to extract envelope: %w", err)
	}

	if c.Progress < 0 {
		c.Progress = 0
	}
	if c.Progress > 1 {
		c.Progress = 1
	}

	surface := render.NewSurface(c.Width, c.Height, c.PixelRatio)
	render.Render(surface.Context(), env, c.Progress, render.Config{
		Width:           float64(c.Width),
		Height:          float64(c.Height),
		Gap:             c.Gap,
		ActiveColor:     c.ActiveColor,
		InactiveColor:   c.InactiveColor,
		BackgroundColor: c.Background,
		RTL:             c.RTL,
		RoundedCorners:  c.Rounded,
	})

	out, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := surface.EncodePNG(out); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Wrote waveform", "file", c.Output, "segments", segments, "progress", c.Progress)

	return nil
}

// ExtractCmd extracts an envelope and writes it as export JSON, the same
// payload the player's Export/Restore round-trips.
type ExtractCmd struct {
	Input  string `arg:"" required:"" help:"Audio file (WAV or MP3)"`
	Output string `flag:"" short:"o" optional:"" help:"Output path (default: stdout)"`

	Segments int    `flag:"" default:"200" help:"Segment count"`
	Quality  string `flag:"" default:"medium" enum:"low,medium,high" help:"Sampling quality"`
	RTL      bool   `flag:"" help:"Record right-to-left layout in settings"`
}

// Run executes the extract command.
func (c *ExtractCmd) Run() error {
	samples, _, err := decode.File(c.Input)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.Input, err)
	}

	quality := envelope.Quality(c.Quality)

	env, err := envelope.Extract(samples, c.Segments, quality, nil)
	if err != nil {
		return fmt.Errorf("failed to extract envelope: %w", err)
	}

	export := wavescrub.Export{
		Version: wavescrub.FormatVersion,
		Data:    env,
		Settings: wavescrub.Settings{
			SamplingQuality: quality,
			RTL:             c.RTL,
		},
	}

	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if c.Output == "" {
		fmt.Println(string(payload))
		return nil
	}

	if err := os.WriteFile(c.Output, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	slog.Info("Wrote export", "file", c.Output, "segments", len(env))

	return nil
}

// PreviewCmd is the default command: an interactive terminal scrubber.
type PreviewCmd struct {
	Input string `arg:"" required:"" help:"Audio file (WAV or MP3) or export JSON"`

	Columns int    `flag:"" default:"80" help:"Bar columns to draw"`
	Quality string `flag:"" default:"medium" enum:"low,medium,high" help:"Sampling quality"`
	RTL     bool   `flag:"" help:"Mirror layout right-to-left"`
}

// Run executes the preview command.
func (c *PreviewCmd) Run() error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.Input, err)
	}

	var model tui.Model

	// Export JSON payloads skip extraction entirely.
	var export wavescrub.Export
	if json.Unmarshal(data, &export) == nil && len(export.Data) > 0 {
		model = tui.NewFromEnvelope(envelope.Envelope(export.Data), export.Settings.RTL || c.RTL)
	} else {
		samples, _, err := decode.Bytes(data)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", c.Input, err)
		}
		model = tui.New(samples, c.Columns, envelope.Quality(c.Quality), c.RTL)
	}

	p := tui.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

func main() {
	slog.SetDefault(logger.Text(os.Stderr, slog.LevelInfo))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
