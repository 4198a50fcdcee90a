// Package tui provides a terminal preview of the waveform pipeline:
// extraction progress, the envelope as block bars, and keyboard seeking.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wavescrub/wavescrub/internal/tui/style"
	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/render"
)

// Block characters for amplitude visualization (8 levels, bottom to top).
const blockChars = " ▁▂▃▄▅▆▇█"

const (
	seekStep     = 0.05
	playStep     = 0.005
	playInterval = 50 * time.Millisecond
)

type (
	// extractProgressMsg reports extraction percentage.
	extractProgressMsg int
	// envelopeMsg delivers the finished envelope.
	envelopeMsg envelope.Envelope
	// extractErrMsg delivers an extraction failure.
	extractErrMsg struct{ err error }
	// playTickMsg advances simulated playback.
	playTickMsg time.Time
)

type keyMap struct {
	Quit    key.Binding
	Toggle  key.Binding
	Back    key.Binding
	Forward key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Back: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek forward"),
		),
	}
}

// Model drives the scrubber: extract first, then draw and seek.
type Model struct {
	samples  []float64
	segments int
	quality  envelope.Quality
	rtl      bool

	keys keyMap
	bar  progress.Model

	env        envelope.Envelope
	extracting bool
	percent    int
	err        error

	playing  bool
	position float64

	updates chan tea.Msg
}

// New creates a scrubber that extracts one bar per terminal column.
func New(samples []float64, columns int, quality envelope.Quality, rtl bool) Model {
	if columns < 1 {
		columns = 80
	}

	return Model{
		samples:    samples,
		segments:   columns,
		quality:    quality,
		rtl:        rtl,
		keys:       defaultKeyMap(),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		extracting: true,
		updates:    make(chan tea.Msg, 16),
	}
}

// NewFromEnvelope creates a scrubber over an already-extracted envelope,
// e.g. one restored from an export payload.
func NewFromEnvelope(env envelope.Envelope, rtl bool) Model {
	return Model{
		segments: len(env),
		env:      env,
		rtl:      rtl,
		keys:     defaultKeyMap(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		updates:  make(chan tea.Msg, 16),
	}
}

// Init kicks off extraction (when needed) and the update pump.
func (m Model) Init() tea.Cmd {
	if !m.extracting {
		return nil
	}

	return tea.Batch(m.startExtraction(), m.waitForUpdate())
}

// startExtraction runs the extractor off the UI loop, streaming progress
// through the updates channel.
func (m Model) startExtraction() tea.Cmd {
	return func() tea.Msg {
		go func() {
			env, err := envelope.Extract(m.samples, m.segments, m.quality, func(percent int) {
				m.updates <- extractProgressMsg(percent)
			})
			if err != nil {
				m.updates <- extractErrMsg{err: err}
				return
			}
			m.updates <- envelopeMsg(env)
		}()

		return nil
	}
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func (m Model) playTick() tea.Cmd {
	return tea.Tick(playInterval, func(t time.Time) tea.Msg {
		return playTickMsg(t)
	})
}

// Update handles extraction progress, playback ticks, and seeking keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case extractProgressMsg:
		m.percent = int(typed)
		return m, m.waitForUpdate()

	case envelopeMsg:
		m.env = envelope.Envelope(typed)
		m.extracting = false
		return m, nil

	case extractErrMsg:
		m.err = typed.err
		m.extracting = false
		return m, nil

	case playTickMsg:
		if !m.playing {
			return m, nil
		}
		m.position = math.Min(1, m.position+playStep)
		if m.position >= 1 {
			m.playing = false
			return m, nil
		}
		return m, m.playTick()

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(typed)
		m.bar = barModel.(progress.Model) //nolint:forcetypeassert // bubbles library contract
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(typed)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if m.env == nil {
			return m, nil
		}
		m.playing = !m.playing
		if m.playing {
			return m, m.playTick()
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.env != nil {
			m.position = math.Max(0, m.position-seekStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		if m.env != nil {
			m.position = math.Min(1, m.position+seekStep)
		}
		return m, nil
	}

	return m, nil
}

// View renders extraction progress until the envelope is ready, then the
// scrubbable bar view.
func (m Model) View() string {
	if m.err != nil {
		return style.Error.Render(fmt.Sprintf("extraction failed: %v", m.err)) + "\n"
	}

	if m.extracting {
		var sb strings.Builder
		sb.WriteString(style.Title.Render("Extracting waveform"))
		sb.WriteString("\n\n")
		sb.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
		sb.WriteString(style.Muted.Render(fmt.Sprintf(" %d%%", m.percent)))
		sb.WriteString("\n")
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString(m.renderBars())
	sb.WriteString("\n")
	sb.WriteString(style.Muted.Render(fmt.Sprintf("position %3.0f%%", m.position*100)))
	if m.playing {
		sb.WriteString(style.Muted.Render("  playing"))
	}
	sb.WriteString("\n")
	sb.WriteString(style.Help.Render("space play/pause · ←/→ seek · q quit"))
	sb.WriteString("\n")

	return sb.String()
}

// renderBars draws one block character per segment, colored by its
// position relative to the playback boundary. A terminal cell cannot be
// split, so the boundary segment counts as played once at least half of
// it is.
func (m Model) renderBars() string {
	n := len(m.env)
	if n == 0 {
		return style.Muted.Render(strings.Repeat("▁", m.segments))
	}

	runes := []rune(blockChars)
	full, partial := render.Split(m.position, n)

	cells := make([]rune, n)
	played := make([]bool, n)

	for col := 0; col < n; col++ {
		i := col
		if m.rtl {
			i = n - 1 - col
		}

		level := int(math.Round(m.env[i] / envelope.MaxValue * 8))
		if level < 1 {
			level = 1
		}
		if level > 8 {
			level = 8
		}
		cells[col] = runes[level]

		switch render.Classify(i, full) {
		case render.SegmentActive:
			played[col] = true
		case render.SegmentPartial:
			played[col] = partial >= 0.5
		case render.SegmentInactive:
		}
	}

	// Group runs of equal state so each style renders once per run.
	var sb strings.Builder
	runStart := 0
	flush := func(end int) {
		if end == runStart {
			return
		}
		segment := string(cells[runStart:end])
		if played[runStart] {
			sb.WriteString(style.ActiveBar.Render(segment))
		} else {
			sb.WriteString(style.InactiveBar.Render(segment))
		}
		runStart = end
	}
	for col := 1; col < n; col++ {
		if played[col] != played[runStart] {
			flush(col)
		}
	}
	flush(n)

	return sb.String()
}

// Position returns the current playback fraction, for tests.
func (m Model) Position() float64 {
	return m.position
}

// Envelope returns the extracted envelope, for tests.
func (m Model) Envelope() envelope.Envelope {
	return m.env
}

// program adapts Model's concrete Update signature to tea.Model.
type program struct {
	Model
}

func (p program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := p.Model.Update(msg)
	return program{m}, cmd
}

// NewProgram wraps the scrubber in a runnable bubbletea program.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(program{m})
}
