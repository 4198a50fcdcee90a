// Package wavescrub provides an interactive, scrubbable waveform player:
// it extracts an amplitude envelope off the render path, repaints a
// segmented bar onto a pixel-dense surface as playback progresses, and
// turns drag input into seek requests.
package wavescrub

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/events"
	"github.com/wavescrub/wavescrub/pkg/render"
)

// ErrClosed is returned by operations on a closed player.
var ErrClosed = errors.New("player closed")

// DefaultResizeDebounce is how long resize input must stay quiet before
// the surface is rebuilt.
const DefaultResizeDebounce = 100 * time.Millisecond

// Options configures a Player. Zero values fall back to sensible
// defaults where noted.
type Options struct {
	// Segments is the number of visual bars. 0 derives a count from the
	// viewport width (render.AutoSegmentCount).
	Segments int

	// SegmentGap is the horizontal spacing between bars in logical px.
	SegmentGap float64

	ActiveColor   string // default "#2563eb"
	InactiveColor string // default "#d1d5db"

	// BackgroundColor, when set, paints a pill behind the bars.
	BackgroundColor string

	// RTL mirrors layout and drag direction.
	RTL bool

	// SamplingQuality selects extraction decimation (default medium).
	SamplingQuality envelope.Quality

	// RoundedCorners enables rounded bars; CornerDivisor sets the
	// width-to-radius divisor (0 uses render.DefaultCornerDivisor).
	RoundedCorners bool
	CornerDivisor  float64

	// MinSegmentHeight is the minimum bar height as a percentage of the
	// viewport height.
	MinSegmentHeight float64

	// UseQueue serializes rapid extraction requests through a FIFO
	// worker instead of racing goroutines with latest-wins commit.
	UseQueue bool

	// Width and Height are the initial viewport in logical pixels; the
	// surface is allocated immediately when both are positive.
	Width  int
	Height int

	// PixelRatio is the device pixel ratio (default 1).
	PixelRatio float64

	// ResizeDebounce overrides DefaultResizeDebounce.
	ResizeDebounce time.Duration
}

func (o *Options) applyDefaults() {
	if o.ActiveColor == "" {
		o.ActiveColor = "#2563eb"
	}
	if o.InactiveColor == "" {
		o.InactiveColor = "#d1d5db"
	}
	if o.SamplingQuality == "" {
		o.SamplingQuality = envelope.QualityMedium
	}
	if o.PixelRatio <= 0 {
		o.PixelRatio = 1
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = DefaultResizeDebounce
	}
}

// Player owns the cached envelope, the playback fraction, the drawing
// surface, and the extraction pipeline for one waveform view.
//
// Rendering is pull-based: state changes mark the player dirty and the
// host calls Frame from its paint scheduler, which coalesces any number
// of intervening changes into a single repaint.
type Player struct {
	logger *slog.Logger
	bus    *events.Bus
	queue  *envelope.Queue

	mu         sync.Mutex
	opts       Options
	env        envelope.Envelope
	progress   float64
	surface    *render.Surface
	generation uint64
	dragging   bool
	closed     bool

	resizeTimer  *time.Timer
	pendingW     int
	pendingH     int
	pendingRatio float64

	// lastCommit chains queue-mode commits so envelope replacements
	// happen strictly in submission order.
	lastCommit chan struct{}

	dirty atomic.Bool
}

// New creates a player. logger may be nil, in which case slog's default
// logger is used.
func New(opts Options, logger *slog.Logger) (*Player, error) {
	opts.applyDefaults()

	if opts.Segments < 0 {
		return nil, fmt.Errorf("%w: segment count %d", envelope.ErrInvalidInput, opts.Segments)
	}
	if !opts.SamplingQuality.Valid() {
		return nil, fmt.Errorf("%w: unknown quality %q", envelope.ErrInvalidInput, opts.SamplingQuality)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Player{
		logger: logger,
		bus:    events.NewBus(),
		opts:   opts,
	}

	if opts.UseQueue {
		p.queue = envelope.NewQueue(logger)
	}
	if opts.Width > 0 && opts.Height > 0 {
		p.surface = render.NewSurface(opts.Width, opts.Height, opts.PixelRatio)
	}

	return p, nil
}

// Subscribe returns a channel of player events. The channel never blocks
// the player; a slow consumer loses events.
func (p *Player) Subscribe(buffer int) <-chan events.Event {
	return p.bus.Subscribe(buffer)
}

// SegmentCount returns the effective number of bars: the configured
// count, or one derived from the viewport width.
func (p *Player) SegmentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.segmentCountLocked()
}

func (p *Player) segmentCountLocked() int {
	if p.opts.Segments > 0 {
		return p.opts.Segments
	}
	return render.AutoSegmentCount(float64(p.opts.Width))
}

// Load starts extracting a waveform from decoded single-channel samples.
// It returns immediately; EnvelopeReady fires on completion. The sample
// buffer is copied before the extraction goroutine sees it.
//
// A newer Load supersedes any still-running one: a stale completion is
// discarded rather than clobbering the newer envelope.
func (p *Player) Load(samples []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: empty sample buffer", envelope.ErrInvalidInput)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.generation++
	gen := p.generation
	segments := p.segmentCountLocked()
	quality := p.opts.SamplingQuality
	p.mu.Unlock()

	req := envelope.Request{
		Samples:      samples,
		SegmentCount: segments,
		Quality:      quality,
		OnProgress: func(percent int) {
			p.logger.Debug("extraction progress", "generation", gen, "percent", percent)
		},
	}

	if p.queue != nil {
		// Queue mode: jobs complete strictly in submission order, so
		// every successful completion may replace the envelope without
		// a staleness check. Commits are chained on the previous job's
		// completion so the replacement order matches too.
		job := p.queue.Submit(req)

		p.mu.Lock()
		prev := p.lastCommit
		done := make(chan struct{})
		p.lastCommit = done
		p.mu.Unlock()

		go func() {
			defer close(done)
			res := <-job.Done()
			if prev != nil {
				<-prev
			}
			p.commit(gen, res.Envelope, res.Err, false)
		}()
		return nil
	}

	// Unqueued mode: one goroutine per request, newest generation wins.
	buf := make([]float64, len(samples))
	copy(buf, samples)
	req.Samples = buf

	go func() {
		env, err := envelope.Extract(req.Samples, req.SegmentCount, req.Quality, req.OnProgress)
		p.commit(gen, env, err, true)
	}()

	return nil
}

// commit installs a completed envelope. With guarded set (unqueued
// mode), a result whose generation has been superseded is discarded so a
// stale slow extraction can never clobber a newer one.
func (p *Player) commit(gen uint64, env envelope.Envelope, err error, guarded bool) {
	if err != nil {
		// The envelope stays whatever it was; interaction remains
		// disabled until a successful extraction.
		p.logger.Error("waveform extraction failed", "generation", gen, "error", err)
		return
	}

	p.mu.Lock()
	if p.closed || (guarded && gen != p.generation) {
		p.mu.Unlock()
		p.logger.Debug("stale extraction discarded", "generation", gen)
		return
	}
	p.env = env
	p.mu.Unlock()

	p.bus.Publish(events.Event{Kind: events.EnvelopeReady, Envelope: env})
	p.invalidate()
}

// Envelope returns the current envelope, or nil before the first
// successful extraction or restore.
func (p *Player) Envelope() envelope.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.env
}

// Progress returns the current playback fraction.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.progress
}

// SetPosition updates the playback fraction from the time source,
// clamping to [0, 1], and schedules a repaint when it moved.
func (p *Player) SetPosition(progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	p.mu.Lock()
	changed := progress != p.progress
	p.progress = progress
	p.mu.Unlock()

	if changed {
		p.bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: progress})
		p.invalidate()
	}
}

// PointerDown begins a drag. Interaction is ignored until an envelope
// exists. box is the container's bounding box in the pointer's
// coordinate space.
func (p *Player) PointerDown(x float64, box render.Rect) {
	p.mu.Lock()
	if p.env == nil || p.closed {
		p.mu.Unlock()
		return
	}
	p.dragging = true
	p.mu.Unlock()

	p.seekTo(x, box)
}

// PointerMove continues a drag started by PointerDown.
func (p *Player) PointerMove(x float64, box render.Rect) {
	p.mu.Lock()
	dragging := p.dragging
	p.mu.Unlock()

	if dragging {
		p.seekTo(x, box)
	}
}

// PointerUp ends a drag with a final seek.
func (p *Player) PointerUp(x float64, box render.Rect) {
	p.mu.Lock()
	dragging := p.dragging
	p.dragging = false
	p.mu.Unlock()

	if dragging {
		p.seekTo(x, box)
	}
}

func (p *Player) seekTo(x float64, box render.Rect) {
	p.mu.Lock()
	progress := render.PointerToProgress(x, box, p.opts.RTL)
	p.progress = progress
	p.mu.Unlock()

	// The host owns the audio element: it hears the request, seeks the
	// time source, and position ticks flow back through SetPosition.
	p.bus.Publish(events.Event{Kind: events.SeekRequested, Progress: progress})
	p.bus.Publish(events.Event{Kind: events.ProgressChanged, Progress: progress})
	p.invalidate()
}

// Resize records new viewport dimensions and rebuilds the surface after
// the debounce window passes without further resizes.
func (p *Player) Resize(width, height int, pixelRatio float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.pendingW = width
	p.pendingH = height
	p.pendingRatio = pixelRatio

	if p.resizeTimer != nil {
		p.resizeTimer.Stop()
	}
	p.resizeTimer = time.AfterFunc(p.opts.ResizeDebounce, p.applyResize)
}

func (p *Player) applyResize() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.opts.Width = p.pendingW
	p.opts.Height = p.pendingH
	p.opts.PixelRatio = p.pendingRatio
	if p.opts.PixelRatio <= 0 {
		p.opts.PixelRatio = 1
	}
	p.surface = render.NewSurface(p.opts.Width, p.opts.Height, p.opts.PixelRatio)
	p.mu.Unlock()

	p.invalidate()
}

// invalidate marks the view dirty for the next Frame.
func (p *Player) invalidate() {
	p.dirty.Store(true)
}

// Frame repaints the surface if anything changed since the last call and
// reports whether it painted. Hosts call this once per paint opportunity
// (animation tick), which coalesces bursts of pointer and position
// updates into single repaints.
func (p *Player) Frame() bool {
	if !p.dirty.CompareAndSwap(true, false) {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.surface == nil {
		return false
	}

	render.Render(p.surface.Context(), p.env, p.progress, p.renderConfigLocked())

	return true
}

// Surface returns the current drawing surface, or nil before the first
// allocation.
func (p *Player) Surface() *render.Surface {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.surface
}

// renderConfigLocked snapshots the style and the surface's current
// logical dimensions. Built fresh per render so a resize can never leave
// a stale snapshot behind.
func (p *Player) renderConfigLocked() render.Config {
	return render.Config{
		Width:            float64(p.surface.Width()),
		Height:           float64(p.surface.Height()),
		Gap:              p.opts.SegmentGap,
		ActiveColor:      p.opts.ActiveColor,
		InactiveColor:    p.opts.InactiveColor,
		BackgroundColor:  p.opts.BackgroundColor,
		RTL:              p.opts.RTL,
		RoundedCorners:   p.opts.RoundedCorners,
		CornerDivisor:    p.opts.CornerDivisor,
		MinHeightPercent: p.opts.MinSegmentHeight,
	}
}

// Close releases the extraction worker and event subscribers. The player
// must not be used afterwards.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.resizeTimer != nil {
		p.resizeTimer.Stop()
	}
	p.mu.Unlock()

	if p.queue != nil {
		p.queue.Close()
	}
	p.bus.Close()
}
