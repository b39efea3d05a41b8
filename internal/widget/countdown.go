package widget

import (
	"fmt"
	"sync"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

// State is the countdown engine lifecycle. Valid transitions are
// Loading -> Running -> Expired, Loading -> Error, and any non-terminal
// state -> Stopped when the container leaves the page. Expired and Error
// are terminal.
type State int

const (
	StateLoading State = iota
	StateRunning
	StateExpired
	StateError
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	case StateError:
		return "error"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Remaining is the countdown broken into display units. Two ticks inside
// the same display second produce equal Remaining values, which is what
// the engine uses to coalesce renders.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func (r Remaining) String() string {
	return fmt.Sprintf("%dd %02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// remainingUntil breaks the interval down into display units, flooring
// each the way the rendered digits do. A deadline at or before now is
// expired.
func remainingUntil(deadline, now time.Time) (Remaining, bool) {
	d := deadline.Sub(now)
	if d <= 0 {
		return Remaining{}, true
	}
	secs := int(d / time.Second)
	return Remaining{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}, false
}

// Renderer is the display surface the engine draws on. Implementations
// own the container markup; the engine only decides what to show and
// when.
type Renderer interface {
	RenderLoading()
	RenderCountdown(remaining Remaining, config models.CampaignConfig)
	RenderExpired(config models.CampaignConfig)
	RenderError(message string)
	Clear()
}

// Engine drives one container's countdown. It renders a loading
// placeholder on creation, then ticks once a second after Start until the
// deadline passes. Renders are coalesced: a tick that lands in the same
// display second as the previous one draws nothing.
type Engine struct {
	mu       sync.Mutex
	state    State
	deadline time.Time
	config   models.CampaignConfig
	last     Remaining

	renderer Renderer
	interval time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock overrides the engine's time source
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithInterval overrides the tick interval
func WithInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.interval = d
	}
}

// NewEngine creates an engine in the Loading state and renders the
// loading placeholder
func NewEngine(renderer Renderer, opts ...EngineOption) *Engine {
	e := &Engine{
		state:    StateLoading,
		renderer: renderer,
		interval: time.Second,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.renderer.RenderLoading()
	return e
}

// Start moves the engine out of Loading with the deadline and config the
// service handed back. A deadline already in the past renders expired
// immediately and never spins up the ticker. Start on a non-loading
// engine is a no-op.
func (e *Engine) Start(deadline time.Time, config models.CampaignConfig) {
	e.mu.Lock()
	if e.state != StateLoading {
		e.mu.Unlock()
		return
	}
	e.deadline = deadline
	e.config = config

	remaining, expired := remainingUntil(deadline, e.now())
	if expired {
		e.state = StateExpired
		e.mu.Unlock()
		e.renderer.RenderExpired(config)
		return
	}

	e.state = StateRunning
	e.last = remaining
	e.mu.Unlock()

	e.renderer.RenderCountdown(remaining, config)
	go e.run()
}

func (e *Engine) run() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !e.Tick() {
				return
			}
		case <-e.done:
			return
		}
	}
}

// Tick advances the countdown one step and reports whether the engine is
// still running. Exposed so hosts driving their own event loop can pump
// the engine instead of relying on the internal ticker.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return false
	}

	remaining, expired := remainingUntil(e.deadline, e.now())
	if expired {
		e.state = StateExpired
		config := e.config
		e.mu.Unlock()
		e.renderer.RenderExpired(config)
		return false
	}
	if remaining == e.last {
		// Same display second as the previous render
		e.mu.Unlock()
		return true
	}
	e.last = remaining
	config := e.config
	e.mu.Unlock()

	e.renderer.RenderCountdown(remaining, config)
	return true
}

// Fail moves a loading engine into the terminal Error state. The page has
// to reload before another attempt is made; nothing restarts itself.
func (e *Engine) Fail(message string) {
	e.mu.Lock()
	if e.state != StateLoading {
		e.mu.Unlock()
		return
	}
	e.state = StateError
	e.mu.Unlock()
	e.renderer.RenderError(message)
}

// Stop halts the ticker and marks a non-terminal engine stopped. Safe to
// call more than once and from any state.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.done)
	})
	e.mu.Lock()
	if e.state == StateLoading || e.state == StateRunning {
		e.state = StateStopped
	}
	e.mu.Unlock()
}

// State returns the engine's current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Deadline returns the deadline the engine counts toward; zero until
// Start is called
func (e *Engine) Deadline() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deadline
}
