package airway

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/san-kum/airway/internal/clock"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/logging"
	"github.com/san-kum/airway/internal/surface"
)

// Resolver looks surfaces up by key.
type Resolver interface {
	Lookup(key string) (surface.Surface, bool)
}

// Option customizes an Airway at construction.
type Option func(*Airway)

func WithClock(c clock.Clock) Option {
	return func(a *Airway) { a.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(a *Airway) { a.rng = r }
}

// WithLogger sets the destination of log output, stderr by default.
// Output is only produced when the log option is enabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *Airway) { a.logger = l }
}

func WithObserver(o Observer) Option {
	return func(a *Airway) { a.observers = append(a.observers, o) }
}

// Airway binds a surface to an admission loop and a resize watcher.
type Airway struct {
	// opMu serializes lifecycle operations.
	opMu sync.Mutex

	mu      sync.RWMutex
	surface surface.Surface
	cfg     config.Config

	clock     clock.Clock
	rng       *rand.Rand
	logger    *slog.Logger
	observers []Observer

	sink       *logging.Sink
	population *Population
	sched      *Scheduler
	watcher    *Watcher
}

// New binds s and merges opts over the defaults.
func New(s surface.Surface, opts config.Options, options ...Option) (*Airway, error) {
	if s == nil {
		return nil, &SurfaceNotFoundError{}
	}
	cfg := config.Merge(opts)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	a := &Airway{
		surface: s,
		cfg:     cfg,
		clock:   clock.Real(),
		logger:  logging.New(os.Stderr, false),
	}
	for _, opt := range options {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a.sink = logging.NewSink(a.logger, a.logEnabled)
	a.population = NewPopulation(a.Surface, NewFactory(a.rng), a.log)
	a.sched = NewScheduler(a.clock, a.population.Run, a.nextDelay, a.log)
	for _, o := range a.observers {
		a.sched.AddObserver(o)
	}
	return a, nil
}

// NewFromKey resolves key against r and binds the result.
func NewFromKey(r Resolver, key string, opts config.Options, options ...Option) (*Airway, error) {
	s, err := resolve(r, key)
	if err != nil {
		return nil, err
	}
	return New(s, opts, options...)
}

func resolve(r Resolver, key string) (surface.Surface, error) {
	if r == nil {
		return nil, &SurfaceNotFoundError{Key: key}
	}
	s, ok := r.Lookup(key)
	if !ok || s == nil {
		return nil, &SurfaceNotFoundError{Key: key}
	}
	return s, nil
}

// SetSurface rebinds to s. A running loop continues on the new surface;
// styling and the resize watcher follow on the next Execute.
func (a *Airway) SetSurface(s surface.Surface) error {
	if s == nil {
		return &SurfaceNotFoundError{}
	}
	a.opMu.Lock()
	defer a.opMu.Unlock()

	a.stopWatcherLocked()
	a.mu.Lock()
	a.surface = s
	a.mu.Unlock()
	return nil
}

// SetSurfaceKey resolves key against r and rebinds to the result. The
// current binding is kept when resolution fails.
func (a *Airway) SetSurfaceKey(r Resolver, key string) error {
	s, err := resolve(r, key)
	if err != nil {
		return err
	}
	return a.SetSurface(s)
}

// SetConfig replaces the configuration with opts merged over the defaults.
// Styling is applied on the next Execute; lazy and log apply from the next
// tick.
func (a *Airway) SetConfig(opts config.Options) error {
	cfg := config.Merge(opts)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	return nil
}

// Execute styles the surface, starts the loop with zero delay and
// subscribes the resize watcher, replacing any earlier subscription.
func (a *Airway) Execute() {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	a.stopWatcherLocked()
	a.sched.Dispose()

	s, cfg := a.snapshot()
	s.Apply(surface.Style{
		Background:     cfg.BackgroundColor,
		Height:         cfg.Height,
		Resizable:      cfg.Resizable,
		ColorFromLeft:  cfg.ColorFromLeft,
		ColorFromRight: cfg.ColorFromRight,
	})

	a.sched.Start()
	a.watcher = Watch(s, s.Height(), a.onResize)
}

// Dispose stops the loop. The resize watcher stays subscribed, so a later
// resize restarts the loop; use Close to detach it too.
func (a *Airway) Dispose() {
	a.sched.Dispose()
}

// Close stops the loop and detaches the resize watcher.
func (a *Airway) Close() {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	a.sched.Dispose()
	a.stopWatcherLocked()
}

func (a *Airway) State() State {
	return a.sched.State()
}

// Pending reports whether a tick is armed.
func (a *Airway) Pending() bool {
	return a.sched.Pending()
}

// Watching reports whether a resize watcher is subscribed.
func (a *Airway) Watching() bool {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	return a.watcher != nil
}

func (a *Airway) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *Airway) Surface() surface.Surface {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.surface
}

func (a *Airway) snapshot() (surface.Surface, config.Config) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.surface, a.cfg
}

func (a *Airway) onResize(height int) {
	a.log(fmt.Sprintf("Container has been resized to: %d", height), logging.LevelInfo)
	a.sched.Trigger()
}

func (a *Airway) nextDelay() time.Duration {
	return Delay(a.Config().Lazy, a.rng)
}

func (a *Airway) stopWatcherLocked() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
}

func (a *Airway) logEnabled() bool {
	return a.Config().Log
}

func (a *Airway) log(msg string, level logging.Level, args ...any) {
	a.sink.Log(msg, level, args...)
}
