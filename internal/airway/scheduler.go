package airway

import (
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/airway/internal/clock"
	"github.com/san-kum/airway/internal/logging"
)

// State of the scheduler loop.
type State int

const (
	// Idle: no timer pending, never started or disposed.
	Idle State = iota
	// Armed: a tick is pending.
	Armed
	// Saturated: the surface is full and the loop waits for a trigger.
	Saturated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Saturated:
		return "saturated"
	default:
		return "unknown"
	}
}

const (
	minLazyDelay = 3
	maxLazyDelay = 6
)

// Delay returns the wait before the next tick: a whole number of seconds in
// [3, 6] when lazy, zero otherwise.
func Delay(lazy bool, rng *rand.Rand) time.Duration {
	if !lazy {
		return 0
	}
	secs := minLazyDelay + rng.Intn(maxLazyDelay-minLazyDelay+1)
	return time.Duration(secs) * time.Second
}

// Tick describes one completed scheduler step.
type Tick struct {
	Observation
	At    time.Time
	State State
	Delay time.Duration
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(t Tick)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Tick)

func (f ObserverFunc) OnTick(t Tick) { f(t) }

// Scheduler runs a step function on a self re-arming timer. At most one
// timer is pending at any time.
type Scheduler struct {
	mu        sync.Mutex
	clock     clock.Clock
	step      func() Observation
	delay     func() time.Duration
	log       logFunc
	observers []Observer

	timer clock.Timer
	gen   uint64
	state State
	ticks int
}

func NewScheduler(c clock.Clock, step func() Observation, delay func() time.Duration, log logFunc) *Scheduler {
	if log == nil {
		log = func(string, logging.Level, ...any) {}
	}
	return &Scheduler{clock: c, step: step, delay: delay, log: log}
}

// AddObserver registers o. Observers run outside the scheduler lock.
func (s *Scheduler) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Start cancels any pending tick and arms a new one with zero delay.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.armLocked(0)
}

// Trigger cancels any pending tick and runs one immediately on the calling
// goroutine. It is the only way out of Saturated.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	s.clearLocked()
	t := s.runLocked()
	observers := s.observers
	s.mu.Unlock()

	notify(observers, t)
}

// Dispose cancels any pending tick. Safe to call repeatedly and from any
// state.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pending reports whether a tick is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Ticks returns the number of steps run so far.
func (s *Scheduler) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	// A cleared timer whose callback was already running must not tick.
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	t := s.runLocked()
	observers := s.observers
	s.mu.Unlock()

	notify(observers, t)
}

func (s *Scheduler) runLocked() Tick {
	obs := s.step()
	s.ticks++
	t := Tick{Observation: obs, At: s.clock.Now()}

	if obs.Count < obs.Capacity {
		t.Delay = s.delay()
		s.armLocked(t.Delay)
	} else {
		s.log("Airplane limit reached!", logging.LevelInfo)
		s.state = Saturated
	}
	t.State = s.state
	return t
}

func (s *Scheduler) armLocked(d time.Duration) {
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.fire(gen) })
	s.state = Armed
}

func (s *Scheduler) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.state = Idle
}

func notify(observers []Observer, t Tick) {
	for _, o := range observers {
		o.OnTick(t)
	}
}
