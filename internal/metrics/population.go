package metrics

import (
	"sync"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/airway/internal/airway"
)

// Metric is an airway observer that reduces ticks to a single value.
type Metric interface {
	airway.Observer
	Name() string
	Value() float64
	Reset()
}

// Summary is a point-in-time copy of the population counters.
type Summary struct {
	Ticks       int
	Added       int
	Removed     int
	Saturations int
	Count       int
	Capacity    int
	State       airway.State
}

// Population counts admissions, evictions and saturations and keeps the
// airplane count after each tick.
type Population struct {
	mu      sync.Mutex
	window  int
	summary Summary
	history []float64
}

// NewPopulation keeps at most window history samples; window <= 0 keeps
// everything.
func NewPopulation(window int) *Population {
	return &Population{window: window}
}

func (p *Population) Name() string { return "population" }

func (p *Population) OnTick(t airway.Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.summary.Ticks++
	if t.Added {
		p.summary.Added++
	}
	p.summary.Removed += t.Removed
	if t.State == airway.Saturated {
		p.summary.Saturations++
	}
	p.summary.Count = t.Count
	p.summary.Capacity = t.Capacity
	p.summary.State = t.State

	p.history = append(p.history, float64(t.Count))
	if p.window > 0 && len(p.history) > p.window {
		p.history = p.history[len(p.history)-p.window:]
	}
}

// Value is the airplane count after the latest tick.
func (p *Population) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.summary.Count)
}

func (p *Population) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summary = Summary{}
	p.history = nil
}

func (p *Population) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

func (p *Population) History() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.history))
	copy(out, p.history)
	return out
}

// Plot renders the count history. It returns an empty string before the
// first tick.
func (p *Population) Plot(width, height int, caption string) string {
	data := p.History()
	if len(data) == 0 {
		return ""
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
