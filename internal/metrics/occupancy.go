package metrics

import (
	"sync"

	"github.com/san-kum/airway/internal/airway"
)

// Occupancy is the mean fill ratio (count / capacity) over all ticks.
// Ticks on a zero-capacity surface are skipped.
type Occupancy struct {
	mu      sync.Mutex
	samples int
	total   float64
}

func NewOccupancy() *Occupancy {
	return &Occupancy{}
}

func (o *Occupancy) Name() string { return "occupancy" }

func (o *Occupancy) OnTick(t airway.Tick) {
	if t.Capacity <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total += float64(t.Count) / float64(t.Capacity)
	o.samples++
}

func (o *Occupancy) Value() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.samples == 0 {
		return 0
	}
	return o.total / float64(o.samples)
}

func (o *Occupancy) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total = 0
	o.samples = 0
}
