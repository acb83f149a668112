package airway

import (
	"fmt"

	"github.com/san-kum/airway/internal/logging"
	"github.com/san-kum/airway/internal/surface"
)

type logFunc func(msg string, level logging.Level, args ...any)

// Observation is what one Population run saw and did. Count is the number
// of airplanes left on the surface after the run.
type Observation struct {
	Height   int
	Count    int
	Capacity int
	Added    bool
	Removed  int
}

// Saturated reports whether the surface had no room left after the run.
func (o Observation) Saturated() bool {
	return o.Count >= o.Capacity
}

// Population admits or evicts airplanes, one decision per run.
type Population struct {
	surface func() surface.Surface
	factory *Factory
	log     logFunc
}

func NewPopulation(current func() surface.Surface, factory *Factory, log logFunc) *Population {
	if log == nil {
		log = func(string, logging.Level, ...any) {}
	}
	return &Population{surface: current, factory: factory, log: log}
}

// Run adds one airplane when there is room. Otherwise it removes every
// airplane past the first capacity ones, in surface order.
func (p *Population) Run() Observation {
	s := p.surface()
	units := s.Units()
	height := s.Height()
	capacity := Capacity(height)

	p.log(fmt.Sprintf("This container fits: %d airplane(s) and currently we have: %d airplane(s) flying!",
		capacity, len(units)), logging.LevelWarn)

	obs := Observation{Height: height, Capacity: capacity}
	if len(units) >= capacity {
		for _, u := range units[capacity:] {
			if s.Remove(u.ID) {
				obs.Removed++
				p.log("Airplane removed", logging.LevelLog, "id", u.ID)
			}
		}
		obs.Count = len(units) - obs.Removed
		return obs
	}

	p.factory.Create(s)
	obs.Added = true
	obs.Count = len(units) + 1
	return obs
}
