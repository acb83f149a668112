package airway

import (
	"math/rand"

	"github.com/san-kum/airway/internal/surface"
)

// Factory creates airplanes. It is not safe for concurrent use; the
// scheduler serializes calls.
type Factory struct {
	rng  *rand.Rand
	next uint64
}

func NewFactory(rng *rand.Rand) *Factory {
	return &Factory{rng: rng}
}

// Create appends one airplane with a coin-flip orientation to s.
func (f *Factory) Create(s surface.Surface) surface.Unit {
	f.next++
	u := surface.Unit{ID: f.next, Orientation: surface.FromLeft}
	if f.rng.Intn(2) == 1 {
		u.Orientation = surface.FromRight
	}
	s.Append(u)
	return u
}
