package viz

import (
	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/surface"
)

const (
	// CellHeight is the pixel height of one terminal row.
	CellHeight = 16
	// LaneRows is how many rows one airplane lane spans.
	LaneRows = airway.UnitFootprint / CellHeight
)

var (
	glyphFromLeft  = []rune("╶──✈")
	glyphFromRight = []rune("✈──╴")
)

func glyphFor(o surface.Orientation) []rune {
	if o == surface.FromRight {
		return glyphFromRight
	}
	return glyphFromLeft
}

// RowsFor returns how many whole terminal rows a surface of the given
// pixel height covers.
func RowsFor(height int) int {
	if height <= 0 {
		return 0
	}
	return height / CellHeight
}

// HeightFor is the pixel height of rows terminal rows.
func HeightFor(rows int) int {
	if rows <= 0 {
		return 0
	}
	return rows * CellHeight
}

// Flights tracks the horizontal position of every airplane, in cells.
// Airplanes enter from their origin edge and wrap around after leaving the
// opposite one.
type Flights struct {
	speed float64
	pos   map[uint64]float64
}

func NewFlights(speed float64) *Flights {
	return &Flights{speed: speed, pos: make(map[uint64]float64)}
}

// Sync starts tracking new units and forgets removed ones.
func (f *Flights) Sync(units []surface.Unit, width int) {
	alive := make(map[uint64]bool, len(units))
	for _, u := range units {
		alive[u.ID] = true
		if _, ok := f.pos[u.ID]; !ok {
			f.pos[u.ID] = entry(u.Orientation, width)
		}
	}
	for id := range f.pos {
		if !alive[id] {
			delete(f.pos, id)
		}
	}
}

// Advance moves every unit one frame along its lane.
func (f *Flights) Advance(units []surface.Unit, width int) {
	f.Sync(units, width)
	for _, u := range units {
		x := f.pos[u.ID]
		span := float64(len(glyphFor(u.Orientation)))
		if u.Orientation == surface.FromRight {
			x -= f.speed
			if x < -span {
				x = entry(u.Orientation, width)
			}
		} else {
			x += f.speed
			if x > float64(width) {
				x = entry(u.Orientation, width)
			}
		}
		f.pos[u.ID] = x
	}
}

func (f *Flights) X(id uint64) int {
	return int(f.pos[id])
}

func (f *Flights) Len() int {
	return len(f.pos)
}

func entry(o surface.Orientation, width int) float64 {
	if o == surface.FromRight {
		return float64(width)
	}
	return -float64(len(glyphFor(o)))
}

// segments clips glyph placed at column x to [0, width). It returns the
// number of blank cells before the visible glyph part, the visible part and
// the blank cells after it.
func segments(width, x int, glyph []rune) (lead int, visible []rune, trail int) {
	if width <= 0 {
		return 0, nil, 0
	}
	start, end := x, x+len(glyph)
	if end <= 0 || start >= width {
		return width, nil, 0
	}
	from, to := 0, len(glyph)
	if start < 0 {
		from = -start
		start = 0
	}
	if end > width {
		to -= end - width
		end = width
	}
	return start, glyph[from:to], width - end
}
