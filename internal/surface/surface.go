// Package surface defines the container that hosts airplanes and an
// in-memory implementation of it.
package surface

// Orientation is the direction a unit travels across the surface.
type Orientation int

const (
	FromLeft Orientation = iota
	FromRight
)

func (o Orientation) String() string {
	switch o {
	case FromLeft:
		return "left"
	case FromRight:
		return "right"
	default:
		return "unknown"
	}
}

// Unit is one airplane attached to a surface. IDs increase with creation
// order.
type Unit struct {
	ID          uint64
	Orientation Orientation
}

// Style is the visual configuration written to a surface on execute.
type Style struct {
	Background     string
	Height         int
	Resizable      bool
	ColorFromLeft  string
	ColorFromRight string
}

// Surface is a rectangular container that hosts units.
type Surface interface {
	// Height is the current measured height in pixels.
	Height() int
	// Units returns the attached units in surface order.
	Units() []Unit
	// Append attaches u as the last child.
	Append(u Unit)
	// Remove detaches the unit with the given id.
	Remove(id uint64) bool
	// Apply writes the visual configuration.
	Apply(style Style)
	// Observe registers fn to be called after every size change. The
	// returned cancel func is safe to call more than once.
	Observe(fn func()) (cancel func())
}
