package surface

import (
	"sort"
	"sync"
)

// Pane is a concurrency-safe in-memory Surface.
//
// Observers are invoked outside the pane lock so they may call back into the
// pane.
type Pane struct {
	mu        sync.Mutex
	width     int
	height    int
	style     Style
	units     []Unit
	observers map[uint64]func()
	nextObs   uint64
}

// NewPane returns an empty pane of the given height in pixels.
func NewPane(height int) *Pane {
	if height < 0 {
		height = 0
	}
	return &Pane{
		height:    height,
		observers: make(map[uint64]func()),
	}
}

func (p *Pane) Height() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

func (p *Pane) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// SetWidth records the horizontal extent. Width does not influence capacity
// and does not notify observers.
func (p *Pane) SetWidth(w int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = w
}

func (p *Pane) Units() []Unit {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Unit, len(p.units))
	copy(out, p.units)
	return out
}

func (p *Pane) Append(u Unit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units = append(p.units, u)
}

func (p *Pane) Remove(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, u := range p.units {
		if u.ID == id {
			p.units = append(p.units[:i], p.units[i+1:]...)
			return true
		}
	}
	return false
}

// Clear detaches every unit, the way an external actor emptying the
// container would.
func (p *Pane) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units = nil
}

// Apply stores the style and sizes the pane to style.Height.
func (p *Pane) Apply(style Style) {
	p.mu.Lock()
	p.style = style
	p.mu.Unlock()
	p.Resize(style.Height)
}

func (p *Pane) Style() Style {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.style
}

// Resize changes the height and notifies observers when it differs from the
// current one.
func (p *Pane) Resize(height int) {
	if height < 0 {
		height = 0
	}
	p.mu.Lock()
	if p.height == height {
		p.mu.Unlock()
		return
	}
	p.height = height
	fns := p.snapshotObservers()
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (p *Pane) Observe(fn func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextObs++
	id := p.nextObs
	p.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.observers, id)
			p.mu.Unlock()
		})
	}
}

// Observers returns the number of active resize subscriptions.
func (p *Pane) Observers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.observers)
}

func (p *Pane) snapshotObservers() []func() {
	ids := make([]uint64, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), len(ids))
	for i, id := range ids {
		fns[i] = p.observers[id]
	}
	return fns
}
