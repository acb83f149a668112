package airway

import (
	"sync"

	"github.com/san-kum/airway/internal/surface"
)

// Resized reports whether a newly measured height differs from the
// baseline.
func Resized(previous, next int) bool {
	return previous != next
}

// Watcher calls back when a surface's height differs from the height
// captured when the watcher was created.
type Watcher struct {
	surface  surface.Surface
	baseline int
	onResize func(height int)

	mu     sync.Mutex
	cancel func()
}

// Watch subscribes to size changes of s. The baseline is not updated after
// a resize, so every later observation is compared against it.
func Watch(s surface.Surface, baseline int, onResize func(height int)) *Watcher {
	w := &Watcher{surface: s, baseline: baseline, onResize: onResize}
	w.cancel = s.Observe(w.observe)
	return w
}

func (w *Watcher) Baseline() int { return w.baseline }

func (w *Watcher) observe() {
	h := w.surface.Height()
	if !Resized(w.baseline, h) {
		return
	}
	w.onResize(h)
}

// Stop cancels the subscription. Safe to call repeatedly.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
