package surface

import (
	"sort"
	"sync"
)

// Document resolves lookup keys such as "#airway" to surfaces.
type Document struct {
	mu       sync.RWMutex
	surfaces map[string]Surface
}

func NewDocument() *Document {
	return &Document{surfaces: make(map[string]Surface)}
}

// Register binds key to s, replacing any previous binding.
func (d *Document) Register(key string, s Surface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surfaces[key] = s
}

func (d *Document) Lookup(key string) (Surface, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.surfaces[key]
	return s, ok
}

func (d *Document) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.surfaces))
	for k := range d.surfaces {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
