package reveal

import "sync"

type registration struct {
	id       string
	observer *Observer
}

// Registry owns the observers of one page view. Every Register hands back a
// release function; Close releases whatever is still registered.
type Registry struct {
	mu        sync.Mutex
	supported bool
	regs      []*registration
}

// NewRegistry creates a registry. When supported is false every observer it
// creates is already entered.
func NewRegistry(supported bool) *Registry {
	return &Registry{supported: supported}
}

// Register adds an observer for the region id. Registering an id twice
// replaces the earlier observer.
func (r *Registry) Register(id string, margin float64) (*Observer, func()) {
	obs := NewObserver(margin)
	if !r.supported {
		obs = NewUnsupportedObserver()
	}
	reg := &registration{id: id, observer: obs}

	r.mu.Lock()
	r.removeLocked(id)
	r.regs = append(r.regs, reg)
	r.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, cur := range r.regs {
				if cur == reg {
					r.regs = append(r.regs[:i], r.regs[i+1:]...)
					return
				}
			}
		})
	}
	return obs, release
}

func (r *Registry) removeLocked(id string) {
	for i, cur := range r.regs {
		if cur.id == id {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return
		}
	}
}

// Update feeds one frame of region rects and returns the ids that entered
// during it, in registration order. Regions missing from rects are skipped.
func (r *Registry) Update(vp Viewport, rects map[string]Rect) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entered []string
	for _, reg := range r.regs {
		rect, ok := rects[reg.id]
		if !ok {
			continue
		}
		if reg.observer.Observe(rect, vp) {
			entered = append(entered, reg.id)
		}
	}
	return entered
}

// Entered lists every registered id whose latch has fired.
func (r *Registry) Entered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, reg := range r.regs {
		if reg.observer.HasEntered() {
			ids = append(ids, reg.id)
		}
	}
	return ids
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Close drops every registration.
func (r *Registry) Close() {
	r.mu.Lock()
	r.regs = nil
	r.mu.Unlock()
}
