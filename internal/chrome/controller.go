package chrome

import "sync"

// Snapshot is everything the bar needs for one scroll sample.
type Snapshot struct {
	Offset   float64 `json:"offset"`
	Style    Style   `json:"style"`
	Scrolled bool    `json:"scrolled"`
}

// At computes a snapshot without touching any controller.
func At(offset float64) Snapshot {
	return Snapshot{Offset: offset, Style: StyleAt(offset), Scrolled: IsScrolled(offset)}
}

// Controller recomputes on every sample. Nothing is debounced or buffered,
// so Latest always reflects the most recent offset.
type Controller struct {
	mu     sync.Mutex
	latest Snapshot
	nextID int
	subs   map[int]func(Snapshot)
}

func NewController() *Controller {
	return &Controller{latest: At(0), subs: make(map[int]func(Snapshot))}
}

// Sample records a new offset and notifies subscribers synchronously.
func (c *Controller) Sample(offset float64) Snapshot {
	snap := At(offset)

	c.mu.Lock()
	c.latest = snap
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

func (c *Controller) Latest() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Subscribe registers fn for every sample until the returned func is called.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}
