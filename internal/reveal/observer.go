// Package reveal decides when a page section plays its entrance animation
// and what each of its children should look like at any point of it.
package reveal

import "sync"

// DefaultMargin contracts the viewport by 100px on every side, so a section
// has to be scrolled a little way in before it reveals.
const DefaultMargin = -100

// Rect is a region's bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the visible area reported by the browser.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Intersects reports whether r overlaps the viewport grown (or shrunk, for a
// negative margin) by margin on every side. Touching edges count.
func Intersects(r Rect, vp Viewport, margin float64) bool {
	top, left := -margin, -margin
	bottom, right := vp.Height+margin, vp.Width+margin
	if bottom < top || right < left {
		return false
	}
	return r.Top <= bottom && r.Top+r.Height >= top &&
		r.Left <= right && r.Left+r.Width >= left
}

// Observer latches the first time its region intersects the viewport.
type Observer struct {
	mu      sync.Mutex
	margin  float64
	entered bool
}

// NewObserver returns an observer that has not fired yet.
func NewObserver(margin float64) *Observer {
	return &Observer{margin: margin}
}

// NewUnsupportedObserver is used when the client cannot observe intersections;
// the region counts as entered from the start.
func NewUnsupportedObserver() *Observer {
	return &Observer{entered: true}
}

// Observe feeds one sample and reports whether it flipped the latch.
func (o *Observer) Observe(r Rect, vp Viewport) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.entered {
		return false
	}
	if Intersects(r, vp, o.margin) {
		o.entered = true
		return true
	}
	return false
}

func (o *Observer) HasEntered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.entered
}
