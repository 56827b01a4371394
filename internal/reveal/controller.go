package reveal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Style is the animatable subset of an element's appearance.
type Style struct {
	Opacity float64 `json:"opacity" yaml:"opacity"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y"`
	BlurPx  float64 `json:"blur_px" yaml:"blur_px"`
	Scale   float64 `json:"scale" yaml:"scale"`
}

// Hidden and Visible are the defaults most sections use.
var (
	Hidden  = Style{Opacity: 0, OffsetY: 18, BlurPx: 6, Scale: 1}
	Visible = Style{Opacity: 1, OffsetY: 0, BlurPx: 0, Scale: 1}
)

// CSS renders the style as inline declarations.
func (s Style) CSS() string {
	var b strings.Builder
	fmt.Fprintf(&b, "opacity:%s;", num(s.Opacity))

	var transforms []string
	if s.OffsetY != 0 {
		transforms = append(transforms, "translateY("+num(s.OffsetY)+"px)")
	}
	if s.Scale != 0 && s.Scale != 1 {
		transforms = append(transforms, "scale("+num(s.Scale)+")")
	}
	if len(transforms) > 0 {
		b.WriteString("transform:" + strings.Join(transforms, " ") + ";")
	} else {
		b.WriteString("transform:none;")
	}
	b.WriteString("filter:blur(" + num(s.BlurPx) + "px);")
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Item is one child of a section.
type Item struct {
	Hidden   Style
	Visible  Style
	Duration time.Duration
	Delay    time.Duration
}

// Section is a revealable region and its children in declared order.
type Section struct {
	ID        string
	BaseDelay time.Duration
	Stagger   time.Duration
	Items     []Item
}

// Frame is where a child should be heading and when it starts moving.
type Frame struct {
	Index    int           `json:"index"`
	Style    Style         `json:"style"`
	Start    time.Duration `json:"-"`
	Duration time.Duration `json:"-"`
	Animate  bool          `json:"animate"`
}

// Target is a pure function of the section's latch and a child's index.
// Before the section has entered, every child sits in its hidden style.
func (s Section) Target(hasEntered bool, index int) Frame {
	if index < 0 || index >= len(s.Items) {
		return Frame{Index: index}
	}
	it := s.Items[index]
	if !hasEntered {
		return Frame{Index: index, Style: it.Hidden}
	}
	return Frame{
		Index:    index,
		Style:    it.Visible,
		Start:    s.BaseDelay + time.Duration(index)*s.Stagger + it.Delay,
		Duration: it.Duration,
		Animate:  true,
	}
}

// Plan returns the frames of every child in array order.
func (s Section) Plan(hasEntered bool) []Frame {
	frames := make([]Frame, len(s.Items))
	for i := range s.Items {
		frames[i] = s.Target(hasEntered, i)
	}
	return frames
}

// At interpolates linearly from `from` to the frame's style, elapsed time
// after the section entered.
func (f Frame) At(elapsed time.Duration, from Style) Style {
	if !f.Animate {
		return f.Style
	}
	if elapsed <= f.Start {
		return from
	}
	if f.Duration <= 0 || elapsed >= f.Start+f.Duration {
		return f.Style
	}
	t := float64(elapsed-f.Start) / float64(f.Duration)
	return Style{
		Opacity: lerp(from.Opacity, f.Style.Opacity, t),
		OffsetY: lerp(from.OffsetY, f.Style.OffsetY, t),
		BlurPx:  lerp(from.BlurPx, f.Style.BlurPx, t),
		Scale:   lerp(from.Scale, f.Style.Scale, t),
	}
}

// Transition renders the CSS transition a client applies to play the frame.
func (f Frame) Transition() string {
	return fmt.Sprintf("transition:opacity %dms,transform %dms,filter %dms;transition-delay:%dms;",
		f.Duration.Milliseconds(), f.Duration.Milliseconds(), f.Duration.Milliseconds(), f.Start.Milliseconds())
}
