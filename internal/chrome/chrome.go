// Package chrome derives the sticky navigation bar's styling from the
// page's scroll offset.
package chrome

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Zachkp/portfolio/internal/theme"
)

const (
	// Range is the scroll distance over which the bar fades in.
	Range = 100.0
	// MaxBlurPx is the backdrop blur once fully faded in.
	MaxBlurPx = 12.0
	// ScrolledThreshold toggles the drop shadow. There is no hysteresis band.
	ScrolledThreshold = 50.0
)

// Style is the continuous part of the bar's look.
type Style struct {
	BackgroundAlpha float64 `json:"background_alpha"`
	BlurPx          float64 `json:"blur_px"`
}

// StyleAt interpolates linearly over [0, Range] and clamps outside it.
func StyleAt(offset float64) Style {
	p := progress(offset)
	return Style{BackgroundAlpha: p, BlurPx: p * MaxBlurPx}
}

func progress(offset float64) float64 {
	if math.IsNaN(offset) {
		return 0
	}
	return math.Max(0, math.Min(1, offset/Range))
}

// IsScrolled is the discrete shadow toggle.
func IsScrolled(offset float64) bool {
	return offset > ScrolledThreshold
}

// Background renders the bar's background colour for a theme. Full alpha
// maps to a slightly translucent bar so content stays faintly visible.
func (s Style) Background(t theme.Theme) string {
	if t == theme.Dark {
		return fmt.Sprintf("rgba(17, 24, 39, %s)", alpha(s.BackgroundAlpha*0.92))
	}
	return fmt.Sprintf("rgba(255, 255, 255, %s)", alpha(s.BackgroundAlpha*0.95))
}

// Backdrop renders the backdrop-filter value.
func (s Style) Backdrop() string {
	return "blur(" + strconv.FormatFloat(s.BlurPx, 'f', -1, 64) + "px)"
}

func alpha(a float64) string {
	return strconv.FormatFloat(math.Round(a*1000)/1000, 'f', -1, 64)
}
