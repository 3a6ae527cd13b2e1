package sunburst

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RadiusFunc maps a (possibly fractional) depth to a ring radius with double
// logarithmic compression so deep trees stay on the canvas.
type RadiusFunc struct {
	Scale   float64
	Divisor float64
}

// DefaultRadius returns the radius function used by the viewer.
func DefaultRadius() RadiusFunc {
	return RadiusFunc{Scale: 400, Divisor: 8}
}

// At returns the outer radius of ring depth-1, which is also the inner
// radius of ring depth. At(0) is 0.
func (r RadiusFunc) At(depth float64) float64 {
	if r.Divisor <= 0 || depth <= 0 {
		return 0
	}
	return r.Scale * math.Log(1+math.Log(1+depth/r.Divisor))
}

// CanvasSize is the square side needed to show maxDepth rings.
func (r RadiusFunc) CanvasSize(maxDepth int) int {
	return 2 * int(math.Ceil(r.At(float64(maxDepth))))
}

// ColorFunc maps an angle in radians to a CSS color string.
type ColorFunc func(angle float64) string

// HueColor uses the angle as the hue. Saturation peaks around angle 0 and
// lightness around 4π/3 so neighbouring wedges stay distinguishable.
func HueColor(angle float64) string {
	s := 0.6 + 0.4*math.Max(0, math.Cos(angle))
	l := 0.5 + 0.2*math.Max(0, math.Cos(angle+math.Pi*2/3))
	deg := math.Mod(angle*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return colorful.Hsl(deg, s, l).Clamped().Hex()
}
