package stroke

import (
	"math"

	"golang.org/x/image/vector"
)

// arcSteps picks the number of chords used for a half circle of radius r.
func arcSteps(r float64) int {
	n := int(math.Ceil(math.Pi * r / 2))
	if n < 4 {
		return 4
	}
	if n > 64 {
		return 64
	}
	return n
}

// addCapsule adds the outline of a segment of the given half width with round
// caps. A zero-length segment yields a full circle.
func addCapsule(z *vector.Rasterizer, x0, y0, x1, y1, radius float64) {
	steps := arcSteps(radius)
	dx, dy := x1-x0, y1-y0
	if math.Hypot(dx, dy) < 1e-9 {
		arc(z, x0, y0, radius, 0, 2*math.Pi, 2*steps, true)
		z.ClosePath()
		return
	}
	a := math.Atan2(dy, dx)
	arc(z, x1, y1, radius, a-math.Pi/2, a+math.Pi/2, steps, true)
	arc(z, x0, y0, radius, a+math.Pi/2, a+3*math.Pi/2, steps, false)
	z.ClosePath()
}

func arc(z *vector.Rasterizer, cx, cy, r, from, to float64, steps int, first bool) {
	for i := 0; i <= steps; i++ {
		t := from + (to-from)*float64(i)/float64(steps)
		px := float32(cx + r*math.Cos(t))
		py := float32(cy + r*math.Sin(t))
		if first && i == 0 {
			z.MoveTo(px, py)
			continue
		}
		z.LineTo(px, py)
	}
}
