package surface

import (
	"bytes"
	"image"
)

// Snapshot is an immutable copy of a surface's pixels together with the
// logical size and density they were captured at.
type Snapshot struct {
	img     *image.RGBA
	size    Size
	density float64
}

// Size returns the logical size at capture time.
func (s *Snapshot) Size() Size { return s.size }

// Density returns the density at capture time.
func (s *Snapshot) Density() float64 { return s.density }

// Image returns the captured pixels. Callers must not modify the result.
func (s *Snapshot) Image() image.Image { return s.img }

// Equal reports whether both snapshots hold identical pixels.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.img.Bounds() == o.img.Bounds() && bytes.Equal(s.img.Pix, o.img.Pix)
}
