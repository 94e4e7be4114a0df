// Package surface owns the drawing buffer. The buffer is addressed in logical
// (display) coordinates while its pixels are stored at logical size times the
// display density.
package surface

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	// maxDimension bounds the physical buffer along either axis.
	maxDimension = 1 << 14
	// maxPixels bounds the physical buffer area (256 MiB of RGBA).
	maxPixels = 1 << 26
	// maxDensity bounds the physical pixels per logical pixel.
	maxDensity = 16
)

// ErrEmpty reports an operation on a surface without any pixels.
var ErrEmpty = errors.New("surface has no pixels")

// Size is an extent in logical pixels.
type Size struct {
	Width  float64
	Height float64
}

// Physical returns the pixel dimensions of s at the given density.
func (s Size) Physical(density float64) image.Point {
	return image.Pt(physicalDim(s.Width*density), physicalDim(s.Height*density))
}

func physicalDim(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= maxDimension {
		return maxDimension
	}
	return int(math.Round(v))
}

// fit shrinks size until its physical buffer at density stays within
// maxDimension per axis and maxPixels overall.
func fit(size Size, density float64) Size {
	limit := maxDimension / density
	size.Width = min(size.Width, limit)
	size.Height = min(size.Height, limit)
	if area := size.Width * size.Height * density * density; area > maxPixels {
		f := math.Sqrt(maxPixels / area)
		size.Width *= f
		size.Height *= f
	}
	return size
}

// Surface is a resizable RGBA raster. It is not safe for concurrent use.
type Surface struct {
	size    Size
	density float64
	img     *image.RGBA
}

// New returns a transparent surface of the given logical size and density.
func New(width, height, density float64) *Surface {
	s := &Surface{density: 1, img: image.NewRGBA(image.Rectangle{})}
	s.Resize(width, height, density)
	return s
}

// Size returns the logical size.
func (s *Surface) Size() Size { return s.size }

// Density returns the number of physical pixels per logical pixel.
func (s *Surface) Density() float64 { return s.density }

// Bounds returns the physical pixel bounds. The origin is always (0, 0).
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Empty reports whether the surface has no pixels.
func (s *Surface) Empty() bool { return s.img.Bounds().Empty() }

// RGBA exposes the physical buffer for in-place drawing.
func (s *Surface) RGBA() *image.RGBA { return s.img }

// Image returns the physical buffer as a read-only image.
func (s *Surface) Image() image.Image { return s.img }

// Clone returns a copy of the physical buffer.
func (s *Surface) Clone() *image.RGBA { return cloneRGBA(s.img) }

// Resize changes the logical size and density. Existing content keeps its
// logical position: it is rescaled when the density changes and clipped when
// the surface shrinks. Only a density change rescales; a smaller logical size
// drops what falls outside it rather than squeezing the drawing to fit.
// Negative or NaN sizes are treated as zero, non-positive densities as one.
// Densities above 16 are capped and oversized requests shrink to fit the
// buffer limits, keeping the content.
func (s *Surface) Resize(width, height, density float64) {
	density = clampDensity(density)
	size := fit(Size{Width: clampLogical(width), Height: clampLogical(height)}, density)
	if size == s.size && density == s.density && s.img != nil {
		return
	}
	dim := size.Physical(density)
	next := image.NewRGBA(image.Rect(0, 0, dim.X, dim.Y))
	if s.img != nil && !s.img.Bounds().Empty() {
		place(next, s.img, density/s.density)
	}
	s.img = next
	s.size = size
	s.density = density
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Readback captures the current content. It fails with ErrEmpty when the
// surface has no pixels.
func (s *Surface) Readback() (*Snapshot, error) {
	if s.Empty() {
		return nil, ErrEmpty
	}
	return &Snapshot{img: cloneRGBA(s.img), size: s.size, density: s.density}, nil
}

// Write replaces the content with snap, anchored at the logical origin.
// Snapshots taken at the current density are copied pixel for pixel; others
// are rescaled.
func (s *Surface) Write(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.Clear()
	place(s.img, snap.img, s.density/snap.density)
}

// EncodePNG writes the physical buffer as a PNG image.
func (s *Surface) EncodePNG(w io.Writer) error {
	if s.Empty() {
		return ErrEmpty
	}
	return png.Encode(w, s.img)
}

// ExportPNG returns the physical buffer encoded as PNG.
func (s *Surface) ExportPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// place draws src into dst with its top-left corner at the origin, scaled by
// scale and clipped to dst.
func place(dst, src *image.RGBA, scale float64) {
	sb := src.Bounds()
	if sb.Empty() || dst.Bounds().Empty() {
		return
	}
	if scale == 1 {
		draw.Draw(dst, sb.Sub(sb.Min), src, sb.Min, draw.Src)
		return
	}
	w := physicalDim(float64(sb.Dx()) * scale)
	h := physicalDim(float64(sb.Dy()) * scale)
	if w == 0 || h == 0 {
		return
	}
	xdraw.BiLinear.Scale(dst, image.Rect(0, 0, w, h), src, sb, draw.Src, nil)
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

func clampLogical(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampDensity(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 1
	}
	return min(d, maxDensity)
}
