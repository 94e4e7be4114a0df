package stroke

import (
	"image"
	"image/draw"
	"math"

	"github.com/example/drawpad/internal/surface"
	"golang.org/x/image/vector"
)

// Renderer turns pointer positions into round-capped line segments on a
// surface. The style is locked when a stroke begins, so changing tools while
// drawing only affects the next stroke.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	surface *surface.Surface

	style    Style
	drawing  bool
	lastX    float64
	lastY    float64
	segments int

	raster  *vector.Rasterizer
	maskBuf []uint8
}

// NewRenderer returns a renderer drawing onto s.
func NewRenderer(s *surface.Surface) *Renderer {
	return &Renderer{surface: s}
}

// Drawing reports whether a stroke is in progress.
func (r *Renderer) Drawing() bool { return r.drawing }

// Style returns the style of the stroke in progress, or of the last stroke.
func (r *Renderer) Style() Style { return r.style }

// Begin starts a stroke at the logical position (x, y). A stroke already in
// progress is abandoned without further drawing.
func (r *Renderer) Begin(x, y float64, style Style) {
	r.style = style.Normalized()
	r.drawing = true
	r.lastX, r.lastY = x, y
	r.segments = 0
}

// Continue draws a segment from the last position to (x, y). It does nothing
// unless a stroke is in progress.
func (r *Renderer) Continue(x, y float64) {
	if !r.drawing {
		return
	}
	r.segment(r.lastX, r.lastY, x, y)
	r.lastX, r.lastY = x, y
	r.segments++
}

// End finishes the stroke in progress. A stroke without any segments leaves a
// round dot at its start. End reports whether a stroke was finished.
func (r *Renderer) End() bool {
	if !r.drawing {
		return false
	}
	if r.segments == 0 {
		r.segment(r.lastX, r.lastY, r.lastX, r.lastY)
	}
	r.drawing = false
	return true
}

func (r *Renderer) segment(x0, y0, x1, y1 float64) {
	dst := r.surface.RGBA()
	d := r.surface.Density()
	radius := float64(r.style.Width) * d / 2
	x0, y0, x1, y1 = x0*d, y0*d, x1*d, y1*d

	box := image.Rect(
		int(math.Floor(math.Min(x0, x1)-radius))-1,
		int(math.Floor(math.Min(y0, y1)-radius))-1,
		int(math.Ceil(math.Max(x0, x1)+radius))+1,
		int(math.Ceil(math.Max(y0, y1)+radius))+1,
	).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}

	mask := r.coverage(box, x0, y0, x1, y1, radius)
	switch r.style.Tool {
	case Eraser:
		punch(dst, box, mask)
	default:
		draw.DrawMask(dst, box, image.NewUniform(r.style.Color), image.Point{}, mask, image.Point{}, draw.Over)
	}
}

// coverage rasterizes the capsule around (x0, y0)-(x1, y1) into an alpha mask
// whose origin corresponds to box.Min.
func (r *Renderer) coverage(box image.Rectangle, x0, y0, x1, y1, radius float64) *image.Alpha {
	w, h := box.Dx(), box.Dy()
	if r.raster == nil {
		r.raster = vector.NewRasterizer(w, h)
	} else {
		r.raster.Reset(w, h)
	}
	r.raster.DrawOp = draw.Src

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	addCapsule(r.raster, x0-ox, y0-oy, x1-ox, y1-oy, radius)

	if cap(r.maskBuf) < w*h {
		r.maskBuf = make([]uint8, w*h)
	}
	mask := &image.Alpha{Pix: r.maskBuf[:w*h], Stride: w, Rect: image.Rect(0, 0, w, h)}
	r.raster.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// punch scales every pixel in box by the inverse of the mask coverage, the
// destination-out operator for an opaque source.
func punch(dst *image.RGBA, box image.Rectangle, mask *image.Alpha) {
	for y := 0; y < box.Dy(); y++ {
		mi := y * mask.Stride
		di := dst.PixOffset(box.Min.X, box.Min.Y+y)
		for x := 0; x < box.Dx(); x, di = x+1, di+4 {
			m := uint32(mask.Pix[mi+x])
			if m == 0 {
				continue
			}
			keep := 255 - m
			px := dst.Pix[di : di+4 : di+4]
			for c := range px {
				px[c] = uint8((uint32(px[c])*keep + 127) / 255)
			}
		}
	}
}
