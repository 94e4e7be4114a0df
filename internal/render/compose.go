// Package render holds the compositing helpers shared by the window and the
// exporters.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Flatten composites img over an opaque background and returns the result
// with a zero origin.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b.Sub(b.Min))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Checkerboard fills rect of dst with squares of the given size alternating
// between light and dark. Squares are aligned to rect.Min.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	if size <= 0 {
		size = 8
	}
	rect = rect.Intersect(dst.Bounds())
	lu := image.NewUniform(light)
	du := image.NewUniform(dark)
	for y := rect.Min.Y; y < rect.Max.Y; y += size {
		for x := rect.Min.X; x < rect.Max.X; x += size {
			cell := image.Rect(x, y, x+size, y+size).Intersect(rect)
			src := lu
			if ((x-rect.Min.X)/size+(y-rect.Min.Y)/size)%2 != 0 {
				src = du
			}
			draw.Draw(dst, cell, src, image.Point{}, draw.Src)
		}
	}
}

// Backdrop caches a checkerboard so repeated frames of the same size do not
// redraw it.
type Backdrop struct {
	Size  int
	Light color.Color
	Dark  color.Color

	cache *image.RGBA
}

// Draw paints src over the checkerboard into rect of dst, so transparent
// regions of src remain visible as a pattern.
func (b *Backdrop) Draw(dst *image.RGBA, rect image.Rectangle, src image.Image) {
	if b.cache == nil || b.cache.Bounds().Size() != rect.Size() {
		b.cache = image.NewRGBA(image.Rectangle{Max: rect.Size()})
		Checkerboard(b.cache, b.cache.Bounds(), b.Size, b.Light, b.Dark)
	}
	draw.Draw(dst, rect, b.cache, image.Point{}, draw.Src)
	if src != nil {
		draw.Draw(dst, rect, src, src.Bounds().Min, draw.Over)
	}
}

// Invalidate drops the cached pattern, for instance after a theme change.
func (b *Backdrop) Invalidate() { b.cache = nil }
