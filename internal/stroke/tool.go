// Package stroke rasterizes freehand strokes onto a surface.
package stroke

import (
	"fmt"
	"image/color"
	"strings"
)

// Tool selects how a stroke is composited.
type Tool int

const (
	// Pen paints the stroke color over existing content.
	Pen Tool = iota
	// Eraser removes existing content along the stroke regardless of color.
	Eraser
)

func (t Tool) String() string {
	switch t {
	case Pen:
		return "pen"
	case Eraser:
		return "eraser"
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a tool name to a Tool.
func ParseTool(name string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pen", "p":
		return Pen, nil
	case "eraser", "e":
		return Eraser, nil
	}
	return Pen, fmt.Errorf("unknown tool %q", name)
}

// MinWidth is the thinnest stroke in logical pixels.
const MinWidth = 1

// Style is the tool and appearance applied to a stroke.
type Style struct {
	Tool  Tool
	Color color.RGBA
	Width int
}

// Normalized returns s with its width clamped to MinWidth.
func (s Style) Normalized() Style {
	if s.Width < MinWidth {
		s.Width = MinWidth
	}
	return s
}
