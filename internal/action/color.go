package action

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/example/drawpad/internal/stroke"
	"golang.org/x/image/colornames"
)

// ParseColor accepts a CSS color name, a palette name, #RRGGBB or #RRGGBBAA.
// The result is alpha-premultiplied.
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	for _, entry := range stroke.PaletteColors() {
		if strings.EqualFold(entry.Name, spec) {
			return entry.Color, nil
		}
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		v, err := strconv.ParseUint(spec[1:], 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		n := color.NRGBA{A: 255}
		if len(spec) == 9 {
			n.A = uint8(v)
			v >>= 8
		}
		n.R, n.G, n.B = uint8(v>>16), uint8(v>>8), uint8(v)
		return color.RGBAModel.Convert(n).(color.RGBA), nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

// FormatColor writes c as #rrggbb, or #rrggbbaa when it is translucent.
func FormatColor(c color.RGBA) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
