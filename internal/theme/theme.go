// Package theme describes the window colors and loads them from theme files.
package theme

import (
	"fmt"
	"image/color"
	"io"
	"reflect"
)

// Theme defines the colors used by the drawing window.
type Theme struct {
	Name string

	Background color.RGBA // behind the surface when the window is larger
	Foreground color.RGBA

	StatusBackground color.RGBA
	StatusText       color.RGBA

	// Shown through transparent and erased pixels.
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	SwatchBorder color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		Background:       color.RGBA{220, 220, 220, 255},
		Foreground:       color.RGBA{0, 0, 0, 255},
		StatusBackground: color.RGBA{200, 200, 200, 255},
		StatusText:       color.RGBA{0, 0, 0, 255},
		CheckerLight:     color.RGBA{255, 255, 255, 255},
		CheckerDark:      color.RGBA{230, 230, 230, 255},
		SwatchBorder:     color.RGBA{0, 0, 0, 255},
	}
}

var rgbaType = reflect.TypeOf(color.RGBA{})

// Fields returns the names of the color fields in declaration order.
func Fields() []string {
	typ := reflect.TypeOf(Theme{})
	var out []string
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type == rgbaType {
			out = append(out, typ.Field(i).Name)
		}
	}
	return out
}

// Write emits t in the "Key: #RRGGBB" form read by Parse.
func (t *Theme) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Name: %s\n", t.Name); err != nil {
		return err
	}
	val := reflect.ValueOf(t).Elem()
	for _, name := range Fields() {
		c := val.FieldByName(name).Interface().(color.RGBA)
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, FormatColor(c)); err != nil {
			return err
		}
	}
	return nil
}
