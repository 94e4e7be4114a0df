package main

import (
	"flag"
	"fmt"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/appstate"
	"github.com/example/drawpad/internal/export"
	"github.com/example/drawpad/internal/stroke"
)

// canvasFlags are the session settings shared by open, replay and
// interactive. Unset values keep the configured defaults.
type canvasFlags struct {
	width, height float64
	density       float64
	color         string
	size          int
	tool          string
	history       int
	dir           string
	format        string
}

func (c *canvasFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&c.width, "width", 0, "surface width in logical pixels")
	fs.Float64Var(&c.height, "height", 0, "surface height in logical pixels")
	fs.Float64Var(&c.density, "density", 0, "physical pixels per logical pixel")
	fs.StringVar(&c.color, "color", "", "initial stroke color (name or #RRGGBB[AA])")
	fs.IntVar(&c.size, "size", 0, "initial stroke width in logical pixels")
	fs.StringVar(&c.tool, "tool", "", "initial tool (pen or eraser)")
	fs.IntVar(&c.history, "history", 0, "number of undo steps kept")
	fs.StringVar(&c.dir, "dir", "", "directory for exported drawings")
	fs.StringVar(&c.format, "format", "", "export format (png or pdf)")
}

func (c *canvasFlags) options(r *root) ([]appstate.Option, error) {
	var opts []appstate.Option
	if c.width > 0 || c.height > 0 {
		if c.width <= 0 || c.height <= 0 {
			return nil, fmt.Errorf("-width and -height must be given together")
		}
		opts = append(opts, appstate.WithSize(c.width, c.height))
	}
	if c.density > 0 {
		opts = append(opts, appstate.WithDensity(c.density))
	}
	if c.color != "" {
		col, err := action.ParseColor(c.color)
		if err != nil {
			return nil, err
		}
		opts = append(opts, appstate.WithColor(col))
	}
	if c.size > 0 {
		opts = append(opts, appstate.WithWidth(c.size))
	}
	if c.tool != "" {
		t, err := stroke.ParseTool(c.tool)
		if err != nil {
			return nil, err
		}
		opts = append(opts, appstate.WithTool(t))
	}
	if c.history > 0 {
		opts = append(opts, appstate.WithHistoryCapacity(c.history))
	}
	if c.dir != "" || c.format != "" {
		e := &export.Exporter{}
		if r != nil && r.config != nil {
			e.Dir = r.config.SaveDir
			e.Format, _ = export.ParseFormat(r.config.Format)
		}
		if c.dir != "" {
			e.Dir = c.dir
		}
		if c.format != "" {
			f, err := export.ParseFormat(c.format)
			if err != nil {
				return nil, err
			}
			e.Format = f
		}
		opts = append(opts, appstate.WithExporter(e))
	}
	return opts, nil
}
