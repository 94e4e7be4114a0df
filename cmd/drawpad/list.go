package main

import (
	"flag"
	"fmt"

	"github.com/example/drawpad/internal/keymap"
	"github.com/example/drawpad/internal/stroke"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	palette := stroke.PaletteColors()
	if len(palette) == 0 {
		fmt.Fprintln(c.stdout, "no colors available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available palette colors (* marks the default color):")
	defaultIdx := stroke.DefaultColorIndex()
	for idx, entry := range palette {
		marker := " "
		if idx == defaultIdx {
			marker = "*"
		}
		name := entry.Name
		hex := fmt.Sprintf("#%02X%02X%02X", entry.Color.R, entry.Color.G, entry.Color.B)
		if name == "" {
			name = hex
		}
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", entry.Color.R, entry.Color.G, entry.Color.B)
		fmt.Fprintf(c.stdout, "%s %2d: %-12s %s %s\n", marker, idx, name, hex, block)
	}
	return nil
}

func (c *colorsCmd) Program() string {
	return subProgram(c.root, "colors")
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type widthsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseWidthsCmd(args []string, r *root) (*widthsCmd, error) {
	fs := flag.NewFlagSet("widths", flag.ExitOnError)
	cmd := &widthsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *widthsCmd) Run() error {
	widths := stroke.WidthOptions()
	if len(widths) == 0 {
		fmt.Fprintln(c.stdout, "no widths available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available stroke widths (* marks the default width):")
	defaultIdx := stroke.DefaultWidthIndex()
	for idx, width := range widths {
		marker := " "
		if idx == defaultIdx {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %3dpx\n", marker, width)
	}
	return nil
}

func (c *widthsCmd) Program() string {
	return subProgram(c.root, "widths")
}

func (c *widthsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

// keysCmd lists the keyboard shortcuts after config overrides.
type keysCmd struct {
	*root
	fs *flag.FlagSet
}

func parseKeysCmd(args []string, r *root) (*keysCmd, error) {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	cmd := &keysCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *keysCmd) Run() error {
	km := keymap.Default()
	if c.config != nil {
		if err := km.Apply(c.config.Keys); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.stdout, "keyboard shortcuts:")
	for _, b := range km.Bindings() {
		fmt.Fprintf(c.stdout, "  %-8s %s\n", b.Command, b.Shortcut)
	}
	return nil
}

func (c *keysCmd) Program() string {
	return subProgram(c.root, "keys")
}

func (c *keysCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
