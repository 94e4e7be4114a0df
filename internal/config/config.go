package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/drawpad/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
}

// Config holds the application configuration. Zero values mean "not set" and
// leave the built-in default in place.
type Config struct {
	Theme   string
	SaveDir string

	// Initial window size in logical pixels and display density.
	Width   float64
	Height  float64
	Density float64

	// Color is any form accepted by action.ParseColor.
	Color   string
	Size    int
	History int
	// Format is the default export format, png or pdf.
	Format string

	Notify Notify
	// Keys maps command names to shortcuts, for example undo = ctrl+z.
	Keys   map[string]string
	Themes map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Default to empty to allow fallback to Env/Default
		Keys:   make(map[string]string),
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := []struct {
		key, value string
	}{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"width", formatFloat(c.Width)},
		{"height", formatFloat(c.Height)},
		{"density", formatFloat(c.Density)},
		{"color", c.Color},
		{"size", formatInt(c.Size)},
		{"history", formatInt(c.History)},
		{"format", c.Format},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	if len(c.Keys) > 0 {
		sb.WriteString("[keys]\n")
		for _, name := range sortedKeys(c.Keys) {
			fmt.Fprintf(&sb, "%s = %s\n", name, c.Keys[name])
		}
		sb.WriteString("\n")
	}

	for _, name := range sortedKeys(c.Themes) {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Write(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
