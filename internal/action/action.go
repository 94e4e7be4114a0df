// Package action defines the discrete input intents consumed by the drawing
// core and their one-line textual form.
//
//	start 10 20
//	move 15 25
//	end
//	color #ff0000
//	width 5
//	tool eraser
//	resize 800 600 2
//	export drawing.png
package action

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/example/drawpad/internal/stroke"
)

// ErrUnknownKind reports an intent name that is not recognised.
var ErrUnknownKind = errors.New("unknown action")

// Kind identifies an intent.
type Kind int

const (
	Start Kind = iota
	Move
	End
	SetColor
	SetWidth
	SelectTool
	Undo
	Redo
	Clear
	Export
	Copy
	Resize
)

var kindNames = [...]string{
	Start:      "start",
	Move:       "move",
	End:        "end",
	SetColor:   "color",
	SetWidth:   "width",
	SelectTool: "tool",
	Undo:       "undo",
	Redo:       "redo",
	Clear:      "clear",
	Export:     "export",
	Copy:       "copy",
	Resize:     "resize",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("action(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every intent in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind maps an intent name to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKind, name)
}

// Action is a single intent together with its arguments. Only the fields
// relevant to Kind are meaningful.
type Action struct {
	Kind Kind
	// X and Y are logical pointer coordinates for Start and Move.
	X, Y  float64
	Color color.RGBA
	Width int
	Tool  stroke.Tool
	// W, H and Density describe the display for Resize.
	W, H, Density float64
	// Path optionally names the Export destination.
	Path string
}

// Parse reads one intent from its textual form.
func Parse(line string) (Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	kind, err := ParseKind(fields[0])
	if err != nil {
		return Action{}, err
	}
	a := Action{Kind: kind}
	args := fields[1:]
	switch kind {
	case Start, Move:
		v, err := floats(kind, args, 2, 2)
		if err != nil {
			return Action{}, err
		}
		a.X, a.Y = v[0], v[1]
	case SetColor:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("%s requires a color", kind)
		}
		if a.Color, err = ParseColor(args[0]); err != nil {
			return Action{}, err
		}
	case SetWidth:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("%s requires a size", kind)
		}
		if a.Width, err = strconv.Atoi(args[0]); err != nil {
			return Action{}, fmt.Errorf("invalid width %q", args[0])
		}
	case SelectTool:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("%s requires pen or eraser", kind)
		}
		if a.Tool, err = stroke.ParseTool(args[0]); err != nil {
			return Action{}, err
		}
	case Resize:
		v, err := floats(kind, args, 2, 3)
		if err != nil {
			return Action{}, err
		}
		a.W, a.H, a.Density = v[0], v[1], 1
		if len(v) == 3 {
			a.Density = v[2]
		}
	case Export:
		if len(args) > 1 {
			return Action{}, fmt.Errorf("%s takes at most one path", kind)
		}
		if len(args) == 1 {
			a.Path = args[0]
		}
	default:
		if len(args) != 0 {
			return Action{}, fmt.Errorf("%s takes no arguments", kind)
		}
	}
	return a, nil
}

func floats(kind Kind, args []string, lo, hi int) ([]float64, error) {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return nil, fmt.Errorf("%s requires %d values", kind, lo)
		}
		return nil, fmt.Errorf("%s requires %d to %d values", kind, lo, hi)
	}
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q for %s", s, kind)
		}
		out[i] = v
	}
	return out, nil
}

// String writes a in the form accepted by Parse.
func (a Action) String() string {
	switch a.Kind {
	case Start, Move:
		return fmt.Sprintf("%s %s %s", a.Kind, num(a.X), num(a.Y))
	case SetColor:
		return fmt.Sprintf("%s %s", a.Kind, FormatColor(a.Color))
	case SetWidth:
		return fmt.Sprintf("%s %d", a.Kind, a.Width)
	case SelectTool:
		return fmt.Sprintf("%s %s", a.Kind, a.Tool)
	case Resize:
		return fmt.Sprintf("%s %s %s %s", a.Kind, num(a.W), num(a.H), num(a.Density))
	case Export:
		if a.Path != "" {
			return fmt.Sprintf("%s %s", a.Kind, a.Path)
		}
	}
	return a.Kind.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ReadAll parses one intent per line from r. Blank lines and lines starting
// with '#' are skipped. Errors carry the line number.
func ReadAll(r io.Reader) ([]Action, error) {
	var out []Action
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		a, err := Parse(line)
		if err != nil {
			return out, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, a)
	}
	return out, sc.Err()
}
