package action

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/example/drawpad/internal/stroke"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Action
	}{
		{"start 10 20", Action{Kind: Start, X: 10, Y: 20}},
		{"move 1.5 -2", Action{Kind: Move, X: 1.5, Y: -2}},
		{"end", Action{Kind: End}},
		{"color red", Action{Kind: SetColor, Color: color.RGBA{R: 255, A: 255}}},
		{"color #00ff00", Action{Kind: SetColor, Color: color.RGBA{G: 255, A: 255}}},
		{"width 7", Action{Kind: SetWidth, Width: 7}},
		{"tool eraser", Action{Kind: SelectTool, Tool: stroke.Eraser}},
		{"UNDO", Action{Kind: Undo}},
		{"redo", Action{Kind: Redo}},
		{"clear", Action{Kind: Clear}},
		{"export", Action{Kind: Export}},
		{"export out.pdf", Action{Kind: Export, Path: "out.pdf"}},
		{"copy", Action{Kind: Copy}},
		{"resize 800 600", Action{Kind: Resize, W: 800, H: 600, Density: 1}},
		{"resize 800 600 2", Action{Kind: Resize, W: 800, H: 600, Density: 2}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"start 10",
		"start x 10",
		"color",
		"color nosuchcolor",
		"width wide",
		"tool brush",
		"undo now",
		"resize 1",
		"export a b",
	}
	for _, in := range cases {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
	if _, err := Parse("paint 1 2"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, in := range []string{
		"start 10 20",
		"move 3.25 4",
		"color #ff8000",
		"color #ff000080",
		"width 12",
		"tool pen",
		"resize 640 480 1.5",
		"export x.png",
		"clear",
	} {
		a, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := a.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

func TestParseColorPremultiplies(t *testing.T) {
	c, err := ParseColor("#ff000080")
	if err != nil {
		t.Fatal(err)
	}
	if c.A != 0x80 || c.R != 0x80 {
		t.Fatalf("got %+v, want premultiplied half red", c)
	}
}

func TestParseColorPaletteName(t *testing.T) {
	c, err := ParseColor("Maroon")
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.RGBA{128, 0, 0, 255}) {
		t.Fatalf("got %+v", c)
	}
}

func TestReadAll(t *testing.T) {
	script := `# a short stroke
resize 100 100
start 1 1

move 5 5
end
`
	got, err := ReadAll(strings.NewReader(script))
	if err != nil {
		t.Fatal(err)
	}
	kinds := []Kind{Resize, Start, Move, End}
	if len(got) != len(kinds) {
		t.Fatalf("got %d actions, want %d", len(got), len(kinds))
	}
	for i, k := range kinds {
		if got[i].Kind != k {
			t.Errorf("action %d = %v, want %v", i, got[i].Kind, k)
		}
	}
}

func TestReadAllReportsLine(t *testing.T) {
	_, err := ReadAll(strings.NewReader("start 1 1\n\nbogus\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected error naming line 3, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	for _, k := range Kinds() {
		back, err := ParseKind(k.String())
		if err != nil || back != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), back, err)
		}
	}
}
