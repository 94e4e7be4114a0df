package appstate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/export"
	"github.com/example/drawpad/internal/history"
	"github.com/example/drawpad/internal/notify"
	"github.com/example/drawpad/internal/platform"
	"github.com/example/drawpad/internal/stroke"
	"github.com/example/drawpad/internal/surface"
)

var red = color.RGBA{R: 255, A: 255}

func newState(t *testing.T, opts ...Option) *AppState {
	t.Helper()
	opts = append([]Option{WithSize(100, 60), WithClipboard(func([]byte) error { return nil })}, opts...)
	return New(opts...)
}

func run(t *testing.T, a *AppState, script string) {
	t.Helper()
	acts, err := action.ReadAll(bytes.NewBufferString(script))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.DispatchAll(acts); err != nil {
		t.Fatal(err)
	}
}

func at(a *AppState, x, y int) color.RGBA { return a.Surface().RGBA().RGBAAt(x, y) }

func TestNewDefaults(t *testing.T) {
	a := New(WithClipboard(func([]byte) error { return nil }))
	if a.Surface().Bounds() != image.Rect(0, 0, 800, 600) {
		t.Fatalf("bounds = %v", a.Surface().Bounds())
	}
	if a.Style() != stroke.DefaultStyle() {
		t.Fatalf("style = %+v", a.Style())
	}
	if !a.History().HasBaseline() {
		t.Fatal("non-empty surface started without a baseline")
	}
	if a.History().Capacity() != history.DefaultCapacity {
		t.Fatalf("capacity = %d", a.History().Capacity())
	}
	if a.SessionID() == "" {
		t.Fatal("missing session id")
	}
}

func TestPenThenEraser(t *testing.T) {
	a := newState(t)
	run(t, a, `color red
width 10
start 10 30
move 90 30
end
tool eraser
width 20
start 50 10
move 50 50
end
`)
	if got := at(a, 20, 30); got != red {
		t.Fatalf("pen pixel = %+v", got)
	}
	if got := at(a, 50, 30); got.A != 0 {
		t.Fatalf("erased pixel = %+v, want transparent", got)
	}
	if st := a.History().State(); st.Undo != 2 {
		t.Fatalf("undo depth = %d, want 2", st.Undo)
	}
}

func TestUndoRedoScenario(t *testing.T) {
	a := newState(t)
	run(t, a, `color red
start 10 10
move 40 10
end
color blue
start 10 40
move 40 40
end
undo
`)
	if got := at(a, 20, 10); got != red {
		t.Fatalf("stroke A missing after undo: %+v", got)
	}
	if got := at(a, 20, 40); got.A != 0 {
		t.Fatalf("stroke B survived undo: %+v", got)
	}
	res, err := a.Dispatch(action.Action{Kind: action.Redo})
	if err != nil || !res.Changed {
		t.Fatalf("redo = %+v, %v", res, err)
	}
	if got := at(a, 20, 40); got.B != 255 {
		t.Fatalf("stroke B not restored: %+v", got)
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	a := newState(t)
	res, err := a.Dispatch(action.Action{Kind: action.Undo})
	if err != nil || res.Changed {
		t.Fatalf("undo on empty history = %+v, %v", res, err)
	}
}

func TestClearIsUndoable(t *testing.T) {
	a := newState(t)
	run(t, a, "color red\nstart 10 10\nmove 40 10\nend\nclear\n")
	if got := at(a, 20, 10); got.A != 0 {
		t.Fatalf("clear left %+v", got)
	}
	run(t, a, "undo\n")
	if got := at(a, 20, 10); got != red {
		t.Fatalf("undo of clear = %+v", got)
	}
}

func TestUndoEndsActiveStroke(t *testing.T) {
	a := newState(t)
	run(t, a, "color red\nstart 10 10\nmove 40 10\nundo\n")
	if a.Drawing() {
		t.Fatal("stroke still active after undo")
	}
	if got := at(a, 20, 10); got.A != 0 {
		t.Fatalf("undo did not remove the stroke it ended: %+v", got)
	}
}

func TestStartEndsPreviousStroke(t *testing.T) {
	a := newState(t)
	run(t, a, "start 10 10\nmove 40 10\nstart 10 40\nmove 40 40\nend\n")
	if st := a.History().State(); st.Undo != 2 {
		t.Fatalf("undo depth = %d, want 2", st.Undo)
	}
}

func TestResizeKeepsContent(t *testing.T) {
	a := newState(t)
	run(t, a, "color red\nstart 10 10\nmove 40 10\nend\nresize 200 100\n")
	if a.Surface().Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("bounds = %v", a.Surface().Bounds())
	}
	if got := at(a, 20, 10); got != red {
		t.Fatalf("content lost on resize: %+v", got)
	}
}

func TestResizeFromEmptyTakesBaseline(t *testing.T) {
	a := newState(t, WithSize(0, 0))
	if a.History().HasBaseline() {
		t.Fatal("empty surface has a baseline")
	}
	run(t, a, "resize 50 50\nstart 10 10\nmove 40 10\nend\nundo\n")
	if got := at(a, 20, 10); got.A != 0 {
		t.Fatalf("first stroke not undoable: %+v", got)
	}
}

func TestStyleValidation(t *testing.T) {
	a := newState(t)
	if _, err := a.Dispatch(action.Action{Kind: action.SetWidth, Width: 0}); err != nil {
		t.Fatal(err)
	}
	if a.Style().Width != stroke.MinWidth {
		t.Fatalf("width = %d, want %d", a.Style().Width, stroke.MinWidth)
	}
	if _, err := a.Dispatch(action.Action{Kind: action.SelectTool, Tool: stroke.Tool(99)}); err != nil {
		t.Fatal(err)
	}
	if a.Style().Tool != stroke.Pen {
		t.Fatalf("invalid tool applied: %v", a.Style().Tool)
	}
}

func TestUnknownKind(t *testing.T) {
	a := newState(t)
	if _, err := a.Dispatch(action.Action{Kind: action.Kind(-1)}); !errors.Is(err, action.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	e := &export.Exporter{Dir: dir, Now: func() time.Time { return time.UnixMilli(5) }}
	n := notify.New(notify.DefaultPreferences())
	n.Enable(notify.EventExport, true)
	var bodies []string
	n.SetSender(func(_, body string, _ platform.Options) error {
		bodies = append(bodies, body)
		return nil
	})
	a := newState(t, WithExporter(e), WithNotifier(n))
	run(t, a, "color red\nstart 10 10\nmove 40 10\n")
	res, err := a.Dispatch(action.Action{Kind: action.Export})
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != filepath.Join(dir, "drawing-5.png") {
		t.Fatalf("path = %q", res.Path)
	}
	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, alpha := img.At(20, 10).RGBA(); alpha == 0 {
		t.Fatal("active stroke not included in export")
	}
	if len(bodies) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(bodies))
	}
}

func TestExportToPath(t *testing.T) {
	a := newState(t)
	path := filepath.Join(t.TempDir(), "out", "pic.pdf")
	res, err := a.Dispatch(action.Action{Kind: action.Export, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != path {
		t.Fatalf("path = %q", res.Path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestExportEmptySurface(t *testing.T) {
	a := newState(t, WithSize(0, 0), WithExporter(&export.Exporter{Dir: t.TempDir()}))
	if _, err := a.Dispatch(action.Action{Kind: action.Export}); !errors.Is(err, surface.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestCopy(t *testing.T) {
	var got []byte
	a := newState(t, WithClipboard(func(data []byte) error {
		got = data
		return nil
	}))
	if _, err := a.Dispatch(action.Action{Kind: action.Copy}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(got))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 100, 60) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestCopyFailure(t *testing.T) {
	boom := errors.New("no clipboard")
	a := newState(t, WithClipboard(func([]byte) error { return boom }))
	if _, err := a.Dispatch(action.Action{Kind: action.Copy}); !errors.Is(err, boom) {
		t.Fatalf("expected clipboard error, got %v", err)
	}
}

func TestHistoryListener(t *testing.T) {
	var states []history.State
	a := newState(t, WithHistoryListener(func(s history.State) { states = append(states, s) }))
	run(t, a, "start 10 10\nend\nundo\n")
	if len(states) == 0 {
		t.Fatal("listener never called")
	}
	if last := states[len(states)-1]; last != (history.State{Undo: 0, Redo: 1}) {
		t.Fatalf("last state = %+v", last)
	}
}

func TestDispatchAllStopsAtError(t *testing.T) {
	a := newState(t, WithClipboard(func([]byte) error { return errors.New("nope") }))
	acts := []action.Action{{Kind: action.Start, X: 1, Y: 1}, {Kind: action.Copy}, {Kind: action.Clear}}
	res, err := a.DispatchAll(acts)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(res) != 1 {
		t.Fatalf("got %d results, want 1", len(res))
	}
}

func TestCustomColorGetsSwatch(t *testing.T) {
	custom := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}
	a := newState(t)
	if _, err := a.Dispatch(action.Action{Kind: action.SetColor, Color: custom}); err != nil {
		t.Fatal(err)
	}
	idx := -1
	for i, pc := range stroke.PaletteColors() {
		if pc.Color == custom {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("custom color missing from the palette")
	}
	top := 100
	if got, ok := swatchAt(swatchRect(idx+1, top).Min, top); !ok || got != idx {
		t.Fatalf("swatchAt = %d, %v; want %d", got, ok, idx)
	}
	before := len(stroke.PaletteColors())
	a.Dispatch(action.Action{Kind: action.SetColor, Color: custom})
	if len(stroke.PaletteColors()) != before {
		t.Fatal("repeated color added a second swatch")
	}
}

func TestConfiguredColorGetsSwatch(t *testing.T) {
	custom := color.RGBA{R: 0x65, G: 0x43, B: 0x21, A: 255}
	newState(t, WithColor(custom))
	for _, pc := range stroke.PaletteColors() {
		if pc.Color == custom {
			return
		}
	}
	t.Fatal("initial color missing from the palette")
}
