package history

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/example/drawpad/internal/surface"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func paint(s *surface.Surface, r image.Rectangle, c color.RGBA) {
	draw.Draw(s.RGBA(), r, image.NewUniform(c), image.Point{}, draw.Src)
}

func snapshot(t *testing.T, s *surface.Surface) *surface.Snapshot {
	t.Helper()
	snap, err := s.Readback()
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func newManager(t *testing.T, s *surface.Surface, opts ...Option) *Manager {
	t.Helper()
	m := New(s, opts...)
	if err := m.Reset(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestUndoRedoRestoresExactPixels(t *testing.T) {
	s := surface.New(20, 20, 1)
	m := newManager(t, s)

	paint(s, image.Rect(2, 2, 9, 9), red)
	if err := m.Capture(); err != nil {
		t.Fatal(err)
	}
	drawn := snapshot(t, s)

	if !m.Undo() {
		t.Fatal("undo reported nothing to do")
	}
	if !m.Redo() {
		t.Fatal("redo reported nothing to do")
	}
	if !snapshot(t, s).Equal(drawn) {
		t.Fatal("undo followed by redo did not restore the drawing")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := surface.New(50, 1, 1)
	m := newManager(t, s)
	for i := 0; i < 45; i++ {
		paint(s, image.Rect(i, 0, i+1, 1), red)
		if err := m.Capture(); err != nil {
			t.Fatal(err)
		}
	}
	if got := m.State().Undo; got != DefaultCapacity {
		t.Fatalf("undo depth = %d, want %d", got, DefaultCapacity)
	}
	undos := 0
	for m.Undo() {
		undos++
	}
	if undos != DefaultCapacity {
		t.Fatalf("undid %d steps, want %d", undos, DefaultCapacity)
	}
	// The five oldest states were evicted so the first five pixels remain.
	if got := s.RGBA().RGBAAt(4, 0); got != red {
		t.Fatalf("pixel 4 = %+v, want painted", got)
	}
	if got := s.RGBA().RGBAAt(5, 0); got.A != 0 {
		t.Fatalf("pixel 5 = %+v, want transparent", got)
	}
}

func TestWithCapacity(t *testing.T) {
	s := surface.New(4, 4, 1)
	m := newManager(t, s, WithCapacity(2))
	for i := 0; i < 5; i++ {
		if err := m.Capture(); err != nil {
			t.Fatal(err)
		}
	}
	if got := m.State().Undo; got != 2 {
		t.Fatalf("undo depth = %d, want 2", got)
	}
	if New(s, WithCapacity(0)).Capacity() != DefaultCapacity {
		t.Fatal("non-positive capacity should be ignored")
	}
}

func TestRedoCapacityBound(t *testing.T) {
	s := surface.New(4, 4, 1)
	m := newManager(t, s, WithCapacity(2))
	m.Capture()
	m.Capture()
	m.Undo()
	m.Capture()
	m.Undo()
	if !m.Redo() {
		t.Fatal("redo failed")
	}
	if got := m.State().Undo; got > 2 {
		t.Fatalf("undo depth %d exceeds capacity", got)
	}
}

func TestCaptureClearsRedo(t *testing.T) {
	s := surface.New(10, 10, 1)
	m := newManager(t, s)
	paint(s, image.Rect(0, 0, 5, 5), red)
	m.Capture()
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}
	paint(s, image.Rect(5, 5, 10, 10), blue)
	m.Capture()
	if m.CanRedo() {
		t.Fatal("capture after undo must clear redo")
	}
	if m.Redo() {
		t.Fatal("redo succeeded on an empty stack")
	}
}

func TestStrokeScenario(t *testing.T) {
	s := surface.New(20, 20, 1)
	m := newManager(t, s)
	blank := snapshot(t, s)

	paint(s, image.Rect(0, 0, 5, 5), red)
	m.Capture()
	afterA := snapshot(t, s)

	paint(s, image.Rect(10, 10, 15, 15), blue)
	m.Capture()
	afterB := snapshot(t, s)

	steps := []struct {
		name string
		op   func() bool
		want *surface.Snapshot
	}{
		{"undo B", m.Undo, afterA},
		{"undo A", m.Undo, blank},
		{"redo A", m.Redo, afterA},
		{"redo B", m.Redo, afterB},
	}
	for _, st := range steps {
		if !st.op() {
			t.Fatalf("%s: reported no change", st.name)
		}
		if !snapshot(t, s).Equal(st.want) {
			t.Fatalf("%s: surface does not match", st.name)
		}
	}
	if m.CanRedo() {
		t.Fatal("redo stack should be empty")
	}
}

func TestClearWithEmptyUndoIsUndoable(t *testing.T) {
	s := surface.New(10, 10, 1)
	paint(s, image.Rect(0, 0, 10, 10), red)
	m := newManager(t, s)
	drawn := snapshot(t, s)
	if m.CanUndo() {
		t.Fatal("fresh history should have nothing to undo")
	}

	s.Clear()
	if err := m.Capture(); err != nil {
		t.Fatal(err)
	}
	if !m.Undo() {
		t.Fatal("clear was not undoable")
	}
	if !snapshot(t, s).Equal(drawn) {
		t.Fatal("undo did not restore the content before clear")
	}
}

func TestUndoOnEmptyStackIsNoop(t *testing.T) {
	s := surface.New(10, 10, 1)
	m := newManager(t, s)
	paint(s, image.Rect(0, 0, 3, 3), red)
	if m.Undo() {
		t.Fatal("undo with empty stack reported a change")
	}
	if got := s.RGBA().RGBAAt(1, 1); got != red {
		t.Fatal("undo with empty stack touched the surface")
	}
}

type failingSource struct{ *surface.Surface }

func (failingSource) Readback() (*surface.Snapshot, error) { return nil, surface.ErrEmpty }

func TestFailedCaptureLeavesHistoryUnchanged(t *testing.T) {
	s := surface.New(10, 10, 1)
	m := newManager(t, s)
	m.Capture()
	m.Capture()
	m.Undo()
	before := m.State()

	m.src = failingSource{s}
	err := m.Capture()
	if !errors.Is(err, surface.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if m.State() != before {
		t.Fatalf("state changed from %+v to %+v", before, m.State())
	}
}

func TestResetOnEmptySurface(t *testing.T) {
	m := New(surface.New(0, 0, 1))
	if err := m.Reset(); !errors.Is(err, surface.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if m.HasBaseline() {
		t.Fatal("baseline recorded for an empty surface")
	}
}

func TestListenerNotified(t *testing.T) {
	s := surface.New(10, 10, 1)
	var got []State
	m := newManager(t, s, WithListener(func(st State) { got = append(got, st) }))
	m.Capture()
	m.Undo()
	m.Redo()
	want := []State{{0, 0}, {1, 0}, {0, 1}, {1, 0}}
	if len(got) != len(want) {
		t.Fatalf("notifications = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notification %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
