package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/drawpad/internal/surface"
)

func drawn(t *testing.T) *surface.Surface {
	t.Helper()
	s := surface.New(30, 20, 2)
	draw.Draw(s.RGBA(), image.Rect(0, 0, 10, 10), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)
	return s
}

func TestFileName(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	if got := FileName(ts, PNG); got != "drawing-1700000000123.png" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName(ts, PDF); got != "drawing-1700000000123.pdf" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName(ts, ""); got != "drawing-1700000000123.png" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": PNG, "PNG": PNG, " pdf ": PDF} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("gif accepted")
	}
}

func TestExportPNG(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, Now: func() time.Time { return time.UnixMilli(42) }}
	path, err := e.Export(drawn(t))
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "drawing-42.png") {
		t.Fatalf("path = %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 60, 40) {
		t.Fatalf("bounds = %v, want the physical buffer", img.Bounds())
	}
	if _, _, _, a := img.At(50, 30).RGBA(); a != 0 {
		t.Fatal("transparency lost in PNG export")
	}
}

func TestExportPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	e := &Exporter{Dir: dir, Format: PDF, Now: func() time.Time { return time.UnixMilli(7) }}
	path, err := e.Export(drawn(t))
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()
	s := drawn(t)
	if err := WriteFile(filepath.Join(dir, "a.PDF"), s); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(dir, "a.png"), s); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("a.png is not a PNG: %v", err)
	}
}

func TestExportEmptySurface(t *testing.T) {
	e := &Exporter{Dir: t.TempDir()}
	if _, err := e.Export(surface.New(0, 0, 1)); !errors.Is(err, surface.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
