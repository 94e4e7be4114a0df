// Package export writes a drawing to disk as PNG or PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/drawpad/internal/render"
	"github.com/example/drawpad/internal/surface"
	"github.com/jung-kurt/gofpdf"
)

// Format selects the file type written by an Exporter.
type Format string

const (
	PNG Format = "png"
	PDF Format = "pdf"
)

// ParseFormat accepts "png" or "pdf" in any case. An empty string means PNG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", PNG:
		return PNG, nil
	case PDF:
		return PDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FormatForPath picks the format from the file extension, defaulting to PNG.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDF
	}
	return PNG
}

// FileName returns the timestamped name used for exports, for example
// drawing-1700000000000.png.
func FileName(t time.Time, f Format) string {
	if f == "" {
		f = PNG
	}
	return fmt.Sprintf("drawing-%d.%s", t.UnixMilli(), f)
}

// Exporter writes surfaces into a directory using timestamped names.
type Exporter struct {
	Dir    string
	Format Format
	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *Exporter) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Export writes s into the export directory and returns the written path.
func (e *Exporter) Export(s *surface.Surface) (string, error) {
	var dir string
	var f Format
	if e != nil {
		dir, f = e.Dir, e.Format
	}
	path := filepath.Join(dir, FileName(e.now(), f))
	if err := WriteFile(path, s); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes s to path in the format implied by its extension,
// creating parent directories as needed.
func WriteFile(path string, s *surface.Surface) error {
	if s.Empty() {
		return fmt.Errorf("export %s: %w", path, surface.ErrEmpty)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	switch FormatForPath(path) {
	case PDF:
		err = EncodePDF(out, s.Image(), s.Size())
	default:
		err = s.EncodePNG(out)
	}
	if err != nil {
		if cerr := out.Close(); cerr != nil {
			err = fmt.Errorf("%w (closing file: %v)", err, cerr)
		}
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("export %s: closing file: %w", path, err)
	}
	return nil
}

// EncodePDF writes a single page PDF sized to the logical dimensions, in
// points, with img flattened onto white stretched to fill it.
func EncodePDF(w io.Writer, img image.Image, logical surface.Size) error {
	if img.Bounds().Empty() || logical.Width <= 0 || logical.Height <= 0 {
		return surface.ErrEmpty
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Flatten(img, color.White)); err != nil {
		return err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: logical.Width, Ht: logical.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("drawpad", true)
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("drawing", opts, &buf)
	pdf.ImageOptions("drawing", 0, 0, logical.Width, logical.Height, false, opts, 0, "")
	return pdf.Output(w)
}
