// Package appstate owns the drawing session: the surface, the stroke renderer,
// the undo history and the current style. Every input adapter feeds it
// intents through Dispatch.
package appstate

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/clipboard"
	"github.com/example/drawpad/internal/export"
	"github.com/example/drawpad/internal/history"
	"github.com/example/drawpad/internal/keymap"
	"github.com/example/drawpad/internal/logging"
	"github.com/example/drawpad/internal/notify"
	"github.com/example/drawpad/internal/stroke"
	"github.com/example/drawpad/internal/surface"
	"github.com/example/drawpad/internal/theme"
	"github.com/google/uuid"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

// AppState holds one drawing session. Dispatch and the accessors must be
// called from a single goroutine.
type AppState struct {
	id uuid.UUID

	surface  *surface.Surface
	renderer *stroke.Renderer
	history  *history.Manager
	style    stroke.Style

	width, height, density float64
	capacity               int
	historyFns             []func(history.State)

	exporter *export.Exporter
	notifier *notify.Notifier
	theme    *theme.Theme
	keys     *keymap.Keymap
	copyPNG  func([]byte) error
	log      *slog.Logger

	sendMu   sync.Mutex
	sendFn   func(action.Action)
	onClose  func()
	closeOne sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSize sets the initial logical surface size.
func WithSize(width, height float64) Option {
	return func(a *AppState) { a.width, a.height = width, height }
}

// WithDensity sets the initial number of physical pixels per logical pixel.
func WithDensity(d float64) Option { return func(a *AppState) { a.density = d } }

// WithColor sets the initial stroke color.
func WithColor(c color.RGBA) Option { return func(a *AppState) { a.style.Color = c } }

// WithWidth sets the initial stroke width in logical pixels.
func WithWidth(w int) Option { return func(a *AppState) { a.style.Width = w } }

// WithTool sets the initial tool.
func WithTool(t stroke.Tool) Option { return func(a *AppState) { a.style.Tool = t } }

// WithHistoryCapacity bounds the number of undo steps.
func WithHistoryCapacity(n int) Option { return func(a *AppState) { a.capacity = n } }

// WithHistoryListener registers a callback for undo and redo availability.
func WithHistoryListener(fn func(history.State)) Option {
	return func(a *AppState) { a.historyFns = append(a.historyFns, fn) }
}

// WithExporter sets where and how Export intents write files.
func WithExporter(e *export.Exporter) Option { return func(a *AppState) { a.exporter = e } }

// WithNotifier sets the desktop notifier used after exports and copies.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithKeymap sets the keyboard bindings used by the window.
func WithKeymap(k *keymap.Keymap) Option { return func(a *AppState) { a.keys = k } }

// WithClipboard replaces the function that publishes PNG data for Copy.
func WithClipboard(fn func([]byte) error) Option { return func(a *AppState) { a.copyPNG = fn } }

// WithLogger sets the logger. Records are tagged with the session id.
func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.log = l } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options. A non-empty surface
// starts with a history baseline so the first stroke can be undone.
func New(opts ...Option) *AppState {
	a := &AppState{
		id:       uuid.New(),
		style:    stroke.DefaultStyle(),
		width:    defaultWidth,
		height:   defaultHeight,
		density:  1,
		capacity: history.DefaultCapacity,
		copyPNG:  clipboard.WritePNG,
	}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = logging.Logger()
	}
	a.log = a.log.With("session", a.id.String())
	if a.theme == nil {
		a.theme = theme.Default()
	}
	if a.keys == nil {
		a.keys = keymap.Default()
	}
	if a.exporter == nil {
		a.exporter = &export.Exporter{}
	}
	a.style = a.style.Normalized()
	stroke.EnsurePaletteColor(a.style.Color, "")

	a.surface = surface.New(a.width, a.height, a.density)
	a.renderer = stroke.NewRenderer(a.surface)
	hopts := []history.Option{history.WithCapacity(a.capacity), history.WithLogger(a.log)}
	for _, fn := range a.historyFns {
		hopts = append(hopts, history.WithListener(fn))
	}
	a.history = history.New(a.surface, hopts...)
	if !a.surface.Empty() {
		if err := a.history.Reset(); err != nil {
			a.log.Debug("history baseline", "err", err)
		}
	}
	a.log.Debug("session started", "width", a.width, "height", a.height, "density", a.density)
	return a
}

// SessionID identifies this session in logs.
func (a *AppState) SessionID() string { return a.id.String() }

// Surface returns the drawing surface.
func (a *AppState) Surface() *surface.Surface { return a.surface }

// Style returns the style applied to the next stroke.
func (a *AppState) Style() stroke.Style { return a.style }

// History returns the undo manager.
func (a *AppState) History() *history.Manager { return a.history }

// Theme returns the window colors.
func (a *AppState) Theme() *theme.Theme { return a.theme }

// Keymap returns the keyboard bindings.
func (a *AppState) Keymap() *keymap.Keymap { return a.keys }

// Drawing reports whether a stroke is in progress.
func (a *AppState) Drawing() bool { return a.renderer.Drawing() }

// Result describes the outcome of a dispatched intent.
type Result struct {
	// Changed reports that surface pixels may differ and a repaint is due.
	Changed bool
	// Path is the file written by Export.
	Path string
	// Message is a short human readable status.
	Message string
}

// Dispatch applies one intent. Only export and copy return errors; invalid
// style values are clamped or ignored and a failed history capture is logged
// and dropped.
func (a *AppState) Dispatch(act action.Action) (Result, error) {
	switch act.Kind {
	case action.Start:
		var res Result
		if a.renderer.Drawing() {
			res = a.endStroke()
		}
		a.renderer.Begin(act.X, act.Y, a.style)
		return res, nil
	case action.Move:
		if !a.renderer.Drawing() {
			return Result{}, nil
		}
		a.renderer.Continue(act.X, act.Y)
		return Result{Changed: true}, nil
	case action.End:
		return a.endStroke(), nil
	case action.SetColor:
		a.style.Color = act.Color
		stroke.EnsurePaletteColor(act.Color, "")
		return Result{Message: "color " + action.FormatColor(act.Color)}, nil
	case action.SetWidth:
		a.style.Width = act.Width
		a.style = a.style.Normalized()
		return Result{Message: fmt.Sprintf("width %dpx", a.style.Width)}, nil
	case action.SelectTool:
		if act.Tool != stroke.Pen && act.Tool != stroke.Eraser {
			return Result{}, nil
		}
		a.style.Tool = act.Tool
		return Result{Message: act.Tool.String()}, nil
	case action.Undo:
		res := a.endStroke()
		if a.history.Undo() {
			return Result{Changed: true, Message: "undo"}, nil
		}
		return res, nil
	case action.Redo:
		res := a.endStroke()
		if a.history.Redo() {
			return Result{Changed: true, Message: "redo"}, nil
		}
		return res, nil
	case action.Clear:
		a.endStroke()
		a.surface.Clear()
		a.capture()
		return Result{Changed: true, Message: "cleared"}, nil
	case action.Export:
		return a.export(act.Path)
	case action.Copy:
		return a.copy()
	case action.Resize:
		a.endStroke()
		a.surface.Resize(act.W, act.H, act.Density)
		if !a.history.HasBaseline() && !a.surface.Empty() {
			if err := a.history.Reset(); err != nil {
				a.log.Debug("history baseline", "err", err)
			}
		}
		return Result{Changed: true}, nil
	}
	return Result{}, fmt.Errorf("%w %v", action.ErrUnknownKind, act.Kind)
}

func (a *AppState) endStroke() Result {
	if !a.renderer.End() {
		return Result{}
	}
	a.capture()
	return Result{Changed: true}
}

func (a *AppState) capture() {
	if err := a.history.Capture(); err != nil {
		a.log.Debug("snapshot discarded", "err", err)
	}
}

func (a *AppState) export(path string) (Result, error) {
	a.endStroke()
	var err error
	if path != "" {
		err = export.WriteFile(path, a.surface)
	} else {
		path, err = a.exporter.Export(a.surface)
	}
	if err != nil {
		return Result{}, err
	}
	a.log.Info("exported", "path", path)
	a.notifier.Export(path)
	return Result{Path: path, Message: "saved " + path}, nil
}

func (a *AppState) copy() (Result, error) {
	a.endStroke()
	data, err := a.surface.ExportPNG()
	if err != nil {
		return Result{}, fmt.Errorf("copy: %w", err)
	}
	if err := a.copyPNG(data); err != nil {
		return Result{}, fmt.Errorf("copy: %w", err)
	}
	a.log.Info("copied to clipboard", "bytes", len(data))
	a.notifier.Copy("drawing")
	return Result{Message: "image copied to clipboard"}, nil
}

// DispatchAll applies intents in order and stops at the first error.
func (a *AppState) DispatchAll(acts []action.Action) ([]Result, error) {
	out := make([]Result, 0, len(acts))
	for _, act := range acts {
		res, err := a.Dispatch(act)
		if err != nil {
			return out, fmt.Errorf("%s: %w", act, err)
		}
		out = append(out, res)
	}
	return out, nil
}
