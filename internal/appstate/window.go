package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/history"
	"github.com/example/drawpad/internal/render"
	"github.com/example/drawpad/internal/stroke"
	"github.com/example/drawpad/internal/theme"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

const (
	statusHeight    = 22
	swatchSize      = 14
	swatchGap       = 4
	messageDuration = 2 * time.Second
	minWindowWidth  = 320
	minWindowHeight = 240
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// postEvent carries an intent from another goroutine into the window loop.
type postEvent struct{ act action.Action }

func (a *AppState) setSender(fn func(action.Action)) {
	a.sendMu.Lock()
	a.sendFn = fn
	a.sendMu.Unlock()
}

// Post queues act for the running window's event loop, which dispatches it.
// It reports false when no window is open.
func (a *AppState) Post(act action.Action) bool {
	a.sendMu.Lock()
	fn := a.sendFn
	a.sendMu.Unlock()
	if fn == nil {
		return false
	}
	fn(act)
	return true
}

func (a *AppState) notifyClose() {
	a.closeOne.Do(func() {
		a.setSender(nil)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver. It must be called from the
// main goroutine.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main opens the drawing window on s and processes its events until it is
// closed.
func (a *AppState) Main(s screen.Screen) {
	b := a.surface.Bounds()
	width := max(b.Dx(), minWindowWidth)
	height := max(b.Dy(), minWindowHeight) + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "drawpad"})
	if err != nil {
		a.log.Error("new window", "err", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	a.setSender(func(act action.Action) { w.Send(postEvent{act}) })

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	backdrop := &render.Backdrop{Size: 8, Light: a.theme.CheckerLight, Dark: a.theme.CheckerDark}
	paintCh := make(chan frame, 1)
	defer close(paintCh)
	go func() {
		for f := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			a.drawFrame(ctx, s, w, backdrop, f)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	density := a.surface.Density()
	var message string
	var messageUntil time.Time

	dispatch := func(act action.Action) {
		res, err := a.Dispatch(act)
		switch {
		case err != nil:
			a.log.Warn(act.Kind.String(), "err", err)
			message = err.Error()
			messageUntil = time.Now().Add(messageDuration)
		case res.Message != "":
			message = res.Message
			messageUntil = time.Now().Add(messageDuration)
		}
		w.Send(paint.Event{})
	}

	for {
		switch e := w.NextEvent().(type) {
		case postEvent:
			dispatch(e.act)
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff && a.Drawing() {
				dispatch(action.Action{Kind: action.End})
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			density = densityOf(e)
			canvas := max(height-statusHeight, 0)
			dispatch(action.Action{
				Kind:    action.Resize,
				W:       float64(width) / density,
				H:       float64(canvas) / density,
				Density: density,
			})
		case mouse.Event:
			x, y := float64(e.X)/density, float64(e.Y)/density
			if int(e.Y) >= height-statusHeight && !a.Drawing() {
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					if idx, ok := swatchAt(image.Pt(int(e.X), int(e.Y)), height-statusHeight); ok {
						dispatch(action.Action{Kind: action.SetColor, Color: stroke.PaletteColorAt(idx)})
					}
				}
				continue
			}
			switch {
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				dispatch(action.Action{Kind: action.Start, X: x, Y: y})
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				dispatch(action.Action{Kind: action.End})
			case e.Direction == mouse.DirNone && a.Drawing():
				dispatch(action.Action{Kind: action.Move, X: x, Y: y})
			case e.Button == mouse.ButtonWheelUp && e.Direction == mouse.DirPress:
				dispatch(action.Action{Kind: action.SetWidth, Width: stepWidth(a.style.Width, 1)})
			case e.Button == mouse.ButtonWheelDown && e.Direction == mouse.DirPress:
				dispatch(action.Action{Kind: action.SetWidth, Width: stepWidth(a.style.Width, -1)})
			}
		case key.Event:
			if act, ok := a.keys.Lookup(e); ok {
				dispatch(act)
				continue
			}
			if e.Direction != key.DirPress {
				continue
			}
			switch e.Rune {
			case ']':
				dispatch(action.Action{Kind: action.SetWidth, Width: stepWidth(a.style.Width, 1)})
			case '[':
				dispatch(action.Action{Kind: action.SetWidth, Width: stepWidth(a.style.Width, -1)})
			}
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			f := frame{
				width:   width,
				height:  height,
				img:     a.surface.Clone(),
				style:   a.style,
				history: a.history.State(),
				theme:   a.theme,
			}
			if message != "" && time.Now().Before(messageUntil) {
				f.message = message
			}
			select {
			case paintCh <- f:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- f
			}
		case error:
			a.log.Error("window event", "err", e)
		}
	}
}

// densityOf converts shiny's pixels per point into physical pixels per
// logical (1/96 inch) pixel.
func densityOf(e size.Event) float64 {
	if e.PixelsPerPt <= 0 {
		return 1
	}
	d := float64(e.PixelsPerPt) * 72 / 96
	if d < 1 {
		return 1
	}
	return d
}

// stepWidth moves to the neighbouring preset width.
func stepWidth(cur, delta int) int {
	return stroke.WidthAt(stroke.EnsureWidth(cur) + delta)
}

type frame struct {
	width, height int
	img           *image.RGBA
	style         stroke.Style
	history       history.State
	message       string
	theme         *theme.Theme
}

func (a *AppState) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, backdrop *render.Backdrop, f frame) {
	if f.width <= 0 || f.height <= 0 {
		return
	}
	buf, err := s.NewBuffer(image.Pt(f.width, f.height))
	if err != nil {
		a.log.Error("new buffer", "err", err)
		return
	}
	defer buf.Release()

	dst := buf.RGBA()
	renderFrame(dst, backdrop, f)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, buf, buf.Bounds())
	w.Publish()
}

func renderFrame(dst *image.RGBA, backdrop *render.Backdrop, f frame) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(f.theme.Background), image.Point{}, draw.Src)
	canvas := f.img.Bounds().Intersect(image.Rect(0, 0, f.width, f.height-statusHeight))
	if !canvas.Empty() {
		backdrop.Draw(dst, canvas, f.img)
	}
	drawStatus(dst, f)
}

func swatchRect(slot, top int) image.Rectangle {
	x := swatchGap + slot*(swatchSize+swatchGap)
	y := top + (statusHeight-swatchSize)/2
	return image.Rect(x, y, x+swatchSize, y+swatchSize)
}

// swatchAt maps a point in the status bar to a palette index. Slot zero
// shows the current color and is not selectable.
func swatchAt(p image.Point, top int) (int, bool) {
	for i := range stroke.PaletteColors() {
		if p.In(swatchRect(i+1, top)) {
			return i, true
		}
	}
	return 0, false
}

func drawStatus(dst *image.RGBA, f frame) {
	top := f.height - statusHeight
	bar := image.Rect(0, top, f.width, f.height)
	draw.Draw(dst, bar, image.NewUniform(f.theme.StatusBackground), image.Point{}, draw.Src)

	cur := swatchRect(0, top)
	draw.Draw(dst, cur, image.NewUniform(f.style.Color), image.Point{}, draw.Over)
	outline(dst, cur.Inset(-1), f.theme.SwatchBorder)
	palette := stroke.PaletteColors()
	for i, pc := range palette {
		r := swatchRect(i+1, top)
		draw.Draw(dst, r, image.NewUniform(pc.Color), image.Point{}, draw.Src)
		outline(dst, r, f.theme.SwatchBorder)
	}

	status := fmt.Sprintf("%s %dpx  undo %d  redo %d", f.style.Tool, f.style.Width, f.history.Undo, f.history.Redo)
	if f.message != "" {
		status += "  " + f.message
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(f.theme.StatusText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(swatchRect(len(palette)+1, top).Min.X+swatchGap, top+statusHeight/2+basicfont.Face7x13.Ascent/2),
	}
	d.DrawString(status)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	u := image.NewUniform(c)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, edge, u, image.Point{}, draw.Src)
	}
}
