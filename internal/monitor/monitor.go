// Package monitor implements a Gio-based live view of a working cell:
// every tracked human and robot segment drawn at its latest sampled
// position, with a flash overlay when a collision notification
// arrives for a body pair.
package monitor

import (
	"image/color"
	"math"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cobot-guard/internal/geom"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

// flashDuration is how long a collision pair stays highlighted after
// a notification arrives.
const flashDuration = 2 * time.Second

// scale converts a millimeter coordinate into a screen pixel.
const scale = 0.5

// segmentSample is one renderable segment: a head/tail pair plus the
// owning body's id, used both to draw the line and to resolve flash
// membership.
type segmentSample struct {
	bodyID     string
	head, tail geom.Point
	isHuman    bool
}

// flash marks a human/robot pair as recently implicated in a
// collision notification.
type flash struct {
	humanID, robotID string
	at               time.Time
}

// View renders a BodyRegistry's current state and highlights recent
// collision notifications received from a broker.
type View struct {
	registry *runtime.BodyRegistry

	mu      sync.Mutex
	flashes []flash
}

// NewView returns a view over registry. Subscribe to a broker's
// collision notifications with OnCollisionNotification.
func NewView(registry *runtime.BodyRegistry) *View {
	return &View{registry: registry}
}

// segments collects the latest renderable segment sample for every
// body currently tracked by the registry. Bodies with no acquired
// state yet are skipped.
func (v *View) segments() []segmentSample {
	var out []segmentSample

	for _, id := range v.registry.HumanIDs() {
		hist, err := v.registry.HumanHistory(id)
		if err != nil || hist.Size() == 0 {
			continue
		}
		inst, err := hist.InstanceAtNumber(hist.Size() - 1)
		if err != nil {
			continue
		}
		for _, s := range inst.Samples {
			out = append(out, segmentSample{bodyID: id, head: s.Head, tail: s.Tail, isHuman: true})
		}
	}

	for _, id := range v.registry.RobotIDs() {
		hist, err := v.registry.RobotHistory(id)
		if err != nil {
			continue
		}
		samples, err := hist.LatestSamples()
		if err != nil {
			continue
		}
		for _, s := range samples {
			out = append(out, segmentSample{bodyID: id, head: s.Head, tail: s.Tail, isHuman: false})
		}
	}

	return out
}

// OnCollisionNotification records msg as a recent flash, suitable for
// passing to a runtime.BrokerAccess's SubscribeCollisionNotification.
func (v *View) OnCollisionNotification(msg runtime.CollisionNotificationMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.flashes = append(v.flashes, flash{humanID: msg.HumanID, robotID: msg.RobotID, at: timeNow()})
}

// timeNow is a seam so tests can avoid relying on wall-clock ordering
// beyond what time.Now already guarantees.
var timeNow = time.Now

func (v *View) activeFlashPairs() map[[2]string]struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := timeNow()
	live := v.flashes[:0]
	pairs := make(map[[2]string]struct{})
	for _, f := range v.flashes {
		if now.Sub(f.at) <= flashDuration {
			live = append(live, f)
			pairs[[2]string{f.humanID, f.robotID}] = struct{}{}
		}
	}
	v.flashes = live
	return pairs
}

// App drives the monitor window's event loop.
type App struct {
	view  *View
	theme *material.Theme
}

// NewApp builds a monitor window application over view.
func NewApp(view *View) *App {
	return &App{view: view, theme: material.NewTheme()}
}

// Run starts the event loop, blocking until the window is closed.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press && ke.Name == "Q" {
					return nil
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)
			w.Invalidate()
		}
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 20, G: 22, B: 26, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			title := material.H6(a.theme, "cobot-guard monitor")
			title.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, title.Layout)
		}),
		layout.Flexed(1, a.layoutCell),
	)
}

func (a *App) layoutCell(gtx layout.Context) layout.Dimensions {
	samples := a.view.segments()
	flashPairs := a.view.activeFlashPairs()

	for _, s := range samples {
		col := color.NRGBA{R: 100, G: 170, B: 255, A: 255}
		if s.isHuman {
			col = color.NRGBA{R: 255, G: 180, B: 90, A: 255}
		}
		if a.inFlash(s, flashPairs) {
			col = color.NRGBA{R: 230, G: 50, B: 50, A: 255}
		}
		drawSegment(gtx, s.head, s.tail, col)
	}

	return layout.Dimensions{Size: gtx.Constraints.Max}
}

func (a *App) inFlash(s segmentSample, pairs map[[2]string]struct{}) bool {
	for pair := range pairs {
		if (s.isHuman && pair[0] == s.bodyID) || (!s.isHuman && pair[1] == s.bodyID) {
			return true
		}
	}
	return false
}

func drawSegment(gtx layout.Context, head, tail geom.Point, col color.NRGBA) {
	x1, y1 := float32(head.X)*scale, float32(head.Y)*scale
	x2, y2 := float32(tail.X)*scale, float32(tail.Y)*scale

	const width = 4
	dx, dy := x2-x1, y2-y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())

	drawFilledCircle(gtx, x1, y1, 3, col)
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	const segments = 12
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
