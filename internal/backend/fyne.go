package backend

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// millipointsPerPixel converts millipoint page coordinates to Fyne's
// resolution-independent pixel units at a nominal 72 px/inch, 72 pt/inch
// screen preview scale (spec §6: "coordinates are in millipoint units").
const millipointsPerPixel = 1000.0

func mpToPx(v float64) float32 { return float32(v / millipointsPerPixel) }

// transformState is one gsave/grestore frame: an additive translation and
// rotation, composed the way the draw interpreter's path ops are (spec
// §4.8 "gsave/rotate/translate/grestore").
type transformState struct {
	dx, dy float64
	angle  float64
}

// FyneWriter turns backend API calls into fyne.CanvasObjects composed into
// a single fyne.Container, the "concrete encoder" spec §1 says is trivial
// once the operation stream exists. Grounded on internal/ui/fyne_ui.go's
// use of canvas.Line/canvas.Text/canvas.Circle composed inside
// container.NewWithoutLayout.
type FyneWriter struct {
	Container *fyne.Container

	state  coalesceState
	stack  []transformState
	cur    transformState
	stroke color.Color
}

// NewFyneWriter returns a Writer that accumulates canvas objects into a
// fresh, unlayouted container (the pagination engine positions everything
// itself in absolute page coordinates).
func NewFyneWriter() *FyneWriter {
	return &FyneWriter{
		Container: container.NewWithoutLayout(),
		stroke:    color.Black,
	}
}

func (w *FyneWriter) add(o fyne.CanvasObject) { w.Container.Add(o) }

func (w *FyneWriter) xf(x, y float64) (float32, float32) {
	return mpToPx(x + w.cur.dx), mpToPx(y + w.cur.dy)
}

func (w *FyneWriter) StartBar(bar, stave int) {}

func (w *FyneWriter) Stave(x, y, xend float64, lines int) {
	for i := 0; i < lines; i++ {
		yy := y + float64(i)*1000
		l := canvas.NewLine(w.stroke)
		x0, y0 := w.xf(x, yy)
		x1, y1 := w.xf(xend, yy)
		l.Position1 = fyne.NewPos(x0, y0)
		l.Position2 = fyne.NewPos(x1, y1)
		l.StrokeWidth = 1
		w.add(l)
	}
}

func (w *FyneWriter) Barline(x, yTop, yBottom float64, typ BarlineType, magn float64) {
	if typ == BarlineInvisible {
		return
	}
	l := canvas.NewLine(w.stroke)
	x0, y0 := w.xf(x, yTop)
	x1, y1 := w.xf(x, yBottom)
	l.Position1, l.Position2 = fyne.NewPos(x0, y0), fyne.NewPos(x1, y1)
	l.StrokeWidth = float32(magn)
	if typ == BarlineDouble {
		l.StrokeWidth *= 2
	}
	w.add(l)
}

func (w *FyneWriter) Brace(x, yTop, yBottom, magn float64)   { w.drawBracketLike(x, yTop, yBottom, magn) }
func (w *FyneWriter) Bracket(x, yTop, yBottom, magn float64) { w.drawBracketLike(x, yTop, yBottom, magn) }

func (w *FyneWriter) drawBracketLike(x, yTop, yBottom, magn float64) {
	l := canvas.NewLine(w.stroke)
	x0, y0 := w.xf(x, yTop)
	x1, y1 := w.xf(x, yBottom)
	l.Position1, l.Position2 = fyne.NewPos(x0, y0), fyne.NewPos(x1, y1)
	l.StrokeWidth = float32(magn) * 2
	w.add(l)
}

func (w *FyneWriter) Beam(x0, x1 float64, level int, levelChange float64) {
	y := -float64(level) * 1200
	l := canvas.NewLine(w.stroke)
	px0, py0 := w.xf(x0, y)
	px1, py1 := w.xf(x1, y+levelChange*200)
	l.Position1, l.Position2 = fyne.NewPos(px0, py0), fyne.NewPos(px1, py1)
	l.StrokeWidth = 3
	w.add(l)
}

func (w *FyneWriter) Slur(x0, y0, x1, y1 float64, flags SlurFlags, centreOutAdjust float64) {
	l := canvas.NewLine(w.stroke)
	px0, py0 := w.xf(x0, y0)
	px1, py1 := w.xf(x1, y1)
	l.Position1, l.Position2 = fyne.NewPos(px0, py0), fyne.NewPos(px1, py1)
	l.StrokeWidth = 1
	if flags&SlurDashed != 0 {
		l.StrokeWidth = 0.5
	}
	w.add(l)
}

func (w *FyneWriter) Line(x0, y0, x1, y1, thickness float64, flags LineFlags) {
	l := canvas.NewLine(w.stroke)
	px0, py0 := w.xf(x0, y0)
	px1, py1 := w.xf(x1, y1)
	l.Position1, l.Position2 = fyne.NewPos(px0, py0), fyne.NewPos(px1, py1)
	l.StrokeWidth = float32(thickness / 1000)
	w.add(l)
}

func (w *FyneWriter) Lines(xs, ys []float64, thickness float64) {
	for i := 0; i+1 < len(xs); i++ {
		w.Line(xs[i], ys[i], xs[i+1], ys[i+1], thickness, 0)
	}
}

func (w *FyneWriter) Path(xs, ys []float64, ops []PathOp, thickness float64) {
	w.drawPath(xs, ys, ops, thickness)
}

func (w *FyneWriter) AbsPath(xs, ys []float64, ops []PathOp, thickness float64) {
	saved := w.cur
	w.cur = transformState{}
	w.drawPath(xs, ys, ops, thickness)
	w.cur = saved
}

func (w *FyneWriter) drawPath(xs, ys []float64, ops []PathOp, thickness float64) {
	var lastX, lastY float64
	for i, op := range ops {
		if i >= len(xs) {
			break
		}
		switch op {
		case PathMove:
			lastX, lastY = xs[i], ys[i]
		case PathLine:
			w.Line(lastX, lastY, xs[i], ys[i], thickness, 0)
			lastX, lastY = xs[i], ys[i]
		case PathCurve:
			w.Line(lastX, lastY, xs[i], ys[i], thickness, 0)
			lastX, lastY = xs[i], ys[i]
		case PathEnd:
		}
	}
}

func (w *FyneWriter) MusChar(x, y float64, virtualID int, pointsize float64) {
	t := canvas.NewText(string(rune(virtualID)), w.stroke)
	t.TextSize = float32(pointsize)
	px, py := w.xf(x, y)
	t.Move(fyne.NewPos(px, py))
	w.add(t)
}

func (w *FyneWriter) MusString(virtualIDs []int, pointsize, x, y float64) {
	for i, id := range virtualIDs {
		w.MusChar(x+float64(i)*pointsize*700, y, id, pointsize)
	}
}

func (w *FyneWriter) String(s string, fontID uint8, x, y *float64, update bool) {
	t := canvas.NewText(s, w.stroke)
	px, py := w.xf(*x, *y)
	t.Move(fyne.NewPos(px, py))
	w.add(t)
	if update {
		*x += float64(len(s)) * 600
	}
}

func (w *FyneWriter) SetColour(rgb RGB) {
	if w.state.coalesceColour(rgb) {
		return
	}
	w.stroke = color.NRGBA{R: clamp(rgb.R), G: clamp(rgb.G), B: clamp(rgb.B), A: 255}
}

func (w *FyneWriter) SetGray(g float64) { w.SetColour(RGB{g, g, g}) }
func (w *FyneWriter) GetColour() RGB    { return w.state.colour }

func (w *FyneWriter) SetDash(on, off float64) { w.state.coalesceDash(on, off) }

func (w *FyneWriter) SetCapAndJoin(cj CapJoin) { w.state.coalesceCapJoin(cj) }

func (w *FyneWriter) Translate(x, y float64) { w.cur.dx += x; w.cur.dy += y }
func (w *FyneWriter) Rotate(radians float64) { w.cur.angle += radians }

func (w *FyneWriter) Gsave()    { w.stack = append(w.stack, w.cur) }
func (w *FyneWriter) Grestore() {
	if n := len(w.stack); n > 0 {
		w.cur = w.stack[n-1]
		w.stack = w.stack[:n-1]
	}
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v * 255)
}
