package backend

import "fmt"

// Op is one recorded call, used by RecordingWriter for test assertions and
// by drawvm integration tests that need to inspect exactly what the
// pagination engine emitted.
type Op struct {
	Name string
	Args []interface{}
}

func (o Op) String() string { return fmt.Sprintf("%s%v", o.Name, o.Args) }

// RecordingWriter is an in-memory Writer that appends every call to Ops,
// the test double named in SPEC_FULL.md §9's output-backend section.
type RecordingWriter struct {
	Ops   []Op
	state coalesceState
}

func NewRecordingWriter() *RecordingWriter { return &RecordingWriter{} }

func (w *RecordingWriter) record(name string, args ...interface{}) {
	w.Ops = append(w.Ops, Op{Name: name, Args: args})
}

func (w *RecordingWriter) StartBar(bar, stave int) { w.record("startbar", bar, stave) }
func (w *RecordingWriter) Stave(x, y, xend float64, lines int) {
	w.record("stave", x, y, xend, lines)
}
func (w *RecordingWriter) Barline(x, yTop, yBottom float64, typ BarlineType, magn float64) {
	w.record("barline", x, yTop, yBottom, typ, magn)
}
func (w *RecordingWriter) Brace(x, yTop, yBottom, magn float64) {
	w.record("brace", x, yTop, yBottom, magn)
}
func (w *RecordingWriter) Bracket(x, yTop, yBottom, magn float64) {
	w.record("bracket", x, yTop, yBottom, magn)
}
func (w *RecordingWriter) Beam(x0, x1 float64, level int, levelChange float64) {
	w.record("beam", x0, x1, level, levelChange)
}
func (w *RecordingWriter) Slur(x0, y0, x1, y1 float64, flags SlurFlags, centreOutAdjust float64) {
	w.record("slur", x0, y0, x1, y1, flags, centreOutAdjust)
}
func (w *RecordingWriter) Line(x0, y0, x1, y1, thickness float64, flags LineFlags) {
	w.record("line", x0, y0, x1, y1, thickness, flags)
}
func (w *RecordingWriter) Lines(xs, ys []float64, thickness float64) {
	w.record("lines", len(xs), thickness)
}
func (w *RecordingWriter) Path(xs, ys []float64, ops []PathOp, thickness float64) {
	w.record("path", len(ops), thickness)
}
func (w *RecordingWriter) AbsPath(xs, ys []float64, ops []PathOp, thickness float64) {
	w.record("abspath", len(ops), thickness)
}
func (w *RecordingWriter) MusChar(x, y float64, virtualID int, pointsize float64) {
	w.record("muschar", x, y, virtualID, pointsize)
}
func (w *RecordingWriter) MusString(virtualIDs []int, pointsize, x, y float64) {
	w.record("musstring", len(virtualIDs), pointsize, x, y)
}
func (w *RecordingWriter) String(s string, fontID uint8, x, y *float64, update bool) {
	w.record("string", s, fontID, *x, *y, update)
}
func (w *RecordingWriter) SetColour(rgb RGB) {
	if w.state.coalesceColour(rgb) {
		return
	}
	w.record("setcolour", rgb)
}
func (w *RecordingWriter) SetGray(g float64) { w.record("setgray", g) }
func (w *RecordingWriter) GetColour() RGB     { return w.state.colour }
func (w *RecordingWriter) SetDash(on, off float64) {
	if w.state.coalesceDash(on, off) {
		return
	}
	w.record("setdash", on, off)
}
func (w *RecordingWriter) SetCapAndJoin(cj CapJoin) {
	if w.state.coalesceCapJoin(cj) {
		return
	}
	w.record("setcapandjoin", cj)
}
func (w *RecordingWriter) Translate(x, y float64) { w.record("translate", x, y) }
func (w *RecordingWriter) Rotate(radians float64) { w.record("rotate", radians) }
func (w *RecordingWriter) Gsave()                 { w.record("gsave") }
func (w *RecordingWriter) Grestore()              { w.record("grestore") }

// coalesceState tracks the last-emitted colour/dash/cap-join so repeated
// identical state changes are dropped (spec §4.8 "Backends MUST coalesce
// redundant colour/dash/cap-join changes").
type coalesceState struct {
	colour    RGB
	haveColour bool
	dashOn, dashOff float64
	haveDash  bool
	capJoin   CapJoin
	haveCapJoin bool
}

func (s *coalesceState) coalesceColour(rgb RGB) (skip bool) {
	skip = s.haveColour && s.colour == rgb
	s.colour, s.haveColour = rgb, true
	return skip
}

func (s *coalesceState) coalesceDash(on, off float64) (skip bool) {
	skip = s.haveDash && s.dashOn == on && s.dashOff == off
	s.dashOn, s.dashOff, s.haveDash = on, off, true
	return skip
}

func (s *coalesceState) coalesceCapJoin(cj CapJoin) (skip bool) {
	skip = s.haveCapJoin && s.capJoin == cj
	s.capJoin, s.haveCapJoin = cj, true
	return skip
}
