package drawvm

import "fmt"

const (
	maxStack     = 100
	maxVars      = 20
	maxCallDepth = 20
)

// Item is one draw-procedure instruction: an operator plus an inline
// operand for the literal-pushing ops, and a Jump target used by if/ifelse/
// repeat/loop to locate their code blocks (spec §4.7 "a jump item points
// into the next chunk").
type Item struct {
	Op      Op
	Operand Value
	Jump    int // index of the first Item of a nested code block, or 0 for none
}

// Proc is a parsed draw procedure: a flat instruction stream plus the
// sub-block boundaries Jump indices refer into.
type Proc struct {
	Items []Item
}

// Env is the read-only engraving context environmental accessors expose
// (spec §4.7's accleft/headleft/.../gapy family); the engine supplies a
// concrete implementation bound to the current bar/stave/page.
type Env interface {
	Accessor(op Op) float64
}

// PathSink receives path construction and rendering calls built up by a
// running draw procedure; the engine wires this to internal/backend.
type PathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	Translate(dx, dy float64)
	Rotate(radians float64)
	Gsave()
	Grestore()
	SetColor(r, g, b float64)
	SetGray(g float64)
	SetDash(on, off float64)
	SetLineWidth(w float64)
	Fill(retain bool)
	Stroke()
	Show(s string)
	StringWidth(s string) float64
}

// OverdrawRecord is a deferred drawing command enqueued by fill/stroke when
// the stave is still being composed (spec §4.7 "enqueue an overdraw record
// ... to be emitted after the stave's notes are rendered").
type OverdrawRecord struct {
	Fill       bool
	Retain     bool
	Color      [3]float64
	Gray       float64
	UseGray    bool
	Dash       [2]float64
	LineWidth  float64
	YOrigin    float64
	PathPoints [][2]float64
}

// Interp executes draw procedures against a shared operand stack, a small
// variables array, and a bounded call-depth counter (spec §4.7; grounded on
// internal/cpu/cpu.go's register/stack/cycle-bounded execution loop).
type Interp struct {
	stack []Value
	vars  [maxVars]Value
	depth int

	env   Env
	sink  PathSink
	defer_ bool // true while composing a stave: fill/stroke enqueue overdraw instead of emitting directly

	Overdraws []OverdrawRecord
	pathPts   [][2]float64
}

// New returns an interpreter bound to env (context accessors) and sink
// (path/rendering emission). deferDraw, when true, makes fill/stroke
// enqueue OverdrawRecords instead of calling sink immediately.
func New(env Env, sink PathSink, deferDraw bool) *Interp {
	return &Interp{env: env, sink: sink, defer_: deferDraw}
}

// Run executes proc from item 0 with args pushed onto the stack first
// (bottom to top), matching a draw-invocation's argument vector (spec §3
// "Draw invocation").
func (ip *Interp) Run(proc *Proc, args []Value) error {
	if ip.depth >= maxCallDepth {
		return fmt.Errorf("drawvm: ERR151 recursion depth %d exceeds limit %d", ip.depth, maxCallDepth)
	}
	ip.depth++
	defer func() { ip.depth-- }()

	for _, a := range args {
		if err := ip.push(a); err != nil {
			return err
		}
	}
	return ip.exec(proc, 0, len(proc.Items))
}

// exec runs items[from:to) of proc, used both for top-level procedures and
// for nested code blocks referenced by Jump.
func (ip *Interp) exec(proc *Proc, from, to int) error {
	for pc := from; pc < to; pc++ {
		it := proc.Items[pc]
		switch it.Op {
		case OpLiteralNumber, OpLiteralText, OpLiteralCode:
			if err := ip.push(it.Operand); err != nil {
				return err
			}
			continue
		}
		if err := ip.checkStack(it.Op); err != nil {
			return err
		}
		if err := ip.dispatch(proc, it); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interp) checkStack(op Op) error {
	want, ok := stackReq[op]
	if !ok {
		return nil
	}
	if len(ip.stack) < len(want) {
		return &StackError{Op: op, Stack: ip.stack, Want: want, Code: "ERR149"}
	}
	base := len(ip.stack) - len(want)
	for i, k := range want {
		if k == KindAny {
			continue
		}
		if ip.stack[base+i].Kind != k {
			return &StackError{Op: op, Stack: ip.stack, Want: want, Code: "ERR150"}
		}
	}
	return nil
}

func (ip *Interp) push(v Value) error {
	if len(ip.stack) >= maxStack {
		return fmt.Errorf("drawvm: ERR152 operand stack overflow (max %d)", maxStack)
	}
	ip.stack = append(ip.stack, v)
	return nil
}

func (ip *Interp) pop() Value {
	v := ip.stack[len(ip.stack)-1]
	ip.stack = ip.stack[:len(ip.stack)-1]
	return v
}

func (ip *Interp) popN(n int) []Value {
	base := len(ip.stack) - n
	out := append([]Value(nil), ip.stack[base:]...)
	ip.stack = ip.stack[:base]
	return out
}
