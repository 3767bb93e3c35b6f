package drawvm

import (
	"fmt"
	"math"
	"strconv"
)

// dispatch executes a single already-stack-checked item, mirroring
// internal/cpu/cpu.go's ExecuteInstruction opcode switch.
func (ip *Interp) dispatch(proc *Proc, it Item) error {
	switch it.Op {
	case OpNop:
		return nil

	// Arithmetic
	case OpAdd:
		b, a := ip.pop(), ip.pop()
		return ip.push(numberValue(a.Num + b.Num))
	case OpSub:
		b, a := ip.pop(), ip.pop()
		return ip.push(numberValue(a.Num - b.Num))
	case OpMul:
		b, a := ip.pop(), ip.pop()
		return ip.push(numberValue(int64(a.Float() * b.Float() * 1000)))
	case OpDiv:
		b, a := ip.pop(), ip.pop()
		if b.Num == 0 {
			return fmt.Errorf("drawvm: ERR153 division by zero in draw procedure")
		}
		return ip.push(numberValue(int64(a.Float() / b.Float() * 1000)))
	case OpNeg:
		a := ip.pop()
		return ip.push(numberValue(-a.Num))
	case OpSqrt:
		a := ip.pop()
		return ip.push(numberValue(int64(math.Sqrt(a.Float()) * 1000)))
	case OpSin:
		a := ip.pop()
		return ip.push(numberValue(int64(math.Sin(a.Float()*math.Pi/180) * 1000)))
	case OpCos:
		a := ip.pop()
		return ip.push(numberValue(int64(math.Cos(a.Float()*math.Pi/180) * 1000)))

	// Comparison
	case OpLt:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(a.Num < b.Num))
	case OpLe:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(a.Num <= b.Num))
	case OpEq:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(valuesEqual(a, b)))
	case OpNe:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(!valuesEqual(a, b)))
	case OpGe:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(a.Num >= b.Num))
	case OpGt:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(a.Num > b.Num))

	// Logical
	case OpAnd:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(a.truthy() && b.truthy()))
	case OpOr:
		b, a := ip.pop(), ip.pop()
		return ip.push(boolValue(a.truthy() || b.truthy()))
	case OpNot:
		a := ip.pop()
		return ip.push(boolValue(!a.truthy()))

	// Stack
	case OpDup:
		a := ip.pop()
		if err := ip.push(a); err != nil {
			return err
		}
		return ip.push(a)
	case OpPop:
		ip.pop()
		return nil
	case OpExch:
		b, a := ip.pop(), ip.pop()
		if err := ip.push(b); err != nil {
			return err
		}
		return ip.push(a)
	case OpCopy:
		n := int(ip.pop().Num / 1000)
		if n < 0 || n > len(ip.stack) {
			return fmt.Errorf("drawvm: ERR154 copy count %d out of range", n)
		}
		base := len(ip.stack) - n
		for _, v := range ip.stack[base:] {
			if err := ip.push(v); err != nil {
				return err
			}
		}
		return nil
	case OpRoll:
		j := int(ip.pop().Num / 1000)
		n := int(ip.pop().Num / 1000)
		if n < 0 || n > len(ip.stack) {
			return fmt.Errorf("drawvm: ERR154 roll count %d out of range", n)
		}
		base := len(ip.stack) - n
		seg := ip.stack[base:]
		rolled := rollSlice(seg, j)
		copy(ip.stack[base:], rolled)
		return nil

	// Control flow
	case OpIf:
		n := ip.pop() // condition
		c := ip.pop() // code pointer
		if n.truthy() {
			return ip.runBlock(proc, c.Code)
		}
		return nil
	case OpIfElse:
		n := ip.pop()
		elseC, thenC := ip.pop(), ip.pop()
		if n.truthy() {
			return ip.runBlock(proc, thenC.Code)
		}
		return ip.runBlock(proc, elseC.Code)
	case OpRepeat:
		n := ip.pop()
		c := ip.pop()
		count := int(n.Num / 1000)
		for i := 0; i < count; i++ {
			if err := ip.runBlock(proc, c.Code); err == errExit {
				break
			} else if err != nil {
				return err
			}
		}
		return nil
	case OpLoop:
		c := ip.pop()
		for {
			if err := ip.runBlock(proc, c.Code); err == errExit {
				return nil
			} else if err != nil {
				return err
			}
		}
	case OpExit:
		return errExit

	// Variable
	case OpDef:
		name := ip.pop()
		val := ip.pop()
		if name.Var < 0 || name.Var >= maxVars {
			return fmt.Errorf("drawvm: ERR155 variable index %d out of range", name.Var)
		}
		ip.vars[name.Var] = val
		return nil
	case OpVarRef:
		idx := it.Operand.Var
		if idx < 0 || idx >= maxVars {
			return fmt.Errorf("drawvm: ERR155 variable index %d out of range", idx)
		}
		return ip.push(ip.vars[idx])

	// Path building
	case OpMoveto:
		y, x := ip.pop(), ip.pop()
		ip.pathPts = [][2]float64{{x.Float(), y.Float()}}
		ip.sink.MoveTo(x.Float(), y.Float())
		return nil
	case OpLineto:
		y, x := ip.pop(), ip.pop()
		ip.pathPts = append(ip.pathPts, [2]float64{x.Float(), y.Float()})
		ip.sink.LineTo(x.Float(), y.Float())
		return nil
	case OpCurveto:
		vs := ip.popN(6)
		ip.pathPts = append(ip.pathPts, [2]float64{vs[4].Float(), vs[5].Float()})
		ip.sink.CurveTo(vs[0].Float(), vs[1].Float(), vs[2].Float(), vs[3].Float(), vs[4].Float(), vs[5].Float())
		return nil
	case OpRMoveto:
		y, x := ip.pop(), ip.pop()
		ip.sink.MoveTo(x.Float(), y.Float())
		return nil
	case OpRLineto:
		y, x := ip.pop(), ip.pop()
		ip.sink.LineTo(x.Float(), y.Float())
		return nil
	case OpRCurveto:
		vs := ip.popN(6)
		ip.sink.CurveTo(vs[0].Float(), vs[1].Float(), vs[2].Float(), vs[3].Float(), vs[4].Float(), vs[5].Float())
		return nil
	case OpTranslate:
		y, x := ip.pop(), ip.pop()
		ip.sink.Translate(x.Float(), y.Float())
		return nil

	// State
	case OpSetColor:
		b, g, r := ip.pop(), ip.pop(), ip.pop()
		ip.sink.SetColor(r.Float(), g.Float(), b.Float())
		return nil
	case OpSetGray:
		g := ip.pop()
		ip.sink.SetGray(g.Float())
		return nil
	case OpSetDash:
		off, on := ip.pop(), ip.pop()
		ip.sink.SetDash(on.Float(), off.Float())
		return nil
	case OpSetLineWidth:
		w := ip.pop()
		ip.sink.SetLineWidth(w.Float())
		return nil
	case OpRotate:
		r := ip.pop()
		ip.sink.Rotate(r.Float())
		return nil
	case OpGsave:
		ip.sink.Gsave()
		return nil
	case OpGrestore:
		ip.sink.Grestore()
		return nil
	case OpCurrentColor, OpCurrentGray, OpCurrentDash, OpCurrentLineWidth, OpCurrentPoint:
		// Read-only accessors; the sink's state is not queried and 0 is pushed.
		return ip.push(numberValue(0))

	// Rendering
	case OpFill:
		ip.enqueueOrEmit(true, false)
		return nil
	case OpFillRetain:
		ip.enqueueOrEmit(true, true)
		return nil
	case OpStroke:
		ip.enqueueOrEmit(false, false)
		return nil
	case OpShow:
		s := ip.pop()
		ip.sink.Show(s.Text)
		return nil
	case OpStringWidth:
		s := ip.pop()
		return ip.push(numberValue(int64(ip.sink.StringWidth(s.Text) * 1000)))
	case OpCvs:
		n := ip.pop()
		return ip.push(textValue(strconv.FormatFloat(n.Float(), 'g', -1, 64)))

	default:
		if isEnvAccessor(it.Op) {
			return ip.push(numberValue(int64(ip.env.Accessor(it.Op) * 1000)))
		}
		return fmt.Errorf("drawvm: ERR156 unimplemented operator %s", it.Op)
	}
}

// errExit is a sentinel propagated by OpExit up through OpRepeat/OpLoop to
// terminate the enclosing loop without treating it as a real error.
var errExit = fmt.Errorf("drawvm: loop exit")

func (ip *Interp) runBlock(proc *Proc, start int) error {
	end := len(proc.Items)
	for i := start; i < len(proc.Items); i++ {
		if proc.Items[i].Jump != 0 && proc.Items[i].Jump < start {
			end = i
			break
		}
	}
	return ip.exec(proc, start, end)
}

func (ip *Interp) enqueueOrEmit(fill, retain bool) {
	rec := OverdrawRecord{Fill: fill, Retain: retain, PathPoints: ip.pathPts}
	if ip.defer_ {
		ip.Overdraws = append(ip.Overdraws, rec)
		return
	}
	if fill {
		ip.sink.Fill(retain)
	} else {
		ip.sink.Stroke()
	}
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNumber:
		return a.Num == b.Num
	case KindText:
		return a.Text == b.Text
	case KindCode:
		return a.Code == b.Code
	case KindVarName:
		return a.Var == b.Var
	default:
		return true
	}
}

func rollSlice(s []Value, j int) []Value {
	n := len(s)
	if n == 0 {
		return s
	}
	j = ((j % n) + n) % n
	out := make([]Value, n)
	for i, v := range s {
		out[(i+j)%n] = v
	}
	return out
}

func isEnvAccessor(op Op) bool {
	switch op {
	case OpAccLeft, OpHeadLeft, OpHeadRight, OpHeadTop, OpHeadBottom, OpLineTop, OpLineBottom,
		OpStemBottom, OpStemTop, OpStaveSize, OpStaveSpace, OpStaveStart, OpLeftBarX, OpLineLength,
		OpPageLength, OpPageNumber, OpBarNumber, OpSystemDepth, OpOriginX, OpOriginY, OpTopLeft,
		OpMagnification, OpFontSize, OpGapType, OpGapX, OpGapY:
		return true
	default:
		return false
	}
}
