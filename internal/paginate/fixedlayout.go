package paginate

import (
	"fmt"

	"scorecraft/internal/ir"
)

// maxLayoutStackDepth bounds the repeatcount/repeatptr stack depth of the
// fixed-layout interpreter (spec §4.5 "Fixed layout support... a stack
// bounded in depth").
const maxLayoutStackDepth = 16

// layoutFrame is one entry of the repeat stack: the instruction index to
// loop back to and the remaining iteration count.
type layoutFrame struct {
	returnTo  int
	remaining int
}

// RunFixedLayout interprets a movement's optional layout program (spec
// §4.5), calling onBarCount(n) for each barcount token and onNewPage() for
// each newpage token, in program order with repeatcount/repeatptr pairs
// expanded.
func RunFixedLayout(tokens []ir.LayoutToken, onBarCount func(n int), onNewPage func()) error {
	var stack []layoutFrame
	pc := 0
	for pc < len(tokens) {
		tok := tokens[pc]
		switch tok.Op {
		case ir.LayoutBarCount:
			onBarCount(tok.Value)
			pc++
		case ir.LayoutNewPage:
			onNewPage()
			pc++
		case ir.LayoutRepeatCount:
			if len(stack) >= maxLayoutStackDepth {
				return fmt.Errorf("paginate: fixed-layout repeat stack exceeded depth %d", maxLayoutStackDepth)
			}
			stack = append(stack, layoutFrame{returnTo: pc + 1, remaining: tok.Value - 1})
			pc++
		case ir.LayoutRepeatPtr:
			if len(stack) == 0 {
				return fmt.Errorf("paginate: repeatptr with no matching repeatcount")
			}
			top := &stack[len(stack)-1]
			if top.remaining > 0 {
				top.remaining--
				pc = top.returnTo
			} else {
				stack = stack[:len(stack)-1]
				pc++
			}
		}
	}
	return nil
}
