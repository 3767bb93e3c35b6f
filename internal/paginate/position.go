// Package paginate builds per-bar position tables (spec §4.4) and assembles
// them into systems and pages (spec §4.5). Grounded on internal/ppu/scanline.go's
// StepPPU/stepDot/renderDot per-scanline state machine, generalized from a
// fixed-resolution dot clock to a variable-width bar/system/page layout walk,
// and on internal/emulator/emulator.go's top-level run loop for the overall
// new-movement/new-system/in-system/done-system/done-movement driver.
package paginate

import "scorecraft/internal/ir"

// Default per-item widths used by the extras pass (spec §4.4 step 5, "7.25pt
// default, 7.4/11/13pt for three classes of barline, 12.5 for left-repeat").
const (
	usedWidthDefault       = 7250
	usedWidthBarlineSingle = 7400
	usedWidthBarlineDouble = 11000
	usedWidthBarlineFinal  = 13000
	usedWidthLeftRepeat    = 12500
)

// BuildPositionTable runs the bar position table algorithm of spec §4.4 over
// a single bar and returns its finalised PositionVector (also stored onto
// bar.Position, replacing — never appending to — any prior attempt, per the
// spec's lazy-allocate/replace-on-respacing invariant).
func BuildPositionTable(bar *ir.Bar, mv *ir.Movement, stretch float64) *ir.PositionVector {
	if bar.Multi == -1 {
		pv := &ir.PositionVector{Width: 0}
		bar.Position = pv
		return pv
	}
	if bar.Multi > 1 {
		return buildMultiRestPositionTable(bar, stretch)
	}
	slots := basicPositions(bar, mv)
	noteSpacingPass(bar, mv, slots)
	stemAdjacencyPass(bar, slots)
	slots = extrasPass(bar, mv, slots)
	width, forceBreak := finalise(bar, slots, stretch)

	pv := &ir.PositionVector{Slots: slots, Width: width, ForceBreak: forceBreak}
	bar.Position = pv
	return pv
}

// buildMultiRestPositionTable is the collapsed-bar counterpart of
// BuildPositionTable for a bar whose Multi field marks it as the leading bar
// of a multi-bar rest run (spec §4.4 step 1): it skips the note-spacing and
// stem-adjacency passes entirely in favour of the fixed rest-style width
// table, still honouring a [newline]/[newpage] seen inside the run.
func buildMultiRestPositionTable(bar *ir.Bar, stretch float64) *ir.PositionVector {
	width := int(float64(multiRestWidth(bar.Multi)) * stretch)
	forceBreak := false
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch it.(type) {
		case *ir.NewLine, *ir.NewPage:
			forceBreak = true
		}
		return true
	})
	pv := &ir.PositionVector{Width: width, ForceBreak: forceBreak}
	bar.Position = pv
	return pv
}

// basicPositions is spec §4.4 step 2: walk the bar accumulating musical
// offset, inserting (or reusing) a position slot for every distinct
// non-grace note offset.
func basicPositions(bar *ir.Bar, mv *ir.Movement) []ir.PositionSlot {
	var slots []ir.PositionSlot
	offset := 0
	index := map[int]int{}

	ensure := func(off int) *ir.PositionSlot {
		if i, ok := index[off]; ok {
			return &slots[i]
		}
		slots = append(slots, ir.PositionSlot{Offset: off})
		index[off] = len(slots) - 1
		return &slots[len(slots)-1]
	}

	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		n, ok := it.(*ir.Note)
		if !ok {
			return true
		}
		if n.Flags&ir.FlagGrace == 0 {
			ensure(offset)
			offset += n.Ticks
		}
		return true
	})

	sortSlotsByOffset(slots)
	return slots
}

func sortSlotsByOffset(slots []ir.PositionSlot) {
	for i := 1; i < len(slots); i++ {
		key := slots[i]
		j := i - 1
		for j >= 0 && slots[j].Offset > key.Offset {
			slots[j+1] = slots[j]
			j--
		}
		slots[j+1] = key
	}
}

// typeWidth is spec §4.4 step 3's type-width contribution: base note-spacing
// plus a dotted-note surcharge, scaled for tuplets by comparing the note's
// actual tick length against the undotted base length of its NoteType.
func typeWidth(n *ir.Note, mv *ir.Movement) int {
	base := mv.NoteSpacing[n.Type]
	if n.Dots > 0 {
		base += base / 3
	}
	if n.Flags&ir.FlagCoupledUp != 0 && n.Flags&ir.FlagInvertHead != 0 {
		base += base / 6 // chord-invert-when-stem-up surcharge
	}
	undotted := ir.BaseLength(n.Type)
	if undotted > 0 && n.Ticks != undotted {
		ratio := float64(n.Ticks) / float64(undotted)
		base = int(float64(base) * ratio)
	}
	return base
}

// noteSpacingPass is spec §4.4 step 3: walk the bar a second time, making
// the gap after each slot the widest type-width among the notes starting at
// that slot (at least 1000 millipoints); the following slot's notes do not
// affect that gap.
func noteSpacingPass(bar *ir.Bar, mv *ir.Movement, slots []ir.PositionSlot) {
	want := make([]int, len(slots))
	offset := 0
	cur := 0
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		n, ok := it.(*ir.Note)
		if !ok {
			return true
		}
		if n.Flags&ir.FlagGrace != 0 {
			return true
		}
		for cur < len(slots) && slots[cur].Offset < offset {
			cur++
		}
		if cur < len(slots) && slots[cur].Offset == offset {
			w := typeWidth(n, mv)
			if n.Flags&ir.FlagInvertHead != 0 {
				w += mv.NoteSpacing[n.Type] / 8 // inverted-notehead extra; secondary beam breaks add no space
			}
			if w > want[cur] {
				want[cur] = w
			}
		}
		offset += n.Ticks
		return true
	})

	for i := 1; i < len(slots); i++ {
		gap := want[i-1]
		if gap < 1000 {
			gap = 1000 // minimum width
		}
		slots[i].XOff = slots[i-1].XOff + gap
	}
}

// stemAdjacencyPass is spec §4.4 step 4: nudge adjacent slots by ±1 point
// when the per-stave stem direction masks flip between them.
func stemAdjacencyPass(bar *ir.Bar, slots []ir.PositionSlot) {
	for i := 1; i < len(slots); i++ {
		if slots[i-1].StemMask != 0 && slots[i].StemMask != 0 && slots[i-1].StemMask != slots[i].StemMask {
			slots[i].XOff += 1000 // one point, in millipoints
		}
	}
}

// extrasPass is spec §4.4 step 5: materialise auxiliary slots (accidentals,
// grace notes, signatures, repeats, bars) in the fixed priority order named
// by ir.AuxID, each carrying its own "used width" ahead of the slot it
// precedes.
func extrasPass(bar *ir.Bar, mv *ir.Movement, slots []ir.PositionSlot) []ir.PositionSlot {
	offset := 0
	var out []ir.PositionSlot

	insertBefore := func(auxID ir.AuxID, width int, beforeXOff int) {
		out = append(out, ir.PositionSlot{AuxID: auxID, XOff: beforeXOff - width})
	}

	slotAt := func(off int) (ir.PositionSlot, bool) {
		for _, s := range slots {
			if s.AuxID == 0 && s.Offset == off {
				return s, true
			}
		}
		return ir.PositionSlot{}, false
	}

	// nearestXOff finds the x-offset of the last real slot at or before off,
	// for aux items (dotted-bar/tick/comma/caesura) that sit between notes
	// or at bar end rather than exactly on a note's onset.
	nearestXOff := func(off int) int {
		x := 0
		for _, s := range slots {
			if s.AuxID == 0 && s.Offset <= off {
				x = s.XOff
			}
		}
		return x
	}

	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch v := it.(type) {
		case *ir.Note:
			if v.Flags&ir.FlagGrace != 0 {
				if s, ok := slotAt(offset); ok {
					insertBefore(ir.AuxGraceSlot(0), usedWidthDefault, s.XOff)
				}
				return true
			}
			if v.Accidental != ir.AccNone && v.AccidentalVisible {
				if s, ok := slotAt(offset); ok {
					insertBefore(ir.AuxAccidental, usedWidthDefault, s.XOff)
				}
			}
			offset += v.Ticks
		case *ir.ClefChange:
			if s, ok := slotAt(offset); ok {
				insertBefore(ir.AuxClef, usedWidthDefault, s.XOff)
			}
		case *ir.KeySignature:
			if s, ok := slotAt(offset); ok {
				insertBefore(ir.AuxKey0, usedWidthDefault, s.XOff)
			}
		case *ir.TimeSignature:
			if s, ok := slotAt(offset); ok {
				insertBefore(ir.AuxTime0, usedWidthDefault, s.XOff)
			}
		case *ir.RepeatLeft:
			if s, ok := slotAt(offset); ok {
				insertBefore(ir.AuxLeftRepeat, usedWidthLeftRepeat, s.XOff)
			}
		case *ir.RepeatRight:
			if s, ok := slotAt(offset); ok {
				insertBefore(ir.AuxRightRepeat, usedWidthDefault, s.XOff)
			}
		case *ir.Mark:
			var auxID ir.AuxID
			switch v.Symbol {
			case ir.MarkDottedBar:
				auxID = ir.AuxDottedBar
			case ir.MarkTick:
				auxID = ir.AuxTick
			case ir.MarkComma:
				auxID = ir.AuxComma
			case ir.MarkCaesura:
				auxID = ir.AuxCaesura
			}
			out = append(out, ir.PositionSlot{AuxID: auxID, XOff: nearestXOff(offset) + usedWidthDefault})
		}
		return true
	})

	merged := append(append([]ir.PositionSlot{}, slots...), out...)
	sortSlotsForFinalise(merged)
	return merged
}

// sortSlotsForFinalise orders auxiliary slots before the main slots they
// precede, by ascending XOff (testable property 5: "aux-items-first by
// priority, then main slots by musical offset").
func sortSlotsForFinalise(slots []ir.PositionSlot) {
	for i := 1; i < len(slots); i++ {
		key := slots[i]
		j := i - 1
		for j >= 0 && slots[j].XOff > key.XOff {
			slots[j+1] = slots[j]
			j--
		}
		slots[j+1] = key
	}
}

// finalise is spec §4.4 step 8: convert to absolute offsets (already done
// incrementally above), apply explicit [space] overrides, and compute the
// total bar width; a [newline]/[newpage] seen mid-bar forces an immediate
// break by returning forceBreak = true.
func finalise(bar *ir.Bar, slots []ir.PositionSlot, stretch float64) (width int, forceBreak bool) {
	for i := range slots {
		if slots[i].SpaceOverride {
			slots[i].XOff += slots[i].Space
		}
		if stretch != 1.0 {
			slots[i].XOff = int(float64(slots[i].XOff) * stretch)
		}
	}
	if len(slots) > 0 {
		width = slots[len(slots)-1].XOff
	}
	width += endAdjustment(bar)

	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch it.(type) {
		case *ir.NewLine, *ir.NewPage:
			forceBreak = true
		}
		return true
	})
	return width, forceBreak
}

// endAdjustment is spec §4.4 step 7: extra trailing space for a double
// barline, scaled by which barline type closes the bar.
func endAdjustment(bar *ir.Bar) int {
	if bar.TailRef == ir.NoRef {
		return usedWidthDefault
	}
	bl, ok := bar.Items[bar.TailRef].(*ir.Barline)
	if !ok {
		return usedWidthDefault
	}
	switch bl.Type {
	case ir.BarlineDouble:
		return usedWidthBarlineDouble
	case ir.BarlineEnding:
		return usedWidthBarlineFinal
	default:
		return usedWidthBarlineSingle
	}
}
