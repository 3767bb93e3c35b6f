package paginate

import "scorecraft/internal/ir"

// isWholeBarRest implements spec §4.4 step 1's coexistence predicate ("what
// may coexist with a bar's centred whole rest: key/time/newline/text/clef")
// as an explicit per-item-type check rather than a generic "mostly empty"
// heuristic (SPEC_FULL.md §12): a bar qualifies only if its single playable
// item is one whole-bar rest Note and everything else is bookkeeping that
// doesn't engrave as visible music of its own.
func isWholeBarRest(bar *ir.Bar, mv *ir.Movement) bool {
	restCount := 0
	qualifies := true
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch v := it.(type) {
		case *ir.Barline, *ir.KeySignature, *ir.TimeSignature, *ir.NewLine, *ir.NewPage, *ir.Text, *ir.ClefChange:
			// allowed to coexist with the rest
		case *ir.Note:
			if v.Flags&ir.FlagNoPlay == 0 {
				qualifies = false
				return false
			}
			restCount++
		default:
			qualifies = false
			return false
		}
		return true
	})
	if !qualifies || restCount != 1 {
		return false
	}
	want := mv.DefaultTime.MeasureLength()
	if want == 0 {
		return false
	}
	got := bar.TotalTicks()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= ir.TupletRound
}

// multiRestWidth is spec §4.4 step 1's rest-style width table: a run of 2-9
// bars prints as a compact multi-rest glyph with the bar count above it; a
// run of 10+ needs a wider glyph to fit the extra digit.
func multiRestWidth(n int) int {
	if n >= 10 {
		return 16000
	}
	return 11000
}

// DetectMultiRests scans stave's bars in bar order and collapses every
// maximal run of two or more consecutive qualifying whole-bar rests: the
// leading bar of the run records the run length in Multi, and every bar the
// run absorbs is marked with the -1 "absorbed" sentinel so BuildPositionTable
// skips it (spec §4.4 step 1, supplemented per SPEC_FULL.md §12).
func DetectMultiRests(mv *ir.Movement, stave *ir.Stave) {
	bars := stave.Bars
	i := 0
	for i < len(bars) {
		if !isWholeBarRest(bars[i], mv) {
			i++
			continue
		}
		j := i + 1
		for j < len(bars) && isWholeBarRest(bars[j], mv) {
			j++
		}
		if run := j - i; run >= 2 {
			bars[i].Multi = run
			for k := i + 1; k < j; k++ {
				bars[k].Multi = -1
			}
		}
		i = j
	}
}
