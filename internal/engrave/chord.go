// Package engrave performs the per-bar engraving transforms of spec §4.3:
// chord sorting and accidental layout, stem direction selection, and a
// stem-levelling pass over completed beams. Grounded on internal/ppu/ppu.go's
// RenderFrame/renderBackgroundLayer/renderSprites layered, priority-ordered
// compositing passes, generalized from fixed screen layers to an ordered
// sequence of per-chord and per-beam passes over the bar-item chain.
package engrave

import (
	"slices"

	"scorecraft/internal/ir"
)

// StemDir is the resolved stem direction of a note or chord.
type StemDir int

const (
	StemUp StemDir = iota
	StemDown
)

// ResolveStemDirection implements the post_note priority order of spec §4.1:
// (1) an explicit coupled-up/down flag wins outright, (2) a beamed note
// follows the beam's already-decided direction, (3) a tied continuation
// follows its predecessor, (4) otherwise the note's stave-pitch is compared
// against the movement's stem-swap pitch.
func ResolveStemDirection(n *ir.Note, beamDir *StemDir, tiedFromDir *StemDir, stemSwapPitch int) StemDir {
	switch {
	case n.Flags&ir.FlagCoupledUp != 0:
		return StemUp
	case n.Flags&ir.FlagCoupledDown != 0:
		return StemDown
	case beamDir != nil:
		return *beamDir
	case n.Flags&ir.FlagTiedFrom != 0 && tiedFromDir != nil:
		return *tiedFromDir
	case n.StavePitch >= stemSwapPitch:
		return StemDown
	default:
		return StemUp
	}
}

// SortChord re-threads a chord's item chain into stem-direction order (spec
// §4.3 step 1/4, testable property 2: "after sort_chord, if stem-up then
// pitches strictly descend from first to last in item order, else strictly
// ascend; the item with variant note is always the chord's first in item
// order"). The Note item stays the chain head: when another member sorts
// first, the two exchange their pitch and accidental fields.
func SortChord(bar *ir.Bar, noteRef ir.Ref, dir StemDir) {
	members := ir.ChordMembers(bar, noteRef)
	if len(members) < 2 {
		return
	}

	rest := append([]ir.Ref(nil), members...)
	pitchOf := func(r ir.Ref) int {
		switch it := bar.Items[r].(type) {
		case *ir.Note:
			return it.AbsPitch
		case *ir.ChordContinuation:
			return it.AbsPitch
		}
		return 0
	}
	ascending := dir == StemDown
	for i := 1; i < len(rest); i++ {
		key := rest[i]
		j := i - 1
		for j >= 0 {
			less := pitchOf(rest[j]) < pitchOf(key)
			if ascending {
				less = pitchOf(rest[j]) > pitchOf(key)
			}
			if !less {
				break
			}
			rest[j+1] = rest[j]
			j--
		}
		rest[j+1] = key
	}

	if rest[0] != noteRef {
		n, c := bar.Items[noteRef].(*ir.Note), bar.Items[rest[0]].(*ir.ChordContinuation)
		n.AbsPitch, n.StavePitch, c.AbsPitch, c.StavePitch = c.AbsPitch, c.StavePitch, n.AbsPitch, n.StavePitch
		n.Accidental, n.AccidentalLeft, c.Accidental, c.AccidentalLeft = c.Accidental, c.AccidentalLeft, n.Accidental, n.AccidentalLeft
		n.AccidentalVisible, c.AccidentalVisible = c.AccidentalVisible, n.AccidentalVisible
		rest[slices.Index(rest, noteRef)], rest[0] = rest[0], noteRef
	}
	relink(bar, rest)
}

// relink rewrites the Next/Prev header links of an ordered run of items so
// the chain reads in the given order, without moving anything in the
// backing Items slice (Refs stay stable — pagination and slurs still point
// at the same indices).
func relink(bar *ir.Bar, order []ir.Ref) {
	after := ir.NoRef
	for _, r := range order {
		if n := ir.Next(bar.Items[r]); !slices.Contains(order, n) {
			after = n
		}
	}
	for i, r := range order {
		var prev, next ir.Ref = ir.NoRef, ir.NoRef
		if i > 0 {
			prev = order[i-1]
		} else {
			prev = ir.Prev(bar.Items[order[0]])
		}
		if i < len(order)-1 {
			next = order[i+1]
		} else {
			next = after
		}
		ir.SetLinks(bar.Items[r], prev, next)
	}
	if prev := ir.Prev(bar.Items[order[0]]); prev != ir.NoRef {
		ir.SetLinks(bar.Items[prev], ir.Prev(bar.Items[prev]), order[0])
	} else {
		bar.HeadRef = order[0]
	}
	if next := after; next != ir.NoRef {
		ir.SetLinks(bar.Items[next], order[len(order)-1], ir.Next(bar.Items[next]))
	} else {
		bar.TailRef = order[len(order)-1]
	}
}

// DetectSeconds implements spec §4.3 step 2: after SortChord, walk adjacent
// chord members looking for a diatonic second (a stave-pitch gap of exactly
// ir.ToneUnit). Every such pair must print on opposite sides of the stem, so
// the lower member of the pair is flipped via FlagInvertHead, and the whole
// chord is marked FlagDotRight so augmentation dots clear the inverted head.
// Reports whether any pair was found.
func DetectSeconds(bar *ir.Bar, members []ir.Ref) bool {
	if len(members) < 2 {
		return false
	}
	found := false
	for i := 1; i < len(members); i++ {
		upper, lower := members[i-1], members[i]
		if stavePitchOf(bar, upper)-stavePitchOf(bar, lower) == ir.ToneUnit {
			setInvertHead(bar, lower)
			found = true
		}
	}
	if found {
		for _, r := range members {
			setDotRight(bar, r)
		}
	}
	return found
}

func stavePitchOf(bar *ir.Bar, r ir.Ref) int {
	switch it := bar.Items[r].(type) {
	case *ir.Note:
		return it.StavePitch
	case *ir.ChordContinuation:
		return it.StavePitch
	}
	return 0
}

func setInvertHead(bar *ir.Bar, r ir.Ref) {
	switch it := bar.Items[r].(type) {
	case *ir.Note:
		it.Flags |= ir.FlagInvertHead
	case *ir.ChordContinuation:
		it.Flags |= ir.FlagInvertHead
	}
}

func setDotRight(bar *ir.Bar, r ir.Ref) {
	switch it := bar.Items[r].(type) {
	case *ir.Note:
		it.Flags |= ir.FlagDotRight
	case *ir.ChordContinuation:
		it.Flags |= ir.FlagDotRight
	}
}

// accidentalPitchWindow is the pitch-clash window used by PackAccidentals:
// 20 quarter-tones for a sharp/natural-height accidental, 24 for a flat
// (spec §4.3 step 3 "20 or 24 quarter-tones depending on accidental height").
func accidentalPitchWindow(k ir.AccidentalKind) int {
	switch k {
	case ir.AccFlat, ir.AccDoubleFlat, ir.AccHalfFlat:
		return 24
	default:
		return 20
	}
}

// AccidentalColumn is one packed accidental's resolved horizontal offset,
// more negative meaning further left of the notehead.
type AccidentalColumn struct {
	Ref    ir.Ref
	Offset int
}

// PackAccidentals runs the two-state clash packer of spec §4.3 step 3 over
// a chord's members, top (highest pitch) to bottom. Members without an
// explicit accidental, or with AccidentalLeft already set by the reader, are
// left untouched.
func PackAccidentals(bar *ir.Bar, members []ir.Ref) []AccidentalColumn {
	type entry = struct {
		ref   ir.Ref
		pitch int
		acc   ir.AccidentalKind
		fixed bool
	}
	entries := make([]entry, 0, len(members))
	for _, r := range members {
		var pitch int
		var acc ir.AccidentalKind
		var fixed bool
		switch it := bar.Items[r].(type) {
		case *ir.Note:
			pitch, acc, fixed = it.StavePitch, it.Accidental, it.AccidentalLeft != 0
		case *ir.ChordContinuation:
			pitch, acc, fixed = it.StavePitch, it.Accidental, it.AccidentalLeft != 0
		default:
			continue
		}
		if acc == ir.AccNone || fixed {
			continue
		}
		entries = append(entries, entry{r, pitch, acc, fixed})
	}
	// Top to bottom: pitch descending.
	for i := 1; i < len(entries); i++ {
		key := entries[i]
		j := i - 1
		for j >= 0 && entries[j].pitch < key.pitch {
			entries[j+1] = entries[j]
			j--
		}
		entries[j+1] = key
	}

	const stateClear = 0
	const stateRisk = 1
	state := stateClear
	cols := make([]AccidentalColumn, 0, len(entries))
	col := 0
	for i, e := range entries {
		if i > 0 {
			prev := entries[i-1]
			window := accidentalPitchWindow(e.acc)
			if prev.pitch-e.pitch < window {
				state = stateRisk
			} else {
				state = stateClear
			}
		}
		offset := 0
		if state == stateRisk {
			col--
			offset = col * 10 // one accidental-column width, left of the previous
		}
		cols = append(cols, AccidentalColumn{Ref: e.ref, Offset: offset})
	}
	tuckIn(entries, cols)
	return cols
}

// tuckIn implements the spec's "when the packed offset is small, attempt a
// tuck-in pass for naturals/flats with space above-right" refinement: a
// natural or flat whose packed offset is only one column deep is pulled back
// toward 0 if the member immediately above it is two columns or deeper,
// since there is room to tuck the shallower accidental into the gap.
func tuckIn(entries []struct {
	ref   ir.Ref
	pitch int
	acc   ir.AccidentalKind
	fixed bool
}, cols []AccidentalColumn) {
	for i := 1; i < len(cols); i++ {
		if cols[i].Offset != -10 {
			continue
		}
		acc := entries[i].acc
		if acc != ir.AccNatural && acc != ir.AccFlat && acc != ir.AccHalfFlat {
			continue
		}
		if cols[i-1].Offset <= -20 {
			cols[i].Offset = 0
		}
	}
}
