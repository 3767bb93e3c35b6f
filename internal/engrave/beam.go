package engrave

import "scorecraft/internal/ir"

// BeamGroup is a run of notes sharing one beam (spec §4.1/§4.3 "beam stem-
// levelling"), built by the caller from consecutive non-rest notes between
// BeamBreak items.
type BeamGroup struct {
	Notes []*ir.Note
	Dir   StemDir
}

// LevelStems nudges every member of a beam group to the group's single
// resolved direction, overriding any per-note coupled flag that would
// otherwise split the beam — spec §4.3's beam-stem-levelling transform runs
// after chord sort/accidental packing, once a beam's overall direction is
// known from the majority of its members' natural stem direction.
func LevelStems(g *BeamGroup) {
	if len(g.Notes) == 0 {
		return
	}
	up, down := 0, 0
	for _, n := range g.Notes {
		if natural(n) == StemUp {
			up++
		} else {
			down++
		}
	}
	g.Dir = StemDown
	if up >= down {
		g.Dir = StemUp
	}
	for _, n := range g.Notes {
		if g.Dir == StemUp {
			n.Flags |= ir.FlagStemUp
		} else {
			n.Flags &^= ir.FlagStemUp
		}
	}
}

// natural reports a note's stem direction ignoring beam/coupling overrides,
// purely from its stave-pitch against the stem-swap level — used to find a
// beam group's majority direction before LevelStems commits it.
func natural(n *ir.Note) StemDir {
	if n.StavePitch >= ir.StemSwapPitch {
		return StemDown
	}
	return StemUp
}

// CollectBeamGroups walks a bar and partitions its notes into runs separated
// by BeamBreak items or by a rest, stemless or grace note; other non-note
// items do not end a run. Only runs of two or more notes become groups. This
// mirrors the primary-beam grouping the native reader attaches via ';' (spec
// §4.1 step (h)).
func CollectBeamGroups(bar *ir.Bar) []*BeamGroup {
	var groups []*BeamGroup
	cur := &BeamGroup{}
	flush := func() {
		if len(cur.Notes) > 1 {
			groups = append(groups, cur)
		}
		cur = &BeamGroup{}
	}
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch v := it.(type) {
		case *ir.Note:
			if v.Flags&ir.FlagStemless != 0 || v.Flags&ir.FlagGrace != 0 || v.Flags&ir.FlagNoPlay != 0 {
				flush()
				return true
			}
			cur.Notes = append(cur.Notes, v)
		case *ir.BeamBreak:
			flush()
		default:
			// non-note structural items (clefs, barlines, text) don't break
			// a beam in progress; only an explicit break or a rest, stemless
			// or grace note does, matched by the flags above.
		}
		return true
	})
	flush()
	return groups
}
