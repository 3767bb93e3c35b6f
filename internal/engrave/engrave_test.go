package engrave

import (
	"testing"

	"scorecraft/internal/ir"
)

func makeChordBar(pitches []int) (*ir.Bar, ir.Ref) {
	bar := ir.NewBar()
	var noteRef ir.Ref
	for i, p := range pitches {
		if i == 0 {
			n := &ir.Note{Type: ir.NoteCrotchet, Ticks: ir.BaseLength(ir.NoteCrotchet), AbsPitch: p, StavePitch: p}
			noteRef = bar.Append(n)
			continue
		}
		bar.Append(&ir.ChordContinuation{AbsPitch: p, StavePitch: p})
	}
	bar.Append(&ir.Barline{})
	return bar, noteRef
}

func chordPitchOrder(bar *ir.Bar, noteRef ir.Ref) []int {
	var out []int
	for _, r := range ir.ChordMembers(bar, noteRef) {
		switch it := bar.Items[r].(type) {
		case *ir.Note:
			out = append(out, it.AbsPitch)
		case *ir.ChordContinuation:
			out = append(out, it.AbsPitch)
		}
	}
	return out
}

func TestSortChordStemUpDescends(t *testing.T) {
	bar, noteRef := makeChordBar([]int{96, 108, 100})
	SortChord(bar, noteRef, StemUp)
	got := chordPitchOrder(bar, noteRef)
	for i := 1; i < len(got); i++ {
		if got[i] > got[i-1] {
			t.Fatalf("expected strictly descending pitch order for stem-up chord, got %v", got)
		}
	}
	if _, ok := bar.Items[noteRef].(*ir.Note); !ok {
		t.Fatalf("expected the original note ref to remain variant Note after sort")
	}
}

func TestSortChordStemDownAscends(t *testing.T) {
	bar, noteRef := makeChordBar([]int{108, 96, 100})
	SortChord(bar, noteRef, StemDown)
	got := chordPitchOrder(bar, noteRef)
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("expected strictly ascending pitch order for stem-down chord, got %v", got)
		}
	}
}

func TestResolveStemDirectionCoupledOverridesDefault(t *testing.T) {
	n := &ir.Note{StavePitch: 0, Flags: ir.FlagCoupledDown}
	if got := ResolveStemDirection(n, nil, nil, ir.StemSwapPitch); got != StemDown {
		t.Fatalf("expected coupled-down flag to force StemDown, got %v", got)
	}
}

func TestResolveStemDirectionStemSwapLevel(t *testing.T) {
	below := &ir.Note{StavePitch: ir.StemSwapPitch - 1}
	above := &ir.Note{StavePitch: ir.StemSwapPitch}
	if got := ResolveStemDirection(below, nil, nil, ir.StemSwapPitch); got != StemUp {
		t.Fatalf("expected a note below the stem-swap level to default stem-up, got %v", got)
	}
	if got := ResolveStemDirection(above, nil, nil, ir.StemSwapPitch); got != StemDown {
		t.Fatalf("expected a note at/above the stem-swap level to default stem-down, got %v", got)
	}
}

func TestPackAccidentalsClashingPairGetsPushedLeft(t *testing.T) {
	bar, noteRef := makeChordBar([]int{100, 110})
	note := bar.Items[noteRef].(*ir.Note)
	note.Accidental = ir.AccSharp
	cont := bar.Items[ir.Next(note)].(*ir.ChordContinuation)
	cont.Accidental = ir.AccSharp

	members := ir.ChordMembers(bar, noteRef)
	cols := PackAccidentals(bar, members)
	if len(cols) != 2 {
		t.Fatalf("expected 2 packed accidental columns, got %d", len(cols))
	}
	if cols[0].Offset != 0 {
		t.Fatalf("expected the top accidental to stay at offset 0, got %d", cols[0].Offset)
	}
	if cols[1].Offset >= 0 {
		t.Fatalf("expected the clashing lower accidental to be pushed left, got offset %d", cols[1].Offset)
	}
}

func TestDetectSecondsInvertsLowerHeadAndSetsDotRight(t *testing.T) {
	// StavePitch gap of exactly ir.ToneUnit is a diatonic second: the lower
	// member must flip to the other side of the stem and the whole chord
	// gets FlagDotRight so augmentation dots clear the inverted head.
	bar, noteRef := makeChordBar([]int{104, 100})
	members := ir.ChordMembers(bar, noteRef)
	if !DetectSeconds(bar, members) {
		t.Fatal("expected a diatonic second to be detected")
	}
	note := bar.Items[noteRef].(*ir.Note)
	cont := bar.Items[ir.Next(note)].(*ir.ChordContinuation)
	if cont.Flags&ir.FlagInvertHead == 0 {
		t.Fatalf("expected the lower member's notehead to be inverted")
	}
	if note.Flags&ir.FlagDotRight == 0 || cont.Flags&ir.FlagDotRight == 0 {
		t.Fatalf("expected every chord member to carry FlagDotRight")
	}
}

func TestDetectSecondsNoClashLeavesFlagsUnset(t *testing.T) {
	bar, noteRef := makeChordBar([]int{108, 96})
	members := ir.ChordMembers(bar, noteRef)
	if DetectSeconds(bar, members) {
		t.Fatal("expected no second to be detected for a wide interval")
	}
	note := bar.Items[noteRef].(*ir.Note)
	if note.Flags&ir.FlagInvertHead != 0 || note.Flags&ir.FlagDotRight != 0 {
		t.Fatalf("expected no flags set when no clash was found")
	}
}

func TestLevelStemsUsesMajorityDirection(t *testing.T) {
	n1 := &ir.Note{StavePitch: ir.StemSwapPitch - 10}
	n2 := &ir.Note{StavePitch: ir.StemSwapPitch - 10}
	n3 := &ir.Note{StavePitch: ir.StemSwapPitch + 10}
	g := &BeamGroup{Notes: []*ir.Note{n1, n2, n3}}
	LevelStems(g)
	if g.Dir != StemUp {
		t.Fatalf("expected majority stem-up direction, got %v", g.Dir)
	}
	for i, n := range g.Notes {
		if n.Flags&ir.FlagStemUp == 0 {
			t.Fatalf("note %d not leveled to stem-up", i)
		}
	}
}

func TestCollectBeamGroupsBreaksOnStemlessNote(t *testing.T) {
	bar := ir.NewBar()
	bar.Append(&ir.Note{Type: ir.NoteQuaver})
	bar.Append(&ir.Note{Type: ir.NoteQuaver})
	bar.Append(&ir.Note{Type: ir.NoteQuaver, Flags: ir.FlagStemless})
	bar.Append(&ir.Note{Type: ir.NoteQuaver})
	bar.Append(&ir.Note{Type: ir.NoteQuaver})
	bar.Append(&ir.Barline{})

	groups := CollectBeamGroups(bar)
	if len(groups) != 2 {
		t.Fatalf("expected 2 beam groups split by the stemless note, got %d", len(groups))
	}
}
