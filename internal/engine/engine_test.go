package engine

import (
	"testing"

	"scorecraft/internal/config"
	"scorecraft/internal/ir"
)

func TestLoadNativeBuildsOneStaveOfBars(t *testing.T) {
	e := New(config.Default())
	mv, err := e.LoadNative("c d e f|\ng a b c'|")
	if err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	if len(mv.Staves) != 1 {
		t.Fatalf("expected 1 stave, got %d", len(mv.Staves))
	}
	if len(mv.Staves[0].Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(mv.Staves[0].Bars))
	}
	snap := e.Snapshot()
	if !snap.Loaded || snap.Movements != 1 {
		t.Fatalf("expected snapshot to report 1 loaded movement, got %+v", snap)
	}
}

func TestEngraveSortsChordDescendingWhenStemUp(t *testing.T) {
	e := New(config.Default())
	mv, err := e.LoadNative("c|")
	if err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	bar := mv.Staves[0].Bars[0]

	// Build a chord manually: head note plus two lower continuations, to
	// exercise sort_chord's stem-up descending-order invariant (testable
	// property 2) end to end through Engine.Engrave.
	head := bar.Items[bar.HeadRef].(*ir.Note)
	head.StavePitch = ir.StaveLine1
	head.Flags |= ir.FlagCoupledUp
	c1 := &ir.ChordContinuation{StavePitch: ir.StaveLine1 - 8}
	c2 := &ir.ChordContinuation{StavePitch: ir.StaveLine1 - 16}
	r1 := bar.InsertBefore(ir.Next(bar.Items[bar.HeadRef]), c1)
	_ = bar.InsertBefore(ir.Next(bar.Items[r1]), c2)

	e.Engrave()

	var pitches []int
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch v := it.(type) {
		case *ir.Note:
			pitches = append(pitches, v.StavePitch)
		case *ir.ChordContinuation:
			pitches = append(pitches, v.StavePitch)
		default:
			return true
		}
		return true
	})
	for i := 1; i < len(pitches); i++ {
		if pitches[i] > pitches[i-1] {
			t.Fatalf("expected stem-up chord pitches descending, got %v", pitches)
		}
	}
}

func TestPaginateProducesAtLeastOnePage(t *testing.T) {
	e := New(config.Default())
	if _, err := e.LoadNative("c d e f|\nc d e f|"); err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	e.Engrave()
	pages := e.Paginate()
	if len(pages) == 0 {
		t.Fatalf("expected at least one page")
	}
	snap := e.Snapshot()
	if snap.Pages != len(pages) {
		t.Fatalf("expected snapshot page count to match, got %d vs %d", snap.Pages, len(pages))
	}
}

func TestExportMIDIRejectsUnknownMovement(t *testing.T) {
	e := New(config.Default())
	if _, err := e.ExportMIDI(0); err == nil {
		t.Fatalf("expected an error exporting MIDI with no movement loaded")
	}
}

func TestExportMIDIProducesBytesForLoadedMovement(t *testing.T) {
	e := New(config.Default())
	if _, err := e.LoadNative("c d e f|"); err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	data, err := e.ExportMIDI(0)
	if err != nil {
		t.Fatalf("ExportMIDI: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty MIDI bytes")
	}
}
