package paginate

import (
	"testing"

	"scorecraft/internal/ir"
)

func simpleBar(notes int) *ir.Bar {
	bar := ir.NewBar()
	for i := 0; i < notes; i++ {
		bar.Append(&ir.Note{Type: ir.NoteCrotchet, Ticks: ir.BaseLength(ir.NoteCrotchet)})
	}
	bar.Append(&ir.Barline{})
	return bar
}

func TestBuildPositionTableSlotsAreOffsetOrdered(t *testing.T) {
	mv := ir.NewMovement(0)
	bar := simpleBar(4)
	pv := BuildPositionTable(bar, mv, 1.0)
	if len(pv.Slots) == 0 {
		t.Fatal("expected at least one position slot")
	}
	for i := 1; i < len(pv.Slots); i++ {
		if pv.Slots[i].XOff < pv.Slots[i-1].XOff {
			t.Fatalf("expected non-decreasing x-offsets, got %v", pv.Slots)
		}
	}
	if pv.Width <= 0 {
		t.Fatalf("expected positive bar width, got %d", pv.Width)
	}
}

func TestBuildPositionTableIsIdempotentOnReplace(t *testing.T) {
	mv := ir.NewMovement(0)
	bar := simpleBar(4)
	first := BuildPositionTable(bar, mv, 1.0)
	second := BuildPositionTable(bar, mv, 1.0)
	if first.Width != second.Width {
		t.Fatalf("expected re-running the position table pass on an unchanged bar to be idempotent, got %d then %d", first.Width, second.Width)
	}
	if bar.Position != second {
		t.Fatalf("expected bar.Position to be replaced with the latest attempt, not appended")
	}
}

func TestAssemblerBreaksIntoMultipleSystems(t *testing.T) {
	mv := ir.NewMovement(0)
	stave := &ir.Stave{Number: 1}
	for i := 0; i < 20; i++ {
		stave.Bars = append(stave.Bars, simpleBar(4))
	}
	mv.Staves = []*ir.Stave{stave}

	cfg := Config{LineWidth: 60000, PageHeight: 1 << 30, SystemGap: 20000, StaveSpacing: 40000}
	a := NewAssembler(cfg)
	a.RunMovement(mv, 0)

	if len(a.Pages()) == 0 || len(a.Pages()[0].Systems) < 2 {
		t.Fatalf("expected the 20-bar movement to split across multiple systems at a narrow line width, got %d systems", len(a.Pages()[0].Systems))
	}
}

func TestAssemblerClosesPageWhenDepthExceeded(t *testing.T) {
	mv := ir.NewMovement(0)
	stave := &ir.Stave{Number: 1}
	for i := 0; i < 8; i++ {
		stave.Bars = append(stave.Bars, simpleBar(4))
	}
	mv.Staves = []*ir.Stave{stave}

	cfg := Config{LineWidth: 20000, PageHeight: 30000, SystemGap: 20000, StaveSpacing: 5000}
	a := NewAssembler(cfg)
	a.RunMovement(mv, 0)

	if len(a.Pages()) < 2 {
		t.Fatalf("expected multiple pages when systems exceed page height, got %d", len(a.Pages()))
	}
}

func restBar(mv *ir.Movement) *ir.Bar {
	bar := ir.NewBar()
	bar.Append(&ir.Note{Type: ir.NoteSemibreve, Ticks: mv.DefaultTime.MeasureLength(), Flags: ir.FlagNoPlay})
	bar.Append(&ir.Barline{})
	return bar
}

func TestDetectMultiRestsCollapsesConsecutiveWholeRests(t *testing.T) {
	mv := ir.NewMovement(0)
	mv.DefaultTime = ir.TimeSignature{Beats: 4, BeatType: 4}
	stave := &ir.Stave{Number: 1}
	stave.Bars = append(stave.Bars, simpleBar(4))
	for i := 0; i < 3; i++ {
		stave.Bars = append(stave.Bars, restBar(mv))
	}
	stave.Bars = append(stave.Bars, simpleBar(4))

	DetectMultiRests(mv, stave)

	if stave.Bars[0].Multi != 0 {
		t.Fatalf("expected the leading real bar to be untouched, got Multi=%d", stave.Bars[0].Multi)
	}
	if stave.Bars[1].Multi != 3 {
		t.Fatalf("expected the rest run's leading bar to record Multi=3, got %d", stave.Bars[1].Multi)
	}
	if stave.Bars[2].Multi != -1 || stave.Bars[3].Multi != -1 {
		t.Fatalf("expected the absorbed bars to carry the -1 sentinel, got %d and %d", stave.Bars[2].Multi, stave.Bars[3].Multi)
	}
	if stave.Bars[4].Multi != 0 {
		t.Fatalf("expected the trailing real bar to be untouched, got Multi=%d", stave.Bars[4].Multi)
	}
}

func TestBuildPositionTableUsesMultiRestWidth(t *testing.T) {
	mv := ir.NewMovement(0)
	bar := simpleBar(1)
	bar.Multi = 5
	pv := BuildPositionTable(bar, mv, 1.0)
	if pv.Width != multiRestWidth(5) {
		t.Fatalf("expected a collapsed multi-rest bar to use the rest-style width table, got %d", pv.Width)
	}
	if len(pv.Slots) != 0 {
		t.Fatalf("expected no per-note slots for a collapsed multi-rest bar, got %v", pv.Slots)
	}
}

func TestBuildPositionTableAbsorbedBarIsZeroWidth(t *testing.T) {
	mv := ir.NewMovement(0)
	bar := simpleBar(1)
	bar.Multi = -1
	pv := BuildPositionTable(bar, mv, 1.0)
	if pv.Width != 0 {
		t.Fatalf("expected an absorbed bar to contribute zero width, got %d", pv.Width)
	}
}

func TestRunFixedLayoutExpandsRepeat(t *testing.T) {
	tokens := []ir.LayoutToken{
		{Op: ir.LayoutRepeatCount, Value: 3},
		{Op: ir.LayoutBarCount, Value: 4},
		{Op: ir.LayoutRepeatPtr},
		{Op: ir.LayoutNewPage},
	}
	var barCounts []int
	pages := 0
	err := RunFixedLayout(tokens, func(n int) { barCounts = append(barCounts, n) }, func() { pages++ })
	if err != nil {
		t.Fatalf("RunFixedLayout: %v", err)
	}
	if len(barCounts) != 3 {
		t.Fatalf("expected the barcount token to run 3 times under repeatcount 3, got %d", len(barCounts))
	}
	if pages != 1 {
		t.Fatalf("expected exactly one newpage after the repeat block, got %d", pages)
	}
}

func TestRunFixedLayoutRejectsUnmatchedRepeatPtr(t *testing.T) {
	tokens := []ir.LayoutToken{{Op: ir.LayoutRepeatPtr}}
	if err := RunFixedLayout(tokens, func(int) {}, func() {}); err == nil {
		t.Fatal("expected an error for a repeatptr with no matching repeatcount")
	}
}
