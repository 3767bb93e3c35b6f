package textmetrics

import (
	"testing"

	"scorecraft/internal/ir"
)

func TestBuiltinProviderWidthGrowsWithLength(t *testing.T) {
	p := NewBuiltinProvider()

	short := encode("A")
	long := encode("ABCDE")

	ms, err := p.Width(short, 12)
	if err != nil {
		t.Fatalf("Width(short): %v", err)
	}
	ml, err := p.Width(long, 12)
	if err != nil {
		t.Fatalf("Width(long): %v", err)
	}
	if ml.Width <= ms.Width {
		t.Fatalf("expected longer string to measure wider: short=%v long=%v", ms.Width, ml.Width)
	}
}

func TestBuiltinProviderEmptyString(t *testing.T) {
	p := NewBuiltinProvider()
	m, err := p.Width(nil, 12)
	if err != nil {
		t.Fatalf("Width(nil): %v", err)
	}
	if m.Width != 0 || m.Height != 0 {
		t.Fatalf("expected zero metrics for empty string, got %+v", m)
	}
}

func TestDefaultGlyphMapCoversCoreNoteheads(t *testing.T) {
	p := NewBuiltinProvider()
	for _, g := range []VirtualGlyph{GlyphNoteheadCrotchet, GlyphNoteheadMinim, GlyphClefTreble, GlyphSharp} {
		if _, ok := p.GlyphChar(int(g)); !ok {
			t.Errorf("glyph %d missing from default glyph map", g)
		}
	}
}

func TestGlyphCharUnknownID(t *testing.T) {
	p := NewBuiltinProvider()
	if _, ok := p.GlyphChar(9999); ok {
		t.Fatalf("expected unknown virtual glyph id to report not-found")
	}
}

func encode(s string) ir.EncodedString {
	out := make(ir.EncodedString, len(s))
	for i, r := range []byte(s) {
		out[i] = ir.NewEncodedRune(0, uint32(r))
	}
	return out
}
