package native

import (
	"strings"
	"testing"

	"scorecraft/internal/ir"
)

func TestReadBarSimpleNotes(t *testing.T) {
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar(`c d e f|`)
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	var notes []*ir.Note
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		if n, ok := it.(*ir.Note); ok {
			notes = append(notes, n)
		}
		return true
	})
	if len(notes) != 4 {
		t.Fatalf("expected 4 notes, got %d", len(notes))
	}
	if notes[0].AbsPitch != ir.MiddleC {
		t.Fatalf("expected 'c' to read as middle C (%d), got %d", ir.MiddleC, notes[0].AbsPitch)
	}
}

func TestReadBarKeySignatureAccidentalPersistsAcrossBar(t *testing.T) {
	// Scenario S3: key F# then note 'b' with no explicit accidental should
	// pick up the sharp from the key table.
	state := &State{Clef: ir.ClefTreble}
	keyAccs := map[int]ir.AccidentalKind{ir.ScaleDegreeOffset('b'): ir.AccSharp}
	r := NewReader(state, keyAccs)
	bar, err := r.ReadBar(`b|`)
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	n := bar.Items[bar.HeadRef].(*ir.Note)
	want := ir.MiddleC + ir.ScaleDegreeOffset('b') + ir.AccSharp.QuarterTones()
	if n.AbsPitch != want {
		t.Fatalf("expected abspitch %d (key-signature sharp applied), got %d", want, n.AbsPitch)
	}
	if n.Accidental != ir.AccNone {
		t.Fatalf("expected no explicit accidental on the note itself, got %v", n.Accidental)
	}
}

func TestReadBarExplicitAccidentalOverridesKey(t *testing.T) {
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar(`c#|`)
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	n := bar.Items[bar.HeadRef].(*ir.Note)
	if n.Accidental != ir.AccSharp {
		t.Fatalf("expected explicit sharp accidental, got %v", n.Accidental)
	}
}

func TestReadBarRestIsNoPlay(t *testing.T) {
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar(`r|`)
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	n := bar.Items[bar.HeadRef].(*ir.Note)
	if n.Flags&ir.FlagNoPlay == 0 {
		t.Fatalf("expected a rest to carry FlagNoPlay")
	}
}

func TestReadBarDuplicateNoteHidesAccidental(t *testing.T) {
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar(`c# p|`)
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	var notes []*ir.Note
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		if n, ok := it.(*ir.Note); ok {
			notes = append(notes, n)
		}
		return true
	})
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes (original + duplicate), got %d", len(notes))
	}
	if notes[1].AccidentalVisible {
		t.Fatalf("expected the duplicated note's accidental to be invisible")
	}
}

func TestReadBarExplicitOctaveMarksShiftPitch(t *testing.T) {
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar("c c' c``|")
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	var notes []*ir.Note
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		if n, ok := it.(*ir.Note); ok {
			notes = append(notes, n)
		}
		return true
	})
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if notes[0].AbsPitch != ir.MiddleC {
		t.Fatalf("expected plain 'c' at middle C (%d), got %d", ir.MiddleC, notes[0].AbsPitch)
	}
	if want := ir.MiddleC + ir.Octave; notes[1].AbsPitch != want {
		t.Fatalf("expected c' one octave up (%d), got %d", want, notes[1].AbsPitch)
	}
	if want := ir.MiddleC - 2*ir.Octave; notes[2].AbsPitch != want {
		t.Fatalf("expected c`` two octaves down (%d), got %d", want, notes[2].AbsPitch)
	}
}

func TestReadBarImplicitOctaveNearestToPrevious(t *testing.T) {
	// With no explicit apostrophe/backtick, the octave is chosen to
	// minimise distance to the previous note's absolute pitch rather than
	// always defaulting to the octave containing middle C.
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar("c' c|")
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	var notes []*ir.Note
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		if n, ok := it.(*ir.Note); ok {
			notes = append(notes, n)
		}
		return true
	})
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if want := ir.MiddleC + ir.Octave; notes[1].AbsPitch != want {
		t.Fatalf("expected the second 'c' to stay in the same octave as the preceding c' (%d), got %d", want, notes[1].AbsPitch)
	}
}

func TestDispatchDirectiveRecognisesClefKeyTime(t *testing.T) {
	st := &State{}
	if it := dispatchDirective("[clef bass]", st); it == nil {
		t.Fatal("expected [clef bass] to produce an item")
	} else if cc, ok := it.(*ir.ClefChange); !ok || cc.Clef != ir.ClefBass {
		t.Fatalf("expected a ClefChange to bass clef, got %#v", it)
	}
	if st.Clef != ir.ClefBass {
		t.Fatalf("expected dispatching [clef bass] to update running state, got %v", st.Clef)
	}

	if it := dispatchDirective("[time 3/4]", st); it == nil {
		t.Fatal("expected [time 3/4] to produce an item")
	} else if ts, ok := it.(*ir.TimeSignature); !ok || ts.Beats != 3 || ts.BeatType != 4 {
		t.Fatalf("expected a 3/4 TimeSignature, got %#v", it)
	}

	if it := dispatchDirective("[nosuchdirective]", st); it != nil {
		t.Fatalf("expected an unrecognised directive to produce no item, got %#v", it)
	}
}

func TestReadBarDottedBarAndCaesuraProduceMarks(t *testing.T) {
	state := &State{Clef: ir.ClefTreble}
	r := NewReader(state, nil)
	bar, err := r.ReadBar("c d ::|")
	if err != nil {
		t.Fatalf("ReadBar: %v", err)
	}
	var found bool
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		if m, ok := it.(*ir.Mark); ok && m.Symbol == ir.MarkDottedBar {
			found = true
		}
		return true
	})
	if !found {
		t.Fatal("expected a dotted-bar token to produce an ir.Mark{Symbol: MarkDottedBar}")
	}
}

func TestPreprocessorExpandsMacroWithDefaults(t *testing.T) {
	p := NewPreprocessor(Predicates{}, nil)
	src := "*macro loud vel=90\nc#(&1)|\n*endmacro\n&loud()\n"
	out, err := p.Expand(src)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	joined := strings.Join(out, "\n")
	if !strings.Contains(joined, "c#(90)") {
		t.Fatalf("expected macro default substitution, got %q", joined)
	}
}

func TestPreprocessorConditionalSkipsPartOnlyBlock(t *testing.T) {
	p := NewPreprocessor(Predicates{IsScore: true}, nil)
	src := "*if part\nhidden text\n*fi\nvisible text\n"
	out, err := p.Expand(src)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	joined := strings.Join(out, "\n")
	if strings.Contains(joined, "hidden text") {
		t.Fatalf("expected the *if part block to be skipped in score mode, got %q", joined)
	}
	if !strings.Contains(joined, "visible text") {
		t.Fatalf("expected the unconditional line to survive, got %q", joined)
	}
}
