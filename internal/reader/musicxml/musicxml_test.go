package musicxml

import (
	"strings"
	"testing"

	"scorecraft/internal/ir"
)

const sampleXML = `<?xml version="1.0"?>
<score-partwise>
  <part-list>
    <score-part id="P1"><part-name>Violin</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>4</divisions>
        <key><fifths>1</fifths></key>
        <time><beats>4</beats><beat-type>4</beat-type></time>
        <clef><sign>G</sign><line>2</line></clef>
      </attributes>
      <note>
        <pitch><step>C</step><octave>5</octave></pitch>
        <duration>4</duration>
        <type>quarter</type>
      </note>
      <note>
        <rest/>
        <duration>4</duration>
        <type>quarter</type>
      </note>
    </measure>
  </part>
</score-partwise>`

func TestParseBuildsDOMTree(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Root.Name != "score-partwise" {
		t.Fatalf("expected root score-partwise, got %s", res.Root.Name)
	}
	part := res.Root.Child("part")
	if part == nil || part.Attr("id") != "P1" {
		t.Fatalf("expected a part P1, got %+v", part)
	}
}

func TestAnalyseProducesOneStavePerPart(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Analyse(res.Root)
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if len(out.Movement.Staves) != 1 {
		t.Fatalf("expected 1 stave, got %d", len(out.Movement.Staves))
	}
	stave := out.Movement.Staves[0]
	if len(stave.Bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(stave.Bars))
	}
}

func TestAnalyseNotePitchAndRest(t *testing.T) {
	res, _ := Parse(strings.NewReader(sampleXML))
	out, _ := Analyse(res.Root)
	bar := out.Movement.Staves[0].Bars[0]

	var notes []*ir.Note
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		if n, ok := it.(*ir.Note); ok {
			notes = append(notes, n)
		}
		return true
	})
	if len(notes) != 2 {
		t.Fatalf("expected 2 Note items (pitched + rest), got %d", len(notes))
	}
	if notes[0].AbsPitch != ir.MiddleC+ir.Octave {
		t.Fatalf("expected C5 to be one octave above middle C (%d), got %d", ir.MiddleC+ir.Octave, notes[0].AbsPitch)
	}
	if notes[1].Flags&ir.FlagNoPlay == 0 {
		t.Fatalf("expected the rest note to carry FlagNoPlay")
	}
}

func TestAnalyseKeyAndTimeSignatureEmitted(t *testing.T) {
	res, _ := Parse(strings.NewReader(sampleXML))
	out, _ := Analyse(res.Root)
	bar := out.Movement.Staves[0].Bars[0]

	var sawKey, sawTime, sawClef bool
	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch it.(type) {
		case *ir.KeySignature:
			sawKey = true
		case *ir.TimeSignature:
			sawTime = true
		case *ir.ClefChange:
			sawClef = true
		}
		return true
	})
	if !sawKey || !sawTime || !sawClef {
		t.Fatalf("expected key/time/clef items to be emitted from <attributes>, got key=%v time=%v clef=%v", sawKey, sawTime, sawClef)
	}
}
