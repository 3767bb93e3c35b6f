package musicxml

import (
	"strconv"
	"strings"

	"scorecraft/internal/ir"
)

// partState mirrors native reading's per-stave running state (spec §4.2
// step 3: "Per-stave state mirrors native reading: current clef, key, time,
// divisions, musical offset, open tie/slur/line/wedge/pedal, pending
// lyrics and extenders, beam-break pending, tuplet ratio").
type partState struct {
	divisions int
	clef      ir.Clef
	key       int
	time      ir.TimeSignature
	offset    int

	openTies  map[string]ir.Ref // pitch string -> note ref with an open tie
	prevNotes []ir.Ref          // chord members read so far at the current offset

	// notePositions is the per-offset (offset -> default-x) table of spec
	// §4.2 step 4, used to detect cross-voice/stave misalignment.
	notePositions map[int]int
}

func newPartState() *partState {
	return &partState{divisions: 1, clef: ir.ClefTreble, openTies: map[string]ir.Ref{}, notePositions: map[int]int{}}
}

// AnalyseResult is the IR produced from a parsed MusicXML document.
type AnalyseResult struct {
	Movement *ir.Movement
}

// Analyse walks the DOM root (a <score-partwise> document) and emits a
// Movement with one Stave per <part> (spec §4.2 steps 1-6).
func Analyse(root *Node) (*AnalyseResult, error) {
	mv := ir.NewMovement(0)

	partList := root.Child("part-list")
	names := map[string]string{}
	if partList != nil {
		for _, sp := range partList.AllChildren("score-part") {
			if nameNode := sp.Child("part-name"); nameNode != nil {
				names[sp.Attr("id")] = nameNode.Text
			}
		}
	}

	staveNum := 1
	for _, partNode := range root.AllChildren("part") {
		stave := &ir.Stave{Number: staveNum}
		if nm, ok := names[partNode.Attr("id")]; ok {
			stave.Name = encodeASCII(nm)
		}
		staveNum++

		st := newPartState()
		for _, measureNode := range partNode.AllChildren("measure") {
			bar := analyseMeasure(measureNode, st)
			stave.Bars = append(stave.Bars, bar)
		}
		mv.Staves = append(mv.Staves, stave)
	}

	return &AnalyseResult{Movement: mv}, nil
}

func analyseMeasure(m *Node, st *partState) *ir.Bar {
	bar := ir.NewBar()
	st.offset = 0
	st.notePositions = map[int]int{}

	for _, child := range m.Children {
		switch child.Name {
		case "attributes":
			analyseAttributes(child, bar, st)
		case "note":
			analyseNote(child, bar, st)
		case "backup":
			analyseBackup(child, bar, st)
		case "forward":
			d := atoi(child.Child("duration").textOrEmpty())
			st.offset += scaleDuration(d, st.divisions)
		case "direction":
			analyseDirection(child, bar, st)
		case "barline":
			analyseBarline(child, bar, st)
		}
	}

	if bar.TailRef == ir.NoRef || bar.Items[bar.TailRef].Kind() != ir.KindBarline {
		bar.Append(&ir.Barline{})
	}
	return bar
}

func (n *Node) textOrEmpty() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

func atoi(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

// scaleDuration converts a MusicXML <duration> (in <divisions>-per-quarter
// units) to the native musical-tick unit (ir.LenUnit is one breve).
func scaleDuration(duration, divisions int) int {
	if divisions == 0 {
		divisions = 1
	}
	quarter := ir.BaseLength(ir.NoteCrotchet)
	return duration * quarter / divisions
}

func analyseAttributes(a *Node, bar *ir.Bar, st *partState) {
	if d := a.Child("divisions"); d != nil {
		st.divisions = atoi(d.textOrEmpty())
	}
	if c := a.Child("clef"); c != nil {
		st.clef = clefFromSignLine(c.Child("sign").textOrEmpty(), c.Child("line").textOrEmpty())
		bar.Append(&ir.ClefChange{Clef: st.clef})
	}
	if k := a.Child("key"); k != nil {
		fifths := atoi(k.Child("fifths").textOrEmpty())
		st.key = fifthsToKeyIndex(fifths)
		bar.Append(&ir.KeySignature{Index: st.key})
	}
	if ti := a.Child("time"); ti != nil {
		beats := atoi(ti.Child("beats").textOrEmpty())
		beatType := atoi(ti.Child("beat-type").textOrEmpty())
		st.time = ir.TimeSignature{Beats: beats, BeatType: beatType}
		bar.Append(&ir.TimeSignature{Beats: beats, BeatType: beatType})
	}
}

// fifthsToKeyIndex converts MusicXML's signed fifths-from-C to the native
// 0..41 circle-of-fifths index (spec §4.2 step 6); custom signatures (43+)
// are not reachable from <key><fifths>, and this reader does not produce
// them from <key-step>/<key-accidental> lists either.
func fifthsToKeyIndex(fifths int) int {
	return fifths + 7 // -7..+7 maps onto 0..14, a subrange of the 0..41 native table
}

func clefFromSignLine(sign, line string) ir.Clef {
	switch sign {
	case "G":
		return ir.ClefTreble
	case "F":
		return ir.ClefBass
	case "C":
		switch line {
		case "3":
			return ir.ClefAlto
		case "4":
			return ir.ClefTenor
		default:
			return ir.ClefAlto
		}
	case "percussion":
		return ir.ClefPercussion
	default:
		return ir.ClefTreble
	}
}

func analyseBackup(b *Node, bar *ir.Bar, st *partState) {
	d := atoi(b.Child("duration").textOrEmpty())
	delta := scaleDuration(d, st.divisions)
	target := st.offset - delta
	if target <= 0 {
		bar.Append(&ir.ResetOffset{})
		st.offset = 0
		return
	}
	// A mid-bar backup that doesn't return to zero is materialised as an
	// invisible rest spanning the delta (spec §4.2 step 4).
	bar.Append(&ir.Note{Type: ir.NoteCrotchet, Ticks: delta, Flags: ir.FlagNoPlay | ir.FlagHidden})
	st.offset = target
}

func analyseDirection(d *Node, bar *ir.Bar, st *partState) {
	dt := d.Child("direction-type")
	if dt == nil {
		return
	}
	if w := dt.Child("words"); w != nil {
		bar.Append(&ir.Text{String: encodeASCII(w.textOrEmpty())})
	}
	if dyn := dt.Child("dynamics"); dyn != nil {
		for _, mark := range dyn.Children {
			bar.Append(&ir.Text{String: encodeASCII(mark.Name), Flags: ir.TextBelowUnderlay})
		}
	}
	if wedge := dt.Child("wedge"); wedge != nil {
		switch wedge.Attr("type") {
		case "crescendo":
			bar.Append(&ir.HairpinStart{Flags: ir.HairpinCrescendo})
		case "diminuendo":
			bar.Append(&ir.HairpinStart{})
		case "stop":
			bar.Append(&ir.HairpinEnd{})
		}
	}
	if reh := dt.Child("rehearsal"); reh != nil {
		bar.Append(&ir.Text{String: encodeASCII(reh.textOrEmpty()), Flags: ir.TextRehearsal})
	}
}

func analyseBarline(b *Node, bar *ir.Bar, st *partState) {
	style := b.Child("bar-style").textOrEmpty()
	if rep := b.Child("repeat"); rep != nil {
		switch rep.Attr("direction") {
		case "forward":
			bar.Append(&ir.RepeatLeft{})
		case "backward":
			bar.Append(&ir.RepeatRight{})
		}
	}
	_ = style // the trailing synthesized Barline item (analyseMeasure) carries the final type
}

func analyseNote(n *Node, bar *ir.Bar, st *partState) {
	isChordMember := n.Child("chord") != nil
	isRest := n.Child("rest") != nil
	isGrace := n.Child("grace") != nil
	isUnpitched := n.Child("unpitched") != nil

	duration := atoi(n.Child("duration").textOrEmpty())
	ticks := scaleDuration(duration, st.divisions)
	noteType := noteTypeFromXML(n.Child("type").textOrEmpty())
	dots := len(n.AllChildren("dot"))
	if dots > 0 {
		ticks = dottedLength(ticks, dots)
	}

	flags := ir.NoteFlags(0)
	if isRest {
		flags |= ir.FlagNoPlay
	}
	if isGrace {
		flags |= ir.FlagGrace
	}
	if stem := n.Child("stem"); stem != nil {
		switch stem.textOrEmpty() {
		case "up":
			flags |= ir.FlagStemUp
		case "down":
			flags |= ir.FlagCoupledDown
		}
	}

	var absPitch, stavePitch int
	var accKind ir.AccidentalKind
	if !isRest {
		if p := n.Child("pitch"); p != nil {
			step := p.Child("step").textOrEmpty()
			octave := atoi(p.Child("octave").textOrEmpty())
			alter := 0
			if a := p.Child("alter"); a != nil {
				alter = int(atof(a.textOrEmpty()) * 2) // alter is in semitones; native pitch is quarter-tones
			}
			absPitch = ir.MiddleC + ir.ScaleDegreeOffset(step[0]) + ir.Octave*(octave-4) + alter
		} else if isUnpitched {
			absPitch = ir.MiddleC
		}
		stavePitch = ir.StavePitch(absPitch, st.clef)
		if accNode := n.Child("accidental"); accNode != nil {
			accKind = accidentalFromXML(accNode.textOrEmpty())
		}
	}

	var ref ir.Ref
	if isChordMember && len(st.prevNotes) > 0 {
		cc := &ir.ChordContinuation{AbsPitch: absPitch, StavePitch: stavePitch, Accidental: accKind, AccidentalVisible: accKind != ir.AccNone}
		ref = bar.Append(cc)
	} else {
		note := &ir.Note{
			Type: noteType, Ticks: ticks, Dots: dots,
			AbsPitch: absPitch, StavePitch: stavePitch,
			Accidental: accKind, AccidentalVisible: accKind != ir.AccNone,
			Flags: flags,
		}
		ref = bar.Append(note)
		st.prevNotes = nil
		if !isGrace {
			st.offset += ticks
		}
	}
	st.prevNotes = append(st.prevNotes, ref)

	if notations := n.Child("notations"); notations != nil {
		analyseNotations(notations, bar, st, ref)
	}

	if tied := n.Child("tied"); tied != nil {
		key := n.Child("pitch").textOrEmpty()
		switch tied.Attr("type") {
		case "start":
			ts := &ir.TieStart{NotePrev: ref}
			tr := bar.Append(ts)
			st.openTies[key] = tr
		case "stop":
			delete(st.openTies, key)
		}
	}
}

func analyseNotations(notations *Node, bar *ir.Bar, st *partState, noteRef ir.Ref) {
	if orn := notations.Child("ornaments"); orn != nil {
		switch {
		case orn.Child("trill-mark") != nil:
			bar.Append(&ir.Ornament{Kind_: ir.OrnamentTrill})
		case orn.Child("turn") != nil:
			bar.Append(&ir.Ornament{Kind_: ir.OrnamentTurn})
		case orn.Child("delayed-turn") != nil:
			bar.Append(&ir.Ornament{Kind_: ir.OrnamentTurn})
		}
		if trem := orn.Child("tremolo"); trem != nil {
			n := atoi(trem.textOrEmpty())
			switch n {
			case 1:
				bar.Append(&ir.Ornament{Kind_: ir.OrnamentTremolo1})
			case 2:
				bar.Append(&ir.Ornament{Kind_: ir.OrnamentTremolo2})
			default:
				bar.Append(&ir.Ornament{Kind_: ir.OrnamentTremolo3})
			}
		}
	}
	if notations.Child("fermata") != nil {
		bar.Append(&ir.Ornament{Kind_: ir.OrnamentFermata})
	}
	for _, s := range notations.AllChildren("slur") {
		switch s.Attr("type") {
		case "start":
			bar.Append(&ir.SlurStart{ID: slurIDFromNumber(s.Attr("number"))})
		case "stop":
			bar.Append(&ir.SlurEnd{ID: slurIDFromNumber(s.Attr("number"))})
		}
	}
	for _, tp := range notations.AllChildren("tuplet") {
		switch tp.Attr("type") {
		case "start":
			bar.Append(&ir.PletStart{Numerator: 3, Denominator: 2})
		case "stop":
			bar.Append(&ir.PletEnd{})
		}
	}
}

func slurIDFromNumber(number string) byte {
	n := atoi(number)
	if n <= 0 {
		n = 1
	}
	return byte('a' + (n-1)%26)
}

func noteTypeFromXML(t string) ir.NoteType {
	switch t {
	case "breve":
		return ir.NoteBreve
	case "whole":
		return ir.NoteSemibreve
	case "half":
		return ir.NoteMinim
	case "quarter":
		return ir.NoteCrotchet
	case "eighth":
		return ir.NoteQuaver
	case "16th":
		return ir.NoteSemiquaver
	case "32nd":
		return ir.NoteDemisemiquaver
	case "64th":
		return ir.NoteHemidemisemiquaver
	case "128th":
		return ir.Note128th
	default:
		return ir.NoteCrotchet
	}
}

func accidentalFromXML(a string) ir.AccidentalKind {
	switch a {
	case "sharp":
		return ir.AccSharp
	case "natural":
		return ir.AccNatural
	case "flat":
		return ir.AccFlat
	case "double-sharp":
		return ir.AccDoubleSharp
	case "flat-flat":
		return ir.AccDoubleFlat
	case "quarter-sharp":
		return ir.AccHalfSharp
	case "quarter-flat":
		return ir.AccHalfFlat
	default:
		return ir.AccNone
	}
}

func dottedLength(base int, dots int) int {
	total := base
	add := base
	for i := 0; i < dots; i++ {
		add /= 2
		total += add
	}
	return total
}

func encodeASCII(s string) ir.EncodedString {
	out := make(ir.EncodedString, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, ir.NewEncodedRune(0, uint32(s[i])))
	}
	return out
}
