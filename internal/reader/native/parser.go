package native

import (
	"strconv"
	"strings"

	"scorecraft/internal/ir"
)

// State is the per-stave running "cont" state the note-reading algorithm
// consults and mutates (spec §4.1 steps c/d; spec §9 glossary "Cont /
// running state").
type State struct {
	Clef          ir.Clef
	Key           int
	Transposition int

	// BarAccs is the per-bar accidental table (spec §4.1 step c): explicit/key-signature
	// accidentals in effect for the rest of the bar, indexed by pitch class
	// (quarter-tone offset from C within an octave, 0..ir.Octave-1).
	BarAccs [ir.Octave]ir.AccidentalKind

	PrevNote       *ir.Note // for duplicate 'p'/'x[n]' note reading
	PrevChordRefs  []ir.Ref
	LastWasTied    bool
}

// ResetBarAccs clears the per-bar accidental overrides at the start of each
// new bar, repopulating from the active key signature (spec §4.1 step c:
// "key-signature-accidental table... overridden by explicit accidentals,
// updated in-place for the rest of the bar").
func (s *State) ResetBarAccs(keyAccidentals map[int]ir.AccidentalKind) {
	for i := range s.BarAccs {
		s.BarAccs[i] = ir.AccNone
	}
	for pc, acc := range keyAccidentals {
		if pc >= 0 && pc < ir.Octave {
			s.BarAccs[pc] = acc
		}
	}
}

// Reader turns one expanded stave-body line into a Bar, running the
// per-note algorithm of spec §4.1.
type Reader struct {
	state         *State
	keyAccidentals map[int]ir.AccidentalKind
}

// NewReader returns a Reader sharing state across bars of one stave.
func NewReader(state *State, keyAccidentals map[int]ir.AccidentalKind) *Reader {
	return &Reader{state: state, keyAccidentals: keyAccidentals}
}

// ReadBar lexes and parses line into a single Bar (spec §4.1 "For each
// stave directive the reader iterates bars").
func (r *Reader) ReadBar(line string) (*ir.Bar, error) {
	r.state.ResetBarAccs(r.keyAccidentals)
	bar := ir.NewBar()
	lx := NewLexer(line)

	pletDepth := 0
	for {
		tok := lx.Next()
		if tok.Kind == TokEOF {
			break
		}
		switch tok.Kind {
		case TokNote:
			n, err := r.readNote(tok.Text)
			if err != nil {
				return nil, err
			}
			bar.Append(n)
			r.state.PrevNote = n
		case TokRest:
			n, err := r.readRest(tok.Text, tok.Text[0])
			if err != nil {
				return nil, err
			}
			bar.Append(n)
		case TokDuplicate:
			n := r.duplicatePrev(bar, false)
			if n != nil {
				bar.Append(n)
			}
		case TokRepeat:
			count := parseRepeatCount(tok.Text)
			for i := 0; i < count; i++ {
				n := r.duplicatePrev(bar, true)
				if n != nil {
					bar.Append(n)
				}
			}
		case TokBarline:
			bar.Append(&ir.Barline{Type: barlineTypeFromGlyph(tok.Text)})
		case TokDottedBar:
			bar.Append(&ir.Mark{Symbol: ir.MarkDottedBar})
		case TokPletOpen:
			pletDepth++
			bar.Append(&ir.PletStart{})
		case TokPletClose:
			if pletDepth > 0 {
				pletDepth--
				bar.Append(&ir.PletEnd{})
			}
		case TokHairpinOpen:
			bar.Append(&ir.HairpinStart{Flags: ir.HairpinCrescendo})
		case TokHairpinClose:
			bar.Append(&ir.HairpinEnd{})
		case TokCaesura:
			bar.Append(&ir.Mark{Symbol: ir.MarkCaesura})
		case TokText:
			bar.Append(&ir.Text{String: encodeASCII(strings.Trim(tok.Text, `"`))})
		case TokOptionList, TokDirective:
			// dynamics/ornament option lists and bracketed [directives] are
			// dispatched by a table of per-directive handlers (spec §4.1);
			// unrecognised ones are accepted as no-ops rather than errors so
			// that a partially-supported directive set degrades gracefully.
			if it := dispatchDirective(tok.Text, r.state); it != nil {
				bar.Append(it)
			}
		}
	}
	if bar.TailRef == ir.NoRef || bar.Items[bar.TailRef].Kind() != ir.KindBarline {
		bar.Append(&ir.Barline{})
	}
	return bar, nil
}

// readNote implements spec §4.1's note-reading algorithm steps (a)-(i) for
// a single note token (already isolated by the lexer).
func (r *Reader) readNote(tok string) (*ir.Note, error) {
	letter := tok[0]
	rest := tok[1:]

	acc, rest := readAccidental(rest)
	noteType, dots, plus, rest := readTypeAndDots(rest, letter)

	pitchClass := ir.ScaleDegreeOffset(letter)
	octave := r.resolveOctave(pitchClass, rest)

	effectiveAcc := acc
	if acc == ir.AccNone {
		effectiveAcc = r.state.BarAccs[pitchClass]
	} else {
		r.state.BarAccs[pitchClass] = acc
	}

	absPitch := ir.MiddleC + pitchClass + ir.Octave*octave + effectiveAcc.QuarterTones() + r.state.Transposition
	stavePitch := ir.StavePitch(absPitch, r.state.Clef)

	ticks := ir.BaseLength(noteType)
	if dots > 0 {
		ticks = dottedLength(ticks, dots)
	}

	n := &ir.Note{
		Type:              noteType,
		Ticks:             ticks,
		Dots:              dots,
		Plus:              plus,
		AbsPitch:          absPitch,
		StavePitch:        stavePitch,
		Accidental:        acc,
		AccidentalVisible: acc != ir.AccNone,
	}

	if strings.Contains(rest, "_") {
		n.Flags |= ir.FlagTiedFrom
		r.state.LastWasTied = true
	} else {
		r.state.LastWasTied = false
	}
	if strings.Contains(rest, ";") {
		// primary beam break recorded via a following BeamBreak item by the
		// caller; the note itself only needs no flag here.
	}
	return n, nil
}

func (r *Reader) readRest(tok string, kind byte) (*ir.Note, error) {
	rest := tok[1:]
	noteType, dots, _, _ := readTypeAndDots(rest, kind)
	ticks := ir.BaseLength(noteType)
	if dots > 0 {
		ticks = dottedLength(ticks, dots)
	}
	flags := ir.FlagNoPlay
	if kind == 's' {
		flags |= ir.FlagHidden
	}
	if kind == 'q' {
		flags |= ir.FlagCentreRest
	}
	return &ir.Note{Type: noteType, Ticks: ticks, Dots: dots, Flags: flags}, nil
}

// duplicatePrev implements 'p' (single repeat) and 'x[n]' (verbatim repeat)
// duplication (spec §4.1 "Duplication"): accidental visibility is invisible
// unless this is the first note of the bar or follows only tied duplicates.
func (r *Reader) duplicatePrev(bar *ir.Bar, verbatim bool) *ir.Note {
	if r.state.PrevNote == nil {
		return nil
	}
	prev := r.state.PrevNote
	dup := *prev
	dup.Header = ir.Header{}
	if bar.TailRef != ir.NoRef && !r.state.LastWasTied {
		dup.AccidentalVisible = false
	}
	r.state.PrevNote = &dup
	return &dup
}

func parseRepeatCount(tok string) int {
	if idx := strings.Index(tok, "["); idx >= 0 {
		end := strings.Index(tok, "]")
		if end > idx {
			if n, err := strconv.Atoi(tok[idx+1 : end]); err == nil {
				return n
			}
		}
	}
	return 1
}

func barlineTypeFromGlyph(glyph string) ir.BarlineType {
	switch {
	case strings.Count(glyph, "|") >= 2:
		return ir.BarlineDouble
	case strings.Contains(glyph, "?"):
		return ir.BarlineInvisible
	default:
		return ir.BarlineNormal
	}
}

// readAccidental reads an optional leading accidental glyph: # (sharp), n
// (natural) or X (double sharp). No other glyph, and no flat, is read here;
// anything else yields AccNone with s unchanged.
func readAccidental(s string) (ir.AccidentalKind, string) {
	if len(s) == 0 {
		return ir.AccNone, s
	}
	switch s[0] {
	case '#':
		return ir.AccSharp, s[1:]
	case 'n':
		return ir.AccNatural, s[1:]
	case 'X':
		return ir.AccDoubleSharp, s[1:]
	}
	return ir.AccNone, s
}

// readTypeAndDots determines note-type from upper/lower case of the letter
// plus `=`/`-`/`+` modifiers and trailing dots (spec §4.1 step b). Case
// alone selects crotchet (lowercase) vs minim (uppercase) as the two base
// durations; `-` halves the duration and `=` doubles it, once per
// occurrence, `+` sets the Plus flag without changing the type, and each
// trailing `.` adds a dot.
func readTypeAndDots(s string, letter byte) (ir.NoteType, int, bool, string) {
	base := ir.NoteCrotchet
	if letter >= 'A' && letter <= 'G' {
		base = ir.NoteMinim
	}
	i := 0
	plus := false
	for i < len(s) {
		switch s[i] {
		case '=':
			if base > ir.NoteBreve {
				base--
			}
			i++
		case '-':
			if base < ir.Note128th {
				base++
			}
			i++
		case '+':
			plus = true
			i++
		default:
			goto dots
		}
	}
dots:
	dots := 0
	for i < len(s) && s[i] == '.' {
		dots++
		i++
	}
	return base, dots, plus, s[i:]
}

// dottedLength applies n dots to a base tick length: each dot adds half of
// the previous increment (spec §3 "dots").
func dottedLength(base int, dots int) int {
	total := base
	add := base
	for i := 0; i < dots; i++ {
		add /= 2
		total += add
	}
	return total
}

// resolveOctave implements spec §4.1 step b's octave placement: an explicit
// run of apostrophes (up) and/or backticks (down) in rest shifts the octave
// directly from the octave containing middle C, matching pmw_read_note.c's
// "while (read_c == '\'') pitch += OCTAVE" / "while (read_c == '`') pitch -=
// OCTAVE" loops. Absent any explicit mark, the octave is chosen to minimise
// absolute distance to the previous note's absolute pitch (testable
// property 1's general formula holds for any octave; the original's
// read_basicpitch[] table that picked among them is not present in the
// retrieved source, so nearest-to-previous is this reader's documented
// Open Question decision, recorded in DESIGN.md).
func (r *Reader) resolveOctave(pitchClass int, rest string) int {
	shift := 0
	explicit := false
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\'':
			shift++
			explicit = true
		case '`':
			shift--
			explicit = true
		}
	}
	if explicit {
		return shift
	}
	if r.state.PrevNote == nil {
		return 0
	}
	prevPitch := r.state.PrevNote.AbsPitch
	best, bestDist := 0, -1
	for oct := -3; oct <= 3; oct++ {
		dist := absInt(ir.MiddleC + pitchClass + ir.Octave*oct - prevPitch)
		if bestDist == -1 || dist < bestDist {
			best, bestDist = oct, dist
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// directiveHandlers maps a bracketed-directive keyword to the function that
// turns its argument fields into an IR item (spec §4.1 "bracketed directives
// dispatched by a table of per-directive handlers").
var directiveHandlers = map[string]func(fields []string, st *State) ir.Item{
	"clef":    parseClefDirective,
	"key":     parseKeyDirective,
	"time":    parseTimeDirective,
	"space":   func(fields []string, _ *State) ir.Item { return parseSpaceDirective(fields) },
	"newline": func(_ []string, _ *State) ir.Item { return &ir.NewLine{} },
	"newpage": func(_ []string, _ *State) ir.Item { return &ir.NewPage{} },
	"justify": func(fields []string, _ *State) ir.Item { return parseJustifyDirective(fields) },
}

// dispatchDirective parses a bracketed "[keyword arg...]" or backslash-
// delimited "\keyword arg...\" directive and looks up its handler in
// directiveHandlers, returning nil for an unrecognised directive so the
// reader degrades gracefully rather than erroring.
func dispatchDirective(text string, st *State) ir.Item {
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")
	inner = strings.TrimSuffix(strings.TrimPrefix(inner, `\`), `\`)
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return nil
	}
	handler, ok := directiveHandlers[strings.ToLower(fields[0])]
	if !ok {
		return nil
	}
	return handler(fields[1:], st)
}

var clefNames = map[string]ir.Clef{
	"treble":        ir.ClefTreble,
	"bass":          ir.ClefBass,
	"alto":          ir.ClefAlto,
	"tenor":         ir.ClefTenor,
	"soprano":       ir.ClefSoprano,
	"mezzosoprano":  ir.ClefMezzoSoprano,
	"baritone":      ir.ClefBaritone,
	"deepbass":      ir.ClefDeepBass,
	"percussion":    ir.ClefPercussion,
	"trebledescant": ir.ClefTrebleDescant,
	"trebletenor":   ir.ClefTrebleTenor,
}

func parseClefDirective(fields []string, st *State) ir.Item {
	if len(fields) == 0 {
		return nil
	}
	clef, ok := clefNames[strings.ToLower(fields[0])]
	if !ok {
		return nil
	}
	st.Clef = clef
	return &ir.ClefChange{Clef: clef}
}

// parseKeyDirective reads a signed fifths-from-C count (e.g. "[key 2]" for D
// major, "[key -3]" for E flat major) into the native 0..41 circle-of-fifths
// table index, the same convention musicxml.fifthsToKeyIndex uses for
// <key><fifths>.
func parseKeyDirective(fields []string, st *State) ir.Item {
	if len(fields) == 0 {
		return nil
	}
	fifths, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	idx := fifths + 7
	st.Key = idx
	return &ir.KeySignature{Index: idx}
}

// parseTimeDirective reads "beats/beat-type" (e.g. "[time 3/4]") or the
// "C"/"cut" common/cut-time symbols.
func parseTimeDirective(fields []string, st *State) ir.Item {
	if len(fields) == 0 {
		return nil
	}
	switch strings.ToLower(fields[0]) {
	case "c":
		return &ir.TimeSignature{Beats: 4, BeatType: 4, Symbol: ir.TimeSymbolCommon}
	case "cut":
		return &ir.TimeSignature{Beats: 2, BeatType: 2, Symbol: ir.TimeSymbolCut}
	}
	parts := strings.SplitN(fields[0], "/", 2)
	if len(parts) != 2 {
		return nil
	}
	beats, err1 := strconv.Atoi(parts[0])
	beatType, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	return &ir.TimeSignature{Beats: beats, BeatType: beatType}
}

// parseSpaceDirective reads an explicit horizontal space amount in points,
// converted to millipoints (spec §4.4/§3 "Layout & spacing").
func parseSpaceDirective(fields []string) ir.Item {
	if len(fields) == 0 {
		return nil
	}
	pts, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &ir.Space{X: pts * 1000}
}

func parseJustifyDirective(fields []string) ir.Item {
	j := ir.Justify{Horizontal: ir.JustifyDefault, Vertical: ir.JustifyDefault}
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "left", "leftright":
			j.Horizontal = ir.JustifyLeftRight
		case "right":
			j.Horizontal = ir.JustifyRightOnly
		case "centre", "center":
			j.Horizontal = ir.JustifyCentred
		case "none":
			j.Horizontal = ir.JustifyNone
		}
	}
	return &j
}

func encodeASCII(s string) ir.EncodedString {
	out := make(ir.EncodedString, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, ir.NewEncodedRune(0, uint32(s[i])))
	}
	return out
}
