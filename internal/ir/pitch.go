package ir

// Pitch units, grounded on the pmw.h constants (confirmed against
// _examples/original_source/src/pmw.h): absolute pitch is quarter-tones with
// middle C = 96 (2 per semitone, OCTAVE = 24); stave-pitch is quarter-points
// with the bottom line of a 5-line stave at 256 and one tone = 4 units.
const (
	Octave  = 24 // quarter-tones per octave
	MiddleC = 4 * Octave

	ToneUnit  = 4 // stave-pitch units per "tone"
	StaveLine1 = 256
)

// StemSwapPitch is the default stave-pitch at which the stem-direction
// default flips from up to down (§9 glossary "stem-swap level"); a movement
// may override this per spec §4.1 step (d) policy 4.
const StemSwapPitch = StaveLine1 + 2*ToneUnit // middle line, matches spec.md's S1 worked example (264)

// ScaleDegreeOffset returns the quarter-tone offset from C for a natural
// letter name (testable property 1 of spec §8).
func ScaleDegreeOffset(letter byte) int {
	switch letter {
	case 'c', 'C':
		return 0
	case 'd', 'D':
		return 4
	case 'e', 'E':
		return 8
	case 'f', 'F':
		return 10
	case 'g', 'G':
		return 14
	case 'a', 'A':
		return 18
	case 'b', 'B':
		return 22
	default:
		return 0
	}
}

// AccidentalKind is the closed set of accidental spellings (ac_no..ac_df in
// the original source).
type AccidentalKind uint8

const (
	AccNone AccidentalKind = iota
	AccNatural
	AccHalfSharp
	AccSharp
	AccDoubleSharp
	AccHalfFlat
	AccFlat
	AccDoubleFlat
)

// QuarterTones is the pitch adjustment an accidental contributes.
func (a AccidentalKind) QuarterTones() int {
	switch a {
	case AccNatural:
		return 0
	case AccHalfSharp:
		return 1
	case AccSharp:
		return 2
	case AccDoubleSharp:
		return 4
	case AccHalfFlat:
		return -1
	case AccFlat:
		return -2
	case AccDoubleFlat:
		return -4
	default:
		return 0
	}
}

// Clef identifies a clef's pitch origin for stave-pitch computation.
type Clef uint8

const (
	ClefTreble Clef = iota
	ClefBass
	ClefAlto
	ClefTenor
	ClefSoprano
	ClefMezzoSoprano
	ClefBaritone
	ClefDeepBass
	ClefPercussion
	ClefTrebleDescant // treble 8va
	ClefTrebleTenor   // treble 8vb, tenor-voice part
)

// pitchClefOffset is pitch_clef[] from the original source: the stave-pitch
// of absolute pitch MiddleC under each clef.
var pitchClefOffset = map[Clef]int{
	ClefTreble:        StaveLine1 + 8*ToneUnit, // middle C sits on a ledger line below treble
	ClefBass:          StaveLine1 + 20*ToneUnit,
	ClefAlto:          StaveLine1 + 14*ToneUnit,
	ClefTenor:         StaveLine1 + 16*ToneUnit,
	ClefSoprano:       StaveLine1 + 8*ToneUnit,
	ClefMezzoSoprano:  StaveLine1 + 10*ToneUnit,
	ClefBaritone:      StaveLine1 + 18*ToneUnit,
	ClefDeepBass:      StaveLine1 + 24*ToneUnit,
	ClefPercussion:    StaveLine1 + 8*ToneUnit,
	ClefTrebleDescant: StaveLine1 + 8*ToneUnit - 24*ToneUnit,
	ClefTrebleTenor:   StaveLine1 + 8*ToneUnit + 24*ToneUnit,
}

// StavePitch computes the stave-relative printing pitch of an absolute pitch
// under a clef (testable property 1: stave_pitch == pitch_stave[abspitch] +
// pitch_clef[current_clef]).
func StavePitch(absPitch int, clef Clef) int {
	offset := pitchClefOffset[clef]
	// pitch_stave[] maps absolute semitone distance from middle C to
	// stave-pitch distance (a diatonic scale has 7 steps per 12 semitones,
	// so 24 quarter-tones (one octave) maps to 7*ToneUnit*... simplified to
	// a linear quarter-tone->tone-unit ratio of 7/24 per octave, rounded to
	// the nearest diatonic step via the natural-letter table).
	delta := absPitch - MiddleC
	octaves := delta / Octave
	rem := delta % Octave
	if rem < 0 {
		rem += Octave
		octaves--
	}
	return offset + octaves*7*ToneUnit + diatonicStep(rem)*ToneUnit
}

// diatonicStep maps a quarter-tone offset within an octave (0..23) onto the
// nearest natural scale step (0..6), used by StavePitch.
func diatonicStep(qt int) int {
	steps := []int{0, 4, 8, 10, 14, 18, 22}
	best, bestDist := 0, 1<<30
	for i, s := range steps {
		d := qt - s
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
