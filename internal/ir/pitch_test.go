package ir

import "testing"

// TestStavePitchMiddleCTreble is testable property 1: middle C under a
// treble clef sits on pitchClefOffset[ClefTreble] exactly (zero octave
// offset, zero diatonic-step offset).
func TestStavePitchMiddleCTreble(t *testing.T) {
	got := StavePitch(MiddleC, ClefTreble)
	want := StaveLine1 + 8*ToneUnit
	if got != want {
		t.Fatalf("expected middle C under treble clef at stave-pitch %d, got %d", want, got)
	}
}

func TestStavePitchOneOctaveUpAddsSevenToneUnits(t *testing.T) {
	low := StavePitch(MiddleC, ClefTreble)
	high := StavePitch(MiddleC+Octave, ClefTreble)
	if high-low != 7*ToneUnit {
		t.Fatalf("expected one octave up to add 7 tone-units, got %d", high-low)
	}
}

func TestScaleDegreeOffsetMatchesNaturalCMajorScale(t *testing.T) {
	want := map[byte]int{'c': 0, 'd': 4, 'e': 8, 'f': 10, 'g': 14, 'a': 18, 'b': 22}
	for letter, w := range want {
		if got := ScaleDegreeOffset(letter); got != w {
			t.Fatalf("ScaleDegreeOffset(%q) = %d, want %d", letter, got, w)
		}
	}
}

func TestAccidentalQuarterTonesSharpFlatAreOpposite(t *testing.T) {
	if AccSharp.QuarterTones() != -AccFlat.QuarterTones() {
		t.Fatalf("expected sharp and flat to be equal and opposite in quarter-tones")
	}
	if AccDoubleSharp.QuarterTones() != 2*AccSharp.QuarterTones() {
		t.Fatalf("expected double-sharp to be twice a single sharp")
	}
}

func TestStemSwapPitchIsMiddleLine(t *testing.T) {
	if StemSwapPitch != StaveLine1+2*ToneUnit {
		t.Fatalf("expected StemSwapPitch to be the stave's middle line")
	}
}
