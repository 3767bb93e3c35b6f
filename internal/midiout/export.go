package midiout

import "scorecraft/internal/ir"

// Config carries the CLI-level MIDI export options of spec §6:
// -midistart/-midiend bar range and the default tempo.
type Config struct {
	MicrosecondsPerQuarter uint32 // tempo, written once at tick 0 for the whole export
	StartBar, EndBar       int    // 1-based inclusive bar range; 0 means unbounded
	HonorRepeats           bool   // false only when a single bar is being exported
}

// DefaultTempo is 120bpm (500000 microseconds per quarter note).
const DefaultTempo = 500000

// tremoloScrubCounts maps a tremolo ornament kind to the note-subdivision
// count used to expand a single tremolo note into repeated notes: 2, 4 and 6
// for one-, two- and three-stroke tremolos.
var tremoloScrubCounts = map[ir.OrnamentKind]int{
	ir.OrnamentTremolo1: 2,
	ir.OrnamentTremolo2: 4,
	ir.OrnamentTremolo3: 6,
}

// ExportMovement writes every stave of mv to a single Type-0 track,
// honoring cfg's bar range, and returns the rendered SMF bytes.
func ExportMovement(mv *ir.Movement, cfg Config) ([]byte, error) {
	w := NewWriter()
	tempo := cfg.MicrosecondsPerQuarter
	if tempo == 0 {
		tempo = DefaultTempo
	}
	w.Tempo(0, tempo)

	ticksPerLenUnit := float64(TicksPerCrotchet) / float64(ir.BaseLength(ir.NoteCrotchet))

	for staveIdx, stave := range mv.Staves {
		channel := uint8(staveIdx)
		if channel > 15 {
			channel = 15
		}
		exportStave(w, stave, mv, cfg, channel, ticksPerLenUnit)
	}

	return w.Build()
}

func exportStave(w *Writer, stave *ir.Stave, mv *ir.Movement, cfg Config, channel uint8, ticksPerLenUnit float64) {
	barTick := 0
	singleBar := cfg.StartBar != 0 && cfg.EndBar != 0 && cfg.StartBar == cfg.EndBar

	for barIdx, bar := range stave.Bars {
		number := barIdx + 1
		if cfg.StartBar != 0 && number < cfg.StartBar {
			continue
		}
		if cfg.EndBar != 0 && number > cfg.EndBar {
			break
		}
		if bar.RepeatIteration > 0 && (!cfg.HonorRepeats || singleBar) {
			continue
		}

		barTick = exportBar(w, bar, channel, barTick, ticksPerLenUnit)
	}
}

// pendingTie merges a tied note's duration into the note it continues,
// emitting only one note-on/note-off pair for the whole tied run (spec §6
// "tie-length merging").
type pendingTie struct {
	pitch        uint8
	onTick       int
	accumTicks   int
	channel      uint8
}

func exportBar(w *Writer, bar *ir.Bar, channel uint8, startTick int, ticksPerLenUnit float64) int {
	offset := 0
	tick := startTick

	var pendingOrnament *ir.Ornament
	var tie *pendingTie

	bar.Walk(func(_ ir.Ref, it ir.Item) bool {
		switch n := it.(type) {
		case *ir.Ornament:
			if _, ok := tremoloScrubCounts[n.Kind_]; ok {
				pendingOrnament = n
			}
			return true
		case *ir.Note:
			noteTick := tick + ticksFromOffset(offset, ticksPerLenUnit)
			dur := ticksFromOffset(n.Ticks, ticksPerLenUnit)
			offset += n.Ticks

			if n.Flags&ir.FlagNoPlay != 0 || n.Flags&ir.FlagGrace != 0 {
				return true
			}

			pitch := midiPitch(n.AbsPitch)
			scrub := 1
			if pendingOrnament != nil {
				scrub = tremoloScrubCounts[pendingOrnament.Kind_]
				pendingOrnament = nil
			}

			if n.Flags&ir.FlagTiedFrom != 0 && tie != nil && tie.pitch == pitch {
				tie.accumTicks += dur
				return true
			}
			flushTie(w, tie)
			tie = nil

			emitNoteRun(w, channel, pitch, noteTick, dur, scrub)

			if willTieForward(bar, it) {
				tie = &pendingTie{pitch: pitch, onTick: noteTick, accumTicks: dur, channel: channel}
			}
			return true
		case *ir.ChordContinuation:
			if n.Flags&ir.FlagNoPlay != 0 {
				return true
			}
			dur := prevNoteTicks(bar, it)
			noteTick := tick + ticksFromOffset(offset-dur, ticksPerLenUnit)
			emitNoteRun(w, channel, midiPitch(n.AbsPitch), noteTick, ticksFromOffset(dur, ticksPerLenUnit), 1)
			return true
		case *ir.Barline:
			return true
		}
		return true
	})

	flushTie(w, tie)
	return startTick + ticksFromOffset(bar.TotalTicks(), ticksPerLenUnit)
}

func flushTie(w *Writer, tie *pendingTie) {
	if tie == nil {
		return
	}
	w.NoteOn(tie.onTick, tie.channel, tie.pitch, 90)
	w.NoteOff(tie.onTick+tie.accumTicks, tie.channel, tie.pitch)
}

func emitNoteRun(w *Writer, channel, pitch uint8, startTick, totalDur, scrub int) {
	if scrub <= 1 {
		w.NoteOn(startTick, channel, pitch, 90)
		w.NoteOff(startTick+totalDur, channel, pitch)
		return
	}
	each := totalDur / scrub
	for i := 0; i < scrub; i++ {
		on := startTick + i*each
		w.NoteOn(on, channel, pitch, 90)
		w.NoteOff(on+each, channel, pitch)
	}
}

// willTieForward reports whether it is immediately followed by a TieStart
// referencing it, so the note just emitted should be merged with the next.
func willTieForward(bar *ir.Bar, it ir.Item) bool {
	next := ir.Next(it)
	if next == ir.NoRef {
		return false
	}
	ts, ok := bar.Items[next].(*ir.TieStart)
	return ok && ts.NotePrev != ir.NoRef
}

// prevNoteTicks finds the duration of the Note that opened the chord a
// ChordContinuation belongs to, used so every member shares the chord's
// duration.
func prevNoteTicks(bar *ir.Bar, cont ir.Item) int {
	r := ir.Prev(cont)
	for r != ir.NoRef {
		if n, ok := bar.Items[r].(*ir.Note); ok {
			return n.Ticks
		}
		r = ir.Prev(bar.Items[r])
	}
	return 0
}

// midiPitch converts a quarter-tone absolute pitch (middle C = 96) to a
// MIDI note number (middle C = 60), truncating quarter-tone accidentals to
// the nearest semitone since standard MIDI has no microtonal pitch.
func midiPitch(absPitch int) uint8 {
	semis := 60 + (absPitch-ir.MiddleC)/2
	if semis < 0 {
		semis = 0
	}
	if semis > 127 {
		semis = 127
	}
	return uint8(semis)
}

func ticksFromOffset(offset int, ticksPerLenUnit float64) int {
	return int(float64(offset)*ticksPerLenUnit + 0.5)
}
