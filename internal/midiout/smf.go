// Package midiout writes the Type-0 Standard MIDI File spec §6 describes
// as a parallel, non-pagination-affecting consumer of the IR. Grounded on
// internal/rom/builder.go's append-then-finalize binary builder (a running
// byte/word buffer, a header patched in at Build time, little-endian
// encoding via encoding/binary) generalized from a ROM image to an SMF
// byte stream, and on internal/apu/fixed_point.go's sample-accurate event
// scheduling idiom, generalized from audio samples to MIDI ticks.
package midiout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// TicksPerCrotchet is the SMF division field: 24 ticks per quarter note
// (spec §6 "division 24").
const TicksPerCrotchet = 24

// EventType is the closed set of MIDI/meta events this writer emits.
type EventType uint8

const (
	EventNoteOn EventType = iota
	EventNoteOff
	EventTempo
	EventEndOfTrack
)

// Event is one scheduled MIDI event at an absolute tick. Seq is the stable
// secondary sort key spec §6 requires ("a stable secondary sort key to
// keep ordering of same-tick events").
type Event struct {
	Tick     int
	Seq      int
	Type     EventType
	Channel  uint8
	Pitch    uint8 // MIDI note number, unused for EventTempo/EventEndOfTrack
	Velocity uint8
	Tempo    uint32 // microseconds per quarter note, for EventTempo
}

// Writer accumulates Events for a single Type-0 track and renders the
// final MThd+MTrk byte stream on Build.
type Writer struct {
	events []Event
	seq    int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

func (w *Writer) next() int { w.seq++; return w.seq }

// NoteOn schedules a note-on at tick for channel/pitch/velocity.
func (w *Writer) NoteOn(tick int, channel, pitch, velocity uint8) {
	w.events = append(w.events, Event{Tick: tick, Seq: w.next(), Type: EventNoteOn, Channel: channel, Pitch: pitch, Velocity: velocity})
}

// NoteOff schedules a note-off at tick.
func (w *Writer) NoteOff(tick int, channel, pitch uint8) {
	w.events = append(w.events, Event{Tick: tick, Seq: w.next(), Type: EventNoteOff, Channel: channel, Pitch: pitch})
}

// Tempo schedules a tempo meta-event (spec §6 "Tempo changes are emitted
// as meta-events 0xFF 0x51 0x03 at bar boundaries").
func (w *Writer) Tempo(tick int, microsecondsPerQuarter uint32) {
	w.events = append(w.events, Event{Tick: tick, Seq: w.next(), Type: EventTempo, Tempo: microsecondsPerQuarter})
}

// Build renders the header chunk (MThd, length 6, format 0, tracks 1,
// division 24) and a single MTrk whose length is patched in after the
// event stream is written (spec §6).
func (w *Writer) Build() ([]byte, error) {
	sort.SliceStable(w.events, func(i, j int) bool {
		if w.events[i].Tick != w.events[j].Tick {
			return w.events[i].Tick < w.events[j].Tick
		}
		return w.events[i].Seq < w.events[j].Seq
	})

	var track bytes.Buffer
	lastTick := 0
	var runningStatus byte

	for _, e := range w.events {
		delta := e.Tick - lastTick
		if delta < 0 {
			return nil, fmt.Errorf("midiout: event at tick %d scheduled after tick %d", e.Tick, lastTick)
		}
		lastTick = e.Tick
		writeVLQ(&track, uint32(delta))

		switch e.Type {
		case EventNoteOn:
			status := 0x90 | (e.Channel & 0x0F)
			if status != runningStatus {
				track.WriteByte(status)
				runningStatus = status
			}
			track.WriteByte(e.Pitch & 0x7F)
			track.WriteByte(e.Velocity & 0x7F)
		case EventNoteOff:
			status := 0x80 | (e.Channel & 0x0F)
			if status != runningStatus {
				track.WriteByte(status)
				runningStatus = status
			}
			track.WriteByte(e.Pitch & 0x7F)
			track.WriteByte(0)
		case EventTempo:
			runningStatus = 0
			track.Write([]byte{0xFF, 0x51, 0x03})
			track.WriteByte(byte(e.Tempo >> 16))
			track.WriteByte(byte(e.Tempo >> 8))
			track.WriteByte(byte(e.Tempo))
		case EventEndOfTrack:
			runningStatus = 0
			track.Write([]byte{0xFF, 0x2F, 0x00})
		}
	}
	writeVLQ(&track, 0)
	track.Write([]byte{0xFF, 0x2F, 0x00})

	var out bytes.Buffer
	out.WriteString("MThd")
	binary.Write(&out, binary.BigEndian, uint32(6))
	binary.Write(&out, binary.BigEndian, uint16(0)) // format 0
	binary.Write(&out, binary.BigEndian, uint16(1)) // 1 track
	binary.Write(&out, binary.BigEndian, uint16(TicksPerCrotchet))

	out.WriteString("MTrk")
	binary.Write(&out, binary.BigEndian, uint32(track.Len()))
	out.Write(track.Bytes())

	return out.Bytes(), nil
}

// writeVLQ appends v as a MIDI variable-length quantity.
func writeVLQ(buf *bytes.Buffer, v uint32) {
	var stack [5]byte
	n := 0
	stack[n] = byte(v & 0x7F)
	n++
	v >>= 7
	for v > 0 {
		stack[n] = byte(v&0x7F) | 0x80
		n++
		v >>= 7
	}
	for i := n - 1; i >= 0; i-- {
		buf.WriteByte(stack[i])
	}
}
