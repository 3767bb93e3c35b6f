package midiout

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBuildProducesWellFormedHeader(t *testing.T) {
	w := NewWriter()
	w.Tempo(0, DefaultTempo)
	w.NoteOn(0, 0, 60, 90)
	w.NoteOff(24, 0, 60)

	data, err := w.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("MThd")) {
		t.Fatalf("expected MThd prefix, got %q", data[:4])
	}
	headerLen := binary.BigEndian.Uint32(data[4:8])
	if headerLen != 6 {
		t.Fatalf("expected header length 6, got %d", headerLen)
	}
	format := binary.BigEndian.Uint16(data[8:10])
	tracks := binary.BigEndian.Uint16(data[10:12])
	division := binary.BigEndian.Uint16(data[12:14])
	if format != 0 || tracks != 1 || division != TicksPerCrotchet {
		t.Fatalf("unexpected header fields: format=%d tracks=%d division=%d", format, tracks, division)
	}
	if !bytes.Contains(data, []byte("MTrk")) {
		t.Fatalf("expected an MTrk chunk")
	}
}

func TestBuildOrdersSameTickEventsBySeq(t *testing.T) {
	w := NewWriter()
	w.NoteOn(0, 0, 72, 90)
	w.NoteOn(0, 0, 60, 90)

	data, err := w.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	track := trackBytes(t, data)
	// Both events at tick 0: delta 0x00, status 0x90, pitch 72, vel 90, then
	// (running status, so no repeated status byte) delta 0x00, pitch 60, vel 90.
	want := []byte{0x00, 0x90, 72, 90, 0x00, 60, 90}
	if !bytes.HasPrefix(track, want) {
		t.Fatalf("expected events in insertion order with running status, got % X", track[:len(want)])
	}
}

func trackBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	idx := bytes.Index(data, []byte("MTrk"))
	if idx < 0 {
		t.Fatal("no MTrk chunk found")
	}
	length := binary.BigEndian.Uint32(data[idx+4 : idx+8])
	return data[idx+8 : idx+8+int(length)]
}

func TestMidiPitchMiddleCRoundTrip(t *testing.T) {
	if got := midiPitch(96); got != 60 {
		t.Fatalf("expected middle C (abspitch 96) to map to MIDI 60, got %d", got)
	}
}
