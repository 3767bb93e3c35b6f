package backend

import "testing"

func TestRecordingWriterCoalescesRepeatedColour(t *testing.T) {
	w := NewRecordingWriter()
	w.SetColour(RGB{1, 0, 0})
	w.SetColour(RGB{1, 0, 0})
	w.SetColour(RGB{0, 1, 0})

	var colourOps int
	for _, op := range w.Ops {
		if op.Name == "setcolour" {
			colourOps++
		}
	}
	if colourOps != 2 {
		t.Fatalf("expected redundant identical setcolour to be coalesced away, got %d setcolour ops: %v", colourOps, w.Ops)
	}
}

func TestRecordingWriterCoalescesDashAndCapJoin(t *testing.T) {
	w := NewRecordingWriter()
	w.SetDash(1, 2)
	w.SetDash(1, 2)
	w.SetDash(3, 4)
	w.SetCapAndJoin(CapJoinRound)
	w.SetCapAndJoin(CapJoinRound)

	var dashOps, capJoinOps int
	for _, op := range w.Ops {
		switch op.Name {
		case "setdash":
			dashOps++
		case "setcapandjoin":
			capJoinOps++
		}
	}
	if dashOps != 2 {
		t.Fatalf("expected 2 setdash ops after coalescing, got %d", dashOps)
	}
	if capJoinOps != 1 {
		t.Fatalf("expected 1 setcapandjoin op after coalescing, got %d", capJoinOps)
	}
}

func TestRecordingWriterStartBarAndString(t *testing.T) {
	w := NewRecordingWriter()
	w.StartBar(3, 1)
	x, y := 1000.0, 2000.0
	w.String("hello", 0, &x, &y, false)

	if len(w.Ops) != 2 {
		t.Fatalf("expected 2 ops, got %d: %v", len(w.Ops), w.Ops)
	}
	if w.Ops[0].Name != "startbar" || w.Ops[1].Name != "string" {
		t.Fatalf("unexpected op order: %v", w.Ops)
	}
}
