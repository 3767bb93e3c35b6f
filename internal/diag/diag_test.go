package diag

import "testing"

func TestReportTracksMaxSeverityAndErrorCount(t *testing.T) {
	s := NewSink(0)
	s.Report(Warning, SubsystemReader, "ERR001", "f.pmw", 1, "foo")
	s.Report(Major, SubsystemEngrave, "ERR003", "f.pmw", 2, 4, 5)
	if s.MaxSeverity() != Major {
		t.Fatalf("expected MaxSeverity Major, got %v", s.MaxSeverity())
	}
	if s.ErrorCount() != 1 {
		t.Fatalf("expected 1 error-or-above entry (Warning doesn't count), got %d", s.ErrorCount())
	}
	if s.HasFatal() {
		t.Fatalf("expected HasFatal false, no Fatal reported")
	}
}

func TestReportPromotesAfterThreshold(t *testing.T) {
	s := NewSink(1)
	s.Report(Major, SubsystemPaginate, "ERR100", "", 0, 10)
	if s.HasFatal() {
		t.Fatalf("expected the first Major report to stay Major, not yet promoted")
	}
	e := s.Report(Major, SubsystemPaginate, "ERR100", "", 0, 10)
	if e.Severity != Fatal {
		t.Fatalf("expected the second report to be promoted to Fatal, got %v", e.Severity)
	}
	if !s.HasFatal() {
		t.Fatalf("expected HasFatal true after promotion")
	}
}

func TestEntryMessageUsesCatalogTemplate(t *testing.T) {
	cat := NewCatalog()
	e := Entry{Code: "ERR001", Params: []any{"foo"}}
	got := e.Message(cat)
	want := `unknown directive "foo"`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEntryMessageFallsBackForUnknownCode(t *testing.T) {
	cat := NewCatalog()
	e := Entry{Code: "ERR999", Params: []any{1, 2}}
	got := e.Message(cat)
	want := "ERR999: [1 2]"
	if got != want {
		t.Fatalf("expected fallback rendering %q, got %q", want, got)
	}
}
