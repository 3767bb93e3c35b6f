package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRCOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rc.toml")
	if err := os.WriteFile(path, []byte("line_width = 123456\noutput_format = \"midi\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadRC(Default(), path)
	if err != nil {
		t.Fatalf("LoadRC: %v", err)
	}
	if cfg.LineWidth != 123456 {
		t.Fatalf("expected rc file to override line_width, got %d", cfg.LineWidth)
	}
	if cfg.OutputFormat != "midi" {
		t.Fatalf("expected rc file to override output_format, got %q", cfg.OutputFormat)
	}
	if cfg.SystemGap != Default().SystemGap {
		t.Fatalf("expected fields absent from the rc file to keep their default, got %d", cfg.SystemGap)
	}
}

func TestLoadRCMissingFileReturnsBase(t *testing.T) {
	cfg, err := LoadRC(Default(), filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadRC: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults unchanged when the rc file is missing")
	}
}

func TestApplyFlagsOnlyOverridesSetFields(t *testing.T) {
	base := Default()
	lw := 99999
	cfg := ApplyFlags(base, Overrides{LineWidth: &lw})
	if cfg.LineWidth != 99999 {
		t.Fatalf("expected LineWidth override to apply, got %d", cfg.LineWidth)
	}
	if cfg.OutputFormat != base.OutputFormat {
		t.Fatalf("expected unset override fields to keep the base value, got %q", cfg.OutputFormat)
	}
}
