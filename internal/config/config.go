// Package config implements the layered settings of spec §6: built-in
// defaults, overridden by an optional ".scorecraftrc" TOML file, overridden
// by explicit CLI flags. Grounded on cmd/corelx_devkit/settings.go's
// default/load/save layering (defaultDevKitSettings -> loadDevKitSettings
// merging onto the defaults -> explicit field overrides from the running
// session), adapted from JSON+os.UserConfigDir to TOML+an explicit rc path.
package config

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full set of engraving/layout/output options spec §6 names.
type Config struct {
	LineWidth    int     `toml:"line_width"`    // millipoints
	PageHeight   int     `toml:"page_height"`   // millipoints
	SystemGap    int     `toml:"system_gap"`    // millipoints
	StaveSpacing int     `toml:"stave_spacing"` // millipoints
	StretchThreshold float64 `toml:"stretch_threshold"`

	FontID        uint8  `toml:"font_id"`
	FontPath      string `toml:"font_path"`

	MIDITempo   uint32 `toml:"midi_tempo"`
	MIDIStartBar int   `toml:"midi_start_bar"`
	MIDIEndBar   int   `toml:"midi_end_bar"`

	OutputFormat string `toml:"output_format"` // "ps", "pdf", "midi", "preview"

	DiagVerbose bool `toml:"diag_verbose"`
}

// Default returns the built-in configuration baseline (spec §9 glossary
// defaults: A4-ish page geometry in millipoints, 120bpm MIDI tempo).
func Default() Config {
	return Config{
		LineWidth:        480000,
		PageHeight:       700000,
		SystemGap:        20000,
		StaveSpacing:     40000,
		StretchThreshold: 1.5,
		FontID:           0,
		MIDITempo:        500000,
		OutputFormat:     "ps",
	}
}

// LoadRC overlays path's TOML contents onto base, returning base unchanged
// if path doesn't exist (spec §6 layering: "defaults -> .scorecraftrc ->
// CLI flags").
func LoadRC(base Config, path string) (Config, error) {
	if path == "" {
		return base, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	cfg := base
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

// Overrides is the subset of Config that command-line flags may set; a
// field left at its zero value does not override the layer beneath it,
// matching the "explicit flags win, but only the ones actually passed"
// behavior flag.Parse's defaults can't distinguish on their own.
type Overrides struct {
	LineWidth    *int
	PageHeight   *int
	OutputFormat *string
	FontPath     *string
	MIDIStartBar *int
	MIDIEndBar   *int
	DiagVerbose  *bool
}

// ApplyFlags layers non-nil Overrides fields onto cfg.
func ApplyFlags(cfg Config, o Overrides) Config {
	if o.LineWidth != nil {
		cfg.LineWidth = *o.LineWidth
	}
	if o.PageHeight != nil {
		cfg.PageHeight = *o.PageHeight
	}
	if o.OutputFormat != nil {
		cfg.OutputFormat = *o.OutputFormat
	}
	if o.FontPath != nil {
		cfg.FontPath = *o.FontPath
	}
	if o.MIDIStartBar != nil {
		cfg.MIDIStartBar = *o.MIDIStartBar
	}
	if o.MIDIEndBar != nil {
		cfg.MIDIEndBar = *o.MIDIEndBar
	}
	if o.DiagVerbose != nil {
		cfg.DiagVerbose = *o.DiagVerbose
	}
	return cfg
}

// DefaultRCPath returns the conventional per-user rc file location, or ""
// if the platform config directory can't be determined.
func DefaultRCPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return dir + "/scorecraft/scorecraftrc.toml"
}
