// Command scorecraft is the CLI entry point of spec §6: it reads a source
// score (native notation or MusicXML), engraves and paginates it, and
// writes either a MIDI file or a recorded-drawing dump depending on
// -format. Grounded on cmd/emulator/main.go's flag-parse-then-validate
// shape, generalized from ROM/display flags to score/output-format flags.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scorecraft/internal/backend"
	"scorecraft/internal/config"
	"scorecraft/internal/engine"
)

func main() {
	inputPath := flag.String("in", "", "Path to a source score (.pmw native notation or .musicxml)")
	outputPath := flag.String("out", "", "Output path (required for -format midi/ps)")
	format := flag.String("format", "", "Output format: midi, ps, or summary (default: from -in's extension, falling back to summary)")
	rcPath := flag.String("rc", "", "Path to a .scorecraftrc TOML overlay (default: the platform config dir)")
	lineWidth := flag.Int("linewidth", 0, "Override line width in millipoints")
	midiStart := flag.Int("midistart", 0, "First bar (1-based) to include in a MIDI export")
	midiEnd := flag.Int("midiend", 0, "Last bar (1-based) to include in a MIDI export, 0 means to the end")
	verbose := flag.Bool("verbose", false, "Enable verbose diagnostics")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: scorecraft -in <score> [-out <path>] [-format midi|ps|summary]")
		fmt.Println("  -in <path>        Path to a source score")
		fmt.Println("  -out <path>       Output path (required for -format midi/ps)")
		fmt.Println("  -format <fmt>     midi, ps, or summary")
		fmt.Println("  -rc <path>        .scorecraftrc TOML overlay")
		fmt.Println("  -linewidth <mp>   Override line width in millipoints")
		fmt.Println("  -midistart <n>    First bar of a MIDI export")
		fmt.Println("  -midiend <n>      Last bar of a MIDI export")
		fmt.Println("  -verbose          Enable verbose diagnostics")
		os.Exit(1)
	}

	resolvedFormat := *format
	if resolvedFormat == "" {
		resolvedFormat = formatFromExtension(*inputPath)
	}

	rc := *rcPath
	if rc == "" {
		rc = config.DefaultRCPath()
	}
	cfg, err := config.LoadRC(config.Default(), rc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rc file: %v\n", err)
		os.Exit(1)
	}

	overrides := config.Overrides{DiagVerbose: verbose}
	if *lineWidth > 0 {
		overrides.LineWidth = lineWidth
	}
	if *midiStart > 0 {
		overrides.MIDIStartBar = midiStart
	}
	if *midiEnd > 0 {
		overrides.MIDIEndBar = midiEnd
	}
	cfg = config.ApplyFlags(cfg, overrides)
	cfg.OutputFormat = resolvedFormat

	source, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(cfg)

	var loadErr error
	if isMusicXML(*inputPath) {
		_, loadErr = eng.LoadMusicXML(string(source))
	} else {
		_, loadErr = eng.LoadNative(string(source))
	}
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "Error reading score: %v\n", loadErr)
		os.Exit(1)
	}

	eng.Engrave()
	pages := eng.Paginate()

	switch resolvedFormat {
	case "midi":
		if *outputPath == "" {
			fmt.Fprintln(os.Stderr, "Error: -out is required for -format midi")
			os.Exit(1)
		}
		data, err := eng.ExportMIDI(0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting MIDI: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing MIDI file: %v\n", err)
			os.Exit(1)
		}
	case "ps":
		if *outputPath == "" {
			fmt.Fprintln(os.Stderr, "Error: -out is required for -format ps")
			os.Exit(1)
		}
		if err := writeRecordedDraw(*outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
			os.Exit(1)
		}
	default:
		snap := eng.Snapshot()
		fmt.Printf("Loaded %d movement(s), %d page(s)\n", snap.Movements, len(pages))
		if snap.ErrorCount > 0 {
			fmt.Printf("%d diagnostic(s), highest severity %s\n", snap.ErrorCount, snap.MaxSeverity)
		}
	}

	if *verbose {
		for _, e := range eng.Diagnostics().Entries() {
			fmt.Fprintf(os.Stderr, "[%s/%s] %s %v\n", e.Severity, e.Subsystem, e.Code, e.Params)
		}
	}
}

// writeRecordedDraw renders every page to a RecordingWriter and dumps its
// operation log; a real PostScript/PDF backend is a pluggable collaborator
// per spec §1, out of scope for this CLI skeleton.
func writeRecordedDraw(outputPath string) error {
	// Pagination output is positional data; the draw-procedure pass that
	// would walk it through internal/drawvm against a Writer is the
	// pluggable renderer's job (spec §1) — this CLI path dumps an empty
	// recording until a drawprocs library is wired in.
	w := backend.NewRecordingWriter()
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, op := range w.Ops {
		if _, err := fmt.Fprintln(f, op.String()); err != nil {
			return err
		}
	}
	return nil
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return "midi"
	case ".ps":
		return "ps"
	default:
		return "summary"
	}
}

func isMusicXML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".musicxml", ".mxl":
		return true
	default:
		return false
	}
}
