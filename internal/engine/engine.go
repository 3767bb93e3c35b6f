// Package engine ties the reader, engrave, paginate, drawvm, backend, and
// midiout packages into one mutable aggregate that owns a run end to end,
// the way the teacher's emulator.Emulator owns CPU+Bus+PPU+APU+Input+Clock
// and devkit.Service wraps it behind a UI-agnostic contract (grounded on
// internal/emulator/emulator.go's "one struct, one constructor, one set of
// lifecycle methods" shape and internal/devkit/service.go's mutex-guarded
// wrapper around that struct).
package engine

import (
	"fmt"
	"strings"
	"sync"

	"scorecraft/internal/config"
	"scorecraft/internal/diag"
	"scorecraft/internal/engrave"
	"scorecraft/internal/ir"
	"scorecraft/internal/midiout"
	"scorecraft/internal/paginate"
	"scorecraft/internal/reader/musicxml"
	"scorecraft/internal/reader/native"
	"scorecraft/internal/textmetrics"
)

// Snapshot is a UI-agnostic summary of the current run, mirroring the
// shape of devkit.EmulatorSnapshot.
type Snapshot struct {
	Loaded      bool
	Movements   int
	Pages       int
	ErrorCount  int
	MaxSeverity diag.Severity
}

// Engine is the single mutable aggregate a frontend (CLI or preview tool)
// drives: it owns the loaded movements, the paginated layout, and the
// diagnostics sink accumulated while getting there.
type Engine struct {
	mu sync.RWMutex

	cfg      config.Config
	provider textmetrics.Provider
	diags    *diag.Sink

	movements []*ir.Movement
	pages     []*paginate.Page
}

// New constructs an Engine from cfg, registering a builtin text-metrics
// provider by default (spec §6: a real font may be swapped in later via
// SetFontProvider, matching how the teacher's Emulator accepts a Logger
// override through NewEmulatorWithLogger rather than hardcoding one).
func New(cfg config.Config) *Engine {
	return &Engine{
		cfg:      cfg,
		provider: textmetrics.NewBuiltinProvider(),
		diags:    diag.NewSink(50),
	}
}

// SetFontProvider swaps in a provider backed by a registered SFNT font,
// analogous to how the teacher's Service reassigns s.emu under its lock.
func (e *Engine) SetFontProvider(p textmetrics.Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.provider = p
}

// Diagnostics returns the accumulated diagnostics sink.
func (e *Engine) Diagnostics() *diag.Sink {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.diags
}

// LoadNative reads source as a native-notation score (preprocessed then
// parsed bar by bar) and appends one movement built from its bars.
//
// This reduced surface reads a single stave, one bar per non-empty expanded
// source line (each line ending in a barline), rather than the full multi-stave/multi-movement
// header grammar; it is enough to exercise preprocessor.go/lexer.go/parser.go
// end to end and is a named scope reduction, not a silent omission.
func (e *Engine) LoadNative(source string) (*ir.Movement, error) {
	preds := native.Predicates{
		IsScore:      true,
		MacroDefined: func(string) bool { return false },
		OutputFormat: e.cfg.OutputFormat,
	}
	noInclude := func(path string) (string, error) {
		return "", fmt.Errorf("native: *include disabled (%q requested)", path)
	}
	pp := native.NewPreprocessor(preds, noInclude)
	lines, err := pp.Expand(source)
	if err != nil {
		e.report(diag.Major, diag.SubsystemReader, "ERR001", err)
		return nil, err
	}

	rd := native.NewReader(&native.State{}, nil)
	mv := ir.NewMovement(0)
	stave := &ir.Stave{Number: 1, Lines: 5}

	for _, line := range lines {
		if line == "" {
			continue
		}
		bar, err := rd.ReadBar(line)
		if err != nil {
			e.report(diag.Major, diag.SubsystemReader, "ERR002", err)
			return nil, err
		}
		e.checkBarLength(bar, mv)
		stave.Bars = append(stave.Bars, bar)
	}
	mv.Staves = append(mv.Staves, stave)

	e.mu.Lock()
	mv.Index = len(e.movements)
	e.movements = append(e.movements, mv)
	e.mu.Unlock()
	return mv, nil
}

// LoadMusicXML parses an entire MusicXML document into one movement, one
// stave per <part>.
func (e *Engine) LoadMusicXML(source string) (*ir.Movement, error) {
	res, err := musicxml.Parse(strings.NewReader(source))
	if err != nil {
		e.report(diag.Major, diag.SubsystemXML, "ERR010", err)
		return nil, err
	}
	out, err := musicxml.Analyse(res.Root)
	if err != nil {
		e.report(diag.Major, diag.SubsystemXML, "ERR011", err)
		return nil, err
	}
	for _, stave := range out.Movement.Staves {
		for _, bar := range stave.Bars {
			e.checkBarLength(bar, out.Movement)
		}
	}

	e.mu.Lock()
	out.Movement.Index = len(e.movements)
	e.movements = append(e.movements, out.Movement)
	e.mu.Unlock()
	return out.Movement, nil
}

// checkBarLength implements testable property 3: bar ticks must match the
// prevailing time signature within TupletRound, else a warning (not a
// fatal) diagnostic is raised — malformed bars still paginate, per spec
// §7's "Warning" severity allowing the run to continue.
func (e *Engine) checkBarLength(bar *ir.Bar, mv *ir.Movement) {
	beatType := mv.DefaultTime.BeatType
	if beatType == 0 {
		return
	}
	want := mv.DefaultTime.MeasureLength()
	got := bar.TotalTicks()
	if got == 0 || want == 0 {
		return
	}
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > ir.TupletRound {
		e.report(diag.Warning, diag.SubsystemEngrave, "ERR020", fmt.Errorf("bar has %d ticks, expected %d", got, want))
	}
}

// Engrave runs chord-sorting, accidental-packing, and beam-stem-levelling
// over every bar of every loaded movement (spec §4.1/§4.4's note-processing
// passes), mutating the IR in place before pagination sees it.
func (e *Engine) Engrave() {
	e.mu.RLock()
	movements := append([]*ir.Movement(nil), e.movements...)
	e.mu.RUnlock()

	for _, mv := range movements {
		for _, stave := range mv.Staves {
			for _, bar := range stave.Bars {
				e.engraveBar(bar)
			}
		}
	}
}

func (e *Engine) engraveBar(bar *ir.Bar) {
	var beamDir *engrave.StemDir
	var tiedDir *engrave.StemDir

	bar.Walk(func(ref ir.Ref, it ir.Item) bool {
		n, ok := it.(*ir.Note)
		if !ok {
			return true
		}
		members := ir.ChordMembers(bar, ref)
		dir := engrave.ResolveStemDirection(n, beamDir, tiedDir, ir.StemSwapPitch)
		engrave.SortChord(bar, ref, dir)
		if len(members) > 1 {
			engrave.DetectSeconds(bar, members)
			engrave.PackAccidentals(bar, members)
		}
		d := dir
		tiedDir = &d
		return true
	})

	for _, g := range engrave.CollectBeamGroups(bar) {
		engrave.LevelStems(g)
	}
}

// Paginate builds the page/system layout for every loaded movement using
// cfg's geometry, replacing any previously computed pages.
func (e *Engine) Paginate() []*paginate.Page {
	e.mu.Lock()
	cfg := e.cfg
	movements := append([]*ir.Movement(nil), e.movements...)
	e.mu.Unlock()

	asm := paginate.NewAssembler(paginate.Config{
		LineWidth:    cfg.LineWidth,
		PageHeight:   cfg.PageHeight,
		SystemGap:    cfg.SystemGap,
		StaveSpacing: cfg.StaveSpacing,
	})
	for _, mv := range movements {
		asm.RunMovement(mv, 0)
	}
	pages := asm.Pages()

	e.mu.Lock()
	e.pages = pages
	e.mu.Unlock()
	return pages
}

// ExportMIDI renders the nth loaded movement to a type-0 Standard MIDI
// File using cfg's tempo/bar-range settings.
func (e *Engine) ExportMIDI(movementIndex int) ([]byte, error) {
	e.mu.RLock()
	if movementIndex < 0 || movementIndex >= len(e.movements) {
		e.mu.RUnlock()
		return nil, fmt.Errorf("engine: no movement %d loaded", movementIndex)
	}
	mv := e.movements[movementIndex]
	cfg := e.cfg
	e.mu.RUnlock()

	data, err := midiout.ExportMovement(mv, midiout.Config{
		MicrosecondsPerQuarter: cfg.MIDITempo,
		StartBar:               cfg.MIDIStartBar,
		EndBar:                 cfg.MIDIEndBar,
		HonorRepeats:           true,
	})
	if err != nil {
		e.report(diag.Major, diag.SubsystemMIDI, "ERR030", err)
	}
	return data, err
}

// Snapshot returns a UI-agnostic summary of the current run.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		Loaded:      len(e.movements) > 0,
		Movements:   len(e.movements),
		Pages:       len(e.pages),
		ErrorCount:  e.diags.ErrorCount(),
		MaxSeverity: e.diags.MaxSeverity(),
	}
}

func (e *Engine) report(sev diag.Severity, sub diag.Subsystem, code string, err error) {
	e.diags.Report(sev, sub, code, "", 0, err.Error())
}
