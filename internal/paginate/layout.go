package paginate

import "scorecraft/internal/ir"

// System is one accepted line of music: a contiguous run of bars from one
// movement, laid out at a shared x-scale (spec §3 "System blocks: one per
// accepted line; point into movement's bar range").
type System struct {
	Movement     *ir.Movement
	FirstBar     int // index into the stave's Bars slice
	LastBar      int
	Stretch      float64
	Width        int
	IsFirst      bool // first system of its movement (spec §4.5 "done-system")
}

// Page collects systems until their summed depth exceeds PageHeight.
type Page struct {
	Systems []*System
	Depth   int
}

// Config carries the layout constants of spec §4.5 that are movement/page
// geometry rather than musical content.
type Config struct {
	LineWidth       int // millipoints
	PageHeight      int
	SystemGap       int
	StaveSpacing    int // per unsuspended adjacent stave pair
}

// state names the five-state driver of spec §4.5.
type state int

const (
	stateNewMovement state = iota
	stateNewSystem
	stateInSystem
	stateDoneSystem
	stateDoneMovement
)

// Assembler drives the new-movement/new-system/in-system/done-system/
// done-movement state machine over one or more movements, producing Pages.
type Assembler struct {
	cfg   Config
	pages []*Page
	cur   *Page
}

// NewAssembler starts an assembler with an empty first page.
func NewAssembler(cfg Config) *Assembler {
	a := &Assembler{cfg: cfg}
	a.cur = &Page{}
	a.pages = []*Page{a.cur}
	return a
}

// Pages returns every page assembled so far.
func (a *Assembler) Pages() []*Page { return a.pages }

// RunMovement paginates mv from startBar (inclusive, 0-based) to the end of
// stave 0's Bars slice, which sets the bar count; each bar's width is the
// widest position-table width across all staves.
func (a *Assembler) RunMovement(mv *ir.Movement, startBar int) {
	for _, stave := range mv.Staves {
		DetectMultiRests(mv, stave)
	}

	st := stateNewMovement
	barIdx := startBar
	isFirstSystem := true

	var sys *System
	var used int

	for st != stateDoneMovement {
		switch st {
		case stateNewMovement:
			st = stateNewSystem

		case stateNewSystem:
			sys = &System{Movement: mv, FirstBar: barIdx, Stretch: 1.0, IsFirst: isFirstSystem}
			used = firstNoteX(mv)
			st = stateInSystem

		case stateInSystem:
			if barIdx >= barCount(mv) {
				sys.LastBar = barIdx - 1
				st = stateDoneSystem
				continue
			}
			width, forceBreak := widestBarWidth(mv, barIdx, 1.0)
			if used+width > a.cfg.LineWidth && barIdx > sys.FirstBar {
				sys.LastBar = barIdx - 1
				st = stateDoneSystem
				continue
			}
			used += width
			barIdx++
			if forceBreak {
				sys.LastBar = barIdx - 1
				st = stateDoneSystem
			}

		case stateDoneSystem:
			sys.Width = used
			sys.Stretch = stretchFactor(a.cfg.LineWidth, used)
			sys.Stretch = converge(mv, sys, a.cfg.LineWidth)
			a.commitSystem(mv, sys)
			isFirstSystem = false
			if barIdx >= barCount(mv) {
				st = stateDoneMovement
			} else {
				st = stateNewSystem
			}
		}
	}
}

// commitSystem computes this system's depth and pushes it onto the current
// page, opening a new page first if it doesn't fit (spec §4.5 "done-system":
// "push onto the current page if it fits, else close the page and open a
// new one").
func (a *Assembler) commitSystem(mv *ir.Movement, sys *System) {
	depth := systemDepth(mv, a.cfg)
	if a.cur.Depth+depth > a.cfg.PageHeight && len(a.cur.Systems) > 0 {
		a.cur = &Page{}
		a.pages = append(a.pages, a.cur)
	}
	a.cur.Systems = append(a.cur.Systems, sys)
	a.cur.Depth += depth
}

func systemDepth(mv *ir.Movement, cfg Config) int {
	unsuspended := 0
	for _, s := range mv.Staves {
		if !s.Suspended {
			unsuspended++
		}
	}
	if unsuspended == 0 {
		return cfg.SystemGap
	}
	return (unsuspended-1)*cfg.StaveSpacing + cfg.SystemGap
}

func barCount(mv *ir.Movement) int {
	if len(mv.Staves) == 0 {
		return 0
	}
	return len(mv.Staves[0].Bars)
}

// widestBarWidth computes the position-table width for barIdx across every
// stave and returns the widest, since all staves in a system share one
// x-scale (spec §4.4/§4.5: the system's x-position is common to every
// stave).
func widestBarWidth(mv *ir.Movement, barIdx int, stretch float64) (width int, forceBreak bool) {
	for _, stave := range mv.Staves {
		if barIdx >= len(stave.Bars) {
			continue
		}
		pv := BuildPositionTable(stave.Bars[barIdx], mv, stretch)
		if pv.Width > width {
			width = pv.Width
		}
		if pv.ForceBreak {
			forceBreak = true
		}
	}
	return width, forceBreak
}

// firstNoteX approximates the stave-name/clef/key/time column width a new
// system reserves before its first bar (spec §4.5 "new-system": stave-name
// column width, clef-column width, key column width, time column width).
func firstNoteX(mv *ir.Movement) int {
	const nameCol, clefCol, keyCol, timeCol = 0, 12000, 8000, 6000
	return nameCol + clefCol + keyCol + timeCol
}

// stretchFactor is the ratio of available line width to the system's
// unstretched content width (spec §4.5 "done-system": "left+right justify
// stretches the bar-contents").
func stretchFactor(lineWidth, used int) float64 {
	if used == 0 {
		return 1.0
	}
	return float64(lineWidth) / float64(used)
}

// converge re-lays-out a system's bars with a global stretch multiplier up
// to MaxStretchIterations times until the factor settles within
// StretchThreshold of 1.0 (spec §4.5 "repeat up to 4 iterations until the
// factor converges below threshold").
func converge(mv *ir.Movement, sys *System, lineWidth int) float64 {
	stretch := sys.Stretch
	for i := 0; i < mv.MaxStretchIterations; i++ {
		total := 0
		for bar := sys.FirstBar; bar <= sys.LastBar; bar++ {
			w, _ := widestBarWidth(mv, bar, stretch)
			total += w
		}
		if total == 0 {
			break
		}
		factor := float64(lineWidth) / float64(total)
		if abs(factor-1.0) <= (mv.StretchThreshold-1.0) || abs(1.0-factor) <= (mv.StretchThreshold-1.0) {
			stretch *= factor
			break
		}
		stretch *= factor
	}
	for bar := sys.FirstBar; bar <= sys.LastBar; bar++ {
		widestBarWidth(mv, bar, stretch)
	}
	return stretch
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
