package ir

// SlurFlags is the closed set of slur/line modifiers (spec §3 "Slur/Line").
type SlurFlags uint32

const (
	SlurBelow SlurFlags = 1 << iota
	SlurWiggly
	SlurDashed
	SlurDotted
	SlurEditorial
	SlurCrossing
	SlurLineMode
	SlurOpenLeft
	SlurOpenRight
	SlurHorizontal
	SlurAbsoluteY
	SlurAtUnderlayLevel
)

// ModifierBlock carries fine x/y tweaks on one end of a slur/line (spec §3).
type ModifierBlock struct {
	DX, DY int
}

// SlurStart begins a slur or line, matched later by a SlurEnd of the same
// ID (spec §3 invariant: "for every slur/line start there must be a
// matching end of the same id unless a cross-system start-only continuation
// is explicit").
type SlurStart struct {
	Header

	ID    byte // id letter
	Flags SlurFlags

	StartMod, EndMod ModifierBlock

	// CrossSystem marks a start with no matching end in this movement: the
	// slur continues onto the next system (spec §3).
	CrossSystem bool
}

func (*SlurStart) Kind() Kind { return KindSlurStart }

// SlurEnd closes the SlurStart with the matching ID.
type SlurEnd struct {
	Header
	ID byte
}

func (*SlurEnd) Kind() Kind { return KindSlurEnd }

// TieFlags is the closed set of tie modifiers (spec §3 "Tie").
type TieFlags uint32

const (
	TieDefault TieFlags = 1 << iota
	TieSlurLike
	TieGlissando
	TieEditorial
	TieDashed
	TieDotted
)

// TieStart records a tie beginning at the preceding note/chord (spec §3
// invariant: "a tie item immediately follows the note (or chord) it starts
// from"). AboveCount/BelowCount split a chord's ties between above/below
// rendering (resolved by setcont, spec §4.5).
type TieStart struct {
	Header

	AboveCount, BelowCount int
	Flags                  TieFlags

	NotePrev Ref // the note/chord item this tie starts from
}

func (*TieStart) Kind() Kind { return KindTieStart }

// HairpinFlags is the closed set of crescendo/decrescendo wedge modifiers
// (spec §3 "Hairpin").
type HairpinFlags uint32

const (
	HairpinCrescendo HairpinFlags = 1 << iota // unset = decrescendo
	HairpinBelow
	HairpinMiddle
	HairpinHalfway
	HairpinAbsolute
	HairpinBarExtent
	HairpinEndMark
)

// HairpinStart begins a crescendo/decrescendo wedge.
type HairpinStart struct {
	Header
	Flags     HairpinFlags
	OpenWidth int
	XOffset, YOffset int
}

func (*HairpinStart) Kind() Kind { return KindHairpinStart }

// HairpinEnd closes the most recently opened hairpin on this stave.
type HairpinEnd struct{ Header }

func (*HairpinEnd) Kind() Kind { return KindHairpinEnd }

// PletFlags is the closed set of tuplet-bracket modifiers (spec §3 "Tuplet
// (plet)").
type PletFlags uint32

const (
	PletAbove PletFlags = 1 << iota
	PletBelow
	PletInvertLeftJog
	PletInvertRightJog
	PletNoMark
	PletNoBracket
	PletForceBracket
	PletAbsoluteY
)

// PletStart opens a tuplet bracket (spec §3 "Tuplet (plet)"); matched by a
// PletEnd item.
type PletStart struct {
	Header

	Numerator, Denominator int
	Flags                  PletFlags

	XAdjust        int
	LeftY, RightY  int
}

func (*PletStart) Kind() Kind { return KindPletStart }

// PletEnd terminates the tuplet bracket opened by the preceding PletStart.
type PletEnd struct{ Header }

func (*PletEnd) Kind() Kind { return KindPletEnd }
