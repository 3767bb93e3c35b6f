package ir

// OrnamentKind is the closed set of ornament marks, drawn as a separate item
// preceding the note it decorates (spec §3 "Ornaments").
type OrnamentKind uint8

const (
	OrnamentTrill OrnamentKind = iota
	OrnamentMordent
	OrnamentMordentUpper
	OrnamentTurn
	OrnamentInvertedTurn
	OrnamentReversedTurn
	OrnamentInvertedReversedTurn
	OrnamentArpeggio
	OrnamentArpeggioUp
	OrnamentArpeggioDown
	OrnamentFermata
	OrnamentTremolo1
	OrnamentTremolo2
	OrnamentTremolo3
)

// Ornament is the item preceding a note that carries a tr/mordent/turn/
// arpeggio/fermata/tremolo mark, or an above/below accidental drawn as an
// ornament (spec §3).
type Ornament struct {
	Header

	Kind_ OrnamentKind

	XOffset, YOffset int // millipoints
	Above            bool
	Bracketed        bool

	// TrillAccidental is set when the ornament is an accidental drawn above
	// a trill (e.g. a sharp over a tr sign); TrillOffset positions it.
	TrillAccidental AccidentalKind
	TrillOffset     int
}

func (*Ornament) Kind() Kind { return KindOrnament }
