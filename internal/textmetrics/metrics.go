// Package textmetrics implements the two external collaborator signatures
// spec §1 carves out of the core engine's scope: width(str, font, size) ->
// (width, r2l-adjust, height), and glyph-char(virtual-id) -> font-char. The
// core (internal/ir, internal/paginate, internal/backend) only ever calls
// through the Provider interface; concrete metrics come from real font data
// via golang.org/x/image/font/sfnt (promoted here from an indirect
// transitive dependency the teacher already carries through fyne).
package textmetrics

import (
	"fmt"

	"scorecraft/internal/ir"
)

// Metrics is one measurement result: Width and Height in millipoints,
// R2LAdjust is the leftward adjustment needed when laying out right-to-left
// script runs (spec §1 signature).
type Metrics struct {
	Width     float64
	R2LAdjust float64
	Height    float64
}

// Provider measures text runs tagged by font id, and translates virtual
// music glyph ids to concrete font characters (spec §1).
type Provider interface {
	// Width measures an encoded string at the given point size.
	Width(s ir.EncodedString, size float64) (Metrics, error)
	// GlyphChar maps a virtual music-glyph id (e.g. notehead, clef, rest)
	// to the rune drawn from the music font.
	GlyphChar(virtualID int) (rune, bool)
}

// VirtualGlyph is the closed set of virtual music-glyph ids the engraver
// asks the music font for; font-specific encodings are indirected through a
// GlyphMap so a font swap never touches engraving code.
type VirtualGlyph int

const (
	GlyphNoteheadCrotchet VirtualGlyph = iota
	GlyphNoteheadMinim
	GlyphNoteheadBreve
	GlyphNoteheadSemibreve
	GlyphNoteheadCross
	GlyphNoteheadDiamond
	GlyphClefTreble
	GlyphClefBass
	GlyphClefAlto
	GlyphClefTenor
	GlyphClefPercussion
	GlyphRestBreve
	GlyphRestSemibreve
	GlyphRestMinim
	GlyphRestCrotchet
	GlyphRestQuaver
	GlyphSharp
	GlyphFlat
	GlyphNatural
	GlyphDoubleSharp
	GlyphDoubleFlat
	GlyphFermata
	GlyphTrill
	GlyphTurn
	GlyphMordent
)

// GlyphMap is a default virtual-glyph -> font-char table, overridable per
// installed music font.
type GlyphMap map[VirtualGlyph]rune

// DefaultGlyphMap mirrors the private-use-area layout of a typical PostScript
// music font (Aldine/Parnassus-style encodings used by the PMW family).
func DefaultGlyphMap() GlyphMap {
	return GlyphMap{
		GlyphNoteheadCrotchet: 0xE0A4,
		GlyphNoteheadMinim:    0xE0A3,
		GlyphNoteheadBreve:    0xE0A0,
		GlyphNoteheadSemibreve: 0xE0A2,
		GlyphNoteheadCross:    0xE0A9,
		GlyphNoteheadDiamond:  0xE0DB,
		GlyphClefTreble:       0xE050,
		GlyphClefBass:         0xE062,
		GlyphClefAlto:         0xE05C,
		GlyphClefTenor:        0xE05C,
		GlyphClefPercussion:   0xE069,
		GlyphRestBreve:        0xE4E2,
		GlyphRestSemibreve:    0xE4E3,
		GlyphRestMinim:        0xE4E4,
		GlyphRestCrotchet:     0xE4E5,
		GlyphRestQuaver:       0xE4E6,
		GlyphSharp:            0xE262,
		GlyphFlat:             0xE260,
		GlyphNatural:          0xE261,
		GlyphDoubleSharp:      0xE263,
		GlyphDoubleFlat:       0xE264,
		GlyphFermata:          0xE4C0,
		GlyphTrill:            0xE566,
		GlyphTurn:             0xE567,
		GlyphMordent:          0xE56C,
	}
}

// ErrNoFont is returned when Width is asked to measure a font id with no
// registered metrics source.
type ErrNoFont uint8

func (e ErrNoFont) Error() string { return fmt.Sprintf("textmetrics: no font registered for font id %d", uint8(e)) }
