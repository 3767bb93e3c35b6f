package textmetrics

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"scorecraft/internal/ir"
)

// SFNTProvider measures text against real TrueType/OpenType font data,
// registered per font id exactly as the reader tags text runs (spec §9
// "font: an index into a small per-movement font table"). It is the
// concrete collaborator behind Provider; the engraving core never imports
// golang.org/x/image/font/sfnt directly.
type SFNTProvider struct {
	mu      sync.Mutex
	fonts   map[uint8]*registeredFont
	glyphs  GlyphMap
	hinting font.Hinting
}

type registeredFont struct {
	face *sfnt.Font
	buf  sfnt.Buffer
}

// NewSFNTProvider returns a provider with no fonts registered; callers load
// fonts with RegisterFont before the first Width call for that font id.
func NewSFNTProvider() *SFNTProvider {
	return &SFNTProvider{
		fonts:   make(map[uint8]*registeredFont),
		glyphs:  DefaultGlyphMap(),
		hinting: font.HintingNone,
	}
}

// RegisterFont parses data (a TrueType or OpenType font file) and binds it
// to fontID, the tag text runs carry in their EncodedRune.FontID().
func (p *SFNTProvider) RegisterFont(fontID uint8, data []byte) error {
	f, err := sfnt.Parse(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.fonts[fontID] = &registeredFont{face: f}
	p.mu.Unlock()
	return nil
}

// SetGlyphMap replaces the virtual-glyph -> font-char table, used when a
// non-default music font is loaded.
func (p *SFNTProvider) SetGlyphMap(m GlyphMap) {
	p.mu.Lock()
	p.glyphs = m
	p.mu.Unlock()
}

// Width measures s at the given point size by summing per-rune glyph
// advances and looking up kerning pairs between consecutive glyphs, the
// standard shaping-light approach for a fixed, pre-segmented encoded string
// (spec §1 width(str,font,size) -> (width,r2l-adjust,height)).
func (p *SFNTProvider) Width(s ir.EncodedString, size float64) (Metrics, error) {
	if len(s) == 0 {
		return Metrics{}, nil
	}
	ppem := fixed.I(1) * fixed.Int26_6(size*64) / 64

	p.mu.Lock()
	defer p.mu.Unlock()

	var total fixed.Int26_6
	var ascent, descent fixed.Int26_6
	var prevGlyph sfnt.GlyphIndex
	havePrev := false

	for _, er := range s {
		rf, ok := p.fonts[er.FontID()]
		if !ok {
			return Metrics{}, ErrNoFont(er.FontID())
		}
		r := rune(er.CodePoint())
		gi, err := rf.face.GlyphIndex(&rf.buf, r)
		if err != nil {
			return Metrics{}, err
		}
		if havePrev {
			kern, err := rf.face.Kern(&rf.buf, prevGlyph, gi, ppem, p.hinting)
			if err == nil {
				total += kern
			}
		}
		adv, err := rf.face.GlyphAdvance(&rf.buf, gi, ppem, p.hinting)
		if err != nil {
			return Metrics{}, err
		}
		total += adv
		prevGlyph, havePrev = gi, true

		metrics, err := rf.face.Metrics(&rf.buf, ppem, p.hinting)
		if err == nil {
			if metrics.Ascent > ascent {
				ascent = metrics.Ascent
			}
			if metrics.Descent > descent {
				descent = metrics.Descent
			}
		}
	}

	return Metrics{
		Width:     fixedToFloat(total),
		R2LAdjust: 0,
		Height:    fixedToFloat(ascent + descent),
	}, nil
}

// GlyphChar maps a virtual music-glyph id to its font-char, per the current
// glyph map.
func (p *SFNTProvider) GlyphChar(virtualID int) (rune, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.glyphs[VirtualGlyph(virtualID)]
	return r, ok
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
