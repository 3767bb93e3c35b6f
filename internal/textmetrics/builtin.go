package textmetrics

import (
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"scorecraft/internal/ir"
)

// BuiltinProvider is a zero-configuration Provider backed by the fixed
// bitmap face golang.org/x/image/font/basicfont.Face7x13, used as the
// measurement source when no real font file has been registered (tests,
// headless CLI invocations without -fontpath). It ignores the size argument,
// matching Face7x13's fixed-size nature.
type BuiltinProvider struct {
	glyphs GlyphMap
}

// NewBuiltinProvider returns a Provider with the default glyph map.
func NewBuiltinProvider() *BuiltinProvider {
	return &BuiltinProvider{glyphs: DefaultGlyphMap()}
}

func (p *BuiltinProvider) Width(s ir.EncodedString, _ float64) (Metrics, error) {
	if len(s) == 0 {
		return Metrics{}, nil
	}
	face := basicfont.Face7x13
	var total fixed.Int26_6
	for _, er := range s {
		if a, ok := face.GlyphAdvance(rune(er.CodePoint())); ok {
			total += a
		} else {
			total += fixed.I(face.Width)
		}
	}
	m := face.Metrics()
	return Metrics{
		Width:     fixedToFloat(total),
		R2LAdjust: 0,
		Height:    fixedToFloat(m.Ascent + m.Descent),
	}, nil
}

func (p *BuiltinProvider) GlyphChar(virtualID int) (rune, bool) {
	r, ok := p.glyphs[VirtualGlyph(virtualID)]
	return r, ok
}
