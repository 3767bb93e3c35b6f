package ir

// EncodedRune packs one encoded-text unit: the top byte selects a font,
// the bottom 24 bits hold a Unicode code point or an escape value above
// MaxUnicode for page-number/bar-repeat interpolations expanded at output
// time (spec §9 "Text strings").
type EncodedRune uint32

const MaxUnicode = 0x10FFFF

// FontID extracts the font tag from an encoded rune.
func (r EncodedRune) FontID() uint8 { return uint8(r >> 24) }

// CodePoint extracts the 24-bit payload (code point or escape value).
func (r EncodedRune) CodePoint() uint32 { return uint32(r) & 0x00FFFFFF }

// NewEncodedRune packs a font id and code point/escape value.
func NewEncodedRune(font uint8, cp uint32) EncodedRune {
	return EncodedRune(uint32(font)<<24 | (cp & 0x00FFFFFF))
}

// EncodedString is an array of font-tagged 32-bit units, as spec §3/§9
// describe ("text: a pointer to an encoded string").
type EncodedString []EncodedRune

// Escape values above MaxUnicode for page-number/bar-number interpolation,
// expanded by the backend at output time rather than inlined by the reader.
const (
	EscapePageNumber EncodedRune = 1<<24 | (MaxUnicode + 1)
	EscapeBarNumber  EncodedRune = 1<<24 | (MaxUnicode + 2)
)

// TextFlags is the bit-flag set on a Text item (spec §3 "Text").
type TextFlags uint32

const (
	TextAboveUnderlay TextFlags = 1 << iota
	TextBelowUnderlay
	TextCentre
	TextEndAlign
	TextBoxed
	TextRoundedBox
	TextRinged
	TextRehearsal
	TextFollowOn
	TextBarAligned
	TextTimeAligned
	TextBarCentred
	TextFiguredBass
	TextMiddleOfSystem
	TextUnderlay
)

// Text is a free-standing or underlay/overlay text item (spec §3 "Text").
type Text struct {
	Header

	String EncodedString
	Size   int // size index into the movement's text-size table

	XOffset, YOffset int
	Rotation         float64

	Flags TextFlags

	CrotchetOffset  int // musical-offset position for bar/time-aligned text
	UnderlayLayer   int
	SyllableLength  int // for underlay spreading (§4.4 step 6)
	HalfwayValue    int
}

func (*Text) Kind() Kind { return KindText }

// Footnote points to a head-text block of one or more text lines attached to
// a bar or system (spec §3 "Footnote").
type Footnote struct {
	Header

	Lines []Text
}

func (*Footnote) Kind() Kind { return KindFootnote }
