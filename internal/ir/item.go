// Package ir is the bar-item intermediate representation: a per-stave,
// per-bar doubly linked sequence of typed items enriched with computed
// pitches, accidental spacing, chord order and beaming state (spec §3).
//
// The item chain is a closed set of variants (spec §9 design note), modeled
// here as an interface implemented by one concrete struct per kind rather
// than a tagged union with inline fields — the per-variant handler table
// that replaces vtables is the Kind() switch in each consuming package
// (engrave, paginate, drawvm, backend). Chains live inside a Bar's Items
// slice and are threaded by index, not by pointer, per the arena-with-
// stable-indices redesign note: a Ref is stable across slice growth.
package ir

// Kind identifies an item's concrete variant for switch dispatch.
type Kind int

const (
	KindBarline Kind = iota
	KindRepeatLeft
	KindRepeatRight
	KindNthTimeBar
	KindEndNthBars
	KindBeamOverBarline
	KindResetOffset
	KindBarNumberOverride

	KindClef
	KindKey
	KindTime

	KindNote
	KindChordContinuation

	KindOrnament

	KindText
	KindFootnote

	KindSlurStart
	KindSlurEnd
	KindTieStart

	KindHairpinStart
	KindHairpinEnd

	KindPletStart
	KindPletEnd

	KindBeamBreak
	KindBeamSlope
	KindBeamAccelRit
	KindBeamMove

	KindSpace
	KindEnsureSpace
	KindNoteSpacingOverride
	KindSystemGap
	KindStaveSpacing
	KindPageBreak
	KindNewLine
	KindNewPage
	KindJustify
	KindMarginOverride
	KindSuspendResume

	KindMIDIChange

	KindDrawInvocation

	KindMark
)

// Ref is a stable reference to an item within one Bar's Items slice.
type Ref int

// NoRef is the null reference, used for optional back/forward pointers
// (e.g. Tie.NotePrev, BeamOverBarline.NextBar).
const NoRef Ref = -1

// Item is implemented by every bar-item variant. Prev/Next form the doubly
// linked chain required by spec §3's invariants (every bar starts with a
// head node and ends with a barline item).
type Item interface {
	Kind() Kind
	header() *Header
}

// Header carries the doubly linked list pointers common to every item
// variant (spec §3 "Data Model").
type Header struct {
	Prev, Next Ref
}

func (h *Header) header() *Header { return h }

// Prev returns an item's predecessor reference.
func Prev(it Item) Ref { return it.header().Prev }

// Next returns an item's successor reference.
func Next(it Item) Ref { return it.header().Next }

// SetLinks wires prev/next on it. Used by Bar.Append and by the readers when
// splicing duplicated/chorded items into the chain.
func SetLinks(it Item, prev, next Ref) {
	h := it.header()
	h.Prev, h.Next = prev, next
}
