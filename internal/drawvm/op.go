package drawvm

// Op is a draw-procedure operator code (spec §4.7's operator families:
// arithmetic, comparison, logical, stack, control-flow, variable, path,
// state, rendering, environmental).
type Op uint8

const (
	OpNop Op = iota

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpSqrt
	OpSin
	OpCos

	// Comparison
	OpLt
	OpLe
	OpEq
	OpNe
	OpGe
	OpGt

	// Logical (operate on scaled booleans, 1000 = true)
	OpAnd
	OpOr
	OpNot

	// Stack
	OpDup
	OpPop
	OpExch
	OpCopy
	OpRoll

	// Control flow
	OpIf
	OpIfElse
	OpRepeat
	OpLoop
	OpExit

	// Variable
	OpDef
	OpVarRef
	OpLiteralNumber
	OpLiteralText
	OpLiteralCode

	// Path building
	OpMoveto
	OpLineto
	OpCurveto
	OpRMoveto
	OpRLineto
	OpRCurveto
	OpTranslate

	// State
	OpSetColor
	OpSetGray
	OpSetDash
	OpSetLineWidth
	OpCurrentColor
	OpCurrentGray
	OpCurrentDash
	OpCurrentLineWidth
	OpCurrentPoint
	OpGsave
	OpGrestore
	OpRotate

	// Rendering
	OpFill
	OpFillRetain
	OpStroke
	OpShow
	OpStringWidth
	OpCvs

	// Environmental accessors
	OpAccLeft
	OpHeadLeft
	OpHeadRight
	OpHeadTop
	OpHeadBottom
	OpLineTop
	OpLineBottom
	OpStemBottom
	OpStemTop
	OpStaveSize
	OpStaveSpace
	OpStaveStart
	OpLeftBarX
	OpLineLength
	OpPageLength
	OpPageNumber
	OpBarNumber
	OpSystemDepth
	OpOriginX
	OpOriginY
	OpTopLeft
	OpMagnification
	OpFontSize
	OpGapType
	OpGapX
	OpGapY
)

var opNames = map[Op]string{
	OpNop: "nop", OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div",
	OpNeg: "neg", OpSqrt: "sqrt", OpSin: "sin", OpCos: "cos",
	OpLt: "lt", OpLe: "le", OpEq: "eq", OpNe: "ne", OpGe: "ge", OpGt: "gt",
	OpAnd: "and", OpOr: "or", OpNot: "not",
	OpDup: "dup", OpPop: "pop", OpExch: "exch", OpCopy: "copy", OpRoll: "roll",
	OpIf: "if", OpIfElse: "ifelse", OpRepeat: "repeat", OpLoop: "loop", OpExit: "exit",
	OpDef: "def", OpVarRef: "varref",
	OpLiteralNumber: "literal-number", OpLiteralText: "literal-text", OpLiteralCode: "literal-code",
	OpMoveto: "moveto", OpLineto: "lineto", OpCurveto: "curveto",
	OpRMoveto: "rmoveto", OpRLineto: "rlineto", OpRCurveto: "rcurveto", OpTranslate: "translate",
	OpSetColor: "setcolor", OpSetGray: "setgray", OpSetDash: "setdash",
	OpSetLineWidth: "setlinewidth", OpCurrentColor: "currentcolor", OpCurrentGray: "currentgray",
	OpCurrentDash: "currentdash", OpCurrentLineWidth: "currentlinewidth", OpCurrentPoint: "currentpoint",
	OpGsave: "gsave", OpGrestore: "grestore", OpRotate: "rotate",
	OpFill: "fill", OpFillRetain: "fillretain", OpStroke: "stroke", OpShow: "show",
	OpStringWidth: "stringwidth", OpCvs: "cvs",
	OpAccLeft: "accleft", OpHeadLeft: "headleft", OpHeadRight: "headright",
	OpHeadTop: "headtop", OpHeadBottom: "headbottom", OpLineTop: "linetop", OpLineBottom: "linebottom",
	OpStemBottom: "stembottom", OpStemTop: "stemtop", OpStaveSize: "stavesize",
	OpStaveSpace: "stavespace", OpStaveStart: "stavestart", OpLeftBarX: "leftbarx",
	OpLineLength: "linelength", OpPageLength: "pagelength", OpPageNumber: "pagenumber",
	OpBarNumber: "barnumber", OpSystemDepth: "systemdepth", OpOriginX: "originx", OpOriginY: "originy",
	OpTopLeft: "topleft", OpMagnification: "magnification", OpFontSize: "fontsize",
	OpGapType: "gaptype", OpGapX: "gapx", OpGapY: "gapy",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown-op"
}

// stackReq is the static per-operator stack-requirement table (spec §4.7
// "one nibble per stack slot, encoding required type"): the Kinds listed are
// popped in order, topmost-of-stack last in the slice.
var stackReq = map[Op][]Kind{
	OpAdd: {KindNumber, KindNumber}, OpSub: {KindNumber, KindNumber},
	OpMul: {KindNumber, KindNumber}, OpDiv: {KindNumber, KindNumber},
	OpNeg: {KindNumber}, OpSqrt: {KindNumber}, OpSin: {KindNumber}, OpCos: {KindNumber},
	OpLt: {KindNumber, KindNumber}, OpLe: {KindNumber, KindNumber},
	OpEq: {KindAny, KindAny}, OpNe: {KindAny, KindAny},
	OpGe: {KindNumber, KindNumber}, OpGt: {KindNumber, KindNumber},
	OpAnd: {KindNumber, KindNumber}, OpOr: {KindNumber, KindNumber}, OpNot: {KindNumber},
	OpDup: {KindAny}, OpPop: {KindAny}, OpExch: {KindAny, KindAny},
	OpCopy: {KindNumber}, OpRoll: {KindNumber, KindNumber},
	OpIf: {KindCode, KindNumber}, OpIfElse: {KindCode, KindCode, KindNumber},
	OpRepeat: {KindCode, KindNumber}, OpLoop: {KindCode},
	OpDef: {KindAny, KindVarName},
	OpMoveto: {KindNumber, KindNumber}, OpLineto: {KindNumber, KindNumber},
	OpCurveto: {KindNumber, KindNumber, KindNumber, KindNumber, KindNumber, KindNumber},
	OpRMoveto: {KindNumber, KindNumber}, OpRLineto: {KindNumber, KindNumber},
	OpRCurveto: {KindNumber, KindNumber, KindNumber, KindNumber, KindNumber, KindNumber},
	OpTranslate: {KindNumber, KindNumber},
	OpSetColor: {KindNumber, KindNumber, KindNumber}, OpSetGray: {KindNumber},
	OpSetDash: {KindNumber, KindNumber}, OpSetLineWidth: {KindNumber},
	OpRotate: {KindNumber},
	OpFill: nil, OpFillRetain: nil, OpStroke: nil,
	OpShow: {KindText}, OpStringWidth: {KindText}, OpCvs: {KindNumber},
}
