package schema

// StepKind enumerates the kinds of workflow items placed on a canvas.
type StepKind string

const (
	StepKindBegin     StepKind = "begin"
	StepKindNormal    StepKind = "normal"
	StepKindCondition StepKind = "condition"
	StepKindReference StepKind = "reference"
	StepKindEnd       StepKind = "end"
)

// Valid reports whether k is one of the known step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case StepKindBegin, StepKindNormal, StepKindCondition, StepKindReference, StepKindEnd:
		return true
	}
	return false
}

// Shape is the outline a node is drawn with.
type Shape string

const (
	ShapeRectangle     Shape = "rectangle"
	ShapeDiamond       Shape = "diamond"
	ShapeParallelogram Shape = "parallelogram"
)

// DefaultShape returns the outline used for a step kind when none is set.
func DefaultShape(k StepKind) Shape {
	switch k {
	case StepKindCondition:
		return ShapeDiamond
	case StepKindReference:
		return ShapeParallelogram
	default:
		return ShapeRectangle
	}
}

// Side identifies one of the four anchors of a node.
type Side int

const (
	SideLeft Side = iota
	SideTop
	SideRight
	SideBottom
)

// Sides lists all anchor sides in their canonical order.
var Sides = [4]Side{SideLeft, SideTop, SideRight, SideBottom}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Relation names one of the four relation slots of a node.
type Relation int

const (
	RelationPrevious Relation = iota
	RelationNext
	RelationJumpSource
	RelationJumpTarget
)

// Relations lists all relation slots.
var Relations = [4]Relation{RelationPrevious, RelationNext, RelationJumpSource, RelationJumpTarget}

func (r Relation) String() string {
	switch r {
	case RelationPrevious:
		return "previous"
	case RelationNext:
		return "next"
	case RelationJumpSource:
		return "jump_source"
	case RelationJumpTarget:
		return "jump_target"
	default:
		return "unknown"
	}
}

// Inverse returns the slot that mirrors r on the partner node.
func (r Relation) Inverse() Relation {
	switch r {
	case RelationPrevious:
		return RelationNext
	case RelationNext:
		return RelationPrevious
	case RelationJumpSource:
		return RelationJumpTarget
	default:
		return RelationJumpSource
	}
}

// Side returns the anchor that carries the link for slot r.
func (r Relation) Side() Side {
	switch r {
	case RelationPrevious:
		return SideTop
	case RelationNext:
		return SideBottom
	case RelationJumpSource:
		return SideLeft
	default:
		return SideRight
	}
}

// EditorStatus is the gesture state of an editor.
type EditorStatus string

const (
	StatusNone        EditorStatus = "none"
	StatusMoving      EditorStatus = "moving"
	StatusDrawing     EditorStatus = "drawing"
	StatusSelecting   EditorStatus = "selecting"
	StatusMultiMoving EditorStatus = "multi_moving"
)
