package layout

import (
	"tml/internal/types"
)

// ClassShape is the slice of a class declaration the analyzer needs:
// decorator flags and the types of its own non-static fields.
type ClassShape struct {
	Abstract bool
	Value    bool
	Sealed   bool
	Fields   []types.TypeID
}

// ClassAttrs are the derived attributes computed once per class at
// registration time. They are advisory: a wrong estimate costs speed,
// never correctness.
type ClassAttrs struct {
	EstimatedSize    int
	StackAllocatable bool
	InheritanceDepth int
	// Value reports effective value semantics, carried so derived
	// classes can subtract a base vtable slot correctly.
	Value bool
}

// ComputeClassAttrs derives size, depth and stack eligibility for a class.
// base is nil for root classes. The estimate is: a vtable pointer unless
// the class has value semantics, plus the base estimate (minus the base's
// own vtable pointer, which would otherwise be counted twice), plus the
// class's own non-static fields.
func ComputeClassAttrs(in *types.Interner, shape ClassShape, base *ClassAttrs) ClassAttrs {
	size := 0
	if !shape.Value {
		size += PtrSize // vtable pointer
	}
	depth := 0
	if base != nil {
		inherited := base.EstimatedSize
		if !base.Value {
			inherited -= PtrSize
		}
		size += inherited
		depth = base.InheritanceDepth + 1
	}
	for _, f := range shape.Fields {
		size += EstimateSize(in, f)
	}

	// @value implies sealed, so the eligibility test collapses to:
	// concrete, small enough, and either value or sealed.
	eligible := !shape.Abstract &&
		size <= MaxStackClassSize &&
		(shape.Value || shape.Sealed)

	return ClassAttrs{
		EstimatedSize:    size,
		StackAllocatable: eligible,
		InheritanceDepth: depth,
		Value:            shape.Value,
	}
}
