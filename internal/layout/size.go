package layout

import (
	"tml/internal/types"
)

// MaxStackClassSize is the ceiling (in bytes) for stack-allocating a class
// instance. Instances estimated above it always go to the heap.
const MaxStackClassSize = 256

// PtrSize is the assumed pointer width of the target.
const PtrSize = 8

// StrSize is the by-value size of a string header (ptr, len, cap).
const StrSize = 24

// FatPtrSize is the size of slice headers and dyn fat pointers.
const FatPtrSize = 16

// EstimateSize returns a conservative byte-size estimate for a type.
// Fixed-width primitives use their exact size; anything indirect, nominal
// or generic is assumed pointer-sized. The estimate feeds the allocation
// strategy only, never ABI layout.
func EstimateSize(in *types.Interner, id types.TypeID) int {
	tt, ok := in.Lookup(in.Resolve(id))
	if !ok {
		return PtrSize
	}
	switch tt.Kind {
	case types.KindUnit, types.KindNever:
		return 0
	case types.KindBool:
		return 1
	case types.KindChar:
		return 4
	case types.KindInt, types.KindUint, types.KindFloat:
		return int(tt.Width) / 8
	case types.KindStr:
		return StrSize
	case types.KindArray:
		return EstimateSize(in, tt.Elem) * int(tt.Count)
	case types.KindSlice, types.KindDyn:
		return FatPtrSize
	case types.KindTuple:
		info, ok := in.TupleInfo(in.Resolve(id))
		if !ok {
			return PtrSize
		}
		sum := 0
		for _, elem := range info.Elems {
			sum += EstimateSize(in, elem)
		}
		return sum
	default:
		// Ptr, Ref, Fn, Closure, Named, Generic, Class, ImplBehavior,
		// unresolved typevars: one machine word.
		return PtrSize
	}
}
