package llvm

import (
	"fmt"
	"strings"

	"tml/internal/layout"
	"tml/internal/mono"
	"tml/internal/types"
)

// llvmType maps an interned type to its LLVM spelling. Aggregate value
// types keep their structural form; reference-semantics classes and
// pointers collapse to ptr.
func llvmType(in *types.Interner, id types.TypeID) (string, error) {
	if id == types.NoTypeID {
		return "void", nil
	}
	id = in.Resolve(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return "void", fmt.Errorf("unknown type id %d", id)
	}
	switch tt.Kind {
	case types.KindUnit, types.KindNever:
		return "void", nil
	case types.KindBool:
		return "i1", nil
	case types.KindChar:
		return "i32", nil
	case types.KindInt, types.KindUint:
		return intWidthType(tt.Width), nil
	case types.KindFloat:
		return floatWidthType(tt.Width), nil
	case types.KindStr, types.KindPtr, types.KindRef, types.KindFn, types.KindClass:
		return "ptr", nil
	case types.KindClosure:
		// Code pointer plus captured-environment pointer.
		return "{ ptr, ptr }", nil
	case types.KindSlice:
		return "{ ptr, i64 }", nil
	case types.KindDyn, types.KindImplBehavior:
		return "{ ptr, ptr }", nil
	case types.KindArray:
		elem, err := llvmType(in, tt.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d x %s]", tt.Count, elem), nil
	case types.KindTuple:
		info, _ := in.TupleInfo(id)
		parts := make([]string, len(info.Elems))
		for i, e := range info.Elems {
			ty, err := llvmType(in, e)
			if err != nil {
				return "", err
			}
			parts[i] = ty
		}
		if len(parts) == 0 {
			return "{}", nil
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case types.KindNamed:
		return "%struct." + namedTypeName(in, id), nil
	case types.KindGeneric, types.KindTypeVar:
		return "void", fmt.Errorf("unresolved type %s reached lowering", in.String(id))
	}
	return "void", fmt.Errorf("unsupported type kind %s", tt.Kind)
}

// llvmValueType is llvmType with void mapped to i8, for slots that must
// be storable.
func llvmValueType(in *types.Interner, id types.TypeID) (string, error) {
	ty, err := llvmType(in, id)
	if err != nil {
		return "", err
	}
	if ty == "void" {
		return "i8", nil
	}
	return ty, nil
}

// namedTypeName produces a deterministic aggregate type name for a named
// type, mangling any generic arguments.
func namedTypeName(in *types.Interner, id types.TypeID) string {
	info, ok := in.NamedInfo(id)
	if !ok {
		return "anon"
	}
	return mono.SanitizeSymbol(mono.Mangle(in, info.Name, info.Args))
}

func intWidthType(width types.Width) string {
	switch width {
	case types.Width8:
		return "i8"
	case types.Width16:
		return "i16"
	case types.Width32:
		return "i32"
	case types.Width64:
		return "i64"
	case types.Width128:
		return "i128"
	}
	return "i64"
}

func floatWidthType(width types.Width) string {
	if width == types.Width32 {
		return "float"
	}
	return "double"
}

// isAggregate reports whether a type lowers to a struct/array value
// rather than a scalar.
func isAggregate(in *types.Interner, id types.TypeID) bool {
	tt, ok := in.Lookup(in.Resolve(id))
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindNamed, types.KindTuple, types.KindArray, types.KindSlice,
		types.KindClosure, types.KindDyn, types.KindImplBehavior:
		return true
	}
	return false
}

// needsSret reports whether returning the type uses the caller-allocated
// output-pointer convention.
func needsSret(in *types.Interner, id types.TypeID) bool {
	if !isAggregate(in, id) {
		return false
	}
	return layout.EstimateSize(in, id) > 2*layout.PtrSize
}

// enumTypeName renders the deterministic name of a generic enum
// instantiation: the base name plus mangled type arguments.
func enumTypeName(in *types.Interner, base string, args []types.TypeID) string {
	return mono.SanitizeSymbol(mono.Mangle(in, base, args))
}

// enumPayloadBytes sizes an enum's payload region: the largest variant
// payload, with an 8-byte minimum.
func enumPayloadBytes(maxPayload int) int {
	if maxPayload < 8 {
		return 8
	}
	return maxPayload
}
