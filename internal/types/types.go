package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNever
	KindBool
	KindChar
	KindStr
	KindInt
	KindUint
	KindFloat
	KindPtr
	KindRef
	KindArray
	KindSlice
	KindTuple
	KindFn
	KindClosure
	KindNamed
	KindGeneric
	KindClass
	KindDyn
	KindImplBehavior
	KindTypeVar
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindStr:
		return "str"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindPtr:
		return "ptr"
	case KindRef:
		return "ref"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindTuple:
		return "tuple"
	case KindFn:
		return "fn"
	case KindClosure:
		return "closure"
	case KindNamed:
		return "named"
	case KindGeneric:
		return "generic"
	case KindClass:
		return "class"
	case KindDyn:
		return "dyn"
	case KindImplBehavior:
		return "impl"
	case KindTypeVar:
		return "typevar"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	Width128 Width = 128
)

// Type is a compact descriptor for any supported type. Composite kinds
// (tuple, fn, closure, named and friends) keep their contents in a side
// table addressed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // array length, or the variable number for typevars
	Width   Width  // numeric primitives
	Mutable bool   // references
	Payload uint32
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakePtr describes Ptr[T].
func MakePtr(elem TypeID) Type {
	return Type{Kind: KindPtr, Elem: elem}
}

// MakeRef describes ref T or mut ref T depending on the mutable flag.
func MakeRef(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRef, Elem: elem, Mutable: mutable}
}

// MakeArray describes [T; N].
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes an unsized [T].
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}
