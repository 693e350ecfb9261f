package ast

import (
	"tml/internal/source"
)

// TypeExprKind enumerates type annotation kinds.
type TypeExprKind uint8

const (
	// TypeName is a possibly-generic nominal reference: Name[Args].
	TypeName TypeExprKind = iota
	// TypeRef is ref T or mut ref T.
	TypeRef
	// TypePtr is Ptr[T].
	TypePtr
	// TypeArray is [T; N] with a const-evaluable size expression.
	TypeArray
	// TypeSlice is an unsized [T].
	TypeSlice
	// TypeTuple is (A, B, ...).
	TypeTuple
	// TypeFn is fn(A, ...) -> R.
	TypeFn
	// TypeDyn is dyn Behavior[Args].
	TypeDyn
	// TypeUnit is the unit type.
	TypeUnit
	// TypeNever is the never type.
	TypeNever
)

// TypeExpr represents a type annotation in the syntax tree.
type TypeExpr struct {
	Kind TypeExprKind
	Span source.Span

	// Name / Dyn
	Name   string
	Module string
	Args   []*TypeExpr

	// Ref / Ptr / Array / Slice
	Elem    *TypeExpr
	Mutable bool
	Size    *Expr // array size, const-evaluated

	// Tuple / Fn
	Elems  []*TypeExpr
	Params []*TypeExpr
	Result *TypeExpr
}
