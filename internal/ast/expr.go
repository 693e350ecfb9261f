package ast

import (
	"tml/internal/source"
)

// ExprKind enumerates the expression kinds the semantic core consumes.
type ExprKind uint8

const (
	// ExprIdent represents an identifier expression.
	ExprIdent ExprKind = iota
	// ExprLit represents a literal expression.
	ExprLit
	// ExprUnary represents a unary expression.
	ExprUnary
	// ExprBinary represents a binary expression.
	ExprBinary
	// ExprCall represents a function call expression.
	ExprCall
	// ExprPath represents a qualified path expression (Type::member).
	ExprPath
	// ExprMember represents a field or method access.
	ExprMember
	// ExprIndex represents an index access.
	ExprIndex
)

// Expr represents an expression node in the syntax tree.
type Expr struct {
	Kind ExprKind
	Span source.Span

	Ident  IdentExpr
	Lit    LitExpr
	Unary  UnaryExpr
	Binary BinaryExpr
	Call   CallExpr
	Path   PathExpr
	Member MemberExpr
	Index  IndexExpr
}

// IdentExpr is a bare name reference.
type IdentExpr struct {
	Name string
}

// LitKind enumerates literal kinds.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
)

// LitExpr is a literal. Numeric literals keep the raw text as the source
// of truth; the decoded fields are filled by the external parser.
type LitExpr struct {
	Kind   LitKind
	Text   string
	Int    int64
	Float  float64
	Bool   bool
	Char   rune
	String string
}

// UnaryOp enumerates unary operator kinds.
type UnaryOp uint8

const (
	// UnaryNeg represents arithmetic negation (-).
	UnaryNeg UnaryOp = iota
	// UnaryNot represents logical negation (!).
	UnaryNot
	// UnaryBitNot represents bitwise complement (~).
	UnaryBitNot
)

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	Op      UnaryOp
	Operand *Expr
}

// BinaryOp enumerates binary operator kinds.
type BinaryOp uint8

const (
	// BinaryAdd represents the addition operator (+).
	BinaryAdd BinaryOp = iota
	// BinarySub represents the subtraction operator (-).
	BinarySub
	// BinaryMul represents the multiplication operator (*).
	BinaryMul
	// BinaryDiv represents the division operator (/).
	BinaryDiv
	// BinaryMod represents the modulo operator (%).
	BinaryMod
	// BinaryBitAnd represents the bitwise AND operator (&).
	BinaryBitAnd
	// BinaryBitOr represents the bitwise OR operator (|).
	BinaryBitOr
	// BinaryBitXor represents the bitwise XOR operator (^).
	BinaryBitXor
	// BinaryShl represents the left shift operator (<<).
	BinaryShl
	// BinaryShr represents the right shift operator (>>).
	BinaryShr
	// BinaryAnd represents the logical AND operator (&&).
	BinaryAnd
	// BinaryOr represents the logical OR operator (||).
	BinaryOr
	// BinaryEq represents the equality operator (==).
	BinaryEq
	// BinaryNotEq represents the inequality operator (!=).
	BinaryNotEq
	// BinaryLess represents the less-than operator (<).
	BinaryLess
	// BinaryLessEq represents the less-or-equal operator (<=).
	BinaryLessEq
	// BinaryGreater represents the greater-than operator (>).
	BinaryGreater
	// BinaryGreaterEq represents the greater-or-equal operator (>=).
	BinaryGreaterEq
)

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

// GenericArg is an explicit type or const argument at a call site.
type GenericArg struct {
	// Type is set for type arguments, Const for const-generic values.
	Type  *TypeExpr
	Const *Expr
}

// CallExpr is a call with optional explicit generic arguments.
type CallExpr struct {
	Callee   *Expr
	Generics []GenericArg
	Args     []*Expr
}

// PathExpr is a `Seg0::Seg1::...` reference, optionally with explicit
// generic arguments on the last segment.
type PathExpr struct {
	Segments []string
	Generics []GenericArg
}

// MemberExpr accesses a field or method on an object.
type MemberExpr struct {
	Object *Expr
	Name   string
}

// IndexExpr accesses an element by index.
type IndexExpr struct {
	Object *Expr
	Index  *Expr
}
