package sema

import (
	"strconv"
	"strings"

	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/types"
)

// ConstKind identifies the kind of a compile-time constant value.
type ConstKind uint8

const (
	// ConstNone marks "not a compile-time constant here", a valid
	// outcome rather than an error.
	ConstNone ConstKind = iota
	// ConstInt is a signed integer constant.
	ConstInt
	// ConstUint is an unsigned integer constant.
	ConstUint
	// ConstBool is a boolean constant.
	ConstBool
	// ConstChar is a character constant.
	ConstChar
)

// ConstValue is the result of compile-time evaluation.
type ConstValue struct {
	Kind ConstKind
	Int  int64
	Uint uint64
	Bool bool
	Char rune
}

var noConst = ConstValue{}

// AsUint returns the value as an array length if it is a non-negative
// integer constant.
func (v ConstValue) AsUint() (uint64, bool) {
	switch v.Kind {
	case ConstUint:
		return v.Uint, true
	case ConstInt:
		if v.Int < 0 {
			return 0, false
		}
		return uint64(v.Int), true
	}
	return 0, false
}

// EvalConstExpr evaluates an expression at compile time. It handles
// integer/bool/char literals, references to previously evaluated
// constants, unary negation/not/complement, and binary operators over
// same-kind operands. Mixed-kind operands yield ConstNone. References to
// a const-generic parameter yield ConstNone deliberately: their value is
// unknown until instantiation. Division or modulo by a constant zero
// reports a diagnostic and yields ConstNone.
func (c *Checker) EvalConstExpr(expr *ast.Expr, expected types.TypeID) ConstValue {
	if expr == nil {
		return noConst
	}
	switch expr.Kind {
	case ast.ExprLit:
		return c.constLiteral(expr, expected)
	case ast.ExprIdent:
		return c.constIdent(expr)
	case ast.ExprUnary:
		return c.constUnary(expr, expected)
	case ast.ExprBinary:
		return c.constBinary(expr, expected)
	}
	return noConst
}

func (c *Checker) constLiteral(expr *ast.Expr, expected types.TypeID) ConstValue {
	lit := &expr.Lit
	switch lit.Kind {
	case ast.LitBool:
		return ConstValue{Kind: ConstBool, Bool: lit.Bool}
	case ast.LitChar:
		return ConstValue{Kind: ConstChar, Char: lit.Char}
	case ast.LitInt:
		wantUnsigned := expected != types.NoTypeID &&
			c.types.IsInteger(expected) && !c.types.IsSigned(expected)
		if lit.Text != "" {
			clean := strings.ReplaceAll(lit.Text, "_", "")
			if wantUnsigned {
				if u, err := strconv.ParseUint(clean, 0, 64); err == nil {
					return ConstValue{Kind: ConstUint, Uint: u}
				}
				return noConst
			}
			if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
				return ConstValue{Kind: ConstInt, Int: i}
			}
			// Values above MaxInt64 still fit unsigned expectations.
			if u, err := strconv.ParseUint(clean, 0, 64); err == nil {
				return ConstValue{Kind: ConstUint, Uint: u}
			}
			return noConst
		}
		if wantUnsigned && lit.Int >= 0 {
			return ConstValue{Kind: ConstUint, Uint: uint64(lit.Int)}
		}
		return ConstValue{Kind: ConstInt, Int: lit.Int}
	}
	return noConst
}

func (c *Checker) constIdent(expr *ast.Expr) ConstValue {
	name := expr.Ident.Name
	// Const-generic parameters are not known until instantiation.
	if c.constParams[name] {
		return noConst
	}
	def, ok := c.env.Const(name)
	if !ok {
		return noConst
	}
	return c.ensureConstEvaluated(def)
}

// ensureConstEvaluated evaluates a top-level constant on first use,
// guarding against reference cycles.
func (c *Checker) ensureConstEvaluated(def *ConstDef) ConstValue {
	switch def.state {
	case constStateDone:
		return def.Value
	case constStateVisiting:
		def.state = constStateDone
		return noConst
	}
	def.state = constStateVisiting
	if def.Decl != nil {
		def.Value = c.EvalConstExpr(def.Decl.Value, def.Type)
	}
	def.state = constStateDone
	return def.Value
}

func (c *Checker) constUnary(expr *ast.Expr, expected types.TypeID) ConstValue {
	operand := c.EvalConstExpr(expr.Unary.Operand, expected)
	switch expr.Unary.Op {
	case ast.UnaryNeg:
		switch operand.Kind {
		case ConstInt:
			return ConstValue{Kind: ConstInt, Int: -operand.Int}
		case ConstUint:
			if operand.Uint > uint64(1)<<63 {
				return noConst
			}
			return ConstValue{Kind: ConstInt, Int: -int64(operand.Uint)}
		}
	case ast.UnaryNot:
		if operand.Kind == ConstBool {
			return ConstValue{Kind: ConstBool, Bool: !operand.Bool}
		}
	case ast.UnaryBitNot:
		switch operand.Kind {
		case ConstInt:
			return ConstValue{Kind: ConstInt, Int: ^operand.Int}
		case ConstUint:
			return ConstValue{Kind: ConstUint, Uint: ^operand.Uint}
		}
	}
	return noConst
}

func (c *Checker) constBinary(expr *ast.Expr, expected types.TypeID) ConstValue {
	op := expr.Binary.Op
	left := c.EvalConstExpr(expr.Binary.Left, expected)
	right := c.EvalConstExpr(expr.Binary.Right, expected)
	if left.Kind == ConstNone || right.Kind == ConstNone || left.Kind != right.Kind {
		return noConst
	}

	switch left.Kind {
	case ConstInt:
		return c.constIntBinary(expr, op, left.Int, right.Int)
	case ConstUint:
		return c.constUintBinary(expr, op, left.Uint, right.Uint)
	case ConstBool:
		switch op {
		case ast.BinaryAnd:
			return ConstValue{Kind: ConstBool, Bool: left.Bool && right.Bool}
		case ast.BinaryOr:
			return ConstValue{Kind: ConstBool, Bool: left.Bool || right.Bool}
		case ast.BinaryEq:
			return ConstValue{Kind: ConstBool, Bool: left.Bool == right.Bool}
		case ast.BinaryNotEq:
			return ConstValue{Kind: ConstBool, Bool: left.Bool != right.Bool}
		}
	}
	return noConst
}

func (c *Checker) constIntBinary(expr *ast.Expr, op ast.BinaryOp, l, r int64) ConstValue {
	intVal := func(v int64) ConstValue { return ConstValue{Kind: ConstInt, Int: v} }
	boolVal := func(v bool) ConstValue { return ConstValue{Kind: ConstBool, Bool: v} }
	switch op {
	case ast.BinaryAdd:
		return intVal(l + r)
	case ast.BinarySub:
		return intVal(l - r)
	case ast.BinaryMul:
		return intVal(l * r)
	case ast.BinaryDiv:
		if r == 0 {
			c.reportConstDivByZero(expr)
			return noConst
		}
		return intVal(l / r)
	case ast.BinaryMod:
		if r == 0 {
			c.reportConstDivByZero(expr)
			return noConst
		}
		return intVal(l % r)
	case ast.BinaryBitAnd:
		return intVal(l & r)
	case ast.BinaryBitOr:
		return intVal(l | r)
	case ast.BinaryBitXor:
		return intVal(l ^ r)
	case ast.BinaryShl:
		if r < 0 || r >= 64 {
			return noConst
		}
		return intVal(l << uint(r))
	case ast.BinaryShr:
		if r < 0 || r >= 64 {
			return noConst
		}
		return intVal(l >> uint(r))
	case ast.BinaryEq:
		return boolVal(l == r)
	case ast.BinaryNotEq:
		return boolVal(l != r)
	case ast.BinaryLess:
		return boolVal(l < r)
	case ast.BinaryLessEq:
		return boolVal(l <= r)
	case ast.BinaryGreater:
		return boolVal(l > r)
	case ast.BinaryGreaterEq:
		return boolVal(l >= r)
	}
	return noConst
}

func (c *Checker) constUintBinary(expr *ast.Expr, op ast.BinaryOp, l, r uint64) ConstValue {
	uintVal := func(v uint64) ConstValue { return ConstValue{Kind: ConstUint, Uint: v} }
	boolVal := func(v bool) ConstValue { return ConstValue{Kind: ConstBool, Bool: v} }
	switch op {
	case ast.BinaryAdd:
		return uintVal(l + r)
	case ast.BinarySub:
		return uintVal(l - r)
	case ast.BinaryMul:
		return uintVal(l * r)
	case ast.BinaryDiv:
		if r == 0 {
			c.reportConstDivByZero(expr)
			return noConst
		}
		return uintVal(l / r)
	case ast.BinaryMod:
		if r == 0 {
			c.reportConstDivByZero(expr)
			return noConst
		}
		return uintVal(l % r)
	case ast.BinaryBitAnd:
		return uintVal(l & r)
	case ast.BinaryBitOr:
		return uintVal(l | r)
	case ast.BinaryBitXor:
		return uintVal(l ^ r)
	case ast.BinaryShl:
		if r >= 64 {
			return noConst
		}
		return uintVal(l << r)
	case ast.BinaryShr:
		if r >= 64 {
			return noConst
		}
		return uintVal(l >> r)
	case ast.BinaryEq:
		return boolVal(l == r)
	case ast.BinaryNotEq:
		return boolVal(l != r)
	case ast.BinaryLess:
		return boolVal(l < r)
	case ast.BinaryLessEq:
		return boolVal(l <= r)
	case ast.BinaryGreater:
		return boolVal(l > r)
	case ast.BinaryGreaterEq:
		return boolVal(l >= r)
	}
	return noConst
}

func (c *Checker) reportConstDivByZero(expr *ast.Expr) {
	c.report(diag.ConstEvalDivByZero, expr.Span, "Division by zero in const expression")
}
