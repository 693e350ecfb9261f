package sema

import (
	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/types"
)

// Names of the built-in primitive types, as spelled in source.
var primitiveNames = map[string]func(types.Builtins) types.TypeID{
	"I8":   func(b types.Builtins) types.TypeID { return b.I8 },
	"I16":  func(b types.Builtins) types.TypeID { return b.I16 },
	"I32":  func(b types.Builtins) types.TypeID { return b.I32 },
	"I64":  func(b types.Builtins) types.TypeID { return b.I64 },
	"I128": func(b types.Builtins) types.TypeID { return b.I128 },
	"U8":   func(b types.Builtins) types.TypeID { return b.U8 },
	"U16":  func(b types.Builtins) types.TypeID { return b.U16 },
	"U32":  func(b types.Builtins) types.TypeID { return b.U32 },
	"U64":  func(b types.Builtins) types.TypeID { return b.U64 },
	"U128": func(b types.Builtins) types.TypeID { return b.U128 },
	"F32":  func(b types.Builtins) types.TypeID { return b.F32 },
	"F64":  func(b types.Builtins) types.TypeID { return b.F64 },
	"Bool": func(b types.Builtins) types.TypeID { return b.Bool },
	"Char": func(b types.Builtins) types.TypeID { return b.Char },
	"Str":  func(b types.Builtins) types.TypeID { return b.Str },
	"Unit": func(b types.Builtins) types.TypeID { return b.Unit },
}

// ResolveTypeExpr turns a type annotation into an interned type. Unknown
// names still produce a named type so checking can continue; existence
// is judged by the validation pass, not here.
func (c *Checker) ResolveTypeExpr(te *ast.TypeExpr) types.TypeID {
	if te == nil {
		return types.NoTypeID
	}
	b := c.types.Builtins()
	switch te.Kind {
	case ast.TypeUnit:
		return b.Unit
	case ast.TypeNever:
		return b.Never
	case ast.TypeName:
		return c.resolveName(te)
	case ast.TypeRef:
		elem := c.ResolveTypeExpr(te.Elem)
		return c.types.Intern(types.MakeRef(elem, te.Mutable))
	case ast.TypePtr:
		elem := c.ResolveTypeExpr(te.Elem)
		return c.types.Intern(types.MakePtr(elem))
	case ast.TypeArray:
		return c.resolveArray(te)
	case ast.TypeSlice:
		elem := c.ResolveTypeExpr(te.Elem)
		return c.types.Intern(types.MakeSlice(elem))
	case ast.TypeTuple:
		elems := make([]types.TypeID, len(te.Elems))
		for i, e := range te.Elems {
			elems[i] = c.ResolveTypeExpr(e)
		}
		return c.types.RegisterTuple(elems)
	case ast.TypeFn:
		params := make([]types.TypeID, len(te.Params))
		for i, p := range te.Params {
			params[i] = c.ResolveTypeExpr(p)
		}
		result := b.Unit
		if te.Result != nil {
			result = c.ResolveTypeExpr(te.Result)
		}
		return c.types.RegisterFn(params, result)
	case ast.TypeDyn:
		args := c.resolveArgs(te.Args)
		return c.types.RegisterDyn(te.Name, args)
	}
	return types.NoTypeID
}

func (c *Checker) resolveName(te *ast.TypeExpr) types.TypeID {
	if te.Module == "" && len(te.Args) == 0 {
		if mk, ok := primitiveNames[te.Name]; ok {
			return mk(c.types.Builtins())
		}
		if c.typeParams[te.Name] {
			return c.types.RegisterGeneric(te.Name, nil)
		}
	}
	args := c.resolveArgs(te.Args)
	if te.Name == "Ptr" && len(args) == 1 {
		return c.types.Intern(types.MakePtr(args[0]))
	}
	if _, ok := c.env.Class(te.Name); ok {
		return c.types.RegisterClass(te.Name, args)
	}
	return c.types.RegisterNamed(te.Name, te.Module, args)
}

func (c *Checker) resolveArgs(exprs []*ast.TypeExpr) []types.TypeID {
	if len(exprs) == 0 {
		return nil
	}
	args := make([]types.TypeID, len(exprs))
	for i, a := range exprs {
		args[i] = c.ResolveTypeExpr(a)
	}
	return args
}

func (c *Checker) resolveArray(te *ast.TypeExpr) types.TypeID {
	elem := c.ResolveTypeExpr(te.Elem)
	val := c.EvalConstExpr(te.Size, c.types.Builtins().U64)
	count, ok := val.AsUint()
	if !ok {
		// A size naming a const-generic parameter is legal here; the
		// concrete length arrives at instantiation. Anything else that
		// fails to evaluate is a real error.
		if !c.sizeNamesConstParam(te.Size) {
			if te.Size != nil {
				c.report(diag.TypeMismatch, te.Size.Span, "array size must be a compile-time constant")
			}
		}
		return c.types.Intern(types.MakeSlice(elem))
	}
	if count > 1<<32-1 {
		c.report(diag.TypeMismatch, te.Size.Span, "array size %d is out of range", count)
		return c.types.Intern(types.MakeSlice(elem))
	}
	return c.types.Intern(types.MakeArray(elem, uint32(count)))
}

func (c *Checker) sizeNamesConstParam(expr *ast.Expr) bool {
	if expr == nil {
		return false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		return c.constParams[expr.Ident.Name]
	case ast.ExprUnary:
		return c.sizeNamesConstParam(expr.Unary.Operand)
	case ast.ExprBinary:
		return c.sizeNamesConstParam(expr.Binary.Left) || c.sizeNamesConstParam(expr.Binary.Right)
	}
	return false
}
