package sema

import (
	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/types"
)

// TypeOfExpr resolves an expression to a type, reporting recoverable
// diagnostics along the way. Failures fall back to Unit (or the closest
// already-known type) so one pass surfaces every error in the unit.
func (c *Checker) TypeOfExpr(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	if expr == nil {
		return b.Unit
	}
	switch expr.Kind {
	case ast.ExprLit:
		return c.typeOfLit(expr)
	case ast.ExprIdent:
		return c.typeOfIdent(expr)
	case ast.ExprUnary:
		return c.typeOfUnary(expr)
	case ast.ExprBinary:
		return c.typeOfBinary(expr)
	case ast.ExprCall:
		return c.typeOfCall(expr)
	case ast.ExprMember:
		return c.typeOfMember(expr)
	case ast.ExprIndex:
		return c.typeOfIndex(expr)
	case ast.ExprPath:
		return c.typeOfPath(expr)
	}
	return b.Unit
}

func (c *Checker) typeOfLit(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	switch expr.Lit.Kind {
	case ast.LitInt:
		return b.I64
	case ast.LitFloat:
		return b.F64
	case ast.LitBool:
		return b.Bool
	case ast.LitChar:
		return b.Char
	case ast.LitString:
		return b.Str
	}
	return b.Unit
}

func (c *Checker) typeOfIdent(expr *ast.Expr) types.TypeID {
	name := expr.Ident.Name
	if ty, ok := c.env.Lookup(name); ok {
		return ty
	}
	if def, ok := c.env.Const(name); ok {
		c.ensureConstEvaluated(def)
		if def.Type != types.NoTypeID {
			return def.Type
		}
		return c.constValueType(def.Value)
	}
	if c.constParams[name] {
		// Const-generic parameter: an integer whose value arrives at
		// instantiation.
		return c.types.Builtins().I64
	}
	c.report(diag.UnresolvedName, expr.Span, "unresolved name '%s'", name)
	return c.types.Builtins().Unit
}

func (c *Checker) constValueType(v ConstValue) types.TypeID {
	b := c.types.Builtins()
	switch v.Kind {
	case ConstInt:
		return b.I64
	case ConstUint:
		return b.U64
	case ConstBool:
		return b.Bool
	case ConstChar:
		return b.Char
	}
	return b.Unit
}

func (c *Checker) typeOfUnary(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	operand := c.TypeOfExpr(expr.Unary.Operand)
	switch expr.Unary.Op {
	case ast.UnaryNeg:
		if !c.types.IsInteger(operand) && !c.types.IsFloat(operand) {
			c.report(diag.TypeMismatch, expr.Span,
				"cannot negate a value of type %s", c.types.String(operand))
			return b.Unit
		}
		return operand
	case ast.UnaryNot:
		if !c.types.Compatible(b.Bool, operand) {
			c.report(diag.TypeMismatch, expr.Span,
				"logical not requires Bool, found %s", c.types.String(operand))
		}
		return b.Bool
	case ast.UnaryBitNot:
		if !c.types.IsInteger(operand) {
			c.report(diag.TypeMismatch, expr.Span,
				"bitwise complement requires an integer, found %s", c.types.String(operand))
			return b.Unit
		}
		return operand
	}
	return b.Unit
}

func (c *Checker) typeOfBinary(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	left := c.TypeOfExpr(expr.Binary.Left)
	right := c.TypeOfExpr(expr.Binary.Right)

	switch expr.Binary.Op {
	case ast.BinaryAnd, ast.BinaryOr:
		if !c.types.Compatible(b.Bool, left) || !c.types.Compatible(b.Bool, right) {
			c.report(diag.TypeMismatch, expr.Span,
				"logical operator requires Bool operands, found %s and %s",
				c.types.String(left), c.types.String(right))
		}
		return b.Bool
	case ast.BinaryEq, ast.BinaryNotEq, ast.BinaryLess, ast.BinaryLessEq,
		ast.BinaryGreater, ast.BinaryGreaterEq:
		if !c.types.Compatible(left, right) {
			c.report(diag.TypeMismatch, expr.Span,
				"cannot compare %s with %s", c.types.String(left), c.types.String(right))
		}
		return b.Bool
	default:
		if !c.types.Compatible(left, right) {
			c.report(diag.TypeMismatch, expr.Span,
				"operand type mismatch: %s and %s", c.types.String(left), c.types.String(right))
			return left
		}
		// Str + Str is concatenation, handled by lowering.
		return left
	}
}

func (c *Checker) typeOfCall(expr *ast.Expr) types.TypeID {
	call := &expr.Call

	var explicit []types.TypeID
	for _, g := range call.Generics {
		if g.Type != nil {
			explicit = append(explicit, c.ResolveTypeExpr(g.Type))
		}
	}
	argTypes := make([]types.TypeID, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = c.TypeOfExpr(a)
	}

	if call.Callee != nil && call.Callee.Kind == ast.ExprIdent {
		result, _ := c.ResolveCall(call.Callee.Ident.Name, explicit, argTypes, expr.Span)
		return result
	}
	if call.Callee != nil && call.Callee.Kind == ast.ExprPath {
		return c.checkPathCall(expr, explicit, argTypes)
	}

	callee := c.TypeOfExpr(call.Callee)
	resolved := c.types.Resolve(callee)
	if info, ok := c.types.FnInfo(resolved); ok {
		c.checkArgsAgainst(expr, info.Params, argTypes)
		return info.Result
	}
	if info, ok := c.types.ClosureInfo(resolved); ok {
		c.checkArgsAgainst(expr, info.Params, argTypes)
		return info.Result
	}
	c.report(diag.NotCallable, expr.Span,
		"value of type %s is not callable", c.types.String(callee))
	return c.types.Builtins().Unit
}

func (c *Checker) checkArgsAgainst(expr *ast.Expr, params []types.TypeID, args []types.TypeID) {
	if len(params) != len(args) {
		c.report(diag.ParamCountMismatch, expr.Span,
			"call takes %d arguments, %d supplied", len(params), len(args))
		return
	}
	for i := range params {
		if !c.types.Compatible(params[i], args[i]) {
			c.report(diag.TypeMismatch, expr.Span,
				"argument %d: expected %s, found %s",
				i+1, c.types.String(params[i]), c.types.String(args[i]))
		}
	}
}

// checkPathCall handles `Enum::Variant(args)` construction.
func (c *Checker) checkPathCall(expr *ast.Expr, explicit, argTypes []types.TypeID) types.TypeID {
	path := &expr.Call.Callee.Path
	b := c.types.Builtins()
	if len(path.Segments) != 2 {
		c.report(diag.UnresolvedName, expr.Span, "unresolved path")
		return b.Unit
	}
	enumName, variantName := path.Segments[0], path.Segments[1]
	def, ok := c.env.Enum(enumName)
	if !ok {
		c.report(diag.UnresolvedName, expr.Span, "unresolved name '%s'", enumName)
		return b.Unit
	}
	var variant *VariantDef
	for i := range def.Variants {
		if def.Variants[i].Name == variantName {
			variant = &def.Variants[i]
			break
		}
	}
	if variant == nil {
		c.report(diag.UnresolvedName, expr.Span,
			"enum '%s' has no variant '%s'", enumName, variantName)
		return b.Unit
	}
	if len(argTypes) != len(variant.Payload) {
		c.report(diag.VariantArgMismatch, expr.Span,
			"variant '%s::%s' takes %d values, %d supplied",
			enumName, variantName, len(variant.Payload), len(argTypes))
	} else {
		subst := c.seedEnumSubst(def, explicit)
		for i, want := range variant.Payload {
			got := argTypes[i]
			wanted := c.types.Substitute(want, subst)
			if !c.types.Compatible(wanted, got) {
				c.report(diag.VariantArgMismatch, expr.Span,
					"variant '%s::%s' value %d: expected %s, found %s",
					enumName, variantName, i+1, c.types.String(wanted), c.types.String(got))
			}
		}
	}
	return c.types.RegisterNamed(def.Name, "", explicit)
}

func (c *Checker) seedEnumSubst(def *EnumDef, explicit []types.TypeID) map[string]types.TypeID {
	if len(explicit) == 0 || len(def.TypeParams) == 0 {
		return nil
	}
	subst := make(map[string]types.TypeID, len(def.TypeParams))
	for i, tp := range def.TypeParams {
		if i < len(explicit) {
			subst[tp] = explicit[i]
		}
	}
	return subst
}

func (c *Checker) typeOfMember(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	object := c.types.Resolve(c.TypeOfExpr(expr.Member.Object))
	name := expr.Member.Name

	tt, ok := c.types.Lookup(object)
	if !ok {
		return b.Unit
	}
	switch tt.Kind {
	case types.KindRef, types.KindPtr:
		// Member access auto-derefs one level.
		object = c.types.Resolve(tt.Elem)
		tt, ok = c.types.Lookup(object)
		if !ok {
			return b.Unit
		}
	}

	switch tt.Kind {
	case types.KindClass:
		info, _ := c.types.NamedInfo(object)
		return c.classMember(info.Name, name, expr)
	case types.KindNamed:
		info, _ := c.types.NamedInfo(object)
		if def, ok := c.env.Struct(info.Name); ok {
			subst := c.structSubst(def, info.Args)
			for _, f := range def.Fields {
				if f.Name == name {
					return c.types.Substitute(f.Type, subst)
				}
			}
			c.report(diag.UnknownField, expr.Span,
				"struct '%s' has no field '%s'", def.Name, name)
			return b.Unit
		}
	case types.KindTuple:
		// Tuples are accessed by index expression, not by name.
	}
	c.report(diag.UnknownField, expr.Span,
		"type %s has no member '%s'", c.types.String(object), name)
	return b.Unit
}

func (c *Checker) structSubst(def *StructDef, args []types.TypeID) map[string]types.TypeID {
	if len(def.TypeParams) == 0 || len(args) == 0 {
		return nil
	}
	subst := make(map[string]types.TypeID, len(def.TypeParams))
	for i, tp := range def.TypeParams {
		if i < len(args) {
			subst[tp] = args[i]
		}
	}
	return subst
}

// classMember resolves a field or zero-argument method reference on a
// class, enforcing visibility from the current checking context.
func (c *Checker) classMember(className, member string, expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	def, ok := c.env.Class(className)
	if !ok {
		c.report(diag.UnresolvedName, expr.Span, "unresolved class '%s'", className)
		return b.Unit
	}

	seen := map[string]bool{}
	for cur := def; cur != nil && !seen[cur.Name]; {
		seen[cur.Name] = true
		if f := cur.Field(member); f != nil {
			c.CheckMemberAccess(f.Visibility, cur.Name, member, expr.Span)
			return f.Type
		}
		if m := cur.Method(member); m != nil {
			c.CheckMemberAccess(m.Visibility, cur.Name, member, expr.Span)
			return c.types.RegisterFn(m.Params, m.Result)
		}
		if cur.Base == "" {
			break
		}
		next, ok := c.env.Class(cur.Base)
		if !ok {
			break
		}
		cur = next
	}
	c.report(diag.UnknownField, expr.Span,
		"class '%s' has no member '%s'", className, member)
	return b.Unit
}

func (c *Checker) typeOfIndex(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	object := c.types.Resolve(c.TypeOfExpr(expr.Index.Object))
	index := c.TypeOfExpr(expr.Index.Index)
	if !c.types.IsInteger(index) {
		c.report(diag.TypeMismatch, expr.Span,
			"index must be an integer, found %s", c.types.String(index))
	}
	tt, ok := c.types.Lookup(object)
	if !ok {
		return b.Unit
	}
	switch tt.Kind {
	case types.KindArray, types.KindSlice:
		return tt.Elem
	case types.KindStr:
		return b.Char
	}
	c.report(diag.TypeMismatch, expr.Span,
		"type %s cannot be indexed", c.types.String(object))
	return b.Unit
}

func (c *Checker) typeOfPath(expr *ast.Expr) types.TypeID {
	b := c.types.Builtins()
	path := &expr.Path
	if len(path.Segments) == 2 {
		if def, ok := c.env.Enum(path.Segments[0]); ok {
			for _, v := range def.Variants {
				if v.Name == path.Segments[1] {
					if len(v.Payload) != 0 {
						c.report(diag.VariantArgMismatch, expr.Span,
							"variant '%s::%s' takes %d values, 0 supplied",
							def.Name, v.Name, len(v.Payload))
					}
					var args []types.TypeID
					for _, g := range path.Generics {
						if g.Type != nil {
							args = append(args, c.ResolveTypeExpr(g.Type))
						}
					}
					return c.types.RegisterNamed(def.Name, "", args)
				}
			}
			c.report(diag.UnresolvedName, expr.Span,
				"enum '%s' has no variant '%s'", path.Segments[0], path.Segments[1])
			return b.Unit
		}
	}
	c.report(diag.UnresolvedName, expr.Span, "unresolved path")
	return b.Unit
}
