package sema

import (
	"strings"

	"tml/internal/diag"
	"tml/internal/mono"
	"tml/internal/source"
	"tml/internal/types"
)

// ResolveCall resolves a named call: it picks an overload, unifies the
// argument types against the declared parameter types, verifies every
// generic bound, records the instantiation, and returns the substituted
// return type. Failures report and return Unit so checking continues.
func (c *Checker) ResolveCall(name string, explicit []types.TypeID, argTypes []types.TypeID, span source.Span) (types.TypeID, *FuncSig) {
	sigs := c.env.Funcs(name)
	if len(sigs) == 0 {
		b := diag.ReportError(c.reporter, diag.UnresolvedName, span,
			"unresolved function '"+name+"'")
		if hint := suggestName(name, c.env.FuncNames()); hint != "" {
			b.WithNote(span, "did you mean '"+hint+"'?")
		}
		b.Emit()
		return c.types.Builtins().Unit, nil
	}

	var arityMatches []*FuncSig
	for _, sig := range sigs {
		if len(sig.Params) == len(argTypes) {
			arityMatches = append(arityMatches, sig)
		}
	}
	if len(arityMatches) == 0 {
		c.report(diag.ParamCountMismatch, span,
			"function '%s' called with %d arguments, no overload matches", name, len(argTypes))
		return c.types.Builtins().Unit, nil
	}

	// With several overloads of the same arity, probe silently and keep
	// the first that checks clean; diagnostics are then re-reported
	// against the best candidate.
	if len(arityMatches) > 1 {
		for _, sig := range arityMatches {
			if result, ok := c.silently(func() (types.TypeID, bool) {
				return c.CheckCall(sig, explicit, argTypes, span)
			}); ok {
				return result, sig
			}
		}
	}
	sig := arityMatches[0]
	result, _ := c.CheckCall(sig, explicit, argTypes, span)
	return result, sig
}

// silently runs fn with diagnostics suppressed.
func (c *Checker) silently(fn func() (types.TypeID, bool)) (types.TypeID, bool) {
	saved := c.reporter
	c.reporter = diag.NopReporter{}
	defer func() { c.reporter = saved }()
	return fn()
}

// CheckCall checks one call against one signature. Explicit type
// arguments are seeded before inference and never overwritten by
// inferred bindings. The result is the declared return type with every
// bound parameter substituted; unbound names survive substitution and
// are reported.
func (c *Checker) CheckCall(sig *FuncSig, explicit []types.TypeID, argTypes []types.TypeID, span source.Span) (types.TypeID, bool) {
	subst := mono.NewSubst()
	for i, arg := range explicit {
		if i >= len(sig.TypeParams) {
			c.report(diag.ParamCountMismatch, span,
				"function '%s' takes %d type parameters, %d supplied",
				sig.Name, len(sig.TypeParams), len(explicit))
			break
		}
		subst.Bind(sig.TypeParams[i], arg)
	}

	for i, param := range sig.Params {
		if i < len(argTypes) {
			mono.ExtractTypeParams(c.types, param, argTypes[i], sig.TypeParams, subst)
		}
	}

	ok := true
	substMap := subst.Map()
	for i, param := range sig.Params {
		if i >= len(argTypes) {
			break
		}
		want := c.types.Substitute(param, substMap)
		if !c.types.Compatible(want, argTypes[i]) {
			c.report(diag.TypeMismatch, span,
				"argument %d to '%s': expected %s, found %s",
				i+1, sig.Name, c.types.String(want), c.types.String(argTypes[i]))
			ok = false
		}
	}

	for _, tp := range sig.TypeParams {
		if _, bound := subst.Lookup(tp); !bound {
			c.report(diag.UnresolvedTypeParam, span,
				"cannot infer type parameter '%s' of '%s'", tp, sig.Name)
			ok = false
		}
	}

	if !c.checkBounds(sig, subst, span) {
		ok = false
	}

	if ok && sig.IsGeneric() && subst.Len() >= len(sig.TypeParams) {
		c.insts.Record(c.types, mono.InstFn, sig.Name, subst.ArgsFor(sig.TypeParams),
			mono.UseSite{Span: span, Caller: c.currentClass})
	}

	return c.types.Substitute(sig.Result, substMap), ok
}

// checkBounds verifies behavior and lifetime-class bounds after
// substitution. Runs only once unification has produced concrete types,
// so the diagnostic can name the offending type.
func (c *Checker) checkBounds(sig *FuncSig, subst *mono.Subst, span source.Span) bool {
	ok := true
	substMap := subst.Map()
	for _, w := range sig.Where {
		concrete, bound := subst.Lookup(w.TypeParam)
		if !bound {
			continue
		}
		display := c.types.String(concrete)
		for _, behavior := range w.Behaviors {
			if !c.satisfiesBehavior(display, behavior) {
				c.report(diag.BehaviorNotSatisfied, span,
					"type %s does not implement behavior '%s' required by parameter '%s'",
					display, behavior, w.TypeParam)
				ok = false
			}
		}
		for _, pb := range w.ParamBounds {
			boundName := pb.Behavior
			if len(pb.Args) > 0 {
				args := make([]string, len(pb.Args))
				for i, a := range pb.Args {
					args[i] = c.types.String(c.types.Substitute(c.ResolveTypeExpr(a), substMap))
				}
				boundName = pb.Behavior + "[" + strings.Join(args, ", ") + "]"
			}
			if !c.satisfiesBehavior(display, boundName) {
				c.report(diag.BehaviorNotSatisfied, span,
					"type %s does not implement behavior '%s' required by parameter '%s'",
					display, boundName, w.TypeParam)
				ok = false
			}
		}
	}

	for tp, class := range sig.LifetimeBounds {
		concrete, bound := subst.Lookup(tp)
		if !bound {
			continue
		}
		display := c.types.String(concrete)
		if c.env.IsShortLived(display) {
			c.report(diag.LifetimeBoundNotMet, span,
				"type %s does not satisfy lifetime bound '%s' for parameter '%s'",
				display, class, tp)
			ok = false
		}
	}
	return ok
}

// satisfiesBehavior consults the impl registry; primitive comparison and
// equality behaviors hold for all primitive scalar types without an
// explicit impl.
func (c *Checker) satisfiesBehavior(typeName, behavior string) bool {
	if c.env.HasImpl(behavior, typeName) {
		return true
	}
	base, _, _ := strings.Cut(behavior, "[")
	switch base {
	case "Comparable", "Equatable":
		return isPrimitiveName(typeName)
	}
	return false
}

func isPrimitiveName(name string) bool {
	_, ok := primitiveNames[name]
	return ok
}
