package sema

import (
	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/source"
)

// ValidateDecls is the second pass: with every declaration registered it
// checks inheritance, decorators, overrides and interface conformance.
// Every violation is recoverable; checking continues so one pass
// surfaces all errors in the unit.
func (c *Checker) ValidateDecls(m *ast.Module) {
	for _, d := range m.Interfaces {
		if def, ok := c.env.Interface(d.Name); ok {
			c.validateInterface(def)
		}
	}
	for _, d := range m.Classes {
		if def, ok := c.env.Class(d.Name); ok {
			c.validateClass(def)
		}
	}
}

func (c *Checker) validateInterface(def *InterfaceDef) {
	for _, ext := range def.Extends {
		if _, ok := c.env.Interface(ext); !ok {
			c.reportUnknownInterface(ext, def.Span)
		}
	}
}

func (c *Checker) validateClass(def *ClassDef) {
	for _, iface := range def.Interfaces {
		if _, ok := c.env.Interface(iface); !ok {
			c.reportUnknownInterface(iface, def.Span)
		}
	}

	baseOK := c.validateBase(def)
	if baseOK {
		c.validateNoCycle(def)
	}
	c.validateDecorators(def)
	c.validateOverrides(def)
	if !def.IsAbstract {
		c.validateAbstractImplemented(def)
	}
	c.validateInterfaceConformance(def)
}

func (c *Checker) reportUnknownInterface(name string, span source.Span) {
	b := diag.ReportError(c.reporter, diag.InterfaceNotFound, span,
		"interface '"+name+"' not found")
	if hint := suggestName(name, c.env.InterfaceNames()); hint != "" {
		b.WithNote(span, "did you mean '"+hint+"'?")
	}
	b.Emit()
}

func (c *Checker) validateBase(def *ClassDef) bool {
	if def.Base == "" {
		return false
	}
	base, ok := c.env.Class(def.Base)
	if !ok {
		b := diag.ReportError(c.reporter, diag.BaseClassNotFound, def.Span,
			"base class '"+def.Base+"' not found")
		if hint := suggestName(def.Base, c.env.ClassNames()); hint != "" {
			b.WithNote(def.Span, "did you mean '"+hint+"'?")
		}
		b.Emit()
		return false
	}
	if base.IsSealed && !(base.IsValue && def.IsValue) {
		c.reportWithNote(diag.SealedBaseExtended, def.Span,
			"cannot extend sealed class '"+base.Name+"'",
			base.Span, "'"+base.Name+"' is declared here")
	}
	if def.IsValue && !base.IsValue {
		c.reportWithNote(diag.ValueBaseMismatch, def.Span,
			"value class '"+def.Name+"' cannot extend non-value class '"+base.Name+"'",
			base.Span, "'"+base.Name+"' has reference semantics")
	}
	return true
}

// validateNoCycle walks the base chain with a seen set, so `A extends B,
// B extends A` is rejected instead of looping.
func (c *Checker) validateNoCycle(def *ClassDef) {
	seen := map[string]bool{def.Name: true}
	cur := def
	for cur.Base != "" {
		next, ok := c.env.Class(cur.Base)
		if !ok {
			return
		}
		if seen[next.Name] {
			c.report(diag.CircularInheritance, def.Span,
				"circular inheritance involving '%s'", next.Name)
			return
		}
		seen[next.Name] = true
		cur = next
	}
}

func (c *Checker) validateDecorators(def *ClassDef) {
	if def.IsValue {
		if def.IsAbstract {
			c.report(diag.ValueAbstractClass, def.Span,
				"value class '%s' cannot be abstract", def.Name)
		}
		for _, m := range def.Methods {
			if m.Virtual || m.Abstract {
				c.report(diag.ValueVirtualMethod, m.Span,
					"value class '%s' cannot declare virtual method '%s'", def.Name, m.Name)
			}
		}
	}
	if def.IsPooled {
		if !def.IsValue {
			c.report(diag.PooledNeedsValue, def.Span,
				"pooled class '%s' must be a value class", def.Name)
		}
		if def.IsAbstract {
			c.report(diag.PooledAbstractClass, def.Span,
				"pooled class '%s' cannot be abstract", def.Name)
		}
	}
	for _, m := range def.Methods {
		if m.Abstract && !def.IsAbstract {
			c.report(diag.AbstractNotImpl, m.Span,
				"abstract method '%s' in non-abstract class '%s'", m.Name, def.Name)
		}
	}
}

// findBaseMethod searches the base chain (excluding def itself) for a
// method, returning the class that declares it.
func (c *Checker) findBaseMethod(def *ClassDef, name string) (*ClassDef, *ClassMethodDef) {
	seen := map[string]bool{def.Name: true}
	cur := def
	for cur.Base != "" {
		next, ok := c.env.Class(cur.Base)
		if !ok || seen[next.Name] {
			return nil, nil
		}
		seen[next.Name] = true
		if m := next.Method(name); m != nil {
			return next, m
		}
		cur = next
	}
	return nil, nil
}

// validateOverrides checks every method marked override against the base
// chain. Matching is strict type equality: coercions allowed between
// ordinary values are not allowed across an override boundary.
func (c *Checker) validateOverrides(def *ClassDef) {
	for i := range def.Methods {
		m := &def.Methods[i]
		if !m.Override {
			continue
		}
		owner, target := c.findBaseMethod(def, m.Name)
		if target == nil {
			c.report(diag.OverrideTargetMissing, m.Span,
				"method '%s' marked override but no base class declares it", m.Name)
			continue
		}
		if !target.Virtual && !target.Abstract && !target.Override {
			c.reportWithNote(diag.OverrideNonVirtual, m.Span,
				"method '"+m.Name+"' overrides a non-virtual method of '"+owner.Name+"'",
				target.Span, "declared here")
			continue
		}
		if target.Final {
			c.reportWithNote(diag.OverrideNonVirtual, m.Span,
				"method '"+m.Name+"' overrides a final method of '"+owner.Name+"'",
				target.Span, "declared final here")
			continue
		}
		if !c.types.Equal(m.Result, target.Result) {
			c.report(diag.OverrideSigMismatch, m.Span,
				"override '%s' changes return type from %s to %s",
				m.Name, c.types.String(target.Result), c.types.String(m.Result))
		}
		if len(m.Params) != len(target.Params) {
			c.report(diag.OverrideSigMismatch, m.Span,
				"override '%s' takes %d parameters, base declares %d",
				m.Name, len(m.Params), len(target.Params))
			continue
		}
		for pi := range m.Params {
			if !c.types.Equal(m.Params[pi], target.Params[pi]) {
				c.report(diag.OverrideSigMismatch, m.Span,
					"override '%s' parameter %d has type %s, base declares %s",
					m.Name, pi+1, c.types.String(m.Params[pi]), c.types.String(target.Params[pi]))
			}
		}
	}
}

// validateAbstractImplemented requires every abstract method anywhere in
// the base chain of a concrete class to have a concrete implementation
// between the class and the declaring class.
func (c *Checker) validateAbstractImplemented(def *ClassDef) {
	seen := map[string]bool{def.Name: true}
	chain := []*ClassDef{def}
	cur := def
	for cur.Base != "" {
		next, ok := c.env.Class(cur.Base)
		if !ok || seen[next.Name] {
			break
		}
		seen[next.Name] = true
		chain = append(chain, next)
		cur = next
	}

	for depth := 1; depth < len(chain); depth++ {
		for _, m := range chain[depth].Methods {
			if !m.Abstract {
				continue
			}
			implemented := false
			for below := 0; below < depth; below++ {
				if impl := chain[below].Method(m.Name); impl != nil && !impl.Abstract {
					implemented = true
					break
				}
			}
			if !implemented {
				c.reportWithNote(diag.AbstractNotImpl, def.Span,
					"class '"+def.Name+"' does not implement abstract method '"+m.Name+"' of '"+chain[depth].Name+"'",
					m.Span, "declared abstract here")
			}
		}
	}
}

// lookupMethod finds a method on def or anywhere up its base chain.
func (c *Checker) lookupMethod(def *ClassDef, name string) *ClassMethodDef {
	if m := def.Method(name); m != nil {
		return m
	}
	_, m := c.findBaseMethod(def, name)
	return m
}

// validateInterfaceConformance requires every interface method without a
// default body to be implemented with an exactly matching signature.
// The implicit receiver is excluded from the parameter count on both
// sides.
func (c *Checker) validateInterfaceConformance(def *ClassDef) {
	for _, name := range def.Interfaces {
		iface, ok := c.env.Interface(name)
		if !ok {
			continue
		}
		c.checkInterfaceMethods(def, iface, map[string]bool{})
	}
}

func (c *Checker) checkInterfaceMethods(def *ClassDef, iface *InterfaceDef, visited map[string]bool) {
	if visited[iface.Name] {
		return
	}
	visited[iface.Name] = true

	for _, req := range iface.Methods {
		if req.HasDefault {
			continue
		}
		impl := c.lookupMethod(def, req.Name)
		if impl == nil {
			c.report(diag.BehaviorNotSatisfied, def.Span,
				"class '%s' does not implement method '%s' of interface '%s'",
				def.Name, req.Name, iface.Name)
			continue
		}
		if len(impl.Params) != len(req.Params) {
			c.report(diag.ParamCountMismatch, impl.Span,
				"method '%s' takes %d parameters, interface '%s' declares %d",
				req.Name, len(impl.Params), iface.Name, len(req.Params))
			continue
		}
		for pi := range req.Params {
			if !c.types.Equal(impl.Params[pi], req.Params[pi]) {
				c.report(diag.ParamTypeMismatch, impl.Span,
					"method '%s' parameter %d has type %s, interface '%s' declares %s",
					req.Name, pi+1, c.types.String(impl.Params[pi]), iface.Name, c.types.String(req.Params[pi]))
			}
		}
		if !c.types.Equal(impl.Result, req.Result) {
			c.report(diag.ReturnTypeMismatch, impl.Span,
				"method '%s' returns %s, interface '%s' declares %s",
				req.Name, c.types.String(impl.Result), iface.Name, c.types.String(req.Result))
		}
	}

	for _, ext := range iface.Extends {
		if parent, ok := c.env.Interface(ext); ok {
			c.checkInterfaceMethods(def, parent, visited)
		}
	}
}

// CheckMemberAccess enforces visibility: private members only within the
// exact defining class, protected within the defining class or any
// subclass (judged by walking the accessor's own base chain), public
// everywhere.
func (c *Checker) CheckMemberAccess(vis ast.Visibility, defining, member string, span source.Span) bool {
	if vis == ast.VisPublic {
		return true
	}
	accessor := c.currentClass
	if vis == ast.VisPrivate {
		if accessor == defining {
			return true
		}
		c.report(diag.VisibilityViolation, span,
			"'%s' is private to class '%s'", member, defining)
		return false
	}
	// Protected: accessor must be the defining class or one of its
	// subclasses.
	seen := map[string]bool{}
	for cur := accessor; cur != "" && !seen[cur]; {
		if cur == defining {
			return true
		}
		seen[cur] = true
		next, ok := c.env.Class(cur)
		if !ok {
			break
		}
		cur = next.Base
	}
	c.report(diag.VisibilityViolation, span,
		"'%s' is protected in class '%s'", member, defining)
	return false
}
