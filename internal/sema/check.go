package sema

import (
	"fmt"

	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/mono"
	"tml/internal/source"
	"tml/internal/types"
)

// Checker runs the semantic passes over one compilation unit:
// registration of every top-level declaration first, then structural
// validation (inheritance, overrides, interface conformance), then
// signature and constant checking. Forward references resolve correctly
// because nothing is validated before everything is registered.
type Checker struct {
	env      *Env
	types    *types.Interner
	insts    *mono.InstantiationMap
	reporter diag.Reporter

	// Type and const parameters in scope while resolving the current
	// declaration's type expressions.
	typeParams  map[string]bool
	constParams map[string]bool

	// currentClass is the enclosing class during member checking; it
	// anchors visibility decisions.
	currentClass string
}

func NewChecker(env *Env, in *types.Interner, reporter diag.Reporter) *Checker {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Checker{
		env:         env,
		types:       in,
		insts:       mono.NewInstantiationMap(),
		reporter:    reporter,
		typeParams:  make(map[string]bool),
		constParams: make(map[string]bool),
	}
}

// Env returns the registry the checker populates.
func (c *Checker) Env() *Env { return c.env }

// Types returns the interner the checker resolves into.
func (c *Checker) Types() *types.Interner { return c.types }

// Instantiations returns the generic instantiations recorded so far.
func (c *Checker) Instantiations() *mono.InstantiationMap { return c.insts }

// Check runs both passes over a module.
func (c *Checker) Check(m *ast.Module) {
	c.RegisterDecls(m)
	c.ValidateDecls(m)
}

func (c *Checker) report(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(c.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (c *Checker) reportWithNote(code diag.Code, span source.Span, msg string, noteSpan source.Span, note string) {
	diag.ReportError(c.reporter, code, span, msg).WithNote(noteSpan, note).Emit()
}

// pushParams brings a declaration's generic parameters into scope.
func (c *Checker) pushParams(typeParams []string, constParams []ast.ConstParam) func() {
	added := make([]string, 0, len(typeParams))
	addedConst := make([]string, 0, len(constParams))
	for _, p := range typeParams {
		if !c.typeParams[p] {
			c.typeParams[p] = true
			added = append(added, p)
		}
	}
	for _, p := range constParams {
		if !c.constParams[p.Name] {
			c.constParams[p.Name] = true
			addedConst = append(addedConst, p.Name)
		}
	}
	return func() {
		for _, p := range added {
			delete(c.typeParams, p)
		}
		for _, p := range addedConst {
			delete(c.constParams, p)
		}
	}
}
