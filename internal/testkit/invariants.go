// Package testkit holds shared helpers for package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tml/internal/ast"
	"tml/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a loaded
// module against its source file:
// 1) the module span is within file content bounds
// 2) every declaration span is fully contained in the module span
// 3) the module span covers the union of declaration spans
func CheckSpanInvariants(m *ast.Module, sf *source.File) error {
	if m == nil || sf == nil {
		return fmt.Errorf("nil module or file")
	}
	if m.Span.End <= m.Span.Start {
		return fmt.Errorf("module span is empty: %v", m.Span)
	}
	if m.Span.File != sf.ID {
		return fmt.Errorf("module span points to different file id: got=%d want=%d", m.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if m.Span.End > lenContent {
		return fmt.Errorf("module span end beyond content: %d > %d", m.Span.End, lenContent)
	}

	var union source.Span
	var haveDecl bool
	check := func(kind, name string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("%s %s: empty span %v", kind, name, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s %s: span file mismatch: got=%d want=%d", kind, name, sp.File, sf.ID)
		}
		if sp.Start < m.Span.Start || sp.End > m.Span.End {
			return fmt.Errorf("%s %s: span %v outside module span %v", kind, name, sp, m.Span)
		}
		if !haveDecl {
			union = sp
			haveDecl = true
		} else {
			union = union.Cover(sp)
		}
		return nil
	}

	for _, d := range m.Structs {
		if err := check("struct", d.Name, d.Span); err != nil {
			return err
		}
	}
	for _, d := range m.Enums {
		if err := check("enum", d.Name, d.Span); err != nil {
			return err
		}
	}
	for _, d := range m.Behaviors {
		if err := check("behavior", d.Name, d.Span); err != nil {
			return err
		}
	}
	for _, d := range m.Interfaces {
		if err := check("interface", d.Name, d.Span); err != nil {
			return err
		}
	}
	for _, d := range m.Classes {
		if err := check("class", d.Name, d.Span); err != nil {
			return err
		}
	}
	for _, d := range m.Funcs {
		if err := check("func", d.Name, d.Span); err != nil {
			return err
		}
	}
	for _, d := range m.Consts {
		if err := check("const", d.Name, d.Span); err != nil {
			return err
		}
	}

	if haveDecl && (union.Start < m.Span.Start || union.End > m.Span.End) {
		return fmt.Errorf("module span %v does not cover declarations %v", m.Span, union)
	}
	return nil
}
