package ast_test

import (
	"testing"

	"tml/internal/ast"
	"tml/internal/source"
	"tml/internal/testkit"
)

const demoSrc = `struct Point { x: I64 }
fn origin() -> Point {}
`

func demoModule(file source.FileID) *ast.Module {
	return &ast.Module{
		Name: "demo",
		Path: "demo",
		Span: source.Span{File: file, Start: 0, End: uint32(len(demoSrc))},
		Structs: []*ast.StructDecl{{
			Name: "Point",
			Span: source.Span{File: file, Start: 0, End: 23},
			Fields: []ast.FieldDecl{
				{Name: "x", Type: &ast.TypeExpr{Kind: ast.TypeName, Name: "I64"}},
			},
		}},
		Funcs: []*ast.FuncDecl{{
			Name:   "origin",
			Span:   source.Span{File: file, Start: 24, End: 47},
			Return: &ast.TypeExpr{Kind: ast.TypeName, Name: "Point"},
		}},
	}
}

func TestModuleSpansWellFormed(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.tml", []byte(demoSrc))
	m := demoModule(id)
	if err := testkit.CheckSpanInvariants(m, fs.Get(id)); err != nil {
		t.Fatalf("span invariants: %v", err)
	}
}

func TestModuleSpanMustCoverDecls(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.tml", []byte(demoSrc))
	m := demoModule(id)
	m.Funcs[0].Span.End = m.Span.End + 10
	if err := testkit.CheckSpanInvariants(m, fs.Get(id)); err == nil {
		t.Fatal("expected a span invariant failure for an out-of-module decl")
	}
}

func TestDeclSpanFileMustMatch(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.tml", []byte(demoSrc))
	other := fs.AddVirtual("other.tml", []byte("x"))
	m := demoModule(id)
	m.Structs[0].Span.File = other
	if err := testkit.CheckSpanInvariants(m, fs.Get(id)); err == nil {
		t.Fatal("expected a span invariant failure for a cross-file decl")
	}
}
