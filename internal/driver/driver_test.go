package driver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/mir"
	"tml/internal/modfile"
	"tml/internal/project"
)

func cleanModule(name string) *ast.Module {
	return &ast.Module{
		Name: name,
		Path: name,
		Structs: []*ast.StructDecl{{
			Name: "Point",
			Fields: []ast.FieldDecl{
				{Name: "x", Type: &ast.TypeExpr{Kind: ast.TypeName, Name: "I64"}},
			},
		}},
	}
}

func brokenModule(name string) *ast.Module {
	// A class extending a missing base fails validation.
	return &ast.Module{
		Name: name,
		Path: name,
		Classes: []*ast.ClassDecl{{
			Name: "Child",
			Base: "Missing",
		}},
	}
}

func TestCheckUnitClean(t *testing.T) {
	d := New(project.Default("demo"))
	res := d.CheckUnit(&Unit{Module: cleanModule("m")})
	if res.Broken() {
		t.Fatalf("clean module reported errors: %v", res.Bag.Items())
	}
}

func TestCheckUnitBroken(t *testing.T) {
	d := New(project.Default("demo"))
	res := d.CheckUnit(&Unit{Module: brokenModule("m")})
	if !res.Broken() {
		t.Fatal("expected errors for missing base class")
	}
	found := false
	for _, item := range res.Bag.Items() {
		if item.Code == diag.BaseClassNotFound {
			found = true
		}
	}
	if !found {
		t.Errorf("missing base-class diagnostic: %v", res.Bag.Items())
	}
}

func TestCheckAllRunsEveryUnit(t *testing.T) {
	a := cleanModule("a")
	b := cleanModule("b")
	b.Imports = []string{"a"}
	c := brokenModule("c")
	c.Imports = []string{"a", "b"}

	d := New(project.Default("demo"))
	d.Workers = 2
	results, err := d.CheckAll(context.Background(), []*Unit{
		{Module: a}, {Module: b}, {Module: c},
	})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results["a"].Broken() || results["b"].Broken() {
		t.Error("clean units reported errors")
	}
	if !results["c"].Broken() {
		t.Error("broken unit passed")
	}
}

func TestCheckAllRejectsImportCycle(t *testing.T) {
	a := cleanModule("a")
	a.Imports = []string{"b"}
	b := cleanModule("b")
	b.Imports = []string{"a"}

	d := New(project.Default("demo"))
	if _, err := d.CheckAll(context.Background(), []*Unit{{Module: a}, {Module: b}}); err == nil {
		t.Fatal("expected cycle error")
	}
}

func emptyMIR(name string) *mir.Module {
	f := mir.NewFunc("main", nil, 0)
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn})
	return &mir.Module{Name: name, Funcs: []*mir.Func{f}}
}

func TestLowerRefusesBrokenUnit(t *testing.T) {
	d := New(project.Default("demo"))
	res := d.CheckUnit(&Unit{Module: brokenModule("m")})
	if _, err := d.Lower(res, emptyMIR("m")); err == nil {
		t.Fatal("broken unit must not lower")
	}
}

func TestLowerWithCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	d := New(project.Default("demo")).WithCache(cache)

	path := filepath.Join(t.TempDir(), "m.tmlm")
	if err := modfile.Store(path, cleanModule("m")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	unit, err := d.LoadUnit(path)
	if err != nil {
		t.Fatalf("LoadUnit: %v", err)
	}
	res := d.CheckUnit(unit)
	if res.Broken() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}

	text, err := d.Lower(res, emptyMIR("m"))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !strings.Contains(text, "define void @main()") {
		t.Fatalf("unexpected lowering output:\n%s", text)
	}

	// Second run must come from the cache and be byte-identical.
	again, err := d.Lower(res, emptyMIR("m"))
	if err != nil {
		t.Fatalf("Lower (cached): %v", err)
	}
	if again != text {
		t.Error("cached output differs from fresh output")
	}

	got, ok, err := cache.Get(unit.Digest)
	if err != nil || !ok {
		t.Fatalf("cache.Get: ok=%v err=%v", ok, err)
	}
	if got != text {
		t.Error("cache holds different text")
	}
}

func TestTimingsCoverPipelinePhases(t *testing.T) {
	d := New(project.Default("demo"))

	path := filepath.Join(t.TempDir(), "m.tmlm")
	if err := modfile.Store(path, cleanModule("m")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	unit, err := d.LoadUnit(path)
	if err != nil {
		t.Fatalf("LoadUnit: %v", err)
	}
	results, err := d.CheckAll(context.Background(), []*Unit{unit})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if _, err := d.Lower(results["m"], emptyMIR("m")); err != nil {
		t.Fatalf("Lower: %v", err)
	}

	seen := map[string]bool{}
	for _, p := range d.Timings().Phases {
		seen[p.Name] = true
	}
	for _, want := range []string{"load", "check", "lower"} {
		if !seen[want] {
			t.Errorf("missing %q phase in %+v", want, d.Timings().Phases)
		}
	}
}
