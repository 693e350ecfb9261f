package sema

import (
	"testing"

	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/types"
)

func newTestChecker() (*Checker, *diag.Bag) {
	bag := diag.NewBag(64)
	in := types.NewInterner()
	return NewChecker(NewEnv(), in, diag.BagReporter{Bag: bag}), bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func codeCount(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func namedType(name string) *ast.TypeExpr {
	return &ast.TypeExpr{Kind: ast.TypeName, Name: name}
}

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLit, Lit: ast.LitExpr{Kind: ast.LitInt, Int: v}}
}

func boolLit(v bool) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLit, Lit: ast.LitExpr{Kind: ast.LitBool, Bool: v}}
}

func binary(op ast.BinaryOp, l, r *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: op, Left: l, Right: r}}
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdent, Ident: ast.IdentExpr{Name: name}}
}

func TestConstEvalArithmetic(t *testing.T) {
	c, bag := newTestChecker()

	v := c.EvalConstExpr(binary(ast.BinaryAdd, intLit(40), intLit(2)), types.NoTypeID)
	if v.Kind != ConstInt || v.Int != 42 {
		t.Fatalf("40+2 = %+v, want ConstInt 42", v)
	}
	v = c.EvalConstExpr(binary(ast.BinaryLess, intLit(1), intLit(2)), types.NoTypeID)
	if v.Kind != ConstBool || !v.Bool {
		t.Fatalf("1<2 = %+v, want ConstBool true", v)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestConstEvalDivisionByZero(t *testing.T) {
	for _, op := range []ast.BinaryOp{ast.BinaryDiv, ast.BinaryMod} {
		c, bag := newTestChecker()
		v := c.EvalConstExpr(binary(op, intLit(7), intLit(0)), types.NoTypeID)
		if v.Kind != ConstNone {
			t.Errorf("op %d by zero = %+v, want ConstNone", op, v)
		}
		if !hasCode(bag, diag.ConstEvalDivByZero) {
			t.Errorf("op %d by zero did not report T030", op)
		}
	}
}

func TestConstEvalMixedKindsYieldNone(t *testing.T) {
	c, bag := newTestChecker()
	v := c.EvalConstExpr(binary(ast.BinaryAdd, intLit(1), boolLit(true)), types.NoTypeID)
	if v.Kind != ConstNone {
		t.Fatalf("Int+Bool = %+v, want ConstNone", v)
	}
	if bag.HasErrors() {
		t.Fatal("mixed kinds must not report, only yield None")
	}
}

func TestConstGenericParamYieldsNoneSilently(t *testing.T) {
	c, bag := newTestChecker()
	c.constParams["N"] = true
	v := c.EvalConstExpr(binary(ast.BinaryMul, ident("N"), intLit(2)), types.NoTypeID)
	if v.Kind != ConstNone {
		t.Fatalf("N*2 = %+v, want ConstNone", v)
	}
	if bag.HasErrors() {
		t.Fatal("const-generic reference is not an error")
	}
}

func TestConstEvalNamedReferenceAndCycle(t *testing.T) {
	c, bag := newTestChecker()
	c.env.DefineConst(&ConstDef{Name: "SIZE", Decl: &ast.ConstDecl{Name: "SIZE", Value: intLit(8)}})
	c.env.DefineConst(&ConstDef{Name: "DOUBLE", Decl: &ast.ConstDecl{
		Name: "DOUBLE", Value: binary(ast.BinaryMul, ident("SIZE"), intLit(2)),
	}})
	v := c.EvalConstExpr(ident("DOUBLE"), types.NoTypeID)
	if v.Kind != ConstInt || v.Int != 16 {
		t.Fatalf("DOUBLE = %+v, want 16", v)
	}

	c.env.DefineConst(&ConstDef{Name: "LOOP", Decl: &ast.ConstDecl{
		Name: "LOOP", Value: binary(ast.BinaryAdd, ident("LOOP"), intLit(1)),
	}})
	v = c.EvalConstExpr(ident("LOOP"), types.NoTypeID)
	if v.Kind != ConstNone {
		t.Fatalf("self-referential const = %+v, want ConstNone", v)
	}
	_ = bag
}

func classDecl(name, base string, mods func(*ast.ClassDecl)) *ast.ClassDecl {
	d := &ast.ClassDecl{Name: name, Base: base}
	if mods != nil {
		mods(d)
	}
	return d
}

func checkModule(t *testing.T, m *ast.Module) (*Checker, *diag.Bag) {
	t.Helper()
	c, bag := newTestChecker()
	c.Check(m)
	return c, bag
}

func TestCircularInheritanceRejected(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("A", "B", nil),
		classDecl("B", "A", nil),
	}})
	if !hasCode(bag, diag.CircularInheritance) {
		t.Fatal("A<->B cycle not reported")
	}
}

func TestSelfInheritanceRejected(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("A", "A", nil),
	}})
	if !hasCode(bag, diag.CircularInheritance) {
		t.Fatal("A extends A not reported")
	}
}

func TestSealedClassMatrix(t *testing.T) {
	// Sealed non-value base: extension rejected.
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("S", "", func(d *ast.ClassDecl) { d.IsSealed = true }),
		classDecl("T", "S", nil),
	}})
	if !hasCode(bag, diag.SealedBaseExtended) {
		t.Fatal("extending sealed class not reported")
	}

	// Both value classes: extension allowed.
	_, bag = checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("S", "", func(d *ast.ClassDecl) { d.IsValue = true }),
		classDecl("T", "S", func(d *ast.ClassDecl) { d.IsValue = true }),
	}})
	if hasCode(bag, diag.SealedBaseExtended) {
		t.Fatal("value extending value class must be allowed")
	}
}

func TestBaseClassNotFound(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Derived", "Bose", nil),
		classDecl("Base", "", nil),
	}})
	if !hasCode(bag, diag.BaseClassNotFound) {
		t.Fatal("missing base not reported")
	}
	for _, d := range bag.Items() {
		if d.Code == diag.BaseClassNotFound && len(d.Notes) == 0 {
			t.Fatal("missing base should carry a suggestion note")
		}
	}
}

func TestValueClassRejectsVirtualMethods(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("V", "", func(d *ast.ClassDecl) {
			d.IsValue = true
			d.Methods = []ast.MethodDecl{{Name: "draw", Virtual: true}}
		}),
	}})
	if !hasCode(bag, diag.ValueVirtualMethod) {
		t.Fatal("virtual method on value class not reported")
	}
}

func TestValueClassCannotBeAbstract(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("V", "", func(d *ast.ClassDecl) {
			d.IsValue = true
			d.IsAbstract = true
		}),
	}})
	if !hasCode(bag, diag.ValueAbstractClass) {
		t.Fatal("abstract value class not reported")
	}
}

func TestPooledRequiresValue(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("P", "", func(d *ast.ClassDecl) { d.IsPooled = true }),
	}})
	if !hasCode(bag, diag.PooledNeedsValue) {
		t.Fatal("pooled non-value class not reported")
	}
}

func TestOverrideTargetMissing(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Base", "", nil),
		classDecl("Derived", "Base", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak", Override: true}}
		}),
	}})
	if !hasCode(bag, diag.OverrideTargetMissing) {
		t.Fatal("override with no base method not reported")
	}
}

func TestOverrideNonVirtualRejected(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Base", "", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak"}}
		}),
		classDecl("Derived", "Base", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak", Override: true}}
		}),
	}})
	if !hasCode(bag, diag.OverrideNonVirtual) {
		t.Fatal("override of non-virtual method not reported")
	}
}

func TestOverrideUsesStrictTypeEquality(t *testing.T) {
	// I32 and I64 are compatible for ordinary coercion, but an override
	// boundary requires exact equality.
	param := func(name string) ast.Param { return ast.Param{Name: "x", Type: namedType(name)} }
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Base", "", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak", Virtual: true, Params: []ast.Param{param("I32")}}}
		}),
		classDecl("Derived", "Base", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak", Override: true, Params: []ast.Param{param("I64")}}}
		}),
	}})
	if !hasCode(bag, diag.OverrideSigMismatch) {
		t.Fatal("compatible-but-unequal override parameter not reported")
	}
}

func TestOverrideMatchingSignatureAccepted(t *testing.T) {
	param := ast.Param{Name: "x", Type: namedType("I32")}
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Base", "", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak", Virtual: true, Params: []ast.Param{param}, Return: namedType("Bool")}}
		}),
		classDecl("Derived", "Base", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "speak", Override: true, Params: []ast.Param{param}, Return: namedType("Bool")}}
		}),
	}})
	if hasCode(bag, diag.OverrideSigMismatch) || hasCode(bag, diag.OverrideNonVirtual) {
		t.Fatalf("exact override rejected: %v", bag.Items())
	}
}

func TestAbstractMethodMustBeImplemented(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Shape", "", func(d *ast.ClassDecl) {
			d.IsAbstract = true
			d.Methods = []ast.MethodDecl{{Name: "area", Abstract: true, Return: namedType("F64")}}
		}),
		classDecl("Circle", "Shape", nil),
	}})
	if !hasCode(bag, diag.AbstractNotImpl) {
		t.Fatal("unimplemented abstract method not reported")
	}

	_, bag = checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Shape", "", func(d *ast.ClassDecl) {
			d.IsAbstract = true
			d.Methods = []ast.MethodDecl{{Name: "area", Abstract: true, Return: namedType("F64")}}
		}),
		classDecl("Circle", "Shape", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{{Name: "area", Override: true, Return: namedType("F64")}}
		}),
	}})
	if hasCode(bag, diag.AbstractNotImpl) {
		t.Fatalf("implemented abstract method still reported: %v", bag.Items())
	}
}

func TestInterfaceConformance(t *testing.T) {
	iface := &ast.InterfaceDecl{Name: "Drawable", Methods: []ast.InterfaceMethod{
		{Name: "draw", Params: []ast.Param{{Name: "scale", Type: namedType("F64")}}},
		{Name: "hide", HasDefault: true},
	}}

	_, bag := checkModule(t, &ast.Module{
		Interfaces: []*ast.InterfaceDecl{iface},
		Classes: []*ast.ClassDecl{
			classDecl("Sprite", "", func(d *ast.ClassDecl) {
				d.Interfaces = []string{"Drawable"}
			}),
		},
	})
	if !hasCode(bag, diag.BehaviorNotSatisfied) {
		t.Fatal("missing interface method not reported")
	}

	// Default-bodied methods need no implementation; exact signature
	// satisfies the required one.
	_, bag = checkModule(t, &ast.Module{
		Interfaces: []*ast.InterfaceDecl{iface},
		Classes: []*ast.ClassDecl{
			classDecl("Sprite", "", func(d *ast.ClassDecl) {
				d.Interfaces = []string{"Drawable"}
				d.Methods = []ast.MethodDecl{{Name: "draw", Params: []ast.Param{{Name: "scale", Type: namedType("F64")}}}}
			}),
		},
	})
	if bag.HasErrors() {
		t.Fatalf("conforming class reported: %v", bag.Items())
	}
}

func TestInterfaceConformanceParamTypeMismatch(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{
		Interfaces: []*ast.InterfaceDecl{{Name: "Drawable", Methods: []ast.InterfaceMethod{
			{Name: "draw", Params: []ast.Param{{Name: "scale", Type: namedType("F64")}}},
		}}},
		Classes: []*ast.ClassDecl{
			classDecl("Sprite", "", func(d *ast.ClassDecl) {
				d.Interfaces = []string{"Drawable"}
				d.Methods = []ast.MethodDecl{{Name: "draw", Params: []ast.Param{{Name: "scale", Type: namedType("F32")}}}}
			}),
		},
	})
	if !hasCode(bag, diag.ParamTypeMismatch) {
		t.Fatal("interface parameter type mismatch not reported")
	}
}

func TestUnknownInterfaceSuggested(t *testing.T) {
	_, bag := checkModule(t, &ast.Module{
		Interfaces: []*ast.InterfaceDecl{{Name: "Drawable"}},
		Classes: []*ast.ClassDecl{
			classDecl("Sprite", "", func(d *ast.ClassDecl) {
				d.Interfaces = []string{"Drawble"}
			}),
		},
	})
	if !hasCode(bag, diag.InterfaceNotFound) {
		t.Fatal("unknown interface not reported")
	}
}

func TestPointClassStackEligibility(t *testing.T) {
	fields := []ast.ClassField{
		{Name: "x", Type: namedType("I32")},
		{Name: "y", Type: namedType("I32")},
	}

	c, _ := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Point", "", func(d *ast.ClassDecl) {
			d.Fields = fields
			d.IsSealed = true
		}),
	}})
	def, _ := c.Env().Class("Point")
	if def.Attrs.EstimatedSize != 16 {
		t.Errorf("reference Point size = %d, want 16 (8 fields + 8 vtable)", def.Attrs.EstimatedSize)
	}
	if !def.Attrs.StackAllocatable {
		t.Error("sealed reference Point should be stack-allocatable")
	}

	c, _ = checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Point", "", func(d *ast.ClassDecl) {
			d.Fields = fields
			d.IsValue = true
		}),
	}})
	def, _ = c.Env().Class("Point")
	if def.Attrs.EstimatedSize != 8 {
		t.Errorf("value Point size = %d, want 8", def.Attrs.EstimatedSize)
	}
	if !def.Attrs.StackAllocatable {
		t.Error("value Point should be stack-allocatable")
	}
}

func TestVTableSlotsStableAcrossHierarchy(t *testing.T) {
	c, _ := checkModule(t, &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Base", "", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{
				{Name: "speak", Virtual: true},
				{Name: "walk", Virtual: true},
			}
		}),
		classDecl("Derived", "Base", func(d *ast.ClassDecl) {
			d.Methods = []ast.MethodDecl{
				{Name: "walk", Override: true},
				{Name: "jump", Virtual: true},
			}
		}),
	}})
	derived, _ := c.Env().Class("Derived")
	if len(derived.VTable) != 3 {
		t.Fatalf("vtable = %v, want 3 slots", derived.VTable)
	}
	if derived.VTable[1].Method != "walk" || derived.VTable[1].Defining != "Derived" {
		t.Errorf("slot 1 = %+v, want walk defined by Derived", derived.VTable[1])
	}
	if derived.VTable[0].Defining != "Base" {
		t.Errorf("slot 0 = %+v, want speak defined by Base", derived.VTable[0])
	}
}

func TestVisibilityEnforcement(t *testing.T) {
	m := &ast.Module{Classes: []*ast.ClassDecl{
		classDecl("Base", "", func(d *ast.ClassDecl) {
			d.Fields = []ast.ClassField{
				{Name: "secret", Type: namedType("I32"), Visibility: ast.VisPrivate},
				{Name: "shared", Type: namedType("I32"), Visibility: ast.VisProtected},
			}
		}),
		classDecl("Derived", "Base", nil),
	}}
	c, bag := checkModule(t, m)

	// From inside a subclass: protected ok, private rejected.
	c.currentClass = "Derived"
	c.CheckMemberAccess(ast.VisProtected, "Base", "shared", m.Span)
	if codeCount(bag, diag.VisibilityViolation) != 0 {
		t.Fatal("protected access from subclass rejected")
	}
	c.CheckMemberAccess(ast.VisPrivate, "Base", "secret", m.Span)
	if codeCount(bag, diag.VisibilityViolation) != 1 {
		t.Fatal("private access from subclass not rejected")
	}

	// From an unrelated context: protected rejected.
	c.currentClass = ""
	c.CheckMemberAccess(ast.VisProtected, "Base", "shared", m.Span)
	if codeCount(bag, diag.VisibilityViolation) != 2 {
		t.Fatal("protected access from outside not rejected")
	}
}
