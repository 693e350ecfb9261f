package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.I32 == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
	i64, _ := in.Lookup(b.I64)
	if i64.Kind != KindInt || i64.Width != Width64 {
		t.Fatalf("unexpected I64 descriptor: %+v", i64)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().I32
	arr1 := in.Intern(MakeArray(elem, 10))
	arr2 := in.Intern(MakeArray(elem, 10))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Intern(MakeArray(elem, 11)) == arr1 {
		t.Fatalf("arrays of different length must differ")
	}
}

func TestReferenceMutabilityAffectsIdentity(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().I32
	mut := in.Intern(MakeRef(elem, true))
	imm := in.Intern(MakeRef(elem, false))
	if mut == imm {
		t.Fatalf("mut ref and ref must have distinct IDs")
	}
}

func TestNamedRegistrationDedup(t *testing.T) {
	in := NewInterner()
	a := in.RegisterNamed("Pair", "", []TypeID{in.Builtins().I32, in.Builtins().I32})
	b := in.RegisterNamed("Pair", "", []TypeID{in.Builtins().I32, in.Builtins().I32})
	if a != b {
		t.Fatalf("identical named instantiations should share a TypeID")
	}
	c := in.RegisterNamed("Pair", "", []TypeID{in.Builtins().I64, in.Builtins().I64})
	if a == c {
		t.Fatalf("different type args must produce a different TypeID")
	}
}

func TestTypeVarsAreNeverDeduplicated(t *testing.T) {
	in := NewInterner()
	v1 := in.FreshTypeVar()
	v2 := in.FreshTypeVar()
	if v1 == v2 {
		t.Fatalf("fresh typevars must be distinct")
	}
}

func TestResolveFollowsBindings(t *testing.T) {
	in := NewInterner()
	v := in.FreshTypeVar()
	in.Bind(v, in.Builtins().I32)
	if got := in.Resolve(v); got != in.Builtins().I32 {
		t.Fatalf("Resolve(v) = %v, want I32", got)
	}
}

func TestResolveIdempotentOnConcrete(t *testing.T) {
	in := NewInterner()
	ids := []TypeID{
		in.Builtins().I32,
		in.Builtins().Str,
		in.Intern(MakeArray(in.Builtins().F64, 4)),
		in.RegisterTuple([]TypeID{in.Builtins().Bool, in.Builtins().Char}),
	}
	for _, id := range ids {
		if got := in.Resolve(id); got != id {
			t.Fatalf("Resolve(%s) changed an already-concrete type", in.String(id))
		}
		if got := in.Resolve(in.Resolve(id)); got != id {
			t.Fatalf("double Resolve(%s) changed the type", in.String(id))
		}
	}
}

func TestRebindIsIgnored(t *testing.T) {
	in := NewInterner()
	v := in.FreshTypeVar()
	in.Bind(v, in.Builtins().I32)
	in.Bind(v, in.Builtins().F64)
	if got := in.Resolve(v); got != in.Builtins().I32 {
		t.Fatalf("rebinding must not overwrite the first binding")
	}
}

func TestStringForms(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{b.I32, "I32"},
		{b.U128, "U128"},
		{b.F64, "F64"},
		{in.Intern(MakeArray(b.I64, 8)), "[I64; 8]"},
		{in.Intern(MakeSlice(b.Str)), "[Str]"},
		{in.Intern(MakePtr(b.Unit)), "Ptr[Unit]"},
		{in.Intern(MakeRef(b.I32, true)), "mut ref I32"},
		{in.RegisterTuple([]TypeID{b.I32, b.Bool}), "(I32, Bool)"},
		{in.RegisterFn([]TypeID{b.I32}, b.Str), "fn(I32) -> Str"},
		{in.RegisterDyn("Comparable", []TypeID{b.I32}), "dyn Comparable[I32]"},
		{in.RegisterNamed("Maybe", "", []TypeID{b.I32}), "Maybe[I32]"},
	}
	for _, tc := range cases {
		if got := in.String(tc.id); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
