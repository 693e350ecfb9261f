package types

// IsInteger reports whether id resolves to a signed or unsigned integer.
func (in *Interner) IsInteger(id TypeID) bool {
	switch in.Kind(in.Resolve(id)) {
	case KindInt, KindUint:
		return true
	}
	return false
}

// IsSigned reports whether id resolves to a signed integer.
func (in *Interner) IsSigned(id TypeID) bool {
	return in.Kind(in.Resolve(id)) == KindInt
}

// IsFloat reports whether id resolves to a floating-point type.
func (in *Interner) IsFloat(id TypeID) bool {
	return in.Kind(in.Resolve(id)) == KindFloat
}

// Equal reports strict type equality after following typevar bindings.
// Interning is canonical, so equality is TypeID identity.
func (in *Interner) Equal(a, b TypeID) bool {
	return in.Resolve(a) == in.Resolve(b)
}

// Compatible reports whether a value of type actual may appear where
// expected is required. Compatibility is looser than equality: it admits
// literal coercions and deferred checks. It never errors and has no side
// effects; incompatible pairs simply yield false.
func (in *Interner) Compatible(expected, actual TypeID) bool {
	expected = in.Resolve(expected)
	actual = in.Resolve(actual)
	if expected == actual {
		return true
	}

	et, eok := in.Lookup(expected)
	at, aok := in.Lookup(actual)
	if !eok || !aok {
		return false
	}

	// An unresolved inference variable is compatible with anything: the
	// binding is decided later.
	if et.Kind == KindTypeVar || at.Kind == KindTypeVar {
		return true
	}

	// Integer literals coerce between integer kinds, float literals
	// between float widths. Mixing the two categories does not.
	if isIntegerKind(et.Kind) && isIntegerKind(at.Kind) {
		return true
	}
	if et.Kind == KindFloat && at.Kind == KindFloat {
		return true
	}

	// A null pointer (Ptr[Unit]) matches any pointer, in either position.
	if in.isPointer(expected, et) && in.isPointer(actual, at) {
		if in.isNullPointer(expected, et) || in.isNullPointer(actual, at) {
			return true
		}
	}

	// A fixed-size array fills a slice of a compatible element type.
	if et.Kind == KindSlice && at.Kind == KindArray {
		return in.Compatible(et.Elem, at.Elem)
	}

	// Arrays match arrays of equal length and compatible elements.
	if et.Kind == KindArray && at.Kind == KindArray {
		return et.Count == at.Count && in.Compatible(et.Elem, at.Elem)
	}

	// A fixed-size array also fills List[T] / Slice[T] named types.
	if et.Kind == KindNamed && at.Kind == KindArray {
		if info, ok := in.NamedInfo(expected); ok && len(info.Args) == 1 {
			if info.Name == "List" || info.Name == "Slice" {
				return in.Compatible(info.Args[0], at.Elem)
			}
		}
	}

	// A closure fills a plain function type when the signatures match
	// exactly (no coercion across the call boundary).
	if et.Kind == KindFn && at.Kind == KindClosure {
		fn, _ := in.FnInfo(expected)
		cl, _ := in.ClosureInfo(actual)
		if fn == nil || cl == nil || len(fn.Params) != len(cl.Params) {
			return false
		}
		for i := range fn.Params {
			if !in.Equal(fn.Params[i], cl.Params[i]) {
				return false
			}
		}
		return in.Equal(fn.Result, cl.Result)
	}

	// Any named type is accepted where an "implements behavior"
	// existential is expected (and vice versa); the constraint checker
	// verifies the obligation separately.
	if et.Kind == KindImplBehavior && at.Kind == KindNamed {
		return true
	}
	if et.Kind == KindNamed && at.Kind == KindImplBehavior {
		return true
	}

	return false
}

func isIntegerKind(k Kind) bool {
	return k == KindInt || k == KindUint
}

// isPointer covers both the structural Ptr kind and the nominal spelling
// Ptr[T] coming from module signatures.
func (in *Interner) isPointer(id TypeID, tt Type) bool {
	if tt.Kind == KindPtr {
		return true
	}
	if tt.Kind == KindNamed {
		if info, ok := in.NamedInfo(id); ok {
			return info.Name == "Ptr" && len(info.Args) == 1
		}
	}
	return false
}

func (in *Interner) isNullPointer(id TypeID, tt Type) bool {
	if tt.Kind == KindPtr {
		return in.Kind(in.Resolve(tt.Elem)) == KindUnit
	}
	if tt.Kind == KindNamed {
		if info, ok := in.NamedInfo(id); ok && info.Name == "Ptr" && len(info.Args) == 1 {
			return in.Kind(in.Resolve(info.Args[0])) == KindUnit
		}
	}
	return false
}
