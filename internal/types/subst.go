package types

import "strings"

// Substitute rewrites every occurrence of a bound generic parameter name
// inside id with its mapped type, recursing through all composite kinds.
// Unbound names are left as-is; a later stage rejects types that still
// contain an unresolved parameter.
func (in *Interner) Substitute(id TypeID, subst map[string]TypeID) TypeID {
	if len(subst) == 0 || id == NoTypeID {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindGeneric:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			if repl, ok := subst[info.Name]; ok {
				return repl
			}
			return id
		}
		return in.RegisterGeneric(info.Name, in.substituteAll(info.Args, subst))
	case KindNamed:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			if repl, ok := subst[info.Name]; ok {
				return repl
			}
			if rewritten, ok := in.substituteAssocPath(info.Name, subst); ok {
				return rewritten
			}
			return id
		}
		return in.RegisterNamed(info.Name, info.Module, in.substituteAll(info.Args, subst))
	case KindClass:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			return id
		}
		return in.RegisterClass(info.Name, in.substituteAll(info.Args, subst))
	case KindDyn:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			return id
		}
		return in.RegisterDyn(info.Name, in.substituteAll(info.Args, subst))
	case KindImplBehavior:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			return id
		}
		return in.RegisterImplBehavior(info.Name, in.substituteAll(info.Args, subst))
	case KindPtr:
		return in.Intern(MakePtr(in.Substitute(tt.Elem, subst)))
	case KindRef:
		return in.Intern(MakeRef(in.Substitute(tt.Elem, subst), tt.Mutable))
	case KindArray:
		return in.Intern(MakeArray(in.Substitute(tt.Elem, subst), tt.Count))
	case KindSlice:
		return in.Intern(MakeSlice(in.Substitute(tt.Elem, subst)))
	case KindTuple:
		info, _ := in.TupleInfo(id)
		return in.RegisterTuple(in.substituteAll(info.Elems, subst))
	case KindFn:
		info, _ := in.FnInfo(id)
		return in.RegisterFn(in.substituteAll(info.Params, subst), in.Substitute(info.Result, subst))
	case KindClosure:
		info, _ := in.ClosureInfo(id)
		return in.RegisterClosure(
			in.substituteAll(info.Params, subst),
			in.Substitute(info.Result, subst),
			info.Captures,
		)
	default:
		return id
	}
}

func (in *Interner) substituteAll(ids []TypeID, subst map[string]TypeID) []TypeID {
	out := make([]TypeID, len(ids))
	for i, id := range ids {
		out[i] = in.Substitute(id, subst)
	}
	return out
}

// substituteAssocPath handles associated-type paths such as "T::Owned":
// when the head segment is bound to a nominal type, the path is rebased
// onto the bound type's name.
func (in *Interner) substituteAssocPath(name string, subst map[string]TypeID) (TypeID, bool) {
	head, rest, found := strings.Cut(name, "::")
	if !found {
		return NoTypeID, false
	}
	bound, ok := subst[head]
	if !ok {
		return NoTypeID, false
	}
	info, ok := in.NamedInfo(bound)
	if !ok || len(info.Args) != 0 {
		return NoTypeID, false
	}
	return in.RegisterNamed(info.Name+"::"+rest, info.Module, nil), true
}
