package mono

import (
	"slices"

	"tml/internal/types"
)

// Subst is an ordered substitution map from generic parameter name to a
// concrete type, built per call site or per instantiation and discarded
// afterwards.
type Subst struct {
	names []string
	byName map[string]types.TypeID
}

func NewSubst() *Subst {
	return &Subst{byName: make(map[string]types.TypeID)}
}

// Bind records name -> id unless the name is already bound. Explicit
// call-site arguments are seeded first and are never overwritten by
// inference.
func (s *Subst) Bind(name string, id types.TypeID) {
	if _, ok := s.byName[name]; ok {
		return
	}
	s.names = append(s.names, name)
	s.byName[name] = id
}

func (s *Subst) Lookup(name string) (types.TypeID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

func (s *Subst) Len() int {
	return len(s.names)
}

// Names returns the bound parameter names in binding order.
func (s *Subst) Names() []string {
	return slices.Clone(s.names)
}

// Map returns the plain map view used by types.Substitute.
func (s *Subst) Map() map[string]types.TypeID {
	return s.byName
}

// ArgsFor returns the bound types for the declared parameter list, in
// declaration order; unbound parameters yield NoTypeID.
func (s *Subst) ArgsFor(params []string) []types.TypeID {
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = s.byName[p]
	}
	return out
}

// ExtractTypeParams matches a declared parameter type against a concrete
// argument type and binds every generic parameter it can see. Matching
// `Pair[T]` against `Pair[I64]` binds {T -> I64}. Unification is purely
// structural: named and generic types recurse into equal-arity argument
// lists, references, tuples, arrays, slices and function types recurse
// into their constituents, and everything else is left for the
// compatibility check to judge.
func ExtractTypeParams(in *types.Interner, param, arg types.TypeID, typeParams []string, subst *Subst) {
	if param == types.NoTypeID || arg == types.NoTypeID {
		return
	}
	pt, ok := in.Lookup(param)
	if !ok {
		return
	}
	at, aok := in.Lookup(arg)
	if !aok {
		return
	}

	switch pt.Kind {
	case types.KindGeneric:
		info, _ := in.NamedInfo(param)
		if slices.Contains(typeParams, info.Name) && len(info.Args) == 0 {
			subst.Bind(info.Name, arg)
			return
		}
		if ai, ok := in.NamedInfo(arg); ok && ai.Name == info.Name && len(ai.Args) == len(info.Args) {
			for i := range info.Args {
				ExtractTypeParams(in, info.Args[i], ai.Args[i], typeParams, subst)
			}
		}
	case types.KindNamed:
		info, _ := in.NamedInfo(param)
		// A bare name with no arguments may itself be a type parameter.
		if len(info.Args) == 0 && info.Module == "" && slices.Contains(typeParams, info.Name) {
			subst.Bind(info.Name, arg)
			return
		}
		if at.Kind != types.KindNamed && at.Kind != types.KindClass {
			return
		}
		ai, ok := in.NamedInfo(arg)
		if !ok || ai.Name != info.Name || len(ai.Args) != len(info.Args) {
			return
		}
		for i := range info.Args {
			ExtractTypeParams(in, info.Args[i], ai.Args[i], typeParams, subst)
		}
	case types.KindRef:
		if at.Kind == types.KindRef {
			ExtractTypeParams(in, pt.Elem, at.Elem, typeParams, subst)
		}
	case types.KindPtr:
		if at.Kind == types.KindPtr {
			ExtractTypeParams(in, pt.Elem, at.Elem, typeParams, subst)
		}
	case types.KindArray:
		if at.Kind == types.KindArray {
			ExtractTypeParams(in, pt.Elem, at.Elem, typeParams, subst)
		}
	case types.KindSlice:
		if at.Kind == types.KindSlice || at.Kind == types.KindArray {
			ExtractTypeParams(in, pt.Elem, at.Elem, typeParams, subst)
		}
	case types.KindTuple:
		pi, _ := in.TupleInfo(param)
		ai, ok := in.TupleInfo(arg)
		if !ok || len(pi.Elems) != len(ai.Elems) {
			return
		}
		for i := range pi.Elems {
			ExtractTypeParams(in, pi.Elems[i], ai.Elems[i], typeParams, subst)
		}
	case types.KindFn:
		pi, _ := in.FnInfo(param)
		var argParams []types.TypeID
		var argResult types.TypeID
		switch at.Kind {
		case types.KindFn:
			ai, _ := in.FnInfo(arg)
			argParams, argResult = ai.Params, ai.Result
		case types.KindClosure:
			ai, _ := in.ClosureInfo(arg)
			argParams, argResult = ai.Params, ai.Result
		default:
			return
		}
		if len(pi.Params) != len(argParams) {
			return
		}
		for i := range pi.Params {
			ExtractTypeParams(in, pi.Params[i], argParams[i], typeParams, subst)
		}
		ExtractTypeParams(in, pi.Result, argResult, typeParams, subst)
	}
}
