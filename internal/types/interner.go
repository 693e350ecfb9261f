package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	Char    TypeID
	Str     TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	I128    TypeID
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
	U128    TypeID
	F32     TypeID
	F64     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// TypeIDs for structurally equal types are identical, except typevars,
// which are always fresh.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	tuples   []TupleInfo
	fns      []FnInfo
	closures []ClosureInfo
	named    []NamedInfo
	namedIdx map[string]TypeID

	nextVar  uint32
	bindings map[TypeID]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		namedIdx: make(map[string]TypeID),
		bindings: make(map[TypeID]TypeID),
	}
	in.named = append(in.named, NamedInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.I128 = in.Intern(MakeInt(Width128))
	in.builtins.U8 = in.Intern(MakeUint(Width8))
	in.builtins.U16 = in.Intern(MakeUint(Width16))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.U64 = in.Intern(MakeUint(Width64))
	in.builtins.U128 = in.Intern(MakeUint(Width128))
	in.builtins.F32 = in.Intern(MakeFloat(Width32))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := keyOf(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[keyOf(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind for id, KindInvalid for unknown IDs.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// FreshTypeVar allocates a new unresolved inference placeholder. Typevars
// are never deduplicated: every call yields a distinct TypeID.
func (in *Interner) FreshTypeVar() TypeID {
	in.nextVar++
	return in.internRaw(Type{Kind: KindTypeVar, Count: in.nextVar})
}

// Bind records a typevar binding. Binding a non-typevar or rebinding an
// already bound variable is ignored.
func (in *Interner) Bind(tv, target TypeID) {
	tt, ok := in.Lookup(tv)
	if !ok || tt.Kind != KindTypeVar {
		return
	}
	if _, bound := in.bindings[tv]; bound {
		return
	}
	in.bindings[tv] = target
}

// Resolve follows typevar bindings until it reaches a concrete type or an
// unbound variable. Resolving an already-concrete type returns it unchanged.
func (in *Interner) Resolve(id TypeID) TypeID {
	seen := 0
	for {
		tt, ok := in.Lookup(id)
		if !ok || tt.Kind != KindTypeVar {
			return id
		}
		next, bound := in.bindings[id]
		if !bound {
			return id
		}
		id = next
		seen++
		if seen > len(in.bindings)+1 {
			// Binding cycle; report the variable itself rather than spinning.
			return id
		}
	}
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Mutable bool
	Payload uint32
}

func keyOf(t Type) typeKey {
	return typeKey{
		Kind:    t.Kind,
		Elem:    t.Elem,
		Count:   t.Count,
		Width:   t.Width,
		Mutable: t.Mutable,
		Payload: t.Payload,
	}
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	out := make([]TypeID, len(args))
	copy(out, args)
	return out
}
