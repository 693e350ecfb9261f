package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// NamedInfo stores metadata shared by every name-carrying kind: user
// structs/enums (KindNamed), generic parameter references (KindGeneric),
// reference-semantics classes (KindClass), behavior existentials (KindDyn)
// and impl-behavior types (KindImplBehavior).
type NamedInfo struct {
	Name   string
	Module string
	Args   []TypeID
}

// RegisterNamed creates or finds Name[Args] from module.
func (in *Interner) RegisterNamed(name, module string, args []TypeID) TypeID {
	return in.registerNameCarrier(KindNamed, name, module, args)
}

// RegisterGeneric creates or finds a generic parameter reference T[Args].
func (in *Interner) RegisterGeneric(name string, args []TypeID) TypeID {
	return in.registerNameCarrier(KindGeneric, name, "", args)
}

// RegisterClass creates or finds the class type Name[Args].
func (in *Interner) RegisterClass(name string, args []TypeID) TypeID {
	return in.registerNameCarrier(KindClass, name, "", args)
}

// RegisterDyn creates or finds dyn Behavior[Args].
func (in *Interner) RegisterDyn(behavior string, args []TypeID) TypeID {
	return in.registerNameCarrier(KindDyn, behavior, "", args)
}

// RegisterImplBehavior creates or finds the "implements Behavior"
// existential used for behavior-typed values.
func (in *Interner) RegisterImplBehavior(behavior string, args []TypeID) TypeID {
	return in.registerNameCarrier(KindImplBehavior, behavior, "", args)
}

func (in *Interner) registerNameCarrier(kind Kind, name, module string, args []TypeID) TypeID {
	key := nameCarrierKey(kind, name, module, args)
	if id, ok := in.namedIdx[key]; ok {
		return id
	}
	slot := in.appendNamedInfo(NamedInfo{Name: name, Module: module, Args: cloneTypeArgs(args)})
	id := in.internRaw(Type{Kind: kind, Payload: slot})
	in.namedIdx[key] = id
	return id
}

// NamedInfo returns metadata for any name-carrying TypeID.
func (in *Interner) NamedInfo(id TypeID) (*NamedInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case KindNamed, KindGeneric, KindClass, KindDyn, KindImplBehavior:
	default:
		return nil, false
	}
	if int(tt.Payload) >= len(in.named) {
		return nil, false
	}
	return &in.named[tt.Payload], true
}

func (in *Interner) appendNamedInfo(info NamedInfo) uint32 {
	in.named = append(in.named, info)
	slot, err := safecast.Conv[uint32](len(in.named) - 1)
	if err != nil {
		panic(fmt.Errorf("named info overflow: %w", err))
	}
	return slot
}

func nameCarrierKey(kind Kind, name, module string, args []TypeID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%s@%s", kind, name, module)
	for _, a := range args {
		fmt.Fprintf(&sb, ",%d", a)
	}
	return sb.String()
}
