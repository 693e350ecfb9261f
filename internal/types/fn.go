package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// FnInfo stores metadata for plain function types.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}

// Capture describes a single captured variable of a closure.
type Capture struct {
	Name    string
	Type    TypeID
	Mutable bool
}

// ClosureInfo stores metadata for closure types: the call signature plus
// the captured environment.
type ClosureInfo struct {
	Params   []TypeID
	Result   TypeID
	Captures []Capture
}

// RegisterFn creates or finds a function type.
func (in *Interner) RegisterFn(params []TypeID, result TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindFn {
			continue
		}
		if int(tt.Payload) >= len(in.fns) {
			continue
		}
		info := in.fns[tt.Payload]
		if info.Result == result && slices.Equal(info.Params, params) {
			return id
		}
	}
	slot := in.appendFnInfo(FnInfo{Params: cloneTypeArgs(params), Result: result})
	return in.internRaw(Type{Kind: KindFn, Payload: slot})
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn {
		return nil, false
	}
	if int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// RegisterClosure creates a closure type. Closures are not deduplicated:
// two closures with the same signature still differ by capture set, and the
// capture list is attached by the checker after construction.
func (in *Interner) RegisterClosure(params []TypeID, result TypeID, captures []Capture) TypeID {
	slot := in.appendClosureInfo(ClosureInfo{
		Params:   cloneTypeArgs(params),
		Result:   result,
		Captures: slices.Clone(captures),
	})
	return in.internRaw(Type{Kind: KindClosure, Payload: slot})
}

// ClosureInfo retrieves closure type metadata by TypeID.
func (in *Interner) ClosureInfo(id TypeID) (*ClosureInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClosure {
		return nil, false
	}
	if int(tt.Payload) >= len(in.closures) {
		return nil, false
	}
	return &in.closures[tt.Payload], true
}

func (in *Interner) appendFnInfo(info FnInfo) uint32 {
	in.fns = append(in.fns, info)
	slot, err := safecast.Conv[uint32](len(in.fns) - 1)
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	return slot
}

func (in *Interner) appendClosureInfo(info ClosureInfo) uint32 {
	in.closures = append(in.closures, info)
	slot, err := safecast.Conv[uint32](len(in.closures) - 1)
	if err != nil {
		panic(fmt.Errorf("closure info overflow: %w", err))
	}
	return slot
}
