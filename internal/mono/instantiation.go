package mono

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"tml/internal/source"
	"tml/internal/types"
)

// InstantiationKind identifies the kind of entity being instantiated.
type InstantiationKind uint8

const (
	// InstFn represents a function instantiation.
	InstFn InstantiationKind = iota
	// InstType represents a struct/enum instantiation.
	InstType
	// InstClass represents a class instantiation.
	InstClass
)

// InstantiationKey is a comparable key for instantiations.
//
// Note: Go maps cannot use slices as keys, so we store a stable ArgsKey
// string alongside the normalized TypeArgs in the entry.
type InstantiationKey struct {
	Base    string
	ArgsKey string
}

// UseSite records a location where an instantiation occurs.
type UseSite struct {
	Span   source.Span
	Caller string
	Note   string
}

// InstEntry captures all instantiations of a particular generic symbol.
type InstEntry struct {
	Kind InstantiationKind
	Key  InstantiationKey

	// Mangled is the emitted symbol name, shared by every use site with
	// the same ordered type arguments.
	Mangled string

	TypeArgs []types.TypeID
	UseSites []UseSite
}

// InstantiationMap tracks every generic instantiation of a module, so the
// backend can deduplicate emitted symbols.
type InstantiationMap struct {
	entries map[InstantiationKey]*InstEntry
}

func NewInstantiationMap() *InstantiationMap {
	return &InstantiationMap{entries: make(map[InstantiationKey]*InstEntry)}
}

// Record registers one use of base with the given ordered type arguments
// and returns the mangled symbol for it. Repeat calls with identical
// arguments return the same name and accumulate use sites.
func (m *InstantiationMap) Record(in *types.Interner, kind InstantiationKind, base string, typeArgs []types.TypeID, site UseSite) string {
	key := InstantiationKey{Base: base, ArgsKey: argsKey(typeArgs)}
	entry, ok := m.entries[key]
	if !ok {
		entry = &InstEntry{
			Kind:     kind,
			Key:      key,
			Mangled:  Mangle(in, base, typeArgs),
			TypeArgs: slices.Clone(typeArgs),
		}
		m.entries[key] = entry
	}
	entry.UseSites = append(entry.UseSites, site)
	return entry.Mangled
}

// Lookup returns the entry for base with the given arguments, if recorded.
func (m *InstantiationMap) Lookup(base string, typeArgs []types.TypeID) (*InstEntry, bool) {
	entry, ok := m.entries[InstantiationKey{Base: base, ArgsKey: argsKey(typeArgs)}]
	return entry, ok
}

func (m *InstantiationMap) Len() int {
	return len(m.entries)
}

// Entries returns all instantiations sorted by mangled name, for
// deterministic emission order.
func (m *InstantiationMap) Entries() []*InstEntry {
	out := make([]*InstEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Mangled < out[j].Mangled
	})
	return out
}

func argsKey(args []types.TypeID) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return sb.String()
}
