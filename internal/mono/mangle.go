package mono

import (
	"strings"

	"tml/internal/types"
)

// Mangle produces the symbol name for one instantiation of a generic
// entity: the base name followed by "_" and the rendered form of each type
// argument, with characters the backend cannot digest replaced by "_".
// The result is deterministic for a given ordered argument list, so
// repeated instantiations with the same arguments share one symbol.
//
//	Vec[I32]         -> Vec_I32
//	map[I32, Str]    -> map_I32_Str
//	Skip[Range[I64]] -> Skip_Range_I64_
func Mangle(in *types.Interner, base string, args []types.TypeID) string {
	if len(args) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	for _, arg := range args {
		sb.WriteByte('_')
		if arg == types.NoTypeID {
			sb.WriteByte('?')
			continue
		}
		sb.WriteString(in.String(arg))
	}
	return sanitize(sb.String())
}

func sanitize(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch c {
		case '[', ']', ',', ' ', '<', '>':
			out[i] = '_'
		}
	}
	return string(out)
}

// SanitizeSymbol maps path-qualified names ("mod::fn") to backend-safe
// symbols ("mod__fn").
func SanitizeSymbol(name string) string {
	return strings.ReplaceAll(name, "::", "__")
}
