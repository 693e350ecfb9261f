package types

import (
	"fmt"
	"strings"
)

// String renders a type the way diagnostics and mangled names expect:
// `?N` for typevars, `[T; N]` for arrays, `[T]` for slices, `(A, B)` for
// tuples, `fn(A) -> R` for function types, `dyn B` for behavior
// existentials and `Name[Args]` for everything nominal.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "Unit"
	case KindNever:
		return "Never"
	case KindBool:
		return "Bool"
	case KindChar:
		return "Char"
	case KindStr:
		return "Str"
	case KindInt:
		return fmt.Sprintf("I%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("U%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("F%d", tt.Width)
	case KindPtr:
		return fmt.Sprintf("Ptr[%s]", in.String(tt.Elem))
	case KindRef:
		if tt.Mutable {
			return fmt.Sprintf("mut ref %s", in.String(tt.Elem))
		}
		return fmt.Sprintf("ref %s", in.String(tt.Elem))
	case KindArray:
		return fmt.Sprintf("[%s; %d]", in.String(tt.Elem), tt.Count)
	case KindSlice:
		return fmt.Sprintf("[%s]", in.String(tt.Elem))
	case KindTuple:
		info, _ := in.TupleInfo(id)
		return fmt.Sprintf("(%s)", in.joinTypes(info.Elems))
	case KindFn:
		info, _ := in.FnInfo(id)
		return fmt.Sprintf("fn(%s) -> %s", in.joinTypes(info.Params), in.String(info.Result))
	case KindClosure:
		info, _ := in.ClosureInfo(id)
		return fmt.Sprintf("Closure[(%s) -> %s]", in.joinTypes(info.Params), in.String(info.Result))
	case KindNamed, KindGeneric, KindClass:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			return info.Name
		}
		return fmt.Sprintf("%s[%s]", info.Name, in.joinTypes(info.Args))
	case KindDyn:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			return "dyn " + info.Name
		}
		return fmt.Sprintf("dyn %s[%s]", info.Name, in.joinTypes(info.Args))
	case KindImplBehavior:
		info, _ := in.NamedInfo(id)
		if len(info.Args) == 0 {
			return "impl " + info.Name
		}
		return fmt.Sprintf("impl %s[%s]", info.Name, in.joinTypes(info.Args))
	case KindTypeVar:
		return fmt.Sprintf("?%d", tt.Count)
	default:
		return "<invalid>"
	}
}

func (in *Interner) joinTypes(ids []TypeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = in.String(id)
	}
	return strings.Join(parts, ", ")
}
