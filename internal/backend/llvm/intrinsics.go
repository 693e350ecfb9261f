package llvm

import (
	"fmt"
	"sort"
	"strings"

	"tml/internal/mir"
	"tml/internal/types"
)

// mathIntrinsics maps runtime math function names to their argument
// count. Calls to these lower to @llvm.NAME.TYPE instead of a library
// symbol.
var mathIntrinsics = map[string]int{
	"sqrt":     1,
	"sin":      1,
	"cos":      1,
	"exp":      1,
	"exp2":     1,
	"log":      1,
	"log2":     1,
	"log10":    1,
	"fabs":     1,
	"floor":    1,
	"ceil":     1,
	"trunc":    1,
	"round":    1,
	"pow":      2,
	"copysign": 2,
	"minnum":   2,
	"maxnum":   2,
	"fma":      3,
}

// intrinsicSuffix is the LLVM overload suffix for the float result type.
func intrinsicSuffix(in *types.Interner, id types.TypeID) string {
	tt, ok := in.Lookup(in.Resolve(id))
	if ok && tt.Kind == types.KindFloat && tt.Width == 32 {
		return "f32"
	}
	return "f64"
}

// intrinsicCallee rewrites a math call target to its intrinsic symbol,
// or returns false when the callee is not a known intrinsic.
func intrinsicCallee(in *types.Interner, name string, result types.TypeID) (string, bool) {
	if _, ok := mathIntrinsics[name]; !ok {
		return "", false
	}
	if !in.IsFloat(in.Resolve(result)) {
		return "", false
	}
	return fmt.Sprintf("llvm.%s.%s", name, intrinsicSuffix(in, result)), true
}

// collectIntrinsicDecls scans call sites and declares every distinct
// intrinsic overload used by the module.
func (e *Emitter) collectIntrinsicDecls() []runtimeDecl {
	seen := make(map[string]runtimeDecl)
	for _, f := range e.mod.Funcs {
		if f == nil {
			continue
		}
		for bi := range f.Blocks {
			for ii := range f.Blocks[bi].Instrs {
				instr := &f.Blocks[bi].Instrs[ii]
				if instr.Kind != mir.InstrCall {
					continue
				}
				name, ok := intrinsicCallee(e.types, instr.Call.Callee, instr.Type)
				if !ok {
					continue
				}
				if _, dup := seen[name]; dup {
					continue
				}
				ty := floatWidthType(32)
				if strings.HasSuffix(name, ".f64") {
					ty = floatWidthType(64)
				}
				params := make([]string, mathIntrinsics[instr.Call.Callee])
				for i := range params {
					params[i] = ty
				}
				seen[name] = runtimeDecl{ret: ty, name: name, params: params}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	decls := make([]runtimeDecl, 0, len(names))
	for _, name := range names {
		decls = append(decls, seen[name])
	}
	return decls
}
