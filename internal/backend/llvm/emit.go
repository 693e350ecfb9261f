package llvm

import (
	"fmt"
	"strings"

	"tml/internal/mir"
	"tml/internal/types"
)

type stringConst struct {
	bytes      []byte
	globalName string
}

// Emitter lowers one MIR module to LLVM textual IR.
type Emitter struct {
	mod          *mir.Module
	types        *types.Interner
	buf          strings.Builder
	stringConsts map[string]*stringConst
	stringOrder  []string
}

// EmitModule lowers a whole module. A unit with semantic errors must not
// reach this point; lowering assumes a validated module.
func EmitModule(mod *mir.Module, in *types.Interner) (string, error) {
	e := &Emitter{
		mod:          mod,
		types:        in,
		stringConsts: make(map[string]*stringConst),
	}
	if mod == nil {
		return "", nil
	}
	e.collectStringConsts()
	e.emitPreamble()
	e.emitRuntimeDecls()
	e.emitTypeDefs()
	e.emitVTableDecls()
	e.emitStringConsts()
	for _, f := range mod.Funcs {
		if f == nil {
			continue
		}
		fe := &funcEmitter{emitter: e, f: f}
		if err := fe.emitFunction(); err != nil {
			return "", fmt.Errorf("function %s: %w", f.Name, err)
		}
	}
	return e.buf.String(), nil
}

func (e *Emitter) emitPreamble() {
	e.buf.WriteString("target datalayout = \"e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128\"\n")
	e.buf.WriteString("target triple = \"x86_64-unknown-linux-gnu\"\n\n")
}

type runtimeDecl struct {
	ret    string
	name   string
	params []string
}

func runtimeDecls() []runtimeDecl {
	return []runtimeDecl{
		{"ptr", "str_concat_opt", []string{"ptr", "ptr"}},
		{"ptr", "tml_alloc", []string{"i64"}},
		{"void", "tml_free", []string{"ptr"}},
		{"void", "llvm.memset.p0.i64", []string{"ptr", "i8", "i64", "i1"}},
	}
}

func (e *Emitter) emitRuntimeDecls() {
	decls := append(runtimeDecls(), e.collectIntrinsicDecls()...)
	for _, d := range decls {
		fmt.Fprintf(&e.buf, "declare %s @%s(%s)\n", d.ret, d.name, strings.Join(d.params, ", "))
	}
	e.buf.WriteString("\n")
}

// emitTypeDefs writes named aggregate declarations: structs and classes
// with their field order, enums as a discriminant plus a payload region
// sized to the largest variant.
func (e *Emitter) emitTypeDefs() {
	for _, s := range e.mod.Structs {
		fields := make([]string, 0, len(s.Fields)+1)
		if s.Class {
			// Leading dispatch-table pointer.
			fields = append(fields, "ptr")
		}
		for _, f := range s.Fields {
			ty, err := llvmValueType(e.types, f)
			if err != nil {
				ty = "i8"
			}
			fields = append(fields, ty)
		}
		if len(fields) == 0 {
			// Empty aggregates still need one slot to be constructible.
			fields = append(fields, "i32")
		}
		fmt.Fprintf(&e.buf, "%%struct.%s = type { %s }\n", s.Name, strings.Join(fields, ", "))
	}
	for _, en := range e.mod.Enums {
		if en.MaxPayload == 0 {
			fmt.Fprintf(&e.buf, "%%struct.%s = type { i32 }\n", en.Name)
			continue
		}
		fmt.Fprintf(&e.buf, "%%struct.%s = type { i32, [%d x i8] }\n", en.Name, enumPayloadBytes(en.MaxPayload))
	}
	if len(e.mod.Structs)+len(e.mod.Enums) > 0 {
		e.buf.WriteString("\n")
	}
}

// emitVTableDecls declares one dispatch-table global per class. The
// tables themselves are populated at link time from the method symbols;
// instance construction stores the table address into the leading slot.
func (e *Emitter) emitVTableDecls() {
	n := 0
	for _, s := range e.mod.Structs {
		if !s.Class {
			continue
		}
		fmt.Fprintf(&e.buf, "@vt.%s = external global ptr\n", s.Name)
		n++
	}
	if n > 0 {
		e.buf.WriteString("\n")
	}
}

func (e *Emitter) collectStringConsts() {
	for _, f := range e.mod.Funcs {
		if f == nil {
			continue
		}
		for bi := range f.Blocks {
			for ii := range f.Blocks[bi].Instrs {
				instr := &f.Blocks[bi].Instrs[ii]
				if instr.Kind == mir.InstrConst && instr.Const.Kind == mir.ConstStr {
					e.internString(instr.Const.Str)
				}
			}
		}
	}
}

func (e *Emitter) internString(s string) *stringConst {
	if sc, ok := e.stringConsts[s]; ok {
		return sc
	}
	sc := &stringConst{
		bytes:      append([]byte(s), 0),
		globalName: fmt.Sprintf("@.str.%d", len(e.stringConsts)),
	}
	e.stringConsts[s] = sc
	e.stringOrder = append(e.stringOrder, s)
	return sc
}

func (e *Emitter) emitStringConsts() {
	for _, key := range e.stringOrder {
		sc := e.stringConsts[key]
		fmt.Fprintf(&e.buf, "%s = private unnamed_addr constant [%d x i8] c\"%s\"\n",
			sc.globalName, len(sc.bytes), escapeBytes(sc.bytes))
	}
	if len(e.stringOrder) > 0 {
		e.buf.WriteString("\n")
	}
}

func escapeBytes(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 0x20 && b < 0x7f && b != '"' && b != '\\' {
			sb.WriteByte(b)
			continue
		}
		fmt.Fprintf(&sb, "\\%02X", b)
	}
	return sb.String()
}
