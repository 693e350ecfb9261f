package mir

import (
	"fmt"
	"io"
	"strings"

	"tml/internal/types"
)

// DumpModule writes a human-readable representation of a MIR module,
// for --dump-mir and test golden output.
func DumpModule(w io.Writer, m *Module, in *types.Interner) error {
	if w == nil || m == nil {
		return nil
	}
	for _, layout := range m.Structs {
		fields := make([]string, len(layout.Fields))
		for i, f := range layout.Fields {
			fields[i] = typeStr(in, f)
		}
		kind := "struct"
		if layout.Class {
			kind = "class"
		}
		fmt.Fprintf(w, "%s %s { %s }\n", kind, layout.Name, strings.Join(fields, ", "))
	}
	for _, layout := range m.Enums {
		fmt.Fprintf(w, "enum %s payload=%d\n", layout.Name, layout.MaxPayload)
	}
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := dumpFunc(w, f, in); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, in *types.Interner) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("v%d: %s", i, typeStr(in, p.Type))
	}
	if _, err := fmt.Fprintf(w, "fn %s(%s) -> %s {\n",
		f.Name, strings.Join(params, ", "), typeStr(in, f.Result)); err != nil {
		return err
	}
	for bi := range f.Blocks {
		b := &f.Blocks[bi]
		fmt.Fprintf(w, "%s.b%d:\n", b.Name, b.ID)
		for ii := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", instrStr(&b.Instrs[ii], in))
		}
		fmt.Fprintf(w, "  %s\n", termStr(&b.Term))
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func typeStr(in *types.Interner, id types.TypeID) string {
	if in == nil {
		return fmt.Sprintf("type#%d", id)
	}
	return in.String(id)
}

func instrStr(instr *Instr, in *types.Interner) string {
	dst := ""
	if instr.Result.IsValid() {
		dst = fmt.Sprintf("v%d: %s = ", instr.Result, typeStr(in, instr.Type))
	}
	switch instr.Kind {
	case InstrConst:
		return dst + constStr(&instr.Const)
	case InstrBinary:
		return fmt.Sprintf("%s%s v%d, v%d", dst, instr.Binary.Op, instr.Binary.LHS, instr.Binary.RHS)
	case InstrUnary:
		return fmt.Sprintf("%s%s v%d", dst, instr.Unary.Op, instr.Unary.Operand)
	case InstrLoad:
		return fmt.Sprintf("%sload v%d", dst, instr.Load.Addr)
	case InstrStore:
		return fmt.Sprintf("store v%d -> v%d", instr.Store.Value, instr.Store.Addr)
	case InstrAlloca:
		return dst + "alloca"
	case InstrGEP:
		parts := make([]string, len(instr.GEP.Indices))
		for i, idx := range instr.GEP.Indices {
			if idx.Const {
				parts[i] = fmt.Sprintf("%d", idx.Index)
			} else {
				parts[i] = fmt.Sprintf("v%d", idx.Value)
			}
		}
		return fmt.Sprintf("%sgep v%d [%s]", dst, instr.GEP.Base, strings.Join(parts, ", "))
	case InstrExtractValue:
		return fmt.Sprintf("%sextract v%d %v", dst, instr.Extract.Agg, instr.Extract.Indices)
	case InstrInsertValue:
		return fmt.Sprintf("%sinsert v%d <- v%d %v", dst, instr.Insert.Agg, instr.Insert.Value, instr.Insert.Indices)
	case InstrCall:
		return fmt.Sprintf("%scall %s(%s)", dst, instr.Call.Callee, valueList(instr.Call.Args))
	case InstrMethodCall:
		mode := "direct"
		if instr.MethodCall.Virtual {
			mode = fmt.Sprintf("virtual[%d]", instr.MethodCall.Slot)
		}
		return fmt.Sprintf("%smethodcall %s v%d.%s(%s)", dst, mode,
			instr.MethodCall.Receiver, instr.MethodCall.Method, valueList(instr.MethodCall.Args))
	case InstrClosureCall:
		return fmt.Sprintf("%sclosurecall v%d(%s)", dst, instr.ClosureCall.Closure, valueList(instr.ClosureCall.Args))
	case InstrCast:
		return fmt.Sprintf("%scast v%d from %s", dst, instr.Cast.Src, typeStr(in, instr.Cast.SrcType))
	case InstrPhi:
		parts := make([]string, len(instr.Phi.Incomings))
		for i, inc := range instr.Phi.Incomings {
			parts[i] = fmt.Sprintf("[v%d, b%d]", inc.Value, inc.Block)
		}
		return dst + "phi " + strings.Join(parts, ", ")
	case InstrSelect:
		return fmt.Sprintf("%sselect v%d ? v%d : v%d", dst, instr.Select.Cond, instr.Select.Then, instr.Select.Else)
	case InstrStructInit:
		return fmt.Sprintf("%sstruct %s(%s)", dst, instr.StructInit.TypeName, valueList(instr.StructInit.Fields))
	case InstrTupleInit:
		return fmt.Sprintf("%stuple(%s)", dst, valueList(instr.TupleInit.Elems))
	case InstrArrayInit:
		if instr.ArrayInit.Repeat {
			return fmt.Sprintf("%sarray repeat(%s)", dst, valueList(instr.ArrayInit.Elems))
		}
		return fmt.Sprintf("%sarray(%s)", dst, valueList(instr.ArrayInit.Elems))
	case InstrEnumInit:
		return fmt.Sprintf("%senum %s::%s tag=%d (%s)", dst,
			instr.EnumInit.EnumName, instr.EnumInit.Variant, instr.EnumInit.Tag, valueList(instr.EnumInit.Payload))
	case InstrAtomicLoad:
		return fmt.Sprintf("%satomic load v%d %s", dst, instr.AtomicLoad.Addr, instr.AtomicLoad.Ordering)
	case InstrAtomicStore:
		return fmt.Sprintf("atomic store v%d -> v%d %s", instr.AtomicStore.Value, instr.AtomicStore.Addr, instr.AtomicStore.Ordering)
	case InstrAtomicRMW:
		return fmt.Sprintf("%satomicrmw %s v%d, v%d %s", dst, instr.AtomicRMW.Op, instr.AtomicRMW.Addr, instr.AtomicRMW.Value, instr.AtomicRMW.Ordering)
	case InstrAtomicCmpXchg:
		return fmt.Sprintf("%scmpxchg v%d, v%d, v%d %s %s", dst,
			instr.CmpXchg.Addr, instr.CmpXchg.Expected, instr.CmpXchg.New, instr.CmpXchg.Success, instr.CmpXchg.Failure)
	case InstrFence:
		return "fence " + instr.Fence.Ordering.String()
	}
	return dst + "?"
}

func constStr(c *ConstInstr) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("const %d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("const %g", c.Float)
	case ConstBool:
		return fmt.Sprintf("const %t", c.Bool)
	case ConstStr:
		return fmt.Sprintf("const %q", c.Str)
	case ConstNull:
		return "const null"
	case ConstUnit:
		return "const unit"
	}
	return "const ?"
}

func valueList(vals []ValueID) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return strings.Join(parts, ", ")
}

func termStr(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.HasValue {
			return fmt.Sprintf("return v%d", t.Return.Value)
		}
		return "return"
	case TermBr:
		return fmt.Sprintf("br b%d", t.Br.Target)
	case TermCondBr:
		return fmt.Sprintf("br v%d ? b%d : b%d", t.CondBr.Cond, t.CondBr.Then, t.CondBr.Else)
	case TermSwitch:
		parts := make([]string, len(t.Switch.Cases))
		for i, cs := range t.Switch.Cases {
			parts[i] = fmt.Sprintf("%d -> b%d", cs.Value, cs.Target)
		}
		return fmt.Sprintf("switch v%d [%s] default b%d", t.Switch.Value, strings.Join(parts, ", "), t.Switch.Default)
	case TermUnreachable:
		return "unreachable"
	}
	return "<no terminator>"
}
