package llvm

import (
	"strings"
	"testing"

	"tml/internal/mir"
	"tml/internal/types"
)

func emitOne(t *testing.T, in *types.Interner, f *mir.Func, extra ...func(*mir.Module)) string {
	t.Helper()
	mod := &mir.Module{Name: "test", Funcs: []*mir.Func{f}}
	for _, fn := range extra {
		fn(mod)
	}
	out, err := EmitModule(mod, in)
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	return out
}

func TestEmitAddFunction(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	f := mir.NewFunc("add2", []mir.Param{{Name: "a", Type: i64}, {Name: "b", Type: i64}}, i64)
	sum := f.Append(f.Entry, mir.Instr{
		Kind: mir.InstrBinary, Type: i64,
		Binary: mir.BinaryInstr{Op: mir.BinAdd, LHS: f.ParamValue(0), RHS: f.ParamValue(1)},
	})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: sum}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "define i64 @add2(i64 %p0, i64 %p1)") {
		t.Fatalf("missing function header:\n%s", out)
	}
	if !strings.Contains(out, "= add i64 %p0, %p1") {
		t.Errorf("missing add instruction:\n%s", out)
	}
	if !strings.Contains(out, "ret i64 %t1") {
		t.Errorf("missing return:\n%s", out)
	}
	if !strings.Contains(out, "inlinehint") {
		t.Errorf("small function should carry inlinehint:\n%s", out)
	}
}

func TestEmitConstantsFoldIntoOperands(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	f := mir.NewFunc("forty_two", nil, i64)
	a := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: i64, Const: mir.ConstInstr{Kind: mir.ConstInt, Int: 40}})
	b := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: i64, Const: mir.ConstInstr{Kind: mir.ConstInt, Int: 2}})
	sum := f.Append(f.Entry, mir.Instr{Kind: mir.InstrBinary, Type: i64, Binary: mir.BinaryInstr{Op: mir.BinAdd, LHS: a, RHS: b}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: sum}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "= add i64 40, 2") {
		t.Fatalf("constants should appear as immediate operands:\n%s", out)
	}
}

func TestEmitStringConcat(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().Str
	f := mir.NewFunc("greet", nil, str)
	a := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: str, Const: mir.ConstInstr{Kind: mir.ConstStr, Str: "hi "}})
	b := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: str, Const: mir.ConstInstr{Kind: mir.ConstStr, Str: "there"}})
	cat := f.Append(f.Entry, mir.Instr{Kind: mir.InstrBinary, Type: str, Binary: mir.BinaryInstr{Op: mir.BinAdd, LHS: a, RHS: b}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: cat}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "call ptr @str_concat_opt(ptr @.str.0, ptr @.str.1)") {
		t.Fatalf("string + should lower to the concat runtime call:\n%s", out)
	}
	if !strings.Contains(out, `c"hi \00"`) {
		t.Errorf("string constants should be NUL-terminated globals:\n%s", out)
	}
}

func TestEmitComparisonYieldsBool(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := mir.NewFunc("lt", []mir.Param{{Name: "a", Type: b.U32}, {Name: "b", Type: b.U32}}, b.Bool)
	cmp := f.Append(f.Entry, mir.Instr{Kind: mir.InstrBinary, Type: b.Bool, Binary: mir.BinaryInstr{Op: mir.BinLt, LHS: f.ParamValue(0), RHS: f.ParamValue(1)}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: cmp}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "icmp ult i32") {
		t.Fatalf("unsigned comparison should use ult:\n%s", out)
	}
	if !strings.Contains(out, "ret i1") {
		t.Errorf("comparison result should be i1:\n%s", out)
	}
}

func TestEmitBulkZeroArray(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	arr := in.Intern(types.Type{Kind: types.KindArray, Elem: i64, Count: 1000})
	f := mir.NewFunc("zeros", nil, arr)
	zero := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: i64, Const: mir.ConstInstr{Kind: mir.ConstInt, Int: 0}})
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrArrayInit, Type: arr, ArrayInit: mir.ArrayInitInstr{Elems: []mir.ValueID{zero}, Repeat: true}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "store [1000 x i64] zeroinitializer") {
		t.Fatalf("large zero repeat should collapse to one bulk store:\n%s", out)
	}
	if strings.Contains(out, "getelementptr inbounds [1000 x i64]") {
		t.Errorf("bulk zero fill must not write per element:\n%s", out)
	}
}

func TestEmitBulkZeroArraySmallCount(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	arr := in.Intern(types.Type{Kind: types.KindArray, Elem: i64, Count: 50})
	f := mir.NewFunc("zeros50", nil, arr)
	zero := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: i64, Const: mir.ConstInstr{Kind: mir.ConstInt, Int: 0}})
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrArrayInit, Type: arr, ArrayInit: mir.ArrayInitInstr{Elems: []mir.ValueID{zero}, Repeat: true}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "store [50 x i64] zeroinitializer") {
		t.Fatalf("zero repeats bulk-zero at any length:\n%s", out)
	}
	if strings.Contains(out, "getelementptr inbounds [50 x i64]") {
		t.Errorf("small zero repeat must not write per element:\n%s", out)
	}
}

func TestEmitNonZeroRepeatWritesEveryElement(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	arr := in.Intern(types.Type{Kind: types.KindArray, Elem: i64, Count: 3})
	f := mir.NewFunc("sevens", nil, arr)
	seven := f.Append(f.Entry, mir.Instr{Kind: mir.InstrConst, Type: i64, Const: mir.ConstInstr{Kind: mir.ConstInt, Int: 7}})
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrArrayInit, Type: arr, ArrayInit: mir.ArrayInitInstr{Elems: []mir.ValueID{seven}, Repeat: true}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if strings.Contains(out, "zeroinitializer") {
		t.Fatalf("non-zero repeat must not zero-fill:\n%s", out)
	}
	if got := strings.Count(out, "store i64 7,"); got != 3 {
		t.Errorf("store count = %d, want one per element:\n%s", got, out)
	}
}

func TestEmitSmallArrayStoresElements(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().I32
	arr := in.Intern(types.Type{Kind: types.KindArray, Elem: i32, Count: 3})
	f := mir.NewFunc("triple", []mir.Param{{Name: "x", Type: i32}}, arr)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrArrayInit, Type: arr, ArrayInit: mir.ArrayInitInstr{
		Elems: []mir.ValueID{f.ParamValue(0), f.ParamValue(0), f.ParamValue(0)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if got := strings.Count(out, "store i32 %p0"); got != 3 {
		t.Fatalf("expected 3 element stores, got %d:\n%s", got, out)
	}
}

func TestEmitSretReturn(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	tup := in.RegisterTuple([]types.TypeID{i64, i64, i64})
	f := mir.NewFunc("make3", []mir.Param{{Name: "x", Type: i64}}, tup)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrTupleInit, Type: tup, TupleInit: mir.TupleInitInstr{
		Elems: []mir.ValueID{f.ParamValue(0), f.ParamValue(0), f.ParamValue(0)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "define void @make3(ptr sret({ i64, i64, i64 }) %sret, i64 %p0)") {
		t.Fatalf("aggregate over 16 bytes should return through sret:\n%s", out)
	}
	if !strings.Contains(out, "store { i64, i64, i64 } %t5, ptr %sret") {
		t.Errorf("return should store through the output slot:\n%s", out)
	}
}

func TestEmitCastFloatToSigned(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := mir.NewFunc("to_int", []mir.Param{{Name: "x", Type: b.F64}}, b.I32)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrCast, Type: b.I32, Cast: mir.CastInstr{Src: f.ParamValue(0), SrcType: b.F64}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "fptosi double %p0 to i32") {
		t.Fatalf("float to signed int should use fptosi:\n%s", out)
	}
}

func TestEmitVirtualMethodCall(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	shape := in.RegisterClass("Shape", nil)
	f := mir.NewFunc("area_of", []mir.Param{{Name: "s", Type: shape}}, i64)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrMethodCall, Type: i64, MethodCall: mir.MethodCallInstr{
		Receiver: f.ParamValue(0), Class: "Shape", Method: "area", Virtual: true, Slot: 2,
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f, func(m *mir.Module) {
		m.Structs = append(m.Structs, mir.StructLayout{Name: "Shape", Class: true})
	})
	if !strings.Contains(out, "= load ptr, ptr %p0") {
		t.Fatalf("virtual call should load the dispatch table:\n%s", out)
	}
	if !strings.Contains(out, "getelementptr inbounds ptr, ptr %t1, i64 2") {
		t.Errorf("virtual call should index slot 2:\n%s", out)
	}
	if !strings.Contains(out, "= call i64 %t3(ptr %p0)") {
		t.Errorf("virtual call should call through the loaded pointer:\n%s", out)
	}
	if !strings.Contains(out, "@vt.Shape = external global ptr") {
		t.Errorf("class should declare its dispatch table:\n%s", out)
	}
}

func TestEmitClosureCall(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	clo := in.RegisterClosure([]types.TypeID{i64}, i64, nil)
	f := mir.NewFunc("apply", []mir.Param{{Name: "f", Type: clo}, {Name: "x", Type: i64}}, i64)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrClosureCall, Type: i64, ClosureCall: mir.ClosureCallInstr{
		Closure: f.ParamValue(0), Args: []mir.ValueID{f.ParamValue(1)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "extractvalue { ptr, ptr } %p0, 0") || !strings.Contains(out, "extractvalue { ptr, ptr } %p0, 1") {
		t.Fatalf("closure call should unpack code and environment pointers:\n%s", out)
	}
	if !strings.Contains(out, "= call i64 %t1(ptr %t2, i64 %p1)") {
		t.Errorf("closure call should pass the environment first:\n%s", out)
	}
}

func TestEmitInlineCmp(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	ord := in.RegisterNamed("Ordering", "", nil)
	f := mir.NewFunc("order", []mir.Param{{Name: "a", Type: i64}, {Name: "b", Type: i64}}, ord)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrMethodCall, Type: ord, MethodCall: mir.MethodCallInstr{
		Receiver: f.ParamValue(0), Method: "cmp", Args: []mir.ValueID{f.ParamValue(1)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f, func(m *mir.Module) {
		m.Enums = append(m.Enums, mir.EnumLayout{Name: "Ordering"})
	})
	if strings.Contains(out, "call") && strings.Contains(out, "@cmp") {
		t.Fatalf("cmp on integers should be inlined, not called:\n%s", out)
	}
	if !strings.Contains(out, "icmp slt i64 %p0, %p1") || !strings.Contains(out, "icmp eq i64 %p0, %p1") {
		t.Errorf("inline cmp should use two comparisons:\n%s", out)
	}
	if !strings.Contains(out, "select i1 %t1, i32 0, i32 2") || !strings.Contains(out, "select i1 %t2, i32 1, i32 %t3") {
		t.Errorf("inline cmp should pick the discriminant branchlessly:\n%s", out)
	}
	if !strings.Contains(out, "insertvalue %struct.Ordering undef, i32 %t4, 0") {
		t.Errorf("inline cmp should wrap the discriminant:\n%s", out)
	}
}

func TestEmitInlinePartialCmpFloat(t *testing.T) {
	in := types.NewInterner()
	f64 := in.Builtins().F64
	maybe := in.RegisterNamed("Maybe_Ordering", "", nil)
	f := mir.NewFunc("porder", []mir.Param{{Name: "a", Type: f64}, {Name: "b", Type: f64}}, maybe)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrMethodCall, Type: maybe, MethodCall: mir.MethodCallInstr{
		Receiver: f.ParamValue(0), Method: "partial_cmp", Args: []mir.ValueID{f.ParamValue(1)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f, func(m *mir.Module) {
		m.Enums = append(m.Enums, mir.EnumLayout{Name: "Maybe_Ordering", MaxPayload: 4})
	})
	if !strings.Contains(out, "fcmp ord double %p0, %p1") {
		t.Fatalf("float partial_cmp should test orderedness:\n%s", out)
	}
	if !strings.Contains(out, "select i1 %t5, i32 0, i32 1") {
		t.Errorf("unordered operands should select the absent tag:\n%s", out)
	}
	if !strings.Contains(out, "alloca %struct.Maybe_Ordering") {
		t.Errorf("partial_cmp should build the optional through a slot:\n%s", out)
	}
}

func TestEmitAtomicDefaultsToSeqCst(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ptr := in.Intern(types.Type{Kind: types.KindPtr, Elem: b.I64})
	f := mir.NewFunc("bump", []mir.Param{{Name: "p", Type: ptr}, {Name: "v", Type: b.I64}}, b.I64)
	old := f.Append(f.Entry, mir.Instr{Kind: mir.InstrAtomicRMW, Type: b.I64, AtomicRMW: mir.AtomicRMWInstr{
		Op: mir.RMWAdd, Addr: f.ParamValue(0), Value: f.ParamValue(1), Ordering: mir.OrderingNone,
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: old}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "atomicrmw add ptr %p0, i64 %p1 seq_cst") {
		t.Fatalf("unset ordering should harden to seq_cst:\n%s", out)
	}
}

func TestEmitCmpXchg(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ptr := in.Intern(types.Type{Kind: types.KindPtr, Elem: b.I32})
	f := mir.NewFunc("cas", []mir.Param{{Name: "p", Type: ptr}, {Name: "old", Type: b.I32}, {Name: "new", Type: b.I32}}, b.I32)
	got := f.Append(f.Entry, mir.Instr{Kind: mir.InstrAtomicCmpXchg, Type: b.I32, CmpXchg: mir.AtomicCmpXchgInstr{
		Addr: f.ParamValue(0), Expected: f.ParamValue(1), New: f.ParamValue(2),
		Success: mir.OrderingAcqRel, Failure: mir.OrderingAcqRel,
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: got}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "cmpxchg ptr %p0, i32 %p1, i32 %p2 acq_rel seq_cst") {
		t.Fatalf("failure ordering must drop release semantics:\n%s", out)
	}
	if !strings.Contains(out, "extractvalue { i32, i1 } %t1, 0") {
		t.Errorf("result should be the loaded old value:\n%s", out)
	}
}

func TestEmitBranchesAndSwitch(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := mir.NewFunc("pick", []mir.Param{{Name: "c", Type: b.Bool}, {Name: "n", Type: b.I32}}, b.I32)
	thenB := f.AddBlock("then")
	elseB := f.AddBlock("else")
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermCondBr, CondBr: mir.CondBrTerm{Cond: f.ParamValue(0), Then: thenB, Else: elseB}})
	f.Terminate(thenB, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: f.ParamValue(1)}})
	f.Terminate(elseB, mir.Terminator{Kind: mir.TermSwitch, Switch: mir.SwitchTerm{
		Value:   f.ParamValue(1),
		Cases:   []mir.SwitchCase{{Value: 0, Target: thenB}},
		Default: mir.NoBlockID,
	}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "br i1 %p0, label %bb1, label %bb2") {
		t.Fatalf("missing conditional branch:\n%s", out)
	}
	// The default target was never assigned; it must fall back to the
	// first returning block instead of naming a missing label.
	if !strings.Contains(out, "switch i32 %p1, label %bb1 [ i32 0, label %bb1 ]") {
		t.Errorf("switch should use the fallback label for missing targets:\n%s", out)
	}
}

func TestEmitStructInitValueAndClass(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	ptTy := in.RegisterNamed("Point", "", nil)
	f := mir.NewFunc("mk", []mir.Param{{Name: "x", Type: i64}, {Name: "y", Type: i64}}, ptTy)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrStructInit, Type: ptTy, StructInit: mir.StructInitInstr{
		TypeName: "Point", Fields: []mir.ValueID{f.ParamValue(0), f.ParamValue(1)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f, func(m *mir.Module) {
		m.Structs = append(m.Structs, mir.StructLayout{Name: "Point", Fields: []types.TypeID{i64, i64}})
	})
	if !strings.Contains(out, "insertvalue %struct.Point undef, i64 %p0, 0") {
		t.Fatalf("value struct should build through an insert chain:\n%s", out)
	}
	if !strings.Contains(out, "insertvalue %struct.Point %t1, i64 %p1, 1") {
		t.Errorf("insert chain should thread the previous value:\n%s", out)
	}
	if !strings.Contains(out, "%struct.Point = type { i64, i64 }") {
		t.Errorf("missing struct type definition:\n%s", out)
	}
}

func TestEmitStructToStructCast(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	pair := in.RegisterNamed("Pair", "", nil)
	twin := in.RegisterNamed("Twin", "", nil)
	f := mir.NewFunc("rewrap", []mir.Param{{Name: "p", Type: pair}}, twin)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrCast, Type: twin, Cast: mir.CastInstr{
		Src: f.ParamValue(0), SrcType: pair,
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f, func(m *mir.Module) {
		m.Structs = append(m.Structs,
			mir.StructLayout{Name: "Pair", Fields: []types.TypeID{i64, i64}},
			mir.StructLayout{Name: "Twin", Fields: []types.TypeID{i64, i64}},
		)
	})
	if !strings.Contains(out, "= alloca %struct.Pair") {
		t.Fatalf("struct cast should spill the source:\n%s", out)
	}
	if !strings.Contains(out, "store %struct.Pair %p0, ptr %t1") {
		t.Errorf("missing spill store:\n%s", out)
	}
	if !strings.Contains(out, "%t2 = load %struct.Twin, ptr %t1") {
		t.Errorf("result should load back under the target type:\n%s", out)
	}
	if !strings.Contains(out, "ret %struct.Twin %t2") {
		t.Errorf("cast result should flow to the return:\n%s", out)
	}
}

func TestEmitEnumInit(t *testing.T) {
	in := types.NewInterner()
	i64 := in.Builtins().I64
	maybe := in.RegisterNamed("Maybe", "", []types.TypeID{i64})
	f := mir.NewFunc("just", []mir.Param{{Name: "x", Type: i64}}, maybe)
	v := f.Append(f.Entry, mir.Instr{Kind: mir.InstrEnumInit, Type: maybe, EnumInit: mir.EnumInitInstr{
		EnumName: "Maybe", TypeArgs: []types.TypeID{i64}, Variant: "Just", Tag: 0,
		Payload: []mir.ValueID{f.ParamValue(0)},
	}})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: v}})

	out := emitOne(t, in, f, func(m *mir.Module) {
		m.Enums = append(m.Enums, mir.EnumLayout{Name: "Maybe_I64", MaxPayload: 8})
	})
	if !strings.Contains(out, "%struct.Maybe_I64 = type { i32, [8 x i8] }") {
		t.Fatalf("enum layout should be tag plus payload region:\n%s", out)
	}
	if !strings.Contains(out, "store i32 0, ptr %t2") {
		t.Errorf("missing tag store:\n%s", out)
	}
	if !strings.Contains(out, "store i64 %p0, ptr %t3") {
		t.Errorf("missing payload store:\n%s", out)
	}
}

func TestEmitMathIntrinsic(t *testing.T) {
	in := types.NewInterner()
	f64 := in.Builtins().F64
	f := mir.NewFunc("hyp", []mir.Param{{Name: "x", Type: f64}}, f64)
	r := f.Append(f.Entry, mir.Instr{
		Kind: mir.InstrCall, Type: f64,
		Call: mir.CallInstr{Callee: "sqrt", Args: []mir.ValueID{f.ParamValue(0)}},
	})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: r}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "declare double @llvm.sqrt.f64(double)") {
		t.Fatalf("missing intrinsic declaration:\n%s", out)
	}
	if !strings.Contains(out, "= call double @llvm.sqrt.f64(double %p0)") {
		t.Errorf("sqrt should lower to the intrinsic:\n%s", out)
	}
}

func TestEmitMathIntrinsicF32(t *testing.T) {
	in := types.NewInterner()
	f32 := in.Builtins().F32
	f := mir.NewFunc("powf", []mir.Param{{Name: "x", Type: f32}, {Name: "y", Type: f32}}, f32)
	r := f.Append(f.Entry, mir.Instr{
		Kind: mir.InstrCall, Type: f32,
		Call: mir.CallInstr{Callee: "pow", Args: []mir.ValueID{f.ParamValue(0), f.ParamValue(1)}},
	})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: r}})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "declare float @llvm.pow.f32(float, float)") {
		t.Fatalf("missing f32 intrinsic declaration:\n%s", out)
	}
	if !strings.Contains(out, "@llvm.pow.f32(float %p0, float %p1)") {
		t.Errorf("pow should lower to the f32 overload:\n%s", out)
	}
}

func TestEmitDropCallsSkipped(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := mir.NewFunc("user", []mir.Param{{Name: "p", Type: b.I64}}, b.Unit)
	f.Append(f.Entry, mir.Instr{
		Kind: mir.InstrCall, Type: b.Unit,
		Call: mir.CallInstr{Callee: "drop_Point", Args: []mir.ValueID{f.ParamValue(0)}},
	})
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn})

	out := emitOne(t, in, f)
	if strings.Contains(out, "drop_Point") {
		t.Fatalf("drop_ calls should not be emitted:\n%s", out)
	}
}

func TestEmitDropFunctionAlwaysInline(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := mir.NewFunc("drop_Point", []mir.Param{{Name: "p", Type: b.I64}}, b.Unit)
	f.Terminate(f.Entry, mir.Terminator{Kind: mir.TermReturn})

	out := emitOne(t, in, f)
	if !strings.Contains(out, "define void @drop_Point(i64 %p0) alwaysinline {") {
		t.Fatalf("drop_ definitions should carry alwaysinline:\n%s", out)
	}
}
