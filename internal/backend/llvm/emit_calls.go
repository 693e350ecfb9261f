package llvm

import (
	"fmt"
	"strings"

	"tml/internal/mir"
	"tml/internal/types"
)

// renderArgs turns value ids into "type value" operand text.
func (fe *funcEmitter) renderArgs(ids []mir.ValueID) ([]string, error) {
	in := fe.in()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		ty, err := llvmValueType(in, fe.typeOf(id))
		if err != nil {
			return nil, err
		}
		out = append(out, ty+" "+fe.value(id))
	}
	return out, nil
}

// callTo emits a call to the given callee operand. Aggregate results
// over two pointer widths go through a caller-allocated output slot.
func (fe *funcEmitter) callTo(instr *mir.Instr, callee string, args []string) error {
	in := fe.in()
	if needsSret(in, instr.Type) {
		retTy, err := llvmValueType(in, instr.Type)
		if err != nil {
			return err
		}
		slot := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, retTy)
		all := append([]string{fmt.Sprintf("ptr sret(%s) %s", retTy, slot)}, args...)
		fmt.Fprintf(fe.buf(), "  call void %s(%s)\n", callee, strings.Join(all, ", "))
		tmp := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, retTy, slot)
		fe.bind(instr.Result, tmp, instr.Type)
		return nil
	}

	retTy, err := llvmType(in, instr.Type)
	if err != nil {
		return err
	}
	if retTy == "void" {
		fmt.Fprintf(fe.buf(), "  call void %s(%s)\n", callee, strings.Join(args, ", "))
		return nil
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = call %s %s(%s)\n", tmp, retTy, callee, strings.Join(args, ", "))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitCall(instr *mir.Instr) error {
	// Destructor calls are no-ops at this stage; the bodies exist for
	// the optimizer to inline where ownership analysis demands.
	if strings.HasPrefix(instr.Call.Callee, "drop_") {
		return nil
	}
	args, err := fe.renderArgs(instr.Call.Args)
	if err != nil {
		return err
	}
	callee := "@" + instr.Call.Callee
	if name, ok := intrinsicCallee(fe.in(), instr.Call.Callee, instr.Type); ok {
		callee = "@" + name
	}
	return fe.callTo(instr, callee, args)
}

func (fe *funcEmitter) emitMethodCall(instr *mir.Instr) error {
	m := &instr.MethodCall

	// Numeric ordering comparisons are inlined branchless rather than
	// called through the runtime.
	if recvTy := fe.typeOf(m.Receiver); len(m.Args) == 1 && fe.isOrderedScalar(recvTy) {
		switch m.Method {
		case "cmp":
			return fe.emitInlineCmp(instr)
		case "partial_cmp":
			return fe.emitInlinePartialCmp(instr)
		}
	}

	recvArg, err := fe.renderArgs([]mir.ValueID{m.Receiver})
	if err != nil {
		return err
	}
	args, err := fe.renderArgs(m.Args)
	if err != nil {
		return err
	}
	all := append(recvArg, args...)

	if !m.Virtual {
		return fe.callTo(instr, "@"+m.Callee, all)
	}

	// Virtual dispatch: the table pointer sits in the object's leading
	// slot; index it to the method's entry.
	vt := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load ptr, ptr %s\n", vt, fe.value(m.Receiver))
	entry := vt
	if m.Slot > 0 {
		entry = fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds ptr, ptr %s, i64 %d\n", entry, vt, m.Slot)
	}
	fn := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load ptr, ptr %s\n", fn, entry)
	return fe.callTo(instr, fn, all)
}

func (fe *funcEmitter) emitClosureCall(instr *mir.Instr) error {
	cl := &instr.ClosureCall
	code := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = extractvalue { ptr, ptr } %s, 0\n", code, fe.value(cl.Closure))
	env := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = extractvalue { ptr, ptr } %s, 1\n", env, fe.value(cl.Closure))
	args, err := fe.renderArgs(cl.Args)
	if err != nil {
		return err
	}
	all := append([]string{"ptr " + env}, args...)
	return fe.callTo(instr, code, all)
}

func (fe *funcEmitter) isOrderedScalar(id types.TypeID) bool {
	in := fe.in()
	switch in.Kind(in.Resolve(id)) {
	case types.KindInt, types.KindUint, types.KindFloat, types.KindChar:
		return true
	}
	return false
}

// cmpDiscriminant computes the three-way ordering discriminant of two
// scalars without branching: less is 0, equal is 1, greater is 2.
func (fe *funcEmitter) cmpDiscriminant(recv, arg mir.ValueID) (string, error) {
	in := fe.in()
	recvTy := fe.typeOf(recv)
	opTy, err := llvmType(in, recvTy)
	if err != nil {
		return "", err
	}
	lhs := fe.value(recv)
	rhs := fe.coerce(arg, recvTy)

	lt := fe.nextTemp()
	eq := fe.nextTemp()
	if in.IsFloat(recvTy) {
		fmt.Fprintf(fe.buf(), "  %s = fcmp olt %s %s, %s\n", lt, opTy, lhs, rhs)
		fmt.Fprintf(fe.buf(), "  %s = fcmp oeq %s %s, %s\n", eq, opTy, lhs, rhs)
	} else {
		pred := "ult"
		if in.IsSigned(recvTy) {
			pred = "slt"
		}
		fmt.Fprintf(fe.buf(), "  %s = icmp %s %s %s, %s\n", lt, pred, opTy, lhs, rhs)
		fmt.Fprintf(fe.buf(), "  %s = icmp eq %s %s, %s\n", eq, opTy, lhs, rhs)
	}
	ltOrGt := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = select i1 %s, i32 0, i32 2\n", ltOrGt, lt)
	disc := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = select i1 %s, i32 1, i32 %s\n", disc, eq, ltOrGt)
	return disc, nil
}

func (fe *funcEmitter) emitInlineCmp(instr *mir.Instr) error {
	m := &instr.MethodCall
	disc, err := fe.cmpDiscriminant(m.Receiver, m.Args[0])
	if err != nil {
		return err
	}
	ordTy, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = insertvalue %s undef, i32 %s, 0\n", tmp, ordTy, disc)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

// emitInlinePartialCmp wraps the ordering into the optional result: tag 0
// carries a defined ordering, tag 1 marks the unordered case (NaN
// operands on floats; integers are always ordered).
func (fe *funcEmitter) emitInlinePartialCmp(instr *mir.Instr) error {
	in := fe.in()
	m := &instr.MethodCall
	disc, err := fe.cmpDiscriminant(m.Receiver, m.Args[0])
	if err != nil {
		return err
	}

	recvTy := fe.typeOf(m.Receiver)
	tag := "0"
	if in.IsFloat(recvTy) {
		opTy, err := llvmType(in, recvTy)
		if err != nil {
			return err
		}
		ord := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = fcmp ord %s %s, %s\n", ord, opTy, fe.value(m.Receiver), fe.coerce(m.Args[0], recvTy))
		tagReg := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = select i1 %s, i32 0, i32 1\n", tagReg, ord)
		tag = tagReg
	}

	maybeTy, err := llvmValueType(in, instr.Type)
	if err != nil {
		return err
	}
	slot := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, maybeTy)
	tagPtr := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 0\n", tagPtr, maybeTy, slot)
	fmt.Fprintf(fe.buf(), "  store i32 %s, ptr %s\n", tag, tagPtr)
	payloadPtr := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 1\n", payloadPtr, maybeTy, slot)
	fmt.Fprintf(fe.buf(), "  store i32 %s, ptr %s\n", disc, payloadPtr)
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, maybeTy, slot)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}
