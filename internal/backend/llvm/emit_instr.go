package llvm

import (
	"fmt"
	"strconv"
	"strings"

	"tml/internal/mir"
	"tml/internal/types"
)

func (fe *funcEmitter) emitInstr(instr *mir.Instr) error {
	switch instr.Kind {
	case mir.InstrConst:
		return fe.emitConst(instr)
	case mir.InstrBinary:
		return fe.emitBinary(instr)
	case mir.InstrUnary:
		return fe.emitUnary(instr)
	case mir.InstrLoad:
		return fe.emitLoad(instr)
	case mir.InstrStore:
		return fe.emitStore(instr)
	case mir.InstrAlloca:
		return fe.emitAlloca(instr)
	case mir.InstrGEP:
		return fe.emitGEP(instr)
	case mir.InstrExtractValue:
		return fe.emitExtractValue(instr)
	case mir.InstrInsertValue:
		return fe.emitInsertValue(instr)
	case mir.InstrCall:
		return fe.emitCall(instr)
	case mir.InstrMethodCall:
		return fe.emitMethodCall(instr)
	case mir.InstrClosureCall:
		return fe.emitClosureCall(instr)
	case mir.InstrCast:
		return fe.emitCast(instr)
	case mir.InstrPhi:
		return fe.emitPhi(instr)
	case mir.InstrSelect:
		return fe.emitSelect(instr)
	case mir.InstrStructInit:
		return fe.emitStructInit(instr)
	case mir.InstrTupleInit:
		return fe.emitTupleInit(instr)
	case mir.InstrArrayInit:
		return fe.emitArrayInit(instr)
	case mir.InstrEnumInit:
		return fe.emitEnumInit(instr)
	case mir.InstrAtomicLoad:
		return fe.emitAtomicLoad(instr)
	case mir.InstrAtomicStore:
		return fe.emitAtomicStore(instr)
	case mir.InstrAtomicRMW:
		return fe.emitAtomicRMW(instr)
	case mir.InstrAtomicCmpXchg:
		return fe.emitCmpXchg(instr)
	case mir.InstrFence:
		fmt.Fprintf(fe.buf(), "  fence %s\n", instr.Fence.Ordering)
		return nil
	}
	return fmt.Errorf("unsupported instruction kind %d", instr.Kind)
}

// emitConst folds the literal straight into later operands; only string
// constants produce an instruction-less global reference.
func (fe *funcEmitter) emitConst(instr *mir.Instr) error {
	c := &instr.Const
	switch c.Kind {
	case mir.ConstInt:
		fe.bind(instr.Result, strconv.FormatInt(c.Int, 10), instr.Type)
		fe.intConsts[instr.Result] = c.Int
	case mir.ConstFloat:
		fe.bind(instr.Result, formatFloat(c.Float), instr.Type)
	case mir.ConstBool:
		text := "false"
		if c.Bool {
			text = "true"
		}
		fe.bind(instr.Result, text, instr.Type)
	case mir.ConstStr:
		sc := fe.emitter.internString(c.Str)
		fe.bind(instr.Result, sc.globalName, instr.Type)
	case mir.ConstNull:
		fe.bind(instr.Result, "null", instr.Type)
	case mir.ConstUnit:
		// Unit carries no data.
	}
	return nil
}

func (fe *funcEmitter) emitBinary(instr *mir.Instr) error {
	in := fe.in()
	b := &instr.Binary
	lhsTy := fe.typeOf(b.LHS)
	lhs := fe.value(b.LHS)
	rhs := fe.coerce(b.RHS, lhsTy)

	// String concatenation goes through the runtime.
	if b.Op == mir.BinAdd && in.Kind(in.Resolve(lhsTy)) == types.KindStr {
		tmp := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = call ptr @str_concat_opt(ptr %s, ptr %s)\n", tmp, lhs, rhs)
		fe.bind(instr.Result, tmp, instr.Type)
		return nil
	}

	opTy, err := llvmType(in, lhsTy)
	if err != nil {
		return err
	}
	if b.Op.IsComparison() {
		tmp := fe.nextTemp()
		if in.IsFloat(lhsTy) {
			fmt.Fprintf(fe.buf(), "  %s = fcmp %s %s %s, %s\n", tmp, fcmpPred(b.Op), opTy, lhs, rhs)
		} else {
			fmt.Fprintf(fe.buf(), "  %s = icmp %s %s %s, %s\n", tmp, icmpPred(b.Op, in.IsSigned(lhsTy)), opTy, lhs, rhs)
		}
		fe.bind(instr.Result, tmp, instr.Type)
		return nil
	}

	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = %s %s %s, %s\n", tmp, arithOp(b.Op, in, lhsTy), opTy, lhs, rhs)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func arithOp(op mir.BinOp, in *types.Interner, operand types.TypeID) string {
	float := in.IsFloat(operand)
	signed := in.IsSigned(operand)
	switch op {
	case mir.BinAdd:
		if float {
			return "fadd"
		}
		return "add"
	case mir.BinSub:
		if float {
			return "fsub"
		}
		return "sub"
	case mir.BinMul:
		if float {
			return "fmul"
		}
		return "mul"
	case mir.BinDiv:
		if float {
			return "fdiv"
		}
		if signed {
			return "sdiv"
		}
		return "udiv"
	case mir.BinRem:
		if float {
			return "frem"
		}
		if signed {
			return "srem"
		}
		return "urem"
	case mir.BinAnd:
		return "and"
	case mir.BinOr:
		return "or"
	case mir.BinXor:
		return "xor"
	case mir.BinShl:
		return "shl"
	case mir.BinShr:
		if signed {
			return "ashr"
		}
		return "lshr"
	}
	return "add"
}

func icmpPred(op mir.BinOp, signed bool) string {
	switch op {
	case mir.BinEq:
		return "eq"
	case mir.BinNe:
		return "ne"
	case mir.BinLt:
		if signed {
			return "slt"
		}
		return "ult"
	case mir.BinLe:
		if signed {
			return "sle"
		}
		return "ule"
	case mir.BinGt:
		if signed {
			return "sgt"
		}
		return "ugt"
	case mir.BinGe:
		if signed {
			return "sge"
		}
		return "uge"
	}
	return "eq"
}

func fcmpPred(op mir.BinOp) string {
	switch op {
	case mir.BinEq:
		return "oeq"
	case mir.BinNe:
		return "une"
	case mir.BinLt:
		return "olt"
	case mir.BinLe:
		return "ole"
	case mir.BinGt:
		return "ogt"
	case mir.BinGe:
		return "oge"
	}
	return "oeq"
}

func (fe *funcEmitter) emitUnary(instr *mir.Instr) error {
	in := fe.in()
	operandTy := fe.typeOf(instr.Unary.Operand)
	operand := fe.value(instr.Unary.Operand)
	opTy, err := llvmType(in, operandTy)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	switch instr.Unary.Op {
	case mir.UnNeg:
		if in.IsFloat(operandTy) {
			fmt.Fprintf(fe.buf(), "  %s = fneg %s %s\n", tmp, opTy, operand)
		} else {
			fmt.Fprintf(fe.buf(), "  %s = sub %s 0, %s\n", tmp, opTy, operand)
		}
	case mir.UnNot:
		fmt.Fprintf(fe.buf(), "  %s = xor i1 %s, true\n", tmp, operand)
	case mir.UnBitNot:
		fmt.Fprintf(fe.buf(), "  %s = xor %s %s, -1\n", tmp, opTy, operand)
	}
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitLoad(instr *mir.Instr) error {
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, ty, fe.value(instr.Load.Addr))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitStore(instr *mir.Instr) error {
	valTy := fe.typeOf(instr.Store.Value)
	ty, err := llvmValueType(fe.in(), valTy)
	if err != nil {
		return err
	}
	fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", ty, fe.value(instr.Store.Value), fe.value(instr.Store.Addr))
	return nil
}

func (fe *funcEmitter) emitAlloca(instr *mir.Instr) error {
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", tmp, ty)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitGEP(instr *mir.Instr) error {
	baseTy, err := llvmValueType(fe.in(), instr.GEP.BaseType)
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(instr.GEP.Indices))
	for _, idx := range instr.GEP.Indices {
		if idx.Const {
			parts = append(parts, fmt.Sprintf("i32 %d", idx.Index))
		} else {
			parts = append(parts, "i64 "+fe.value(idx.Value))
		}
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, %s\n",
		tmp, baseTy, fe.value(instr.GEP.Base), strings.Join(parts, ", "))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitExtractValue(instr *mir.Instr) error {
	aggTy, err := llvmValueType(fe.in(), fe.typeOf(instr.Extract.Agg))
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = extractvalue %s %s%s\n",
		tmp, aggTy, fe.value(instr.Extract.Agg), indexSuffix(instr.Extract.Indices))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitInsertValue(instr *mir.Instr) error {
	in := fe.in()
	aggTy, err := llvmValueType(in, fe.typeOf(instr.Insert.Agg))
	if err != nil {
		return err
	}
	valTy, err := llvmValueType(in, fe.typeOf(instr.Insert.Value))
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = insertvalue %s %s, %s %s%s\n",
		tmp, aggTy, fe.value(instr.Insert.Agg), valTy, fe.value(instr.Insert.Value),
		indexSuffix(instr.Insert.Indices))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func indexSuffix(indices []int) string {
	var sb strings.Builder
	for _, i := range indices {
		fmt.Fprintf(&sb, ", %d", i)
	}
	return sb.String()
}

func (fe *funcEmitter) emitPhi(instr *mir.Instr) error {
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(instr.Phi.Incomings))
	for _, inc := range instr.Phi.Incomings {
		parts = append(parts, fmt.Sprintf("[ %s, %%%s ]", fe.value(inc.Value), fe.label(inc.Block)))
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = phi %s %s\n", tmp, ty, strings.Join(parts, ", "))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitSelect(instr *mir.Instr) error {
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = select i1 %s, %s %s, %s %s\n",
		tmp, fe.value(instr.Select.Cond), ty, fe.value(instr.Select.Then), ty, fe.value(instr.Select.Else))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

// coerce renders a value, widening or truncating integers so the operand
// matches the expected type.
func (fe *funcEmitter) coerce(id mir.ValueID, want types.TypeID) string {
	in := fe.in()
	have := fe.typeOf(id)
	text := fe.value(id)
	if have == types.NoTypeID || want == types.NoTypeID || in.Equal(have, want) {
		return text
	}
	if !in.IsInteger(have) || !in.IsInteger(want) {
		return text
	}
	haveT := in.MustLookup(in.Resolve(have))
	wantT := in.MustLookup(in.Resolve(want))
	if haveT.Width == wantT.Width {
		return text
	}
	op := "trunc"
	if haveT.Width < wantT.Width {
		op = "zext"
		if in.IsSigned(have) {
			op = "sext"
		}
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = %s %s %s to %s\n",
		tmp, op, intWidthType(haveT.Width), text, intWidthType(wantT.Width))
	return tmp
}
