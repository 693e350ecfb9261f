package llvm

import (
	"fmt"

	"tml/internal/mir"
	"tml/internal/types"
)

// emitCast picks the conversion from the source and destination type
// categories. Same-representation casts bind the operand without
// emitting anything.
func (fe *funcEmitter) emitCast(instr *mir.Instr) error {
	in := fe.in()
	src := in.Resolve(instr.Cast.SrcType)
	dst := in.Resolve(instr.Type)
	operand := fe.value(instr.Cast.Src)

	srcTy, err := llvmValueType(in, src)
	if err != nil {
		return err
	}
	dstTy, err := llvmValueType(in, dst)
	if err != nil {
		return err
	}
	if srcTy == dstTy {
		fe.bind(instr.Result, operand, instr.Type)
		return nil
	}

	srcK := in.Kind(src)
	dstK := in.Kind(dst)

	// Aggregate-to-pointer casts spill through a stack slot; the result
	// is the slot's address.
	if isAggregate(in, src) && dstTy == "ptr" {
		slot := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, srcTy)
		fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", srcTy, operand, slot)
		fe.bind(instr.Result, slot, instr.Type)
		return nil
	}

	// Value-aggregate reinterpretation spills to a slot and loads back
	// under the destination type.
	if isAggregate(in, src) && isAggregate(in, dst) {
		slot := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, srcTy)
		fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", srcTy, operand, slot)
		tmp := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, dstTy, slot)
		fe.bind(instr.Result, tmp, instr.Type)
		return nil
	}

	op := castOp(in, src, dst, srcK, dstK)
	if op == "" {
		return fmt.Errorf("no cast from %s to %s", in.String(src), in.String(dst))
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = %s %s %s to %s\n", tmp, op, srcTy, operand, dstTy)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func castOp(in *types.Interner, src, dst types.TypeID, srcK, dstK types.Kind) string {
	srcInt := srcK == types.KindInt || srcK == types.KindUint || srcK == types.KindBool || srcK == types.KindChar
	dstInt := dstK == types.KindInt || dstK == types.KindUint || dstK == types.KindBool || dstK == types.KindChar
	srcPtr := srcK == types.KindPtr || srcK == types.KindRef || srcK == types.KindStr || srcK == types.KindClass || srcK == types.KindFn
	dstPtr := dstK == types.KindPtr || dstK == types.KindRef || dstK == types.KindStr || dstK == types.KindClass || dstK == types.KindFn

	switch {
	case srcK == types.KindFloat && dstInt:
		if dstK == types.KindUint {
			return "fptoui"
		}
		return "fptosi"
	case srcInt && dstK == types.KindFloat:
		if srcK == types.KindUint {
			return "uitofp"
		}
		return "sitofp"
	case srcK == types.KindFloat && dstK == types.KindFloat:
		if widthOf(in, src) < widthOf(in, dst) {
			return "fpext"
		}
		return "fptrunc"
	case srcInt && dstInt:
		if widthOf(in, src) < widthOf(in, dst) {
			if srcK == types.KindUint || srcK == types.KindBool || srcK == types.KindChar {
				return "zext"
			}
			return "sext"
		}
		return "trunc"
	case srcPtr && dstInt:
		return "ptrtoint"
	case srcInt && dstPtr:
		return "inttoptr"
	case srcPtr && dstPtr:
		return "bitcast"
	}
	return ""
}

func widthOf(in *types.Interner, id types.TypeID) types.Width {
	tt, ok := in.Lookup(in.Resolve(id))
	if !ok {
		return types.Width64
	}
	switch tt.Kind {
	case types.KindBool:
		return types.Width8
	case types.KindChar:
		return types.Width32
	}
	if tt.Width == 0 {
		return types.Width64
	}
	return tt.Width
}
