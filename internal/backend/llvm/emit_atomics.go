package llvm

import (
	"fmt"

	"tml/internal/layout"
	"tml/internal/mir"
	"tml/internal/types"
)

// atomicAlign is the alignment annotation atomic memory accesses require.
func (fe *funcEmitter) atomicAlign(id types.TypeID) int {
	size := layout.EstimateSize(fe.in(), id)
	if size <= 0 || size > layout.PtrSize {
		return layout.PtrSize
	}
	return size
}

func (fe *funcEmitter) emitAtomicLoad(instr *mir.Instr) error {
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load atomic %s, ptr %s %s, align %d\n",
		tmp, ty, fe.value(instr.AtomicLoad.Addr), instr.AtomicLoad.Ordering, fe.atomicAlign(instr.Type))
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

func (fe *funcEmitter) emitAtomicStore(instr *mir.Instr) error {
	valTy := fe.typeOf(instr.AtomicStore.Value)
	ty, err := llvmValueType(fe.in(), valTy)
	if err != nil {
		return err
	}
	fmt.Fprintf(fe.buf(), "  store atomic %s %s, ptr %s %s, align %d\n",
		ty, fe.value(instr.AtomicStore.Value), fe.value(instr.AtomicStore.Addr),
		instr.AtomicStore.Ordering, fe.atomicAlign(valTy))
	return nil
}

func (fe *funcEmitter) emitAtomicRMW(instr *mir.Instr) error {
	a := &instr.AtomicRMW
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = atomicrmw %s ptr %s, %s %s %s\n",
		tmp, a.Op, fe.value(a.Addr), ty, fe.value(a.Value), a.Ordering)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

// emitCmpXchg lowers a compare-exchange; the instruction's result is the
// loaded old value, extracted from the (value, success) pair.
func (fe *funcEmitter) emitCmpXchg(instr *mir.Instr) error {
	cx := &instr.CmpXchg
	ty, err := llvmValueType(fe.in(), instr.Type)
	if err != nil {
		return err
	}
	pair := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = cmpxchg ptr %s, %s %s, %s %s %s %s\n",
		pair, fe.value(cx.Addr), ty, fe.value(cx.Expected), ty, fe.value(cx.New),
		cx.Success, cmpxchgFailure(cx.Failure))
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = extractvalue { %s, i1 } %s, 0\n", tmp, ty, pair)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

// cmpxchgFailure clamps the failure ordering to what compare-exchange
// accepts: no release semantics on the failure path.
func cmpxchgFailure(o mir.AtomicOrdering) mir.AtomicOrdering {
	switch o {
	case mir.OrderingRelease, mir.OrderingAcqRel:
		return mir.OrderingSeqCst
	}
	return o
}
