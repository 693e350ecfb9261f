package mir

import (
	"errors"
	"fmt"

	"tml/internal/types"
)

// Validate checks MIR module invariants: every block terminated, every
// branch target in range, every value defined before use, and no type
// variable or missing type surviving into instructions the lowerer must
// emit.
func Validate(m *Module, in *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := ValidateFunc(f, in); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks one function.
func ValidateFunc(f *Func, in *types.Interner) error {
	var errs []error
	if err := validateTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateValues(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTypes(f, in); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("block %s (b%d) has no terminator", f.Blocks[i].Name, i))
		}
	}
	return errors.Join(errs...)
}

func validateTargets(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		for _, target := range f.Blocks[i].Term.Targets() {
			if target < 0 || int(target) >= len(f.Blocks) {
				errs = append(errs, fmt.Errorf("block b%d branches to unknown block b%d", i, target))
			}
		}
	}
	return errors.Join(errs...)
}

// validateValues checks one-assignment form: every result id is assigned
// exactly once, and every operand refers to an assigned value. Phi
// operands are exempt from dominance here; their incoming blocks are
// checked instead.
func validateValues(f *Func) error {
	var errs []error
	defined := make([]bool, f.NumValues())
	for i := range f.Params {
		defined[i] = true
	}

	for bi := range f.Blocks {
		for ii := range f.Blocks[bi].Instrs {
			instr := &f.Blocks[bi].Instrs[ii]
			if instr.Result.IsValid() {
				if int(instr.Result) >= len(defined) {
					errs = append(errs, fmt.Errorf("b%d: result v%d out of range", bi, instr.Result))
					continue
				}
				if defined[instr.Result] {
					errs = append(errs, fmt.Errorf("b%d: value v%d assigned twice", bi, instr.Result))
				}
				defined[instr.Result] = true
			}
			if instr.Kind == InstrPhi {
				for _, inc := range instr.Phi.Incomings {
					if inc.Block < 0 || int(inc.Block) >= len(f.Blocks) {
						errs = append(errs, fmt.Errorf("b%d: phi incoming from unknown block b%d", bi, inc.Block))
					}
				}
			}
		}
	}

	for bi := range f.Blocks {
		for ii := range f.Blocks[bi].Instrs {
			for _, op := range instrOperands(&f.Blocks[bi].Instrs[ii]) {
				if !op.IsValid() {
					continue
				}
				if int(op) >= len(defined) || !defined[op] {
					errs = append(errs, fmt.Errorf("b%d: use of undefined value v%d", bi, op))
				}
			}
		}
		if t := &f.Blocks[bi].Term; t.Kind == TermReturn && t.Return.HasValue {
			if int(t.Return.Value) >= len(defined) || !defined[t.Return.Value] {
				errs = append(errs, fmt.Errorf("b%d: return of undefined value v%d", bi, t.Return.Value))
			}
		}
	}
	return errors.Join(errs...)
}

func validateTypes(f *Func, in *types.Interner) error {
	var errs []error
	check := func(where string, id types.TypeID) {
		if id == types.NoTypeID {
			errs = append(errs, fmt.Errorf("%s: missing type", where))
			return
		}
		resolved := in.Resolve(id)
		if in.Kind(resolved) == types.KindTypeVar {
			errs = append(errs, fmt.Errorf("%s: unresolved type variable %s", where, in.String(id)))
		}
	}
	for i, p := range f.Params {
		check(fmt.Sprintf("param %d", i), p.Type)
	}
	check("result", f.Result)
	for bi := range f.Blocks {
		for ii := range f.Blocks[bi].Instrs {
			instr := &f.Blocks[bi].Instrs[ii]
			switch instr.Kind {
			case InstrStore, InstrAtomicStore, InstrFence:
				// Pure effects carry no result type.
			default:
				check(fmt.Sprintf("b%d instr %d", bi, ii), instr.Type)
			}
		}
	}
	return errors.Join(errs...)
}

// instrOperands lists the SSA values an instruction reads.
func instrOperands(instr *Instr) []ValueID {
	switch instr.Kind {
	case InstrBinary:
		return []ValueID{instr.Binary.LHS, instr.Binary.RHS}
	case InstrUnary:
		return []ValueID{instr.Unary.Operand}
	case InstrLoad:
		return []ValueID{instr.Load.Addr}
	case InstrStore:
		return []ValueID{instr.Store.Addr, instr.Store.Value}
	case InstrGEP:
		out := []ValueID{instr.GEP.Base}
		for _, idx := range instr.GEP.Indices {
			if !idx.Const {
				out = append(out, idx.Value)
			}
		}
		return out
	case InstrExtractValue:
		return []ValueID{instr.Extract.Agg}
	case InstrInsertValue:
		return []ValueID{instr.Insert.Agg, instr.Insert.Value}
	case InstrCall:
		return instr.Call.Args
	case InstrMethodCall:
		return append([]ValueID{instr.MethodCall.Receiver}, instr.MethodCall.Args...)
	case InstrClosureCall:
		return append([]ValueID{instr.ClosureCall.Closure}, instr.ClosureCall.Args...)
	case InstrCast:
		return []ValueID{instr.Cast.Src}
	case InstrPhi:
		out := make([]ValueID, 0, len(instr.Phi.Incomings))
		for _, inc := range instr.Phi.Incomings {
			out = append(out, inc.Value)
		}
		return out
	case InstrSelect:
		return []ValueID{instr.Select.Cond, instr.Select.Then, instr.Select.Else}
	case InstrStructInit:
		return instr.StructInit.Fields
	case InstrTupleInit:
		return instr.TupleInit.Elems
	case InstrArrayInit:
		return instr.ArrayInit.Elems
	case InstrEnumInit:
		return instr.EnumInit.Payload
	case InstrAtomicLoad:
		return []ValueID{instr.AtomicLoad.Addr}
	case InstrAtomicStore:
		return []ValueID{instr.AtomicStore.Addr, instr.AtomicStore.Value}
	case InstrAtomicRMW:
		return []ValueID{instr.AtomicRMW.Addr, instr.AtomicRMW.Value}
	case InstrAtomicCmpXchg:
		return []ValueID{instr.CmpXchg.Addr, instr.CmpXchg.Expected, instr.CmpXchg.New}
	}
	return nil
}
