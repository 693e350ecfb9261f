package mir

import (
	"strings"
	"testing"

	"tml/internal/types"
)

func intConst(ty types.TypeID, v int64) Instr {
	return Instr{Kind: InstrConst, Type: ty, Const: ConstInstr{Kind: ConstInt, Int: v}}
}

func TestValidateAcceptsStraightLineFunc(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := NewFunc("add", []Param{{Name: "a", Type: b.I64}, {Name: "b", Type: b.I64}}, b.I64)
	sum := f.Append(f.Entry, Instr{Kind: InstrBinary, Type: b.I64, Binary: BinaryInstr{
		Op: BinAdd, LHS: f.ParamValue(0), RHS: f.ParamValue(1),
	}})
	f.Terminate(f.Entry, Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: sum}})

	if err := ValidateFunc(f, in); err != nil {
		t.Fatalf("valid function rejected: %v", err)
	}
}

func TestValidateRejectsUnterminatedBlock(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := NewFunc("f", nil, b.Unit)
	err := ValidateFunc(f, in)
	if err == nil {
		t.Fatal("unterminated block accepted")
	}
	if !strings.Contains(err.Error(), "no terminator") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBranchOutOfRange(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := NewFunc("f", nil, b.Unit)
	f.Terminate(f.Entry, Terminator{Kind: TermBr, Br: BrTerm{Target: 17}})
	err := ValidateFunc(f, in)
	if err == nil || !strings.Contains(err.Error(), "unknown block") {
		t.Fatalf("branch to unknown block not rejected: %v", err)
	}
}

func TestValidateRejectsUseOfUndefinedValue(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := NewFunc("f", nil, b.I64)
	f.Terminate(f.Entry, Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: 40}})
	err := ValidateFunc(f, in)
	if err == nil || !strings.Contains(err.Error(), "undefined value") {
		t.Fatalf("undefined value not rejected: %v", err)
	}
}

func TestValidateRejectsUnresolvedTypeVar(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tv := in.FreshTypeVar()

	f := NewFunc("f", nil, b.Unit)
	f.Append(f.Entry, intConst(tv, 0))
	f.Terminate(f.Entry, Terminator{Kind: TermReturn})
	err := ValidateFunc(f, in)
	if err == nil || !strings.Contains(err.Error(), "type variable") {
		t.Fatalf("escaped type variable not rejected: %v", err)
	}

	// Once bound to a concrete type the same function is fine.
	in.Bind(tv, b.I32)
	if err := ValidateFunc(f, in); err != nil {
		t.Fatalf("bound type variable still rejected: %v", err)
	}
}

func TestValidateRejectsMissingInstrType(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := NewFunc("f", nil, b.Unit)
	f.Append(f.Entry, Instr{Kind: InstrAlloca})
	f.Terminate(f.Entry, Terminator{Kind: TermReturn})
	err := ValidateFunc(f, in)
	if err == nil || !strings.Contains(err.Error(), "missing type") {
		t.Fatalf("missing type not rejected: %v", err)
	}
}

func TestTerminatorTargets(t *testing.T) {
	term := Terminator{Kind: TermSwitch, Switch: SwitchTerm{
		Value:   0,
		Cases:   []SwitchCase{{Value: 1, Target: 1}, {Value: 2, Target: 2}},
		Default: 3,
	}}
	got := term.Targets()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("Targets = %v", got)
	}
}

func TestDumpModuleRendersBlocks(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := NewFunc("main", nil, b.Unit)
	cond := f.Append(f.Entry, Instr{Kind: InstrConst, Type: b.Bool, Const: ConstInstr{Kind: ConstBool, Bool: true}})
	then := f.AddBlock("then")
	done := f.AddBlock("done")
	f.Terminate(f.Entry, Terminator{Kind: TermCondBr, CondBr: CondBrTerm{Cond: cond, Then: then, Else: done}})
	f.Terminate(then, Terminator{Kind: TermBr, Br: BrTerm{Target: done}})
	f.Terminate(done, Terminator{Kind: TermReturn})

	var sb strings.Builder
	if err := DumpModule(&sb, &Module{Name: "m", Funcs: []*Func{f}}, in); err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"fn main()", "entry.b0:", "then.b1:", "br b2", "return"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
