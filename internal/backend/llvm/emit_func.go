package llvm

import (
	"fmt"
	"strconv"
	"strings"

	"tml/internal/mir"
	"tml/internal/types"
)

// inlineHintMaxInstrs is the size ceiling under which a function gets an
// inlinehint attribute.
const inlineHintMaxInstrs = 12

type funcEmitter struct {
	emitter *Emitter
	f       *mir.Func
	tmpID   int

	// regs maps each SSA value to its rendered operand: a %tN register
	// or, for folded constants, the literal text itself.
	regs      map[mir.ValueID]string
	valueType map[mir.ValueID]types.TypeID
	// intConsts keeps the numeric value of folded integer constants so
	// the array initializer can recognize all-zero element lists.
	intConsts map[mir.ValueID]int64

	// fallbackLabel is where branches to never-emitted blocks land: the
	// first return-terminated block, else the last block.
	fallbackLabel string
}

func (fe *funcEmitter) buf() *strings.Builder {
	return &fe.emitter.buf
}

func (fe *funcEmitter) in() *types.Interner {
	return fe.emitter.types
}

func (fe *funcEmitter) nextTemp() string {
	fe.tmpID++
	return fmt.Sprintf("%%t%d", fe.tmpID)
}

func (fe *funcEmitter) label(id mir.BlockID) string {
	if id < 0 || int(id) >= len(fe.f.Blocks) {
		// Branch target without an assigned label: use the designated
		// fallthrough label rather than dropping the branch.
		return fe.fallbackLabel
	}
	return fmt.Sprintf("bb%d", id)
}

func (fe *funcEmitter) emitFunction() error {
	f := fe.f
	in := fe.in()
	fe.regs = make(map[mir.ValueID]string, f.NumValues())
	fe.valueType = make(map[mir.ValueID]types.TypeID, f.NumValues())
	fe.intConsts = make(map[mir.ValueID]int64)
	fe.computeFallbackLabel()

	sret := needsSret(in, f.Result)
	retTy := "void"
	if !sret {
		ty, err := llvmType(in, f.Result)
		if err != nil {
			return err
		}
		retTy = ty
	}

	params := make([]string, 0, len(f.Params)+1)
	if sret {
		sretTy, err := llvmValueType(in, f.Result)
		if err != nil {
			return err
		}
		params = append(params, fmt.Sprintf("ptr sret(%s) %%sret", sretTy))
	}
	for i, p := range f.Params {
		ty, err := llvmValueType(in, p.Type)
		if err != nil {
			return err
		}
		reg := fmt.Sprintf("%%p%d", i)
		params = append(params, ty+" "+reg)
		fe.regs[f.ParamValue(i)] = reg
		fe.valueType[f.ParamValue(i)] = p.Type
	}

	attrs := ""
	switch {
	case strings.HasPrefix(f.Name, "drop_"):
		attrs = " alwaysinline"
	case f.InstrCount() <= inlineHintMaxInstrs:
		attrs = " inlinehint"
	}
	fmt.Fprintf(fe.buf(), "define %s @%s(%s)%s {\n", retTy, f.Name, strings.Join(params, ", "), attrs)

	for bi := range f.Blocks {
		block := &f.Blocks[bi]
		fmt.Fprintf(fe.buf(), "bb%d:\n", block.ID)
		for ii := range block.Instrs {
			if err := fe.emitInstr(&block.Instrs[ii]); err != nil {
				return err
			}
		}
		if err := fe.emitTerminator(&block.Term, sret); err != nil {
			return err
		}
	}

	fe.buf().WriteString("}\n\n")
	return nil
}

// computeFallbackLabel picks the first return-terminated block, or the
// last block when none returns.
func (fe *funcEmitter) computeFallbackLabel() {
	fe.fallbackLabel = "bb0"
	if len(fe.f.Blocks) == 0 {
		return
	}
	for bi := range fe.f.Blocks {
		if fe.f.Blocks[bi].Term.Kind == mir.TermReturn {
			fe.fallbackLabel = fmt.Sprintf("bb%d", fe.f.Blocks[bi].ID)
			return
		}
	}
	fe.fallbackLabel = fmt.Sprintf("bb%d", fe.f.Blocks[len(fe.f.Blocks)-1].ID)
}

// value renders an SSA value as an operand. Unknown values degrade to a
// typed zero rather than ill-formed output.
func (fe *funcEmitter) value(id mir.ValueID) string {
	if v, ok := fe.regs[id]; ok {
		return v
	}
	return "0"
}

func (fe *funcEmitter) typeOf(id mir.ValueID) types.TypeID {
	return fe.valueType[id]
}

// bind records a value's rendered operand and type.
func (fe *funcEmitter) bind(id mir.ValueID, text string, ty types.TypeID) {
	if !id.IsValid() {
		return
	}
	fe.regs[id] = text
	fe.valueType[id] = ty
}

func formatFloat(v float64) string {
	// LLVM accepts plain decimal or scientific notation for doubles.
	s := strconv.FormatFloat(v, 'e', 6, 64)
	return s
}
