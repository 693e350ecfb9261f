package mir

import (
	"tml/internal/source"
	"tml/internal/types"
)

// Block is one basic block: a label, straight-line instructions, and a
// terminator.
type Block struct {
	ID     BlockID
	Name   string
	Instrs []Instr
	Term   Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Param is one typed function parameter.
type Param struct {
	Name string
	Type types.TypeID
}

// Func is one lowered function in one-assignment-per-value form.
type Func struct {
	// Name is the final (mangled) symbol name.
	Name   string
	Span   source.Span
	Params []Param
	Result types.TypeID

	Blocks []Block
	Entry  BlockID

	// nextValue hands out fresh SSA value ids.
	nextValue ValueID
}

// NewFunc creates an empty function with an entry block.
func NewFunc(name string, params []Param, result types.TypeID) *Func {
	f := &Func{Name: name, Params: params, Result: result, Entry: 0}
	f.Blocks = append(f.Blocks, Block{ID: 0, Name: "entry"})
	// Parameters occupy the first value ids.
	f.nextValue = ValueID(len(params))
	return f
}

// ParamValue returns the SSA value id of the i-th parameter.
func (f *Func) ParamValue(i int) ValueID {
	return ValueID(i)
}

// NewValue hands out a fresh SSA value id.
func (f *Func) NewValue() ValueID {
	v := f.nextValue
	f.nextValue++
	return v
}

// NumValues returns how many SSA values the function defines, parameters
// included.
func (f *Func) NumValues() int {
	return int(f.nextValue)
}

// AddBlock appends a new empty block and returns its id.
func (f *Func) AddBlock(name string) BlockID {
	id := BlockID(len(f.Blocks))
	f.Blocks = append(f.Blocks, Block{ID: id, Name: name})
	return id
}

// Block returns the block by id, or nil.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[int(id)]
}

// Append adds an instruction to a block, assigning a fresh result value
// when the kind produces one, and returns that value.
func (f *Func) Append(block BlockID, instr Instr) ValueID {
	b := f.Block(block)
	if b == nil {
		return NoValueID
	}
	if producesValue(instr.Kind) {
		instr.Result = f.NewValue()
	} else {
		instr.Result = NoValueID
	}
	b.Instrs = append(b.Instrs, instr)
	return instr.Result
}

// Terminate sets a block's terminator; the first terminator wins.
func (f *Func) Terminate(block BlockID, term Terminator) {
	b := f.Block(block)
	if b == nil || b.Terminated() {
		return
	}
	b.Term = term
}

func producesValue(kind InstrKind) bool {
	switch kind {
	case InstrStore, InstrAtomicStore, InstrFence:
		return false
	}
	return true
}

// InstrCount returns the number of instructions across all blocks, used
// by the lowerer's inlining heuristic.
func (f *Func) InstrCount() int {
	n := 0
	for i := range f.Blocks {
		n += len(f.Blocks[i].Instrs)
	}
	return n
}
