package mir

import (
	"tml/internal/types"
)

// InstrKind enumerates instruction kinds in MIR.
type InstrKind uint8

const (
	// InstrConst materializes a literal constant.
	InstrConst InstrKind = iota
	// InstrBinary represents a binary operation.
	InstrBinary
	// InstrUnary represents a unary operation.
	InstrUnary
	// InstrLoad reads through an address.
	InstrLoad
	// InstrStore writes through an address.
	InstrStore
	// InstrAlloca reserves addressable stack storage.
	InstrAlloca
	// InstrGEP computes an element pointer from a base and indices.
	InstrGEP
	// InstrExtractValue reads a field of an aggregate value.
	InstrExtractValue
	// InstrInsertValue produces an aggregate with one field replaced.
	InstrInsertValue
	// InstrCall represents a direct call.
	InstrCall
	// InstrMethodCall represents a method call, direct or virtual.
	InstrMethodCall
	// InstrClosureCall invokes a closure pair (code ptr, env ptr).
	InstrClosureCall
	// InstrCast converts between numeric or pointer representations.
	InstrCast
	// InstrPhi merges values from predecessor blocks.
	InstrPhi
	// InstrSelect picks one of two values by condition.
	InstrSelect
	// InstrStructInit constructs a struct or class instance.
	InstrStructInit
	// InstrTupleInit constructs a tuple.
	InstrTupleInit
	// InstrArrayInit constructs a fixed-size array.
	InstrArrayInit
	// InstrEnumInit constructs an enum value with a tag and payload.
	InstrEnumInit
	// InstrAtomicLoad is an atomic read with an explicit ordering.
	InstrAtomicLoad
	// InstrAtomicStore is an atomic write with an explicit ordering.
	InstrAtomicStore
	// InstrAtomicRMW is an atomic read-modify-write.
	InstrAtomicRMW
	// InstrAtomicCmpXchg is an atomic compare-exchange.
	InstrAtomicCmpXchg
	// InstrFence is a standalone memory fence.
	InstrFence
)

// Instr represents one MIR instruction. Result is the SSA value the
// instruction defines (NoValueID for pure effects like Store), and Type
// is the result's statically-known type.
type Instr struct {
	Kind   InstrKind
	Result ValueID
	Type   types.TypeID

	Const       ConstInstr
	Binary      BinaryInstr
	Unary       UnaryInstr
	Load        LoadInstr
	Store       StoreInstr
	Alloca      AllocaInstr
	GEP         GEPInstr
	Extract     ExtractValueInstr
	Insert      InsertValueInstr
	Call        CallInstr
	MethodCall  MethodCallInstr
	ClosureCall ClosureCallInstr
	Cast        CastInstr
	Phi         PhiInstr
	Select      SelectInstr
	StructInit  StructInitInstr
	TupleInit   TupleInitInstr
	ArrayInit   ArrayInitInstr
	EnumInit    EnumInitInstr
	AtomicLoad  AtomicLoadInstr
	AtomicStore AtomicStoreInstr
	AtomicRMW   AtomicRMWInstr
	CmpXchg     AtomicCmpXchgInstr
	Fence       FenceInstr
}

// ConstKind enumerates literal constant kinds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstStr
	ConstNull
	ConstUnit
)

// ConstInstr materializes a literal. Int doubles as the storage for
// unsigned constants; the instruction type decides the interpretation.
type ConstInstr struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

// BinaryInstr represents a binary operation.
type BinaryInstr struct {
	Op  BinOp
	LHS ValueID
	RHS ValueID
}

// UnaryInstr represents a unary operation.
type UnaryInstr struct {
	Op      UnOp
	Operand ValueID
}

// LoadInstr reads the instruction type through Addr.
type LoadInstr struct {
	Addr ValueID
}

// StoreInstr writes Value through Addr.
type StoreInstr struct {
	Addr  ValueID
	Value ValueID
}

// AllocaInstr reserves storage for the instruction type; Result is the
// address.
type AllocaInstr struct{}

// GEPIndex is one step of an element-pointer computation: either a
// constant field index or a dynamic index value.
type GEPIndex struct {
	Const bool
	Index int64
	Value ValueID
}

// GEPInstr computes an element pointer. BaseType is the pointed-to type
// the indices step through.
type GEPInstr struct {
	Base     ValueID
	BaseType types.TypeID
	Indices  []GEPIndex
}

// ExtractValueInstr reads a nested field of an aggregate value.
type ExtractValueInstr struct {
	Agg     ValueID
	Indices []int
}

// InsertValueInstr replaces a nested field of an aggregate value.
type InsertValueInstr struct {
	Agg     ValueID
	Value   ValueID
	Indices []int
}

// CallInstr calls a symbol by its mangled name.
type CallInstr struct {
	Callee string
	Args   []ValueID
}

// MethodCallInstr calls a method on a receiver. Virtual dispatch goes
// through the receiver's dispatch table at Slot; direct dispatch names
// the resolved symbol in Callee.
type MethodCallInstr struct {
	Receiver ValueID
	Class    string
	Method   string
	Callee   string
	Virtual  bool
	Slot     int
	Args     []ValueID
}

// ClosureCallInstr invokes a closure value: a (code pointer, environment
// pointer) pair, always passed and called as such.
type ClosureCallInstr struct {
	Closure ValueID
	Args    []ValueID
}

// CastInstr converts Src from SrcType to the instruction type. The
// lowerer chooses the concrete operation from the two type categories.
type CastInstr struct {
	Src     ValueID
	SrcType types.TypeID
}

// PhiIncoming is one (value, predecessor) pair of a phi.
type PhiIncoming struct {
	Value ValueID
	Block BlockID
}

// PhiInstr merges values flowing in from predecessor blocks.
type PhiInstr struct {
	Incomings []PhiIncoming
}

// SelectInstr picks Then or Else by Cond without branching.
type SelectInstr struct {
	Cond ValueID
	Then ValueID
	Else ValueID
}

// StructInitInstr constructs a struct or class instance; field order
// follows the declaration. Class instances are materialized through an
// addressable allocation, value aggregates as an insert chain.
type StructInitInstr struct {
	TypeName string
	Fields   []ValueID
}

// TupleInitInstr constructs a tuple from element values.
type TupleInitInstr struct {
	Elems []ValueID
}

// ArrayInitInstr constructs a fixed-size array. Repeat marks the
// one-element repeated form `[x; N]`; Elems then holds the single
// element and the instruction type carries the count.
type ArrayInitInstr struct {
	Elems  []ValueID
	Repeat bool
}

// EnumInitInstr constructs an enum value: the variant tag followed by
// its payload values.
type EnumInitInstr struct {
	EnumName string
	TypeArgs []types.TypeID
	Variant  string
	Tag      int
	Payload  []ValueID
}

// AtomicLoadInstr is an atomic read.
type AtomicLoadInstr struct {
	Addr     ValueID
	Ordering AtomicOrdering
}

// AtomicStoreInstr is an atomic write.
type AtomicStoreInstr struct {
	Addr     ValueID
	Value    ValueID
	Ordering AtomicOrdering
}

// AtomicRMWInstr is an atomic read-modify-write; Result is the old value.
type AtomicRMWInstr struct {
	Op       RMWOp
	Addr     ValueID
	Value    ValueID
	Ordering AtomicOrdering
}

// AtomicCmpXchgInstr is an atomic compare-exchange; Result is the loaded
// old value.
type AtomicCmpXchgInstr struct {
	Addr     ValueID
	Expected ValueID
	New      ValueID
	Success  AtomicOrdering
	Failure  AtomicOrdering
}

// FenceInstr is a standalone memory fence.
type FenceInstr struct {
	Ordering AtomicOrdering
}
