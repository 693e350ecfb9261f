package mir

// ValueID identifies one SSA value inside a function. A value carries
// identity only; its data lives in the defining instruction and is
// resolved to a concrete register or literal at lowering time.
type ValueID int32

// BlockID identifies a basic block inside a function.
type BlockID int32

const (
	NoValueID ValueID = -1
	NoBlockID BlockID = -1
)

func (v ValueID) IsValid() bool { return v != NoValueID }
func (b BlockID) IsValid() bool { return b != NoBlockID }

// BinOp enumerates binary operations. Comparison ops always produce a
// single-bit boolean regardless of operand width.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// IsComparison reports whether the op yields a boolean.
func (op BinOp) IsComparison() bool {
	return op >= BinEq
}

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinDiv:
		return "div"
	case BinRem:
		return "rem"
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	case BinXor:
		return "xor"
	case BinShl:
		return "shl"
	case BinShr:
		return "shr"
	case BinEq:
		return "eq"
	case BinNe:
		return "ne"
	case BinLt:
		return "lt"
	case BinLe:
		return "le"
	case BinGt:
		return "gt"
	case BinGe:
		return "ge"
	}
	return "?"
}

// UnOp enumerates unary operations.
type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
	UnBitNot
)

func (op UnOp) String() string {
	switch op {
	case UnNeg:
		return "neg"
	case UnNot:
		return "not"
	case UnBitNot:
		return "bitnot"
	}
	return "?"
}

// AtomicOrdering is the memory ordering attached to an atomic operation.
// OrderingNone marks an instruction whose ordering was never set; the
// lowerer treats it as sequentially consistent, never as the weakest.
type AtomicOrdering uint8

const (
	OrderingNone AtomicOrdering = iota
	OrderingMonotonic
	OrderingAcquire
	OrderingRelease
	OrderingAcqRel
	OrderingSeqCst
)

func (o AtomicOrdering) String() string {
	switch o {
	case OrderingMonotonic:
		return "monotonic"
	case OrderingAcquire:
		return "acquire"
	case OrderingRelease:
		return "release"
	case OrderingAcqRel:
		return "acq_rel"
	case OrderingSeqCst, OrderingNone:
		return "seq_cst"
	}
	return "seq_cst"
}

// RMWOp enumerates atomic read-modify-write operations.
type RMWOp uint8

const (
	RMWXchg RMWOp = iota
	RMWAdd
	RMWSub
	RMWAnd
	RMWOr
	RMWXor
)

func (op RMWOp) String() string {
	switch op {
	case RMWXchg:
		return "xchg"
	case RMWAdd:
		return "add"
	case RMWSub:
		return "sub"
	case RMWAnd:
		return "and"
	case RMWOr:
		return "or"
	case RMWXor:
		return "xor"
	}
	return "?"
}
