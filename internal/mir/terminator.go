package mir

// TermKind enumerates block terminator kinds.
type TermKind uint8

const (
	// TermNone marks an unterminated block; validation rejects it.
	TermNone TermKind = iota
	TermReturn
	TermBr
	TermCondBr
	TermSwitch
	TermUnreachable
)

// Terminator ends a basic block.
type Terminator struct {
	Kind TermKind

	Return ReturnTerm
	Br     BrTerm
	CondBr CondBrTerm
	Switch SwitchTerm
}

// ReturnTerm returns from the function, with or without a value.
type ReturnTerm struct {
	HasValue bool
	Value    ValueID
}

// BrTerm is an unconditional branch.
type BrTerm struct {
	Target BlockID
}

// CondBrTerm branches on a boolean condition.
type CondBrTerm struct {
	Cond ValueID
	Then BlockID
	Else BlockID
}

// SwitchCase is one (constant, target) arm of a switch.
type SwitchCase struct {
	Value  int64
	Target BlockID
}

// SwitchTerm is a multi-way branch on an integer value.
type SwitchTerm struct {
	Value   ValueID
	Cases   []SwitchCase
	Default BlockID
}

// Targets returns every block the terminator can transfer to.
func (t *Terminator) Targets() []BlockID {
	switch t.Kind {
	case TermBr:
		return []BlockID{t.Br.Target}
	case TermCondBr:
		return []BlockID{t.CondBr.Then, t.CondBr.Else}
	case TermSwitch:
		out := make([]BlockID, 0, len(t.Switch.Cases)+1)
		for _, cs := range t.Switch.Cases {
			out = append(out, cs.Target)
		}
		if t.Switch.Default.IsValid() {
			out = append(out, t.Switch.Default)
		}
		return out
	}
	return nil
}
