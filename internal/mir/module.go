package mir

import (
	"tml/internal/types"
)

// StructLayout is a named aggregate whose type declaration the lowerer
// emits; field order follows the declaration.
type StructLayout struct {
	Name   string
	Fields []types.TypeID
	// Class instances carry a leading dispatch-table pointer.
	Class bool
}

// EnumLayout is a tagged union: a leading integer discriminant and a
// payload region sized to the largest variant (minimum 8 bytes).
type EnumLayout struct {
	Name       string
	MaxPayload int
}

// Module is one compilation unit of lowered functions plus the aggregate
// layouts they reference.
type Module struct {
	Name    string
	Funcs   []*Func
	Structs []StructLayout
	Enums   []EnumLayout
}

// Func returns a function by name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}
