package ast

import (
	"tml/internal/source"
)

// Module is one compilation unit as handed over by the external parser.
// Declaration order inside the slices is source order, but the semantic
// core registers everything before checking, so forward references work.
type Module struct {
	Name    string
	Path    string
	Imports []string

	Structs    []*StructDecl
	Enums      []*EnumDecl
	Behaviors  []*BehaviorDecl
	Classes    []*ClassDecl
	Interfaces []*InterfaceDecl
	Funcs      []*FuncDecl
	Consts     []*ConstDecl

	Span source.Span
}
