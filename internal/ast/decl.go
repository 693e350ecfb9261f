package ast

import (
	"tml/internal/source"
)

// Visibility controls member access.
type Visibility uint8

const (
	// VisPublic members are always accessible.
	VisPublic Visibility = iota
	// VisProtected members are accessible in the defining class and subclasses.
	VisProtected
	// VisPrivate members are accessible only in the exact defining class.
	VisPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "public"
	case VisProtected:
		return "protected"
	case VisPrivate:
		return "private"
	}
	return "unknown"
}

// ConstParam is a const-generic parameter declaration, e.g. [const N: U64].
type ConstParam struct {
	Name string
	Type *TypeExpr
}

// Param is a function or method parameter.
type Param struct {
	Name string
	Type *TypeExpr
	Span source.Span
}

// BoundConstraint is a parameterized behavior bound, e.g. Comparable[T].
type BoundConstraint struct {
	Behavior string
	Args     []*TypeExpr
}

// WhereConstraint collects the bounds declared for one type parameter.
type WhereConstraint struct {
	TypeParam   string
	Behaviors   []string
	ParamBounds []BoundConstraint
}

// FuncDecl is a free function declaration.
type FuncDecl struct {
	Name        string
	TypeParams  []string
	ConstParams []ConstParam
	Params      []Param
	Return      *TypeExpr
	Where       []WhereConstraint
	// LifetimeBounds maps a type parameter to its lifetime class,
	// e.g. "T" -> "static".
	LifetimeBounds map[string]string
	Span           source.Span
}

// FieldDecl is a struct field.
type FieldDecl struct {
	Name string
	Type *TypeExpr
	Span source.Span
}

// StructDecl is a value-aggregate declaration.
type StructDecl struct {
	Name        string
	TypeParams  []string
	ConstParams []ConstParam
	Fields      []FieldDecl
	Span        source.Span
}

// VariantDecl is one enum variant with optional payload types.
type VariantDecl struct {
	Name    string
	Payload []*TypeExpr
	Span    source.Span
}

// EnumDecl is a tagged-union declaration.
type EnumDecl struct {
	Name       string
	TypeParams []string
	Variants   []VariantDecl
	Span       source.Span
}

// BehaviorMethod is a method required (or defaulted) by a behavior.
type BehaviorMethod struct {
	Name       string
	Params     []Param
	Return     *TypeExpr
	HasDefault bool
	Span       source.Span
}

// BehaviorDecl is a trait-like capability set for generic bounds.
type BehaviorDecl struct {
	Name       string
	TypeParams []string
	Methods    []BehaviorMethod
	Span       source.Span
}

// InterfaceMethod is a method slot of an OOP interface.
type InterfaceMethod struct {
	Name       string
	Params     []Param
	Return     *TypeExpr
	HasDefault bool
	Span       source.Span
}

// InterfaceDecl is an OOP interface.
type InterfaceDecl struct {
	Name       string
	TypeParams []string
	Extends    []string
	Methods    []InterfaceMethod
	Span       source.Span
}

// ClassField is a class data member.
type ClassField struct {
	Name       string
	Type       *TypeExpr
	Static     bool
	Visibility Visibility
	Span       source.Span
}

// MethodDecl is a class method with its dispatch and access flags.
type MethodDecl struct {
	Name       string
	Params     []Param
	Return     *TypeExpr
	Static     bool
	Virtual    bool
	Override   bool
	Abstract   bool
	Final      bool
	Visibility Visibility
	Span       source.Span
}

// CtorDecl is a class constructor.
type CtorDecl struct {
	Params     []Param
	Visibility Visibility
	Span       source.Span
}

// ClassDecl is a reference-semantics class declaration with single
// inheritance, interface conformance, and decorator flags.
type ClassDecl struct {
	Name        string
	TypeParams  []string
	ConstParams []ConstParam
	Base        string
	BaseArgs    []*TypeExpr
	Interfaces  []string
	Fields      []ClassField
	Methods     []MethodDecl
	Ctors       []CtorDecl

	IsValue    bool
	IsPooled   bool
	IsSealed   bool
	IsAbstract bool

	Span source.Span
}

// ConstDecl is a top-level compile-time constant.
type ConstDecl struct {
	Name  string
	Type  *TypeExpr
	Value *Expr
	Span  source.Span
}
