package sema

import (
	"tml/internal/ast"
	"tml/internal/layout"
	"tml/internal/source"
	"tml/internal/types"
)

// FieldDef is a resolved struct field.
type FieldDef struct {
	Name string
	Type types.TypeID
	Span source.Span
}

// StructDef is the registered form of a struct declaration.
type StructDef struct {
	Name        string
	TypeParams  []string
	ConstParams []ast.ConstParam
	Fields      []FieldDef
	Span        source.Span
}

// VariantDef is one enum variant with its resolved payload types.
type VariantDef struct {
	Name    string
	Payload []types.TypeID
	Span    source.Span
}

// EnumDef is the registered form of an enum declaration.
type EnumDef struct {
	Name       string
	TypeParams []string
	Variants   []VariantDef
	Span       source.Span
}

// MethodSig is a resolved method signature shared by behaviors,
// interfaces and classes. Params exclude the implicit receiver.
type MethodSig struct {
	Name       string
	Params     []types.TypeID
	ParamNames []string
	Result     types.TypeID
	Span       source.Span
}

// BehaviorDef is the registered form of a behavior declaration.
type BehaviorDef struct {
	Name       string
	TypeParams []string
	Methods    []MethodSig
	Span       source.Span
}

// InterfaceMethodDef is one interface method; HasDefault marks methods
// with a body that implementers may inherit instead of overriding.
type InterfaceMethodDef struct {
	MethodSig
	HasDefault bool
}

// InterfaceDef is the registered form of an interface declaration.
type InterfaceDef struct {
	Name    string
	Extends []string
	Methods []InterfaceMethodDef
	Span    source.Span
}

// ClassFieldDef is one resolved class field.
type ClassFieldDef struct {
	Name       string
	Type       types.TypeID
	Static     bool
	Visibility ast.Visibility
	Span       source.Span
}

// ClassMethodDef is one resolved class method with its dispatch flags.
type ClassMethodDef struct {
	MethodSig
	Static     bool
	Virtual    bool
	Override   bool
	Abstract   bool
	Final      bool
	Visibility ast.Visibility
	// VTableSlot is the dispatch-table index for virtual methods,
	// assigned during registration; -1 for non-virtual methods.
	VTableSlot int
}

// CtorDef is one resolved constructor signature.
type CtorDef struct {
	Params     []types.TypeID
	ParamNames []string
	Visibility ast.Visibility
	Span       source.Span
}

// ClassDef is the registered form of a class declaration. Derived
// attributes (size, stack eligibility, inheritance depth, vtable) are
// computed once during registration and never mutated afterward.
type ClassDef struct {
	Name       string
	Base       string
	BaseArgs   []types.TypeID
	Interfaces []string
	TypeParams []string
	Fields     []ClassFieldDef
	Methods    []ClassMethodDef
	Ctors      []CtorDef

	IsValue    bool
	IsPooled   bool
	IsSealed   bool
	IsAbstract bool

	Attrs  layout.ClassAttrs
	VTable []VTableSlot
	Span   source.Span
}

// VTableSlot names one virtual-dispatch entry; the defining class is the
// most derived class providing the implementation at registration time.
type VTableSlot struct {
	Method   string
	Defining string
}

// Method returns the class's own method by name.
func (c *ClassDef) Method(name string) *ClassMethodDef {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// Field returns the class's own field by name.
func (c *ClassDef) Field(name string) *ClassFieldDef {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// FuncSig is a resolved function signature. Overloads share a name and
// are kept in declaration order.
type FuncSig struct {
	Name        string
	Module      string
	TypeParams  []string
	ConstParams []ast.ConstParam
	Params      []types.TypeID
	ParamNames  []string
	Result      types.TypeID
	Where       []ast.WhereConstraint
	// LifetimeBounds maps a type-parameter name to the lifetime class
	// its substituted type must satisfy.
	LifetimeBounds map[string]string
	Span           source.Span
}

// IsGeneric reports whether the signature has any type or const
// parameters left to instantiate.
func (f *FuncSig) IsGeneric() bool {
	return len(f.TypeParams) > 0 || len(f.ConstParams) > 0
}

type constEvalState uint8

const (
	constStateUnvisited constEvalState = iota
	constStateVisiting
	constStateDone
)

// ConstDef is a registered top-level constant. Value is filled in lazily
// by the constant evaluator the first time the constant is referenced.
type ConstDef struct {
	Name  string
	Type  types.TypeID
	Value ConstValue
	Decl  *ast.ConstDecl
	state constEvalState
}

// Env is the per-unit symbol registry: top-level declaration tables plus
// a scope stack for lexically nested bindings. One Env is owned by one
// compilation unit; it is never shared across concurrent checks.
type Env struct {
	structs    map[string]*StructDef
	enums      map[string]*EnumDef
	behaviors  map[string]*BehaviorDef
	classes    map[string]*ClassDef
	interfaces map[string]*InterfaceDef
	funcs      map[string][]*FuncSig
	consts     map[string]*ConstDef
	modules    map[string]*Env

	// impls records which types implement which behavior, keyed by
	// behavior name then by the type's display string.
	impls map[string]map[string]bool
	// shortLived marks type names whose values are borrowed views; such
	// types fail lifetime-class bounds.
	shortLived map[string]bool

	scopes []map[string]types.TypeID
}

func NewEnv() *Env {
	return &Env{
		structs:    make(map[string]*StructDef),
		enums:      make(map[string]*EnumDef),
		behaviors:  make(map[string]*BehaviorDef),
		classes:    make(map[string]*ClassDef),
		interfaces: make(map[string]*InterfaceDef),
		funcs:      make(map[string][]*FuncSig),
		consts:     make(map[string]*ConstDef),
		modules:    make(map[string]*Env),
		impls:      make(map[string]map[string]bool),
		shortLived: make(map[string]bool),
	}
}

// RegisterImpl records that typeName implements behavior.
func (e *Env) RegisterImpl(behavior, typeName string) {
	set, ok := e.impls[behavior]
	if !ok {
		set = make(map[string]bool)
		e.impls[behavior] = set
	}
	set[typeName] = true
}

// HasImpl reports whether typeName implements behavior.
func (e *Env) HasImpl(behavior, typeName string) bool {
	return e.impls[behavior][typeName]
}

// MarkShortLived flags a type name as a borrowed view.
func (e *Env) MarkShortLived(typeName string) {
	e.shortLived[typeName] = true
}

// IsShortLived reports whether a type name was flagged as a borrowed view.
func (e *Env) IsShortLived(typeName string) bool {
	return e.shortLived[typeName]
}

func (e *Env) DefineStruct(d *StructDef)       { e.structs[d.Name] = d }
func (e *Env) DefineEnum(d *EnumDef)           { e.enums[d.Name] = d }
func (e *Env) DefineBehavior(d *BehaviorDef)   { e.behaviors[d.Name] = d }
func (e *Env) DefineClass(d *ClassDef)         { e.classes[d.Name] = d }
func (e *Env) DefineInterface(d *InterfaceDef) { e.interfaces[d.Name] = d }
func (e *Env) DefineConst(d *ConstDef)         { e.consts[d.Name] = d }

func (e *Env) DefineFunc(sig *FuncSig) {
	e.funcs[sig.Name] = append(e.funcs[sig.Name], sig)
}

func (e *Env) Struct(name string) (*StructDef, bool) {
	d, ok := e.structs[name]
	return d, ok
}

func (e *Env) Enum(name string) (*EnumDef, bool) {
	d, ok := e.enums[name]
	return d, ok
}

func (e *Env) Behavior(name string) (*BehaviorDef, bool) {
	d, ok := e.behaviors[name]
	return d, ok
}

func (e *Env) Class(name string) (*ClassDef, bool) {
	d, ok := e.classes[name]
	return d, ok
}

func (e *Env) Interface(name string) (*InterfaceDef, bool) {
	d, ok := e.interfaces[name]
	return d, ok
}

func (e *Env) Funcs(name string) []*FuncSig {
	return e.funcs[name]
}

func (e *Env) Const(name string) (*ConstDef, bool) {
	d, ok := e.consts[name]
	return d, ok
}

// DefineModule installs another unit's exported registry under a module
// path for cross-module lookups.
func (e *Env) DefineModule(path string, exports *Env) {
	e.modules[path] = exports
}

func (e *Env) Module(path string) (*Env, bool) {
	m, ok := e.modules[path]
	return m, ok
}

// Push opens a lexical scope.
func (e *Env) Push() {
	e.scopes = append(e.scopes, make(map[string]types.TypeID))
}

// Pop closes the innermost scope.
func (e *Env) Pop() {
	if len(e.scopes) == 0 {
		return
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Define binds a name in the innermost scope.
func (e *Env) Define(name string, ty types.TypeID) {
	if len(e.scopes) == 0 {
		e.Push()
	}
	e.scopes[len(e.scopes)-1][name] = ty
}

// Lookup searches scopes innermost-first.
func (e *Env) Lookup(name string) (types.TypeID, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if ty, ok := e.scopes[i][name]; ok {
			return ty, true
		}
	}
	return types.NoTypeID, false
}

// LookupLocal searches only the innermost scope.
func (e *Env) LookupLocal(name string) (types.TypeID, bool) {
	if len(e.scopes) == 0 {
		return types.NoTypeID, false
	}
	ty, ok := e.scopes[len(e.scopes)-1][name]
	return ty, ok
}

// StructNames returns registered struct names, for suggestions.
func (e *Env) StructNames() []string {
	return mapKeys(e.structs)
}

// ClassNames returns registered class names, for suggestions.
func (e *Env) ClassNames() []string {
	return mapKeys(e.classes)
}

// InterfaceNames returns registered interface names, for suggestions.
func (e *Env) InterfaceNames() []string {
	return mapKeys(e.interfaces)
}

// FuncNames returns registered function names, for suggestions.
func (e *Env) FuncNames() []string {
	out := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		out = append(out, name)
	}
	return out
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
