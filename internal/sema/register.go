package sema

import (
	"tml/internal/ast"
	"tml/internal/diag"
	"tml/internal/layout"
	"tml/internal/source"
	"tml/internal/types"
)

// RegisterDecls populates the environment from every top-level
// declaration before any validation runs. Derived class attributes
// (size, depth, vtable) are computed afterwards, once every class is
// known, so base classes may appear later in the file.
func (c *Checker) RegisterDecls(m *ast.Module) {
	for _, d := range m.Structs {
		c.registerStruct(d)
	}
	for _, d := range m.Enums {
		c.registerEnum(d)
	}
	for _, d := range m.Behaviors {
		c.registerBehavior(d)
	}
	for _, d := range m.Interfaces {
		c.registerInterface(d)
	}
	for _, d := range m.Classes {
		c.registerClass(d)
	}
	for _, d := range m.Funcs {
		c.registerFunc(d, m.Path)
	}
	for _, d := range m.Consts {
		c.registerConst(d)
	}
	c.computeAllClassAttrs(m)
}

func (c *Checker) registerStruct(d *ast.StructDecl) {
	pop := c.pushParams(d.TypeParams, d.ConstParams)
	defer pop()

	def := &StructDef{
		Name:        d.Name,
		TypeParams:  d.TypeParams,
		ConstParams: d.ConstParams,
		Span:        d.Span,
	}
	for _, f := range d.Fields {
		def.Fields = append(def.Fields, FieldDef{
			Name: f.Name,
			Type: c.ResolveTypeExpr(f.Type),
			Span: f.Span,
		})
	}
	c.env.DefineStruct(def)
}

func (c *Checker) registerEnum(d *ast.EnumDecl) {
	pop := c.pushParams(d.TypeParams, nil)
	defer pop()

	def := &EnumDef{Name: d.Name, TypeParams: d.TypeParams, Span: d.Span}
	for _, v := range d.Variants {
		variant := VariantDef{Name: v.Name, Span: v.Span}
		for _, p := range v.Payload {
			variant.Payload = append(variant.Payload, c.ResolveTypeExpr(p))
		}
		def.Variants = append(def.Variants, variant)
	}
	c.env.DefineEnum(def)
}

func (c *Checker) registerBehavior(d *ast.BehaviorDecl) {
	pop := c.pushParams(d.TypeParams, nil)
	defer pop()

	def := &BehaviorDef{Name: d.Name, TypeParams: d.TypeParams, Span: d.Span}
	for _, mth := range d.Methods {
		def.Methods = append(def.Methods, c.resolveMethodSig(mth.Name, mth.Params, mth.Return, mth.Span))
	}
	c.env.DefineBehavior(def)
}

func (c *Checker) registerInterface(d *ast.InterfaceDecl) {
	pop := c.pushParams(d.TypeParams, nil)
	defer pop()

	def := &InterfaceDef{Name: d.Name, Extends: d.Extends, Span: d.Span}
	for _, mth := range d.Methods {
		def.Methods = append(def.Methods, InterfaceMethodDef{
			MethodSig:  c.resolveMethodSig(mth.Name, mth.Params, mth.Return, mth.Span),
			HasDefault: mth.HasDefault,
		})
	}
	c.env.DefineInterface(def)
}

func (c *Checker) registerClass(d *ast.ClassDecl) {
	if primitiveNames[d.Name] != nil || d.Name == "Never" {
		c.report(diag.ReservedTypeName, d.Span, "'%s' is a reserved type name", d.Name)
	}

	pop := c.pushParams(d.TypeParams, d.ConstParams)
	defer pop()

	def := &ClassDef{
		Name:       d.Name,
		Base:       d.Base,
		Interfaces: d.Interfaces,
		TypeParams: d.TypeParams,
		IsValue:    d.IsValue,
		IsPooled:   d.IsPooled,
		// A value class is implicitly sealed: it has no dispatch table
		// for a subclass to extend.
		IsSealed:   d.IsSealed || d.IsValue,
		IsAbstract: d.IsAbstract,
		Span:       d.Span,
	}
	for _, a := range d.BaseArgs {
		def.BaseArgs = append(def.BaseArgs, c.ResolveTypeExpr(a))
	}
	for _, f := range d.Fields {
		def.Fields = append(def.Fields, ClassFieldDef{
			Name:       f.Name,
			Type:       c.ResolveTypeExpr(f.Type),
			Static:     f.Static,
			Visibility: f.Visibility,
			Span:       f.Span,
		})
	}
	for _, mth := range d.Methods {
		def.Methods = append(def.Methods, ClassMethodDef{
			MethodSig:  c.resolveMethodSig(mth.Name, mth.Params, mth.Return, mth.Span),
			Static:     mth.Static,
			Virtual:    mth.Virtual,
			Override:   mth.Override,
			Abstract:   mth.Abstract,
			Final:      mth.Final,
			Visibility: mth.Visibility,
			VTableSlot: -1,
		})
	}
	for _, ctor := range d.Ctors {
		resolved := CtorDef{Visibility: ctor.Visibility, Span: ctor.Span}
		for _, p := range ctor.Params {
			resolved.Params = append(resolved.Params, c.ResolveTypeExpr(p.Type))
			resolved.ParamNames = append(resolved.ParamNames, p.Name)
		}
		def.Ctors = append(def.Ctors, resolved)
	}
	c.env.DefineClass(def)
}

// resolveMethodSig resolves one method signature; the implicit receiver
// is not part of Params.
func (c *Checker) resolveMethodSig(name string, params []ast.Param, ret *ast.TypeExpr, span source.Span) MethodSig {
	sig := MethodSig{Name: name, Result: c.types.Builtins().Unit, Span: span}
	for _, p := range params {
		sig.Params = append(sig.Params, c.ResolveTypeExpr(p.Type))
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}
	if ret != nil {
		sig.Result = c.ResolveTypeExpr(ret)
	}
	return sig
}

func (c *Checker) registerFunc(d *ast.FuncDecl, modulePath string) {
	pop := c.pushParams(d.TypeParams, d.ConstParams)
	defer pop()

	sig := &FuncSig{
		Name:           d.Name,
		Module:         modulePath,
		TypeParams:     d.TypeParams,
		ConstParams:    d.ConstParams,
		Where:          d.Where,
		LifetimeBounds: d.LifetimeBounds,
		Result:         c.types.Builtins().Unit,
		Span:           d.Span,
	}
	for _, p := range d.Params {
		sig.Params = append(sig.Params, c.ResolveTypeExpr(p.Type))
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}
	if d.Return != nil {
		sig.Result = c.ResolveTypeExpr(d.Return)
	}
	c.env.DefineFunc(sig)
}

func (c *Checker) registerConst(d *ast.ConstDecl) {
	def := &ConstDef{Name: d.Name, Decl: d}
	if d.Type != nil {
		def.Type = c.ResolveTypeExpr(d.Type)
	}
	c.env.DefineConst(def)
}

// computeAllClassAttrs derives size/depth/eligibility and builds dispatch
// tables, base classes first. A base cycle is broken here by treating the
// revisited class as a root; the validation pass reports it.
func (c *Checker) computeAllClassAttrs(m *ast.Module) {
	done := make(map[string]bool)
	visiting := make(map[string]bool)
	for _, d := range m.Classes {
		if def, ok := c.env.Class(d.Name); ok {
			c.computeClassAttrs(def, done, visiting)
		}
	}
}

func (c *Checker) computeClassAttrs(def *ClassDef, done, visiting map[string]bool) {
	if done[def.Name] || visiting[def.Name] {
		return
	}
	visiting[def.Name] = true
	defer delete(visiting, def.Name)

	var baseAttrs *layout.ClassAttrs
	var baseDef *ClassDef
	if def.Base != "" {
		if b, ok := c.env.Class(def.Base); ok && !visiting[b.Name] {
			c.computeClassAttrs(b, done, visiting)
			baseDef = b
			baseAttrs = &b.Attrs
		}
	}

	var fields []types.TypeID
	for _, f := range def.Fields {
		if !f.Static {
			fields = append(fields, f.Type)
		}
	}
	def.Attrs = layout.ComputeClassAttrs(c.types, layout.ClassShape{
		Abstract: def.IsAbstract,
		Value:    def.IsValue,
		Sealed:   def.IsSealed,
		Fields:   fields,
	}, baseAttrs)

	def.VTable = c.buildVTable(def, baseDef)
	done[def.Name] = true
}

// buildVTable copies the base table and then, per own method: overrides
// replace the slot of the same name, new virtual or abstract methods
// append a slot. Slot order is therefore stable down the hierarchy.
func (c *Checker) buildVTable(def *ClassDef, base *ClassDef) []VTableSlot {
	var table []VTableSlot
	if base != nil {
		table = append(table, base.VTable...)
	}
	for i := range def.Methods {
		m := &def.Methods[i]
		if m.Static {
			continue
		}
		if m.Override {
			for slot := range table {
				if table[slot].Method == m.Name {
					table[slot].Defining = def.Name
					m.VTableSlot = slot
					break
				}
			}
			continue
		}
		if m.Virtual || m.Abstract {
			m.VTableSlot = len(table)
			table = append(table, VTableSlot{Method: m.Name, Defining: def.Name})
		}
	}
	return table
}
