package modfile

import (
	"golang.org/x/text/unicode/norm"

	"tml/internal/ast"
)

// NormalizeModule rewrites every identifier in the tree to NFC so that
// visually identical names interned from different producers compare
// equal. Literal text is left untouched.
func NormalizeModule(m *ast.Module) {
	if m == nil {
		return
	}
	normStr(&m.Name)
	for i := range m.Imports {
		normStr(&m.Imports[i])
	}
	for _, d := range m.Structs {
		normStr(&d.Name)
		normNames(d.TypeParams)
		normConstParams(d.ConstParams)
		for i := range d.Fields {
			normStr(&d.Fields[i].Name)
			normTypeExpr(d.Fields[i].Type)
		}
	}
	for _, d := range m.Enums {
		normStr(&d.Name)
		normNames(d.TypeParams)
		for i := range d.Variants {
			normStr(&d.Variants[i].Name)
			for _, p := range d.Variants[i].Payload {
				normTypeExpr(p)
			}
		}
	}
	for _, d := range m.Behaviors {
		normStr(&d.Name)
		normNames(d.TypeParams)
		for i := range d.Methods {
			normStr(&d.Methods[i].Name)
			normParams(d.Methods[i].Params)
			normTypeExpr(d.Methods[i].Return)
		}
	}
	for _, d := range m.Interfaces {
		normStr(&d.Name)
		normNames(d.TypeParams)
		normNames(d.Extends)
		for i := range d.Methods {
			normStr(&d.Methods[i].Name)
			normParams(d.Methods[i].Params)
			normTypeExpr(d.Methods[i].Return)
		}
	}
	for _, d := range m.Classes {
		normStr(&d.Name)
		normNames(d.TypeParams)
		normConstParams(d.ConstParams)
		normStr(&d.Base)
		for _, a := range d.BaseArgs {
			normTypeExpr(a)
		}
		normNames(d.Interfaces)
		for i := range d.Fields {
			normStr(&d.Fields[i].Name)
			normTypeExpr(d.Fields[i].Type)
		}
		for i := range d.Methods {
			normStr(&d.Methods[i].Name)
			normParams(d.Methods[i].Params)
			normTypeExpr(d.Methods[i].Return)
		}
		for i := range d.Ctors {
			normParams(d.Ctors[i].Params)
		}
	}
	for _, d := range m.Funcs {
		normStr(&d.Name)
		normNames(d.TypeParams)
		normConstParams(d.ConstParams)
		normParams(d.Params)
		normTypeExpr(d.Return)
		for i := range d.Where {
			normStr(&d.Where[i].TypeParam)
			normNames(d.Where[i].Behaviors)
			for j := range d.Where[i].ParamBounds {
				normStr(&d.Where[i].ParamBounds[j].Behavior)
				for _, a := range d.Where[i].ParamBounds[j].Args {
					normTypeExpr(a)
				}
			}
		}
		normStrKeys(d.LifetimeBounds)
	}
	for _, d := range m.Consts {
		normStr(&d.Name)
		normTypeExpr(d.Type)
		normExpr(d.Value)
	}
}

func normStr(s *string) {
	if *s != "" && !norm.NFC.IsNormalString(*s) {
		*s = norm.NFC.String(*s)
	}
}

// normStrKeys rewrites every map key into its NFC form, merging entries
// only in the degenerate case where two raw keys normalize identically.
func normStrKeys(m map[string]string) {
	for k, v := range m {
		nk := k
		normStr(&nk)
		if nk != k {
			delete(m, k)
			m[nk] = v
		}
	}
}

func normNames(names []string) {
	for i := range names {
		normStr(&names[i])
	}
}

func normParams(params []ast.Param) {
	for i := range params {
		normStr(&params[i].Name)
		normTypeExpr(params[i].Type)
	}
}

func normConstParams(params []ast.ConstParam) {
	for i := range params {
		normStr(&params[i].Name)
		normTypeExpr(params[i].Type)
	}
}

func normTypeExpr(t *ast.TypeExpr) {
	if t == nil {
		return
	}
	normStr(&t.Name)
	normStr(&t.Module)
	for _, a := range t.Args {
		normTypeExpr(a)
	}
	normTypeExpr(t.Elem)
	normExpr(t.Size)
	for _, e := range t.Elems {
		normTypeExpr(e)
	}
	for _, p := range t.Params {
		normTypeExpr(p)
	}
	normTypeExpr(t.Result)
}

func normExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprIdent:
		normStr(&e.Ident.Name)
	case ast.ExprUnary:
		normExpr(e.Unary.Operand)
	case ast.ExprBinary:
		normExpr(e.Binary.Left)
		normExpr(e.Binary.Right)
	case ast.ExprCall:
		normExpr(e.Call.Callee)
		for i := range e.Call.Generics {
			normTypeExpr(e.Call.Generics[i].Type)
			normExpr(e.Call.Generics[i].Const)
		}
		for _, a := range e.Call.Args {
			normExpr(a)
		}
	case ast.ExprPath:
		normNames(e.Path.Segments)
		for i := range e.Path.Generics {
			normTypeExpr(e.Path.Generics[i].Type)
			normExpr(e.Path.Generics[i].Const)
		}
	case ast.ExprMember:
		normExpr(e.Member.Object)
		normStr(&e.Member.Name)
	case ast.ExprIndex:
		normExpr(e.Index.Object)
		normExpr(e.Index.Index)
	}
}
