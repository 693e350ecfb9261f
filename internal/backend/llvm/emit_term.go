package llvm

import (
	"fmt"
	"strings"

	"tml/internal/mir"
)

func (fe *funcEmitter) emitTerminator(term *mir.Terminator, sret bool) error {
	in := fe.in()
	switch term.Kind {
	case mir.TermReturn:
		if !term.Return.HasValue {
			fe.buf().WriteString("  ret void\n")
			return nil
		}
		if sret {
			valTy, err := llvmValueType(in, fe.typeOf(term.Return.Value))
			if err != nil {
				return err
			}
			fmt.Fprintf(fe.buf(), "  store %s %s, ptr %%sret\n", valTy, fe.value(term.Return.Value))
			fe.buf().WriteString("  ret void\n")
			return nil
		}
		retTy, err := llvmType(in, fe.f.Result)
		if err != nil {
			return err
		}
		if retTy == "void" {
			fe.buf().WriteString("  ret void\n")
			return nil
		}
		fmt.Fprintf(fe.buf(), "  ret %s %s\n", retTy, fe.value(term.Return.Value))
		return nil

	case mir.TermBr:
		fmt.Fprintf(fe.buf(), "  br label %%%s\n", fe.label(term.Br.Target))
		return nil

	case mir.TermCondBr:
		fmt.Fprintf(fe.buf(), "  br i1 %s, label %%%s, label %%%s\n",
			fe.value(term.CondBr.Cond), fe.label(term.CondBr.Then), fe.label(term.CondBr.Else))
		return nil

	case mir.TermSwitch:
		scrutTy, err := llvmValueType(in, fe.typeOf(term.Switch.Value))
		if err != nil {
			return err
		}
		arms := make([]string, 0, len(term.Switch.Cases))
		for _, cs := range term.Switch.Cases {
			arms = append(arms, fmt.Sprintf("%s %d, label %%%s", scrutTy, cs.Value, fe.label(cs.Target)))
		}
		fmt.Fprintf(fe.buf(), "  switch %s %s, label %%%s [ %s ]\n",
			scrutTy, fe.value(term.Switch.Value), fe.label(term.Switch.Default), strings.Join(arms, " "))
		return nil

	case mir.TermUnreachable, mir.TermNone:
		// Unterminated blocks should not survive validation; emit an
		// explicit trap point rather than fall off the block.
		fe.buf().WriteString("  unreachable\n")
		return nil
	}
	return fmt.Errorf("unsupported terminator kind %d", term.Kind)
}
