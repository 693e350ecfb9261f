package llvm

import (
	"fmt"

	"tml/internal/layout"
	"tml/internal/mir"
)

func (fe *funcEmitter) structLayout(name string) *mir.StructLayout {
	for i := range fe.emitter.mod.Structs {
		if fe.emitter.mod.Structs[i].Name == name {
			return &fe.emitter.mod.Structs[i]
		}
	}
	return nil
}

// emitStructInit lowers a struct or class construction. Class instances
// are built through an addressable slot, with the dispatch-table pointer
// in the leading field; plain value aggregates build up through an
// insert chain.
func (fe *funcEmitter) emitStructInit(instr *mir.Instr) error {
	in := fe.in()
	sl := fe.structLayout(instr.StructInit.TypeName)
	structTy := "%struct." + instr.StructInit.TypeName

	if sl != nil && sl.Class {
		slot := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, structTy)
		vtSlot := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 0\n", vtSlot, structTy, slot)
		fmt.Fprintf(fe.buf(), "  store ptr @vt.%s, ptr %s\n", instr.StructInit.TypeName, vtSlot)
		for i, fv := range instr.StructInit.Fields {
			fieldTy, err := llvmValueType(in, fe.typeOf(fv))
			if err != nil {
				return err
			}
			fp := fe.nextTemp()
			fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 %d\n", fp, structTy, slot, i+1)
			fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", fieldTy, fe.value(fv), fp)
		}
		fe.bind(instr.Result, slot, instr.Type)
		return nil
	}

	if len(instr.StructInit.Fields) == 0 {
		// Empty aggregates carry one padding slot; a single insert keeps
		// the value well-formed.
		tmp := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = insertvalue %s undef, i32 0, 0\n", tmp, structTy)
		fe.bind(instr.Result, tmp, instr.Type)
		return nil
	}

	cur := "undef"
	for i, fv := range instr.StructInit.Fields {
		fieldTy, err := llvmValueType(in, fe.typeOf(fv))
		if err != nil {
			return err
		}
		tmp := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = insertvalue %s %s, %s %s, %d\n", tmp, structTy, cur, fieldTy, fe.value(fv), i)
		cur = tmp
	}
	fe.bind(instr.Result, cur, instr.Type)
	return nil
}

// emitTupleInit builds a tuple through an addressable slot and loads the
// finished value back out.
func (fe *funcEmitter) emitTupleInit(instr *mir.Instr) error {
	in := fe.in()
	tupleTy, err := llvmValueType(in, instr.Type)
	if err != nil {
		return err
	}
	slot := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, tupleTy)
	for i, ev := range instr.TupleInit.Elems {
		elemTy, err := llvmValueType(in, fe.typeOf(ev))
		if err != nil {
			return err
		}
		ep := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 %d\n", ep, tupleTy, slot, i)
		fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", elemTy, fe.value(ev), ep)
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, tupleTy, slot)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

// emitArrayInit lowers a fixed-size array. All-zero element lists and
// large zero-repeat forms collapse into a single zero-fill store instead
// of per-element writes.
func (fe *funcEmitter) emitArrayInit(instr *mir.Instr) error {
	in := fe.in()
	arrTy, err := llvmValueType(in, instr.Type)
	if err != nil {
		return err
	}
	tt, ok := in.Lookup(in.Resolve(instr.Type))
	if !ok {
		return fmt.Errorf("array initializer with non-array type")
	}
	count := int(tt.Count)

	slot := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = alloca %s, align 16\n", slot, arrTy)

	if fe.arrayInitIsZero(&instr.ArrayInit) {
		fmt.Fprintf(fe.buf(), "  store %s zeroinitializer, ptr %s, align 16\n", arrTy, slot)
		tmp := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, arrTy, slot)
		fe.bind(instr.Result, tmp, instr.Type)
		return nil
	}

	elemTy, err := llvmValueType(in, tt.Elem)
	if err != nil {
		return err
	}
	store := func(index int, value mir.ValueID) {
		ep := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 %d\n", ep, arrTy, slot, index)
		fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", elemTy, fe.value(value), ep)
	}
	if instr.ArrayInit.Repeat && len(instr.ArrayInit.Elems) == 1 {
		for i := 0; i < count; i++ {
			store(i, instr.ArrayInit.Elems[0])
		}
	} else {
		for i, ev := range instr.ArrayInit.Elems {
			store(i, ev)
		}
	}
	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, arrTy, slot)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}

// arrayInitIsZero reports whether the initializer fills the array with
// constant zeros: a zero repeat element, or a list whose every element
// is a zero constant.
func (fe *funcEmitter) arrayInitIsZero(init *mir.ArrayInitInstr) bool {
	isZero := func(id mir.ValueID) bool {
		v, ok := fe.intConsts[id]
		return ok && v == 0
	}
	if init.Repeat && len(init.Elems) == 1 {
		return isZero(init.Elems[0])
	}
	if len(init.Elems) == 0 {
		return true
	}
	for _, ev := range init.Elems {
		if !isZero(ev) {
			return false
		}
	}
	return true
}

// emitEnumInit builds an enum value: tag in the discriminant slot,
// payload values packed into the payload region at their running byte
// offsets.
func (fe *funcEmitter) emitEnumInit(instr *mir.Instr) error {
	in := fe.in()
	name := enumTypeName(in, instr.EnumInit.EnumName, instr.EnumInit.TypeArgs)
	enumTy := "%struct." + name

	slot := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = alloca %s\n", slot, enumTy)
	tagPtr := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 0\n", tagPtr, enumTy, slot)
	fmt.Fprintf(fe.buf(), "  store i32 %d, ptr %s\n", instr.EnumInit.Tag, tagPtr)

	if len(instr.EnumInit.Payload) > 0 {
		payloadPtr := fe.nextTemp()
		fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds %s, ptr %s, i32 0, i32 1\n", payloadPtr, enumTy, slot)
		offset := 0
		for _, pv := range instr.EnumInit.Payload {
			pvTy := fe.typeOf(pv)
			ty, err := llvmValueType(in, pvTy)
			if err != nil {
				return err
			}
			dst := payloadPtr
			if offset > 0 {
				dst = fe.nextTemp()
				fmt.Fprintf(fe.buf(), "  %s = getelementptr inbounds i8, ptr %s, i64 %d\n", dst, payloadPtr, offset)
			}
			fmt.Fprintf(fe.buf(), "  store %s %s, ptr %s\n", ty, fe.value(pv), dst)
			offset += layout.EstimateSize(in, pvTy)
		}
	}

	tmp := fe.nextTemp()
	fmt.Fprintf(fe.buf(), "  %s = load %s, ptr %s\n", tmp, enumTy, slot)
	fe.bind(instr.Result, tmp, instr.Type)
	return nil
}
