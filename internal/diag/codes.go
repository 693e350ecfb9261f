package diag

import (
	"fmt"
)

// Code is the stable short identifier of a diagnostic, rendered as "Tnnn".
// The numeric ranges group codes by area: 0xx general type errors,
// 2x/3x expression checking, 4x/6x OOP validation.
type Code uint16

const (
	// UnknownCode marks diagnostics without an assigned code.
	UnknownCode Code = 0

	// General type checking.
	TypeMismatch       Code = 1
	UnresolvedName     Code = 2
	NotCallable        Code = 3
	ParamCountMismatch Code = 4
	UnknownField       Code = 9
	ReturnTypeMismatch Code = 16

	// Generics and behaviors.
	BehaviorNotSatisfied Code = 26
	ConstEvalDivByZero   Code = 30
	VariantArgMismatch   Code = 34
	UnresolvedTypeParam  Code = 37

	// Class and interface validation.
	ReservedTypeName      Code = 38
	CircularInheritance   Code = 39
	PooledNeedsValue      Code = 40
	SealedBaseExtended    Code = 41
	ValueVirtualMethod    Code = 42
	ValueAbstractClass    Code = 43
	PooledAbstractClass   Code = 44
	AbstractNotImpl       Code = 45
	BaseClassNotFound     Code = 46
	InterfaceNotFound     Code = 47
	VisibilityViolation   Code = 48
	ValueBaseMismatch     Code = 49
	LifetimeBoundNotMet   Code = 54
	ParamTypeMismatch     Code = 58
	OverrideTargetMissing Code = 63
	OverrideNonVirtual    Code = 64
	OverrideSigMismatch   Code = 65
)

func (c Code) String() string {
	return fmt.Sprintf("T%03d", uint16(c))
}
