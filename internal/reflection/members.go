package reflection

import (
	"github.com/shinyvision/phpreflect/internal/types"
)

type ClassMemberReflection interface {
	DeclaringClass() *ClassReflection
	IsStatic() bool
	IsPrivate() bool
	IsPublic() bool
}

type ParameterReflection interface {
	Name() string
	IsOptional() bool
	Type() types.Type
	IsPassedByReference() bool
	IsVariadic() bool
}

// ParametersAcceptor is anything that can be called.
type ParametersAcceptor interface {
	Name() string
	Parameters() []ParameterReflection
	IsVariadic() bool
	ReturnType() types.Type
}

type MethodReflection interface {
	ClassMemberReflection
	ParametersAcceptor
}

type PropertyReflection interface {
	ClassMemberReflection
	Type() types.Type
}
