package reflection

import (
	"strings"

	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
)

// PhpParameterReflection is a declared parameter with its docblock type.
type PhpParameterReflection struct {
	native     *source.Parameter
	phpDocType types.Type
	typ        types.Type
}

func NewPhpParameterReflection(native *source.Parameter, phpDocType types.Type) *PhpParameterReflection {
	return &PhpParameterReflection{native: native, phpDocType: phpDocType}
}

func (p *PhpParameterReflection) Name() string              { return p.native.Name }
func (p *PhpParameterReflection) IsOptional() bool          { return p.native.IsOptional() }
func (p *PhpParameterReflection) IsPassedByReference() bool { return p.native.ByReference }
func (p *PhpParameterReflection) IsVariadic() bool          { return p.native.Variadic }

// Type reconciles the native and docblock types. A `= null` default makes
// the docblock type nullable, and a variadic parameter receives an array.
func (p *PhpParameterReflection) Type() types.Type {
	if p.typ != nil {
		return p.typ
	}
	phpDocType := p.phpDocType
	if phpDocType != nil && p.native.HasDefault && strings.EqualFold(p.native.DefaultValue, "null") {
		phpDocType = types.AddNull(phpDocType)
	}
	t := types.DecideType(p.native.Type, phpDocType)
	if p.native.Variadic {
		t = types.ArrayType{ItemType: t}
	}
	p.typ = t
	return t
}

// DummyParameter stands in for a parameter the native signature lacks.
type DummyParameter struct {
	name     string
	typ      types.Type
	optional bool
}

func NewDummyParameter(name string, typ types.Type, optional bool) *DummyParameter {
	return &DummyParameter{name: name, typ: typ, optional: optional}
}

func (p *DummyParameter) Name() string              { return p.name }
func (p *DummyParameter) IsOptional() bool          { return p.optional }
func (p *DummyParameter) Type() types.Type          { return p.typ }
func (p *DummyParameter) IsPassedByReference() bool { return false }
func (p *DummyParameter) IsVariadic() bool          { return false }
