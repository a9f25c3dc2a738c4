package annotations

import (
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/types"
)

// Method is a method that only exists as a `@method` tag.
type Method struct {
	name       string
	declaring  *reflection.ClassReflection
	returnType types.Type
	parameters []reflection.ParameterReflection
	static     bool
	variadic   bool
}

func (m *Method) DeclaringClass() *reflection.ClassReflection  { return m.declaring }
func (m *Method) Name() string                                 { return m.name }
func (m *Method) IsStatic() bool                               { return m.static }
func (m *Method) IsPrivate() bool                              { return false }
func (m *Method) IsPublic() bool                               { return true }
func (m *Method) IsVariadic() bool                             { return m.variadic }
func (m *Method) ReturnType() types.Type                       { return m.returnType }
func (m *Method) Parameters() []reflection.ParameterReflection { return m.parameters }

// Parameter is a parameter written inside a `@method` tag.
type Parameter struct {
	name        string
	typ         types.Type
	byReference bool
	optional    bool
	variadic    bool
}

func (p *Parameter) Name() string              { return p.name }
func (p *Parameter) Type() types.Type          { return p.typ }
func (p *Parameter) IsPassedByReference() bool { return p.byReference }
func (p *Parameter) IsOptional() bool          { return p.optional }
func (p *Parameter) IsVariadic() bool          { return p.variadic }
