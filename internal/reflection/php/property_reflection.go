package php

import (
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
)

type PropertyReflection struct {
	declaring *reflection.ClassReflection
	typ       types.Type
	native    *source.Property
}

func NewPropertyReflection(declaring *reflection.ClassReflection, typ types.Type, native *source.Property) *PropertyReflection {
	return &PropertyReflection{declaring: declaring, typ: typ, native: native}
}

func (p *PropertyReflection) DeclaringClass() *reflection.ClassReflection { return p.declaring }
func (p *PropertyReflection) Native() *source.Property                    { return p.native }
func (p *PropertyReflection) IsStatic() bool                              { return p.native.Static }
func (p *PropertyReflection) IsPrivate() bool                             { return p.native.IsPrivate() }
func (p *PropertyReflection) IsPublic() bool                              { return p.native.IsPublic() }
func (p *PropertyReflection) Type() types.Type                            { return p.typ }
