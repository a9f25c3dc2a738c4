package php

import (
	"fmt"

	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
)

// MethodReflection is a declared method with docblock types merged into its
// native signature.
type MethodReflection struct {
	declaring            *reflection.ClassReflection
	native               *source.Method
	finder               *parser.FunctionCallStatementFinder
	cache                cache.Cache
	phpDocParameterTypes map[string]types.Type
	phpDocReturnType     types.Type

	parameters []reflection.ParameterReflection
	returnType types.Type
}

// MethodReflectionFactory shares the call finder and cache between methods.
type MethodReflectionFactory struct {
	finder *parser.FunctionCallStatementFinder
	cache  cache.Cache
}

func NewMethodReflectionFactory(finder *parser.FunctionCallStatementFinder, c cache.Cache) *MethodReflectionFactory {
	return &MethodReflectionFactory{finder: finder, cache: c}
}

func (f *MethodReflectionFactory) Create(
	declaring *reflection.ClassReflection,
	native *source.Method,
	phpDocParameterTypes map[string]types.Type,
	phpDocReturnType types.Type,
) *MethodReflection {
	return &MethodReflection{
		declaring:            declaring,
		native:               native,
		finder:               f.finder,
		cache:                f.cache,
		phpDocParameterTypes: phpDocParameterTypes,
		phpDocReturnType:     phpDocReturnType,
	}
}

func (m *MethodReflection) DeclaringClass() *reflection.ClassReflection { return m.declaring }
func (m *MethodReflection) Native() *source.Method                      { return m.native }
func (m *MethodReflection) Name() string                                { return m.native.Name }
func (m *MethodReflection) IsStatic() bool                              { return m.native.Static }
func (m *MethodReflection) IsPrivate() bool                             { return m.native.IsPrivate() }
func (m *MethodReflection) IsPublic() bool                              { return m.native.IsPublic() }
func (m *MethodReflection) DocComment() string                          { return m.native.DocComment }

func (m *MethodReflection) Parameters() []reflection.ParameterReflection {
	if m.parameters != nil {
		return m.parameters
	}
	params := make([]reflection.ParameterReflection, 0, len(m.native.Parameters))
	for _, native := range m.native.Parameters {
		params = append(params, reflection.NewPhpParameterReflection(native, m.phpDocParameterTypes[native.Name]))
	}
	m.parameters = params
	return params
}

// IsVariadic also reports methods that read their arguments through
// func_get_args() and friends.
func (m *MethodReflection) IsVariadic() bool {
	if m.native.IsVariadic() || m.declaring.IsInternal() {
		return m.native.IsVariadic()
	}
	key := fmt.Sprintf("variadic-method-%s-%s-v0", m.declaring.Name(), m.native.Name)
	return reflection.DetectVariadicByBody(m.cache, m.finder, key, m.native.Body)
}

func (m *MethodReflection) ReturnType() types.Type {
	if m.returnType == nil {
		m.returnType = types.DecideType(m.native.ReturnType, m.phpDocReturnType)
	}
	return m.returnType
}
