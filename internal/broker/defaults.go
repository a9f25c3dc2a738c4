package broker

import (
	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/phpdoc"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/reflection/annotations"
	"github.com/shinyvision/phpreflect/internal/reflection/php"
	"github.com/shinyvision/phpreflect/internal/source"
)

// NewDefault builds a broker with the native member extension first and the
// `@method` extension after it, followed by any extra extensions.
func NewDefault(reflector *source.Reflector, store *source.Store, c cache.Cache, extra Extensions) *Broker {
	finder := parser.NewFunctionCallStatementFinder()
	typeMapper := phpdoc.NewFileTypeMapper(store)

	native := php.NewClassReflectionExtension(php.NewMethodReflectionFactory(finder, c), typeMapper)
	extensions := Extensions{
		Properties: append([]reflection.PropertiesClassReflectionExtension{native}, extra.Properties...),
		Methods: append([]reflection.MethodsClassReflectionExtension{
			native,
			annotations.NewMethodsClassReflectionExtension(typeMapper),
		}, extra.Methods...),
		DynamicMethodReturnTypes:       extra.DynamicMethodReturnTypes,
		DynamicStaticMethodReturnTypes: extra.DynamicStaticMethodReturnTypes,
		DynamicFunctionReturnTypes:     extra.DynamicFunctionReturnTypes,
	}
	return New(reflector, extensions, reflection.NewFunctionReflectionFactory(finder, c), typeMapper)
}

// TypeMapper exposes the docblock type dictionary the broker reads.
func (b *Broker) TypeMapper() *phpdoc.FileTypeMapper { return b.typeMapper }
