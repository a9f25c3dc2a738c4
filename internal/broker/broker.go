// Package broker is the entry point for turning class and function names into
// reflections. One Broker serves one analysis run.
package broker

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/phpdoc"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.broker")

// Extensions are consulted in slice order.
type Extensions struct {
	Properties                     []reflection.PropertiesClassReflectionExtension
	Methods                        []reflection.MethodsClassReflectionExtension
	DynamicMethodReturnTypes       []reflection.DynamicMethodReturnTypeExtension
	DynamicStaticMethodReturnTypes []reflection.DynamicStaticMethodReturnTypeExtension
	DynamicFunctionReturnTypes     []reflection.DynamicFunctionReturnTypeExtension
}

// classEntry records a lookup, including one that found nothing.
type classEntry struct {
	found bool
	class *reflection.ClassReflection
}

type Broker struct {
	reflector       *source.Reflector
	functionFactory reflection.FunctionReflectionFactory
	typeMapper      *phpdoc.FileTypeMapper
	extensions      Extensions

	dynamicMethodExtensions       map[string][]reflection.DynamicMethodReturnTypeExtension
	dynamicStaticMethodExtensions map[string][]reflection.DynamicStaticMethodReturnTypeExtension

	classes   map[string]classEntry
	functions map[string]*reflection.FunctionReflection
}

// New wires extensions that need the broker, then indexes the dynamic return
// type extensions by the class they target.
func New(
	reflector *source.Reflector,
	extensions Extensions,
	functionFactory reflection.FunctionReflectionFactory,
	typeMapper *phpdoc.FileTypeMapper,
) *Broker {
	b := &Broker{
		reflector:                     reflector,
		functionFactory:               functionFactory,
		typeMapper:                    typeMapper,
		extensions:                    extensions,
		dynamicMethodExtensions:       make(map[string][]reflection.DynamicMethodReturnTypeExtension),
		dynamicStaticMethodExtensions: make(map[string][]reflection.DynamicStaticMethodReturnTypeExtension),
		classes:                       make(map[string]classEntry),
		functions:                     make(map[string]*reflection.FunctionReflection),
	}

	for _, e := range b.allExtensions() {
		if aware, ok := e.(reflection.BrokerAwareExtension); ok {
			aware.SetBroker(b)
		}
	}

	for _, e := range extensions.DynamicMethodReturnTypes {
		key := classKey(e.Class())
		b.dynamicMethodExtensions[key] = append(b.dynamicMethodExtensions[key], e)
	}
	for _, e := range extensions.DynamicStaticMethodReturnTypes {
		key := classKey(e.Class())
		b.dynamicStaticMethodExtensions[key] = append(b.dynamicStaticMethodExtensions[key], e)
	}
	return b
}

// UpdateSource replaces the declarations of path with those in content,
// typically an unsaved editor buffer.
func (b *Broker) UpdateSource(path string, content []byte) error {
	if err := b.reflector.Update(path, content); err != nil {
		return err
	}
	b.invalidate(path)
	return nil
}

// ReloadFile goes back to the on-disk version of path.
func (b *Broker) ReloadFile(path string) error {
	if err := b.reflector.Reload(path); err != nil {
		return err
	}
	b.invalidate(path)
	return nil
}

// invalidate drops every memoized reflection. Any class may inherit from the
// changed file, so nothing narrower is safe.
func (b *Broker) invalidate(path string) {
	if b.typeMapper != nil {
		b.typeMapper.Forget(path)
	}
	clear(b.classes)
	clear(b.functions)
	for _, e := range b.allExtensions() {
		if resettable, ok := e.(reflection.ResettableExtension); ok {
			resettable.Reset()
		}
	}
}

func (b *Broker) allExtensions() []any {
	var all []any
	for _, e := range b.extensions.Properties {
		all = append(all, e)
	}
	for _, e := range b.extensions.Methods {
		all = append(all, e)
	}
	for _, e := range b.extensions.DynamicMethodReturnTypes {
		all = append(all, e)
	}
	for _, e := range b.extensions.DynamicStaticMethodReturnTypes {
		all = append(all, e)
	}
	for _, e := range b.extensions.DynamicFunctionReturnTypes {
		all = append(all, e)
	}
	return all
}

// Reflector is the source locator the broker reads declarations from.
func (b *Broker) Reflector() *source.Reflector { return b.reflector }

// GetClass returns the reflection of a class, interface, trait or enum.
// Repeated lookups, including failed ones, are answered from memory.
func (b *Broker) GetClass(name string) (*reflection.ClassReflection, error) {
	name = strings.TrimLeft(name, "\\")
	if entry, ok := b.classes[name]; ok {
		if !entry.found {
			return nil, &reflection.ClassNotFoundError{Name: name}
		}
		return entry.class, nil
	}

	native, err := b.reflector.ReflectClass(name)
	if err != nil {
		if !errors.Is(err, source.ErrIdentifierNotFound) {
			logger.Warningf("locate class %s: %v", name, err)
		}
		b.classes[name] = classEntry{}
		return nil, &reflection.ClassNotFoundError{Name: name}
	}

	// the same declaration under every spelling it was asked for
	if entry, ok := b.classes[native.Name]; ok && entry.found {
		b.classes[name] = entry
		return entry.class, nil
	}
	class := b.ClassFromReflection(native, native.Name)
	b.classes[name] = classEntry{found: true, class: class}
	if name != native.Name {
		b.classes[native.Name] = classEntry{found: true, class: class}
	}
	return class, nil
}

func (b *Broker) HasClass(name string) bool {
	_, err := b.GetClass(name)
	return err == nil
}

// ClassFromReflection wraps a located declaration. Every ClassReflection the
// broker hands out is built here so that all share the same extensions.
func (b *Broker) ClassFromReflection(native *source.Class, displayName string) *reflection.ClassReflection {
	return reflection.NewClassReflection(b, b.extensions.Properties, b.extensions.Methods, displayName, native)
}

// AnonymousClass builds the reflection of a `new class {}` expression found
// in file.
func (b *Broker) AnonymousClass(node sitter.Node, file string) (*reflection.ClassReflection, error) {
	native, err := b.reflector.AnonymousClass(node, file)
	if err != nil {
		return nil, fmt.Errorf("anonymous class: %w", err)
	}
	if entry, ok := b.classes[native.Name]; ok && entry.found {
		return entry.class, nil
	}
	class := b.ClassFromReflection(native, native.ShortName())
	b.classes[native.Name] = classEntry{found: true, class: class}
	return class, nil
}

// GetFunction resolves name in scope and returns its reflection. scope may be nil.
func (b *Broker) GetFunction(name reflection.Name, scope reflection.Scope) (*reflection.FunctionReflection, error) {
	resolved, ok := b.ResolveFunctionName(name, scope)
	if !ok {
		return nil, &reflection.FunctionNotFoundError{Name: name.String()}
	}

	key := strings.ToLower(resolved)
	if fn, ok := b.functions[key]; ok {
		return fn, nil
	}

	native, err := b.reflector.ReflectFunction(resolved)
	if err != nil {
		if errors.Is(err, source.ErrIdentifierNotFound) {
			return nil, &reflection.FunctionNotFoundError{Name: name.String()}
		}
		return nil, fmt.Errorf("function %s: %w", resolved, err)
	}
	if b.functionFactory == nil {
		return nil, fmt.Errorf("function %s: no function reflection factory: %w", resolved, reflection.ErrShouldNotHappen)
	}

	var phpDocParameterTypes map[string]types.Type
	var phpDocReturnType types.Type
	if !native.Internal && native.DocComment != "" && b.typeMapper != nil {
		typeMap, err := b.typeMapper.TypeMap(native.FileName, native.Namespace)
		if err != nil {
			logger.Warningf("docblock types of %s: %v", resolved, err)
		} else {
			names := make([]string, 0, len(native.Parameters))
			for _, param := range native.Parameters {
				names = append(names, param.Name)
			}
			phpDocParameterTypes = phpdoc.ParameterTypesFromPhpDoc(typeMap, names, native.DocComment)
			phpDocReturnType = phpdoc.ReturnTypeFromPhpDoc(typeMap, native.DocComment)
		}
	}

	fn := b.functionFactory.Create(native, phpDocParameterTypes, phpDocReturnType)
	b.functions[key] = fn
	return fn, nil
}

func (b *Broker) HasFunction(name reflection.Name, scope reflection.Scope) bool {
	_, ok := b.ResolveFunctionName(name, scope)
	return ok
}

// ResolveFunctionName tries the scope's namespace before the global one.
func (b *Broker) ResolveFunctionName(name reflection.Name, scope reflection.Scope) (string, bool) {
	return resolveName(name, scope, b.reflector.FunctionExists)
}

func (b *Broker) HasConstant(name reflection.Name, scope reflection.Scope) bool {
	_, ok, err := b.ResolveConstantName(name, scope)
	return err == nil && ok
}

// ResolveConstantName tries the scope's namespace before the global one.
// Constants are always resolved from some scope, so a nil scope is an error.
func (b *Broker) ResolveConstantName(name reflection.Name, scope reflection.Scope) (string, bool, error) {
	if scope == nil {
		return "", false, fmt.Errorf("resolve constant %s without a scope: %w", name, reflection.ErrShouldNotHappen)
	}
	resolved, ok := resolveName(name, scope, b.reflector.ConstantExists)
	return resolved, ok, nil
}

func resolveName(name reflection.Name, scope reflection.Scope, exists func(string) bool) (string, bool) {
	if scope != nil && scope.Namespace() != "" && !name.FullyQualified {
		namespaced := scope.Namespace() + "\\" + name.Parts
		if exists(namespaced) {
			return namespaced, true
		}
	}
	if exists(name.Parts) {
		return name.Parts, true
	}
	return "", false
}

// DynamicMethodReturnTypeExtensionsForClass collects the extensions registered
// for the class, its ancestors and its interfaces, in that order.
func (b *Broker) DynamicMethodReturnTypeExtensionsForClass(name string) ([]reflection.DynamicMethodReturnTypeExtension, error) {
	return extensionsForClass(b, b.dynamicMethodExtensions, name)
}

func (b *Broker) DynamicStaticMethodReturnTypeExtensionsForClass(name string) ([]reflection.DynamicStaticMethodReturnTypeExtension, error) {
	return extensionsForClass(b, b.dynamicStaticMethodExtensions, name)
}

func (b *Broker) DynamicFunctionReturnTypeExtensions() []reflection.DynamicFunctionReturnTypeExtension {
	return b.extensions.DynamicFunctionReturnTypes
}

func extensionsForClass[T any](b *Broker, index map[string][]T, name string) ([]T, error) {
	class, err := b.GetClass(name)
	if err != nil {
		return nil, err
	}
	names := append([]string{class.Name()}, class.ParentClassesNames()...)
	names = append(names, class.InterfaceNames()...)

	var found []T
	for _, n := range names {
		found = append(found, index[classKey(n)]...)
	}
	return found, nil
}

func classKey(name string) string {
	return strings.ToLower(strings.TrimLeft(name, "\\"))
}
