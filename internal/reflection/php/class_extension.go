// Package php supplies the members a class declares natively, with types
// taken from their docblocks where the declaration allows.
package php

import (
	"strings"

	"github.com/shinyvision/phpreflect/internal/phpdoc"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.reflection.php")

const closureClass = "Closure"

// ClassReflectionExtension provides native properties and methods. Members
// are built once per class and keyed by name.
type ClassReflectionExtension struct {
	methodFactory *MethodReflectionFactory
	typeMapper    *phpdoc.FileTypeMapper
	broker        reflection.Broker

	properties map[string]map[string]reflection.PropertyReflection
	methods    map[string]map[string]reflection.MethodReflection
}

func NewClassReflectionExtension(methodFactory *MethodReflectionFactory, typeMapper *phpdoc.FileTypeMapper) *ClassReflectionExtension {
	return &ClassReflectionExtension{
		methodFactory: methodFactory,
		typeMapper:    typeMapper,
		properties:    make(map[string]map[string]reflection.PropertyReflection),
		methods:       make(map[string]map[string]reflection.MethodReflection),
	}
}

func (e *ClassReflectionExtension) SetBroker(broker reflection.Broker) {
	e.broker = broker
}

func (e *ClassReflectionExtension) Reset() {
	clear(e.properties)
	clear(e.methods)
}

func (e *ClassReflectionExtension) HasProperty(class *reflection.ClassReflection, name string) bool {
	return class.HasNativeProperty(name)
}

func (e *ClassReflectionExtension) GetProperty(class *reflection.ClassReflection, name string) (reflection.PropertyReflection, error) {
	properties, ok := e.properties[class.Name()]
	if !ok {
		properties = e.createProperties(class)
		e.properties[class.Name()] = properties
	}
	property, ok := properties[name]
	if !ok {
		return nil, &reflection.MissingPropertyFromReflectionError{Class: class.Name(), Property: name}
	}
	return property, nil
}

func (e *ClassReflectionExtension) createProperties(class *reflection.ClassReflection) map[string]reflection.PropertyReflection {
	properties := make(map[string]reflection.PropertyReflection)
	for _, native := range class.NativeProperties() {
		declaring := e.declaringClass(class, native.DeclaringClass())

		var phpDocType types.Type
		if native.DocComment != "" && !declaring.IsInternal() {
			owner := native.DeclaringClass()
			block := phpdoc.ResolveForProperty(e.broker, phpdoc.Block{
				DocComment: native.DocComment,
				File:       owner.FileName,
				Namespace:  owner.Namespace(),
				Class:      declaring.Name(),
			}, native.Name)
			if typeString, ok := phpdoc.PropertyTypeString(block.DocComment); ok {
				if typeMap, err := e.typeMapper.BlockTypeMap(e.broker, block); err != nil {
					logger.Warningf("property %s::$%s: %v", declaring.Name(), native.Name, err)
				} else if t, ok := typeMap.Lookup(typeString); ok {
					phpDocType = t
				}
			}
		}

		properties[native.Name] = NewPropertyReflection(declaring, types.DecideType(native.Type, phpDocType), native)
	}
	return properties
}

func (e *ClassReflectionExtension) HasMethod(class *reflection.ClassReflection, name string) bool {
	_, ok := e.findMethod(class, name)
	return ok
}

func (e *ClassReflectionExtension) GetMethod(class *reflection.ClassReflection, name string) (reflection.MethodReflection, error) {
	method, ok := e.findMethod(class, name)
	if !ok {
		return nil, &reflection.MissingMethodFromReflectionError{Class: class.Name(), Method: name}
	}
	return method, nil
}

func (e *ClassReflectionExtension) findMethod(class *reflection.ClassReflection, name string) (reflection.MethodReflection, bool) {
	methods, ok := e.methods[class.Name()]
	if !ok {
		methods = e.createMethods(class)
		e.methods[class.Name()] = methods
	}
	return reflection.FindMember(methods, name)
}

func (e *ClassReflectionExtension) createMethods(class *reflection.ClassReflection) map[string]reflection.MethodReflection {
	natives := class.NativeMethods()
	if strings.EqualFold(class.Name(), closureClass) || class.IsSubclassOf(closureClass) {
		if !class.HasNativeMethod("__invoke") {
			invoke := class.Native().SyntheticMethod("__invoke", []*source.Parameter{
				{Name: "args", Variadic: true},
			}, types.MixedType{})
			natives = append(natives[:len(natives):len(natives)], invoke)
		}
	}

	methods := make(map[string]reflection.MethodReflection, len(natives))
	for _, native := range natives {
		declaring := e.declaringClass(class, native.DeclaringClass())

		var phpDocParameterTypes map[string]types.Type
		var phpDocReturnType types.Type
		if native.DocComment != "" && !declaring.IsInternal() {
			origin := native.OriginClass()
			block := phpdoc.ResolveForMethod(e.broker, phpdoc.Block{
				DocComment: native.DocComment,
				File:       origin.FileName,
				Namespace:  origin.Namespace(),
				Class:      declaring.Name(),
			}, native.Name)
			typeMap, err := e.typeMapper.BlockTypeMap(e.broker, block)
			if err != nil {
				logger.Warningf("method %s::%s: %v", declaring.Name(), native.Name, err)
			} else {
				names := make([]string, 0, len(native.Parameters))
				for _, param := range native.Parameters {
					names = append(names, param.Name)
				}
				phpDocParameterTypes = phpdoc.ParameterTypesFromPhpDoc(typeMap, names, block.DocComment)
				phpDocReturnType = phpdoc.ReturnTypeFromPhpDoc(typeMap, block.DocComment)
			}
		}

		methods[native.Name] = e.methodFactory.Create(declaring, native, phpDocParameterTypes, phpDocReturnType)
	}

	for alias, target := range class.TraitAliases() {
		_, original, _ := strings.Cut(target, "::")
		if method, ok := reflection.FindMember(methods, original); ok {
			methods[alias] = method
		}
	}
	return methods
}

func (e *ClassReflectionExtension) declaringClass(class *reflection.ClassReflection, native *source.Class) *reflection.ClassReflection {
	if native == nil || strings.EqualFold(native.Name, class.Name()) {
		return class
	}
	declaring, err := e.broker.GetClass(native.Name)
	if err != nil {
		logger.Warningf("declaring class %s of a member of %s: %v", native.Name, class.Name(), err)
		return class
	}
	return declaring
}
