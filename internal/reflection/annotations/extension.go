// Package annotations supplies methods declared with `@method` tags in class
// docblocks.
package annotations

import (
	"maps"
	"strings"

	"github.com/shinyvision/phpreflect/internal/phpdoc"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/types"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.reflection.annotations")

// MethodsClassReflectionExtension reads `@method` tags of a class, its traits,
// its ancestors and its interfaces.
type MethodsClassReflectionExtension struct {
	typeMapper *phpdoc.FileTypeMapper
	methods    map[string]map[string]reflection.MethodReflection
}

func NewMethodsClassReflectionExtension(typeMapper *phpdoc.FileTypeMapper) *MethodsClassReflectionExtension {
	return &MethodsClassReflectionExtension{
		typeMapper: typeMapper,
		methods:    make(map[string]map[string]reflection.MethodReflection),
	}
}

func (e *MethodsClassReflectionExtension) Reset() { clear(e.methods) }

func (e *MethodsClassReflectionExtension) HasMethod(class *reflection.ClassReflection, name string) bool {
	_, ok := e.findMethod(class, name)
	return ok
}

func (e *MethodsClassReflectionExtension) GetMethod(class *reflection.ClassReflection, name string) (reflection.MethodReflection, error) {
	method, ok := e.findMethod(class, name)
	if !ok {
		return nil, &reflection.MissingMethodFromReflectionError{Class: class.Name(), Method: name}
	}
	return method, nil
}

func (e *MethodsClassReflectionExtension) findMethod(class *reflection.ClassReflection, name string) (reflection.MethodReflection, bool) {
	methods, ok := e.methods[class.Name()]
	if !ok {
		methods = e.createMethods(class, class, map[string]bool{})
		e.methods[class.Name()] = methods
	}
	return reflection.FindMember(methods, name)
}

// createMethods collects inherited tags first; the class's own tags replace
// inherited ones of the same name. visiting guards against classes that
// reach themselves through traits or ancestors.
func (e *MethodsClassReflectionExtension) createMethods(class, declaring *reflection.ClassReflection, visiting map[string]bool) map[string]reflection.MethodReflection {
	methods := make(map[string]reflection.MethodReflection)
	key := strings.ToLower(class.Name())
	if visiting[key] {
		return methods
	}
	visiting[key] = true
	defer delete(visiting, key)

	inherit := func(from map[string]reflection.MethodReflection) {
		for name, method := range from {
			if _, ok := methods[name]; !ok {
				methods[name] = method
			}
		}
	}
	for _, trait := range class.Traits() {
		inherit(e.createMethods(trait, class, visiting))
	}
	for _, parent := range class.Parents() {
		inherit(e.createMethods(parent, parent, visiting))
		for _, trait := range parent.Traits() {
			inherit(e.createMethods(trait, parent, visiting))
		}
	}
	for _, iface := range class.Interfaces() {
		inherit(e.createMethods(iface, iface, visiting))
	}

	if class.IsInternal() {
		return methods
	}
	docComment, ok := class.DocComment()
	if !ok {
		return methods
	}
	tags := parseMethodTags(docComment)
	if len(tags) == 0 {
		return methods
	}

	file, _ := class.FileName()
	typeMap, err := e.typeMapper.TypeMap(file, class.Native().Namespace())
	if err != nil {
		logger.Warningf("@method tags of %s: %v", class.Name(), err)
		return methods
	}

	// inside a trait, self is the class using it
	typeMap = typeMap.WithClass(declaring.Name(), declaring.Native().ParentName)

	own := make(map[string]reflection.MethodReflection, len(tags))
	for _, tag := range tags {
		own[tag.Name] = newMethod(tag, declaring, typeMap)
	}
	maps.Copy(methods, own)
	return methods
}

func newMethod(tag methodTag, declaring *reflection.ClassReflection, typeMap phpdoc.TypeMap) *Method {
	params := make([]reflection.ParameterReflection, 0, len(tag.Parameters))
	for _, p := range tag.Parameters {
		var typ types.Type = types.MixedType{}
		if p.Type != "" {
			if t, ok := typeMap.Lookup(p.Type); ok {
				typ = t
			}
		}
		if strings.EqualFold(p.DefaultValue, "null") {
			typ = types.AddNull(typ)
		}
		params = append(params, &Parameter{
			name:        p.Name,
			typ:         typ,
			byReference: p.ByReference,
			optional:    p.HasDefaultValue,
			variadic:    p.Variadic,
		})
	}

	var returnType types.Type = types.MixedType{}
	if tag.Type != "" {
		if t, ok := typeMap.Lookup(tag.Type); ok {
			returnType = t
		}
	}

	return &Method{
		name:       tag.Name,
		declaring:  declaring,
		returnType: returnType,
		parameters: params,
		static:     tag.Static,
		variadic:   len(params) > 0 && params[len(params)-1].IsVariadic(),
	}
}
