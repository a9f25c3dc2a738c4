package reflection

import (
	"fmt"
	"strings"

	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.reflection")

// ClassReflection is the view of a class the rest of the analyser works with:
// native declarations, hierarchy queries and members supplied by extensions.
// Related classes are looked up by name through the broker when asked for.
type ClassReflection struct {
	broker             Broker
	propertyExtensions []PropertiesClassReflectionExtension
	methodExtensions   []MethodsClassReflectionExtension
	displayName        string
	native             *source.Class

	methods    map[string]MethodReflection
	properties map[string]PropertyReflection
	constants  map[string]*ClassConstantReflection
}

// NewClassReflection wraps a located class. The extension slices are shared
// and must not be modified afterwards.
func NewClassReflection(
	broker Broker,
	propertyExtensions []PropertiesClassReflectionExtension,
	methodExtensions []MethodsClassReflectionExtension,
	displayName string,
	native *source.Class,
) *ClassReflection {
	return &ClassReflection{
		broker:             broker,
		propertyExtensions: propertyExtensions,
		methodExtensions:   methodExtensions,
		displayName:        displayName,
		native:             native,
		methods:            make(map[string]MethodReflection),
		properties:         make(map[string]PropertyReflection),
		constants:          make(map[string]*ClassConstantReflection),
	}
}

func (c *ClassReflection) Name() string        { return c.native.Name }
func (c *ClassReflection) DisplayName() string { return c.displayName }

// Native exposes the declaration the reflection was built from.
func (c *ClassReflection) Native() *source.Class { return c.native }

// ParentClass returns the reflection of the extended class, if any.
func (c *ClassReflection) ParentClass() (*ClassReflection, bool) {
	parent, ok := c.native.ParentClass()
	if !ok {
		return nil, false
	}
	reflection, err := c.broker.GetClass(parent.Name)
	if err != nil {
		logger.Warningf("parent of %s: %v", c.Name(), err)
		return nil, false
	}
	return reflection, true
}

// Parents lists every ancestor class, nearest first.
// Parents lists the ancestors nearest first. A chain that loops back on
// itself, as half-edited code can, stops before the repeat.
func (c *ClassReflection) Parents() []*ClassReflection {
	var parents []*ClassReflection
	seen := map[string]bool{strings.ToLower(c.Name()): true}
	for parent, ok := c.ParentClass(); ok; parent, ok = parent.ParentClass() {
		key := strings.ToLower(parent.Name())
		if seen[key] {
			break
		}
		seen[key] = true
		parents = append(parents, parent)
	}
	return parents
}

func (c *ClassReflection) ParentClassesNames() []string {
	var names []string
	for _, parent := range c.Parents() {
		names = append(names, parent.Name())
	}
	return names
}

func (c *ClassReflection) InterfaceNames() []string {
	return c.native.InterfaceNames()
}

func (c *ClassReflection) Interfaces() []*ClassReflection {
	return c.classesByName(c.InterfaceNames())
}

// Traits are the traits used directly by the class.
func (c *ClassReflection) Traits() []*ClassReflection {
	return c.classesByName(c.native.DeclaredTraits)
}

// TraitNames collects the traits used by the class and by every ancestor.
func (c *ClassReflection) TraitNames() []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(list []string) {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	add(c.native.DeclaredTraits)
	for _, ancestor := range c.native.Ancestors() {
		add(ancestor.DeclaredTraits)
	}
	return names
}

func (c *ClassReflection) HasTraitUse(trait string) bool {
	trait = strings.TrimLeft(trait, "\\")
	for _, name := range c.TraitNames() {
		if name == trait {
			return true
		}
	}
	return false
}

// TraitAliases maps alias method names to "Trait::method".
func (c *ClassReflection) TraitAliases() map[string]string {
	return c.native.TraitAliases()
}

func (c *ClassReflection) classesByName(names []string) []*ClassReflection {
	classes := make([]*ClassReflection, 0, len(names))
	for _, name := range names {
		class, err := c.broker.GetClass(name)
		if err != nil {
			logger.Warningf("%s referenced by %s: %v", name, c.Name(), err)
			continue
		}
		classes = append(classes, class)
	}
	return classes
}

func (c *ClassReflection) IsSubclassOf(name string) bool {
	return c.native.IsSubclassOf(name)
}

func (c *ClassReflection) ImplementsInterface(name string) bool {
	return c.native.ImplementsInterface(name)
}

func (c *ClassReflection) IsFinal() bool     { return c.native.Final }
func (c *ClassReflection) IsAbstract() bool  { return c.native.IsAbstract() }
func (c *ClassReflection) IsInterface() bool { return c.native.IsInterface() }
func (c *ClassReflection) IsTrait() bool     { return c.native.IsTrait() }
func (c *ClassReflection) IsAnonymous() bool { return c.native.Anonymous }
func (c *ClassReflection) IsInternal() bool  { return c.native.Internal }

// FileName is empty for built-in classes.
func (c *ClassReflection) FileName() (string, bool) {
	return c.native.FileName, c.native.FileName != ""
}

func (c *ClassReflection) DocComment() (string, bool) {
	return c.native.DocComment, c.native.DocComment != ""
}

func (c *ClassReflection) HasNativeMethod(name string) bool {
	return c.native.HasMethod(name)
}

func (c *ClassReflection) NativeMethod(name string) (*source.Method, bool) {
	return c.native.Method(name)
}

func (c *ClassReflection) NativeMethods() []*source.Method {
	return c.native.Methods()
}

func (c *ClassReflection) HasNativeProperty(name string) bool {
	return c.native.HasProperty(name)
}

func (c *ClassReflection) NativeProperty(name string) (*source.Property, bool) {
	return c.native.Property(name)
}

func (c *ClassReflection) NativeProperties() []*source.Property {
	return c.native.Properties()
}

func (c *ClassReflection) HasConstant(name string) bool {
	return c.native.HasConstant(name)
}

// Constant returns the class constant with its declaring class resolved
// through the broker.
func (c *ClassReflection) Constant(name string) (*ClassConstantReflection, error) {
	if constant, ok := c.constants[name]; ok {
		return constant, nil
	}
	native, ok := c.native.Constant(name)
	if !ok {
		return nil, fmt.Errorf("constant %s::%s: %w", c.Name(), name, source.ErrIdentifierNotFound)
	}
	declaring := c
	if owner := native.DeclaringClass(); owner != nil && owner != c.native {
		resolved, err := c.broker.GetClass(owner.Name)
		if err != nil {
			return nil, fmt.Errorf("constant %s::%s: %w", c.Name(), name, err)
		}
		declaring = resolved
	}
	constant := &ClassConstantReflection{declaring: declaring, native: native}
	c.constants[name] = constant
	return constant, nil
}

func (c *ClassReflection) HasExtendedMethod(name string) bool {
	for _, extension := range c.methodExtensions {
		if extension.HasMethod(c, name) {
			return true
		}
	}
	return false
}

// ExtendedMethod asks the method extensions in order. A method the scope may
// call is returned at once. Otherwise the first method found is kept while
// later extensions get a chance to offer an accessible one.
func (c *ClassReflection) ExtendedMethod(name string, scope Scope) (MethodReflection, error) {
	key := scopedKey(name, scope)
	if method, ok := c.methods[key]; ok {
		return method, nil
	}

	var fallback MethodReflection
	for _, extension := range c.methodExtensions {
		if !extension.HasMethod(c, name) {
			continue
		}
		method, err := extension.GetMethod(c, name)
		if err != nil {
			return nil, fmt.Errorf("method %s::%s: %w", c.Name(), name, err)
		}
		if scope == nil || scope.CanCallMethod(method) {
			c.methods[key] = method
			return method, nil
		}
		if fallback == nil {
			fallback = method
		}
	}
	if fallback == nil {
		return nil, &MissingMethodFromReflectionError{Class: c.Name(), Method: name}
	}
	c.methods[key] = fallback
	return fallback, nil
}

func (c *ClassReflection) HasExtendedProperty(name string) bool {
	for _, extension := range c.propertyExtensions {
		if extension.HasProperty(c, name) {
			return true
		}
	}
	return false
}

// ExtendedProperty follows the same rules as ExtendedMethod.
func (c *ClassReflection) ExtendedProperty(name string, scope Scope) (PropertyReflection, error) {
	key := scopedKey(name, scope)
	if property, ok := c.properties[key]; ok {
		return property, nil
	}

	var fallback PropertyReflection
	for _, extension := range c.propertyExtensions {
		if !extension.HasProperty(c, name) {
			continue
		}
		property, err := extension.GetProperty(c, name)
		if err != nil {
			return nil, fmt.Errorf("property %s::$%s: %w", c.Name(), name, err)
		}
		if scope == nil || scope.CanAccessProperty(property) {
			c.properties[key] = property
			return property, nil
		}
		if fallback == nil {
			fallback = property
		}
	}
	if fallback == nil {
		return nil, &MissingPropertyFromReflectionError{Class: c.Name(), Property: name}
	}
	c.properties[key] = fallback
	return fallback, nil
}

func scopedKey(name string, scope Scope) string {
	if scope != nil && scope.IsInClass() && scope.ClassReflection() != nil {
		return name + "-" + scope.ClassReflection().Name()
	}
	return name
}
