package source

import (
	"fmt"
	"strings"

	"github.com/shinyvision/phpreflect/internal/types"
)

type traitAlias struct {
	Trait  string
	Method string
}

// Class is the native view of a class, interface, trait or enum: what its
// declaration says, with inherited members resolved through the Reflector.
type Class struct {
	Name               string
	Kind               ClassKind
	Abstract           bool
	Final              bool
	Anonymous          bool
	Internal           bool
	DocComment         string
	FileName           string
	StartLine          int
	ParentName         string
	DeclaredInterfaces []string
	DeclaredTraits     []string

	namespace  string
	aliases    map[string]traitAlias
	methods    []*Method
	properties []*Property
	constants  []*Constant
	reflector  *Reflector

	allMethods    []*Method
	allProperties []*Property
	allConstants  []*Constant
	building      bool
}

func anonymousClassName(path string, line, offset int) string {
	return fmt.Sprintf("class@anonymous%s:%d$%x", path, line, offset)
}

// ShortName is the name without its namespace.
func (c *Class) ShortName() string {
	if c.Anonymous {
		return "class@anonymous"
	}
	return shortName(c.Name)
}

func (c *Class) Namespace() string { return c.namespace }

// resetInherited drops the member lists merged from ancestors and traits.
func (c *Class) resetInherited() {
	c.allMethods = nil
	c.allProperties = nil
	c.allConstants = nil
}

func (c *Class) IsInterface() bool { return c.Kind == KindInterface }
func (c *Class) IsTrait() bool     { return c.Kind == KindTrait }
func (c *Class) IsEnum() bool      { return c.Kind == KindEnum }

// IsAbstract is true for abstract classes and interfaces.
func (c *Class) IsAbstract() bool {
	return c.Abstract || c.Kind == KindInterface
}

// ParentClass resolves the extended class. An unresolvable parent reads as none.
func (c *Class) ParentClass() (*Class, bool) {
	if c.ParentName == "" || c.reflector == nil {
		return nil, false
	}
	parent, err := c.reflector.ReflectClass(c.ParentName)
	if err != nil {
		logger.Debugf("parent %s of %s: %v", c.ParentName, c.Name, err)
		return nil, false
	}
	return parent, true
}

// InterfaceNames lists every interface the class implements, directly,
// through interface inheritance or through a parent class.
func (c *Class) InterfaceNames() []string {
	var names []string
	seen := make(map[string]struct{})
	var visit func(list []string)
	visit = func(list []string) {
		for _, name := range list {
			canonical := name
			var iface *Class
			if c.reflector != nil {
				if resolved, err := c.reflector.ReflectClass(name); err == nil {
					iface = resolved
					canonical = resolved.Name
				}
			}
			key := strings.ToLower(canonical)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, canonical)
			if iface != nil {
				visit(iface.DeclaredInterfaces)
			}
		}
	}
	for _, class := range append([]*Class{c}, c.Ancestors()...) {
		visit(class.DeclaredInterfaces)
	}
	return names
}

// Ancestors walks the parent chain, nearest first. A class reappearing in its
// own chain ends the walk.
func (c *Class) Ancestors() []*Class {
	var chain []*Class
	seen := map[string]struct{}{strings.ToLower(c.Name): {}}
	for parent, ok := c.ParentClass(); ok; parent, ok = parent.ParentClass() {
		key := strings.ToLower(parent.Name)
		if _, loop := seen[key]; loop {
			break
		}
		seen[key] = struct{}{}
		chain = append(chain, parent)
	}
	return chain
}

// Interfaces resolves InterfaceNames, skipping those that cannot be located.
func (c *Class) Interfaces() []*Class {
	return c.resolveAll(c.InterfaceNames())
}

// Traits resolves the traits used directly by the class.
func (c *Class) Traits() []*Class {
	return c.resolveAll(c.DeclaredTraits)
}

func (c *Class) resolveAll(names []string) []*Class {
	if c.reflector == nil {
		return nil
	}
	classes := make([]*Class, 0, len(names))
	for _, name := range names {
		resolved, err := c.reflector.ReflectClass(name)
		if err != nil {
			logger.Debugf("%s referenced by %s: %v", name, c.Name, err)
			continue
		}
		classes = append(classes, resolved)
	}
	return classes
}

// TraitAliases maps alias names to "Trait::method". An alias written without a
// trait is attributed to the first used trait that declares the method.
func (c *Class) TraitAliases() map[string]string {
	aliases := make(map[string]string, len(c.aliases))
	for alias, target := range c.aliases {
		trait := target.Trait
		if trait == "" {
			for _, candidate := range c.Traits() {
				if candidate.HasMethod(target.Method) {
					trait = candidate.Name
					break
				}
			}
		}
		aliases[alias] = trait + "::" + target.Method
	}
	return aliases
}

// SyntheticMethod builds a public method owned by c that no source declares.
func (c *Class) SyntheticMethod(name string, params []*Parameter, returnType types.Type) *Method {
	return &Method{
		Name:       name,
		Visibility: Public,
		Parameters: params,
		ReturnType: returnType,
		declaring:  c,
		origin:     c,
	}
}

// DeclaredMethods are the methods written in the class body itself.
func (c *Class) DeclaredMethods() []*Method { return c.methods }

// Methods returns own, trait, inherited and interface methods. The first
// declaration of a name wins, in that order.
func (c *Class) Methods() []*Method {
	if c.allMethods != nil {
		return c.allMethods
	}
	if c.building {
		return c.methods
	}
	c.building = true
	defer func() { c.building = false }()

	var all []*Method
	seen := make(map[string]struct{})
	add := func(m *Method) {
		key := strings.ToLower(m.Name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		all = append(all, m)
	}
	for _, m := range c.methods {
		add(m)
	}
	for _, trait := range c.Traits() {
		for _, m := range trait.Methods() {
			add(m.importedInto(c))
		}
	}
	if parent, ok := c.ParentClass(); ok {
		for _, m := range parent.Methods() {
			add(m)
		}
	}
	for _, iface := range c.Interfaces() {
		for _, m := range iface.Methods() {
			add(m)
		}
	}
	c.allMethods = all
	return all
}

func (c *Class) HasMethod(name string) bool {
	_, ok := c.Method(name)
	return ok
}

// Method finds a method by case-insensitive name.
func (c *Class) Method(name string) (*Method, bool) {
	for _, m := range c.Methods() {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return nil, false
}

// Properties returns own, trait and inherited non-private properties.
func (c *Class) Properties() []*Property {
	if c.allProperties != nil {
		return c.allProperties
	}
	if c.building {
		return c.properties
	}
	c.building = true
	defer func() { c.building = false }()

	var all []*Property
	seen := make(map[string]struct{})
	add := func(p *Property) {
		if _, ok := seen[p.Name]; ok {
			return
		}
		seen[p.Name] = struct{}{}
		all = append(all, p)
	}
	for _, p := range c.properties {
		add(p)
	}
	for _, trait := range c.Traits() {
		for _, p := range trait.Properties() {
			add(p.importedInto(c))
		}
	}
	if parent, ok := c.ParentClass(); ok {
		for _, p := range parent.Properties() {
			if p.IsPrivate() {
				continue
			}
			add(p)
		}
	}
	c.allProperties = all
	return all
}

func (c *Class) HasProperty(name string) bool {
	_, ok := c.Property(name)
	return ok
}

// Property finds a property by its exact name; property names are case-sensitive.
func (c *Class) Property(name string) (*Property, bool) {
	for _, p := range c.Properties() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Constants returns own, inherited and interface constants.
func (c *Class) Constants() []*Constant {
	if c.allConstants != nil {
		return c.allConstants
	}
	if c.building {
		return c.constants
	}
	c.building = true
	defer func() { c.building = false }()

	var all []*Constant
	seen := make(map[string]struct{})
	add := func(list []*Constant) {
		for _, constant := range list {
			if _, ok := seen[constant.Name]; ok {
				continue
			}
			seen[constant.Name] = struct{}{}
			all = append(all, constant)
		}
	}
	add(c.constants)
	if parent, ok := c.ParentClass(); ok {
		add(parent.Constants())
	}
	for _, iface := range c.Interfaces() {
		add(iface.Constants())
	}
	c.allConstants = all
	return all
}

func (c *Class) HasConstant(name string) bool {
	_, ok := c.Constant(name)
	return ok
}

func (c *Class) Constant(name string) (*Constant, bool) {
	for _, constant := range c.Constants() {
		if constant.Name == name {
			return constant, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether name is a proper ancestor class or an
// implemented interface.
func (c *Class) IsSubclassOf(name string) bool {
	name = normalizeFQN(name)
	for _, parent := range c.Ancestors() {
		if strings.EqualFold(parent.Name, name) {
			return true
		}
	}
	return c.ImplementsInterface(name)
}

func (c *Class) ImplementsInterface(name string) bool {
	name = normalizeFQN(name)
	for _, iface := range c.InterfaceNames() {
		if strings.EqualFold(iface, name) {
			return true
		}
	}
	return false
}
