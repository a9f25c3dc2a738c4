package source

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/types"
)

// ClassKind tells classes, interfaces, traits and enums apart.
type ClassKind string

const (
	KindClass     ClassKind = "class"
	KindInterface ClassKind = "interface"
	KindTrait     ClassKind = "trait"
	KindEnum      ClassKind = "enum"
)

// Visibility of a class member.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// Parameter is a declared function or method parameter.
type Parameter struct {
	Name         string
	Position     int
	Type         types.Type
	DefaultValue string
	HasDefault   bool
	Variadic     bool
	ByReference  bool
	Promoted     bool

	promotedVisibility Visibility
	promotedReadonly   bool
}

// IsOptional reports whether callers may omit the argument.
func (p *Parameter) IsOptional() bool {
	return p.HasDefault || p.Variadic
}

// Function is a global or namespaced function declaration.
type Function struct {
	Name             string
	Namespace        string
	DocComment       string
	FileName         string
	StartLine        int
	Internal         bool
	ReturnsReference bool
	Parameters       []*Parameter
	ReturnType       types.Type

	body    sitter.Node
	content []byte
}

// ShortName is the name without its namespace.
func (f *Function) ShortName() string {
	return shortName(f.Name)
}

// IsVariadic reports whether the last parameter is declared with `...`.
func (f *Function) IsVariadic() bool {
	return lastParameterVariadic(f.Parameters)
}

// Body returns the function's statement block. Internal functions have none.
func (f *Function) Body() (sitter.Node, []byte, bool) {
	if f.body.IsNull() {
		return sitter.Node{}, nil, false
	}
	return f.body, f.content, true
}

// Method is a method declared in, or imported by trait into, a class.
type Method struct {
	Name             string
	Visibility       Visibility
	Static           bool
	Abstract         bool
	Final            bool
	ReturnsReference bool
	DocComment       string
	StartLine        int
	Parameters       []*Parameter
	ReturnType       types.Type

	declaring *Class
	origin    *Class
	body      sitter.Node
	content   []byte
}

// DeclaringClass is the class that owns the method. Trait methods are owned by
// the class using the trait.
func (m *Method) DeclaringClass() *Class { return m.declaring }

// OriginClass is the class or trait whose source contains the declaration.
func (m *Method) OriginClass() *Class { return m.origin }

func (m *Method) IsPublic() bool    { return m.Visibility == Public }
func (m *Method) IsProtected() bool { return m.Visibility == Protected }
func (m *Method) IsPrivate() bool   { return m.Visibility == Private }

func (m *Method) IsVariadic() bool {
	return lastParameterVariadic(m.Parameters)
}

// Body returns the method's statement block; abstract methods have none.
func (m *Method) Body() (sitter.Node, []byte, bool) {
	if m.body.IsNull() {
		return sitter.Node{}, nil, false
	}
	return m.body, m.content, true
}

func (m *Method) importedInto(class *Class) *Method {
	clone := *m
	clone.declaring = class
	return &clone
}

// Property is a declared or constructor-promoted property.
type Property struct {
	Name         string
	Visibility   Visibility
	Static       bool
	Readonly     bool
	DocComment   string
	Type         types.Type
	DefaultValue string

	declaring *Class
}

func (p *Property) DeclaringClass() *Class { return p.declaring }
func (p *Property) IsPublic() bool         { return p.Visibility == Public }
func (p *Property) IsProtected() bool      { return p.Visibility == Protected }
func (p *Property) IsPrivate() bool        { return p.Visibility == Private }

func (p *Property) importedInto(class *Class) *Property {
	clone := *p
	clone.declaring = class
	return &clone
}

// Constant is a class constant or enum case.
type Constant struct {
	Name       string
	Value      string
	Visibility Visibility
	DocComment string

	declaring *Class
}

func (c *Constant) DeclaringClass() *Class { return c.declaring }
func (c *Constant) IsPublic() bool         { return c.Visibility == Public }
func (c *Constant) IsPrivate() bool        { return c.Visibility == Private }

// GlobalConstant is declared with `const` at file level or with define().
type GlobalConstant struct {
	Name     string
	Value    string
	FileName string
}

func lastParameterVariadic(params []*Parameter) bool {
	if len(params) == 0 {
		return false
	}
	return params[len(params)-1].Variadic
}
