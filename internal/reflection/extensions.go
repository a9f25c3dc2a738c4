package reflection

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/types"
)

// Broker is the lookup capability classes and extensions use to reach other
// classes by name.
type Broker interface {
	HasClass(name string) bool
	GetClass(name string) (*ClassReflection, error)
}

// BrokerAwareExtension is implemented by extensions that need the broker.
// The broker calls SetBroker once, while it is being constructed.
type BrokerAwareExtension interface {
	SetBroker(broker Broker)
}

// ResettableExtension drops whatever an extension memoized per class. The
// broker calls it when source files change.
type ResettableExtension interface {
	Reset()
}

// PropertiesClassReflectionExtension supplies properties of a class.
type PropertiesClassReflectionExtension interface {
	HasProperty(class *ClassReflection, name string) bool
	GetProperty(class *ClassReflection, name string) (PropertyReflection, error)
}

// MethodsClassReflectionExtension supplies methods of a class.
type MethodsClassReflectionExtension interface {
	HasMethod(class *ClassReflection, name string) bool
	GetMethod(class *ClassReflection, name string) (MethodReflection, error)
}

// Call is a call expression in a parsed file.
type Call struct {
	Node    sitter.Node
	Content []byte
}

// DynamicMethodReturnTypeExtension computes the return type of calls to
// methods of Class and its descendants from the call's arguments.
type DynamicMethodReturnTypeExtension interface {
	Class() string
	IsMethodSupported(method MethodReflection) bool
	TypeFromMethodCall(method MethodReflection, call Call, scope Scope) types.Type
}

// DynamicStaticMethodReturnTypeExtension is the static call counterpart of
// DynamicMethodReturnTypeExtension.
type DynamicStaticMethodReturnTypeExtension interface {
	Class() string
	IsStaticMethodSupported(method MethodReflection) bool
	TypeFromStaticMethodCall(method MethodReflection, call Call, scope Scope) types.Type
}

// DynamicFunctionReturnTypeExtension computes the return type of calls to a
// function from the call's arguments.
type DynamicFunctionReturnTypeExtension interface {
	IsFunctionSupported(function *FunctionReflection) bool
	TypeFromFunctionCall(function *FunctionReflection, call Call, scope Scope) types.Type
}
