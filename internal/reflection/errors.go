package reflection

import (
	"errors"
	"fmt"
)

// ErrShouldNotHappen marks a broken invariant, such as a collaborator that was
// never wired.
var ErrShouldNotHappen = errors.New("internal error")

type ClassNotFoundError struct {
	Name string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("Class %s was not found while trying to analyse it - autoloading is probably not configured properly.", e.Name)
}

type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("Function %s not found while trying to analyse it - autoloading is probably not configured properly.", e.Name)
}

type MissingMethodFromReflectionError struct {
	Class  string
	Method string
}

func (e *MissingMethodFromReflectionError) Error() string {
	return fmt.Sprintf("Method %s() was not found in reflection of class %s.", e.Method, e.Class)
}

type MissingPropertyFromReflectionError struct {
	Class    string
	Property string
}

func (e *MissingPropertyFromReflectionError) Error() string {
	return fmt.Sprintf("Property $%s was not found in reflection of class %s.", e.Property, e.Class)
}
