package types

import (
	"strings"
)

// Type is a resolved PHP type, either read from a native declaration or from a docblock.
type Type interface {
	// Describe renders the type the way it would be written in a docblock.
	Describe() string
	// IsNullable reports whether null is an accepted value.
	IsNullable() bool
}

type MixedType struct{}

func (MixedType) Describe() string { return "mixed" }
func (MixedType) IsNullable() bool { return true }

type NullType struct{}

func (NullType) Describe() string { return "null" }
func (NullType) IsNullable() bool { return true }

type VoidType struct{}

func (VoidType) Describe() string { return "void" }
func (VoidType) IsNullable() bool { return false }

type IntegerType struct{}

func (IntegerType) Describe() string { return "int" }
func (IntegerType) IsNullable() bool { return false }

type FloatType struct{}

func (FloatType) Describe() string { return "float" }
func (FloatType) IsNullable() bool { return false }

type StringType struct{}

func (StringType) Describe() string { return "string" }
func (StringType) IsNullable() bool { return false }

type BooleanType struct{}

func (BooleanType) Describe() string { return "bool" }
func (BooleanType) IsNullable() bool { return false }

type ResourceType struct{}

func (ResourceType) Describe() string { return "resource" }
func (ResourceType) IsNullable() bool { return false }

type CallableType struct{}

func (CallableType) Describe() string { return "callable" }
func (CallableType) IsNullable() bool { return false }

// ObjectWithoutClassType is the `object` keyword: any instance, class unknown.
type ObjectWithoutClassType struct{}

func (ObjectWithoutClassType) Describe() string { return "object" }
func (ObjectWithoutClassType) IsNullable() bool { return false }

// ArrayType is an array whose values are ItemType. A nil ItemType means mixed.
type ArrayType struct {
	ItemType Type
}

func (t ArrayType) Describe() string {
	if t.ItemType == nil {
		return "array"
	}
	if _, ok := t.ItemType.(MixedType); ok {
		return "array"
	}
	item := t.ItemType.Describe()
	if _, ok := t.ItemType.(UnionType); ok {
		return "array<" + item + ">"
	}
	return item + "[]"
}
func (ArrayType) IsNullable() bool { return false }

type IterableType struct {
	ItemType Type
}

func (t IterableType) Describe() string {
	if t.ItemType == nil {
		return "iterable"
	}
	if _, ok := t.ItemType.(MixedType); ok {
		return "iterable"
	}
	return "iterable<" + t.ItemType.Describe() + ">"
}
func (IterableType) IsNullable() bool { return false }

// ObjectType is an instance of a named class or interface.
type ObjectType struct {
	ClassName string
}

func (t ObjectType) Describe() string { return t.ClassName }
func (ObjectType) IsNullable() bool   { return false }

// StaticType is `static` or `$this` bound to the class it was read from.
type StaticType struct {
	ClassName string
}

func (t StaticType) Describe() string {
	if t.ClassName == "" {
		return "static"
	}
	return "static(" + t.ClassName + ")"
}
func (StaticType) IsNullable() bool { return false }

// UnionType holds two or more distinct member types. Build it with Union.
type UnionType struct {
	Types []Type
}

func (t UnionType) Describe() string {
	parts := make([]string, 0, len(t.Types))
	for _, member := range t.Types {
		parts = append(parts, member.Describe())
	}
	return strings.Join(parts, "|")
}

func (t UnionType) IsNullable() bool {
	for _, member := range t.Types {
		if member.IsNullable() {
			return true
		}
	}
	return false
}

// Equal compares two types by their rendered form.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return strings.EqualFold(a.Describe(), b.Describe())
}
