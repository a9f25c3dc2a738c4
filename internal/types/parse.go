package types

import (
	"strings"
)

// Resolver maps a class name as written in source to its fully qualified form.
// It also receives `self` and `parent`; a resolver that does not know the
// enclosing class returns "" for them and they stay unbound.
type Resolver func(name string) string

// Relative class keywords. Until bound with BindClass they read as
// ObjectType{ClassName: "self"} and ObjectType{ClassName: "parent"}.
const (
	SelfKeyword   = "self"
	ParentKeyword = "parent"
)

// FromString parses a docblock type expression such as `?int`, `Foo[]|null`
// or `array<string, Bar>`. Class names go through resolve when it is not nil.
func FromString(raw string, resolve Resolver) Type {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MixedType{}
	}
	parts := splitTopLevel(raw, '|')
	if len(parts) > 1 {
		members := make([]Type, 0, len(parts))
		for _, part := range parts {
			members = append(members, FromString(part, resolve))
		}
		return Union(members...)
	}

	if strings.HasPrefix(raw, "?") {
		return AddNull(FromString(raw[1:], resolve))
	}
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		return FromString(raw[1:len(raw)-1], resolve)
	}
	if strings.HasSuffix(raw, "[]") {
		return ArrayType{ItemType: FromString(raw[:len(raw)-2], resolve)}
	}
	if open := strings.IndexByte(raw, '<'); open > 0 && strings.HasSuffix(raw, ">") {
		base := strings.ToLower(strings.TrimSpace(raw[:open]))
		args := splitTopLevel(raw[open+1:len(raw)-1], ',')
		item := FromString(args[len(args)-1], resolve)
		switch base {
		case "array", "list", "non-empty-array", "non-empty-list":
			return ArrayType{ItemType: item}
		case "iterable":
			return IterableType{ItemType: item}
		}
		return FromName(strings.TrimSpace(raw[:open]), resolve)
	}
	return FromName(raw, resolve)
}

// FromName maps a single keyword or class name to a type.
func FromName(name string, resolve Resolver) Type {
	switch strings.ToLower(name) {
	case "int", "integer", "positive-int", "negative-int":
		return IntegerType{}
	case "float", "double":
		return FloatType{}
	case "string", "class-string", "non-empty-string":
		return StringType{}
	case "bool", "boolean", "true", "false":
		return BooleanType{}
	case "null":
		return NullType{}
	case "void", "never":
		return VoidType{}
	case "mixed":
		return MixedType{}
	case "array", "list":
		return ArrayType{}
	case "iterable":
		return IterableType{}
	case "callable", "callable-string":
		return CallableType{}
	case "object":
		return ObjectWithoutClassType{}
	case "resource":
		return ResourceType{}
	case "static", "$this":
		return StaticType{}
	case SelfKeyword, ParentKeyword:
		if resolve != nil {
			if resolved := resolve(name); resolved != "" {
				return ObjectType{ClassName: strings.TrimLeft(resolved, "\\")}
			}
		}
		return ObjectType{ClassName: strings.ToLower(name)}
	}
	className := strings.TrimLeft(name, "\\")
	if resolve != nil {
		if resolved := resolve(name); resolved != "" {
			className = strings.TrimLeft(resolved, "\\")
		}
	}
	return ObjectType{ClassName: className}
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// BindClass reads `self` as class and `parent` as parent wherever they occur
// in t. An empty parent leaves `parent` unbound.
func BindClass(t Type, class, parent string) Type {
	switch v := t.(type) {
	case ObjectType:
		switch v.ClassName {
		case SelfKeyword:
			if class != "" {
				return ObjectType{ClassName: class}
			}
		case ParentKeyword:
			if parent != "" {
				return ObjectType{ClassName: parent}
			}
		}
	case ArrayType:
		if v.ItemType != nil {
			return ArrayType{ItemType: BindClass(v.ItemType, class, parent)}
		}
	case IterableType:
		if v.ItemType != nil {
			return IterableType{ItemType: BindClass(v.ItemType, class, parent)}
		}
	case UnionType:
		members := make([]Type, 0, len(v.Types))
		for _, member := range v.Types {
			members = append(members, BindClass(member, class, parent))
		}
		return Union(members...)
	}
	return t
}
