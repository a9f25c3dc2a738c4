package reflection

import (
	"strings"

	"github.com/shinyvision/phpreflect/internal/types"
)

// Signature renders a function or method the way it would be declared, with
// the reconciled types: `public static function name(int $a, ...$rest): string`.
func Signature(acceptor ParametersAcceptor) string {
	var b strings.Builder
	if member, ok := acceptor.(ClassMemberReflection); ok {
		b.WriteString(Visibility(member))
		b.WriteByte(' ')
		if member.IsStatic() {
			b.WriteString("static ")
		}
	}
	b.WriteString("function ")
	b.WriteString(acceptor.Name())
	b.WriteByte('(')
	for i, param := range acceptor.Parameters() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(describeParameter(param))
	}
	b.WriteByte(')')
	if ret := acceptor.ReturnType(); ret != nil {
		b.WriteString(": ")
		b.WriteString(ret.Describe())
	}
	return b.String()
}

// Visibility names the visibility of a class member.
func Visibility(member ClassMemberReflection) string {
	switch {
	case member.IsPublic():
		return "public"
	case member.IsPrivate():
		return "private"
	}
	return "protected"
}

func describeParameter(param ParameterReflection) string {
	var b strings.Builder
	t := param.Type()
	if param.IsVariadic() {
		// variadic parameters receive an array of the declared type
		if array, ok := t.(types.ArrayType); ok && array.ItemType != nil {
			t = array.ItemType
		}
	}
	if t != nil {
		if _, mixed := t.(types.MixedType); !mixed {
			b.WriteString(t.Describe())
			b.WriteByte(' ')
		}
	}
	if param.IsPassedByReference() {
		b.WriteByte('&')
	}
	if param.IsVariadic() {
		b.WriteString("...")
	}
	b.WriteByte('$')
	b.WriteString(param.Name())
	if param.IsOptional() && !param.IsVariadic() {
		b.WriteString(" = ...")
	}
	return b.String()
}
