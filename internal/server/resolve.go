package server

import (
	"fmt"
	"strings"

	"github.com/shinyvision/phpreflect/internal/broker"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
)

// target is what a reference resolved to: hover text and, when known, the
// place it is declared.
type target struct {
	markdown string
	file     string
	line     int
}

func resolveReference(b *broker.Broker, doc *source.Document, ref reference) (target, error) {
	namespace := doc.NamespaceAt(ref.offset)
	resolveClass := doc.ResolverAt(ref.offset)

	var enclosing *reflection.ClassReflection
	if ref.enclosing != "" {
		if class, err := b.GetClass(qualify(namespace, ref.enclosing)); err == nil {
			enclosing = class
		}
	}
	scope := reflection.NewScope(namespace, enclosing)

	switch ref.kind {
	case referenceFunction:
		fn, err := b.GetFunction(reflection.ParseName(ref.name), scope)
		if err != nil {
			return target{}, err
		}
		t := target{markdown: codeBlock(reflection.Signature(fn))}
		if native := fn.Native(); !native.Internal {
			t.file, t.line = native.FileName, native.StartLine
		}
		return t, nil

	case referenceMethod, referenceProperty:
		class, err := memberClass(b, ref, enclosing, resolveClass)
		if err != nil {
			return target{}, err
		}
		if ref.kind == referenceProperty {
			property, err := class.ExtendedProperty(ref.name, scope)
			if err != nil {
				return target{}, err
			}
			declaring := property.DeclaringClass()
			t := target{markdown: codeBlock(fmt.Sprintf("%s %s $%s", reflection.Visibility(property), property.Type().Describe(), ref.name)) + "\n" + declaring.DisplayName()}
			t.file, t.line = classLocation(declaring)
			return t, nil
		}
		method, err := class.ExtendedMethod(ref.name, scope)
		if err != nil {
			return target{}, err
		}
		declaring := method.DeclaringClass()
		t := target{markdown: codeBlock(reflection.Signature(method)) + "\n" + declaring.DisplayName()}
		t.file, t.line = classLocation(declaring)
		if native, ok := declaring.NativeMethod(ref.name); ok && !native.OriginClass().Internal {
			t.file, t.line = native.OriginClass().FileName, native.StartLine
		}
		return t, nil
	}

	name := resolveClass(ref.name)
	if ref.declared {
		name = qualify(namespace, ref.name)
	}
	class, err := b.GetClass(name)
	if err != nil {
		return target{}, err
	}
	t := target{markdown: codeBlock(classHeader(class))}
	if doc, ok := class.DocComment(); ok {
		t.markdown += "\n" + doc
	}
	t.file, t.line = classLocation(class)
	return t, nil
}

func memberClass(b *broker.Broker, ref reference, enclosing *reflection.ClassReflection, resolveClass func(string) string) (*reflection.ClassReflection, error) {
	if ref.scope != "" {
		return b.GetClass(resolveClass(ref.scope))
	}
	if enclosing == nil {
		return nil, fmt.Errorf("%s is used outside of a class: %w", ref.name, reflection.ErrShouldNotHappen)
	}
	if ref.parent {
		parent, ok := enclosing.ParentClass()
		if !ok {
			return nil, &reflection.ClassNotFoundError{Name: "parent"}
		}
		return parent, nil
	}
	return enclosing, nil
}

func classHeader(class *reflection.ClassReflection) string {
	kind := "class"
	switch {
	case class.IsInterface():
		kind = "interface"
	case class.IsTrait():
		kind = "trait"
	}
	header := kind + " " + class.DisplayName()
	if parent, ok := class.ParentClass(); ok {
		header += " extends " + parent.Name()
	}
	if interfaces := class.Native().DeclaredInterfaces; len(interfaces) > 0 {
		keyword := " implements "
		if class.IsInterface() {
			keyword = " extends "
		}
		header += keyword + strings.Join(interfaces, ", ")
	}
	return header
}

func classLocation(class *reflection.ClassReflection) (string, int) {
	if class.IsInternal() {
		return "", 0
	}
	file, _ := class.FileName()
	return file, class.Native().StartLine
}

func codeBlock(code string) string {
	return "```php\n" + code + "\n```"
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "\\" + name
}
