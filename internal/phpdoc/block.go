package phpdoc

import (
	"regexp"
	"strings"

	"github.com/shinyvision/phpreflect/internal/reflection"
)

var inheritDocRe = regexp.MustCompile(`(?i)\{@inheritdoc\}`)

// Block is a docblock together with where it was written: the file and
// namespace its names resolve in, and the class it documents, which `self`
// refers to.
type Block struct {
	DocComment string
	File       string
	Namespace  string
	Class      string
}

// memberDoc reads a member's docblock from the class that declares it, which
// may be an ancestor of the class asked.
type memberDoc struct {
	has     func(class *reflection.ClassReflection, name string) bool
	comment func(class *reflection.ClassReflection, name string) Block
}

var propertyDoc = memberDoc{
	has: func(class *reflection.ClassReflection, name string) bool {
		return class.HasNativeProperty(name)
	},
	comment: func(class *reflection.ClassReflection, name string) Block {
		p, ok := class.NativeProperty(name)
		if !ok {
			return Block{}
		}
		owner := p.DeclaringClass()
		return Block{DocComment: p.DocComment, File: owner.FileName, Namespace: owner.Namespace(), Class: owner.Name}
	},
}

var methodDoc = memberDoc{
	has: func(class *reflection.ClassReflection, name string) bool {
		return class.HasNativeMethod(name)
	},
	comment: func(class *reflection.ClassReflection, name string) Block {
		m, ok := class.NativeMethod(name)
		if !ok {
			return Block{}
		}
		origin := m.OriginClass()
		return Block{DocComment: m.DocComment, File: origin.FileName, Namespace: origin.Namespace(), Class: m.DeclaringClass().Name}
	},
}

// ResolveForProperty substitutes `{@inheritdoc}` on a property docblock with
// the nearest ancestor's documentation of the same property.
func ResolveForProperty(broker reflection.Broker, own Block, property string) Block {
	return resolve(broker, own, property, propertyDoc, map[string]bool{})
}

// ResolveForMethod substitutes `{@inheritdoc}` on a method docblock with the
// nearest ancestor's documentation of the same method.
func ResolveForMethod(broker reflection.Broker, own Block, method string) Block {
	return resolve(broker, own, method, methodDoc, map[string]bool{})
}

// resolve walks ancestors until it finds documentation without a marker.
// seen holds the classes already asked, so a cyclic hierarchy ends.
func resolve(broker reflection.Broker, own Block, name string, member memberDoc, seen map[string]bool) Block {
	key := strings.ToLower(own.Class)
	if !inheritDocRe.MatchString(own.DocComment) || seen[key] || !broker.HasClass(own.Class) {
		return own
	}
	seen[key] = true

	class, err := broker.GetClass(own.Class)
	if err != nil {
		return own
	}

	if parent, ok := class.ParentClass(); ok {
		if block, ok := resolveFromClass(broker, parent, name, member, seen); ok {
			return block
		}
	}
	for _, iface := range class.Interfaces() {
		if block, ok := resolveFromClass(broker, iface, name, member, seen); ok {
			return block
		}
	}
	return own
}

func resolveFromClass(broker reflection.Broker, class *reflection.ClassReflection, name string, member memberDoc, seen map[string]bool) (Block, bool) {
	if class.IsInternal() || !member.has(class, name) {
		return Block{}, false
	}
	block := member.comment(class, name)
	if block.DocComment == "" {
		return Block{}, false
	}
	return resolve(broker, block, name, member, seen), true
}
