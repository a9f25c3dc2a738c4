package server

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/source"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type referenceKind int

const (
	referenceClass referenceKind = iota
	referenceFunction
	referenceMethod
	referenceProperty
)

// reference is a name under the cursor, as written in the source.
type reference struct {
	kind referenceKind
	name string
	// scope is the class a member is looked up on. Empty means the
	// enclosing class.
	scope string
	// parent is set for `parent::member`.
	parent bool
	// declared names are the name part of a declaration in this file.
	declared  bool
	enclosing string
	offset    uint32
}

var classDeclarations = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"trait_declaration":     true,
	"enum_declaration":      true,
}

// referenceAt finds the class, function or member name at pos.
func referenceAt(doc *source.Document, pos protocol.Position) (reference, bool) {
	var ref reference
	var found bool

	doc.Read(func(tree *sitter.Tree, content []byte) {
		root := tree.RootNode()
		if root.IsNull() {
			return
		}
		point := sitter.Point{Row: uint(pos.Line), Column: uint(pos.Character)}
		node := root.NamedDescendantForPointRange(point, point)

		var nameNode sitter.Node
		for cur := node; !cur.IsNull(); cur = cur.Parent() {
			if cur.Type() == "qualified_name" {
				nameNode = cur
				break
			}
			if cur.Type() == "name" && nameNode.IsNull() {
				nameNode = cur
			}
		}
		if nameNode.IsNull() {
			return
		}

		ref = reference{
			kind:      referenceClass,
			name:      nameNode.Content(content),
			offset:    uint32(nameNode.StartByte()),
			enclosing: enclosingClassName(nameNode, content),
		}
		found = true

		parent := nameNode.Parent()
		if parent.IsNull() {
			return
		}
		isField := func(field string) bool {
			child := parent.ChildByFieldName(field)
			return !child.IsNull() && child.StartByte() == nameNode.StartByte() && child.EndByte() == nameNode.EndByte()
		}

		switch parent.Type() {
		case "variable_name":
			found = false
		case "function_call_expression":
			if isField("function") {
				ref.kind = referenceFunction
			}
		case "scoped_call_expression":
			if isField("name") {
				ref.kind = referenceMethod
				ref.scope, ref.parent = scopeName(parent.ChildByFieldName("scope"), content)
			}
		case "member_call_expression":
			if isField("name") {
				ref.kind = referenceMethod
				found = parent.ChildByFieldName("object").Content(content) == "$this"
			}
		case "member_access_expression":
			if isField("name") {
				ref.kind = referenceProperty
				found = parent.ChildByFieldName("object").Content(content) == "$this"
			}
		case "method_declaration":
			if isField("name") {
				ref.kind = referenceMethod
			}
		case "function_definition":
			if isField("name") {
				ref.kind = referenceFunction
				ref.declared = true
			}
		default:
			if classDeclarations[parent.Type()] && isField("name") {
				ref.declared = true
			}
		}
	})
	return ref, found
}

// scopeName reads the class part of `Scope::member`. self and static leave the
// scope empty so the enclosing class is used.
func scopeName(node sitter.Node, content []byte) (string, bool) {
	if node.IsNull() {
		return "", false
	}
	text := strings.TrimSpace(node.Content(content))
	switch strings.ToLower(text) {
	case "self", "static":
		return "", false
	case "parent":
		return "", true
	}
	return text, false
}

func enclosingClassName(node sitter.Node, content []byte) string {
	for cur := node.Parent(); !cur.IsNull(); cur = cur.Parent() {
		if classDeclarations[cur.Type()] {
			if name := cur.ChildByFieldName("name"); !name.IsNull() {
				return name.Content(content)
			}
			return ""
		}
	}
	return ""
}
