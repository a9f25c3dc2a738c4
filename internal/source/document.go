package source

import (
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/types"
)

// DocComment is a `/** ... */` comment and where it starts in the file.
type DocComment struct {
	Text   string
	Offset uint32
}

// Document is a parsed PHP file together with the declarations found in it.
type Document struct {
	Path     string
	Internal bool

	Classes   []*Class
	Functions []*Function
	Constants []*GlobalConstant

	mu      sync.RWMutex
	tree    *sitter.Tree
	content []byte
	uses    map[string]map[string]string
}

// ParseDocument parses content and extracts its declarations. Internal
// documents describe built-in symbols and report no file name.
func ParseDocument(p parser.Parser, path string, content []byte, internal bool) (*Document, error) {
	tree, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Path:     path,
		Internal: internal,
		tree:     tree,
		content:  content,
	}
	root := tree.RootNode()
	doc.uses = collectNamespaceUses(root, content)

	ext := &extractor{doc: doc, content: content, uses: doc.uses}
	ext.walk(root, "")
	return doc, nil
}

// FileName is the path of the document, or "" for built-in stubs.
func (d *Document) FileName() string {
	if d.Internal {
		return ""
	}
	return d.Path
}

// Read executes fn while holding a read lock on the document.
// The callback must not keep the tree or content beyond its scope.
func (d *Document) Read(fn func(tree *sitter.Tree, content []byte)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.tree, d.content)
}

// Content returns the source the document was parsed from.
func (d *Document) Content() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// DocComments lists every docblock of the file in source order.
func (d *Document) DocComments() []DocComment {
	var comments []DocComment
	d.Read(func(tree *sitter.Tree, content []byte) {
		stack := []sitter.Node{tree.RootNode()}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if node.Type() == "comment" {
				if text := node.Content(content); strings.HasPrefix(text, "/**") {
					comments = append(comments, DocComment{Text: text, Offset: uint32(node.StartByte())})
				}
				continue
			}
			for i := node.NamedChildCount(); i > 0; i-- {
				stack = append(stack, node.NamedChild(i-1))
			}
		}
	})
	return comments
}

// NamespaceAt returns the namespace in effect at a byte offset.
func (d *Document) NamespaceAt(offset uint32) string {
	current := ""
	d.Read(func(tree *sitter.Tree, content []byte) {
		root := tree.RootNode()
		for i := uint32(0); i < root.NamedChildCount(); i++ {
			child := root.NamedChild(i)
			if uint32(child.StartByte()) >= offset {
				break
			}
			if child.Type() != "namespace_definition" {
				continue
			}
			name := ""
			if nameNode := child.ChildByFieldName("name"); !nameNode.IsNull() {
				name = normalizeFQN(nameNode.Content(content))
			}
			if body := child.ChildByFieldName("body"); !body.IsNull() {
				if offset < uint32(child.EndByte()) {
					current = name
					return
				}
				current = ""
				continue
			}
			current = name
		}
	})
	return current
}

func (d *Document) nameContext(namespace string) nameContext {
	return nameContext{namespace: namespace, uses: d.uses[strings.ToLower(namespace)]}
}

// ResolverAt returns a class name resolver for code at the given offset.
func (d *Document) ResolverAt(offset uint32) types.Resolver {
	nc := d.nameContext(d.NamespaceAt(offset))
	return func(name string) string {
		return nc.resolveClass(name)
	}
}

func (d *Document) anonymousClass(node sitter.Node) *Class {
	switch node.Type() {
	case "anonymous_class", "anonymous_class_creation_expression":
	default:
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if t := child.Type(); t == "anonymous_class" || t == "anonymous_class_creation_expression" {
				return d.anonymousClass(child)
			}
		}
		// older grammars inline the class body into the creation expression
		if node.Type() != "object_creation_expression" || firstChildOfType(node, "declaration_list").IsNull() {
			return nil
		}
	}
	ext := &extractor{doc: d, content: d.content, uses: d.uses}
	nc := d.nameContext(d.NamespaceAt(uint32(node.StartByte())))
	return ext.anonymousClassFromNode(node, nc)
}
