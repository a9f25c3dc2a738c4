package source

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// nameContext resolves class names written inside one namespace of a file.
type nameContext struct {
	namespace string
	uses      map[string]string
}

// resolveClass applies the import table and current namespace to a class
// reference. A leading backslash marks an already qualified name.
func (nc nameContext) resolveClass(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "\\") {
		return normalizeFQN(name)
	}
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "namespace\\") {
		return joinNamespace(nc.namespace, name[len("namespace\\"):])
	}

	first, rest, qualified := strings.Cut(name, "\\")
	if full, ok := nc.uses[strings.ToLower(first)]; ok {
		if qualified {
			return normalizeFQN(full + "\\" + rest)
		}
		return full
	}
	return joinNamespace(nc.namespace, name)
}

func joinNamespace(namespace, name string) string {
	if namespace == "" {
		return normalizeFQN(name)
	}
	return normalizeFQN(namespace + "\\" + name)
}

// collectNamespaceUses gathers the class imports of each namespace in the
// file, keyed by lowercased namespace name.
func collectNamespaceUses(root sitter.Node, content []byte) map[string]map[string]string {
	uses := make(map[string]map[string]string)
	if root.IsNull() {
		return uses
	}

	var walk func(node sitter.Node, namespace string)
	walk = func(node sitter.Node, namespace string) {
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "namespace_definition":
				name := ""
				if nameNode := child.ChildByFieldName("name"); !nameNode.IsNull() {
					name = normalizeFQN(nameNode.Content(content))
				}
				if body := child.ChildByFieldName("body"); !body.IsNull() {
					walk(body, name)
				} else {
					namespace = name
				}
			case "namespace_use_declaration":
				// `use function` and `use const` import into other symbol tables.
				if typeNode := child.ChildByFieldName("type"); !typeNode.IsNull() {
					continue
				}
				key := strings.ToLower(namespace)
				imports, ok := uses[key]
				if !ok {
					imports = make(map[string]string)
					uses[key] = imports
				}
				addUseDeclaration(child, content, imports)
			}
		}
	}
	walk(root, "")
	return uses
}

func addUseDeclaration(node sitter.Node, content []byte, uses map[string]string) {
	prefix := ""
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_name":
			prefix = normalizeFQN(child.Content(content))
		case "namespace_use_group":
			for j := uint32(0); j < child.NamedChildCount(); j++ {
				if clause := child.NamedChild(j); clause.Type() == "namespace_use_clause" || clause.Type() == "namespace_use_group_clause" {
					addUseClause(clause, prefix, content, uses)
				}
			}
		case "namespace_use_clause":
			addUseClause(child, "", content, uses)
		}
	}
}

func addUseClause(clause sitter.Node, prefix string, content []byte, uses map[string]string) {
	alias := ""
	if aliasNode := clause.ChildByFieldName("alias"); !aliasNode.IsNull() {
		alias = strings.TrimSpace(aliasNode.Content(content))
	}

	var nameNode sitter.Node
	for i := uint32(0); i < clause.NamedChildCount(); i++ {
		if clause.FieldNameForNamedChild(i) == "alias" {
			continue
		}
		child := clause.NamedChild(i)
		switch child.Type() {
		case "qualified_name", "relative_name", "name":
			nameNode = child
		}
		if !nameNode.IsNull() {
			break
		}
	}
	if nameNode.IsNull() {
		return
	}

	full := strings.TrimSpace(nameNode.Content(content))
	if prefix != "" {
		full = prefix + "\\" + strings.TrimLeft(full, "\\")
	}
	full = normalizeFQN(full)
	if full == "" {
		return
	}
	if alias == "" {
		alias = shortName(full)
	}
	uses[strings.ToLower(alias)] = full
}

func normalizeFQN(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\\\", "\\"))
	return strings.TrimLeft(name, "?\\")
}

func shortName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '\\'); i >= 0 && i+1 < len(qualified) {
		return qualified[i+1:]
	}
	return qualified
}

func namespaceOf(qualified string) string {
	if i := strings.LastIndexByte(qualified, '\\'); i >= 0 {
		return qualified[:i]
	}
	return ""
}

// variableName strips the sigil from a variable_name node.
func variableName(node sitter.Node, content []byte) string {
	if node.IsNull() {
		return ""
	}
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child.Type() == "name" {
			return child.Content(content)
		}
	}
	return strings.TrimPrefix(strings.TrimSpace(node.Content(content)), "$")
}
