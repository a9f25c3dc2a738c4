package source

import (
	"regexp"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/types"
)

var useAsClauseRe = regexp.MustCompile(`(?i)^\s*(?:([\\\w]+)::)?(\w+)\s+as\s+(?:(public|protected|private)\b\s*)?(\w+)?\s*;?\s*$`)

// extractor collects the declarations of a single parsed file.
type extractor struct {
	doc     *Document
	content []byte
	uses    map[string]map[string]string
}

func (e *extractor) walk(node sitter.Node, namespace string) {
	pendingDoc := ""
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "comment":
			if text := child.Content(e.content); strings.HasPrefix(text, "/**") {
				pendingDoc = text
			}
			continue
		case "namespace_definition":
			ns := ""
			if nameNode := child.ChildByFieldName("name"); !nameNode.IsNull() {
				ns = normalizeFQN(nameNode.Content(e.content))
			}
			if body := child.ChildByFieldName("body"); !body.IsNull() {
				e.walk(body, ns)
			} else {
				namespace = ns
			}
		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			nc := e.nameContext(namespace)
			if class := e.classFromNode(child, nc, pendingDoc); class != nil {
				e.doc.Classes = append(e.doc.Classes, class)
			}
		case "function_definition":
			nc := e.nameContext(namespace)
			if fn := e.functionFromNode(child, nc, pendingDoc); fn != nil {
				e.doc.Functions = append(e.doc.Functions, fn)
			}
		case "const_declaration":
			for j := uint32(0); j < child.NamedChildCount(); j++ {
				element := child.NamedChild(j)
				if element.Type() != "const_element" {
					continue
				}
				name, value := e.constElement(element)
				if name == "" {
					continue
				}
				e.doc.Constants = append(e.doc.Constants, &GlobalConstant{
					Name:     joinNamespace(namespace, name),
					Value:    value,
					FileName: e.doc.FileName(),
				})
			}
		case "expression_statement":
			if constant := e.defineCall(child); constant != nil {
				e.doc.Constants = append(e.doc.Constants, constant)
			}
		case "compound_statement", "if_statement", "else_clause", "else_if_clause", "declare_statement":
			// conditional declarations such as `if (!function_exists('x')) { function x() {} }`
			e.walk(child, namespace)
		}
		pendingDoc = ""
	}
}

func (e *extractor) nameContext(namespace string) nameContext {
	return nameContext{namespace: namespace, uses: e.uses[strings.ToLower(namespace)]}
}

func kindForNode(nodeType string) ClassKind {
	switch nodeType {
	case "interface_declaration":
		return KindInterface
	case "trait_declaration":
		return KindTrait
	case "enum_declaration":
		return KindEnum
	}
	return KindClass
}

func (e *extractor) classFromNode(node sitter.Node, nc nameContext, docComment string) *Class {
	nameNode := node.ChildByFieldName("name")
	if nameNode.IsNull() {
		return nil
	}
	name := strings.TrimSpace(nameNode.Content(e.content))
	if name == "" {
		return nil
	}

	class := e.newClass(node, nc, docComment)
	class.Name = joinNamespace(nc.namespace, name)
	class.Kind = kindForNode(node.Type())

	words := modifierWords(e.content[int(node.StartByte()):int(nameNode.StartByte())])
	class.Abstract = words["abstract"]
	class.Final = words["final"] || class.Kind == KindEnum

	e.fillClass(class, node, nc)
	return class
}

// anonymousClassFromNode reads an `new class(...) extends X {}` expression.
func (e *extractor) anonymousClassFromNode(node sitter.Node, nc nameContext) *Class {
	class := e.newClass(node, nc, "")
	class.Kind = KindClass
	class.Anonymous = true
	class.Name = anonymousClassName(e.doc.Path, class.StartLine, int(node.StartByte()))
	e.fillClass(class, node, nc)
	return class
}

func (e *extractor) newClass(node sitter.Node, nc nameContext, docComment string) *Class {
	return &Class{
		DocComment: docComment,
		FileName:   e.doc.FileName(),
		StartLine:  int(node.StartPoint().Row) + 1,
		Internal:   e.doc.Internal,
		namespace:  nc.namespace,
	}
}

func (e *extractor) fillClass(class *Class, node sitter.Node, nc nameContext) {
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "base_clause":
			for _, base := range e.classNames(child, nc) {
				if class.Kind == KindInterface {
					class.DeclaredInterfaces = append(class.DeclaredInterfaces, base)
					continue
				}
				if class.ParentName == "" {
					class.ParentName = base
				}
			}
		case "class_interface_clause":
			class.DeclaredInterfaces = append(class.DeclaredInterfaces, e.classNames(child, nc)...)
		}
	}
	if body := node.ChildByFieldName("body"); !body.IsNull() {
		e.members(class, body, nc)
	} else {
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Type() == "declaration_list" {
				e.members(class, child, nc)
				break
			}
		}
	}
}

func (e *extractor) classNames(clause sitter.Node, nc nameContext) []string {
	var names []string
	for i := uint32(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "name", "qualified_name", "relative_name":
			if resolved := nc.resolveClass(child.Content(e.content)); resolved != "" {
				names = append(names, resolved)
			}
		}
	}
	return names
}

func (e *extractor) members(class *Class, body sitter.Node, nc nameContext) {
	pendingDoc := ""
	for i := uint32(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "comment":
			if text := child.Content(e.content); strings.HasPrefix(text, "/**") {
				pendingDoc = text
			}
			continue
		case "method_declaration":
			if method := e.methodFromNode(child, class, nc, pendingDoc); method != nil {
				class.methods = append(class.methods, method)
			}
		case "property_declaration":
			class.properties = append(class.properties, e.propertiesFromNode(child, class, nc, pendingDoc)...)
		case "const_declaration":
			class.constants = append(class.constants, e.classConstants(child, class, pendingDoc)...)
		case "enum_case":
			if constant := e.enumCase(child, class, pendingDoc); constant != nil {
				class.constants = append(class.constants, constant)
			}
		case "use_declaration":
			e.traitUse(child, class, nc)
		}
		pendingDoc = ""
	}
}

func (e *extractor) methodFromNode(node sitter.Node, class *Class, nc nameContext, docComment string) *Method {
	nameNode := node.ChildByFieldName("name")
	if nameNode.IsNull() {
		return nil
	}
	name := strings.TrimSpace(nameNode.Content(e.content))
	if name == "" {
		return nil
	}

	prefix := e.content[int(node.StartByte()):int(nameNode.StartByte())]
	words := modifierWords(prefix)
	method := &Method{
		Name:             name,
		Visibility:       visibilityFrom(words),
		Static:           words["static"],
		Abstract:         words["abstract"] || class.Kind == KindInterface,
		Final:            words["final"],
		ReturnsReference: strings.Contains(string(prefix), "&"),
		DocComment:       docComment,
		StartLine:        int(node.StartPoint().Row) + 1,
		declaring:        class,
		origin:           class,
		body:             node.ChildByFieldName("body"),
		content:          e.content,
	}
	method.Parameters = e.parameters(node.ChildByFieldName("parameters"), class, nc)
	method.ReturnType = e.typeFromNode(node.ChildByFieldName("return_type"), class, nc)

	if strings.EqualFold(name, "__construct") {
		for _, param := range method.Parameters {
			if !param.Promoted {
				continue
			}
			class.properties = append(class.properties, &Property{
				Name:       param.Name,
				Visibility: param.promotedVisibility,
				Readonly:   param.promotedReadonly,
				Type:       param.Type,
				declaring:  class,
			})
		}
	}
	return method
}

func (e *extractor) functionFromNode(node sitter.Node, nc nameContext, docComment string) *Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode.IsNull() {
		return nil
	}
	name := strings.TrimSpace(nameNode.Content(e.content))
	if name == "" {
		return nil
	}
	prefix := e.content[int(node.StartByte()):int(nameNode.StartByte())]
	fn := &Function{
		Name:             joinNamespace(nc.namespace, name),
		Namespace:        nc.namespace,
		DocComment:       docComment,
		FileName:         e.doc.FileName(),
		StartLine:        int(node.StartPoint().Row) + 1,
		Internal:         e.doc.Internal,
		ReturnsReference: strings.Contains(string(prefix), "&"),
		body:             node.ChildByFieldName("body"),
		content:          e.content,
	}
	fn.Parameters = e.parameters(node.ChildByFieldName("parameters"), nil, nc)
	fn.ReturnType = e.typeFromNode(node.ChildByFieldName("return_type"), nil, nc)
	return fn
}

func (e *extractor) parameters(list sitter.Node, class *Class, nc nameContext) []*Parameter {
	if list.IsNull() {
		return nil
	}
	var params []*Parameter
	for i := uint32(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		switch child.Type() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		default:
			continue
		}

		nameNode := child.ChildByFieldName("name")
		if nameNode.IsNull() {
			nameNode = firstChildOfType(child, "variable_name")
		}
		if nameNode.IsNull() {
			continue
		}

		param := &Parameter{
			Name:     variableName(nameNode, e.content),
			Position: len(params),
			Promoted: child.Type() == "property_promotion_parameter",
		}
		typeNode := child.ChildByFieldName("type")
		param.Type = e.typeFromNode(typeNode, class, nc)

		prefixStart := int(child.StartByte())
		if !typeNode.IsNull() {
			prefixStart = int(typeNode.EndByte())
		}
		between := string(e.content[prefixStart:int(nameNode.StartByte())])
		param.ByReference = strings.Contains(between, "&")
		param.Variadic = child.Type() == "variadic_parameter" || strings.Contains(between, "...")

		if def := child.ChildByFieldName("default_value"); !def.IsNull() {
			param.HasDefault = true
			param.DefaultValue = strings.TrimSpace(def.Content(e.content))
		} else if value, ok := textAfterAssign(child.Content(e.content)); ok {
			param.HasDefault = true
			param.DefaultValue = value
		}
		if param.HasDefault && strings.EqualFold(param.DefaultValue, "null") && param.Type != nil {
			param.Type = types.AddNull(param.Type)
		}

		if param.Promoted {
			words := modifierWords(e.content[int(child.StartByte()):int(nameNode.StartByte())])
			param.promotedVisibility = visibilityFrom(words)
			param.promotedReadonly = words["readonly"]
		}
		params = append(params, param)
	}
	return params
}

func (e *extractor) propertiesFromNode(node sitter.Node, class *Class, nc nameContext, docComment string) []*Property {
	var elements []sitter.Node
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child.Type() == "property_element" {
			elements = append(elements, child)
		}
	}
	if len(elements) == 0 {
		return nil
	}

	words := modifierWords(e.content[int(node.StartByte()):int(elements[0].StartByte())])
	nativeType := e.typeFromNode(node.ChildByFieldName("type"), class, nc)

	props := make([]*Property, 0, len(elements))
	for _, element := range elements {
		nameNode := firstChildOfType(element, "variable_name")
		if nameNode.IsNull() {
			continue
		}
		prop := &Property{
			Name:       variableName(nameNode, e.content),
			Visibility: visibilityFrom(words),
			Static:     words["static"],
			Readonly:   words["readonly"],
			DocComment: docComment,
			Type:       nativeType,
			declaring:  class,
		}
		if value, ok := textAfterAssign(element.Content(e.content)); ok {
			prop.DefaultValue = value
		}
		props = append(props, prop)
	}
	return props
}

func (e *extractor) classConstants(node sitter.Node, class *Class, docComment string) []*Constant {
	var constants []*Constant
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		element := node.NamedChild(i)
		if element.Type() != "const_element" {
			continue
		}
		name, value := e.constElement(element)
		if name == "" {
			continue
		}
		words := modifierWords(e.content[int(node.StartByte()):int(element.StartByte())])
		constants = append(constants, &Constant{
			Name:       name,
			Value:      value,
			Visibility: visibilityFrom(words),
			DocComment: docComment,
			declaring:  class,
		})
	}
	return constants
}

func (e *extractor) enumCase(node sitter.Node, class *Class, docComment string) *Constant {
	nameNode := node.ChildByFieldName("name")
	if nameNode.IsNull() {
		nameNode = firstChildOfType(node, "name")
	}
	if nameNode.IsNull() {
		return nil
	}
	value, _ := textAfterAssign(node.Content(e.content))
	return &Constant{
		Name:       strings.TrimSpace(nameNode.Content(e.content)),
		Value:      value,
		Visibility: Public,
		DocComment: docComment,
		declaring:  class,
	}
}

func (e *extractor) constElement(element sitter.Node) (string, string) {
	nameNode := firstChildOfType(element, "name")
	if nameNode.IsNull() {
		return "", ""
	}
	value, _ := textAfterAssign(element.Content(e.content))
	return strings.TrimSpace(nameNode.Content(e.content)), value
}

func (e *extractor) traitUse(node sitter.Node, class *Class, nc nameContext) {
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "name", "qualified_name", "relative_name":
			if trait := nc.resolveClass(child.Content(e.content)); trait != "" {
				class.DeclaredTraits = append(class.DeclaredTraits, trait)
			}
		case "use_list":
			for j := uint32(0); j < child.NamedChildCount(); j++ {
				clause := child.NamedChild(j)
				if clause.Type() != "use_as_clause" {
					continue
				}
				m := useAsClauseRe.FindStringSubmatch(clause.Content(e.content))
				if m == nil || m[4] == "" {
					continue
				}
				alias := traitAlias{Method: m[2]}
				if m[1] != "" {
					alias.Trait = nc.resolveClass(m[1])
				}
				if class.aliases == nil {
					class.aliases = make(map[string]traitAlias)
				}
				class.aliases[m[4]] = alias
			}
		}
	}
}

func (e *extractor) defineCall(statement sitter.Node) *GlobalConstant {
	call := firstChildOfType(statement, "function_call_expression")
	if call.IsNull() {
		return nil
	}
	fn := call.ChildByFieldName("function")
	if fn.IsNull() || !strings.EqualFold(strings.TrimLeft(fn.Content(e.content), "\\"), "define") {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args.IsNull() {
		return nil
	}
	first := firstChildOfType(args, "argument")
	if first.IsNull() {
		return nil
	}
	name := strings.Trim(strings.TrimSpace(first.Content(e.content)), `'"`)
	if name == "" {
		return nil
	}
	return &GlobalConstant{Name: normalizeFQN(name), FileName: e.doc.FileName()}
}

func (e *extractor) typeFromNode(node sitter.Node, class *Class, nc nameContext) types.Type {
	if node.IsNull() {
		return nil
	}
	raw := strings.TrimSpace(node.Content(e.content))
	if raw == "" {
		return nil
	}
	return types.FromString(raw, func(name string) string {
		switch strings.ToLower(name) {
		case types.SelfKeyword:
			if class != nil {
				return class.Name
			}
			return ""
		case types.ParentKeyword:
			if class != nil {
				return class.ParentName
			}
			return ""
		}
		return nc.resolveClass(name)
	})
}

func modifierWords(prefix []byte) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(string(prefix))) {
		words[strings.Trim(word, "&")] = true
	}
	return words
}

func visibilityFrom(words map[string]bool) Visibility {
	switch {
	case words["private"]:
		return Private
	case words["protected"]:
		return Protected
	}
	return Public
}

func textAfterAssign(text string) (string, bool) {
	_, value, ok := strings.Cut(text, "=")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";")), true
}

func firstChildOfType(node sitter.Node, nodeType string) sitter.Node {
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child.Type() == nodeType {
			return child
		}
	}
	return sitter.Node{}
}
