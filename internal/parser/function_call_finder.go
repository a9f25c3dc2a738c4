package parser

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// FunctionCallStatementFinder looks for calls to named functions inside a
// function body. Nested closures and declarations are not entered since their
// calls belong to a different function.
type FunctionCallStatementFinder struct{}

func NewFunctionCallStatementFinder() *FunctionCallStatementFinder {
	return &FunctionCallStatementFinder{}
}

// FindFunctionCallInStatements returns the first call to any of names below
// node. Names are compared case-insensitively, ignoring a leading backslash.
func (f *FunctionCallStatementFinder) FindFunctionCallInStatements(names []string, node sitter.Node, content []byte) (sitter.Node, bool) {
	if node.IsNull() || len(names) == 0 {
		return sitter.Node{}, false
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.ToLower(strings.TrimLeft(name, "\\"))] = struct{}{}
	}

	stack := childrenOf(node)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch cur.Type() {
		case "function_call_expression":
			fn := cur.ChildByFieldName("function")
			if !fn.IsNull() {
				called := strings.ToLower(strings.TrimLeft(strings.TrimSpace(fn.Content(content)), "\\"))
				if _, ok := wanted[called]; ok {
					return cur, true
				}
			}
		case "anonymous_function", "anonymous_function_creation_expression", "arrow_function",
			"function_definition", "method_declaration", "class_declaration":
			continue
		}

		stack = append(stack, childrenOf(cur)...)
	}
	return sitter.Node{}, false
}

// childrenOf returns the named children in reverse so a stack pops them in source order.
func childrenOf(node sitter.Node) []sitter.Node {
	count := node.NamedChildCount()
	children := make([]sitter.Node, 0, count)
	for i := count; i > 0; i-- {
		children = append(children, node.NamedChild(i-1))
	}
	return children
}
