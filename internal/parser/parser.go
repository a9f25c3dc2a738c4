package parser

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	phpforest "github.com/alexaandru/go-sitter-forest/php"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// ErrNoTree is returned when tree-sitter hands back no tree for a source.
var ErrNoTree = errors.New("parser produced no syntax tree")

// Parser turns PHP source into a syntax tree.
// Trees returned by a Parser belong to the caller.
type Parser interface {
	Parse(source []byte) (*sitter.Tree, error)
}

// Language returns the tree-sitter PHP grammar shared by all parsers.
func Language() *sitter.Language {
	return sitter.NewLanguage(phpforest.GetLanguage())
}

// DirectParser parses every source it is given.
type DirectParser struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

func NewDirectParser() *DirectParser {
	parser := sitter.NewParser()
	_ = parser.SetLanguage(Language())
	return &DirectParser{parser: parser}
}

func (p *DirectParser) Parse(source []byte) (*sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree, err := p.parser.ParseString(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse php source: %w", err)
	}
	if tree == nil {
		return nil, ErrNoTree
	}
	return tree, nil
}

// DefaultCacheSize bounds a CachedParser built with a non-positive size.
const DefaultCacheSize = 256

type cachedTree struct {
	key  string
	tree *sitter.Tree
}

// CachedParser memoizes trees by source text so the same file content is
// only parsed once while it stays among the most recently used sources.
// Callers get their own copy of the tree, so an evicted tree can be closed
// while documents built from it are still in use.
type CachedParser struct {
	mu       sync.Mutex
	original Parser
	max      int
	order    *list.List
	trees    map[string]*list.Element
}

func NewCachedParser(original Parser) *CachedParser {
	return NewBoundedCachedParser(original, DefaultCacheSize)
}

func NewBoundedCachedParser(original Parser, max int) *CachedParser {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &CachedParser{
		original: original,
		max:      max,
		order:    list.New(),
		trees:    make(map[string]*list.Element),
	}
}

func (p *CachedParser) Parse(source []byte) (*sitter.Tree, error) {
	key := string(source)

	p.mu.Lock()
	defer p.mu.Unlock()
	if element, ok := p.trees[key]; ok {
		p.order.MoveToFront(element)
		return element.Value.(*cachedTree).tree.Copy(), nil
	}

	tree, err := p.original.Parse(source)
	if err != nil {
		return nil, err
	}
	p.trees[key] = p.order.PushFront(&cachedTree{key: key, tree: tree})
	for p.order.Len() > p.max {
		p.evictLocked(p.order.Back())
	}
	return tree.Copy(), nil
}

func (p *CachedParser) evictLocked(element *list.Element) {
	entry := p.order.Remove(element).(*cachedTree)
	delete(p.trees, entry.key)
	entry.tree.Close()
}

// Len reports how many sources are currently memoized.
func (p *CachedParser) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}

// Close releases every memoized tree. Copies already handed out stay valid.
func (p *CachedParser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.order.Len() > 0 {
		p.evictLocked(p.order.Back())
	}
}
