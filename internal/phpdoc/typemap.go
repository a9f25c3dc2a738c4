// Package phpdoc reads the types written in docblocks and resolves
// `{@inheritdoc}` markers through the class hierarchy.
package phpdoc

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.phpdoc")

// genericArguments matches `<...>` with up to three levels of nesting, e.g.
// `<int, array<string, Foo>>`.
const genericArguments = `<(?:[^<>]|<(?:[^<>]|<[^<>]*>)*>)*>`

const typeToken = `\??[^\s(*<|,]+(?:` + genericArguments + `)?(?:\[\])*`

// TypePattern matches a docblock type expression such as `int`, `?Foo`,
// `Foo[]|null` or `array<string, Bar>`.
const TypePattern = typeToken + `(?:\s*\|\s*` + typeToken + `)*`

var (
	tagTypeRe         = regexp.MustCompile(`@(?:param|return|var|throws|property(?:-read|-write)?)\s+(` + TypePattern + `)`)
	methodTagRe       = regexp.MustCompile(`@method\s+(?:static\s+)?(?:(` + TypePattern + `)\s+)?[A-Za-z0-9_]+(?:\(([^)]*)\))?`)
	methodParamTypeRe = regexp.MustCompile(`(?:^|,)\s*(` + TypePattern + `)\s+&?(?:\.\.\.)?\$`)
	unionSpaceRe      = regexp.MustCompile(`\s*\|\s*`)
)

// TypeMap holds the parsed type of every type expression written in the
// docblocks of one namespace of a file, keyed by the expression text.
// `self` and `parent` stay unbound until WithClass names the class.
type TypeMap struct {
	types  map[string]types.Type
	self   string
	parent string
}

// NewTypeMap builds a TypeMap from already parsed types.
func NewTypeMap(entries map[string]types.Type) TypeMap {
	m := TypeMap{types: make(map[string]types.Type, len(entries))}
	for raw, t := range entries {
		m.types[normalizeKey(raw)] = t
	}
	return m
}

// Lookup finds the type for raw as written in a docblock.
func (m TypeMap) Lookup(raw string) (types.Type, bool) {
	t, ok := m.types[normalizeKey(raw)]
	if !ok {
		return nil, false
	}
	if m.self != "" || m.parent != "" {
		t = types.BindClass(t, m.self, m.parent)
	}
	return t, true
}

// Len is the number of distinct type expressions.
func (m TypeMap) Len() int { return len(m.types) }

// WithClass returns a view of m for docblocks written in class, whose parent
// is parent (empty when it has none).
func (m TypeMap) WithClass(class, parent string) TypeMap {
	m.self, m.parent = class, parent
	return m
}

func normalizeKey(raw string) string {
	return unionSpaceRe.ReplaceAllString(strings.TrimSpace(raw), "|")
}

// FileTypeMapper builds and memoizes the TypeMap of each namespace of a file.
type FileTypeMapper struct {
	mu    sync.Mutex
	store *source.Store
	maps  map[string]map[string]TypeMap
}

func NewFileTypeMapper(store *source.Store) *FileTypeMapper {
	return &FileTypeMapper{store: store, maps: make(map[string]map[string]TypeMap)}
}

// TypeMap returns the dictionary of docblock types written in file inside
// namespace. Class names are resolved against the namespace and imports in
// effect at each docblock.
func (m *FileTypeMapper) TypeMap(file, namespace string) (TypeMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(namespace)
	if typeMap, ok := m.maps[file][key]; ok {
		return typeMap, nil
	}
	doc, err := m.store.Get(file)
	if err != nil {
		return TypeMap{}, fmt.Errorf("type map for %s: %w", file, err)
	}

	typeMap := TypeMap{types: make(map[string]types.Type)}
	for _, comment := range doc.DocComments() {
		if !strings.EqualFold(doc.NamespaceAt(comment.Offset), namespace) {
			continue
		}
		resolve := docblockResolver(doc.ResolverAt(comment.Offset))
		for _, raw := range typeStrings(comment.Text) {
			expr := normalizeKey(raw)
			if strings.HasPrefix(expr, "$") && expr != "$this" {
				// `@param $name` without a type
				continue
			}
			if _, ok := typeMap.types[expr]; ok {
				continue
			}
			typeMap.types[expr] = types.FromString(expr, resolve)
		}
	}
	logger.Debugf("type map for %s (namespace %q) holds %d types", file, namespace, typeMap.Len())

	if m.maps[file] == nil {
		m.maps[file] = make(map[string]TypeMap)
	}
	m.maps[file][key] = typeMap
	return typeMap, nil
}

// BlockTypeMap is the type map for block, with `self` bound to the class the
// block documents and `parent` to that class's parent.
func (m *FileTypeMapper) BlockTypeMap(broker reflection.Broker, block Block) (TypeMap, error) {
	typeMap, err := m.TypeMap(block.File, block.Namespace)
	if err != nil {
		return TypeMap{}, err
	}
	parent := ""
	if block.Class != "" && broker != nil {
		if class, err := broker.GetClass(block.Class); err == nil {
			parent = class.Native().ParentName
		}
	}
	return typeMap.WithClass(block.Class, parent), nil
}

// Forget drops the memoized maps of file, e.g. after its content changed.
func (m *FileTypeMapper) Forget(file string) {
	m.mu.Lock()
	delete(m.maps, filepath.Clean(file))
	m.mu.Unlock()
}

// docblockResolver leaves `self` and `parent` for WithClass to bind, since
// the docblocks of several classes share one map.
func docblockResolver(resolve types.Resolver) types.Resolver {
	return func(name string) string {
		switch strings.ToLower(name) {
		case types.SelfKeyword, types.ParentKeyword:
			return ""
		}
		return resolve(name)
	}
}

func typeStrings(comment string) []string {
	var found []string
	for _, match := range tagTypeRe.FindAllStringSubmatch(comment, -1) {
		found = append(found, match[1])
	}
	for _, match := range methodTagRe.FindAllStringSubmatch(comment, -1) {
		if match[1] != "" {
			found = append(found, match[1])
		}
		for _, param := range methodParamTypeRe.FindAllStringSubmatch(match[2], -1) {
			found = append(found, param[1])
		}
	}
	return found
}
