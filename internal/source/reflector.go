package source

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.source")

// ErrIdentifierNotFound is returned when no source declares a class or function.
var ErrIdentifierNotFound = errors.New("identifier not found")

//go:embed stubs/*.php
var stubs embed.FS

// Autoloader maps a class name to the file expected to declare it.
type Autoloader interface {
	Resolve(className string) (string, bool)
}

// Reflector locates declarations. Lookups try, in order, the indexed files
// (built-in stubs and analysed files) and then the autoloader. Results,
// including misses, are memoized.
type Reflector struct {
	store     *Store
	autoload  Autoloader
	classes   map[string]*Class
	functions map[string]*Function
	constants map[string]*GlobalConstant
	indexed   map[string]struct{}
	attempted map[string]struct{}
	// declared holds the keys each file won, so an update can retract them.
	declared  map[string]*declarations
}

type declarations struct {
	classes   []string
	functions []string
	constants []string
}

// NewReflector builds a reflector that already knows the built-in symbols.
// autoload may be nil.
func NewReflector(store *Store, autoload Autoloader) (*Reflector, error) {
	r := &Reflector{
		store:     store,
		autoload:  autoload,
		classes:   make(map[string]*Class),
		functions: make(map[string]*Function),
		constants: make(map[string]*GlobalConstant),
		indexed:   make(map[string]struct{}),
		attempted: make(map[string]struct{}),
		declared:  make(map[string]*declarations),
	}

	entries, err := fs.ReadDir(stubs, "stubs")
	if err != nil {
		return nil, fmt.Errorf("read stubs: %w", err)
	}
	for _, entry := range entries {
		name := path.Join("stubs", entry.Name())
		data, err := stubs.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read stub %s: %w", name, err)
		}
		doc, err := ParseDocument(store.parser, "internal:"+entry.Name(), data, true)
		if err != nil {
			return nil, fmt.Errorf("parse stub %s: %w", name, err)
		}
		r.index(doc)
	}
	logger.Debugf("indexed %d built-in classes and %d functions", len(r.classes), len(r.functions))
	return r, nil
}

// AddStubs indexes every PHP file below root as built-in declarations. The
// embedded stubs win over a stub file declaring the same name.
func (r *Reflector) AddStubs(root string) (int, error) {
	files := 0
	err := filepath.WalkDir(root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(file) != ".php" {
			return nil
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		doc, err := ParseDocument(r.store.parser, file, data, true)
		if err != nil {
			logger.Warningf("parse stub %s: %v", file, err)
			return nil
		}
		r.index(doc)
		files++
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("read stubs %s: %w", root, err)
	}
	return files, nil
}

// AddFile indexes every declaration of an analysed file.
func (r *Reflector) AddFile(path string) error {
	doc, err := r.store.Get(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	r.index(doc)
	return nil
}

// AddSource indexes in-memory source as if it were the file at path.
func (r *Reflector) AddSource(path string, content []byte) error {
	doc, err := r.store.Open(path, content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	r.index(doc)
	return nil
}

// Update re-parses content as the file at path and replaces whatever the
// previous version of the file declared.
func (r *Reflector) Update(path string, content []byte) error {
	doc, err := r.store.Open(path, content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	r.forget(doc.Path)
	r.index(doc)
	return nil
}

// Reload drops the in-memory version of path and indexes the file as it is
// on disk. A file that no longer exists declares nothing.
func (r *Reflector) Reload(path string) error {
	path = normalizePath(path)
	r.store.Remove(path)
	r.forget(path)
	doc, err := r.store.Get(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	r.index(doc)
	return nil
}

// forget retracts the declarations of path. Misses and the inherited member
// lists of every class are dropped too, since either may depend on path.
func (r *Reflector) forget(path string) {
	if decl, ok := r.declared[path]; ok {
		for _, key := range decl.classes {
			delete(r.classes, key)
		}
		for _, key := range decl.functions {
			delete(r.functions, key)
		}
		for _, key := range decl.constants {
			delete(r.constants, key)
		}
		delete(r.declared, path)
	}
	delete(r.indexed, path)
	clear(r.attempted)
	for _, class := range r.classes {
		class.resetInherited()
	}
}

func (r *Reflector) declarationsOf(path string) *declarations {
	decl, ok := r.declared[path]
	if !ok {
		decl = &declarations{}
		r.declared[path] = decl
	}
	return decl
}

func (r *Reflector) index(doc *Document) {
	if _, ok := r.indexed[doc.Path]; ok {
		return
	}
	r.indexed[doc.Path] = struct{}{}
	decl := r.declarationsOf(doc.Path)

	for _, class := range doc.Classes {
		key := strings.ToLower(class.Name)
		if existing, ok := r.classes[key]; ok {
			logger.Debugf("class %s already declared in %s, ignoring %s", class.Name, existing.FileName, doc.Path)
			continue
		}
		class.reflector = r
		r.classes[key] = class
		decl.classes = append(decl.classes, key)
	}
	for _, fn := range doc.Functions {
		key := strings.ToLower(fn.Name)
		if _, ok := r.functions[key]; ok {
			continue
		}
		r.functions[key] = fn
		decl.functions = append(decl.functions, key)
	}
	for _, constant := range doc.Constants {
		key := constantKey(constant.Name)
		if _, ok := r.constants[key]; ok {
			continue
		}
		r.constants[key] = constant
		decl.constants = append(decl.constants, key)
	}
}

// ReflectClass locates a class, interface, trait or enum by name.
func (r *Reflector) ReflectClass(name string) (*Class, error) {
	name = normalizeFQN(name)
	key := strings.ToLower(name)
	if class, ok := r.classes[key]; ok {
		return class, nil
	}
	if r.autoload != nil && name != "" {
		if _, tried := r.attempted[key]; !tried {
			r.attempted[key] = struct{}{}
			if file, ok := r.autoload.Resolve(name); ok {
				if err := r.AddFile(file); err != nil {
					logger.Warningf("autoload %s: %v", name, err)
				}
				if class, ok := r.classes[key]; ok {
					return class, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("class %s: %w", name, ErrIdentifierNotFound)
}

// ReflectFunction locates a function by its fully qualified name.
func (r *Reflector) ReflectFunction(name string) (*Function, error) {
	name = normalizeFQN(name)
	if fn, ok := r.functions[strings.ToLower(name)]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("function %s: %w", name, ErrIdentifierNotFound)
}

func (r *Reflector) FunctionExists(name string) bool {
	_, ok := r.functions[strings.ToLower(normalizeFQN(name))]
	return ok
}

func (r *Reflector) ConstantExists(name string) bool {
	_, ok := r.constants[constantKey(name)]
	return ok
}

// Document returns the parsed file at path, loading it if needed.
func (r *Reflector) Document(path string) (*Document, error) {
	return r.store.Get(path)
}

// AnonymousClass builds the class declared by an anonymous class expression
// found in the file at path.
func (r *Reflector) AnonymousClass(node sitter.Node, path string) (*Class, error) {
	doc, err := r.store.Get(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	class := doc.anonymousClass(node)
	if class == nil {
		return nil, fmt.Errorf("no anonymous class at %s:%d: %w", path, node.StartPoint().Row+1, ErrIdentifierNotFound)
	}
	key := strings.ToLower(class.Name)
	if existing, ok := r.classes[key]; ok {
		return existing, nil
	}
	class.reflector = r
	r.classes[key] = class
	decl := r.declarationsOf(doc.Path)
	decl.classes = append(decl.classes, key)
	return class, nil
}

// Classes returns every indexed class that is not built in.
func (r *Reflector) Classes() []*Class {
	var classes []*Class
	for _, class := range r.classes {
		if !class.Internal && !class.Anonymous {
			classes = append(classes, class)
		}
	}
	return classes
}

// constantKey lowercases the namespace part only; constant names are case-sensitive.
func constantKey(name string) string {
	name = normalizeFQN(name)
	ns := namespaceOf(name)
	if ns == "" {
		return name
	}
	return strings.ToLower(ns) + "\\" + shortName(name)
}
