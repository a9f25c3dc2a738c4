package reflection

import (
	"errors"
	"strings"
	"testing"

	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBroker struct {
	reflector *source.Reflector
	props     []PropertiesClassReflectionExtension
	methods   []MethodsClassReflectionExtension
	classes   map[string]*ClassReflection
}

func newTestBroker(t *testing.T, files map[string]string) *testBroker {
	t.Helper()
	store := source.NewStore(parser.NewCachedParser(parser.NewDirectParser()), 100)
	reflector, err := source.NewReflector(store, nil)
	require.NoError(t, err)
	for path, code := range files {
		require.NoError(t, reflector.AddSource(path, []byte(code)))
	}
	return &testBroker{reflector: reflector, classes: make(map[string]*ClassReflection)}
}

func (b *testBroker) HasClass(name string) bool {
	_, err := b.GetClass(name)
	return err == nil
}

func (b *testBroker) GetClass(name string) (*ClassReflection, error) {
	key := strings.ToLower(strings.TrimLeft(name, "\\"))
	if class, ok := b.classes[key]; ok {
		return class, nil
	}
	native, err := b.reflector.ReflectClass(name)
	if err != nil {
		return nil, &ClassNotFoundError{Name: name}
	}
	class := NewClassReflection(b, b.props, b.methods, native.Name, native)
	b.classes[key] = class
	return class, nil
}

type fakeMethod struct {
	name       string
	declaring  *ClassReflection
	visibility source.Visibility
	origin     string
}

func (m *fakeMethod) DeclaringClass() *ClassReflection  { return m.declaring }
func (m *fakeMethod) IsStatic() bool                    { return false }
func (m *fakeMethod) IsPrivate() bool                   { return m.visibility == source.Private }
func (m *fakeMethod) IsPublic() bool                    { return m.visibility == source.Public }
func (m *fakeMethod) Name() string                      { return m.name }
func (m *fakeMethod) Parameters() []ParameterReflection { return nil }
func (m *fakeMethod) IsVariadic() bool                  { return false }
func (m *fakeMethod) ReturnType() types.Type            { return types.MixedType{} }

type fakeMethodExtension struct {
	origin     string
	visibility source.Visibility
	names      []string
}

func (e *fakeMethodExtension) HasMethod(class *ClassReflection, name string) bool {
	for _, candidate := range e.names {
		if candidate == name {
			return true
		}
	}
	return false
}

func (e *fakeMethodExtension) GetMethod(class *ClassReflection, name string) (MethodReflection, error) {
	return &fakeMethod{name: name, declaring: class, visibility: e.visibility, origin: e.origin}, nil
}

const hierarchy = `<?php
namespace App;

trait Loggable {}
trait Timestamps {}

interface Shape { const SIDES = 0; }

class Base implements Shape
{
    use Loggable;

    protected const LABEL = 'base';
}

class Square extends Base
{
    use Timestamps;
}

final class Tile extends Square {}

class Other {}
`

func TestClassReflectionHierarchy(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/shapes.php": hierarchy})

	tile, err := b.GetClass("App\\Tile")
	require.NoError(t, err)
	assert.True(t, tile.IsFinal())
	assert.False(t, tile.IsAbstract())
	assert.Equal(t, []string{"App\\Square", "App\\Base"}, tile.ParentClassesNames())
	assert.Len(t, tile.Parents(), 2)
	assert.Equal(t, []string{"App\\Shape"}, tile.InterfaceNames())
	assert.Equal(t, []string{"App\\Timestamps", "App\\Loggable"}, tile.TraitNames())
	assert.True(t, tile.HasTraitUse("App\\Loggable"))
	assert.False(t, tile.HasTraitUse("App\\Missing"))
	assert.Empty(t, tile.Traits())
	assert.True(t, tile.IsSubclassOf("App\\Base"))
	assert.True(t, tile.ImplementsInterface("App\\Shape"))

	file, ok := tile.FileName()
	assert.True(t, ok)
	assert.Equal(t, "/src/shapes.php", file)
	_, ok = tile.DocComment()
	assert.False(t, ok)

	label, err := tile.Constant("LABEL")
	require.NoError(t, err)
	assert.Equal(t, "App\\Base", label.DeclaringClass().Name())
	assert.Equal(t, "'base'", label.Value())
	assert.False(t, label.IsPublic())

	sides, err := tile.Constant("SIDES")
	require.NoError(t, err)
	assert.Equal(t, "App\\Shape", sides.DeclaringClass().Name())

	again, err := tile.Constant("LABEL")
	require.NoError(t, err)
	assert.Same(t, label, again)

	_, err = tile.Constant("NOPE")
	assert.True(t, errors.Is(err, source.ErrIdentifierNotFound))
}

func TestParentsStopAtACycle(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/loop.php": `<?php
namespace App;

class Egg extends Hen {}
class Hen extends Chick {}
class Chick extends Egg {}
`})

	egg, err := b.GetClass("App\\Egg")
	require.NoError(t, err)
	assert.Equal(t, []string{"App\\Hen", "App\\Chick"}, egg.ParentClassesNames())
}

func TestExtendedMethodPrefersAccessibleMatch(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/shapes.php": hierarchy})
	b.methods = []MethodsClassReflectionExtension{
		&fakeMethodExtension{origin: "first", visibility: source.Private, names: []string{"draw", "hidden"}},
		&fakeMethodExtension{origin: "second", visibility: source.Public, names: []string{"draw"}},
		&fakeMethodExtension{origin: "third", visibility: source.Private, names: []string{"hidden"}},
	}

	square, err := b.GetClass("App\\Square")
	require.NoError(t, err)
	other, err := b.GetClass("App\\Other")
	require.NoError(t, err)

	assert.True(t, square.HasExtendedMethod("draw"))
	assert.False(t, square.HasExtendedMethod("missing"))

	method, err := square.ExtendedMethod("draw", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", method.(*fakeMethod).origin)

	method, err = square.ExtendedMethod("draw", NewScope("App", other))
	require.NoError(t, err)
	assert.Equal(t, "second", method.(*fakeMethod).origin)

	method, err = square.ExtendedMethod("hidden", NewScope("App", other))
	require.NoError(t, err)
	assert.Equal(t, "first", method.(*fakeMethod).origin, "the first inaccessible match is the fallback")

	method, err = square.ExtendedMethod("draw", NewScope("App", square))
	require.NoError(t, err)
	assert.Equal(t, "first", method.(*fakeMethod).origin)

	_, err = square.ExtendedMethod("missing", nil)
	var missing *MissingMethodFromReflectionError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "App\\Square", missing.Class)
	assert.Equal(t, "missing", missing.Method)
}

func TestExtendedPropertyWithoutExtensions(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/shapes.php": hierarchy})
	base, err := b.GetClass("App\\Base")
	require.NoError(t, err)

	assert.False(t, base.HasExtendedProperty("x"))
	_, err = base.ExtendedProperty("x", nil)
	var missing *MissingPropertyFromReflectionError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, err.Error(), "$x")
}

func TestScopeVisibility(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/shapes.php": hierarchy})
	base, _ := b.GetClass("App\\Base")
	tile, _ := b.GetClass("App\\Tile")
	other, _ := b.GetClass("App\\Other")

	protected := &fakeMethod{name: "p", declaring: base, visibility: source.Protected}
	private := &fakeMethod{name: "q", declaring: base, visibility: source.Private}
	public := &fakeMethod{name: "r", declaring: base, visibility: source.Public}

	assert.True(t, NewScope("", nil).CanCallMethod(public))
	assert.False(t, NewScope("", nil).CanCallMethod(protected))
	assert.True(t, NewScope("App", tile).CanCallMethod(protected))
	assert.False(t, NewScope("App", tile).CanCallMethod(private))
	assert.True(t, NewScope("App", base).CanCallMethod(private))
	assert.False(t, NewScope("App", other).CanAccessProperty(protected))
	assert.Equal(t, "App", NewScope("\\App\\", nil).Namespace())
}

func TestFindMember(t *testing.T) {
	members := map[string]int{"getName": 1}

	v, ok := FindMember(members, "getName")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = FindMember(members, "GETNAME")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Contains(t, members, "GETNAME")

	_, ok = FindMember(members, "other")
	assert.False(t, ok)
}

func TestSignatureCorrectionsAreIdempotent(t *testing.T) {
	b := newTestBroker(t, nil)
	factory := NewFunctionReflectionFactory(parser.NewFunctionCallStatementFinder(), cache.NewMemoryCache())

	cases := map[string][]string{
		"array_unique":                {"array", "sort_flags"},
		"fputcsv":                     {"stream", "fields", "separator", "enclosure", "escape_char"},
		"unpack":                      {"format", "string", "offset"},
		"imagepng":                    {"image", "file", "quality", "filters"},
		"imagewebp":                   {"image", "file", "quality"},
		"session_start":               {"options"},
		"locale_get_display_language": {"locale", "in_locale"},
		"setproctitle":                {"title"},
		"get_class":                   {"object"},
		"strlen":                      {"string"},
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			native, err := b.reflector.ReflectFunction(name)
			require.NoError(t, err)
			params := factory.Create(native, nil, nil).Parameters()
			assert.Equal(t, want, parameterNames(params))

			again := ApplySignatureCorrections(name, params)
			assert.Equal(t, want, parameterNames(again))
		})
	}
}

func parameterNames(params []ParameterReflection) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name())
	}
	return names
}

func TestFunctionReturnTypes(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/functions.php": `<?php
function maybe(?int $a, int $b = null): ?int {}
function always(): int {}
function untyped($value) {}
`})
	factory := NewFunctionReflectionFactory(nil, nil)

	count, err := b.reflector.ReflectFunction("count")
	require.NoError(t, err)
	assert.Equal(t, types.IntegerType{}, factory.Create(count, nil, nil).ReturnType())

	maybe, err := b.reflector.ReflectFunction("maybe")
	require.NoError(t, err)
	fn := factory.Create(maybe, map[string]types.Type{
		"a": types.IntegerType{},
		"b": types.FromString("int", nil),
	}, types.FromString("int|null", nil))
	assert.Equal(t, "int|null", fn.ReturnType().Describe())
	params := fn.Parameters()
	assert.Equal(t, "int|null", params[0].Type().Describe(), "non-nullable docblock type loses to nullable native type")
	assert.Equal(t, "int|null", params[1].Type().Describe(), "a null default widens the docblock type")

	always, err := b.reflector.ReflectFunction("always")
	require.NoError(t, err)
	fn = factory.Create(always, nil, types.FromString("int|null", nil))
	assert.Equal(t, "int", fn.ReturnType().Describe())

	untyped, err := b.reflector.ReflectFunction("untyped")
	require.NoError(t, err)
	fn = factory.Create(untyped, map[string]types.Type{"value": types.StringType{}}, nil)
	assert.Equal(t, "mixed", fn.ReturnType().Describe())
	assert.Equal(t, "string", fn.Parameters()[0].Type().Describe())
}

func TestVariadicDetectionUsesCache(t *testing.T) {
	b := newTestBroker(t, map[string]string{"/src/variadic.php": `<?php
function forwards() { return func_get_args(); }
function plain($a) { return $a; }
function declared(...$all) {}
`})
	memory := cache.NewMemoryCache()
	factory := NewFunctionReflectionFactory(parser.NewFunctionCallStatementFinder(), memory)

	forwards, err := b.reflector.ReflectFunction("forwards")
	require.NoError(t, err)
	assert.True(t, factory.Create(forwards, nil, nil).IsVariadic())

	var stored bool
	found, err := memory.Load("variadic-function-forwards-v0", &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, stored)

	plain, err := b.reflector.ReflectFunction("plain")
	require.NoError(t, err)
	require.NoError(t, memory.Save("variadic-function-plain-v0", true))
	assert.True(t, factory.Create(plain, nil, nil).IsVariadic(), "a cached answer skips the body scan")

	declared, err := b.reflector.ReflectFunction("declared")
	require.NoError(t, err)
	assert.True(t, factory.Create(declared, nil, nil).IsVariadic())
	found, err = memory.Load("variadic-function-declared-v0", &stored)
	require.NoError(t, err)
	assert.False(t, found)

	internal, err := b.reflector.ReflectFunction("func_get_args")
	require.NoError(t, err)
	assert.False(t, factory.Create(internal, nil, nil).IsVariadic())
}

func TestParseName(t *testing.T) {
	assert.Equal(t, Name{Parts: "Foo\\bar", FullyQualified: true}, ParseName("\\Foo\\bar"))
	assert.Equal(t, Name{Parts: "strlen"}, ParseName("strlen"))
	assert.Equal(t, "strlen", ParseName(" strlen ").String())
}
