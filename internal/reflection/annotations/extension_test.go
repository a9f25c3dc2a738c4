package annotations_test

import (
	"errors"
	"testing"

	"github.com/shinyvision/phpreflect/internal/broker"
	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/reflection/annotations"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const magicFile = `<?php
namespace Magic;

use Magic\Query\Builder;

/**
 * @method static int foo(string $a, $b = null)
 * @method Builder where(string $column, mixed ...$values)
 * @method Unknown mystery()
 */
interface Queryable {}

/**
 * @method string label()
 * @method self relabel(string $label)
 */
trait Labelled {}

/**
 * @method Model fresh()
 */
abstract class Model implements Queryable
{
    use Labelled;

    public function save(): bool {}
}

/**
 * @method User fresh()
 * @method bool save()
 * @method self fluent()
 * @method static parent up(self $with)
 */
class User extends Model {}

class Plain {}
`

func newTestBroker(t *testing.T) *broker.Broker {
	t.Helper()
	store := source.NewStore(parser.NewCachedParser(parser.NewDirectParser()), 10)
	reflector, err := source.NewReflector(store, nil)
	require.NoError(t, err)
	require.NoError(t, reflector.AddSource("/src/Magic.php", []byte(magicFile)))
	return broker.NewDefault(reflector, store, cache.NewMemoryCache(), broker.Extensions{})
}

func TestMethodTagsBecomeMethods(t *testing.T) {
	b := newTestBroker(t)
	queryable, err := b.GetClass("Magic\\Queryable")
	require.NoError(t, err)

	foo, err := queryable.ExtendedMethod("foo", nil)
	require.NoError(t, err)
	assert.IsType(t, &annotations.Method{}, foo)
	assert.True(t, foo.IsStatic())
	assert.True(t, foo.IsPublic())
	assert.False(t, foo.IsPrivate())
	assert.False(t, foo.IsVariadic())
	assert.Equal(t, types.IntegerType{}, foo.ReturnType())
	assert.Same(t, queryable, foo.DeclaringClass())

	params := foo.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "a", params[0].Name())
	assert.Equal(t, types.StringType{}, params[0].Type())
	assert.False(t, params[0].IsOptional())
	assert.Equal(t, "b", params[1].Name())
	assert.True(t, params[1].IsOptional())
	assert.True(t, types.ContainsNull(params[1].Type()))

	where, err := queryable.ExtendedMethod("WHERE", nil)
	require.NoError(t, err)
	assert.Equal(t, "Magic\\Query\\Builder", where.ReturnType().Describe())
	assert.True(t, where.IsVariadic())

	mystery, err := queryable.ExtendedMethod("mystery", nil)
	require.NoError(t, err)
	assert.Equal(t, "Magic\\Unknown", mystery.ReturnType().Describe())
}

func TestMethodTagsAreInherited(t *testing.T) {
	b := newTestBroker(t)
	user, err := b.GetClass("Magic\\User")
	require.NoError(t, err)
	model, err := b.GetClass("Magic\\Model")
	require.NoError(t, err)

	fresh, err := user.ExtendedMethod("fresh", nil)
	require.NoError(t, err)
	assert.Equal(t, "Magic\\User", fresh.ReturnType().Describe())
	assert.Same(t, user, fresh.DeclaringClass())

	label, err := user.ExtendedMethod("label", nil)
	require.NoError(t, err)
	assert.Equal(t, types.StringType{}, label.ReturnType())
	assert.Same(t, model, label.DeclaringClass())

	foo, err := user.ExtendedMethod("foo", nil)
	require.NoError(t, err)
	assert.True(t, foo.IsStatic())

	// the native method is asked first
	save, err := user.ExtendedMethod("save", nil)
	require.NoError(t, err)
	_, fromTag := save.(*annotations.Method)
	assert.False(t, fromTag)
}

func TestClassWithoutTagsHasNoExtraMethods(t *testing.T) {
	b := newTestBroker(t)
	plain, err := b.GetClass("Magic\\Plain")
	require.NoError(t, err)

	assert.False(t, plain.HasExtendedMethod("foo"))
	_, err = plain.ExtendedMethod("foo", nil)
	var missing *reflection.MissingMethodFromReflectionError
	assert.True(t, errors.As(err, &missing))
}

func TestSelfAndParentInMethodTags(t *testing.T) {
	b := newTestBroker(t)
	user, err := b.GetClass("Magic\\User")
	require.NoError(t, err)

	fluent, err := user.ExtendedMethod("fluent", nil)
	require.NoError(t, err)
	assert.Equal(t, types.ObjectType{ClassName: "Magic\\User"}, fluent.ReturnType())
	assert.True(t, b.HasClass(fluent.ReturnType().Describe()))

	up, err := user.ExtendedMethod("up", nil)
	require.NoError(t, err)
	assert.True(t, up.IsStatic())
	assert.Equal(t, types.ObjectType{ClassName: "Magic\\Model"}, up.ReturnType())
	require.Len(t, up.Parameters(), 1)
	assert.Equal(t, types.ObjectType{ClassName: "Magic\\User"}, up.Parameters()[0].Type())

	// a trait's self is the class using it
	model, err := b.GetClass("Magic\\Model")
	require.NoError(t, err)
	relabel, err := model.ExtendedMethod("relabel", nil)
	require.NoError(t, err)
	assert.Equal(t, types.ObjectType{ClassName: "Magic\\Model"}, relabel.ReturnType())
}

func TestMethodTagsSurviveCyclicTraits(t *testing.T) {
	store := source.NewStore(parser.NewCachedParser(parser.NewDirectParser()), 10)
	reflector, err := source.NewReflector(store, nil)
	require.NoError(t, err)
	require.NoError(t, reflector.AddSource("/src/Loop.php", []byte(`<?php
namespace Loop;

/** @method int spin() */
trait Spinning
{
    use Spinning;
}

class Wheel
{
    use Spinning;
}
`)))
	b := broker.NewDefault(reflector, store, cache.NewMemoryCache(), broker.Extensions{})

	wheel, err := b.GetClass("Loop\\Wheel")
	require.NoError(t, err)
	spin, err := wheel.ExtendedMethod("spin", nil)
	require.NoError(t, err)
	assert.Equal(t, types.IntegerType{}, spin.ReturnType())
}
