package phpdoc_test

import (
	"testing"

	"github.com/shinyvision/phpreflect/internal/broker"
	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/phpdoc"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractFile = `<?php
namespace App\Contract;

interface Finder
{
    /**
     * @param string $key
     * @return Result
     */
    public function find($key);
}
`

const hierarchyFile = `<?php
namespace App;

abstract class Base
{
    /** @var int */
    protected $count;

    /**
     * @return Base
     */
    public function copy() {}

    /** {@inheritdoc} */
    public function describe() {}
}

class Middle extends Base
{
    /** {@inheritDoc} */
    public function copy() {}
}

class Leaf extends Middle implements Contract\Finder
{
    /** {@inheritdoc} */
    protected $count;

    /** {@inheritdoc} */
    public function copy() {}

    /** {@inheritdoc} */
    public function find($key) {}

    /** {@inheritdoc} */
    public function describe() {}

    /** Own words. */
    public function own() {}
}
`

func newTestBroker(t *testing.T) *broker.Broker {
	t.Helper()
	store := source.NewStore(parser.NewCachedParser(parser.NewDirectParser()), 10)
	reflector, err := source.NewReflector(store, nil)
	require.NoError(t, err)
	require.NoError(t, reflector.AddSource("/src/Contract.php", []byte(contractFile)))
	require.NoError(t, reflector.AddSource("/src/App.php", []byte(hierarchyFile)))
	return broker.NewDefault(reflector, store, cache.NewMemoryCache(), broker.Extensions{})
}

func appBlock(class, docComment string) phpdoc.Block {
	return phpdoc.Block{DocComment: docComment, File: "/src/App.php", Namespace: "App", Class: class}
}

func TestInheritDocWalksParents(t *testing.T) {
	b := newTestBroker(t)

	block := phpdoc.ResolveForMethod(b, appBlock("App\\Leaf", "/** {@inheritdoc} */"), "copy")
	assert.Contains(t, block.DocComment, "@return Base")
	assert.Equal(t, "/src/App.php", block.File)
	assert.Equal(t, "App\\Base", block.Class)

	property := phpdoc.ResolveForProperty(b, appBlock("App\\Leaf", "/** {@inheritdoc} */"), "count")
	assert.Equal(t, "/** @var int */", property.DocComment)
}

func TestInheritDocFallsBackToInterfaces(t *testing.T) {
	b := newTestBroker(t)

	block := phpdoc.ResolveForMethod(b, appBlock("App\\Leaf", "/** {@inheritdoc} */"), "find")
	assert.Contains(t, block.DocComment, "@param string $key")
	assert.Equal(t, "/src/Contract.php", block.File)
	assert.Equal(t, "App\\Contract", block.Namespace)
	assert.Equal(t, "App\\Contract\\Finder", block.Class)
}

func TestInheritDocKeepsCommentWithoutAncestorDoc(t *testing.T) {
	b := newTestBroker(t)

	// Base::describe itself only says {@inheritdoc}, with nothing above it
	block := phpdoc.ResolveForMethod(b, appBlock("App\\Leaf", "/** {@inheritdoc} */"), "describe")
	assert.Equal(t, "/** {@inheritdoc} */", block.DocComment)

	own := phpdoc.ResolveForMethod(b, appBlock("App\\Leaf", "/** Own words. */"), "own")
	assert.Equal(t, appBlock("App\\Leaf", "/** Own words. */"), own)

	unknown := phpdoc.ResolveForMethod(b, appBlock("App\\Missing", "/** {@inheritdoc} */"), "copy")
	assert.Equal(t, "/** {@inheritdoc} */", unknown.DocComment)
}

func TestInheritedTypesReachMethodReflections(t *testing.T) {
	b := newTestBroker(t)

	leaf, err := b.GetClass("App\\Leaf")
	require.NoError(t, err)

	copyMethod, err := leaf.ExtendedMethod("copy", nil)
	require.NoError(t, err)
	assert.Equal(t, "App\\Base", copyMethod.ReturnType().Describe())

	find, err := leaf.ExtendedMethod("find", nil)
	require.NoError(t, err)
	assert.Equal(t, "string", find.Parameters()[0].Type().Describe())
	assert.Equal(t, "App\\Contract\\Result", find.ReturnType().Describe())

	count, err := leaf.ExtendedProperty("count", nil)
	require.NoError(t, err)
	assert.Equal(t, "int", count.Type().Describe())
}

func TestInheritDocEndsOnCyclicHierarchy(t *testing.T) {
	store := source.NewStore(parser.NewCachedParser(parser.NewDirectParser()), 10)
	reflector, err := source.NewReflector(store, nil)
	require.NoError(t, err)
	require.NoError(t, reflector.AddSource("/src/Loop.php", []byte(`<?php
namespace App;

class Ping extends Pong
{
    /** {@inheritdoc} */
    public function hit() {}
}

class Pong extends Ping
{
    /** {@inheritdoc} */
    public function hit() {}
}
`)))
	b := broker.NewDefault(reflector, store, cache.NewMemoryCache(), broker.Extensions{})

	block := phpdoc.ResolveForMethod(b, phpdoc.Block{
		DocComment: "/** {@inheritdoc} */",
		File:       "/src/Loop.php",
		Namespace:  "App",
		Class:      "App\\Ping",
	}, "hit")
	assert.Equal(t, "/** {@inheritdoc} */", block.DocComment)
}
