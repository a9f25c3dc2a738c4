package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const repositorySource = `<?php
namespace App;

use App\Model\User;

class Repository extends Base
{
    /** @return User */
    public function find(int $id) {}

    public function owner(): User {}

    public function first()
    {
        $count = strlen('x');
        $this->items = [];
        return $this->find(1);
    }

    public static function make(): static
    {
        return new static();
    }
}

function helper(): Repository
{
    return Repository::make();
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"phpreflect.yaml":    "paths: [src]\nvendor_dir: \"\"\ncache:\n  backend: memory\n",
		"src/Repository.php": repositorySource,
		"src/Base.php":       "<?php\nnamespace App;\n\nabstract class Base\n{\n    /** @var array<int, Model\\User> */\n    protected $items;\n}\n",
		"src/Model/User.php": "<?php\nnamespace App\\Model;\n\n/** A user. */\nclass User {}\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newInitializedServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := writeProject(t)
	s := NewServer(nil, "")
	rootURI := documentURI(root)
	_, err := s.initialize(nil, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.shutdown(nil) })
	return s, root
}

// positionOf finds the nth occurrence of needle, offset by shift characters.
func positionOf(t *testing.T, text, needle string, nth, shift int) protocol.Position {
	t.Helper()
	offset := -1
	for i := 0; i <= nth; i++ {
		next := strings.Index(text[offset+1:], needle)
		require.NotEqual(t, -1, next, "occurrence %d of %q", i, needle)
		offset += next + 1
	}
	offset += shift
	line := strings.Count(text[:offset], "\n")
	column := offset - (strings.LastIndex(text[:offset], "\n") + 1)
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(column)}
}

func hover(t *testing.T, s *Server, uri protocol.DocumentUri, pos protocol.Position) string {
	t.Helper()
	result, err := s.onHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     pos,
		},
	})
	require.NoError(t, err)
	if result == nil {
		return ""
	}
	return result.Contents.(protocol.MarkupContent).Value
}

func TestHover(t *testing.T) {
	s, root := newInitializedServer(t)
	uri := documentURI(filepath.Join(root, "src", "Repository.php"))
	require.NoError(t, s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "php", Text: repositorySource},
	}))

	assert.Equal(t, "```php\nclass App\\Base\n```", hover(t, s, uri, positionOf(t, repositorySource, "Base", 0, 1)))

	user := hover(t, s, uri, positionOf(t, repositorySource, "User {}", 0, 0))
	assert.Contains(t, user, "class App\\Model\\User")
	assert.Contains(t, user, "/** A user. */")

	assert.Equal(t, "```php\nfunction strlen(string $string): int\n```", hover(t, s, uri, positionOf(t, repositorySource, "strlen", 0, 2)))

	find := hover(t, s, uri, positionOf(t, repositorySource, "find(1)", 0, 1))
	assert.Equal(t, "```php\npublic function find(int $id): App\\Model\\User\n```\nApp\\Repository", find)

	items := hover(t, s, uri, positionOf(t, repositorySource, "items", 0, 1))
	assert.Equal(t, "```php\nprotected App\\Model\\User[] $items\n```\nApp\\Base", items)

	maker := hover(t, s, uri, positionOf(t, repositorySource, "make();", 0, 1))
	assert.Contains(t, maker, "public static function make(): static")
	assert.Contains(t, maker, "\nApp\\Repository")

	assert.Empty(t, hover(t, s, uri, positionOf(t, repositorySource, "$count", 0, 2)))
}

func TestDefinition(t *testing.T) {
	s, root := newInitializedServer(t)
	uri := documentURI(filepath.Join(root, "src", "Repository.php"))

	result, err := s.onDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     positionOf(t, repositorySource, "Base", 0, 0),
		},
	})
	require.NoError(t, err)
	locations, ok := result.([]protocol.Location)
	require.True(t, ok)
	require.Len(t, locations, 1)
	assert.Equal(t, documentURI(filepath.Join(root, "src", "Base.php")), locations[0].URI)
	assert.Equal(t, protocol.UInteger(3), locations[0].Range.Start.Line)

	result, err = s.onDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     positionOf(t, repositorySource, "find(1)", 0, 0),
		},
	})
	require.NoError(t, err)
	locations = result.([]protocol.Location)
	assert.Equal(t, uri, locations[0].URI)
	assert.Equal(t, protocol.UInteger(8), locations[0].Range.Start.Line)

	result, err = s.onDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     positionOf(t, repositorySource, "strlen", 0, 0),
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDidChangeAppliesIncrementalEdits(t *testing.T) {
	s, root := newInitializedServer(t)
	uri := documentURI(filepath.Join(root, "src", "Repository.php"))
	require.NoError(t, s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "php", Text: repositorySource},
	}))

	start := positionOf(t, repositorySource, "strlen", 0, 0)
	end := start
	end.Character += protocol.UInteger(len("strlen"))
	require.NoError(t, s.didChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: start, End: end},
				Text:  "count",
			},
		},
	}))

	s.mu.Lock()
	text := s.docs[uri]
	s.mu.Unlock()
	assert.Contains(t, text, "$count = count('x');")
	assert.Contains(t, hover(t, s, uri, start), "function count($value, $mode = ...)")

	require.NoError(t, s.didClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	s.mu.Lock()
	_, open := s.docs[uri]
	s.mu.Unlock()
	assert.False(t, open)
}

func TestUnsavedEditsAreIndexed(t *testing.T) {
	s, root := newInitializedServer(t)
	uri := documentURI(filepath.Join(root, "src", "Repository.php"))
	require.NoError(t, s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "php", Text: repositorySource},
	}))

	edited := strings.Replace(repositorySource, "return $this->find(1);", "return $this->fresh();", 1)
	edited = strings.Replace(edited, "    public function owner(): User {}\n",
		"    public function owner(): User {}\n\n    public function fresh(): int {}\n\n    public function spawn(): Fresh {}\n", 1)
	require.NoError(t, s.didChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: edited}},
	}))

	assert.Equal(t, "```php\npublic function fresh(): int\n```\nApp\\Repository", hover(t, s, uri, positionOf(t, edited, "fresh();", 0, 1)))

	spawn := positionOf(t, edited, "Fresh {}", 0, 1)
	assert.Empty(t, hover(t, s, uri, spawn))

	freshURI := documentURI(filepath.Join(root, "src", "Fresh.php"))
	require.NoError(t, s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: freshURI, LanguageID: "php", Text: "<?php\nnamespace App;\n\nclass Fresh {}\n"},
	}))
	assert.Equal(t, "```php\nclass App\\Fresh\n```", hover(t, s, uri, spawn))

	// never saved, so closing it takes the class away again
	require.NoError(t, s.didClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: freshURI},
	}))
	assert.Empty(t, hover(t, s, uri, spawn))
}

func TestClosingRestoresTheSavedFile(t *testing.T) {
	s, root := newInitializedServer(t)
	uri := documentURI(filepath.Join(root, "src", "Base.php"))
	require.NoError(t, s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "php", Text: "<?php\nnamespace App;\n\nabstract class Renamed {}\n"},
	}))

	s.mu.Lock()
	assert.False(t, s.workspace.Broker.HasClass("App\\Base"))
	assert.True(t, s.workspace.Broker.HasClass("App\\Renamed"))
	s.mu.Unlock()

	require.NoError(t, s.didClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, s.workspace.Broker.HasClass("App\\Base"))
	assert.False(t, s.workspace.Broker.HasClass("App\\Renamed"))
}

func TestWorkspaceSymbol(t *testing.T) {
	s, root := newInitializedServer(t)

	symbols, err := s.onWorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "USER"})
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "User", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindClass, symbols[0].Kind)
	require.NotNil(t, symbols[0].ContainerName)
	assert.Equal(t, "App\\Model", *symbols[0].ContainerName)
	assert.Equal(t, documentURI(filepath.Join(root, "src", "Model", "User.php")), symbols[0].Location.URI)
	assert.Equal(t, protocol.UInteger(4), symbols[0].Location.Range.Start.Line)

	symbols, err = s.onWorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{})
	require.NoError(t, err)
	var names []string
	for _, symbol := range symbols {
		names = append(names, qualifiedSymbol(symbol))
	}
	assert.Equal(t, []string{"App\\Base", "App\\Model\\User", "App\\Repository"}, names)
}

func TestExplicitConfigFileWins(t *testing.T) {
	root := writeProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "Other.php"), []byte("<?php\nnamespace Lib;\nclass Other {}\n"), 0o644))
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("paths: [lib]\nvendor_dir: \"\"\ncache:\n  backend: memory\n"), 0o644))

	s := NewServer(nil, explicit)
	rootURI := documentURI(root)
	_, err := s.initialize(nil, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.shutdown(nil) })

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, []string{"lib"}, s.config.Paths)
	assert.True(t, s.workspace.Broker.HasClass("Lib\\Other"))
	assert.False(t, s.workspace.Broker.HasClass("App\\Base"))
}
