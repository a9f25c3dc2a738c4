package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectConfig = `paths:
  - src
vendor_dir: ""
cache:
  backend: sqlite
  dir: .cache
`

const projectSource = `<?php
namespace Shop;

interface Sellable {}

/**
 * @method static Product find(int $id)
 */
class Product implements Sellable
{
    const CURRENCY = 'EUR';

    /** @var int */
    protected $price;

    /**
     * @param int $amount
     * @return static
     */
    public function discount($amount) {}

    private function audit(string ...$notes): void {}
}

/**
 * @return Product[]
 */
function catalogue(string $filter = '') {}
`

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "phpreflect.yaml"), []byte(projectConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Shop.php"), []byte(projectSource), 0o644))
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassCommand(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "--root", root, "class", "Shop\\Product")
	require.NoError(t, err)

	assert.Contains(t, out, "class Shop\\Product\n")
	assert.Contains(t, out, "  implements: Shop\\Sellable\n")
	assert.Contains(t, out, "  public const CURRENCY = 'EUR'\n")
	assert.Contains(t, out, "  protected int $price\n")
	assert.Contains(t, out, "  private function audit(string ...$notes): void\n")
	assert.Contains(t, out, "  public function discount(int $amount): static\n")
}

func TestClassCommandUnknownClass(t *testing.T) {
	root := newProject(t)

	_, err := run(t, "--root", root, "class", "Shop\\Missing")
	assert.ErrorContains(t, err, "Class Shop\\Missing was not found")
}

func TestFunctionCommand(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "--root", root, "function", "catalogue", "--namespace", "Shop")
	require.NoError(t, err)
	assert.Contains(t, out, "function Shop\\catalogue(string $filter = ...): Shop\\Product[]\n")

	out, err = run(t, "--root", root, "function", "strlen")
	require.NoError(t, err)
	assert.Equal(t, "function strlen(string $string): int\n", out)

	_, err = run(t, "--root", root, "function", "catalogue")
	assert.ErrorContains(t, err, "Function catalogue not found")
}

func TestCacheClearCommand(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "--root", root, "cache", "clear")
	require.NoError(t, err)
	assert.Equal(t, "cleared sqlite cache\n", out)
	assert.FileExists(t, filepath.Join(root, ".cache", "cache.sqlite"))
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "cache", "clear")
	assert.Error(t, err)
}
