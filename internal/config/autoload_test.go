package config

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPsr4Map(t *testing.T) {
	if _, err := exec.LookPath("php"); err != nil {
		t.Skip("php binary not available")
	}
	mockAutoloadFile, err := filepath.Abs("testdata/vendor/composer/autoload_psr4.php")
	require.NoError(t, err)

	psr4Map, err := GetPsr4Map(mockAutoloadFile, "php")
	require.NoError(t, err)

	mockDir, err := filepath.Abs("testdata")
	require.NoError(t, err)

	expected := Psr4Map{
		"App\\":         []string{filepath.Join(mockDir, "src")},
		"App\\Legacy\\": []string{filepath.Join(mockDir, "legacy")},
	}

	assert.Equal(t, expected, psr4Map)
}

func TestGetPsr4MapMissingFile(t *testing.T) {
	_, err := GetPsr4Map("testdata/vendor/composer/missing.php", "php")
	assert.Error(t, err)
}

func TestGetComposerPsr4Map(t *testing.T) {
	psr4Map, err := GetComposerPsr4Map("testdata/composer.json")
	require.NoError(t, err)

	mockDir, err := filepath.Abs("testdata")
	require.NoError(t, err)

	assert.Equal(t, Psr4Map{
		"App\\":         []string{filepath.Join(mockDir, "src")},
		"App\\Legacy\\": []string{filepath.Join(mockDir, "legacy"), filepath.Join(mockDir, "legacy-extra")},
	}, psr4Map)
}

func TestPsr4Resolve(t *testing.T) {
	psr4Map := Psr4Map{
		"App\\":         []string{"src"},
		"App\\Legacy\\": []string{"missing", "legacy"},
	}

	file, ok := psr4Map.Resolve("\\App\\Model\\User", "testdata")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("testdata", "src", "Model", "User.php"), file)

	file, ok = psr4Map.Resolve("App\\Legacy\\Mailer", "testdata")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("testdata", "legacy", "Mailer.php"), file)

	// the prefix matches whatever case the class was written in
	file, ok = psr4Map.Resolve("app\\legacy\\Mailer", "testdata")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("testdata", "legacy", "Mailer.php"), file)
	file, ok = psr4Map.Resolve("APP\\Model\\User", "testdata")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("testdata", "src", "Model", "User.php"), file)

	_, ok = psr4Map.Resolve("App\\Model\\Group", "testdata")
	assert.False(t, ok)
	_, ok = psr4Map.Resolve("Vendor\\Thing", "testdata")
	assert.False(t, ok)
}
