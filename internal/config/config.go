package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"
)

// FileName is looked up in the workspace root when no config path is given.
const FileName = "phpreflect.yaml"

type CacheConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type LogConfig struct {
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file"`
}

type Config struct {
	WorkspaceRoot string      `yaml:"-"`
	Paths         []string    `yaml:"paths"`
	Stubs         []string    `yaml:"stubs"`
	VendorDir     string      `yaml:"vendor_dir"`
	PhpPath       string      `yaml:"php_path"`
	Cache         CacheConfig `yaml:"cache"`
	Log           LogConfig   `yaml:"log"`

	Psr4 Psr4Map `yaml:"-"`
}

func NewConfig() *Config {
	return &Config{
		WorkspaceRoot: ".",
		Paths:         []string{"src"},
		VendorDir:     "vendor",
		PhpPath:       "php",
		Cache: CacheConfig{
			Backend: cache.BackendBadger,
			Dir:     ".phpreflect",
		},
		Log:  LogConfig{Verbosity: 1},
		Psr4: make(Psr4Map),
	}
}

// Load reads the YAML file at path over the defaults. An empty path means
// phpreflect.yaml in root, which may be absent.
func Load(path, root string) (*Config, error) {
	c := NewConfig()
	if root != "" {
		c.WorkspaceRoot = root
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(c.WorkspaceRoot, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Psr4 == nil {
		c.Psr4 = make(Psr4Map)
	}
	return c, nil
}

// Abs makes p absolute against the workspace root.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkspaceRoot, p)
}

// SourcePaths returns the analysed directories as absolute paths, without
// duplicates.
func (c *Config) SourcePaths() []string {
	return c.absUnique(c.Paths)
}

// StubPaths returns the directories of extra built-in declarations, such as
// a checkout of phpstorm-stubs.
func (c *Config) StubPaths() []string {
	return c.absUnique(c.Stubs)
}

func (c *Config) absUnique(list []string) []string {
	paths := make([]string, 0, len(list))
	for _, p := range list {
		if abs := filepath.Clean(c.Abs(p)); !slices.Contains(paths, abs) {
			paths = append(paths, abs)
		}
	}
	return paths
}

func (c *Config) CacheDir() string {
	return c.Abs(c.Cache.Dir)
}

// LoadPsr4Map reads the composer PSR-4 map, first through the php binary from
// the generated autoloader and then from composer.json. Failures are logged.
func (c *Config) LoadPsr4Map() {
	logger := commonlog.GetLoggerf("phpreflect.config")

	if c.VendorDir != "" {
		autoloadFile := filepath.Join(c.Abs(c.VendorDir), "composer", "autoload_psr4.php")
		psr4Map, err := GetPsr4Map(autoloadFile, c.PhpPath)
		if err == nil {
			c.Psr4 = psr4Map
			logger.Infof("loaded %d psr-4 mappings", len(c.Psr4))
			return
		}
		logger.Warningf("could not load psr4 map: %v", err)
	}

	psr4Map, err := GetComposerPsr4Map(filepath.Join(c.WorkspaceRoot, "composer.json"))
	if err != nil {
		logger.Warningf("could not read composer.json autoload: %v", err)
		return
	}
	c.Psr4 = psr4Map
	logger.Infof("loaded %d psr-4 mappings from composer.json", len(c.Psr4))
}

// Resolve finds the file PSR-4 expects to declare className.
func (c *Config) Resolve(className string) (string, bool) {
	return c.Psr4.Resolve(className, c.WorkspaceRoot)
}
