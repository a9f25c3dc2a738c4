package broker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/config"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/source"
)

// maxOpenDocuments bounds the parsed files kept in memory at once.
const maxOpenDocuments = 500

// maxCachedTrees bounds the syntax trees memoized by source text.
const maxCachedTrees = 256

// Workspace is a broker over a configured project together with the cache
// it writes to. Close releases the cache and the memoized syntax trees.
type Workspace struct {
	Broker *Broker
	Store  *source.Store
	Cache  cache.Store
	Config *config.Config

	parser *parser.CachedParser
}

// OpenWorkspace indexes every PHP file under the configured paths and falls
// back to the PSR-4 map for classes declared elsewhere.
func OpenWorkspace(cfg *config.Config) (*Workspace, error) {
	if len(cfg.Psr4) == 0 {
		cfg.LoadPsr4Map()
	}

	c, err := cache.New(cfg.Cache.Backend, cfg.CacheDir())
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	trees := parser.NewBoundedCachedParser(parser.NewDirectParser(), maxCachedTrees)
	store := source.NewStore(trees, maxOpenDocuments)
	reflector, err := source.NewReflector(store, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	for _, root := range cfg.StubPaths() {
		count, err := reflector.AddStubs(root)
		if err != nil {
			c.Close()
			return nil, err
		}
		logger.Infof("indexed %d stub files from %s", count, root)
	}

	files := 0
	for _, root := range cfg.SourcePaths() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".php" {
				return nil
			}
			if err := reflector.AddFile(path); err != nil {
				logger.Warningf("index %s: %v", path, err)
				return nil
			}
			files++
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.Close()
			return nil, fmt.Errorf("index %s: %w", root, err)
		}
	}
	logger.Infof("indexed %d files", files)

	return &Workspace{
		Broker: NewDefault(reflector, store, c, Extensions{}),
		Store:  store,
		Cache:  c,
		Config: cfg,
		parser: trees,
	}, nil
}

func (w *Workspace) Close() error {
	w.parser.Close()
	return w.Cache.Close()
}
