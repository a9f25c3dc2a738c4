package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Psr4Map maps namespace prefixes ("App\\") to base directories.
type Psr4Map map[string][]string

func GetPsr4Map(autoloadFile, phpPath string) (Psr4Map, error) {
	// It is important to use the absolute path to the file, otherwise php will not find it.
	absAutoloadFile, err := filepath.Abs(autoloadFile)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path for %s: %w", autoloadFile, err)
	}
	if _, err := os.Stat(absAutoloadFile); err != nil {
		return nil, fmt.Errorf("could not find %s: %w", absAutoloadFile, err)
	}
	if phpPath == "" {
		phpPath = "php"
	}

	cmd := exec.Command(phpPath, "-r", fmt.Sprintf("echo json_encode(require '%s');", absAutoloadFile))
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("could not execute php script: %w", err)
	}

	var psr4Map Psr4Map
	if err := json.Unmarshal(out, &psr4Map); err != nil {
		return nil, fmt.Errorf("could not unmarshal json: %w", err)
	}

	return psr4Map, nil
}

type composerFile struct {
	Autoload struct {
		Psr4 map[string]json.RawMessage `json:"psr-4"`
	} `json:"autoload"`
	AutoloadDev struct {
		Psr4 map[string]json.RawMessage `json:"psr-4"`
	} `json:"autoload-dev"`
}

// GetComposerPsr4Map reads the autoload and autoload-dev PSR-4 sections of a
// composer.json. Directories are made absolute against its directory.
func GetComposerPsr4Map(composerJSON string) (Psr4Map, error) {
	data, err := os.ReadFile(composerJSON)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", composerJSON, err)
	}
	var composer composerFile
	if err := json.Unmarshal(data, &composer); err != nil {
		return nil, fmt.Errorf("could not unmarshal %s: %w", composerJSON, err)
	}

	base, err := filepath.Abs(filepath.Dir(composerJSON))
	if err != nil {
		return nil, err
	}
	psr4Map := make(Psr4Map)
	for _, section := range []map[string]json.RawMessage{composer.Autoload.Psr4, composer.AutoloadDev.Psr4} {
		for prefix, raw := range section {
			dirs, err := composerDirs(raw)
			if err != nil {
				return nil, fmt.Errorf("psr-4 entry %q: %w", prefix, err)
			}
			for _, dir := range dirs {
				psr4Map[prefix] = append(psr4Map[prefix], filepath.Join(base, dir))
			}
		}
	}
	return psr4Map, nil
}

// composerDirs accepts both "src/" and ["src/", "lib/"].
func composerDirs(raw json.RawMessage) ([]string, error) {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}

// Resolve returns the first existing file for className under the longest
// matching prefix. Prefixes match case-insensitively, as PHP class names do.
// Relative directories are taken from root.
func (m Psr4Map) Resolve(className, root string) (string, bool) {
	className = strings.TrimLeft(className, "\\")

	prefixes := make([]string, 0, len(m))
	for prefix := range m {
		if len(className) >= len(prefix) && strings.EqualFold(className[:len(prefix)], prefix) {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	for _, prefix := range prefixes {
		relative := strings.ReplaceAll(className[len(prefix):], "\\", string(filepath.Separator)) + ".php"
		for _, dir := range m[prefix] {
			if !filepath.IsAbs(dir) && root != "" {
				dir = filepath.Join(root, dir)
			}
			candidate := filepath.Join(dir, relative)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}
