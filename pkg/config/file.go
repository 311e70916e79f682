package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBaseName is the stem of the configuration file names.
const DefaultBaseName = "MagnusLiber"

var fileExtensions = []string{".json", ".yaml", ".yml"}

// FileLoader reads the first configuration file found in Dirs.
// Within each directory a "<base>.dev.*" file wins over "<base>.*".
type FileLoader struct {
	Dirs     []string
	BaseName string
}

// DefaultSearchDirs returns the directories searched when none are given.
func DefaultSearchDirs() []string {
	return []string{".", ".."}
}

// Candidates lists the file paths checked, in priority order.
func (l FileLoader) Candidates() []string {
	base := strings.TrimSpace(l.BaseName)
	if base == "" {
		base = DefaultBaseName
	}
	dirs := l.Dirs
	if len(dirs) == 0 {
		dirs = DefaultSearchDirs()
	}

	var out []string
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		for _, stem := range []string{base + ".dev", base} {
			for _, ext := range fileExtensions {
				out = append(out, filepath.Join(dir, stem+ext))
			}
		}
	}
	return out
}

// Find returns the first existing candidate path.
func (l FileLoader) Find() (string, error) {
	for _, path := range l.Candidates() {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		return path, nil
	}
	return "", ErrNotFound
}

// Load decodes the located file over DefaultConfig.
func (l FileLoader) Load() (Config, error) {
	path, err := l.Find()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile decodes one configuration file. The format follows the extension.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}
