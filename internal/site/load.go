package site

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// keyDelim separates nested keys while loading. Sidebar route prefixes and
// links may contain dots, so the usual "." cannot be used.
const keyDelim = "::"

// Load reads a site definition from a YAML or JSON file. The parser is
// chosen by file extension.
func Load(path string) (*Site, error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported site file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}

	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to read site file %s: %w", path, err)
	}

	var s Site
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode site file %s: %w", path, err)
	}
	return &s, nil
}

// LoadOrDefault loads the site file at path, or returns the built-in
// nord.dev site when path is empty.
func LoadOrDefault(path string) (*Site, error) {
	if path == "" {
		return Nord(), nil
	}
	return Load(path)
}
