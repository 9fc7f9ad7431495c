// Package config loads pipeline documents from disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/configura/configura/types"
)

// ErrUnsupportedExtension is returned for config files that are neither
// YAML nor JSON.
var ErrUnsupportedExtension = errors.New("unsupported config format")

// LoadPipelineConfig reads and parses a pipeline config file. The format is
// chosen by extension: .yaml, .yml or .json.
func LoadPipelineConfig(path string) (*types.PipelineConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path is not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parse, ok := parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w %q (allowed: .yaml, .yml, .json)", ErrUnsupportedExtension, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline config %s: %w", path, err)
	}
	return parse(data)
}

var parsers = map[string]func([]byte) (*types.PipelineConfig, error){
	".yaml": types.ParseYAML,
	".yml":  types.ParseYAML,
	".json": types.ParseJSON,
}
