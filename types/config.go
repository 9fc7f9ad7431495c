// Package types holds the pipeline configuration document and its parsing.
package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration reports a malformed pipeline document.
var ErrConfiguration = errors.New("configuration error")

// PipelineConfig represents the top-level pipeline document.
type PipelineConfig struct {
	Steps []StepDescriptor `yaml:"pipeline" json:"pipeline"`
}

// StepDescriptor names a step implementation and its constructor parameters.
type StepDescriptor struct {
	Type string `yaml:"type" json:"type"`
	// Params is kept as decoded; the step resolver checks it is a mapping.
	Params any `yaml:"params,omitempty" json:"params,omitempty"`
}

// ParseYAML parses a YAML pipeline document.
func ParseYAML(data []byte) (*PipelineConfig, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing pipeline config: %w", err)
	}
	return FromDocument(root)
}

// ParseJSON parses a JSON pipeline document.
func ParseJSON(data []byte) (*PipelineConfig, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing pipeline config: %w", err)
	}
	return FromDocument(root)
}

// FromDocument builds a PipelineConfig from an already decoded document.
// The root must be a mapping and its "pipeline" key, when present, a
// sequence of step mappings.
func FromDocument(root any) (*PipelineConfig, error) {
	m, ok := asMapping(root)
	if !ok {
		return nil, fmt.Errorf("%w: config root must be a mapping, got %s", ErrConfiguration, kindOf(root))
	}

	raw, present := m["pipeline"]
	if !present || raw == nil {
		return &PipelineConfig{}, nil
	}
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: key 'pipeline' must be a sequence, got %s", ErrConfiguration, kindOf(raw))
	}

	cfg := &PipelineConfig{Steps: make([]StepDescriptor, 0, len(seq))}
	for i, item := range seq {
		sm, ok := asMapping(item)
		if !ok {
			return nil, fmt.Errorf("%w: pipeline[%d] must be a mapping, got %s", ErrConfiguration, i, kindOf(item))
		}
		desc := StepDescriptor{}
		if t, ok := sm["type"].(string); ok {
			desc.Type = t
		} else if sm["type"] != nil {
			return nil, fmt.Errorf("%w: pipeline[%d].type must be a string", ErrConfiguration, i)
		}
		desc.Params = sm["params"]
		cfg.Steps = append(cfg.Steps, desc)
	}
	return cfg, nil
}

func asMapping(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
