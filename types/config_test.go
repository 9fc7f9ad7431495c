package types

import (
	"errors"
	"testing"
)

func TestParseYAML_Valid(t *testing.T) {
	yaml := `
pipeline:
  - type: "configura.io:ReadJson"
    params:
      path: data/input.json
  - type: "configura.steps:Limit"
    params:
      count: 2
  - type: "configura.io:WriteJson"
`
	cfg, err := ParseYAML([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if len(cfg.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(cfg.Steps))
	}
	if cfg.Steps[0].Type != "configura.io:ReadJson" {
		t.Errorf("Steps[0].Type = %q", cfg.Steps[0].Type)
	}
	params, ok := cfg.Steps[1].Params.(map[string]any)
	if !ok {
		t.Fatalf("Steps[1].Params = %T, want mapping", cfg.Steps[1].Params)
	}
	if params["count"] != 2 {
		t.Errorf("count = %v", params["count"])
	}
	if cfg.Steps[2].Params != nil {
		t.Errorf("expected nil params for step without params, got %v", cfg.Steps[2].Params)
	}
}

func TestParseJSON_Valid(t *testing.T) {
	cfg, err := ParseJSON([]byte(`{"pipeline": [{"type": "pkg:FilterByField", "params": {"key_name": "value", "operator": ">=", "value": 20}}]}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(cfg.Steps) != 1 || cfg.Steps[0].Type != "pkg:FilterByField" {
		t.Fatalf("unexpected steps: %+v", cfg.Steps)
	}
}

func TestFromDocument_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"root is sequence", `- a`},
		{"root is scalar", `hello`},
		{"pipeline is mapping", "pipeline:\n  a: b"},
		{"pipeline is string", `pipeline: nope`},
		{"step is scalar", "pipeline:\n  - just-a-string"},
		{"type is not string", "pipeline:\n  - type: [1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestFromDocument_MissingPipeline(t *testing.T) {
	cfg, err := ParseYAML([]byte(`name: empty`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if len(cfg.Steps) != 0 {
		t.Errorf("expected empty pipeline, got %d steps", len(cfg.Steps))
	}
}

func TestParseYAML_Malformed(t *testing.T) {
	_, err := ParseYAML([]byte("pipeline: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrConfiguration) {
		t.Error("syntax errors should not be reported as ErrConfiguration")
	}
}

func TestLint(t *testing.T) {
	cfg := &PipelineConfig{Steps: []StepDescriptor{
		{Type: "configura.steps:Limit"},
		{Type: ""},
		{Type: "noColon"},
	}}
	r := Lint(cfg)
	if r.IsValid() {
		t.Fatal("expected lint errors")
	}
	if len(r.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected missing-writer warning, got %v", r.Warnings)
	}

	ok := Lint(&PipelineConfig{Steps: []StepDescriptor{{Type: "configura.io:WriteJsonl"}}})
	if !ok.IsValid() || len(ok.Warnings) != 0 {
		t.Errorf("expected clean result, got %+v", ok)
	}
}
