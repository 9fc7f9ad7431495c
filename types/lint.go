package types

import (
	"fmt"
	"strings"
)

// LintResult holds errors and warnings from a static pipeline check.
type LintResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no lint errors.
func (r *LintResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Lint checks a PipelineConfig for problems that can be spotted without
// resolving any step.
func Lint(cfg *PipelineConfig) *LintResult {
	r := &LintResult{}

	if len(cfg.Steps) == 0 {
		r.Warnings = append(r.Warnings, "pipeline has no steps")
		return r
	}

	hasWriter := false
	for i, s := range cfg.Steps {
		if strings.TrimSpace(s.Type) == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("pipeline[%d]: type is required", i))
			continue
		}
		if !strings.Contains(s.Type, ":") {
			r.Errors = append(r.Errors, fmt.Sprintf("pipeline[%d]: type %q must have the form <namespace>:<Name>", i, s.Type))
		}
		if _, name, ok := strings.Cut(s.Type, ":"); ok && strings.HasPrefix(strings.TrimSpace(name), "Write") {
			hasWriter = true
		}
	}

	if !hasWriter {
		r.Warnings = append(r.Warnings, "pipeline has no Write* step; results will be discarded")
	}
	return r
}
