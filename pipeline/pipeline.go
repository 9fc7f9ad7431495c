// Package pipeline provides the step contract, the step registry and the
// engine that runs a configured sequence of steps over a batch of records.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/configura/configura/runtime"
	"github.com/configura/configura/types"
)

// Stage is a step together with the reference it was built from.
type Stage struct {
	Type string
	Step Step
}

// Pipeline executes a sequence of stages in order.
type Pipeline struct {
	stages []Stage
	logger runtime.Logger
}

// New creates a Pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: runtime.NopLogger{}}
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Run threads data through each stage sequentially, replacing it with each
// stage's result. It stops on the first error, wrapping it in a StepError.
// A nil ctx is treated as context.Background().
func (p *Pipeline) Run(ctx context.Context, data Batch) (Batch, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for i, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Index: i, Type: s.Type, Err: fmt.Errorf("pipeline cancelled: %w", err)}
		}
		p.logger.Debug("step started", map[string]any{"index": i, "step": s.Type, "records": len(data)})
		out, err := s.Step.Process(ctx, data)
		if err != nil {
			return nil, &StepError{Index: i, Type: s.Type, Err: err}
		}
		data = out
		p.logger.Debug("step finished", map[string]any{"index": i, "step": s.Type, "records": len(data)})
	}
	return data, nil
}

// RunResult summarizes a completed engine run.
type RunResult struct {
	RunID    string
	Steps    int
	Records  int
	Duration time.Duration
}

// Engine builds pipelines from configuration documents and runs them.
//
// Each run gets its own runtime.Context. Steps of one run never execute
// concurrently; the Context is not synchronized, so a step must not hand it
// to goroutines that outlive its Process call.
type Engine struct {
	registry *Registry
	logger   runtime.Logger
}

// NewEngine creates an Engine resolving steps from reg.
func NewEngine(reg *Registry, logger runtime.Logger) *Engine {
	if logger == nil {
		logger = runtime.NopLogger{}
	}
	return &Engine{registry: reg, logger: logger}
}

// Compile resolves and instantiates every step of cfg against rc without
// executing any of them. A nil rc gets a fresh context.
func (e *Engine) Compile(cfg *types.PipelineConfig, rc *runtime.Context) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", ErrConfiguration)
	}
	if rc == nil {
		rc = runtime.NewContext(e.logger)
	}
	stages := make([]Stage, 0, len(cfg.Steps))
	for i, desc := range cfg.Steps {
		step, err := e.registry.Build(desc.Type, desc.Params, rc)
		if err != nil {
			return nil, &StepError{Index: i, Type: desc.Type, Err: err}
		}
		stages = append(stages, Stage{Type: desc.Type, Step: step})
	}
	p := New(stages...)
	p.logger = rc.Logger
	return p, nil
}

// Execute compiles cfg and runs it starting from an empty batch. The final
// batch is discarded; output is produced by writer steps.
func (e *Engine) Execute(ctx context.Context, cfg *types.PipelineConfig) (*RunResult, error) {
	start := time.Now()
	rc := runtime.NewContext(e.logger)

	p, err := e.Compile(cfg, rc)
	if err != nil {
		return nil, err
	}

	rc.Logger.Debug("pipeline started", map[string]any{"steps": p.Len()})
	out, err := p.Run(ctx, nil)
	if err != nil {
		rc.Logger.Error("pipeline failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	res := &RunResult{
		RunID:    rc.RunID,
		Steps:    p.Len(),
		Records:  len(out),
		Duration: time.Since(start),
	}
	rc.Logger.Info("pipeline finished", map[string]any{
		"steps":       res.Steps,
		"records":     res.Records,
		"duration_ms": res.Duration.Milliseconds(),
	})
	return res, nil
}

// Run is Execute without the summary.
func (e *Engine) Run(ctx context.Context, cfg *types.PipelineConfig) error {
	_, err := e.Execute(ctx, cfg)
	return err
}

// RunDocument checks the shape of an already decoded document and runs it.
func (e *Engine) RunDocument(ctx context.Context, doc any) error {
	cfg, err := types.FromDocument(doc)
	if err != nil {
		return err
	}
	return e.Run(ctx, cfg)
}
