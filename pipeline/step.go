package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/configura/configura/runtime"
)

// Step is a single transform in a pipeline. Process receives the batch
// produced by the previous step (nil for the first step) and returns the
// batch handed to the next one. Implementations must not modify data in
// place.
type Step interface {
	Process(ctx context.Context, data Batch) (Batch, error)
}

// StepFunc adapts a function to the Step interface.
type StepFunc func(ctx context.Context, data Batch) (Batch, error)

// Process calls f.
func (f StepFunc) Process(ctx context.Context, data Batch) (Batch, error) {
	return f(ctx, data)
}

// Params are the constructor arguments declared for a step.
type Params map[string]any

// Factory constructs a step from its params. rc is the context of the run
// the step will take part in.
type Factory func(rc *runtime.Context, params Params) (Step, error)

// DecodeParams decodes params into out, which must be a pointer to a struct
// with yaml tags. Unknown keys and mistyped values are errors.
func DecodeParams(params Params, out any) error {
	if len(params) == 0 {
		params = Params{}
	}
	data, err := yaml.Marshal(map[string]any(params))
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}
	return nil
}
