package steps

import (
	"context"
	"fmt"

	"github.com/configura/configura/formats"
	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
	"github.com/configura/configura/validate"
)

// Validate checks records against a JSON Schema and keeps the valid ones.
// Rejected records are handled by the on_fail policy; under "dlq" they are
// written next to a path derived from the run's current input.
type Validate struct {
	rc        *runtime.Context
	validator *validate.Validator
	policy    validate.Policy
	paths     *runtime.PathResolver
	dlq       runtime.PathPolicy
	dlqFormat formats.Format
}

type validateParams struct {
	SchemaPath      string `yaml:"schema_path"`
	SchemaEncoding  string `yaml:"schema_encoding"`
	OnFail          string `yaml:"on_fail"`
	DLQPath         string `yaml:"dlq_path"`
	DLQFormat       string `yaml:"dlq_format"`
	DLQEncoding     string `yaml:"dlq_encoding"`
	DLQDir          string `yaml:"dlq_dir"`
	DLQUseInputName bool   `yaml:"dlq_use_input_name"`
	DLQSuffix       string `yaml:"dlq_suffix"`
	DLQTimestamp    bool   `yaml:"dlq_timestamp"`
}

func newValidate(rc *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	params := validateParams{
		OnFail:          string(validate.PolicySkip),
		DLQFormat:       string(formats.JSON),
		DLQDir:          "dlq",
		DLQUseInputName: true,
		DLQSuffix:       "_dlq",
	}
	if err := pipeline.DecodeParams(p, &params); err != nil {
		return nil, err
	}
	if params.SchemaPath == "" {
		return nil, fmt.Errorf("schema_path is required")
	}
	for _, enc := range []string{params.SchemaEncoding, params.DLQEncoding} {
		if err := checkEncoding(enc); err != nil {
			return nil, err
		}
	}

	policy, err := validate.ParsePolicy(params.OnFail)
	if err != nil {
		return nil, err
	}
	format, err := formats.ParseFormat(params.DLQFormat)
	if err != nil {
		return nil, err
	}
	schema, err := validate.LoadSchema(params.SchemaPath)
	if err != nil {
		return nil, err
	}

	return &Validate{
		rc:        rc,
		validator: validate.New(schema),
		policy:    policy,
		paths:     runtime.NewPathResolver(rc),
		dlq: runtime.PathPolicy{
			Explicit:     params.DLQPath,
			BaseDir:      params.DLQDir,
			UseInputName: params.DLQUseInputName,
			Suffix:       params.DLQSuffix,
			Timestamp:    params.DLQTimestamp,
			Extension:    format.Extension(),
		},
		dlqFormat: format,
	}, nil
}

// Process returns the records accepted by the schema.
func (s *Validate) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	var sink validate.DeadLetterSink
	if s.policy == validate.PolicyDLQ {
		path := s.paths.Derive(runtime.KindDLQ, s.dlq)
		if samePath(path, s.rc.InputPath) {
			return nil, fmt.Errorf("%w: dead-letter file %s", ErrOverwritesInput, path)
		}
		sink = &loggingSink{
			FileSink: validate.FileSink{
				Path:   path,
				Format: s.dlqFormat,
			},
			logger: s.rc.Logger,
		}
	}
	return s.validator.Validate(data, s.policy, sink)
}

type loggingSink struct {
	validate.FileSink
	logger runtime.Logger
}

func (s *loggingSink) WriteDeadLetters(bad []validate.Rejected) error {
	if err := s.FileSink.WriteDeadLetters(bad); err != nil {
		return err
	}
	s.logger.Warn("records written to dead-letter file", map[string]any{"path": s.Path, "records": len(bad)})
	return nil
}
