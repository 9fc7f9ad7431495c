package steps

import (
	"context"

	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

// SetRuntime updates the run's mode and chunk size and passes data through.
type SetRuntime struct {
	rc        *runtime.Context
	mode      runtime.Mode
	chunkSize int
}

func newSetRuntime(rc *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	params := struct {
		Mode      string `yaml:"mode"`
		ChunkSize int    `yaml:"chunk_size"`
	}{
		Mode:      string(runtime.DefaultMode),
		ChunkSize: runtime.DefaultChunkSize,
	}
	if err := pipeline.DecodeParams(p, &params); err != nil {
		return nil, err
	}
	// Validate now so a bad value fails before the run starts.
	probe := runtime.Context{Logger: runtime.NopLogger{}}
	if err := probe.Configure(runtime.Mode(params.Mode), params.ChunkSize); err != nil {
		return nil, err
	}
	return &SetRuntime{rc: rc, mode: runtime.Mode(params.Mode), chunkSize: params.ChunkSize}, nil
}

// Process applies the configuration and returns data unchanged.
func (s *SetRuntime) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	if err := s.rc.Configure(s.mode, s.chunkSize); err != nil {
		return nil, err
	}
	return data, nil
}
