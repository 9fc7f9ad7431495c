package steps

import (
	"context"
	"fmt"

	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

// Limit keeps the first Count records, or the records in [Start, End) when
// a range is given. Negative indices count from the end.
type Limit struct {
	count      int
	start, end int
	ranged     bool
}

func newLimit(_ *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	var params struct {
		Count *int `yaml:"count"`
		Start *int `yaml:"start"`
		End   *int `yaml:"end"`
	}
	if err := pipeline.DecodeParams(p, &params); err != nil {
		return nil, err
	}

	if params.Start != nil || params.End != nil {
		if params.Start == nil || params.End == nil {
			return nil, fmt.Errorf("both 'start' and 'end' must be provided for range mode")
		}
		return &Limit{start: *params.Start, end: *params.End, ranged: true}, nil
	}
	if params.Count == nil {
		return nil, fmt.Errorf("either 'count' or ('start' and 'end') must be provided")
	}
	return &Limit{count: *params.Count}, nil
}

// Process returns the selected slice as a new batch.
func (s *Limit) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	start, end := 0, s.count
	if s.ranged {
		start, end = s.start, s.end
	}
	lo, hi := clampIndex(start, len(data)), clampIndex(end, len(data))
	out := pipeline.Batch{}
	if lo < hi {
		out = append(out, data[lo:hi]...)
	}
	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
