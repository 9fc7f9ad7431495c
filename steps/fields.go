package steps

import (
	"context"
	"fmt"

	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

// RenameFields renames keys in every record. All renames are applied
// against the original record, so swaps such as {a: b, b: a} work.
type RenameFields struct {
	mapping map[string]string
}

func newRenameFields(_ *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	var params struct {
		Mapping map[string]string `yaml:"mapping"`
	}
	if err := pipeline.DecodeParams(p, &params); err != nil {
		return nil, err
	}
	if params.Mapping == nil {
		return nil, fmt.Errorf("mapping is required")
	}
	return &RenameFields{mapping: params.Mapping}, nil
}

// Process returns renamed copies of the input records.
func (s *RenameFields) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	out := make(pipeline.Batch, 0, len(data))
	for _, rec := range data {
		cp := rec.Clone()
		for oldKey := range s.mapping {
			if _, ok := rec[oldKey]; ok {
				delete(cp, oldKey)
			}
		}
		for oldKey, newKey := range s.mapping {
			if v, ok := rec[oldKey]; ok {
				cp[newKey] = v
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// DropFields removes the listed keys from every record.
type DropFields struct {
	fields map[string]bool
}

func newDropFields(_ *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	var params struct {
		Fields []string `yaml:"fields"`
	}
	if err := pipeline.DecodeParams(p, &params); err != nil {
		return nil, err
	}
	if params.Fields == nil {
		return nil, fmt.Errorf("fields is required")
	}
	set := make(map[string]bool, len(params.Fields))
	for _, f := range params.Fields {
		set[f] = true
	}
	return &DropFields{fields: set}, nil
}

// Process returns copies of the input records without the dropped keys.
func (s *DropFields) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	out := make(pipeline.Batch, 0, len(data))
	for _, rec := range data {
		cp := make(pipeline.Record, len(rec))
		for k, v := range rec {
			if !s.fields[k] {
				cp[k] = v
			}
		}
		out = append(out, cp)
	}
	return out, nil
}
