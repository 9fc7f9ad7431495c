package steps

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

func buildStep(t *testing.T, ref string, params map[string]any) pipeline.Step {
	t.Helper()
	step, err := NewRegistry().Build(ref, params, runtime.NewContext(nil))
	if err != nil {
		t.Fatalf("Build(%s): %v", ref, err)
	}
	return step
}

func TestFilterByField_Numeric(t *testing.T) {
	step := buildStep(t, "configura.steps:FilterByField", map[string]any{
		"key_name": "value", "operator": ">=", "value": 20,
	})
	data := pipeline.Batch{
		{"id": 1, "value": 10},
		{"id": 2, "value": 20},
		{"id": 3, "value": 25},
	}

	got, err := step.Process(context.Background(), data)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := pipeline.Batch{{"id": 2, "value": 20}, {"id": 3, "value": 25}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func nestedData() pipeline.Batch {
	return pipeline.Batch{
		{"payload": map[string]any{"temp_c": 17}},
		{"payload": map[string]any{"temp_c": 19}},
		{"payload": map[string]any{"temp_c": "cold"}},
		{},
	}
}

func TestFilterByField_NestedSkipsTypeErrors(t *testing.T) {
	f, err := NewFilterByField("payload.temp_c", ">", 18, false)
	if err != nil {
		t.Fatalf("NewFilterByField: %v", err)
	}
	got, err := f.Process(context.Background(), nestedData())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := pipeline.Batch{{"payload": map[string]any{"temp_c": 19}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterByField_FailOnTypeError(t *testing.T) {
	f, err := NewFilterByField("payload.temp_c", ">", 18, true)
	if err != nil {
		t.Fatalf("NewFilterByField: %v", err)
	}
	if _, err := f.Process(context.Background(), nestedData()); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestFilterByField_Operators(t *testing.T) {
	data := pipeline.Batch{
		{"n": int64(1), "s": "apple"},
		{"n": 2.5, "s": "banana"},
		{"n": nil, "s": "cherry"},
	}
	tests := []struct {
		key, op string
		value   any
		want    int
	}{
		{"n", "==", 1, 1},
		{"n", "!=", 1, 1},
		{"n", "<", 3, 2},
		{"n", "<=", 2.5, 2},
		{"n", ">", 1, 1},
		{"s", ">=", "banana", 2},
		{"s", "==", 1, 0},
		{"s", "!=", 1, 3},
	}
	for _, tt := range tests {
		f, err := NewFilterByField(tt.key, tt.op, tt.value, true)
		if err != nil {
			t.Fatalf("NewFilterByField: %v", err)
		}
		got, err := f.Process(context.Background(), data)
		if err != nil {
			t.Fatalf("%s %s %v: %v", tt.key, tt.op, tt.value, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s %s %v: got %d records, want %d", tt.key, tt.op, tt.value, len(got), tt.want)
		}
	}
}

func TestFilterByField_InvalidParams(t *testing.T) {
	reg := NewRegistry()
	rc := runtime.NewContext(nil)
	for _, params := range []map[string]any{
		{"key_name": "a", "operator": "~=", "value": 1},
		{"key_name": "", "operator": "==", "value": 1},
		{"key_name": "a", "operator": "=="},
		{"key_name": "a", "operator": "==", "value": 1, "extra": true},
	} {
		if _, err := reg.Build("configura.steps:FilterByField", params, rc); !errors.Is(err, pipeline.ErrInvalidParams) {
			t.Errorf("params %v: expected ErrInvalidParams, got %v", params, err)
		}
	}
}

func TestFilterByField_NilInput(t *testing.T) {
	f, _ := NewFilterByField("a", "==", 1, false)
	got, err := f.Process(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Process(nil) = %v, %v", got, err)
	}
}
