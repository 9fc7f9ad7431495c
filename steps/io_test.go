package steps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"

	"github.com/configura/configura/formats"
	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
	"github.com/configura/configura/types"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReadSetsRuntimeInput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "users.csv", "id,name\n1,Ada\n2,Linus\n")
	rc := runtime.NewContext(nil)

	step, err := NewRegistry().Build("configura.io:ReadCsv", map[string]any{"path": in}, rc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := step.Process(context.Background(), pipeline.Batch{{"ignored": true}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got) != 2 || got[1]["name"] != "Linus" {
		t.Errorf("unexpected records %v", got)
	}
	if rc.InputPath != in || rc.InputBasename != "users" || rc.InputExtension != ".csv" {
		t.Errorf("runtime input = (%q, %q, %q)", rc.InputPath, rc.InputBasename, rc.InputExtension)
	}
}

func TestIOParams(t *testing.T) {
	reg := NewRegistry()
	rc := runtime.NewContext(nil)
	bad := []struct {
		ref    string
		params map[string]any
	}{
		{"configura.io:ReadJson", nil},
		{"configura.io:ReadJson", map[string]any{"path": "x.json", "delimiter": ";"}},
		{"configura.io:ReadCsv", map[string]any{"path": "x.csv", "delimiter": ";;"}},
		{"configura.io:ReadCsv", map[string]any{"path": "x.csv", "encoding": "latin-1"}},
		{"configura.io:WriteJson", map[string]any{"paht": "typo.json"}},
	}
	for _, tt := range bad {
		if _, err := reg.Build(tt.ref, tt.params, rc); !errors.Is(err, pipeline.ErrInvalidParams) {
			t.Errorf("%s %v: expected ErrInvalidParams, got %v", tt.ref, tt.params, err)
		}
	}
	if _, err := reg.Build("configura.io:ReadCsv", map[string]any{"path": "x.csv", "delimiter": ";", "encoding": "UTF-8"}, rc); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEndToEnd_ReadFilterWriteDerivedPath(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "readings.json", `[{"id":1,"value":10},{"id":2,"value":20},{"id":3,"value":25}]`)
	outDir := filepath.Join(dir, "out")

	cfg := &types.PipelineConfig{Steps: []types.StepDescriptor{
		{Type: "configura.io:ReadJson", Params: map[string]any{"path": in}},
		{Type: "configura.steps:FilterByField", Params: map[string]any{"key_name": "value", "operator": ">=", "value": 20}},
		{Type: "configura.io:WriteJsonl", Params: map[string]any{"dir": outDir, "suffix": "_filtered", "extension": "jsonl"}},
	}}
	res, err := pipeline.NewEngine(NewRegistry(), nil).Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Records != 2 {
		t.Errorf("Records = %d, want 2", res.Records)
	}

	got, err := formats.ReadFile(filepath.Join(outDir, "readings_filtered.jsonl"), formats.JSONL, formats.Options{})
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := pipeline.Batch{{"id": int64(2), "value": int64(20)}, {"id": int64(3), "value": int64(25)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("output = %v, want %v", got, want)
	}
}

func TestEndToEnd_FilterOnEmptyInitialBatch(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.json")
	cfg := &types.PipelineConfig{Steps: []types.StepDescriptor{
		{Type: "configura.steps:FilterByField", Params: map[string]any{"key_name": "value", "operator": ">=", "value": 20}},
		{Type: "configura.io:WriteJson", Params: map[string]any{"path": out}},
	}}
	res, err := pipeline.NewEngine(NewRegistry(), nil).Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Records != 0 {
		t.Errorf("Records = %d, want 0", res.Records)
	}
	got, err := formats.ReadFile(out, formats.JSON, formats.Options{})
	if err != nil || len(got) != 0 {
		t.Errorf("output = %v, %v", got, err)
	}
}

func TestWrite_TimestampedFallbackName(t *testing.T) {
	dir := t.TempDir()
	step := buildStep(t, "configura.io:WriteJson", map[string]any{"dir": dir, "timestamp": true})
	if _, err := step.Process(context.Background(), pipeline.Batch{{"a": 1}}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one output file, got %v, %v", entries, err)
	}
	if !regexp.MustCompile(`^output_\d{8}_\d{6}$`).MatchString(entries[0].Name()) {
		t.Errorf("unexpected output name %q", entries[0].Name())
	}
}

func TestMsgpackReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.msgpack")
	data := pipeline.Batch{{"id": int64(1), "ok": true}}

	if _, err := buildStep(t, "configura.io:WriteMsgpack", map[string]any{"path": path}).Process(context.Background(), data); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := buildStep(t, "configura.io:ReadMsgpack", map[string]any{"path": path}).Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("got %v, want %v", got, data)
	}
}

func TestWrite_RefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	original := "id,value\n1,10\n2,20\n"
	in := writeInput(t, dir, "users.csv", original)

	cfg := &types.PipelineConfig{Steps: []types.StepDescriptor{
		{Type: "configura.io:ReadCsv", Params: map[string]any{"path": in}},
		{Type: "configura.io:WriteJson", Params: map[string]any{"dir": dir}},
	}}
	_, err := pipeline.NewEngine(NewRegistry(), nil).Execute(context.Background(), cfg)
	if !errors.Is(err, ErrOverwritesInput) {
		t.Fatalf("expected ErrOverwritesInput, got %v", err)
	}

	data, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("reading input: %v", err)
	}
	if string(data) != original {
		t.Errorf("input was modified: %q", data)
	}

	// A suffix moves the output off the input path.
	cfg.Steps[1].Params = map[string]any{"dir": dir, "suffix": "_out"}
	if _, err := pipeline.NewEngine(NewRegistry(), nil).Execute(context.Background(), cfg); err != nil {
		t.Fatalf("Execute with suffix: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users_out.csv")); err != nil {
		t.Errorf("expected users_out.csv: %v", err)
	}
}

func TestCSV_KeepsInputColumnOrder(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "people.csv", "zip,name,age\n10115,Ada,36\n")
	out := filepath.Join(dir, "out", "people.csv")

	cfg := &types.PipelineConfig{Steps: []types.StepDescriptor{
		{Type: "configura.io:ReadCsv", Params: map[string]any{"path": in}},
		{Type: "configura.steps:RenameFields", Params: map[string]any{"mapping": map[string]any{"age": "years"}}},
		{Type: "configura.io:WriteCsv", Params: map[string]any{"path": out}},
	}}
	if _, err := pipeline.NewEngine(NewRegistry(), nil).Execute(context.Background(), cfg); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if want := "zip,name,years\n10115,Ada,36\n"; string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
}

func TestWriteCsv_ExplicitColumns(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rows.csv")
	step := buildStep(t, "configura.io:WriteCsv", map[string]any{"path": out, "columns": []any{"b", "a"}})
	if _, err := step.Process(context.Background(), pipeline.Batch{{"a": "1", "b": "2", "c": "3"}}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if want := "b,a,c\n2,1,3\n"; string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}

	if _, err := NewRegistry().Build("configura.io:WriteJson", map[string]any{"path": "x.json", "columns": []any{"a"}}, runtime.NewContext(nil)); !errors.Is(err, pipeline.ErrInvalidParams) {
		t.Errorf("columns on a json writer: expected ErrInvalidParams, got %v", err)
	}
}
