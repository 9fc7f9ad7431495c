package steps

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

func TestSqliteWriteRead(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db", "records.sqlite")
	reg := NewRegistry()

	first := runtime.NewContext(nil)
	w1, err := reg.Build("configura.io:WriteSqlite", map[string]any{"path": db, "table": "users"}, first)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	in := pipeline.Batch{{"id": int64(1), "name": "Ada"}, {"id": int64(2), "name": "Linus"}}
	out, err := w1.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Error("expected WriteSqlite to pass data through")
	}

	second := runtime.NewContext(nil)
	w2, _ := reg.Build("configura.io:WriteSqlite", map[string]any{"path": db, "table": "users"}, second)
	if _, err := w2.Process(context.Background(), pipeline.Batch{{"id": int64(3)}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	all, err := buildStep(t, "configura.io:ReadSqlite", map[string]any{"path": db, "table": "users"}).Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(all) != 3 || all[2]["id"] != int64(3) {
		t.Errorf("unexpected records %v", all)
	}

	onlyFirst, err := buildStep(t, "configura.io:ReadSqlite", map[string]any{"path": db, "table": "users", "run_id": first.RunID}).
		Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("read run: %v", err)
	}
	if !reflect.DeepEqual(onlyFirst, in) {
		t.Errorf("got %v, want %v", onlyFirst, in)
	}
}

func TestSqliteParams(t *testing.T) {
	reg := NewRegistry()
	rc := runtime.NewContext(nil)
	for _, tt := range []struct {
		ref    string
		params map[string]any
	}{
		{"configura.io:WriteSqlite", map[string]any{}},
		{"configura.io:WriteSqlite", map[string]any{"path": "x.db", "table": "users; DROP TABLE x"}},
		{"configura.io:WriteSqlite", map[string]any{"path": "x.db", "run_id": "abc"}},
	} {
		if _, err := reg.Build(tt.ref, tt.params, rc); !errors.Is(err, pipeline.ErrInvalidParams) {
			t.Errorf("%v: expected ErrInvalidParams, got %v", tt.params, err)
		}
	}
}
