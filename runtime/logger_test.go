package runtime

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, false)
	l.Info("step finished", map[string]any{"step": "configura.steps:Limit", "records": 3})
	l.Debug("hidden", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "step finished" || entry["step"] != "configura.steps:Limit" {
		t.Errorf("unexpected entry: %v", entry)
	}

	buf.Reset()
	NewJSONLogger(&buf, true).Debug("shown", nil)
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("expected debug entry in verbose mode, got %q", buf.String())
	}
}

func TestWith_BindsFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, false)
	l := With(With(base, map[string]any{"run_id": "r1", "step": "a"}), map[string]any{"step": "b"})
	l.Warn("bad row", map[string]any{"row": 2})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["run_id"] != "r1" || entry["step"] != "b" || entry["row"] != float64(2) || entry["level"] != "warn" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewContext_LoggerCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	rc := NewContext(NewJSONLogger(&buf, true))
	rc.SetInput("data/in.csv")
	if !strings.Contains(buf.String(), `"run_id":"`+rc.RunID+`"`) {
		t.Errorf("expected run id in %q", buf.String())
	}
}
