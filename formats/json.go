package formats

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/configura/configura/pipeline"
)

// DecodeJSONRecords parses an array of objects or a single object.
func DecodeJSONRecords(doc []byte) (pipeline.Batch, error) {
	return decodeJSON(bytes.NewReader(doc))
}

// decodeJSON accepts an array of objects or a single object.
func decodeJSON(r io.Reader) (pipeline.Batch, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	switch v := normalize(doc).(type) {
	case []any:
		out := make(pipeline.Batch, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			out = append(out, m)
		}
		return out, nil
	case map[string]any:
		return pipeline.Batch{v}, nil
	default:
		return nil, fmt.Errorf("JSON root must be an array or object, got %T", v)
	}
}

func decodeJSONL(r io.Reader) (pipeline.Batch, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	out := pipeline.Batch{}
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		m, ok := normalize(doc).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("line %d: not an object", line)
		}
		out = append(out, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeJSON(w io.Writer, data pipeline.Batch) error {
	if data == nil {
		data = pipeline.Batch{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func encodeJSONL(w io.Writer, data pipeline.Batch) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range data {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// normalize converts json.Number values to int64 when integral, float64
// otherwise.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, item := range x {
			x[k] = normalize(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = normalize(item)
		}
		return x
	default:
		return v
	}
}
