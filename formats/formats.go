// Package formats reads and writes record batches as CSV, JSON,
// JSON-Lines and MessagePack files.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/configura/configura/pipeline"
)

// Format names a serialization.
type Format string

const (
	CSV     Format = "csv"
	JSON    Format = "json"
	JSONL   Format = "jsonl"
	Msgpack Format = "msgpack"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, JSONL, Msgpack:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (allowed: csv, json, jsonl, msgpack)", ErrUnsupportedFormat, s)
}

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	if f == Msgpack {
		return ".msgpack"
	}
	return "." + string(f)
}

// Options tune encoding. The zero value is valid.
type Options struct {
	// Delimiter separates CSV fields. Default ','.
	Delimiter rune
	// Columns is the preferred CSV header order on write.
	Columns []string
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// ReadFile reads a batch from path.
func ReadFile(path string, f Format, opts Options) (pipeline.Batch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var data pipeline.Batch
	switch f {
	case CSV:
		data, _, err = decodeCSV(file, opts)
	case JSON:
		data, err = decodeJSON(file)
	case JSONL:
		data, err = decodeJSONL(file)
	case Msgpack:
		data, err = decodeMsgpack(file)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// ReadCSV reads a CSV file and also returns its header row.
func ReadCSV(path string, opts Options) (pipeline.Batch, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	data, headers, err := decodeCSV(file, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, headers, nil
}

// WriteFile writes data to path, creating parent directories as needed.
// An existing file is replaced.
func WriteFile(path string, f Format, data pipeline.Batch, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	switch f {
	case CSV:
		err = encodeCSV(file, data, opts)
	case JSON:
		err = encodeJSON(file, data)
	case JSONL:
		err = encodeJSONL(file, data)
	case Msgpack:
		err = encodeMsgpack(file, data)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
