package formats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/configura/configura/pipeline"
)

// decodeCSV treats the first row as the header and returns it alongside
// the records. All values are strings.
func decodeCSV(r io.Reader, opts Options) (pipeline.Batch, []string, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.delimiter()

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(rows) == 0 {
		return pipeline.Batch{}, nil, nil
	}

	headers := rows[0]
	out := make(pipeline.Batch, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(pipeline.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out, headers, nil
}

// encodeCSV writes opts.Columns that occur in data first, then any other
// keys in sorted order. An empty batch produces an empty file.
func encodeCSV(w io.Writer, data pipeline.Batch, opts Options) error {
	if len(data) == 0 {
		return nil
	}
	headers := columns(data, opts.Columns)

	writer := csv.NewWriter(w)
	writer.Comma = opts.delimiter()
	if err := writer.Write(headers); err != nil {
		return err
	}
	row := make([]string, len(headers))
	for _, rec := range data {
		for i, h := range headers {
			cell, err := cellString(rec[h])
			if err != nil {
				return fmt.Errorf("column %q: %w", h, err)
			}
			row[i] = cell
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func columns(data pipeline.Batch, preferred []string) []string {
	present := make(map[string]bool)
	for _, rec := range data {
		for k := range rec {
			present[k] = true
		}
	}

	cols := make([]string, 0, len(present))
	for _, k := range preferred {
		if present[k] {
			cols = append(cols, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

func cellString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
