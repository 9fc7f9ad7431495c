package steps

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/configura/configura/formats"
	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

// ErrOverwritesInput is returned when a derived output path is the file the
// run is reading from.
var ErrOverwritesInput = errors.New("output path would overwrite the input file")

// Read loads a file and replaces the incoming data with its records. The
// file becomes the run's current input.
type Read struct {
	rc     *runtime.Context
	path   string
	format formats.Format
	opts   formats.Options
}

// Write stores the incoming data and passes it through unchanged.
type Write struct {
	rc     *runtime.Context
	paths  *runtime.PathResolver
	policy runtime.PathPolicy
	format formats.Format
	opts   formats.Options
}

type readParams struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

type writeParams struct {
	Path         string   `yaml:"path"`
	Dir          string   `yaml:"dir"`
	UseInputName bool     `yaml:"use_input_name"`
	Suffix       string   `yaml:"suffix"`
	Timestamp    bool     `yaml:"timestamp"`
	Extension    string   `yaml:"extension"`
	Columns      []string `yaml:"columns"`
	Delimiter    string   `yaml:"delimiter"`
	Encoding     string   `yaml:"encoding"`
}

func readerFactory(f formats.Format) pipeline.Factory {
	return func(rc *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
		var params readParams
		if err := pipeline.DecodeParams(p, &params); err != nil {
			return nil, err
		}
		if params.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		opts, err := formatOptions(f, params.Delimiter, params.Encoding)
		if err != nil {
			return nil, err
		}
		return &Read{rc: rc, path: params.Path, format: f, opts: opts}, nil
	}
}

func writerFactory(f formats.Format) pipeline.Factory {
	return func(rc *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
		params := writeParams{UseInputName: true}
		if err := pipeline.DecodeParams(p, &params); err != nil {
			return nil, err
		}
		opts, err := formatOptions(f, params.Delimiter, params.Encoding)
		if err != nil {
			return nil, err
		}
		if len(params.Columns) > 0 && f != formats.CSV {
			return nil, fmt.Errorf("columns only applies to csv")
		}
		opts.Columns = params.Columns
		if params.Extension != "" && !strings.HasPrefix(params.Extension, ".") {
			params.Extension = "." + params.Extension
		}
		return &Write{
			rc:    rc,
			paths: runtime.NewPathResolver(rc),
			policy: runtime.PathPolicy{
				Explicit:     params.Path,
				BaseDir:      params.Dir,
				UseInputName: params.UseInputName,
				Suffix:       params.Suffix,
				Timestamp:    params.Timestamp,
				Extension:    params.Extension,
			},
			format: f,
			opts:   opts,
		}, nil
	}
}

// Process ignores data and returns the file's records.
func (s *Read) Process(_ context.Context, _ pipeline.Batch) (pipeline.Batch, error) {
	var (
		data    pipeline.Batch
		headers []string
		err     error
	)
	if s.format == formats.CSV {
		data, headers, err = formats.ReadCSV(s.path, s.opts)
	} else {
		data, err = formats.ReadFile(s.path, s.format, s.opts)
	}
	if err != nil {
		return nil, err
	}
	s.rc.SetInput(s.path)
	s.rc.InputColumns = headers
	s.rc.Logger.Debug("input read", map[string]any{"path": s.path, "records": len(data)})
	return data, nil
}

// Process writes data to the derived output path. CSV columns follow the
// columns param, else the header of a CSV input.
func (s *Write) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	path := s.paths.Derive(runtime.KindOutput, s.policy)
	if samePath(path, s.rc.InputPath) {
		return nil, fmt.Errorf("%w: %s (set a suffix, dir or path)", ErrOverwritesInput, path)
	}
	opts := s.opts
	if len(opts.Columns) == 0 {
		opts.Columns = s.rc.InputColumns
	}
	if err := formats.WriteFile(path, s.format, data, opts); err != nil {
		return nil, err
	}
	s.rc.Logger.Info("output written", map[string]any{"path": path, "records": len(data), "format": string(s.format)})
	return data, nil
}

// samePath reports whether a and b name the same file. An empty b never
// matches.
func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func formatOptions(f formats.Format, delimiter, encoding string) (formats.Options, error) {
	var opts formats.Options
	if err := checkEncoding(encoding); err != nil {
		return opts, err
	}
	if delimiter != "" {
		if f != formats.CSV {
			return opts, fmt.Errorf("delimiter only applies to csv")
		}
		r, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) {
			return opts, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		opts.Delimiter = r
	}
	return opts, nil
}

// checkEncoding accepts only UTF-8, the encoding all readers and writers use.
func checkEncoding(enc string) error {
	switch strings.ToLower(strings.ReplaceAll(enc, "-", "")) {
	case "", "utf8":
		return nil
	}
	return fmt.Errorf("unsupported encoding %q (only utf-8)", enc)
}
