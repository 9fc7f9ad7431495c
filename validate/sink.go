package validate

import (
	"github.com/configura/configura/formats"
	"github.com/configura/configura/pipeline"
)

// FileSink writes rejected records to a file as {record, errors} entries.
type FileSink struct {
	Path   string
	Format formats.Format
	Opts   formats.Options
}

// WriteDeadLetters writes bad to s.Path, creating its directory.
func (s *FileSink) WriteDeadLetters(bad []Rejected) error {
	data := make(pipeline.Batch, 0, len(bad))
	for _, r := range bad {
		errs := make([]any, len(r.Errors))
		for i, e := range r.Errors {
			errs[i] = e
		}
		data = append(data, pipeline.Record{"record": map[string]any(r.Record), "errors": errs})
	}
	return formats.WriteFile(s.Path, s.Format, data, s.Opts)
}
