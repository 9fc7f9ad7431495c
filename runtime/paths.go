package runtime

import (
	"path/filepath"
	"time"
)

// TimestampLayout is the token appended to derived file names.
const TimestampLayout = "20060102_150405"

// Kinds of derived paths. The kind doubles as the fallback base name.
const (
	KindOutput = "output"
	KindDLQ    = "dlq"
)

// PathPolicy controls how an output or dead-letter path is derived.
type PathPolicy struct {
	// Explicit, when set, is returned verbatim.
	Explicit string
	// BaseDir is the directory the derived name is joined onto. Default ".".
	BaseDir string
	// UseInputName reuses the current input's basename when known.
	UseInputName bool
	// Suffix is appended verbatim after the base name.
	Suffix string
	// Timestamp appends "_YYYYMMDD_HHMMSS".
	Timestamp bool
	// Extension overrides the input's extension. Include the leading dot.
	Extension string
}

// PathResolver derives file paths from a policy and the run's input context.
type PathResolver struct {
	ctx *Context
	now func() time.Time
}

// NewPathResolver creates a resolver bound to ctx using the local clock.
func NewPathResolver(ctx *Context) *PathResolver {
	return &PathResolver{ctx: ctx, now: time.Now}
}

// WithClock returns a copy of r that reads time from now.
func (r *PathResolver) WithClock(now func() time.Time) *PathResolver {
	cp := *r
	cp.now = now
	return &cp
}

// Derive returns the path for kind under p. The clock is read at call time,
// so two calls with Timestamp set may return different names.
func (r *PathResolver) Derive(kind string, p PathPolicy) string {
	if p.Explicit != "" {
		return p.Explicit
	}

	name := kind
	if p.UseInputName && r.ctx != nil && r.ctx.InputBasename != "" {
		name = r.ctx.InputBasename
	}
	name += p.Suffix
	if p.Timestamp {
		name += "_" + r.now().Format(TimestampLayout)
	}
	switch {
	case p.Extension != "":
		name += p.Extension
	case r.ctx != nil && r.ctx.InputExtension != "":
		name += r.ctx.InputExtension
	}

	dir := p.BaseDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}
