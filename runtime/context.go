// Package runtime holds per-run state shared by pipeline steps: input
// provenance, execution mode, output path derivation and logging.
package runtime

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects how a pipeline intends to process its data.
type Mode string

const (
	ModeBatch  Mode = "batch"
	ModeStream Mode = "stream"
)

const (
	DefaultMode      = ModeBatch
	DefaultChunkSize = 1000
)

// ErrInvalidMode is returned by Configure for unknown modes or chunk sizes.
var ErrInvalidMode = errors.New("invalid runtime configuration")

// Context describes the current pipeline run. One Context is created per
// run and handed to every step that needs it.
//
// A Context is not safe for concurrent use. The engine executes steps one
// after another, and callers embedding it must not share a Context between
// runs that execute at the same time.
type Context struct {
	RunID     string
	Mode      Mode
	ChunkSize int

	// Input provenance, set by read steps. Empty means unknown.
	InputPath      string
	InputBasename  string
	InputExtension string
	// InputColumns is the header order of the last CSV input, nil otherwise.
	InputColumns []string

	Logger Logger
}

// NewContext creates a Context with defaults and a fresh run id. Entries
// logged through the context's Logger carry the run id.
func NewContext(logger Logger) *Context {
	if logger == nil {
		logger = NopLogger{}
	}
	id := NewRunID(time.Now())
	return &Context{
		RunID:     id,
		Mode:      DefaultMode,
		ChunkSize: DefaultChunkSize,
		Logger:    With(logger, map[string]any{"run_id": id}),
	}
}

// NewRunID returns a token of the form YYYYMMDD_HHMMSS-xxxxxxxx.
func NewRunID(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return now.Format(TimestampLayout) + "-" + id[:8]
}

// SetInput records the path of the most recently read input. The basename
// is the file stem and the extension keeps its leading dot.
func (c *Context) SetInput(path string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	c.InputPath = path
	c.InputBasename = strings.TrimSuffix(base, ext)
	c.InputExtension = ext
	c.InputColumns = nil
	c.Logger.Debug("runtime input set", map[string]any{"path": path})
}

// Configure overwrites the execution mode and chunk size.
func (c *Context) Configure(mode Mode, chunkSize int) error {
	if mode != ModeBatch && mode != ModeStream {
		return fmt.Errorf("%w: mode %q must be one of: batch, stream", ErrInvalidMode, mode)
	}
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidMode, chunkSize)
	}
	c.Mode = mode
	c.ChunkSize = chunkSize
	c.Logger.Debug("runtime configured", map[string]any{
		"mode":       string(mode),
		"chunk_size": chunkSize,
	})
	return nil
}
