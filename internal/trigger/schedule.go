package trigger

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/configura/configura/runtime"
)

// ErrInvalidSchedule is returned for a cron expression that does not parse.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Scheduler runs a callback on a cron schedule.
type Scheduler struct {
	expr   string
	run    func()
	logger runtime.Logger
}

// NewScheduler validates expr (standard five-field cron or a descriptor
// such as "@hourly" or "@every 10m") and returns a scheduler for run.
func NewScheduler(expr string, run func(), logger runtime.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(expr); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}
	if logger == nil {
		logger = runtime.NopLogger{}
	}
	return &Scheduler{expr: expr, run: run, logger: logger}, nil
}

// Start blocks until ctx is cancelled. A tick that arrives while the
// previous run is still going is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(s.expr, func() {
		s.logger.Info("scheduled run starting", map[string]any{"schedule": s.expr})
		s.run()
	}); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, s.expr, err)
	}
	c.Start()
	s.logger.Info("scheduler started", map[string]any{"schedule": s.expr})

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger forwards cron's key/value logging to a runtime.Logger.
// Skipped ticks become warnings; cron's other chatter is debug output.
type cronLogger struct {
	logger runtime.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		l.logger.Warn("scheduled run skipped, previous run still in progress", kvFields(keysAndValues))
		return
	}
	l.logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	l.logger.Error("cron: "+msg, fields)
}

func kvFields(kv []any) map[string]any {
	fields := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
