package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/configura/configura/config"
	"github.com/configura/configura/internal/trigger"
	"github.com/configura/configura/internal/tui"
	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
	"github.com/configura/configura/steps"
)

var (
	runWatch    bool
	runSchedule string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline",
	Long: "Run the pipeline once. With --watch the pipeline runs again whenever the " +
		"config file changes; with --schedule it runs on a cron schedule.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "re-run when the config file changes")
	runCmd.Flags().StringVar(&runSchedule, "schedule", "", `cron schedule, e.g. "*/5 * * * *" or "@every 1h"`)
	runCmd.MarkFlagsMutuallyExclusive("watch", "schedule")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	logger := runtime.NewJSONLogger(stderr(cmd), verbose)
	engine := pipeline.NewEngine(steps.NewRegistry(), logger)
	out := stdout(cmd)
	styles := stylesFor(out)

	if !runWatch && runSchedule == "" {
		ctx := context.Background()
		if cmd != nil && cmd.Context() != nil {
			ctx = cmd.Context()
		}
		return runOnce(ctx, engine, cfgPath, out, styles)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Failures of repeated runs are reported and the loop keeps going.
	rerun := func() {
		if err := runOnce(ctx, engine, cfgPath, out, styles); err != nil {
			fmt.Fprint(stderr(cmd), tui.RenderError(styles, err))
		}
	}

	if runSchedule != "" {
		sched, err := trigger.NewScheduler(runSchedule, rerun, logger)
		if err != nil {
			return err
		}
		return sched.Start(ctx)
	}

	rerun()
	fmt.Fprintf(stderr(cmd), "Watching %s for changes (Ctrl+C to stop)\n", cfgPath)
	return trigger.NewFileWatcher([]string{cfgPath}, rerun, logger).Watch(ctx)
}

// runOnce reloads the config so edits picked up by watch mode take effect.
func runOnce(ctx context.Context, engine *pipeline.Engine, cfgPath string, out io.Writer, styles *tui.StyleSet) error {
	cfg, err := config.LoadPipelineConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	res, err := engine.Execute(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	fmt.Fprint(out, tui.RenderSummary(styles, "Pipeline finished", []tui.SummaryRow{
		{Key: "Run ID", Value: res.RunID},
		{Key: "Steps", Value: fmt.Sprintf("%d", res.Steps)},
		{Key: "Records", Value: fmt.Sprintf("%d", res.Records)},
		{Key: "Duration", Value: res.Duration.Round(time.Millisecond).String()},
	}))
	return nil
}
