package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/configura/configura/config"
	"github.com/configura/configura/internal/tui"
	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
	"github.com/configura/configura/steps"
	"github.com/configura/configura/types"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the pipeline config without running it",
	Long: "Load the config, lint it and build every step so reference and " +
		"parameter errors surface before any data is touched.",
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadPipelineConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	errOut := stderr(cmd)
	styles := stylesFor(errOut)

	result := types.Lint(cfg)
	if result.IsValid() {
		logger := runtime.NewJSONLogger(errOut, verbose)
		engine := pipeline.NewEngine(steps.NewRegistry(), logger)
		if _, err := engine.Compile(cfg, runtime.NewContext(logger)); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprint(errOut, tui.RenderWarning(styles, w))
	}
	for _, e := range result.Errors {
		fmt.Fprint(errOut, tui.RenderError(styles, errors.New(e)))
	}

	if strict && len(result.Warnings) > 0 {
		return fmt.Errorf("validation failed: %d warning(s) treated as errors in strict mode", len(result.Warnings))
	}
	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}

	out := stdout(cmd)
	fmt.Fprint(out, tui.RenderSuccess(stylesFor(out), "Validation passed."))
	return nil
}
