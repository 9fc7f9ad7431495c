package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/configura/configura/formats"
	"github.com/configura/configura/internal/tui"
	"github.com/configura/configura/steps"
	"github.com/configura/configura/types"
)

// initOptions holds the collected options for scaffolding a pipeline.
type initOptions struct {
	Input          string
	Transforms     []string
	OutputFormat   string
	OutputDir      string
	NonInteractive bool
	Force          bool
}

// transformTemplate is a built-in transform with starter params.
type transformTemplate struct {
	Name        string
	Description string
	Params      map[string]any
}

var transformTemplates = []transformTemplate{
	{
		Name:        "FilterByField",
		Description: "keep rows where a field matches a condition",
		Params:      map[string]any{"key_name": "status", "operator": "==", "value": "active"},
	},
	{
		Name:        "RenameFields",
		Description: "rename columns",
		Params:      map[string]any{"mapping": map[string]any{"old_name": "new_name"}},
	},
	{
		Name:        "DropFields",
		Description: "remove columns",
		Params:      map[string]any{"fields": []any{"unused"}},
	},
	{
		Name:        "Limit",
		Description: "keep the first N rows",
		Params:      map[string]any{"count": 100},
	},
	{
		Name:        "Validate",
		Description: "check rows against a JSON Schema",
		Params:      map[string]any{"schema_path": "schema.json", "on_fail": "dlq"},
	},
}

var outputFormats = []formats.Format{formats.JSONL, formats.JSON, formats.CSV, formats.Msgpack}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a pipeline config",
	Long:  "Write a starter pipeline config that reads a file, applies the chosen transforms and writes the result.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringP("input", "i", "", "input file (format is taken from its extension)")
	initCmd.Flags().StringSlice("transforms", nil, "transforms to include (e.g. FilterByField,Limit)")
	initCmd.Flags().StringP("format", "f", "jsonl", "output format: csv, json, jsonl or msgpack")
	initCmd.Flags().String("output-dir", "output", "directory written files go to")
	initCmd.Flags().Bool("non-interactive", false, "run without the wizard (requires --input)")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	opts := &initOptions{}
	opts.Input, _ = cmd.Flags().GetString("input")
	opts.Transforms, _ = cmd.Flags().GetStringSlice("transforms")
	opts.OutputFormat, _ = cmd.Flags().GetString("format")
	opts.OutputDir, _ = cmd.Flags().GetString("output-dir")
	opts.NonInteractive, _ = cmd.Flags().GetBool("non-interactive")
	opts.Force, _ = cmd.Flags().GetBool("force")

	if !opts.NonInteractive {
		if err := collectInteractive(opts, stylesFor(os.Stdout)); err != nil {
			return err
		}
	}

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err := scaffold(opts, cfgPath); err != nil {
		return err
	}
	out := stdout(cmd)
	fmt.Fprint(out, tui.RenderSuccess(stylesFor(out), "Wrote "+cfgPath))
	return nil
}

func collectInteractive(opts *initOptions, styles *tui.StyleSet) error {
	var transforms []tui.Choice
	for _, t := range transformTemplates {
		transforms = append(transforms, tui.Choice{Label: t.Name, Value: t.Name, Description: t.Description})
	}
	var choices []tui.Choice
	for _, f := range outputFormats {
		choices = append(choices, tui.Choice{Label: string(f), Value: string(f)})
	}

	res, err := tui.RunWizard(styles, transforms, choices)
	if err != nil {
		return err
	}
	opts.Input = res.InputPath
	opts.Transforms = res.Transforms
	opts.OutputFormat = res.OutputFormat
	return nil
}

// buildConfig assembles the starter pipeline: a reader chosen by the input
// extension, the selected transforms in table order, then a writer.
func buildConfig(opts *initOptions) (*types.PipelineConfig, error) {
	if strings.TrimSpace(opts.Input) == "" {
		return nil, errors.New("an input file is required (--input)")
	}
	inFmt, err := formats.ParseFormat(strings.TrimPrefix(filepath.Ext(opts.Input), "."))
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", opts.Input, err)
	}
	outFmt, err := formats.ParseFormat(opts.OutputFormat)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool)
	for _, t := range opts.Transforms {
		selected[strings.TrimSpace(t)] = true
	}
	for name := range selected {
		if !hasTemplate(name) {
			return nil, fmt.Errorf("unknown transform %q", name)
		}
	}

	cfg := &types.PipelineConfig{}
	cfg.Steps = append(cfg.Steps, types.StepDescriptor{
		Type:   ioReference("Read", inFmt),
		Params: map[string]any{"path": opts.Input},
	})
	for _, t := range transformTemplates {
		if !selected[t.Name] {
			continue
		}
		cfg.Steps = append(cfg.Steps, types.StepDescriptor{
			Type:   steps.NamespaceSteps + ":" + t.Name,
			Params: t.Params,
		})
	}
	cfg.Steps = append(cfg.Steps, types.StepDescriptor{
		Type:   ioReference("Write", outFmt),
		Params: map[string]any{"dir": opts.OutputDir, "suffix": "_processed", "extension": outFmt.Extension()},
	})
	return cfg, nil
}

func hasTemplate(name string) bool {
	for _, t := range transformTemplates {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ioReference maps a format to its reader or writer, e.g. "Read" + jsonl
// gives "configura.io:ReadJsonl".
func ioReference(verb string, f formats.Format) string {
	name := string(f)
	return steps.NamespaceIO + ":" + verb + strings.ToUpper(name[:1]) + name[1:]
}

func scaffold(opts *initOptions, cfgPath string) error {
	if _, err := os.Stat(cfgPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}
	if lint := types.Lint(cfg); !lint.IsValid() {
		return fmt.Errorf("generated config is invalid: %s", strings.Join(lint.Errors, "; "))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfgPath, err)
	}
	return nil
}
