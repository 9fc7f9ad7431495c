// Package cmd implements the configura CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/configura/configura/internal/tui"
)

var (
	cfgFile       string
	verbose       bool
	themeOverride string
)

var rootCmd = &cobra.Command{
	Use:   "configura",
	Short: "Configura runs record pipelines declared in YAML or JSON",
	Long: "Configura reads an ordered list of steps from a configuration file, " +
		"resolves each step by reference and runs them in sequence over a batch of records.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pipeline.yaml", "pipeline config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&themeOverride, "theme", "", "color theme: dark or light")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(initCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("configura %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() (string, error) {
	if filepath.IsAbs(cfgFile) {
		return cfgFile, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return filepath.Join(wd, cfgFile), nil
}

// stdout returns the command's output writer, falling back to os.Stdout
// when called without a command.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

// stylesFor picks themed styles when w is a terminal and plain ones
// otherwise.
func stylesFor(w io.Writer) *tui.StyleSet {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return tui.NewStyleSet(tui.DetectTheme(themeOverride))
	}
	return tui.PlainStyleSet()
}
