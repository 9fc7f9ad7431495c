package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/configura/configura/steps"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the step references available to a pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := stdout(cmd)
		for _, ref := range steps.NewRegistry().List() {
			fmt.Fprintln(out, ref)
		}
		return nil
	},
}
