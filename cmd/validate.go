package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloth-sim/cloth-sim/sim/scenario"
)

var validatePath string

// validateCmd checks a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file for errors",
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateScenario(validatePath, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func validateScenario(path string, out io.Writer) error {
	spec, err := scenario.LoadSpec(path)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(out, "%s: ok (%d teams, %d wind zones, %d events)\n",
		path, len(spec.Teams), len(spec.WindZones), len(spec.Events))
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validatePath, "scenario", "", "Scenario YAML file")
	_ = validateCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(validateCmd)
}
