package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"frostform/internal/blueprint"
	"frostform/internal/config"
	"frostform/internal/provider"
)

func newPlanCmd() *cobra.Command {
	var (
		configFile string
		stateFile  string
		noColor    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the changes needed to match the configuration",
		Long:  "Reads the project file, compares the declared resources with recorded state, and prints the resulting plan without executing anything.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, _, err := buildProjectPlan(cmd, configFile, stateFile)
			if err != nil {
				return err
			}
			if jsonOutput {
				return blueprint.FormatJSON(os.Stdout, plan)
			}
			blueprint.FormatText(os.Stdout, plan, noColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "file", "f", "frostform.yaml", "Path to the project file")
	cmd.Flags().StringVar(&stateFile, "state", "frostform.state.json", "Path to the state snapshot")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")

	return cmd
}

// buildProjectPlan loads the project file and plans it against the recorded
// state. It returns the plan and the desired manifest for callers that
// persist state after applying.
func buildProjectPlan(cmd *cobra.Command, configFile, stateFile string) (*blueprint.Plan, *blueprint.Manifest, error) {
	project, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	bp, err := project.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build resources: %w", err)
	}
	desired, err := bp.GenerateManifest()
	if err != nil {
		return nil, nil, err
	}
	plan, err := bp.Plan(cmd.Context(), provider.NewFile(stateFile))
	if err != nil {
		return nil, nil, err
	}
	return plan, desired, nil
}
