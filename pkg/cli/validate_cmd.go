package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"frostform/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the project file without planning",
		Long:  "Parses the project file, builds the declared resources, and reports the first problem found.",
		RunE: func(_ *cobra.Command, _ []string) error {
			project, err := config.Load(configFile)
			if err != nil {
				return err
			}
			bp, err := project.Build()
			if err != nil {
				return err
			}
			manifest, err := bp.GenerateManifest()
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Configuration valid: %d resources.\n", manifest.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "file", "f", "frostform.yaml", "Path to the project file")

	return cmd
}
