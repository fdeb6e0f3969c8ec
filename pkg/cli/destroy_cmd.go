package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"frostform/internal/blueprint"
	"frostform/internal/provider"
	"frostform/internal/session"
)

func newDestroyCmd() *cobra.Command {
	var (
		stateFile   string
		driver      string
		dsn         string
		autoApprove bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Drop every resource recorded in the state snapshot",
		Long:  "Loads the state snapshot and drops each recorded resource, dependents before the objects they depend on.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := provider.NewFile(stateFile)
			manifest, err := state.ExportState(cmd.Context())
			if err != nil {
				return err
			}
			if manifest.Len() == 0 {
				fmt.Fprintln(os.Stdout, "Nothing to destroy. State is empty.")
				return nil
			}

			if dryRun {
				script := session.NewScript()
				if err := blueprint.Destroy(cmd.Context(), script, manifest); err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, script.String())
				return nil
			}

			if !autoApprove {
				if err := confirm(fmt.Sprintf("Destroy all %d recorded resources? [y/N] ", manifest.Len())); err != nil {
					return err
				}
			}

			db, err := sql.Open(driver, dsn)
			if err != nil {
				return fmt.Errorf("open session: %w", err)
			}
			defer db.Close()

			if err := blueprint.Destroy(cmd.Context(), session.NewSQL(db), manifest); err != nil {
				return err
			}
			if err := state.WriteState(blueprint.NewManifest()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Destroy complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&stateFile, "state", "frostform.state.json", "Path to the state snapshot")
	cmd.Flags().StringVar(&driver, "driver", "snowflake", "database/sql driver name")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Connection string for the warehouse session")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip interactive confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print rendered statements without executing")

	return cmd
}
