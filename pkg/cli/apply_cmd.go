package cli

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"frostform/internal/blueprint"
	"frostform/internal/provider"
	"frostform/internal/session"
)

func newApplyCmd() *cobra.Command {
	var (
		configFile  string
		stateFile   string
		driver      string
		dsn         string
		autoApprove bool
		dryRun      bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply configuration changes to the warehouse",
		Long:  "Plans the project file against recorded state, shows the plan, and executes it. With --dry-run the rendered statements are printed instead of executed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, desired, err := buildProjectPlan(cmd, configFile, stateFile)
			if err != nil {
				return err
			}

			blueprint.FormatText(os.Stdout, plan, noColor)
			if plan.IsEmpty() {
				return nil
			}

			if dryRun {
				script := session.NewScript()
				if err := blueprint.Apply(cmd.Context(), script, plan); err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, "\n"+script.String())
				return nil
			}

			if !autoApprove {
				if err := confirm("\nApply these changes? [y/N] "); err != nil {
					return err
				}
			}

			db, err := sql.Open(driver, dsn)
			if err != nil {
				return fmt.Errorf("open session: %w", err)
			}
			defer db.Close()

			if err := blueprint.Apply(cmd.Context(), session.NewSQL(db), plan); err != nil {
				return err
			}
			if err := provider.NewFile(stateFile).WriteState(desired); err != nil {
				return err
			}

			adds, changes, removes := plan.Summary()
			fmt.Fprintf(os.Stdout, "\nApply complete: %d added, %d changed, %d removed.\n", adds, changes, removes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "file", "f", "frostform.yaml", "Path to the project file")
	cmd.Flags().StringVar(&stateFile, "state", "frostform.state.json", "Path to the state snapshot")
	cmd.Flags().StringVar(&driver, "driver", "snowflake", "database/sql driver name")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Connection string for the warehouse session")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip interactive confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print rendered statements without executing")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// confirm prompts on stdout and reads a yes/no answer from stdin. A non-TTY
// stdin is an error so scripted runs fail fast instead of hanging.
func confirm(prompt string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("confirmation required but stdin is not a terminal; use --auto-approve")
	}
	fmt.Fprint(os.Stdout, prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		return fmt.Errorf("cancelled")
	}
	return nil
}
