package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/plan"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the configured plan and bootstrap liquidity",
		Long: `Deploy every step of the configured plan that the signer's nonce has not
reached yet, then seed the configured exchange pair.

Steps whose slot is below the current nonce are presumed deployed at their
predicted address. Re-running after a failure resumes from the first step
that did not confirm.

Examples:
  catapult deploy
  catapult deploy --yes --skip-liquidity
  catapult deploy --verify-skipped --rpc-url http://localhost:8545`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			project := app.Config.Project
			p, err := plan.Load(project.Plan, project.PlanArtifacts, time.Now)
			if err != nil {
				return err
			}

			result, err := app.OrchestrateDeployment.Run(cmd.Context(), p)
			if renderErr := render.NewDeployRenderer(cmd.OutOrStdout()).Render(result); renderErr != nil {
				return renderErr
			}
			if err != nil {
				return fmt.Errorf("deployment failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().Bool("skip-liquidity", false, "Deploy the plan only")
	cmd.Flags().Bool("verify-skipped", false, "Check that every presumed contract has code at its predicted address")

	return cmd
}
