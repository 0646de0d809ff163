package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/plan"
)

// NewBootstrapCmd creates the bootstrap command
func NewBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the configured exchange pair without deploying",
		Long: `Run only the liquidity bootstrap. Step names in the liquidity section
resolve to the predicted addresses of the configured plan, so the plan must
already be deployed.

Examples:
  catapult bootstrap
  catapult bootstrap --config staging/catapult.toml`,
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

			result, err := app.OrchestrateDeployment.Bootstrap(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("bootstrap failed: %w", err)
			}
			return render.NewLiquidityRenderer(cmd.OutOrStdout()).Render(result)
		},
	}
}
