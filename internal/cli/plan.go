package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/plan"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var checkCode bool

	cmd := &cobra.Command{
		Use:   "plan [filter]",
		Short: "Show where the signer stands in the configured plan",
		Long: `Show every step of the configured plan with its nonce slot, predicted
address and whether the current nonce has already consumed it. Nothing is
sent.

Examples:
  catapult plan
  catapult plan router
  catapult plan --check-code`,
		Args: cobra.MaximumNArgs(1),
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

			opts := usecase.InspectOptions{CheckCode: checkCode}
			if len(args) == 1 {
				opts.Filter = args[0]
			}

			status, err := app.InspectPlan.Run(cmd.Context(), p, app.Signer.Address(), opts)
			if err != nil {
				return err
			}
			return render.NewPlanRenderer(cmd.OutOrStdout()).Render(status)
		},
	}

	cmd.Flags().BoolVar(&checkCode, "check-code", false, "Query code at every predicted address")

	return cmd
}
