package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/app"
	"github.com/nuclifi/nuclifi-deployer/internal/cli/render"
	"github.com/nuclifi/nuclifi-deployer/internal/config"
	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/plans"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		yes        bool
		skipVerify bool
	)

	cmd := &cobra.Command{
		Use:   "deploy [plan]",
		Short: "Deploy, verify and wire a deployment plan",
		Long: `Deploy every contract of a plan in order, write the address registry,
verify their sources and wire the contracts together.

Every transaction is priced once at 1.5x the network gas price. A failure
stops the run; contracts deployed before it are listed with their addresses
and transaction hashes.

Examples:
  nuclifi-deploy deploy --network goerli
  nuclifi-deploy deploy strategy-factories --network sepolia --yes
  nuclifi-deploy deploy --network localhost`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			plan, err := selectPlan(ctx, app, args)
			if err != nil {
				return err
			}
			if app.Config.Network == nil {
				return fmt.Errorf("no network selected, use --network")
			}
			if _, err := config.RequireCredential(app.Config); err != nil {
				return err
			}

			renderer := render.NewReportRenderer(cmd.OutOrStdout(), useColor(cmd))
			renderer.RenderPlan(plan, app.Config.Network.Name)

			if !yes && !app.Config.NonInteractive {
				prompt := fmt.Sprintf("Deploy %d contracts to %s", len(plan.Contracts()), app.Config.Network.Name)
				ok, err := app.Confirmer.Confirm(ctx, prompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Deployment cancelled")
					return nil
				}
			}

			report, runErr := app.DeployProtocol.Run(ctx, plan, usecase.DeployOptions{SkipVerify: skipVerify})
			if err := renderer.RenderReport(report); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Do not verify sources on the block explorer")

	return cmd
}

// selectPlan resolves the plan named on the command line, prompts for one,
// or falls back to the default plan when prompting is not possible.
func selectPlan(ctx context.Context, app *app.App, args []string) (*domain.DeploymentPlan, error) {
	if len(args) > 0 {
		plan, err := app.ListPlans.Find(args[0])
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown plan %q, run `nuclifi-deploy plans` to list them", args[0])
		}
		return plan, err
	}
	if app.Config.NonInteractive {
		return app.ListPlans.Find(plans.DefaultPlan)
	}
	return app.Selector.SelectPlan(ctx, app.ListPlans.All())
}
