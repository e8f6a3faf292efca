package cli

import (
	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/cli/render"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var (
		format string
		suffix string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the deployed addresses of a network",
		Long: `Show the address registry written by the last deployment to a network.

Examples:
  nuclifi-deploy show --network goerli
  nuclifi-deploy show --network goerli --format json
  nuclifi-deploy show --network sepolia --suffix strategy-factories --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowDeployments.Run(cmd.Context(), suffix)
			if err != nil {
				return err
			}

			color := useColor(cmd) && format == render.FormatTable
			return render.NewDeploymentsRenderer(cmd.OutOrStdout(), color).Render(result, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatTable, "Output format: table, json or yaml")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Registry suffix of the plan (e.g. strategy-factories)")

	return cmd
}
