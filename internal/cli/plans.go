package cli

import (
	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/cli/render"
)

// NewPlansCmd creates the plans command
func NewPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the deployment plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			summaries := app.ListPlans.Run(cmd.Context())
			return render.NewPlansRenderer(cmd.OutOrStdout(), useColor(cmd)).RenderPlans(summaries)
		},
	}
}
