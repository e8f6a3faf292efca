package cli

import (
	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/cli/render"
)

// NewExportABIsCmd creates the export-abis command
func NewExportABIsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-abis [plan]",
		Short: "Write the ABIs of deployed contract kinds to deployments/abis",
		Long: `Write one pretty-printed <Name>.json ABI file per contract kind used by
the deployment plans into deployments/abis. The directory is cleared first.

Run forge build (or hardhat compile) beforehand.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			planName := ""
			if len(args) > 0 {
				planName = args[0]
			}

			paths, err := app.ExportABIs.Run(cmd.Context(), planName)
			if err != nil {
				return err
			}

			render.NewPlansRenderer(cmd.OutOrStdout(), useColor(cmd)).RenderExportedABIs(paths)
			return nil
		},
	}
}
