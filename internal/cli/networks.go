package cli

import (
	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/cli/render"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List available networks",
		Long: `List the built-in networks (goerli, sepolia, localhost) and every network
configured in the [rpc_endpoints] section of foundry.toml.

Networks whose RPC URL cannot be built yet show the variable to set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context())
			if err != nil {
				return err
			}

			renderer := render.NewNetworksRenderer(cmd.OutOrStdout(), useColor(cmd))
			return renderer.RenderNetworksList(result)
		},
	}

	return cmd
}
