package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/cli/render"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var suffix string

	cmd := &cobra.Command{
		Use:   "verify [name...]",
		Short: "Verify deployed contracts on the block explorer",
		Long: `Re-submit contracts from the ledger of an earlier deployment to the
network's block explorer. Contracts that are already verified are reported
as verified.

Examples:
  nuclifi-deploy verify --network goerli
  nuclifi-deploy verify NuclifiController USDCStaking --network goerli
  nuclifi-deploy verify --suffix strategy-factories --network sepolia`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if app.Config.Network != nil && app.Config.Network.IsLocal() {
				return fmt.Errorf("%s is a local network, there is no explorer to verify against", app.Config.Network.Name)
			}

			outcomes, err := app.VerifyContracts.VerifyPersisted(cmd.Context(), usecase.VerifyPersistedOptions{
				Names:          args,
				ArtifactSuffix: suffix,
			})
			if err != nil {
				return err
			}

			render.NewVerifyRenderer(cmd.OutOrStdout(), useColor(cmd)).RenderOutcomes(outcomes)
			return nil
		},
	}

	cmd.Flags().StringVar(&suffix, "suffix", "", "Registry suffix of the plan (e.g. strategy-factories)")

	return cmd
}
