package render

import (
	"fmt"
	"io"

	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out   io.Writer
	color bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, color bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:   out,
		color: color,
	}
}

// RenderNetworksList renders the list of networks
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in foundry.toml [rpc_endpoints]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	for _, network := range result.Networks {
		marker := "  "
		if network.Name == result.Current {
			marker = "* "
		}

		switch {
		case network.Error != nil:
			fmt.Fprintf(r.out, "%s❌ %s - Error: %v\n", marker, network.Name, network.Error)
		case network.MissingRPC != "":
			fmt.Fprintf(r.out, "%s⚠️  %s - set %s to use this network\n", marker, network.Name, network.MissingRPC)
		case network.ChainID == 0:
			fmt.Fprintf(r.out, "%s✅ %s - Chain ID: from node\n", marker, network.Name)
		default:
			line := fmt.Sprintf("%s✅ %s - Chain ID: %d", marker, network.Name, network.ChainID)
			if network.Local {
				line += styled(r.color, faintStyle, " (local, no verification)")
			}
			fmt.Fprintln(r.out, line)
		}
	}

	return nil
}
