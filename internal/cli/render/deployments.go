package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// Output formats supported by the show command
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DeploymentsRenderer renders a persisted network registry
type DeploymentsRenderer struct {
	out   io.Writer
	color bool
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer, color bool) *DeploymentsRenderer {
	return &DeploymentsRenderer{
		out:   out,
		color: color,
	}
}

// deploymentView is the serialised form used by the json and yaml formats
type deploymentView struct {
	Name        string `json:"name" yaml:"name"`
	ABI         string `json:"abi" yaml:"abi"`
	Address     string `json:"address" yaml:"address"`
	TxHash      string `json:"txHash,omitempty" yaml:"txHash,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
}

// Render renders result in the given format
func (r *DeploymentsRenderer) Render(result *usecase.ShowDeploymentsResult, format string) error {
	switch format {
	case "", FormatTable:
		return r.renderTable(result)
	case FormatJSON:
		data, err := json.MarshalIndent(r.views(result), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.out, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(r.views(result)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (expected table, json or yaml)", format)
	}
}

func (r *DeploymentsRenderer) views(result *usecase.ShowDeploymentsResult) []deploymentView {
	views := make([]deploymentView, 0, len(result.Artifact.Entries))
	for _, entry := range result.Artifact.Entries {
		view := deploymentView{
			Name:    entry.Name,
			ABI:     entry.ABI,
			Address: entry.Address,
		}
		if rec, ok := r.record(result, entry.Name); ok {
			view.TxHash = rec.TxHash.Hex()
			view.BlockNumber = rec.BlockNumber
		}
		views = append(views, view)
	}
	return views
}

func (r *DeploymentsRenderer) record(result *usecase.ShowDeploymentsResult, name string) (domain.DeploymentRecord, bool) {
	if result.Ledger == nil {
		return domain.DeploymentRecord{}, false
	}
	return result.Ledger.Get(name)
}

func (r *DeploymentsRenderer) renderTable(result *usecase.ShowDeploymentsResult) error {
	if len(result.Artifact.Entries) == 0 {
		fmt.Fprintf(r.out, "No deployments found for %s\n", result.Network)
		return nil
	}

	fmt.Fprintf(r.out, "%s %s\n\n",
		styled(r.color, sectionHeaderStyle, "Deployments on"),
		styled(r.color, nameStyle, result.Network),
	)

	t := newTable(table.Row{"Name", "ABI", "Address", "Tx", "Block"})
	for _, entry := range result.Artifact.Entries {
		tx, block := "-", "-"
		if rec, ok := r.record(result, entry.Name); ok {
			tx = shortHash(rec.TxHash)
			block = fmt.Sprintf("%d", rec.BlockNumber)
		}
		t.AppendRow(table.Row{
			styled(r.color, nameStyle, entry.Name),
			entry.ABI,
			styled(r.color, addressStyle, entry.Address),
			styled(r.color, faintStyle, tx),
			block,
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
