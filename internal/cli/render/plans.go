package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// PlansRenderer renders the deployment plan catalog
type PlansRenderer struct {
	out   io.Writer
	color bool
}

// NewPlansRenderer creates a new plans renderer
func NewPlansRenderer(out io.Writer, color bool) *PlansRenderer {
	return &PlansRenderer{
		out:   out,
		color: color,
	}
}

// RenderPlans renders one row per plan
func (r *PlansRenderer) RenderPlans(plans []usecase.PlanSummary) error {
	if len(plans) == 0 {
		fmt.Fprintln(r.out, "No deployment plans available")
		return nil
	}

	t := newTable(table.Row{"Plan", "Contracts", "Setup", "Wiring", "Registry", "Description"})
	for _, p := range plans {
		registry := "<network>.json"
		if p.ArtifactSuffix != "" {
			registry = fmt.Sprintf("<network>.%s.json", p.ArtifactSuffix)
		}
		t.AppendRow(table.Row{
			styled(r.color, nameStyle, p.Name),
			p.Contracts,
			p.SetupCalls,
			p.WiringCalls,
			styled(r.color, faintStyle, registry),
			p.Description,
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderExportedABIs lists the ABI files written by export-abis
func (r *PlansRenderer) RenderExportedABIs(paths []string) {
	for _, p := range paths {
		fmt.Fprintf(r.out, "  %s\n", styled(r.color, faintStyle, p))
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Exported %d ABIs", len(paths))))
}
