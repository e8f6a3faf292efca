package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
)

// ReportRenderer renders the outcome of a deployment run
type ReportRenderer struct {
	out   io.Writer
	color bool
}

// NewReportRenderer creates a new report renderer
func NewReportRenderer(out io.Writer, color bool) *ReportRenderer {
	return &ReportRenderer{
		out:   out,
		color: color,
	}
}

// RenderPlan shows what a run is about to do, before any transaction is sent
func (r *ReportRenderer) RenderPlan(plan *domain.DeploymentPlan, network string) {
	fmt.Fprintf(r.out, "%s %s on %s\n\n",
		styled(r.color, sectionHeaderStyle, "Deployment plan"),
		styled(r.color, nameStyle, plan.Name),
		styled(r.color, nameStyle, network),
	)

	for _, stage := range plan.Stages {
		fmt.Fprintln(r.out, styled(r.color, sectionHeaderStyle, stage.Title))
		for _, c := range stage.Contracts {
			args := make([]string, 0, len(c.Args))
			for _, a := range c.Args {
				args = append(args, a.String())
			}
			fmt.Fprintf(r.out, "  %s %s%s\n",
				styled(r.color, nameStyle, c.Name),
				styled(r.color, faintStyle, c.Factory),
				styled(r.color, faintStyle, fmt.Sprintf("(%s)", strings.Join(args, ", "))),
			)
		}
		for _, call := range stage.Setup {
			fmt.Fprintf(r.out, "  → %s\n", call)
		}
	}

	if len(plan.Wiring) > 0 {
		fmt.Fprintln(r.out, styled(r.color, sectionHeaderStyle, "Wiring"))
		for _, call := range plan.Wiring {
			fmt.Fprintf(r.out, "  → %s\n", call)
		}
	}
	fmt.Fprintln(r.out)
}

// RenderReport renders a run report. A failed report lists what was
// deployed before the failure so the operator can recover by hand.
func (r *ReportRenderer) RenderReport(report *domain.RunReport) error {
	if report == nil {
		return nil
	}

	fmt.Fprintln(r.out)
	r.renderHeader(report)

	if report.Ledger != nil && report.Ledger.Len() > 0 {
		if report.State == domain.StateFailed {
			fmt.Fprintln(r.out, styled(r.color, sectionHeaderStyle, "Deployed before failure"))
		} else {
			fmt.Fprintln(r.out, styled(r.color, sectionHeaderStyle, "Deployments"))
		}
		fmt.Fprintln(r.out, r.ledgerTable(report.Ledger))
		fmt.Fprintln(r.out)
	}

	r.renderCalls("Setup", report.Setup)

	if len(report.Verification) > 0 {
		NewVerifyRenderer(r.out, r.color).RenderOutcomes(report.Verification)
	}

	r.renderCalls("Wiring", report.Wiring)

	if report.ArtifactPath != "" {
		fmt.Fprintf(r.out, "Registry: %s\n", report.ArtifactPath)
		fmt.Fprintf(r.out, "Ledger:   %s\n", report.LedgerPath)
	}

	switch {
	case report.State == domain.StateDone:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %d contracts", report.Ledger.Len())))
	case report.State == domain.StateFailed && report.ArtifactPath == "" && report.Ledger != nil && report.Ledger.Len() > 0:
		fmt.Fprintln(r.out, FormatWarning("The registry was not written. Record the addresses above before re-running."))
	}
	return nil
}

func (r *ReportRenderer) renderHeader(report *domain.RunReport) {
	fmt.Fprintf(r.out, "Run:      %s\n", styled(r.color, faintStyle, report.RunID))
	fmt.Fprintf(r.out, "Plan:     %s\n", report.Plan)
	if report.ChainID != 0 {
		fmt.Fprintf(r.out, "Network:  %s (chain %d)\n", report.Network, report.ChainID)
	} else {
		fmt.Fprintf(r.out, "Network:  %s\n", report.Network)
	}
	if report.Deployer != (common.Address{}) {
		fmt.Fprintf(r.out, "Deployer: %s\n", report.Deployer.Hex())
	}
	if report.Gas.BaseGasPrice != nil {
		fmt.Fprintf(r.out, "Gas:      %s gwei (network %s gwei)\n",
			domain.FormatGwei(report.Gas.EffectiveGasPrice()),
			domain.FormatGwei(report.Gas.BaseGasPrice),
		)
	}
	fmt.Fprintln(r.out)
}

func (r *ReportRenderer) ledgerTable(ledger *domain.DeploymentLedger) string {
	t := newTable(table.Row{"Name", "ABI", "Address", "Tx", "Block"})
	for _, rec := range ledger.Records() {
		t.AppendRow(table.Row{
			styled(r.color, nameStyle, rec.LogicalName),
			rec.ABIKind,
			styled(r.color, addressStyle, rec.Address.Hex()),
			styled(r.color, faintStyle, shortHash(rec.TxHash)),
			rec.BlockNumber,
		})
	}
	return t.Render()
}

func (r *ReportRenderer) renderCalls(title string, calls []domain.WiringResult) {
	if len(calls) == 0 {
		return
	}
	fmt.Fprintln(r.out, styled(r.color, sectionHeaderStyle, title))
	for _, c := range calls {
		fmt.Fprintf(r.out, "  ✓ %s %s\n", c.Call, styled(r.color, faintStyle, shortHash(c.TxHash)))
	}
	fmt.Fprintln(r.out)
}
