package render

import (
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
)

// VerifyRenderer renders source verification outcomes
type VerifyRenderer struct {
	out   io.Writer
	color bool
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer, color bool) *VerifyRenderer {
	return &VerifyRenderer{
		out:   out,
		color: color,
	}
}

// RenderOutcomes lists every verification attempt and a summary line
func (r *VerifyRenderer) RenderOutcomes(outcomes []domain.VerificationOutcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(r.out, "Nothing to verify")
		return
	}

	fmt.Fprintln(r.out, styled(r.color, sectionHeaderStyle, "Verification"))
	for _, o := range outcomes {
		if o.Succeeded {
			fmt.Fprintf(r.out, "  %s %s %s\n",
				styled(r.color, successStyle, "✓"),
				o.LogicalName,
				styled(r.color, faintStyle, o.Address.Hex()),
			)
			continue
		}
		fmt.Fprintf(r.out, "  %s %s %s\n",
			styled(r.color, failureStyle, "✗"),
			o.LogicalName,
			styled(r.color, faintStyle, o.Address.Hex()),
		)
		if o.ErrorMessage != "" {
			fmt.Fprintf(r.out, "      %s\n", styled(r.color, failureStyle, o.ErrorMessage))
		}
	}

	verified := lo.CountBy(outcomes, func(o domain.VerificationOutcome) bool { return o.Succeeded })
	fmt.Fprintln(r.out)
	if verified == len(outcomes) {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Verified %d/%d contracts", verified, len(outcomes))))
	} else {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Verified %d/%d contracts, re-run `nuclifi-deploy verify` for the rest", verified, len(outcomes))))
	}
	fmt.Fprintln(r.out)
}
