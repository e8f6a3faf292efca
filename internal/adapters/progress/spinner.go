package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// displayedStages are the pipeline stages shown in the spinner line
var displayedStages = []domain.RunState{
	domain.StateGasPriced,
	domain.StateDeploying,
	domain.StateLedgered,
	domain.StateVerified,
	domain.StateWired,
}

// SpinnerSink shows the deployment pipeline as a single spinner line
type SpinnerSink struct {
	spinner        *spinner.Spinner
	out            io.Writer
	current        domain.RunState
	stageStartTime time.Time
	title          cases.Caser
}

// NewSpinnerSink creates a new spinner-based progress sink
func NewSpinnerSink() *SpinnerSink {
	return newSpinnerSink(os.Stderr)
}

func newSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerSink{
		spinner:        s,
		out:            out,
		current:        domain.StateStart,
		stageStartTime: time.Now(),
		title:          cases.Title(language.English),
	}
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage != r.current && !event.Spinner {
		r.current = event.Stage
		r.stageStartTime = time.Now()
	}

	if r.current.Terminal() {
		r.stop()
		return
	}

	suffix := r.stageLine()
	if event.Spinner && event.Message != "" {
		suffix += "  " + event.Message
		if event.Total > 0 {
			suffix += fmt.Sprintf(" [%d/%d]", event.Current, event.Total)
		}
	}
	r.spinner.Suffix = " " + suffix
	if !r.spinner.Active() {
		r.spinner.Start()
	}
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.printAround(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.printAround(color.New(color.FgRed), message)
}

func (r *SpinnerSink) printAround(c *color.Color, message string) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) stop() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// stageLine renders e.g. "✓ Gas-Priced → ● Deploying (3s) → ○ Ledgered".
// current is the last stage reached, the one after it is running. Deploying
// is entered before any contract is sent, so it runs itself.
func (r *SpinnerSink) stageLine() string {
	reached := -1
	for i, stage := range displayedStages {
		if stage == r.current {
			reached = i
		}
	}
	if r.current == domain.StateDeploying {
		reached--
	}

	parts := make([]string, 0, len(displayedStages))
	for i, stage := range displayedStages {
		name := r.title.String(string(stage))
		switch {
		case i <= reached:
			parts = append(parts, fmt.Sprintf("✓ %s", color.New(color.FgGreen).Sprint(name)))
		case i == reached+1:
			parts = append(parts, fmt.Sprintf("● %s (%s)", color.New(color.FgYellow).Sprint(name), time.Since(r.stageStartTime).Round(time.Second)))
		default:
			parts = append(parts, fmt.Sprintf("○ %s", color.New(color.FgWhite, color.Faint).Sprint(name)))
		}
	}
	return strings.Join(parts, " → ")
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
