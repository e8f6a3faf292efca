package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// ErrNonInteractive is returned when a prompt is needed in non-interactive mode
var ErrNonInteractive = errors.New("interactive input not available in non-interactive mode")

// SelectorAdapter handles interactive selection and confirmation
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectPlan lets the operator pick a deployment plan
func (s *SelectorAdapter) SelectPlan(ctx context.Context, plans []*domain.DeploymentPlan) (*domain.DeploymentPlan, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("no plans provided for selection")
	}
	if len(plans) == 1 {
		return plans[0], nil
	}
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	options := formatPlanOptions(plans)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     "Select a deployment plan",
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return plans[index], nil
}

// Confirm asks a yes/no question. Anything but yes is a refusal.
func (s *SelectorAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if s.config.NonInteractive {
		return false, ErrNonInteractive
	}

	confirm := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}

	if _, err := confirm.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// formatPlanOptions creates display strings for plan selection
func formatPlanOptions(plans []*domain.DeploymentPlan) []string {
	options := make([]string, len(plans))
	for i, p := range plans {
		name := color.New(color.FgWhite, color.Bold).Sprint(p.Name)
		count := color.New(color.FgBlue).Sprintf("%d contracts", len(p.Contracts()))
		options[i] = fmt.Sprintf("%s (%s) %s", name, count, p.Description)
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interfaces
var (
	_ usecase.PlanSelector = (*SelectorAdapter)(nil)
	_ usecase.Confirmer    = (*SelectorAdapter)(nil)
)
