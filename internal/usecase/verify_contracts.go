package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// VerifyContracts submits deployed contracts to the source verifier.
// Verification is best-effort: it yields outcomes, never errors.
type VerifyContracts struct {
	cfg      *config.RuntimeConfig
	verifier SourceVerifier
	store    LedgerStore
	progress ProgressSink
	log      *slog.Logger
}

// NewVerifyContracts creates a new verification use case
func NewVerifyContracts(
	cfg *config.RuntimeConfig,
	verifier SourceVerifier,
	store LedgerStore,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyContracts {
	return &VerifyContracts{
		cfg:      cfg,
		verifier: verifier,
		store:    store,
		progress: progress,
		log:      log,
	}
}

// Verify submits one record. Calling it again for the same address is safe.
func (v *VerifyContracts) Verify(ctx context.Context, rec domain.DeploymentRecord) (outcome domain.VerificationOutcome) {
	outcome = domain.VerificationOutcome{
		LogicalName: rec.LogicalName,
		Address:     rec.Address,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Succeeded = false
			outcome.ErrorMessage = fmt.Sprintf("verifier panicked: %v", r)
		}
		if !outcome.Succeeded {
			v.log.Warn("verification failed",
				slog.String("contract", rec.LogicalName),
				slog.String("address", rec.Address.Hex()),
				slog.String("error", outcome.ErrorMessage),
			)
		}
	}()

	err := v.verifier.Verify(ctx, VerifyRequest{
		LogicalName:     rec.LogicalName,
		Factory:         rec.Factory,
		Address:         rec.Address,
		ConstructorArgs: rec.ConstructorArgs,
		EncodedArgs:     rec.EncodedArgs,
	})
	if err != nil {
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	outcome.Succeeded = true
	v.log.Info("verified", slog.String("contract", rec.LogicalName), slog.String("address", rec.Address.Hex()))
	return outcome
}

// VerifyAll verifies every ledger record in order. A failure never stops
// the next attempt.
func (v *VerifyContracts) VerifyAll(ctx context.Context, ledger *domain.DeploymentLedger) []domain.VerificationOutcome {
	records := ledger.Records()
	outcomes := make([]domain.VerificationOutcome, 0, len(records))
	for i, rec := range records {
		v.progress.OnProgress(ctx, ProgressEvent{
			Stage:   domain.StateVerified,
			Current: i + 1,
			Total:   len(records),
			Message: fmt.Sprintf("Verifying %s", rec.LogicalName),
			Spinner: true,
		})
		outcomes = append(outcomes, v.Verify(ctx, rec))
	}
	return outcomes
}

// VerifyPersistedOptions selects what to re-verify from a saved ledger
type VerifyPersistedOptions struct {
	Names          []string // empty means all
	ArtifactSuffix string
}

// VerifyPersisted re-verifies contracts from the full ledger written by an
// earlier run.
func (v *VerifyContracts) VerifyPersisted(ctx context.Context, opts VerifyPersistedOptions) ([]domain.VerificationOutcome, error) {
	if v.cfg.Network == nil {
		return nil, fmt.Errorf("no network selected")
	}

	ledger, err := v.store.LoadLedger(ctx, v.cfg.Network.Name, opts.ArtifactSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for %s: %w", v.cfg.Network.Name, err)
	}

	if len(opts.Names) == 0 {
		return v.VerifyAll(ctx, ledger), nil
	}

	outcomes := make([]domain.VerificationOutcome, 0, len(opts.Names))
	for _, name := range opts.Names {
		rec, ok := ledger.Get(name)
		if !ok {
			return outcomes, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
		}
		outcomes = append(outcomes, v.Verify(ctx, rec))
	}
	return outcomes, nil
}
