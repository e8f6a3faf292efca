package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/samber/lo"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
)

// WireContracts registers cross-contract addresses once every contract of
// a batch exists. It also executes the setup calls of deployment stages.
type WireContracts struct {
	chain     ChainClient
	contracts ContractRepository
	progress  ProgressSink
	log       *slog.Logger
}

// NewWireContracts creates a new wiring use case
func NewWireContracts(
	chain ChainClient,
	contracts ContractRepository,
	progress ProgressSink,
	log *slog.Logger,
) *WireContracts {
	return &WireContracts{
		chain:     chain,
		contracts: contracts,
		progress:  progress,
		log:       log,
	}
}

// WireAll issues every call exactly once, in order, awaiting each before the
// next. If any referenced name is missing from the ledger nothing is sent.
func (w *WireContracts) WireAll(ctx context.Context, calls []domain.Call, ledger *domain.DeploymentLedger, gasPrice *big.Int) ([]domain.WiringResult, error) {
	if err := CheckReferences(calls, ledger); err != nil {
		return nil, err
	}

	results := make([]domain.WiringResult, 0, len(calls))
	for i, call := range calls {
		w.progress.OnProgress(ctx, ProgressEvent{
			Stage:   domain.StateWired,
			Current: i + 1,
			Total:   len(calls),
			Message: call.String(),
			Spinner: true,
		})
		result, err := w.Execute(ctx, call, ledger, gasPrice)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// CheckReferences fails closed when a call names a contract the ledger
// does not hold.
func CheckReferences(calls []domain.Call, ledger *domain.DeploymentLedger) error {
	refs := lo.Uniq(lo.FlatMap(calls, func(c domain.Call, _ int) []string {
		return c.References()
	}))
	missing := lo.Filter(refs, func(name string, _ int) bool {
		return !ledger.Has(name)
	})
	if len(missing) > 0 {
		return domain.MissingReferencesErr{Names: missing}
	}
	return nil
}

// Execute sends one call and waits for it to be mined.
func (w *WireContracts) Execute(ctx context.Context, call domain.Call, ledger *domain.DeploymentLedger, gasPrice *big.Int) (domain.WiringResult, error) {
	target, ok := ledger.Get(call.Target)
	if !ok {
		return domain.WiringResult{}, fmt.Errorf("%s: %w", call.Target, domain.ErrMissingLedgerEntry)
	}

	contract, err := w.contracts.GetContract(ctx, target.Factory)
	if err != nil {
		return domain.WiringResult{}, fmt.Errorf("failed to load %s: %w", target.Factory, err)
	}

	args, err := domain.ResolveArgs(call.Args, ledger, w.chain.Sender())
	if err != nil {
		return domain.WiringResult{}, err
	}

	pending, err := w.chain.Transact(ctx, models.ContractAt{Contract: contract, Address: target.Address}, gasPrice, call.Method, args...)
	if err != nil {
		return domain.WiringResult{}, fmt.Errorf("%s: failed to submit: %w", call, err)
	}

	receipt, err := w.chain.WaitMined(ctx, pending)
	if err != nil {
		return domain.WiringResult{}, fmt.Errorf("%s: %w", call, err)
	}

	w.log.Info("call confirmed",
		slog.String("call", call.String()),
		slog.String("tx", receipt.TxHash.Hex()),
		slog.Uint64("block", receipt.BlockNumber),
	)

	return domain.WiringResult{
		Call:        call.String(),
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
	}, nil
}
