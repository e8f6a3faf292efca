package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// DeployProtocol runs a deployment plan end to end: price gas, deploy every
// contract in order, persist the ledger, verify, then wire.
type DeployProtocol struct {
	cfg       *config.RuntimeConfig
	chain     ChainClient
	contracts ContractRepository
	store     LedgerStore
	gasPricer *GasPricer
	wiring    *WireContracts
	verifier  *VerifyContracts
	progress  ProgressSink
	log       *slog.Logger
	now       func() time.Time
}

// NewDeployProtocol creates a new deployment use case
func NewDeployProtocol(
	cfg *config.RuntimeConfig,
	chain ChainClient,
	contracts ContractRepository,
	store LedgerStore,
	gasPricer *GasPricer,
	wiring *WireContracts,
	verifier *VerifyContracts,
	progress ProgressSink,
	log *slog.Logger,
) *DeployProtocol {
	return &DeployProtocol{
		cfg:       cfg,
		chain:     chain,
		contracts: contracts,
		store:     store,
		gasPricer: gasPricer,
		wiring:    wiring,
		verifier:  verifier,
		progress:  progress,
		log:       log,
		now:       time.Now,
	}
}

// DeployOptions contains options for a deployment run
type DeployOptions struct {
	SkipVerify bool
}

// deployRun is the mutable state of one run. It is owned by a single
// goroutine.
type deployRun struct {
	plan     *domain.DeploymentPlan
	opts     DeployOptions
	report   *domain.RunReport
	ledger   *domain.DeploymentLedger
	gasPrice *big.Int
	log      *slog.Logger
}

type pipelineStage struct {
	name string
	run  func(ctx context.Context, r *deployRun) error
}

// Run executes plan. The returned report is never nil: on failure it holds
// everything that was deployed before the error, which is what an operator
// needs to recover manually.
func (d *DeployProtocol) Run(ctx context.Context, plan *domain.DeploymentPlan, opts DeployOptions) (*domain.RunReport, error) {
	runID := uuid.NewString()
	r := &deployRun{
		plan:   plan,
		opts:   opts,
		ledger: domain.NewDeploymentLedger(),
		report: &domain.RunReport{
			RunID: runID,
			Plan:  plan.Name,
			State: domain.StateStart,
		},
	}
	r.report.Ledger = r.ledger

	if d.cfg.Network == nil {
		return r.report, d.fail(r, domain.NewRunError(domain.FailureConfig, domain.StateStart, "", errors.New("no network selected")))
	}
	r.report.Network = d.cfg.Network.Name
	r.log = d.log.With(
		slog.String("run", runID),
		slog.String("network", d.cfg.Network.Name),
		slog.String("plan", plan.Name),
	)

	if err := plan.Validate(); err != nil {
		return r.report, d.fail(r, domain.NewRunError(domain.FailureConfig, domain.StateStart, "", err))
	}

	pipeline := []pipelineStage{
		{"price gas", d.priceGas},
		{"deploy contracts", d.deployContracts},
		{"persist ledger", d.persistLedger},
		{"verify sources", d.verifySources},
		{"wire contracts", d.wireContracts},
	}

	for _, stage := range pipeline {
		r.log.Debug("stage started", slog.String("stage", stage.name))
		if err := stage.run(ctx, r); err != nil {
			return r.report, d.fail(r, err)
		}
	}

	if err := d.advance(ctx, r, domain.StateDone); err != nil {
		return r.report, err
	}
	r.log.Info("deployment complete",
		slog.Int("contracts", r.ledger.Len()),
		slog.Int("verified", r.report.VerifiedCount()),
	)
	return r.report, nil
}

func (d *DeployProtocol) priceGas(ctx context.Context, r *deployRun) error {
	d.progress.OnProgress(ctx, ProgressEvent{Stage: domain.StateStart, Message: "Connecting to " + d.cfg.Network.Name, Spinner: true})

	if err := d.chain.Connect(ctx); err != nil {
		return domain.NewRunError(connectFailureKind(err), domain.StateStart, "", err)
	}
	r.report.ChainID = d.chain.ChainID()
	r.report.Deployer = d.chain.Sender()

	d.progress.OnProgress(ctx, ProgressEvent{Stage: domain.StateStart, Message: "Querying gas price", Spinner: true})
	policy, err := d.gasPricer.Price(ctx)
	if err != nil {
		return domain.NewRunError(domain.FailureOracle, domain.StateStart, "", err)
	}
	r.report.Gas = policy
	r.gasPrice = policy.EffectiveGasPrice()

	r.log.Info("gas priced",
		slog.String("network_price", policy.BaseGasPrice.String()),
		slog.String("gas_price", r.gasPrice.String()),
		slog.String("deployer", r.report.Deployer.Hex()),
	)
	return d.advance(ctx, r, domain.StateGasPriced)
}

// connectFailureKind separates local misconfiguration from an unreachable
// or misbehaving node.
func connectFailureKind(err error) domain.FailureKind {
	for _, target := range []error{
		config.ErrMissingCredential,
		config.ErrInvalidCredential,
		config.ErrMissingRPCURL,
		config.ErrUnknownNetwork,
	} {
		if errors.Is(err, target) {
			return domain.FailureConfig
		}
	}
	return domain.FailureOracle
}

func (d *DeployProtocol) deployContracts(ctx context.Context, r *deployRun) error {
	if err := d.advance(ctx, r, domain.StateDeploying); err != nil {
		return err
	}

	total := len(r.plan.Contracts())
	current := 0
	for _, stage := range r.plan.Stages {
		d.progress.Info(stage.Title)

		for _, spec := range stage.Contracts {
			current++
			d.progress.OnProgress(ctx, ProgressEvent{
				Stage:   domain.StateDeploying,
				Current: current,
				Total:   total,
				Message: fmt.Sprintf("Deploying %s", spec.Name),
				Spinner: true,
			})

			rec, err := d.deployContract(ctx, r, spec)
			if err != nil {
				return domain.NewRunError(domain.FailureDeployment, domain.StateDeploying, spec.Name, err)
			}
			if err := r.ledger.Append(rec); err != nil {
				return domain.NewRunError(domain.FailureDeployment, domain.StateDeploying, spec.Name, err)
			}

			// logged immediately so a later failure still leaves a trail
			r.log.Info("contract deployed",
				slog.String("contract", rec.LogicalName),
				slog.String("address", rec.Address.Hex()),
				slog.String("tx", rec.TxHash.Hex()),
				slog.Uint64("block", rec.BlockNumber),
			)
		}

		for _, call := range stage.Setup {
			d.progress.OnProgress(ctx, ProgressEvent{
				Stage:   domain.StateDeploying,
				Message: call.String(),
				Spinner: true,
			})
			result, err := d.wiring.Execute(ctx, call, r.ledger, r.gasPrice)
			if err != nil {
				return domain.NewRunError(domain.FailureDeployment, domain.StateDeploying, call.Target, err)
			}
			r.report.Setup = append(r.report.Setup, result)
		}
	}
	return nil
}

func (d *DeployProtocol) deployContract(ctx context.Context, r *deployRun, spec domain.ContractSpec) (domain.DeploymentRecord, error) {
	contract, err := d.contracts.GetContract(ctx, spec.Factory)
	if err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("failed to resolve factory %s: %w", spec.Factory, err)
	}
	if !contract.Deployable() {
		return domain.DeploymentRecord{}, fmt.Errorf("factory %s has no creation bytecode", spec.Factory)
	}

	args, err := domain.ResolveArgs(spec.Args, r.ledger, d.chain.Sender())
	if err != nil {
		return domain.DeploymentRecord{}, err
	}
	coerced, encoded, err := contract.PackConstructor(args...)
	if err != nil {
		return domain.DeploymentRecord{}, err
	}

	pending, err := d.chain.DeployContract(ctx, contract, r.gasPrice, coerced...)
	if err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("failed to submit creation transaction: %w", err)
	}
	r.log.Debug("creation submitted", slog.String("contract", spec.Name), slog.String("tx", pending.Hash.Hex()))

	receipt, err := d.chain.WaitDeployed(ctx, pending)
	if err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("creation transaction %s: %w", pending.Hash.Hex(), err)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return domain.DeploymentRecord{}, fmt.Errorf("creation transaction %s: %w", pending.Hash.Hex(), domain.ErrInvalidAddress)
	}

	return domain.DeploymentRecord{
		LogicalName:     spec.Name,
		ABIKind:         spec.Kind(),
		Address:         receipt.ContractAddress,
		ConstructorArgs: coerced,
		Factory:         spec.Factory,
		EncodedArgs:     encoded,
		TxHash:          receipt.TxHash,
		BlockNumber:     receipt.BlockNumber,
		DeployedAt:      d.now().UTC(),
	}, nil
}

func (d *DeployProtocol) persistLedger(ctx context.Context, r *deployRun) error {
	saved, err := d.store.SaveLedger(ctx, d.cfg.Network.Name, r.plan.ArtifactSuffix, r.ledger)
	if err != nil {
		return domain.NewRunError(domain.FailureDeployment, domain.StateDeploying, "", fmt.Errorf("failed to persist ledger: %w", err))
	}
	r.report.ArtifactPath = saved.ArtifactPath
	r.report.LedgerPath = saved.LedgerPath
	r.log.Info("ledger persisted", slog.String("artifact", saved.ArtifactPath), slog.String("ledger", saved.LedgerPath))
	return d.advance(ctx, r, domain.StateLedgered)
}

func (d *DeployProtocol) wireContracts(ctx context.Context, r *deployRun) error {
	if len(r.plan.Wiring) > 0 {
		results, err := d.wiring.WireAll(ctx, r.plan.Wiring, r.ledger, r.gasPrice)
		r.report.Wiring = results
		if err != nil {
			return domain.NewRunError(domain.FailureWiring, domain.StateVerified, "", err)
		}
	}
	return d.advance(ctx, r, domain.StateWired)
}

func (d *DeployProtocol) verifySources(ctx context.Context, r *deployRun) error {
	switch {
	case r.opts.SkipVerify:
		r.log.Info("source verification skipped")
	case d.cfg.Network.IsLocal():
		r.log.Info("source verification skipped on local network")
	default:
		r.report.Verification = d.verifier.VerifyAll(ctx, r.ledger)
	}
	return d.advance(ctx, r, domain.StateVerified)
}

func (d *DeployProtocol) advance(ctx context.Context, r *deployRun, next domain.RunState) error {
	if !r.report.State.CanTransition(next) {
		return fmt.Errorf("illegal run transition %s -> %s", r.report.State, next)
	}
	r.report.State = next
	d.progress.OnProgress(ctx, ProgressEvent{Stage: next, Message: string(next)})
	return nil
}

func (d *DeployProtocol) fail(r *deployRun, err error) error {
	r.report.State = domain.StateFailed
	log := r.log
	if log == nil {
		log = d.log
	}
	log.Error("deployment failed",
		slog.String("error", err.Error()),
		slog.Int("deployed", r.ledger.Len()),
	)
	return err
}
