package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// ErrMissingAPIKey is returned when no explorer API key is configured
var ErrMissingAPIKey = errors.New("ETHERSCAN_API_KEY is not set")

// CommandRunner runs an external command and returns its combined output
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ForgeVerifier verifies sources on Etherscan-compatible explorers with
// `forge verify-contract`.
type ForgeVerifier struct {
	cfg       *config.RuntimeConfig
	contracts usecase.ContractRepository
	run       CommandRunner
	log       *slog.Logger
}

// NewForgeVerifier creates a new verifier
func NewForgeVerifier(cfg *config.RuntimeConfig, contracts usecase.ContractRepository, log *slog.Logger) *ForgeVerifier {
	return NewForgeVerifierWithRunner(cfg, contracts, log, execRunner)
}

// NewForgeVerifierWithRunner creates a verifier with a custom command runner
func NewForgeVerifierWithRunner(cfg *config.RuntimeConfig, contracts usecase.ContractRepository, log *slog.Logger, run CommandRunner) *ForgeVerifier {
	return &ForgeVerifier{cfg: cfg, contracts: contracts, run: run, log: log}
}

// Verify submits one deployment. An already verified contract is a success.
func (v *ForgeVerifier) Verify(ctx context.Context, req usecase.VerifyRequest) error {
	network := v.cfg.Network
	if network == nil {
		return errors.New("no network selected")
	}
	if network.EtherscanAPIKey == "" {
		return ErrMissingAPIKey
	}

	contract, err := v.contracts.GetContract(ctx, req.Factory)
	if err != nil {
		return err
	}

	args := v.buildVerifyArgs(req, contract.FullyQualifiedName(), contract.CompilerVersion)
	v.log.Debug("running forge", "args", strings.Join(redact(args), " "))

	output, err := v.run(ctx, v.cfg.ProjectRoot, "forge", args...)
	return classifyOutput(string(output), err)
}

// buildVerifyArgs builds the forge verify-contract args for Etherscan
func (v *ForgeVerifier) buildVerifyArgs(req usecase.VerifyRequest, contractPath, compilerVersion string) []string {
	network := v.cfg.Network

	args := []string{
		"verify-contract",
		req.Address.Hex(),
		contractPath,
		"--watch",
		"--etherscan-api-key", network.EtherscanAPIKey,
	}

	if network.ChainID != 0 {
		args = append(args, "--chain-id", fmt.Sprintf("%d", network.ChainID))
	} else {
		args = append(args, "--rpc-url", network.RPCURL)
	}
	if network.ExplorerURL != "" && !isEtherscanHost(network.ExplorerURL) {
		args = append(args, "--verifier-url", network.ExplorerURL)
	}
	if compilerVersion != "" {
		args = append(args, "--compiler-version", compilerVersion)
	}
	if len(req.EncodedArgs) > 0 {
		args = append(args, "--constructor-args", strings.TrimPrefix(hexutil.Encode(req.EncodedArgs), "0x"))
	}

	return args
}

// classifyOutput maps forge output to success or failure
func classifyOutput(output string, runErr error) error {
	if isAlreadyVerified(output) {
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("%w: %s", domain.ErrVerificationFailed, firstLine(output, runErr))
	}
	if strings.Contains(output, "successfully verified") || strings.Contains(output, "Pass - Verified") {
		return nil
	}
	return fmt.Errorf("%w: status unclear: %s", domain.ErrVerificationFailed, strings.TrimSpace(output))
}

func isAlreadyVerified(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "already verified")
}

func isEtherscanHost(url string) bool {
	return strings.Contains(url, "etherscan.io")
}

func firstLine(output string, err error) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return err.Error()
	}
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(strings.ToLower(line), "error") {
			return strings.TrimSpace(line)
		}
	}
	return strings.Split(output, "\n")[0]
}

// redact hides the API key in logged command lines
func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--etherscan-api-key" {
			out[i+1] = "***"
		}
	}
	return out
}

// Ensure the adapter implements the interface
var _ usecase.SourceVerifier = (*ForgeVerifier)(nil)
