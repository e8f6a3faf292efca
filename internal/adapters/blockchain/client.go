package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

const dialTimeout = 30 * time.Second

// Backend is the subset of ethclient.Client the deployer needs
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// DialFunc opens a backend for an RPC URL
type DialFunc func(ctx context.Context, rpcURL string) (Backend, error)

// DialEthClient dials an RPC endpoint with ethclient
func DialEthClient(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Client implements usecase.ChainClient. Every transaction is signed with
// the configured credential and priced with the legacy gas price given by
// the caller.
type Client struct {
	cfg  *config.RuntimeConfig
	log  *slog.Logger
	dial DialFunc

	mu      sync.Mutex
	backend Backend
	chainID *big.Int
	auth    *bind.TransactOpts
}

// NewClient creates a chain client. No connection is made until Connect.
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	return NewClientWithDialer(cfg, log, DialEthClient)
}

// NewClientWithDialer creates a chain client with a custom dialer
func NewClientWithDialer(cfg *config.RuntimeConfig, log *slog.Logger, dial DialFunc) *Client {
	return &Client{cfg: cfg, log: log, dial: dial}
}

// Connect dials the network and checks that the node serves the expected
// chain. Calling it again is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return nil
	}

	network := c.cfg.Network
	if network == nil {
		return fmt.Errorf("%w: no network selected", config.ErrUnknownNetwork)
	}
	if c.cfg.Credential == nil {
		return config.ErrMissingCredential
	}
	if network.RPCURL == "" {
		return fmt.Errorf("%w for %s: set %s", config.ErrMissingRPCURL, network.Name, network.MissingRPC)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	backend, err := c.dial(dialCtx, network.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := backend.ChainID(dialCtx)
	if err != nil {
		backend.Close()
		return fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		backend.Close()
		return fmt.Errorf("chain ID mismatch for %s: expected %d, got %d", network.Name, network.ChainID, chainID.Uint64())
	}

	auth, err := bind.NewKeyedTransactorWithChainID(c.cfg.Credential.PrivateKey(), chainID)
	if err != nil {
		backend.Close()
		return fmt.Errorf("failed to create transactor: %w", err)
	}

	c.backend = backend
	c.chainID = chainID
	c.auth = auth

	c.log.Info("connected",
		slog.String("network", network.Name),
		slog.Uint64("chain_id", chainID.Uint64()),
		slog.String("deployer", auth.From.Hex()),
	)
	return nil
}

// Close releases the RPC connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		c.backend.Close()
		c.backend = nil
	}
}

// ChainID returns the chain ID reported by the node, 0 before Connect
func (c *Client) ChainID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainID == nil {
		return 0
	}
	return c.chainID.Uint64()
}

// Sender returns the address of the signing credential
func (c *Client) Sender() common.Address {
	if c.cfg.Credential == nil {
		return common.Address{}
	}
	return c.cfg.Credential.Address
}

// SuggestGasPrice returns the node's current legacy gas price
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	backend, err := c.connected()
	if err != nil {
		return nil, err
	}
	return backend.SuggestGasPrice(ctx)
}

// DeployContract submits a creation transaction
func (c *Client) DeployContract(ctx context.Context, contract *models.Contract, gasPrice *big.Int, args ...any) (*models.PendingTx, error) {
	backend, err := c.connected()
	if err != nil {
		return nil, err
	}

	address, tx, _, err := bind.DeployContract(c.transactOpts(ctx, gasPrice), contract.ABI, contract.Bytecode, backend, args...)
	if err != nil {
		return nil, err
	}

	c.log.Debug("creation transaction sent",
		slog.String("contract", contract.Name),
		slog.String("tx", tx.Hash().Hex()),
		slog.String("address", address.Hex()),
	)
	return &models.PendingTx{Hash: tx.Hash(), ContractAddress: address, Tx: tx}, nil
}

// Transact submits a method call on a deployed contract
func (c *Client) Transact(ctx context.Context, target models.ContractAt, gasPrice *big.Int, method string, args ...any) (*models.PendingTx, error) {
	backend, err := c.connected()
	if err != nil {
		return nil, err
	}

	coerced, err := target.Contract.PackMethod(method, args...)
	if err != nil {
		return nil, err
	}

	bound := bind.NewBoundContract(target.Address, target.Contract.ABI, backend, backend, backend)
	tx, err := bound.Transact(c.transactOpts(ctx, gasPrice), method, coerced...)
	if err != nil {
		return nil, err
	}
	return &models.PendingTx{Hash: tx.Hash(), Tx: tx}, nil
}

// WaitDeployed waits for a creation transaction and checks that code exists
// at the new address.
func (c *Client) WaitDeployed(ctx context.Context, pending *models.PendingTx) (*models.Receipt, error) {
	receipt, err := c.waitMined(ctx, pending)
	if err != nil {
		return nil, err
	}

	backend, err := c.connected()
	if err != nil {
		return nil, err
	}
	code, err := backend.CodeAt(ctx, receipt.ContractAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check code at %s: %w", receipt.ContractAddress.Hex(), err)
	}
	if len(code) == 0 {
		return nil, bind.ErrNoCodeAfterDeploy
	}
	return receipt, nil
}

// WaitMined waits for a transaction to be mined successfully
func (c *Client) WaitMined(ctx context.Context, pending *models.PendingTx) (*models.Receipt, error) {
	return c.waitMined(ctx, pending)
}

func (c *Client) waitMined(ctx context.Context, pending *models.PendingTx) (*models.Receipt, error) {
	backend, err := c.connected()
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.Tx == nil {
		return nil, errors.New("no transaction to wait for")
	}

	if c.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConfirmTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, backend, pending.Tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", pending.Hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s: %w", pending.Hash.Hex(), domain.ErrTransactionReverted)
	}

	return toReceipt(receipt), nil
}

func (c *Client) connected() (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend == nil {
		return nil, errors.New("not connected to blockchain")
	}
	return c.backend, nil
}

func (c *Client) transactOpts(ctx context.Context, gasPrice *big.Int) *bind.TransactOpts {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts := *c.auth
	opts.Context = ctx
	opts.GasPrice = new(big.Int).Set(gasPrice)
	return &opts
}

func toReceipt(r *types.Receipt) *models.Receipt {
	out := &models.Receipt{
		TxHash:          r.TxHash,
		GasUsed:         r.GasUsed,
		ContractAddress: r.ContractAddress,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

// Ensure the adapter implements the interface
var _ usecase.ChainClient = (*Client)(nil)
