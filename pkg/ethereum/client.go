package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/ethereum/contracts"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
)

// gasMarginPercent is added on top of the estimate for registerUser.
const gasMarginPercent = 20

// Client is the FaceAuth contract ledger.
type Client struct {
	config        *config.EthereumConfig
	commitTimeout time.Duration
	backend       Backend
	closer        func()
	privateKey    *ecdsa.PrivateKey
	address       common.Address
	logger        *zap.Logger

	contractAddress common.Address
	contractABI     *abi.ABI
	faceAuth        *contracts.FaceAuth
}

var _ ledger.Ledger = (*Client)(nil)

// NewClient dials the configured RPC endpoint and binds the FaceAuth contract.
func NewClient(cfg *config.LedgerConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.Ethereum.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	c, err := newClient(client, cfg, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.closer = client.Close

	if code, err := client.CodeAt(context.Background(), c.contractAddress, nil); err != nil {
		logger.Warn("Failed to check FaceAuth contract code", zap.Error(err))
	} else if len(code) == 0 {
		logger.Warn("No contract code at FaceAuth address", zap.String("contract", c.contractAddress.Hex()))
	}

	return c, nil
}

func newClient(backend Backend, cfg *config.LedgerConfig, logger *zap.Logger) (*Client, error) {
	privateKey, err := crypto.HexToECDSA(trimHexPrefix(cfg.Ethereum.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	if !common.IsHexAddress(cfg.Ethereum.ContractAddress) {
		return nil, fmt.Errorf("invalid FaceAuth contract address %q", cfg.Ethereum.ContractAddress)
	}
	contractAddress := common.HexToAddress(cfg.Ethereum.ContractAddress)

	faceAuth, err := contracts.NewFaceAuth(contractAddress, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to load FaceAuth contract: %w", err)
	}
	parsed, err := contracts.FaceAuthMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to parse FaceAuth ABI: %w", err)
	}

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", cfg.Ethereum.ChainID),
		zap.String("rpc_url", cfg.Ethereum.RPCURL),
		zap.String("faceauth_contract", contractAddress.Hex()),
		zap.String("sender_address", address.Hex()))

	return &Client{
		config:          &cfg.Ethereum,
		commitTimeout:   cfg.CommitTimeout,
		backend:         backend,
		privateKey:      privateKey,
		address:         address,
		logger:          logger,
		contractAddress: contractAddress,
		contractABI:     parsed,
		faceAuth:        faceAuth,
	}, nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// IsRegistered implements ledger.Ledger.
func (c *Client) IsRegistered(ctx context.Context, username string) (bool, error) {
	ok, err := c.faceAuth.IsRegistered(&bind.CallOpts{Context: ctx}, username)
	if err != nil {
		return false, fmt.Errorf("%w: isRegistered: %w", ledger.ErrUnavailable, err)
	}
	return ok, nil
}

// GetCredential implements ledger.Ledger.
func (c *Client) GetCredential(ctx context.Context, username string) (*identity.Identity, error) {
	out, err := c.faceAuth.GetUserHash(&bind.CallOpts{Context: ctx}, username)
	if err != nil {
		if reason, ok := revertReason(err); ok && ledger.ClassifyRevert(reason) == ledger.ReasonNotFound {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("%w: getUserHash: %w", ledger.ErrUnavailable, err)
	}
	return &identity.Identity{
		Username:            username,
		PasswordFingerprint: out.PasswordHash,
		FaceFingerprint:     out.FaceHash,
	}, nil
}

// RegisterCredential implements ledger.Ledger.
//
// Process:
//  1. Estimate gas; a revert during estimation is a rejection and nothing is sent
//  2. Sign and send registerUser
//  3. Poll for the receipt until CommitTimeout
//  4. On a failed receipt, replay the call at its block to recover the revert reason
func (c *Client) RegisterCredential(ctx context.Context, cred identity.Identity) (ledger.Receipt, error) {
	input, err := c.contractABI.Pack("registerUser", cred.Username, cred.PasswordFingerprint, cred.FaceFingerprint)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("failed to pack registerUser: %w", err)
	}
	msg := ethereum.CallMsg{From: c.address, To: &c.contractAddress, Data: input}

	gasLimit, err := c.estimateGas(ctx, msg)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			c.logger.Info("Registration rejected during gas estimation",
				zap.String("username", cred.Username),
				zap.String("reason", reason))
			return ledger.Rejected(reason), nil
		}
		return ledger.Receipt{}, fmt.Errorf("%w: %w", ledger.ErrUnavailable, err)
	}

	auth, err := c.GetTransactor(ctx)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %w", ledger.ErrUnavailable, err)
	}
	auth.GasLimit = gasLimit

	tx, err := c.faceAuth.RegisterUser(auth, cred.Username, cred.PasswordFingerprint, cred.FaceFingerprint)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return ledger.Rejected(reason), nil
		}
		return ledger.Receipt{}, fmt.Errorf("%w: failed to submit registerUser: %w", ledger.ErrUnavailable, err)
	}

	c.logger.Info("Registration transaction submitted",
		zap.String("username", cred.Username),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("gas_limit", gasLimit))

	receipt, err := c.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return ledger.Receipt{TxHash: tx.Hash().Hex()}, fmt.Errorf("%w: tx %s: %w", ledger.ErrTimeout, tx.Hash().Hex(), err)
	}

	out := ledger.Receipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		out.Committed = true
		return out, nil
	}

	reason := c.replayRevert(ctx, msg, receipt.BlockNumber)
	rejected := ledger.Rejected(reason)
	rejected.TxHash = out.TxHash
	rejected.BlockNumber = out.BlockNumber
	c.logger.Warn("Registration transaction reverted",
		zap.String("username", cred.Username),
		zap.String("tx_hash", out.TxHash),
		zap.String("reason", reason))
	return rejected, nil
}

// UserCount implements ledger.Counter.
func (c *Client) UserCount(ctx context.Context) (uint64, error) {
	n, err := c.faceAuth.GetUserCount(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, fmt.Errorf("%w: getUserCount: %w", ledger.ErrUnavailable, err)
	}
	return n.Uint64(), nil
}

// Usernames implements ledger.Enumerator by scanning UserRegistered logs
// from the configured start block.
func (c *Client) Usernames(ctx context.Context) ([]string, error) {
	iter, err := c.faceAuth.FilterUserRegistered(&bind.FilterOpts{Start: c.config.StartBlock, Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("%w: filter UserRegistered: %w", ledger.ErrUnavailable, err)
	}
	defer iter.Close()

	seen := make(map[string]struct{})
	for iter.Next() {
		seen[iter.Event.Username] = struct{}{}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate UserRegistered logs: %w", err)
	}

	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// Healthy reports whether the RPC endpoint answers.
func (c *Client) Healthy(ctx context.Context) error {
	if _, err := c.backend.HeaderByNumber(ctx, nil); err != nil {
		return fmt.Errorf("ethereum rpc unhealthy: %w", err)
	}
	return nil
}

// GetTransactor returns a transaction signer
func (c *Client) GetTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, big.NewInt(c.config.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	nonce, err := c.backend.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	if c.config.MaxGasPrice != "" {
		maxGasPrice, ok := new(big.Int).SetString(c.config.MaxGasPrice, 10)
		if !ok {
			return nil, fmt.Errorf("invalid max_gas_price %q", c.config.MaxGasPrice)
		}
		if gasPrice.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", maxGasPrice.String()))
			gasPrice = maxGasPrice
		}
	}
	auth.GasPrice = gasPrice

	return auth, nil
}

func (c *Client) estimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	est, err := c.backend.EstimateGas(ctx, msg)
	if err != nil {
		if _, reverted := revertReason(err); reverted || ctx.Err() != nil {
			return 0, err
		}
		c.logger.Warn("Gas estimation failed, using configured limit",
			zap.Uint64("gas_limit", c.config.GasLimit),
			zap.Error(err))
		return c.config.GasLimit, nil
	}
	return est + est*gasMarginPercent/100, nil
}

// waitForReceipt polls until the receipt is available, the commit timeout
// elapses or ctx is done.
func (c *Client) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.commitTimeout)
	defer cancel()

	ticker := time.NewTicker(c.config.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(waitCtx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil {
			c.logger.Debug("Receipt lookup failed, retrying", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-waitCtx.Done():
			return nil, waitCtx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) replayRevert(ctx context.Context, msg ethereum.CallMsg, block *big.Int) string {
	_, err := c.backend.CallContract(ctx, msg, block)
	if reason, ok := revertReason(err); ok {
		return reason
	}
	return "transaction reverted"
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
