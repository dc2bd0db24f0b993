package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ovbet/overbot/internal/domain"
)

// receiptPollInterval is how often WaitForReceipt re-checks for a mined
// transaction.
const receiptPollInterval = time.Second

// Wallet is the direct submission path: it signs contract calls with a local
// private key and sends them through the connected RPC endpoint. It also
// exposes the read and estimation primitives the trading pipeline needs.
type Wallet struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	logger  *slog.Logger
}

// NewWallet dials the RPC endpoint and derives the wallet address from the
// hex-encoded private key.
func NewWallet(ctx context.Context, rpcURL, privateKeyHex string, chainID int64, logger *slog.Logger) (*Wallet, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}

	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain: invalid private key: %w", err)
	}

	return &Wallet{
		client:  client,
		key:     key,
		address: ethcrypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		logger:  logger.With(slog.String("component", "wallet")),
	}, nil
}

// Address returns the wallet's account address.
func (w *Wallet) Address() common.Address { return w.address }

// EstimateGas asks the node for a gas estimate of the given call.
func (w *Wallet) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return w.client.EstimateGas(ctx, msg)
}

// CallContract executes a read-only contract call against the latest block.
func (w *Wallet) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return w.client.CallContract(ctx, msg, blockNumber)
}

// SendContractCall signs and broadcasts a contract write. Any failure (nonce
// fetch, signing, broadcast rejection) is returned unchanged to the caller;
// the wallet performs no retries.
func (w *Wallet) SendContractCall(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (domain.SubmissionResult, error) {
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("chain: pending nonce: %w", err)
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("chain: suggest gas price: %w", err)
	}

	if value == nil {
		value = big.NewInt(0)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("chain: %w: %v", domain.ErrSigningFailed, err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("chain: send transaction: %w", err)
	}

	w.logger.InfoContext(ctx, "transaction sent",
		slog.String("tx_hash", signed.Hash().Hex()),
		slog.String("to", to.Hex()),
		slog.Uint64("gas", gas),
	)

	return domain.SubmissionResult{TxHash: signed.Hash()}, nil
}

// WaitForReceipt blocks until the transaction is mined or the context is
// cancelled, polling once per second.
func (w *Wallet) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("chain: receipt %s: %w", txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("chain: waiting for receipt %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close tears down the underlying RPC connection.
func (w *Wallet) Close() {
	w.client.Close()
}
