package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TradeLeg is a single market position within a ticket. The field layout
// mirrors the sports AMM's TradeData tuple.
type TradeLeg struct {
	GameID   common.Hash `json:"gameId"`
	SportID  uint16      `json:"sportId"`
	TypeID   uint16      `json:"typeId"`
	Maturity *big.Int    `json:"maturity"`
	Status   uint8       `json:"status"`
	Line     *big.Int    `json:"line"`
	PlayerID *big.Int    `json:"playerId"`
	Position uint8       `json:"position"`
	Odds     []*big.Int  `json:"odds"`
}

// TradeRequest is an immutable description of an intended bet. It is created
// by the caller before submission and never mutated afterwards; the trading
// pipeline reads it but does not write to it.
type TradeRequest struct {
	Legs               []TradeLeg
	BuyInAmount        *big.Int
	ExpectedQuote      *big.Int
	AdditionalSlippage *big.Int

	// Referral is the referrer address; empty means no referral and is
	// replaced with the zero address on-chain.
	Referral string

	Collateral          common.Address
	IsDefaultCollateral bool
	IsEth               bool

	IsFreeBet            bool
	IsSystemBet          bool
	SystemBetDenominator uint8

	IsLive bool
	IsSGP  bool

	// IsRelayed routes submission through the smart-account relay instead of
	// the connected wallet.
	IsRelayed bool

	// SkipGasEstimation forces the static fallback gas budget without a
	// network estimate (wallets whose RPC cannot estimate reliably).
	SkipGasEstimation bool

	// GasLimitOverride, when non-zero, is used verbatim as the gas budget.
	GasLimitOverride uint64

	// MaxAllowedExecutionSec bounds the fulfillment wait for live/SGP trades.
	MaxAllowedExecutionSec int
}

// IsAsync reports whether the trade requires off-chain approval and on-chain
// fulfillment after submission. Synchronous trades settle in the submission
// transaction itself.
func (r *TradeRequest) IsAsync() bool {
	return r.IsLive || r.IsSGP
}

// Validate checks the request invariants that must hold before the trading
// pipeline will accept it.
func (r *TradeRequest) Validate() error {
	if len(r.Legs) == 0 {
		return fmt.Errorf("%w: at least one leg required", ErrInvalidTrade)
	}
	if r.BuyInAmount == nil || r.BuyInAmount.Sign() <= 0 {
		return fmt.Errorf("%w: buy-in amount must be positive", ErrInvalidTrade)
	}
	if r.ExpectedQuote == nil {
		return fmt.Errorf("%w: expected quote required", ErrInvalidTrade)
	}
	if r.AdditionalSlippage == nil {
		return fmt.Errorf("%w: additional slippage required", ErrInvalidTrade)
	}
	if r.IsLive && r.IsSGP {
		return fmt.Errorf("%w: trade cannot be both live and SGP", ErrInvalidTrade)
	}
	if r.IsLive && len(r.Legs) != 1 {
		return fmt.Errorf("%w: live trades carry exactly one leg, got %d", ErrInvalidTrade, len(r.Legs))
	}
	if r.IsSystemBet {
		if r.IsAsync() {
			return fmt.Errorf("%w: system bets are not supported for live/SGP trades", ErrInvalidTrade)
		}
		if r.SystemBetDenominator <= 1 {
			return fmt.Errorf("%w: system bet denominator must be > 1, got %d", ErrInvalidTrade, r.SystemBetDenominator)
		}
	}
	if r.IsAsync() && r.MaxAllowedExecutionSec <= 0 {
		return fmt.Errorf("%w: max allowed execution seconds must be positive for live/SGP trades", ErrInvalidTrade)
	}
	return nil
}

// SubmissionResult is the opaque transaction handle returned by a submission
// path. Ownership passes to the caller immediately; the pipeline only reads
// the hash back when it needs the receipt logs for async flows.
type SubmissionResult struct {
	TxHash common.Hash `json:"txHash"`
}
