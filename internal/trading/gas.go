package trading

import (
	"context"
	"log/slog"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// GasEstimationBuffer scales a successful live estimate to absorb state
// drift between estimation and inclusion.
const GasEstimationBuffer = 1.2

// FallbackKind selects the static gas budget used when estimation is
// skipped or fails.
type FallbackKind int

const (
	FallbackTrade FallbackKind = iota
	FallbackSystemBet
	FallbackFreeBet
	FallbackFreeBetSystemBet
	FallbackLiveTrade
	FallbackSGPTrade
	FallbackRequestLiveTrade
	FallbackRequestSGPTrade
)

// fallbackGasLimits are calibrated above typical on-chain cost so an
// un-estimated transaction never under-provisions.
var fallbackGasLimits = map[FallbackKind]uint64{
	FallbackTrade:            1_800_000,
	FallbackSystemBet:        2_400_000,
	FallbackFreeBet:          2_100_000,
	FallbackFreeBetSystemBet: 2_700_000,
	FallbackLiveTrade:        2_100_000,
	FallbackSGPTrade:         2_400_000,
	FallbackRequestLiveTrade: 1_800_000,
	FallbackRequestSGPTrade:  2_100_000,
}

// FallbackGas returns the static budget for a kind.
func FallbackGas(kind FallbackKind) uint64 {
	if gas, ok := fallbackGasLimits[kind]; ok {
		return gas
	}
	return fallbackGasLimits[FallbackRequestLiveTrade]
}

// GasPlan is the value amount and gas unit budget attached to one
// submission attempt. Computed per attempt, never persisted.
type GasPlan struct {
	Value *big.Int
	Gas   uint64
}

// GasBackend is the slice of the RPC client the estimator needs.
type GasBackend interface {
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// EstimateOpts adjust how a gas plan is derived for one submission.
type EstimateOpts struct {
	// Override, when non-zero, is used verbatim without a network call.
	Override uint64
	// Skip forces the static fallback without a network call.
	Skip bool
	// Fallback selects the static budget used when estimation is skipped
	// or fails.
	Fallback FallbackKind
}

// Estimator derives gas plans for built transactions. Estimation failure is
// never fatal: the estimator logs and falls back to the static budget.
type Estimator struct {
	backend GasBackend
	from    common.Address
	logger  *slog.Logger
}

// NewEstimator creates an Estimator that estimates calls from the given
// sender address.
func NewEstimator(backend GasBackend, from common.Address, logger *slog.Logger) *Estimator {
	return &Estimator{
		backend: backend,
		from:    from,
		logger:  logger.With(slog.String("component", "gas_estimator")),
	}
}

// Plan returns the gas plan for a call. The order of precedence is:
// caller override, skip-to-fallback, live estimate scaled by the buffer,
// fallback on estimation error.
func (e *Estimator) Plan(ctx context.Context, to common.Address, data []byte, value *big.Int, opts EstimateOpts) GasPlan {
	if value == nil {
		value = big.NewInt(0)
	}

	if opts.Override > 0 {
		return GasPlan{Value: value, Gas: opts.Override}
	}

	if opts.Skip {
		e.logger.WarnContext(ctx, "gas estimation skipped, using fallback",
			slog.Uint64("fallback_gas", FallbackGas(opts.Fallback)),
		)
		return GasPlan{Value: value, Gas: FallbackGas(opts.Fallback)}
	}

	estimate, err := e.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  e.from,
		To:    &to,
		Data:  data,
		Value: value,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "gas estimation failed, using fallback",
			slog.Uint64("fallback_gas", FallbackGas(opts.Fallback)),
			slog.String("error", err.Error()),
		)
		return GasPlan{Value: value, Gas: FallbackGas(opts.Fallback)}
	}

	return GasPlan{
		Value: value,
		Gas:   uint64(math.Ceil(float64(estimate) * GasEstimationBuffer)),
	}
}
