package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// CallBackend is the read-only slice of the RPC client used by contract
// readers.
type CallBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ProcessorReader reads fulfillment state from a live or SGP trading
// processor contract.
type ProcessorReader struct {
	contract *Contract
	backend  CallBackend
}

// NewProcessorReader wraps a live/SGP processor handle with a read backend.
func NewProcessorReader(contract *Contract, backend CallBackend) *ProcessorReader {
	return &ProcessorReader{contract: contract, backend: backend}
}

// IsFulfillAllowed reads the on-chain fulfillment flag for a request id.
func (r *ProcessorReader) IsFulfillAllowed(ctx context.Context, requestID [32]byte) (bool, error) {
	out, err := r.call(ctx, "requestIdToFulfillAllowed", requestID)
	if err != nil {
		return false, err
	}
	flag, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("chain: requestIdToFulfillAllowed: unexpected return type %T", out[0])
	}
	return flag, nil
}

// MaxAllowedExecutionDelay reads the processor's execution budget in seconds.
func (r *ProcessorReader) MaxAllowedExecutionDelay(ctx context.Context) (int, error) {
	out, err := r.call(ctx, "maxAllowedExecutionDelay")
	if err != nil {
		return 0, err
	}
	delay, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("chain: maxAllowedExecutionDelay: unexpected return type %T", out[0])
	}
	return int(delay.Int64()), nil
}

func (r *ProcessorReader) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := r.contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	to := r.contract.Address()
	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: call %s.%s: %w", r.contract.Role(), method, err)
	}
	out, err := r.contract.UnpackReturn(method, raw)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("chain: call %s.%s: empty return", r.contract.Role(), method)
	}
	return out, nil
}

// Quote is the AMM's pricing answer for a prospective ticket.
type Quote struct {
	TotalQuote *big.Int
	Payout     *big.Int
}

// AMMReader reads quotes from the sports AMM contract.
type AMMReader struct {
	contract *Contract
	backend  CallBackend
}

// NewAMMReader wraps a sports AMM handle with a read backend.
func NewAMMReader(contract *Contract, backend CallBackend) *AMMReader {
	return &AMMReader{contract: contract, backend: backend}
}

// TradeQuote prices a regular parlay ticket.
func (r *AMMReader) TradeQuote(ctx context.Context, legs []TradeData, buyIn *big.Int, collateral common.Address, isLive bool) (Quote, error) {
	return r.quote(ctx, "tradeQuote", legs, buyIn, collateral, isLive)
}

// TradeQuoteSystem prices a system bet ticket.
func (r *AMMReader) TradeQuoteSystem(ctx context.Context, legs []TradeData, buyIn *big.Int, collateral common.Address, isLive bool, denominator uint8) (Quote, error) {
	return r.quote(ctx, "tradeQuoteSystem", legs, buyIn, collateral, isLive, denominator)
}

func (r *AMMReader) quote(ctx context.Context, method string, legs []TradeData, buyIn *big.Int, collateral common.Address, isLive bool, extra ...any) (Quote, error) {
	args := append([]any{legs, buyIn, collateral, isLive}, extra...)
	data, err := r.contract.Pack(method, args...)
	if err != nil {
		return Quote{}, err
	}
	to := r.contract.Address()
	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("chain: call %s.%s: %w", r.contract.Role(), method, err)
	}
	out, err := r.contract.UnpackReturn(method, raw)
	if err != nil {
		return Quote{}, err
	}
	if len(out) < 2 {
		return Quote{}, fmt.Errorf("chain: %s: expected 2 return values, got %d", method, len(out))
	}
	total, ok1 := out[0].(*big.Int)
	payout, ok2 := out[1].(*big.Int)
	if !ok1 || !ok2 {
		return Quote{}, fmt.Errorf("chain: %s: unexpected return types", method)
	}
	return Quote{TotalQuote: total, Payout: payout}, nil
}
