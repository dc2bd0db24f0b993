package trading

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type fakeGasBackend struct {
	estimate uint64
	err      error
	calls    int
}

func (f *fakeGasBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.estimate, nil
}

var testSender = common.HexToAddress("0x0000000000000000000000000000000000000b01")

func TestPlanOverride(t *testing.T) {
	backend := &fakeGasBackend{estimate: 1_000_000}
	e := NewEstimator(backend, testSender, testLogger())

	plan := e.Plan(context.Background(), common.Address{}, nil, nil, EstimateOpts{Override: 777_000})
	if plan.Gas != 777_000 {
		t.Errorf("gas = %d, want 777000", plan.Gas)
	}
	if backend.calls != 0 {
		t.Errorf("override must not hit the network, got %d calls", backend.calls)
	}
}

func TestPlanSkip(t *testing.T) {
	backend := &fakeGasBackend{estimate: 1_000_000}
	e := NewEstimator(backend, testSender, testLogger())

	plan := e.Plan(context.Background(), common.Address{}, nil, nil, EstimateOpts{Skip: true, Fallback: FallbackSystemBet})
	if plan.Gas != 2_400_000 {
		t.Errorf("gas = %d, want 2400000", plan.Gas)
	}
	if backend.calls != 0 {
		t.Errorf("skip must not hit the network, got %d calls", backend.calls)
	}
}

func TestPlanBuffersEstimate(t *testing.T) {
	backend := &fakeGasBackend{estimate: 1_000_000}
	e := NewEstimator(backend, testSender, testLogger())

	plan := e.Plan(context.Background(), common.Address{}, []byte{0x01}, big.NewInt(5), EstimateOpts{Fallback: FallbackTrade})
	if plan.Gas != 1_200_000 {
		t.Errorf("gas = %d, want 1200000 (estimate * 1.2)", plan.Gas)
	}
	if backend.calls != 1 {
		t.Errorf("expected exactly one estimate call, got %d", backend.calls)
	}
	if plan.Value.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("value = %s, want 5", plan.Value)
	}
}

func TestPlanFallbackOnError(t *testing.T) {
	backend := &fakeGasBackend{err: context.DeadlineExceeded}
	e := NewEstimator(backend, testSender, testLogger())

	plan := e.Plan(context.Background(), common.Address{}, nil, nil, EstimateOpts{Fallback: FallbackFreeBetSystemBet})
	if plan.Gas != 2_700_000 {
		t.Errorf("gas = %d, want fallback 2700000", plan.Gas)
	}
}

func TestPlanNilValue(t *testing.T) {
	backend := &fakeGasBackend{estimate: 100_000}
	e := NewEstimator(backend, testSender, testLogger())

	plan := e.Plan(context.Background(), common.Address{}, nil, nil, EstimateOpts{Skip: true, Fallback: FallbackTrade})
	if plan.Value == nil || plan.Value.Sign() != 0 {
		t.Errorf("nil value should normalize to zero, got %v", plan.Value)
	}
}

func TestFallbackGas(t *testing.T) {
	tests := []struct {
		name string
		kind FallbackKind
		want uint64
	}{
		{"trade", FallbackTrade, 1_800_000},
		{"system bet", FallbackSystemBet, 2_400_000},
		{"free-bet", FallbackFreeBet, 2_100_000},
		{"free-bet system bet", FallbackFreeBetSystemBet, 2_700_000},
		{"live trade", FallbackLiveTrade, 2_100_000},
		{"SGP trade", FallbackSGPTrade, 2_400_000},
		{"request live trade", FallbackRequestLiveTrade, 1_800_000},
		{"request SGP trade", FallbackRequestSGPTrade, 2_100_000},
		{"unknown kind defaults", FallbackKind(99), 1_800_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackGas(tt.kind); got != tt.want {
				t.Errorf("FallbackGas(%d) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}
