package trading

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/chain"
	"github.com/ovbet/overbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustContract(t *testing.T, role chain.Role, addr string) *chain.Contract {
	t.Helper()
	c, err := chain.NewContract(role, common.HexToAddress(addr))
	if err != nil {
		t.Fatalf("NewContract(%s) failed: %v", role, err)
	}
	return c
}

func testContracts(t *testing.T) Contracts {
	t.Helper()
	return Contracts{
		SportsAMM:     mustContract(t, chain.RoleSportsAMM, "0x0000000000000000000000000000000000000a01"),
		FreeBetHolder: mustContract(t, chain.RoleFreeBetHolder, "0x0000000000000000000000000000000000000a02"),
		LiveProcessor: mustContract(t, chain.RoleLiveProcessor, "0x0000000000000000000000000000000000000a03"),
		SGPProcessor:  mustContract(t, chain.RoleSGPProcessor, "0x0000000000000000000000000000000000000a04"),
	}
}

func testLeg() domain.TradeLeg {
	return domain.TradeLeg{
		GameID:   common.HexToHash("0x3230323630383238"),
		SportID:  4,
		TypeID:   1,
		Maturity: big.NewInt(1_790_000_000),
		Status:   0,
		Line:     big.NewInt(-150),
		PlayerID: big.NewInt(0),
		Position: 1,
		Odds:     []*big.Int{big.NewInt(500_000_000_000_000_000), big.NewInt(500_000_000_000_000_000)},
	}
}

func baseRequest() *domain.TradeRequest {
	return &domain.TradeRequest{
		Legs:               []domain.TradeLeg{testLeg()},
		BuyInAmount:        big.NewInt(10_000_000),
		ExpectedQuote:      big.NewInt(500_000_000_000_000_000),
		AdditionalSlippage: big.NewInt(20_000_000_000_000_000),
		Collateral:         common.HexToAddress("0x0000000000000000000000000000000000000c01"),
	}
}

func TestBuildRouting(t *testing.T) {
	contracts := testContracts(t)
	b := NewBuilder(contracts, testLogger())

	tests := []struct {
		name         string
		mutate       func(r *domain.TradeRequest)
		wantRole     chain.Role
		wantMethod   string
		wantFallback FallbackKind
	}{
		{
			name:         "parlay",
			mutate:       func(r *domain.TradeRequest) {},
			wantRole:     chain.RoleSportsAMM,
			wantMethod:   "trade",
			wantFallback: FallbackTrade,
		},
		{
			name: "system bet",
			mutate: func(r *domain.TradeRequest) {
				r.IsSystemBet = true
				r.SystemBetDenominator = 2
			},
			wantRole:     chain.RoleSportsAMM,
			wantMethod:   "tradeSystemBet",
			wantFallback: FallbackSystemBet,
		},
		{
			name: "free-bet parlay",
			mutate: func(r *domain.TradeRequest) {
				r.IsFreeBet = true
			},
			wantRole:     chain.RoleFreeBetHolder,
			wantMethod:   "trade",
			wantFallback: FallbackFreeBet,
		},
		{
			name: "free-bet system bet",
			mutate: func(r *domain.TradeRequest) {
				r.IsFreeBet = true
				r.IsSystemBet = true
				r.SystemBetDenominator = 3
			},
			wantRole:     chain.RoleFreeBetHolder,
			wantMethod:   "tradeSystemBet",
			wantFallback: FallbackFreeBetSystemBet,
		},
		{
			name: "live",
			mutate: func(r *domain.TradeRequest) {
				r.IsLive = true
				r.MaxAllowedExecutionSec = 30
			},
			wantRole:     chain.RoleLiveProcessor,
			wantMethod:   "requestLiveTrade",
			wantFallback: FallbackRequestLiveTrade,
		},
		{
			name: "free-bet live",
			mutate: func(r *domain.TradeRequest) {
				r.IsLive = true
				r.IsFreeBet = true
				r.MaxAllowedExecutionSec = 30
			},
			wantRole:     chain.RoleFreeBetHolder,
			wantMethod:   "tradeLive",
			wantFallback: FallbackLiveTrade,
		},
		{
			name: "SGP",
			mutate: func(r *domain.TradeRequest) {
				r.IsSGP = true
				r.MaxAllowedExecutionSec = 30
			},
			wantRole:     chain.RoleSGPProcessor,
			wantMethod:   "requestSGPTrade",
			wantFallback: FallbackRequestSGPTrade,
		},
		{
			name: "free-bet SGP",
			mutate: func(r *domain.TradeRequest) {
				r.IsSGP = true
				r.IsFreeBet = true
				r.MaxAllowedExecutionSec = 30
			},
			wantRole:     chain.RoleFreeBetHolder,
			wantMethod:   "tradeSGP",
			wantFallback: FallbackSGPTrade,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(req)

			built, err := b.Build(req)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if built.Contract.Role() != tt.wantRole {
				t.Errorf("routed to %s, want %s", built.Contract.Role(), tt.wantRole)
			}
			if built.Method != tt.wantMethod {
				t.Errorf("method = %s, want %s", built.Method, tt.wantMethod)
			}
			if built.Fallback != tt.wantFallback {
				t.Errorf("fallback = %d, want %d", built.Fallback, tt.wantFallback)
			}
			if len(built.CallData) < 4 {
				t.Errorf("calldata too short: %d bytes", len(built.CallData))
			}
		})
	}
}

func TestBuildValue(t *testing.T) {
	b := NewBuilder(testContracts(t), testLogger())

	tests := []struct {
		name      string
		isEth     bool
		isFreeBet bool
		wantValue *big.Int
	}{
		{name: "erc20 collateral", isEth: false, isFreeBet: false, wantValue: big.NewInt(0)},
		{name: "eth collateral", isEth: true, isFreeBet: false, wantValue: big.NewInt(10_000_000)},
		{name: "eth free-bet carries no value", isEth: true, isFreeBet: true, wantValue: big.NewInt(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.IsEth = tt.isEth
			req.IsFreeBet = tt.isFreeBet

			built, err := b.Build(req)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if built.Value.Cmp(tt.wantValue) != 0 {
				t.Errorf("value = %s, want %s", built.Value, tt.wantValue)
			}
		})
	}
}

func TestBuildDefaultCollateral(t *testing.T) {
	contracts := testContracts(t)
	b := NewBuilder(contracts, testLogger())

	req := baseRequest()
	req.IsDefaultCollateral = true

	built, err := b.Build(req)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if built.Collateral != (common.Address{}) {
		t.Errorf("default collateral should encode as zero address, got %s", built.Collateral.Hex())
	}

	// The zero address must reach the packed call arguments, not just the
	// BuiltTransaction metadata.
	want, err := contracts.SportsAMM.Pack("trade",
		toTradeData(req.Legs), req.BuyInAmount, req.ExpectedQuote, req.AdditionalSlippage,
		common.Address{}, common.Address{}, req.IsEth)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if !bytes.Equal(built.CallData, want) {
		t.Errorf("calldata does not encode the zero collateral address:\n got %x\nwant %x", built.CallData, want)
	}
}

func TestBuildMissingContract(t *testing.T) {
	contracts := testContracts(t)
	contracts.FreeBetHolder = nil
	b := NewBuilder(contracts, testLogger())

	req := baseRequest()
	req.IsFreeBet = true

	_, err := b.Build(req)
	if !errors.Is(err, domain.ErrNoContract) {
		t.Errorf("expected ErrNoContract, got %v", err)
	}
}
