// Package trading implements the trade submission pipeline: building
// contract calls from trade requests, gas planning, submission through the
// wallet or the smart-account relay, request id recovery from receipt logs,
// and the fulfillment wait loop for live/SGP trades.
package trading

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/chain"
	"github.com/ovbet/overbot/internal/domain"
)

// Contracts is the closed set of contract handles the builder selects among.
// Any handle may be nil when the deployment lacks that role; Build fails
// only when a request actually needs a missing handle.
type Contracts struct {
	SportsAMM     *chain.Contract
	FreeBetHolder *chain.Contract
	LiveProcessor *chain.Contract
	SGPProcessor  *chain.Contract
}

// BuiltTransaction is a fully encoded contract call ready for gas planning
// and submission.
type BuiltTransaction struct {
	Contract   *chain.Contract
	Method     string
	CallData   []byte
	Value      *big.Int
	Collateral common.Address
	Fallback   FallbackKind
}

// Builder encodes trade requests into contract calls. It is pure over all
// valid requests; the only failure mode is a missing contract handle, which
// is a configuration defect.
type Builder struct {
	contracts Contracts
	logger    *slog.Logger
}

// NewBuilder creates a Builder over the given contract set.
func NewBuilder(contracts Contracts, logger *slog.Logger) *Builder {
	return &Builder{
		contracts: contracts,
		logger:    logger.With(slog.String("component", "tx_builder")),
	}
}

// Build selects the target contract and function for the request and encodes
// the call. Free-bet requests always route through the free-bet holder,
// never the sports AMM.
func (b *Builder) Build(req *domain.TradeRequest) (BuiltTransaction, error) {
	referrer := common.Address{}
	if req.Referral != "" {
		referrer = common.HexToAddress(req.Referral)
	}

	// Zero address signals "use protocol default collateral" to the contract.
	collateral := req.Collateral
	if req.IsDefaultCollateral {
		collateral = common.Address{}
	}

	value := big.NewInt(0)
	if req.IsEth && !req.IsFreeBet {
		value = req.BuyInAmount
	}

	switch {
	case req.IsLive:
		return b.buildLive(req, referrer, collateral, value)
	case req.IsSGP:
		return b.buildSGP(req, referrer, collateral, value)
	default:
		return b.buildParlay(req, referrer, collateral, value)
	}
}

func (b *Builder) buildParlay(req *domain.TradeRequest, referrer, collateral common.Address, value *big.Int) (BuiltTransaction, error) {
	legs := toTradeData(req.Legs)

	if req.IsFreeBet {
		target := b.contracts.FreeBetHolder
		if target == nil {
			return BuiltTransaction{}, b.missing("free-bet trade")
		}
		if req.IsSystemBet {
			return b.pack(target, "tradeSystemBet", FallbackFreeBetSystemBet, value, collateral,
				legs, req.BuyInAmount, req.ExpectedQuote, req.AdditionalSlippage, referrer, collateral, req.SystemBetDenominator)
		}
		return b.pack(target, "trade", FallbackFreeBet, value, collateral,
			legs, req.BuyInAmount, req.ExpectedQuote, req.AdditionalSlippage, referrer, collateral)
	}

	target := b.contracts.SportsAMM
	if target == nil {
		return BuiltTransaction{}, b.missing("trade")
	}
	if req.IsSystemBet {
		return b.pack(target, "tradeSystemBet", FallbackSystemBet, value, collateral,
			legs, req.BuyInAmount, req.ExpectedQuote, req.AdditionalSlippage, referrer, collateral, req.IsEth, req.SystemBetDenominator)
	}
	return b.pack(target, "trade", FallbackTrade, value, collateral,
		legs, req.BuyInAmount, req.ExpectedQuote, req.AdditionalSlippage, referrer, collateral, req.IsEth)
}

func (b *Builder) buildLive(req *domain.TradeRequest, referrer, collateral common.Address, value *big.Int) (BuiltTransaction, error) {
	leg := req.Legs[0]
	params := chain.LiveTradeParams{
		GameId:             chain.GameIDString(leg.GameID),
		SportId:            leg.SportID,
		TypeId:             leg.TypeID,
		Line:               leg.Line,
		Position:           leg.Position,
		BuyInAmount:        req.BuyInAmount,
		ExpectedQuote:      req.ExpectedQuote,
		AdditionalSlippage: req.AdditionalSlippage,
		Referrer:           referrer,
		Collateral:         collateral,
	}

	if req.IsFreeBet {
		target := b.contracts.FreeBetHolder
		if target == nil {
			return BuiltTransaction{}, b.missing("free-bet live trade")
		}
		return b.pack(target, "tradeLive", FallbackLiveTrade, value, collateral, params)
	}

	target := b.contracts.LiveProcessor
	if target == nil {
		return BuiltTransaction{}, b.missing("live trade")
	}
	return b.pack(target, "requestLiveTrade", FallbackRequestLiveTrade, value, collateral, params)
}

func (b *Builder) buildSGP(req *domain.TradeRequest, referrer, collateral common.Address, value *big.Int) (BuiltTransaction, error) {
	params := chain.SGPTradeParams{
		TradeData:          toTradeData(req.Legs),
		BuyInAmount:        req.BuyInAmount,
		ExpectedQuote:      req.ExpectedQuote,
		AdditionalSlippage: req.AdditionalSlippage,
		Referrer:           referrer,
		Collateral:         collateral,
	}

	if req.IsFreeBet {
		target := b.contracts.FreeBetHolder
		if target == nil {
			return BuiltTransaction{}, b.missing("free-bet SGP trade")
		}
		return b.pack(target, "tradeSGP", FallbackSGPTrade, value, collateral, params)
	}

	target := b.contracts.SGPProcessor
	if target == nil {
		return BuiltTransaction{}, b.missing("SGP trade")
	}
	return b.pack(target, "requestSGPTrade", FallbackRequestSGPTrade, value, collateral, params)
}

func (b *Builder) pack(target *chain.Contract, method string, fallback FallbackKind, value *big.Int, collateral common.Address, args ...any) (BuiltTransaction, error) {
	data, err := target.Pack(method, args...)
	if err != nil {
		return BuiltTransaction{}, err
	}
	return BuiltTransaction{
		Contract:   target,
		Method:     method,
		CallData:   data,
		Value:      value,
		Collateral: collateral,
		Fallback:   fallback,
	}, nil
}

func (b *Builder) missing(op string) error {
	b.logger.Error("no contract configured", slog.String("operation", op))
	return fmt.Errorf("%w: %s", domain.ErrNoContract, op)
}

// toTradeData converts domain legs into the ABI tuple shape.
func toTradeData(legs []domain.TradeLeg) []chain.TradeData {
	out := make([]chain.TradeData, 0, len(legs))
	for _, leg := range legs {
		out = append(out, chain.TradeData{
			GameId:   leg.GameID,
			SportId:  leg.SportID,
			TypeId:   leg.TypeID,
			Maturity: leg.Maturity,
			Status:   leg.Status,
			Line:     leg.Line,
			PlayerId: leg.PlayerID,
			Position: leg.Position,
			Odds:     leg.Odds,
		})
	}
	return out
}
