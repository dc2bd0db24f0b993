package trading

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/chain"
	"github.com/ovbet/overbot/internal/domain"
)

// QuoteResult is an on-chain price check for an intended bet.
type QuoteResult struct {
	TotalQuote string `json:"totalQuote"`
	Payout     string `json:"payout"`
}

// Quoter prices trade requests against the sports AMM without submitting
// anything.
type Quoter struct {
	amm *chain.AMMReader
}

// NewQuoter creates a Quoter over the given AMM reader.
func NewQuoter(amm *chain.AMMReader) *Quoter {
	return &Quoter{amm: amm}
}

// QuoteTrade returns the AMM's current quote for the request. The same
// collateral substitution applies as on submission: default collateral is
// sent as the zero address.
func (q *Quoter) QuoteTrade(ctx context.Context, req *domain.TradeRequest) (QuoteResult, error) {
	if err := req.Validate(); err != nil {
		return QuoteResult{}, err
	}

	collateral := req.Collateral
	if req.IsDefaultCollateral {
		collateral = common.Address{}
	}
	legs := toTradeData(req.Legs)

	var (
		quote chain.Quote
		err   error
	)
	if req.IsSystemBet {
		quote, err = q.amm.TradeQuoteSystem(ctx, legs, req.BuyInAmount, collateral, req.IsLive, req.SystemBetDenominator)
	} else {
		quote, err = q.amm.TradeQuote(ctx, legs, req.BuyInAmount, collateral, req.IsLive)
	}
	if err != nil {
		return QuoteResult{}, fmt.Errorf("trading: quote: %w", err)
	}

	return QuoteResult{
		TotalQuote: quote.TotalQuote.String(),
		Payout:     quote.Payout.String(),
	}, nil
}
