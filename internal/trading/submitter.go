package trading

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/domain"
)

// WriteBackend is the direct submission path through the connected wallet.
type WriteBackend interface {
	SendContractCall(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (domain.SubmissionResult, error)
}

// RelayRequest is the payload handed to the smart-account relay executor.
// Gas planning in this path is the relay's responsibility.
type RelayRequest struct {
	NetworkID  int64
	To         common.Address
	Method     string
	CallData   []byte
	Value      *big.Int
	Collateral common.Address
}

// RelayExecutor executes a transaction through a smart-contract wallet. Its
// failure modes are opaque to the pipeline.
type RelayExecutor interface {
	Execute(ctx context.Context, req RelayRequest) (domain.SubmissionResult, error)
}

// Submitter dispatches a built call through the wallet or the relay.
// Rejections (declined signature, RPC error, relay failure) propagate
// unchanged; no retry happens at this layer.
type Submitter struct {
	wallet    WriteBackend
	relay     RelayExecutor
	networkID int64
	logger    *slog.Logger
}

// NewSubmitter creates a Submitter. relay may be nil when smart-account
// execution is not configured.
func NewSubmitter(wallet WriteBackend, relay RelayExecutor, networkID int64, logger *slog.Logger) *Submitter {
	return &Submitter{
		wallet:    wallet,
		relay:     relay,
		networkID: networkID,
		logger:    logger.With(slog.String("component", "tx_submitter")),
	}
}

// Submit sends the built call. The gas plan applies only to the direct
// path; a relayed submission carries no plan.
func (s *Submitter) Submit(ctx context.Context, built BuiltTransaction, plan GasPlan, isRelayed bool) (domain.SubmissionResult, error) {
	if isRelayed {
		if s.relay == nil {
			return domain.SubmissionResult{}, fmt.Errorf("trading: relayed submission requested but no relay executor configured")
		}
		s.logger.InfoContext(ctx, "submitting via relay",
			slog.String("method", built.Method),
			slog.String("to", built.Contract.Address().Hex()),
		)
		return s.relay.Execute(ctx, RelayRequest{
			NetworkID:  s.networkID,
			To:         built.Contract.Address(),
			Method:     built.Method,
			CallData:   built.CallData,
			Value:      built.Value,
			Collateral: built.Collateral,
		})
	}

	s.logger.InfoContext(ctx, "submitting via wallet",
		slog.String("method", built.Method),
		slog.String("to", built.Contract.Address().Hex()),
		slog.Uint64("gas", plan.Gas),
	)
	return s.wallet.SendContractCall(ctx, built.Contract.Address(), built.CallData, plan.Value, plan.Gas)
}
