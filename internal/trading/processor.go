package trading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/ovbet/overbot/internal/chain"
	"github.com/ovbet/overbot/internal/domain"
)

// fulfillmentProgressMessage is re-emitted while an approved async trade
// waits for on-chain fulfillment.
const fulfillmentProgressMessage = "waiting for on-chain fulfillment"

// ReceiptBackend blocks until a submitted transaction is mined.
type ReceiptBackend interface {
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ProcessorDeps bundles the pipeline collaborators.
type ProcessorDeps struct {
	Builder   *Builder
	Estimator *Estimator
	Submitter *Submitter
	Receipts  ReceiptBackend
	Poller    *Poller
	Contracts Contracts
	Store     domain.TicketStore
	Sink      domain.StatusSink

	// LiveReader and SGPReader check the fulfillment flag on the matching
	// processor contract.
	LiveReader FulfillmentReader
	SGPReader  FulfillmentReader
}

// Processor runs the end-to-end trade pipeline: validate, build, plan gas,
// submit, wait for the receipt, and for async trades recover the request id
// and poll until fulfillment. One call handles one trade from start to
// terminal state.
type Processor struct {
	deps   ProcessorDeps
	logger *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(deps ProcessorDeps, logger *slog.Logger) *Processor {
	return &Processor{
		deps:   deps,
		logger: logger.With(slog.String("component", "trading_processor")),
	}
}

// ProcessTrade submits one trade and follows it to a terminal state. The
// returned ticket reflects the final status; the store and status sink are
// kept in step along the way. Submission rejections propagate unchanged and
// leave no ticket behind.
func (p *Processor) ProcessTrade(ctx context.Context, req *domain.TradeRequest) (domain.Ticket, error) {
	if err := req.Validate(); err != nil {
		return domain.Ticket{}, err
	}

	built, err := p.deps.Builder.Build(req)
	if err != nil {
		return domain.Ticket{}, err
	}

	result, err := p.submit(ctx, req, built)
	if err != nil {
		return domain.Ticket{}, err
	}

	ticket := p.newTicket(req, built, result)
	if err := p.deps.Store.Create(ctx, ticket); err != nil {
		// The transaction is already on the wire; bookkeeping failure must
		// not abort the trade.
		p.logger.ErrorContext(ctx, "ticket create failed",
			slog.String("ticket_id", ticket.ID),
			slog.String("error", err.Error()),
		)
	}

	p.logger.InfoContext(ctx, "trade submitted",
		slog.String("ticket_id", ticket.ID),
		slog.String("tx_hash", ticket.TxHash),
		slog.String("kind", ticket.Kind),
	)

	receipt, err := p.deps.Receipts.WaitForReceipt(ctx, result.TxHash)
	if err != nil {
		return p.fail(ctx, ticket, fmt.Errorf("trading: waiting for receipt: %w", err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return p.fail(ctx, ticket, fmt.Errorf("trading: transaction %s reverted", ticket.TxHash))
	}

	if !req.IsAsync() {
		ticket.Status = domain.TicketFulfilled
		p.updateStatus(ctx, &ticket, domain.TicketFulfilled, "")
		return ticket, nil
	}

	return p.followAsync(ctx, req, receipt, ticket)
}

// followAsync recovers the request id from the receipt and drives the
// fulfillment wait loop to a terminal ticket status.
func (p *Processor) followAsync(ctx context.Context, req *domain.TradeRequest, receipt *types.Receipt, ticket domain.Ticket) (domain.Ticket, error) {
	requestID, ok := ExtractRequestID(receipt.Logs, p.decodeContract(req))
	if !ok {
		return p.fail(ctx, ticket, fmt.Errorf("%w: tx %s", domain.ErrNoRequestID, ticket.TxHash))
	}

	ticket.RequestID = requestID.Hex()
	if err := p.deps.Store.SetRequestID(ctx, ticket.ID, ticket.RequestID); err != nil {
		p.logger.ErrorContext(ctx, "ticket request id update failed",
			slog.String("ticket_id", ticket.ID),
			slog.String("error", err.Error()),
		)
	}

	res := p.deps.Poller.Wait(ctx, p.reader(req), requestID, ticket.ID, req.MaxAllowedExecutionSec, fulfillmentProgressMessage)

	// The sink has already seen the terminal transition; mirror it on the
	// returned ticket.
	switch {
	case res.IsFulfilledTx:
		ticket.Status = domain.TicketFulfilled
	case res.IsAdapterError:
		ticket.Status = domain.TicketFailed
		ticket.ErrorReason = res.ErrorReason
	default:
		ticket.Status = domain.TicketTimedOut
	}
	return ticket, nil
}

func (p *Processor) submit(ctx context.Context, req *domain.TradeRequest, built BuiltTransaction) (domain.SubmissionResult, error) {
	if req.IsRelayed {
		return p.deps.Submitter.Submit(ctx, built, GasPlan{}, true)
	}

	plan := p.deps.Estimator.Plan(ctx, built.Contract.Address(), built.CallData, built.Value, EstimateOpts{
		Override: req.GasLimitOverride,
		Skip:     req.SkipGasEstimation,
		Fallback: built.Fallback,
	})
	return p.deps.Submitter.Submit(ctx, built, plan, false)
}

func (p *Processor) newTicket(req *domain.TradeRequest, built BuiltTransaction, result domain.SubmissionResult) domain.Ticket {
	now := time.Now().UTC()
	return domain.Ticket{
		ID:          uuid.NewString(),
		TxHash:      result.TxHash.Hex(),
		Kind:        domain.TicketKind(req),
		Status:      domain.TicketPending,
		BuyIn:       req.BuyInAmount.String(),
		Quote:       req.ExpectedQuote.String(),
		Collateral:  built.Collateral.Hex(),
		IsFreeBet:   req.IsFreeBet,
		IsSystemBet: req.IsSystemBet,
		IsLive:      req.IsLive,
		IsSGP:       req.IsSGP,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// decodeContract picks the contract whose ABI carries the request id event
// for this trade shape.
func (p *Processor) decodeContract(req *domain.TradeRequest) *chain.Contract {
	if req.IsFreeBet {
		return p.deps.Contracts.FreeBetHolder
	}
	if req.IsSGP {
		return p.deps.Contracts.SGPProcessor
	}
	return p.deps.Contracts.LiveProcessor
}

func (p *Processor) reader(req *domain.TradeRequest) FulfillmentReader {
	if req.IsSGP {
		return p.deps.SGPReader
	}
	return p.deps.LiveReader
}

func (p *Processor) fail(ctx context.Context, ticket domain.Ticket, err error) (domain.Ticket, error) {
	ticket.Status = domain.TicketFailed
	ticket.ErrorReason = err.Error()
	p.updateStatus(ctx, &ticket, domain.TicketFailed, err.Error())
	return ticket, err
}

func (p *Processor) updateStatus(ctx context.Context, ticket *domain.Ticket, status domain.TicketStatus, reason string) {
	if err := p.deps.Store.UpdateStatus(ctx, ticket.ID, status, reason); err != nil {
		p.logger.ErrorContext(ctx, "ticket status update failed",
			slog.String("ticket_id", ticket.ID),
			slog.String("error", err.Error()),
		)
	}
}
