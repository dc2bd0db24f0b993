// Package chain provides the Ethereum access layer for the trading pipeline:
// typed contract handles for the closed set of contract roles the pipeline
// talks to, ABI packing and event decoding, and a wallet client for signing
// and submitting transactions.
package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Role identifies which deployed contract a handle points at. The trading
// pipeline only ever talks to these four.
type Role string

const (
	RoleSportsAMM     Role = "sports_amm"
	RoleFreeBetHolder Role = "free_bet_holder"
	RoleLiveProcessor Role = "live_processor"
	RoleSGPProcessor  Role = "sgp_processor"
)

// abiForRole maps each role to its ABI fragment.
var abiForRole = map[Role]string{
	RoleSportsAMM:     sportsAMMABI,
	RoleFreeBetHolder: freeBetHolderABI,
	RoleLiveProcessor: liveProcessorABI,
	RoleSGPProcessor:  sgpProcessorABI,
}

// TradeData is the Go shape of the sports AMM TradeData tuple. Field names
// line up with the ABI component names for reflection-based packing.
type TradeData struct {
	GameId   [32]byte
	SportId  uint16
	TypeId   uint16
	Maturity *big.Int
	Status   uint8
	Line     *big.Int
	PlayerId *big.Int
	Position uint8
	Odds     []*big.Int
}

// LiveTradeParams is the single-leg live trade request tuple.
type LiveTradeParams struct {
	GameId             string
	SportId            uint16
	TypeId             uint16
	Line               *big.Int
	Position           uint8
	BuyInAmount        *big.Int
	ExpectedQuote      *big.Int
	AdditionalSlippage *big.Int
	Referrer           common.Address
	Collateral         common.Address
}

// SGPTradeParams is the same-game-parlay trade request tuple.
type SGPTradeParams struct {
	TradeData          []TradeData
	BuyInAmount        *big.Int
	ExpectedQuote      *big.Int
	AdditionalSlippage *big.Int
	Referrer           common.Address
	Collateral         common.Address
}

// Contract is a typed handle for one deployed contract: its role, address,
// and parsed ABI. Handles are immutable after construction.
type Contract struct {
	role    Role
	address common.Address
	abi     abi.ABI
}

// NewContract parses the ABI for the given role and binds it to an address.
func NewContract(role Role, address common.Address) (*Contract, error) {
	raw, ok := abiForRole[role]
	if !ok {
		return nil, fmt.Errorf("chain: unknown contract role %q", role)
	}
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("chain: parse %s ABI: %w", role, err)
	}
	return &Contract{role: role, address: address, abi: parsed}, nil
}

// Role returns the contract's role tag.
func (c *Contract) Role() Role { return c.role }

// Address returns the deployed contract address.
func (c *Contract) Address() common.Address { return c.address }

// Pack encodes a method call with its arguments into calldata.
func (c *Contract) Pack(method string, args ...any) ([]byte, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("chain: pack %s.%s: %w", c.role, method, err)
	}
	return data, nil
}

// UnpackReturn decodes the return values of a method call.
func (c *Contract) UnpackReturn(method string, data []byte) ([]any, error) {
	out, err := c.abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("chain: unpack %s.%s return: %w", c.role, method, err)
	}
	return out, nil
}

// DecodeEvent matches a log against this contract's ABI and decodes its
// non-indexed fields. It returns the event name and the decoded fields, or an
// error when the log does not belong to this ABI (the common case when
// scanning a receipt containing unrelated events).
func (c *Contract) DecodeEvent(log types.Log) (string, map[string]any, error) {
	if len(log.Topics) == 0 {
		return "", nil, fmt.Errorf("chain: log has no topics")
	}
	event, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		return "", nil, fmt.Errorf("chain: %s: %w", c.role, err)
	}
	fields := make(map[string]any)
	if err := c.abi.UnpackIntoMap(fields, event.Name, log.Data); err != nil {
		return "", nil, fmt.Errorf("chain: decode %s.%s: %w", c.role, event.Name, err)
	}
	return event.Name, fields, nil
}

// GameIDString decodes a bytes32 game id into its string form, trimming the
// zero padding. Live trade requests carry the id as a plain string.
func GameIDString(gameID [32]byte) string {
	return string(bytesTrimRightZero(gameID[:]))
}

func bytesTrimRightZero(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
