package trading

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ovbet/overbot/internal/chain"
)

// requestEvents are the event names that carry the async request id
// assigned by a trading processor.
var requestEvents = map[string]bool{
	"FreeBetLiveTradeRequested": true,
	"FreeBetSGPTradeRequested":  true,
	"LiveTradeRequested":        true,
	"SGPTradeRequested":         true,
}

// ExtractRequestID scans receipt logs for the request id event, decoding
// each log against the given contract's ABI. Logs that fail to decode are
// skipped; most logs in a trade receipt belong to unrelated events emitted
// in the same transaction. The first matching event wins.
func ExtractRequestID(logs []*types.Log, decodeWith *chain.Contract) (common.Hash, bool) {
	for _, lg := range logs {
		if lg == nil {
			continue
		}
		name, fields, err := decodeWith.DecodeEvent(*lg)
		if err != nil {
			continue
		}
		if !requestEvents[name] {
			continue
		}
		raw, ok := fields["requestId"]
		if !ok {
			continue
		}
		id, ok := raw.([32]byte)
		if !ok {
			continue
		}
		return common.Hash(id), true
	}
	return common.Hash{}, false
}
