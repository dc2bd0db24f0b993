package chain

// Minimal ABI fragments for the four contract roles. Only the methods and
// events the trading pipeline actually calls are declared; the deployed
// contracts carry more surface than this.

// tradeDataComponents is the sports AMM TradeData tuple shared by several
// method signatures.
const tradeDataComponents = `[
	{"name": "gameId", "type": "bytes32"},
	{"name": "sportId", "type": "uint16"},
	{"name": "typeId", "type": "uint16"},
	{"name": "maturity", "type": "uint256"},
	{"name": "status", "type": "uint8"},
	{"name": "line", "type": "int256"},
	{"name": "playerId", "type": "uint256"},
	{"name": "position", "type": "uint8"},
	{"name": "odds", "type": "uint256[]"}
]`

// liveTradeComponents is the single-leg live trade request tuple. The game id
// travels as a plain string here, decoded from its bytes32 form.
const liveTradeComponents = `[
	{"name": "gameId", "type": "string"},
	{"name": "sportId", "type": "uint16"},
	{"name": "typeId", "type": "uint16"},
	{"name": "line", "type": "int256"},
	{"name": "position", "type": "uint8"},
	{"name": "buyInAmount", "type": "uint256"},
	{"name": "expectedQuote", "type": "uint256"},
	{"name": "additionalSlippage", "type": "uint256"},
	{"name": "referrer", "type": "address"},
	{"name": "collateral", "type": "address"}
]`

// sgpTradeComponents is the same-game-parlay trade request tuple.
const sgpTradeComponents = `[
	{"name": "tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
	{"name": "buyInAmount", "type": "uint256"},
	{"name": "expectedQuote", "type": "uint256"},
	{"name": "additionalSlippage", "type": "uint256"},
	{"name": "referrer", "type": "address"},
	{"name": "collateral", "type": "address"}
]`

const sportsAMMABI = `[
	{"type": "function", "name": "trade", "stateMutability": "payable", "inputs": [
		{"name": "_tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
		{"name": "_buyInAmount", "type": "uint256"},
		{"name": "_expectedQuote", "type": "uint256"},
		{"name": "_additionalSlippage", "type": "uint256"},
		{"name": "_referrer", "type": "address"},
		{"name": "_collateral", "type": "address"},
		{"name": "_isEth", "type": "bool"}
	], "outputs": [{"name": "ticket", "type": "address"}]},
	{"type": "function", "name": "tradeSystemBet", "stateMutability": "payable", "inputs": [
		{"name": "_tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
		{"name": "_buyInAmount", "type": "uint256"},
		{"name": "_expectedQuote", "type": "uint256"},
		{"name": "_additionalSlippage", "type": "uint256"},
		{"name": "_referrer", "type": "address"},
		{"name": "_collateral", "type": "address"},
		{"name": "_isEth", "type": "bool"},
		{"name": "_systemBetDenominator", "type": "uint8"}
	], "outputs": [{"name": "ticket", "type": "address"}]},
	{"type": "function", "name": "tradeQuote", "stateMutability": "view", "inputs": [
		{"name": "_tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
		{"name": "_buyInAmount", "type": "uint256"},
		{"name": "_collateral", "type": "address"},
		{"name": "_isLive", "type": "bool"}
	], "outputs": [
		{"name": "totalQuote", "type": "uint256"},
		{"name": "payout", "type": "uint256"}
	]},
	{"type": "function", "name": "tradeQuoteSystem", "stateMutability": "view", "inputs": [
		{"name": "_tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
		{"name": "_buyInAmount", "type": "uint256"},
		{"name": "_collateral", "type": "address"},
		{"name": "_isLive", "type": "bool"},
		{"name": "_systemBetDenominator", "type": "uint8"}
	], "outputs": [
		{"name": "totalQuote", "type": "uint256"},
		{"name": "payout", "type": "uint256"}
	]}
]`

const freeBetHolderABI = `[
	{"type": "function", "name": "trade", "stateMutability": "nonpayable", "inputs": [
		{"name": "_tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
		{"name": "_buyInAmount", "type": "uint256"},
		{"name": "_expectedQuote", "type": "uint256"},
		{"name": "_additionalSlippage", "type": "uint256"},
		{"name": "_referrer", "type": "address"},
		{"name": "_collateral", "type": "address"}
	], "outputs": []},
	{"type": "function", "name": "tradeSystemBet", "stateMutability": "nonpayable", "inputs": [
		{"name": "_tradeData", "type": "tuple[]", "components": ` + tradeDataComponents + `},
		{"name": "_buyInAmount", "type": "uint256"},
		{"name": "_expectedQuote", "type": "uint256"},
		{"name": "_additionalSlippage", "type": "uint256"},
		{"name": "_referrer", "type": "address"},
		{"name": "_collateral", "type": "address"},
		{"name": "_systemBetDenominator", "type": "uint8"}
	], "outputs": []},
	{"type": "function", "name": "tradeLive", "stateMutability": "nonpayable", "inputs": [
		{"name": "_liveTradeData", "type": "tuple", "components": ` + liveTradeComponents + `}
	], "outputs": []},
	{"type": "function", "name": "tradeSGP", "stateMutability": "nonpayable", "inputs": [
		{"name": "_sgpTradeData", "type": "tuple", "components": ` + sgpTradeComponents + `}
	], "outputs": []},
	{"type": "event", "name": "FreeBetLiveTradeRequested", "inputs": [
		{"name": "user", "type": "address", "indexed": true},
		{"name": "buyInAmount", "type": "uint256", "indexed": false},
		{"name": "requestId", "type": "bytes32", "indexed": false}
	]},
	{"type": "event", "name": "FreeBetSGPTradeRequested", "inputs": [
		{"name": "user", "type": "address", "indexed": true},
		{"name": "buyInAmount", "type": "uint256", "indexed": false},
		{"name": "requestId", "type": "bytes32", "indexed": false}
	]}
]`

const liveProcessorABI = `[
	{"type": "function", "name": "requestLiveTrade", "stateMutability": "nonpayable", "inputs": [
		{"name": "_liveTradeData", "type": "tuple", "components": ` + liveTradeComponents + `}
	], "outputs": [{"name": "requestId", "type": "bytes32"}]},
	{"type": "function", "name": "requestIdToFulfillAllowed", "stateMutability": "view", "inputs": [
		{"name": "requestId", "type": "bytes32"}
	], "outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "maxAllowedExecutionDelay", "stateMutability": "view",
		"inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "event", "name": "LiveTradeRequested", "inputs": [
		{"name": "requester", "type": "address", "indexed": true},
		{"name": "buyInAmount", "type": "uint256", "indexed": false},
		{"name": "requestId", "type": "bytes32", "indexed": false}
	]}
]`

const sgpProcessorABI = `[
	{"type": "function", "name": "requestSGPTrade", "stateMutability": "nonpayable", "inputs": [
		{"name": "_sgpTradeData", "type": "tuple", "components": ` + sgpTradeComponents + `}
	], "outputs": [{"name": "requestId", "type": "bytes32"}]},
	{"type": "function", "name": "requestIdToFulfillAllowed", "stateMutability": "view", "inputs": [
		{"name": "requestId", "type": "bytes32"}
	], "outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "maxAllowedExecutionDelay", "stateMutability": "view",
		"inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "event", "name": "SGPTradeRequested", "inputs": [
		{"name": "requester", "type": "address", "indexed": true},
		{"name": "buyInAmount", "type": "uint256", "indexed": false},
		{"name": "requestId", "type": "bytes32", "indexed": false}
	]}
]`
