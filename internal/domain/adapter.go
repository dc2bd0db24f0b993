package domain

// AdapterDecision is the off-chain risk adapter's answer for an async trade
// request. A nil decision from the adapter client means "no answer yet".
type AdapterDecision struct {
	Allow   bool   `json:"allow"`
	Message string `json:"message"`
}
