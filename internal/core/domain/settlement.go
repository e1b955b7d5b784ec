package domain

// SettlementResult is the outcome of a mint (or transfer) on the settlement
// ledger. The simulated fallback produces the same field set as a real
// on-chain result so downstream persistence is uniform; Simulated is the only
// discriminator.
type SettlementResult struct {
	TokenID     string `json:"tokenId"`
	TxHash      string `json:"transactionHash"`
	BlockNumber int64  `json:"blockNumber"`
	Simulated   bool   `json:"simulated"`
}
