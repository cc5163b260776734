package models

import "github.com/shopspring/decimal"

// NetworkStats is the backend's /stats/ payload.
type NetworkStats struct {
	TotalBlocks         int64           `json:"total_blocks"`
	TotalTransactions   int64           `json:"total_transactions"`
	TotalSupply         decimal.Decimal `json:"total_supply"`
	CirculatingSupply   decimal.Decimal `json:"circulating_supply"`
	Difficulty          int             `json:"difficulty"`
	AvgBlockTime        float64         `json:"avg_block_time"`
	PendingTransactions int64           `json:"pending_transactions"`
	ActiveAddresses     int64           `json:"active_addresses"`
	MiningReward        decimal.Decimal `json:"mining_reward"`
	NetworkHashRate     float64         `json:"network_hash_rate"`
}

// SearchResult is the backend's universal search payload. Exactly one of
// the type-specific fields is populated, keyed by Type.
type SearchResult struct {
	// Type is address, transaction or block.
	Type string `json:"type"`
	// Address and Balance are set for address results.
	Address string `json:"address,omitempty"`
	Balance string `json:"balance,omitempty"`
	// TransactionID is set for transaction results.
	TransactionID string `json:"transaction_id,omitempty"`
	// BlockHash or BlockIndex is set for block results.
	BlockHash  string `json:"block_hash,omitempty"`
	BlockIndex *int64 `json:"block_index,omitempty"`
}
