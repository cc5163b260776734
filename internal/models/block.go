package models

import "time"

// Block is a chain block as the backend's explorer endpoints report it.
type Block struct {
	// Index is the block height.
	Index int64 `json:"index"`
	// Hash of the block.
	Hash string `json:"hash"`
	// PreviousHash links to the parent block.
	PreviousHash string `json:"previous_hash"`
	// Nonce found by the miner.
	Nonce int64 `json:"nonce"`
	// Miner is the address credited with the block reward.
	Miner string `json:"miner,omitempty"`
	// TransactionCount is set on listing pages.
	TransactionCount int `json:"transaction_count"`
	// Transactions is populated on the detail endpoint only.
	Transactions []*Transaction `json:"transactions,omitempty"`
	// Timestamp is when the block was mined.
	Timestamp time.Time `json:"timestamp"`
}
