package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletCredentials is what the backend hands back from the wallet
// creation, import, unlock and mnemonic-access endpoints. PrivateKey and
// Mnemonic are returned once, at the moment the flow supplies them.
type WalletCredentials struct {
	Address    string    `json:"address"`
	PublicKey  string    `json:"public_key"`
	PrivateKey string    `json:"private_key,omitempty"`
	Mnemonic   string    `json:"mnemonic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendTransactionRequest is the payload for the transfer endpoint.
type SendTransactionRequest struct {
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	PrivateKey  string          `json:"private_key"`
	Data        string          `json:"data,omitempty"`
}

// BackendService is the MyCoin REST backend the client depends on. All
// key generation, signing, mining and balance computation happens behind
// this interface; the client only renders state and issues requests.
type BackendService interface {
	// CreateWallet generates a new wallet server-side; the response is
	// the only time the mnemonic and private key are handed out.
	CreateWallet(ctx context.Context, password string) (*WalletCredentials, error)
	// ImportWallet registers an existing credential with the backend.
	// Exactly one of privateKey and mnemonic must be set.
	ImportWallet(ctx context.Context, privateKey, mnemonic, password string) (*WalletCredentials, error)
	// UnlockWallet validates the password against the stored encrypted
	// key and returns the decrypted credentials.
	UnlockWallet(ctx context.Context, address, password string) (*WalletCredentials, error)
	// AccessWithMnemonic resolves the wallet the mnemonic derives to and
	// unlocks it with the password.
	AccessWithMnemonic(ctx context.Context, mnemonic, password string) (*WalletCredentials, error)

	// GetBalance fetches the confirmed balance for an address.
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	// GetTransactions fetches a page of the address's transfer history.
	GetTransactions(ctx context.Context, address string, page int) ([]*Transaction, error)
	// SendTransaction submits a signed-on-the-backend transfer.
	SendTransaction(ctx context.Context, req *SendTransactionRequest) error

	// GetNotifications lists notifications for an address, optionally
	// filtered by status.
	GetNotifications(ctx context.Context, address, status string) (*NotificationPage, error)
	// RespondNotification performs the accept/reject state transition.
	RespondNotification(ctx context.Context, notificationID int64, action NotificationAction, privateKey string) error

	// GetStats fetches network statistics.
	GetStats(ctx context.Context) (*NetworkStats, error)
	// Search resolves a query to an address, transaction or block.
	Search(ctx context.Context, query string) (*SearchResult, error)

	// GetBlocks fetches a page of the chain, newest first.
	GetBlocks(ctx context.Context, page int) ([]*Block, error)
	// GetBlock fetches one block with its transactions.
	GetBlock(ctx context.Context, index int64) (*Block, error)
	// GetTransaction fetches one transaction by id.
	GetTransaction(ctx context.Context, transactionID string) (*Transaction, error)
}
