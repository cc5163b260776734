package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// ClavigerI is the wallet session and confirmation service: the single
// owner of "who is the active wallet" and of every workflow that touches
// the session or the pending-transfer inbox.
type ClavigerI interface {
	// Session returns the active session, or nil when logged out.
	Session() *WalletSession
	// DeriveAddress resolves the relevant wallet address for a view,
	// checking in priority order: the explicit address, an address
	// embedded in the navigation path, the active session, and the
	// last-accessed hint. Empty when all sources are empty.
	DeriveAddress(explicit, navPath string) string

	// Create generates a new wallet. Password rules are checked locally
	// before any request; on success the session and last-accessed hint
	// are written and the credentials (mnemonic included) are returned
	// for one-time display.
	Create(ctx context.Context, password, confirm string) (*WalletSession, error)
	// AccessByAddress unlocks an existing wallet with address+password.
	AccessByAddress(ctx context.Context, address, password string) (*WalletSession, error)
	// AccessByPrivateKey attaches a user-supplied private key to the
	// wallet at the given address after the unlock endpoint accepts the
	// password.
	AccessByPrivateKey(ctx context.Context, address, privateKey, password string) (*WalletSession, error)
	// AccessByMnemonic recovers a wallet from its mnemonic; a mnemonic
	// the backend has never seen is imported on the fly.
	AccessByMnemonic(ctx context.Context, mnemonic, password string) (*WalletSession, error)
	// Logout clears the persisted session.
	Logout() error

	// GetBalance returns the address balance; read failures degrade to
	// zero and are logged, never surfaced.
	GetBalance(ctx context.Context, address string) decimal.Decimal
	// GetTransactions returns a history page; read failures degrade to
	// an empty page.
	GetTransactions(ctx context.Context, address string, page int) []*Transaction
	// Send submits a transfer signed with the active session's key.
	// Fails fast with ErrSessionLocked when the session cannot sign.
	Send(ctx context.Context, toAddress string, amount, fee decimal.Decimal, data string) error

	// ListPending returns pending notifications for the address in
	// backend order, malformed records dropped. An empty address
	// short-circuits to an empty result without a request.
	ListPending(ctx context.Context, address string) []*PendingNotification
	// FetchPending is the error-aware variant of ListPending for callers
	// that must tell an outage apart from an empty inbox (the watcher
	// keeps its previous state on error instead of treating the inbox as
	// drained).
	FetchPending(ctx context.Context, address string) ([]*PendingNotification, error)
	// CountPending returns the pending count for the badge.
	CountPending(ctx context.Context, address string) int
	// Respond accepts or rejects a notification with a freshly supplied
	// private key. The stored session key is never used implicitly.
	Respond(ctx context.Context, notificationID int64, action NotificationAction, privateKey string) error

	// GetStats returns network statistics; failures degrade to zeroes.
	GetStats(ctx context.Context) *NetworkStats
	// GetBlocks returns one explorer page; failures degrade to empty.
	GetBlocks(ctx context.Context, page int) []*Block
	// GetBlock returns one block; a missing block is an error, not a
	// degraded zero value.
	GetBlock(ctx context.Context, index int64) (*Block, error)
	// GetTransaction returns one transaction by id.
	GetTransaction(ctx context.Context, transactionID string) (*Transaction, error)
}
