package claviger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoin-network/claviger/internal/config"
	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
	"github.com/mycoin-network/claviger/pkg/validation"
)

// Claviger owns the wallet session and every workflow that touches it:
// the four access flows, address resolution, transfers and the
// pending-transfer confirmation inbox. The session is cached in memory
// and persisted through the repository on every change.
type Claviger struct {
	logger *logger.Logger
	config *config.Config

	repo    models.Repository
	backend models.BackendService

	mu      sync.RWMutex
	session *models.WalletSession
}

// NewClaviger creates the service and loads the persisted session, if
// any, into the in-memory cache. A corrupt stored session surfaces here
// as a clean logged-out state.
func NewClaviger(
	repo models.Repository,
	backend models.BackendService,
	logger *logger.Logger,
	config *config.Config,
) (models.ClavigerI, error) {
	session, err := repo.GetSession()
	if err != nil {
		return nil, fmt.Errorf("failed to load stored session: %s", err)
	}
	if session != nil {
		logger.Info("Restored wallet session for ", session.Address)
	}
	return &Claviger{
		repo:    repo,
		backend: backend,
		logger:  logger,
		config:  config,
		session: session,
	}, nil
}

// Session returns the active session, or nil when logged out.
func (c *Claviger) Session() *models.WalletSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// DeriveAddress resolves the wallet address a view should show, in
// priority order: the explicitly requested address, an address embedded
// in the navigation path, the active session, and finally the
// last-accessed hint. Sources that do not hold a well-formed address are
// skipped, so a path like "/wallet/accessed" falls through to the
// session.
func (c *Claviger) DeriveAddress(explicit, navPath string) string {
	if validation.IsValidAddress(strings.TrimSpace(explicit)) {
		return strings.TrimSpace(explicit)
	}
	if addr := addressFromPath(navPath); addr != "" {
		return addr
	}
	if session := c.Session(); session != nil && session.Address != "" {
		return session.Address
	}
	last, err := c.repo.GetLastAccessed()
	if err != nil {
		c.logger.Error("Failed to read last-accessed hint: ", err)
		return ""
	}
	return last
}

// addressFromPath extracts an address segment from a navigation path of
// the form /wallet/<address>[/...]. Non-address segments are ignored.
func addressFromPath(navPath string) string {
	segments := strings.Split(strings.Trim(navPath, "/"), "/")
	for i, segment := range segments {
		if segment == "wallet" && i+1 < len(segments) {
			if candidate := strings.TrimSpace(segments[i+1]); validation.IsValidAddress(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// establishSession persists and caches a new session built from backend
// credentials. The previous session, if any, is fully replaced.
func (c *Claviger) establishSession(creds *models.WalletCredentials, method models.AccessMethod) (*models.WalletSession, error) {
	session := &models.WalletSession{
		Address:      creds.Address,
		PublicKey:    creds.PublicKey,
		PrivateKey:   creds.PrivateKey,
		Mnemonic:     creds.Mnemonic,
		AccessMethod: method,
		AccessedAt:   time.Now().UTC(),
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("backend returned unusable credentials: %s", err)
	}
	if err := c.repo.SetSession(session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %s", err)
	}
	if err := c.repo.SetLastAccessed(session.Address); err != nil {
		c.logger.Error("Failed to record last-accessed wallet: ", err)
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.logger.Info("Wallet session established for ", session.Address, " via ", string(method))
	return session, nil
}

// Create generates a brand new wallet. The password rules are checked
// locally before the backend is contacted, and the returned session
// carries the mnemonic for one-time display.
func (c *Claviger) Create(ctx context.Context, password, confirm string) (*models.WalletSession, error) {
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, fmt.Errorf("passwords do not match")
	}

	creds, err := c.backend.CreateWallet(ctx, password)
	if err != nil {
		return nil, err
	}
	return c.establishSession(creds, models.AccessMethodCreated)
}

// AccessByAddress unlocks an existing wallet with address+password. The
// backend decides whether to hand back the decrypted credentials; the
// session stores whatever it got.
func (c *Claviger) AccessByAddress(ctx context.Context, address, password string) (*models.WalletSession, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	creds, err := c.backend.UnlockWallet(ctx, strings.TrimSpace(address), password)
	if err != nil {
		return nil, err
	}
	return c.establishSession(creds, models.AccessMethodAddress)
}

// AccessByPrivateKey attaches a user-supplied private key to the wallet
// at the given address. The key format is checked locally; the backend
// verifies the password and that the key belongs to the address.
func (c *Claviger) AccessByPrivateKey(ctx context.Context, address, privateKey, password string) (*models.WalletSession, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrivateKey(privateKey); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	creds, err := c.backend.ImportWallet(ctx, strings.TrimSpace(privateKey), "", password)
	if err != nil {
		return nil, err
	}
	if creds.Address != strings.TrimSpace(address) {
		return nil, fmt.Errorf("private key does not belong to address %s", address)
	}
	if creds.PrivateKey == "" {
		creds.PrivateKey = strings.TrimSpace(privateKey)
	}
	return c.establishSession(creds, models.AccessMethodPrivateKey)
}

// AccessByMnemonic recovers a wallet from its recovery phrase. A
// mnemonic the backend has never seen is imported on the fly, so the
// flow always ends in a session when the phrase is well-formed.
func (c *Claviger) AccessByMnemonic(ctx context.Context, mnemonic, password string) (*models.WalletSession, error) {
	if err := validation.ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	mnemonic = strings.TrimSpace(mnemonic)

	creds, err := c.backend.AccessWithMnemonic(ctx, mnemonic, password)
	if models.IsNotFound(err) {
		c.logger.Info("Mnemonic not registered, importing as a new wallet")
		creds, err = c.backend.ImportWallet(ctx, "", mnemonic, password)
	}
	if err != nil {
		return nil, err
	}
	if creds.Mnemonic == "" {
		creds.Mnemonic = mnemonic
	}
	return c.establishSession(creds, models.AccessMethodMnemonic)
}

// Logout clears the persisted session. The last-accessed hint is kept
// so the access form can be prefilled next time.
func (c *Claviger) Logout() error {
	if err := c.repo.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %s", err)
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	c.logger.Info("Wallet session cleared")
	return nil
}

// GetBalance returns the address balance. Read failures are logged and
// degrade to zero so a flaky backend never breaks the overview.
func (c *Claviger) GetBalance(ctx context.Context, address string) decimal.Decimal {
	if address == "" {
		return decimal.Zero
	}
	balance, err := c.backend.GetBalance(ctx, address)
	if err != nil {
		c.logger.Error("Failed to fetch balance for ", address, ": ", err)
		return decimal.Zero
	}
	return balance
}

// GetTransactions returns one page of transfer history, empty on failure.
func (c *Claviger) GetTransactions(ctx context.Context, address string, page int) []*models.Transaction {
	if address == "" {
		return nil
	}
	txs, err := c.backend.GetTransactions(ctx, address, page)
	if err != nil {
		c.logger.Error("Failed to fetch transactions for ", address, ": ", err)
		return nil
	}
	return txs
}

// Send submits a transfer signed with the active session's private key.
func (c *Claviger) Send(ctx context.Context, toAddress string, amount, fee decimal.Decimal, data string) error {
	session := c.Session()
	if session == nil {
		return models.ErrNoSession
	}
	if !session.CanSign() {
		return models.ErrSessionLocked
	}
	if err := validation.ValidateAddress(toAddress); err != nil {
		return err
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return err
	}
	if fee.IsNegative() {
		return fmt.Errorf("fee cannot be negative")
	}

	req := &models.SendTransactionRequest{
		FromAddress: session.Address,
		ToAddress:   strings.TrimSpace(toAddress),
		Amount:      amount,
		Fee:         fee,
		PrivateKey:  session.PrivateKey,
		Data:        data,
	}
	if err := c.backend.SendTransaction(ctx, req); err != nil {
		return err
	}
	c.logger.Info("Submitted transfer of ", amount.String(), " from ", session.Address, " to ", toAddress)
	return nil
}

// FetchPending returns the pending notifications for an address in the
// order the backend sent them, malformed records dropped. An empty
// address short-circuits without a request. Backend failures are
// returned, not swallowed: the watcher must not mistake an outage for
// an empty inbox.
func (c *Claviger) FetchPending(ctx context.Context, address string) ([]*models.PendingNotification, error) {
	if address == "" {
		return nil, nil
	}
	page, err := c.backend.GetNotifications(ctx, address, models.NotificationStatusPending)
	if err != nil {
		return nil, err
	}

	pending := make([]*models.PendingNotification, 0, len(page.Notifications))
	for _, n := range page.Notifications {
		if !n.WellFormed() {
			c.logger.Warn("Dropping malformed notification record for ", address)
			continue
		}
		pending = append(pending, n)
	}
	return pending, nil
}

// ListPending is the degrading read over FetchPending: failures are
// logged and presented as an empty inbox.
func (c *Claviger) ListPending(ctx context.Context, address string) []*models.PendingNotification {
	pending, err := c.FetchPending(ctx, address)
	if err != nil {
		c.logger.Error("Failed to fetch notifications for ", address, ": ", err)
		return nil
	}
	return pending
}

// CountPending returns the number of pending notifications for the badge.
func (c *Claviger) CountPending(ctx context.Context, address string) int {
	if address == "" {
		return 0
	}
	page, err := c.backend.GetNotifications(ctx, address, models.NotificationStatusPending)
	if err != nil {
		c.logger.Error("Failed to count notifications for ", address, ": ", err)
		return 0
	}
	return page.Pending
}

// Respond accepts or rejects a pending notification. The private key is
// supplied fresh by the caller every time; the stored session key is
// never used implicitly for confirmation decisions.
func (c *Claviger) Respond(ctx context.Context, notificationID int64, action models.NotificationAction, privateKey string) error {
	if notificationID == 0 {
		return fmt.Errorf("notification id is required")
	}
	if !action.Valid() {
		return fmt.Errorf("invalid action %q: must be accept or reject", action)
	}
	if err := validation.ValidatePrivateKey(privateKey); err != nil {
		return err
	}

	if err := c.backend.RespondNotification(ctx, notificationID, action, strings.TrimSpace(privateKey)); err != nil {
		return err
	}
	c.logger.Info("Notification ", notificationID, " resolved with action ", string(action))
	return nil
}

// GetStats returns network statistics, zeroes on failure.
func (c *Claviger) GetStats(ctx context.Context) *models.NetworkStats {
	stats, err := c.backend.GetStats(ctx)
	if err != nil {
		c.logger.Error("Failed to fetch network stats: ", err)
		return &models.NetworkStats{}
	}
	return stats
}

// GetBlocks returns one explorer page of the chain, empty on failure.
func (c *Claviger) GetBlocks(ctx context.Context, page int) []*models.Block {
	blocks, err := c.backend.GetBlocks(ctx, page)
	if err != nil {
		c.logger.Error("Failed to fetch blocks: ", err)
		return nil
	}
	return blocks
}

// GetBlock returns one block detail. Unlike the dashboard reads, a
// detail page needs to distinguish "not found" from "empty", so the
// error is surfaced.
func (c *Claviger) GetBlock(ctx context.Context, index int64) (*models.Block, error) {
	return c.backend.GetBlock(ctx, index)
}

// GetTransaction returns one transaction detail.
func (c *Claviger) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("transaction id is required")
	}
	return c.backend.GetTransaction(ctx, transactionID)
}
