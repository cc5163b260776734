package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

const (
	// breakerConsecutiveFailures is how many transport failures in a row
	// open the circuit.
	breakerConsecutiveFailures = 5
	// breakerOpenTimeout is how long the circuit stays open before a probe.
	breakerOpenTimeout = 10 * time.Second
)

// MyCoin is the REST client for the MyCoin backend. Transport failures
// feed a circuit breaker; backend-reported errors (4xx/5xx with a JSON
// error payload) do not, since those are healthy responses.
type MyCoin struct {
	logger  *logger.Logger
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewMyCoin creates a backend client for the given base URL.
func NewMyCoin(baseURL string, timeout time.Duration, rps int, log *logger.Logger) *MyCoin {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "mycoin-backend",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Backend circuit state changed ", "from ", from.String(), " to ", to.String())
		},
	})
	return &MyCoin{
		logger:  log,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		limiter: limiter,
	}
}

type httpResult struct {
	status int
	body   []byte
}

// errorEnvelope is the backend's failure payload shape.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// doJSON performs one request and decodes the response into out. Non-2xx
// statuses become *models.BackendError carrying the backend message.
func (m *MyCoin) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	m.limiter.Take()

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.breaker.Execute(func() (interface{}, error) {
		resp, err := m.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, err
		}
		return &httpResult{status: resp.StatusCode, body: buf.Bytes()}, nil
	})
	if err != nil {
		return fmt.Errorf("backend request %s %s failed: %w", method, path, err)
	}

	result := res.(*httpResult)
	if result.status >= 400 {
		var envelope errorEnvelope
		// Best effort: the body may be a DRF field-error map instead.
		_ = json.Unmarshal(result.body, &envelope)
		return &models.BackendError{StatusCode: result.status, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result.body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

type walletEnvelope struct {
	Success bool                      `json:"success"`
	Wallet  *models.WalletCredentials `json:"wallet"`
	Error   string                    `json:"error"`
}

func (e *walletEnvelope) credentials() (*models.WalletCredentials, error) {
	if e.Wallet == nil {
		return nil, fmt.Errorf("backend response has no wallet payload")
	}
	return e.Wallet, nil
}

// CreateWallet generates a new wallet server-side.
func (m *MyCoin) CreateWallet(ctx context.Context, password string) (*models.WalletCredentials, error) {
	var envelope walletEnvelope
	req := map[string]string{"password": password}
	if err := m.doJSON(ctx, http.MethodPost, "/wallet/create/", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.credentials()
}

// ImportWallet registers an existing private key or mnemonic.
func (m *MyCoin) ImportWallet(ctx context.Context, privateKey, mnemonic, password string) (*models.WalletCredentials, error) {
	req := map[string]string{"password": password}
	if privateKey != "" {
		req["private_key"] = privateKey
	}
	if mnemonic != "" {
		req["mnemonic"] = mnemonic
	}
	var envelope walletEnvelope
	if err := m.doJSON(ctx, http.MethodPost, "/wallet/import/", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.credentials()
}

// UnlockWallet validates the password and returns decrypted credentials.
func (m *MyCoin) UnlockWallet(ctx context.Context, address, password string) (*models.WalletCredentials, error) {
	var envelope walletEnvelope
	req := map[string]string{"password": password}
	path := fmt.Sprintf("/wallet/%s/unlock/", url.PathEscape(address))
	if err := m.doJSON(ctx, http.MethodPost, path, req, &envelope); err != nil {
		return nil, err
	}
	return envelope.credentials()
}

// AccessWithMnemonic unlocks the wallet the mnemonic derives to.
func (m *MyCoin) AccessWithMnemonic(ctx context.Context, mnemonic, password string) (*models.WalletCredentials, error) {
	var envelope walletEnvelope
	req := map[string]string{"mnemonic": mnemonic, "password": password}
	if err := m.doJSON(ctx, http.MethodPost, "/wallet/access-mnemonic/", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.credentials()
}

// GetBalance fetches the confirmed balance for an address.
func (m *MyCoin) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	var envelope struct {
		Success bool            `json:"success"`
		Balance decimal.Decimal `json:"balance"`
	}
	path := fmt.Sprintf("/wallet/%s/balance/", url.PathEscape(address))
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return decimal.Zero, err
	}
	return envelope.Balance, nil
}

// GetTransactions fetches one page of an address's transfer history.
func (m *MyCoin) GetTransactions(ctx context.Context, address string, page int) ([]*models.Transaction, error) {
	if page < 1 {
		page = 1
	}
	var envelope struct {
		Success      bool                  `json:"success"`
		Transactions []*models.Transaction `json:"transactions"`
	}
	path := fmt.Sprintf("/wallet/%s/transactions/?page=%d", url.PathEscape(address), page)
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Transactions, nil
}

// SendTransaction submits a transfer.
func (m *MyCoin) SendTransaction(ctx context.Context, req *models.SendTransactionRequest) error {
	var envelope errorEnvelope
	if err := m.doJSON(ctx, http.MethodPost, "/transaction/send/", req, &envelope); err != nil {
		return err
	}
	if !envelope.Success {
		// Rejection delivered on a 2xx status. It is still a rejection
		// and must not relay as success.
		return &models.BackendError{StatusCode: http.StatusBadRequest, Message: envelope.Error}
	}
	return nil
}

// GetNotifications lists notifications for an address, optionally
// filtered by status.
func (m *MyCoin) GetNotifications(ctx context.Context, address, status string) (*models.NotificationPage, error) {
	path := fmt.Sprintf("/notifications/%s/", url.PathEscape(address))
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var envelope struct {
		Success       bool                          `json:"success"`
		Notifications []*models.PendingNotification `json:"notifications"`
		Total         int                           `json:"total"`
		Pending       int                           `json:"pending"`
	}
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &models.NotificationPage{
		Notifications: envelope.Notifications,
		Total:         envelope.Total,
		Pending:       envelope.Pending,
	}, nil
}

// RespondNotification performs the accept/reject state transition.
func (m *MyCoin) RespondNotification(ctx context.Context, notificationID int64, action models.NotificationAction, privateKey string) error {
	req := map[string]interface{}{
		"notification_id": notificationID,
		"action":          string(action),
		"private_key":     privateKey,
	}
	var envelope errorEnvelope
	if err := m.doJSON(ctx, http.MethodPost, "/notification/respond/", req, &envelope); err != nil {
		return err
	}
	if !envelope.Success {
		return &models.BackendError{StatusCode: http.StatusBadRequest, Message: envelope.Error}
	}
	return nil
}

// GetStats fetches network statistics.
func (m *MyCoin) GetStats(ctx context.Context) (*models.NetworkStats, error) {
	var envelope struct {
		Success bool                 `json:"success"`
		Stats   *models.NetworkStats `json:"stats"`
	}
	if err := m.doJSON(ctx, http.MethodGet, "/stats/", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Stats == nil {
		return nil, fmt.Errorf("backend response has no stats payload")
	}
	return envelope.Stats, nil
}

// GetBlocks fetches one explorer page of the chain.
func (m *MyCoin) GetBlocks(ctx context.Context, page int) ([]*models.Block, error) {
	if page < 1 {
		page = 1
	}
	var envelope struct {
		Success bool            `json:"success"`
		Blocks  []*models.Block `json:"blocks"`
	}
	path := fmt.Sprintf("/blocks/?page=%d", page)
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Blocks, nil
}

// GetBlock fetches one block with its transactions.
func (m *MyCoin) GetBlock(ctx context.Context, index int64) (*models.Block, error) {
	var envelope struct {
		Success bool          `json:"success"`
		Block   *models.Block `json:"block"`
	}
	path := fmt.Sprintf("/block/%d/", index)
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Block == nil {
		return nil, fmt.Errorf("backend response has no block payload")
	}
	return envelope.Block, nil
}

// GetTransaction fetches one transaction by id.
func (m *MyCoin) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var envelope struct {
		Success     bool                `json:"success"`
		Transaction *models.Transaction `json:"transaction"`
	}
	path := fmt.Sprintf("/transaction/%s/", url.PathEscape(transactionID))
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Transaction == nil {
		return nil, fmt.Errorf("backend response has no transaction payload")
	}
	return envelope.Transaction, nil
}

// Search resolves a query to an address, transaction or block.
func (m *MyCoin) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	var envelope struct {
		Success bool                 `json:"success"`
		Results *models.SearchResult `json:"results"`
	}
	path := "/search/?q=" + url.QueryEscape(query)
	if err := m.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("backend response has no results payload")
	}
	return envelope.Results, nil
}
