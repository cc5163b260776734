package http_api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/validation"
)

// CreateWalletRequest represents the JSON body for wallet creation
type CreateWalletRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// AccessByAddressRequest represents the JSON body for address+password access
type AccessByAddressRequest struct {
	Address  string `json:"address" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AccessByKeyRequest represents the JSON body for private key access
type AccessByKeyRequest struct {
	Address    string `json:"address" binding:"required"`
	PrivateKey string `json:"private_key" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AccessByMnemonicRequest represents the JSON body for mnemonic access
type AccessByMnemonicRequest struct {
	Mnemonic string `json:"mnemonic" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SendRequest represents the JSON body for submitting a transfer
type SendRequest struct {
	ToAddress string          `json:"to_address" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Fee       decimal.Decimal `json:"fee"`
	Data      string          `json:"data"`
}

// RespondRequest represents the JSON body for resolving a notification
type RespondRequest struct {
	NotificationID int64  `json:"notification_id" binding:"required"`
	Action         string `json:"action" binding:"required"`
	PrivateKey     string `json:"private_key" binding:"required"`
}

// StakeRequest represents the JSON body for opening a stake
type StakeRequest struct {
	Address      string          `json:"address" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	DurationDays int             `json:"duration_days" binding:"required"`
}

// UnstakeRequest represents the JSON body for closing a stake
type UnstakeRequest struct {
	StakeID string `json:"stake_id" binding:"required"`
}

// SessionView is the session as exposed over the API: credentials are
// never included, only whether the session can sign.
type SessionView struct {
	Address      string              `json:"address"`
	PublicKey    string              `json:"public_key"`
	AccessMethod models.AccessMethod `json:"access_method"`
	AccessedAt   string              `json:"accessed_at"`
	CanSign      bool                `json:"can_sign"`
}

func sessionView(session *models.WalletSession) *SessionView {
	return &SessionView{
		Address:      session.Address,
		PublicKey:    session.PublicKey,
		AccessMethod: session.AccessMethod,
		AccessedAt:   session.AccessedAt.Format("2006-01-02T15:04:05Z07:00"),
		CanSign:      session.CanSign(),
	}
}

// accessError translates a failed access flow into a response. Local
// validation failures are 400s; backend verdicts keep their status and
// message so the user sees what the backend said.
func (s *HTTPServer) accessError(c *gin.Context, err error) {
	var be *models.BackendError
	if errors.As(err, &be) {
		c.JSON(be.StatusCode, gin.H{"success": false, "error": be.Message})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

// getSession is a handler for the /session endpoint.
func (s *HTTPServer) getSession(c *gin.Context) {
	session := s.claviger.Session()
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sessionView(session)})
}

// logout is a handler for the /session/logout endpoint.
func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.claviger.Logout(); err != nil {
		s.logger.Error("Failed to log out: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to clear session"})
		return
	}
	s.watcher.Refresh()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// createWallet is a handler for the /wallet/create endpoint. The
// response carries the full session once, mnemonic included, for the
// backup screen.
func (s *HTTPServer) createWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	session, err := s.claviger.Create(c.Request.Context(), req.Password, req.ConfirmPassword)
	if err != nil {
		s.accessError(c, err)
		return
	}
	s.watcher.Refresh()
	c.JSON(http.StatusCreated, gin.H{"success": true, "wallet": session})
}

// accessByAddress is a handler for the /wallet/access endpoint.
func (s *HTTPServer) accessByAddress(c *gin.Context) {
	var req AccessByAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	session, err := s.claviger.AccessByAddress(c.Request.Context(), req.Address, req.Password)
	if err != nil {
		s.accessError(c, err)
		return
	}
	s.watcher.Refresh()
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sessionView(session)})
}

// accessByPrivateKey is a handler for the /wallet/access-key endpoint.
func (s *HTTPServer) accessByPrivateKey(c *gin.Context) {
	var req AccessByKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	session, err := s.claviger.AccessByPrivateKey(c.Request.Context(), req.Address, req.PrivateKey, req.Password)
	if err != nil {
		s.accessError(c, err)
		return
	}
	s.watcher.Refresh()
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sessionView(session)})
}

// accessByMnemonic is a handler for the /wallet/access-mnemonic endpoint.
func (s *HTTPServer) accessByMnemonic(c *gin.Context) {
	var req AccessByMnemonicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	session, err := s.claviger.AccessByMnemonic(c.Request.Context(), req.Mnemonic, req.Password)
	if err != nil {
		s.accessError(c, err)
		return
	}
	s.watcher.Refresh()
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sessionView(session)})
}

// resolveAddress derives the wallet address a read endpoint should use
// from the query parameters and the session fallback chain.
func (s *HTTPServer) resolveAddress(c *gin.Context) string {
	return s.claviger.DeriveAddress(c.Query("address"), c.Query("path"))
}

// getBalance is a handler for the /wallet/balance endpoint.
func (s *HTTPServer) getBalance(c *gin.Context) {
	address := s.resolveAddress(c)
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrNoAddress.Error()})
		return
	}
	balance := s.claviger.GetBalance(c.Request.Context(), address)
	c.JSON(http.StatusOK, gin.H{"success": true, "address": address, "balance": balance})
}

// getTransactions is a handler for the /wallet/transactions endpoint.
func (s *HTTPServer) getTransactions(c *gin.Context) {
	address := s.resolveAddress(c)
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrNoAddress.Error()})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	txs := s.claviger.GetTransactions(c.Request.Context(), address, page)
	if txs == nil {
		txs = []*models.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "address": address, "transactions": txs})
}

// sendTransaction is a handler for the /transaction/send endpoint.
func (s *HTTPServer) sendTransaction(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	err := s.claviger.Send(c.Request.Context(), req.ToAddress, req.Amount, req.Fee, req.Data)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, models.ErrNoSession), errors.Is(err, models.ErrSessionLocked):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
	default:
		s.accessError(c, err)
	}
}

// listNotifications is a handler for the /notifications endpoint.
func (s *HTTPServer) listNotifications(c *gin.Context) {
	address := s.resolveAddress(c)
	notifications := s.claviger.ListPending(c.Request.Context(), address)
	if notifications == nil {
		notifications = []*models.PendingNotification{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"address":       address,
		"notifications": notifications,
		"pending":       len(notifications),
	})
}

// countNotifications is a handler for the /notifications/count endpoint.
// It serves the cached watcher count so the badge never blocks on the
// backend; an explicit address forces a live count for that address
// only, never a fallback to some other wallet.
func (s *HTTPServer) countNotifications(c *gin.Context) {
	if explicit := c.Query("address"); explicit != "" {
		if err := validation.ValidateAddress(explicit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		count := s.claviger.CountPending(c.Request.Context(), explicit)
		c.JSON(http.StatusOK, gin.H{"success": true, "pending": count})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pending": s.watcher.PendingCount()})
}

// respondNotification is a handler for the /notification/respond endpoint.
func (s *HTTPServer) respondNotification(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	err := s.claviger.Respond(c.Request.Context(), req.NotificationID, models.NotificationAction(req.Action), req.PrivateKey)
	if err != nil {
		s.accessError(c, err)
		return
	}
	s.watcher.Refresh()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// getStats is a handler for the /stats endpoint.
func (s *HTTPServer) getStats(c *gin.Context) {
	stats := s.claviger.GetStats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// search is a handler for the /search endpoint. A query superseded by a
// newer one answers 204: the caller should simply drop it.
func (s *HTTPServer) search(c *gin.Context) {
	query := c.Query("q")
	result, err := s.searcher.Submit(c.Request.Context(), query)
	switch {
	case errors.Is(err, models.ErrSuperseded):
		c.Status(http.StatusNoContent)
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No results found"})
	case err != nil:
		s.logger.Error("Search failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Search failed"})
	case result == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "results": nil})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "results": result})
	}
}

// listBlocks is a handler for the /blocks endpoint.
func (s *HTTPServer) listBlocks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	blocks := s.claviger.GetBlocks(c.Request.Context(), page)
	if blocks == nil {
		blocks = []*models.Block{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "blocks": blocks})
}

// getBlock is a handler for the /block/:index endpoint.
func (s *HTTPServer) getBlock(c *gin.Context) {
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid block index"})
		return
	}

	block, err := s.claviger.GetBlock(c.Request.Context(), index)
	switch {
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Block not found"})
	case err != nil:
		s.logger.Error("Failed to fetch block ", index, ": ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch block"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "block": block})
	}
}

// getTransaction is a handler for the /transaction/:id endpoint.
func (s *HTTPServer) getTransaction(c *gin.Context) {
	tx, err := s.claviger.GetTransaction(c.Request.Context(), c.Param("id"))
	switch {
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Transaction not found"})
	case err != nil:
		s.logger.Error("Failed to fetch transaction: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch transaction"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "transaction": tx})
	}
}

// listStakes is a handler for the /stakes endpoint.
func (s *HTTPServer) listStakes(c *gin.Context) {
	address := s.resolveAddress(c)
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrNoAddress.Error()})
		return
	}
	stakes, err := s.staking.List(address)
	if err != nil {
		s.logger.Error("Failed to list stakes: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to list stakes"})
		return
	}
	if stakes == nil {
		stakes = []*models.StakeRecord{}
	}

	projections := make(map[string]decimal.Decimal, len(stakes))
	for _, stake := range stakes {
		projections[stake.ID] = s.staking.Projection(stake)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stakes": stakes, "projections": projections})
}

// stake is a handler for the /stake endpoint.
func (s *HTTPServer) stake(c *gin.Context) {
	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	record, err := s.staking.Stake(req.Address, req.Amount, req.DurationDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "stake": record})
}

// unstake is a handler for the /stake/unstake endpoint.
func (s *HTTPServer) unstake(c *gin.Context) {
	var req UnstakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	record, err := s.staking.Unstake(req.StakeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stake": record})
}
