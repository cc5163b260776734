package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*MyCoin, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMyCoin(srv.URL, 5*time.Second, 0, logger.NewNop()), srv
}

func TestCreateWallet(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wallet/create/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "password123", body["password"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"wallet": map[string]interface{}{
				"address":     "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
				"public_key":  "pub",
				"private_key": "deadbeef",
				"mnemonic":    "a b c d e f g h i j k l",
			},
		})
	}))

	creds, err := client.CreateWallet(context.Background(), "password123")
	require.NoError(t, err)
	assert.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", creds.Address)
	assert.Equal(t, "a b c d e f g h i j k l", creds.Mnemonic)
	assert.Equal(t, "deadbeef", creds.PrivateKey)
}

func TestUnlockWalletWrongPassword(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallet/1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa/unlock/", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Invalid password",
		})
	}))

	creds, err := client.UnlockWallet(context.Background(), "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "wrong")
	require.Error(t, err)
	assert.Nil(t, creds)

	var be *models.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusUnauthorized, be.StatusCode)
	assert.Equal(t, "Invalid password", be.Message)
}

func TestGetBalanceDecodesDecimalString(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"balance": "123.45678901",
		})
	}))

	balance, err := client.GetBalance(context.Background(), "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	require.NoError(t, err)
	assert.Equal(t, "123.45678901", balance.String())
}

func TestGetNotifications(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications/1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa/", r.URL.Path)
		require.Equal(t, "pending", r.URL.Query().Get("status"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"notifications": []map[string]interface{}{
				{
					"id":     1,
					"amount": "5",
					"status": "pending",
					"transaction": map[string]interface{}{
						"transaction_id": "tx1",
						"from_address":   "1Sender",
						"to_address":     "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
						"amount":         "5",
						"fee":            "0.005",
						"status":         "pending_notification",
					},
				},
			},
			"total":   3,
			"pending": 1,
		})
	}))

	page, err := client.GetNotifications(context.Background(), "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "pending")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Pending)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, int64(1), page.Notifications[0].ID)
	require.NotNil(t, page.Notifications[0].Transaction)
	assert.Equal(t, "tx1", page.Notifications[0].Transaction.TransactionID)
}

func TestRespondNotification(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notification/respond/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))

	err := client.RespondNotification(context.Background(), 42, models.ActionAccept, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, float64(42), got["notification_id"])
	assert.Equal(t, "accept", got["action"])
	assert.Equal(t, "deadbeef", got["private_key"])
}

func TestSendTransactionBackendRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Transaction validation failed - Insufficient balance",
		})
	}))

	err := client.SendTransaction(context.Background(), &models.SendTransactionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient balance")
}

func TestWriteRejectionOnOkStatusIsNotSuccess(t *testing.T) {
	// Some backends deliver the rejection verdict on HTTP 200 with
	// success:false; it must surface as a client error, never a 2xx.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Notification already resolved",
		})
	}))

	err := client.RespondNotification(context.Background(), 42, models.ActionAccept, "deadbeef")
	require.Error(t, err)

	var be *models.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.StatusCode)
	assert.Equal(t, "Notification already resolved", be.Message)
}

func TestSearchNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "Not found"})
	}))

	_, err := client.Search(context.Background(), "nothing")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestGetBlockDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/block/7/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"block": map[string]interface{}{
				"index":         7,
				"hash":          "abc",
				"previous_hash": "def",
				"transactions": []map[string]interface{}{
					{"transaction_id": "tx1", "amount": "1"},
				},
			},
		})
	}))

	block, err := client.GetBlock(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), block.Index)
	assert.Equal(t, "abc", block.Hash)
	require.Len(t, block.Transactions, 1)
}

func TestTransportErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewMyCoin(url, time.Second, 0, logger.NewNop())
	_, err := client.GetStats(context.Background())
	require.Error(t, err)
	assert.False(t, models.IsBackendError(err))
}
