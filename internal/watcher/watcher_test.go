package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

// fakeClaviger serves a scripted inbox for a fixed address.
type fakeClaviger struct {
	models.ClavigerI

	mu      sync.Mutex
	address string
	inbox   []*models.PendingNotification
	err     error
	polls   int
}

func (f *fakeClaviger) DeriveAddress(_, _ string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.address
}

func (f *fakeClaviger) FetchPending(_ context.Context, _ string) ([]*models.PendingNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.err != nil {
		return nil, f.err
	}
	return f.inbox, nil
}

func (f *fakeClaviger) set(address string, inbox []*models.PendingNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.address = address
	f.inbox = inbox
	f.err = nil
}

func (f *fakeClaviger) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeClaviger) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

type recordingSink struct {
	mu   sync.Mutex
	sent []int64
}

func (r *recordingSink) SendNotification(n *models.PendingNotification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n.ID)
}

func (r *recordingSink) ids() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.sent...)
}

func pendingTransfer(id int64) *models.PendingNotification {
	return &models.PendingNotification{
		ID:     id,
		Amount: decimal.NewFromInt(id),
		Transaction: &models.Transaction{
			TransactionID: "tx",
			FromAddress:   "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		},
	}
}

func TestWatcherAnnouncesOnlyNewRecords(t *testing.T) {
	claviger := &fakeClaviger{}
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1), pendingTransfer(2)})
	sink := &recordingSink{}

	w := NewWatcher(claviger, sink, 10*time.Millisecond, logger.NewNop())
	w.Start()
	defer w.Stop()

	// The startup backlog primes the seen set without announcing.
	assert.Eventually(t, func() bool { return w.PendingCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, sink.ids())

	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1), pendingTransfer(2), pendingTransfer(3)})
	w.Refresh()

	assert.Eventually(t, func() bool {
		ids := sink.ids()
		return len(ids) == 1 && ids[0] == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, w.PendingCount())
}

func TestWatcherResolvedRecordsAreNotReannounced(t *testing.T) {
	claviger := &fakeClaviger{}
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1)})
	sink := &recordingSink{}

	w := NewWatcher(claviger, sink, 10*time.Millisecond, logger.NewNop())
	w.Start()
	defer w.Stop()

	assert.Eventually(t, func() bool { return w.PendingCount() == 1 }, time.Second, 5*time.Millisecond)

	// The record is accepted elsewhere, then a different one arrives.
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", nil)
	w.Refresh()
	assert.Eventually(t, func() bool { return w.PendingCount() == 0 }, time.Second, 5*time.Millisecond)

	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(2)})
	w.Refresh()
	assert.Eventually(t, func() bool {
		ids := sink.ids()
		return len(ids) == 1 && ids[0] == 2
	}, time.Second, 5*time.Millisecond)
}

func TestWatcherWalletSwitchDoesNotReplayBacklog(t *testing.T) {
	claviger := &fakeClaviger{}
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1)})
	sink := &recordingSink{}

	w := NewWatcher(claviger, sink, 10*time.Millisecond, logger.NewNop())
	w.Start()
	defer w.Stop()

	assert.Eventually(t, func() bool { return w.PendingCount() == 1 }, time.Second, 5*time.Millisecond)

	claviger.set("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", []*models.PendingNotification{pendingTransfer(10), pendingTransfer(11)})
	w.Refresh()

	assert.Eventually(t, func() bool { return w.PendingCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, sink.ids(), "the new wallet's existing backlog is primed, not announced")
}

func TestWatcherOutageKeepsStateAndSkipsReplay(t *testing.T) {
	claviger := &fakeClaviger{}
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1), pendingTransfer(2)})
	sink := &recordingSink{}

	w := NewWatcher(claviger, sink, 10*time.Millisecond, logger.NewNop())
	w.Start()
	defer w.Stop()

	assert.Eventually(t, func() bool { return w.PendingCount() == 2 }, time.Second, 5*time.Millisecond)

	// Backend goes down: the badge must keep the last good value.
	claviger.fail(&models.BackendError{StatusCode: 500, Message: "backend unavailable"})
	failedAt := claviger.pollCount()
	w.Refresh()
	assert.Eventually(t, func() bool { return claviger.pollCount() > failedAt }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, w.PendingCount())

	// Backend recovers with the same inbox: nothing is new, nothing is
	// announced again.
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1), pendingTransfer(2)})
	recoveredAt := claviger.pollCount()
	w.Refresh()
	assert.Eventually(t, func() bool { return claviger.pollCount() > recoveredAt }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, w.PendingCount())
	assert.Empty(t, sink.ids(), "known records must not replay after an outage")

	// A genuinely new record after recovery still announces.
	claviger.set("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", []*models.PendingNotification{pendingTransfer(1), pendingTransfer(2), pendingTransfer(3)})
	w.Refresh()
	assert.Eventually(t, func() bool {
		ids := sink.ids()
		return len(ids) == 1 && ids[0] == 3
	}, time.Second, 5*time.Millisecond)
}

func TestWatcherIdleWithoutWallet(t *testing.T) {
	claviger := &fakeClaviger{}
	sink := &recordingSink{}

	w := NewWatcher(claviger, sink, 10*time.Millisecond, logger.NewNop())
	w.Start()
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, w.PendingCount())
	assert.Empty(t, sink.ids())
}
