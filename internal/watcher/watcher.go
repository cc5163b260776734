package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

// Watcher polls the pending-transfer inbox of the active wallet on a
// fixed interval and announces notifications it has not seen before.
// Poll failures degrade silently: the cached state is kept and the next
// tick tries again.
type Watcher struct {
	logger      *logger.Logger
	claviger    models.ClavigerI
	notificator models.NotificationService
	interval    time.Duration

	// refresh forces a poll outside the tick schedule.
	refresh chan struct{}

	mu      sync.RWMutex
	address string
	seen    map[int64]struct{}
	pending int
	primed  bool

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatcher(claviger models.ClavigerI, notificator models.NotificationService, interval time.Duration, logger *logger.Logger) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		logger:      logger,
		claviger:    claviger,
		notificator: notificator,
		interval:    interval,
		refresh:     make(chan struct{}, 1),
		seen:        make(map[int64]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the polling loop. The first poll runs immediately so
// the pending badge is populated without waiting a full interval.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.poll()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.poll()
			case <-w.refresh:
				w.poll()
			case <-w.ctx.Done():
				w.logger.Info("Notification watcher stopped")
				return
			}
		}
	}()
}

// Refresh requests an immediate poll, typically after the session
// changed. A refresh already in flight absorbs the request.
func (w *Watcher) Refresh() {
	select {
	case w.refresh <- struct{}{}:
	default:
	}
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() {
	w.cancel()
	w.wg.Wait()
}

// PendingCount returns the count observed by the most recent poll.
func (w *Watcher) PendingCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pending
}

// poll fetches the inbox for the derived address and announces records
// whose IDs were not present on the previous cycle. The very first poll
// after startup (or after a wallet switch) only primes the seen set, so
// a restart does not replay the whole backlog as "new".
func (w *Watcher) poll() {
	address := w.claviger.DeriveAddress("", "")

	w.mu.Lock()
	if address != w.address {
		// Wallet switched: the old seen set is meaningless, and the new
		// wallet's backlog must not replay as "new".
		w.address = address
		w.seen = map[int64]struct{}{}
		w.pending = 0
		w.primed = false
	}
	w.mu.Unlock()

	if address == "" {
		return
	}

	ctx, cancelTimeout := context.WithTimeout(w.ctx, w.interval)
	defer cancelTimeout()
	pending, err := w.claviger.FetchPending(ctx, address)
	if err != nil {
		// Outage, not an empty inbox: keep the previous seen set and
		// count so recovery does not replay known records as new.
		w.logger.Error("Pending poll failed, keeping previous state: ", err)
		return
	}

	w.mu.Lock()
	announce := make([]*models.PendingNotification, 0, len(pending))
	current := make(map[int64]struct{}, len(pending))
	for _, n := range pending {
		current[n.ID] = struct{}{}
		if _, ok := w.seen[n.ID]; !ok && w.primed {
			announce = append(announce, n)
		}
	}
	w.seen = current
	w.pending = len(pending)
	w.primed = true
	w.mu.Unlock()

	for _, n := range announce {
		w.logger.Info("New pending transfer ", n.ID, " for ", address)
		if w.notificator != nil {
			w.notificator.SendNotification(n)
		}
	}
}
