package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

// Searcher debounces explorer search queries: a query is held for the
// debounce window and only sent to the backend if no newer query
// arrived in the meantime. Callers whose query was replaced get
// models.ErrSuperseded instead of a result.
type Searcher struct {
	logger  *logger.Logger
	backend models.BackendService
	delay   time.Duration

	mu         sync.Mutex
	generation uint64
}

func NewSearcher(backend models.BackendService, delay time.Duration, logger *logger.Logger) *Searcher {
	return &Searcher{logger: logger, backend: backend, delay: delay}
}

// Submit runs one debounced query and blocks until it resolves, is
// superseded, or ctx is cancelled. Whitespace-only queries resolve to
// (nil, nil) without a request.
func (s *Searcher) Submit(ctx context.Context, query string) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if s.superseded(generation) {
		s.logger.Debug("Search query superseded before dispatch: ", query)
		return nil, models.ErrSuperseded
	}

	result, err := s.backend.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	// A newer query may have arrived while this one was in flight; its
	// result must not overwrite the newer one on screen.
	if s.superseded(generation) {
		return nil, models.ErrSuperseded
	}
	return result, nil
}

func (s *Searcher) superseded(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation != s.generation
}
