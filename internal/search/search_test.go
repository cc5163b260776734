package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

// searchBackend records queries that actually reached the backend.
type searchBackend struct {
	models.BackendService

	mu      sync.Mutex
	queries []string
}

func (b *searchBackend) Search(_ context.Context, query string) (*models.SearchResult, error) {
	b.mu.Lock()
	b.queries = append(b.queries, query)
	b.mu.Unlock()
	return &models.SearchResult{Type: "address", Address: query}, nil
}

func (b *searchBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func TestSubmitResolvesAfterDebounce(t *testing.T) {
	backend := &searchBackend{}
	s := NewSearcher(backend, 10*time.Millisecond, logger.NewNop())

	result, err := s.Submit(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "abc", result.Address)
	assert.Equal(t, []string{"abc"}, backend.seen())
}

func TestRapidTypingOnlyLastQueryFires(t *testing.T) {
	backend := &searchBackend{}
	s := NewSearcher(backend, 30*time.Millisecond, logger.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = s.Submit(context.Background(), "abc")
	}()

	// The refined query lands inside the first one's debounce window.
	time.Sleep(10 * time.Millisecond)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = s.Submit(context.Background(), "abcd")
	}()

	wg.Wait()
	assert.ErrorIs(t, errs[0], models.ErrSuperseded)
	assert.NoError(t, errs[1])
	assert.Equal(t, []string{"abcd"}, backend.seen(), "the stale query must never reach the backend")
}

func TestBlankQueryShortCircuits(t *testing.T) {
	backend := &searchBackend{}
	s := NewSearcher(backend, time.Millisecond, logger.NewNop())

	result, err := s.Submit(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, backend.seen())
}

func TestSubmitHonorsContextCancellation(t *testing.T) {
	backend := &searchBackend{}
	s := NewSearcher(backend, time.Hour, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Submit(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, backend.seen())
}
