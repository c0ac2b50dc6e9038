package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitResult(t *testing.T, s *CustomerSearch) SearchResult {
	t.Helper()
	select {
	case r, ok := <-s.Results():
		require.True(t, ok, "results closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no search result")
		return SearchResult{}
	}
}

func TestSearchDebouncesTyping(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	s := NewCustomerSearch(func(ctx context.Context, q string) ([]Customer, error) {
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		return []Customer{{Name: q}}, nil
	}, 20*time.Millisecond)
	defer s.Close()

	s.Query("j")
	s.Query("ju")
	last := s.Query("jua")

	r := waitResult(t, s)
	assert.Equal(t, last, r.Seq)
	assert.Equal(t, "jua", r.Query)
	require.Len(t, r.Customers, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"jua"}, queries)
}

func TestSearchDropsStaleAnswer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var staleCtxCancelled atomic.Bool

	s := NewCustomerSearch(func(ctx context.Context, q string) ([]Customer, error) {
		if q == "pe" {
			close(started)
			<-release
			staleCtxCancelled.Store(ctx.Err() != nil)
			return []Customer{{Name: "Pedro"}}, nil
		}
		return []Customer{{Name: "Pedro Almonte"}}, nil
	}, 5*time.Millisecond)
	defer s.Close()

	s.Query("pe")
	<-started
	latest := s.Query("pedro")

	r := waitResult(t, s)
	assert.Equal(t, latest, r.Seq)
	assert.Equal(t, "Pedro Almonte", r.Customers[0].Name)

	// the older request finishes last and must not replace the answer
	close(release)
	select {
	case r := <-s.Results():
		t.Fatalf("stale result delivered: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
	assert.True(t, staleCtxCancelled.Load())
}

func TestSearchEmptyQueryAnswersImmediately(t *testing.T) {
	var calls atomic.Int32
	s := NewCustomerSearch(func(ctx context.Context, q string) ([]Customer, error) {
		calls.Add(1)
		return nil, nil
	}, time.Hour)
	defer s.Close()

	s.Query("juan")
	s.Query("")

	r := waitResult(t, s)
	assert.Empty(t, r.Query)
	assert.Empty(t, r.Customers)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSearchCloseStopsDelivery(t *testing.T) {
	s := NewCustomerSearch(func(ctx context.Context, q string) ([]Customer, error) {
		return []Customer{{Name: q}}, nil
	}, 10*time.Millisecond)

	s.Query("maria")
	s.Close()
	s.Close()

	_, ok := <-s.Results()
	assert.False(t, ok)
	assert.NotPanics(t, func() { s.Query("otra") })
}
