package client

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is how long typing must pause before a search is sent
const DefaultDebounce = 300 * time.Millisecond

// SearchFunc looks customers up; Client.SearchCustomers is one
type SearchFunc func(ctx context.Context, q string) ([]Customer, error)

// SearchResult is the outcome of the most recent query
type SearchResult struct {
	Seq       uint64
	Query     string
	Customers []Customer
	Err       error
}

// CustomerSearch debounces queries and delivers only the latest answer.
// A new query cancels the pending one; answers to older queries are
// dropped even if they arrive after the newer one.
type CustomerSearch struct {
	search  SearchFunc
	delay   time.Duration
	results chan SearchResult

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewCustomerSearch creates a search; delay <= 0 uses DefaultDebounce
func NewCustomerSearch(search SearchFunc, delay time.Duration) *CustomerSearch {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &CustomerSearch{
		search:  search,
		delay:   delay,
		results: make(chan SearchResult, 1),
	}
}

// NewCustomerSearch creates a debounced search over this client
func (c *Client) NewCustomerSearch(delay time.Duration) *CustomerSearch {
	return NewCustomerSearch(c.SearchCustomers, delay)
}

// Results delivers at most one pending result, always the newest
func (s *CustomerSearch) Results() <-chan SearchResult {
	return s.results
}

// Query schedules a search for q. An empty query answers immediately with
// no customers.
func (s *CustomerSearch) Query(q string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.seq
	}

	s.seq++
	seq := s.seq
	s.stopLocked()

	if q == "" {
		s.deliverLocked(SearchResult{Seq: seq, Query: q, Customers: []Customer{}})
		return seq
	}
	s.timer = time.AfterFunc(s.delay, func() { s.run(seq, q) })
	return seq
}

func (s *CustomerSearch) run(seq uint64, q string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.mu.Lock()
	if seq != s.seq || s.closed {
		s.mu.Unlock()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	customers, err := s.search(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || s.closed {
		return
	}
	s.cancel = nil
	s.deliverLocked(SearchResult{Seq: seq, Query: q, Customers: customers, Err: err})
}

// stopLocked drops the pending timer and cancels the in-flight request
func (s *CustomerSearch) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// deliverLocked replaces any unread result with r
func (s *CustomerSearch) deliverLocked(r SearchResult) {
	select {
	case <-s.results:
	default:
	}
	s.results <- r
}

// Close cancels pending work and closes Results
func (s *CustomerSearch) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	close(s.results)
}
