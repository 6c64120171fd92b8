package report

import (
	"container/list"
	"fmt"
	"sync"
)

// LRUStore keeps the most recent phase results in memory. When back is
// set, saves are forwarded to it and cache misses are loaded from it.
type LRUStore struct {
	mu    sync.Mutex
	cap   int
	back  Store
	order *list.List // front is most recently used
	items map[string]*list.Element
}

// NewLRUStore creates a store holding at most cap results. back may be nil.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		back:  back,
		order: list.New(),
		items: make(map[string]*list.Element, cap),
	}
}

// Save caches result under its run ID.
func (s *LRUStore) Save(result *PhaseResult) error {
	if result.ID == "" {
		return fmt.Errorf("saving %s result: missing run ID", result.Phase)
	}

	s.mu.Lock()
	s.put(result)
	s.mu.Unlock()

	if s.back == nil {
		return nil
	}
	return s.back.Save(result)
}

// Load returns the result for runID, consulting the backing store on a miss.
func (s *LRUStore) Load(runID string) (*PhaseResult, error) {
	s.mu.Lock()
	if el, ok := s.items[runID]; ok {
		s.order.MoveToFront(el)
		r := el.Value.(*PhaseResult)
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	if s.back == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	result, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.put(result)
	s.mu.Unlock()
	return result, nil
}

// Len returns the number of cached results.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// put inserts or refreshes result. Callers hold s.mu.
func (s *LRUStore) put(result *PhaseResult) {
	if el, ok := s.items[result.ID]; ok {
		el.Value = result
		s.order.MoveToFront(el)
		return
	}
	s.items[result.ID] = s.order.PushFront(result)
	for s.order.Len() > s.cap {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*PhaseResult).ID)
	}
}
