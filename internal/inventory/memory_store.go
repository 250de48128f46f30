package inventory

import (
	"context"
	"sync"
)

// MemoryStore implements Store with in-memory counters. Used by tests and
// local development without a database.
type MemoryStore struct {
	mu     sync.Mutex
	stocks map[int64]int32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stocks: make(map[int64]int32)}
}

// SetStock sets the stock level for a product (used for initialization).
func (s *MemoryStore) SetStock(productID int64, quantity int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[productID] = quantity
}

func (s *MemoryStore) Stock(productID int64) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stocks[productID]
}

func (s *MemoryStore) Reserve(_ context.Context, lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate all lines have sufficient stock
	for _, line := range lines {
		stock, exists := s.stocks[line.ProductID]
		if !exists {
			return ErrProductNotFound
		}
		if stock < line.Quantity {
			return ErrInsufficientStock
		}
	}

	// Second pass: decrement
	for _, line := range lines {
		s.stocks[line.ProductID] -= line.Quantity
	}
	return nil
}

func (s *MemoryStore) Return(_ context.Context, lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range lines {
		if _, exists := s.stocks[line.ProductID]; !exists {
			return ErrProductNotFound
		}
	}
	for _, line := range lines {
		s.stocks[line.ProductID] += line.Quantity
	}
	return nil
}
