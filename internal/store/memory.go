package store

import (
	"context"
	"slices"
	"sync"

	"storefront-service/internal/cart"
)

// MemoryCartStore keeps cart sessions in process memory. Carts are copied on
// the way in and out so callers never share line slices with the store.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]cart.Cart)}
}

func copyCart(c cart.Cart) cart.Cart {
	lines := slices.Clone(c.Lines)
	if lines == nil {
		lines = []cart.Line{}
	}
	return cart.Cart{Lines: lines}
}

func (s *MemoryCartStore) LoadCart(_ context.Context, sessionID string) (cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return cart.Cart{}, ErrCartNotFound
	}
	return copyCart(c), nil
}

func (s *MemoryCartStore) SaveCart(_ context.Context, sessionID string, c cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = copyCart(c)
	return nil
}

func (s *MemoryCartStore) DeleteCart(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[sessionID]; !ok {
		return ErrCartNotFound
	}
	delete(s.carts, sessionID)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemoryCartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
