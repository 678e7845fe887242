package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/domain"
)

// ErrSessionNotFound is returned by a Store for an unknown session id.
var ErrSessionNotFound = errors.New("cart: session not found")

// Store persists one serialized cart per session id. Load and Delete of an
// unknown session return ErrSessionNotFound.
type Store interface {
	LoadCart(ctx context.Context, sessionID string) (Cart, error)
	SaveCart(ctx context.Context, sessionID string, c Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	OrderID string       `json:"orderId"`
	Order   OrderRequest `json:"order"`
}

// Sessions creates and opens cart sessions over a Store.
type Sessions struct {
	store     Store
	policy    ShippingPolicy
	submitter OrderSubmitter
	logger    *zap.Logger

	locks sync.Map // session id -> *sync.Mutex, only for sessions seen in the store
}

func NewSessions(store Store, policy ShippingPolicy, submitter OrderSubmitter, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if submitter == nil {
		submitter = NewLocalOrderSubmitter(logger)
	}
	return &Sessions{store: store, policy: policy, submitter: submitter, logger: logger}
}

// Policy returns the shipping policy used for totals.
func (s *Sessions) Policy() ShippingPolicy {
	return s.policy
}

// Start creates a session holding an empty cart.
func (s *Sessions) Start(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	if err := s.store.SaveCart(ctx, id, New()); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	s.logger.Debug("cart session started", zap.String("session_id", id))
	return s.Open(id), nil
}

// Open binds to an existing session id. The id is not checked until the
// first operation.
func (s *Sessions) Open(id string) *Session {
	return &Session{id: id, owner: s}
}

// lock takes the session's mutex. The returned func releases it and, when
// forget is set, drops the map entry so unknown ids leave nothing behind.
func (s *Sessions) lock(id string) func(forget bool) {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return func(forget bool) {
		if forget {
			s.locks.CompareAndDelete(id, mu)
		}
		mu.Unlock()
	}
}

// Session owns the cart of one shopper. Every mutation loads the stored cart,
// applies the ledger operation and saves the result.
type Session struct {
	id    string
	owner *Sessions
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Cart(ctx context.Context) (Cart, error) {
	return s.owner.store.LoadCart(ctx, s.id)
}

func (s *Session) Totals(ctx context.Context) (Totals, error) {
	c, err := s.Cart(ctx)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(c, s.owner.policy), nil
}

func (s *Session) mutate(ctx context.Context, fn func(Cart) (Cart, error)) (Cart, error) {
	unlock := s.owner.lock(s.id)

	c, err := s.owner.store.LoadCart(ctx, s.id)
	if err != nil {
		unlock(errors.Is(err, ErrSessionNotFound))
		return Cart{}, err
	}
	defer unlock(false)

	next, err := fn(c)
	if err != nil {
		return c, err
	}
	if err := s.owner.store.SaveCart(ctx, s.id, next); err != nil {
		return c, fmt.Errorf("save cart: %w", err)
	}
	return next, nil
}

func (s *Session) Add(ctx context.Context, product domain.Product, quantity int) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return AddItem(c, product, quantity)
	})
}

func (s *Session) UpdateQuantity(ctx context.Context, productID string, delta int) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return UpdateQuantity(c, productID, delta), nil
	})
}

func (s *Session) Remove(ctx context.Context, productID string) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return RemoveItem(c, productID), nil
	})
}

func (s *Session) Clear(ctx context.Context) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return Clear(c), nil
	})
}

// Checkout builds the order, hands it to the submitter and clears the cart.
// The cart is left untouched when submission fails.
func (s *Session) Checkout(ctx context.Context, customer Customer, paymentMethod string) (Receipt, error) {
	var receipt Receipt
	_, err := s.mutate(ctx, func(c Cart) (Cart, error) {
		order, err := BuildOrder(c, customer, paymentMethod, s.owner.policy)
		if err != nil {
			return c, err
		}
		orderID, err := s.owner.submitter.Submit(ctx, order)
		if err != nil {
			return c, err
		}
		receipt = Receipt{OrderID: orderID, Order: order}
		return New(), nil
	})
	if err != nil {
		return Receipt{}, err
	}
	s.owner.logger.Info("checkout completed",
		zap.String("session_id", s.id),
		zap.String("order_id", receipt.OrderID))
	return receipt, nil
}

// Close deletes the session's cart.
func (s *Session) Close(ctx context.Context) error {
	unlock := s.owner.lock(s.id)
	defer unlock(true)
	return s.owner.store.DeleteCart(ctx, s.id)
}
