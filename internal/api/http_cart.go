package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/domain"
)

type sessionKey struct{}

// requireSession rejects cart requests without a session header.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeader))
		if id == "" {
			respondWithError(w, http.StatusBadRequest, "Missing "+SessionHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func (h *HTTPHandler) session(r *http.Request) *cart.Session {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return h.sessions.Open(id)
}

// CartResponse is the cart as rendered to clients: lines re-checked against
// the current catalog, plus derived totals.
type CartResponse struct {
	SessionID string              `json:"sessionId"`
	Lines     []cart.ResolvedLine `json:"lines"`
	ItemCount int                 `json:"itemCount"`
	Totals    cart.Totals         `json:"totals"`
}

func (h *HTTPHandler) respondWithCart(w http.ResponseWriter, r *http.Request, code int, sessionID string, c cart.Cart) {
	var products []domain.Product
	if snap, err := h.catalog.Snapshot(r.Context()); err != nil {
		h.logger.Warn("rendering cart without catalog", zap.Error(err))
	} else {
		products = snap.Products
	}
	respondWithJSON(w, code, CartResponse{
		SessionID: sessionID,
		Lines:     cart.Resolve(c, products),
		ItemCount: cart.ItemCount(c),
		Totals:    cart.ComputeTotals(c, h.sessions.Policy()),
	})
}

func (h *HTTPHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Start(r.Context())
	if err != nil {
		h.logger.Error("failed to start cart session", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	w.Header().Set(SessionHeader, s.ID())
	respondWithJSON(w, http.StatusCreated, map[string]string{"sessionId": s.ID()})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	c, err := s.Cart(r.Context())
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to load cart")
		return
	}
	h.respondWithCart(w, r, http.StatusOK, s.ID(), c)
}

// AddCartItemInput defines the expected input for adding a product to the cart.
type AddCartItemInput struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=999"` // defaults to 1, capped at cart.MaxLineQuantity
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var input AddCartItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	product, err := catalog.Find(snap.Products, input.ProductID)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to add item")
		return
	}

	s := h.session(r)
	c, err := s.Add(r.Context(), product, quantity)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to add item")
		return
	}
	h.respondWithCart(w, r, http.StatusOK, s.ID(), c)
}

// UpdateCartItemInput defines the expected input for changing a line's quantity.
type UpdateCartItemInput struct {
	Delta *int `json:"delta" validate:"required"`
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var input UpdateCartItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	s := h.session(r)
	c, err := s.UpdateQuantity(r.Context(), chi.URLParam(r, "productId"), *input.Delta)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to update item")
		return
	}
	h.respondWithCart(w, r, http.StatusOK, s.ID(), c)
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	c, err := s.Remove(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to remove item")
		return
	}
	h.respondWithCart(w, r, http.StatusOK, s.ID(), c)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	c, err := s.Clear(r.Context())
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to clear cart")
		return
	}
	h.respondWithCart(w, r, http.StatusOK, s.ID(), c)
}

// CheckoutInput defines the expected input for checkout.
type CheckoutInput struct {
	Customer      cart.Customer `json:"customer"`
	PaymentMethod string        `json:"paymentMethod" validate:"omitempty,max=64"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	receipt, err := h.session(r).Checkout(r.Context(), input.Customer, input.PaymentMethod)
	if err != nil {
		if _, ok := httpStatusFor(err); !ok {
			h.logger.Error("order submission failed", zap.Error(err))
			respondWithError(w, http.StatusBadGateway, "Failed to submit order")
			return
		}
		h.respondWithStoreError(w, err, "Failed to submit order")
		return
	}
	respondWithJSON(w, http.StatusCreated, receipt)
}
