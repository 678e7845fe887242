package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/store"
)

// SessionHeader carries the cart session id on cart routes.
const SessionHeader = "X-Session-ID"

const (
	defaultSimilarLimit = 4
	maxSimilarLimit     = 24
)

// CatalogProvider serves normalized catalog snapshots.
type CatalogProvider interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog      CatalogProvider
	sessions     *cart.Sessions
	productStore store.ProductStorer // nil disables catalog management routes
	logger       *zap.Logger
	validate     *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(cp CatalogProvider, sessions *cart.Sessions, ps store.ProductStorer, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		catalog:      cp,
		sessions:     sessions,
		productStore: ps,
		logger:       logger,
		validate:     validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			zap.L().Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

// respondWithStoreError writes the mapped status for err, falling back to 500
// with fallback as the message.
func (h *HTTPHandler) respondWithStoreError(w http.ResponseWriter, err error, fallback string) {
	code, ok := httpStatusFor(err)
	if !ok {
		h.logger.Error(fallback, zap.Error(err))
		respondWithError(w, code, fallback)
		return
	}
	if code >= http.StatusInternalServerError {
		h.logger.Warn(fallback, zap.Error(err))
	}
	respondWithError(w, code, errorMessage(err))
}

func (h *HTTPHandler) snapshot(w http.ResponseWriter, r *http.Request) (*catalog.Snapshot, bool) {
	snap, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to load catalog")
		return nil, false
	}
	return snap, true
}

// --- Storefront Handlers ---

// ProductListResponse is the body of GET /api/v1/products.
type ProductListResponse struct {
	Data     interface{} `json:"data"`
	Total    int         `json:"total"`
	Issues   int         `json:"issues"`
	LoadedAt time.Time   `json:"loadedAt"`
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state, err := catalog.ParseFilterState(q.Get("category"), q.Get("max_price"), q.Get("in_stock"), q.Get("sort"))
	if err != nil {
		h.respondWithStoreError(w, err, "Invalid filter")
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	products := catalog.Apply(snap.Products, state)
	respondWithJSON(w, http.StatusOK, ProductListResponse{
		Data:     products,
		Total:    len(products),
		Issues:   len(snap.Issues),
		LoadedAt: snap.LoadedAt,
	})
}

func (h *HTTPHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, catalog.BuildFacets(snap.Products))
}

func (h *HTTPHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	results := catalog.Search(snap.Products, r.URL.Query().Get("q"))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":  results,
		"total": len(results),
	})
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	product, err := catalog.Find(snap.Products, chi.URLParam(r, "productId"))
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to retrieve product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) GetSimilarProducts(w http.ResponseWriter, r *http.Request) {
	limit := defaultSimilarLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit: must be a positive integer")
			return
		}
		limit = min(n, maxSimilarLimit)
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	similar, err := catalog.Similar(snap.Products, chi.URLParam(r, "productId"), limit)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to retrieve similar products")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": similar})
}

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/facets", h.GetFacets)
		r.Get("/search", h.SearchProducts) // ?q=
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.Get("/similar", h.GetSimilarProducts) // ?limit=
		})
	})

	r.Post("/api/v1/sessions", h.StartSession)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddCartItem)
		r.Patch("/items/{productId}", h.UpdateCartItem)
		r.Delete("/items/{productId}", h.RemoveCartItem)
	})
	r.With(requireSession).Post("/api/v1/checkout", h.Checkout)

	if h.productStore != nil {
		r.Route("/api/v1/catalog/products", func(r chi.Router) {
			r.Post("/", h.CreateProductRecord)
			r.Get("/", h.ListProductRecords)
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", h.GetProductRecord)
				r.Put("/", h.UpdateProductRecord)
				r.Delete("/", h.DeleteProductRecord)
			})
		})
	}
}
