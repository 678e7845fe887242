package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-service/internal/domain"
	"storefront-service/internal/store"
)

// --- Catalog Management Handlers ---

// ProductRecordInput defines the expected input for creating or replacing a
// product record. ID is taken from the URL on updates.
type ProductRecordInput struct {
	ID               string           `json:"id" validate:"omitempty,max=64"`
	Name             string           `json:"name" validate:"required,max=255"`
	Category         *string          `json:"category" validate:"omitempty,max=255"`
	Description      *string          `json:"description" validate:"omitempty"`
	ShortDescription *string          `json:"shortDescription" validate:"omitempty,max=512"`
	LongDescription  *string          `json:"longDescription" validate:"omitempty"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice"`
	OnSale           bool             `json:"onSale"`
	InStock          *bool            `json:"inStock"` // Pointer to distinguish between not set and false
	Rating           *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Images           []string         `json:"images" validate:"omitempty,dive,required,max=2048"`
}

// record checks the fields validator cannot and builds the stored shape.
func (in ProductRecordInput) record(id string) (*domain.ProductRecord, error) {
	if in.Price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}
	if in.SalePrice != nil && in.SalePrice.IsNegative() {
		return nil, errors.New("salePrice must not be negative")
	}
	inStock := true // Default to true if not provided
	if in.InStock != nil {
		inStock = *in.InStock
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return &domain.ProductRecord{
		ID:               id,
		Name:             strings.TrimSpace(in.Name),
		Category:         in.Category,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		LongDescription:  in.LongDescription,
		Price:            in.Price,
		SalePrice:        in.SalePrice,
		OnSale:           in.OnSale,
		InStock:          inStock,
		Rating:           in.Rating,
		Images:           images,
	}, nil
}

func (h *HTTPHandler) decodeProductRecord(w http.ResponseWriter, r *http.Request) (ProductRecordInput, bool) {
	var input ProductRecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return input, false
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return input, false
	}
	return input, true
}

// refreshCatalog reloads the storefront snapshot after a catalog write.
func (h *HTTPHandler) refreshCatalog(r *http.Request) {
	if _, err := h.catalog.Refresh(r.Context()); err != nil {
		h.logger.Warn("catalog refresh after write failed", zap.Error(err))
	}
}

func (h *HTTPHandler) CreateProductRecord(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductRecord(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Validation failed: id is required")
		return
	}
	record, err := input.record(id)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.productStore.CreateProduct(r.Context(), record)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to create product")
		return
	}
	h.refreshCatalog(r)
	respondWithJSON(w, http.StatusCreated, created)
}

// PaginationInfo describes one page of a list response.
type PaginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

func (h *HTTPHandler) ListProductRecords(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()

	limit, err := strconv.Atoi(qParams.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page, err := strconv.Atoi(qParams.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	params := store.ListProductsParams{Limit: limit, Offset: (page - 1) * limit}

	if q := qParams.Get("q"); q != "" {
		params.SearchQuery = &q
	}
	if category := qParams.Get("category"); category != "" {
		params.Category = &category
	}
	for name, target := range map[string]**bool{"in_stock": &params.InStock, "on_sale": &params.OnSale} {
		if v := qParams.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid "+name+" value: must be true or false")
				return
			}
			*target = &b
		}
	}

	params.SortBy = qParams.Get("sort_by")
	params.SortOrder = qParams.Get("sort_order")
	switch params.SortBy {
	case "", "name", "price", "created_at", "updated_at":
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid sort_by field. Allowed: name, price, created_at, updated_at")
		return
	}
	if params.SortOrder != "" && strings.ToLower(params.SortOrder) != "asc" && strings.ToLower(params.SortOrder) != "desc" {
		respondWithError(w, http.StatusBadRequest, "Invalid sort_order value. Allowed: asc, desc")
		return
	}

	records, totalCount, err := h.productStore.ListProducts(r.Context(), params)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to retrieve products")
		return
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	respondWithJSON(w, http.StatusOK, struct {
		Data       []domain.ProductRecord `json:"data"`
		Pagination PaginationInfo         `json:"pagination"`
	}{
		Data:       records,
		Pagination: PaginationInfo{Page: page, Limit: limit, TotalItems: totalCount, TotalPages: totalPages},
	})
}

func (h *HTTPHandler) GetProductRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.productStore.GetProductByID(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to retrieve product")
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func (h *HTTPHandler) UpdateProductRecord(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	input, ok := h.decodeProductRecord(w, r)
	if !ok {
		return
	}
	if input.ID != "" && input.ID != productID {
		respondWithError(w, http.StatusBadRequest, "Body id does not match URL product id")
		return
	}
	record, err := input.record(productID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.productStore.UpdateProduct(r.Context(), record)
	if err != nil {
		h.respondWithStoreError(w, err, "Failed to update product")
		return
	}
	h.refreshCatalog(r)
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProductRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.productStore.DeleteProduct(r.Context(), chi.URLParam(r, "productId")); err != nil {
		h.respondWithStoreError(w, err, "Failed to delete product")
		return
	}
	h.refreshCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}
