package cart

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/domain"
)

var validCustomer = Customer{
	Name:    "Asha Rao",
	Email:   "asha@example.com",
	Phone:   "9876543210",
	Street:  "12 MG Road",
	City:    "Bengaluru",
	ZipCode: "560001",
	State:   "Karnataka",
	Country: "India",
}

func TestBuildOrder(t *testing.T) {
	c := mustAdd(t, New(), testProduct("1", 900, true), 2)
	c = mustAdd(t, c, testProduct("2", 1530, true), 1)

	order, err := BuildOrder(c, validCustomer, "", DefaultShippingPolicy())
	require.NoError(t, err)

	assert.Equal(t, DefaultPaymentMethod, order.PaymentMethod)
	assert.Equal(t, "3580", order.TotalAmount.String())
	require.Len(t, order.Products, 2)
	assert.Equal(t, OrderLine{
		ProductID: "1",
		Name:      "Product 1",
		Price:     c.Lines[0].UnitPrice,
		Quantity:  2,
		Image:     "/images/1.jpg",
	}, order.Products[0])
}

func TestBuildOrder_Rejections(t *testing.T) {
	filled := mustAdd(t, New(), testProduct("1", 900, true), 1)

	tests := []struct {
		name     string
		cart     Cart
		customer Customer
		kind     domain.Kind
	}{
		{"empty cart", New(), validCustomer, domain.KindInvalidOperation},
		{"missing name", filled, Customer{Email: "asha@example.com"}, domain.KindValidation},
		{"blank name", filled, Customer{Name: "   ", Email: "asha@example.com"}, domain.KindValidation},
		{"bad email", filled, Customer{Name: "Asha", Email: "not-an-email"}, domain.KindValidation},
		{"zip code too long", filled, Customer{Name: "Asha", Email: "asha@example.com", ZipCode: "56000156000156000"}, domain.KindValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildOrder(tc.cart, tc.customer, "UPI", DefaultShippingPolicy())
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, tc.kind), "unexpected error: %v", err)
		})
	}
}

func TestLocalOrderSubmitter(t *testing.T) {
	id, err := NewLocalOrderSubmitter(nil).Submit(context.Background(), OrderRequest{})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestHTTPOrderSubmitter_OrderIDShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expectID string
	}{
		{"nested _id", `{"success":true,"order":{"_id":"65f0c1","id":"other"}}`, "65f0c1"},
		{"nested id", `{"order":{"id":"ord-42"}}`, "ord-42"},
		{"top-level id", `{"id":"ord-7"}`, "ord-7"},
		{"numeric id", `{"id":1001}`, "1001"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var received OrderRequest
			var rawCustomer map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.NoError(t, json.Unmarshal(body, &received))
				var envelope struct {
					Customer map[string]any `json:"customer"`
				}
				assert.NoError(t, json.Unmarshal(body, &envelope))
				rawCustomer = envelope.Customer
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(tc.response))
			}))
			defer server.Close()

			submitter, err := NewHTTPOrderSubmitter(HTTPOrderSubmitterConfig{Endpoint: server.URL})
			require.NoError(t, err)

			c := mustAdd(t, New(), testProduct("1", 900, true), 1)
			order, err := BuildOrder(c, validCustomer, "UPI", DefaultShippingPolicy())
			require.NoError(t, err)

			id, err := submitter.Submit(context.Background(), order)
			require.NoError(t, err)
			assert.Equal(t, tc.expectID, id)
			assert.Equal(t, "UPI", received.PaymentMethod)
			assert.Equal(t, validCustomer, received.Customer)
			assert.Equal(t, map[string]any{
				"name":    "Asha Rao",
				"email":   "asha@example.com",
				"phone":   "9876543210",
				"street":  "12 MG Road",
				"city":    "Bengaluru",
				"zipCode": "560001",
				"state":   "Karnataka",
				"country": "India",
			}, rawCustomer)
			assert.Equal(t, "1150", received.TotalAmount.String())
		})
	}
}

func TestHTTPOrderSubmitter_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"bad request", http.StatusBadRequest, `{"error":"invalid"}`},
		{"no id", http.StatusOK, `{"success":true}`},
		{"not json", http.StatusOK, `<html></html>`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			submitter, err := NewHTTPOrderSubmitter(HTTPOrderSubmitterConfig{Endpoint: server.URL, RetryMax: 0})
			require.NoError(t, err)

			_, err = submitter.Submit(context.Background(), OrderRequest{})
			assert.Error(t, err)
		})
	}
}

func TestNewHTTPOrderSubmitter_RequiresEndpoint(t *testing.T) {
	_, err := NewHTTPOrderSubmitter(HTTPOrderSubmitterConfig{Endpoint: " "})
	assert.Error(t, err)
}
