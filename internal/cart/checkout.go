package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-service/internal/catalog"
	"storefront-service/internal/domain"
)

// DefaultPaymentMethod is used when the shopper does not pick one.
const DefaultPaymentMethod = "Cash on Delivery"

var validate = validator.New()

// Customer holds the checkout form fields. Only name and email are required.
type Customer struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Street  string `json:"street,omitempty" validate:"omitempty,max=255"`
	City    string `json:"city,omitempty" validate:"omitempty,max=128"`
	ZipCode string `json:"zipCode,omitempty" validate:"omitempty,max=16"`
	State   string `json:"state,omitempty" validate:"omitempty,max=128"`
	Country string `json:"country,omitempty" validate:"omitempty,max=128"`
}

// OrderLine is one product of an order hand-off.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// OrderRequest is the body handed to the order endpoint.
type OrderRequest struct {
	Customer      Customer        `json:"customer"`
	Products      []OrderLine     `json:"products"`
	PaymentMethod string          `json:"paymentMethod"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// BuildOrder snapshots c into an order request. The total includes shipping.
func BuildOrder(c Cart, customer Customer, paymentMethod string, policy ShippingPolicy) (OrderRequest, error) {
	const op = "cart.BuildOrder"
	if len(c.Lines) == 0 {
		return OrderRequest{}, domain.NewInvalidOperation(op, domain.ErrMsgCartEmpty)
	}

	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	if err := validate.Struct(customer); err != nil {
		return OrderRequest{}, domain.NewValidation(op, "invalid customer: "+err.Error())
	}

	if strings.TrimSpace(paymentMethod) == "" {
		paymentMethod = DefaultPaymentMethod
	}

	return OrderRequest{
		Customer: customer,
		Products: lo.Map(c.Lines, func(l Line, _ int) OrderLine {
			return OrderLine{
				ProductID: l.ProductID,
				Name:      l.Name,
				Price:     l.UnitPrice,
				Quantity:  l.Quantity,
				Image:     l.Image,
			}
		}),
		PaymentMethod: strings.TrimSpace(paymentMethod),
		TotalAmount:   ComputeTotals(c, policy).Total,
	}, nil
}

// OrderSubmitter hands an order to whatever records it and returns its id.
type OrderSubmitter interface {
	Submit(ctx context.Context, order OrderRequest) (string, error)
}

// LocalOrderSubmitter issues order ids without an external endpoint.
type LocalOrderSubmitter struct {
	logger *zap.Logger
}

var _ OrderSubmitter = (*LocalOrderSubmitter)(nil)

func NewLocalOrderSubmitter(logger *zap.Logger) *LocalOrderSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalOrderSubmitter{logger: logger}
}

func (s *LocalOrderSubmitter) Submit(_ context.Context, order OrderRequest) (string, error) {
	id := uuid.NewString()
	s.logger.Info("order accepted locally",
		zap.String("order_id", id),
		zap.Int("lines", len(order.Products)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	return id, nil
}

// HTTPOrderSubmitterConfig configures HTTPOrderSubmitter.
type HTTPOrderSubmitterConfig struct {
	Endpoint string
	Timeout  time.Duration
	RetryMax int
	Logger   *zap.Logger
}

// HTTPOrderSubmitter POSTs orders as JSON to a REST endpoint.
type HTTPOrderSubmitter struct {
	endpoint string
	client   *retryablehttp.Client
}

var _ OrderSubmitter = (*HTTPOrderSubmitter)(nil)

func NewHTTPOrderSubmitter(cfg HTTPOrderSubmitterConfig) (*HTTPOrderSubmitter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("cart: order endpoint is required")
	}
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	client.Logger = catalog.NewRetryLogger(cfg.Logger)
	return &HTTPOrderSubmitter{endpoint: cfg.Endpoint, client: client}, nil
}

func (s *HTTPOrderSubmitter) Submit(ctx context.Context, order OrderRequest) (string, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("cart: encode order: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cart: build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cart: submit order: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("cart: read order response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("cart: order endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("cart: decode order response: %w", err)
	}
	id := orderID(payload)
	if id == "" {
		return "", errors.New("cart: order response carries no order id")
	}
	return id, nil
}

// orderID looks for order._id, order.id and id, in that order.
func orderID(payload map[string]any) string {
	if nested, ok := payload["order"].(map[string]any); ok {
		for _, key := range []string{"_id", "id"} {
			if s := idString(nested[key]); s != "" {
				return s
			}
		}
	}
	return idString(payload["id"])
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	}
	return ""
}
