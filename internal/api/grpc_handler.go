package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/domain"
)

// GRPCHandler implements StorefrontServer over the catalog snapshot.
type GRPCHandler struct {
	catalog CatalogProvider
	policy  cart.ShippingPolicy
	logger  *zap.Logger
}

var _ StorefrontServer = (*GRPCHandler)(nil)

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(cp CatalogProvider, policy cart.ShippingPolicy, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{catalog: cp, policy: policy, logger: logger}
}

// --- Helpers: Struct conversion ---

// toStruct converts a JSON-encodable value into a Struct document.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// stringField reads a string or number field as text.
func stringField(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}

type requestedItem struct {
	ProductID string
	Quantity  int
}

// requestedItems reads the "items" list of {productId, quantity} entries.
// A missing quantity means 1.
func requestedItems(req *structpb.Struct) ([]requestedItem, error) {
	list := req.GetFields()["items"].GetListValue().GetValues()
	if len(list) == 0 {
		return nil, status.Error(codes.InvalidArgument, "no items provided")
	}
	items := make([]requestedItem, 0, len(list))
	for i, v := range list {
		entry := v.GetStructValue()
		if entry == nil {
			return nil, status.Errorf(codes.InvalidArgument, "item %d is not an object", i)
		}
		id := stringField(entry, "productId")
		if id == "" {
			return nil, status.Errorf(codes.InvalidArgument, "item %d has no productId", i)
		}
		qty := 1
		if q, ok := entry.GetFields()["quantity"]; ok {
			n := q.GetNumberValue()
			if n != float64(int(n)) {
				return nil, status.Errorf(codes.InvalidArgument, "item %d has a fractional quantity", i)
			}
			qty = int(n)
		}
		items = append(items, requestedItem{ProductID: id, Quantity: qty})
	}
	return items, nil
}

func (s *GRPCHandler) products(ctx context.Context) ([]domain.Product, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("gRPC catalog load failed", zap.Error(err))
		return nil, grpcStatusFor(err)
	}
	return snap.Products, nil
}

// --- Storefront gRPC Methods Implementation ---

func (s *GRPCHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	state, err := catalog.ParseFilterState(
		stringField(req, "category"),
		stringField(req, "maxPrice"),
		stringField(req, "inStockOnly"),
		stringField(req, "sort"),
	)
	if err != nil {
		return nil, grpcStatusFor(err)
	}
	all, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	products := catalog.Apply(all, state)
	s.logger.Debug("gRPC ListProducts", zap.Int("results", len(products)))
	return toStruct(map[string]interface{}{"products": products, "total": len(products)})
}

func (s *GRPCHandler) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, domain.ErrMsgProductIDMissing)
	}
	all, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	product, err := catalog.Find(all, id)
	if err != nil {
		return nil, grpcStatusFor(err)
	}
	return toStruct(map[string]interface{}{"product": product})
}

// AvailabilityStatus is one entry of a CheckAvailability response.
type AvailabilityStatus struct {
	ProductID          string `json:"productId"`
	Name               string `json:"name,omitempty"`
	CurrentPrice       string `json:"currentPrice,omitempty"`
	IsAvailable        bool   `json:"isAvailable"`
	ReasonNotAvailable string `json:"reasonNotAvailable,omitempty"`
}

func (s *GRPCHandler) CheckAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	items, err := requestedItems(req)
	if err != nil {
		return nil, err
	}
	all, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(all, func(p domain.Product) string { return p.ID })

	statuses := make([]AvailabilityStatus, 0, len(items))
	for _, item := range items {
		entry := AvailabilityStatus{ProductID: item.ProductID}
		p, found := byID[item.ProductID]
		switch {
		case item.Quantity < 1:
			entry.ReasonNotAvailable = domain.ErrMsgQuantityPositive
		case !found:
			entry.ReasonNotAvailable = domain.ErrMsgProductNotFound
		case !p.InStock:
			entry.Name = p.Name
			entry.CurrentPrice = p.EffectivePrice.String()
			entry.ReasonNotAvailable = domain.ErrMsgOutOfStock
		default:
			entry.Name = p.Name
			entry.CurrentPrice = p.EffectivePrice.String()
			entry.IsAvailable = true
		}
		statuses = append(statuses, entry)
	}

	allAvailable := lo.EveryBy(statuses, func(st AvailabilityStatus) bool { return st.IsAvailable })
	s.logger.Debug("gRPC CheckAvailability", zap.Int("items", len(statuses)), zap.Bool("all_available", allAvailable))
	return toStruct(map[string]interface{}{"statuses": statuses, "allAvailable": allAvailable})
}

func (s *GRPCHandler) QuoteCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	items, err := requestedItems(req)
	if err != nil {
		return nil, err
	}
	all, err := s.products(ctx)
	if err != nil {
		return nil, err
	}

	c := cart.New()
	for _, item := range items {
		p, err := catalog.Find(all, item.ProductID)
		if err != nil {
			return nil, status.Errorf(codes.NotFound, "product %s not found", item.ProductID)
		}
		if c, err = cart.AddItem(c, p, item.Quantity); err != nil {
			return nil, grpcStatusFor(fmt.Errorf("product %s: %w", item.ProductID, err))
		}
	}

	return toStruct(map[string]interface{}{
		"lines":     c.Lines,
		"itemCount": cart.ItemCount(c),
		"totals":    cart.ComputeTotals(c, s.policy),
	})
}
