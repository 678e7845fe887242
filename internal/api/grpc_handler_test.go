package api

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-service/internal/cart"
)

func setupTestGRPC(t *testing.T, cp CatalogProvider) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	RegisterStorefrontServer(server, NewGRPCHandler(cp, cart.DefaultShippingPolicy(), nil))
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, req map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	out := &structpb.Struct{}
	err = conn.Invoke(context.Background(), "/"+StorefrontServiceName+"/"+method, in, out)
	return out, err
}

func productIDs(t *testing.T, list *structpb.Value) []string {
	t.Helper()
	var out []string
	for _, v := range list.GetListValue().GetValues() {
		out = append(out, v.GetStructValue().GetFields()["id"].GetStringValue())
	}
	return out
}

func TestGRPCHandler_ListProducts(t *testing.T) {
	conn := setupTestGRPC(t, seedLoader())

	resp, err := invoke(t, conn, "ListProducts", map[string]interface{}{
		"category":    "Necklaces",
		"inStockOnly": true,
		"sort":        "price-asc",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "6"}, productIDs(t, resp.GetFields()["products"]))
	assert.Equal(t, float64(2), resp.GetFields()["total"].GetNumberValue())

	_, err = invoke(t, conn, "ListProducts", map[string]interface{}{"maxPrice": "cheap"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_GetProduct(t *testing.T) {
	conn := setupTestGRPC(t, seedLoader())

	resp, err := invoke(t, conn, "GetProduct", map[string]interface{}{"id": 5})
	require.NoError(t, err)
	product := resp.GetFields()["product"].GetStructValue()
	assert.Equal(t, "Pearl Drop Earrings", product.GetFields()["name"].GetStringValue())

	_, err = invoke(t, conn, "GetProduct", map[string]interface{}{"id": "99"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = invoke(t, conn, "GetProduct", map[string]interface{}{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_CheckAvailability(t *testing.T) {
	conn := setupTestGRPC(t, seedLoader())

	resp, err := invoke(t, conn, "CheckAvailability", map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"productId": "1", "quantity": 2},
			map[string]interface{}{"productId": "4"},
			map[string]interface{}{"productId": "99"},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.GetFields()["allAvailable"].GetBoolValue())

	statuses := resp.GetFields()["statuses"].GetListValue().GetValues()
	require.Len(t, statuses, 3)
	first := statuses[0].GetStructValue().GetFields()
	assert.True(t, first["isAvailable"].GetBoolValue())
	assert.Equal(t, "900", first["currentPrice"].GetStringValue())
	assert.Equal(t, "out of stock", statuses[1].GetStructValue().GetFields()["reasonNotAvailable"].GetStringValue())
	assert.Equal(t, "product not found", statuses[2].GetStructValue().GetFields()["reasonNotAvailable"].GetStringValue())

	_, err = invoke(t, conn, "CheckAvailability", map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_QuoteCart(t *testing.T) {
	conn := setupTestGRPC(t, seedLoader())

	resp, err := invoke(t, conn, "QuoteCart", map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"productId": "1", "quantity": 2},
			map[string]interface{}{"productId": "2"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3), resp.GetFields()["itemCount"].GetNumberValue())
	totals := resp.GetFields()["totals"].GetStructValue().GetFields()
	assert.Equal(t, "3330", totals["subtotal"].GetStringValue())
	assert.Equal(t, "250", totals["shipping"].GetStringValue())
	assert.Equal(t, "3580", totals["total"].GetStringValue())

	_, err = invoke(t, conn, "QuoteCart", map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"productId": "4"}},
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = invoke(t, conn, "QuoteCart", map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"productId": "99"}},
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCHandler_CatalogUnavailable(t *testing.T) {
	conn := setupTestGRPC(t, failingCatalog{})

	_, err := invoke(t, conn, "ListProducts", map[string]interface{}{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
