package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// StorefrontServiceName is the fully-qualified gRPC service name.
const StorefrontServiceName = "storefront.v1.Storefront"

// StorefrontServer is the server API for the Storefront service. Requests and
// responses are google.protobuf.Struct documents shaped like the HTTP API.
type StorefrontServer interface {
	ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CheckAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	QuoteCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type storefrontCall func(StorefrontServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

type unaryMethodHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

func unaryHandler(method string, call storefrontCall) unaryMethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StorefrontServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + StorefrontServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(StorefrontServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// StorefrontServiceDesc describes the Storefront service for grpc.Server.
var StorefrontServiceDesc = grpc.ServiceDesc{
	ServiceName: StorefrontServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListProducts", Handler: unaryHandler("ListProducts", StorefrontServer.ListProducts)},
		{MethodName: "GetProduct", Handler: unaryHandler("GetProduct", StorefrontServer.GetProduct)},
		{MethodName: "CheckAvailability", Handler: unaryHandler("CheckAvailability", StorefrontServer.CheckAvailability)},
		{MethodName: "QuoteCart", Handler: unaryHandler("QuoteCart", StorefrontServer.QuoteCart)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/storefront.proto",
}

// RegisterStorefrontServer registers srv on s.
func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&StorefrontServiceDesc, srv)
}
