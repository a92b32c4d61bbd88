package main

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const cartServiceName = "storefront.Cart"

// CartServer is the storefront.Cart gRPC service. Requests and responses
// are google.protobuf.Struct documents.
type CartServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Handle(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(CartServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var cartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenSession", Handler: unaryHandler("OpenSession", CartServer.OpenSession)},
		{MethodName: "CloseSession", Handler: unaryHandler("CloseSession", CartServer.CloseSession)},
		{MethodName: "ListProducts", Handler: unaryHandler("ListProducts", CartServer.ListProducts)},
		{MethodName: "GetCart", Handler: unaryHandler("GetCart", CartServer.GetCart)},
		{MethodName: "GetHistory", Handler: unaryHandler("GetHistory", CartServer.GetHistory)},
		{MethodName: "Handle", Handler: unaryHandler("Handle", CartServer.Handle)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/cart.proto",
}

// RegisterCartServer registers srv on s.
func RegisterCartServer(s grpc.ServiceRegistrar, srv CartServer) {
	s.RegisterService(&cartServiceDesc, srv)
}

// FullMethod returns the gRPC method path for a storefront.Cart method.
func FullMethod(method string) string {
	return "/" + cartServiceName + "/" + method
}

func unaryHandler(method string, call structMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := &structpb.Struct{}
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CartServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
