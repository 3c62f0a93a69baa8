package grpctransport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "orderitems.v1.OrderItemService"

const (
	addItemMethod         = "/" + ServiceName + "/AddItem"
	getOrderDetailsMethod = "/" + ServiceName + "/GetOrderDetails"
)

// OrderItemServiceServer is the server API for the order item service.
// Messages are google.protobuf.Struct values keyed like the HTTP API.
type OrderItemServiceServer interface {
	AddItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrderDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterOrderItemServiceServer registers srv on s.
func RegisterOrderItemServiceServer(s grpc.ServiceRegistrar, srv OrderItemServiceServer) {
	s.RegisterService(&orderItemServiceDesc, srv)
}

var orderItemServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderItemServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddItem",
			Handler:    addItemHandler,
		},
		{
			MethodName: "GetOrderDetails",
			Handler:    getOrderDetailsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/orderitems/v1/orderitems.proto",
}

func addItemHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderItemServiceServer).AddItem(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: addItemMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderItemServiceServer).AddItem(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func getOrderDetailsHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderItemServiceServer).GetOrderDetails(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getOrderDetailsMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderItemServiceServer).GetOrderDetails(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

// OrderItemServiceClient is the client API for the order item service.
type OrderItemServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderItemServiceClient creates a client over cc.
func NewOrderItemServiceClient(cc grpc.ClientConnInterface) *OrderItemServiceClient {
	return &OrderItemServiceClient{cc: cc}
}

// AddItem calls OrderItemService.AddItem.
func (c *OrderItemServiceClient) AddItem(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, addItemMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetOrderDetails calls OrderItemService.GetOrderDetails.
func (c *OrderItemServiceClient) GetOrderDetails(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getOrderDetailsMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
