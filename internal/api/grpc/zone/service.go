package zone

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully-qualified names of the zone service and its methods.
const (
	ServiceName                   = "securityzone.v1.ZoneService"
	GetZoneStateFullMethodName    = "/" + ServiceName + "/GetZoneState"
	SetSurveillanceFullMethodName = "/" + ServiceName + "/SetSurveillance"
)

// ZoneServiceServer is the server API of the zone service.
type ZoneServiceServer interface {
	// GetZoneState returns the current zone snapshot.
	GetZoneState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// SetSurveillance arms or disarms the zone and returns the resulting snapshot.
	SetSurveillance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ZoneServiceDesc describes the zone service for grpc.Server registration.
var ZoneServiceDesc = grpc.ServiceDesc{ //nolint:gochecknoglobals // Service descriptors are package-level by convention.
	ServiceName: ServiceName,
	HandlerType: (*ZoneServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetZoneState",
			Handler:    getZoneStateHandler,
		},
		{
			MethodName: "SetSurveillance",
			Handler:    setSurveillanceHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterZoneServiceServer registers the implementation on the gRPC server.
func RegisterZoneServiceServer(registrar grpc.ServiceRegistrar, srv ZoneServiceServer) {
	registrar.RegisterService(&ZoneServiceDesc, srv)
}

func getZoneStateHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ZoneServiceServer).GetZoneState(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetZoneStateFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ZoneServiceServer).GetZoneState(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Same as above.
	}

	return interceptor(ctx, in, info, handler)
}

func setSurveillanceHandler(
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
		return srv.(ZoneServiceServer).SetSurveillance(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SetSurveillanceFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ZoneServiceServer).SetSurveillance(ctx, req.(*structpb.Struct)) //nolint:forcetypeassert // Same as above.
	}

	return interceptor(ctx, in, info, handler)
}

// ZoneServiceClient is the client API of the zone service.
type ZoneServiceClient interface {
	GetZoneState(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetSurveillance(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type zoneServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewZoneServiceClient creates a client stub on the connection.
func NewZoneServiceClient(cc grpc.ClientConnInterface) ZoneServiceClient {
	return &zoneServiceClient{cc: cc}
}

func (c *zoneServiceClient) GetZoneState(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetZoneStateFullMethodName, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *zoneServiceClient) SetSurveillance(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SetSurveillanceFullMethodName, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
