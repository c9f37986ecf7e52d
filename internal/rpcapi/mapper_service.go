package rpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// MapperServiceName is the fully-qualified gRPC service name the mapper
// registers on its UDS server (spec §4.H).
const MapperServiceName = "devicemapper.v1beta1.DeviceMapperService"

// MapperServer is implemented by internal/rpcserver to handle the
// control-plane-to-mapper CRUD surface (spec §4.H).
type MapperServer interface {
	RegisterDevice(ctx context.Context, req *RegisterDeviceRequest) (*RegisterDeviceResponse, error)
	UpdateDevice(ctx context.Context, req *UpdateDeviceRequest) (*RegisterDeviceResponse, error)
	RemoveDevice(ctx context.Context, req *RemoveDeviceRequest) (*GenericResponse, error)
	CreateDeviceModel(ctx context.Context, req *CreateDeviceModelRequest) (*GenericResponse, error)
	UpdateDeviceModel(ctx context.Context, req *UpdateDeviceModelRequest) (*GenericResponse, error)
	RemoveDeviceModel(ctx context.Context, req *RemoveDeviceModelRequest) (*GenericResponse, error)
	GetDevice(ctx context.Context, req *GetDeviceRequest) (*GetDeviceResponse, error)
}

func _Mapper_RegisterDevice_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RegisterDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).RegisterDevice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/RegisterDevice"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).RegisterDevice(ctx, req.(*RegisterDeviceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Mapper_UpdateDevice_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).UpdateDevice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/UpdateDevice"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).UpdateDevice(ctx, req.(*UpdateDeviceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Mapper_RemoveDevice_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RemoveDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).RemoveDevice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/RemoveDevice"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).RemoveDevice(ctx, req.(*RemoveDeviceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Mapper_CreateDeviceModel_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateDeviceModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).CreateDeviceModel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/CreateDeviceModel"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).CreateDeviceModel(ctx, req.(*CreateDeviceModelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Mapper_UpdateDeviceModel_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateDeviceModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).UpdateDeviceModel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/UpdateDeviceModel"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).UpdateDeviceModel(ctx, req.(*UpdateDeviceModelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Mapper_RemoveDeviceModel_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RemoveDeviceModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).RemoveDeviceModel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/RemoveDeviceModel"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).RemoveDeviceModel(ctx, req.(*RemoveDeviceModelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Mapper_GetDevice_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MapperServer).GetDevice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MapperServiceName + "/GetDevice"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MapperServer).GetDevice(ctx, req.(*GetDeviceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MapperServiceDesc is the hand-built grpc.ServiceDesc for the
// control-plane-to-mapper surface, used in place of a protoc-generated one.
var MapperServiceDesc = grpc.ServiceDesc{
	ServiceName: MapperServiceName,
	HandlerType: (*MapperServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterDevice", Handler: _Mapper_RegisterDevice_Handler},
		{MethodName: "UpdateDevice", Handler: _Mapper_UpdateDevice_Handler},
		{MethodName: "RemoveDevice", Handler: _Mapper_RemoveDevice_Handler},
		{MethodName: "CreateDeviceModel", Handler: _Mapper_CreateDeviceModel_Handler},
		{MethodName: "UpdateDeviceModel", Handler: _Mapper_UpdateDeviceModel_Handler},
		{MethodName: "RemoveDeviceModel", Handler: _Mapper_RemoveDeviceModel_Handler},
		{MethodName: "GetDevice", Handler: _Mapper_GetDevice_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpcapi/mapper_service.go",
}

// RegisterMapperServer registers srv on s using the hand-built service
// descriptor.
func RegisterMapperServer(s grpc.ServiceRegistrar, srv MapperServer) {
	s.RegisterService(&MapperServiceDesc, srv)
}

// mapperClient is a thin hand-written stub equivalent to what protoc-gen-go-grpc
// would generate, used by tests and by any caller that needs to exercise
// the mapper's server surface over a real grpc.ClientConn.
type mapperClient struct {
	cc grpc.ClientConnInterface
}

// NewMapperClient wraps cc for calls against the mapper's CRUD surface.
func NewMapperClient(cc grpc.ClientConnInterface) MapperServer {
	return &mapperClient{cc: cc}
}

func (c *mapperClient) RegisterDevice(ctx context.Context, req *RegisterDeviceRequest) (*RegisterDeviceResponse, error) {
	out := new(RegisterDeviceResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/RegisterDevice", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mapperClient) UpdateDevice(ctx context.Context, req *UpdateDeviceRequest) (*RegisterDeviceResponse, error) {
	out := new(RegisterDeviceResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/UpdateDevice", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mapperClient) RemoveDevice(ctx context.Context, req *RemoveDeviceRequest) (*GenericResponse, error) {
	out := new(GenericResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/RemoveDevice", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mapperClient) CreateDeviceModel(ctx context.Context, req *CreateDeviceModelRequest) (*GenericResponse, error) {
	out := new(GenericResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/CreateDeviceModel", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mapperClient) UpdateDeviceModel(ctx context.Context, req *UpdateDeviceModelRequest) (*GenericResponse, error) {
	out := new(GenericResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/UpdateDeviceModel", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mapperClient) RemoveDeviceModel(ctx context.Context, req *RemoveDeviceModelRequest) (*GenericResponse, error) {
	out := new(GenericResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/RemoveDeviceModel", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mapperClient) GetDevice(ctx context.Context, req *GetDeviceRequest) (*GetDeviceResponse, error) {
	out := new(GetDeviceResponse)
	if err := c.cc.Invoke(ctx, "/"+MapperServiceName+"/GetDevice", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
