package rpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// DeviceManagerServiceName is the fully-qualified gRPC service name the
// control plane exposes; the mapper dials it as a client (spec §4.G).
const DeviceManagerServiceName = "devicemapper.v1beta1.DeviceManagerService"

// DeviceManagerServer is the control-plane side of the registration and
// reporting surface. Only test fakes in this module implement it; the real
// control plane lives outside this repository.
type DeviceManagerServer interface {
	MapperRegister(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	ReportDeviceStates(ctx context.Context, req *ReportDeviceStatesRequest) (*GenericResponse, error)
	ReportTwinKV(ctx context.Context, req *ReportTwinKVRequest) (*GenericResponse, error)
}

func _DeviceManager_MapperRegister_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeviceManagerServer).MapperRegister(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DeviceManagerServiceName + "/MapperRegister"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeviceManagerServer).MapperRegister(ctx, req.(*RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DeviceManager_ReportDeviceStates_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReportDeviceStatesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeviceManagerServer).ReportDeviceStates(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DeviceManagerServiceName + "/ReportDeviceStates"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeviceManagerServer).ReportDeviceStates(ctx, req.(*ReportDeviceStatesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DeviceManager_ReportTwinKV_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReportTwinKVRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeviceManagerServer).ReportTwinKV(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DeviceManagerServiceName + "/ReportTwinKV"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeviceManagerServer).ReportTwinKV(ctx, req.(*ReportTwinKVRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DeviceManagerServiceDesc is the hand-built grpc.ServiceDesc for the
// mapper-to-control-plane surface.
var DeviceManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: DeviceManagerServiceName,
	HandlerType: (*DeviceManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "MapperRegister", Handler: _DeviceManager_MapperRegister_Handler},
		{MethodName: "ReportDeviceStates", Handler: _DeviceManager_ReportDeviceStates_Handler},
		{MethodName: "ReportTwinKV", Handler: _DeviceManager_ReportTwinKV_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpcapi/devicemanager_service.go",
}

// RegisterDeviceManagerServer registers srv on s; used only by test fakes
// standing in for the control plane.
func RegisterDeviceManagerServer(s grpc.ServiceRegistrar, srv DeviceManagerServer) {
	s.RegisterService(&DeviceManagerServiceDesc, srv)
}

type deviceManagerClient struct {
	cc grpc.ClientConnInterface
}

// NewDeviceManagerClient wraps cc for calls against the control plane's
// registration and reporting surface.
func NewDeviceManagerClient(cc grpc.ClientConnInterface) DeviceManagerServer {
	return &deviceManagerClient{cc: cc}
}

func (c *deviceManagerClient) MapperRegister(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.cc.Invoke(ctx, "/"+DeviceManagerServiceName+"/MapperRegister", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceManagerClient) ReportDeviceStates(ctx context.Context, req *ReportDeviceStatesRequest) (*GenericResponse, error) {
	out := new(GenericResponse)
	if err := c.cc.Invoke(ctx, "/"+DeviceManagerServiceName+"/ReportDeviceStates", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceManagerClient) ReportTwinKV(ctx context.Context, req *ReportTwinKVRequest) (*GenericResponse, error) {
	out := new(GenericResponse)
	if err := c.cc.Invoke(ctx, "/"+DeviceManagerServiceName+"/ReportTwinKV", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
