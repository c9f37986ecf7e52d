package rpcserver

import (
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

// DefaultSocketPath is the default control-plane UDS path (spec §4.H/§6).
const DefaultSocketPath = "/tmp/mapper_dmi.sock"

// Listen builds the UDS listener and grpc.Server for srv: it removes a
// stale socket file left by a prior crash, relaxes permissions to 0666 so
// the control plane (running as a different user) can connect, registers
// srv under the hand-built JSON codec, and enables reflection.
func Listen(socketPath string, srv rpcapi.MapperServer, unaryInterceptors ...grpc.UnaryServerInterceptor) (*grpc.Server, net.Listener, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("rpcserver: remove stale socket: %w", err)
	}

	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, nil, fmt.Errorf("rpcserver: listen on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o666); err != nil {
		lis.Close()
		return nil, nil, fmt.Errorf("rpcserver: chmod socket: %w", err)
	}

	opts := []grpc.ServerOption{grpc.ForceServerCodec(rpcapi.Codec)}
	if len(unaryInterceptors) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(unaryInterceptors...))
	}
	s := grpc.NewServer(opts...)
	rpcapi.RegisterMapperServer(s, srv)
	reflection.Register(s)

	return s, lis, nil
}
