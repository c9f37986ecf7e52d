// Package rpcclient is the mapper's outbound gRPC connection to the control
// plane (spec §4.G): it registers the mapper on startup (receiving back the
// devices/models the control plane knows), then reports status changes and
// reported twin values as they happen. Every report is one-way and
// best-effort — a report that fails is logged and its error returned, not
// retried, so a slow or unavailable control plane never backs up the device
// tick loop.
package rpcclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nerrad567/edge-mapper/internal/device"
	"github.com/nerrad567/edge-mapper/internal/model"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

// Logger is the minimal logging surface the client needs.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger is the default logger until SetLogger is called.
var NoopLogger Logger = noopLogger{}

// RegisterTimeout bounds the one-shot MapperRegister call (spec §4.G).
const RegisterTimeout = 5 * time.Second

// ReportTimeout bounds every individual status/twin report.
const ReportTimeout = 2 * time.Second

// Client dials the control plane's device-manager socket and implements
// device.Reporter so it can be handed straight to device.NewRuntime and
// rpcserver.New.
type Client struct {
	conn   *grpc.ClientConn
	remote rpcapi.DeviceManagerServer
	logger Logger
}

// Dial connects to the control plane over the given UDS path (conventionally
// edgecore's device-manager socket); a leading "unix://" on the path is
// accepted. The connection is lazy; failures surface on first use, matching
// how the tick loop already tolerates a down reporter.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient("unix://"+strings.TrimPrefix(socketPath, "unix://"),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rpcapi.Codec)),
	)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: dial %s: %w", socketPath, err)
	}
	return &Client{
		conn:   conn,
		remote: rpcapi.NewDeviceManagerClient(conn),
		logger: NoopLogger,
	}, nil
}

// SetLogger overrides the default no-op logger.
func (c *Client) SetLogger(l Logger) { c.logger = l }

// Close tears down the underlying gRPC connection.
func (c *Client) Close() error { return c.conn.Close() }

var _ device.Reporter = (*Client)(nil)

// MapperRegister announces this mapper to the control plane and, if
// withData is set, asks it to reflect back the full set of devices and
// models it already knows about (spec §4.G) so a restarted mapper can
// repopulate its registry without a human re-pushing every device.
func (c *Client) MapperRegister(ctx context.Context, info rpcapi.MapperInfo, withData bool) (*rpcapi.RegisterResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, RegisterTimeout)
	defer cancel()

	resp, err := c.remote.MapperRegister(ctx, &rpcapi.RegisterRequest{WithData: withData, Mapper: info})
	if err != nil {
		return nil, fmt.Errorf("rpcclient: register: %w", err)
	}
	return resp, nil
}

// ReportDeviceStatus implements device.Reporter. Failures are logged and
// returned as a wrapped error, with no retry, so a reporting hiccup never
// stalls the tick loop.
func (c *Client) ReportDeviceStatus(ctx context.Context, namespace, name string, status model.Status) error {
	ctx, cancel := context.WithTimeout(ctx, ReportTimeout)
	defer cancel()

	_, err := c.remote.ReportDeviceStates(ctx, &rpcapi.ReportDeviceStatesRequest{
		Namespace: namespace,
		Name:      name,
		State:     string(status),
	})
	if err != nil {
		c.logger.Warn("rpcclient: report device status failed", "device", model.CanonicalID(namespace, name), "error", err)
		return fmt.Errorf("rpcclient: report device status: %w", err)
	}
	return nil
}

// ReportTwinKV implements device.Reporter.
func (c *Client) ReportTwinKV(ctx context.Context, namespace, name, property, value string, tsMillis int64) error {
	ctx, cancel := context.WithTimeout(ctx, ReportTimeout)
	defer cancel()

	_, err := c.remote.ReportTwinKV(ctx, &rpcapi.ReportTwinKVRequest{
		Namespace:    namespace,
		Name:         name,
		PropertyName: property,
		Value:        value,
		ValueType:    "string",
	})
	if err != nil {
		c.logger.Warn("rpcclient: report twin kv failed", "device", model.CanonicalID(namespace, name), "property", property, "error", err)
		return fmt.Errorf("rpcclient: report twin kv: %w", err)
	}
	return nil
}
