package rpcapi

import "encoding/json"

// jsonCodec implements grpc's encoding.Codec (the pre-v1.38 Codec
// interface, still accepted by ForceServerCodec/ForceCodec) over plain
// encoding/json. It stands in for protoc-generated marshaling: every
// message in this package is a plain struct, not a proto.Message, so the
// default proto codec cannot be used.
type jsonCodec struct{}

// Codec is the shared JSON codec instance for both the server and client
// sides of the control-plane RPC surface.
var Codec = jsonCodec{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
