package rpcapi

import "encoding/json"

// AnyValue mirrors a google.protobuf.Any carrying one of the well-known
// scalar wrapper types (spec §4.J). TypeURL selects the decode path in
// internal/wire; Value is the wrapper's own JSON-encoded payload.
type AnyValue struct {
	TypeURL string          `json:"typeUrl"`
	Value   json.RawMessage `json:"value"`
}

// ProtocolWire is the wire shape of a device's protocol configuration.
type ProtocolWire struct {
	ProtocolName string              `json:"protocolName"`
	ConfigData   map[string]AnyValue `json:"configData"`
}

// MQTTConfigWire is the wire shape of an mqtt pushMethod.
type MQTTConfigWire struct {
	BrokerURL    string `json:"brokerUrl"`
	Port         string `json:"port"`
	TopicPrefix  string `json:"topicPrefix"`
	QoS          int    `json:"qos"`
	KeepAliveSec int    `json:"keepAlive"`
	ClientID     string `json:"clientId"`
}

// HTTPConfigWire is the wire shape of an http pushMethod.
type HTTPConfigWire struct {
	Host    string `json:"host"`
	Port    string `json:"port"`
	Path    string `json:"path"`
	Timeout int    `json:"timeout"`
}

// OTELConfigWire is the wire shape of an otel pushMethod.
type OTELConfigWire struct {
	EndpointURL string `json:"endpointUrl"`
}

// PushMethodWire aggregates a push-channel config, matching at most one of
// MQTT/HTTP/OTEL being populated (spec §3, DeviceProperty.pushMethod).
type PushMethodWire struct {
	MQTT *MQTTConfigWire `json:"mqtt,omitempty"`
	HTTP *HTTPConfigWire `json:"http,omitempty"`
	OTEL *OTELConfigWire `json:"otel,omitempty"`
}

// MySQLConfigWire, RedisConfigWire, InfluxDB2ConfigWire and TDengineConfigWire
// are the wire shapes of a dbMethod's per-backend configuration.
type MySQLConfigWire struct {
	Addr     string `json:"addr"`
	Database string `json:"database"`
	Username string `json:"username"`
}

type RedisConfigWire struct {
	Addr string `json:"addr"`
	DB   int    `json:"db"`
}

type InfluxDB2ConfigWire struct {
	URL    string `json:"url"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

type TDengineConfigWire struct {
	Addr   string `json:"addr"`
	DBName string `json:"dbname"`
}

// DBMethodWire aggregates a recorder-channel config.
type DBMethodWire struct {
	MySQL     *MySQLConfigWire     `json:"mysql,omitempty"`
	Redis     *RedisConfigWire     `json:"redis,omitempty"`
	InfluxDB2 *InfluxDB2ConfigWire `json:"influxdb2,omitempty"`
	TDengine  *TDengineConfigWire  `json:"tdengine,omitempty"`
}

// PropertyWire is the wire shape of one DeviceProperty.
type PropertyWire struct {
	Name             string              `json:"name"`
	ModelName        string              `json:"modelName"`
	Protocol         string              `json:"protocol"`
	Visitors         map[string]AnyValue `json:"visitors"`
	CollectCycle     int64               `json:"collectCycle"`
	ReportCycle      int64               `json:"reportCycle"`
	ReportToCloud    bool                `json:"reportToCloud"`
	PushMethod       *PushMethodWire     `json:"pushMethod,omitempty"`
	DBMethod         *DBMethodWire       `json:"dbMethod,omitempty"`
	ModelPropertyRef string              `json:"modelPropertyRef"`
}

// MetadataWire mirrors model.Metadata.
type MetadataWire struct {
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// ValueWire mirrors model.TwinValue.
type ValueWire struct {
	Value    string       `json:"value"`
	Metadata MetadataWire `json:"metadata"`
}

// TwinWire mirrors model.Twin.
type TwinWire struct {
	PropertyName    string    `json:"propertyName"`
	ObservedDesired ValueWire `json:"observedDesired"`
	Reported        ValueWire `json:"reported"`
}

// MethodWire mirrors model.Method.
type MethodWire struct {
	Name          string   `json:"name"`
	PropertyNames []string `json:"propertyNames"`
}

// DeviceWire is the wire shape of a DeviceInstance.
type DeviceWire struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Namespace      string         `json:"namespace"`
	ModelReference string         `json:"modelReference"`
	Protocol       ProtocolWire   `json:"protocol"`
	Properties     []PropertyWire `json:"properties"`
	Twins          []TwinWire     `json:"twins"`
	Methods        []MethodWire   `json:"methods"`
	Status         string         `json:"status"`
}

// ModelPropertyWire mirrors model.ModelProperty.
type ModelPropertyWire struct {
	Name        string `json:"name"`
	DataType    string `json:"dataType"`
	AccessMode  string `json:"accessMode"`
	Minimum     string `json:"minimum"`
	Maximum     string `json:"maximum"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

// ModelWire is the wire shape of a DeviceModel.
type ModelWire struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Namespace   string              `json:"namespace"`
	Description string              `json:"description"`
	Properties  []ModelPropertyWire `json:"properties"`
}

// MapperInfo identifies this mapper process to the control plane (spec §4.G).
type MapperInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
	Protocol   string `json:"protocol"`
	Address    string `json:"address"`
	State      string `json:"state"`
}

// RegisterRequest is the MapperRegister request payload.
type RegisterRequest struct {
	WithData bool       `json:"withData"`
	Mapper   MapperInfo `json:"mapper"`
}

// RegisterResponse is the MapperRegister response payload.
type RegisterResponse struct {
	DeviceList []DeviceWire `json:"deviceList"`
	ModelList  []ModelWire  `json:"modelList"`
}

// ReportDeviceStatesRequest is a one-way status report (spec §4.G).
type ReportDeviceStatesRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	State     string `json:"state"`
}

// ReportTwinKVRequest is a one-way reported-value report (spec §4.G).
type ReportTwinKVRequest struct {
	Namespace    string `json:"namespace"`
	Name         string `json:"name"`
	PropertyName string `json:"propertyName"`
	Value        string `json:"value"`
	ValueType    string `json:"valueType"`
}

// GenericResponse acknowledges a one-way report or a CRUD mutation with no
// richer reply shape.
type GenericResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// RegisterDeviceRequest/Response implement spec §4.H RegisterDevice.
type RegisterDeviceRequest struct {
	Device DeviceWire `json:"device"`
}

type RegisterDeviceResponse struct {
	DeviceName string `json:"deviceName"`
	Namespace  string `json:"namespace"`
}

// UpdateDeviceRequest implements spec §4.H UpdateDevice.
type UpdateDeviceRequest struct {
	Device DeviceWire `json:"device"`
}

// RemoveDeviceRequest implements spec §4.H RemoveDevice.
type RemoveDeviceRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// CreateDeviceModelRequest implements spec §4.H CreateDeviceModel.
type CreateDeviceModelRequest struct {
	Model ModelWire `json:"model"`
}

// UpdateDeviceModelRequest implements spec §4.H UpdateDeviceModel.
type UpdateDeviceModelRequest struct {
	Model ModelWire `json:"model"`
}

// RemoveDeviceModelRequest implements spec §4.H RemoveDeviceModel.
type RemoveDeviceModelRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// GetDeviceRequest implements spec §4.H GetDevice. WithData selects whether
// the response includes the twin array (SPEC_FULL.md §5 item 7).
type GetDeviceRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	WithData  bool   `json:"withData"`
}

// GetDeviceResponse implements spec §4.H GetDevice.
type GetDeviceResponse struct {
	Namespace string     `json:"namespace"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Twins     []TwinWire `json:"twins,omitempty"`
}
