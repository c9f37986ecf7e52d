// Package mqtt implements the MQTT push publisher (spec §4.C), adapted
// from the paho.mqtt.golang connection-management idiom in
// internal/infrastructure/mqtt/client.go, with the connect-wait and topic
// shape from mqtt_publisher.c.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/edge-mapper/internal/sink/publish"
)

// Config is the JSON shape of an mqtt pushMethod config.
type Config struct {
	BrokerURL    string `json:"brokerUrl"`
	Port         int    `json:"port"`
	ClientID     string `json:"clientId"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	TopicPrefix  string `json:"topicPrefix"`
	QoS          *int   `json:"qos"`
	KeepAliveSec int    `json:"keepAlive"`
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 1883
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "kubeedge/device"
	}
	if c.KeepAliveSec == 0 {
		c.KeepAliveSec = 60
	}
	if c.ClientID == "" {
		c.ClientID = fmt.Sprintf("edge-mapper-%d", time.Now().UnixNano())
	}
	if c.QoS == nil {
		q := 1
		c.QoS = &q
	}
}

func (c Config) qosByte() byte {
	if c.QoS == nil {
		return 1
	}
	return byte(*c.QoS)
}

// Publisher is the MQTT-backed publish.Publisher implementation.
type Publisher struct {
	cfg    Config
	client pahomqtt.Client
	logger publish.Logger
}

// New builds a Publisher from a JSON-encoded Config. The broker connection
// is established lazily on the first Publish call, mirroring
// mqtt_publisher.c's mqtt_ensure_connected.
func New(configJSON string) (*Publisher, error) {
	var cfg Config
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, fmt.Errorf("mqtt publisher: decode config: %w", err)
		}
	}
	cfg.applyDefaults()

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.BrokerURL, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(time.Duration(cfg.KeepAliveSec) * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	return &Publisher{
		cfg:    cfg,
		client: pahomqtt.NewClient(opts),
		logger: publish.NoopLogger,
	}, nil
}

// SetLogger overrides the default no-op logger.
func (p *Publisher) SetLogger(l publish.Logger) { p.logger = l }

// ensureConnected polls for up to ~5s (50 x 100ms) after issuing Connect,
// reproducing mqtt_publisher.c's mqtt_ensure_connected polling loop.
func (p *Publisher) ensureConnected() bool {
	if p.client.IsConnectionOpen() {
		return true
	}
	token := p.client.Connect()
	for i := 0; i < 50; i++ {
		if token.WaitTimeout(100 * time.Millisecond) {
			break
		}
	}
	return p.client.IsConnectionOpen()
}

// Publish implements publish.Publisher.
func (p *Publisher) Publish(payload publish.Payload) bool {
	if !p.ensureConnected() {
		p.logger.Error("mqtt publisher: not connected", "broker", p.cfg.BrokerURL)
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("mqtt publisher: marshal payload", "error", err)
		return false
	}

	topic := fmt.Sprintf("%s/%s/%s", p.cfg.TopicPrefix, payload.DeviceName, payload.PropertyName)
	token := p.client.Publish(topic, p.cfg.qosByte(), false, body)
	if !token.WaitTimeout(5 * time.Second) {
		p.logger.Error("mqtt publisher: publish timeout", "topic", topic)
		return false
	}
	if err := token.Error(); err != nil {
		p.logger.Error("mqtt publisher: publish failed", "topic", topic, "error", err)
		return false
	}
	return true
}

// Close implements publish.Publisher.
func (p *Publisher) Close() error {
	if p.client.IsConnectionOpen() {
		p.client.Disconnect(250)
	}
	return nil
}
