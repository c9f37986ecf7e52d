package wire

import (
	"encoding/json"
	"strconv"

	"github.com/nerrad567/edge-mapper/internal/model"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

// pushMethodFromWire lowers a wire PushMethod into the JSON config shape
// the matching publisher package expects (spec §4.J), tagged with the
// resolved method name.
func pushMethodFromWire(w *rpcapi.PushMethodWire) *model.PushMethod {
	if w == nil {
		return nil
	}
	switch {
	case w.MQTT != nil:
		port, err := strconv.Atoi(w.MQTT.Port)
		if err != nil || port == 0 {
			port = 1883
		}
		keepAlive := w.MQTT.KeepAliveSec
		if keepAlive == 0 {
			keepAlive = 60
		}
		cfg := map[string]any{
			"brokerUrl":   w.MQTT.BrokerURL,
			"port":        port,
			"topicPrefix": w.MQTT.TopicPrefix,
			"qos":         w.MQTT.QoS,
			"keepAlive":   keepAlive,
			"clientId":    w.MQTT.ClientID,
		}
		return &model.PushMethod{MethodName: model.PushMethodMQTT, MethodConfig: mustJSON(cfg)}

	case w.HTTP != nil:
		endpoint := "http://" + w.HTTP.Host
		if w.HTTP.Port != "" {
			endpoint += ":" + w.HTTP.Port
		}
		endpoint += w.HTTP.Path
		cfg := map[string]any{
			"endpoint":   endpoint,
			"method":     "POST",
			"timeout_ms": w.HTTP.Timeout,
		}
		return &model.PushMethod{MethodName: model.PushMethodHTTP, MethodConfig: mustJSON(cfg)}

	case w.OTEL != nil:
		cfg := map[string]any{"endpointUrl": w.OTEL.EndpointURL}
		return &model.PushMethod{MethodName: model.PushMethodOTEL, MethodConfig: mustJSON(cfg)}

	default:
		return &model.PushMethod{MethodName: model.PushMethodUnknown}
	}
}

// dbMethodFromWire lowers a wire DBMethod into a JSON config string tagged
// with the resolved backend name (spec §4.J).
func dbMethodFromWire(w *rpcapi.DBMethodWire) *model.DBMethod {
	if w == nil {
		return nil
	}
	switch {
	case w.MySQL != nil:
		return &model.DBMethod{DBMethodName: model.DBMethodMySQL, DBConfig: mustJSON(w.MySQL)}
	case w.Redis != nil:
		return &model.DBMethod{DBMethodName: model.DBMethodRedis, DBConfig: mustJSON(w.Redis)}
	case w.InfluxDB2 != nil:
		return &model.DBMethod{DBMethodName: model.DBMethodInfluxDB2, DBConfig: mustJSON(w.InfluxDB2)}
	case w.TDengine != nil:
		return &model.DBMethod{DBMethodName: model.DBMethodTDengine, DBConfig: mustJSON(w.TDengine)}
	default:
		return &model.DBMethod{DBMethodName: model.DBMethodUnknown}
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
