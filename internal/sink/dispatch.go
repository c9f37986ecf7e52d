// Package sink wires the recorder and publisher backends (spec §4.B/§4.C)
// behind the dispatch rules the device runtime (§4.E) needs: selecting at
// most one recorder per write from a property's DBMethod, and resolving a
// cached publisher from a property's PushMethod.
package sink

import (
	"fmt"

	"github.com/nerrad567/edge-mapper/internal/sink/publish"
	httppub "github.com/nerrad567/edge-mapper/internal/sink/publish/http"
	mqttpub "github.com/nerrad567/edge-mapper/internal/sink/publish/mqtt"
	otelpub "github.com/nerrad567/edge-mapper/internal/sink/publish/otel"
	"github.com/nerrad567/edge-mapper/internal/sink/recorder"
	"github.com/nerrad567/edge-mapper/internal/sink/recorder/influxdb2"
	"github.com/nerrad567/edge-mapper/internal/sink/recorder/mysql"
	"github.com/nerrad567/edge-mapper/internal/sink/recorder/redis"
	"github.com/nerrad567/edge-mapper/internal/sink/recorder/tdengine"

	"github.com/nerrad567/edge-mapper/internal/model"
)

// Recorders bundles one instance of each recorder backend.
type Recorders struct {
	MySQL     recorder.Recorder
	Redis     recorder.Recorder
	InfluxDB2 recorder.Recorder
	TDengine  recorder.Recorder
}

// NewRecorders constructs the default backend set.
func NewRecorders() *Recorders {
	return &Recorders{
		MySQL:     mysql.New(),
		Redis:     redis.New(),
		InfluxDB2: influxdb2.New(),
		TDengine:  tdengine.New(),
	}
}

// For returns the recorder selected by a property's DBMethod, or nil if
// none is configured / the name is unrecognized.
func (r *Recorders) For(dm *model.DBMethod) recorder.Recorder {
	if dm == nil {
		return nil
	}
	switch dm.DBMethodName {
	case model.DBMethodMySQL:
		return r.MySQL
	case model.DBMethodRedis:
		return r.Redis
	case model.DBMethodInfluxDB2:
		return r.InfluxDB2
	case model.DBMethodTDengine:
		return r.TDengine
	default:
		return nil
	}
}

// Close tears down every backend.
func (r *Recorders) Close() {
	_ = r.MySQL.Close()
	_ = r.Redis.Close()
	_ = r.InfluxDB2.Close()
	_ = r.TDengine.Close()
}

// NewPublisherCache builds a publish.Cache whose factory dispatches to the
// http/mqtt/otel packages by method name (spec §4.C).
func NewPublisherCache() *publish.Cache {
	return publish.NewCache(func(methodName, configJSON string) (publish.Publisher, error) {
		switch model.PushMethodName(methodName) {
		case model.PushMethodHTTP:
			return httppub.New(configJSON)
		case model.PushMethodMQTT:
			return mqttpub.New(configJSON)
		case model.PushMethodOTEL:
			return otelpub.New(configJSON)
		default:
			return nil, fmt.Errorf("sink: unknown push method %q", methodName)
		}
	})
}
