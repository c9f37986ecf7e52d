package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollector_ExposesCounters(t *testing.T) {
	c := New()
	c.RegisterTick()
	c.RegisterSinkFailure("redis")
	c.RegisterRPCCall("GetDevice", "ok")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"edge_mapper_reconcile_ticks_total",
		"edge_mapper_sink_failures_total",
		"edge_mapper_rpc_calls_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}
