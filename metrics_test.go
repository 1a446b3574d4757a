package kiturami

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorDropsStaleDeviceGauges(t *testing.T) {
	var fail atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			switch r.URL.Path {
			case "/member/login":
				w.Header().Set("Content-Type", "text/json")
				_, _ = io.WriteString(w, `{}`)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Content-Type", "text/json")
		switch r.URL.Path {
		case "/member/getMemberDeviceList":
			_, _ = io.WriteString(w, `{"memberDeviceList":[{"nodeId":"n1","parentId":"1","alias":"Boiler"}]}`)
		case "/device/isAliveNormal":
			_, _ = io.WriteString(w, `{"alive":"Y"}`)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	collector := NewMetricsCollector(NewAPI(newTestClient(t, server.URL)))

	if got := testutil.CollectAndCount(collector, "kiturami_device_alive"); got != 1 {
		t.Fatalf("expected 1 device gauge after a healthy scrape, got %d", got)
	}
	if got := testutil.ToFloat64(collector.success); got != 1 {
		t.Fatalf("expected scrape success 1, got %v", got)
	}

	// The vendor goes away; liveness from the previous scrape must not
	// be re-exported as current.
	fail.Store(true)

	if got := testutil.CollectAndCount(collector, "kiturami_device_alive"); got != 0 {
		t.Fatalf("expected no device gauges after a failed scrape, got %d", got)
	}
	if got := testutil.ToFloat64(collector.success); got != 0 {
		t.Fatalf("expected scrape success 0, got %v", got)
	}
}
