package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	accesscore "github.com/tenantsec/accesscore"
)

type fakeSource struct {
	snapshot accesscore.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() accesscore.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: accesscore.MetricsSnapshot{
			Counters:   map[accesscore.MetricID]uint64{},
			Histograms: map[accesscore.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: accesscore.MetricsSnapshot{
			Counters: map[accesscore.MetricID]uint64{
				accesscore.MetricAuthorizeAllow: 7,
			},
			Histograms: map[accesscore.MetricID][]uint64{
				accesscore.MetricAuthorizeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "accesscore_authorize_allow_total 7") {
		t.Fatalf("expected authorize_allow counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "accesscore_authorize_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "accesscore_authorize_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "accesscore_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: accesscore.MetricsSnapshot{
			Counters:   map[accesscore.MetricID]uint64{accesscore.MetricAuthorizeAllow: 1},
			Histograms: map[accesscore.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: accesscore.MetricsSnapshot{
			Counters: map[accesscore.MetricID]uint64{
				accesscore.MetricAuthorizeAllow:       1000,
				accesscore.MetricAuthorizeDeny:        40,
				accesscore.MetricRefreshRotated:       800,
				accesscore.MetricReplayDetected:       10,
				accesscore.MetricSessionCreated:       800,
				accesscore.MetricSessionRevoked:       20,
				accesscore.MetricResetFailure:         3,
				accesscore.MetricLoginLockedOut:       12,
				accesscore.MetricMFAVerified:          500,
				accesscore.MetricMFAFailure:           25,
				accesscore.MetricLockoutApplied:       4,
				accesscore.MetricSessionRevokedAll:    9,
				accesscore.MetricLoginAllowed:         2000,
				accesscore.MetricResetConsumed:        60,
				accesscore.MetricBootstrapInitialized: 1,
			},
			Histograms: map[accesscore.MetricID][]uint64{
				accesscore.MetricAuthorizeLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
