package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue は指定メトリクスのカウンタ値を取り出すヘルパー。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordBackendStatus_IncrementsPerStatusCode はステータスコード別カウンタを検証する。
func TestRecordBackendStatus_IncrementsPerStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBackendStatus(200)
	c.RecordBackendStatus(200)
	c.RecordBackendStatus(404)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "shopgate_backend_status_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled metrics, got %d", len(mf.GetMetric()))
		}
	}
	if !found {
		t.Error("shopgate_backend_status_total metric not found")
	}
}

// TestRecordErrorKind_IncrementsCounter は分類済みエラー種別カウンタを検証する。
func TestRecordErrorKind_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordErrorKind("not_found")
	c.RecordErrorKind("not_found")
	c.RecordErrorKind("server_error")

	if got := counterValue(t, reg, "shopgate_backend_error_total"); got != 3 {
		t.Errorf("backend_error_total = %v, want 3", got)
	}
}

// TestRecordCheckoutOutcome_IncrementsCounter はチェックアウト帰結カウンタを検証する。
func TestRecordCheckoutOutcome_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCheckoutOutcome("completed")
	c.RecordCheckoutOutcome("failed_create_order")

	if got := counterValue(t, reg, "shopgate_checkout_outcome_total"); got != 2 {
		t.Errorf("checkout_outcome_total = %v, want 2", got)
	}
}

// TestRecordGuardDenial_IncrementsCounter はガード拒否カウンタを検証する。
func TestRecordGuardDenial_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGuardDenial()
	c.RecordGuardDenial()

	if got := counterValue(t, reg, "shopgate_guard_denial_total"); got != 2 {
		t.Errorf("guard_denial_total = %v, want 2", got)
	}
}

// TestRecordBackendLatency_ObservesHistogram はレイテンシヒストグラムを検証する。
func TestRecordBackendLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBackendLatency(25 * time.Millisecond)
	c.RecordBackendLatency(250 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "shopgate_backend_latency_seconds" {
			continue
		}
		found = true
		if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
			t.Errorf("sample count = %d, want 2", count)
		}
	}
	if !found {
		t.Error("shopgate_backend_latency_seconds metric not found")
	}
}

// TestHandler_ServesRegisteredMetrics はスクレイプエンドポイントを検証する。
func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordGuardDenial()

	server := httptest.NewServer(Handler(reg))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "shopgate_guard_denial_total 1") {
		t.Errorf("scrape output does not contain guard denial counter:\n%s", body)
	}
}
