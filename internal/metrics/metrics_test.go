package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestMetricsHandler(t *testing.T) {
	RecordAPIRequest("GET", "elements", 200, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "mldata_api_requests_total") {
		t.Error("response should contain mldata_api_requests_total")
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "error"},
		{200, "2xx"},
		{204, "2xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		if got := statusClass(tt.status); got != tt.want {
			t.Errorf("statusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestRecordExport(t *testing.T) {
	// Outcomes are derived without panicking for every combination.
	RecordExport("json", 3, 0, time.Second, nil)
	RecordExport("csv", 2, 1, time.Second, errors.New("partial"))
	RecordExport("json", 0, 0, time.Millisecond, errors.New("failed"))
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) CollectMetrics(ctx context.Context) error {
	p.calls.Add(1)
	return p.err
}

func TestCollector_CollectsOnStart(t *testing.T) {
	c := NewCollector(time.Hour)
	healthy := &countingProvider{}
	broken := &countingProvider{err: errors.New("db closed")}
	c.Register("healthy", healthy)
	c.Register("broken", broken)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Start(ctx, "test"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Stop()

	if healthy.calls.Load() != 1 || broken.calls.Load() != 1 {
		t.Errorf("expected one initial collection per provider, got %d and %d",
			healthy.calls.Load(), broken.calls.Load())
	}

	// Second Start is a no-op.
	if err := c.Start(ctx, "test"); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if healthy.calls.Load() != 1 {
		t.Errorf("second Start should not collect again, got %d calls", healthy.calls.Load())
	}
}
