package metrics

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsProvider refreshes gauges owned by a component, such as row counts
// of a store.
type MetricsProvider interface {
	CollectMetrics(ctx context.Context) error
}

// Collector polls registered providers on a fixed interval and reports
// each one's health in ComponentStatus.
type Collector struct {
	interval time.Duration

	mu        sync.Mutex
	providers map[string]MetricsProvider
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewCollector returns a collector that polls every interval once started.
func NewCollector(interval time.Duration) *Collector {
	return &Collector{
		interval:  interval,
		providers: make(map[string]MetricsProvider),
	}
}

// Register adds or replaces the provider reported under name.
func (c *Collector) Register(name string, provider MetricsProvider) {
	c.mu.Lock()
	c.providers[name] = provider
	c.mu.Unlock()
}

// Start records build info, polls every provider once and keeps polling in
// the background until Stop or ctx is done. Starting a running collector
// does nothing.
func (c *Collector) Start(ctx context.Context, version string) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
	c.poll(ctx)

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.poll(ctx)
			}
		}
	}()
	return nil
}

// Stop ends background polling and waits for an in-flight poll to finish.
func (c *Collector) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Collector) poll(ctx context.Context) {
	c.mu.Lock()
	names := make([]string, 0, len(c.providers))
	providers := make([]MetricsProvider, 0, len(c.providers))
	for name, p := range c.providers {
		names = append(names, name)
		providers = append(providers, p)
	}
	c.mu.Unlock()

	for i, p := range providers {
		healthy := 1.0
		if err := p.CollectMetrics(ctx); err != nil {
			healthy = 0
		}
		ComponentStatus.WithLabelValues(names[i]).Set(healthy)
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records a remote API request. status is the HTTP status
// code, or 0 when the request did not complete.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusClass(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordContentBytes records content bytes sent ("up") or received ("down").
func RecordContentBytes(direction string, n int) {
	ContentBytesTotal.WithLabelValues(direction).Add(float64(n))
}

// RecordExport records a finished export.
func RecordExport(format string, elements, failures int, duration time.Duration, err error) {
	outcome := "success"
	switch {
	case err != nil && elements == 0 && failures == 0:
		outcome = "error"
	case failures > 0 || err != nil:
		outcome = "partial"
	}

	ExportsTotal.WithLabelValues(format, outcome).Inc()
	ExportElementsTotal.Add(float64(elements))
	ExportFailuresTotal.Add(float64(failures))
	ExportDuration.Observe(duration.Seconds())
}

// RecordPushFile records the outcome of pushing one file.
func RecordPushFile(outcome string) {
	PushFilesTotal.WithLabelValues(outcome).Inc()
}

// RecordWatcherEvent records a filesystem event.
func RecordWatcherEvent(eventType string) {
	WatcherEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordServerRequest records a request served by the development server.
func RecordServerRequest(route string, status int) {
	ServerRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// UpdateServerMetrics updates the development server storage gauges.
func UpdateServerMetrics(datasets, elements int) {
	ServerDatasetsTotal.Set(float64(datasets))
	ServerElementsTotal.Set(float64(elements))
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
