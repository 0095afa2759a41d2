// Package metrics defines the Prometheus metrics zdash exposes while the
// dashboard or the headless watcher is running.
//
// Every method is safe on a nil *Metrics so components can take one
// optionally.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zdash"

// Metrics holds zdash collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// APIRequestsTotal counts backend calls by HTTP method and status code.
	// Transport failures use code "error".
	APIRequestsTotal *prometheus.CounterVec
	// APIRequestDuration measures backend round trips.
	APIRequestDuration *prometheus.HistogramVec
	// PollTicksTotal counts notifier ticks, including the seeding tick.
	PollTicksTotal prometheus.Counter
	// NotificationsTotal counts notifications shown, by severity.
	NotificationsTotal *prometheus.CounterVec
	// NavigationsTotal counts section loads, by section id.
	NavigationsTotal *prometheus.CounterVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of backend requests, by method and status code.",
			},
			[]string{"method", "code"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Duration of backend requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		PollTicksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_ticks_total",
				Help:      "Total number of polling notifier ticks.",
			},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Total number of notifications presented, by severity.",
			},
			[]string{"severity"},
		),
		NavigationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "navigations_total",
				Help:      "Total number of section navigations, by section.",
			},
			[]string{"section"},
		),
	}
}

// ObserveRequest records one backend call. code 0 means the request never
// got a response.
func (m *Metrics) ObserveRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.APIRequestsTotal.WithLabelValues(method, label).Inc()
	m.APIRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) PollTick() {
	if m == nil {
		return
	}
	m.PollTicksTotal.Inc()
}

func (m *Metrics) Notification(severity string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(severity).Inc()
}

func (m *Metrics) Navigation(section string) {
	if m == nil {
		return
	}
	m.NavigationsTotal.WithLabelValues(section).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
