// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for the notification relay and the REST client.
package metrics

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messages        int64
	dropped         int64
	malformed       int64
	handlerPanics   int64
	dials           int64
	dialFailures    int64
	reconnects      int64
	connected       int64
	requests        int64
	requestFailures int64
)

const counterInc int64 = 1

var (
	promMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_relay_messages_total",
			Help: "Notification messages dispatched to at least one handler",
		},
		[]string{"type"},
	)
	promDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_relay_messages_dropped_total",
			Help: "Notification messages with no registered channel",
		},
	)
	promMalformed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_relay_messages_malformed_total",
			Help: "Notification payloads that were not valid JSON envelopes",
		},
	)
	promHandlerPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_relay_handler_panics_total",
			Help: "Handler panics recovered by the relay",
		},
	)
	promDials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_relay_dials_total",
			Help: "WebSocket dial attempts",
		},
		[]string{"status"},
	)
	promReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_relay_reconnects_scheduled_total",
			Help: "Reconnects scheduled after the socket closed",
		},
	)
	promConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_relay_connected",
			Help: "1 while the notification socket is open",
		},
	)
	promRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_api_requests_total",
			Help: "REST requests by method and status code",
		},
		[]string{"method", "code"},
	)
	promRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_api_request_duration_seconds",
			Help:    "Duration of REST requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(
		promMessages,
		promDropped,
		promMalformed,
		promHandlerPanics,
		promDials,
		promReconnects,
		promConnected,
		promRequests,
		promRequestDuration,
	)
}

// IncMessage counts a message dispatched on the given channel.
func IncMessage(eventType string) {
	atomic.AddInt64(&messages, counterInc)
	promMessages.WithLabelValues(eventType).Inc()
}

// IncDropped counts a message whose type had no subscribers.
func IncDropped() {
	atomic.AddInt64(&dropped, counterInc)
	promDropped.Inc()
}

// IncMalformed counts a payload that could not be decoded.
func IncMalformed() {
	atomic.AddInt64(&malformed, counterInc)
	promMalformed.Inc()
}

// IncHandlerPanic counts a recovered handler panic.
func IncHandlerPanic() {
	atomic.AddInt64(&handlerPanics, counterInc)
	promHandlerPanics.Inc()
}

// IncDial counts a dial attempt and its outcome.
func IncDial(ok bool) {
	atomic.AddInt64(&dials, counterInc)
	status := "success"
	if !ok {
		atomic.AddInt64(&dialFailures, counterInc)
		status = "failure"
	}
	promDials.WithLabelValues(status).Inc()
}

// IncReconnect counts a scheduled reconnect.
func IncReconnect() {
	atomic.AddInt64(&reconnects, counterInc)
	promReconnects.Inc()
}

// SetConnected records whether the notification socket is open.
func SetConnected(open bool) {
	var v int64
	if open {
		v = 1
	}
	atomic.StoreInt64(&connected, v)
	promConnected.Set(float64(v))
}

// ObserveRequest records a finished REST request. A zero code means the
// request never produced a response.
func ObserveRequest(method string, code int, seconds float64) {
	atomic.AddInt64(&requests, counterInc)
	if code == 0 || code >= 400 {
		atomic.AddInt64(&requestFailures, counterInc)
	}
	promRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	promRequestDuration.Observe(seconds)
}

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	Messages        int64 `json:"messages"`
	Dropped         int64 `json:"dropped"`
	Malformed       int64 `json:"malformed"`
	HandlerPanics   int64 `json:"handler_panics"`
	Dials           int64 `json:"dials"`
	DialFailures    int64 `json:"dial_failures"`
	Reconnects      int64 `json:"reconnects"`
	Connected       bool  `json:"connected"`
	Requests        int64 `json:"requests"`
	RequestFailures int64 `json:"request_failures"`
}

// GetSnapshot returns a StatsSnapshot with the current counter values.
func GetSnapshot() StatsSnapshot {
	return StatsSnapshot{
		Messages:        atomic.LoadInt64(&messages),
		Dropped:         atomic.LoadInt64(&dropped),
		Malformed:       atomic.LoadInt64(&malformed),
		HandlerPanics:   atomic.LoadInt64(&handlerPanics),
		Dials:           atomic.LoadInt64(&dials),
		DialFailures:    atomic.LoadInt64(&dialFailures),
		Reconnects:      atomic.LoadInt64(&reconnects),
		Connected:       atomic.LoadInt64(&connected) == 1,
		Requests:        atomic.LoadInt64(&requests),
		RequestFailures: atomic.LoadInt64(&requestFailures),
	}
}

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler returns an HTTP handler that serves the current metrics as
// a JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
