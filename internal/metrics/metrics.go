package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/account-service/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "accounts"

var (
	// Usecase outcomes

	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts, by outcome.",
	}, []string{"outcome"})

	ActivationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activations_total",
		Help:      "Activation attempts, by outcome.",
	}, []string{"outcome"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})

	PasswordHashDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Time spent hashing a password.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// Store state, refreshed by the stats collector

	AccountsByState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "accounts",
		Help:      "Number of accounts, by verification state.",
	}, []string{"state"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		ActivationsTotal,
		LoginsTotal,
		PasswordHashDuration,
		AccountsByState,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on a
// port separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", probe(checker.Liveness))
	mux.HandleFunc("/readyz", probe(checker.Readiness))
	return &http.Server{Addr: addr, Handler: mux}
}

func probe(check func(ctx context.Context) health.HealthResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := check(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
	}
}
