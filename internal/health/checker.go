package health

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker pings every registered dependency on readiness.
type Checker struct {
	deps   map[string]Pinger
	names  []string
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

// NewChecker creates a checker over deps (name -> pinger) and registers
// its health_check_up gauge on reg.
func NewChecker(deps map[string]Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "accounts",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Checker{
		deps:   deps,
		names:  names,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness reports "up" while the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness is "down" when any dependency fails its ping.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult, len(c.names)),
	}

	for _, name := range c.names {
		if err := c.deps[name].Ping(checkCtx); err != nil {
			c.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			result.Status = "down"
			result.Checks[name] = CheckResult{Status: "down", Error: err.Error()}
			c.gauge.WithLabelValues(name).Set(0)
			continue
		}
		result.Checks[name] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(name).Set(1)
	}

	return result
}
