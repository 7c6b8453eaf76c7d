package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// accountCounter is satisfied by repository.AccountRepository.
type accountCounter interface {
	CountByVerified(ctx context.Context) (verified, unverified int64, err error)
}

// StatsCollector refreshes the verified/unverified account gauge on a cron
// schedule.
type StatsCollector struct {
	repo     accountCounter
	gauge    *prometheus.GaugeVec
	schedule cron.Schedule
	logger   *slog.Logger
	now      func() time.Time
}

// NewStatsCollector parses spec with cron.ParseStandard, so both five-field
// expressions and descriptors like "@every 1m" are accepted.
func NewStatsCollector(repo accountCounter, gauge *prometheus.GaugeVec, spec string, logger *slog.Logger) (*StatsCollector, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse stats schedule %q: %w", spec, err)
	}
	return &StatsCollector{
		repo:     repo,
		gauge:    gauge,
		schedule: schedule,
		logger:   logger.With("component", "stats_collector"),
		now:      time.Now,
	}, nil
}

// Start collects once immediately, then on every schedule activation until
// ctx is cancelled.
func (s *StatsCollector) Start(ctx context.Context) {
	s.logger.Info("stats collector started")
	s.collect(ctx)

	for {
		now := s.now()
		timer := time.NewTimer(s.schedule.Next(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("stats collector shut down")
			return
		case <-timer.C:
			s.collect(ctx)
		}
	}
}

func (s *StatsCollector) collect(ctx context.Context) {
	verified, unverified, err := s.repo.CountByVerified(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "count accounts", "error", err)
		return
	}
	s.gauge.WithLabelValues("verified").Set(float64(verified))
	s.gauge.WithLabelValues("unverified").Set(float64(unverified))
}
