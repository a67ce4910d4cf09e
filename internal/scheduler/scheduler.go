package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Warmer interface {
	Warm(ctx context.Context, cities []string) error
}

// Scheduler periodically pre-resolves a fixed list of cities so that the
// first visitor asking for one of them does not wait on the geocoder.
type Scheduler struct {
	warmer   Warmer
	logger   *zap.Logger
	cron     *cron.Cron
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	cities  []string
	running bool
	lastRun time.Time
	lastErr error
	entryID cron.EntryID
}

func NewScheduler(warmer Warmer, cities []string, schedule string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		warmer:   warmer,
		logger:   logger,
		schedule: schedule,
		cities:   cities,
		timeout:  2 * time.Minute,
	}

	cronLog := cronLogger{logger.Sugar()}
	s.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	id, err := s.cron.AddFunc(schedule, s.runWarm)
	if err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	s.entryID = id

	return s, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(s.entryID).Next))

	// Run immediately on start
	go s.runWarm()
}

func (s *Scheduler) runWarm() {
	s.mu.Lock()
	cities := append([]string(nil), s.cities...)
	s.mu.Unlock()

	if len(cities) == 0 {
		return
	}

	startTime := time.Now()
	s.logger.Info("Starting geocode cache warm-up", zap.Strings("cities", cities))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.warmer.Warm(ctx, cities)

	s.mu.Lock()
	s.lastRun = startTime
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Geocode cache warm-up finished with errors",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Info("Geocode cache warm-up completed",
		zap.Duration("duration", time.Since(startTime)))
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering cache warm-up")
	go s.runWarm()
}

func (s *Scheduler) UpdateCities(cities []string) {
	s.mu.Lock()
	s.cities = cities
	s.mu.Unlock()

	s.logger.Info("Scheduler cities updated", zap.Strings("cities", cities))
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":  s.running,
		"schedule": s.schedule,
		"last_run": s.lastRun,
		"next_run": s.cron.Entry(s.entryID).Next,
		"cities":   s.cities,
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
