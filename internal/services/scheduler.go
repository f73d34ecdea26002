package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type cycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Scheduler runs check cycles back to back with a fixed interval between
// cycle starts. Cycles never overlap: the next one starts only after the
// previous returned, and a cycle running longer than the interval stretches
// the interval instead of piling up.
type Scheduler struct {
	runner        cycleRunner
	checkInterval time.Duration
}

func NewScheduler(runner cycleRunner, checkInterval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, checkInterval: checkInterval}
}

func (s *Scheduler) Run(ctx context.Context) {
	for {
		startTime := time.Now()
		log.Infof("running check cycle at %v", startTime)

		if err := s.runner.RunCycle(ctx); err != nil {
			log.Errorf("check cycle ended with error: %v", err)
		}
		if ctx.Err() != nil {
			return
		}

		executionTime := time.Since(startTime)

		var sleepTime time.Duration
		if executionTime <= s.checkInterval {
			sleepTime = s.checkInterval - executionTime
		} else {
			s.checkInterval = executionTime + time.Minute
			log.Infof("check interval extended to %v", s.checkInterval)
		}

		log.Infof("next check cycle time is %v", time.Now().Add(sleepTime))
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepTime):
		}
	}
}
