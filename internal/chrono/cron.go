package chrono

import (
	"animfilms-backend/internal/telemetry"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// IntervalAPI is the interface that anything depending on things to happen on an interval should use.
type IntervalAPI interface {
	// Every runs callback once immediately and then every interval, a run never starts
	// while the previous one is still going.
	Every(interval time.Duration, callback func()) error
	Stop()
}

// StandardCron is the standard implementation of IntervalAPI using `github.com/robfig/cron/v3`
type StandardCron struct {
	cron   *cron.Cron
	logger cronLogger
	// eager runs are started outside of the cron scheduler
	eager *sync.WaitGroup
}

// NewStandardCron is the constructor of StandardCron.
func NewStandardCron(tel telemetry.API) StandardCron {
	logger := cronLogger{tel: tel}
	cronner := cron.New(cron.WithLogger(logger))
	cronner.Start()

	return StandardCron{
		cron:   cronner,
		logger: logger,
		eager:  &sync.WaitGroup{},
	}
}

func (s StandardCron) Every(interval time.Duration, callback func()) error {
	if interval < time.Second {
		return fmt.Errorf("interval must be at least a second, got %s", interval)
	}

	// the eager run and the scheduled runs share the same wrapped job so they
	// share the same "still running" lock.
	job := cron.NewChain(
		cron.Recover(s.logger),
		cron.SkipIfStillRunning(s.logger),
	).Then(cron.FuncJob(callback))
	s.cron.Schedule(cron.Every(interval), job)

	s.eager.Add(1)
	go func() {
		defer s.eager.Done()
		job.Run()
	}()

	return nil
}

// Stop stops scheduling new runs and waits for running ones to complete.
func (s StandardCron) Stop() {
	<-s.cron.Stop().Done()
	s.eager.Wait()
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, fmt.Sprintf("%v: %v", keysAndValues[i], keysAndValues[i+1]))
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(
		fmt.Sprintf("cron: %s", msg),
		l.formatParams(keysAndValues)...,
	)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(
		"cron",
		append([]any{fmt.Errorf("%s: %w", msg, err)}, l.formatParams(keysAndValues)...)...,
	)
}
