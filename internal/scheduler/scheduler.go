// Package scheduler periodically asks the API to dispatch due SMS notifications.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shobdo-cli/internal/model"

	"github.com/robfig/cron/v3"
)

const DefaultSpec = "0 9 * * *"

// Trigger runs the server-side scheduled send.
type Trigger interface {
	RunScheduled(ctx context.Context) (model.MessageResponse, error)
}

type Recorder interface {
	AppendActivity(ctx context.Context, a model.Activity) error
}

// Run is the outcome of one trigger.
type Run struct {
	At      time.Time
	Message string
	Err     error
}

type Scheduler struct {
	cron    *cron.Cron
	trigger Trigger
	logger  *slog.Logger
	timeout time.Duration

	recorder Recorder
	actor    string
	onRun    func(Run)
}

type Option func(*Scheduler)

func WithRecorder(r Recorder, actor string) Option {
	return func(s *Scheduler) {
		s.recorder = r
		s.actor = actor
	}
}

// WithRunHook is called after every trigger, from the cron goroutine.
func WithRunHook(fn func(Run)) Option {
	return func(s *Scheduler) { s.onRun = fn }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(trigger Trigger, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:    cron.New(),
		trigger: trigger,
		logger:  logger,
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the job on a standard 5-field cron spec (descriptors like
// "@hourly" or "@every 1h" work too) and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	_, err := s.cron.AddFunc(spec, func() {
		_, _ = s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", spec, "next", s.Next())
	return nil
}

// Stop waits for a running trigger to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Next is the next planned run, or zero when nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Timeout is the deadline applied to each trigger.
func (s *Scheduler) Timeout() time.Duration { return s.timeout }

// RunOnce triggers the scheduled send now.
func (s *Scheduler) RunOnce(ctx context.Context) (model.MessageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.trigger.RunScheduled(ctx)
	run := Run{At: time.Now(), Message: res.Message, Err: err}
	if err != nil {
		run.Message = err.Error()
		s.logger.Error("scheduled sms failed", "error", err)
	} else {
		s.logger.Info("scheduled sms triggered", "message", res.Message)
	}

	if s.recorder != nil {
		rerr := s.recorder.AppendActivity(context.WithoutCancel(ctx), model.Activity{
			TS:      run.At,
			Actor:   s.actor,
			Kind:    "sms.scheduled",
			OK:      err == nil,
			Message: run.Message,
		})
		if rerr != nil {
			s.logger.Warn("failed to record scheduled run", "error", rerr)
		}
	}
	if s.onRun != nil {
		s.onRun(run)
	}
	return res, err
}
