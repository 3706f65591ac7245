package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/storelaunch/internal/activity"
	"github.com/mark3labs/storelaunch/internal/config"
	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/logger"
	"github.com/mark3labs/storelaunch/internal/wizard"
)

var rootFlags struct {
	endpoint string
	domain   string
	logLevel string
	logFile  string
	noEvents bool
}

// loadConfig loads the layered config and applies the root flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlags.endpoint != "" {
		cfg.Endpoint = rootFlags.endpoint
	}
	if rootFlags.domain != "" {
		cfg.Domain = rootFlags.domain
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFile != "" {
		cfg.LogFile = rootFlags.logFile
	}
	if rootFlags.noEvents {
		cfg.Events = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// stack is everything one wizard session needs, wired from config.
type stack struct {
	cfg     *config.Config
	store   *activity.Store // nil when events are disabled
	tracker *deploy.Tracker
	ctrl    *wizard.Controller
	detach  func()
}

func openStack(ctx context.Context, opts ...wizard.Option) (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	s := &stack{cfg: cfg}
	trackerOpts := deploy.Options{
		Domain:       cfg.Domain,
		TickInterval: cfg.TickInterval,
		GraceDelay:   cfg.GraceDelay,
		Countdown:    cfg.Countdown,
	}
	if cfg.Events {
		s.store, err = activity.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open activity log: %w", err)
		}
		trackerOpts.Sink = s.store.Recorder()
	}

	s.tracker = deploy.NewTracker(deploy.NewHTTPClient(cfg.Endpoint, cfg.RequestTimeout), trackerOpts)
	s.ctrl = wizard.New(s.tracker, opts...)
	if s.store != nil {
		s.detach = s.ctrl.Subscribe(stepRecorder(ctx, s.store))
	}
	logger.Info("storelaunch ready (endpoint %s, domain %s)", cfg.Endpoint, cfg.Domain)
	return s, nil
}

// stepRecorder records a visit in the activity log whenever the step changes.
func stepRecorder(ctx context.Context, store *activity.Store) func(wizard.View) {
	last := wizard.Step(0)
	return func(v wizard.View) {
		if v.Step == last {
			return
		}
		last = v.Step
		if err := store.RecordStep(ctx, v.Form.Subdomain, int(v.Step), v.Step.Title()); err != nil {
			logger.Warn("failed to record step %d: %v", v.Step, err)
		}
	}
}

func (s *stack) Close() {
	if s.detach != nil {
		s.detach()
	}
	s.ctrl.Close()
	s.tracker.Close()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warn("failed to close activity log: %v", err)
		}
	}
}
