// Package startup brings up the service's external dependencies in order, retrying with
// fibonacci backoff.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

type Dependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Status int

const (
	StatusPending Status = iota
	StatusStarted
	StatusStopped
	StatusFailed
)

// Manager starts dependencies after the ones they depend on and stops them in reverse order.
type Manager struct {
	dependencies map[string]Dependency
	order        []string
	started      []string
	statuses     map[string]Status
	logger       ectologger.Logger
	maxAttempts  int
	backoffUnit  time.Duration
}

type Option func(*Manager)

// WithBackoffUnit scales the fibonacci wait between attempts. The default is one second.
func WithBackoffUnit(unit time.Duration) Option {
	return func(m *Manager) {
		m.backoffUnit = unit
	}
}

func NewManager(logger ectologger.Logger, maxAttempts int, opts ...Option) *Manager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	m := &Manager{
		dependencies: make(map[string]Dependency),
		statuses:     make(map[string]Status),
		logger:       logger,
		maxAttempts:  maxAttempts,
		backoffUnit:  time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Add(dependency Dependency) {
	name := dependency.GetName()
	if _, ok := m.dependencies[name]; !ok {
		m.order = append(m.order, name)
	}
	m.dependencies[name] = dependency
}

func (m *Manager) Status(name string) Status {
	return m.statuses[name]
}

// Start starts every dependency. A failed attempt is retried from the first dependency not yet
// started.
func (m *Manager) Start(ctx context.Context) error {
	var lastErr error

	a, b := 1, 1
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		m.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

		lastErr = m.startAll(ctx)
		if lastErr == nil {
			return nil
		}
		m.logger.WithError(lastErr).Errorf("Startup attempt %d failed", attempt)

		if attempt == m.maxAttempts {
			break
		}

		wait := time.Duration(a) * m.backoffUnit
		m.logger.Infof("Retrying in %s (attempt %d/%d)", wait, attempt, m.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		a, b = b, a+b
	}

	return fmt.Errorf("startup failed after %d attempts: %w", m.maxAttempts, lastErr)
}

func (m *Manager) startAll(ctx context.Context) error {
	for _, name := range m.order {
		if err := m.start(ctx, name, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) start(ctx context.Context, name string, path []string) error {
	if m.statuses[name] == StatusStarted {
		return nil
	}

	dependency, ok := m.dependencies[name]
	if !ok {
		return fmt.Errorf("unknown startup dependency '%s'", name)
	}
	for _, seen := range path {
		if seen == name {
			return fmt.Errorf("startup dependency cycle at '%s'", name)
		}
	}

	for _, required := range dependency.DependsOn() {
		if err := m.start(ctx, required, append(path, name)); err != nil {
			return err
		}
	}

	m.logger.WithField("dependency", name).Infof("Starting dependency '%s'", name)
	m.statuses[name] = StatusPending
	if err := dependency.Start(ctx); err != nil {
		m.statuses[name] = StatusFailed
		return fmt.Errorf("dependency '%s': %w", name, err)
	}
	m.statuses[name] = StatusStarted
	m.started = append(m.started, name)
	return nil
}

// Stop stops started dependencies in reverse start order. Every dependency gets a stop call;
// the first error is returned.
func (m *Manager) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(m.started) - 1; i >= 0; i-- {
		name := m.started[i]
		m.logger.WithField("dependency", name).Infof("Stopping dependency '%s'", name)
		if err := m.dependencies[name].Stop(ctx); err != nil {
			m.logger.WithError(err).WithField("dependency", name).Errorf("Failed to stop dependency '%s'", name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.statuses[name] = StatusStopped
	}
	m.started = nil
	return firstErr
}

// Func adapts plain functions to a Dependency. A nil stop is a no-op.
type Func struct {
	Name     string
	Requires []string
	OnStart  func(ctx context.Context) error
	OnStop   func(ctx context.Context) error
}

func (f Func) GetName() string {
	return f.Name
}

func (f Func) DependsOn() []string {
	return f.Requires
}

func (f Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}
