package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(maxAttempts int) *Manager {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewManager(logger, maxAttempts, WithBackoffUnit(time.Millisecond))
}

func TestStartRespectsDependencies(t *testing.T) {
	var events []string
	record := func(event string) func(context.Context) error {
		return func(context.Context) error {
			events = append(events, event)
			return nil
		}
	}

	m := newTestManager(1)
	m.Add(Func{Name: "migrations", Requires: []string{"database"}, OnStart: record("start migrations"), OnStop: record("stop migrations")})
	m.Add(Func{Name: "database", OnStart: record("start database"), OnStop: record("stop database")})
	m.Add(Func{Name: "kafka", OnStart: record("start kafka")})

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, []string{"start database", "start migrations", "start kafka"}, events)
	assert.Equal(t, StatusStarted, m.Status("migrations"))

	events = nil
	require.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, []string{"stop migrations", "stop database"}, events)
	assert.Equal(t, StatusStopped, m.Status("database"))
}

func TestStartRetriesFailedDependency(t *testing.T) {
	dbStarts, pingStarts := 0, 0
	m := newTestManager(3)
	m.Add(Func{Name: "database", OnStart: func(context.Context) error {
		dbStarts++
		return nil
	}})
	m.Add(Func{Name: "ping", Requires: []string{"database"}, OnStart: func(context.Context) error {
		pingStarts++
		if pingStarts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}})

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, 1, dbStarts, "started dependencies are not restarted")
	assert.Equal(t, 3, pingStarts)
}

func TestStartGivesUp(t *testing.T) {
	boom := errors.New("boom")
	m := newTestManager(2)
	m.Add(Func{Name: "database", OnStart: func(context.Context) error { return boom }})

	err := m.Start(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, StatusFailed, m.Status("database"))
}

func TestStartUnknownDependency(t *testing.T) {
	m := newTestManager(1)
	m.Add(Func{Name: "migrations", Requires: []string{"database"}})

	err := m.Start(context.Background())

	assert.ErrorContains(t, err, "unknown startup dependency 'database'")
}

func TestStartDetectsCycle(t *testing.T) {
	m := newTestManager(1)
	m.Add(Func{Name: "a", Requires: []string{"b"}})
	m.Add(Func{Name: "b", Requires: []string{"a"}})

	assert.ErrorContains(t, m.Start(context.Background()), "cycle")
}

func TestStartStopsOnCanceledContext(t *testing.T) {
	m := NewManager(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}), 5, WithBackoffUnit(time.Hour))
	m.Add(Func{Name: "database", OnStart: func(context.Context) error { return errors.New("down") }})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Start(ctx), context.Canceled)
}
