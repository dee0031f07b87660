package utils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	at         time.Time
	olderThan  time.Duration
	started    int
	completed  int
	reminded   int
	advanceErr error
	remindErr  error
}

func (f *fakeRunner) AdvanceLifecycle(_ context.Context, at time.Time) (int, int, error) {
	f.at = at
	return f.started, f.completed, f.advanceErr
}

func (f *fakeRunner) RemindUnclaimed(_ context.Context, olderThan time.Duration) (int, error) {
	f.olderThan = olderThan
	return f.reminded, f.remindErr
}

func TestRunLifecyclePass(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)
	r := &fakeRunner{started: 2, completed: 1}
	started, completed := RunLifecyclePass(context.Background(), r, now)
	assert.Equal(t, 2, started)
	assert.Equal(t, 1, completed)
	assert.Equal(t, now, r.at)

	r = &fakeRunner{started: 1, advanceErr: errors.New("connection reset")}
	started, completed = RunLifecyclePass(context.Background(), r, now)
	assert.Equal(t, 1, started)
	assert.Equal(t, 0, completed)
}

func TestRunUnclaimedReminder(t *testing.T) {
	r := &fakeRunner{reminded: 4}
	assert.Equal(t, 4, RunUnclaimedReminder(context.Background(), r, 72*time.Hour))
	assert.Equal(t, 72*time.Hour, r.olderThan)

	r = &fakeRunner{reminded: 4, remindErr: errors.New("timeout")}
	assert.Equal(t, 0, RunUnclaimedReminder(context.Background(), r, time.Hour))
}

func TestInitializeLifecycleScheduler(t *testing.T) {
	c := InitializeLifecycleScheduler(&fakeRunner{}, time.Hour)
	defer c.Stop()
	assert.Len(t, c.Entries(), 2)
}

type everyMillisecond struct{}

func (everyMillisecond) Next(t time.Time) time.Time { return t.Add(time.Millisecond) }

func TestStopLifecycleSchedulerWaitsForRunningPass(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	var once sync.Once
	c := cron.New()
	c.Schedule(everyMillisecond{}, cron.FuncJob(func() {
		once.Do(func() { close(started) })
		<-release
	}))
	c.Start()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "job never ran")
	}

	assert.False(t, StopLifecycleScheduler(c, 20*time.Millisecond))
	close(release)
	assert.True(t, StopLifecycleScheduler(c, 5*time.Second))
}
