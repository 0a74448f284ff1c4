package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweeper struct{ at []time.Time }

func (f *fakeSweeper) SweepMissedCalls(_ context.Context, now time.Time) (int, error) {
	f.at = append(f.at, now)
	return 2, nil
}

type fakeReminders struct{ err error }

func (f *fakeReminders) SendDue(context.Context, time.Time) (int, error) { return 0, f.err }

type fakeBackfiller struct{ maxAttempts, limit int }

func (f *fakeBackfiller) Backfill(_ context.Context, maxAttempts, limit int) (int, error) {
	f.maxAttempts, f.limit = maxAttempts, limit
	return 1, nil
}

func TestStandardRegistersConfiguredJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Standard(Config{SweepSchedule: "@every 1m", ReminderSchedule: ""}, &fakeSweeper{}, &fakeReminders{}, &fakeBackfiller{})
	assert.Equal(t, []string{SweepJob}, s.Names())

	s = NewScheduler(zap.NewNop())
	s.Standard(Config{SweepSchedule: "@every 1m", ReminderSchedule: "@every 1m", BackfillSchedule: "@every 10m"}, &fakeSweeper{}, &fakeReminders{}, nil)
	assert.Equal(t, []string{ReminderJob, SweepJob}, s.Names())
}

func TestRunOnce(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{}
	backfill := &fakeBackfiller{}
	s := NewScheduler(zap.NewNop())
	s.now = func() time.Time { return fixed }
	s.Standard(Config{
		SweepSchedule:    "@every 1m",
		ReminderSchedule: "@every 1m",
		BackfillSchedule: "@every 10m",
		MaxAttempts:      3,
	}, sweeper, &fakeReminders{err: errors.New("db down")}, backfill)

	n, err := s.RunOnce(context.Background(), SweepJob)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []time.Time{fixed}, sweeper.at)

	_, err = s.RunOnce(context.Background(), ReminderJob)
	assert.EqualError(t, err, "db down")

	n, err = s.RunOnce(context.Background(), BackfillJob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, backfill.maxAttempts)
	assert.Equal(t, 20, backfill.limit)

	_, err = s.RunOnce(context.Background(), "nope")
	assert.Error(t, err)
}

func TestRunOnceAppliesTimeout(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Add(Task{Name: "slow", Schedule: "@every 1h", Timeout: 10 * time.Millisecond, Run: func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}})
	_, err := s.RunOnce(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Add(Task{Name: "broken", Schedule: "every tuesday", Run: func(context.Context) (int, error) { return 0, nil }})
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Add(Task{Name: "noop", Schedule: "@every 1h", Run: func(context.Context) (int, error) { return 0, nil }})
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
