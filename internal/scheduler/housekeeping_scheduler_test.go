package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls int
	err   error
}

func (f *fakeExpirer) ExpireDue(context.Context) (int, error) {
	f.calls++
	return 2, f.err
}

type fakeOverdue struct{ at time.Time }

func (f *fakeOverdue) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	f.at = now
	return 3, nil
}

type fakePurger struct{ before time.Time }

func (f *fakePurger) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return 1, nil
}

func TestHousekeepingScheduler_RunOnce(t *testing.T) {
	at := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	subs, invoices, resets := &fakeExpirer{}, &fakeOverdue{}, &fakePurger{}

	s := NewHousekeepingScheduler("", subs, invoices, resets)
	s.now = func() time.Time { return at }

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, subs.calls)
	assert.Equal(t, at, invoices.at)
	assert.Equal(t, at, resets.before)
	assert.Equal(t, DefaultSpec, s.spec)
}

func TestHousekeepingScheduler_ContinuesAfterFailure(t *testing.T) {
	boom := errors.New("db down")
	subs, invoices, resets := &fakeExpirer{err: boom}, &fakeOverdue{}, &fakePurger{}

	s := NewHousekeepingScheduler("@hourly", subs, invoices, resets)
	err := s.RunOnce(context.Background())

	require.ErrorIs(t, err, boom)
	assert.False(t, invoices.at.IsZero())
	assert.False(t, resets.before.IsZero())
}

func TestHousekeepingScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewHousekeepingScheduler("not a cron spec", &fakeExpirer{}, &fakeOverdue{}, &fakePurger{})
	assert.Error(t, s.Start())
}

func TestHousekeepingScheduler_StartStop(t *testing.T) {
	s := NewHousekeepingScheduler(DefaultSpec, &fakeExpirer{}, &fakeOverdue{}, &fakePurger{})
	require.NoError(t, s.Start())
	s.Stop()
}
