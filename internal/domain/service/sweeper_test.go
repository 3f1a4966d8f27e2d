package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/service"
)

func TestSweeper_ExpiresOldActions(t *testing.T) {
	pending := service.NewPendingActionStore()
	locks := service.NewMutexStore()
	audits := &fakeAudits{}

	old := model.NewPendingAction("shutdown_server", nil, 42)
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.True(t, pending.TryAdd("old", old))
	require.True(t, pending.TryAdd("fresh", model.NewPendingAction("lights_off", nil, 42)))
	locks.Get("old")

	s := service.NewSweeper(pending, locks, audits, time.Hour, "", nil)
	require.True(t, s.Enabled())

	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.Equal(t, 1, pending.Len())
	assert.Zero(t, locks.Len())

	entries := audits.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditActionExpired, entries[0].EventType)
	assert.Equal(t, "old", entries[0].ActionID)
}

func TestSweeper_DisabledKeepsEverything(t *testing.T) {
	pending := service.NewPendingActionStore()
	old := model.NewPendingAction("shutdown_server", nil, 42)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.True(t, pending.TryAdd("old", old))

	s := service.NewSweeper(pending, service.NewMutexStore(), nil, 0, "", nil)

	assert.False(t, s.Enabled())
	assert.Zero(t, s.Sweep(context.Background()))
	assert.Equal(t, 1, pending.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Start(ctx))
}

func TestSweeper_ExpiredActionCannotBeConfirmed(t *testing.T) {
	h := newHarness(t, 42)
	confirm, _ := h.propose(t)

	s := service.NewSweeper(h.d.Pending(), h.d.Locks(), nil, time.Nanosecond, "", nil)
	time.Sleep(time.Millisecond)
	require.Equal(t, 1, s.Sweep(context.Background()))

	assert.Equal(t, service.ReplyExpired, h.callback(t, 42, confirm))
	assert.Zero(t, h.shutdown.calls.Load())
}

func TestSweeper_InvalidSchedule(t *testing.T) {
	s := service.NewSweeper(service.NewPendingActionStore(), service.NewMutexStore(), nil, time.Minute, "every now and then", nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.Start(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sweep schedule")
}
