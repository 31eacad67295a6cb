package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler()
	var calls int32
	boom := errors.New("boom")

	s.AddJob("ok", time.Minute, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	s.AddJob("failing", time.Minute, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return boom
	})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestScheduler_DisabledJobIgnored(t *testing.T) {
	s := NewScheduler()
	s.AddJob("disabled", 0, func(ctx context.Context) error { return nil })
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	s.Stop()
	s.Stop()
}
