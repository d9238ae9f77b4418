package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_InitialFetchOnStart(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)

		return 42, nil
	}

	poller := NewPoller("test", time.Hour, time.Second, time.Hour, 0, fetch, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 42, poller.Current())
	assert.True(t, poller.HasRecentData())

	poller.Stop(time.Second)
}

func TestPoller_FailedFetchKeepsPreviousSnapshot(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			return 7, nil
		}

		return 0, errors.New("boom")
	}

	poller := NewPoller("test", time.Hour, time.Second, time.Hour, -1, fetch, nil)
	ctx := context.Background()
	poller.Start(ctx)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 7, poller.Current())

	err := poller.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, 7, poller.Current(), "failed refresh must not clobber the previous snapshot")

	poller.Stop(time.Second)
}

func TestPoller_HasRecentDataBeforeFirstInstall(t *testing.T) {
	fetch := func(ctx context.Context) (int, error) { return 0, errors.New("never succeeds") }
	poller := NewPoller("test", time.Hour, time.Second, time.Hour, -1, fetch, nil)

	assert.False(t, poller.HasRecentData())
}

func TestPoller_Refresh(t *testing.T) {
	value := 1
	fetch := func(ctx context.Context) (int, error) {
		value++

		return value, nil
	}

	poller := NewPoller("test", time.Hour, time.Second, time.Hour, 0, fetch, nil)
	require.NoError(t, poller.Refresh(context.Background()))
	assert.Equal(t, 2, poller.Current())
}
