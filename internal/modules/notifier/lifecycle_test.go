package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	m        sync.Mutex
	calls    int
	failed   int // fail this many calls before succeeding
	alwaysKO bool
}

func (f *fakePinger) Ping(context.Context) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls++
	if f.alwaysKO || f.calls <= f.failed {
		return errors.New("provider still loading")
	}
	return nil
}

func (f *fakePinger) count() int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.calls
}

func testConfig() LifecycleConfig {
	return LifecycleConfig{
		ProbeOffsets: []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond},
		PollInterval: 5 * time.Millisecond,
		ProbeTimeout: 50 * time.Millisecond,
	}
}

func TestLifecycleBecomesReadyOnLaterProbe(t *testing.T) {
	pinger := &fakePinger{failed: 2}
	l := NewLifecycle(pinger, testConfig())
	l.Init(context.Background())

	err := l.WaitUntilReady(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, StateReady, l.State())
	assert.Equal(t, 3, pinger.count())
	assert.NoError(t, l.Err())
}

func TestLifecycleFailsAfterScheduleExhausted(t *testing.T) {
	pinger := &fakePinger{alwaysKO: true}
	l := NewLifecycle(pinger, testConfig())
	l.Init(context.Background())

	err := l.WaitUntilReady(context.Background(), time.Second)
	require.Error(t, err)
	assert.True(t, IsReadinessTimeout(err))

	var rt *ReadinessTimeoutError
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, StateFailed, rt.State)
	assert.Equal(t, StateFailed, l.State())
	assert.Error(t, l.Err())
	assert.Equal(t, 3, pinger.count())
}

func TestLifecycleInitIsIdempotent(t *testing.T) {
	pinger := &fakePinger{}
	l := NewLifecycle(pinger, testConfig())

	l.Init(context.Background())
	l.Init(context.Background())
	l.Init(context.Background())

	require.NoError(t, l.WaitUntilReady(context.Background(), time.Second))
	assert.Equal(t, 1, pinger.count())
}

func TestWaitUntilReadyTimesOutWithoutInit(t *testing.T) {
	l := NewLifecycle(&fakePinger{}, testConfig())

	start := time.Now()
	err := l.WaitUntilReady(context.Background(), 30*time.Millisecond)
	require.Error(t, err)
	assert.True(t, IsReadinessTimeout(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	var rt *ReadinessTimeoutError
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, StateUninitialized, rt.State)
}

func TestWaitUntilReadyHonoursContextCancel(t *testing.T) {
	l := NewLifecycle(&fakePinger{alwaysKO: true}, LifecycleConfig{
		ProbeOffsets: []time.Duration{time.Hour},
		PollInterval: 5 * time.Millisecond,
	})
	l.Init(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.WaitUntilReady(ctx, time.Hour)
	assert.True(t, IsReadinessTimeout(err))
}
