// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfetch/pkg/types"
)

// slack absorbs scheduler jitter in timing assertions.
const slack = 10 * time.Millisecond

func TestNewMergesIntervals(t *testing.T) {
	l := New(map[types.Source]time.Duration{types.SourceArxiv: time.Second}, 0)

	assert.Equal(t, time.Second, l.Interval(types.SourceArxiv))
	assert.Equal(t, 340*time.Millisecond, l.Interval(types.SourcePubMed))
	assert.Equal(t, DefaultFallback, l.Interval(types.Source("other")))
}

func TestWait_SameSourceSpacing(t *testing.T) {
	const interval = 40 * time.Millisecond
	l := New(map[types.Source]time.Duration{types.SourcePubMed: interval}, 0)

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Wait(context.Background(), types.SourcePubMed))
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, times, 5)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		assert.GreaterOrEqual(t, gap, interval-slack, "calls %d and %d too close", i-1, i)
	}
}

func TestWait_DifferentSourcesIndependent(t *testing.T) {
	l := New(map[types.Source]time.Duration{
		types.SourcePubMed: 500 * time.Millisecond,
		types.SourceArxiv:  500 * time.Millisecond,
	}, 0)
	ctx := context.Background()

	// Prime pubmed so its next call would have to wait.
	require.NoError(t, l.Wait(ctx, types.SourcePubMed))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, types.SourceArxiv))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWait_FirstCallImmediate(t *testing.T) {
	l := New(map[types.Source]time.Duration{types.SourceArxiv: time.Hour}, 0)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), types.SourceArxiv))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(map[types.Source]time.Duration{types.SourceArxiv: time.Hour}, 0)
	require.NoError(t, l.Wait(context.Background(), types.SourceArxiv))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, types.SourceArxiv)
	assert.Error(t, err)
}

func TestWait_NoCreditAccumulates(t *testing.T) {
	const interval = 30 * time.Millisecond
	l := New(map[types.Source]time.Duration{types.SourceArxiv: interval}, 0)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, types.SourceArxiv))
	time.Sleep(4 * interval)

	// After idling, one call goes through at once but the next is spaced.
	require.NoError(t, l.Wait(ctx, types.SourceArxiv))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, types.SourceArxiv))
	assert.GreaterOrEqual(t, time.Since(start), interval-slack)
}
