// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package disruption

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/clusterprops/errors"
	"github.com/tochemey/clusterprops/log"
)

type recordedDisruption struct {
	runs *atomic.Int64
}

func newRecordedDisruption() *recordedDisruption {
	return &recordedDisruption{runs: atomic.NewInt64(0)}
}

func (x *recordedDisruption) Name() string { return "recorded" }

func (x *recordedDisruption) Run(ctx context.Context) {
	_ = ctx
	x.runs.Inc()
}

type deniedSlot struct {
	asked *atomic.Int64
}

func (x *deniedSlot) TryAcquireSlot(ctx context.Context, tick time.Time) bool {
	_, _ = ctx, tick
	x.asked.Inc()
	return false
}

func TestNewTrigger(t *testing.T) {
	t.Run("With a valid cron expression", func(t *testing.T) {
		trigger, err := NewTrigger("0 0 2 * * *", newRecordedDisruption())
		require.NoError(t, err)
		require.NotNil(t, trigger)
		assert.False(t, trigger.Running())
	})
	t.Run("With a malformed cron expression", func(t *testing.T) {
		trigger, err := NewTrigger("not a schedule", newRecordedDisruption())
		require.Error(t, err)
		require.Nil(t, trigger)
		assert.ErrorIs(t, err, gerrors.ErrInvalidExpression)
	})
	t.Run("With a missing disruption", func(t *testing.T) {
		trigger, err := NewTrigger("0 0 2 * * *", nil)
		require.Error(t, err)
		require.Nil(t, trigger)
	})
}

func TestTriggerLifecycle(t *testing.T) {
	t.Run("With scheduled fires", func(t *testing.T) {
		ctx := t.Context()
		disruption := newRecordedDisruption()
		trigger, err := NewTrigger("* * * * * *", disruption, WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		require.NoError(t, trigger.Start(ctx))
		require.True(t, trigger.Running())

		time.Sleep(2500 * time.Millisecond)
		trigger.Stop(ctx)

		assert.GreaterOrEqual(t, disruption.runs.Load(), int64(1))
	})
	t.Run("With no fires after stop", func(t *testing.T) {
		ctx := t.Context()
		disruption := newRecordedDisruption()
		trigger, err := NewTrigger("* * * * * *", disruption)
		require.NoError(t, err)

		require.NoError(t, trigger.Start(ctx))
		time.Sleep(1500 * time.Millisecond)
		trigger.Stop(ctx)
		require.False(t, trigger.Running())

		observed := disruption.runs.Load()
		time.Sleep(2 * time.Second)
		assert.Equal(t, observed, disruption.runs.Load())
	})
	t.Run("With double start", func(t *testing.T) {
		ctx := t.Context()
		trigger, err := NewTrigger("* * * * * *", newRecordedDisruption())
		require.NoError(t, err)

		require.NoError(t, trigger.Start(ctx))
		err = trigger.Start(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrTriggerAlreadyStarted)
		trigger.Stop(ctx)
	})
	t.Run("With stop before start", func(t *testing.T) {
		ctx := t.Context()
		trigger, err := NewTrigger("* * * * * *", newRecordedDisruption())
		require.NoError(t, err)
		// must not panic
		trigger.Stop(ctx)
	})
}

func TestTriggerSlotAcquirer(t *testing.T) {
	ctx := t.Context()
	disruption := newRecordedDisruption()
	slot := &deniedSlot{asked: atomic.NewInt64(0)}
	trigger, err := NewTrigger("* * * * * *", disruption, WithSlotAcquirer(slot))
	require.NoError(t, err)

	require.NoError(t, trigger.Start(ctx))
	time.Sleep(2500 * time.Millisecond)
	trigger.Stop(ctx)

	// the slot was contended and this member never ran
	assert.GreaterOrEqual(t, slot.asked.Load(), int64(1))
	assert.Zero(t, disruption.runs.Load())
}

func TestGarbageCollection(t *testing.T) {
	gc := NewGarbageCollection(log.DiscardLogger)
	require.Equal(t, "garbage-collection", gc.Name())
	// must complete without panicking
	gc.Run(t.Context())

	fallback := NewGarbageCollection(nil)
	fallback.Run(t.Context())
}
