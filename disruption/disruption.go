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

// Package disruption schedules deliberately invasive maintenance actions on a
// cron expression. The trigger itself provides no cross-process exclusion: an
// injected SlotAcquirer decides which cluster member runs at each tick.
package disruption

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/clusterprops/errors"
	"github.com/tochemey/clusterprops/log"
)

// Disruption is the single-method hook a Trigger invokes at each scheduled
// fire, e.g. a forced garbage collection pass.
type Disruption interface {
	// Name returns the disruption name used in logs and slot keys.
	Name() string
	// Run executes the disruptive action. It is invoked synchronously from
	// the trigger's timer goroutine.
	Run(ctx context.Context)
}

// SlotAcquirer grants at most one cluster member the right to run a
// disruption per schedule tick. Implementations are expected to back this
// with a distributed lock; see the etcd store's SlotLocker.
type SlotAcquirer interface {
	TryAcquireSlot(ctx context.Context, tick time.Time) bool
}

// Trigger wires a cron schedule to a Disruption hook.
//
// Lifecycle: a constructed Trigger is idle until Start, fires the hook at
// every schedule tick while running and stops scheduling after Stop. A fire
// already in flight when Stop is called completes; no further fires happen
// afterwards.
type Trigger struct {
	// helps lock concurrent access
	mu sync.Mutex
	// underlying Scheduler
	quartzScheduler quartz.Scheduler
	// states whether the quartzScheduler has started or not
	started *atomic.Bool
	// define the logger
	logger log.Logger
	// define the shutdown timeout
	stopTimeout time.Duration

	cronExpression string
	cronTrigger    *quartz.CronTrigger
	disruption     Disruption
	acquirer       SlotAcquirer
}

// NewTrigger creates a Trigger firing the given disruption on the given cron
// expression. It fails with gerrors.ErrInvalidExpression when the expression
// cannot be parsed.
func NewTrigger(cronExpression string, disruption Disruption, opts ...Option) (*Trigger, error) {
	if disruption == nil {
		return nil, fmt.Errorf("disruption is required")
	}

	cronTrigger, err := quartz.NewCronTriggerWithLoc(cronExpression, time.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", gerrors.ErrInvalidExpression, cronExpression, err)
	}

	// create an instance of quartz scheduler with logger off
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))

	trigger := &Trigger{
		mu:              sync.Mutex{},
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          log.DiscardLogger,
		stopTimeout:     time.Minute,
		cronExpression:  cronExpression,
		cronTrigger:     cronTrigger,
		disruption:      disruption,
	}

	for _, opt := range opts {
		opt(trigger)
	}

	return trigger, nil
}

// Start starts the trigger and schedules the disruption.
func (x *Trigger) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.started.Load() {
		return gerrors.ErrTriggerAlreadyStarted
	}

	x.logger.Infof("scheduling disruption %s with expression %s", x.disruption.Name(), x.cronExpression)
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())

	job := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			return x.fire(ctx), nil
		},
	)

	detail := quartz.NewJobDetail(job, quartz.NewJobKey(newJobKey()))
	if err := x.quartzScheduler.ScheduleJob(detail, x.cronTrigger); err != nil {
		return fmt.Errorf("failed to schedule disruption %s: %w", x.disruption.Name(), err)
	}
	return nil
}

// Stop stops the trigger. The in-flight fire, if any, completes but no
// further fires are scheduled.
func (x *Trigger) Stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}

	x.logger.Infof("stopping disruption %s trigger...", x.disruption.Name())
	x.mu.Lock()
	defer x.mu.Unlock()
	x.started.Store(false)
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)

	x.logger.Infof("disruption %s trigger stopped", x.disruption.Name())
}

// Running reports whether the trigger is started.
func (x *Trigger) Running() bool {
	return x.started.Load()
}

// fire runs one schedule tick and reports whether the hook executed.
func (x *Trigger) fire(ctx context.Context) bool {
	// a fire may already be queued when Stop is requested
	if !x.started.Load() {
		return false
	}

	tick := time.Now().Truncate(time.Second)
	if x.acquirer != nil && !x.acquirer.TryAcquireSlot(ctx, tick) {
		x.logger.Debugf("disruption %s slot for tick %s taken by another member", x.disruption.Name(), tick)
		return false
	}

	x.logger.Infof("running disruption %s", x.disruption.Name())
	x.disruption.Run(ctx)
	return true
}

// newJobKey creates a new job key
func newJobKey() string {
	return uuid.NewString()
}
