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
	"time"

	"github.com/tochemey/clusterprops/log"
)

// Option represents the trigger option to set custom settings
type Option func(trigger *Trigger)

// WithLogger sets the trigger logger
func WithLogger(logger log.Logger) Option {
	return func(trigger *Trigger) {
		trigger.logger = logger
	}
}

// WithStopTimeout sets how long Stop waits for the in-flight fire
func WithStopTimeout(timeout time.Duration) Option {
	return func(trigger *Trigger) {
		trigger.stopTimeout = timeout
	}
}

// WithSlotAcquirer sets the cross-process exclusion capability consulted
// before every fire. Without it every cluster member fires.
func WithSlotAcquirer(acquirer SlotAcquirer) Option {
	return func(trigger *Trigger) {
		trigger.acquirer = acquirer
	}
}
