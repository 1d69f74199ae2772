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
	"runtime"

	"github.com/tochemey/clusterprops/log"
)

// GarbageCollection is a Disruption forcing a full garbage collection pass on
// the member that wins the schedule slot.
type GarbageCollection struct {
	logger log.Logger
}

var _ Disruption = (*GarbageCollection)(nil)

// NewGarbageCollection creates a GarbageCollection disruption
func NewGarbageCollection(logger log.Logger) *GarbageCollection {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &GarbageCollection{logger: logger}
}

// Name implements Disruption.
func (x *GarbageCollection) Name() string {
	return "garbage-collection"
}

// Run implements Disruption.
func (x *GarbageCollection) Run(ctx context.Context) {
	_ = ctx
	x.logger.Info("running system GC")
	runtime.GC()
}
