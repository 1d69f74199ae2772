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

package etcd

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.etcd.io/etcd/client/v3/concurrency"

	"github.com/tochemey/clusterprops/disruption"
	"github.com/tochemey/clusterprops/log"
)

// SlotLocker is an etcd-backed disruption.SlotAcquirer. Each schedule tick
// maps to one mutex key under the locker prefix; the first cluster member to
// lock it owns the slot. The mutex is deliberately never unlocked so that a
// member finishing early cannot hand the same tick to a second member; the
// keys disappear with the session lease.
type SlotLocker struct {
	session *concurrency.Session
	prefix  string
	timeout time.Duration
	logger  log.Logger
}

var _ disruption.SlotAcquirer = (*SlotLocker)(nil)

// NewSlotLocker creates a SlotLocker scoped to the given prefix. The locker
// owns a session whose lease expires SessionTTL seconds after the process
// stops renewing it; call Close on shutdown.
func (s *Store) NewSlotLocker(prefix string) (*SlotLocker, error) {
	session, err := concurrency.NewSession(s.client, concurrency.WithTTL(s.config.SessionTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create slot locker session: %w", err)
	}

	return &SlotLocker{
		session: session,
		prefix:  path.Join(normalizeNamespace(s.config.Namespace), "slots", prefix),
		timeout: s.config.Timeout,
		logger:  s.config.Logger,
	}, nil
}

// TryAcquireSlot implements disruption.SlotAcquirer. It reports true when the
// calling member won the slot for the given tick. Contention and transport
// failures both report false since the member must not run either way.
func (x *SlotLocker) TryAcquireSlot(ctx context.Context, tick time.Time) bool {
	key := path.Join(x.prefix, tick.UTC().Format(time.RFC3339))
	mutex := concurrency.NewMutex(x.session, key)

	opCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	if err := mutex.TryLock(opCtx); err != nil {
		if err != concurrency.ErrLocked {
			x.logger.Warnf("failed to acquire disruption slot %s: %v", key, err)
		}
		return false
	}
	return true
}

// Close releases the locker session and with it every slot key it holds.
func (x *SlotLocker) Close() error {
	return x.session.Close()
}
