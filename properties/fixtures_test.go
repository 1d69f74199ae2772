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

package properties

import (
	"context"
	"sync"

	gerrors "github.com/tochemey/clusterprops/errors"
	"github.com/tochemey/clusterprops/store"
)

type memoryNode struct {
	payload        []byte
	createRevision int64
	modRevision    int64
}

// MockStore is an in-memory store.Store with real compare-and-swap semantics
// so that concurrent writers genuinely race in tests. It counts every call
// and supports error injection per operation.
type MockStore struct {
	mu       sync.Mutex
	nodes    map[string]*memoryNode
	revision int64

	existsCalls int
	readCalls   int
	writeCalls  int
	createCalls int

	existsErr error
	readErr   error
	writeErr  error
	createErr error
}

var _ store.Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{nodes: map[string]*memoryNode{}}
}

func (x *MockStore) Exists(ctx context.Context, path string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.existsCalls++
	if x.existsErr != nil {
		return false, x.existsErr
	}
	_, found := x.nodes[path]
	return found, nil
}

func (x *MockStore) Read(ctx context.Context, path string) ([]byte, store.Version, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.readCalls++
	if x.readErr != nil {
		return nil, 0, x.readErr
	}
	node, found := x.nodes[path]
	if !found {
		return nil, 0, gerrors.ErrNodeNotFound
	}
	payload := make([]byte, len(node.payload))
	copy(payload, node.payload)
	return payload, store.Version(node.modRevision), nil
}

func (x *MockStore) ConditionalWrite(ctx context.Context, path string, payload []byte, expected store.Version) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.writeCalls++
	if x.writeErr != nil {
		return x.writeErr
	}
	node, found := x.nodes[path]
	if !found {
		return gerrors.ErrNodeNotFound
	}
	if node.modRevision != int64(expected) {
		return gerrors.ErrVersionConflict
	}
	x.revision++
	node.payload = payload
	node.modRevision = x.revision
	return nil
}

func (x *MockStore) Create(ctx context.Context, path string, payload []byte) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.createCalls++
	if x.createErr != nil {
		return x.createErr
	}
	if _, found := x.nodes[path]; found {
		return gerrors.ErrNodeExists
	}
	x.revision++
	x.nodes[path] = &memoryNode{
		payload:        payload,
		createRevision: x.revision,
		modRevision:    x.revision,
	}
	return nil
}

func (x *MockStore) AtomicUpdate(ctx context.Context, path string, transform store.Transform) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		x.mu.Lock()
		var current []byte
		var modRevision int64
		node, found := x.nodes[path]
		if found {
			current = make([]byte, len(node.payload))
			copy(current, node.payload)
			modRevision = node.modRevision
		}
		x.mu.Unlock()

		next, err := transform(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		x.mu.Lock()
		node, stillFound := x.nodes[path]
		switch {
		case !found && stillFound, found && !stillFound, found && node.modRevision != modRevision:
			// lost the race, replay
			x.mu.Unlock()
			continue
		case !found:
			x.writeCalls++
			x.revision++
			x.nodes[path] = &memoryNode{payload: next, createRevision: x.revision, modRevision: x.revision}
		default:
			x.writeCalls++
			x.revision++
			node.payload = next
			node.modRevision = x.revision
		}
		x.mu.Unlock()
		return nil
	}
}

// Seed installs a document payload without touching the counters.
func (x *MockStore) Seed(path string, payload []byte) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.revision++
	x.nodes[path] = &memoryNode{payload: payload, createRevision: x.revision, modRevision: x.revision}
}

// Payload returns the stored payload of the given path.
func (x *MockStore) Payload(path string) []byte {
	x.mu.Lock()
	defer x.mu.Unlock()
	node, found := x.nodes[path]
	if !found {
		return nil
	}
	return node.payload
}

// WriteCalls returns how many writes (conditional or atomic) were attempted.
func (x *MockStore) WriteCalls() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.writeCalls
}

// CreateCalls returns how many creates were attempted.
func (x *MockStore) CreateCalls() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.createCalls
}

// Calls returns the total number of store calls of any kind.
func (x *MockStore) Calls() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.existsCalls + x.readCalls + x.writeCalls + x.createCalls
}

// ConflictingStore wraps a MockStore and fails the first conflicts
// conditional writes with a version conflict, simulating concurrent writers
// winning the race.
type ConflictingStore struct {
	*MockStore
	mu        sync.Mutex
	conflicts int
}

func NewConflictingStore(underlying *MockStore, conflicts int) *ConflictingStore {
	return &ConflictingStore{MockStore: underlying, conflicts: conflicts}
}

func (x *ConflictingStore) ConditionalWrite(ctx context.Context, path string, payload []byte, expected store.Version) error {
	x.mu.Lock()
	if x.conflicts > 0 {
		x.conflicts--
		x.mu.Unlock()
		return gerrors.ErrVersionConflict
	}
	x.mu.Unlock()
	return x.MockStore.ConditionalWrite(ctx, path, payload, expected)
}

// RacingCreateStore wraps a MockStore and reports the document as absent on
// the first existence check even though it exists, forcing the client down
// the create path into a node-exists race.
type RacingCreateStore struct {
	*MockStore
	mu   sync.Mutex
	lies int
}

func NewRacingCreateStore(underlying *MockStore, lies int) *RacingCreateStore {
	return &RacingCreateStore{MockStore: underlying, lies: lies}
}

func (x *RacingCreateStore) Exists(ctx context.Context, path string) (bool, error) {
	x.mu.Lock()
	if x.lies > 0 {
		x.lies--
		x.mu.Unlock()
		return false, nil
	}
	x.mu.Unlock()
	return x.MockStore.Exists(ctx, path)
}
