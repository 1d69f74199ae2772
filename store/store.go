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

// Package store defines the narrow contract the cluster properties client
// requires from a versioned coordination store.
package store

import "context"

// Version is the opaque, monotonically increasing revision a store associates
// with a stored node. A conditional write using a stale Version must be
// rejected by the store, never silently applied.
type Version int64

// Transform computes the next payload of a node from its current one during
// an atomic update. It receives nil when the node does not exist. Returning a
// nil payload with a nil error signals that no write is needed.
type Transform func(current []byte) ([]byte, error)

// Store is the versioned coordination store facade. Implementations map their
// native failure conditions onto the sentinel errors of the errors package:
// a read of an absent node fails with errors.ErrNodeNotFound, a conditional
// write on a stale version with errors.ErrVersionConflict and a create racing
// a concurrent create with errors.ErrNodeExists. All operations may block for
// a network round-trip and honor context cancellation.
type Store interface {
	// Exists reports whether the given path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the payload stored at the given path together with the
	// Version of the revision it was read at.
	Read(ctx context.Context, path string) ([]byte, Version, error)

	// ConditionalWrite replaces the payload at the given path provided its
	// current version still matches the expected one.
	ConditionalWrite(ctx context.Context, path string, payload []byte, expected Version) error

	// Create creates the given path with the given payload. It fails when the
	// path already exists.
	Create(ctx context.Context, path string, payload []byte) error

	// AtomicUpdate applies transform to the current payload of the path (nil
	// when absent) and writes the result, retrying transparently on version
	// conflicts until the write lands or transform reports no change.
	AtomicUpdate(ctx context.Context, path string, transform Transform) error
}
