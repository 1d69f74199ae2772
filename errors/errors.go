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

// Package errors defines the sentinel errors shared by the cluster properties
// client, the coordination store implementations and the disruption trigger.
// They are usually wrapped with additional context, so callers are expected
// to test them with errors.Is.
package errors

import "errors"

var (
	// ErrNodeNotFound is returned by a store read when the requested path
	// does not exist. Read paths of the properties client normalize it to an
	// empty document.
	ErrNodeNotFound = errors.New("node not found")

	// ErrVersionConflict is returned by a conditional write when the expected
	// version no longer matches the stored one. It signals that a concurrent
	// writer won the race and the read-merge-write cycle must be replayed.
	ErrVersionConflict = errors.New("version conflict")

	// ErrNodeExists is returned by a create when the path was created
	// concurrently. Like ErrVersionConflict it is absorbed by the retry loop.
	ErrNodeExists = errors.New("node already exists")

	// ErrUnknownProperty is returned when a single-key mutation targets a
	// property name outside the configured known set. It is raised before any
	// store access and is never retried.
	ErrUnknownProperty = errors.New("not a known cluster property")

	// ErrInvalidExpression is returned when a cron expression cannot be
	// parsed at trigger construction time.
	ErrInvalidExpression = errors.New("invalid cron expression")

	// ErrDocumentMalformed is returned when the stored payload is present but
	// does not decode to a JSON object. Retrying would not help, so it is
	// surfaced as-is.
	ErrDocumentMalformed = errors.New("malformed properties document")

	// ErrStoreFailure wraps any transport-level store failure (session loss,
	// protocol error, interruption). The properties client surfaces it and
	// leaves the retry policy to the caller.
	ErrStoreFailure = errors.New("coordination store failure")

	// ErrRetriesExhausted is returned by a single-key mutation configured
	// with a bounded attempts policy once the budget is spent on conflicts.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrTriggerAlreadyStarted is returned when starting an already running
	// disruption trigger.
	ErrTriggerAlreadyStarted = errors.New("disruption trigger already started")
)
