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

// Package properties implements the client protocol for the shared cluster
// properties document. All writers race on a single versioned node through
// compare-and-swap; the read-merge-write retry loop in this package is the
// sole consistency mechanism, no distributed lock is ever taken.
package properties

import (
	"context"
	"errors"
	"fmt"

	goset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/clusterprops/errors"
	"github.com/tochemey/clusterprops/internal/jsondoc"
	"github.com/tochemey/clusterprops/internal/validation"
	"github.com/tochemey/clusterprops/log"
	"github.com/tochemey/clusterprops/store"
)

// DefaultPath is the well-known store path of the properties document.
const DefaultPath = "clusterprops.json"

// Client reads and mutates the shared cluster properties document.
//
// Note that every method makes calls to the coordination store on every
// invocation; the client deliberately keeps no cache. Read-only eventually
// consistent consumers should use a read-through state reader instead.
type Client struct {
	store       store.Store
	path        string
	knownNames  goset.Set[string]
	logger      log.Logger
	maxAttempts int
}

// NewClient creates a Client on top of the given coordination store.
func NewClient(coordinationStore store.Store, opts ...Option) (*Client, error) {
	client := &Client{
		store:      coordinationStore,
		path:       DefaultPath,
		knownNames: goset.NewSet[string](),
		logger:     log.DiscardLogger,
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := client.validate(); err != nil {
		return nil, err
	}
	return client, nil
}

// Get reads the value of a cluster property, returning defaultValue when it
// is not set. The key may be a plain property name or a slash-separated path
// descending into nested values.
func (x *Client) Get(ctx context.Context, key string, defaultValue any) (any, error) {
	document, err := x.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if value, found := jsondoc.Lookup(document, key); found {
		return value, nil
	}
	return defaultValue, nil
}

// GetAll fetches and decodes the whole properties document. An absent
// document is equivalent to an empty one and is never an error.
func (x *Client) GetAll(ctx context.Context) (map[string]any, error) {
	payload, _, err := x.store.Read(ctx, x.path)
	switch {
	case errors.Is(err, gerrors.ErrNodeNotFound):
		return map[string]any{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read cluster properties: %w", err)
	}
	return jsondoc.Decode(payload)
}

// SetAll atomically merges the given partial update into the stored document.
// When no document exists the partial update is written verbatim; otherwise
// it is deep-merged into the decoded document and written back only when the
// merge actually changed something. Keys absent from the partial update are
// never removed. Version conflicts are absorbed by the store's atomic update
// primitive.
func (x *Client) SetAll(ctx context.Context, partial map[string]any) error {
	err := x.store.AtomicUpdate(ctx, x.path, func(current []byte) ([]byte, error) {
		if current == nil {
			return jsondoc.Encode(partial)
		}

		document, err := jsondoc.Decode(current)
		if err != nil {
			return nil, err
		}

		merged, changed := jsondoc.Merge(document, partial)
		if !changed {
			return nil, nil
		}
		return jsondoc.Encode(merged)
	})
	if err != nil {
		return fmt.Errorf("failed to set cluster properties: %w", err)
	}
	return nil
}

// Set sets a single cluster property. The name must belong to the configured
// known set; the check happens before any store access.
func (x *Client) Set(ctx context.Context, name, value string) error {
	return x.mutate(ctx, name, value, false)
}

// Delete removes a single cluster property. Deleting a property that is not
// set, or whose document does not exist, is a no-op. The name must belong to
// the configured known set.
func (x *Client) Delete(ctx context.Context, name string) error {
	return x.mutate(ctx, name, "", true)
}

// mutate runs the optimistic-concurrency loop: read the current document and
// its version, decide, write back conditioned on that version, and replay the
// whole cycle whenever a concurrent writer got there first. Conflicts are
// expected to resolve within a handful of iterations, so there is no backoff;
// the loop is unbounded unless a maximum attempts policy was configured.
func (x *Client) mutate(ctx context.Context, name, value string, remove bool) error {
	if !x.knownNames.Contains(name) {
		return fmt.Errorf("%w: %s", gerrors.ErrUnknownProperty, name)
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("failed to set cluster property %s: %w", name, err)
		}

		err := x.tryMutate(ctx, name, value, remove)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gerrors.ErrVersionConflict), errors.Is(err, gerrors.ErrNodeExists):
			// race condition, replay the cycle
		default:
			return fmt.Errorf("failed to set cluster property %s: %w", name, err)
		}

		attempts++
		if x.maxAttempts > 0 && attempts >= x.maxAttempts {
			return fmt.Errorf("%w: property %s after %d attempts", gerrors.ErrRetriesExhausted, name, attempts)
		}
		x.logger.Debugf("cluster property %s written concurrently, retrying", name)
	}
}

// tryMutate performs one iteration of the loop. A nil return means a write
// landed or no write was needed.
func (x *Client) tryMutate(ctx context.Context, name, value string, remove bool) error {
	exists, err := x.store.Exists(ctx, x.path)
	if err != nil {
		return err
	}

	if !exists {
		if remove {
			// nothing to delete
			return nil
		}
		payload, err := jsondoc.Encode(map[string]any{name: value})
		if err != nil {
			return err
		}
		return x.store.Create(ctx, x.path, payload)
	}

	payload, version, err := x.store.Read(ctx, x.path)
	if err != nil {
		return err
	}

	document, err := jsondoc.Decode(payload)
	if err != nil {
		return err
	}

	if remove {
		if _, present := document[name]; !present {
			// don't update the store unless absolutely necessary
			return nil
		}
		delete(document, name)
	} else {
		if current, ok := document[name].(string); ok && current == value {
			// don't update the store unless absolutely necessary
			return nil
		}
		document[name] = value
	}

	payload, err = jsondoc.Encode(document)
	if err != nil {
		return err
	}
	return x.store.ConditionalWrite(ctx, x.path, payload, version)
}

func (x *Client) validate() error {
	return validation.New(validation.FailFast()).
		AddAssertion(x.store != nil, "store is required").
		AddValidator(validation.NewEmptyStringValidator("path", x.path)).
		AddAssertion(x.maxAttempts >= 0, "max attempts must not be negative").
		Validate()
}
