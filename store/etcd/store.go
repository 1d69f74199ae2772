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

// Package etcd provides the etcd-backed coordination store. Versions are etcd
// ModRevisions and conditional writes are etcd transactions comparing them,
// which gives the linearizable compare-and-swap the properties client builds
// its retry protocol on.
package etcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"

	gerrors "github.com/tochemey/clusterprops/errors"
	"github.com/tochemey/clusterprops/store"
)

// connectRetries is the number of attempts made to reach the first endpoint
// before giving up on construction.
const connectRetries = 5

// Store is an etcd-backed implementation of store.Store.
//
// All keys live under the configured namespace. Unless otherwise stated, any
// provided context is wrapped with the configured per-operation timeout.
type Store struct {
	config    *Config
	client    *clientv3.Client
	kv        clientv3.KV
	closeFunc func(*clientv3.Client) error
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)

// NewStore creates a new Store backed by etcd.
//
// It validates the provided configuration, probes the first configured
// endpoint with a bounded backoff and applies the configured namespace to all
// keys.
func NewStore(config *Config) (*Store, error) {
	return newStore(config, clientv3.New, func(client *clientv3.Client) error { return client.Close() })
}

func newStore(config *Config, clientFunc func(clientv3.Config) (*clientv3.Client, error), closeFunc func(*clientv3.Client) error) (*Store, error) {
	if config == nil {
		return nil, errors.New("store/etcd: config is nil")
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if clientFunc == nil {
		clientFunc = clientv3.New
	}

	if closeFunc == nil {
		closeFunc = func(client *clientv3.Client) error { return client.Close() }
	}

	client, err := clientFunc(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		TLS:         config.TLS,
		Username:    config.Username,
		Password:    config.Password,
		Context:     config.Context,
	})
	if err != nil {
		return nil, err
	}

	// probe the endpoint with a bounded backoff before handing the store out
	retrier := retry.NewRetrier(connectRetries, 100*time.Millisecond, config.DialTimeout)
	err = retrier.RunContext(config.Context, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, config.DialTimeout)
		defer cancel()
		_, err := client.Status(ctx, config.Endpoints[0])
		return err
	})
	if err != nil {
		if cerr := closeFunc(client); cerr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close etcd client: %w", cerr))
		}
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &Store{
		config:    config,
		client:    client,
		kv:        namespace.NewKV(client.KV, normalizeNamespace(config.Namespace)),
		closeFunc: closeFunc,
	}, nil
}

// Close releases resources held by the Store, including the underlying etcd
// client. Close is idempotent.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	if s.closeFunc != nil {
		return s.closeFunc(s.client)
	}
	return s.client.Close()
}

// Exists implements store.Store.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Get(opCtx, path, clientv3.WithCountOnly())
	if err != nil {
		return false, storeFailure("failed to check node existence", err)
	}
	return resp.Count > 0, nil
}

// Read implements store.Store. The returned version is the ModRevision of the
// node at read time.
func (s *Store) Read(ctx context.Context, path string) ([]byte, store.Version, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Get(opCtx, path)
	if err != nil {
		return nil, 0, storeFailure("failed to read node", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, 0, gerrors.ErrNodeNotFound
	}
	return resp.Kvs[0].Value, store.Version(resp.Kvs[0].ModRevision), nil
}

// ConditionalWrite implements store.Store. The write lands only when the
// node's ModRevision still matches the expected version, otherwise it fails
// with gerrors.ErrVersionConflict.
func (s *Store) ConditionalWrite(ctx context.Context, path string, payload []byte, expected store.Version) error {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	txnResp, err := s.kv.Txn(opCtx).
		If(clientv3.Compare(clientv3.ModRevision(path), "=", int64(expected))).
		Then(clientv3.OpPut(path, string(payload))).
		Commit()
	if err != nil {
		return storeFailure("failed to write node", err)
	}
	if !txnResp.Succeeded {
		return gerrors.ErrVersionConflict
	}
	return nil
}

// Create implements store.Store. A node created concurrently between the
// caller's existence check and this call fails with gerrors.ErrNodeExists.
func (s *Store) Create(ctx context.Context, path string, payload []byte) error {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	txnResp, err := s.kv.Txn(opCtx).
		If(clientv3.Compare(clientv3.CreateRevision(path), "=", 0)).
		Then(clientv3.OpPut(path, string(payload))).
		Commit()
	if err != nil {
		return storeFailure("failed to create node", err)
	}
	if !txnResp.Succeeded {
		return gerrors.ErrNodeExists
	}
	return nil
}

// AtomicUpdate implements store.Store. It replays the read-transform-write
// cycle until the conditional write lands or the transform reports that no
// write is needed. Conflicts are absorbed here and never surface.
func (s *Store) AtomicUpdate(ctx context.Context, path string, transform store.Transform) error {
	if ctx == nil {
		ctx = s.config.Context
	}

	for {
		if err := ctx.Err(); err != nil {
			return storeFailure("atomic update aborted", err)
		}

		current, createRevision, modRevision, err := s.readForUpdate(ctx, path)
		if err != nil {
			return err
		}

		next, err := transform(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		// compare against absence when the node was missing at read time
		cmp := clientv3.Compare(clientv3.CreateRevision(path), "=", 0)
		if createRevision != 0 {
			cmp = clientv3.Compare(clientv3.ModRevision(path), "=", modRevision)
		}

		opCtx, cancel := s.withTimeout(ctx)
		txnResp, err := s.kv.Txn(opCtx).
			If(cmp).
			Then(clientv3.OpPut(path, string(next))).
			Commit()
		cancel()
		if err != nil {
			return storeFailure("failed to write node", err)
		}
		if txnResp.Succeeded {
			return nil
		}
	}
}

func (s *Store) readForUpdate(ctx context.Context, path string) ([]byte, int64, int64, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Get(opCtx, path)
	if err != nil {
		return nil, 0, 0, storeFailure("failed to read node", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, 0, 0, nil
	}
	return resp.Kvs[0].Value, resp.Kvs[0].CreateRevision, resp.Kvs[0].ModRevision, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = s.config.Context
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func storeFailure(message string, err error) error {
	return fmt.Errorf("%s: %w", message, errors.Join(gerrors.ErrStoreFailure, err))
}

func normalizeNamespace(namespaceValue string) string {
	if namespaceValue == "" {
		namespaceValue = defaultNamespace
	}
	if namespaceValue[len(namespaceValue)-1] == '/' {
		return namespaceValue
	}
	return namespaceValue + "/"
}
