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
	"github.com/tochemey/clusterprops/log"
)

// Option represents the client option to set custom settings
type Option func(client *Client)

// WithLogger sets the client logger
func WithLogger(logger log.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithPath overrides the well-known path of the properties document
func WithPath(path string) Option {
	return func(client *Client) {
		client.path = path
	}
}

// WithKnownProperties registers the property names allowed for single-key
// mutation. Bulk updates through SetAll are not restricted to this set.
func WithKnownProperties(names ...string) Option {
	return func(client *Client) {
		client.knownNames.Append(names...)
	}
}

// WithMaxAttempts bounds the optimistic-concurrency loop of single-key
// mutations. The default of zero retries unconditionally; a positive value
// fails the mutation with errors.ErrRetriesExhausted once spent.
func WithMaxAttempts(maxAttempts int) Option {
	return func(client *Client) {
		client.maxAttempts = maxAttempts
	}
}
