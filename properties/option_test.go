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
	"testing"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"

	"github.com/tochemey/clusterprops/log"
)

func TestOptions(t *testing.T) {
	t.Run("With WithLogger", func(t *testing.T) {
		client := &Client{}
		WithLogger(log.DebugLogger)(client)
		assert.Equal(t, log.DebugLogger, client.logger)
	})
	t.Run("With WithPath", func(t *testing.T) {
		client := &Client{}
		WithPath("custom.json")(client)
		assert.Equal(t, "custom.json", client.path)
	})
	t.Run("With WithKnownProperties", func(t *testing.T) {
		client := &Client{knownNames: goset.NewSet[string]()}
		WithKnownProperties("urlScheme", "maxCoresPerNode")(client)
		assert.True(t, client.knownNames.Contains("urlScheme"))
		assert.True(t, client.knownNames.Contains("maxCoresPerNode"))
		assert.False(t, client.knownNames.Contains("unknown"))
	})
	t.Run("With WithMaxAttempts", func(t *testing.T) {
		client := &Client{}
		WithMaxAttempts(3)(client)
		assert.Equal(t, 3, client.maxAttempts)
	})
}
