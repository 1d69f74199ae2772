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

// Package jsondoc implements the properties document codec: JSON
// encoding/decoding of a string-keyed document, a deep non-destructive merge
// and a path-based lookup into nested objects.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	gerrors "github.com/tochemey/clusterprops/errors"
)

// Decode unmarshals the given payload into a document. A nil, empty or JSON
// null payload decodes to an empty document. A payload that is present but is
// not a JSON object fails with gerrors.ErrDocumentMalformed.
func Decode(payload []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return map[string]any{}, nil
	}

	var document map[string]any
	if err := json.Unmarshal(payload, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", gerrors.ErrDocumentMalformed, err)
	}

	if document == nil {
		return map[string]any{}, nil
	}
	return document, nil
}

// Encode marshals the given document to its JSON payload.
func Encode(document map[string]any) ([]byte, error) {
	payload, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode properties document: %w", err)
	}
	return payload, nil
}

// Merge deep-merges overlay into base and reports whether the result differs
// from base. Base is left untouched. For each overlay key, when both sides
// hold an object the merge recurses, otherwise the overlay value replaces the
// base one. Keys absent from the overlay are never removed.
func Merge(base, overlay map[string]any) (map[string]any, bool) {
	merged := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}

	changed := false
	for key, overlayValue := range overlay {
		baseValue, found := merged[key]
		if found {
			baseObject, baseIsObject := baseValue.(map[string]any)
			overlayObject, overlayIsObject := overlayValue.(map[string]any)
			if baseIsObject && overlayIsObject {
				subMerged, subChanged := Merge(baseObject, overlayObject)
				merged[key] = subMerged
				changed = changed || subChanged
				continue
			}
		}

		if !found || !reflect.DeepEqual(baseValue, overlayValue) {
			changed = true
		}
		merged[key] = overlayValue
	}

	return merged, changed
}

// Lookup resolves a slash-separated path against the document, descending
// into nested objects segment by segment. A plain key is a single-segment
// path. It returns the resolved value and whether the path was present.
func Lookup(document map[string]any, path string) (any, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	current := any(document)
	for _, segment := range segments {
		if segment == "" {
			return nil, false
		}
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, found := object[segment]
		if !found {
			return nil, false
		}
		current = value
	}
	return current, true
}
