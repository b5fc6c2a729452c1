// Copyright the go-mwp authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package mwp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Delta names one derivation choice: value taken at the program point
// identified by index.  Two deltas sharing an index but disagreeing on
// the value are contradictory, and annihilate any monomial containing
// both.
type Delta struct {
	Value int
	Index int
}

// Compare orders deltas by index first, then value.  This is the order
// underlying the polynomial normal form.
func (d Delta) Compare(e Delta) int {
	switch {
	case d.Index < e.Index:
		return -1
	case d.Index > e.Index:
		return 1
	case d.Value < e.Value:
		return -1
	case d.Value > e.Value:
		return 1
	}
	//
	return 0
}

// MarshalJSON encodes a delta as the two-element array [value, index].
func (d Delta) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{d.Value, d.Index})
}

// UnmarshalJSON decodes a delta from the two-element array form.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var pair [2]int
	//
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	//
	d.Value, d.Index = pair[0], pair[1]
	//
	return nil
}

func (d Delta) String() string {
	return fmt.Sprintf(".delta(%d,%d)", d.Value, d.Index)
}

// CompareDeltas orders two delta sequences.  The initial segments are
// compared element-wise; if they coincide up to the length of the
// shorter sequence, the shorter sequence is smaller.
func CompareDeltas(a, b []Delta) int {
	n := min(len(a), len(b))
	//
	for i := 0; i < n; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	//
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	//
	return 0
}

// EqualDeltas holds if two sequences agree element-wise.
func EqualDeltas(a, b []Delta) bool {
	return CompareDeltas(a, b) == 0
}

// deltasKey encodes a delta sequence as a map key.
func deltasKey(deltas []Delta) string {
	var sb strings.Builder
	//
	for _, d := range deltas {
		fmt.Fprintf(&sb, "%d.%d;", d.Value, d.Index)
	}
	//
	return sb.String()
}
