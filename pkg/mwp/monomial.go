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
	"slices"
	"strings"
)

// Monomial pairs a scalar coefficient with an ordered conjunction of
// deltas.  The coefficient applies exactly when every delta holds; an
// empty delta sequence means the coefficient always applies.  The delta
// sequence is strictly ordered by index, with at most one delta per
// index.  Monomials are immutable values.
type Monomial struct {
	Scalar Scalar
	Deltas []Delta
}

// setInclusion classifies how the delta sets of two monomials relate,
// used to absorb redundant monomials during polynomial normalization.
type setInclusion uint8

const (
	inclEmpty setInclusion = iota
	inclContains
	inclIncluded
)

// NewMonomial builds a monomial from a scalar and any number of deltas.
// Deltas are inserted in index order; a contradictory pair collapses
// the result to the zero monomial.
func NewMonomial(scalar Scalar, deltas ...Delta) Monomial {
	mono := Monomial{Scalar: scalar}
	//
	for _, d := range deltas {
		var ok bool
		//
		if mono.Deltas, ok = insertDelta(mono.Deltas, d); !ok {
			return Monomial{Scalar: Zero}
		}
	}
	//
	if mono.Scalar == Zero {
		mono.Deltas = nil
	}
	//
	return mono
}

// insertDelta inserts a delta into a sequence sorted by index.  The
// second result is false when the delta contradicts one already in the
// sequence (same index, different value).  The input slice is not
// mutated.
func insertDelta(sorted []Delta, delta Delta) ([]Delta, bool) {
	i := 0
	//
	for i < len(sorted) {
		if sorted[i].Index < delta.Index {
			i++
			continue
		}
		//
		if sorted[i].Index == delta.Index {
			if sorted[i].Value == delta.Value {
				return sorted, true
			}
			// Contradictory requirements can never both hold.
			return nil, false
		}
		//
		break
	}
	//
	res := make([]Delta, 0, len(sorted)+1)
	res = append(res, sorted[:i]...)
	res = append(res, delta)
	res = append(res, sorted[i:]...)
	//
	return res, true
}

// IsZero holds for the zero monomial.
func (m Monomial) IsZero() bool {
	return m.Scalar == Zero
}

// Times multiplies two monomials: coefficients multiply in the
// semiring and delta sequences merge by index.  A contradiction, or a
// zero coefficient, yields the zero monomial.
func (m Monomial) Times(other Monomial) Monomial {
	scalar := m.Scalar.Times(other.Scalar)
	//
	if scalar == Zero {
		return Monomial{Scalar: Zero}
	}
	//
	deltas := m.Deltas
	//
	for _, d := range other.Deltas {
		var ok bool
		//
		if deltas, ok = insertDelta(deltas, d); !ok {
			return Monomial{Scalar: Zero}
		}
	}
	//
	return Monomial{Scalar: scalar, Deltas: deltas}
}

// ContainsDelta checks membership of a delta by value and index.
func (m Monomial) ContainsDelta(delta Delta) bool {
	return slices.Contains(m.Deltas, delta)
}

// containsAll checks that every delta of other occurs in m.
func (m Monomial) containsAll(other Monomial) bool {
	for _, d := range other.Deltas {
		if !m.ContainsDelta(d) {
			return false
		}
	}
	//
	return true
}

// inclusion classifies this monomial against another: inclContains
// when m carries every delta of other at a weaker (or equal) scalar,
// meaning m is absorbed by other; inclIncluded for the converse.
func (m Monomial) inclusion(other Monomial) setInclusion {
	sum := m.Scalar.Sum(other.Scalar)
	//
	if m.containsAll(other) && other.Scalar == sum {
		return inclContains
	}
	//
	if other.containsAll(m) && m.Scalar == sum {
		return inclIncluded
	}
	//
	return inclEmpty
}

// ChoiceScalar returns the coefficient when every delta of this
// monomial agrees with the given choice assignment, and false
// otherwise.
func (m Monomial) ChoiceScalar(choices []int) (Scalar, bool) {
	for _, d := range m.Deltas {
		if choices[d.Index] != d.Value {
			return Zero, false
		}
	}
	//
	return m.Scalar, true
}

// Equal is structural equality on scalar and delta sequence.
func (m Monomial) Equal(other Monomial) bool {
	return m.Scalar == other.Scalar && EqualDeltas(m.Deltas, other.Deltas)
}

func (m Monomial) String() string {
	var sb strings.Builder
	//
	sb.WriteString(m.Scalar.String())
	//
	for _, d := range m.Deltas {
		sb.WriteString(d.String())
	}
	//
	return sb.String()
}
