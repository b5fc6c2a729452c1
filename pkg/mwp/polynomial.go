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
	"strings"
)

// Polynomial is a normalized, ordered list of monomials representing
// their sum.  The normal form guarantees: no zero-coefficient
// monomials, no two monomials with the same delta sequence, no
// monomial absorbed by another with fewer requirements and a stronger
// coefficient, and lexicographic ordering on delta sequences.  The
// empty polynomial denotes zero.  Polynomials are immutable values.
type Polynomial struct {
	Mons []Monomial
}

// NewPolynomial builds a normalized polynomial from arbitrary
// monomials.
func NewPolynomial(monomials ...Monomial) Polynomial {
	var mons []Monomial
	//
	for _, m := range monomials {
		mons = insertMonomial(mons, m)
	}
	//
	return Polynomial{Mons: mons}
}

// ZeroPolynomial returns the zero polynomial.
func ZeroPolynomial() Polynomial {
	return Polynomial{}
}

// UnitPolynomial returns the polynomial holding the single monomial m.
func UnitPolynomial() Polynomial {
	return NewPolynomial(NewMonomial(Unit))
}

// ScalarPolynomial returns the polynomial holding one delta-free
// monomial of the given coefficient.
func ScalarPolynomial(s Scalar) Polynomial {
	return NewPolynomial(NewMonomial(s))
}

// FromScalars builds the polynomial encoding the derivation choices
// available at one program point: each scalar becomes a monomial
// guarded by the delta selecting its position at the given index.
func FromScalars(index int, scalars ...Scalar) Polynomial {
	mons := make([]Monomial, len(scalars))
	//
	for value, scalar := range scalars {
		mons[value] = NewMonomial(scalar, Delta{Value: value, Index: index})
	}
	//
	return NewPolynomial(mons...)
}

// insertMonomial inserts a monomial into a normalized list, applying
// absorption: members whose delta set contains mono's at a weaker
// coefficient are dropped, and mono itself is dropped when some member
// subsumes it.  The input slice is never mutated.
func insertMonomial(list []Monomial, mono Monomial) []Monomial {
	if mono.IsZero() {
		return list
	}
	//
	res := make([]Monomial, 0, len(list)+1)
	//
	for i, m := range list {
		switch m.inclusion(mono) {
		case inclContains:
			// m is absorbed by mono.
			continue
		case inclIncluded:
			// mono adds nothing the list does not already cover.
			res = append(res, list[i:]...)
			return res
		default:
			res = append(res, m)
		}
	}
	// ordered insert
	at := len(res)
	//
	for i, m := range res {
		if CompareDeltas(mono.Deltas, m.Deltas) < 0 {
			at = i
			break
		}
	}
	//
	res = append(res, Monomial{})
	copy(res[at+1:], res[at:])
	res[at] = mono
	//
	return res
}

// IsZero holds for the zero polynomial.
func (p Polynomial) IsZero() bool {
	return len(p.Mons) == 0
}

// Add sums two polynomials, renormalizing the result.
func (p Polynomial) Add(other Polynomial) Polynomial {
	mons := p.Mons
	//
	for _, m := range other.Mons {
		mons = insertMonomial(mons, m)
	}
	//
	return Polynomial{Mons: mons}
}

// Times multiplies two polynomials as the normalized sum of all
// pairwise monomial products.
func (p Polynomial) Times(other Polynomial) Polynomial {
	var mons []Monomial
	//
	for _, m1 := range p.Mons {
		for _, m2 := range other.Mons {
			mons = insertMonomial(mons, m1.Times(m2))
		}
	}
	//
	return Polynomial{Mons: mons}
}

// Equal is element-wise structural equality; both polynomials are
// assumed normalized.
func (p Polynomial) Equal(other Polynomial) bool {
	if len(p.Mons) != len(other.Mons) {
		return false
	}
	//
	for i, m := range p.Mons {
		if !m.Equal(other.Mons[i]) {
			return false
		}
	}
	//
	return true
}

// SomeInfty holds when some monomial carries an infinite coefficient.
func (p Polynomial) SomeInfty() bool {
	for _, m := range p.Mons {
		if m.Scalar == Infty {
			return true
		}
	}
	//
	return false
}

// Eval collects the delta sequences of monomials whose coefficient is
// infinite, or matches one of the additional scalars given.  These
// sequences feed the choice simplifier as failure witnesses.
func (p Polynomial) Eval(scalars ...Scalar) [][]Delta {
	var seqs [][]Delta
	//
	for _, m := range p.Mons {
		if m.Scalar == Infty || containsScalar(scalars, m.Scalar) {
			seqs = append(seqs, m.Deltas)
		}
	}
	//
	return seqs
}

func containsScalar(scalars []Scalar, s Scalar) bool {
	for _, t := range scalars {
		if t == s {
			return true
		}
	}
	//
	return false
}

// ChoiceScalar evaluates the polynomial under a fixed assignment of
// choices, summing the coefficients of all monomials whose deltas the
// assignment satisfies.  The zero polynomial always evaluates to zero;
// when every guarded monomial mismatches, least is returned (zero off
// the diagonal, m on it).
func (p Polynomial) ChoiceScalar(choices []int, least Scalar) Scalar {
	if p.IsZero() {
		return Zero
	}
	//
	matched := false
	acc := Zero
	//
	for _, m := range p.Mons {
		if scalar, ok := m.ChoiceScalar(choices); ok {
			acc = acc.Sum(scalar)
			matched = true
		}
	}
	//
	if !matched {
		return least
	}
	//
	return acc
}

func (p Polynomial) String() string {
	if p.IsZero() {
		return "+o"
	}
	//
	var sb strings.Builder
	//
	for _, m := range p.Mons {
		sb.WriteString("+")
		sb.WriteString(m.String())
	}
	//
	return sb.String()
}
