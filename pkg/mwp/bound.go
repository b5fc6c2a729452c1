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
	"fmt"
	"sort"
	"strings"
)

// LAND joins the per-variable bounds of a program bound.
const LAND = "∧"

// honestPoly is one slot of an mwp-bound: a set of variables rendered
// with a fixed joining operator.
type honestPoly struct {
	op   string
	vars map[string]bool
}

func newHonestPoly(op string) *honestPoly {
	return &honestPoly{op: op, vars: make(map[string]bool)}
}

func (h *honestPoly) add(name string) {
	h.vars[name] = true
}

func (h *honestPoly) empty() bool {
	return len(h.vars) == 0
}

// sorted returns the variable list in display order.
func (h *honestPoly) sorted() []string {
	res := make([]string, 0, len(h.vars))
	//
	for v := range h.vars {
		res = append(res, v)
	}
	//
	sort.Strings(res)
	//
	return res
}

func (h *honestPoly) String() string {
	if h.empty() {
		return "0"
	}
	//
	return strings.Join(h.sorted(), h.op)
}

func (h *honestPoly) equal(other *honestPoly) bool {
	if len(h.vars) != len(other.vars) {
		return false
	}
	//
	for v := range h.vars {
		if !other.vars[v] {
			return false
		}
	}
	//
	return true
}

// MwpBound is the symbolic bound of one variable: an inequality of the
// form x' <= max(x-vars, w-vars) + p-vars, where m-flow sources join
// the max argument list, w-flow sources form an additive polynomial
// and p-flow sources a multiplicative one.
type MwpBound struct {
	x *honestPoly // m sources, max arguments
	y *honestPoly // w sources, joined by +
	z *honestPoly // p sources, joined by *
}

// NewMwpBound creates an empty bound.
func NewMwpBound() *MwpBound {
	return &MwpBound{
		x: newHonestPoly(","),
		y: newHonestPoly("+"),
		z: newHonestPoly("*"),
	}
}

// ParseMwpBound restores a bound from its "m;w;p" triple string.
func ParseMwpBound(triple string) *MwpBound {
	b := NewMwpBound()
	parts := strings.SplitN(triple, ";", 3)
	slots := []*honestPoly{b.x, b.y, b.z}
	//
	for i, part := range parts {
		if i >= len(slots) || part == "" {
			continue
		}
		//
		for _, v := range strings.Split(part, ",") {
			slots[i].add(v)
		}
	}
	//
	return b
}

// Append records one source variable in the slot matching its flow
// strength.  Zero flows contribute nothing; infinite flows must never
// reach a bound.
func (b *MwpBound) Append(scalar Scalar, name string) {
	switch scalar {
	case Unit:
		b.x.add(name)
	case Weak:
		b.y.add(name)
	case Poly:
		b.z.add(name)
	}
}

// Equal compares two bounds slot-wise.
func (b *MwpBound) Equal(other *MwpBound) bool {
	return b.x.equal(other.x) && b.y.equal(other.y) && b.z.equal(other.z)
}

// Triple renders the bound in its "m;w;p" serialized form.
func (b *MwpBound) Triple() string {
	parts := make([]string, 3)
	//
	for i, slot := range []*honestPoly{b.x, b.y, b.z} {
		parts[i] = strings.Join(slot.sorted(), ",")
	}
	//
	return strings.Join(parts, ";")
}

// Expression renders the bound's right-hand side, eliding empty slots:
// a one-variable max collapses to the variable and an empty polynomial
// tail drops its "+".
func (b *MwpBound) Expression(compact bool) string {
	x, y, z := b.x, b.y, b.z
	term := ""
	//
	switch {
	case !x.empty() && !y.empty():
		term = fmt.Sprintf("max(%s,%s)", x, y)
	case !x.empty():
		term = maxTerm(x, z, compact)
	case !y.empty():
		term = maxTerm(y, z, compact)
	}
	//
	if term == "" {
		return z.String()
	}
	//
	if z.empty() {
		return term
	}
	//
	return term + "+" + z.String()
}

// maxTerm renders a lone max slot: a single variable needs no max
// wrapper, and the compact form drops the explicit ",0".
func maxTerm(slot, z *honestPoly, compact bool) string {
	if compact {
		if len(slot.vars) > 1 {
			return fmt.Sprintf("max(%s)", slot)
		}
		//
		return slot.String()
	}
	//
	if len(slot.vars) > 1 || !z.empty() {
		return fmt.Sprintf("max(%s,0)", slot)
	}
	//
	return slot.String()
}

// Inequality renders "name' <= expression".
func (b *MwpBound) Inequality(name string, compact bool) string {
	rel := " ≤ "
	//
	if compact {
		rel = "≤"
	}
	//
	return name + "′" + rel + b.Expression(compact)
}

func (b *MwpBound) String() string {
	return b.Expression(false)
}

// Bound is the program bound of a relation: one mwp-bound per
// variable, keyed and ordered by the relation's variable list.
type Bound struct {
	Vars   []string
	ByName map[string]*MwpBound
}

// CalculateBound derives the bound of a choice-evaluated relation: for
// every target column, each source row contributes its variable to the
// slot selected by the cell's scalar.
func CalculateBound(relation SimpleRelation) *Bound {
	b := &Bound{
		Vars:   relation.Vars,
		ByName: make(map[string]*MwpBound, len(relation.Vars)),
	}
	//
	for col, name := range relation.Vars {
		varBound := NewMwpBound()
		//
		for row := range relation.Matrix {
			varBound.Append(relation.Matrix[row][col], relation.Vars[row])
		}
		//
		b.ByName[name] = varBound
	}
	//
	return b
}

// Show renders the conjunction of per-variable inequalities.  With
// significant set, bounds that merely restate the variable itself are
// omitted.
func (b *Bound) Show(compact, significant bool) string {
	var parts []string
	//
	for _, name := range b.Vars {
		vb := b.ByName[name]
		//
		if significant && vb.Expression(false) == name {
			continue
		}
		//
		parts = append(parts, vb.Inequality(name, compact))
	}
	//
	return strings.Join(parts, " "+LAND+" ")
}

// Triples serializes the bound as variable -> "m;w;p" strings.
func (b *Bound) Triples() map[string]string {
	res := make(map[string]string, len(b.ByName))
	//
	for name, vb := range b.ByName {
		res[name] = vb.Triple()
	}
	//
	return res
}

func (b *Bound) String() string {
	return b.Show(false, false)
}
