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

// RelationList carries the disjunction of relations arising from
// conditional branches.  Operations apply to every member; the list
// itself is the analyzer's mutable accumulator, while the relations it
// holds remain immutable values.
type RelationList struct {
	Relations []Relation
}

// NewRelationList creates a list holding one zero relation over the
// given variables (none for an empty relation).
func NewRelationList(vars ...string) *RelationList {
	return &RelationList{Relations: []Relation{NewRelation(vars)}}
}

// IdentityList creates a list holding one identity relation.
func IdentityList(vars []string) *RelationList {
	return &RelationList{Relations: []Relation{IdentityRelation(vars)}}
}

// First returns the first relation of the list.
func (rl *RelationList) First() Relation {
	return rl.Relations[0]
}

// ReplaceColumn replaces, in every member, the column of the given
// variable by the vector.
func (rl *RelationList) ReplaceColumn(vector []Polynomial, variable string) {
	for i, rel := range rl.Relations {
		rl.Relations[i] = rel.ReplaceColumn(vector, variable)
	}
}

// Composition composes every member with every member of the other
// list, keeping one representative per distinct matrix.
func (rl *RelationList) Composition(other *RelationList) {
	var composed []Relation
	//
	for _, r1 := range rl.Relations {
		for _, r2 := range other.Relations {
			output := r1.Compose(r2)
			//
			if !containsMatrix(composed, output.Matrix) {
				composed = append(composed, output)
			}
		}
	}
	//
	rl.Relations = composed
}

// containsMatrix checks whether some member already carries this
// matrix.
func containsMatrix(relations []Relation, matrix Matrix) bool {
	for _, rel := range relations {
		if rel.Matrix.Equal(matrix) {
			return true
		}
	}
	//
	return false
}

// OneComposition composes every member with a single relation.
func (rl *RelationList) OneComposition(relation Relation) {
	for i, rel := range rl.Relations {
		rl.Relations[i] = rel.Compose(relation)
	}
}

// Add pairs up the members of two lists by summation, yielding the
// aggregated disjunction of two branches.
func (rl *RelationList) Add(other *RelationList) *RelationList {
	var relations []Relation
	//
	for _, r1 := range rl.Relations {
		for _, r2 := range other.Relations {
			relations = append(relations, r1.Sum(r2))
		}
	}
	//
	return &RelationList{Relations: relations}
}

// Fixpoint replaces every member by its star.
func (rl *RelationList) Fixpoint() error {
	for i, rel := range rl.Relations {
		fix, err := rel.Fixpoint()
		//
		if err != nil {
			return err
		}
		//
		rl.Relations[i] = fix
	}
	//
	return nil
}

// WhileCorrection applies rule W to every member.
func (rl *RelationList) WhileCorrection(dg *DeltaGraph) {
	for i, rel := range rl.Relations {
		rl.Relations[i] = rel.WhileCorrection(dg)
	}
}

// LoopCorrection applies rule L to every member.
func (rl *RelationList) LoopCorrection(xVar string, dg *DeltaGraph) {
	for i, rel := range rl.Relations {
		rl.Relations[i] = rel.LoopCorrection(xVar, dg)
	}
}

func (rl *RelationList) String() string {
	divider := strings.Repeat("-", 72)
	parts := make([]string, len(rl.Relations))
	//
	for i, rel := range rl.Relations {
		parts[i] = rel.String()
	}
	//
	return divider + "\n" + strings.Join(parts, "\n\n") + "\n" + divider
}
