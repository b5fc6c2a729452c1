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
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Relation pairs a polynomial matrix with the ordered list of program
// variables indexing its rows and columns.  Entry (i, j) describes the
// flow from variable i into variable j.
type Relation struct {
	Vars   []string
	Matrix Matrix
}

// InftyBar separates groups of problematic flows in displays.
const InftyBar = "‖"

// NewRelation creates a relation over the given variables with a zero
// matrix.
func NewRelation(vars []string) Relation {
	return Relation{Vars: slices.Clone(vars), Matrix: ZeroMatrix(len(vars))}
}

// IdentityRelation creates a relation over the given variables with an
// identity matrix.
func IdentityRelation(vars []string) Relation {
	return Relation{Vars: slices.Clone(vars), Matrix: IdentityMatrix(len(vars))}
}

// IsEmpty holds when the relation has no variables.
func (r Relation) IsEmpty() bool {
	return len(r.Vars) == 0 || len(r.Matrix) == 0
}

// VarIndex returns the position of a variable in this relation.
func (r Relation) VarIndex(name string) int {
	return slices.Index(r.Vars, name)
}

// ReplaceColumn returns an identity relation over the same variables
// whose column for the given variable is replaced by the vector.  An
// unknown variable leaves the identity untouched.
func (r Relation) ReplaceColumn(vector []Polynomial, variable string) Relation {
	res := IdentityRelation(r.Vars)
	//
	if j := r.VarIndex(variable); j >= 0 {
		for i, value := range vector {
			res.Matrix[i][j] = value
		}
	}
	//
	return res
}

// Sum computes the sum of two relations after homogenisation.
func (r Relation) Sum(other Relation) Relation {
	er1, er2 := Homogenise(r, other)
	//
	return Relation{Vars: er1.Vars, Matrix: er1.Matrix.Sum(er2.Matrix)}
}

// Compose computes the sequential composition of two relations: the
// variable lists are unioned, both matrices homogenised to the union,
// and the matrices multiplied.
func (r Relation) Compose(other Relation) Relation {
	er1, er2 := Homogenise(r, other)
	//
	return Relation{Vars: er1.Vars, Matrix: er1.Matrix.Product(er2.Matrix)}
}

// Equal holds when both relations range over the same variables and
// their homogenised matrices agree element-wise.
func (r Relation) Equal(other Relation) bool {
	if len(r.Vars) != len(other.Vars) {
		return false
	}
	//
	for _, v := range r.Vars {
		if other.VarIndex(v) < 0 {
			return false
		}
	}
	//
	er1, er2 := Homogenise(r, other)
	//
	return er1.Matrix.Equal(er2.Matrix)
}

// Fixpoint computes the star of this relation: the least solution of
// R* = I + R*.R under element-wise sum.
func (r Relation) Fixpoint() (Relation, error) {
	log.Debugf("computing fixpoint for variables %v", r.Vars)
	//
	matrix, err := r.Matrix.Fixpoint()
	//
	if err != nil {
		return Relation{}, fmt.Errorf("fixpoint over %v: %w", r.Vars, err)
	}
	//
	log.Debugf("fixpoint done %v", r.Vars)
	//
	return Relation{Vars: r.Vars, Matrix: matrix}, nil
}

// WhileCorrection applies rule W after a while-loop fixpoint: any p
// coefficient, and any w coefficient on the diagonal, becomes
// infinite.  Every delta sequence so invalidated is recorded in the
// delta graph.
func (r Relation) WhileCorrection(dg *DeltaGraph) Relation {
	res := Relation{Vars: r.Vars, Matrix: make(Matrix, len(r.Matrix))}
	//
	for i, row := range r.Matrix {
		res.Matrix[i] = make([]Polynomial, len(row))
		//
		for j, poly := range row {
			mons := make([]Monomial, len(poly.Mons))
			//
			for k, mono := range poly.Mons {
				if mono.Scalar == Poly || (mono.Scalar == Weak && i == j) {
					mono = Monomial{Scalar: Infty, Deltas: mono.Deltas}
					dg.Insert(mono.Deltas)
				}
				//
				mons[k] = mono
			}
			//
			res.Matrix[i][j] = NewPolynomial(mons...)
		}
	}
	//
	return res
}

// LoopCorrection applies rule L after a bounded-loop fixpoint: any
// coefficient stronger than m on the diagonal becomes infinite, and
// every surviving p coefficient is additionally recorded as a flow
// from the loop control variable into the affected column.
func (r Relation) LoopCorrection(xVar string, dg *DeltaGraph) Relation {
	ell := r.VarIndex(xVar)
	res := Relation{Vars: r.Vars, Matrix: make(Matrix, len(r.Matrix))}
	// correct the diagonal
	for i, row := range r.Matrix {
		res.Matrix[i] = make([]Polynomial, len(row))
		//
		for j, poly := range row {
			mons := make([]Monomial, len(poly.Mons))
			//
			for k, mono := range poly.Mons {
				if i == j && mono.Scalar != Unit {
					mono = Monomial{Scalar: Infty, Deltas: mono.Deltas}
					dg.Insert(mono.Deltas)
				}
				//
				mons[k] = mono
			}
			//
			res.Matrix[i][j] = NewPolynomial(mons...)
		}
	}
	// route off-diagonal p flows through the control variable
	if ell >= 0 {
		for i, row := range res.Matrix {
			for j, poly := range row {
				if i == j {
					continue
				}
				//
				for _, mono := range poly.Mons {
					if mono.Scalar == Poly {
						res.Matrix[ell][j] = res.Matrix[ell][j].
							Add(NewPolynomial(mono))
					}
				}
			}
		}
	}
	//
	return res
}

// ApplyChoice evaluates every cell under a fixed derivation choice,
// producing a matrix of plain scalars.
func (r Relation) ApplyChoice(choices []int) SimpleRelation {
	n := len(r.Vars)
	matrix := make([][]Scalar, n)
	//
	for i := 0; i < n; i++ {
		matrix[i] = make([]Scalar, n)
		//
		for j := 0; j < n; j++ {
			least := Zero
			//
			if i == j {
				least = Unit
			}
			//
			matrix[i][j] = r.Matrix[i][j].ChoiceScalar(choices, least)
		}
	}
	//
	return SimpleRelation{Vars: slices.Clone(r.Vars), Matrix: matrix}
}

// Eval collects every delta sequence in the matrix labeled infinite
// and hands the set to the choice simplifier, yielding the compact
// disjunction of derivation choices that avoid all of them.
func (r Relation) Eval(domain []int, index int) Choices {
	seqs := newSeqSet()
	//
	for _, row := range r.Matrix {
		for _, poly := range row {
			for _, seq := range poly.Eval() {
				seqs.add(seq)
			}
		}
	}
	//
	return GenerateChoices(domain, index, seqs)
}

// VarEval is Eval restricted to a single target variable's column.
func (r Relation) VarEval(domain []int, index int, variable string) Choices {
	seqs := newSeqSet()
	col := r.VarIndex(variable)
	//
	for _, row := range r.Matrix {
		for _, seq := range row[col].Eval() {
			seqs.add(seq)
		}
	}
	//
	return GenerateChoices(domain, index, seqs)
}

// InftyVars identifies all variable pairs whose cell can, under some
// derivation, become infinite.  When onlyIncl is non-empty, pairs are
// kept only if either end occurs in it.  The result maps each source
// to its non-empty target list.
func (r Relation) InftyVars(onlyIncl []string) map[string][]string {
	res := make(map[string][]string)
	//
	for i, src := range r.Vars {
		var targets []string
		//
		for j, tgt := range r.Vars {
			if !r.Matrix[i][j].SomeInfty() {
				continue
			}
			//
			if len(onlyIncl) == 0 || slices.Contains(onlyIncl, src) ||
				slices.Contains(onlyIncl, tgt) {
				targets = append(targets, tgt)
			}
		}
		//
		if len(targets) != 0 {
			res[src] = targets
		}
	}
	//
	return res
}

// InftyPairs renders the problematic flows of this relation, grouped
// by source variable.
func (r Relation) InftyPairs(onlyIncl []string) string {
	infty := r.InftyVars(onlyIncl)
	var groups []string
	//
	for _, src := range r.Vars {
		if targets, ok := infty[src]; ok {
			groups = append(groups,
				fmt.Sprintf("%s ➔ %s", src, strings.Join(targets, ", ")))
		}
	}
	//
	return strings.Join(groups, " "+InftyBar+" ")
}

// Homogenise aligns two relations onto the union of their variables:
// the union preserves the order of the first list, appending new names
// from the second; each matrix is embedded accordingly with identity
// fill.
func Homogenise(r1, r2 Relation) (Relation, Relation) {
	if slices.Equal(r1.Vars, r2.Vars) {
		return r1, r2
	}
	//
	if r1.IsEmpty() {
		return IdentityRelation(r2.Vars), r2
	}
	//
	if r2.IsEmpty() {
		return r1, IdentityRelation(r1.Vars)
	}
	//
	log.Debug("matrix homogenisation...")
	//
	extended := slices.Clone(r1.Vars)
	//
	for _, v := range r2.Vars {
		if !slices.Contains(extended, v) {
			extended = append(extended, v)
		}
	}
	//
	size := len(extended)
	// first matrix occupies the top-left corner as-is
	matrix1 := r1.Matrix.Resize(size)
	// second matrix is scattered through the index mapping
	matrix2 := IdentityMatrix(size)
	//
	mapping := make([]int, size)
	//
	for i, v := range extended {
		mapping[i] = r2.VarIndex(v)
	}
	//
	for i := 0; i < size; i++ {
		if mapping[i] < 0 {
			continue
		}
		//
		for j := 0; j < size; j++ {
			if mapping[j] >= 0 {
				matrix2[i][j] = r2.Matrix[mapping[i]][mapping[j]]
			}
		}
	}
	//
	return Relation{Vars: extended, Matrix: matrix1},
		Relation{Vars: extended, Matrix: matrix2}
}

// String renders the relation as rows labeled by variable name.
func (r Relation) String() string {
	pad := 0
	//
	for _, v := range r.Vars {
		pad = max(pad, len(v))
	}
	//
	var sb strings.Builder
	//
	for i, v := range r.Vars {
		if i > 0 {
			sb.WriteString("\n")
		}
		//
		sb.WriteString(fmt.Sprintf("%-*s | ", pad, v))
		cells := make([]string, len(r.Matrix[i]))
		//
		for j, poly := range r.Matrix[i] {
			cells[j] = poly.String()
		}
		//
		sb.WriteString(strings.Join(cells, " "))
	}
	//
	return sb.String()
}

// SimpleRelation is a relation whose matrix holds plain scalars, the
// outcome of applying one derivation choice to a relation.
type SimpleRelation struct {
	Vars   []string
	Matrix [][]Scalar
}
