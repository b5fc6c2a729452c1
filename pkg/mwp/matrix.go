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
	"errors"
)

// Matrix is a square array of polynomials.  The row index denotes the
// source of a dependency and the column index its target.
type Matrix [][]Polynomial

// ErrFixpointDiverged reports that the star iteration exceeded its
// iteration cap.  The lattice of polynomials over a fixed delta set is
// finite, so hitting the cap indicates a bug rather than a legitimate
// long-running computation.
var ErrFixpointDiverged = errors.New("fixpoint iteration cap exceeded")

// fixpointIterCap bounds the star iteration as a safety net.
const fixpointIterCap = 100_000

// ZeroMatrix creates a size x size matrix of zero polynomials.
func ZeroMatrix(size int) Matrix {
	mat := make(Matrix, size)
	//
	for i := range mat {
		mat[i] = make([]Polynomial, size)
	}
	//
	return mat
}

// IdentityMatrix creates a size x size matrix with m on the diagonal
// and zero elsewhere.
func IdentityMatrix(size int) Matrix {
	mat := ZeroMatrix(size)
	//
	for i := range mat {
		mat[i][i] = UnitPolynomial()
	}
	//
	return mat
}

// Size returns the matrix dimension.
func (m Matrix) Size() int {
	return len(m)
}

// Sum computes the element-wise sum of two equally sized matrices.
func (m Matrix) Sum(other Matrix) Matrix {
	res := make(Matrix, len(m))
	//
	for i := range m {
		res[i] = make([]Polynomial, len(m))
		//
		for j := range m[i] {
			res[i][j] = m[i][j].Add(other[i][j])
		}
	}
	//
	return res
}

// Product computes the matrix product of two equally sized matrices
// under polynomial addition and multiplication.
func (m Matrix) Product(other Matrix) Matrix {
	n := len(m)
	res := make(Matrix, n)
	//
	for i := 0; i < n; i++ {
		res[i] = make([]Polynomial, n)
		//
		for j := 0; j < n; j++ {
			acc := ZeroPolynomial()
			//
			for k := 0; k < n; k++ {
				acc = acc.Add(m[i][k].Times(other[k][j]))
			}
			//
			res[i][j] = acc
		}
	}
	//
	return res
}

// Resize embeds this matrix into the top-left corner of a larger
// identity matrix.  Uncovered diagonal entries become m and uncovered
// off-diagonal entries zero, which is the homogenization fill.
func (m Matrix) Resize(size int) Matrix {
	res := IdentityMatrix(size)
	bound := min(size, len(m))
	//
	for i := 0; i < bound; i++ {
		for j := 0; j < bound; j++ {
			res[i][j] = m[i][j]
		}
	}
	//
	return res
}

// Equal is element-wise polynomial equality.  Matrices of different
// size are never equal.
func (m Matrix) Equal(other Matrix) bool {
	if len(m) != len(other) {
		return false
	}
	//
	for i := range m {
		for j := range m[i] {
			if !m[i][j].Equal(other[i][j]) {
				return false
			}
		}
	}
	//
	return true
}

// Fixpoint computes the star I + M + M^2 + M^3 + ... by iterating
// until the accumulated sum stops changing.  Termination is guaranteed
// by the finite lattice of normalized polynomials over the deltas
// occurring in M; the iteration cap guards against defects.
func (m Matrix) Fixpoint() (Matrix, error) {
	next := m
	result := IdentityMatrix(len(m)).Sum(m)
	//
	for i := 0; i < fixpointIterCap; i++ {
		previous := result
		next = next.Product(m)
		result = result.Sum(next)
		//
		if result.Equal(previous) {
			return result, nil
		}
	}
	//
	return nil, ErrFixpointDiverged
}

// EncodedMonomial is the serialized form of one monomial: a scalar
// letter and a list of [value, index] delta pairs.
type EncodedMonomial struct {
	Scalar string  `json:"scalar"`
	Deltas []Delta `json:"deltas"`
}

// Encode converts a matrix to its serializable form: each cell becomes
// the list of its monomials.
func (m Matrix) Encode() [][][]EncodedMonomial {
	res := make([][][]EncodedMonomial, len(m))
	//
	for i, row := range m {
		res[i] = make([][]EncodedMonomial, len(row))
		//
		for j, poly := range row {
			mons := poly.Mons
			//
			if len(mons) == 0 {
				mons = []Monomial{NewMonomial(Zero)}
			}
			//
			cell := make([]EncodedMonomial, len(mons))
			//
			for k, mono := range mons {
				cell[k] = EncodedMonomial{
					Scalar: mono.Scalar.String(),
					Deltas: mono.Deltas,
				}
			}
			//
			res[i][j] = cell
		}
	}
	//
	return res
}

// DecodeMatrix restores a matrix from its serialized form.
func DecodeMatrix(encoded [][][]EncodedMonomial) (Matrix, error) {
	res := make(Matrix, len(encoded))
	//
	for i, row := range encoded {
		res[i] = make([]Polynomial, len(row))
		//
		for j, cell := range row {
			mons := make([]Monomial, len(cell))
			//
			for k, mono := range cell {
				scalar, err := ParseScalar(mono.Scalar)
				//
				if err != nil {
					return nil, err
				}
				//
				mons[k] = NewMonomial(scalar, mono.Deltas...)
			}
			//
			res[i][j] = NewPolynomial(mons...)
		}
	}
	//
	return res, nil
}
