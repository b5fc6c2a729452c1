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

import "testing"

var scalars = []Scalar{Zero, Unit, Weak, Poly, Infty}

// expected product table, row by row in the order o, m, w, p, i.
var prodTable = [5][5]Scalar{
	{Zero, Zero, Zero, Zero, Infty},
	{Zero, Unit, Weak, Poly, Infty},
	{Zero, Weak, Weak, Poly, Infty},
	{Zero, Poly, Poly, Poly, Infty},
	{Infty, Infty, Infty, Infty, Infty},
}

// expected sum table: the least upper bound.
var sumTable = [5][5]Scalar{
	{Zero, Unit, Weak, Poly, Infty},
	{Unit, Unit, Weak, Poly, Infty},
	{Weak, Weak, Weak, Poly, Infty},
	{Poly, Poly, Poly, Poly, Infty},
	{Infty, Infty, Infty, Infty, Infty},
}

func Test_Scalar_Tables(t *testing.T) {
	for i, a := range scalars {
		for j, b := range scalars {
			if x := a.Times(b); x != prodTable[i][j] {
				t.Errorf("%s * %s == %s != %s", a, b, x, prodTable[i][j])
			}
			//
			if x := a.Sum(b); x != sumTable[i][j] {
				t.Errorf("%s + %s == %s != %s", a, b, x, sumTable[i][j])
			}
		}
	}
}

func Test_Scalar_Sum_Laws(t *testing.T) {
	for _, a := range scalars {
		if a.Sum(Zero) != a {
			t.Errorf("0 is not identity at %s", a)
		}
		//
		if a.Sum(Infty) != Infty {
			t.Errorf("i does not absorb %s", a)
		}
		//
		if a.Sum(a) != a {
			t.Errorf("sum not idempotent at %s", a)
		}
		//
		for _, b := range scalars {
			if a.Sum(b) != b.Sum(a) {
				t.Errorf("sum not commutative at %s, %s", a, b)
			}
			//
			for _, c := range scalars {
				if a.Sum(b).Sum(c) != a.Sum(b.Sum(c)) {
					t.Errorf("sum not associative at %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func Test_Scalar_Times_Laws(t *testing.T) {
	for _, a := range scalars {
		if a.Times(Unit) != a {
			t.Errorf("m is not identity at %s", a)
		}
		//
		if a.Times(Infty) != Infty {
			t.Errorf("i does not absorb %s", a)
		}
		//
		if a != Infty && a.Times(Zero) != Zero {
			t.Errorf("0 does not absorb %s", a)
		}
		//
		for _, b := range scalars {
			if a.Times(b) != b.Times(a) {
				t.Errorf("product not commutative at %s, %s", a, b)
			}
			//
			for _, c := range scalars {
				if a.Times(b).Times(c) != a.Times(b.Times(c)) {
					t.Errorf("product not associative at %s, %s, %s", a, b, c)
				}
				// distributivity over sum
				if a.Times(b.Sum(c)) != a.Times(b).Sum(a.Times(c)) {
					t.Errorf("product does not distribute at %s, %s, %s",
						a, b, c)
				}
			}
		}
	}
}

func Test_Scalar_Parse(t *testing.T) {
	for _, a := range scalars {
		parsed, err := ParseScalar(a.String())
		//
		if err != nil || parsed != a {
			t.Errorf("parse %q failed", a.String())
		}
	}
	//
	if _, err := ParseScalar("x"); err == nil {
		t.Error("expected error for unknown scalar")
	}
}
