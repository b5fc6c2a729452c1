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

func Test_MwpBound_Expression_Forms(t *testing.T) {
	cases := []struct {
		name    string
		build   func(*MwpBound)
		compact string
		verbose string
	}{
		{
			name:    "empty",
			build:   func(b *MwpBound) {},
			compact: "0",
			verbose: "0",
		},
		{
			name:    "single max variable",
			build:   func(b *MwpBound) { b.Append(Unit, "x") },
			compact: "x",
			verbose: "x",
		},
		{
			name: "max collapses duplicates",
			build: func(b *MwpBound) {
				b.Append(Unit, "x")
				b.Append(Unit, "x")
			},
			compact: "x",
			verbose: "x",
		},
		{
			name: "two max variables",
			build: func(b *MwpBound) {
				b.Append(Unit, "x")
				b.Append(Unit, "y")
			},
			compact: "max(x,y)",
			verbose: "max(x,y,0)",
		},
		{
			name: "max and weak slots",
			build: func(b *MwpBound) {
				b.Append(Unit, "x")
				b.Append(Weak, "y")
			},
			compact: "max(x,y)",
			verbose: "max(x,y)",
		},
		{
			name:    "weak only",
			build:   func(b *MwpBound) { b.Append(Weak, "y") },
			compact: "y",
			verbose: "y",
		},
		{
			name: "weak pair",
			build: func(b *MwpBound) {
				b.Append(Weak, "y")
				b.Append(Weak, "z")
			},
			compact: "max(y+z)",
			verbose: "max(y+z,0)",
		},
		{
			name:    "poly only",
			build:   func(b *MwpBound) { b.Append(Poly, "z") },
			compact: "z",
			verbose: "z",
		},
		{
			name: "max plus poly tail",
			build: func(b *MwpBound) {
				b.Append(Unit, "x")
				b.Append(Poly, "y")
				b.Append(Poly, "z")
			},
			compact: "x+y*z",
			verbose: "max(x,0)+y*z",
		},
		{
			name: "zero flow contributes nothing",
			build: func(b *MwpBound) {
				b.Append(Zero, "q")
				b.Append(Unit, "x")
			},
			compact: "x",
			verbose: "x",
		},
	}
	//
	for _, tc := range cases {
		b := NewMwpBound()
		tc.build(b)
		//
		if got := b.Expression(true); got != tc.compact {
			t.Errorf("%s: compact %q != %q", tc.name, got, tc.compact)
		}
		//
		if got := b.Expression(false); got != tc.verbose {
			t.Errorf("%s: verbose %q != %q", tc.name, got, tc.verbose)
		}
	}
}

func Test_MwpBound_Triple_Roundtrip(t *testing.T) {
	b := NewMwpBound()
	b.Append(Unit, "x")
	b.Append(Weak, "y")
	b.Append(Poly, "z")
	b.Append(Poly, "w")
	//
	restored := ParseMwpBound(b.Triple())
	//
	if !b.Equal(restored) {
		t.Errorf("triple roundtrip failed: %q", b.Triple())
	}
}

func Test_Bound_Calculate(t *testing.T) {
	rel := SimpleRelation{
		Vars: []string{"x", "y"},
		Matrix: [][]Scalar{
			{Unit, Poly},
			{Weak, Unit},
		},
	}
	bound := CalculateBound(rel)
	// column x: x at m, y at w
	if got := bound.ByName["x"].Expression(true); got != "max(x,y)" {
		t.Errorf("x bound %q", got)
	}
	// column y: x at p, y at m
	if got := bound.ByName["y"].Expression(true); got != "y+x" {
		t.Errorf("y bound %q", got)
	}
	//
	show := bound.Show(true, false)
	expected := "x′≤max(x,y) ∧ y′≤y+x"
	//
	if show != expected {
		t.Errorf("show %q != %q", show, expected)
	}
	// significant mode drops self-restating bounds
	id := SimpleRelation{
		Vars:   []string{"x"},
		Matrix: [][]Scalar{{Unit}},
	}
	//
	if got := CalculateBound(id).Show(true, true); got != "" {
		t.Errorf("expected empty significant display, got %q", got)
	}
}
