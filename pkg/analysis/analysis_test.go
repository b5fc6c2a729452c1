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
package analysis

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/statycc/go-mwp/pkg/lang"
	"github.com/statycc/go-mwp/pkg/mwp"
)

// terse AST constructors keep the test programs readable.

func v(name string) *lang.Var { return &lang.Var{Name: name} }

func c(value int) *lang.Const { return &lang.Const{Value: value} }

func set(target string, value lang.Expr) lang.Stmt {
	return &lang.Assign{Target: target, Value: value}
}

func bin(op string, lhs, rhs lang.Expr) lang.Expr {
	return &lang.BinOp{Op: op, Lhs: lhs, Rhs: rhs}
}

func block(stmts ...lang.Stmt) *lang.Block {
	return &lang.Block{Stmts: stmts}
}

func fun(name string, params []string, stmts ...lang.Stmt) *lang.Function {
	return &lang.Function{Name: name, Params: params, Body: block(stmts...)}
}

func analyze(fn *lang.Function, opts Options) *FuncResult {
	return New(opts).Function(fn)
}

// foo(y1, y2) { y2 = y1 + y1 }
func Test_Analyze_Simple_Addition(t *testing.T) {
	fn := fun("foo", []string{"y1", "y2"},
		set("y2", bin("+", v("y1"), v("y1"))))
	res := analyze(fn, Options{})
	//
	if res.Infinite {
		t.Fatal("expected a bound")
	}
	//
	if res.Index != 1 {
		t.Errorf("expected 1 choice point, got %d", res.Index)
	}
	//
	expected := [][][]int{{{0, 1, 2}}}
	//
	if diff := cmp.Diff(expected, res.Choices.Valid); diff != "" {
		t.Errorf("choices (-want +got):\n%s", diff)
	}
	//
	if got := res.Bound.Show(true, false); got != "y1′≤y1 ∧ y2′≤y1" {
		t.Errorf("bound %q", got)
	}
}

// main(x, n, p, r) { p = x;
//   while (n > 0) { if (n % 2 == 1) r = p * r; p = p * p; n = n / 2 } }
func exponentiation() *lang.Function {
	return fun("main", []string{"x", "n", "p", "r"},
		set("p", v("x")),
		&lang.While{
			Cond: bin(">", v("n"), c(0)),
			Body: block(
				&lang.If{
					Cond: bin("==", bin("%", v("n"), c(2)), c(1)),
					Then: set("r", bin("*", v("p"), v("r"))),
				},
				set("p", bin("*", v("p"), v("p"))),
				set("n", bin("/", v("n"), c(2))),
			),
		})
}

func Test_Analyze_Exponentiation_Infinite(t *testing.T) {
	res := analyze(exponentiation(), Options{})
	//
	if !res.Infinite {
		t.Fatal("squaring under a loop must be infinite")
	}
	// the early exit withholds the matrix
	if res.Relation != nil {
		t.Error("expected no relation on early exit")
	}
	// the skipped division shows up as a warning
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the skipped division")
	}
}

func Test_Analyze_Exponentiation_Flows(t *testing.T) {
	res := analyze(exponentiation(), Options{Fin: true})
	//
	if !res.Infinite {
		t.Fatal("expected infinite")
	}
	//
	if res.Relation == nil {
		t.Fatal("fin mode must produce the matrix")
	}
	//
	for _, flow := range []string{"p ➔ p, r", "x ➔ p, r"} {
		if !strings.Contains(res.InfFlows, flow) {
			t.Errorf("missing problematic flow %q in %q", flow, res.InfFlows)
		}
	}
	// the structured map agrees with the display string
	if targets := res.ProblematicFlows["p"]; len(targets) != 2 {
		t.Errorf("expected p to drive both p and r, got %v", targets)
	}
}

// foo(X1, X2, X3) { X1 = X2 + X3; X1 = X1 + X1 }
func Test_Analyze_Two_Additions(t *testing.T) {
	fn := fun("foo", []string{"X1", "X2", "X3"},
		set("X1", bin("+", v("X2"), v("X3"))),
		set("X1", bin("+", v("X1"), v("X1"))))
	res := analyze(fn, Options{})
	//
	if res.Infinite {
		t.Fatal("expected a bound")
	}
	//
	if res.Index != 2 {
		t.Errorf("expected 2 choice points, got %d", res.Index)
	}
	// every combination derives
	expected := [][][]int{{{0, 1, 2}, {0, 1, 2}}}
	//
	if diff := cmp.Diff(expected, res.Choices.Valid); diff != "" {
		t.Errorf("choices (-want +got):\n%s", diff)
	}
	// under the derivation keeping X2 linear and weakening the second
	// addition, both sources land in additive position
	bound := mwp.CalculateBound(res.Relation.ApplyChoice([]int{0, 2}))
	expectedBound := "X1′≤X2+X3 ∧ X2′≤X2 ∧ X3′≤X3"
	//
	if got := bound.Show(true, false); got != expectedBound {
		t.Errorf("bound %q != %q", got, expectedBound)
	}
}

// foo(X0, X1, X2, X3) {
//   if (X1 == 1) { X1 = X2 + X1; X2 = X3 + X2 }
//   while (X0 < 10) { X0 = X1 + X2 } }
func branchThenLoop() *lang.Function {
	return fun("foo", []string{"X0", "X1", "X2", "X3"},
		&lang.If{
			Cond: bin("==", v("X1"), c(1)),
			Then: block(
				set("X1", bin("+", v("X2"), v("X1"))),
				set("X2", bin("+", v("X3"), v("X2"))),
			),
		},
		&lang.While{
			Cond: bin("<", v("X0"), c(10)),
			Body: block(set("X0", bin("+", v("X1"), v("X2")))),
		})
}

func Test_Analyze_Branch_Then_Loop(t *testing.T) {
	res := analyze(branchThenLoop(), Options{})
	//
	if res.Infinite {
		t.Fatal("expected a bound")
	}
	//
	if res.Index != 3 {
		t.Errorf("expected 3 choice points, got %d", res.Index)
	}
	// only the weak derivation survives inside the loop
	expected := [][][]int{{{0, 1, 2}, {0, 1, 2}, {2}}}
	//
	if diff := cmp.Diff(expected, res.Choices.Valid); diff != "" {
		t.Errorf("choices (-want +got):\n%s", diff)
	}
	//
	expectedBound := "X0′≤max(X0,X1)+X2*X3 ∧ X1′≤X1+X2 ∧ " +
		"X2′≤X2+X3 ∧ X3′≤X3"
	//
	if got := res.Bound.Show(true, false); got != expectedBound {
		t.Errorf("bound %q != %q", got, expectedBound)
	}
}

// foo(X1, X2, X3) {
//   if (X1 == 1) { X1 = X2 + X1; X2 = X3 + X2 }
//   while (X1 < 10) { X1 = X2 + X1 } }
func Test_Analyze_SelfFeeding_Loop_Infinite(t *testing.T) {
	fn := fun("foo", []string{"X1", "X2", "X3"},
		&lang.If{
			Cond: bin("==", v("X1"), c(1)),
			Then: block(
				set("X1", bin("+", v("X2"), v("X1"))),
				set("X2", bin("+", v("X3"), v("X2"))),
			),
		},
		&lang.While{
			Cond: bin("<", v("X1"), c(10)),
			Body: block(set("X1", bin("+", v("X2"), v("X1")))),
		})
	res := analyze(fn, Options{Fin: true})
	//
	if !res.Infinite {
		t.Fatal("expected infinite")
	}
	//
	if !strings.Contains(res.InfFlows, "➔ X1") {
		t.Errorf("problematic flows must target X1, got %q", res.InfFlows)
	}
}

// six independent binary assignments over six fresh variable triples
func Test_Analyze_Dense_Choice_Space(t *testing.T) {
	names := []string{"a", "b", "z"}
	var params []string
	var stmts []lang.Stmt
	//
	for i := 0; i < 6; i++ {
		suffix := string(rune('1' + i))
		a, b, z := names[0]+suffix, names[1]+suffix, names[2]+suffix
		params = append(params, a, b, z)
		stmts = append(stmts, set(z, bin("+", v(a), v(b))))
	}
	//
	res := analyze(fun("dense", params, stmts...), Options{})
	//
	if res.Infinite {
		t.Fatal("expected a bound")
	}
	//
	if res.Index != 6 {
		t.Errorf("expected 6 choice points, got %d", res.Index)
	}
	// a single all-permissive vector despite the large choice space
	if len(res.Choices.Valid) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(res.Choices.Valid))
	}
	//
	for _, values := range res.Choices.Valid[0] {
		if len(values) != 3 {
			t.Errorf("expected full domain, got %v", values)
		}
	}
	//
	if res.Choices.NBounds() != 729 {
		t.Errorf("expected 729 derivations, got %d", res.Choices.NBounds())
	}
	// every output is polynomially bounded in its inputs
	if got := res.Bound.ByName["z1"].Expression(true); got != "a1+b1" {
		t.Errorf("z1 bound %q", got)
	}
}

func Test_Analyze_Empty_Function(t *testing.T) {
	res := analyze(fun("empty", []string{"x", "y"}), Options{})
	//
	if res.Infinite || res.Index != 0 {
		t.Fatalf("empty body must be bounded with no choices, got %v", res)
	}
	// identity relation: every variable bounded by itself
	if got := res.Bound.Show(true, false); got != "x′≤x ∧ y′≤y" {
		t.Errorf("bound %q", got)
	}
}

func Test_Analyze_Strict_Rejects_Call(t *testing.T) {
	fn := fun("caller", []string{"x"},
		set("x", c(0)),
		&lang.Call{Name: "helper", Args: []lang.Expr{v("x")}})
	//
	result := New(Options{Strict: true}).Program(&lang.Program{
		Functions: []*lang.Function{fn},
	})
	fr := result.GetFunction("caller")
	//
	if fr == nil || !fr.Unsupported {
		t.Fatal("strict mode must mark the function unsupported")
	}
	//
	if fr.Bound != nil || fr.Relation != nil {
		t.Error("unsupported functions carry no verdict")
	}
}

func Test_Analyze_Skip_Mode_Warns(t *testing.T) {
	fn := fun("caller", []string{"x", "y"},
		set("y", v("x")),
		&lang.Call{Name: "helper", Args: []lang.Expr{v("x")}})
	res := analyze(fn, Options{})
	//
	if res.Infinite {
		t.Fatal("expected a bound")
	}
	//
	if len(res.Warnings) != 1 ||
		!strings.Contains(res.Warnings[0], "helper") {
		t.Errorf("expected a skip warning for the call, got %v", res.Warnings)
	}
	//
	if got := res.Bound.Show(true, false); got != "x′≤x ∧ y′≤x" {
		t.Errorf("bound %q", got)
	}
}

func Test_Analyze_Unary_Rewrites(t *testing.T) {
	// x = ++y increments y, then x copies the updated value
	fn := fun("inc", []string{"x", "y"},
		set("x", &lang.UnOp{Op: "++", Arg: v("y")}))
	res := analyze(fn, Options{})
	//
	if res.Infinite {
		t.Fatal("expected a bound")
	}
	//
	if res.Index != 1 {
		t.Errorf("expected 1 choice point, got %d", res.Index)
	}
	// x ends up bounded by y under every derivation
	witness, _ := res.Choices.First()
	bound := mwp.CalculateBound(res.Relation.ApplyChoice(witness))
	//
	if got := bound.ByName["x"].Expression(true); !strings.Contains(got, "y") {
		t.Errorf("x must depend on y, got %q", got)
	}
}

func Test_Analyze_Bounded_For_Loop(t *testing.T) {
	// for (i = 0; i < n; i++) { y = y + z }: n bounds the iteration
	fn := fun("bounded", []string{"n", "y", "z"},
		&lang.For{
			Init: set("i", c(0)),
			Cond: bin("<", v("i"), v("n")),
			Step: &lang.UnOp{Op: "p++", Arg: v("i")},
			Body: block(set("y", bin("+", v("y"), v("z")))),
		})
	res := analyze(fn, Options{Fin: true})
	//
	if res.Infinite {
		t.Fatalf("expected a bound, flows %q", res.InfFlows)
	}
	// the loop bound variable enters y's dependencies
	witness, ok := res.Choices.First()
	//
	if !ok {
		t.Fatal("expected a witness")
	}
	//
	bound := mwp.CalculateBound(res.Relation.ApplyChoice(witness))
	//
	if got := bound.ByName["y"].Expression(true); !strings.Contains(got, "n") {
		t.Errorf("y must depend on the iteration count n, got %q", got)
	}
}

func Test_Analyze_Program_Counts(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.Function{
		branchThenLoop(),
		exponentiation(),
	}}
	result := New(Options{}).Program(prog)
	//
	if result.Program.NFunc != 2 {
		t.Errorf("expected 2 functions, got %d", result.Program.NFunc)
	}
	//
	if result.Program.NLoops != 2 {
		t.Errorf("expected 2 loops, got %d", result.Program.NLoops)
	}
	//
	if result.EndTime < result.StartTime {
		t.Error("timestamps not recorded")
	}
}
