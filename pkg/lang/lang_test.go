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
package lang

import (
	"slices"
	"testing"
)

const sampleProgram = `{
  "kind": "program",
  "functions": [{
    "kind": "function",
    "name": "foo",
    "params": ["y1", "y2"],
    "body": {
      "kind": "block",
      "stmts": [
        {"kind": "decl", "var": "t"},
        {"kind": "assign", "target": "y2", "value": {
          "kind": "binop", "op": "+",
          "lhs": {"kind": "var", "name": "y1"},
          "rhs": {"kind": "var", "name": "y1"}}},
        {"kind": "if",
         "cond": {"kind": "binop", "op": "<",
                  "lhs": {"kind": "var", "name": "y1"},
                  "rhs": {"kind": "const", "value": 10}},
         "then": {"kind": "assign", "target": "t",
                  "value": {"kind": "const", "value": 0}}},
        {"kind": "while",
         "cond": {"kind": "var", "name": "y2"},
         "body": {"kind": "block", "stmts": [
           {"kind": "unop", "op": "p--", "arg": {"kind": "var", "name": "y2"}}
         ]}},
        {"kind": "return", "value": {"kind": "var", "name": "y2"}}
      ]
    }
  }]
}`

func Test_Decode_Sample(t *testing.T) {
	prog, err := Decode([]byte(sampleProgram))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	//
	fn := prog.Functions[0]
	//
	if fn.Name != "foo" || !slices.Equal(fn.Params, []string{"y1", "y2"}) {
		t.Errorf("function header broken: %s %v", fn.Name, fn.Params)
	}
	//
	if len(fn.Body.Stmts) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(fn.Body.Stmts))
	}
	//
	assign, ok := fn.Body.Stmts[1].(*Assign)
	//
	if !ok || assign.Target != "y2" {
		t.Fatalf("expected assignment to y2, got %v", fn.Body.Stmts[1])
	}
	//
	binop, ok := assign.Value.(*BinOp)
	//
	if !ok || binop.Op != "+" {
		t.Fatalf("expected binary +, got %v", assign.Value)
	}
}

func Test_Decode_Errors(t *testing.T) {
	if _, err := Decode([]byte(`{"kind": "function"}`)); err == nil {
		t.Error("expected error for non-program root")
	}
	//
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed input")
	}
	//
	bad := `{"kind":"program","functions":[{"kind":"function","name":"f",
	  "body": {"kind": "mystery"}}]}`
	//
	if _, err := Decode([]byte(bad)); err == nil {
		t.Error("expected error for unknown statement kind")
	}
}

func Test_Function_Variables_Order(t *testing.T) {
	prog, err := Decode([]byte(sampleProgram))
	//
	if err != nil {
		t.Fatal(err)
	}
	// parameters first, then body variables at first appearance
	vars := FunctionVariables(prog.Functions[0])
	expected := []string{"y1", "y2", "t"}
	//
	if !slices.Equal(vars, expected) {
		t.Errorf("variables %v != %v", vars, expected)
	}
}

func Test_Coverage_Full(t *testing.T) {
	prog, err := Decode([]byte(sampleProgram))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if cover := CheckFunction(prog.Functions[0]); !cover.Full() {
		t.Errorf("expected full coverage, omitted: %v", cover.Omitted)
	}
}

func Test_Coverage_Flags_Unsupported(t *testing.T) {
	fn := &Function{Name: "f", Params: []string{"x"}, Body: &Block{Stmts: []Stmt{
		// division is outside the supported operator set
		&Assign{Target: "x", Value: &BinOp{
			Op:  "/",
			Lhs: &Var{Name: "x"},
			Rhs: &Const{Value: 2},
		}},
		// calls are not analyzed
		&Call{Name: "f", Args: nil},
		// assert is silently skipped
		&Call{Name: "assert", Args: []Expr{&Var{Name: "x"}}},
	}}}
	//
	cover := CheckFunction(fn)
	//
	if len(cover.Omitted) != 2 {
		t.Errorf("expected 2 omissions, got %v", cover.Omitted)
	}
}

func Test_LoopCompat(t *testing.T) {
	body := &Block{Stmts: []Stmt{
		&Assign{Target: "y", Value: &BinOp{
			Op:  "+",
			Lhs: &Var{Name: "y"},
			Rhs: &Var{Name: "z"},
		}},
	}}
	// for (i = 0; i < n; i++) { y = y + z }: control variable n
	loop := &For{
		Init: &Assign{Target: "i", Value: &Const{Value: 0}},
		Cond: &BinOp{Op: "<", Lhs: &Var{Name: "i"}, Rhs: &Var{Name: "n"}},
		Step: &UnOp{Op: "p++", Arg: &Var{Name: "i"}},
		Body: body,
	}
	//
	if x, ok := LoopCompat(loop); !ok || x != "n" {
		t.Errorf("expected control n, got %q, %v", x, ok)
	}
	// the control variable must not occur in the body
	bad := &For{
		Init: loop.Init,
		Cond: &BinOp{Op: "<", Lhs: &Var{Name: "i"}, Rhs: &Var{Name: "y"}},
		Step: loop.Step,
		Body: body,
	}
	//
	if _, ok := LoopCompat(bad); ok {
		t.Error("control variable occurring in body must be rejected")
	}
	// two control candidates cannot be resolved
	ambiguous := &For{
		Init: loop.Init,
		Cond: &BinOp{Op: "<", Lhs: &Var{Name: "n"}, Rhs: &Var{Name: "m"}},
		Step: loop.Step,
		Body: body,
	}
	//
	if _, ok := LoopCompat(ambiguous); ok {
		t.Error("ambiguous control variables must be rejected")
	}
}

func Test_StripCasts(t *testing.T) {
	inner := &Var{Name: "x"}
	wrapped := &Cast{Expr: &Cast{Expr: inner}}
	//
	if StripCasts(wrapped) != Expr(inner) {
		t.Error("nested casts must strip to the variable")
	}
}

func Test_FindLoops(t *testing.T) {
	prog, err := Decode([]byte(sampleProgram))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if loops := FindLoops(prog.Functions[0]); len(loops) != 1 {
		t.Errorf("expected 1 loop, got %d", len(loops))
	}
}
