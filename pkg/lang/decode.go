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
	"encoding/json"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// rawNode is the serialized envelope of any tree node: a kind
// discriminator plus the union of all node fields.
type rawNode struct {
	Kind      string            `json:"kind"`
	Functions []json.RawMessage `json:"functions"`
	Name      string            `json:"name"`
	Params    []string          `json:"params"`
	Body      json.RawMessage   `json:"body"`
	Stmts     []json.RawMessage `json:"stmts"`
	Var       string            `json:"var"`
	Init      json.RawMessage   `json:"init"`
	Target    string            `json:"target"`
	Value     json.RawMessage   `json:"value"`
	Cond      json.RawMessage   `json:"cond"`
	Then      json.RawMessage   `json:"then"`
	Else      json.RawMessage   `json:"else"`
	Step      json.RawMessage   `json:"step"`
	Op        string            `json:"op"`
	Lhs       json.RawMessage   `json:"lhs"`
	Rhs       json.RawMessage   `json:"rhs"`
	Arg       json.RawMessage   `json:"arg"`
	Expr      json.RawMessage   `json:"expr"`
	Args      []json.RawMessage `json:"args"`
}

// Decode parses a serialized program tree from its canonical JSON
// form.
func Decode(data []byte) (*Program, error) {
	var raw rawNode
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed program: %w", err)
	}
	//
	if raw.Kind != "program" {
		return nil, fmt.Errorf("expected program node, found %q", raw.Kind)
	}
	//
	prog := &Program{}
	//
	for _, fdata := range raw.Functions {
		fn, err := decodeFunction(fdata)
		//
		if err != nil {
			return nil, err
		}
		//
		prog.Functions = append(prog.Functions, fn)
	}
	//
	return prog, nil
}

// DecodeFile reads a program from disk, accepting the canonical JSON
// form or a YAML rendering of the same structure.
func DecodeFile(filename string) (*Program, error) {
	data, err := os.ReadFile(filename)
	//
	if err != nil {
		return nil, err
	}
	//
	switch path.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		//
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	//
	return Decode(data)
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share
// one decoder.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	//
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	//
	return json.Marshal(doc)
}

func decodeFunction(data []byte) (*Function, error) {
	var raw rawNode
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	//
	if raw.Kind != "function" {
		return nil, fmt.Errorf("expected function node, found %q", raw.Kind)
	}
	//
	fn := &Function{Name: raw.Name, Params: raw.Params}
	//
	if len(raw.Body) != 0 {
		body, err := decodeStmt(raw.Body)
		//
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", raw.Name, err)
		}
		//
		block, ok := body.(*Block)
		//
		if !ok {
			block = &Block{Stmts: []Stmt{body}}
		}
		//
		fn.Body = block
	} else {
		fn.Body = &Block{}
	}
	//
	return fn, nil
}

func decodeStmt(data []byte) (Stmt, error) {
	var raw rawNode
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	//
	switch raw.Kind {
	case "block":
		block := &Block{}
		//
		for _, sdata := range raw.Stmts {
			stmt, err := decodeStmt(sdata)
			//
			if err != nil {
				return nil, err
			}
			//
			block.Stmts = append(block.Stmts, stmt)
		}
		//
		return block, nil
	case "decl":
		decl := &Decl{Var: raw.Var}
		//
		if len(raw.Init) != 0 {
			init, err := decodeExpr(raw.Init)
			//
			if err != nil {
				return nil, err
			}
			//
			decl.Init = init
		}
		//
		return decl, nil
	case "assign":
		value, err := decodeExpr(raw.Value)
		//
		if err != nil {
			return nil, err
		}
		//
		return &Assign{Target: raw.Target, Value: value}, nil
	case "if":
		return decodeIf(raw)
	case "while", "dowhile":
		cond, err := decodeExpr(raw.Cond)
		//
		if err != nil {
			return nil, err
		}
		//
		body, err := decodeStmt(raw.Body)
		//
		if err != nil {
			return nil, err
		}
		//
		if raw.Kind == "dowhile" {
			return &DoWhile{Cond: cond, Body: body}, nil
		}
		//
		return &While{Cond: cond, Body: body}, nil
	case "for":
		return decodeFor(raw)
	case "break":
		return &Break{}, nil
	case "continue":
		return &Continue{}, nil
	case "return":
		ret := &Return{}
		//
		if len(raw.Value) != 0 {
			value, err := decodeExpr(raw.Value)
			//
			if err != nil {
				return nil, err
			}
			//
			ret.Value = value
		}
		//
		return ret, nil
	case "call":
		return decodeCall(raw)
	case "unop":
		arg, err := decodeExpr(raw.Arg)
		//
		if err != nil {
			return nil, err
		}
		//
		return &UnOp{Op: raw.Op, Arg: arg}, nil
	}
	//
	return nil, fmt.Errorf("unknown statement kind %q", raw.Kind)
}

func decodeIf(raw rawNode) (Stmt, error) {
	cond, err := decodeExpr(raw.Cond)
	//
	if err != nil {
		return nil, err
	}
	//
	then, err := decodeStmt(raw.Then)
	//
	if err != nil {
		return nil, err
	}
	//
	stmt := &If{Cond: cond, Then: then}
	//
	if len(raw.Else) != 0 {
		stmt.Else, err = decodeStmt(raw.Else)
		//
		if err != nil {
			return nil, err
		}
	}
	//
	return stmt, nil
}

func decodeFor(raw rawNode) (Stmt, error) {
	loop := &For{}
	var err error
	//
	if len(raw.Init) != 0 {
		if loop.Init, err = decodeStmt(raw.Init); err != nil {
			return nil, err
		}
	}
	//
	if len(raw.Cond) != 0 {
		if loop.Cond, err = decodeExpr(raw.Cond); err != nil {
			return nil, err
		}
	}
	//
	if len(raw.Step) != 0 {
		if loop.Step, err = decodeStmt(raw.Step); err != nil {
			return nil, err
		}
	}
	//
	if loop.Body, err = decodeStmt(raw.Body); err != nil {
		return nil, err
	}
	//
	return loop, nil
}

func decodeCall(raw rawNode) (*Call, error) {
	call := &Call{Name: raw.Name}
	//
	for _, adata := range raw.Args {
		arg, err := decodeExpr(adata)
		//
		if err != nil {
			return nil, err
		}
		//
		call.Args = append(call.Args, arg)
	}
	//
	return call, nil
}

func decodeExpr(data []byte) (Expr, error) {
	var raw rawNode
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	//
	switch raw.Kind {
	case "binop":
		lhs, err := decodeExpr(raw.Lhs)
		//
		if err != nil {
			return nil, err
		}
		//
		rhs, err := decodeExpr(raw.Rhs)
		//
		if err != nil {
			return nil, err
		}
		//
		return &BinOp{Op: raw.Op, Lhs: lhs, Rhs: rhs}, nil
	case "unop":
		arg, err := decodeExpr(raw.Arg)
		//
		if err != nil {
			return nil, err
		}
		//
		return &UnOp{Op: raw.Op, Arg: arg}, nil
	case "cast":
		expr, err := decodeExpr(raw.Expr)
		//
		if err != nil {
			return nil, err
		}
		//
		return &Cast{Expr: expr}, nil
	case "var":
		return &Var{Name: raw.Name}, nil
	case "const":
		value := 0
		//
		if len(raw.Value) != 0 {
			if err := json.Unmarshal(raw.Value, &value); err != nil {
				return nil, fmt.Errorf("malformed constant: %w", err)
			}
		}
		//
		return &Const{Value: value}, nil
	case "call":
		return decodeCall(raw)
	}
	//
	return nil, fmt.Errorf("unknown expression kind %q", raw.Kind)
}
