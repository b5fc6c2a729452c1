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
)

// varCollector accumulates variable names in first-appearance order.
type varCollector struct {
	names []string
}

func (c *varCollector) add(name string) {
	if name != "" && !slices.Contains(c.names, name) {
		c.names = append(c.names, name)
	}
}

// FunctionVariables lists the variables of a function: parameters
// first, then every variable appearing in the body, each at its first
// appearance.
func FunctionVariables(fn *Function) []string {
	c := &varCollector{}
	//
	for _, p := range fn.Params {
		c.add(p)
	}
	//
	c.stmt(fn.Body)
	//
	return c.names
}

// StmtVariables lists the variables appearing in a statement.
func StmtVariables(stmt Stmt) []string {
	c := &varCollector{}
	c.stmt(stmt)
	//
	return c.names
}

// ExprVariables lists the variables appearing in an expression.
func ExprVariables(expr Expr) []string {
	c := &varCollector{}
	c.expr(expr)
	//
	return c.names
}

func (c *varCollector) stmt(stmt Stmt) {
	switch node := stmt.(type) {
	case nil:
	case *Block:
		for _, s := range node.Stmts {
			c.stmt(s)
		}
	case *Decl:
		c.add(node.Var)
		c.expr(node.Init)
	case *Assign:
		c.add(node.Target)
		c.expr(node.Value)
	case *If:
		c.stmt(node.Then)
		c.stmt(node.Else)
	case *While:
		c.expr(node.Cond)
		c.stmt(node.Body)
	case *DoWhile:
		c.expr(node.Cond)
		c.stmt(node.Body)
	case *For:
		// the control block stays outside the variable set
		c.stmt(node.Body)
	case *Return:
		c.expr(node.Value)
	case *Call:
		for _, a := range node.Args {
			c.expr(a)
		}
	case *UnOp:
		c.expr(node.Arg)
	}
}

func (c *varCollector) expr(expr Expr) {
	switch node := expr.(type) {
	case nil:
	case *Var:
		c.add(node.Name)
	case *BinOp:
		c.expr(node.Lhs)
		c.expr(node.Rhs)
	case *UnOp:
		c.expr(node.Arg)
	case *Cast:
		c.expr(node.Expr)
	case *Call:
		for _, a := range node.Args {
			c.expr(a)
		}
	}
}

// FindLoops collects every loop statement of a function, nested loops
// included.
func FindLoops(fn *Function) []Stmt {
	var loops []Stmt
	collectLoops(fn.Body, &loops)
	//
	return loops
}

func collectLoops(stmt Stmt, loops *[]Stmt) {
	switch node := stmt.(type) {
	case *Block:
		for _, s := range node.Stmts {
			collectLoops(s, loops)
		}
	case *If:
		collectLoops(node.Then, loops)
		collectLoops(node.Else, loops)
	case *While:
		*loops = append(*loops, node)
		collectLoops(node.Body, loops)
	case *DoWhile:
		*loops = append(*loops, node)
		collectLoops(node.Body, loops)
	case *For:
		*loops = append(*loops, node)
		collectLoops(node.Body, loops)
	}
}

// LoopCompat checks whether a for loop matches the bounded-loop shape
// "repeat X times": exactly one control variable, which must not occur
// in the loop body.  The control variable is returned when compatible.
func LoopCompat(loop *For) (string, bool) {
	var iters, decls, srcs []string
	//
	for _, stmt := range initStmts(loop.Init) {
		switch node := stmt.(type) {
		case *Assign:
			iters = append(iters, node.Target)
			//
			if v, ok := StripCasts(node.Value).(*Var); ok {
				srcs = append(srcs, v.Name)
			}
		case *Decl:
			decls = append(decls, node.Var)
			//
			if v, ok := StripCasts(node.Init).(*Var); ok {
				srcs = append(srcs, v.Name)
			}
		}
	}
	//
	for _, v := range stepVariables(loop.Step) {
		if !slices.Contains(iters, v) {
			iters = append(iters, v)
		}
	}
	//
	conds := ExprVariables(loop.Cond)
	body := StmtVariables(loop.Body)
	// control candidates: condition and init-source variables that are
	// neither declared in the loop header nor stepped.
	var loopX []string
	//
	for _, v := range append(conds, srcs...) {
		if !slices.Contains(decls, v) && !slices.Contains(iters, v) &&
			!slices.Contains(loopX, v) {
			loopX = append(loopX, v)
		}
	}
	//
	if len(loopX) != 1 {
		return "", false
	}
	//
	if slices.Contains(body, loopX[0]) {
		return "", false
	}
	//
	return loopX[0], true
}

// initStmts flattens a for-loop init statement into its assignments.
func initStmts(stmt Stmt) []Stmt {
	switch node := stmt.(type) {
	case nil:
		return nil
	case *Block:
		return node.Stmts
	default:
		return []Stmt{node}
	}
}

// stepVariables lists the variables touched by a for-loop step.
func stepVariables(stmt Stmt) []string {
	if stmt == nil {
		return nil
	}
	//
	return StmtVariables(stmt)
}
