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

// BinOps lists the binary operators the analysis covers.
var BinOps = []string{"+", "-", "*"}

// IncDecOps lists the increment/decrement operator spellings, prefix
// and postfix.
var IncDecOps = []string{"++", "--", "p++", "p--"}

// UnOps lists every unary operator the analysis covers, through
// rewriting.
var UnOps = []string{"++", "--", "p++", "p--", "+", "-", "!", "sizeof"}

// SkippedCalls lists call targets that carry no data flow and are
// silently ignored.
var SkippedCalls = []string{"assert", "assume"}

// Coverage is the outcome of a syntax check: the list of constructs
// the analysis cannot handle, in source order.
type Coverage struct {
	Omitted []string
}

// Full holds when the whole tree is covered by the analysis.
func (c Coverage) Full() bool {
	return len(c.Omitted) == 0
}

// CheckFunction reports which constructs of a function body fall
// outside the supported fragment.  In strict mode any omission fails
// the function; otherwise the analyzer skips the offending statements
// with a warning.
func CheckFunction(fn *Function) Coverage {
	c := &Coverage{}
	c.stmt(fn.Body)
	//
	return *c
}

func (c *Coverage) omit(desc string) {
	c.Omitted = append(c.Omitted, desc)
}

func (c *Coverage) stmt(stmt Stmt) {
	switch node := stmt.(type) {
	case nil:
	case *Block:
		for _, s := range node.Stmts {
			c.stmt(s)
		}
	case *Decl:
		if node.Init != nil && !c.assignable(node.Init) {
			c.omit(node.Describe())
		}
	case *Assign:
		if !c.assignable(node.Value) {
			c.omit(node.Describe())
		}
	case *If:
		c.stmt(node.Then)
		c.stmt(node.Else)
	case *While:
		c.stmt(node.Body)
	case *DoWhile:
		c.stmt(node.Body)
	case *For:
		if _, ok := LoopCompat(node); !ok {
			c.omit(node.Describe())
		} else {
			c.stmt(node.Body)
		}
	case *Break, *Continue, *Return:
	case *Call:
		if !slices.Contains(SkippedCalls, node.Name) {
			c.omit(node.Describe())
		}
	case *UnOp:
		arg := StripCasts(node.Arg)
		//
		if _, ok := arg.(*Var); !ok ||
			!slices.Contains(IncDecOps, node.Op) {
			c.omit(node.Describe())
		}
	default:
		c.omit(stmt.Describe())
	}
}

// assignable decides whether an expression may appear on the right of
// an assignment: a constant, a variable, a strictly binary arithmetic
// operation over constants and variables, or a unary operation the
// analyzer knows how to rewrite.
func (c *Coverage) assignable(expr Expr) bool {
	switch node := StripCasts(expr).(type) {
	case *Const, *Var:
		return true
	case *BinOp:
		return slices.Contains(BinOps, node.Op) &&
			atomic(node.Lhs) && atomic(node.Rhs)
	case *UnOp:
		if !slices.Contains(UnOps, node.Op) {
			return false
		}
		//
		switch StripCasts(node.Arg).(type) {
		case *Const, *Var:
			return true
		}
		//
		return false
	}
	//
	return false
}

// atomic holds for constants and variables, casts stripped.
func atomic(expr Expr) bool {
	switch StripCasts(expr).(type) {
	case *Const, *Var:
		return true
	}
	//
	return false
}
