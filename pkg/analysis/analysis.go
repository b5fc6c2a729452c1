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

// Package analysis implements the mwp-flow analysis: it walks the
// language-neutral syntax tree, derives a relation for every function
// by composing per-statement relations, and decides whether the final
// value of each variable is polynomially bounded in the inputs.
package analysis

import (
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/statycc/go-mwp/pkg/lang"
	"github.com/statycc/go-mwp/pkg/mwp"
)

// Domain is the set of derivation choices available at every
// non-deterministic program point.
var Domain = []int{0, 1, 2}

// Options configures one analyzer instance.
type Options struct {
	// Strict rejects any function containing unsupported syntax
	// instead of skipping the offending statements.
	Strict bool
	// Fin forces analysis to run to completion even when infinity is
	// detected early.
	Fin bool
}

// Analyzer runs the mwp analysis.  A single analyzer may be shared
// across goroutines: all per-function state lives in a context created
// for each call.
type Analyzer struct {
	opts Options
}

// New creates an analyzer with the given options.
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// fnContext is the per-function analysis state: the delta graph
// accumulating failure sequences and the warnings raised while
// skipping unsupported statements.
type fnContext struct {
	dg       *mwp.DeltaGraph
	warnings []string
}

// Program analyzes every function of a program.  Failures attach to
// the affected function's result; sibling functions are unaffected.
func (a *Analyzer) Program(prog *lang.Program) *Result {
	result := NewResult()
	takeCounts(prog, result)
	result.OnStart()
	log.Debug("started analysis")
	//
	for _, fn := range prog.Functions {
		cover := lang.CheckFunction(fn)
		//
		if !cover.Full() && a.opts.Strict {
			log.Warnf("%s syntax is not fully analyzable", fn.Name)
			fr := NewFuncResult(fn.Name)
			fr.Unsupported = true
			fr.Warnings = cover.Omitted
			result.AddFunction(fr)
			//
			continue
		}
		//
		result.AddFunction(a.Function(fn))
	}
	//
	result.OnEnd()
	//
	return result
}

// Function analyzes a single function and returns its result; the
// infinite verdict is a normal outcome, while internal errors are
// recorded on the result.
func (a *Analyzer) Function(fn *lang.Function) *FuncResult {
	log.Infof("Analyzing %s", fn.Name)
	result := NewFuncResult(fn.Name)
	result.OnStart()
	//
	variables := lang.FunctionVariables(fn)
	relations := mwp.IdentityList(variables)
	stop := !a.opts.Fin
	ctx := &fnContext{dg: mwp.NewDeltaGraph()}
	log.Debugf("%s variables: %v", fn.Name, variables)
	//
	deltaInfty, index, err := a.commands(ctx, relations, 0, fn.Body.Stmts, stop)
	//
	if err != nil {
		result.Error = err.Error()
		result.Warnings = ctx.warnings
		result.OnEnd()
		//
		return result
	}
	// evaluate choices, then calculate a bound
	evaluated := false
	var choices mwp.Choices
	var bound *mwp.Bound
	//
	rel := relations.First()
	//
	if !deltaInfty {
		choices = rel.Eval(Domain, index)
		//
		if witness, ok := choices.First(); ok {
			bound = mwp.CalculateBound(rel.ApplyChoice(witness))
		}
		//
		evaluated = true
	}
	// infinite by delta graph or by choice
	infinite := deltaInfty || (evaluated && choices.Infinite())
	//
	result.Index = index
	result.Infinite = infinite
	result.Variables = rel.Vars
	result.Warnings = ctx.warnings
	//
	if !(infinite && stop) {
		result.Relation = &rel
	}
	//
	if infinite && !stop {
		failing := failingVariables(rel, index)
		result.InfFlows = rel.InftyPairs(failing)
		result.ProblematicFlows = rel.InftyVars(failing)
	}
	//
	if !infinite {
		result.Bound = bound
		result.Choices = &choices
	}
	//
	result.OnEnd()
	//
	return result
}

// failingVariables collects the variables with no valid column-wise
// derivation, used to narrow the problematic-flow report.
func failingVariables(rel mwp.Relation, index int) []string {
	var failing []string
	//
	for _, v := range rel.Vars {
		if rel.VarEval(Domain, index, v).Infinite() {
			failing = append(failing, v)
		}
	}
	//
	return failing
}

// commands analyzes a statement sequence, composing each statement's
// relation into the accumulator.  The first result reports whether the
// delta graph proved the derivation unavoidably infinite.
func (a *Analyzer) commands(ctx *fnContext, relations *mwp.RelationList,
	index int, stmts []lang.Stmt, stop bool) (bool, int, error) {
	deltaInfty := false
	//
	for i, stmt := range stmts {
		log.Debugf("computing relation...%d of %d", i+1, len(stmts))
		nextIndex, list, infty, err := a.computeRelation(ctx, index, stmt)
		//
		if err != nil {
			return deltaInfty, index, err
		}
		//
		index = nextIndex
		deltaInfty = deltaInfty || infty
		//
		if stop && deltaInfty {
			log.Debug("delta graph: infinite -> exit now")
			break
		}
		//
		log.Debugf("computing composition...%d of %d", i+1, len(stmts))
		relations.Composition(list)
	}
	//
	return deltaInfty, index, nil
}

// computeRelation derives the relation list of a single statement.  It
// returns the advanced choice index, the statement's relations, and an
// exit flag raised when the delta graph fused to the empty sequence.
func (a *Analyzer) computeRelation(ctx *fnContext, index int,
	stmt lang.Stmt) (int, *mwp.RelationList, bool, error) {
	switch node := stmt.(type) {
	case *lang.Return, *lang.Break, *lang.Continue:
		return index, mwp.NewRelationList(), false, nil
	case *lang.Decl:
		if node.Init == nil {
			return index, mwp.NewRelationList(), false, nil
		}
		// a declaration with initializer behaves as an assignment
		assign := &lang.Assign{Target: node.Var, Value: node.Init}
		//
		return a.computeRelation(ctx, index, assign)
	case *lang.Assign:
		return a.assignment(ctx, index, node)
	case *lang.UnOp:
		return a.unaryStmt(ctx, index, node)
	case *lang.If:
		return a.ifStmt(ctx, index, node)
	case *lang.While:
		return a.whileLoop(ctx, index, node.Body)
	case *lang.DoWhile:
		return a.whileLoop(ctx, index, node.Body)
	case *lang.For:
		return a.forLoop(ctx, index, node)
	case *lang.Block:
		return a.compound(ctx, index, node)
	case *lang.Call:
		if slices.Contains(lang.SkippedCalls, node.Name) {
			return index, mwp.NewRelationList(), false, nil
		}
	}
	//
	a.unsupported(ctx, stmt)
	//
	return index, mwp.NewRelationList(), false, nil
}

// assignment dispatches on the shape of the right-hand side.
func (a *Analyzer) assignment(ctx *fnContext, index int,
	node *lang.Assign) (int, *mwp.RelationList, bool, error) {
	switch value := lang.StripCasts(node.Value).(type) {
	case *lang.BinOp:
		return a.binaryOp(ctx, index, node.Target, value)
	case *lang.Const:
		return a.constant(index, node.Target)
	case *lang.UnOp:
		return a.unaryAssign(ctx, index, node.Target, value)
	case *lang.Var:
		return a.id(index, node.Target, value.Name)
	}
	//
	a.unsupported(ctx, node)
	//
	return index, mwp.NewRelationList(), false, nil
}

// id analyzes x = y, a direct flow between two variables.
func (a *Analyzer) id(index int, x, y string) (int, *mwp.RelationList,
	bool, error) {
	if x == y {
		return index, mwp.NewRelationList(), false, nil
	}
	//
	log.Debugf("computing relation %s = %s", x, y)
	// the only dependency of x is y, at linear strength
	vector := []mwp.Polynomial{
		mwp.ZeroPolynomial(),
		mwp.UnitPolynomial(),
	}
	//
	relations := mwp.IdentityList([]string{x, y})
	relations.ReplaceColumn(vector, x)
	//
	return index, relations, false, nil
}

// constant analyzes x = c: the assignment clears every dependency of
// x, so the constant behaves like a fresh input.
func (a *Analyzer) constant(index int, x string) (int, *mwp.RelationList,
	bool, error) {
	log.Debug("constant value node")
	//
	return index, mwp.NewRelationList(x), false, nil
}

// binaryOp analyzes x = y (op) z, allocating one derivation choice
// index.
func (a *Analyzer) binaryOp(ctx *fnContext, index int, x string,
	value *lang.BinOp) (int, *mwp.RelationList, bool, error) {
	log.Debug("computing relation: binary op")
	y, yOK := operandName(value.Lhs)
	z, zOK := operandName(value.Rhs)
	//
	if !yOK || !zOK || !slices.Contains(lang.BinOps, value.Op) {
		a.unsupported(ctx, &lang.Assign{Target: x, Value: value})
		//
		return index, mwp.NewRelationList(), false, nil
	}
	//
	if y == "" && z == "" {
		// constant-folded operands carry no dependency
		return a.constant(index, x)
	}
	//
	index, vector, variables := createVector(index, value.Op, x, y, z)
	relations := mwp.IdentityList(variables)
	relations.ReplaceColumn(vector, x)
	//
	return index, relations, false, nil
}

// operandName resolves a binary operand to a variable name, or "" for
// a constant.  The second result is false for unsupported operand
// shapes.
func operandName(e lang.Expr) (string, bool) {
	switch node := lang.StripCasts(e).(type) {
	case *lang.Var:
		return node.Name, true
	case *lang.Const:
		return "", true
	}
	//
	return "", false
}

// createVector builds the column vector encoding the three derivation
// choices of a binary operation x = y (op) z, together with the
// variables the vector rows refer to.  The scalar assignment per
// choice and operand side is fixed by the underlying calculus.
func createVector(index int, op string, x, y, z string) (int,
	[]mwp.Polynomial, []string) {
	var vector []mwp.Polynomial
	variables := []string{x}
	//
	for _, v := range []string{y, z} {
		if v != "" && !slices.Contains(variables, v) {
			variables = append(variables, v)
		}
	}
	// when x does not occur on the right-hand side, its own row
	// contributes nothing
	if x != y && x != z {
		vector = append(vector, mwp.ZeroPolynomial())
	}
	//
	switch {
	case y == "" || z == "":
		vector = append(vector,
			mwp.FromScalars(index, mwp.Unit, mwp.Unit, mwp.Unit))
	case op == "*":
		vector = append(vector,
			mwp.FromScalars(index, mwp.Weak, mwp.Weak, mwp.Weak))
		//
		if y != z {
			vector = append(vector,
				mwp.FromScalars(index, mwp.Weak, mwp.Weak, mwp.Weak))
		}
	case y == z:
		vector = append(vector,
			mwp.FromScalars(index, mwp.Poly, mwp.Poly, mwp.Weak))
	default:
		vector = append(vector,
			mwp.FromScalars(index, mwp.Unit, mwp.Poly, mwp.Weak))
		vector = append(vector,
			mwp.FromScalars(index, mwp.Poly, mwp.Unit, mwp.Weak))
	}
	//
	return index + 1, vector, variables
}

// unaryAssign rewrites x = (op)y into its supported equivalent before
// analysis: increments expand to the two-step binary form, negation
// flips the sign through multiplication, and the remaining operators
// reduce to constants.
func (a *Analyzer) unaryAssign(ctx *fnContext, index int, x string,
	value *lang.UnOp) (int, *mwp.RelationList, bool, error) {
	log.Debug("computing relation: unary")
	arg := lang.StripCasts(value.Arg)
	var rewritten lang.Stmt
	//
	switch node := arg.(type) {
	case *lang.Const:
		rewritten = &lang.Assign{Target: x, Value: node}
	case *lang.Var:
		switch value.Op {
		case "++", "--", "p++", "p--":
			step := rewriteIncDec(node.Name, value.Op)
			copyBack := &lang.Assign{Target: x, Value: &lang.Var{Name: node.Name}}
			// prefix steps before the copy, postfix after
			stmts := []lang.Stmt{step, copyBack}
			//
			if value.Op == "p++" || value.Op == "p--" {
				stmts = []lang.Stmt{copyBack, step}
			}
			//
			rewritten = &lang.Block{Stmts: stmts}
		case "-":
			rewritten = &lang.Assign{Target: x, Value: &lang.BinOp{
				Op:  "*",
				Lhs: &lang.Var{Name: node.Name},
				Rhs: &lang.Const{Value: -1},
			}}
		case "+":
			rewritten = &lang.Assign{
				Target: x,
				Value:  &lang.Var{Name: node.Name},
			}
		}
	}
	//
	switch value.Op {
	case "!":
		// negation yields 0 or 1
		rewritten = &lang.Assign{Target: x, Value: &lang.Const{Value: 1}}
	case "sizeof":
		// variable size in bytes, at most 64
		rewritten = &lang.Assign{Target: x, Value: &lang.Const{Value: 64}}
	}
	//
	if rewritten != nil {
		return a.computeRelation(ctx, index, rewritten)
	}
	//
	a.unsupported(ctx, &lang.Assign{Target: x, Value: value})
	//
	return index, mwp.NewRelationList(), false, nil
}

// unaryStmt analyzes a standalone unary statement; only increments
// and decrements of a variable change any flow.
func (a *Analyzer) unaryStmt(ctx *fnContext, index int,
	node *lang.UnOp) (int, *mwp.RelationList, bool, error) {
	arg := lang.StripCasts(node.Arg)
	//
	if v, ok := arg.(*lang.Var); ok &&
		slices.Contains(lang.IncDecOps, node.Op) {
		return a.computeRelation(ctx, index, rewriteIncDec(v.Name, node.Op))
	}
	// other operators do nothing without an assignment
	return index, mwp.NewRelationList(), false, nil
}

// rewriteIncDec converts x++ or x-- into x = x (op) 1.
func rewriteIncDec(name, op string) lang.Stmt {
	binary := string(op[len(op)-1])
	//
	return &lang.Assign{Target: name, Value: &lang.BinOp{
		Op:  binary,
		Lhs: &lang.Var{Name: name},
		Rhs: &lang.Const{Value: 1},
	}}
}

// ifStmt analyzes a conditional: both branches are analyzed from the
// current state and their relation lists aggregated by summation.
func (a *Analyzer) ifStmt(ctx *fnContext, index int,
	node *lang.If) (int, *mwp.RelationList, bool, error) {
	log.Debug("computing relation (conditional case)")
	trueList := mwp.NewRelationList()
	falseList := mwp.NewRelationList()
	//
	index, exit, err := a.ifBranch(ctx, index, node.Then, trueList)
	//
	if err != nil || exit {
		return index, trueList, exit, err
	}
	//
	index, exit, err = a.ifBranch(ctx, index, node.Else, falseList)
	//
	if err != nil || exit {
		return index, falseList, exit, err
	}
	//
	return index, falseList.Add(trueList), false, nil
}

// ifBranch analyzes one branch of a conditional, tolerating branches
// with or without surrounding braces.  A missing else branch leaves
// everything untouched.
func (a *Analyzer) ifBranch(ctx *fnContext, index int, node lang.Stmt,
	list *mwp.RelationList) (int, bool, error) {
	if node == nil {
		return index, false, nil
	}
	//
	for _, child := range blockStmts(node) {
		nextIndex, childList, exit, err := a.computeRelation(ctx, index, child)
		index = nextIndex
		//
		if err != nil || exit {
			return index, exit, err
		}
		//
		list.Composition(childList)
	}
	//
	return index, false, nil
}

// whileLoop analyzes an unbounded loop: the body relation is closed
// under the star and corrected by rule W.
func (a *Analyzer) whileLoop(ctx *fnContext, index int,
	body lang.Stmt) (int, *mwp.RelationList, bool, error) {
	log.Debug("analysing while")
	relations := mwp.NewRelationList()
	//
	for _, child := range blockStmts(body) {
		nextIndex, childList, exit, err := a.computeRelation(ctx, index, child)
		index = nextIndex
		//
		if err != nil || exit {
			return index, childList, exit, err
		}
		//
		relations.Composition(childList)
	}
	//
	log.Debug("while loop fixpoint")
	//
	if err := relations.Fixpoint(); err != nil {
		return index, relations, false, err
	}
	//
	relations.WhileCorrection(ctx.dg)
	ctx.dg.Fusion()
	//
	return index, relations, ctx.dg.IsEmpty(), nil
}

// forLoop analyzes a bounded loop: the body must not reference the
// control variable; the star of the body is corrected by rule L, which
// records the control variable as a dependency of everything written.
func (a *Analyzer) forLoop(ctx *fnContext, index int,
	node *lang.For) (int, *mwp.RelationList, bool, error) {
	xVar, ok := lang.LoopCompat(node)
	//
	if !ok {
		a.unsupported(ctx, node)
		//
		return index, mwp.NewRelationList(), false, nil
	}
	//
	relations := mwp.NewRelationList(xVar)
	//
	for _, child := range blockStmts(node.Body) {
		nextIndex, childList, exit, err := a.computeRelation(ctx, index, child)
		index = nextIndex
		//
		if err != nil || exit {
			return index, childList, exit, err
		}
		//
		relations.Composition(childList)
	}
	//
	log.Debug("loop fixpoint")
	//
	if err := relations.Fixpoint(); err != nil {
		return index, relations, false, err
	}
	//
	relations.LoopCorrection(xVar, ctx.dg)
	ctx.dg.Fusion()
	//
	return index, relations, ctx.dg.IsEmpty(), nil
}

// compound analyzes a braced statement sequence.
func (a *Analyzer) compound(ctx *fnContext, index int,
	node *lang.Block) (int, *mwp.RelationList, bool, error) {
	relations := mwp.NewRelationList()
	//
	for _, child := range node.Stmts {
		nextIndex, childList, exit, err := a.computeRelation(ctx, index, child)
		index = nextIndex
		//
		if err != nil {
			return index, relations, false, err
		}
		//
		relations.Composition(childList)
		//
		if exit {
			return index, relations, true, nil
		}
	}
	//
	return index, relations, false, nil
}

// blockStmts flattens a statement into the list of statements it
// groups.
func blockStmts(stmt lang.Stmt) []lang.Stmt {
	if block, ok := stmt.(*lang.Block); ok {
		return block.Stmts
	}
	//
	return []lang.Stmt{stmt}
}

// unsupported records a skipped construct.
func (a *Analyzer) unsupported(ctx *fnContext, stmt lang.Stmt) {
	desc := fmt.Sprintf("unsupported syntax: %s", stmt.Describe())
	ctx.warnings = append(ctx.warnings, desc)
	log.Warn(desc)
}

// takeCounts records program statistics: functions, loops and their
// variable counts.
func takeCounts(prog *lang.Program, result *Result) {
	result.Program.NFunc = len(prog.Functions)
	//
	for _, fn := range prog.Functions {
		result.Program.NFuncVars += len(lang.FunctionVariables(fn))
		//
		for _, loop := range lang.FindLoops(fn) {
			result.Program.NLoops++
			result.Program.NLoopVars += len(lang.StmtVariables(loop))
		}
	}
}
