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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/statycc/go-mwp/pkg/mwp"
)

// Timeable records the wall-clock extent of an analysis step in
// nanoseconds.
type Timeable struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
}

// OnStart stamps the start time.
func (t *Timeable) OnStart() {
	t.StartTime = time.Now().UnixNano()
}

// OnEnd stamps the end time.
func (t *Timeable) OnEnd() {
	t.EndTime = time.Now().UnixNano()
}

// DurMillis is the measured duration in milliseconds.
func (t *Timeable) DurMillis() int64 {
	return (t.EndTime - t.StartTime) / 1e6
}

// ProgramStats counts the salient features of the input program,
// analyzed or not.
type ProgramStats struct {
	Path      string `json:"program_path,omitempty"`
	NFunc     int    `json:"n_func"`
	NLoops    int    `json:"n_loops"`
	NFuncVars int    `json:"n_func_vars"`
	NLoopVars int    `json:"n_loop_vars"`
}

// FuncResult is the analysis outcome for one function.
type FuncResult struct {
	Timeable
	Name        string
	Infinite    bool
	Unsupported bool
	Variables   []string
	Relation    *mwp.Relation
	Choices     *mwp.Choices
	Bound       *mwp.Bound
	InfFlows    string
	// ProblematicFlows maps each source variable to the target
	// variables its cell can drive to infinity.
	ProblematicFlows map[string][]string
	Index            int
	Warnings         []string
	Error            string
}

// NewFuncResult creates an empty result for the named function.
func NewFuncResult(name string) *FuncResult {
	return &FuncResult{Name: name, Index: -1}
}

// NBounds is the number of derivations admitted by the choice
// disjunction.
func (r *FuncResult) NBounds() int {
	if r.Choices == nil {
		return 0
	}
	//
	return r.Choices.NBounds()
}

// String summarizes the function verdict for terminal display.
func (r *FuncResult) String() string {
	var sb strings.Builder
	//
	fmt.Fprintf(&sb, "function: %s • time: %d ms\n", r.Name, r.DurMillis())
	fmt.Fprintf(&sb, "variables: %d", len(r.Variables))
	//
	switch {
	case r.Unsupported:
		sb.WriteString(" • unsupported syntax")
	case r.Error != "":
		fmt.Fprintf(&sb, " • error: %s", r.Error)
	case r.Infinite:
		sb.WriteString(" • num-bounds: 0 (infinite)")
		//
		if r.InfFlows != "" {
			fmt.Fprintf(&sb, "\nProblematic flows: %s", r.InfFlows)
		}
	case len(r.Variables) > 0:
		fmt.Fprintf(&sb, " • num-bounds: %d\n", r.NBounds())
		//
		if r.Bound != nil {
			sb.WriteString(r.Bound.Show(true, true))
		}
	}
	//
	return sb.String()
}

// funcResultJSON is the serialized shape of a function result.
type funcResultJSON struct {
	Name             string              `json:"name"`
	Infinite         bool                `json:"infinite"`
	Unsupported      bool                `json:"unsupported,omitempty"`
	StartTime        int64               `json:"start_time"`
	EndTime          int64               `json:"end_time"`
	Variables        []string            `json:"variables"`
	InfFlows         string              `json:"inf_flows,omitempty"`
	ProblematicFlows map[string][]string `json:"problematic_flows,omitempty"`
	Index            int                 `json:"index"`
	Warnings         []string            `json:"warnings,omitempty"`
	Error            string              `json:"error,omitempty"`
	Relation         *relationJSON       `json:"relation,omitempty"`
	Choices          [][][]int           `json:"choices,omitempty"`
	Bound            map[string]string   `json:"bound,omitempty"`
}

type relationJSON struct {
	Matrix [][][]mwp.EncodedMonomial `json:"matrix"`
}

// MarshalJSON serializes the function result in the documented file
// format.
func (r *FuncResult) MarshalJSON() ([]byte, error) {
	out := funcResultJSON{
		Name:             r.Name,
		Infinite:         r.Infinite,
		Unsupported:      r.Unsupported,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Variables:        r.Variables,
		InfFlows:         r.InfFlows,
		ProblematicFlows: r.ProblematicFlows,
		Index:            r.Index,
		Warnings:         r.Warnings,
		Error:            r.Error,
	}
	//
	if r.Relation != nil {
		out.Relation = &relationJSON{Matrix: r.Relation.Matrix.Encode()}
	}
	//
	if r.Choices != nil {
		out.Choices = r.Choices.Valid
	}
	//
	if r.Bound != nil {
		out.Bound = r.Bound.Triples()
	}
	//
	return json.Marshal(out)
}

// UnmarshalJSON restores a function result from its file format.
func (r *FuncResult) UnmarshalJSON(data []byte) error {
	var in funcResultJSON
	//
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	//
	r.Name = in.Name
	r.Infinite = in.Infinite
	r.Unsupported = in.Unsupported
	r.StartTime = in.StartTime
	r.EndTime = in.EndTime
	r.Variables = in.Variables
	r.InfFlows = in.InfFlows
	r.ProblematicFlows = in.ProblematicFlows
	r.Index = in.Index
	r.Warnings = in.Warnings
	r.Error = in.Error
	//
	if in.Relation != nil {
		matrix, err := mwp.DecodeMatrix(in.Relation.Matrix)
		//
		if err != nil {
			return err
		}
		//
		r.Relation = &mwp.Relation{Vars: in.Variables, Matrix: matrix}
	}
	//
	if in.Choices != nil {
		r.Choices = &mwp.Choices{Valid: in.Choices, Index: in.Index}
	}
	//
	if in.Bound != nil {
		bound := &mwp.Bound{
			Vars:   in.Variables,
			ByName: make(map[string]*mwp.MwpBound, len(in.Bound)),
		}
		//
		for name, triple := range in.Bound {
			bound.ByName[name] = mwp.ParseMwpBound(triple)
		}
		//
		r.Bound = bound
	}
	//
	return nil
}

// Result aggregates the analysis of a whole program.
type Result struct {
	Timeable
	Program   ProgramStats
	Functions []*FuncResult
}

// NewResult creates an empty program result.
func NewResult() *Result {
	return &Result{}
}

// AddFunction attaches one function result.
func (r *Result) AddFunction(fr *FuncResult) {
	r.Functions = append(r.Functions, fr)
}

// GetFunction finds a function result by name.
func (r *Result) GetFunction(name string) *FuncResult {
	for _, fr := range r.Functions {
		if fr.Name == name {
			return fr
		}
	}
	//
	return nil
}

// resultJSON is the serialized shape of a program result.
type resultJSON struct {
	StartTime int64         `json:"start_time"`
	EndTime   int64         `json:"end_time"`
	Program   ProgramStats  `json:"program"`
	Relations []*FuncResult `json:"relations"`
}

// MarshalJSON serializes the program result.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Program:   r.Program,
		Relations: r.Functions,
	})
}

// UnmarshalJSON restores a program result.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	//
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	//
	r.StartTime = in.StartTime
	r.EndTime = in.EndTime
	r.Program = in.Program
	r.Functions = in.Relations
	//
	return nil
}
