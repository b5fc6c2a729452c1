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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/statycc/go-mwp/pkg/analysis"
)

// defaultWidth applies when stdout is not a terminal.
const defaultWidth = 100

// printFunction renders one function verdict, matrix included when
// available and narrow enough for the terminal.
func printFunction(fr *analysis.FuncResult) {
	fmt.Println(fr.String())
	//
	if fr.Relation != nil {
		printMatrix(fr)
	}
	//
	fmt.Println()
}

// printMatrix renders the relation matrix as an aligned table, row per
// source variable.  Rows wider than the terminal are truncated with an
// ellipsis; cells contain multi-byte glyphs, so alignment goes through
// display widths rather than byte counts.
func printMatrix(fr *analysis.FuncResult) {
	width := terminalWidth()
	rel := fr.Relation
	pad := 0
	//
	for _, v := range rel.Vars {
		pad = max(pad, runewidth.StringWidth(v))
	}
	// column width: widest cell of each column
	cols := make([]int, len(rel.Vars))
	//
	for _, row := range rel.Matrix {
		for j, poly := range row {
			cols[j] = max(cols[j], runewidth.StringWidth(poly.String()))
		}
	}
	//
	for i, v := range rel.Vars {
		var sb strings.Builder
		//
		sb.WriteString(runewidth.FillRight(v, pad))
		sb.WriteString(" | ")
		//
		for j, poly := range rel.Matrix[i] {
			sb.WriteString(runewidth.FillRight(poly.String(), cols[j]+1))
		}
		//
		fmt.Println(runewidth.Truncate(
			strings.TrimRight(sb.String(), " "), width, "…"))
	}
}

// terminalWidth reports the current width of stdout when it is a
// terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	//
	return defaultWidth
}
