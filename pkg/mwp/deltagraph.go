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

import (
	"sort"
)

// DeltaGraph accumulates the delta sequences that were labeled
// infinite during loop corrections, organized as a leveled graph: one
// level per sequence length, with an edge between two sequences of the
// same length whenever they differ in exactly one delta, labeled by
// the index of the disagreement.
//
// Whenever all degree-many values at some index form a clique, the
// choice at that index is irrelevant: the clique collapses to the
// common remainder.  If fusion ever produces the empty sequence, every
// derivation is infinite and analysis of the function can stop early.
type DeltaGraph struct {
	degree int
	// levels maps sequence length -> node key -> adjacency, where
	// adjacency maps a neighbor key to the index the two differ on.
	levels map[int]map[string]map[string]int
	// seqs maps a node key back to its sequence.
	seqs map[string][]Delta
}

// NewDeltaGraph creates an empty graph with the default degree of
// three derivation choices per program point.
func NewDeltaGraph() *DeltaGraph {
	return &DeltaGraph{
		degree: 3,
		levels: make(map[int]map[string]map[string]int),
		seqs:   make(map[string][]Delta),
	}
}

// Insert adds one delta sequence to the graph, connecting it to every
// same-length sequence it differs with in exactly one delta.
func (dg *DeltaGraph) Insert(seq []Delta) {
	size := len(seq)
	key := deltasKey(seq)
	//
	level, ok := dg.levels[size]
	//
	if !ok {
		level = make(map[string]map[string]int)
		dg.levels[size] = level
		level[key] = make(map[string]int)
		dg.seqs[key] = seq
		//
		return
	}
	//
	if _, present := level[key]; present {
		return
	}
	//
	inserted := false
	//
	for key2 := range level {
		if diff, index := nodeDiff(seq, dg.seqs[key2]); diff {
			dg.insertEdge(size, key, seq, key2, index)
			inserted = true
		}
	}
	//
	if !inserted {
		level[key] = make(map[string]int)
		dg.seqs[key] = seq
	}
}

// insertEdge records a symmetric labeled edge, creating either
// endpoint if missing.
func (dg *DeltaGraph) insertEdge(size int, key1 string, seq1 []Delta,
	key2 string, label int) {
	level := dg.levels[size]
	//
	if _, ok := level[key1]; !ok {
		level[key1] = make(map[string]int)
		dg.seqs[key1] = seq1
	}
	//
	if _, ok := level[key2]; !ok {
		level[key2] = make(map[string]int)
	}
	//
	level[key1][key2] = label
	level[key2][key1] = label
}

// nodeDiff compares two same-length sequences.  It holds exactly when
// they disagree on a single delta each way, both disagreements sharing
// the same index; the index is returned alongside.
func nodeDiff(seq1, seq2 []Delta) (bool, int) {
	only1 := missingFrom(seq1, seq2)
	only2 := missingFrom(seq2, seq1)
	//
	if len(only1) != 1 || len(only2) != 1 {
		index := -1
		//
		if len(only1) > 0 {
			index = only1[0].Index
		}
		//
		return false, index
	}
	//
	if only1[0].Index != only2[0].Index {
		return false, only1[0].Index
	}
	//
	return true, only1[0].Index
}

// missingFrom collects the deltas of a that do not occur in b.
func missingFrom(a, b []Delta) []Delta {
	var res []Delta
	//
	for _, d := range a {
		found := false
		//
		for _, e := range b {
			if d == e {
				found = true
				break
			}
		}
		//
		if !found {
			res = append(res, d)
		}
	}
	//
	return res
}

// isFull checks whether the node sits in a clique of degree-1 edges
// all labeled with the given index.
func (dg *DeltaGraph) isFull(size int, key string, index int) bool {
	adjacent := 0
	//
	for _, label := range dg.levels[size][key] {
		if label == index {
			adjacent++
		}
	}
	//
	return adjacent == dg.degree-1
}

// removeNode deletes a node along with every neighbor reached through
// an edge of the same label; edges into the node from other neighbors
// are dropped.
func (dg *DeltaGraph) removeNode(size int, key string, index int) {
	neighbors := dg.levels[size][key]
	delete(dg.levels[size], key)
	delete(dg.seqs, key)
	//
	for neighbor := range neighbors {
		if edges, ok := dg.levels[size][neighbor]; ok {
			if label, linked := edges[key]; linked && label == index {
				dg.removeNode(size, neighbor, index)
			} else {
				delete(edges, key)
			}
		}
	}
}

// removeIndex strips every delta at the given index from a sequence.
func removeIndex(seq []Delta, index int) []Delta {
	res := make([]Delta, 0, len(seq))
	//
	for _, d := range seq {
		if d.Index != index {
			res = append(res, d)
		}
	}
	//
	return res
}

// Fusion repeatedly eliminates same-label cliques, replacing each by
// the common remainder at the next-lower level, working from the
// longest sequences down.
func (dg *DeltaGraph) Fusion() {
	sizes := make([]int, 0, len(dg.levels))
	//
	for size := range dg.levels {
		sizes = append(sizes, size)
	}
	//
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	//
	for _, size := range sizes {
		keys := make([]string, 0, len(dg.levels[size]))
		//
		for key := range dg.levels[size] {
			keys = append(keys, key)
		}
		//
		sort.Strings(keys)
		//
		for _, key := range keys {
			seq := dg.seqs[key]
			//
			for _, d := range seq {
				if _, alive := dg.levels[size][key]; !alive {
					break
				}
				//
				if dg.isFull(size, key, d.Index) {
					dg.removeNode(size, key, d.Index)
					dg.Insert(removeIndex(seq, d.Index))
				}
			}
		}
	}
}

// IsEmpty holds once fusion has produced the empty sequence, meaning
// no derivation choice avoids infinity.
func (dg *DeltaGraph) IsEmpty() bool {
	level, ok := dg.levels[0]
	//
	if !ok {
		return false
	}
	//
	_, ok = level[deltasKey(nil)]
	//
	return ok
}

// Sequences returns every sequence currently held in the graph.
func (dg *DeltaGraph) Sequences() [][]Delta {
	res := make([][]Delta, 0, len(dg.seqs))
	//
	for _, seq := range dg.seqs {
		res = append(res, seq)
	}
	//
	return res
}
