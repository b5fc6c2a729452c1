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
	"slices"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Choices is the compact representation of all derivation choices that
// avoid an infinite coefficient.  Valid is a disjunction of choice
// vectors; each vector assigns to every program-point index the subset
// of domain values still permitted there.  Index is the total number
// of program points.
type Choices struct {
	Valid [][][]int `json:"valid"`
	Index int       `json:"index"`
}

// Infinite holds when no valid derivation exists for a program that
// had at least one choice point.
func (c Choices) Infinite() bool {
	return len(c.Valid) == 0 && c.Index > 0
}

// First returns one concrete witness derivation: the first permitted
// value at every index of the first vector.
func (c Choices) First() ([]int, bool) {
	if c.Infinite() || len(c.Valid) == 0 {
		return nil, false
	}
	//
	first := make([]int, len(c.Valid[0]))
	//
	for i, values := range c.Valid[0] {
		first[i] = values[0]
	}
	//
	return first, true
}

// NBounds counts the derivations the disjunction admits: the sum over
// vectors of the product of per-index choice counts.
func (c Choices) NBounds() int {
	total := 0
	//
	for _, vector := range c.Valid {
		n := 1
		//
		for _, values := range vector {
			n *= len(values)
		}
		//
		total += n
	}
	//
	return total
}

// IsValid checks whether a concrete sequence of choices is admitted by
// some vector of the disjunction.
func (c Choices) IsValid(choices ...int) bool {
	for _, vector := range c.Valid {
		if len(choices) > len(vector) {
			continue
		}
		//
		ok := true
		//
		for i, value := range choices {
			if !slices.Contains(vector[i], value) {
				ok = false
				break
			}
		}
		//
		if ok {
			return true
		}
	}
	//
	return false
}

// seqSet is a set of delta sequences keyed by their encoding.
type seqSet struct {
	items map[string][]Delta
}

func newSeqSet(seqs ...[]Delta) *seqSet {
	s := &seqSet{items: make(map[string][]Delta)}
	//
	for _, seq := range seqs {
		s.add(seq)
	}
	//
	return s
}

func (s *seqSet) add(seq []Delta) {
	s.items[deltasKey(seq)] = seq
}

func (s *seqSet) remove(seq []Delta) {
	delete(s.items, deltasKey(seq))
}

func (s *seqSet) contains(seq []Delta) bool {
	_, ok := s.items[deltasKey(seq)]
	//
	return ok
}

func (s *seqSet) size() int {
	return len(s.items)
}

// sorted returns the sequences ordered by length, then encoding, which
// keeps every downstream construction deterministic.
func (s *seqSet) sorted() [][]Delta {
	keys := make([]string, 0, len(s.items))
	//
	for key := range s.items {
		keys = append(keys, key)
	}
	//
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := keys[i], keys[j]
		//
		if len(s.items[ki]) != len(s.items[kj]) {
			return len(s.items[ki]) < len(s.items[kj])
		}
		//
		return ki < kj
	})
	//
	res := make([][]Delta, len(keys))
	//
	for i, key := range keys {
		res[i] = s.items[key]
	}
	//
	return res
}

// GenerateChoices builds the choice representation for a program with
// the given choice domain and total index, from the set of delta
// sequences that force an infinite coefficient.  It first simplifies
// the failure set to a fixed point, then negates it into the vector
// disjunction.
func GenerateChoices(domain []int, index int, inf *seqSet) Choices {
	sequences := simplify(domain, inf)
	//
	if log.IsLevelEnabled(log.DebugLevel) {
		for _, seq := range sequences.sorted() {
			log.Debugf("infinity path: %v", seq)
		}
	}
	//
	return Choices{Valid: buildChoices(domain, index, sequences), Index: index}
}

// simplify reduces the failure set until no rule applies: collapse
// choice-saturated heads and tails, drop supersets, and eliminate
// deltas that could never occur in a valid vector.
func simplify(domain []int, sequences *seqSet) *seqSet {
	for {
		before := sequences.size()
		//
		for reduceFront(domain, sequences) {
		}
		//
		for reduceBack(domain, sequences) {
		}
		//
		sequences = uniqueSequences(sequences)
		sequences = exceptOne(domain, sequences)
		after := sequences.size()
		//
		if before == after || after == 0 {
			return sequences
		}
	}
}

// reduceFront collapses sequences that differ only in the value of
// their first delta: when every domain value occurs there, the choice
// at that index is irrelevant and only the common tail remains.
func reduceFront(domain []int, sequences *seqSet) bool {
	return reduceDir(domain, sequences, subEqual,
		func(seq []Delta) int { return seq[0].Value },
		func(seq []Delta) []Delta { return seq[1:] })
}

// reduceBack is reduceFront from the end of the sequence.
func reduceBack(domain []int, sequences *seqSet) bool {
	return reduceDir(domain, sequences, subEqualEnd,
		func(seq []Delta) int { return seq[len(seq)-1].Value },
		func(seq []Delta) []Delta { return seq[:len(seq)-1] })
}

// reduceDir implements one reduction direction.  Returns true when a
// reduction occurred, so the caller repeats until exhaustion.
func reduceDir(domain []int, sequences *seqSet,
	subEq func(a, b []Delta) bool, get func([]Delta) int,
	keep func([]Delta) []Delta) bool {
	//
	for _, s1 := range sequences.sorted() {
		if len(s1) <= 1 {
			continue
		}
		//
		values := make(map[int]bool)
		//
		for _, s2 := range sequences.sorted() {
			if subEq(s1, s2) {
				values[get(s2)] = true
			}
		}
		//
		if coversDomain(values, domain) {
			kept := keep(s1)
			removeSubset(kept, sequences)
			sequences.add(kept)
			//
			return true
		}
	}
	//
	return false
}

func coversDomain(values map[int]bool, domain []int) bool {
	for _, v := range domain {
		if !values[v] {
			return false
		}
	}
	//
	return len(values) == len(domain)
}

// subEqual holds when two sequences agree everywhere except possibly
// the value of their first delta.
func subEqual(first, second []Delta) bool {
	if len(first) != len(second) || len(first) == 0 {
		return false
	}
	//
	return first[0].Index == second[0].Index &&
		EqualDeltas(first[1:], second[1:])
}

// subEqualEnd holds when two sequences agree everywhere except
// possibly the value of their last delta.
func subEqualEnd(first, second []Delta) bool {
	n := len(first)
	//
	if n != len(second) || n == 0 {
		return false
	}
	//
	return first[n-1].Index == second[n-1].Index &&
		EqualDeltas(first[:n-1], second[:n-1])
}

// uniqueSequences drops every sequence already covered by a shorter
// one (multiset inclusion).
func uniqueSequences(sequences *seqSet) *seqSet {
	res := newSeqSet()
	remaining := sequences.sorted()
	//
	for len(remaining) > 0 {
		first := remaining[0]
		remaining = remaining[1:]
		kept := remaining[:0:0]
		//
		for _, seq := range remaining {
			if !isSubset(first, seq) {
				kept = append(kept, seq)
			}
		}
		//
		remaining = kept
		res.add(first)
	}
	//
	return res
}

// isSubset holds when every delta of sub occurs in super.
func isSubset(sub, super []Delta) bool {
	for _, d := range sub {
		if !slices.Contains(super, d) {
			return false
		}
	}
	//
	return true
}

// removeSubset drops from the set every sequence that contains match
// as a subset.
func removeSubset(match []Delta, sequences *seqSet) {
	for _, seq := range sequences.sorted() {
		if isSubset(match, seq) {
			sequences.remove(seq)
		}
	}
}

// exceptOne eliminates deltas that can never be part of a valid
// vector: when all but one value at some index occur as singleton
// sequences, picking the remaining value there would exhaust the
// domain, so that delta can be dropped from longer sequences that
// contain it.
func exceptOne(domain []int, sequences *seqSet) *seqSet {
	var singletons []Delta
	//
	for _, seq := range sequences.sorted() {
		if len(seq) == 1 {
			singletons = append(singletons, seq[0])
		}
	}
	//
	for len(singletons) > 0 {
		d := singletons[0]
		singletons = singletons[1:]
		values := []int{}
		//
		for _, other := range singletons {
			if other.Index == d.Index {
				values = append(values, other.Value)
			}
		}
		//
		var find []Delta
		//
		for _, c := range domain {
			if c != d.Value && !slices.Contains(values, c) {
				find = append(find, Delta{Value: c, Index: d.Index})
			}
		}
		//
		if len(find) == 1 {
			for _, seq := range sequences.sorted() {
				if len(seq) > 1 && slices.Contains(seq, find[0]) {
					sequences.remove(seq)
					sequences.add(withoutDelta(seq, find[0]))
				}
			}
		}
	}
	//
	return sequences
}

func withoutDelta(seq []Delta, d Delta) []Delta {
	res := make([]Delta, 0, len(seq)-1)
	//
	for _, e := range seq {
		if e != d {
			res = append(res, e)
		}
	}
	//
	return res
}

// buildChoices negates the simplified failure set into a list of
// distinct choice vectors: every tuple of the cross product of the
// failure sequences removes one delta per sequence from a full vector,
// and vectors subsumed by others are dropped as they appear.
func buildChoices(domain []int, index int, sequences *seqSet) [][][]int {
	if sequences.size() == 0 {
		vector := make([][]int, index)
		//
		for i := range vector {
			vector[i] = slices.Clone(domain)
		}
		//
		return [][][]int{vector}
	}
	//
	sorted := sequences.sorted()
	lens := make([]int, len(sorted))
	//
	for i, seq := range sorted {
		lens[i] = len(seq)
	}
	// iters generates distinct index combinations of the cross product
	iters := make([]int, len(lens))
	maxCount := 1
	//
	for i := len(lens) - 1; i >= 0; i-- {
		iters[i] = maxCount
		maxCount *= lens[i]
	}
	//
	log.Debugf("maximum distinct vectors: %d", maxCount)
	// when every delta occurs exactly once, no tuple can repeat and
	// the subsumption checks are unnecessary.
	freq := make(map[Delta]int)
	//
	for _, seq := range sorted {
		for _, d := range seq {
			freq[d]++
		}
	}
	//
	distinct := true
	//
	for _, n := range freq {
		if n > 1 {
			distinct = false
			break
		}
	}
	//
	var vectors [][][]int
	//
	for iterI := 0; iterI < maxCount; iterI++ {
		// pick one delta from each failure sequence
		picked := make(map[Delta]bool)
		//
		for i := range sorted {
			picked[sorted[i][(iterI/iters[i])%lens[i]]] = true
		}
		// a pick that eliminates every value at some index cannot
		// produce a vector
		idxFreq := make(map[int]int)
		valid := true
		//
		for d := range picked {
			idxFreq[d.Index]++
			//
			if idxFreq[d.Index] >= len(domain) {
				valid = false
			}
		}
		//
		if !valid {
			continue
		}
		// start from the full vector and remove the picked deltas
		vector := make([][]int, index)
		//
		for i := range vector {
			vector[i] = slices.Clone(domain)
		}
		//
		for d := range picked {
			vector[d.Index] = removeValue(vector[d.Index], d.Value)
		}
		//
		if distinct || vectNew(vectors, vector) {
			if !distinct {
				vectors = vectRm(vectors, vector)
			}
			//
			vectors = append(vectors, vector)
		}
	}
	//
	return vectors
}

func removeValue(values []int, value int) []int {
	res := make([]int, 0, len(values))
	//
	for _, v := range values {
		if v != value {
			res = append(res, v)
		}
	}
	//
	return res
}

// vectContains checks that vector a permits every choice permitted by
// vector b.
func vectContains(a, b [][]int) bool {
	for i := range b {
		for _, v := range b[i] {
			if !slices.Contains(a[i], v) {
				return false
			}
		}
	}
	//
	return true
}

// vectNew holds when no known vector already subsumes the candidate.
func vectNew(vectors [][][]int, vector [][]int) bool {
	for _, v := range vectors {
		if vectContains(v, vector) {
			return false
		}
	}
	//
	return true
}

// vectRm drops every known vector subsumed by the candidate.
func vectRm(vectors [][][]int, vector [][]int) [][][]int {
	res := vectors[:0:0]
	//
	for _, v := range vectors {
		if !vectContains(vector, v) {
			res = append(res, v)
		}
	}
	//
	return res
}
