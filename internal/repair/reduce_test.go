// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import check "gopkg.in/check.v1"

// TestReduceSizeFilter checks that an oversized candidate is withdrawn
// before any other stage can keep it alive.
func (s *S) TestReduceSizeFilter(c *check.C) {
	cands := []GapCandidate{
		{AB: 1000, AE: 1000 + 600, BB: 0, BE: 600, B: 1, Support: 10},
	}
	aQ := []int{0, 0, 0, 0, 0}
	out := reduce(cands, 500, 500, 28, aQ, nil)
	c.Check(out, check.HasLen, 0)
}

// TestReduceExactEqualMerge checks that candidates with identical
// A-intervals and close donor lengths are merged, accumulating support.
func (s *S) TestReduceExactEqualMerge(c *check.C) {
	aQ := []int{0, 0, 0, 0, 30}
	cands := []GapCandidate{
		{AB: 2000, AE: 2500, BB: 1000, BE: 1480, B: 7, Support: 1, Diff: 4},
		{AB: 2000, AE: 2500, BB: 2000, BE: 2470, B: 8, Support: 1, Diff: 5},
		{AB: 2000, AE: 2500, BB: 3000, BE: 3460, B: 9, Support: 1, Diff: 3},
		{AB: 2000, AE: 2500, BB: 4000, BE: 4475, B: 10, Support: 1, Diff: 6},
		{AB: 2000, AE: 2500, BB: 5000, BE: 5490, B: 11, Support: 1, Diff: 2},
	}
	out := reduce(cands, 600, 500, 28, aQ, nil)
	c.Assert(out, check.HasLen, 1)
	c.Check(out[0].Support, check.Equals, 5)
}

// TestReduceOverlapMergeKeepsGreaterSupport checks that when two
// surviving candidates' A-intervals overlap, the lower-support one is
// folded into the higher-support one.
func (s *S) TestReduceOverlapMergeKeepsGreaterSupport(c *check.C) {
	aQ := []int{0, 0, 0, 0, 30, 30}
	cands := []GapCandidate{
		{AB: 2000, AE: 2600, BB: 0, BE: 600, B: 1, Support: 2, Diff: 1},
		{AB: 2300, AE: 2900, BB: 0, BE: 600, B: 2, Support: 6, Diff: 2},
	}
	out := reduce(cands, 1000, 500, 28, aQ, nil)
	c.Assert(out, check.HasLen, 1)
	c.Check(out[0].AB, check.Equals, 2300)
	c.Check(out[0].Support, check.Equals, 8)
}

// TestReduceExcessSpanRejection checks that a candidate spanned by more
// than ExcessSpan ordinary overlaps is withdrawn.
func (s *S) TestReduceExcessSpanRejection(c *check.C) {
	aQ := []int{0, 0, 0, 0, 30}
	cands := []GapCandidate{
		{AB: 2000, AE: 2500, BB: 1000, BE: 1480, B: 7, Support: 11, Diff: 4},
	}
	var ovls []Overlap
	for i := 0; i < 11; i++ {
		ovls = append(ovls, Overlap{
			A: 0, ABpos: 2000 - MinSpan - 1 - i, AEpos: 2500 + MinSpan + 1 + i,
		})
	}
	out := reduce(cands, 600, 500, 28, aQ, ovls)
	c.Check(out, check.HasLen, 0)
}

// TestReduceQualityCorroboration checks that a candidate with no
// qualifying A-quality segment inside its interval is withdrawn even
// with ample support.
func (s *S) TestReduceQualityCorroboration(c *check.C) {
	aQ := []int{10, 10, 10, 10, 10} // all below lowq and non-zero: no corroboration.
	cands := []GapCandidate{
		{AB: 2000, AE: 2500, BB: 1000, BE: 1480, B: 7, Support: 6, Diff: 4},
	}
	out := reduce(cands, 600, 500, 28, aQ, nil)
	c.Check(out, check.HasLen, 0)
}

// TestReduceDisjointness asserts P4: after reduction, surviving
// candidates' A-intervals are pairwise non-overlapping, and each
// respects the size filter.
func (s *S) TestReduceDisjointness(c *check.C) {
	aQ := make([]int, 20)
	for i := range aQ {
		aQ[i] = 30
	}
	cands := []GapCandidate{
		{AB: 1000, AE: 1500, BB: 0, BE: 400, B: 1, Support: 6},
		{AB: 1400, AE: 2000, BB: 0, BE: 500, B: 2, Support: 7},
		{AB: 5000, AE: 5500, BB: 0, BE: 450, B: 3, Support: 6},
	}
	const maxgap = 1000
	out := reduce(cands, maxgap, 500, 28, aQ, nil)
	for i := 0; i < len(out); i++ {
		c.Check(out[i].AE-out[i].AB < maxgap, check.Equals, true)
		for j := i + 1; j < len(out); j++ {
			c.Check(intersects(out[i].AB, out[i].AE, out[j].AB, out[j].AE), check.Equals, false)
		}
	}
}
