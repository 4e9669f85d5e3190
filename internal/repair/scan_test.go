// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import check "gopkg.in/check.v1"

// TestMapRangeNormal checks that mapRange walks a trace forward and
// returns the B-coordinates matching A-segment boundaries that fall on
// slice edges of the trace's W-grid.
func (s *S) TestMapRangeNormal(c *check.C) {
	o := &Overlap{
		ABpos: 0, AEpos: 1000,
		BBpos: 0, BEpos: 1000,
		Trace: []TracePoint{tp(0, 500), tp(0, 500)},
	}

	bb, be, ok := mapRange(o, 500, 0, 500)
	c.Assert(ok, check.Equals, true)
	c.Check(bb, check.Equals, 0)
	c.Check(be, check.Equals, 500)

	bb, be, ok = mapRange(o, 500, 500, 1000)
	c.Assert(ok, check.Equals, true)
	c.Check(bb, check.Equals, 500)
	c.Check(be, check.Equals, 1000)

	bb, be, ok = mapRange(o, 500, 0, 1000)
	c.Assert(ok, check.Equals, true)
	c.Check(bb, check.Equals, 0)
	c.Check(be, check.Equals, 1000)
}

// TestMapRangeUnaligned checks that mapRange fails when the requested
// A-interval doesn't land on slice boundaries of the trace.
func (s *S) TestMapRangeUnaligned(c *check.C) {
	o := &Overlap{
		ABpos: 0, AEpos: 1000,
		BBpos: 0, BEpos: 1000,
		Trace: []TracePoint{tp(0, 500), tp(0, 500)},
	}
	_, _, ok := mapRange(o, 500, 0, 700)
	c.Check(ok, check.Equals, false)
}

// TestScanWeakSelectsLowestMeanDonor checks that among several overlaps
// spanning a weak A-segment with the required margin, scanWeak picks
// the one whose mapped donor window has the lowest mean quality.
func (s *S) TestScanWeakSelectsLowestMeanDonor(c *check.C) {
	const w = 500
	aQ := []int{10, 60, 10} // only index 1 clears the low-quality threshold.

	ovls := []Overlap{
		{
			A: 0, B: 1, Strand: Normal,
			ABpos: 0, AEpos: 1500,
			BBpos: 0, BEpos: 1500,
			Trace: uniformTrace(3, 500),
		},
		{
			A: 0, B: 2, Strand: Normal,
			ABpos: 0, AEpos: 1500,
			BBpos: 0, BEpos: 1500,
			Trace: uniformTrace(3, 500),
		},
	}
	donor := NewDonor(
		&fakeDB{seqs: [][]byte{nil, make([]byte, 1500), make([]byte, 1500)}},
		fakeMask{},
		fakeQuality{
			1: {30, 20, 15}, // mean over indices 1,2: 17.5
			2: {30, 25, 25}, // mean over indices 1,2: 25
		},
	)

	cands := scanWeak(aQ, ovls, w, 50, 0, 1500, nil, donor)
	c.Assert(cands, check.HasLen, 1)
	g := cands[0]
	c.Check(g.AB, check.Equals, 500)
	c.Check(g.AE, check.Equals, 1000)
	c.Check(g.B, check.Equals, 1)
	c.Check(g.BB, check.Equals, 500)
	c.Check(g.BE, check.Equals, 1000)
	c.Check(g.Diff, check.Equals, 17.5)
}

// TestScanWeakRejectsZeroQualityDonor checks that a candidate donor
// whose mapped window covers a zero-quality sentinel segment is never
// selected, leaving the weak segment uncorroborated.
func (s *S) TestScanWeakRejectsZeroQualityDonor(c *check.C) {
	const w = 500
	aQ := []int{10, 60, 10}

	ovls := []Overlap{
		{
			A: 0, B: 1, Strand: Normal,
			ABpos: 0, AEpos: 1500,
			BBpos: 0, BEpos: 1500,
			Trace: uniformTrace(3, 500),
		},
	}
	donor := NewDonor(
		&fakeDB{seqs: [][]byte{nil, make([]byte, 1500)}},
		fakeMask{},
		fakeQuality{1: {30, 0, 25}},
	)

	c.Check(scanWeak(aQ, ovls, w, 50, 0, 1500, nil, donor), check.HasLen, 0)
}

// TestScanWeakSkipsExistingCandidate checks that a weak segment already
// covered by an existing gap candidate is left to that candidate rather
// than rescanned.
func (s *S) TestScanWeakSkipsExistingCandidate(c *check.C) {
	const w = 500
	aQ := []int{10, 60, 10}
	existing := []GapCandidate{{AB: 500, AE: 1000, BB: 0, BE: 500, B: 9}}

	ovls := []Overlap{
		{
			A: 0, B: 1, Strand: Normal,
			ABpos: 0, AEpos: 1500,
			BBpos: 0, BEpos: 1500,
			Trace: uniformTrace(3, 500),
		},
	}
	donor := NewDonor(
		&fakeDB{seqs: [][]byte{nil, make([]byte, 1500)}},
		fakeMask{},
		fakeQuality{1: {30, 20, 15}},
	)

	c.Check(scanWeak(aQ, ovls, w, 50, 0, 1500, existing, donor), check.HasLen, 0)
}

// TestScanWeakComplementDonor checks that a complement-strand donor's
// forward-walk B-coordinates are converted into the donor's own
// forward coordinates before being recorded on the candidate.
func (s *S) TestScanWeakComplementDonor(c *check.C) {
	const w = 500
	const lb = 2000
	aQ := []int{10, 60, 10}

	ovls := []Overlap{
		{
			A: 0, B: 1, Strand: Complement,
			ABpos: 0, AEpos: 1500,
			BBpos: 0, BEpos: 1500,
			Trace: uniformTrace(3, 500),
		},
	}
	donor := NewDonor(
		&fakeDB{seqs: [][]byte{nil, make([]byte, lb)}},
		fakeMask{},
		fakeQuality{1: {30, 30, 20, 25}},
	)

	cands := scanWeak(aQ, ovls, w, 50, 0, 1500, nil, donor)
	c.Assert(cands, check.HasLen, 1)
	g := cands[0]
	// Pre-conversion walk coordinates are [500, 1000); converting via
	// lb-x and swapping gives [lb-1000, lb-500) = [1000, 1500).
	c.Check(g.BB, check.Equals, 1000)
	c.Check(g.BE, check.Equals, 1500)
	c.Check(g.Comp, check.Equals, true)
}
