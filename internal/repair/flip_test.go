// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import check "gopkg.in/check.v1"

func (s *S) TestSpanners(c *check.C) {
	ovls := []Overlap{
		{ABpos: 100, AEpos: 2000},    // does not clear the margin on the right.
		{ABpos: 1000 - MinSpan - 1, AEpos: 2000 + MinSpan + 1}, // qualifies.
		{ABpos: 1000 - MinSpan - 1, AEpos: 1500},               // falls short on the right.
	}
	c.Check(spanners(ovls, 1000, 2000), check.Equals, 1)
}

// TestFlipRetractsSmallerRightSide checks the "keep the larger side"
// rule: a cut candidate nearer trim_e than trim_b retracts trim_e,
// preserving the larger (left) side.
func (s *S) TestFlipRetractsSmallerRightSide(c *check.C) {
	const l = 1000
	ovls := []Overlap{
		{A: 0, B: 0, Strand: Complement, ABpos: 0, AEpos: 100, BBpos: l - 950, BEpos: 500},
		{A: 0, B: 0, Strand: Complement, ABpos: 950, AEpos: 1000, BBpos: 600, BEpos: l - 100},
	}
	res := detectFlip(0, l, ovls, 500, 0, 1000)
	c.Check(res.Found, check.Equals, true)
	c.Check(res.TrimB, check.Equals, 0)
	c.Check(res.TrimE, check.Equals, 525)
}

// TestFlipAdvancesSmallerLeftSide checks the mirror case: a cut
// candidate nearer trim_b advances trim_b, preserving the larger
// (right) side.
func (s *S) TestFlipAdvancesSmallerLeftSide(c *check.C) {
	const l = 1000
	ovls := []Overlap{
		{A: 0, B: 0, Strand: Complement, ABpos: 0, AEpos: 50, BBpos: l - 300, BEpos: 500},
		{A: 0, B: 0, Strand: Complement, ABpos: 300, AEpos: 1000, BBpos: 600, BEpos: l - 50},
	}
	res := detectFlip(0, l, ovls, 500, 0, 1000)
	c.Check(res.Found, check.Equals, true)
	c.Check(res.TrimB, check.Equals, 175)
	c.Check(res.TrimE, check.Equals, 1000)
}

// TestFlipIdempotent checks that re-running the detector on its own
// output makes no further change.
func (s *S) TestFlipIdempotent(c *check.C) {
	const l = 1000
	ovls := []Overlap{
		{A: 0, B: 0, Strand: Complement, ABpos: 0, AEpos: 100, BBpos: l - 950, BEpos: 500},
		{A: 0, B: 0, Strand: Complement, ABpos: 950, AEpos: 1000, BBpos: 600, BEpos: l - 100},
	}
	first := detectFlip(0, l, ovls, 500, 0, 1000)
	second := detectFlip(0, l, ovls, 500, first.TrimB, first.TrimE)
	c.Check(second.TrimB, check.Equals, first.TrimB)
	c.Check(second.TrimE, check.Equals, first.TrimE)
	c.Check(second.Found, check.Equals, false)
}

// TestFlipNoEvidenceLeavesWindowUnchanged checks that without a
// self-complement overlap whose interval intersects its mirror, the
// trim window is untouched.
func (s *S) TestFlipNoEvidenceLeavesWindowUnchanged(c *check.C) {
	const l = 1000
	ovls := []Overlap{
		{A: 0, B: 0, Strand: Normal, ABpos: 0, AEpos: 100, BBpos: 0, BEpos: 100},
		{A: 0, B: 9, Strand: Normal, ABpos: 0, AEpos: 1000, BBpos: 0, BEpos: 1000},
	}
	res := detectFlip(0, l, ovls, 500, 0, 1000)
	c.Check(res.Found, check.Equals, false)
	c.Check(res.TrimB, check.Equals, 0)
	c.Check(res.TrimE, check.Equals, 1000)
}
