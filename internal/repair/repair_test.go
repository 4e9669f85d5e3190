// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import check "gopkg.in/check.v1"

// TestRepairEndToEndSingleGap drives the full pipeline (flip detection,
// gap collection, weak-region scan, reduction, assembly) through five
// independent donors that all corroborate the same gap, checking that
// they merge into one surviving candidate and produce the expected
// 4980-base patched read.
func (s *S) TestRepairEndToEndSingleGap(c *check.C) {
	cfg := Config{W: 500, MinLen: 100, LowQ: 50, MaxGap: 600}
	a := Read{ID: 0, Len: 5000, Seq: repeatSeq("ACGT", 5000)}

	aQ := make([]int, 10)
	for i := range aQ {
		aQ[i] = 10
	}
	aQ[4] = 0 // sentinel: marks [2000,2500) as corroborated weak.

	var ovls []Overlap
	seqs := make([][]byte, 12)
	seqs[0] = a.Seq
	q := fakeQuality{}
	for b := 7; b <= 11; b++ {
		ovls = append(ovls,
			Overlap{
				A: 0, B: b, Strand: Normal,
				ABpos: 0, AEpos: 2001,
				BBpos: 0, BEpos: 1500,
				Trace: []TracePoint{tp(0, 1000), tp(0, 500)},
			},
			Overlap{
				A: 0, B: b, Strand: Normal,
				ABpos: 2499, AEpos: 5000,
				BBpos: 1400, BEpos: 3900,
				Trace: []TracePoint{tp(0, 80), tp(0, 2420)},
			},
		)
		seqs[b] = make([]byte, 4000)
		q[b] = []int{0, 0, 20}
	}
	db := &fakeDB{seqs: seqs}
	donor := NewDonor(db, fakeMask{}, q)

	trim := Interval{B: 0, E: 5000}
	res, err := Repair(cfg, a, nil, ovls, aQ, trim, db, donor)
	c.Assert(err, check.IsNil)
	c.Check(res.Patched, check.Equals, true)
	c.Check(res.TrimB, check.Equals, 0)
	c.Check(res.TrimE, check.Equals, 5000)
	c.Check(len(res.Seq), check.Equals, 4980)
	c.Assert(res.Map, check.HasLen, 2)
	c.Check(res.Map[0], check.Equals, PatchSpan{SrcB: 0, SrcE: 2000, DstB: 0})
	c.Check(res.Map[1], check.Equals, PatchSpan{SrcB: 2500, SrcE: 5000, DstB: 2480})
}

// TestRepairSkipsEmptyTrim checks that an empty incoming trim window is
// reported as ErrSkip without inspecting overlaps.
func (s *S) TestRepairSkipsEmptyTrim(c *check.C) {
	cfg := Config{W: 500, MinLen: 1, LowQ: 50, MaxGap: 600}
	a := Read{ID: 0, Len: 100, Seq: repeatSeq("ACGT", 100)}
	db := &fakeDB{seqs: [][]byte{a.Seq}}
	donor := NewDonor(db, fakeMask{}, fakeQuality{})

	_, err := Repair(cfg, a, nil, nil, []int{10}, Interval{B: 100, E: 100}, db, donor)
	c.Check(err, check.Equals, ErrSkip)
}

// TestRepairSkipsBelowMinLen checks that a plain trim falling below the
// configured minimum length is reported as ErrSkip.
func (s *S) TestRepairSkipsBelowMinLen(c *check.C) {
	cfg := Config{W: 500, MinLen: 1000, LowQ: 50, MaxGap: 600}
	a := Read{ID: 0, Len: 100, Seq: repeatSeq("ACGT", 100)}
	db := &fakeDB{seqs: [][]byte{a.Seq}}
	donor := NewDonor(db, fakeMask{}, fakeQuality{})

	_, err := Repair(cfg, a, nil, nil, []int{10}, Interval{B: 0, E: 100}, db, donor)
	c.Check(err, check.Equals, ErrSkip)
}
