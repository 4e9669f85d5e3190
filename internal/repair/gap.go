// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import "gonum.org/v1/gonum/floats"

// collectGaps walks ovls (the overlaps of a single A-read, grouped by
// B-read and sorted by A-start within each group) and, for every
// consecutive pair to the same B-read whose A-intervals are disjoint,
// emits a gap candidate replacing the intervening A-interval with the
// trace-implied donor B-interval.
func collectGaps(ovls []Overlap, w int, donor Donor) []GapCandidate {
	var cands []GapCandidate
	for i := 1; i < len(ovls); i++ {
		p, c := &ovls[i-1], &ovls[i]
		if p.B != c.B || p.Strand != c.Strand {
			continue
		}
		if p.AEpos >= c.ABpos {
			continue // not a true A-gap.
		}
		if len(p.Trace) == 0 || len(c.Trace) == 0 {
			continue
		}

		ab := ((p.AEpos - 1) / w) * w
		ae := (c.ABpos/w + 1) * w

		lastB := p.Trace[len(p.Trace)-1].BLen
		firstB := c.Trace[0].BLen
		bb := p.BEpos - lastB
		be := c.BBpos + firstB

		comp := c.Strand == Complement
		if comp {
			lb := donor.ReadLen(c.B)
			bb, be = lb-be, lb-bb
		}
		if bb >= be {
			continue
		}

		if donor.MaskContains(c.B, bb, be) {
			continue
		}

		qseg, err := donor.QualitySegments(c.B)
		if err != nil {
			continue
		}
		if hasZeroQuality(qseg, w, bb, be) {
			continue
		}

		diff := 100 * floats.Sum(floatRange(qseg, w, bb, be)) / float64(be-bb)

		cands = append(cands, GapCandidate{
			AB: ab, AE: ae,
			BB: bb, BE: be,
			B:       c.B,
			Comp:    comp,
			Diff:    diff,
			Support: 1,
		})
	}
	return cands
}

// hasZeroQuality reports whether any quality segment overlapping
// [bb/w, be/w] is the zero sentinel.
func hasZeroQuality(q []int, w, bb, be int) bool {
	lo := bb / w
	hi := be / w
	if hi >= len(q) {
		hi = len(q) - 1
	}
	for i := lo; i <= hi; i++ {
		if i < 0 || i >= len(q) {
			continue
		}
		if q[i] == 0 {
			return true
		}
	}
	return false
}

// floatRange returns the per-segment quality values spanning [bb, be) as
// float64, for averaging.
func floatRange(q []int, w, bb, be int) []float64 {
	lo := bb / w
	hi := be / w
	if hi >= len(q) {
		hi = len(q) - 1
	}
	if lo > hi {
		return nil
	}
	out := make([]float64, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if i < 0 || i >= len(q) {
			continue
		}
		out = append(out, float64(q[i]))
	}
	return out
}
