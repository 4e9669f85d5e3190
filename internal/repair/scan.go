// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import "gonum.org/v1/gonum/stat"

// scanWeak iterates the W-aligned segments of [trimB, trimE) whose A
// quality is absent or at/above lowq, and for each one not already
// covered by an existing candidate, looks among overlaps that strictly
// span the segment (with 100-base margin) for the donor minimizing mean
// B quality over the mapped window.
func scanWeak(aQ []int, ovls []Overlap, w, lowq, trimB, trimE int, existing []GapCandidate, donor Donor) []GapCandidate {
	const margin = 100

	segFirst := trimB / w
	segLast := (trimE - 1) / w
	if segLast >= len(aQ) {
		segLast = len(aQ) - 1
	}
	for segFirst <= segLast && aQ[segFirst] == 0 {
		segFirst++
	}
	for segLast >= segFirst && aQ[segLast] == 0 {
		segLast--
	}

	var cands []GapCandidate
	for i := segFirst; i <= segLast; i++ {
		q := aQ[i]
		if !(q == 0 || q >= lowq) {
			continue
		}
		ab, ae := i*w, (i+1)*w
		if ae > trimE {
			ae = trimE
		}
		if ab >= ae || insideExisting(existing, ab, ae) {
			continue
		}

		border := 0
		for j := range ovls {
			o := &ovls[j]
			if (o.ABpos >= ab && o.ABpos < ae) || (o.AEpos >= ab && o.AEpos < ae) {
				border++
			}
		}

		var (
			bestB, bestE int
			bestOv       *Overlap
			bestMean     float64
			span         int
		)
		for j := range ovls {
			o := &ovls[j]
			if o.ABpos > ab-margin || o.AEpos < ae+margin {
				continue
			}
			bb, be, ok := mapRange(o, w, ab, ae)
			if !ok {
				continue
			}
			comp := o.Strand == Complement
			if comp {
				lb := donor.ReadLen(o.B)
				bb, be = lb-be, lb-bb
			}
			if bb >= be {
				continue
			}
			qb, err := donor.QualitySegments(o.B)
			if err != nil {
				continue
			}
			if hasZeroQuality(qb, w, bb, be) {
				continue
			}
			span++
			mean := stat.Mean(floatRange(qb, w, bb, be), nil)
			if bestOv == nil || mean < bestMean {
				bestOv, bestB, bestE, bestMean = o, bb, be, mean
			}
		}
		if bestOv == nil {
			continue
		}
		cands = append(cands, GapCandidate{
			AB: ab, AE: ae,
			BB: bestB, BE: bestE,
			B:       bestOv.B,
			Comp:    bestOv.Strand == Complement,
			Diff:    bestMean,
			Span:    span,
			Support: border,
		})
	}
	return cands
}

// insideExisting reports whether [ab, ae) already lies inside one of
// cands's A-intervals.
func insideExisting(cands []GapCandidate, ab, ae int) bool {
	for i := range cands {
		if cands[i].AB <= ab && ae <= cands[i].AE {
			return true
		}
	}
	return false
}

// mapRange walks o's trace to find the B-coordinates (in the overlap's
// alignment-walk direction — forward if Normal, reverse if Complement)
// corresponding to the A-interval [ab, ae), which must fall on slice
// boundaries of the trace's W-grid.
func mapRange(o *Overlap, w, ab, ae int) (bb, be int, ok bool) {
	curA, curB := o.ABpos, o.BBpos
	first := true
	foundB, foundE := -1, -1
	for _, tp := range o.Trace {
		sAB := curA
		sAE := sliceEnd(curA, o.AEpos, w, first)
		first = false
		sBB := curB
		sBE := curB + tp.BLen

		if sAB == ab {
			foundB = sBB
		}
		if sAE == ae {
			foundE = sBE
		}

		curA, curB = sAE, sBE
	}
	if foundB < 0 || foundE < 0 {
		return 0, 0, false
	}
	return foundB, foundE, true
}
