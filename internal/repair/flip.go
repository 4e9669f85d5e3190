// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

// MinSpan is the minimum number of bases an overlap must extend beyond
// an interval on both sides to count as a spanner of that interval.
const MinSpan = 400

// spanners counts overlaps that strictly span [lo, hi) with margin
// MinSpan on both sides.
func spanners(ovls []Overlap, lo, hi int) int {
	n := 0
	for i := range ovls {
		o := &ovls[i]
		if o.ABpos < lo-MinSpan && o.AEpos > hi+MinSpan {
			n++
		}
	}
	return n
}

// flipResult is the outcome of a flip-detector pass.
type flipResult struct {
	TrimB, TrimE int
	Found        bool
}

// detectFlip inspects the self-overlaps of A (overlaps with B == A,
// expected to form a contiguous prefix of ovls) for evidence of a
// chimeric fold, and narrows [trimB, trimE) around any cut candidate it
// finds.
func detectFlip(a int, l int, ovls []Overlap, w int, trimB, trimE int) flipResult {
	self := selfOverlaps(a, ovls)

	res := flipResult{TrimB: trimB, TrimE: trimE}
	var cuts []int

	for i := range self {
		o := &self[i]
		if o.Strand != Complement {
			continue
		}
		mirrorB := l - o.BEpos
		mirrorE := l - o.BBpos
		if !intersects(o.ABpos, o.AEpos, mirrorB, mirrorE) {
			continue
		}

		// Walk the W-aligned slice grid of the overlap, tracking the
		// cumulative B-trace to compute each slice's mirrored
		// A-interval, and mark a cut at any slice whose forward and
		// mirrored A-interval still intersect.
		ab := o.ABpos
		bCum := o.BBpos
		first := true
		for _, tp := range o.Trace {
			sliceAB := ab
			sliceAE := sliceEnd(ab, o.AEpos, w, first)
			first = false

			sliceBB := bCum
			sliceBE := bCum + tp.BLen
			bCum = sliceBE

			sliceMirrorB := l - sliceBE
			sliceMirrorE := l - sliceBB
			if intersects(sliceAB, sliceAE, sliceMirrorB, sliceMirrorE) {
				cuts = append(cuts, sliceAB)
			}
			ab = sliceAE
		}
	}

	for i := 1; i < len(self); i++ {
		p, c := &self[i-1], &self[i]
		if p.Strand != Complement || c.Strand != Complement {
			continue
		}
		if p.AEpos >= c.ABpos {
			continue // not a true gap between the pair.
		}
		gb, ge := p.AEpos, c.ABpos
		mirrorB := l - c.BEpos
		mirrorE := l - p.BBpos
		if !intersects(gb, ge, mirrorB, mirrorE) {
			continue
		}
		if spanners(ovls, gb, ge) > 1 {
			continue
		}
		cuts = append(cuts, (gb+ge)/2)
	}

	for _, c := range cuts {
		if !(res.TrimB < c && c < res.TrimE) {
			continue
		}
		if c-res.TrimB < res.TrimE-c {
			res.TrimB = c
		} else {
			res.TrimE = c
		}
		res.Found = true
	}

	return res
}

// selfOverlaps returns the contiguous prefix of ovls with B == a.
func selfOverlaps(a int, ovls []Overlap) []Overlap {
	n := 0
	for n < len(ovls) && ovls[n].B == a {
		n++
	}
	return ovls[:n]
}

func intersects(ab, ae, bb, be int) bool {
	return ab < be && bb < ae
}

// sliceEnd returns the end of the W-aligned slice starting at ab, clipped
// to aepos for the final slice of the overlap.
func sliceEnd(ab, aepos, w int, first bool) int {
	var e int
	if first {
		e = (ab/w + 1) * w
	} else {
		e = ab + w
	}
	if e > aepos {
		e = aepos
	}
	return e
}
