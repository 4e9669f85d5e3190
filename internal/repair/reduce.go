// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import "sort"

// ExcessSpan is the spanner count above which a candidate is rejected
// as unnecessary: ordinary overlaps already cover the site well enough
// that no repair is warranted.
const ExcessSpan = 10

// MinSupport is the minimum accumulated support a candidate must reach
// to survive reduction.
const MinSupport = 5

// mergeLenSlop is the maximum donor-length difference for two
// identical-A-interval candidates to be merged as duplicates.
const mergeLenSlop = 40

// reduce applies the candidate reduction pipeline in place: size
// filtering, duplicate merging, excess-span rejection, and support
// thresholding, returning the surviving candidates sorted by
// (ab, ae, diff).
func reduce(cands []GapCandidate, maxgap, w, lowq int, aQ []int, ovls []Overlap) []GapCandidate {
	sortCands(cands)

	// 1. Size filter.
	for i := range cands {
		c := &cands[i]
		if c.AE-c.AB >= maxgap || abs(c.BE-c.BB) >= maxgap {
			c.Withdraw()
		}
	}

	// 2. Exact-equal merge.
	for i := range cands {
		c := &cands[i]
		if c.Withdrawn() {
			continue
		}
		for j := i + 1; j < len(cands); j++ {
			o := &cands[j]
			if o.Withdrawn() {
				continue
			}
			if o.AB != c.AB || o.AE != c.AE {
				continue
			}
			if abs((c.BE-c.BB)-(o.BE-o.BB)) >= mergeLenSlop {
				continue
			}
			c.Support += o.Support
			o.Withdraw()
		}
	}

	// 3. Overlap merge.
	for i := range cands {
		c := &cands[i]
		if c.Withdrawn() {
			continue
		}
		for j := i + 1; j < len(cands); j++ {
			o := &cands[j]
			if o.Withdrawn() {
				continue
			}
			if !intersects(c.AB, c.AE, o.AB, o.AE) {
				continue
			}
			// Later wins ties.
			if o.Support >= c.Support {
				o.Support += c.Support
				c.Withdraw()
				break
			}
			c.Support += o.Support
			o.Withdraw()
		}
	}

	// 4. Excess-span rejection.
	for i := range cands {
		c := &cands[i]
		if c.Withdrawn() {
			continue
		}
		if spanners(ovls, c.AB, c.AE) > ExcessSpan {
			c.Withdraw()
		}
	}

	// 5. Quality-corroboration filter.
	for i := range cands {
		c := &cands[i]
		if c.Withdrawn() {
			continue
		}
		if c.Support < MinSupport || !hasLowQSegment(aQ, w, lowq, c.AB, c.AE) {
			c.Withdraw()
		}
	}

	survivors := compact(cands)
	sortCands(survivors)

	// Recompute span with margin 100.
	for i := range survivors {
		c := &survivors[i]
		c.Span = countSpanning(ovls, c.AB, c.AE, 100)
	}

	return survivors
}

func sortCands(cands []GapCandidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].AB != cands[j].AB {
			return cands[i].AB < cands[j].AB
		}
		if cands[i].AE != cands[j].AE {
			return cands[i].AE < cands[j].AE
		}
		return cands[i].Diff < cands[j].Diff
	})
}

func compact(cands []GapCandidate) []GapCandidate {
	out := make([]GapCandidate, 0, len(cands))
	for _, c := range cands {
		if !c.Withdrawn() {
			out = append(out, c)
		}
	}
	return out
}

func hasLowQSegment(aQ []int, w, lowq, ab, ae int) bool {
	lo := ab / w
	hi := (ae - 1) / w
	for i := lo; i <= hi; i++ {
		if i < 0 || i >= len(aQ) {
			continue
		}
		if aQ[i] == 0 || aQ[i] >= lowq {
			return true
		}
	}
	return false
}

func countSpanning(ovls []Overlap, ab, ae, margin int) int {
	n := 0
	for i := range ovls {
		o := &ovls[i]
		if o.ABpos+margin < ab && o.AEpos-margin > ae {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
