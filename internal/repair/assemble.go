// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import "fmt"

// assemble walks the surviving candidates in sorted order and produces
// the patched read: alternating A-kept spans and B-replacement spans,
// plus the piecewise-linear patch map recording where each A-kept span
// landed in the output.
//
// aSeq is the A-read's sequence; aStreams holds its quality streams
// (nil if quality propagation was not requested). db is used to fetch
// donor sequence and quality.
func assemble(aID int, aSeq []byte, aStreams [][]byte, trimB, trimE int, cands []GapCandidate, db DB) (*Result, error) {
	k := len(aStreams)
	out := make([]byte, 0, trimE-trimB)
	var outStreams [][]byte
	if k > 0 {
		outStreams = make([][]byte, k)
	}

	var patchMap []PatchSpan
	inserted := 0

	emitASpan := func(b, e int) {
		patchMap = append(patchMap, PatchSpan{SrcB: b, SrcE: e, DstB: len(out)})
		out = append(out, aSeq[b:e]...)
		for i := 0; i < k; i++ {
			outStreams[i] = append(outStreams[i], aStreams[i][b:e]...)
		}
	}

	emitBSpan := func(c *GapCandidate) error {
		bLen := db.ReadLen(c.B)
		if c.BB < 0 || c.BB >= c.BE || c.BE > bLen {
			return fmt.Errorf("repair: candidate donor window [%d,%d) out of bounds for read %d (length %d)", c.BB, c.BE, c.B, bLen)
		}
		bSeq, err := db.LoadRead(c.B, nil, true)
		if err != nil {
			return err
		}
		var bStreams [][]byte
		if k > 0 {
			bStreams, err = db.LoadQuality(c.B, nil)
			if err != nil {
				return err
			}
		}

		seg := append([]byte(nil), bSeq[c.BB:c.BE]...)
		var segStreams [][]byte
		if k > 0 {
			segStreams = make([][]byte, k)
			for i := 0; i < k; i++ {
				segStreams[i] = append([]byte(nil), bStreams[i][c.BB:c.BE]...)
			}
		}
		if c.Comp {
			revComp(seg)
			for i := range segStreams {
				reverseBytes(segStreams[i])
			}
		}
		out = append(out, seg...)
		for i := 0; i < k; i++ {
			outStreams[i] = append(outStreams[i], segStreams[i]...)
		}
		inserted++
		return nil
	}

	ab := trimB
	for i := range cands {
		c := &cands[i]
		if trimB > c.AB {
			ab = c.AE
			continue
		}
		if trimE < c.AE {
			break
		}
		ae := c.AB
		if trimB > ab && trimB < ae {
			ab = trimB
		}
		if ab < ae {
			emitASpan(ab, ae)
		}
		if err := emitBSpan(c); err != nil {
			return nil, err
		}
		ab = c.AE
	}
	if ab < trimE {
		emitASpan(ab, trimE)
	}

	return &Result{
		A:       aID,
		Patched: inserted > 0,
		TrimB:   trimB,
		TrimE:   trimE,
		Seq:     out,
		Quality: outStreams,
		Map:     patchMap,
	}, nil
}

// revComp reverse-complements b in place over the {A,C,G,T,N} alphabet.
func revComp(b []byte) {
	n := len(b)
	for i, j := 0, n-1; i <= j; i, j = i+1, j-1 {
		ci, cj := complement(b[j]), complement(b[i])
		b[i], b[j] = ci, cj
	}
}

func complement(c byte) byte {
	switch c {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	default:
		return 'N'
	}
}

// reverseBytes reverses b in place without complementing; quality
// streams are strand-agnostic per stream by contract.
func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
