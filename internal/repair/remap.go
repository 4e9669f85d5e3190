// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import "fmt"

// MinIntLen is the remapped track interval length at or below which an
// interval is dropped silently.
const MinIntLen = 5

// RemapTrack rewrites each interval of ivs through the piecewise-linear
// patch map m, dropping intervals that collapse to length <= MinIntLen
// or that don't intersect any kept span. rlen is the length of the
// patched output, used only to sanity-check the result.
func RemapTrack(m []PatchSpan, ivs []Interval, rlen int) ([]Interval, error) {
	out := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		adj, ok, err := remapInterval(m, iv, rlen)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, adj)
	}
	return out, nil
}

func remapInterval(m []PatchSpan, iv Interval, rlen int) (Interval, bool, error) {
	ibIdx := -1
	for i, s := range m {
		if iv.B < s.SrcE {
			ibIdx = i
			break
		}
	}
	if ibIdx < 0 {
		return Interval{}, false, nil
	}
	s := m[ibIdx]
	ibAdj := s.DstB + (max(iv.B, s.SrcB) - s.SrcB)

	ieIdx := -1
	for i, s := range m {
		if iv.E <= s.SrcE {
			ieIdx = i
			break
		}
	}
	var ieAdj int
	switch {
	case ieIdx < 0:
		// iv.E lies past every kept span; clamp to the last span's end.
		last := m[len(m)-1]
		ieAdj = last.DstB + (last.SrcE - last.SrcB)
	default:
		e := m[ieIdx]
		if iv.E < e.SrcB && ieIdx > 0 {
			prev := m[ieIdx-1]
			ieAdj = prev.DstB + (prev.SrcE - prev.SrcB)
		} else {
			ieAdj = e.DstB + (iv.E - e.SrcB)
		}
	}

	if ieAdj-ibAdj <= MinIntLen {
		return Interval{}, false, nil
	}
	if ibAdj < 0 || ieAdj > rlen || ibAdj >= ieAdj {
		return Interval{}, false, fmt.Errorf("repair: remapped interval [%d,%d) out of bounds for rlen=%d", ibAdj, ieAdj, rlen)
	}
	return Interval{B: ibAdj, E: ieAdj}, true, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
