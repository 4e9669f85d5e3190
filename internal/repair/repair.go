// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repair

import "errors"

// ErrSkip is returned by Repair when the read should be silently
// dropped: its trim interval is empty, or the assembled sequence fell
// below the configured minimum length. Callers should log (optionally)
// and move on to the next read — this is policy, not failure.
var ErrSkip = errors.New("repair: read skipped")

// donorAdapter composes a DB, a mask ContainsTrack, and a QualityTrack
// into the Donor view the gap collector and weak-region scanner need.
type donorAdapter struct {
	db   DB
	mask ContainsTrack
	q    QualityTrack
}

func (d donorAdapter) ReadLen(b int) int { return d.db.ReadLen(b) }

func (d donorAdapter) MaskContains(b, bb, be int) bool { return d.mask.Contains(b, bb, be) }

func (d donorAdapter) QualitySegments(b int) ([]int, error) { return d.q.Segments(b) }

// NewDonor adapts a DB, mask track and quality track into a Donor.
func NewDonor(db DB, mask ContainsTrack, q QualityTrack) Donor {
	return donorAdapter{db: db, mask: mask, q: q}
}

// Repair runs the full per-read repair pipeline for a single A-read:
// flip detection, gap collection, weak-region scanning, candidate
// reduction, and patch assembly. ovls must be the overlaps of a single
// A-read, grouped by B-read and sorted by A-start within each group,
// with self-overlaps (B == a.ID) forming a contiguous prefix. trim is
// the incoming trim window (the full read, [0, a.Len), if no trim
// track applies). aStreams is the A-read's own quality streams, needed
// only when quality propagation is requested by the caller; pass nil
// to omit the parallel quality output.
func Repair(cfg Config, a Read, aStreams [][]byte, ovls []Overlap, aQ []int, trim Interval, db DB, donor Donor) (*Result, error) {
	flip := detectFlip(a.ID, a.Len, ovls, cfg.W, trim.B, trim.E)
	trimB, trimE := flip.TrimB, flip.TrimE
	if trimE <= trimB {
		return nil, ErrSkip
	}

	gapCands := collectGaps(ovls, cfg.W, donor)
	weakCands := scanWeak(aQ, ovls, cfg.W, cfg.LowQ, trimB, trimE, gapCands, donor)

	all := make([]GapCandidate, 0, len(gapCands)+len(weakCands))
	all = append(all, gapCands...)
	all = append(all, weakCands...)

	survivors := reduce(all, cfg.MaxGap, cfg.W, cfg.LowQ, aQ, ovls)

	res, err := assemble(a.ID, a.Seq, aStreams, trimB, trimE, survivors, db)
	if err != nil {
		return nil, err
	}
	if len(res.Seq) < cfg.MinLen {
		return nil, ErrSkip
	}
	return res, nil
}
