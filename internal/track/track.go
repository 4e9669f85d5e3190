// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package track implements the generic per-read interval and
// per-segment quality containers backing the mask, trim, user and
// quality tracks, and the flat file formats they are loaded from.
//
// A track file is one record per line, tab-separated, first field the
// read id. Interval tracks (dust, trim, user) carry repeated
// "b,e" pairs; the quality track carries one comma-separated list of
// per-segment values. This on-disk shape is deliberately as plain as
// the FASTA format the rest of the corpus favours, so that dustmask
// needs nothing fancier than bufio.Writer to produce it and this
// package nothing fancier than bufio.Scanner to read it.
package track

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"

	"github.com/kortschak/fixreads/internal/repair"
)

// IntervalTrack is a per-read container of non-overlapping half-open
// intervals, backing the mask, trim and user tracks. Containment
// queries for a given read are served by a
// biogo/store/interval.IntTree built lazily on first query, the same
// container kortschak-ins's repeat culler uses to find contained
// BLAST hits.
type IntervalTrack struct {
	byRead map[int][]repair.Interval
	trees  map[int]*interval.IntTree
}

// NewIntervalTrack returns an empty IntervalTrack.
func NewIntervalTrack() *IntervalTrack {
	return &IntervalTrack{byRead: make(map[int][]repair.Interval)}
}

// Add records an interval for read id. Intervals for a read must be
// non-overlapping; enforcing that is the caller's responsibility.
func (t *IntervalTrack) Add(id, b, e int) {
	t.byRead[id] = append(t.byRead[id], repair.Interval{B: b, E: e})
}

// Intervals implements repair.IntervalTrack.
func (t *IntervalTrack) Intervals(id int) ([]repair.Interval, error) {
	return t.byRead[id], nil
}

// First returns the single interval recorded for id, used for the
// optional trim track, which records at most one half-open interval
// per read. ok is false if no interval was recorded; cmd/fixreads
// then gives the read an empty trim window, so it is not emitted.
func (t *IntervalTrack) First(id int) (iv repair.Interval, ok bool) {
	ivs := t.byRead[id]
	if len(ivs) == 0 {
		return repair.Interval{}, false
	}
	return ivs[0], true
}

type ivNode struct {
	id  uintptr
	ival repair.Interval
}

func (n ivNode) Overlap(b interval.IntRange) bool {
	return n.ival.B < b.End && b.Start < n.ival.E
}
func (n ivNode) ID() uintptr { return n.id }
func (n ivNode) Range() interval.IntRange {
	return interval.IntRange{Start: n.ival.B, End: n.ival.E}
}

func (t *IntervalTrack) treeFor(id int) *interval.IntTree {
	if t.trees == nil {
		t.trees = make(map[int]*interval.IntTree)
	}
	if tr, ok := t.trees[id]; ok {
		return tr
	}
	tr := &interval.IntTree{}
	for i, iv := range t.byRead[id] {
		err := tr.Insert(ivNode{id: uintptr(i), ival: iv}, true)
		if err != nil {
			panic(fmt.Sprint(err))
		}
	}
	tr.AdjustRanges()
	t.trees[id] = tr
	return tr
}

// Contains reports whether [b, e) wholly contains some interval
// recorded for read id. Used by the gap collector to reject donor
// windows that wholly contain a masked interval.
func (t *IntervalTrack) Contains(id, b, e int) bool {
	tr := t.treeFor(id)
	for _, h := range tr.Get(ivNode{ival: repair.Interval{B: b, E: e}}) {
		hv := h.(ivNode).ival
		if b <= hv.B && hv.E <= e {
			return true
		}
	}
	return false
}

// LoadIntervalTrack reads an interval track file: lines of
// "id\tb0,e0,b1,e1,...".
func LoadIntervalTrack(r io.Reader) (*IntervalTrack, error) {
	t := NewIntervalTrack()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("track: malformed line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("track: bad read id %q: %w", fields[0], err)
		}
		nums := strings.Split(fields[1], ",")
		if len(nums)%2 != 0 {
			return nil, fmt.Errorf("track: odd interval field count for read %d", id)
		}
		for i := 0; i < len(nums); i += 2 {
			b, err := strconv.Atoi(nums[i])
			if err != nil {
				return nil, fmt.Errorf("track: bad interval start %q: %w", nums[i], err)
			}
			e, err := strconv.Atoi(nums[i+1])
			if err != nil {
				return nil, fmt.Errorf("track: bad interval end %q: %w", nums[i+1], err)
			}
			if e <= b {
				return nil, fmt.Errorf("track: inverted interval [%d,%d) for read %d", b, e, id)
			}
			t.Add(id, b, e)
		}
	}
	return t, sc.Err()
}

// QualityTrack is a per-read container of per-segment quality values,
// backing the quality track.
type QualityTrack struct {
	byRead map[int][]int
}

// NewQualityTrack returns an empty QualityTrack.
func NewQualityTrack() *QualityTrack {
	return &QualityTrack{byRead: make(map[int][]int)}
}

// Set records the segment values for read id.
func (q *QualityTrack) Set(id int, segs []int) {
	q.byRead[id] = segs
}

// Segments implements repair.QualityTrack.
func (q *QualityTrack) Segments(id int) ([]int, error) {
	segs, ok := q.byRead[id]
	if !ok {
		return nil, fmt.Errorf("track: no quality segments recorded for read %d", id)
	}
	return segs, nil
}

// LoadQualityTrack reads a quality track file: lines of
// "id\tq0,q1,q2,...".
func LoadQualityTrack(r io.Reader) (*QualityTrack, error) {
	q := NewQualityTrack()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("track: malformed line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("track: bad read id %q: %w", fields[0], err)
		}
		parts := strings.Split(fields[1], ",")
		segs := make([]int, len(parts))
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("track: bad quality value %q: %w", p, err)
			}
			segs[i] = v
		}
		q.Set(id, segs)
	}
	return q, sc.Err()
}
