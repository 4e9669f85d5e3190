// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repair implements the per-read repair pipeline that replaces
// low-quality and inter-alignment-gap segments of a long read with
// higher-quality sequence drawn from overlapping reads, and trims reads
// that show evidence of a chimeric inversion.
//
// A read's repair is a pure function of its overlaps, the read database,
// and the quality/mask/trim/user tracks; callers fetch the inputs through
// the interfaces in this file and call Repair once per A-read.
package repair

// Strand records whether a B-read participates in an overlap on its
// forward strand or reverse-complemented.
type Strand bool

const (
	Normal     Strand = false
	Complement Strand = true
)

// Read is an immutable read: its id, length L and base sequence of
// length L. Its quality streams are passed to Repair separately.
type Read struct {
	ID  int
	Len int
	Seq []byte // upper-case bases over {A,C,G,T,N}, length Len.
}

// TracePoint is one W-aligned slice of an alignment trace: the diff count
// and B-length consumed across that slice of the A-interval.
type TracePoint struct {
	Diff int
	BLen int
}

// Overlap is a directed pairwise alignment from the A-read to a B-read.
type Overlap struct {
	A, B    int
	Strand  Strand
	ABpos   int
	AEpos   int
	BBpos   int
	BEpos   int
	Trace   []TracePoint // one entry per W-aligned slice of [ABpos, AEpos).
}

// ALen returns the length of the overlap's A-interval.
func (o *Overlap) ALen() int { return o.AEpos - o.ABpos }

// BLen returns the length of the overlap's B-interval.
func (o *Overlap) BLen() int { return o.BEpos - o.BBpos }

// Config bundles the tunable thresholds of a repair pass. It is the
// opaque per-invocation configuration record referred to by DESIGN.md;
// one Config is built per process run and reused across reads.
type Config struct {
	// W is the segment width that quality tracks and trace points are
	// aligned to.
	W int
	// MinLen is the minimum length of an emitted sequence (-x).
	MinLen int
	// LowQ is the segment low-quality threshold (-Q); a segment with
	// quality 0 or >= LowQ is "bad".
	LowQ int
	// MaxGap is the maximum A- or donor-length of a patchable gap (-g).
	MaxGap int
}

// DB is the narrow read-only interface the core uses to fetch read
// sequence and quality data. It is implemented by internal/readdb.
type DB interface {
	NumReads() int
	ReadLen(id int) int
	LoadRead(id int, out []byte, uppercase bool) ([]byte, error)
	LoadQuality(id int, out [][]byte) ([][]byte, error)
}

// Donor bundles the lookups the gap collector and weak-region scanner
// need about a candidate donor (B) read: its length, whether a given
// window of it wholly contains a masked interval, and its per-segment
// quality. repair.go adapts a DB, ContainsTrack and QualityTrack into
// a Donor.
type Donor interface {
	ReadLen(b int) int
	// MaskContains reports whether read b's mask track records an
	// interval lying wholly within the donor window [bb, be).
	MaskContains(b, bb, be int) bool
	QualitySegments(b int) ([]int, error)
}

// ContainsTrack exposes, for a single read, whether some recorded
// interval lies wholly within a given window. internal/track's
// IntervalTrack serves this with an interval tree built over its
// recorded intervals.
type ContainsTrack interface {
	Contains(id, b, e int) bool
}

// QualityTrack exposes, for a single read, one sentinel-or-threshold
// quality value per W-segment.
type QualityTrack interface {
	// Segments returns the per-segment quality values for read id; the
	// slice has exactly ceil(L/W) entries. Value 0 is the "unknown"
	// sentinel.
	Segments(id int) ([]int, error)
}

// Interval is a half-open coordinate range [B, E).
type Interval struct {
	B, E int
}

// Len reports the interval's length.
func (iv Interval) Len() int { return iv.E - iv.B }

// IntervalTrack exposes, for a single read, a set of non-overlapping
// half-open intervals (masking, trim, or user annotation).
type IntervalTrack interface {
	// Intervals returns the intervals recorded for read id, or nil if
	// none are recorded.
	Intervals(id int) ([]Interval, error)
}

// OverlapGroup is the slice of overlaps belonging to one A-read, as
// delivered by the overlap stream: grouped by A, and within the group
// sorted by (B, ABpos).
type OverlapGroup struct {
	A        int
	Overlaps []Overlap
}

// GapCandidate is a candidate repair interval: an A-interval to replace
// with a donor B-interval, proposed by either the gap collector or the
// weak-region scanner and subject to reduction before assembly.
type GapCandidate struct {
	AB, AE int
	BB, BE int
	B      int
	Comp   bool
	Diff   float64
	// Support is the count of independent evidence events; -1 marks
	// the candidate withdrawn.
	Support int
	// Span is the count of overlaps that strictly span the candidate
	// with margin.
	Span int
}

// Withdrawn reports whether the candidate has been retired during
// reduction.
func (g *GapCandidate) Withdrawn() bool { return g.Support < 0 }

// Withdraw retires the candidate.
func (g *GapCandidate) Withdraw() { g.Support = -1 }

// PatchSpan is one entry of the patch map: a retained A-span, given in
// source coordinates, and the offset at which it begins in the patched
// output.
type PatchSpan struct {
	SrcB, SrcE, DstB int
}

// Result is the outcome of repairing a single A-read.
type Result struct {
	A int
	// Patched is true when the emitted sequence differs from a plain
	// trim of the A-read (i.e. at least one donor span was inserted).
	Patched bool
	// TrimB, TrimE is the (possibly flip-narrowed) trim window used.
	TrimB, TrimE int
	// Seq is the emitted sequence.
	Seq []byte
	// Quality holds one emitted stream per input quality stream,
	// present only when the caller requested quality propagation.
	Quality [][]byte
	// Map is the patch map; for a trim-only result it has exactly one
	// entry, (TrimB, TrimE, 0).
	Map []PatchSpan
}
