// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package writer implements the final FASTA/quality writer stage of
// the repair pipeline, grounded on the `%60a` fmt verb usage over a
// github.com/biogo/biogo/seq/linear.Seq that bundle.go (loopy's FASTA
// splitter) relies on for fixed-width FASTA output.
package writer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"

	"github.com/kortschak/fixreads/internal/repair"
)

// Track is one named, already-remapped annotation track to include in
// a record's header field.
type Track struct {
	Name      string
	Intervals []repair.Interval
}

// FASTAWriter appends fixed/trimmed records to a FASTA stream.
type FASTAWriter struct {
	w io.Writer
}

// NewFASTAWriter returns a FASTAWriter over w.
func NewFASTAWriter(w io.Writer) *FASTAWriter { return &FASTAWriter{w: w} }

// WriteResult writes one record for res, named "fixed_<A>" when
// res.Patched and "trimmed_<A>" otherwise, with the non-empty tracks
// appended to the header sorted by name.
func (fw *FASTAWriter) WriteResult(res *repair.Result, tracks []Track) error {
	kind := "trimmed"
	if res.Patched {
		kind = "fixed"
	}
	id := fmt.Sprintf("%s_%d %s", kind, res.A, sourceField(res.A, tracks))

	seq := linear.NewSeq(id, lettersOf(res.Seq), alphabet.DNA)
	if _, err := fmt.Fprintf(fw.w, "%60a\n", seq); err != nil {
		return fmt.Errorf("writer: writing record for read %d: %w", res.A, err)
	}
	return nil
}

func sourceField(a int, tracks []Track) string {
	var b strings.Builder
	fmt.Fprintf(&b, "source=%d", a)
	names := make([]string, 0, len(tracks))
	for _, t := range tracks {
		names = append(names, t.Name)
	}
	sort.Strings(names) // deterministic header field order.
	byName := make(map[string]Track, len(tracks))
	for _, t := range tracks {
		byName[t.Name] = t
	}
	for _, name := range names {
		t := byName[name]
		if len(t.Intervals) == 0 {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(t.Name)
		b.WriteByte('=')
		for i, iv := range t.Intervals {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d,%d", iv.B, iv.E)
		}
	}
	return b.String()
}

func lettersOf(seq []byte) []alphabet.Letter {
	out := make([]alphabet.Letter, len(seq))
	for i, c := range seq {
		out[i] = alphabet.Letter(c)
	}
	return out
}

// QualityWriter appends parallel quality-stream records to the
// optional -q output, one record per repaired read.
type QualityWriter struct {
	w io.Writer
}

// NewQualityWriter returns a QualityWriter over w.
func NewQualityWriter(w io.Writer) *QualityWriter { return &QualityWriter{w: w} }

// WriteResult writes res's quality streams. It is a no-op if res.Quality
// is nil (quality propagation was not requested for this run).
func (qw *QualityWriter) WriteResult(res *repair.Result) error {
	if res.Quality == nil {
		return nil
	}
	if _, err := fmt.Fprintf(qw.w, "@fixed/0_%d source=%d\n", len(res.Seq), res.A); err != nil {
		return fmt.Errorf("writer: writing quality header for read %d: %w", res.A, err)
	}
	for i, stream := range res.Quality {
		if len(stream) != len(res.Seq) {
			return fmt.Errorf("writer: quality stream %d of read %d has length %d, want %d", i, res.A, len(stream), len(res.Seq))
		}
		if _, err := qw.w.Write(stream); err != nil {
			return fmt.Errorf("writer: writing quality stream %d of read %d: %w", i, res.A, err)
		}
		if _, err := io.WriteString(qw.w, "\n"); err != nil {
			return fmt.Errorf("writer: writing quality stream %d of read %d: %w", i, res.A, err)
		}
	}
	return nil
}
