// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ovlstore implements the streaming overlap store: a reader
// that yields, for each A-read, the contiguous slice of overlaps
// already grouped by A-read and, within a group, sorted by B-read then
// A-start. Records are framed as fixed binary structures and the
// stream is block-compressed with github.com/biogo/hts/bgzf, the same
// compression loopy and ins already depend on for their BAM traffic.
package ovlstore

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/biogo/hts/bgzf"

	"github.com/kortschak/fixreads/internal/repair"
)

var order = binary.BigEndian

// Writer appends overlap records to a bgzf-compressed stream. Records
// must be written already grouped by A-read and, within a group,
// sorted by B-read then A-start, the delivery order Reader.Next relies
// on to group records back into per-A-read batches.
type Writer struct {
	bw *bgzf.Writer
}

// NewWriter returns a Writer using wc compression goroutines (0 means
// GOMAXPROCS, following github.com/biogo/hts/bgzf.NewWriter).
func NewWriter(w io.Writer, wc int) *Writer {
	return &Writer{bw: bgzf.NewWriter(w, wc)}
}

// Close flushes and closes the underlying bgzf stream.
func (w *Writer) Close() error { return w.bw.Close() }

// WriteOverlap appends one overlap record.
func (w *Writer) WriteOverlap(o repair.Overlap) error {
	buf := marshalOverlap(o)
	var lenBuf [4]byte
	order.PutUint32(lenBuf[:], uint32(len(buf)))
	if _, err := w.bw.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("ovlstore: writing record length: %w", err)
	}
	if _, err := w.bw.Write(buf); err != nil {
		return fmt.Errorf("ovlstore: writing record: %w", err)
	}
	return nil
}

// Reader reads overlap records from a bgzf-compressed stream and
// groups them by A-read.
type Reader struct {
	br      *bgzf.Reader
	pending *repair.Overlap // one record of lookahead, read but not yet grouped.
	done    bool
}

// NewReader returns a Reader using rd decompression goroutines (0
// means GOMAXPROCS, following github.com/biogo/hts/bgzf.NewReader).
func NewReader(r io.Reader, rd int) (*Reader, error) {
	br, err := bgzf.NewReader(r, rd)
	if err != nil {
		return nil, fmt.Errorf("ovlstore: opening stream: %w", err)
	}
	return &Reader{br: br}, nil
}

// Close releases the underlying bgzf stream.
func (r *Reader) Close() error { return r.br.Close() }

// Next returns the next A-read's group of overlaps, or io.EOF when the
// stream is exhausted.
func (r *Reader) Next() (repair.OverlapGroup, error) {
	if r.pending == nil {
		o, err := r.readOne()
		if err != nil {
			return repair.OverlapGroup{}, err
		}
		r.pending = &o
	}

	group := repair.OverlapGroup{A: r.pending.A, Overlaps: []repair.Overlap{*r.pending}}
	r.pending = nil
	for {
		o, err := r.readOne()
		if err == io.EOF {
			return group, nil
		}
		if err != nil {
			return repair.OverlapGroup{}, err
		}
		if o.A != group.A {
			r.pending = &o
			return group, nil
		}
		group.Overlaps = append(group.Overlaps, o)
	}
}

func (r *Reader) readOne() (repair.Overlap, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.br, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return repair.Overlap{}, fmt.Errorf("ovlstore: truncated record length")
		}
		return repair.Overlap{}, err
	}
	n := order.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return repair.Overlap{}, fmt.Errorf("ovlstore: truncated record: %w", err)
	}
	return unmarshalOverlap(buf)
}

const fixedFields = 4 + 4 + 1 + 4 + 4 + 4 + 4 + 4 // A,B,Strand,ABpos,AEpos,BBpos,BEpos,traceN

func marshalOverlap(o repair.Overlap) []byte {
	buf := make([]byte, fixedFields+8*len(o.Trace))
	order.PutUint32(buf[0:4], uint32(o.A))
	order.PutUint32(buf[4:8], uint32(o.B))
	if o.Strand == repair.Complement {
		buf[8] = 1
	}
	order.PutUint32(buf[9:13], uint32(o.ABpos))
	order.PutUint32(buf[13:17], uint32(o.AEpos))
	order.PutUint32(buf[17:21], uint32(o.BBpos))
	order.PutUint32(buf[21:25], uint32(o.BEpos))
	order.PutUint32(buf[25:29], uint32(len(o.Trace)))
	off := fixedFields
	for _, tp := range o.Trace {
		order.PutUint32(buf[off:off+4], uint32(tp.Diff))
		order.PutUint32(buf[off+4:off+8], uint32(tp.BLen))
		off += 8
	}
	return buf
}

func unmarshalOverlap(buf []byte) (repair.Overlap, error) {
	if len(buf) < fixedFields {
		return repair.Overlap{}, fmt.Errorf("ovlstore: short record (%d bytes)", len(buf))
	}
	o := repair.Overlap{
		A:      int(order.Uint32(buf[0:4])),
		B:      int(order.Uint32(buf[4:8])),
		Strand: repair.Strand(buf[8] != 0),
		ABpos:  int(order.Uint32(buf[9:13])),
		AEpos:  int(order.Uint32(buf[13:17])),
		BBpos:  int(order.Uint32(buf[17:21])),
		BEpos:  int(order.Uint32(buf[21:25])),
	}
	n := int(order.Uint32(buf[25:29]))
	want := fixedFields + 8*n
	if len(buf) != want {
		return repair.Overlap{}, fmt.Errorf("ovlstore: record declares %d trace points but has %d bytes, want %d", n, len(buf), want)
	}
	if n == 0 {
		return o, nil
	}
	o.Trace = make([]repair.TracePoint, n)
	off := fixedFields
	for i := range o.Trace {
		o.Trace[i] = repair.TracePoint{
			Diff: int(order.Uint32(buf[off : off+4])),
			BLen: int(order.Uint32(buf[off+4 : off+8])),
		}
		off += 8
	}
	return o, nil
}
