// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package readdb implements the on-disk random-access read database:
// read count, per-read length, and blocking load of a read's sequence
// and K parallel quality streams. It is backed by modernc.org/kv,
// following the key/value store usage in
// kortschak-ins's cmd/ins/store.go and cmd/ins/fragment.go — a single
// kv.DB holding fixed binary keys built with encoding/binary, grouped
// by a one-byte record-type tag so plain byte-order comparison keeps
// each record kind contiguous, the same way cmd/ins/store.go supplies
// an explicit Compare function to its kv.Options rather than relying
// on a zero-value default.
package readdb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"modernc.org/kv"
)

const (
	tagSeq  = 'S'
	tagQual = 'Q'
	tagLen  = 'L'
	tagK    = 'K' // single record: the stream count, keyed by an empty id.
)

var order = binary.BigEndian

func seqKey(id int) []byte          { return recordKey(tagSeq, id, 0) }
func lenKey(id int) []byte          { return recordKey(tagLen, id, 0) }
func qualKey(id, stream int) []byte { return recordKey(tagQual, id, stream) }

func recordKey(tag byte, id, sub int) []byte {
	b := make([]byte, 1+4+4)
	b[0] = tag
	order.PutUint32(b[1:5], uint32(id))
	order.PutUint32(b[5:9], uint32(sub))
	return b
}

// DB is a modernc.org/kv-backed implementation of repair.DB.
type DB struct {
	kv   *kv.DB
	n    int
	k    int
	lens map[int]int
}

// Create makes a new, empty read database at path.
func Create(path string) (*DB, error) {
	store, err := kv.Create(path, &kv.Options{Compare: bytes.Compare})
	if err != nil {
		return nil, fmt.Errorf("readdb: create %q: %w", path, err)
	}
	return &DB{kv: store, lens: make(map[int]int)}, nil
}

// Open opens an existing read database at path, scanning its length
// records to recover the read count and per-read lengths the way
// kortschak-ins's fragment.go merge walks a kv.DB with SeekFirst and
// repeated Next.
func Open(path string) (*DB, error) {
	store, err := kv.Open(path, &kv.Options{Compare: bytes.Compare})
	if err != nil {
		return nil, fmt.Errorf("readdb: open %q: %w", path, err)
	}
	d := &DB{kv: store, lens: make(map[int]int)}

	kBytes, err := store.Get(nil, []byte{tagK})
	if err != nil {
		return nil, fmt.Errorf("readdb: reading stream count: %w", err)
	}
	if len(kBytes) == 4 {
		d.k = int(order.Uint32(kBytes))
	}

	it, err := store.SeekFirst()
	if err == io.EOF {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("readdb: scanning: %w", err)
	}
	for {
		key, val, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("readdb: scanning: %w", err)
		}
		if len(key) == 0 || key[0] != tagLen {
			continue
		}
		id := int(order.Uint32(key[1:5]))
		d.lens[id] = int(order.Uint32(val))
		if id+1 > d.n {
			d.n = id + 1
		}
	}
	return d, nil
}

// Close releases the underlying kv.DB.
func (d *DB) Close() error { return d.kv.Close() }

// PutRead stores a read's sequence and quality streams. It must be
// called at most once per id; ids need not be contiguous but NumReads
// reports one past the highest id stored.
func (d *DB) PutRead(id int, seq []byte, qual [][]byte) error {
	if d.k == 0 {
		d.k = len(qual)
		if err := d.kv.Set([]byte{tagK}, marshalUint32(uint32(d.k))); err != nil {
			return fmt.Errorf("readdb: writing stream count: %w", err)
		}
	} else if len(qual) != d.k {
		return fmt.Errorf("readdb: read %d has %d quality streams, want %d", id, len(qual), d.k)
	}

	if err := d.kv.Set(seqKey(id), seq); err != nil {
		return fmt.Errorf("readdb: writing read %d: %w", id, err)
	}
	if err := d.kv.Set(lenKey(id), marshalUint32(uint32(len(seq)))); err != nil {
		return fmt.Errorf("readdb: writing length of read %d: %w", id, err)
	}
	for i, q := range qual {
		if err := d.kv.Set(qualKey(id, i), q); err != nil {
			return fmt.Errorf("readdb: writing quality stream %d of read %d: %w", i, id, err)
		}
	}
	d.lens[id] = len(seq)
	if id+1 > d.n {
		d.n = id + 1
	}
	return nil
}

// NumReads implements repair.DB.
func (d *DB) NumReads() int { return d.n }

// ReadLen implements repair.DB.
func (d *DB) ReadLen(id int) int { return d.lens[id] }

// LoadRead implements repair.DB.
func (d *DB) LoadRead(id int, out []byte, uppercase bool) ([]byte, error) {
	v, err := d.kv.Get(nil, seqKey(id))
	if err != nil {
		return nil, fmt.Errorf("readdb: reading read %d: %w", id, err)
	}
	if v == nil {
		return nil, fmt.Errorf("readdb: no such read %d", id)
	}
	out = append(out[:0], v...)
	if uppercase {
		toUpper(out)
	}
	return out, nil
}

// LoadQuality implements repair.DB.
func (d *DB) LoadQuality(id int, out [][]byte) ([][]byte, error) {
	if out == nil {
		out = make([][]byte, d.k)
	}
	for i := range out {
		v, err := d.kv.Get(nil, qualKey(id, i))
		if err != nil {
			return nil, fmt.Errorf("readdb: reading quality stream %d of read %d: %w", i, id, err)
		}
		out[i] = append(out[i][:0], v...)
	}
	return out, nil
}

func marshalUint32(v uint32) []byte {
	var b [4]byte
	order.PutUint32(b[:], v)
	return b[:]
}

func toUpper(b []byte) {
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
}
