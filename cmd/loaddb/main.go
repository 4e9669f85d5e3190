// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// loaddb streams a FASTA file, and optionally a matching per-read
// quality file, into an internal/readdb store. Reads are assigned ids
// in the order they appear in the FASTA file, the same order dustmask
// numbers reads when scanning the same file.
//
// The quality file, when given, has one line per read: the read id,
// a tab, then one comma-separated list of small integers per quality
// stream, each list tab-separated. A read with no corresponding line
// gets a single all-zero ("unknown") quality stream.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/kortschak/fixreads/internal/readdb"
)

var (
	in   = flag.String("in", "", "input FASTA file (required)")
	qual = flag.String("qual", "", "optional per-read quality file")
	db   = flag.String("db", "", "output read database path (required)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s -in <reads.fa> -db <reads.db> [-qual <reads.qual>]

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *in == "" || *db == "" {
		flag.Usage()
		os.Exit(1)
	}

	quals, err := loadQualFile(*qual)
	if err != nil {
		log.Fatalf("failed to read quality file: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("failed to open %q: %v", *in, err)
	}
	defer f.Close()

	store, err := readdb.Create(*db)
	if err != nil {
		log.Fatalf("failed to create read database: %v", err)
	}
	defer store.Close()

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	var id int
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		bases := make([]byte, s.Len())
		for i, l := range s.Seq {
			bases[i] = byte(l)
		}

		streams, ok := quals[id]
		if !ok {
			streams = [][]byte{make([]byte, len(bases))}
		}
		if err := store.PutRead(id, bases, streams); err != nil {
			log.Fatalf("failed writing read %d (%s): %v", id, s.Name(), err)
		}
		id++
	}
	if err := sc.Error(); err != nil {
		log.Fatalf("error during fasta read: %v", err)
	}

	log.Printf("loaded %d reads", id)
}

func loadQualFile(path string) (map[int][][]byte, error) {
	out := make(map[int][][]byte)
	if path == "" {
		return out, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<24)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("loaddb: malformed quality line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("loaddb: invalid read id %q: %w", fields[0], err)
		}
		streams := make([][]byte, len(fields)-1)
		for i, f := range fields[1:] {
			vals := strings.Split(f, ",")
			stream := make([]byte, len(vals))
			for j, v := range vals {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("loaddb: invalid quality value %q: %w", v, err)
				}
				stream[j] = byte(n)
			}
			streams[i] = stream
		}
		out[id] = streams
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
