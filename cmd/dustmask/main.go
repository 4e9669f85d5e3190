// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dustmask scans a FASTA file for low-complexity sub-read segments and
// emits them as a mask track file in the format internal/track reads:
// one line per read, "id\tb0,e0,b1,e1,...". Reads are numbered in the
// order they appear, matching the read ids internal/readdb assigns
// when loaddb loads the same FASTA file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/complexity"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

var (
	in     = flag.String("in", "", "input FASTA file (required)")
	out    = flag.String("out", "", "output mask track file (required)")
	width  = flag.Int("w", 500, "segment width scanned for low complexity")
	thresh = flag.Float64("thresh", 6, "minimum complexity; segments scoring below this are masked")
	typ    = flag.Int("type", 0, "complexity function (0 - WF, 1 - entropic, 2 - Z)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s -in <reads.fa> -out <dust.track>

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *in == "" || *out == "" || *typ < 0 || 2 < *typ {
		flag.Usage()
		os.Exit(1)
	}

	cfn := []func(s seq.Sequence, start, end int) (float64, error){
		0: complexity.WF,
		1: complexity.Entropic,
		2: complexity.Z,
	}[*typ]

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("failed to open %q: %v", *in, err)
	}
	defer f.Close()

	outFile, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create %q: %v", *out, err)
	}
	defer outFile.Close()
	bw := bufio.NewWriter(outFile)
	defer bw.Flush()

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNAgapped)))
	var id int
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		ivs, err := maskIntervals(s, cfn, *width, *thresh)
		if err != nil {
			log.Fatalf("failed scanning read %d (%s): %v", id, s.Name(), err)
		}
		if len(ivs) > 0 {
			writeIntervalLine(bw, id, ivs)
		}
		id++
	}
	if err := sc.Error(); err != nil {
		log.Fatalf("error during fasta read: %v", err)
	}

	log.Printf("scanned %d reads", id)
}

type interval struct{ b, e int }

// maskIntervals scans s in non-overlapping width-wide segments and
// merges adjacent segments scoring below thresh into half-open
// intervals: the dust track records per-read masking intervals, not a
// whole-read verdict.
func maskIntervals(s *linear.Seq, cfn func(seq.Sequence, int, int) (float64, error), width int, thresh float64) ([]interval, error) {
	var out []interval
	var cur *interval
	l := s.Len()
	for b := 0; b < l; b += width {
		e := b + width
		if e > l {
			e = l
		}
		c, err := cfn(s, b, e)
		if err != nil {
			return nil, err
		}
		if c < thresh {
			if cur != nil && cur.e == b {
				cur.e = e
			} else {
				if cur != nil {
					out = append(out, *cur)
				}
				cur = &interval{b: b, e: e}
			}
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out, nil
}

func writeIntervalLine(w *bufio.Writer, id int, ivs []interval) {
	fmt.Fprintf(w, "%d\t", id)
	for i, iv := range ivs {
		if i > 0 {
			w.WriteByte(',')
		}
		fmt.Fprintf(w, "%d,%d", iv.b, iv.e)
	}
	w.WriteByte('\n')
}
