// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// fixreads replaces low-quality segments and inter-overlap gaps in long
// reads with higher-quality donor sequence drawn from overlapping
// reads, trims reads bearing evidence of a chimeric inversion, and
// remaps any requested annotation tracks into patched coordinates.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kortschak/fixreads/internal/ovlstore"
	"github.com/kortschak/fixreads/internal/readdb"
	"github.com/kortschak/fixreads/internal/repair"
	"github.com/kortschak/fixreads/internal/track"
	"github.com/kortschak/fixreads/internal/writer"
)

var (
	minLen  = flag.Int("x", 1000, "minimum length for an emitted sequence")
	lowQ    = flag.Int("Q", 28, "segment low-quality threshold; a segment quality q is \"bad\" when q == 0 or q >= Q")
	maxGap  = flag.Int("g", 500, "maximum A- or donor-length of a patchable gap")
	qualOut = flag.String("q", "", "if set, write parallel quality streams to this path")
	trimTrk = flag.String("t", "", "trim track file (tab-separated id, b0,e0,b1,e1,...)")

	// qtrack and dust name the two tracks that must always be present
	// (the quality track and the dust mask track); fixreads adds these
	// two flags rather than inventing a convention for locating them
	// relative to the database path.
	qTrack   = flag.String("qtrack", "", "per-segment quality track file (required)")
	dustTrk  = flag.String("dust", "", "masking interval track file (required)")
	// w is the segment width every quality and trace value must be
	// aligned to; fixreads adds a flag for it rather than hard-coding
	// a width.
	segWidth = flag.Int("w", 500, "segment width W that quality and trace data are aligned to")

	errFile = flag.String("err", "", "diagnostic output file (default stderr)")
	verbose = flag.Bool("v", false, "log per-read progress")

	userTracks userTrackFlag
)

func init() {
	flag.Var(&userTracks, "c", "append a user track to remap, as name=path; may repeat")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s [options] <db> <overlaps> <out.fasta>

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}
	if *qTrack == "" || *dustTrk == "" {
		fmt.Fprintln(os.Stderr, "invalid argument: -qtrack and -dust are required")
		flag.Usage()
		os.Exit(1)
	}
	dbPath, ovlPath, outPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	if *errFile != "" {
		f, err := os.Create(*errFile)
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	db, err := readdb.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open read database: %v", err)
	}
	defer db.Close()

	qtr, err := loadQualityTrackFile(*qTrack)
	if err != nil {
		log.Fatalf("failed to load quality track: %v", err)
	}
	dust, err := loadIntervalTrackFile(*dustTrk)
	if err != nil {
		log.Fatalf("failed to load dust track: %v", err)
	}
	var trim *track.IntervalTrack
	if *trimTrk != "" {
		trim, err = loadIntervalTrackFile(*trimTrk)
		if err != nil {
			log.Fatalf("failed to load trim track: %v", err)
		}
	}
	userTrks, err := userTracks.load()
	if err != nil {
		log.Fatalf("failed to load user track: %v", err)
	}

	ovlFile, err := os.Open(ovlPath)
	if err != nil {
		log.Fatalf("failed to open overlap file: %v", err)
	}
	defer ovlFile.Close()
	ovlReader, err := ovlstore.NewReader(ovlFile, 0)
	if err != nil {
		log.Fatalf("failed to open overlap stream: %v", err)
	}
	defer ovlReader.Close()

	outFile, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("failed to create output FASTA: %v", err)
	}
	defer outFile.Close()
	fw := writer.NewFASTAWriter(outFile)

	var qw *writer.QualityWriter
	if *qualOut != "" {
		qFile, err := os.Create(*qualOut)
		if err != nil {
			log.Fatalf("failed to create quality output: %v", err)
		}
		defer qFile.Close()
		qw = writer.NewQualityWriter(qFile)
	}

	cfg := repair.Config{W: *segWidth, MinLen: *minLen, LowQ: *lowQ, MaxGap: *maxGap}
	donor := repair.NewDonor(db, dust, qtr)
	cursor := &overlapCursor{r: ovlReader, pending: make(map[int]repair.OverlapGroup)}

	n := db.NumReads()
	var processed, patched, trimmed, dropped int
	for a := 0; a < n; a++ {
		if *verbose {
			log.Printf("repairing read %d of %d", a, n)
		}
		res, err := repairOne(cfg, a, db, qtr, trim, donor, cursor, userTrks, qw != nil)
		processed++
		if err == repair.ErrSkip {
			dropped++
			continue
		}
		if err != nil {
			log.Fatalf("failed repairing read %d: %v", a, err)
		}
		if res.Patched {
			patched++
		} else {
			trimmed++
		}

		tracks, err := remapUserTracks(userTrks, res)
		if err != nil {
			log.Fatalf("failed remapping user tracks for read %d: %v", a, err)
		}
		if err := fw.WriteResult(res, tracks); err != nil {
			log.Fatalf("failed writing read %d: %v", a, err)
		}
		if qw != nil {
			if err := qw.WriteResult(res); err != nil {
				log.Fatalf("failed writing quality for read %d: %v", a, err)
			}
		}
	}

	log.Printf("processed %d reads: %d patched, %d trimmed, %d dropped", processed, patched, trimmed, dropped)
}

// overlapCursor walks an A-ordered overlap stream in step with the
// caller's own A-ordered iteration over read ids, buffering groups for
// ids the caller has not yet reached. An A-read absent from the stream
// simply yields no overlaps.
type overlapCursor struct {
	r         *ovlstore.Reader
	pending   map[int]repair.OverlapGroup
	exhausted bool
}

func (c *overlapCursor) overlapsFor(a int) ([]repair.Overlap, error) {
	if g, ok := c.pending[a]; ok {
		delete(c.pending, a)
		return g.Overlaps, nil
	}
	for !c.exhausted {
		g, err := c.r.Next()
		if err != nil {
			c.exhausted = true
			break
		}
		if g.A == a {
			return g.Overlaps, nil
		}
		c.pending[g.A] = g
	}
	return nil, nil
}

func repairOne(cfg repair.Config, a int, db *readdb.DB, qtr *track.QualityTrack, trim *track.IntervalTrack, donor repair.Donor, cursor *overlapCursor, userTrks []namedUserTrack, wantQuality bool) (*repair.Result, error) {
	ovls, err := cursor.overlapsFor(a)
	if err != nil {
		return nil, fmt.Errorf("fixreads: reading overlaps for read %d: %w", a, err)
	}

	l := db.ReadLen(a)
	seq, err := db.LoadRead(a, nil, true)
	if err != nil {
		return nil, fmt.Errorf("fixreads: loading read %d: %w", a, err)
	}
	aRead := repair.Read{ID: a, Len: l, Seq: seq}

	aQ, err := qtr.Segments(a)
	if err != nil {
		return nil, fmt.Errorf("fixreads: loading quality track for read %d: %w", a, err)
	}

	tb, te := 0, l
	if trim != nil {
		if iv, ok := trim.First(a); ok {
			tb, te = iv.B, iv.E
		} else {
			tb, te = 0, 0
		}
	}

	var aStreams [][]byte
	if wantQuality {
		aStreams, err = db.LoadQuality(a, nil)
		if err != nil {
			return nil, fmt.Errorf("fixreads: loading quality streams for read %d: %w", a, err)
		}
	}

	return repair.Repair(cfg, aRead, aStreams, ovls, aQ, repair.Interval{B: tb, E: te}, db, donor)
}

func remapUserTracks(trks []namedUserTrack, res *repair.Result) ([]writer.Track, error) {
	out := make([]writer.Track, 0, len(trks))
	for _, t := range trks {
		ivs, err := t.track.Intervals(res.A)
		if err != nil {
			return nil, err
		}
		remapped, err := repair.RemapTrack(res.Map, ivs, len(res.Seq))
		if err != nil {
			return nil, fmt.Errorf("fixreads: remapping track %q for read %d: %w", t.name, res.A, err)
		}
		out = append(out, writer.Track{Name: t.name, Intervals: remapped})
	}
	return out, nil
}

type namedUserTrack struct {
	name  string
	track *track.IntervalTrack
}

func loadIntervalTrackFile(path string) (*track.IntervalTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return track.LoadIntervalTrack(f)
}

func loadQualityTrackFile(path string) (*track.QualityTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return track.LoadQualityTrack(f)
}

// userTrackFlag is a repeatable name=path flag value, modeled on
// sliceValue in cmd/ins/main.go.
type userTrackFlag []string

func (u *userTrackFlag) Set(v string) error {
	*u = append(*u, v)
	return nil
}

func (u *userTrackFlag) String() string { return fmt.Sprintf("%q", []string(*u)) }

func (u userTrackFlag) load() ([]namedUserTrack, error) {
	out := make([]namedUserTrack, 0, len(u))
	for _, spec := range u {
		name, path, ok := splitNamePath(spec)
		if !ok {
			return nil, fmt.Errorf("fixreads: invalid -c value %q, want name=path", spec)
		}
		trk, err := loadIntervalTrackFile(path)
		if err != nil {
			return nil, fmt.Errorf("fixreads: loading user track %q: %w", name, err)
		}
		out = append(out, namedUserTrack{name: name, track: trk})
	}
	return out, nil
}

func splitNamePath(spec string) (name, path string, ok bool) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '=' {
			return spec[:i], spec[i+1:], true
		}
	}
	return "", "", false
}
