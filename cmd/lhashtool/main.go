// Copyright (C) 2016  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The lhashtool command builds a linear-hashing table from a stream of
// "key value" lines and can snapshot it to, or load it from, a file.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aristanetworks/glog"
	"github.com/aristanetworks/linearhash/lhash"
)

var (
	loadFlag = flag.String("load", "",
		"Path to an existing snapshot to load before processing input")
	dumpFlag = flag.String("dump", "",
		"Path to write a snapshot to after processing input")
	minCapacity = flag.Int("min-capacity", 1024,
		"Minimum directory length M_min, must be a power of two")
	bucketTarget = flag.Int("bucket-target", 1,
		"Target entries per bucket B")
	threshold = flag.Float64("threshold", 0.75,
		"Load factor threshold tau in (0, 1)")
)

// keys and values are both 4-byte little-endian encodings of the decimal
// integers on each input line, matching the convention used throughout
// spec.md's worked scenarios.
const wordWidth = 4

func main() {
	flag.Parse()

	opts := []lhash.Option{
		lhash.WithMinCapacity(*minCapacity),
		lhash.WithBucketTarget(*bucketTarget),
		lhash.WithThreshold(*threshold),
	}
	tbl, err := lhash.New(wordWidth, wordWidth, opts...)
	if err != nil {
		glog.Fatal("Failed to create table: ", err)
	}

	if *loadFlag != "" {
		if err := tbl.UnmarshalFile(*loadFlag); err != nil {
			glog.Fatal("Failed to load snapshot ", *loadFlag, ": ", err)
		}
	}

	if err := processLines(tbl, os.Stdin, flag.Args()); err != nil {
		glog.Fatal("Failed to process input: ", err)
	}

	if *dumpFlag != "" {
		if err := tbl.MarshalFile(*dumpFlag); err != nil {
			glog.Fatal("Failed to write snapshot ", *dumpFlag, ": ", err)
		}
	}

	fmt.Printf("entries=%d capacity=%d directory=%d splitPointer=%d\n",
		tbl.Len(), tbl.Cap(), tbl.DirLen(), tbl.SplitPointer())
}

// processLines reads "key value" lines from the named files, or from r if
// no files are given, and Puts each pair into tbl.
func processLines(tbl *lhash.Table, r io.Reader, files []string) error {
	if len(files) == 0 {
		return putLines(tbl, r)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = putLines(tbl, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func putLines(tbl *lhash.Table, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		var k, v int64
		if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &k, &v); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := tbl.Put(encodeWord(k), encodeWord(v)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

func encodeWord(v int64) []byte {
	buf := make([]byte, wordWidth)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}
