// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

// directory is the growable, indexed sequence of buckets spec.md's §6.1
// names as a required collaborator. A Go slice already is that
// collaborator -- append doubles the underlying array on overflow, and a
// reslice is a constant-time truncate -- so directory is a thin, typed
// wrapper rather than a reimplementation.
type directory struct {
	buckets []*bucket
}

func newDirectory(n int) *directory {
	d := &directory{buckets: make([]*bucket, n)}
	for i := range d.buckets {
		d.buckets[i] = newBucket()
	}
	return d
}

// len returns the directory's current length L.
func (d *directory) len() int {
	return len(d.buckets)
}

// get returns the bucket at index i. The caller must keep i in range;
// Table never calls get with an out-of-range index under its own
// invariants, so this is a programming-error check rather than part of
// the operation contract (spec.md §4.7, §7 item 2).
func (d *directory) get(i int) (*bucket, error) {
	if i < 0 || i >= len(d.buckets) {
		return nil, ErrIndexOutOfRange
	}
	return d.buckets[i], nil
}

// append adds b to the tail of the directory and returns the new length.
func (d *directory) append(b *bucket) int {
	d.buckets = append(d.buckets, b)
	return len(d.buckets)
}

// truncate shortens the directory to newLen, which must be strictly less
// than the current length. The caller is responsible for having already
// drained any buckets in the truncated tail (split.go's shrink step does
// this before calling truncate).
func (d *directory) truncate(newLen int) error {
	if newLen >= len(d.buckets) {
		return ErrShrinkNotShorter
	}
	d.buckets = d.buckets[:newLen]
	return nil
}
