// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package lhash implements a linear-hashing associative container: an
// in-memory map from fixed-width key bytes to fixed-width value bytes
// that grows and shrinks one bucket at a time instead of rehashing the
// whole table on every resize. See SPEC_FULL.md for the full design.
package lhash

import (
	"fmt"

	"github.com/aristanetworks/linearhash/logger"
)

// Table is the top-level container. The zero Table is not usable; build
// one with New.
type Table struct {
	keyWidth   int
	valueWidth int

	m    uint64 // logical capacity M, a power of two
	p    uint64 // split pointer, in [0, m)
	u    int    // entry count U
	mMin uint64 // M_min: minimum capacity, never shrunk below

	bucketTarget int     // B, informational bucket-capacity target
	threshold    float64 // τ, shared split/shrink threshold

	digest DigestFunc
	equal  EqualFunc
	logger logger.Logger

	dir *directory
}

// New constructs an empty Table for keys of keyWidth bytes and values of
// valueWidth bytes. Both widths must be positive. Options override the
// defaults documented on WithMinCapacity, WithBucketTarget, WithThreshold,
// WithDigest, WithEqual, and WithLogger.
func New(keyWidth, valueWidth int, opts ...Option) (*Table, error) {
	if keyWidth <= 0 {
		return nil, fmt.Errorf("%w: key width %d must be positive", ErrInvalidConfig, keyWidth)
	}
	if valueWidth <= 0 {
		return nil, fmt.Errorf("%w: value width %d must be positive", ErrInvalidConfig, valueWidth)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Table{
		keyWidth:     keyWidth,
		valueWidth:   valueWidth,
		m:            cfg.minCapacity,
		p:            0,
		mMin:         cfg.minCapacity,
		bucketTarget: cfg.bucketTarget,
		threshold:    cfg.threshold,
		digest:       cfg.digest,
		equal:        cfg.equal,
		logger:       cfg.logger,
		dir:          newDirectory(int(cfg.minCapacity)),
	}, nil
}

// Len returns U, the number of entries currently stored.
func (t *Table) Len() int {
	return t.u
}

// Cap returns M, the current logical capacity.
func (t *Table) Cap() uint64 {
	return t.m
}

// SplitPointer returns p, the index of the next bucket scheduled to split.
func (t *Table) SplitPointer() uint64 {
	return t.p
}

// DirLen returns L, the current directory length (always M+p).
func (t *Table) DirLen() int {
	return t.dir.len()
}

// KeyWidth and ValueWidth report the fixed widths this Table was built
// with.
func (t *Table) KeyWidth() int   { return t.keyWidth }
func (t *Table) ValueWidth() int { return t.valueWidth }

// addressOf computes getpos(H(key), M, p): the directory index key
// currently lives at (or would be inserted at).
func (t *Table) addressOf(key []byte) uint64 {
	return getpos(t.digest(key), t.m, t.p)
}

// loadFactor computes f = U / (L * B).
func (t *Table) loadFactor() float64 {
	return float64(t.u) / (float64(t.dir.len()) * float64(t.bucketTarget))
}

// bucketAt fetches the bucket at a computed address, logging and
// returning nil if it's somehow out of range (a programming error under
// Table's own invariants; see spec.md §4.7, §7 item 2).
func (t *Table) bucketAt(idx uint64) *bucket {
	b, err := t.dir.get(int(idx))
	if err != nil {
		t.logger.Errorf("lhash: %v (index %d, m=%d p=%d L=%d)", err, idx, t.m, t.p, t.dir.len())
		return nil
	}
	return b
}

// Put stores value under key, replacing any existing value for that key.
// It returns an error only for a width mismatch or (under a broken
// invariant) an out-of-range directory address; a successful overwrite
// and a successful fresh insert are both nil-error outcomes, as spec.md's
// put does not distinguish them to the caller.
func (t *Table) Put(key, value []byte) error {
	if len(key) != t.keyWidth {
		return fmt.Errorf("%w: got %d, want %d", ErrKeyWidthMismatch, len(key), t.keyWidth)
	}
	if len(value) != t.valueWidth {
		return fmt.Errorf("%w: got %d, want %d", ErrValueWidthMismatch, len(value), t.valueWidth)
	}

	idx := t.addressOf(key)
	b := t.bucketAt(idx)
	if b == nil {
		return fmt.Errorf("%w: index %d", ErrIndexOutOfRange, idx)
	}

	inserted := b.insertOrReplace(key, value, t.equal)
	if !inserted {
		return nil
	}
	t.u++
	if t.loadFactor() > t.threshold {
		t.split()
	}
	return nil
}

// Get copies the value stored for key into out and reports true, or
// reports false if key is absent. out must have length ValueWidth(); a
// mismatched width is treated as a diagnostic-logged miss rather than a
// panic, since the caller could not have a genuine hit with the wrong
// buffer size anyway.
func (t *Table) Get(key []byte, out []byte) bool {
	if len(key) != t.keyWidth || len(out) != t.valueWidth {
		t.logger.Errorf("lhash: get called with key len %d, out len %d, want %d/%d",
			len(key), len(out), t.keyWidth, t.valueWidth)
		return false
	}
	ent := t.find(key)
	if ent == nil {
		return false
	}
	copy(out, ent.value)
	return true
}

// Has reports whether key is present, without copying its value.
func (t *Table) Has(key []byte) bool {
	if len(key) != t.keyWidth {
		t.logger.Errorf("lhash: has called with key len %d, want %d", len(key), t.keyWidth)
		return false
	}
	return t.find(key) != nil
}

func (t *Table) find(key []byte) *entry {
	idx := t.addressOf(key)
	b := t.bucketAt(idx)
	if b == nil {
		return nil
	}
	return b.find(key, t.equal)
}

// Delete removes key and reports whether it was present. A successful
// delete may trigger one shrink step.
func (t *Table) Delete(key []byte) bool {
	if len(key) != t.keyWidth {
		t.logger.Errorf("lhash: delete called with key len %d, want %d", len(key), t.keyWidth)
		return false
	}

	idx := t.addressOf(key)
	b := t.bucketAt(idx)
	if b == nil {
		return false
	}
	if !b.remove(key, t.equal) {
		return false
	}
	t.u--
	if (t.m > t.mMin || t.p > 0) && t.loadFactor() <= t.threshold {
		t.shrink()
	}
	return true
}
