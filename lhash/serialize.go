// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Marshal writes the table's metadata and every entry to w, in the format
// spec.md §4.6 describes:
//
//	header:  B (uint64) | τ (float32) | K (uint64) | V (uint64)
//	body:    repeated { key_bytes[K] | value_bytes[V] } until EOF
//
// M, p, U, and the bucket-to-index mapping are deliberately not written;
// Unmarshal rebuilds them by replaying entries through Put, which
// regenerates the same structural shape from a deterministic Digest and
// Equal. Iteration order within the body is the directory's bucket order,
// which is not part of this format's contract and must not be relied on.
func (t *Table) Marshal(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(t.bucketTarget)); err != nil {
		return fmt.Errorf("lhash: writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, float32(t.threshold)); err != nil {
		return fmt.Errorf("lhash: writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(t.keyWidth)); err != nil {
		return fmt.Errorf("lhash: writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(t.valueWidth)); err != nil {
		return fmt.Errorf("lhash: writing header: %w", err)
	}

	for i := 0; i < t.dir.len(); i++ {
		b, err := t.dir.get(i)
		if err != nil {
			return err
		}
		var writeErr error
		b.each(func(e *entry) {
			if writeErr != nil {
				return
			}
			if _, err := w.Write(e.key); err != nil {
				writeErr = fmt.Errorf("lhash: writing entry: %w", err)
				return
			}
			if _, err := w.Write(e.value); err != nil {
				writeErr = fmt.Errorf("lhash: writing entry: %w", err)
			}
		})
		if writeErr != nil {
			return writeErr
		}
	}
	return nil
}

// Unmarshal resets this already-constructed Table (capacity back to
// M_min, split pointer to 0, every stored entry discarded) and replays
// entries read from r through Put, reconstructing the exact structural
// shape of whatever table produced r, provided Digest and Equal match
// what was used to write it -- the format has no way to detect a
// mismatch, which spec.md treats as caller responsibility (see
// SPEC_FULL.md's resolved Open Questions).
//
// The header's B and τ are applied to this Table; its K and V must match
// this Table's configured KeyWidth/ValueWidth, since those determine how
// every entry in the body is framed.
func (t *Table) Unmarshal(r io.Reader) error {
	var bucketTarget uint64
	var threshold float32
	var keyWidth, valueWidth uint64

	if err := binary.Read(r, binary.LittleEndian, &bucketTarget); err != nil {
		return fmt.Errorf("lhash: reading header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &threshold); err != nil {
		return fmt.Errorf("lhash: reading header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &keyWidth); err != nil {
		return fmt.Errorf("lhash: reading header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &valueWidth); err != nil {
		return fmt.Errorf("lhash: reading header: %w", err)
	}
	if int(keyWidth) != t.keyWidth {
		return fmt.Errorf("%w: stream has %d, table has %d", ErrKeyWidthMismatch, keyWidth, t.keyWidth)
	}
	if int(valueWidth) != t.valueWidth {
		return fmt.Errorf("%w: stream has %d, table has %d", ErrValueWidthMismatch, valueWidth, t.valueWidth)
	}

	t.bucketTarget = int(bucketTarget)
	t.threshold = float64(threshold)
	t.m = t.mMin
	t.p = 0
	t.u = 0
	t.dir = newDirectory(int(t.mMin))

	for {
		key := make([]byte, t.keyWidth)
		n, err := io.ReadFull(r, key)
		if err != nil {
			if err == io.EOF && n == 0 {
				break
			}
			return fmt.Errorf("%w: %v", ErrShortRead, err)
		}

		value := make([]byte, t.valueWidth)
		if _, err := io.ReadFull(r, value); err != nil {
			return fmt.Errorf("%w: %v", ErrShortRead, err)
		}

		if err := t.Put(key, value); err != nil {
			return fmt.Errorf("lhash: replaying entry: %w", err)
		}
	}
	t.logger.Infof("lhash: unmarshal complete, %d entries, m=%d p=%d", t.u, t.m, t.p)
	return nil
}

// MarshalFile is a convenience wrapper around Marshal that writes to a
// newly created file at path, matching original_source/src/benchmap.c's
// file-based harness layered over the stream-oriented map_dump/map_load
// primitives.
func (t *Table) MarshalFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lhash: marshal: %w", err)
	}
	if err := t.Marshal(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// UnmarshalFile is a convenience wrapper around Unmarshal that reads from
// an existing file at path.
func (t *Table) UnmarshalFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("lhash: unmarshal: %w", err)
	}
	defer f.Close()
	return t.Unmarshal(f)
}
