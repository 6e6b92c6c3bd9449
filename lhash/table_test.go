// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/aristanetworks/linearhash/test"
)

// encodeInt32 matches spec.md §8's scenario convention H(k) = (u64)*(i32*)k
// and C = byte compare: both key and value are the 4-byte native encoding
// of an int32.
func encodeInt32(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

func decodeInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// int32Digest reproduces H(k) = (uint64)*(int32*)k: decode the 4 key
// bytes as a (sign-extended) int32, then widen to uint64.
func int32Digest(key []byte) uint64 {
	return uint64(int64(decodeInt32(key)))
}

func newScenarioTable(t *testing.T, mMin int) *Table {
	t.Helper()
	tbl, err := New(4, 4,
		WithMinCapacity(mMin),
		WithBucketTarget(1),
		WithThreshold(0.75),
		WithDigest(int32Digest),
		WithEqual(bytes.Equal),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

// checkInvariants verifies P1 (addressing closure) and P2 (length
// identity) against a Table's current state.
func checkInvariants(t *testing.T, tbl *Table) {
	t.Helper()
	if got, want := tbl.dir.len(), int(tbl.m+tbl.p); got != want {
		t.Fatalf("P2 violated: L=%d, M+p=%d (M=%d p=%d)", got, want, tbl.m, tbl.p)
	}
	seen := 0
	for i := 0; i < tbl.dir.len(); i++ {
		b, err := tbl.dir.get(i)
		if err != nil {
			t.Fatalf("dir.get(%d): %v", i, err)
		}
		b.each(func(e *entry) {
			seen++
			idx := getpos(tbl.digest(e.key), tbl.m, tbl.p)
			if int(idx) != i {
				t.Fatalf("P1 violated: key %v stored at index %d, getpos computes %d", e.key, i, idx)
			}
		})
	}
	if seen != tbl.u {
		t.Fatalf("U=%d but directory actually holds %d entries", tbl.u, seen)
	}
}

func TestPropertyAddressingClosureAndLengthIdentity(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 4000; i++ {
		k := encodeInt32(rng.Int31())
		if err := tbl.Put(k, k); err != nil {
			t.Fatalf("Put: %v", err)
		}
		checkInvariants(t, tbl)
	}
	for i := 0; i < 4000; i++ {
		k := encodeInt32(rng.Int31())
		tbl.Delete(k)
		checkInvariants(t, tbl)
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	want := map[int32]int32{}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 2000; i++ {
		kk := rng.Int31()
		want[kk] = kk
		if err := tbl.Put(encodeInt32(kk), encodeInt32(kk)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	out := make([]byte, 4)
	for k, v := range want {
		if !tbl.Get(encodeInt32(k), out) {
			t.Fatalf("Get(%d) = not found, want %d", k, v)
		}
		if decodeInt32(out) != v {
			t.Fatalf("Get(%d) = %d, want %d", k, decodeInt32(out), v)
		}
	}
}

func TestPropertyLastWriteWins(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	k := encodeInt32(5)

	if err := tbl.Put(k, encodeInt32(100)); err != nil {
		t.Fatalf("Put v1: %v", err)
	}
	before := tbl.Len()
	if err := tbl.Put(k, encodeInt32(200)); err != nil {
		t.Fatalf("Put v2: %v", err)
	}
	if tbl.Len() != before {
		t.Fatalf("Len() changed on overwrite: before=%d after=%d", before, tbl.Len())
	}

	out := make([]byte, 4)
	if !tbl.Get(k, out) {
		t.Fatalf("Get after overwrite = not found")
	}
	if d := test.Diff(decodeInt32(out), int32(200)); d != "" {
		t.Fatalf("value diff: %s", d)
	}
}

func TestPropertyDeleteCorrectness(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	k := encodeInt32(42)
	if err := tbl.Put(k, k); err != nil {
		t.Fatalf("Put: %v", err)
	}
	before := tbl.Len()
	if !tbl.Delete(k) {
		t.Fatalf("Delete = false, want true")
	}
	if tbl.Has(k) {
		t.Fatalf("Has after Delete = true, want false")
	}
	if tbl.Len() != before-1 {
		t.Fatalf("Len() after Delete = %d, want %d", tbl.Len(), before-1)
	}
}

// ceilPow2AtLeast returns the smallest power of two >= x.
func ceilPow2AtLeast(x float64) uint64 {
	if x <= 1 {
		return 1
	}
	return uint64(1) << uint(math.Ceil(math.Log2(x)))
}

func TestPropertyBoundedGrowth(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	rng := rand.New(rand.NewSource(3))
	inserted := map[int32]bool{}
	for i := 0; i < 5000; i++ {
		k := rng.Int31()
		if err := tbl.Put(encodeInt32(k), encodeInt32(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		inserted[k] = true
		bound := ceilPow2AtLeast(float64(len(inserted)) / tbl.threshold)
		if bound < tbl.mMin {
			bound = tbl.mMin
		}
		if tbl.Cap() > bound {
			t.Fatalf("M=%d exceeds bound %d after %d distinct inserts", tbl.Cap(), bound, len(inserted))
		}
	}
}

func TestPropertyShrinkTermination(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	rng := rand.New(rand.NewSource(4))
	keys := map[int32]bool{}
	for i := 0; i < 3000; i++ {
		k := rng.Int31()
		keys[k] = true
		if err := tbl.Put(encodeInt32(k), encodeInt32(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	for k := range keys {
		if !tbl.Delete(encodeInt32(k)) {
			t.Fatalf("Delete(%d) = false, want true", k)
		}
	}
	if tbl.Cap() != tbl.mMin {
		t.Fatalf("M = %d after full teardown, want M_min = %d", tbl.Cap(), tbl.mMin)
	}
	if tbl.SplitPointer() != 0 {
		t.Fatalf("p = %d after full teardown, want 0", tbl.SplitPointer())
	}
	if tbl.Len() != 0 {
		t.Fatalf("U = %d after full teardown, want 0", tbl.Len())
	}
}

// TestScenarioSmallAscending is spec.md §8 scenario 1.
func TestScenarioSmallAscending(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	for i := int32(31); i <= 80; i++ {
		if err := tbl.Put(encodeInt32(i), encodeInt32(i)); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	out := make([]byte, 4)
	for i := int32(31); i <= 80; i++ {
		if !tbl.Get(encodeInt32(i), out) || decodeInt32(out) != i {
			t.Fatalf("Get(%d) failed to round-trip", i)
		}
	}
	if tbl.Has(encodeInt32(30)) {
		t.Fatalf("Has(30) = true, want false")
	}
	if tbl.Has(encodeInt32(81)) {
		t.Fatalf("Has(81) = true, want false")
	}
}

// TestScenarioPartialDelete is spec.md §8 scenario 2, continuing scenario 1.
func TestScenarioPartialDelete(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	for i := int32(31); i <= 80; i++ {
		if err := tbl.Put(encodeInt32(i), encodeInt32(i)); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	for i := int32(31); i <= 39; i++ {
		if !tbl.Delete(encodeInt32(i)) {
			t.Fatalf("Delete(%d) = false, want true", i)
		}
	}
	if tbl.Has(encodeInt32(38)) {
		t.Fatalf("Has(38) = true, want false")
	}
	out := make([]byte, 4)
	if !tbl.Get(encodeInt32(40), out) || decodeInt32(out) != 40 {
		t.Fatalf("Get(40) failed to round-trip")
	}
	if tbl.Len() != 41 {
		t.Fatalf("U = %d, want 41", tbl.Len())
	}
}

// TestScenarioFullTeardown is spec.md §8 scenario 3, continuing scenario 2.
func TestScenarioFullTeardown(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	for i := int32(31); i <= 80; i++ {
		if err := tbl.Put(encodeInt32(i), encodeInt32(i)); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	for i := int32(31); i <= 39; i++ {
		tbl.Delete(encodeInt32(i))
	}
	for i := int32(40); i <= 80; i++ {
		if !tbl.Delete(encodeInt32(i)) {
			t.Fatalf("Delete(%d) = false, want true", i)
		}
	}
	if tbl.Len() != 0 {
		t.Fatalf("U = %d, want 0", tbl.Len())
	}
	if tbl.Cap() != 16 {
		t.Fatalf("M = %d, want 16", tbl.Cap())
	}
	if tbl.SplitPointer() != 0 {
		t.Fatalf("p = %d, want 0", tbl.SplitPointer())
	}
	if tbl.DirLen() != 16 {
		t.Fatalf("L = %d, want 16", tbl.DirLen())
	}
}

// TestScenarioRandomChurn is spec.md §8 scenario 4.
func TestScenarioRandomChurn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 102400-entry churn scenario in -short mode")
	}
	tbl := newScenarioTable(t, 16)
	rng := rand.New(rand.NewSource(42))
	want := map[int32]int32{}
	for i := 0; i < 102400; i++ {
		k := rng.Int31()
		want[k] = k
		if err := tbl.Put(encodeInt32(k), encodeInt32(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	out := make([]byte, 4)
	for k, v := range want {
		if !tbl.Get(encodeInt32(k), out) || decodeInt32(out) != v {
			t.Fatalf("Get(%d) failed to round-trip", k)
		}
	}
	for k := range want {
		if !tbl.Delete(encodeInt32(k)) {
			t.Fatalf("Delete(%d) = false, want true", k)
		}
	}
	if tbl.Len() != 0 {
		t.Fatalf("U = %d after deleting every distinct key, want 0", tbl.Len())
	}
	for k := range want {
		if tbl.Has(encodeInt32(k)) {
			t.Fatalf("Has(%d) = true after delete, want false", k)
		}
	}
}

// TestScenarioOverwrite is spec.md §8 scenario 5.
func TestScenarioOverwrite(t *testing.T) {
	tbl := newScenarioTable(t, 16)
	k := encodeInt32(5)
	if err := tbl.Put(k, encodeInt32(100)); err != nil {
		t.Fatalf("Put v1: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("U = %d after first put, want 1", tbl.Len())
	}
	if err := tbl.Put(k, encodeInt32(200)); err != nil {
		t.Fatalf("Put v2: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("U = %d after overwrite, want 1", tbl.Len())
	}
	out := make([]byte, 4)
	if !tbl.Get(k, out) || decodeInt32(out) != 200 {
		t.Fatalf("Get(5) = %d, want 200", decodeInt32(out))
	}
}
