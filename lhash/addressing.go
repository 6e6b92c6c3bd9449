// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

// getpos computes the directory index a key with digest h addresses,
// given the current capacity m and split pointer p. This is a direct,
// renamed port of original_source/src/map.c's h0/h1/getpos, generalized
// from an int key hashed by k2int to an arbitrary []byte key hashed by a
// DigestFunc.
//
// During a generation, buckets [0, p) have already been redistributed to
// the higher-width address space and occupy directory slots
// [0, p) ∪ [m, m+p); buckets [p, m) have not yet been touched and still
// answer queries under the lower-width hash. aLow = h mod m decides which
// regime a key is in; aHigh = h mod 2m is only consulted for keys whose
// low-width bucket has already been split (aLow < p).
func getpos(h, m, p uint64) uint64 {
	aLow := h % m
	if aLow >= p {
		return aLow
	}
	return h % (2 * m)
}
