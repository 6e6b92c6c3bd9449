// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

import (
	"bytes"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// DigestFunc computes the 64-bit digest H(k) of a key's bytes. The same
// DigestFunc must be used for the lifetime of a Table: addressing is only
// correct if every key hashes the same way every time it's seen.
type DigestFunc func(key []byte) uint64

// EqualFunc reports whether two keys are equal. Only used to disambiguate
// entries that land in the same bucket; it does not need to impose any
// ordering.
type EqualFunc func(a, b []byte) bool

// defaultDigest hashes key bytes with xxhash, a fast non-cryptographic
// 64-bit digest. This is the Digest used when no Option overrides it.
func defaultDigest(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// defaultEqual is a byte-wise comparator, used when no Option overrides
// it. It corresponds to spec's "if C is omitted, a byte-wise comparator
// of width K is used".
func defaultEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// MaphashDigest returns a DigestFunc backed by the standard library's
// hash/maphash, seeded with seed. Unlike the default xxhash-based digest,
// every Table using a MaphashDigest with a freshly drawn seed gets its own
// randomized hash, which protects against an adversary who can predict a
// fixed digest from crafting many colliding keys. The seed must be kept
// alongside the Table for the digest to stay reproducible across restarts
// of the process (note that Unmarshal does not persist it, see
// serialize.go).
func MaphashDigest(seed maphash.Seed) DigestFunc {
	return func(key []byte) uint64 {
		return maphash.Bytes(seed, key)
	}
}
