// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

import "container/list"

// entry is one owned (key, value) pair. Once created it is never copied;
// split and shrink move the *entry pointer between buckets, not its
// underlying byte slices.
type entry struct {
	key   []byte
	value []byte
}

// bucket is an unordered collection of entries, at most one per distinct
// key. It is backed by container/list.List, which gives the sentinel
// head/tail doubly-linked list spec.md's §6.1 names as a required
// collaborator: List's internal root element is the sentinel, Front/Back
// are the head/tail accessors, and Element.Next/Prev expose the spine a
// split or shrink step needs to walk safely while unlinking.
type bucket struct {
	list *list.List
}

func newBucket() *bucket {
	return &bucket{list: list.New()}
}

// len reports the number of entries currently in the bucket.
func (b *bucket) len() int {
	return b.list.Len()
}

// find returns the entry for key, or nil if key is absent.
func (b *bucket) find(key []byte, equal EqualFunc) *entry {
	for e := b.list.Front(); e != nil; e = e.Next() {
		ent := e.Value.(*entry)
		if equal(ent.key, key) {
			return ent
		}
	}
	return nil
}

// insertOrReplace stores value under key. It reports true if key was not
// previously present (a fresh entry was appended), and false if an
// existing entry's value was overwritten in place.
func (b *bucket) insertOrReplace(key, value []byte, equal EqualFunc) bool {
	if ent := b.find(key, equal); ent != nil {
		ent.value = append(ent.value[:0], value...)
		return false
	}
	owned := &entry{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	}
	b.list.PushBack(owned)
	return true
}

// remove deletes the entry for key, if any, and reports whether one was
// found.
func (b *bucket) remove(key []byte, equal EqualFunc) bool {
	for e := b.list.Front(); e != nil; e = e.Next() {
		ent := e.Value.(*entry)
		if equal(ent.key, key) {
			b.list.Remove(e)
			return true
		}
	}
	return false
}

// drainInto moves every entry for which predicate reports true out of b
// and into dst, preserving ownership of the entry's key/value byte slices
// (only the list spine is rewired, never the bytes themselves). The
// traversal captures each element's successor before any removal so it
// keeps going correctly after dst steals the current element -- the same
// discipline spec.md's split/shrink notes require of a predecessor-first
// unlink, applied to a forward walk.
func (b *bucket) drainInto(dst *bucket, predicate func(*entry) bool) {
	for e := b.list.Front(); e != nil; {
		next := e.Next()
		ent := e.Value.(*entry)
		if predicate(ent) {
			b.list.Remove(e)
			dst.list.PushBack(ent)
		}
		e = next
	}
}

// each calls fn for every entry in the bucket, in list order. Used by the
// serializer to walk the whole table without exposing bucket internals.
func (b *bucket) each(fn func(*entry)) {
	for e := b.list.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*entry))
	}
}
