// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

// split performs one incremental split step: the bucket named by the
// current split pointer p is redistributed between itself and a freshly
// appended bucket at the higher-width address, and p advances (rolling
// the generation over to capacity 2M if it reaches M).
//
// This is a renamed, []byte-generalized port of original_source/src/
// map.c's split(), which in turn is this repo's best statement of the
// bit arithmetic Go's own runtime map (see DESIGN.md) uses for evacuation
// during growth: a key formerly at slot s either stays at s or moves to
// s+M once the table's address width doubles from m to 2m, because
// H(k) mod m == s for every such key already.
func (t *Table) split() {
	s := t.p

	newB := newBucket()
	t.dir.append(newB) // new bucket's index is len(dir)-1 == M+s, since L == M+p before this call.

	splitB := t.bucketAt(s)
	if splitB == nil {
		// Can't happen under Table's own invariants; bucketAt already logged.
		return
	}

	splitB.drainInto(newB, func(e *entry) bool {
		return t.digest(e.key)%(2*t.m) != s
	})

	t.p++
	if t.p == t.m {
		t.m *= 2
		t.p = 0
	}
	t.logger.Infof("lhash: split complete, m=%d p=%d L=%d", t.m, t.p, t.dir.len())
}

// shrink performs one incremental shrink step, the exact inverse of
// split: every entry in the last directory bucket is moved back into the
// bucket it was split out of, the directory's tail is truncated, and p
// retreats (rolling the generation back to capacity M/2 if p was already
// 0).
//
// This is a renamed, []byte-generalized port of original_source/src/
// map.c's shrink().
func (t *Table) shrink() {
	var origin uint64
	if t.p > 0 {
		origin = t.p - 1
	} else {
		origin = t.m/2 - 1
	}

	originB := t.bucketAt(origin)
	lastIdx := t.dir.len() - 1
	lastB := t.bucketAt(uint64(lastIdx))
	if originB == nil || lastB == nil {
		return
	}

	lastB.drainInto(originB, func(*entry) bool { return true })

	if err := t.dir.truncate(lastIdx); err != nil {
		t.logger.Errorf("lhash: %v (newLen %d, L %d)", err, lastIdx, lastIdx+1)
		return
	}

	if t.p == 0 {
		t.m /= 2
		t.p = t.m - 1
	} else {
		t.p--
	}
	t.logger.Infof("lhash: shrink complete, m=%d p=%d L=%d", t.m, t.p, t.dir.len())
}
