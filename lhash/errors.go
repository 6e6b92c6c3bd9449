// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

import "errors"

// ErrIndexOutOfRange is returned when the directory is addressed with an
// index outside [0, len). Under the invariants Table maintains internally
// this should never happen; if one is ever broken, Put returns this error
// wrapped with the offending index.
var ErrIndexOutOfRange = errors.New("lhash: directory index out of range")

// ErrShrinkNotShorter is returned by the directory's truncate operation
// when asked to shrink to a length that is not strictly less than the
// current length.
var ErrShrinkNotShorter = errors.New("lhash: truncate length must be shorter than current length")

// ErrKeyWidthMismatch is returned by Put when a key does not have the
// configured key width, and by Unmarshal when the stream's key width
// differs from the Table's. Get, Has, and Delete log a wrong-width key and
// report false instead.
var ErrKeyWidthMismatch = errors.New("lhash: key has wrong width")

// ErrValueWidthMismatch is returned by Put when a value does not have the
// configured value width, and by Unmarshal when the stream's value width
// differs from the Table's. Get logs a wrong-width output buffer and
// reports false instead.
var ErrValueWidthMismatch = errors.New("lhash: value has wrong width")

// ErrShortRead is returned by Unmarshal when the stream ends in the middle
// of an entry instead of cleanly at an entry boundary.
var ErrShortRead = errors.New("lhash: short read in the middle of an entry")

// ErrInvalidConfig is returned by New when the supplied configuration is
// not usable (zero widths, non-positive capacity, threshold out of range).
var ErrInvalidConfig = errors.New("lhash: invalid configuration")
