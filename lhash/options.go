// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package lhash

import (
	"fmt"

	"github.com/aristanetworks/linearhash/glog"
	"github.com/aristanetworks/linearhash/logger"
)

const (
	// defaultMinCapacity is spec.md's production default for M_min.
	defaultMinCapacity = 1024
	// defaultBucketTarget is spec.md's default for B.
	defaultBucketTarget = 1
	// defaultThreshold is spec.md's default for τ.
	defaultThreshold = 0.75
)

// config holds the per-instance construction parameters spec.md's §9
// requires not be compile-time constants. It is only ever touched through
// Options passed to New.
type config struct {
	minCapacity  uint64
	bucketTarget int
	threshold    float64
	digest       DigestFunc
	equal        EqualFunc
	logger       logger.Logger
}

func defaultConfig() *config {
	return &config{
		minCapacity:  defaultMinCapacity,
		bucketTarget: defaultBucketTarget,
		threshold:    defaultThreshold,
		digest:       defaultDigest,
		equal:        defaultEqual,
		logger:       &glog.Glog{},
	}
}

// Option configures a Table at construction time. Options are applied in
// the order passed to New.
type Option func(*config) error

// WithMinCapacity sets M_min, the minimum (and initial) logical capacity.
// n must be a power of two. Table never shrinks below this capacity.
func WithMinCapacity(n int) Option {
	return func(c *config) error {
		if n <= 0 || n&(n-1) != 0 {
			return fmt.Errorf("%w: min capacity %d is not a positive power of two", ErrInvalidConfig, n)
		}
		c.minCapacity = uint64(n)
		return nil
	}
}

// WithBucketTarget sets B, the nominal per-bucket capacity used only in
// the load-factor formula (buckets are never hard-capped at this size).
func WithBucketTarget(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: bucket target %d must be positive", ErrInvalidConfig, n)
		}
		c.bucketTarget = n
		return nil
	}
}

// WithThreshold sets τ, the shared split/shrink load-factor threshold.
func WithThreshold(tau float64) Option {
	return func(c *config) error {
		if tau <= 0 || tau >= 1 {
			return fmt.Errorf("%w: threshold %v must be in (0, 1)", ErrInvalidConfig, tau)
		}
		c.threshold = tau
		return nil
	}
}

// WithDigest overrides H, the key-digest function. See MaphashDigest for
// a seeded alternative to the xxhash default.
func WithDigest(fn DigestFunc) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: digest function is nil", ErrInvalidConfig)
		}
		c.digest = fn
		return nil
	}
}

// WithEqual overrides C, the key-equality function.
func WithEqual(fn EqualFunc) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: equal function is nil", ErrInvalidConfig)
		}
		c.equal = fn
		return nil
	}
}

// WithLogger overrides the diagnostic sink used for directory bounds
// violations and split/shrink tracing. The default logs through glog.
func WithLogger(l logger.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return fmt.Errorf("%w: logger is nil", ErrInvalidConfig)
		}
		c.logger = l
		return nil
	}
}

