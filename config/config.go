// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the immutable validator set, stake
// distribution, thresholds, and timing constants that every other
// Alpenglow component is parameterized over. Grounded on this
// codebase's config.Parameters: a plain struct with a Valid() method
// returning sentinel errors, plus a handful of named presets.
package config

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/luxfi/alpenglow/idx"
)

// Config is the immutable, validated configuration for one run of the
// protocol. All fields are read-only after NewConfig returns.
type Config struct {
	ValidatorCount   int
	TotalStake       idx.StakeAmount
	StakeByValidator map[idx.ValidatorID]idx.StakeAmount

	FastPathThresholdBP  uint32 // basis points of total stake, e.g. 8000 = 80%
	SlowPathThresholdBP  uint32 // e.g. 6000 = 60%
	SkipThresholdBP      uint32 // of total stake, counted over skip votes, e.g. 6000 = 60%
	ByzantineThresholdBP uint32 // informational: the safety bound, e.g. 3333

	// LeaderWindowSize, BaseTimeout, and MaxNetworkDelay are all
	// expressed in clock ticks (idx.TimeValue), the same scalar u64
	// unit the global clock advances in (spec.md §3's TimeValue), so
	// that timeout arithmetic never mixes wall-clock and tick units.
	LeaderWindowSize int
	BaseTimeout      idx.TimeValue
	MaxNetworkDelay  idx.TimeValue // Delta
	GST              idx.TimeValue

	ErasureK int
	ErasureN int

	// MaxViewPerSlot bounds the view space within a single slot so that
	// the leader-window index w = (slot*MaxViewPerSlot + view) /
	// LeaderWindowSize never collides across slots (spec.md §4.1
	// compute_leader_for_view).
	MaxViewPerSlot idx.ViewNumber

	MaxSlot idx.SlotNumber

	ByzantineValidators map[idx.ValidatorID]bool
	OfflineValidators   map[idx.ValidatorID]bool
}

const (
	// DefaultFastPathThresholdBP is 80% of total stake.
	DefaultFastPathThresholdBP uint32 = 8000
	// DefaultSlowPathThresholdBP is 60% of total stake.
	DefaultSlowPathThresholdBP uint32 = 6000
	// DefaultSkipThresholdBP is 60% of total stake.
	DefaultSkipThresholdBP uint32 = 6000
	// DefaultByzantineThresholdBP is 1/3 of total stake, expressed in bp.
	DefaultByzantineThresholdBP uint32 = 3333
	// DefaultLeaderWindowSize is the number of consecutive views across
	// which the adaptive timeout doubles once.
	DefaultLeaderWindowSize = 4
	// MaxTimeoutDoublings bounds the exponential backoff (spec.md's
	// "safety valve against runaway exponential growth").
	MaxTimeoutDoublings = 10
	// basisPointsDenominator is the basis-points scale (10000 = 100%).
	basisPointsDenominator = 10000
)

// Option mutates a Config during construction.
type Option func(*Config)

// WithByzantine marks the given validators as Byzantine.
func WithByzantine(ids ...idx.ValidatorID) Option {
	return func(c *Config) {
		for _, v := range ids {
			c.ByzantineValidators[v] = true
		}
	}
}

// WithOffline marks the given validators as offline.
func WithOffline(ids ...idx.ValidatorID) Option {
	return func(c *Config) {
		for _, v := range ids {
			c.OfflineValidators[v] = true
		}
	}
}

// WithGST sets the Global Stabilization Time.
func WithGST(gst idx.TimeValue) Option {
	return func(c *Config) { c.GST = gst }
}

// WithMaxSlot sets the maximum slot the executor will advance to.
func WithMaxSlot(slot idx.SlotNumber) Option {
	return func(c *Config) { c.MaxSlot = slot }
}

// NewConfig builds a Config from an equal-or-explicit stake
// distribution and applies opts, then validates the result.
func NewConfig(stakeByValidator map[idx.ValidatorID]idx.StakeAmount, opts ...Option) (Config, error) {
	var total idx.StakeAmount
	for _, s := range stakeByValidator {
		total += s
	}

	c := Config{
		ValidatorCount:       len(stakeByValidator),
		TotalStake:           total,
		StakeByValidator:     stakeByValidator,
		FastPathThresholdBP:  DefaultFastPathThresholdBP,
		SlowPathThresholdBP:  DefaultSlowPathThresholdBP,
		SkipThresholdBP:      DefaultSkipThresholdBP,
		ByzantineThresholdBP: DefaultByzantineThresholdBP,
		LeaderWindowSize:     DefaultLeaderWindowSize,
		BaseTimeout:          250,
		MaxNetworkDelay:      100,
		ErasureK:             2,
		ErasureN:             4,
		MaxViewPerSlot:       1 << 20,
		MaxSlot:              1000,
		ByzantineValidators:  make(map[idx.ValidatorID]bool),
		OfflineValidators:    make(map[idx.ValidatorID]bool),
	}

	for _, opt := range opts {
		opt(&c)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the arithmetic and consistency constraints from
// spec.md §6/§7 (InvalidConfig errors abort startup; they never
// surface once the core is running).
func (c Config) Validate() error {
	if c.ValidatorCount <= 0 {
		return ErrInvalidValidatorCount
	}
	if len(c.StakeByValidator) != c.ValidatorCount {
		return ErrStakeDistributionEmpty
	}
	var sum idx.StakeAmount
	for v, s := range c.StakeByValidator {
		if s == 0 {
			return ErrZeroStakeValidator
		}
		sum += s
		if c.ByzantineValidators[v] && c.OfflineValidators[v] {
			return ErrByzantineAndOffline
		}
	}
	if sum != c.TotalStake {
		return ErrStakeMismatch
	}
	for v := range c.ByzantineValidators {
		if _, ok := c.StakeByValidator[v]; !ok {
			return ErrUnknownValidator
		}
	}
	for v := range c.OfflineValidators {
		if _, ok := c.StakeByValidator[v]; !ok {
			return ErrUnknownValidator
		}
	}
	if c.FastPathThresholdBP == 0 || c.FastPathThresholdBP > basisPointsDenominator {
		return ErrThresholdOutOfRange
	}
	if c.SlowPathThresholdBP == 0 || c.SlowPathThresholdBP > basisPointsDenominator {
		return ErrThresholdOutOfRange
	}
	if c.FastPathThresholdBP <= c.SlowPathThresholdBP {
		return ErrInvalidThresholds
	}
	if c.LeaderWindowSize <= 0 {
		return ErrInvalidLeaderWindow
	}
	if c.BaseTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ErasureK < 1 || c.ErasureK > c.ErasureN {
		return ErrInvalidErasureParams
	}
	return nil
}

// StakeThreshold returns the absolute stake amount corresponding to bp
// basis points of the total stake, rounding up so that the threshold
// is never satisfied by less than the intended fraction (boundary
// behavior from spec.md §8: "Fast threshold at exactly 80%: MUST be
// generated. At 79.999%: MUST NOT").
func (c Config) StakeThreshold(bp uint32) idx.StakeAmount {
	num := uint64(c.TotalStake) * uint64(bp)
	threshold := num / basisPointsDenominator
	if num%basisPointsDenominator != 0 {
		threshold++
	}
	return idx.StakeAmount(threshold)
}

// IsByzantine reports whether v is configured as Byzantine.
func (c Config) IsByzantine(v idx.ValidatorID) bool { return c.ByzantineValidators[v] }

// IsOffline reports whether v is configured as offline.
func (c Config) IsOffline(v idx.ValidatorID) bool { return c.OfflineValidators[v] }

// IsHonest reports whether v is neither Byzantine nor offline.
func (c Config) IsHonest(v idx.ValidatorID) bool {
	return !c.IsByzantine(v) && !c.IsOffline(v)
}

// HonestStake returns the combined stake of every honest validator.
func (c Config) HonestStake() idx.StakeAmount {
	var total idx.StakeAmount
	for v, s := range c.StakeByValidator {
		if c.IsHonest(v) {
			total += s
		}
	}
	return total
}

// ByzantineStake returns the combined stake of Byzantine validators.
func (c Config) ByzantineStake() idx.StakeAmount {
	var total idx.StakeAmount
	for v := range c.ByzantineValidators {
		total += c.StakeByValidator[v]
	}
	return total
}

// ValidatorIDs returns the configured validator set in ascending order.
func (c Config) ValidatorIDs() []idx.ValidatorID {
	out := maps.Keys(c.StakeByValidator)
	slices.Sort(out)
	return out
}
