// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"github.com/luxfi/alpenglow/idx"
)

// LocalTestConfig returns a small, equal-stake configuration suitable
// for unit tests and the end-to-end scenarios in spec.md §8: four
// validators, 1000 stake each, short timeouts, GST at 0 (i.e. already
// past GST). Mirrors this codebase's config.LocalParams preset shape.
func LocalTestConfig(opts ...Option) (Config, error) {
	stake := map[idx.ValidatorID]idx.StakeAmount{
		0: 1000,
		1: 1000,
		2: 1000,
		3: 1000,
	}
	base := []Option{
		func(c *Config) {
			c.BaseTimeout = 10
			c.MaxNetworkDelay = 5
			c.ErasureK = 2
			c.ErasureN = 4
			c.MaxSlot = 100
		},
	}
	return NewConfig(stake, append(base, opts...)...)
}

// MainnetPresetConfig returns a larger, production-shaped preset: 20
// validators with staggered stake, standard timeouts. Mirrors
// config.MainnetParams.
func MainnetPresetConfig(opts ...Option) (Config, error) {
	stake := make(map[idx.ValidatorID]idx.StakeAmount, 20)
	for i := 0; i < 20; i++ {
		stake[idx.ValidatorID(i)] = 1000 + idx.StakeAmount(i)*37
	}
	base := []Option{
		func(c *Config) {
			c.BaseTimeout = 400
			c.MaxNetworkDelay = 200
			c.ErasureK = 32
			c.ErasureN = 64
			c.MaxSlot = 1_000_000
		},
	}
	return NewConfig(stake, append(base, opts...)...)
}
