// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

// Sentinel errors for configuration validation, following the
// package-scope errors.New convention used throughout this codebase's
// ambient stack.
var (
	ErrInvalidValidatorCount  = errors.New("config: validator_count must be positive")
	ErrStakeDistributionEmpty = errors.New("config: stake_distribution must cover every validator")
	ErrStakeMismatch          = errors.New("config: stake_distribution does not sum to total_stake")
	ErrZeroStakeValidator     = errors.New("config: a validator must carry positive stake")
	ErrInvalidThresholds      = errors.New("config: fast_path_threshold_bp must exceed slow_path_threshold_bp")
	ErrThresholdOutOfRange    = errors.New("config: threshold basis points must be in (0, 10000]")
	ErrInvalidLeaderWindow    = errors.New("config: leader_window_size must be positive")
	ErrInvalidTimeout         = errors.New("config: base_timeout must be positive")
	ErrInvalidErasureParams   = errors.New("config: erasure_k must be >= 1 and erasure_k <= erasure_n")
	ErrUnknownValidator       = errors.New("config: byzantine/offline set references an unconfigured validator")
	ErrByzantineAndOffline    = errors.New("config: a validator cannot be both byzantine and offline")
)
