// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rotor

import "errors"

// Sentinel errors concretizing spec.md §7's abstract Rotor failure
// kinds. Precondition violations return one of these and leave state
// unchanged, except in Store.RelayShreds: it records the block's slot
// before checking the batch, and keeps the shreds it stored before
// returning ErrBandwidthExceeded.
var (
	ErrInvalidErasureParams  = errors.New("rotor: K must be >= 1 and <= N")
	ErrTooFewShreds          = errors.New("rotor: fewer than K shreds supplied for reconstruction")
	ErrMixedBlockIDs         = errors.New("rotor: supplied shreds reference more than one block id")
	ErrShredIndexOutOfRange  = errors.New("rotor: shred index outside [1..N]")
	ErrBandwidthExceeded     = errors.New("rotor: relay has no remaining bandwidth budget for this validator")
	ErrAlreadyDelivered      = errors.New("rotor: block already delivered to this validator")
	ErrNoValidatorsToAssign  = errors.New("rotor: cannot assign shreds over an empty validator set")
	ErrInvalidShredSignature = errors.New("rotor: shred fails content-tag verification")
)
