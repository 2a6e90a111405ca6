// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import "errors"

// Sentinel errors concretizing the abstract kinds from spec.md §7 that
// originate in Votor. Precondition violations return one of these and
// leave state unchanged (spec.md §4.1 "Failure semantics").
var (
	ErrNotLeader             = errors.New("votor: validator is not the leader for this (slot, view)")
	ErrBlockNotDelivered     = errors.New("votor: block has not been delivered by rotor")
	ErrEquivocation          = errors.New("votor: vote would equivocate a prior vote in this (slot, view, type)")
	ErrTimeoutNotExpired     = errors.New("votor: view timeout has not expired")
	ErrAlreadySkipped        = errors.New("votor: validator already submitted a skip vote for this view")
	ErrBlockAlreadyDelivered = errors.New("votor: cannot advance view once a block has been delivered for it")
	ErrInsufficientStake     = errors.New("votor: accumulated stake is below every certificate threshold")
	ErrUnknownValidator      = errors.New("votor: vote references a validator outside the configured set")
)
