// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the wire-level value objects shared by Votor
// and Rotor: Block, Vote, Certificate, Shred, and RepairRequest.
// Grounded on this codebase's types.Block interface and choices.Status
// enum, adapted from a polymorphic VM-block interface into a single
// concrete struct, since Alpenglow blocks carry no VM-specific state
// beyond an opaque transaction payload (spec.md §1 places transaction
// execution out of scope).
package types

import (
	"github.com/luxfi/alpenglow/idx"
)

// Block is a proposed block for a given (slot, view). Immutable once
// created; referenced by hash thereafter (spec.md §3).
type Block struct {
	Slot       idx.SlotNumber
	View       idx.ViewNumber
	Hash       idx.BlockHash
	ParentHash idx.BlockHash
	Proposer   idx.ValidatorID
	// Transactions is an opaque payload; transaction execution is out
	// of scope per spec.md §1.
	Transactions [][]byte
	Timestamp    idx.TimeValue
	Signature    []byte
	Data         []byte
}

// Status mirrors this codebase's choices.Status enum, reused here to
// track a block's local disposition as it moves through Rotor
// reconstruction and Votor finalization.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusProcessing
	StatusRejected
	StatusAccepted
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusProcessing:
		return "processing"
	case StatusRejected:
		return "rejected"
	case StatusAccepted:
		return "accepted"
	default:
		return "invalid"
	}
}
