// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/luxfi/alpenglow/idx"

// VoteType distinguishes the three vote kinds Votor produces.
type VoteType uint8

const (
	// Proposal marks a leader's initial commitment to a block. No
	// votor operation emits Proposal votes: ProposeBlock returns the
	// block alone.
	Proposal VoteType = iota
	// Commit is the vote cast once a block has been delivered and
	// verified; Commit votes aggregate into Fast/Slow certificates.
	Commit
	// Skip is cast when a view's timeout expires before a block was
	// delivered; Skip votes aggregate into Skip certificates.
	Skip
)

func (t VoteType) String() string {
	switch t {
	case Proposal:
		return "proposal"
	case Commit:
		return "commit"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// Vote is produced by Votor. Skip votes carry a zero BlockHash
// (spec.md §3).
type Vote struct {
	Voter     idx.ValidatorID
	Slot      idx.SlotNumber
	View      idx.ViewNumber
	BlockHash idx.BlockHash
	VoteType  VoteType
	Signature []byte
	Timestamp idx.TimeValue
}

// Key identifies the (voter, slot, view, vote_type) triple used by the
// non-equivocation invariant I5.
type VoteKey struct {
	Voter    idx.ValidatorID
	Slot     idx.SlotNumber
	View     idx.ViewNumber
	VoteType VoteType
}

// Key returns the non-equivocation key for v.
func (v Vote) Key() VoteKey {
	return VoteKey{Voter: v.Voter, Slot: v.Slot, View: v.View, VoteType: v.VoteType}
}
