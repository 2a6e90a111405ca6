// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// CastNotarVote produces a Commit vote for blk, enabled only when blk
// has been delivered by rotor and casting it would not equivocate a
// prior vote this validator emitted in (slot, view) (spec.md §4.1,
// invariant I5).
func (v *Validator) CastNotarVote(slot idx.SlotNumber, blk types.Block) (types.Vote, error) {
	if _, ok := v.Delivered(blk.Hash); !ok {
		return types.Vote{}, ErrBlockNotDelivered
	}
	if existing, voted := v.votedCommit[v.CurrentView]; voted && existing != blk.Hash {
		return types.Vote{}, ErrEquivocation
	}

	vote := types.Vote{
		Voter:     v.ID,
		Slot:      slot,
		View:      v.CurrentView,
		BlockHash: blk.Hash,
		VoteType:  types.Commit,
		Timestamp: v.CurrentTime,
	}
	vote.Signature = v.vrfSecret.Sign(voteSigningBytes(vote)).Bytes()

	v.votedCommit[v.CurrentView] = blk.Hash
	v.insertVote(vote)
	return vote, nil
}

// ReceiveVote idempotently inserts vote into received_votes[view] (or
// skip_votes[view] for Skip votes) and attempts certificate
// generation on every insert, including redeliveries (spec.md §8
// Idempotence: "receive_vote(v, vote) applied twice yields the same
// state as once").
func (v *Validator) ReceiveVote(vote types.Vote) []types.Certificate {
	v.insertVote(vote)
	if vote.VoteType == types.Skip {
		return v.tryGenerateSkipCertificate(vote.View)
	}
	if cert, ok := v.TryGenerateCertificate(vote.View, vote.BlockHash); ok {
		return []types.Certificate{cert}
	}
	return nil
}

// insertVote records vote under its (view, voter) slot. A second
// insert for the same (voter, view, type) is a no-op if it repeats the
// same vote (idempotent redelivery) and is dropped silently if it
// differs (a Byzantine equivocation observed at the receiver — spec.md
// §7: "A Byzantine validator's malformed action silently drops at the
// receiver; no error surfaces to the honest execution path").
func (v *Validator) insertVote(vote types.Vote) {
	switch vote.VoteType {
	case types.Skip:
		bucket, ok := v.skipVotes[vote.View]
		if !ok {
			bucket = make(map[idx.ValidatorID]types.Vote)
			v.skipVotes[vote.View] = bucket
		}
		if _, exists := bucket[vote.Voter]; !exists {
			bucket[vote.Voter] = vote
		}
	default:
		bucket, ok := v.receivedVotes[vote.View]
		if !ok {
			bucket = make(map[idx.ValidatorID]types.Vote)
			v.receivedVotes[vote.View] = bucket
		}
		if _, exists := bucket[vote.Voter]; !exists {
			bucket[vote.Voter] = vote
		}
	}
}

// voteSigningBytes is the canonical byte representation a vote's
// signature commits to.
func voteSigningBytes(v types.Vote) []byte {
	out := make([]byte, 0, 32+24)
	out = append(out, v.BlockHash[:]...)
	out = appendUint64(out, uint64(v.Slot))
	out = appendUint64(out, uint64(v.View))
	out = appendUint64(out, uint64(v.VoteType))
	return out
}

func appendUint64(b []byte, x uint64) []byte {
	return append(b,
		byte(x>>56), byte(x>>48), byte(x>>40), byte(x>>32),
		byte(x>>24), byte(x>>16), byte(x>>8), byte(x))
}
