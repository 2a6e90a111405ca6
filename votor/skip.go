// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// SubmitSkipVote casts this validator's Skip vote for CurrentView,
// enabled only once the view's timeout has expired and only once per
// view (spec.md §4.1 invariant I5 extended to Skip votes).
func (v *Validator) SubmitSkipVote() (types.Vote, error) {
	if !v.TimeoutExpired() {
		return types.Vote{}, ErrTimeoutNotExpired
	}
	if v.votedSkip[v.CurrentView] {
		return types.Vote{}, ErrAlreadySkipped
	}

	vote := types.Vote{
		Voter:     v.ID,
		View:      v.CurrentView,
		BlockHash: idx.ZeroHash,
		VoteType:  types.Skip,
		Timestamp: v.CurrentTime,
	}
	vote.Signature = v.vrfSecret.Sign(voteSigningBytes(vote)).Bytes()

	v.votedSkip[v.CurrentView] = true
	v.insertVote(vote)
	return vote, nil
}

// AdvanceView moves the validator to CurrentView+1, enabled only once
// the current view's timeout has expired and only when no block has
// already been delivered for CurrentView (spec.md §4.1: a validator
// that already has the view's block should vote on it, not skip past
// it). Installs the next view's adaptive timeout and emits a
// ViewAdvanced event.
func (v *Validator) AdvanceView() error {
	if !v.TimeoutExpired() {
		return ErrTimeoutNotExpired
	}
	for _, blk := range v.deliveredBlocks {
		if blk.View == v.CurrentView {
			return ErrBlockAlreadyDelivered
		}
	}

	from := v.CurrentView
	v.CurrentView++
	v.TimeoutExpiry = v.CurrentTime + Timeout(v.Cfg, v.CurrentView)

	v.sink.Emit(events.Event{
		Kind:      events.ViewAdvanced,
		Timestamp: v.CurrentTime,
		Validator: v.ID,
		FromView:  from,
		ToView:    v.CurrentView,
		Reason:    "timeout",
	})
	return nil
}
