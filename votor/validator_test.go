// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/alpenglow/config"
	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

func fourValidatorConfig(t *testing.T, opts ...config.Option) config.Config {
	t.Helper()
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 250, 2: 250, 3: 250, 4: 250}
	cfg, err := config.NewConfig(stakes, opts...)
	require.NoError(t, err)
	return cfg
}

func deliverAndVoteAll(t *testing.T, validators map[idx.ValidatorID]*Validator, blk types.Block) []types.Certificate {
	t.Helper()
	var certs []types.Certificate
	for _, v := range validators {
		v.NotifyDelivered(blk)
	}
	for id, v := range validators {
		vote, err := v.CastNotarVote(blk.Slot, blk)
		require.NoError(t, err)
		for _, voter := range validators {
			certs = append(certs, voter.ReceiveVote(vote)...)
		}
		_ = id
	}
	return certs
}

func TestCastNotarVote_RequiresDelivery(t *testing.T) {
	cfg := fourValidatorConfig(t)
	v := NewValidator(1, cfg)
	blk := types.Block{Slot: 1, View: 1, Hash: idx.BlockHash{0x01}}

	_, err := v.CastNotarVote(1, blk)
	require.ErrorIs(t, err, ErrBlockNotDelivered)
}

func TestCastNotarVote_RejectsEquivocation(t *testing.T) {
	cfg := fourValidatorConfig(t)
	v := NewValidator(1, cfg)

	a := types.Block{Slot: 1, View: v.CurrentView, Data: []byte("a")}
	a.Hash = blockHash(a)
	b := types.Block{Slot: 1, View: v.CurrentView, Data: []byte("b")}
	b.Hash = blockHash(b)

	v.NotifyDelivered(a)
	v.NotifyDelivered(b)

	_, err := v.CastNotarVote(1, a)
	require.NoError(t, err)

	_, err = v.CastNotarVote(1, b)
	require.ErrorIs(t, err, ErrEquivocation)

	// Casting for the same block again in the same view is not an
	// equivocation, just a repeat of the same commitment.
	_, err = v.CastNotarVote(1, a)
	require.NoError(t, err)
}

func TestFastCertificate_AtExactly80Percent(t *testing.T) {
	// 4 validators, 250 stake each (total 1000): 4 votes = 100%, 3
	// votes = 75% (below fast, above slow), so neither lands exactly
	// on 80%; use uneven stakes to hit exactly 80%.
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 20, 2: 20, 3: 20, 4: 40}
	cfg, err := config.NewConfig(stakes)
	require.NoError(t, err)

	validators := make(map[idx.ValidatorID]*Validator)
	for id := range stakes {
		validators[id] = NewValidator(id, cfg)
	}

	blk := types.Block{Slot: 1, View: idx.FirstView, Data: []byte("block")}
	blk.Hash = blockHash(blk)

	// Votes from 1,2,4 = 20+20+40 = 80 = exactly 80% of 100 total.
	for _, v := range validators {
		v.NotifyDelivered(blk)
	}
	var certs []types.Certificate
	for _, id := range []idx.ValidatorID{1, 2, 4} {
		vote, err := validators[id].CastNotarVote(1, blk)
		require.NoError(t, err)
		certs = append(certs, validators[4].ReceiveVote(vote)...)
	}
	require.NotEmpty(t, certs)
	require.Equal(t, types.Fast, certs[len(certs)-1].CertType)
}

func TestSlowCertificate_Below80MustNotBeFast(t *testing.T) {
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 20, 2: 20, 3: 20, 4: 40}
	cfg, err := config.NewConfig(stakes)
	require.NoError(t, err)

	v4 := NewValidator(4, cfg)
	blk := types.Block{Slot: 1, View: idx.FirstView, Data: []byte("block")}
	blk.Hash = blockHash(blk)
	v4.NotifyDelivered(blk)

	// 1 (20) + 2 (20) = 40 = exactly 40%: below both thresholds.
	for _, id := range []idx.ValidatorID{1, 2} {
		vote := types.Vote{Voter: id, Slot: 1, View: idx.FirstView, BlockHash: blk.Hash, VoteType: types.Commit}
		certs := v4.ReceiveVote(vote)
		require.Empty(t, certs)
	}

	// Adding validator 3 (20) brings it to 60 = 60%: Slow, not Fast.
	vote := types.Vote{Voter: 3, Slot: 1, View: idx.FirstView, BlockHash: blk.Hash, VoteType: types.Commit}
	certs := v4.ReceiveVote(vote)
	require.Len(t, certs, 1)
	require.Equal(t, types.Slow, certs[0].CertType)
}

func TestReceiveVote_IsIdempotent(t *testing.T) {
	cfg := fourValidatorConfig(t)
	v := NewValidator(1, cfg)
	blk := types.Block{Slot: 1, View: idx.FirstView, Data: []byte("x")}
	blk.Hash = blockHash(blk)
	v.NotifyDelivered(blk)

	vote := types.Vote{Voter: 2, Slot: 1, View: idx.FirstView, BlockHash: blk.Hash, VoteType: types.Commit}
	v.ReceiveVote(vote)
	v.ReceiveVote(vote)

	require.Len(t, v.ReceivedVotes(idx.FirstView), 1)
}

func TestAdvanceView_RequiresTimeoutExpiry(t *testing.T) {
	cfg := fourValidatorConfig(t)
	v := NewValidator(1, cfg)

	err := v.AdvanceView()
	require.ErrorIs(t, err, ErrTimeoutNotExpired)

	v.AdvanceClock(v.TimeoutExpiry)
	err = v.AdvanceView()
	require.NoError(t, err)
	require.Equal(t, idx.FirstView+1, v.CurrentView)
}

func TestSubmitSkipVote_OnlyOncePerView(t *testing.T) {
	cfg := fourValidatorConfig(t)
	v := NewValidator(1, cfg)
	v.AdvanceClock(v.TimeoutExpiry)

	_, err := v.SubmitSkipVote()
	require.NoError(t, err)

	_, err = v.SubmitSkipVote()
	require.ErrorIs(t, err, ErrAlreadySkipped)
}

func TestSkipCertificate_At60PercentOfTotalStake(t *testing.T) {
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 100, 2: 100, 3: 100, 4: 100}
	cfg, err := config.NewConfig(stakes)
	require.NoError(t, err)
	v := NewValidator(4, cfg)

	// Total stake is 400; the skip threshold is 60% = 240. Two skip
	// votes (200) fall short; a third (300) clears it.
	for i, id := range []idx.ValidatorID{1, 2, 3} {
		vote := types.Vote{Voter: id, View: idx.FirstView, VoteType: types.Skip}
		certs := v.ReceiveVote(vote)
		if i < 2 {
			require.Empty(t, certs)
		} else {
			require.Len(t, certs, 1)
			require.Equal(t, types.SkipCert, certs[0].CertType)
		}
	}
}

func TestComputeLeaderForView_FavorsHigherStakeValidator(t *testing.T) {
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 1, 2: 999}
	cfg, err := config.NewConfig(stakes)
	require.NoError(t, err)

	seen := make(map[idx.ValidatorID]int)
	for view := idx.ViewNumber(1); view <= 200; view++ {
		leader := ComputeLeaderForView(cfg, 0, view)
		seen[leader]++
	}
	require.Greater(t, seen[2], seen[1])
}

func TestComputeLeaderForView_DeterministicAcrossValidators(t *testing.T) {
	cfg := fourValidatorConfig(t)
	a := ComputeLeaderForView(cfg, 5, 3)
	b := ComputeLeaderForView(cfg, 5, 3)
	require.Equal(t, a, b)
}

func TestFinalize_RecordsLatencyAndEmitsEvent(t *testing.T) {
	cfg := fourValidatorConfig(t)
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 250, 2: 250, 3: 250, 4: 250}
	_ = stakes
	rec := events.NewRecorder()
	validators := make(map[idx.ValidatorID]*Validator)
	for id := range cfg.StakeByValidator {
		validators[id] = NewValidator(id, cfg, WithEventSink(rec))
	}
	for _, v := range validators {
		v.AdvanceClock(5)
	}

	blk := types.Block{Slot: 1, View: idx.FirstView, Data: []byte("x"), Timestamp: 1}
	blk.Hash = blockHash(blk)
	deliverAndVoteAll(t, validators, blk)

	finalized, ok := validators[1].FinalizedAt(1)
	require.True(t, ok)
	require.Equal(t, blk.Hash, finalized.Hash)
	require.Equal(t, idx.TimeValue(4), validators[1].LatencyMetrics[1])
	require.Len(t, rec.OfKind(events.BlockFinalized), len(validators))
}
