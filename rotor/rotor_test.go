// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rotor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

type recordingNotifier struct {
	delivered []types.Block
}

func (r *recordingNotifier) NotifyDelivered(b types.Block) { r.delivered = append(r.delivered, b) }

func testBlock(data string) types.Block {
	b := types.Block{Slot: 1, View: 1, Data: []byte(data)}
	b.Hash = idx.BlockHash{}
	for i, c := range []byte(data) {
		if i < len(b.Hash) {
			b.Hash[i] = c
		}
	}
	return b
}

func TestShredAndReconstruct_AllDataShredsPresent(t *testing.T) {
	blk := testBlock("hello alpenglow block payload")
	shreds, err := ShredBlock(blk, 3, 5)
	require.NoError(t, err)
	require.Len(t, shreds, 5)

	payload, err := ReconstructBlock(shreds[:3], 3, 5)
	require.NoError(t, err)
	require.Equal(t, blk.Data, trimPadding(blk.Data, payload))
}

func TestReconstructBlock_FailsBelowK(t *testing.T) {
	blk := testBlock("short")
	shreds, err := ShredBlock(blk, 3, 5)
	require.NoError(t, err)

	_, err = ReconstructBlock(shreds[:2], 3, 5)
	require.ErrorIs(t, err, ErrTooFewShreds)
}

func TestReconstructBlock_DropsInvalidShred(t *testing.T) {
	blk := testBlock("tamper-test-payload")
	shreds, err := ShredBlock(blk, 2, 4)
	require.NoError(t, err)

	shreds[0].Payload[0] ^= 0xFF // tamper without updating signature

	_, err = ReconstructBlock(shreds[:2], 2, 4)
	require.ErrorIs(t, err, ErrTooFewShreds) // tampered shred dropped, only 1 valid left
}

func TestReconstructBlock_RejectsMixedBlockIDs(t *testing.T) {
	a := testBlock("block-a-payload")
	b := testBlock("block-b-payload-diff")
	sa, err := ShredBlock(a, 2, 4)
	require.NoError(t, err)
	sb, err := ShredBlock(b, 2, 4)
	require.NoError(t, err)

	mixed := []types.Shred{sa[0], sb[1]}
	_, err = ReconstructBlock(mixed, 2, 4)
	require.ErrorIs(t, err, ErrMixedBlockIDs)
}

func TestAssignPiecesToRelays_ProportionalToStake(t *testing.T) {
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 100, 2: 900}
	assignment, err := AssignPiecesToRelays(stakes, 1000)
	require.NoError(t, err)

	require.InDelta(t, 100, len(assignment[1]), 40)
	require.InDelta(t, 900, len(assignment[2]), 40)
}

func TestAssignPiecesToRelays_CoversEveryIndex(t *testing.T) {
	stakes := map[idx.ValidatorID]idx.StakeAmount{1: 1, 2: 1, 3: 1}
	assignment, err := AssignPiecesToRelays(stakes, 30)
	require.NoError(t, err)

	covered := make(map[int]bool)
	for _, indices := range assignment {
		for i := range indices {
			covered[i] = true
		}
	}
	for i := 1; i <= 30; i++ {
		require.True(t, covered[i], "index %d not covered by any relay", i)
	}
}

func TestStore_RelayShredsAndReconstruct(t *testing.T) {
	blk := testBlock("full end-to-end store payload")
	shreds, err := ShredBlock(blk, 3, 5)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	store := NewStore(1, 3, 5, notifier)

	require.False(t, store.CanReconstruct(blk.Hash))
	err = store.RelayShreds(2, blk.Hash, blk.Slot, shreds[:2])
	require.NoError(t, err)
	require.False(t, store.CanReconstruct(blk.Hash))

	err = store.RelayShreds(2, blk.Hash, blk.Slot, shreds[2:3])
	require.NoError(t, err)
	require.True(t, store.CanReconstruct(blk.Hash))

	payload, err := store.AttemptReconstruction(blk.Hash)
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	require.NoError(t, store.DeliverBlock(blk))
	require.Len(t, notifier.delivered, 1)
	require.Equal(t, blk.Hash, notifier.delivered[0].Hash)

	err = store.DeliverBlock(blk)
	require.ErrorIs(t, err, ErrAlreadyDelivered)
}

func TestStore_RequestAndRespondToRepair(t *testing.T) {
	blk := testBlock("repair-path-payload")
	shreds, err := ShredBlock(blk, 2, 4)
	require.NoError(t, err)

	requester := NewStore(1, 2, 4, nil)
	require.NoError(t, requester.RelayShreds(2, blk.Hash, blk.Slot, shreds[:1]))

	req := requester.RequestRepair(blk.Hash, 10)
	require.ElementsMatch(t, []int{2, 3, 4}, req.MissingIndices)

	responder := NewStore(2, 2, 4, nil)
	require.NoError(t, responder.RelayShreds(1, blk.Hash, blk.Slot, shreds))
	resp := responder.RespondToRepair(req)
	require.Len(t, resp, 3)
}

func TestStore_BandwidthLimitEnforced(t *testing.T) {
	blk := testBlock("bandwidth-limited-payload")
	shreds, err := ShredBlock(blk, 2, 4)
	require.NoError(t, err)

	store := NewStore(1, 2, 4, nil, WithBandwidthLimit(1))
	err = store.RelayShreds(2, blk.Hash, blk.Slot, shreds[:1])
	require.NoError(t, err)

	err = store.RelayShreds(2, blk.Hash, blk.Slot, shreds[1:2])
	require.ErrorIs(t, err, ErrBandwidthExceeded)
}

func trimPadding(original, reconstructed []byte) []byte {
	if len(reconstructed) < len(original) {
		return reconstructed
	}
	return reconstructed[:len(original)]
}
