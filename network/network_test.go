// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/alpenglow/idx"
)

func fourValidators() []idx.ValidatorID { return []idx.ValidatorID{1, 2, 3, 4} }

func TestBroadcast_DeliversToEveryoneInDefaultPool(t *testing.T) {
	n := New(fourValidators(), 0, 10)
	msg := n.Broadcast(1, KindVote, "hello", 0)
	require.NoError(t, n.DeliverMessage(msg.ID))

	for _, v := range []idx.ValidatorID{2, 3, 4} {
		require.Len(t, n.Inbox(v), 1)
	}
	require.Empty(t, n.Inbox(1))
}

func TestSend_DeadlineSetOnlyPastGST(t *testing.T) {
	n := New(fourValidators(), 100, 10)
	before := n.Send(1, ptr(idx.ValidatorID(2)), KindVote, nil, 50)
	require.Equal(t, idx.TimeValue(0), before.Deadline)

	after := n.Send(1, ptr(idx.ValidatorID(2)), KindVote, nil, 150)
	require.Equal(t, idx.TimeValue(160), after.Deadline)
}

func TestDropMessage_IncrementsCounterAndRemovesFromInFlight(t *testing.T) {
	n := New(fourValidators(), 0, 10)
	msg := n.Broadcast(1, KindVote, nil, 0)
	require.NoError(t, n.DropMessage(msg.ID))
	require.Equal(t, 1, n.DroppedCount())
	require.Empty(t, n.InFlight())

	err := n.DropMessage(msg.ID)
	require.ErrorIs(t, err, ErrMessageNotInFlight)
}

func TestPartitionNetwork_IsolatesSubset(t *testing.T) {
	n := New(fourValidators(), 0, 10)
	require.NoError(t, n.PartitionNetwork([]idx.ValidatorID{1, 2}, 0))

	msg := n.Send(1, ptr(idx.ValidatorID(3)), KindVote, nil, 0)
	require.NoError(t, n.DeliverMessage(msg.ID))
	require.Empty(t, n.Inbox(3)) // 1 and 3 are no longer co-partitioned

	msg2 := n.Send(1, ptr(idx.ValidatorID(2)), KindVote, nil, 0)
	require.NoError(t, n.DeliverMessage(msg2.ID))
	require.Len(t, n.Inbox(2), 1)
}

func TestHealPartition_RestoresDefaultPool(t *testing.T) {
	n := New(fourValidators(), 0, 10)
	require.NoError(t, n.PartitionNetwork([]idx.ValidatorID{1, 2}, 0))
	require.NoError(t, n.HealPartition([]idx.ValidatorID{1, 2}, 0))

	msg := n.Send(1, ptr(idx.ValidatorID(3)), KindVote, nil, 0)
	require.NoError(t, n.DeliverMessage(msg.ID))
	require.Len(t, n.Inbox(3), 1)
}

func TestHealPartition_UnknownSubsetErrors(t *testing.T) {
	n := New(fourValidators(), 0, 10)
	err := n.HealPartition([]idx.ValidatorID{1, 2}, 0)
	require.ErrorIs(t, err, ErrUnknownPartition)
}

func ptr(v idx.ValidatorID) *idx.ValidatorID { return &v }
