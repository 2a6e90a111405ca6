// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// ProposeBlock produces a new block for (slot, current_view), enabled
// only when v is the ComputeLeaderForView leader for that pair (spec.md §4.1).
// The new block's parent is the local finalized-chain tip.
func (v *Validator) ProposeBlock(slot idx.SlotNumber, transactions [][]byte, data []byte) (types.Block, error) {
	leader := ComputeLeaderForView(v.Cfg, slot, v.CurrentView)
	if leader != v.ID {
		return types.Block{}, ErrNotLeader
	}

	parent := v.ChainTip()
	blk := types.Block{
		Slot:         slot,
		View:         v.CurrentView,
		ParentHash:   parent,
		Proposer:     v.ID,
		Transactions: transactions,
		Timestamp:    v.CurrentTime,
		Data:         data,
	}
	blk.Hash = blockHash(blk)
	blk.Signature = v.vrfSecret.Sign(blk.Hash[:]).Bytes()
	return blk, nil
}
