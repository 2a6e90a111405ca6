// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/luxfi/alpenglow/idx"

// Shred is one erasure-coded fragment of a block. K of N suffice to
// reconstruct the block (spec.md §3, §4.2).
type Shred struct {
	BlockID   idx.BlockHash
	Index     int // 1-based, in [1..N]
	Payload   []byte
	IsParity  bool
	Signature []byte
}

// RepairRequest asks a peer for the shred indices the requester is
// still missing for a given block.
type RepairRequest struct {
	Requester      idx.ValidatorID
	BlockID        idx.BlockHash
	MissingIndices []int
	Timestamp      idx.TimeValue
	RetryCount     int
}
