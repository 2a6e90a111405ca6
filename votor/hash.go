// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/luxfi/ids"

	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// blockHash computes the content-addressed hash of everything about a
// block except its own hash and signature, so that a block's identity
// is exactly its content (spec.md §3: "immutable once created;
// referenced by hash thereafter").
func blockHash(b types.Block) idx.BlockHash {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b.Slot))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(b.View))
	h.Write(buf[:])
	h.Write(b.ParentHash[:])
	binary.BigEndian.PutUint64(buf[:], uint64(b.Proposer))
	h.Write(buf[:])
	for _, tx := range b.Transactions {
		h.Write(tx)
	}
	binary.BigEndian.PutUint64(buf[:], uint64(b.Timestamp))
	h.Write(buf[:])
	h.Write(b.Data)
	return ids.ID(sha256.Sum256(h.Sum(nil)))
}
