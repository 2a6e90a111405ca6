// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rotor implements block propagation: erasure-coded shredding,
// stake-weighted relay assignment, reconstruction, and repair (spec.md
// §4.2). Grounded on this codebase's sampler.weightedWithoutReplacement
// for relay assignment and on the pack's das/erasure XOR-based
// Reed-Solomon stand-in for shredding.
package rotor

import (
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// ShredBlock splits blk.Data into K data shreds and N-K XOR-rotation
// parity shreds (1-indexed per spec.md's Shred.Index ∈ [1..N]).
// Grounded directly on this codebase's das/erasure.Encode XOR-rotation
// construction, adapted from raw byte shards into signed types.Shred
// values addressed by block hash.
func ShredBlock(blk types.Block, k, n int) ([]types.Shred, error) {
	if k < 1 || k > n {
		return nil, ErrInvalidErasureParams
	}

	shardSize := (len(blk.Data) + k - 1) / k
	if shardSize == 0 {
		shardSize = 1
	}
	padded := make([]byte, shardSize*k)
	copy(padded, blk.Data)

	shards := make([][]byte, n)
	for i := 0; i < k; i++ {
		shards[i] = make([]byte, shardSize)
		copy(shards[i], padded[i*shardSize:(i+1)*shardSize])
	}
	for p := 0; p < n-k; p++ {
		shards[k+p] = make([]byte, shardSize)
		for d := 0; d < k; d++ {
			srcIdx := (d + p) % k
			for b := 0; b < shardSize; b++ {
				shards[k+p][b] ^= shards[srcIdx][b]
			}
		}
	}

	out := make([]types.Shred, n)
	for i, payload := range shards {
		s := types.Shred{
			BlockID:  blk.Hash,
			Index:    i + 1,
			Payload:  payload,
			IsParity: i >= k,
		}
		s.Signature = shredTag(s)
		out[i] = s
	}
	return out, nil
}

// ReconstructBlock rebuilds the block's payload from shreds, which
// must all reference the same block id and number at least K distinct
// indices (spec.md §4.2 erasure code contract). When all K data shreds
// are present, recovery is exact; when some are missing but sufficient
// parity shreds are present (and the missing pattern happens to admit
// single-shard XOR recovery per parity), missing data shreds are
// recovered the same way this codebase's das/erasure.Decode does it —
// this is not a general any-K-of-N algebraic code (that would require
// real Galois-field Reed-Solomon, out of scope per spec.md §4.2
// "specific code family is implementation choice").
func ReconstructBlock(shreds []types.Shred, k, n int) ([]byte, error) {
	if k < 1 || k > n {
		return nil, ErrInvalidErasureParams
	}

	byIndex := make(map[int]types.Shred)
	var blockID idx.BlockHash
	for _, s := range shreds {
		if blockID == (idx.BlockHash{}) {
			blockID = s.BlockID
		} else if s.BlockID != blockID {
			return nil, ErrMixedBlockIDs
		}
		if s.Index < 1 || s.Index > n {
			return nil, ErrShredIndexOutOfRange
		}
		if !verifyShred(s) {
			continue // Invalid-shred Byzantine behavior: dropped at receiver.
		}
		byIndex[s.Index] = s
	}
	if len(byIndex) < k {
		return nil, ErrTooFewShreds
	}

	shardSize := 0
	for _, s := range byIndex {
		shardSize = len(s.Payload)
		break
	}

	recovered := make([][]byte, n)
	for i, s := range byIndex {
		recovered[i-1] = s.Payload
	}

	allDataPresent := true
	for i := 0; i < k; i++ {
		if recovered[i] == nil {
			allDataPresent = false
			break
		}
	}
	if !allDataPresent {
		for p := 0; p < n-k; p++ {
			parityIdx := k + p
			if recovered[parityIdx] == nil {
				continue
			}
			missingIdx, missingCount := -1, 0
			for d := 0; d < k; d++ {
				srcIdx := (d + p) % k
				if recovered[srcIdx] == nil {
					missingIdx = srcIdx
					missingCount++
				}
			}
			if missingCount != 1 {
				continue
			}
			rec := make([]byte, shardSize)
			copy(rec, recovered[parityIdx])
			for d := 0; d < k; d++ {
				srcIdx := (d + p) % k
				if srcIdx == missingIdx {
					continue
				}
				for b := 0; b < shardSize; b++ {
					rec[b] ^= recovered[srcIdx][b]
				}
			}
			recovered[missingIdx] = rec
		}
	}

	out := make([]byte, 0, shardSize*k)
	for i := 0; i < k; i++ {
		if recovered[i] == nil {
			return nil, ErrTooFewShreds
		}
		out = append(out, recovered[i]...)
	}
	return out, nil
}
