// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rotor

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/luxfi/alpenglow/idx"
)

// AssignPiecesToRelays maps each of the numPieces shred indices
// [1..numPieces] to exactly one relay, chosen by the same
// stake-weighted cumulative-bucket walk this codebase's
// sampler.weightedWithoutReplacement uses for sampling, keyed by
// shred index instead of a random draw so every validator computes
// the identical assignment (spec.md §4.2: "for any two validators
// v1, v2, |assignment[v1]| / |assignment[v2]| ≈ stake[v1] / stake[v2]",
// "every shred index in [1..N] is assigned to at least one relay").
func AssignPiecesToRelays(stakeByValidator map[idx.ValidatorID]idx.StakeAmount, numPieces int) (map[idx.ValidatorID]map[int]struct{}, error) {
	validators := sortedIDs(stakeByValidator)
	if len(validators) == 0 {
		return nil, ErrNoValidatorsToAssign
	}

	var total uint64
	for _, v := range validators {
		total += uint64(stakeByValidator[v])
	}

	assignment := make(map[idx.ValidatorID]map[int]struct{}, len(validators))
	for _, v := range validators {
		assignment[v] = make(map[int]struct{})
	}

	for shredIdx := 1; shredIdx <= numPieces; shredIdx++ {
		point := canonicalShredSeed(shredIdx) % total
		relay := bucketRelay(validators, stakeByValidator, point)
		assignment[relay][shredIdx] = struct{}{}
	}
	return assignment, nil
}

func canonicalShredSeed(shredIdx int) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(shredIdx))
	h := sha256.Sum256(append([]byte("alpenglow-shred-relay:"), buf[:]...))
	return binary.BigEndian.Uint64(h[:8])
}

func bucketRelay(validators []idx.ValidatorID, stakeByValidator map[idx.ValidatorID]idx.StakeAmount, point uint64) idx.ValidatorID {
	var cumulative uint64
	for _, v := range validators {
		cumulative += uint64(stakeByValidator[v])
		if point < cumulative {
			return v
		}
	}
	return validators[len(validators)-1]
}

func sortedIDs(m map[idx.ValidatorID]idx.StakeAmount) []idx.ValidatorID {
	out := make([]idx.ValidatorID, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
