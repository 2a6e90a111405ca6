// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/binary"

	"github.com/luxfi/ids"
	"github.com/luxfi/validators"

	"github.com/luxfi/alpenglow/idx"
)

// nodeIDFor deterministically encodes v into the ids.NodeID identifier
// github.com/luxfi/validators.Set operates over, by placing v's
// integer value in the low 8 bytes and leaving the rest zero.
func nodeIDFor(v idx.ValidatorID) ids.NodeID {
	var n ids.NodeID
	b := n[:]
	binary.BigEndian.PutUint64(b[len(b)-8:], uint64(v))
	return n
}

// validatorIDFor inverts nodeIDFor.
func validatorIDFor(n ids.NodeID) idx.ValidatorID {
	b := n[:]
	return idx.ValidatorID(binary.BigEndian.Uint64(b[len(b)-8:]))
}

// ValidatorSet is a github.com/luxfi/validators.Set view over a
// Config's stake distribution: the membership, enumeration, and
// stake-weighted sampling concern that package is built for, rather
// than Config re-deriving it ad hoc over a plain stdlib map.
type ValidatorSet struct {
	cfg Config
}

var _ validators.Set = ValidatorSet{}

// AsValidatorSet returns a validators.Set view of c.
func (c Config) AsValidatorSet() ValidatorSet { return ValidatorSet{cfg: c} }

// Has implements validators.Set.
func (s ValidatorSet) Has(n ids.NodeID) bool {
	_, ok := s.cfg.StakeByValidator[validatorIDFor(n)]
	return ok
}

// Len implements validators.Set.
func (s ValidatorSet) Len() int { return len(s.cfg.StakeByValidator) }

// List implements validators.Set.
func (s ValidatorSet) List() []validators.Validator {
	out := make([]validators.Validator, 0, len(s.cfg.StakeByValidator))
	for _, v := range s.cfg.ValidatorIDs() {
		out = append(out, &validators.ValidatorImpl{
			NodeID:   nodeIDFor(v),
			LightVal: uint64(s.cfg.StakeByValidator[v]),
		})
	}
	return out
}

// Light implements validators.Set, returning the set's total stake.
func (s ValidatorSet) Light() uint64 { return uint64(s.cfg.TotalStake) }

// Sample implements validators.Set, returning size validators chosen
// by WeightedPick, seeded from each draw's position so the result
// stays deterministic across every honest validator rather than
// reaching for the package's own internal randomness source (spec.md
// §4.1/§4.2 require identical leader/relay selection everywhere).
func (s ValidatorSet) Sample(size int) ([]ids.NodeID, error) {
	if size <= 0 {
		return nil, nil
	}
	out := make([]ids.NodeID, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, nodeIDFor(s.WeightedPick(uint64(i))))
	}
	return out, nil
}

// WeightedPick walks the cumulative stake distribution (ascending
// ValidatorID order, for determinism) and returns the validator whose
// bucket contains point mod total stake. Grounded on this codebase's
// sampler.weightedWithoutReplacement cumulative-weight bucket walk;
// this is the concrete stake-weighted sampling behind Sample, used
// directly by votor.ComputeLeaderForView for leader selection.
func (s ValidatorSet) WeightedPick(point uint64) idx.ValidatorID {
	ids := s.cfg.ValidatorIDs()
	if len(ids) == 0 {
		return 0
	}
	total := uint64(s.cfg.TotalStake)
	if total == 0 {
		return ids[0]
	}
	bucket := point % total
	var cumulative uint64
	for _, v := range ids {
		cumulative += uint64(s.cfg.StakeByValidator[v])
		if bucket < cumulative {
			return v
		}
	}
	return ids[len(ids)-1]
}
