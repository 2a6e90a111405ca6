// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/luxfi/alpenglow/idx"
)

// CertType distinguishes the three certificate kinds spec.md §3
// defines.
type CertType uint8

const (
	// Fast certifies >= 80% stake committed to a block.
	Fast CertType = iota
	// Slow certifies >= 60% stake committed to a block.
	Slow
	// SkipCert certifies skip votes carrying >= 60% of total stake for a view.
	SkipCert
)

func (t CertType) String() string {
	switch t {
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	case SkipCert:
		return "skip"
	default:
		return "unknown"
	}
}

// Certificate is an aggregated quorum of votes proving a block (Fast,
// Slow) or a skip decision (SkipCert) has majority-weighted support.
// A Certificate value must only ever be constructed once its stake
// has been checked against the type's threshold (spec.md I4); see
// votor.TryGenerateCertificate.
type Certificate struct {
	Slot                idx.SlotNumber
	View                idx.ViewNumber
	BlockHash           idx.BlockHash
	CertType            CertType
	Voters              map[idx.ValidatorID]struct{}
	Stake               idx.StakeAmount
	AggregatedSignature []byte
}

// VoterList returns the certificate's signer set as a sorted slice,
// useful for deterministic TLA+ export and test assertions.
func (c Certificate) VoterList() []idx.ValidatorID {
	out := maps.Keys(c.Voters)
	slices.Sort(out)
	return out
}
