// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"github.com/luxfi/alpenglow/crypto"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// TryGenerateCertificate aggregates the Commit votes received for
// (view, blockHash) and, if their stake meets a certificate
// threshold, emits the certificate: Fast at >= 80% of total stake,
// else Slow at >= 60%. Fast is preferred when both hold (spec.md
// §4.1). Returns ok=false if neither threshold is met yet
// (ErrInsufficientStake is not an error here — a certificate simply
// does not exist yet, which is a normal, expected state).
func (v *Validator) TryGenerateCertificate(view idx.ViewNumber, blockHash idx.BlockHash) (types.Certificate, bool) {
	voters := make(map[idx.ValidatorID]struct{})
	var stake idx.StakeAmount
	var sigs []crypto.Signature
	for voter, vote := range v.receivedVotes[view] {
		if vote.BlockHash != blockHash {
			continue
		}
		voters[voter] = struct{}{}
		stake += v.Cfg.StakeByValidator[voter]
		sigs = append(sigs, decodeSignature(vote.Signature))
	}

	fastThreshold := v.Cfg.StakeThreshold(v.Cfg.FastPathThresholdBP)
	slowThreshold := v.Cfg.StakeThreshold(v.Cfg.SlowPathThresholdBP)

	var certType types.CertType
	switch {
	case stake >= fastThreshold:
		certType = types.Fast
	case stake >= slowThreshold:
		certType = types.Slow
	default:
		return types.Certificate{}, false
	}

	cert := types.Certificate{
		Slot:                blockSlotForView(v, view, blockHash),
		View:                view,
		BlockHash:           blockHash,
		CertType:            certType,
		Voters:              voters,
		Stake:               stake,
		AggregatedSignature: crypto.AggregateSignatures(sigs).Bytes(),
	}

	if !certificateExists(v.generatedCertificates[view], blockHash, certType) {
		v.generatedCertificates[view] = append(v.generatedCertificates[view], cert)
		v.sink.Emit(certGeneratedEvent(v, cert))
		v.tryFinalize(cert)
	}
	return cert, true
}

// tryGenerateSkipCertificate aggregates Skip votes for view and, if
// their stake meets SkipThresholdBP of total stake, emits a Skip
// certificate (spec.md §3: "60% of skip votes").
func (v *Validator) tryGenerateSkipCertificate(view idx.ViewNumber) []types.Certificate {
	bucket := v.skipVotes[view]
	if len(bucket) == 0 {
		return nil
	}
	var castStake idx.StakeAmount
	voters := make(map[idx.ValidatorID]struct{})
	var sigs []crypto.Signature
	for voter, vote := range bucket {
		voters[voter] = struct{}{}
		castStake += v.Cfg.StakeByValidator[voter]
		sigs = append(sigs, decodeSignature(vote.Signature))
	}

	threshold := v.Cfg.StakeThreshold(v.Cfg.SkipThresholdBP)
	if castStake < threshold {
		return nil
	}

	cert := types.Certificate{
		View:                view,
		BlockHash:           idx.ZeroHash,
		CertType:            types.SkipCert,
		Voters:              voters,
		Stake:               castStake,
		AggregatedSignature: crypto.AggregateSignatures(sigs).Bytes(),
	}
	if certificateExists(v.generatedCertificates[view], idx.ZeroHash, types.SkipCert) {
		return nil
	}
	v.generatedCertificates[view] = append(v.generatedCertificates[view], cert)
	v.sink.Emit(certGeneratedEvent(v, cert))
	return []types.Certificate{cert}
}

func certificateExists(certs []types.Certificate, hash idx.BlockHash, certType types.CertType) bool {
	for _, c := range certs {
		if c.BlockHash == hash && c.CertType == certType {
			return true
		}
	}
	return false
}

func decodeSignature(b []byte) crypto.Signature {
	// Vote signatures are produced by crypto.SecretKey.Sign, which
	// always emits crypto.SignatureSize bytes; a shorter slice (e.g.
	// from a malformed Byzantine vote) decodes to the zero signature,
	// which simply contributes nothing distinguishing to the
	// aggregate rather than panicking.
	var sig crypto.Signature
	if len(b) != crypto.SignatureSize {
		return sig
	}
	return crypto.SignatureFromBytes(b)
}

// blockSlotForView recovers the slot a (view, blockHash) certificate
// applies to from the locally known delivered block, falling back to
// 0 if the block is not yet locally known (the certificate can still
// be generated and recorded; finalization itself requires the block
// to be available locally, per spec.md §4.1 "Finalization").
func blockSlotForView(v *Validator, _ idx.ViewNumber, blockHash idx.BlockHash) idx.SlotNumber {
	if blk, ok := v.deliveredBlocks[blockHash]; ok {
		return blk.Slot
	}
	return 0
}
