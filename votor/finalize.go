// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package votor

import (
	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// tryFinalize appends cert's block to the finalized chain when the
// block is locally available and has not already been finalized
// (spec.md §4.1 Finalization: a Fast or Slow certificate plus local
// block availability finalizes the block at its slot). Skip
// certificates never finalize a block and are not passed here.
func (v *Validator) tryFinalize(cert types.Certificate) {
	if cert.CertType == types.SkipCert {
		return
	}
	blk, ok := v.deliveredBlocks[cert.BlockHash]
	if !ok {
		return
	}
	if _, already := v.FinalizedBySlot[blk.Slot]; already {
		return
	}

	v.FinalizedChain = append(v.FinalizedChain, blk)
	v.FinalizedBySlot[blk.Slot] = blk
	if v.CurrentTime >= blk.Timestamp {
		v.LatencyMetrics[blk.Slot] = v.CurrentTime - blk.Timestamp
	}

	v.sink.Emit(events.Event{
		Kind:        events.BlockFinalized,
		Timestamp:   v.CurrentTime,
		Block:       &blk,
		Certificate: &cert,
		Validator:   v.ID,
	})
}

// certGeneratedEvent builds the CertificateGenerated event for cert.
func certGeneratedEvent(v *Validator, cert types.Certificate) events.Event {
	c := cert
	return events.Event{
		Kind:        events.CertificateGenerated,
		Timestamp:   v.CurrentTime,
		Certificate: &c,
		Validator:   v.ID,
	}
}

// FinalizedAt returns the block finalized at slot, if any.
func (v *Validator) FinalizedAt(slot idx.SlotNumber) (types.Block, bool) {
	b, ok := v.FinalizedBySlot[slot]
	return b, ok
}
