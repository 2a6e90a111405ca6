// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package alpenglow

import (
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/metrics"
	"github.com/luxfi/alpenglow/network"
	"github.com/luxfi/alpenglow/rotor"
	"github.com/luxfi/alpenglow/types"
	"github.com/luxfi/alpenglow/votor"
)

// EnabledActions enumerates a representative slice of the actions
// enabled in s (spec.md §4.4): AdvanceClock is always included;
// AdvanceSlot when its precondition holds; AdvanceView(v) for every
// honest validator whose timeout has expired; DeliverMessage/DropMessage
// for every in-flight network message. VotorAction/RotorAction/
// ByzantineAction variants are driven directly through
// ProposeAndDistribute, DeliverShredMessages and the votor.Validator
// and rotor.Store methods rather than enumerated here, since their
// enabling conditions are already checked by those methods' own
// precondition logic.
func (s *State) EnabledActions() []Action {
	actions := []Action{{Kind: AdvanceClockAction, Time: s.Clock + 1}}

	if s.CanAdvanceSlot() {
		actions = append(actions, Action{Kind: AdvanceSlotAction})
	}

	for id, v := range s.Votors {
		if s.Cfg.IsHonest(id) && v.TimeoutExpired() {
			actions = append(actions, Action{Kind: AdvanceViewAction, Validator: id})
		}
	}

	for _, msg := range s.Net.InFlight() {
		actions = append(actions, Action{Kind: DeliverMessageAction, MessageID: msg.ID})
		actions = append(actions, Action{Kind: DropMessageAction, MessageID: msg.ID})
	}

	return actions
}

// Apply executes a, producing the next state in place (spec.md §4.4:
// "each produces the next state deterministically"). Returns an error
// and leaves state unchanged if a's precondition does not hold
// (spec.md §7 propagation policy). Only AdvanceClock, AdvanceSlot,
// AdvanceView, DeliverMessage, DropMessage, PartitionNetwork and
// HealPartition actions are executed; for any other kind Apply returns
// nil and leaves state unchanged.
func (s *State) Apply(a Action) error {
	switch a.Kind {
	case AdvanceClockAction:
		s.AdvanceClock(a.Time)
		return nil
	case AdvanceSlotAction:
		if !s.AdvanceSlot() {
			return votor.ErrTimeoutNotExpired
		}
		return nil
	case AdvanceViewAction:
		return s.Votors[a.Validator].AdvanceView()
	case DeliverMessageAction:
		return s.Net.DeliverMessage(a.MessageID)
	case DropMessageAction:
		if err := s.Net.DropMessage(a.MessageID); err != nil {
			return err
		}
		if s.Metrics != nil {
			s.Metrics.IncDroppedMessages()
		}
		return nil
	case PartitionNetworkAction:
		return s.Net.PartitionNetwork(a.Subset, s.Clock)
	case HealPartitionAction:
		return s.Net.HealPartition(a.Subset, s.Clock)
	}
	return nil
}

// ProposeAndDistribute runs a leader's full Rotor dissemination step
// for slot: it proposes a block (if validator leader is the leader
// for the validator's current view), shreds it, assigns shreds to
// relays by stake, and delivers each relay its assigned shreds plus a
// direct copy for the leader itself. This is the orchestration spec.md
// §3 "Data flow" describes ("a leader proposes a block; Rotor shreds
// and distributes") collapsed into one synchronous helper, since the
// underlying per-message network plumbing is already exercised
// directly by the network package's own tests.
func (s *State) ProposeAndDistribute(leader idx.ValidatorID, slot idx.SlotNumber, transactions [][]byte, data []byte) (types.Block, error) {
	v := s.Votors[leader]
	blk, err := v.ProposeBlock(slot, transactions, data)
	if err != nil {
		return types.Block{}, err
	}

	if err := s.Rotors[leader].DeliverBlock(blk); err != nil && err != rotor.ErrAlreadyDelivered {
		return types.Block{}, err
	}

	shreds, err := rotor.ShredBlock(blk, s.Cfg.ErasureK, s.Cfg.ErasureN)
	if err != nil {
		return types.Block{}, err
	}
	assignment, err := rotor.AssignPiecesToRelays(s.Cfg.StakeByValidator, len(shreds))
	if err != nil {
		return types.Block{}, err
	}

	for relay, indices := range assignment {
		if relay == leader || s.Cfg.IsOffline(relay) {
			continue
		}
		var relayShreds []types.Shred
		for i := range indices {
			relayShreds = append(relayShreds, shreds[i-1])
		}
		s.Net.Send(leader, ptr(relay), network.KindShred, relayShreds, s.Clock)
	}
	return blk, nil
}

// DeliverShredMessages moves every in-flight shred message into its
// recipient's Rotor store, attempting reconstruction/delivery for any
// validator that now has enough shreds, then has every relay not
// configured offline re-broadcast the shreds it holds to its partition and routes that
// second wave too. A leader's initial assignment unicasts each shred
// to exactly one relay (spec.md §4.2: "assigns roughly stake[v]/
// total_stake of the N indices to relay v"), so a validator that was
// assigned none of its own can only ever reach K distinct shreds
// through this relay re-broadcast — without it, Rotor's relay
// tolerance and Delivery guarantee (spec.md §4.2/§8) never hold for
// non-relay validators.
func (s *State) DeliverShredMessages() {
	s.routeInFlightShredMessages()
	s.relayRebroadcastHeldShreds()
	s.routeInFlightShredMessages()

	if s.Metrics != nil {
		var total int
		for _, r := range s.Rotors {
			total += metrics.TotalBandwidthUsage(r.BandwidthUsageByRelay())
		}
		s.Metrics.SetBandwidthInUse(total)
	}
}

// routeInFlightShredMessages delivers every in-flight shred message
// (unicast or broadcast) into its recipients' inboxes, stores the
// shreds, and attempts reconstruction/delivery for any validator that
// now holds enough of them.
func (s *State) routeInFlightShredMessages() {
	for _, msg := range s.Net.InFlight() {
		if msg.Kind != network.KindShred {
			continue
		}
		_ = s.Net.DeliverMessage(msg.ID)
	}
	for validator := range s.Rotors {
		for _, msg := range s.Net.Inbox(validator) {
			shreds, ok := msg.Payload.([]types.Shred)
			if !ok || len(shreds) == 0 {
				continue
			}
			blockID := shreds[0].BlockID
			_ = s.Rotors[validator].RelayShreds(msg.From, blockID, s.CurrentSlot, shreds)
			if s.Rotors[validator].CanReconstruct(blockID) {
				if _, done := s.Rotors[validator].Delivered(blockID); !done {
					if payload, err := s.Rotors[validator].AttemptReconstruction(blockID); err == nil {
						blk := s.reconstructBlockHeader(blockID, payload)
						_ = s.Rotors[validator].DeliverBlock(blk)
					}
				}
			}
		}
	}
}

// relayRebroadcastHeldShreds has every reachable relay broadcast the
// shreds it currently holds, for every block it holds any for, to the
// rest of its partition (spec.md §4.2: relays propagate what they
// receive rather than only ever unicasting to the validator they were
// originally assigned). Only offline validators are excluded here,
// matching AdvanceClock's convention of gating on IsOffline alone: a
// validator configured Byzantine still relays shreds normally by
// default, since this model represents specific Byzantine behaviors
// (withholding a vote, withholding a shred, equivocating) as explicit
// test-driven actions rather than a blanket switch on cfg.IsByzantine.
func (s *State) relayRebroadcastHeldShreds() {
	for id, r := range s.Rotors {
		if s.Cfg.IsOffline(id) {
			continue
		}
		for _, sc := range r.ShredCounts() {
			held := r.HeldShreds(sc.BlockID)
			if len(held) == 0 {
				continue
			}
			s.Net.Broadcast(id, network.KindShred, held, s.Clock)
		}
	}
}

// reconstructBlockHeader recovers the block header for a
// reconstructed block id from any validator that already delivered
// it, so Rotor.DeliverBlock can record the block by value rather than
// only its payload bytes. A real deployment would carry the header
// alongside the shreds (e.g. in shred index 0's metadata); this model
// instead looks it up from whichever validator first had it, since
// every honest proposer keeps its own copy from ProposeAndDistribute.
func (s *State) reconstructBlockHeader(blockID idx.BlockHash, payload []byte) types.Block {
	for _, r := range s.Rotors {
		if blk, ok := r.Delivered(blockID); ok {
			return blk
		}
	}
	return types.Block{Hash: blockID, Data: payload, Slot: s.CurrentSlot}
}

func ptr(v idx.ValidatorID) *idx.ValidatorID { return &v }
