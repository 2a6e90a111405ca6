// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package export serializes an alpenglow.State to and from the JSON
// wire format spec.md §6 calls "to_tla_string" — the authoritative
// format for cross-validation against an external model-checker.
// Grounded on this codebase's vms/types JSON helpers and the general
// convention (config/runtime.go, codec/codec.go) of naming every field
// explicitly rather than deriving the wire shape by reflection, so the
// format stays stable independent of internal struct layout.
package export

import (
	"encoding/json"

	"golang.org/x/exp/maps"

	"github.com/luxfi/alpenglow/alpenglow"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/rotor"
	"github.com/luxfi/alpenglow/types"
	"github.com/luxfi/alpenglow/votor"
)

// VotorStateView is the exported shape of one validator's VotorState
// (spec.md §3), named field-by-field.
type VotorStateView struct {
	CurrentView           idx.ViewNumber                         `json:"currentView"`
	CurrentTime           idx.TimeValue                          `json:"currentTime"`
	TimeoutExpiry         idx.TimeValue                          `json:"timeoutExpiry"`
	IsByzantine           bool                                   `json:"isByzantine"`
	FinalizedChain        []types.Block                          `json:"finalizedChain"`
	VotedBlocks           map[idx.ViewNumber]idx.BlockHash       `json:"votedBlocks"`
	SkippedViews          []idx.ViewNumber                       `json:"skippedViews"`
	ReceivedVotes         map[idx.ViewNumber][]types.Vote        `json:"receivedVotes"`
	SkipVotes             map[idx.ViewNumber][]types.Vote        `json:"skipVotes"`
	GeneratedCertificates map[idx.ViewNumber][]types.Certificate `json:"generatedCertificates"`
}

// RotorStateView is the exported shape of one validator's RotorState
// (spec.md §3), named field-by-field.
type RotorStateView struct {
	K                    int                     `json:"k"`
	N                    int                     `json:"n"`
	BandwidthLimit       int                     `json:"bandwidthLimit"`
	ShredCounts          []rotor.BlockShredCount `json:"shredCounts"`
	DeliveredBlocks      []idx.BlockHash         `json:"deliveredBlocks"`
	BandwidthUsageByPeer map[idx.ValidatorID]int `json:"bandwidthUsageByPeer"`
}

// ConfigView is the exported shape of the run's Config (spec.md §3
// Config), named field-by-field.
type ConfigView struct {
	ValidatorCount       int                                  `json:"validatorCount"`
	TotalStake           idx.StakeAmount                      `json:"totalStake"`
	StakeByValidator     map[idx.ValidatorID]idx.StakeAmount `json:"stakeByValidator"`
	FastPathThresholdBP  uint32                               `json:"fastPathThresholdBp"`
	SlowPathThresholdBP  uint32                               `json:"slowPathThresholdBp"`
	SkipThresholdBP      uint32                               `json:"skipThresholdBp"`
	ByzantineThresholdBP uint32                               `json:"byzantineThresholdBp"`
	LeaderWindowSize     int                                  `json:"leaderWindowSize"`
	BaseTimeout          idx.TimeValue                        `json:"baseTimeout"`
	MaxNetworkDelay      idx.TimeValue                        `json:"maxNetworkDelay"`
	GST                  idx.TimeValue                        `json:"gst"`
	ErasureK             int                                  `json:"erasureK"`
	ErasureN             int                                  `json:"erasureN"`
	MaxSlot              idx.SlotNumber                       `json:"maxSlot"`
}

// ExportedState is the full, explicit wire representation of an
// alpenglow.State snapshot. Field names and the required-key set
// match spec.md §6 exactly: clock, currentSlot, votorStates,
// rotorStates, finalizedBlocks, byzantineValidators,
// offlineValidators, networkPartitions, config.
type ExportedState struct {
	Clock               idx.TimeValue                      `json:"clock"`
	CurrentSlot         idx.SlotNumber                     `json:"currentSlot"`
	VotorStates         map[idx.ValidatorID]VotorStateView `json:"votorStates"`
	RotorStates         map[idx.ValidatorID]RotorStateView `json:"rotorStates"`
	FinalizedBlocks     map[idx.SlotNumber]types.Block     `json:"finalizedBlocks"`
	ByzantineValidators []idx.ValidatorID                  `json:"byzantineValidators"`
	OfflineValidators   []idx.ValidatorID                  `json:"offlineValidators"`
	NetworkPartitions   [][]idx.ValidatorID                `json:"networkPartitions"`
	Config              ConfigView                         `json:"config"`
}

// BuildExportedState captures an explicit, named-field snapshot of s.
// This is the only place in the module that reaches across every
// package's exported accessors to assemble a single flattened view;
// every other package stays ignorant of the export format.
func BuildExportedState(s *alpenglow.State) ExportedState {
	out := ExportedState{
		Clock:               s.Clock,
		CurrentSlot:         s.CurrentSlot,
		VotorStates:         make(map[idx.ValidatorID]VotorStateView, len(s.Votors)),
		RotorStates:         make(map[idx.ValidatorID]RotorStateView, len(s.Rotors)),
		FinalizedBlocks:     make(map[idx.SlotNumber]types.Block),
		NetworkPartitions:   s.Net.Partitions(),
		Config:              buildConfigView(s),
	}

	for id := range s.Cfg.StakeByValidator {
		if s.Cfg.IsByzantine(id) {
			out.ByzantineValidators = append(out.ByzantineValidators, id)
		}
		if s.Cfg.IsOffline(id) {
			out.OfflineValidators = append(out.OfflineValidators, id)
		}
	}

	for id, v := range s.Votors {
		out.VotorStates[id] = buildVotorView(v)
		for _, blk := range v.FinalizedChain {
			if _, already := out.FinalizedBlocks[blk.Slot]; !already {
				out.FinalizedBlocks[blk.Slot] = blk
			}
		}
	}
	for id, r := range s.Rotors {
		out.RotorStates[id] = RotorStateView{
			K:                    r.K,
			N:                    r.N,
			BandwidthLimit:       r.BandwidthLimit,
			ShredCounts:          r.ShredCounts(),
			DeliveredBlocks:      r.DeliveredBlocks(),
			BandwidthUsageByPeer: r.BandwidthUsageByRelay(),
		}
	}
	return out
}

func buildVotorView(v *votor.Validator) VotorStateView {
	result := VotorStateView{
		CurrentView:           v.CurrentView,
		CurrentTime:           v.CurrentTime,
		TimeoutExpiry:         v.TimeoutExpiry,
		IsByzantine:           v.IsByzantine,
		FinalizedChain:        v.FinalizedChain,
		VotedBlocks:           v.VotedBlocks(),
		ReceivedVotes:         make(map[idx.ViewNumber][]types.Vote),
		SkipVotes:             make(map[idx.ViewNumber][]types.Vote),
		GeneratedCertificates: make(map[idx.ViewNumber][]types.Certificate),
	}
	for skippedView, voted := range v.VotedSkipViews() {
		if voted {
			result.SkippedViews = append(result.SkippedViews, skippedView)
		}
	}
	for view := idx.FirstView; view <= v.CurrentView; view++ {
		if votes := v.ReceivedVotes(view); len(votes) > 0 {
			result.ReceivedVotes[view] = flattenVotes(votes)
		}
		if votes := v.SkipVotes(view); len(votes) > 0 {
			result.SkipVotes[view] = flattenVotes(votes)
		}
		if certs := v.Certificates(view); len(certs) > 0 {
			result.GeneratedCertificates[view] = certs
		}
	}
	return result
}

func flattenVotes(m map[idx.ValidatorID]types.Vote) []types.Vote {
	return maps.Values(m)
}

func buildConfigView(s *alpenglow.State) ConfigView {
	cfg := s.Cfg
	return ConfigView{
		ValidatorCount:       cfg.ValidatorCount,
		TotalStake:           cfg.TotalStake,
		StakeByValidator:     cfg.StakeByValidator,
		FastPathThresholdBP:  cfg.FastPathThresholdBP,
		SlowPathThresholdBP:  cfg.SlowPathThresholdBP,
		SkipThresholdBP:      cfg.SkipThresholdBP,
		ByzantineThresholdBP: cfg.ByzantineThresholdBP,
		LeaderWindowSize:     cfg.LeaderWindowSize,
		BaseTimeout:          cfg.BaseTimeout,
		MaxNetworkDelay:      cfg.MaxNetworkDelay,
		GST:                  cfg.GST,
		ErasureK:             cfg.ErasureK,
		ErasureN:             cfg.ErasureN,
		MaxSlot:              cfg.MaxSlot,
	}
}

// ToTLAString serializes s into the canonical JSON wire format
// (spec.md §6 to_tla_string).
func ToTLAString(s *alpenglow.State) ([]byte, error) {
	return json.Marshal(BuildExportedState(s))
}

// FromTLAString parses the canonical JSON wire format back into an
// ExportedState snapshot view. It does not reconstruct a live,
// executable alpenglow.State — the format is a read-only projection
// for cross-validation, not a checkpoint/restore mechanism (spec.md
// §6: "authoritative for cross-validation with an external
// model-checker"), so the round-trip law spec.md §8 requires is
// ExportedState -> JSON -> ExportedState, not JSON -> live State.
func FromTLAString(data []byte) (ExportedState, error) {
	var out ExportedState
	if err := json.Unmarshal(data, &out); err != nil {
		return ExportedState{}, err
	}
	return out, nil
}
