// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package alpenglow

import (
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// ActionKind discriminates the closed Action sum spec.md §4.4/§9
// names: {AdvanceClock, AdvanceSlot, AdvanceView, VotorAction,
// RotorAction, NetworkAction, ByzantineAction}.
type ActionKind uint8

const (
	AdvanceClockAction ActionKind = iota
	AdvanceSlotAction
	AdvanceViewAction
	ProposeBlockAction
	CastNotarVoteAction
	SubmitSkipVoteAction
	RelayShredsAction
	AttemptReconstructionAction
	RequestRepairAction
	DeliverMessageAction
	DropMessageAction
	PartitionNetworkAction
	HealPartitionAction
	ByzantineWithholdShredsAction
	ByzantineInvalidShredAction
	ByzantineEquivocateAction
)

// Action is one tagged member of the closed action sum. Only the
// fields relevant to Kind are populated.
type Action struct {
	Kind      ActionKind
	Validator idx.ValidatorID
	Time      idx.TimeValue

	Block     *types.Block
	BlockHash idx.BlockHash
	MessageID uint64
	Subset    []idx.ValidatorID
	Relays    map[idx.ValidatorID]map[int]struct{}
}
