// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package idx defines the core identifiers shared by every Alpenglow
// component: validator identity, slot/view counters, stake amounts,
// clock ticks, and the opaque block digest.
package idx

import (
	"fmt"

	"github.com/luxfi/ids"
)

// BlockHash is an opaque, fixed-size digest. It is a re-export of
// github.com/luxfi/ids.ID, which gives constant-time equality and a
// stable byte representation for free instead of hand-rolling one.
type BlockHash = ids.ID

// ZeroHash is the hash carried by Skip votes, which reference no block.
var ZeroHash = ids.Empty

// ValidatorID is a small integer identifying a validator within the
// configured validator set.
type ValidatorID int

// String implements fmt.Stringer.
func (v ValidatorID) String() string {
	return fmt.Sprintf("validator-%d", int(v))
}

// SlotNumber is a monotone counter, >= 1, identifying a logical time
// bucket in which at most one block is finalized.
type SlotNumber uint64

// Next returns the following slot.
func (s SlotNumber) Next() SlotNumber { return s + 1 }

// ViewNumber is a monotone counter, >= 1, identifying an intra-slot
// round of the protocol.
type ViewNumber uint64

// Next returns the following view.
func (v ViewNumber) Next() ViewNumber { return v + 1 }

// StakeAmount is a quantity of stake, always non-negative.
type StakeAmount uint64

// TimeValue is a global clock tick. Clock advances are total-ordered.
type TimeValue uint64

// Before reports whether t happens strictly before o.
func (t TimeValue) Before(o TimeValue) bool { return t < o }

const (
	// FirstSlot is the smallest valid slot number.
	FirstSlot SlotNumber = 1
	// FirstView is the smallest valid view number.
	FirstView ViewNumber = 1
)
