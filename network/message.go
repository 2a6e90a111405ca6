// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package network implements the partially synchronous message-
// delivery abstraction (spec.md §4.3): in-flight message queues, a
// partition set, and GST/Δ-bounded delivery scheduling. Grounded on
// this codebase's networking/router.ChainRouter queued-dispatch shape,
// adapted from a live transport into a model-checkable in-memory
// value the executor advances directly, since spec.md places the
// actual wire transport out of scope.
package network

import (
	"github.com/luxfi/alpenglow/idx"
)

// Kind discriminates the payload a Message carries.
type Kind uint8

const (
	KindVote Kind = iota
	KindCertificate
	KindShred
	KindRepairRequest
	KindRepairResponse
	KindBlock
)

// Message is an in-flight unit of communication between two
// validators (or a broadcast, when To is nil).
type Message struct {
	ID       uint64
	From     idx.ValidatorID
	To       *idx.ValidatorID // nil means broadcast to the sender's partition
	Kind     Kind
	Payload  any
	SentAt   idx.TimeValue
	Deadline idx.TimeValue // SentAt + Δ once past GST; zero before GST
}
