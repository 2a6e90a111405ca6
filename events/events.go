// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the tagged-union event stream Alpenglow
// emits for external monitors (spec.md §6). The core never depends on
// its subscribers; it only emits. Grounded on this codebase's
// handler/notifier shape (networking/handler/notifier.go), adapted
// from a single-method notifier into a small closed event-variant
// sum, since spec.md names exactly five event kinds.
package events

import (
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// Kind discriminates the Event union.
type Kind uint8

const (
	BlockFinalized Kind = iota
	CertificateGenerated
	ViewAdvanced
	SlotAdvanced
	NetworkPartitionChanged
)

func (k Kind) String() string {
	switch k {
	case BlockFinalized:
		return "BlockFinalized"
	case CertificateGenerated:
		return "CertificateGenerated"
	case ViewAdvanced:
		return "ViewAdvanced"
	case SlotAdvanced:
		return "SlotAdvanced"
	case NetworkPartitionChanged:
		return "NetworkPartition"
	default:
		return "Unknown"
	}
}

// Event is the closed tagged union emitted at action boundaries. Only
// the fields relevant to Kind are populated.
type Event struct {
	Kind      Kind
	Timestamp idx.TimeValue

	// BlockFinalized
	Block       *types.Block
	Certificate *types.Certificate

	// ViewAdvanced
	Validator idx.ValidatorID
	FromView  idx.ViewNumber
	ToView    idx.ViewNumber
	Reason    string

	// SlotAdvanced
	NewSlot idx.SlotNumber

	// NetworkPartitionChanged
	Subset  []idx.ValidatorID
	Created bool
}

// Sink receives emitted events. Consumers subscribe by implementing
// Sink; the core does not depend on any particular subscriber.
type Sink interface {
	Emit(Event)
}

// NoopSink discards every event; the default when no sink is wired.
type NoopSink struct{}

// Emit implements Sink.
func (NoopSink) Emit(Event) {}

// Recorder is an in-memory Sink used by tests to assert on the event
// stream produced by a run.
type Recorder struct {
	Events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Emit implements Sink.
func (r *Recorder) Emit(e Event) { r.Events = append(r.Events, e) }

// OfKind returns the subsequence of recorded events matching kind.
func (r *Recorder) OfKind(kind Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
