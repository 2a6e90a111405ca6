// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package alpenglow composes Votor and Rotor into the global protocol
// state and its action executor (spec.md §3 AlpenglowState, §4.4
// Action executor). Grounded on this codebase's top-level consensus
// engine composition style: a single owning value holds every
// per-validator substate and the shared network, and a deterministic
// executor is the only thing that mutates it.
package alpenglow

import (
	"github.com/luxfi/log"

	"github.com/luxfi/alpenglow/config"
	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/metrics"
	"github.com/luxfi/alpenglow/network"
	"github.com/luxfi/alpenglow/rotor"
	"github.com/luxfi/alpenglow/types"
	"github.com/luxfi/alpenglow/votor"
)

// State is the composite AlpenglowState: clock, current slot,
// per-validator Votor/Rotor states, the shared network, and
// finalized-by-slot bookkeeping. Each Votor/Rotor value is exclusively
// owned by its validator; the only cross-validator interaction is
// through Net (spec.md §5 Ownership).
type State struct {
	Clock       idx.TimeValue
	CurrentSlot idx.SlotNumber
	Cfg         config.Config

	Votors map[idx.ValidatorID]*votor.Validator
	Rotors map[idx.ValidatorID]*rotor.Store
	Net    *network.Network

	// Metrics is nil unless WithMetrics was supplied; every call site
	// that touches it guards on nil, so metrics stay a strictly
	// optional collaborator.
	Metrics *metrics.Collector

	log  log.Logger
	sink events.Sink
}

// Option configures a State at construction.
type Option func(*State)

// WithLogger sets the structured logger shared by every constructed
// sub-component; defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(s *State) { s.log = l }
}

// WithEventSink sets the event sink shared by every constructed
// sub-component; defaults to events.NoopSink{}.
func WithEventSink(sink events.Sink) Option {
	return func(s *State) { s.sink = sink }
}

// WithMetrics wires a metrics.Collector as both the event sink (it
// implements events.Sink) and the target of the direct bookkeeping
// calls (dropped-message and bandwidth accounting) the event stream
// alone can't drive.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *State) {
		s.Metrics = c
		s.sink = c
	}
}

// New constructs the composite state: one Votor and one Rotor per
// configured validator, plus a shared Network.
func New(cfg config.Config, opts ...Option) *State {
	s := &State{
		CurrentSlot: idx.FirstSlot,
		Cfg:         cfg,
		Votors:      make(map[idx.ValidatorID]*votor.Validator),
		Rotors:      make(map[idx.ValidatorID]*rotor.Store),
		log:         log.NewNoOpLogger(),
		sink:        events.NoopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Net = network.New(cfg.ValidatorIDs(), cfg.GST, cfg.MaxNetworkDelay, network.WithLogger(s.log), network.WithEventSink(s.sink))
	for _, id := range cfg.ValidatorIDs() {
		var vopts []votor.Option
		vopts = append(vopts, votor.WithLogger(s.log), votor.WithEventSink(s.sink))
		if cfg.IsByzantine(id) {
			vopts = append(vopts, votor.WithByzantine())
		}
		v := votor.NewValidator(id, cfg, vopts...)
		s.Votors[id] = v
		s.Rotors[id] = rotor.NewStore(id, cfg.ErasureK, cfg.ErasureN, v, rotor.WithLogger(s.log), rotor.WithEventSink(s.sink))
	}
	return s
}

// FinalizedBlock returns the block finalized at slot according to
// validator id's local view, if any.
func (s *State) FinalizedBlock(id idx.ValidatorID, slot idx.SlotNumber) (types.Block, bool) {
	v, ok := s.Votors[id]
	if !ok {
		return types.Block{}, false
	}
	return v.FinalizedAt(slot)
}

// AdvanceClock moves the global clock to t and propagates it to the
// local clock of every validator not configured offline, Byzantine
// ones included (spec.md §5: "every validator's
// local time tracks the global clock"). Always enabled (spec.md §4.4).
func (s *State) AdvanceClock(t idx.TimeValue) {
	if t <= s.Clock {
		return
	}
	s.Clock = t
	for id, v := range s.Votors {
		if s.Cfg.IsOffline(id) {
			continue
		}
		v.AdvanceClock(t)
	}
}

// CanAdvanceSlot reports whether CurrentSlot has a finalized block
// (from any honest validator's perspective, since I1/I2 guarantee
// agreement) and CurrentSlot < MaxSlot (spec.md §4.4 AdvanceSlot
// precondition).
func (s *State) CanAdvanceSlot() bool {
	if s.CurrentSlot >= s.Cfg.MaxSlot {
		return false
	}
	for id, v := range s.Votors {
		if s.Cfg.IsHonest(id) {
			if _, ok := v.FinalizedAt(s.CurrentSlot); ok {
				return true
			}
		}
	}
	return false
}

// AdvanceSlot moves to the next slot once CanAdvanceSlot holds.
func (s *State) AdvanceSlot() bool {
	if !s.CanAdvanceSlot() {
		return false
	}
	s.CurrentSlot = s.CurrentSlot.Next()
	s.sink.Emit(events.Event{Kind: events.SlotAdvanced, Timestamp: s.Clock, NewSlot: s.CurrentSlot})
	return true
}
