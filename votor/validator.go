// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package votor implements the per-validator consensus state machine:
// view progression, vote casting, certificate aggregation, adaptive
// timeouts, and hash-seeded leader selection (spec.md §4.1). Grounded
// on this codebase's poll.Set / poll.Poll vote-tallying-with-early-
// termination shape (poll/poll.go) and protocol/wave's confidence-
// threshold state machine, generalized from a single binary/multi-ary
// preference into Alpenglow's Fast/Slow/Skip certificate types.
package votor

import (
	"github.com/luxfi/log"

	"github.com/luxfi/alpenglow/config"
	"github.com/luxfi/alpenglow/crypto"
	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// Validator is one validator's consensus state (spec.md §3
// VotorState). Exclusively owned by its validator's execution context
// — no field here is ever shared across validators.
type Validator struct {
	ID          idx.ValidatorID
	Cfg         config.Config
	IsByzantine bool

	vrfSecret crypto.SecretKey
	vrfPublic crypto.PublicKey

	CurrentView   idx.ViewNumber
	CurrentTime   idx.TimeValue
	TimeoutExpiry idx.TimeValue

	FinalizedChain  []types.Block
	FinalizedBySlot map[idx.SlotNumber]types.Block
	LatencyMetrics  map[idx.SlotNumber]idx.TimeValue

	// votedCommit/votedSkip track this validator's own emitted votes,
	// enforcing I5 (non-equivocation) on the votes it is about to cast.
	votedCommit map[idx.ViewNumber]idx.BlockHash
	votedSkip   map[idx.ViewNumber]bool

	// receivedVotes/skipVotes record votes received from any
	// validator (honest or Byzantine), keyed by view then voter, so a
	// redelivered vote is an idempotent no-op (spec.md §8 Idempotence).
	receivedVotes map[idx.ViewNumber]map[idx.ValidatorID]types.Vote
	skipVotes     map[idx.ViewNumber]map[idx.ValidatorID]types.Vote

	generatedCertificates map[idx.ViewNumber][]types.Certificate

	// deliveredBlocks mirrors the subset of rotor's delivered-block set
	// this validator has been notified about; a Commit vote may only
	// be cast for a block present here (spec.md CastNotarVote
	// precondition).
	deliveredBlocks map[idx.BlockHash]types.Block

	log  log.Logger
	sink events.Sink
}

// Option configures a Validator at construction.
type Option func(*Validator)

// WithLogger sets the structured logger; defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(v *Validator) { v.log = l }
}

// WithEventSink sets the event sink; defaults to events.NoopSink{}.
func WithEventSink(s events.Sink) Option {
	return func(v *Validator) { v.sink = s }
}

// WithByzantine marks this validator as Byzantine. Byzantine behavior
// is driven externally (spec.md §4.4 ByzantineAction); this flag only
// affects how the executor treats the validator's actions, not the
// internal bookkeeping here.
func WithByzantine() Option {
	return func(v *Validator) { v.IsByzantine = true }
}

// NewValidator constructs a fresh VotorState for id, seeded with a
// deterministic VRF key pair derived from id so that model-checking
// runs are reproducible.
func NewValidator(id idx.ValidatorID, cfg config.Config, opts ...Option) *Validator {
	seed := []byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)}
	sk, pk := crypto.KeyPairFromSeed(seed)

	v := &Validator{
		ID:                    id,
		Cfg:                   cfg,
		vrfSecret:             sk,
		vrfPublic:             pk,
		CurrentView:           idx.FirstView,
		FinalizedBySlot:       make(map[idx.SlotNumber]types.Block),
		LatencyMetrics:        make(map[idx.SlotNumber]idx.TimeValue),
		votedCommit:           make(map[idx.ViewNumber]idx.BlockHash),
		votedSkip:             make(map[idx.ViewNumber]bool),
		receivedVotes:         make(map[idx.ViewNumber]map[idx.ValidatorID]types.Vote),
		skipVotes:             make(map[idx.ViewNumber]map[idx.ValidatorID]types.Vote),
		generatedCertificates: make(map[idx.ViewNumber][]types.Certificate),
		deliveredBlocks:       make(map[idx.BlockHash]types.Block),
		log:                   log.NewNoOpLogger(),
		sink:                  events.NoopSink{},
	}
	v.TimeoutExpiry = Timeout(cfg, v.CurrentView)
	for _, opt := range opts {
		opt(v)
	}
	if cfg.IsByzantine(id) {
		v.IsByzantine = true
	}
	return v
}

// PublicKey returns this validator's VRF/signing public key.
func (v *Validator) PublicKey() crypto.PublicKey { return v.vrfPublic }

// ChainTip returns the hash of the last finalized block, or the zero
// hash if nothing has been finalized yet (genesis parent).
func (v *Validator) ChainTip() idx.BlockHash {
	if len(v.FinalizedChain) == 0 {
		return idx.ZeroHash
	}
	return v.FinalizedChain[len(v.FinalizedChain)-1].Hash
}

// ReceivedVotes returns a copy of the Commit votes received for view,
// keyed by voter (spec.md §3 received_votes).
func (v *Validator) ReceivedVotes(view idx.ViewNumber) map[idx.ValidatorID]types.Vote {
	return copyVoteMap(v.receivedVotes[view])
}

// SkipVotes returns a copy of the Skip votes received for view, keyed
// by voter (spec.md §3 skip_votes).
func (v *Validator) SkipVotes(view idx.ViewNumber) map[idx.ValidatorID]types.Vote {
	return copyVoteMap(v.skipVotes[view])
}

// Certificates returns the certificates generated while processing
// view.
func (v *Validator) Certificates(view idx.ViewNumber) []types.Certificate {
	out := make([]types.Certificate, len(v.generatedCertificates[view]))
	copy(out, v.generatedCertificates[view])
	return out
}

// NotifyDelivered records that rotor has reconstructed and delivered
// blk locally. Called by the cross-layer integration (spec.md §4.2
// AttemptReconstruction: "notifies Votor").
func (v *Validator) NotifyDelivered(blk types.Block) {
	v.deliveredBlocks[blk.Hash] = blk
}

// Delivered reports whether hash has been delivered locally.
func (v *Validator) Delivered(hash idx.BlockHash) (types.Block, bool) {
	b, ok := v.deliveredBlocks[hash]
	return b, ok
}

// AdvanceClock moves the validator's local clock forward to t,
// tracking the global clock (spec.md §5 "every validator's local time
// tracks the global clock").
func (v *Validator) AdvanceClock(t idx.TimeValue) {
	if t > v.CurrentTime {
		v.CurrentTime = t
	}
}

// TimeoutExpired reports whether the view timeout has expired,
// inclusive at the boundary (spec.md §8 boundary behavior: "Timeout
// at exactly timeout_expiry: considered expired").
func (v *Validator) TimeoutExpired() bool {
	return v.CurrentTime >= v.TimeoutExpiry
}

// VotedBlocks returns a copy of the Commit-vote choice this validator
// has made per view so far (spec.md §3 VotorState "voted_blocks").
func (v *Validator) VotedBlocks() map[idx.ViewNumber]idx.BlockHash {
	out := make(map[idx.ViewNumber]idx.BlockHash, len(v.votedCommit))
	for view, hash := range v.votedCommit {
		out[view] = hash
	}
	return out
}

// VotedSkipViews returns the set of views this validator has already
// cast a Skip vote for.
func (v *Validator) VotedSkipViews() map[idx.ViewNumber]bool {
	out := make(map[idx.ViewNumber]bool, len(v.votedSkip))
	for view, voted := range v.votedSkip {
		out[view] = voted
	}
	return out
}

func copyVoteMap(m map[idx.ValidatorID]types.Vote) map[idx.ValidatorID]types.Vote {
	out := make(map[idx.ValidatorID]types.Vote, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
