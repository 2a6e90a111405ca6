// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rotor

import (
	"container/heap"

	"golang.org/x/exp/maps"

	"github.com/luxfi/log"

	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
)

// DeliveryNotifier is the Votor-side hook Rotor calls once a block is
// reconstructed locally (spec.md §4.2 AttemptReconstruction: "notifies
// Votor, triggering a Commit vote").
type DeliveryNotifier interface {
	NotifyDelivered(types.Block)
}

// Store is one validator's RotorState: shred store, reconstruction
// cache, repair state, delivered-block set, and a bandwidth meter
// (spec.md §3 RotorState). Grounded on this codebase's poll.Set
// per-vote bookkeeping shape, generalized from vote tallying to shred
// tallying.
type Store struct {
	ID idx.ValidatorID
	K  int
	N  int

	BandwidthLimit int

	shredsByBlock   map[idx.BlockHash]map[int]types.Shred
	deliveredBlocks map[idx.BlockHash]types.Block
	reconstructed   map[idx.BlockHash][]byte
	repairsInFlight map[idx.BlockHash]types.RepairRequest
	bandwidthUsage  map[idx.ValidatorID]int
	blockSlots      map[idx.BlockHash]idx.SlotNumber
	pending         priorityQueue

	notifier DeliveryNotifier
	log      log.Logger
	sink     events.Sink
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger sets the structured logger; defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithEventSink sets the event sink; defaults to events.NoopSink{}.
func WithEventSink(sink events.Sink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithBandwidthLimit sets the per-relay bandwidth budget, in shreds
// relayed per validator (spec.md §4.2 Bandwidth accounting).
func WithBandwidthLimit(limit int) Option {
	return func(s *Store) { s.BandwidthLimit = limit }
}

// NewStore constructs an empty RotorState for validator id.
func NewStore(id idx.ValidatorID, k, n int, notifier DeliveryNotifier, opts ...Option) *Store {
	s := &Store{
		ID:              id,
		K:               k,
		N:               n,
		BandwidthLimit:  1 << 30,
		shredsByBlock:   make(map[idx.BlockHash]map[int]types.Shred),
		deliveredBlocks: make(map[idx.BlockHash]types.Block),
		reconstructed:   make(map[idx.BlockHash][]byte),
		repairsInFlight: make(map[idx.BlockHash]types.RepairRequest),
		bandwidthUsage:  make(map[idx.ValidatorID]int),
		blockSlots:      make(map[idx.BlockHash]idx.SlotNumber),
		notifier:        notifier,
		log:             log.NewNoOpLogger(),
		sink:            events.NoopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	heap.Init(&s.pending)
	return s
}

// Delivered reports whether blockID has been delivered to this
// validator.
func (s *Store) Delivered(blockID idx.BlockHash) (types.Block, bool) {
	b, ok := s.deliveredBlocks[blockID]
	return b, ok
}

// CanReconstruct reports whether at least K distinct valid shreds for
// blockID have been received (spec.md §4.2 RelayShreds precondition).
func (s *Store) CanReconstruct(blockID idx.BlockHash) bool {
	return len(s.shredsByBlock[blockID]) >= s.K
}

// RelayShreds stores shreds received from sender for a block known to
// belong to slot, dropping any whose content tag fails verification
// (Invalid-shred Byzantine behavior; spec.md §4.2). Returns
// ErrInvalidShredSignature when every supplied shred failed
// verification and nothing was stored, so a caller can distinguish
// that from an ordinary duplicate/already-known batch. Enforces
// sender's bandwidth budget: a sender that has already relayed
// BandwidthLimit shreds to this validator is refused further shreds.
func (s *Store) RelayShreds(sender idx.ValidatorID, blockID idx.BlockHash, slot idx.SlotNumber, shreds []types.Shred) error {
	bucket, ok := s.shredsByBlock[blockID]
	if !ok {
		bucket = make(map[int]types.Shred)
		s.shredsByBlock[blockID] = bucket
	}
	s.blockSlots[blockID] = slot

	inserted := false
	sawInvalidSignature := false
	sawValidSignature := false
	for _, sh := range shreds {
		if sh.Index < 1 || sh.Index > s.N {
			continue
		}
		if !verifyShred(sh) {
			sawInvalidSignature = true
			continue
		}
		sawValidSignature = true
		if _, exists := bucket[sh.Index]; exists {
			continue
		}
		if s.bandwidthUsage[sender] >= s.BandwidthLimit {
			return ErrBandwidthExceeded
		}
		s.bandwidthUsage[sender]++
		bucket[sh.Index] = sh
		inserted = true
	}
	if inserted {
		heap.Push(&s.pending, pendingBlock{blockID: blockID, slot: slot})
		return nil
	}
	if sawInvalidSignature && !sawValidSignature {
		return ErrInvalidShredSignature
	}
	return nil
}

// AttemptReconstruction tries to rebuild blockID from received
// shreds. On success it caches the reconstructed payload and, once
// the caller supplies the matching Block header via DeliverBlock,
// notifies Votor.
func (s *Store) AttemptReconstruction(blockID idx.BlockHash) ([]byte, error) {
	bucket := s.shredsByBlock[blockID]
	shreds := make([]types.Shred, 0, len(bucket))
	for _, sh := range bucket {
		shreds = append(shreds, sh)
	}
	payload, err := ReconstructBlock(shreds, s.K, s.N)
	if err != nil {
		return nil, err
	}
	s.reconstructed[blockID] = payload
	return payload, nil
}

// DeliverBlock finalizes delivery of blk once its payload has been
// reconstructed (or received directly, e.g. the proposer's own copy),
// adding it to delivered_blocks and notifying Votor (spec.md §4.2
// AttemptReconstruction success path).
func (s *Store) DeliverBlock(blk types.Block) error {
	if _, already := s.deliveredBlocks[blk.Hash]; already {
		return ErrAlreadyDelivered
	}
	s.deliveredBlocks[blk.Hash] = blk
	if s.notifier != nil {
		s.notifier.NotifyDelivered(blk)
	}
	return nil
}

// RequestRepair builds a RepairRequest for the indices still missing
// for blockID (spec.md §4.2 "broadcasts missing indices").
func (s *Store) RequestRepair(blockID idx.BlockHash, now idx.TimeValue) types.RepairRequest {
	have := s.shredsByBlock[blockID]
	var missing []int
	for i := 1; i <= s.N; i++ {
		if _, ok := have[i]; !ok {
			missing = append(missing, i)
		}
	}
	req := types.RepairRequest{
		Requester:      s.ID,
		BlockID:        blockID,
		MissingIndices: missing,
		Timestamp:      now,
	}
	s.repairsInFlight[blockID] = req
	return req
}

// RespondToRepair returns only the shreds this store holds whose
// index was listed as missing in req (spec.md §4.2: "sends only those
// indices the request listed").
func (s *Store) RespondToRepair(req types.RepairRequest) []types.Shred {
	bucket := s.shredsByBlock[req.BlockID]
	out := make([]types.Shred, 0, len(req.MissingIndices))
	for _, missingIdx := range req.MissingIndices {
		if sh, ok := bucket[missingIdx]; ok {
			out = append(out, sh)
		}
	}
	return out
}

// NextPendingBlock pops the oldest-slot block with shreds still
// awaiting processing, implementing the "prioritize shreds by slot,
// older first" bandwidth policy (spec.md §4.2).
func (s *Store) NextPendingBlock() (idx.BlockHash, bool) {
	for s.pending.Len() > 0 {
		item := heap.Pop(&s.pending).(pendingBlock)
		if !s.CanReconstruct(item.blockID) {
			continue
		}
		if _, done := s.reconstructed[item.blockID]; done {
			continue
		}
		return item.blockID, true
	}
	return idx.BlockHash{}, false
}

// BandwidthUsage returns how many shreds sender has relayed to this
// validator so far.
func (s *Store) BandwidthUsage(sender idx.ValidatorID) int {
	return s.bandwidthUsage[sender]
}

// BlockShredCount pairs a block with how many distinct shred indices
// this store holds for it.
type BlockShredCount struct {
	BlockID idx.BlockHash
	Count   int
}

// HeldShreds returns a copy of the shreds this store currently holds
// for blockID, for a relay that wants to re-broadcast what it has
// (spec.md §4.2 relay tolerance: a relay that only unicasts its own
// assigned shred to one recipient can't satisfy validators that
// weren't assigned anything; re-broadcasting what every relay holds
// is what lets them collectively reach K).
func (s *Store) HeldShreds(blockID idx.BlockHash) []types.Shred {
	bucket := s.shredsByBlock[blockID]
	out := make([]types.Shred, 0, len(bucket))
	for _, sh := range bucket {
		out = append(out, sh)
	}
	return out
}

// ShredCounts returns, for every block this store holds at least one
// shred for, how many distinct shred indices it has (spec.md §3
// RotorState "per-block shred store"). Returned as a slice rather
// than a map keyed by idx.BlockHash, since that key type has no
// defined JSON text encoding for callers (e.g. export.ToTLAString)
// that need a JSON-marshalable shape.
func (s *Store) ShredCounts() []BlockShredCount {
	out := make([]BlockShredCount, 0, len(s.shredsByBlock))
	for blockID, bucket := range s.shredsByBlock {
		out = append(out, BlockShredCount{BlockID: blockID, Count: len(bucket)})
	}
	return out
}

// DeliveredBlocks returns the set of block hashes delivered to this
// validator (spec.md §3 RotorState "delivered_blocks set").
func (s *Store) DeliveredBlocks() []idx.BlockHash {
	return maps.Keys(s.deliveredBlocks)
}

// BandwidthUsageByRelay returns a copy of the per-relay bandwidth
// usage map (spec.md §3 RotorState "bandwidth_usage counter").
func (s *Store) BandwidthUsageByRelay() map[idx.ValidatorID]int {
	out := make(map[idx.ValidatorID]int, len(s.bandwidthUsage))
	for relay, n := range s.bandwidthUsage {
		out[relay] = n
	}
	return out
}

type pendingBlock struct {
	blockID idx.BlockHash
	slot    idx.SlotNumber
}

// priorityQueue orders pendingBlock entries by ascending slot (older
// first), a container/heap min-heap.
type priorityQueue []pendingBlock

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].slot < q[j].slot }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x interface{}) { *q = append(*q, x.(pendingBlock)) }
func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
