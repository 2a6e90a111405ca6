// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/luxfi/log"

	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
)

// Network is the global message-delivery state: in-flight messages,
// per-validator inboxes, the partition set, and drop accounting
// (spec.md §3 AlpenglowState "in-flight messages", "dropped-message
// counter"). A single Network value is shared by the executor across
// all validators; this is the one place in the module where state is
// not exclusively owned per-validator, matching spec.md §3's
// AlpenglowState composition (the network itself, not any validator,
// owns message routing).
type Network struct {
	GST             idx.TimeValue
	MaxNetworkDelay idx.TimeValue

	universe     map[idx.ValidatorID]struct{}
	nextID       uint64
	inFlight     map[uint64]Message
	inboxes      map[idx.ValidatorID][]Message
	partitions   []map[idx.ValidatorID]struct{}
	droppedCount int

	log  log.Logger
	sink events.Sink
}

// Option configures a Network at construction.
type Option func(*Network)

// WithLogger sets the structured logger; defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(n *Network) { n.log = l }
}

// WithEventSink sets the event sink; defaults to events.NoopSink{}.
func WithEventSink(s events.Sink) Option {
	return func(n *Network) { n.sink = s }
}

// New constructs an empty Network over validators, with no
// partitions: every validator implicitly shares the default
// (unpartitioned) partition.
func New(validators []idx.ValidatorID, gst, delta idx.TimeValue, opts ...Option) *Network {
	universe := make(map[idx.ValidatorID]struct{}, len(validators))
	for _, v := range validators {
		universe[v] = struct{}{}
	}
	n := &Network{
		GST:             gst,
		MaxNetworkDelay: delta,
		universe:        universe,
		inFlight:        make(map[uint64]Message),
		inboxes:         make(map[idx.ValidatorID][]Message),
		log:             log.NewNoOpLogger(),
		sink:            events.NoopSink{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send enqueues msg as in-flight, computing its delivery deadline once
// past GST (spec.md §4.3: "after GST, every message... delivered
// within a bounded delay Δ"; before GST, messages "may be arbitrarily
// delayed", so no deadline is attached).
func (n *Network) Send(from idx.ValidatorID, to *idx.ValidatorID, kind Kind, payload any, now idx.TimeValue) Message {
	n.nextID++
	msg := Message{ID: n.nextID, From: from, To: to, Kind: kind, Payload: payload, SentAt: now}
	if now >= n.GST {
		msg.Deadline = now + n.MaxNetworkDelay
	}
	n.inFlight[msg.ID] = msg
	return msg
}

// Broadcast enqueues a single in-flight message addressed to every
// validator in from's partition (spec.md §4.3: "Broadcasts are
// delivered to every validator in the sender's partition").
func (n *Network) Broadcast(from idx.ValidatorID, kind Kind, payload any, now idx.TimeValue) Message {
	return n.Send(from, nil, kind, payload, now)
}

// DeliverMessage moves msg from the in-flight set into its
// recipient's inbox (spec.md §4.3). A unicast across a partition
// boundary is not eligible for delivery: it stays in-flight rather
// than being silently discarded, so it can be delivered once a
// HealPartition reunites sender and recipient. Broadcasts always
// deliver to every validator currently co-partitioned with the
// sender.
func (n *Network) DeliverMessage(id uint64) error {
	msg, ok := n.inFlight[id]
	if !ok {
		return ErrMessageNotInFlight
	}

	if msg.To != nil {
		if !n.samePartition(msg.From, *msg.To) {
			return nil
		}
		delete(n.inFlight, id)
		n.inboxes[*msg.To] = append(n.inboxes[*msg.To], msg)
		return nil
	}

	delete(n.inFlight, id)
	for _, v := range n.partitionMembers(msg.From) {
		if v == msg.From {
			continue
		}
		n.inboxes[v] = append(n.inboxes[v], msg)
	}
	return nil
}

// DropMessage removes msg from the in-flight set and increments the
// dropped counter (spec.md §4.3).
func (n *Network) DropMessage(id uint64) error {
	if _, ok := n.inFlight[id]; !ok {
		return ErrMessageNotInFlight
	}
	delete(n.inFlight, id)
	n.droppedCount++
	return nil
}

// DroppedCount returns the number of messages dropped so far.
func (n *Network) DroppedCount() int { return n.droppedCount }

// InFlight returns the messages currently awaiting delivery or drop.
func (n *Network) InFlight() []Message {
	out := make([]Message, 0, len(n.inFlight))
	for _, m := range n.inFlight {
		out = append(out, m)
	}
	return out
}

// Inbox returns and clears the messages delivered to validator v.
func (n *Network) Inbox(v idx.ValidatorID) []Message {
	msgs := n.inboxes[v]
	n.inboxes[v] = nil
	return msgs
}

// PartitionNetwork creates a new partition containing exactly subset;
// those validators can thereafter only exchange messages with each
// other (spec.md §4.3).
func (n *Network) PartitionNetwork(subset []idx.ValidatorID, now idx.TimeValue) error {
	members := make(map[idx.ValidatorID]struct{}, len(subset))
	for _, v := range subset {
		if n.partitionIndex(v) >= 0 {
			return ErrOverlappingPartition
		}
		members[v] = struct{}{}
	}
	n.partitions = append(n.partitions, members)
	n.sink.Emit(events.Event{Kind: events.NetworkPartitionChanged, Timestamp: now, Subset: append([]idx.ValidatorID(nil), subset...), Created: true})
	return nil
}

// HealPartition removes the partition exactly matching subset,
// restoring its members to the default (unpartitioned) pool.
func (n *Network) HealPartition(subset []idx.ValidatorID, now idx.TimeValue) error {
	target := make(map[idx.ValidatorID]struct{}, len(subset))
	for _, v := range subset {
		target[v] = struct{}{}
	}
	for i, p := range n.partitions {
		if sameSet(p, target) {
			n.partitions = append(n.partitions[:i], n.partitions[i+1:]...)
			n.sink.Emit(events.Event{Kind: events.NetworkPartitionChanged, Timestamp: now, Subset: append([]idx.ValidatorID(nil), subset...), Created: false})
			return nil
		}
	}
	return ErrUnknownPartition
}

// samePartition reports whether a and b can currently exchange
// messages: either they belong to the same explicit partition, or
// neither belongs to any explicit partition (the default pool).
func (n *Network) samePartition(a, b idx.ValidatorID) bool {
	ia, ib := n.partitionIndex(a), n.partitionIndex(b)
	return ia == ib
}

// partitionMembers returns every validator co-partitioned with v,
// including v itself: either v's explicit partition, or the default
// pool of every validator not claimed by any explicit partition.
func (n *Network) partitionMembers(v idx.ValidatorID) []idx.ValidatorID {
	if i := n.partitionIndex(v); i >= 0 {
		return maps.Keys(n.partitions[i])
	}
	out := make([]idx.ValidatorID, 0, len(n.universe))
	for m := range n.universe {
		if n.partitionIndex(m) < 0 {
			out = append(out, m)
		}
	}
	return out
}

// Partitions returns the current explicit partitions as validator-ID
// slices (spec.md §3 "network partitions (set of disjoint validator
// subsets)"), for export/inspection.
func (n *Network) Partitions() [][]idx.ValidatorID {
	out := make([][]idx.ValidatorID, 0, len(n.partitions))
	for _, p := range n.partitions {
		members := maps.Keys(p)
		slices.Sort(members)
		out = append(out, members)
	}
	return out
}

func (n *Network) partitionIndex(v idx.ValidatorID) int {
	for i, p := range n.partitions {
		if _, ok := p[v]; ok {
			return i
		}
	}
	return -1
}

func sameSet(a map[idx.ValidatorID]struct{}, b map[idx.ValidatorID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if _, ok := b[v]; !ok {
			return false
		}
	}
	return true
}
