// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import (
	"github.com/luxfi/alpenglow/alpenglow"
	"github.com/luxfi/alpenglow/idx"
	"github.com/luxfi/alpenglow/types"
	"github.com/luxfi/alpenglow/votor"
)

// EventualProgress checks that some honest validator has finalized at
// least one block by the last snapshot in trace, provided the trace's
// final clock value is already past GST + c*Delta (spec.md §4.5
// "some block is finalized in every run past GST + C·Δ"). Returns
// true vacuously if the trace has not yet run that far — the
// predicate only constrains runs long enough to judge.
func EventualProgress(trace []*alpenglow.State, c int) bool {
	if len(trace) == 0 {
		return true
	}
	last := trace[len(trace)-1]
	cutoff := last.Cfg.GST + idx.TimeValue(c)*last.Cfg.MaxNetworkDelay
	if last.Clock < cutoff {
		return true
	}
	for id, v := range last.Votors {
		if last.Cfg.IsHonest(id) && len(v.FinalizedChain) > 0 {
			return true
		}
	}
	return false
}

// certificateTypeFor finds the certificate type that finalized hash,
// searching every view this validator has recorded certificates for.
func certificateTypeFor(v *votor.Validator, hash idx.BlockHash) (types.CertType, bool) {
	for view := idx.FirstView; view <= v.CurrentView; view++ {
		for _, cert := range v.Certificates(view) {
			if cert.BlockHash == hash && cert.CertType != types.SkipCert {
				return cert.CertType, true
			}
		}
	}
	return 0, false
}

// FastPathCompletion checks that whenever responsive (honest) stake
// is at least the fast-path threshold, every honest validator holds a
// Fast certificate for every block it finalized, whether or not a Slow
// certificate finalized that block first (spec.md §4.5: "when
// responsive honest stake >= 80%, fast certificates are generated").
func FastPathCompletion(s *alpenglow.State) bool {
	if s.Cfg.HonestStake() < s.Cfg.StakeThreshold(s.Cfg.FastPathThresholdBP) {
		return true // precondition not met; vacuously satisfied
	}
	for id, v := range s.Votors {
		if !s.Cfg.IsHonest(id) {
			continue
		}
		for _, blk := range v.FinalizedChain {
			fast := false
			for view := idx.FirstView; view <= v.CurrentView && !fast; view++ {
				for _, cert := range v.Certificates(view) {
					if cert.BlockHash == blk.Hash && cert.CertType == types.Fast {
						fast = true
					}
				}
			}
			if !fast {
				return false
			}
		}
	}
	return true
}

// BoundedFinalization checks that every block any honest validator
// finalized after GST was finalized within Δ (fast path) or 2Δ (slow
// path) of its proposal timestamp (spec.md §4.5).
func BoundedFinalization(s *alpenglow.State) bool {
	for id, v := range s.Votors {
		if !s.Cfg.IsHonest(id) {
			continue
		}
		for slot, latency := range v.LatencyMetrics {
			blk, ok := v.FinalizedAt(slot)
			if !ok || blk.Timestamp < s.Cfg.GST {
				continue
			}
			bound := 2 * s.Cfg.MaxNetworkDelay
			if certType, found := certificateTypeFor(v, blk.Hash); found && certType == types.Fast {
				bound = s.Cfg.MaxNetworkDelay
			}
			if latency > bound {
				return false
			}
		}
	}
	return true
}

// ViewProgress checks that no honest validator's current view is the
// same in the later snapshot as in the earlier one, once both
// snapshots are past GST and at least one full timeout apart (spec.md
// §4.5: "no validator stalls indefinitely at one view after GST").
func ViewProgress(earlier, later *alpenglow.State) bool {
	if earlier.Clock < earlier.Cfg.GST || later.Clock <= earlier.Clock {
		return true
	}
	for id, v := range later.Votors {
		if !later.Cfg.IsHonest(id) {
			continue
		}
		ev, ok := earlier.Votors[id]
		if !ok {
			continue
		}
		if later.Clock-earlier.Clock >= votor.Timeout(earlier.Cfg, ev.CurrentView) && v.CurrentView == ev.CurrentView {
			return false
		}
	}
	return true
}

// VerifyLiveness runs the snapshot-local liveness predicates (those
// that need only one state) against s.
func VerifyLiveness(s *alpenglow.State) bool {
	return FastPathCompletion(s) && BoundedFinalization(s)
}
