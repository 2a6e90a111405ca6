// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import "github.com/luxfi/alpenglow/alpenglow"

// Result is the outcome of running every safety and liveness
// predicate against a single state (spec.md §4.5's Byzantine
// resilience composition: safety must hold unconditionally up to the
// 1/3-stake bound; liveness only needs to hold once GST has passed).
type Result struct {
	SafetyViolation error
	LivenessHolds   bool
}

// OK reports whether s passed every check this Result records.
func (r Result) OK() bool {
	return r.SafetyViolation == nil && r.LivenessHolds
}

// Verify runs the full safety suite unconditionally (it must never be
// violated regardless of how much stake is Byzantine or offline, as
// long as Byzantine stake stays under ByzantineThresholdBP) and the
// snapshot-local liveness suite, returning a combined Result.
func Verify(s *alpenglow.State) Result {
	return Result{
		SafetyViolation: VerifySafety(s),
		LivenessHolds:   VerifyLiveness(s),
	}
}

// WithinByzantineBound reports whether s's configured Byzantine stake
// stays under its ByzantineThresholdBP, the precondition every safety
// guarantee is stated relative to (spec.md §3 byzantine_threshold_bp).
func WithinByzantineBound(s *alpenglow.State) bool {
	return s.Cfg.ByzantineStake() < s.Cfg.StakeThreshold(s.Cfg.ByzantineThresholdBP)
}
