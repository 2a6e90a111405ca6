// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import "errors"

// Sentinel errors returned by the verifier's safety predicates when a
// violation is found (spec.md §4.5, §7 ErrProtocolViolation /
// ErrEquivocation / ErrInvalidCertificate kinds).
var (
	ErrDuplicateFinalization = errors.New("verifier: validator finalized two different blocks at the same slot")
	ErrChainMismatch         = errors.New("verifier: honest validators disagree on a finalized slot")
	ErrCertificateUnderStake = errors.New("verifier: certificate's recorded stake is below its type's threshold")
	ErrCertificateStakeLie   = errors.New("verifier: certificate's recorded stake does not match its voter set")
	ErrVoteEquivocation      = errors.New("verifier: an honest validator's observed votes equivocate")
)
