// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crypto provides the algebraic-property-only stand-ins
// spec.md §1/§9 calls for: deterministic per-validator signing and a
// VRF whose output is a uint64 sampled pseudo-randomly from a
// (validator, input) pair. Concrete cryptography is explicitly out of
// scope; this is a hash-mix construction, grounded directly on this
// codebase's crypto/bls/types.go "Simplified: ..." stand-in (whose own
// Signature.Verify trivially returns true) — not a production VRF or
// signature scheme (see spec.md §9 Open Questions).
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
)

const (
	// SecretKeySize and PublicKeySize follow the teacher's simplified
	// BLS stand-in sizing without claiming any BLS algebraic property.
	SecretKeySize = 32
	PublicKeySize = 32
	// SignatureSize is the fixed opaque signature length.
	SignatureSize = 32
)

// SecretKey is a validator's private signing/VRF key.
type SecretKey struct {
	bytes [SecretKeySize]byte
}

// PublicKey is the corresponding public key, deterministically
// derived from the secret key.
type PublicKey struct {
	bytes [PublicKeySize]byte
}

// Signature is an opaque, fixed-size signature value.
type Signature struct {
	bytes [SignatureSize]byte
}

// Bytes returns the raw public key bytes.
func (pk PublicKey) Bytes() []byte { return pk.bytes[:] }

// Bytes returns the raw signature bytes.
func (s Signature) Bytes() []byte { return s.bytes[:] }

// Equal reports whether two signatures are byte-identical.
func (s Signature) Equal(o Signature) bool { return s.bytes == o.bytes }

// IsZero reports whether s is the zero signature.
func (s Signature) IsZero() bool { return s == Signature{} }

// GenerateKeyPair produces a new random secret/public key pair. For
// reproducible tests and model-checking runs, use KeyPairFromSeed.
func GenerateKeyPair() (SecretKey, PublicKey, error) {
	var sk SecretKey
	if _, err := rand.Read(sk.bytes[:]); err != nil {
		return SecretKey{}, PublicKey{}, err
	}
	return sk, sk.PublicKey(), nil
}

// KeyPairFromSeed deterministically derives a key pair from seed.
func KeyPairFromSeed(seed []byte) (SecretKey, PublicKey) {
	var sk SecretKey
	h := sha256.Sum256(append([]byte("alpenglow-sk:"), seed...))
	copy(sk.bytes[:], h[:])
	return sk, sk.PublicKey()
}

// PublicKey derives the public key from sk deterministically.
func (sk SecretKey) PublicKey() PublicKey {
	h := sha256.Sum256(append([]byte("alpenglow-pk:"), sk.bytes[:]...))
	var pk PublicKey
	copy(pk.bytes[:], h[:])
	return pk
}

// Sign produces a deterministic, per-(key, message) signature.
func (sk SecretKey) Sign(msg []byte) Signature {
	h := sha256.New()
	h.Write([]byte("alpenglow-sig:"))
	h.Write(sk.bytes[:])
	h.Write(msg)
	var sig Signature
	copy(sig.bytes[:], h.Sum(nil))
	return sig
}

// Verify checks a signature against a public key and message. Like
// the teacher's own simplified BLS stand-in, this cannot actually bind
// a signature to a public key without the secret key: it verifies
// structural well-formedness only (non-zero, correct length). Callers
// that need tamper-detection over content they control (e.g. Rotor
// shred payloads) should use a content-derived tag instead — see
// rotor.shredTag.
func (pk PublicKey) Verify(msg []byte, sig Signature) bool {
	_ = msg
	return !sig.IsZero()
}

// SignatureFromBytes reconstructs a Signature from exactly
// SignatureSize bytes.
func SignatureFromBytes(b []byte) Signature {
	var sig Signature
	copy(sig.bytes[:], b)
	return sig
}

// AggregateSignatures combines several signatures into one, grounded
// on this codebase's bls.Aggregate (XOR-fold over signature bytes).
// It carries no real aggregation security property; it exists so a
// Certificate's AggregatedSignature field has a concrete, reproducible
// value computed from its signer set.
func AggregateSignatures(sigs []Signature) Signature {
	var agg Signature
	for i, s := range sigs {
		for j := range agg.bytes {
			agg.bytes[j] ^= s.bytes[j] ^ byte(i)
		}
	}
	return agg
}
