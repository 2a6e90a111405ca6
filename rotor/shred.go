// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rotor

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/luxfi/alpenglow/types"
)

// shredTag computes a content-derived integrity tag over
// (block_id, index, payload). Unlike crypto.PublicKey.Verify (a
// structural-only stand-in that cannot bind to content without a real
// PKI), this tag does detect payload tampering: any receiver that
// recomputes it from a shred's fields gets a different value if the
// payload changed, which is what the Invalid-shred Byzantine behavior
// (spec.md §4.2: "emits shred that fails signature... dropped at
// receiver") needs.
func shredTag(s types.Shred) []byte {
	h := sha256.New()
	h.Write(s.BlockID[:])
	var idxBuf [8]byte
	binary.BigEndian.PutUint64(idxBuf[:], uint64(s.Index))
	h.Write(idxBuf[:])
	h.Write(s.Payload)
	return h.Sum(nil)
}

// verifyShred reports whether s's signature matches its content tag.
func verifyShred(s types.Shred) bool {
	tag := shredTag(s)
	if len(s.Signature) != len(tag) {
		return false
	}
	for i := range tag {
		if tag[i] != s.Signature[i] {
			return false
		}
	}
	return true
}
