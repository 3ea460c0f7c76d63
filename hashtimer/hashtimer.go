// Package hashtimer implements the HashTimer: a 32-byte structure binding a
// microsecond timestamp to a BLAKE3 digest, the canonical temporal anchor
// and tie-breaker used throughout the round pipeline.
package hashtimer

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the total byte length of a HashTimer.
const Size = 32

// timePrefixLen is the number of bytes carrying the low 56 bits of time.
const timePrefixLen = 7

// digestLen is the number of BLAKE3 digest bytes retained.
const digestLen = Size - timePrefixLen

// Context tags bound into every derived HashTimer.
const (
	ContextTx    = "tx"
	ContextBlock = "block"
	ContextRound = "round"
)

// HashTimer is the 32-byte temporal anchor: 7 bytes of low-order time
// prefix followed by 25 bytes of BLAKE3 digest.
type HashTimer struct {
	TimePrefix [timePrefixLen]byte
	Digest     [digestLen]byte
}

// Derive computes a HashTimer deterministically from its inputs:
//
//	digest = BLAKE3(context || BE(timeUs) || domain || payload || nonce || nodeID)[0:25]
//
// time_prefix is the low 56 bits of timeUs, big-endian.
func Derive(context string, timeUs int64, domain, payload, nonce, nodeID []byte) HashTimer {
	var ht HashTimer

	var timeBytes [8]byte
	binary.BigEndian.PutUint64(timeBytes[:], uint64(timeUs))
	copy(ht.TimePrefix[:], timeBytes[1:]) // low 56 bits = bytes [1:8]

	h := blake3.New()
	h.Write([]byte(context))
	h.Write(timeBytes[:])
	h.Write(domain)
	h.Write(payload)
	h.Write(nonce)
	h.Write(nodeID)
	sum := h.Sum(nil)
	copy(ht.Digest[:], sum[:digestLen])

	return ht
}

// NowTx derives a transaction-context HashTimer.
func NowTx(timeUs int64, domain, payload, nonce, nodeID []byte) HashTimer {
	return Derive(ContextTx, timeUs, domain, payload, nonce, nodeID)
}

// NowBlock derives a block-context HashTimer.
func NowBlock(timeUs int64, domain, payload, nonce, nodeID []byte) HashTimer {
	return Derive(ContextBlock, timeUs, domain, payload, nonce, nodeID)
}

// NowRound derives a round-context HashTimer.
func NowRound(timeUs int64, domain, payload, nonce, nodeID []byte) HashTimer {
	return Derive(ContextRound, timeUs, domain, payload, nonce, nodeID)
}

// Bytes returns the 32-byte wire representation.
func (h HashTimer) Bytes() [Size]byte {
	var out [Size]byte
	copy(out[:timePrefixLen], h.TimePrefix[:])
	copy(out[timePrefixLen:], h.Digest[:])
	return out
}

// ToHex renders the HashTimer as 64 lowercase hex characters.
func (h HashTimer) ToHex() string {
	b := h.Bytes()
	return hex.EncodeToString(b[:])
}

// FromHex parses 64 lowercase hex characters into a HashTimer. Any other
// length is rejected.
func FromHex(s string) (HashTimer, error) {
	if len(s) != Size*2 {
		return HashTimer{}, fmt.Errorf("hashtimer: invalid hex length %d, want %d", len(s), Size*2)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return HashTimer{}, fmt.Errorf("hashtimer: invalid hex: %w", err)
	}
	var ht HashTimer
	copy(ht.TimePrefix[:], raw[:timePrefixLen])
	copy(ht.Digest[:], raw[timePrefixLen:])
	return ht, nil
}

// Time reconstructs the microsecond timestamp from the time prefix, modulo
// 2^56 — it is only the low bits that HashTimer carries.
func (h HashTimer) Time() int64 {
	var full [8]byte
	copy(full[1:], h.TimePrefix[:])
	return int64(binary.BigEndian.Uint64(full[:]))
}

// Compare orders two HashTimers by TimePrefix then Digest — the single
// tie-breaker used for deterministic block/transaction ordering.
func Compare(a, b HashTimer) int {
	if c := compareBytes(a.TimePrefix[:], b.TimePrefix[:]); c != 0 {
		return c
	}
	return compareBytes(a.Digest[:], b.Digest[:])
}

func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// VerifyHashTimer checks an optional Ed25519 signature over the digest,
// used when HashTimers are used as externally-attributable attestations.
func VerifyHashTimer(h HashTimer, pubKey ed25519.PublicKey, signature []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pubKey, h.Digest[:], signature)
}
