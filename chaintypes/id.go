// Package chaintypes holds the data model shared across the round
// pipeline: identifiers, transactions, block headers, participation
// records, chain state, and the finalization artifacts a round produces.
package chaintypes

import "encoding/hex"

// IDLen is the byte length of every content-addressed identifier in the
// system (BlockID, transaction ID, validator ID bytes).
const IDLen = 32

// ID is a 32-byte content-addressed identifier. It plays the role the
// teacher's github.com/luxfi/ids.ID plays, reimplemented locally because
// that module is unreachable from this standalone workspace (see
// DESIGN.md).
type ID [IDLen]byte

// String renders the ID as lowercase hex.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value, used as the genesis
// sentinel parent.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Less gives IDs a total order for deterministic sorting (lexicographic on
// the raw bytes).
func (id ID) Less(other ID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// BlockID identifies a block: BLAKE3 over its canonical header.
type BlockID = ID

// RoundID is a monotone round counter starting at 1 (0 is reserved for
// genesis).
type RoundID uint64
