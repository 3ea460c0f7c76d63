package chaintypes

import (
	"fmt"

	"github.com/dmrl789/ippan-core/canon"
	"github.com/dmrl789/ippan-core/hashtimer"
)

// BlockHeader is the content-addressed header of a block. Parent IDs must
// always refer to strictly lower rounds; dagstore.Store.Insert rejects a
// block with a same-round (or later-round) parent with ErrSameRoundParent.
type BlockHeader struct {
	ID         BlockID             `json:"id"`
	ParentIDs  []BlockID           `json:"parent_ids"`
	Round      RoundID             `json:"round"`
	Creator    ID                  `json:"creator"`
	HashTimer  hashtimer.HashTimer `json:"hashtimer"`
	MerkleRoot [32]byte            `json:"merkle_root"`
}

// Block is a header plus the transactions it carries.
type Block struct {
	Header       BlockHeader   `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

type canonicalHeaderFields struct {
	ParentIDs  []BlockID           `json:"parent_ids"`
	Round      RoundID             `json:"round"`
	Creator    ID                  `json:"creator"`
	HashTimer  hashtimer.HashTimer `json:"hashtimer"`
	MerkleRoot [32]byte            `json:"merkle_root"`
}

// ComputeBlockID derives BlockID = BLAKE3(canonical header bytes excluding
// the id field itself).
func ComputeBlockID(h BlockHeader) (BlockID, error) {
	hash, err := canon.HashCanonical(canonicalHeaderFields{
		ParentIDs:  h.ParentIDs,
		Round:      h.Round,
		Creator:    h.Creator,
		HashTimer:  h.HashTimer,
		MerkleRoot: h.MerkleRoot,
	})
	if err != nil {
		return BlockID{}, fmt.Errorf("chaintypes: compute block id: %w", err)
	}
	return hash, nil
}

// ComputeMerkleRoot hashes the canonical ordered list of transaction ids
// carried by a block — the block's merkle_root field.
func ComputeMerkleRoot(txIDs []BlockID) ([32]byte, error) {
	hash, err := canon.HashCanonical(txIDs)
	if err != nil {
		return [32]byte{}, fmt.Errorf("chaintypes: compute merkle root: %w", err)
	}
	return hash, nil
}

// VerifyHeaderID checks the id == hash(canonical(header-fields-excluding-id)) invariant.
func VerifyHeaderID(h BlockHeader) (bool, error) {
	want, err := ComputeBlockID(h)
	if err != nil {
		return false, err
	}
	return want == h.ID, nil
}

// TxIDs returns the ordered list of transaction ids carried by the block.
func (b Block) TxIDs() []BlockID {
	ids := make([]BlockID, len(b.Transactions))
	for i, tx := range b.Transactions {
		ids[i] = tx.ID
	}
	return ids
}
