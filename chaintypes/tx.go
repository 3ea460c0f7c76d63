package chaintypes

import (
	"crypto/ed25519"
	"fmt"

	"github.com/dmrl789/ippan-core/canon"
	"github.com/dmrl789/ippan-core/hashtimer"
)

// ConfidentialEnvelope carries an optional confidential-transaction payload.
// The core treats it as an opaque, hashed blob; its semantics are owned by
// an external collaborator (out of scope per spec.md).
type ConfidentialEnvelope struct {
	Ciphertext []byte `json:"ciphertext"`
}

// HandleOp carries an optional handle-registry operation attached to a
// transaction. The handle registry itself is an external collaborator.
type HandleOp struct {
	Op   string `json:"op"`
	Name string `json:"name"`
}

// Transaction is a signed value transfer, the atomic unit the round
// orderer sequences and the account ledger applies.
type Transaction struct {
	ID        BlockID    `json:"id"`
	From      ID         `json:"from"`
	To        ID         `json:"to"`
	Amount    uint64     `json:"amount"`
	Nonce     uint64     `json:"nonce"`
	HashTimer hashtimer.HashTimer `json:"hashtimer"`
	Signature [ed25519.SignatureSize]byte `json:"signature"`

	Confidential *ConfidentialEnvelope `json:"confidential,omitempty"`
	Handle       *HandleOp             `json:"handle,omitempty"`
}

// canonicalTxFields is the subset of Transaction fields hashed to derive ID:
// every field except ID and Signature themselves.
type canonicalTxFields struct {
	From         ID                    `json:"from"`
	To           ID                    `json:"to"`
	Amount       uint64                `json:"amount"`
	Nonce        uint64                `json:"nonce"`
	HashTimer    hashtimer.HashTimer   `json:"hashtimer"`
	Confidential *ConfidentialEnvelope `json:"confidential,omitempty"`
	Handle       *HandleOp             `json:"handle,omitempty"`
}

// ComputeTxID derives the canonical transaction id: BLAKE3 over the
// canonical encoding of every field except id and signature.
func ComputeTxID(tx Transaction) (BlockID, error) {
	hash, err := canon.HashCanonical(canonicalTxFields{
		From:         tx.From,
		To:           tx.To,
		Amount:       tx.Amount,
		Nonce:        tx.Nonce,
		HashTimer:    tx.HashTimer,
		Confidential: tx.Confidential,
		Handle:       tx.Handle,
	})
	if err != nil {
		return BlockID{}, fmt.Errorf("chaintypes: compute tx id: %w", err)
	}
	return hash, nil
}

// VerifySignature checks that tx.Signature is a valid Ed25519 signature by
// fromPubKey over tx.ID — signatures cover the id, not the full payload.
func VerifySignature(tx Transaction, fromPubKey ed25519.PublicKey) bool {
	if len(fromPubKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(fromPubKey, tx.ID[:], tx.Signature[:])
}

// VerifyID checks that tx.ID matches the canonical hash of its other
// fields, per the invariant id == hash(canonical(header-fields)).
func VerifyID(tx Transaction) (bool, error) {
	want, err := ComputeTxID(tx)
	if err != nil {
		return false, err
	}
	return want == tx.ID, nil
}
