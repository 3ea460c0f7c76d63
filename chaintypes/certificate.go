package chaintypes

// RoundCertificate attests that a quorum of selected verifiers accepted the
// set of blocks finalized for a round. Aggregate-signature construction is
// an external collaborator's concern; this type only carries the result.
type RoundCertificate struct {
	Round   RoundID   `json:"round"`
	BlockIDs []BlockID `json:"block_ids"`
	AggSig  []byte    `json:"agg_sig"`
}

// RoundFinalizationRecord is the complete, immutable output of one
// finalized round: the ordered transaction set, what got dropped to forks,
// the resulting state root, and the round's economic settlement.
type RoundFinalizationRecord struct {
	Round             RoundID          `json:"round"`
	Window            [2]int64         `json:"window"`
	OrderedTxIDs      []BlockID        `json:"ordered_tx_ids"`
	ForkDrops         []BlockID        `json:"fork_drops"`
	StateRoot         [32]byte         `json:"state_root"`
	Certificate       RoundCertificate `json:"certificate"`
	TotalFeesAtomic   uint64           `json:"total_fees_atomic"`
	TreasuryFeesAtomic uint64          `json:"treasury_fees_atomic"`
	AppliedPayments   []BlockID        `json:"applied_payments"`
	RejectedPayments  []BlockID        `json:"rejected_payments"`
}
