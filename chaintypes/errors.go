package chaintypes

import "errors"

// Sentinel errors shared across the round pipeline, grounded on the
// teacher's types/errors.go — plain errors.New values wrapped with
// fmt.Errorf("%w: ...") for context, never a custom error-stack library.
var (
	// ErrBlockNotFound is returned when a block is not found in the DAG store.
	ErrBlockNotFound = errors.New("block not found")

	// ErrInvalidBlock is returned when a block fails structural verification.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrDuplicateInsertion is a non-fatal re-insertion of an already-stored block.
	ErrDuplicateInsertion = errors.New("duplicate block insertion")

	// ErrMissingParent is non-fatal; the caller may retry after fetching the parent.
	ErrMissingParent = errors.New("missing parent block")

	// ErrSameRoundParent rejects a block whose parent is in the same round.
	ErrSameRoundParent = errors.New("parent references the same round")

	// ErrSupplyCapExceeded is a hard stop when total issuance exceeds the cap.
	ErrSupplyCapExceeded = errors.New("supply cap exceeded")

	// ErrFeeCapExceeded rejects a round's distribution when fees exceed the cap.
	ErrFeeCapExceeded = errors.New("fee cap exceeded")

	// ErrNonceGap is a locally recoverable invariant violation.
	ErrNonceGap = errors.New("nonce gap")

	// ErrInsufficientBalance is a locally recoverable invariant violation.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidSignature rejects a transaction with a bad signature.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrDeterminismBreach is fatal: model hash mismatch or state root divergence.
	ErrDeterminismBreach = errors.New("determinism breach")

	// ErrNotFinalized is returned when a round record is read before finalization.
	ErrNotFinalized = errors.New("round not finalized")
)
