package chaintypes

// ChainState is the running summary the round executor reads and updates;
// it is itself part of what the state_root commits to.
type ChainState struct {
	CurrentRound      RoundID  `json:"current_round"`
	CurrentHeight     uint64   `json:"current_height"`
	StateRoot         [32]byte `json:"state_root"`
	TotalIssuedMicro  uint64   `json:"total_issued_micro"`
	LastUpdatedUs     int64    `json:"last_updated_us"`
}
