package chaintypes

// Role describes how a validator participated in a round.
type Role int

const (
	// RoleProposer produced at least one block in the round.
	RoleProposer Role = iota
	// RoleVerifier verified blocks but proposed none.
	RoleVerifier
	// RoleBoth both proposed and verified in the round.
	RoleBoth
)

// String renders the role name, used in logs and the determinism artifact.
func (r Role) String() string {
	switch r {
	case RoleProposer:
		return "proposer"
	case RoleVerifier:
		return "verifier"
	case RoleBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Participation records one validator's activity within a round, the input
// the distribution engine weighs payouts against.
type Participation struct {
	ValidatorID    ID   `json:"validator_id"`
	Role           Role `json:"role"`
	BlocksProposed uint32 `json:"blocks_proposed"`
	BlocksVerified uint32 `json:"blocks_verified"`
}
